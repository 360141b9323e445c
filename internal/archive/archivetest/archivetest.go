// Package archivetest builds throwaway SQLite archives for tests.
package archivetest

import (
	"database/sql"
	"path/filepath"
	"testing"

	_ "modernc.org/sqlite"
)

// Entity is a row of the Entities table.
type Entity struct {
	UUID  string
	Value string
}

// Table describes an extra table: a CREATE statement and rows to insert with
// positional parameters.
type Table struct {
	Create string
	Insert string
	Rows   [][]any
}

// New writes an archive containing entities (and any extra tables) to a file
// in t.TempDir and returns its path.
func New(t testing.TB, entities []Entity, extra ...Table) string {
	t.Helper()
	return NewAt(t, filepath.Join(t.TempDir(), "archive.hbf"), entities, extra...)
}

// NewAt is New writing to path. The parent directory must exist.
func NewAt(t testing.TB, path string, entities []Entity, extra ...Table) string {
	t.Helper()
	db, err := sql.Open("sqlite", path)
	if err != nil {
		t.Fatalf("archivetest: open: %v", err)
	}
	defer db.Close()

	tables := append([]Table{{
		Create: `CREATE TABLE Entities (uuid TEXT PRIMARY KEY, value TEXT)`,
		Insert: `INSERT INTO Entities (uuid, value) VALUES (?, ?)`,
		Rows:   entityRows(entities),
	}}, extra...)

	for _, tb := range tables {
		if _, err := db.Exec(tb.Create); err != nil {
			t.Fatalf("archivetest: %s: %v", tb.Create, err)
		}
		for _, r := range tb.Rows {
			if _, err := db.Exec(tb.Insert, r...); err != nil {
				t.Fatalf("archivetest: %s %v: %v", tb.Insert, r, err)
			}
		}
	}
	return path
}

// WithoutEntities writes an SQLite file lacking the Entities table.
func WithoutEntities(t testing.TB) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "broken.hbf")
	db, err := sql.Open("sqlite", path)
	if err != nil {
		t.Fatalf("archivetest: open: %v", err)
	}
	defer db.Close()
	if _, err := db.Exec(`CREATE TABLE Other (id INTEGER)`); err != nil {
		t.Fatalf("archivetest: create: %v", err)
	}
	return path
}

func entityRows(entities []Entity) [][]any {
	rows := make([][]any, 0, len(entities))
	for _, e := range entities {
		rows = append(rows, []any{e.UUID, e.Value})
	}
	return rows
}
