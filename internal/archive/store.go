// Package archive provides read-only access to an HBF archive: a single-file
// SQLite database whose Entities table maps uuids to raw HTML, JSON or text.
//
// Besides streaming the Entities table, [Store] exposes the introspection
// helpers the relationship discoverer needs (table listing, column metadata,
// sampling and equality joins). All methods are safe for concurrent use; the
// underlying database is opened read-only.
package archive

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"iter"
	"log/slog"
	"net/url"
	"os"
	"path/filepath"
	"strings"

	_ "modernc.org/sqlite"
)

// EntitiesTable is the table every archive must contain.
const EntitiesTable = "Entities"

// defaultProgressEvery is how many rows are scanned between progress logs.
const defaultProgressEvery = 1000

var (
	// ErrNotFound is returned by [Open] when the archive path does not exist.
	ErrNotFound = errors.New("archive: not found")

	// ErrCorruptArchive is returned by [Open] when the file is not a readable
	// SQLite database or lacks the Entities table.
	ErrCorruptArchive = errors.New("archive: corrupt archive")

	// ErrMissingTable is returned by table-level helpers for unknown tables.
	ErrMissingTable = errors.New("archive: missing table")
)

// Row is a single record of the Entities table.
type Row struct {
	UUID  string
	Value string
}

// Option configures a [Store].
type Option func(*Store)

// WithProgressEvery sets how many rows are scanned between progress log
// lines. Values <= 0 disable progress logging.
func WithProgressEvery(n int) Option {
	return func(s *Store) {
		s.progressEvery = n
	}
}

// WithLogger sets the logger used for progress and diagnostics.
func WithLogger(l *slog.Logger) Option {
	return func(s *Store) {
		s.log = l
	}
}

// Store is a read-only handle to an archive.
type Store struct {
	db            *sql.DB
	path          string
	progressEvery int
	log           *slog.Logger
}

// Open opens the archive at path read-only and verifies it contains the
// Entities table.
func Open(path string, opts ...Option) (*Store, error) {
	if strings.TrimSpace(path) == "" {
		return nil, fmt.Errorf("%w: empty path", ErrNotFound)
	}
	if _, err := os.Stat(path); err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, fmt.Errorf("%w: %q", ErrNotFound, path)
		}
		return nil, fmt.Errorf("archive: stat %q: %w", path, err)
	}

	dsn, err := readOnlyDSN(path)
	if err != nil {
		return nil, fmt.Errorf("archive: open %q: %w", path, err)
	}
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("archive: open %q: %w", path, err)
	}

	s := &Store{
		db:            db,
		path:          path,
		progressEvery: defaultProgressEvery,
		log:           slog.Default(),
	}
	for _, o := range opts {
		o(s)
	}

	ok, err := s.hasTable(context.Background(), EntitiesTable)
	if err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("%w: %q: %v", ErrCorruptArchive, path, err)
	}
	if !ok {
		_ = db.Close()
		return nil, fmt.Errorf("%w: %q has no %s table", ErrCorruptArchive, path, EntitiesTable)
	}
	return s, nil
}

// readOnlyDSN builds a file: URI for path with mode=ro. The path is
// percent-escaped so '#', '?' and '%' in directory names reach SQLite
// verbatim.
func readOnlyDSN(path string) (string, error) {
	abs, err := filepath.Abs(path)
	if err != nil {
		return "", err
	}
	p := filepath.ToSlash(abs)
	if !strings.HasPrefix(p, "/") {
		p = "/" + p
	}
	u := url.URL{Scheme: "file", Path: p, RawQuery: "mode=ro"}
	return u.String(), nil
}

// Path returns the filesystem path the store was opened from.
func (s *Store) Path() string { return s.path }

// Close releases the underlying database handle.
func (s *Store) Close() error {
	if s == nil || s.db == nil {
		return nil
	}
	return s.db.Close()
}

// ScanEntities streams every Entities row exactly once in storage order.
// Iteration stops at the first error, which is yielded with a zero Row.
// Each call issues a fresh query.
func (s *Store) ScanEntities(ctx context.Context) iter.Seq2[Row, error] {
	return func(yield func(Row, error) bool) {
		rows, err := s.db.QueryContext(ctx, `SELECT uuid, value FROM `+quoteIdent(EntitiesTable)+` ORDER BY rowid`)
		if err != nil {
			yield(Row{}, fmt.Errorf("archive: scan entities: %w", err))
			return
		}
		defer rows.Close()

		n := 0
		for rows.Next() {
			var (
				r     Row
				value sql.NullString
			)
			if err := rows.Scan(&r.UUID, &value); err != nil {
				yield(Row{}, fmt.Errorf("archive: scan entity row %d: %w", n, err))
				return
			}
			r.Value = value.String
			n++
			if s.progressEvery > 0 && n%s.progressEvery == 0 {
				s.log.Info("scanning entities", "rows", n)
			}
			if !yield(r, nil) {
				return
			}
		}
		if err := rows.Err(); err != nil {
			yield(Row{}, fmt.Errorf("archive: scan entities: %w", err))
			return
		}
		s.log.Debug("entity scan complete", "rows", n)
	}
}

// FirstMatching returns the first Entities row whose value contains needle
// and is not a JSON document. ok is false when nothing matches.
func (s *Store) FirstMatching(ctx context.Context, needle string) (row Row, ok bool, err error) {
	q := `SELECT uuid, value FROM ` + quoteIdent(EntitiesTable) +
		` WHERE value LIKE ? ESCAPE '\' AND ltrim(value) NOT LIKE '{%' ORDER BY rowid LIMIT 1`
	err = s.db.QueryRowContext(ctx, q, "%"+escapeLike(needle)+"%").Scan(&row.UUID, &row.Value)
	if errors.Is(err, sql.ErrNoRows) {
		return Row{}, false, nil
	}
	if err != nil {
		return Row{}, false, fmt.Errorf("archive: match %q: %w", needle, err)
	}
	return row, true, nil
}

func (s *Store) hasTable(ctx context.Context, name string) (bool, error) {
	var n int
	err := s.db.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM sqlite_master WHERE type = 'table' AND name = ? COLLATE NOCASE`, name).Scan(&n)
	if err != nil {
		return false, err
	}
	return n > 0, nil
}

// quoteIdent quotes a SQLite identifier.
func quoteIdent(name string) string {
	return `"` + strings.ReplaceAll(name, `"`, `""`) + `"`
}

// escapeLike escapes LIKE wildcards using backslash as the escape character.
func escapeLike(s string) string {
	r := strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)
	return r.Replace(s)
}
