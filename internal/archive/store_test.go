package archive_test

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"testing"

	"github.com/MrWong99/hexforge/internal/archive"
	"github.com/MrWong99/hexforge/internal/archive/archivetest"
)

func TestOpen_Errors(t *testing.T) {
	t.Parallel()

	t.Run("missing path", func(t *testing.T) {
		t.Parallel()
		_, err := archive.Open(filepath.Join(t.TempDir(), "nope.hbf"))
		if !errors.Is(err, archive.ErrNotFound) {
			t.Fatalf("expected ErrNotFound, got %v", err)
		}
	})

	t.Run("no entities table", func(t *testing.T) {
		t.Parallel()
		_, err := archive.Open(archivetest.WithoutEntities(t))
		if !errors.Is(err, archive.ErrCorruptArchive) {
			t.Fatalf("expected ErrCorruptArchive, got %v", err)
		}
	})

	t.Run("not a database", func(t *testing.T) {
		t.Parallel()
		path := filepath.Join(t.TempDir(), "garbage.hbf")
		if err := os.WriteFile(path, []byte(strings.Repeat("this is definitely not sqlite. ", 64)), 0o644); err != nil {
			t.Fatal(err)
		}
		_, err := archive.Open(path)
		if !errors.Is(err, archive.ErrCorruptArchive) {
			t.Fatalf("expected ErrCorruptArchive, got %v", err)
		}
	})
}

func TestOpen_URIMetacharactersInPath(t *testing.T) {
	t.Parallel()

	for _, dirName := range []string{"build#1", "100% done", "a b#c%20d"} {
		t.Run(dirName, func(t *testing.T) {
			t.Parallel()
			dir := filepath.Join(t.TempDir(), dirName)
			if err := os.MkdirAll(dir, 0o755); err != nil {
				t.Fatal(err)
			}
			path := archivetest.NewAt(t, filepath.Join(dir, "game.hbf"), []archivetest.Entity{{UUID: "u1", Value: "<p>x</p>"}})

			s, err := archive.Open(path)
			if err != nil {
				t.Fatalf("Open(%q): %v", path, err)
			}
			defer s.Close()

			var got []string
			for row, err := range s.ScanEntities(context.Background()) {
				if err != nil {
					t.Fatalf("scan: %v", err)
				}
				got = append(got, row.UUID)
			}
			if !slices.Equal(got, []string{"u1"}) {
				t.Errorf("scanned %v, want [u1]", got)
			}
		})
	}
}

func TestScanEntities_StorageOrder(t *testing.T) {
	t.Parallel()
	path := archivetest.New(t, []archivetest.Entity{
		{UUID: "c", Value: "<p>third?</p>"},
		{UUID: "a", Value: "<p>first?</p>"},
		{UUID: "b", Value: "<p>second?</p>"},
	})
	s, err := archive.Open(path, archive.WithProgressEvery(1))
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	defer s.Close()

	var got []string
	for row, err := range s.ScanEntities(context.Background()) {
		if err != nil {
			t.Fatalf("scan: %v", err)
		}
		got = append(got, row.UUID)
	}
	if want := []string{"c", "a", "b"}; !slices.Equal(got, want) {
		t.Errorf("scan order = %v, want %v", got, want)
	}
}

func TestIntrospection(t *testing.T) {
	t.Parallel()
	path := archivetest.New(t,
		[]archivetest.Entity{{UUID: "u1", Value: "x"}, {UUID: "u2", Value: "y"}},
		archivetest.Table{
			Create: `CREATE TABLE Refs (uuid TEXT, ref_uuid TEXT NOT NULL DEFAULT '')`,
			Insert: `INSERT INTO Refs VALUES (?, ?)`,
			Rows:   [][]any{{"r1", "u1"}, {"r2", "u2"}, {"r3", "zz"}},
		},
	)
	s, err := archive.Open(path)
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	defer s.Close()
	ctx := context.Background()

	tables, err := s.ListTables(ctx)
	if err != nil {
		t.Fatalf("ListTables: %v", err)
	}
	if want := []string{"Entities", "Refs"}; !slices.Equal(tables, want) {
		t.Errorf("tables = %v, want %v", tables, want)
	}

	info, err := s.DescribeTable(ctx, "Refs")
	if err != nil {
		t.Fatalf("DescribeTable: %v", err)
	}
	if info.RecordCount != 3 || len(info.Columns) != 2 {
		t.Fatalf("info = %+v", info)
	}
	if !info.Columns[1].NotNull || info.Columns[1].Default == nil {
		t.Errorf("ref_uuid column = %+v", info.Columns[1])
	}

	samples, err := s.SampleRows(ctx, "Refs", 2)
	if err != nil {
		t.Fatalf("SampleRows: %v", err)
	}
	if len(samples) != 2 || samples[0]["ref_uuid"] != "u1" {
		t.Errorf("samples = %v", samples)
	}

	n, err := s.JoinCount(ctx, "Refs", "ref_uuid", "Entities", "uuid")
	if err != nil {
		t.Fatalf("JoinCount: %v", err)
	}
	if n != 2 {
		t.Errorf("JoinCount = %d, want 2", n)
	}

	if _, err := s.DescribeTable(ctx, "Missing"); !errors.Is(err, archive.ErrMissingTable) {
		t.Errorf("expected ErrMissingTable, got %v", err)
	}
}

func TestFirstMatching_SkipsJSON(t *testing.T) {
	t.Parallel()
	path := archivetest.New(t, []archivetest.Entity{
		{UUID: "j", Value: `{"name": "Ashen Forest"}`},
		{UUID: "h", Value: "<h1>Ashen Forest</h1>"},
	})
	s, err := archive.Open(path)
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	defer s.Close()

	row, ok, err := s.FirstMatching(context.Background(), "Ashen Forest")
	if err != nil || !ok {
		t.Fatalf("FirstMatching: ok=%v err=%v", ok, err)
	}
	if row.UUID != "h" {
		t.Errorf("got uuid %q, want h", row.UUID)
	}

	_, ok, err = s.FirstMatching(context.Background(), "100%_none")
	if err != nil || ok {
		t.Errorf("expected no match, ok=%v err=%v", ok, err)
	}
}

func TestForeignKeys(t *testing.T) {
	t.Parallel()
	path := archivetest.New(t, nil, archivetest.Table{
		Create: `CREATE TABLE Links (id INTEGER PRIMARY KEY, entity TEXT REFERENCES Entities(uuid))`,
	})
	s, err := archive.Open(path)
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	defer s.Close()

	fks, err := s.ForeignKeys(context.Background(), "Links")
	if err != nil {
		t.Fatalf("ForeignKeys: %v", err)
	}
	want := archive.ForeignKey{FromTable: "Links", FromColumn: "entity", ToTable: "Entities", ToColumn: "uuid"}
	if len(fks) != 1 || fks[0] != want {
		t.Fatalf("ForeignKeys = %+v, want [%+v]", fks, want)
	}

	none, err := s.ForeignKeys(context.Background(), "Entities")
	if err != nil || len(none) != 0 {
		t.Fatalf("ForeignKeys(Entities) = %v, %v", none, err)
	}
}
