package archive

import (
	"context"
	"database/sql"
	"fmt"
	"slices"
	"strings"
)

// Column describes one column as reported by PRAGMA table_info.
type Column struct {
	Name       string  `json:"name"`
	DataType   string  `json:"data_type"`
	NotNull    bool    `json:"not_null"`
	Default    *string `json:"default,omitempty"`
	PrimaryKey bool    `json:"primary_key"`
}

// TableInfo is the structural description of a table. SampleData and
// HTMLPatterns are filled in by the relationship discoverer.
type TableInfo struct {
	Name         string           `json:"name"`
	RecordCount  int              `json:"record_count"`
	Columns      []Column         `json:"columns"`
	SampleData   []map[string]any `json:"sample_data,omitempty"`
	HTMLPatterns []string         `json:"html_patterns,omitempty"`
}

// IsText reports whether the column has TEXT affinity following SQLite's
// affinity rules. Untyped columns count as text; HBF archives store markup in
// them.
func (c Column) IsText() bool {
	t := strings.ToUpper(c.DataType)
	return t == "" || strings.Contains(t, "CHAR") || strings.Contains(t, "CLOB") || strings.Contains(t, "TEXT")
}

// ListTables returns the names of all user tables, sorted.
func (s *Store) ListTables(ctx context.Context) ([]string, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT name FROM sqlite_master WHERE type = 'table' AND name NOT LIKE 'sqlite_%'`)
	if err != nil {
		return nil, fmt.Errorf("archive: list tables: %w", err)
	}
	defer rows.Close()

	var names []string
	for rows.Next() {
		var name string
		if err := rows.Scan(&name); err != nil {
			return nil, fmt.Errorf("archive: list tables: %w", err)
		}
		names = append(names, name)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("archive: list tables: %w", err)
	}
	slices.Sort(names)
	return names, nil
}

// CountRows returns the number of rows in table.
func (s *Store) CountRows(ctx context.Context, table string) (int, error) {
	if err := s.requireTable(ctx, table); err != nil {
		return 0, err
	}
	var n int
	if err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM `+quoteIdent(table)).Scan(&n); err != nil {
		return 0, fmt.Errorf("archive: count %q: %w", table, err)
	}
	return n, nil
}

// DescribeTable returns the column list and record count of table.
func (s *Store) DescribeTable(ctx context.Context, table string) (TableInfo, error) {
	count, err := s.CountRows(ctx, table)
	if err != nil {
		return TableInfo{}, err
	}

	rows, err := s.db.QueryContext(ctx, `PRAGMA table_info(`+quoteIdent(table)+`)`)
	if err != nil {
		return TableInfo{}, fmt.Errorf("archive: describe %q: %w", table, err)
	}
	defer rows.Close()

	info := TableInfo{Name: table, RecordCount: count}
	for rows.Next() {
		var (
			cid     int
			col     Column
			notNull int
			dflt    sql.NullString
			pk      int
		)
		if err := rows.Scan(&cid, &col.Name, &col.DataType, &notNull, &dflt, &pk); err != nil {
			return TableInfo{}, fmt.Errorf("archive: describe %q: %w", table, err)
		}
		col.NotNull = notNull != 0
		col.PrimaryKey = pk != 0
		if dflt.Valid {
			v := dflt.String
			col.Default = &v
		}
		info.Columns = append(info.Columns, col)
	}
	if err := rows.Err(); err != nil {
		return TableInfo{}, fmt.Errorf("archive: describe %q: %w", table, err)
	}
	return info, nil
}

// SampleRows returns up to n rows of table in storage order as column→value
// mappings. Byte slices are converted to strings.
func (s *Store) SampleRows(ctx context.Context, table string, n int) ([]map[string]any, error) {
	if err := s.requireTable(ctx, table); err != nil {
		return nil, err
	}
	rows, err := s.db.QueryContext(ctx, `SELECT * FROM `+quoteIdent(table)+` LIMIT ?`, n)
	if err != nil {
		return nil, fmt.Errorf("archive: sample %q: %w", table, err)
	}
	defer rows.Close()

	cols, err := rows.Columns()
	if err != nil {
		return nil, fmt.Errorf("archive: sample %q: %w", table, err)
	}

	var out []map[string]any
	for rows.Next() {
		vals := make([]any, len(cols))
		ptrs := make([]any, len(cols))
		for i := range vals {
			ptrs[i] = &vals[i]
		}
		if err := rows.Scan(ptrs...); err != nil {
			return nil, fmt.Errorf("archive: sample %q: %w", table, err)
		}
		m := make(map[string]any, len(cols))
		for i, c := range cols {
			if b, ok := vals[i].([]byte); ok {
				m[c] = string(b)
				continue
			}
			m[c] = vals[i]
		}
		out = append(out, m)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("archive: sample %q: %w", table, err)
	}
	return out, nil
}

// TextSamples returns up to n non-null values of column in table, in storage
// order, rendered as text.
func (s *Store) TextSamples(ctx context.Context, table, column string, n int) ([]string, error) {
	if err := s.requireTable(ctx, table); err != nil {
		return nil, err
	}
	q := `SELECT CAST(` + quoteIdent(column) + ` AS TEXT) FROM ` + quoteIdent(table) +
		` WHERE ` + quoteIdent(column) + ` IS NOT NULL LIMIT ?`
	rows, err := s.db.QueryContext(ctx, q, n)
	if err != nil {
		return nil, fmt.Errorf("archive: samples %q.%q: %w", table, column, err)
	}
	defer rows.Close()

	var out []string
	for rows.Next() {
		var v string
		if err := rows.Scan(&v); err != nil {
			return nil, fmt.Errorf("archive: samples %q.%q: %w", table, column, err)
		}
		out = append(out, v)
	}
	return out, rows.Err()
}

// JoinCount counts the rows produced by an inner equality join of
// leftTable.leftCol against rightTable.rightCol.
func (s *Store) JoinCount(ctx context.Context, leftTable, leftCol, rightTable, rightCol string) (int, error) {
	q := `SELECT COUNT(*) FROM ` + quoteIdent(leftTable) + ` AS l INNER JOIN ` + quoteIdent(rightTable) +
		` AS r ON l.` + quoteIdent(leftCol) + ` = r.` + quoteIdent(rightCol)
	var n int
	if err := s.db.QueryRowContext(ctx, q).Scan(&n); err != nil {
		return 0, fmt.Errorf("archive: join %s.%s=%s.%s: %w", leftTable, leftCol, rightTable, rightCol, err)
	}
	return n, nil
}

func (s *Store) requireTable(ctx context.Context, table string) error {
	ok, err := s.hasTable(ctx, table)
	if err != nil {
		return fmt.Errorf("archive: lookup table %q: %w", table, err)
	}
	if !ok {
		return fmt.Errorf("%w: %q", ErrMissingTable, table)
	}
	return nil
}

// ForeignKey is a schema-declared reference between two columns.
type ForeignKey struct {
	FromTable  string `json:"from_table"`
	FromColumn string `json:"from_column"`
	ToTable    string `json:"to_table"`
	ToColumn   string `json:"to_column"`
}

// ForeignKeys returns the foreign keys declared on table.
func (s *Store) ForeignKeys(ctx context.Context, table string) ([]ForeignKey, error) {
	if err := s.requireTable(ctx, table); err != nil {
		return nil, err
	}
	rows, err := s.db.QueryContext(ctx, `SELECT "table", "from", "to" FROM pragma_foreign_key_list(?)`, table)
	if err != nil {
		return nil, fmt.Errorf("archive: foreign keys %q: %w", table, err)
	}
	defer rows.Close()

	var fks []ForeignKey
	for rows.Next() {
		var (
			fk ForeignKey
			to sql.NullString
		)
		if err := rows.Scan(&fk.ToTable, &fk.FromColumn, &to); err != nil {
			return nil, fmt.Errorf("archive: foreign keys %q: %w", table, err)
		}
		fk.FromTable = table
		fk.ToColumn = to.String
		fks = append(fks, fk)
	}
	return fks, rows.Err()
}
