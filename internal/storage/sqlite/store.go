package sqlite

import (
	"context"
	"fmt"
	"strings"

	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"backtest-audit/internal/storage"
)

// Store reads a SQLite backtest result database. The database is opened
// read-only for the duration of the run.
type Store struct {
	db *gorm.DB
}

// Open opens a SQLite database file as a read-only result store.
func Open(path string) (*Store, error) {
	dsn := fmt.Sprintf("file:%s?mode=ro", path)
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		return nil, fmt.Errorf("open sqlite store: %w", err)
	}
	return &Store{db: db}, nil
}

// Compile-time interface check.
var _ storage.ResultStore = (*Store)(nil)

// Tables lists all table names in schema order.
func (s *Store) Tables(ctx context.Context) ([]string, error) {
	var names []string
	err := s.db.WithContext(ctx).
		Raw("SELECT name FROM sqlite_schema WHERE type = 'table'").
		Scan(&names).Error
	if err != nil {
		return nil, fmt.Errorf("list sqlite tables: %w", err)
	}
	return names, nil
}

// Columns lists the column names of a table in declaration order.
func (s *Store) Columns(ctx context.Context, table string) ([]string, error) {
	var infos []struct {
		Name string
	}
	err := s.db.WithContext(ctx).
		Raw(fmt.Sprintf("PRAGMA table_info(%s)", quoteIdent(table))).
		Scan(&infos).Error
	if err != nil {
		return nil, fmt.Errorf("describe sqlite table %s: %w", table, err)
	}
	if len(infos) == 0 {
		return nil, storage.ErrTableNotFound
	}

	cols := make([]string, len(infos))
	for i, info := range infos {
		cols[i] = info.Name
	}
	return cols, nil
}

// Rows bulk-reads the given columns of every row in a table.
func (s *Store) Rows(ctx context.Context, table string, columns []string) ([]storage.Row, error) {
	if len(columns) == 0 {
		return nil, storage.ErrNoColumns
	}

	query := fmt.Sprintf("SELECT %s FROM %s", selectList(columns), quoteIdent(table))
	rows, err := s.db.WithContext(ctx).Raw(query).Rows()
	if err != nil {
		return nil, fmt.Errorf("read sqlite table %s: %w", table, err)
	}
	defer rows.Close()

	names, err := rows.Columns()
	if err != nil {
		return nil, fmt.Errorf("read sqlite columns: %w", err)
	}

	var out []storage.Row
	values := make([]any, len(names))
	ptrs := make([]any, len(names))
	for i := range values {
		ptrs[i] = &values[i]
	}
	for rows.Next() {
		if err := rows.Scan(ptrs...); err != nil {
			return nil, fmt.Errorf("scan sqlite row: %w", err)
		}
		row := make(storage.Row, len(names))
		for i, name := range names {
			row[name] = normalizeValue(values[i])
		}
		out = append(out, row)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate sqlite rows: %w", err)
	}
	return out, nil
}

// Close closes the underlying connection.
func (s *Store) Close() error {
	sqlDB, err := s.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}

// quoteIdent quotes a table or column name discovered from the store schema.
func quoteIdent(name string) string {
	return `"` + strings.ReplaceAll(name, `"`, `""`) + `"`
}

func selectList(columns []string) string {
	quoted := make([]string, len(columns))
	for i, c := range columns {
		quoted[i] = quoteIdent(c)
	}
	return strings.Join(quoted, ", ")
}

// normalizeValue converts driver byte slices to strings so downstream
// parsing sees one representation for text values.
func normalizeValue(v any) any {
	if b, ok := v.([]byte); ok {
		return string(b)
	}
	return v
}
