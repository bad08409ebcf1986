package clickhouse

import (
	"context"
	"fmt"
	"reflect"
	"strings"

	"backtest-audit/internal/storage"
)

// Store reads a ClickHouse backtest result database. Discovery uses the
// system.tables and system.columns catalogs of the connected database.
type Store struct {
	conn *Conn
}

// NewStore creates a result store over an existing connection.
func NewStore(conn *Conn) *Store {
	return &Store{conn: conn}
}

// Compile-time interface check.
var _ storage.ResultStore = (*Store)(nil)

// Tables lists all table names in the connected database, sorted by name.
func (s *Store) Tables(ctx context.Context) ([]string, error) {
	query := `
		SELECT name
		FROM system.tables
		WHERE database = currentDatabase()
		ORDER BY name
	`
	rows, err := s.conn.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("list clickhouse tables: %w", err)
	}
	defer rows.Close()

	var names []string
	for rows.Next() {
		var name string
		if err := rows.Scan(&name); err != nil {
			return nil, fmt.Errorf("scan table name: %w", err)
		}
		names = append(names, name)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate table names: %w", err)
	}
	return names, nil
}

// Columns lists the column names of a table in position order.
func (s *Store) Columns(ctx context.Context, table string) ([]string, error) {
	query := `
		SELECT name
		FROM system.columns
		WHERE database = currentDatabase() AND table = ?
		ORDER BY position
	`
	rows, err := s.conn.Query(ctx, query, table)
	if err != nil {
		return nil, fmt.Errorf("describe clickhouse table %s: %w", table, err)
	}
	defer rows.Close()

	var cols []string
	for rows.Next() {
		var name string
		if err := rows.Scan(&name); err != nil {
			return nil, fmt.Errorf("scan column name: %w", err)
		}
		cols = append(cols, name)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate column names: %w", err)
	}
	if len(cols) == 0 {
		return nil, storage.ErrTableNotFound
	}
	return cols, nil
}

// Rows bulk-reads the given columns of every row in a table. Values are
// scanned through each column's driver scan type, so the row map carries
// native ClickHouse value types.
func (s *Store) Rows(ctx context.Context, table string, columns []string) ([]storage.Row, error) {
	if len(columns) == 0 {
		return nil, storage.ErrNoColumns
	}

	query := fmt.Sprintf("SELECT %s FROM %s", selectList(columns), quoteIdent(table))
	rows, err := s.conn.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("read clickhouse table %s: %w", table, err)
	}
	defer rows.Close()

	names := rows.Columns()
	types := rows.ColumnTypes()

	var out []storage.Row
	for rows.Next() {
		ptrs := make([]any, len(types))
		for i, ct := range types {
			ptrs[i] = reflect.New(ct.ScanType()).Interface()
		}
		if err := rows.Scan(ptrs...); err != nil {
			return nil, fmt.Errorf("scan clickhouse row: %w", err)
		}
		row := make(storage.Row, len(names))
		for i, name := range names {
			row[name] = reflect.ValueOf(ptrs[i]).Elem().Interface()
		}
		out = append(out, row)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate clickhouse rows: %w", err)
	}
	return out, nil
}

// Close closes the underlying connection.
func (s *Store) Close() error {
	return s.conn.Close()
}

// quoteIdent quotes a table or column name discovered from the store schema.
func quoteIdent(name string) string {
	return "`" + strings.ReplaceAll(name, "`", "\\`") + "`"
}

func selectList(columns []string) string {
	quoted := make([]string, len(columns))
	for i, c := range columns {
		quoted[i] = quoteIdent(c)
	}
	return strings.Join(quoted, ", ")
}
