package storage

import "context"

// Row is one raw record keyed by column name. Values keep whatever native
// type the backend driver produced; interpretation happens downstream.
type Row map[string]any

// ResultStore provides read-only access to a backtest result store with an
// unknown schema. Implementations must never mutate the underlying store.
type ResultStore interface {
	// Tables lists all table names in the store.
	Tables(ctx context.Context) ([]string, error)

	// Columns lists the column names of a table in declaration order.
	// Returns ErrTableNotFound for an unknown table.
	Columns(ctx context.Context, table string) ([]string, error)

	// Rows bulk-reads the given columns of every row in a table.
	// Returns ErrNoColumns when columns is empty.
	Rows(ctx context.Context, table string, columns []string) ([]Row, error)

	// Close releases the underlying connection.
	Close() error
}
