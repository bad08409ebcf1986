package memory

import (
	"context"
	"sync"

	"backtest-audit/internal/storage"
)

// Store is an in-memory implementation of storage.ResultStore, used by
// tests and fixture-driven demo runs.
type Store struct {
	mu      sync.RWMutex
	tables  []string
	columns map[string][]string
	rows    map[string][]storage.Row
}

// NewStore creates an empty in-memory result store.
func NewStore() *Store {
	return &Store{
		columns: make(map[string][]string),
		rows:    make(map[string][]storage.Row),
	}
}

// Compile-time interface check.
var _ storage.ResultStore = (*Store)(nil)

// AddTable registers a table with its column list and rows.
// Re-adding a table replaces its previous definition.
func (s *Store) AddTable(name string, columns []string, rows []storage.Row) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.columns[name]; !exists {
		s.tables = append(s.tables, name)
	}

	cols := make([]string, len(columns))
	copy(cols, columns)
	s.columns[name] = cols

	copied := make([]storage.Row, len(rows))
	for i, r := range rows {
		row := make(storage.Row, len(r))
		for k, v := range r {
			row[k] = v
		}
		copied[i] = row
	}
	s.rows[name] = copied
}

// Tables lists registered tables in insertion order.
func (s *Store) Tables(_ context.Context) ([]string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]string, len(s.tables))
	copy(out, s.tables)
	return out, nil
}

// Columns lists the column names of a table in registration order.
func (s *Store) Columns(_ context.Context, table string) ([]string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	cols, ok := s.columns[table]
	if !ok {
		return nil, storage.ErrTableNotFound
	}
	out := make([]string, len(cols))
	copy(out, cols)
	return out, nil
}

// Rows returns the requested columns of every row in a table.
func (s *Store) Rows(_ context.Context, table string, columns []string) ([]storage.Row, error) {
	if len(columns) == 0 {
		return nil, storage.ErrNoColumns
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	rows, ok := s.rows[table]
	if !ok {
		return nil, storage.ErrTableNotFound
	}

	out := make([]storage.Row, len(rows))
	for i, r := range rows {
		row := make(storage.Row, len(columns))
		for _, c := range columns {
			if v, ok := r[c]; ok {
				row[c] = v
			}
		}
		out[i] = row
	}
	return out, nil
}

// Close is a no-op for the in-memory store.
func (s *Store) Close() error {
	return nil
}
