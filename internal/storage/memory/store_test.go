package memory

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"

	"backtest-audit/internal/storage"
)

func TestStore_TablesAndColumns(t *testing.T) {
	ctx := context.Background()
	s := NewStore()
	s.AddTable("trades", []string{"symbol", "qty"}, nil)
	s.AddTable("nbbo_quotes", []string{"symbol", "ts", "bid", "ask"}, nil)

	tables, err := s.Tables(ctx)
	require.NoError(t, err)
	require.Equal(t, []string{"trades", "nbbo_quotes"}, tables)

	cols, err := s.Columns(ctx, "trades")
	require.NoError(t, err)
	require.Equal(t, []string{"symbol", "qty"}, cols)

	_, err = s.Columns(ctx, "absent")
	require.ErrorIs(t, err, storage.ErrTableNotFound)
}

func TestStore_RowsProjectsColumns(t *testing.T) {
	ctx := context.Background()
	s := NewStore()
	s.AddTable("trades", []string{"symbol", "qty", "fees"}, []storage.Row{
		{"symbol": "SPXW", "qty": 2.0, "fees": 1.5},
	})

	rows, err := s.Rows(ctx, "trades", []string{"symbol", "qty"})
	require.NoError(t, err)
	require.Len(t, rows, 1)
	require.Equal(t, storage.Row{"symbol": "SPXW", "qty": 2.0}, rows[0])

	_, err = s.Rows(ctx, "trades", nil)
	require.ErrorIs(t, err, storage.ErrNoColumns)

	_, err = s.Rows(ctx, "absent", []string{"symbol"})
	require.ErrorIs(t, err, storage.ErrTableNotFound)
}

func TestStore_DefensiveCopies(t *testing.T) {
	ctx := context.Background()
	s := NewStore()
	source := []storage.Row{{"symbol": "SPXW"}}
	s.AddTable("trades", []string{"symbol"}, source)

	// Mutating the caller's slice must not leak into the store.
	source[0]["symbol"] = "QQQ"

	rows, err := s.Rows(ctx, "trades", []string{"symbol"})
	require.NoError(t, err)
	require.Equal(t, "SPXW", rows[0]["symbol"])

	// Mutating a returned row must not leak back either.
	rows[0]["symbol"] = "IWM"
	again, err := s.Rows(ctx, "trades", []string{"symbol"})
	require.NoError(t, err)
	require.Equal(t, "SPXW", again[0]["symbol"])
}

func TestStore_ReaddReplacesTable(t *testing.T) {
	ctx := context.Background()
	s := NewStore()
	s.AddTable("trades", []string{"symbol"}, []storage.Row{{"symbol": "SPXW"}})
	s.AddTable("trades", []string{"symbol", "qty"}, nil)

	tables, err := s.Tables(ctx)
	require.NoError(t, err)
	require.Equal(t, []string{"trades"}, tables)

	cols, err := s.Columns(ctx, "trades")
	require.NoError(t, err)
	require.Equal(t, []string{"symbol", "qty"}, cols)

	rows, err := s.Rows(ctx, "trades", []string{"symbol"})
	require.NoError(t, err)
	require.Empty(t, rows)
}
