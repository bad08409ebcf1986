// Package normalize converts raw result-store rows into canonical trades.
// Every coercion here is per-row tolerant: a field that cannot be parsed
// falls back to its default instead of failing the run.
package normalize

import (
	"strconv"
	"strings"
	"time"

	"backtest-audit/internal/domain"
	"backtest-audit/internal/schema"
	"backtest-audit/internal/storage"
)

// DefaultMultiplier is the contract multiplier assumed when the store
// carries none (standard US equity options).
const DefaultMultiplier = 100.0

// timestampLayouts are tried in order against the first 19 characters of a
// string timestamp. Timezone and fraction suffixes are ignored.
var timestampLayouts = []string{
	"2006-01-02 15:04:05",
	"2006-01-02T15:04:05",
	"2006-01-02 15:04",
	"2006-01-02",
}

// ParseTimestamp converts a raw store value into a UTC instant. Numeric
// values are epoch seconds. Returns nil when the value is absent or no
// layout matches.
func ParseTimestamp(v any) *time.Time {
	switch x := v.(type) {
	case nil:
		return nil
	case time.Time:
		u := x.UTC()
		return &u
	case int:
		return fromEpoch(int64(x))
	case int32:
		return fromEpoch(int64(x))
	case int64:
		return fromEpoch(x)
	case uint32:
		return fromEpoch(int64(x))
	case uint64:
		return fromEpoch(int64(x))
	case float32:
		return fromEpoch(int64(x))
	case float64:
		return fromEpoch(int64(x))
	case []byte:
		return parseTimestampString(string(x))
	case string:
		return parseTimestampString(x)
	default:
		return nil
	}
}

func fromEpoch(sec int64) *time.Time {
	t := time.Unix(sec, 0).UTC()
	return &t
}

func parseTimestampString(s string) *time.Time {
	if len(s) > 19 {
		s = s[:19]
	}
	for _, layout := range timestampLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			u := t.UTC()
			return &u
		}
	}
	return nil
}

// Float coerces a raw value to float64, falling back to def when the value
// is absent or not numeric.
func Float(v any, def float64) float64 {
	if f, ok := floatValue(v); ok {
		return f
	}
	return def
}

// floatValue reports whether the raw value carries a parseable number.
func floatValue(v any) (float64, bool) {
	switch x := v.(type) {
	case nil:
		return 0, false
	case float64:
		return x, true
	case float32:
		return float64(x), true
	case int:
		return float64(x), true
	case int32:
		return float64(x), true
	case int64:
		return float64(x), true
	case uint32:
		return float64(x), true
	case uint64:
		return float64(x), true
	case []byte:
		return parseFloatString(string(x))
	case string:
		return parseFloatString(x)
	default:
		return 0, false
	}
}

func parseFloatString(s string) (float64, bool) {
	f, err := strconv.ParseFloat(strings.TrimSpace(s), 64)
	if err != nil {
		return 0, false
	}
	return f, true
}

// String coerces a raw value to its string form; nil becomes "".
func String(v any) string {
	switch x := v.(type) {
	case nil:
		return ""
	case string:
		return x
	case []byte:
		return string(x)
	default:
		return ""
	}
}

// FromRow builds a canonical trade from one raw trades-table row using the
// resolved column roles.
func FromRow(row storage.Row, roles schema.RoleMap) domain.Trade {
	t := domain.Trade{
		Symbol:     String(roleValue(row, roles, schema.RoleSymbol)),
		EntryTime:  ParseTimestamp(roleValue(row, roles, schema.RoleEntryTime)),
		ExitTime:   ParseTimestamp(roleValue(row, roles, schema.RoleExitTime)),
		Quantity:   Float(roleValue(row, roles, schema.RoleQuantity), 0),
		Multiplier: Float(roleValue(row, roles, schema.RoleMultiplier), DefaultMultiplier),
		EntryPrice: Float(roleValue(row, roles, schema.RoleEntryPrice), 0),
		ExitPrice:  Float(roleValue(row, roles, schema.RoleExitPrice), 0),
		Fees:       Float(roleValue(row, roles, schema.RoleFees), 0),
	}

	// The stored realized P&L is the source of truth when parseable: it may
	// include assignment, exercise or partial-fill effects the synthetic
	// formula cannot reproduce.
	if realized, ok := floatValue(roleValue(row, roles, schema.RoleRealizedPnL)); ok {
		t.Realized = realized
	} else {
		t.Realized = (t.ExitPrice - t.EntryPrice) * t.Quantity * t.Multiplier
		t.RealizedDerived = true
	}

	return t
}

// FromRows normalizes a full trades-table read.
func FromRows(rows []storage.Row, roles schema.RoleMap) []domain.Trade {
	trades := make([]domain.Trade, 0, len(rows))
	for _, row := range rows {
		trades = append(trades, FromRow(row, roles))
	}
	return trades
}

func roleValue(row storage.Row, roles schema.RoleMap, role schema.Role) any {
	col, ok := roles[role]
	if !ok {
		return nil
	}
	return row[col]
}
