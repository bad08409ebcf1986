// Package schema maps an unknown result-store schema onto the semantic
// roles the audit needs. Detection is pure string matching over the table
// and column names the store reports: deterministic, side-effect free and
// idempotent, so two runs over the same schema always agree.
package schema

import "strings"

// Role identifies the semantic meaning of a resolved column.
type Role string

// Trade table roles.
const (
	RoleID          Role = "id"
	RoleSymbol      Role = "symbol"
	RoleExpiry      Role = "expiry"
	RoleStrike      Role = "strike"
	RoleOptionRight Role = "option_right"
	RoleSide        Role = "side"
	RoleQuantity    Role = "quantity"
	RoleEntryTime   Role = "entry_time"
	RoleExitTime    Role = "exit_time"
	RoleEntryPrice  Role = "entry_price"
	RoleExitPrice   Role = "exit_price"
	RoleRealizedPnL Role = "realized_pnl"
	RoleFees        Role = "fees"
	RoleMultiplier  Role = "multiplier"
)

// Quote table roles. RoleSymbol is shared with the trade table.
const (
	RoleQuoteTime Role = "quote_time"
	RoleBid       Role = "bid"
	RoleAsk       Role = "ask"
)

// Table name patterns, in priority order. The first pattern that matches
// any table name (case-insensitive substring) wins.
var (
	TradeTablePatterns = []string{"trade", "fills", "positions"}
	QuoteTablePatterns = []string{"nbbo", "quote", "bestbidask", "book"}
	BarTablePatterns   = []string{"bar", "ohlcv", "prices", "underlying"}
)

// roleAliases binds a role to its ordered candidate column names.
type roleAliases struct {
	role    Role
	aliases []string
}

var tradeRoles = []roleAliases{
	{RoleID, []string{"trade_id", "id", "rowid"}},
	{RoleSymbol, []string{"symbol", "underlying", "ticker"}},
	{RoleExpiry, []string{"expiry", "expiration", "expiry_date"}},
	{RoleStrike, []string{"strike", "strike_price"}},
	{RoleOptionRight, []string{"option_type", "right", "call_put"}},
	{RoleSide, []string{"side", "action"}},
	{RoleQuantity, []string{"qty", "quantity", "contracts", "size"}},
	{RoleEntryTime, []string{"entry_time", "open_time", "time_in", "ts_in", "timestamp_in", "timestamp"}},
	{RoleExitTime, []string{"exit_time", "close_time", "time_out", "ts_out"}},
	{RoleEntryPrice, []string{"entry_price", "open_price", "fill_price", "price_in", "avg_entry", "price"}},
	{RoleExitPrice, []string{"exit_price", "close_price", "price_out", "avg_exit"}},
	{RoleRealizedPnL, []string{"realized_pnl", "realized", "pnl", "profit"}},
	{RoleFees, []string{"fees", "commission", "commissions", "total_fees"}},
	{RoleMultiplier, []string{"multiplier", "contract_multiplier"}},
}

var quoteRoles = []roleAliases{
	{RoleQuoteTime, []string{"ts", "timestamp", "time", "quote_time"}},
	{RoleSymbol, []string{"symbol", "underlying", "ticker"}},
	{RoleBid, []string{"bid", "best_bid"}},
	{RoleAsk, []string{"ask", "best_ask"}},
}

// RoleMap maps each resolved role to the concrete column chosen for it.
// Absent roles are simply missing keys; downstream code applies fallbacks.
type RoleMap map[Role]string

// Has reports whether every given role resolved to a column.
func (m RoleMap) Has(roles ...Role) bool {
	for _, r := range roles {
		if _, ok := m[r]; !ok {
			return false
		}
	}
	return true
}

// Column returns the column resolved for a role, or "" when absent.
func (m RoleMap) Column(r Role) string {
	return m[r]
}

// DetectTable returns the first table name matching any of the patterns,
// checked pattern-major so earlier patterns take priority.
func DetectTable(names []string, patterns []string) (string, bool) {
	for _, pat := range patterns {
		for _, n := range names {
			if strings.Contains(strings.ToLower(n), pat) {
				return n, true
			}
		}
	}
	return "", false
}

// ResolveTradeRoles assigns trade-table roles over the given column list.
func ResolveTradeRoles(columns []string) RoleMap {
	return resolve(columns, tradeRoles)
}

// ResolveQuoteRoles assigns quote-table roles over the given column list.
func ResolveQuoteRoles(columns []string) RoleMap {
	return resolve(columns, quoteRoles)
}

// TradeColumns returns the distinct resolved trade columns in role
// declaration order, suitable for a stable SELECT list.
func (m RoleMap) TradeColumns() []string {
	return m.columnsInOrder(tradeRoles)
}

// QuoteColumns returns the distinct resolved quote columns in role
// declaration order.
func (m RoleMap) QuoteColumns() []string {
	return m.columnsInOrder(quoteRoles)
}

func (m RoleMap) columnsInOrder(specs []roleAliases) []string {
	seen := make(map[string]struct{}, len(m))
	var cols []string
	for _, spec := range specs {
		col, ok := m[spec.role]
		if !ok {
			continue
		}
		if _, dup := seen[col]; dup {
			continue
		}
		seen[col] = struct{}{}
		cols = append(cols, col)
	}
	return cols
}

func resolve(columns []string, specs []roleAliases) RoleMap {
	// First occurrence wins for duplicate lower-cased names.
	byLower := make(map[string]string, len(columns))
	for _, c := range columns {
		key := strings.ToLower(c)
		if _, exists := byLower[key]; !exists {
			byLower[key] = c
		}
	}

	m := make(RoleMap, len(specs))
	for _, spec := range specs {
		for _, alias := range spec.aliases {
			if col, ok := byLower[alias]; ok {
				m[spec.role] = col
				break
			}
		}
	}
	return m
}
