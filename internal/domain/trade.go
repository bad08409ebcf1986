package domain

import "time"

// DayLayout is the calendar-date key format used by all daily aggregations.
const DayLayout = "2006-01-02"

// Trade is the canonical, normalized form of one backtest trade row.
// Built once during normalization and never mutated afterwards.
type Trade struct {
	Symbol string

	// Timestamps are timezone-naive UTC instants. A nil entry time drops
	// the trade from every date-indexed aggregation.
	EntryTime *time.Time
	ExitTime  *time.Time

	Quantity   float64 // signed; negative for short entries
	Multiplier float64 // contract multiplier, default 100
	EntryPrice float64
	ExitPrice  float64
	Fees       float64

	// Realized is the stored realized P&L when the source row carried a
	// parseable value, otherwise (exit - entry) * qty * multiplier.
	Realized        float64
	RealizedDerived bool
}

// EntryDate returns the trade's entry calendar date in DayLayout.
// ok is false when the entry timestamp is unknown.
func (t *Trade) EntryDate() (string, bool) {
	if t.EntryTime == nil {
		return "", false
	}
	return t.EntryTime.Format(DayLayout), true
}
