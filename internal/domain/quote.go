package domain

import "time"

// Quote is one best-bid/ask sample for a symbol.
// Grouped by symbol and sorted by time ascending inside the quote index.
type Quote struct {
	Symbol string
	At     time.Time
	Bid    float64
	Ask    float64
}
