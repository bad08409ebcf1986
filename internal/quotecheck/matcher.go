// Package quotecheck verifies that recorded fill prices are plausible
// against the best bid/ask in effect at entry time. Each trade is matched
// to the latest quote at or before its entry instant; no interpolation and
// no look-ahead.
package quotecheck

import (
	"math"
	"sort"
	"time"

	"backtest-audit/internal/domain"
	"backtest-audit/internal/normalize"
	"backtest-audit/internal/schema"
	"backtest-audit/internal/storage"
)

// DefaultTolerance is the absolute price tolerance for the NBBO band.
const DefaultTolerance = 0.01

// maxOutliers caps the collected outlier diagnostics.
const maxOutliers = 500

// maxSampleOutliers caps the outlier sample embedded in the summary.
const maxSampleOutliers = 20

// Eligible reports whether the check can run at all: the quotes table must
// resolve all four quote roles and the trades table must resolve symbol,
// entry time and entry price.
func Eligible(tradeRoles, quoteRoles schema.RoleMap) bool {
	return quoteRoles.Has(schema.RoleQuoteTime, schema.RoleSymbol, schema.RoleBid, schema.RoleAsk) &&
		tradeRoles.Has(schema.RoleSymbol, schema.RoleEntryTime, schema.RoleEntryPrice)
}

// Index holds per-symbol quote series sorted by time ascending.
// Built once, read-only afterwards.
type Index struct {
	bySymbol map[string][]domain.Quote
}

// BuildIndex normalizes raw quote rows into a per-symbol, time-sorted
// index. Rows with an unparseable timestamp or empty symbol are dropped.
func BuildIndex(rows []storage.Row, roles schema.RoleMap) *Index {
	idx := &Index{bySymbol: make(map[string][]domain.Quote)}
	for _, row := range rows {
		sym := normalize.String(row[roles.Column(schema.RoleSymbol)])
		at := normalize.ParseTimestamp(row[roles.Column(schema.RoleQuoteTime)])
		if sym == "" || at == nil {
			continue
		}
		idx.bySymbol[sym] = append(idx.bySymbol[sym], domain.Quote{
			Symbol: sym,
			At:     *at,
			Bid:    normalize.Float(row[roles.Column(schema.RoleBid)], 0),
			Ask:    normalize.Float(row[roles.Column(schema.RoleAsk)], 0),
		})
	}
	for sym := range idx.bySymbol {
		qs := idx.bySymbol[sym]
		sort.SliceStable(qs, func(i, j int) bool { return qs[i].At.Before(qs[j].At) })
	}
	return idx
}

// Symbols returns the number of indexed symbols.
func (idx *Index) Symbols() int {
	return len(idx.bySymbol)
}

// LastAtOrBefore returns the latest quote for symbol whose timestamp is not
// after at. ok is false when no such quote exists.
func (idx *Index) LastAtOrBefore(symbol string, at time.Time) (domain.Quote, bool) {
	qs := idx.bySymbol[symbol]
	// First index strictly after the target.
	i := sort.Search(len(qs), func(i int) bool { return qs[i].At.After(at) })
	if i == 0 {
		return domain.Quote{}, false
	}
	return qs[i-1], true
}

// Outlier is one fill whose price fell outside the NBBO band.
type Outlier struct {
	Symbol string  `json:"symbol"`
	Time   string  `json:"time"`
	Price  float64 `json:"price"`
	Bid    float64 `json:"bid"`
	Ask    float64 `json:"ask"`
}

// Summary aggregates the NBBO plausibility check.
type Summary struct {
	Checked        int       `json:"trades_checked"`
	Within         int       `json:"within_band"`
	PctWithin      *float64  `json:"pct_within"`
	PctMidOrBetter *float64  `json:"pct_at_or_above_mid"`
	SampleOutliers []Outlier `json:"sample_outliers"`

	// Outliers holds the full capped diagnostic list for CSV export.
	Outliers []Outlier `json:"-"`
}

// Check classifies each trade's entry price against its nearest preceding
// quote. Trades with no symbol, no entry time or no preceding quote are
// excluded from the check, not failed.
func Check(trades []domain.Trade, idx *Index, tolerance float64) *Summary {
	s := &Summary{}
	midOrBetter := 0

	for i := range trades {
		t := &trades[i]
		if t.Symbol == "" || t.EntryTime == nil {
			continue
		}
		q, ok := idx.LastAtOrBefore(t.Symbol, *t.EntryTime)
		if !ok {
			continue
		}

		s.Checked++
		if t.EntryPrice >= q.Bid-tolerance && t.EntryPrice <= q.Ask+tolerance {
			s.Within++
		} else if len(s.Outliers) < maxOutliers {
			s.Outliers = append(s.Outliers, Outlier{
				Symbol: t.Symbol,
				Time:   t.EntryTime.Format("2006-01-02 15:04:05"),
				Price:  t.EntryPrice,
				Bid:    q.Bid,
				Ask:    q.Ask,
			})
		}

		// ask < bid marks a corrupt quote; skip the mid comparison but keep
		// the trade in the checked denominator.
		if q.Ask >= q.Bid && t.EntryPrice >= (q.Bid+q.Ask)/2 {
			midOrBetter++
		}
	}

	if s.Checked > 0 {
		within := round2(100 * float64(s.Within) / float64(s.Checked))
		mid := round2(100 * float64(midOrBetter) / float64(s.Checked))
		s.PctWithin = &within
		s.PctMidOrBetter = &mid
	}
	if len(s.Outliers) > maxSampleOutliers {
		s.SampleOutliers = s.Outliers[:maxSampleOutliers]
	} else {
		s.SampleOutliers = s.Outliers
	}
	return s
}

func round2(f float64) float64 {
	return math.Round(f*100) / 100
}
