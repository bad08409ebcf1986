package reporting

import (
	"time"

	"backtest-audit/internal/config"
	"backtest-audit/internal/decision"
	"backtest-audit/internal/guardrail"
	"backtest-audit/internal/quotecheck"
	"backtest-audit/internal/slippage"
)

// maxBreachSamples caps the breach records embedded in the summary; the
// full list goes to the CSV export.
const maxBreachSamples = 20

// Summary is the machine-readable audit verdict document. Immutable once
// produced; the exit status does not depend on the decision.
type Summary struct {
	Store   string `json:"store"`
	Backend string `json:"backend"`

	TradesTable string `json:"trades_table"`
	QuotesTable string `json:"quotes_table,omitempty"`
	BarsTable   string `json:"bars_table,omitempty"`

	GeneratedAt time.Time        `json:"generated_at"`
	DateRange   config.DateRange `json:"date_range"`

	TradeCount int `json:"trade_count"`

	// TradingDays counts distinct entry dates in the daily P&L series.
	TradingDays int `json:"trading_days"`

	GuardrailBreachCount int                `json:"guardrail_breach_count"`
	BreachSamples        []guardrail.Breach `json:"breach_samples"`

	// NBBO is null when the quote check was skipped.
	NBBO *quotecheck.Summary `json:"nbbo_summary"`

	Slippage []slippage.Scenario `json:"slippage_sensitivity"`

	Thresholds decision.Thresholds        `json:"thresholds"`
	Decision   decision.Outcome           `json:"decision"`
	Reasons    []string                   `json:"reasons"`
	Criteria   []decision.CriterionResult `json:"criteria"`
}

// SampleBreaches returns at most maxBreachSamples breach records for
// embedding in the summary. Never nil, so the summary marshals an empty
// list rather than null.
func SampleBreaches(breaches []guardrail.Breach) []guardrail.Breach {
	if len(breaches) == 0 {
		return []guardrail.Breach{}
	}
	if len(breaches) > maxBreachSamples {
		return breaches[:maxBreachSamples]
	}
	return breaches
}
