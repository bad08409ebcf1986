package reporting

import (
	"fmt"
	"strings"

	"backtest-audit/internal/guardrail"
	"backtest-audit/internal/quotecheck"
)

// maxOutlierRows caps the NBBO outlier CSV export.
const maxOutlierRows = 500

// RenderBreachCSV renders the full guardrail breach list as CSV.
func RenderBreachCSV(breaches []guardrail.Breach) string {
	var sb strings.Builder
	sb.WriteString("date,net_pnl,allowed_loss,loss_streak_at_open\n")
	for _, b := range breaches {
		sb.WriteString(fmt.Sprintf("%s,%.2f,%g,%d\n",
			b.Date, b.NetPnL, b.AllowedLoss, b.StreakAtOpen))
	}
	return sb.String()
}

// RenderOutlierCSV renders the NBBO outlier sample as CSV, capped at
// maxOutlierRows rows.
func RenderOutlierCSV(outliers []quotecheck.Outlier) string {
	if len(outliers) > maxOutlierRows {
		outliers = outliers[:maxOutlierRows]
	}

	var sb strings.Builder
	sb.WriteString("symbol,time,price,bid,ask\n")
	for _, o := range outliers {
		sb.WriteString(fmt.Sprintf("%s,%s,%g,%g,%g\n",
			o.Symbol, o.Time, o.Price, o.Bid, o.Ask))
	}
	return sb.String()
}
