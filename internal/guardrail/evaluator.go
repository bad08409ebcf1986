// Package guardrail applies the reverse-Fibonacci daily-loss policy to the
// backtest's daily P&L series: the tolerated loss shrinks 500→300→200→100
// with each consecutive losing day and resets on any non-negative day.
package guardrail

import (
	"math"
	"sort"

	"backtest-audit/internal/domain"
)

const (
	// ProfitDayAllowance is informational: no breach is possible on a
	// non-negative day.
	ProfitDayAllowance = 500.0

	// epsilon guards the breach comparison against float rounding.
	epsilon = 1e-6

	maxStreak = 3
)

// lossLadder holds the tolerated loss per consecutive-losing-day streak.
// The ceiling never drops below the last entry.
var lossLadder = [...]float64{300, 200, 100}

// allowedLoss returns the tolerated loss for a losing day opened at the
// given streak.
func allowedLoss(streak int) float64 {
	if streak >= len(lossLadder) {
		return lossLadder[len(lossLadder)-1]
	}
	return lossLadder[streak]
}

// Breach records one day whose net loss exceeded the tolerated ceiling.
type Breach struct {
	Date         string  `json:"date"`
	NetPnL       float64 `json:"net_pnl"`
	AllowedLoss  float64 `json:"allowed_loss"`
	StreakAtOpen int     `json:"loss_streak_at_open"`
}

// Result is the full guardrail evaluation over one daily series.
type Result struct {
	Daily    map[string]float64
	Breaches []Breach
}

// BreachCount returns the number of breach days.
func (r *Result) BreachCount() int {
	return len(r.Breaches)
}

// DailyNet sums realized-minus-fees per entry calendar date. Trades with an
// unknown entry time are excluded.
func DailyNet(trades []domain.Trade) map[string]float64 {
	daily := make(map[string]float64)
	for i := range trades {
		day, ok := trades[i].EntryDate()
		if !ok {
			continue
		}
		daily[day] += trades[i].Realized - trades[i].Fees
	}
	return daily
}

// Evaluate folds the daily series in ascending date order through the loss
// streak state machine. The accumulator is local to the call, so Evaluate
// is safe to run alongside the other analyzers.
func Evaluate(daily map[string]float64) *Result {
	days := make([]string, 0, len(daily))
	for d := range daily {
		days = append(days, d)
	}
	sort.Strings(days)

	result := &Result{Daily: daily}
	streak := 0
	for _, day := range days {
		pnl := daily[day]
		if pnl >= 0 {
			streak = 0
			continue
		}

		allowed := allowedLoss(streak)
		if math.Abs(pnl) > allowed+epsilon {
			result.Breaches = append(result.Breaches, Breach{
				Date:         day,
				NetPnL:       round2(pnl),
				AllowedLoss:  allowed,
				StreakAtOpen: streak,
			})
		}
		streak++
		if streak > maxStreak {
			streak = maxStreak
		}
	}
	return result
}

// Run aggregates and evaluates in one pass.
func Run(trades []domain.Trade) *Result {
	return Evaluate(DailyNet(trades))
}

func round2(f float64) float64 {
	return math.Round(f*100) / 100
}
