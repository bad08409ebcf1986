// Package slippage stresses the backtest's profitability under synthetic
// per-contract cost penalties: each trade's contribution is reduced by
// penalty × |qty| × multiplier before the daily P&L is re-aggregated.
package slippage

import (
	"math"

	"backtest-audit/internal/domain"
)

// DefaultPenalties are the standard per-contract stress levels, in the same
// currency unit as prices.
var DefaultPenalties = []float64{0.05, 0.10}

// Scenario reports profitability under one per-contract cost penalty.
type Scenario struct {
	Penalty      float64  `json:"penalty"`
	ProfitFactor *float64 `json:"profit_factor"` // nil when there are no losing days
	WinningDays  int      `json:"winning_days"`
	LosingDays   int      `json:"losing_days"`
	TotalDays    int      `json:"total_days"`
	NetSum       float64  `json:"net_sum"`
}

// Stress recomputes the daily P&L under each penalty level. Each scenario
// works on its own accumulator, so scenarios are independent.
func Stress(trades []domain.Trade, penalties []float64) []Scenario {
	scenarios := make([]Scenario, 0, len(penalties))
	for _, p := range penalties {
		scenarios = append(scenarios, stressOne(trades, p))
	}
	return scenarios
}

func stressOne(trades []domain.Trade, penalty float64) Scenario {
	daily := make(map[string]float64)
	for i := range trades {
		t := &trades[i]
		day, ok := t.EntryDate()
		if !ok {
			continue
		}
		slip := penalty * math.Abs(t.Quantity) * t.Multiplier
		daily[day] += t.Realized - t.Fees - slip
	}

	s := Scenario{Penalty: penalty, TotalDays: len(daily)}
	grossWin := 0.0
	grossLoss := 0.0
	sum := 0.0
	for _, net := range daily {
		sum += net
		switch {
		case net > 0:
			s.WinningDays++
			grossWin += net
		case net < 0:
			s.LosingDays++
			grossLoss += -net
		}
	}
	s.NetSum = round2(sum)

	// Profit factor over daily aggregates; undefined without losing days.
	if grossLoss > 0 {
		pf := round2(grossWin / grossLoss)
		s.ProfitFactor = &pf
	}
	return s
}

func round2(f float64) float64 {
	return math.Round(f*100) / 100
}
