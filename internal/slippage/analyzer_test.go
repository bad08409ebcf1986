package slippage

import (
	"testing"
	"time"

	"backtest-audit/internal/domain"
)

func trade(day string, realized, qty, mult, fees float64) domain.Trade {
	ts, err := time.Parse(domain.DayLayout, day)
	if err != nil {
		panic(err)
	}
	return domain.Trade{
		Symbol:     "SPXW",
		EntryTime:  &ts,
		Realized:   realized,
		Quantity:   qty,
		Multiplier: mult,
		Fees:       fees,
	}
}

func TestStress_PenaltyMath(t *testing.T) {
	trades := []domain.Trade{
		trade("2024-03-11", 200, 2, 100, 5),   // slip 0.05*2*100 = 10, net 185
		trade("2024-03-12", -100, -1, 100, 5), // slip 0.05*1*100 = 5, net -110
	}
	scenarios := Stress(trades, []float64{0.05})

	if len(scenarios) != 1 {
		t.Fatalf("expected 1 scenario, got %d", len(scenarios))
	}
	s := scenarios[0]
	if s.WinningDays != 1 || s.LosingDays != 1 || s.TotalDays != 2 {
		t.Errorf("unexpected day counts: %+v", s)
	}
	if s.NetSum != 75.0 {
		t.Errorf("expected net sum 75.0, got %v", s.NetSum)
	}
	if s.ProfitFactor == nil {
		t.Fatal("expected a profit factor with a losing day present")
	}
	// 185 / 110 = 1.6818..., rounded to 1.68.
	if *s.ProfitFactor != 1.68 {
		t.Errorf("expected profit factor 1.68, got %v", *s.ProfitFactor)
	}
}

func TestStress_ProfitFactorNilWithoutLosingDays(t *testing.T) {
	trades := []domain.Trade{
		trade("2024-03-11", 200, 1, 100, 0),
		trade("2024-03-12", 300, 1, 100, 0),
	}
	scenarios := Stress(trades, []float64{0.05})

	if scenarios[0].ProfitFactor != nil {
		t.Errorf("profit factor must be nil with zero losing days, got %v", *scenarios[0].ProfitFactor)
	}
	if scenarios[0].WinningDays != 2 || scenarios[0].LosingDays != 0 {
		t.Errorf("unexpected day counts: %+v", scenarios[0])
	}
}

func TestStress_PenaltyFlipsDaySign(t *testing.T) {
	// A day barely profitable at 0.05 turns losing at 0.10.
	trades := []domain.Trade{
		trade("2024-03-11", 8, 1, 100, 0),
		trade("2024-03-12", 100, 1, 100, 0),
	}
	scenarios := Stress(trades, DefaultPenalties)

	if scenarios[0].LosingDays != 0 {
		t.Errorf("expected no losing days at 0.05, got %d", scenarios[0].LosingDays)
	}
	if scenarios[1].LosingDays != 1 {
		t.Errorf("expected 1 losing day at 0.10, got %d", scenarios[1].LosingDays)
	}
	if scenarios[1].ProfitFactor == nil {
		t.Fatal("expected a profit factor at 0.10")
	}
	// Day one nets 8-10 = -2, day two nets 90: 90/2 = 45.
	if *scenarios[1].ProfitFactor != 45.0 {
		t.Errorf("expected profit factor 45.0, got %v", *scenarios[1].ProfitFactor)
	}
}

func TestStress_AggregatesPerDayBeforeClassifying(t *testing.T) {
	// Two trades on the same day net out positive even though one loses.
	trades := []domain.Trade{
		trade("2024-03-11", -50, 1, 100, 0),
		trade("2024-03-11", 200, 1, 100, 0),
	}
	scenarios := Stress(trades, []float64{0.05})

	s := scenarios[0]
	if s.TotalDays != 1 || s.WinningDays != 1 || s.LosingDays != 0 {
		t.Errorf("expected one winning day, got %+v", s)
	}
	if s.NetSum != 140.0 {
		t.Errorf("expected net sum 140.0, got %v", s.NetSum)
	}
}

func TestStress_SkipsTradesWithoutEntryDate(t *testing.T) {
	trades := []domain.Trade{
		{Symbol: "SPXW", Realized: 500, Quantity: 1, Multiplier: 100},
		trade("2024-03-11", 100, 1, 100, 0),
	}
	scenarios := Stress(trades, []float64{0.05})

	if scenarios[0].TotalDays != 1 {
		t.Errorf("undated trade must be excluded, got %d days", scenarios[0].TotalDays)
	}
	if scenarios[0].NetSum != 95.0 {
		t.Errorf("expected net sum 95.0, got %v", scenarios[0].NetSum)
	}
}
