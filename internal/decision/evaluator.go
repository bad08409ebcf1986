package decision

import (
	"fmt"
	"math"

	"backtest-audit/internal/quotecheck"
	"backtest-audit/internal/slippage"
)

// Input carries the analyzer outputs the verdict is gated on.
type Input struct {
	BreachCount int

	// NBBO is nil when the quote check could not run. A skipped check is
	// reported as not computed, never as a failure.
	NBBO *quotecheck.Summary

	Scenarios []slippage.Scenario
}

// Evaluator applies thresholds to analyzer outputs.
type Evaluator struct {
	thresholds Thresholds
}

// NewEvaluator creates an evaluator with the given thresholds.
func NewEvaluator(t Thresholds) *Evaluator {
	return &Evaluator{thresholds: t}
}

// Reason strings attached to a REJECT verdict.
const (
	reasonBreaches   = "Guardrail breaches present"
	reasonNBBOLow    = "NBBO coverage below threshold"
	reasonMidTooHigh = "Mid-or-better rate too high (unrealistic fills)"
	reasonPF5c       = "PF under $0.05 slippage below threshold"
	reasonPF10c      = "PF under $0.10 slippage below threshold"
)

// Evaluate produces the final verdict. The decision starts at APPROVE and
// flips to REJECT cumulatively: every failed gate appends its own reason.
func (e *Evaluator) Evaluate(in Input) *Verdict {
	// Reasons starts empty, not nil, so an APPROVE verdict marshals as
	// "reasons": [].
	v := &Verdict{Outcome: OutcomeApprove, Reasons: []string{}}
	th := e.thresholds

	breachPass := in.BreachCount <= th.GuardrailBreachesMax
	v.record(CriterionResult{
		Name:      "Guardrail breaches",
		Threshold: fmt.Sprintf("<= %d", th.GuardrailBreachesMax),
		Actual:    fmt.Sprintf("%d", in.BreachCount),
		Pass:      breachPass,
	}, reasonBreaches)

	e.evaluateNBBO(v, in.NBBO)
	e.evaluateProfitFactor(v, in.Scenarios, 0.05, th.PF5cMin, "PF @ $0.05 slippage", reasonPF5c)
	e.evaluateProfitFactor(v, in.Scenarios, 0.10, th.PF10cMin, "PF @ $0.10 slippage", reasonPF10c)

	return v
}

func (e *Evaluator) evaluateNBBO(v *Verdict, nbbo *quotecheck.Summary) {
	th := e.thresholds

	if nbbo == nil || nbbo.PctWithin == nil {
		v.record(CriterionResult{
			Name:      "NBBO coverage",
			Threshold: fmt.Sprintf(">= %.1f%%", th.NBBOWithinPctMin),
			Actual:    "not computed",
			Pass:      true,
		}, "")
		v.record(CriterionResult{
			Name:      "Mid-or-better rate",
			Threshold: fmt.Sprintf("<= %.1f%%", th.MidRateMaxPct),
			Actual:    "not computed",
			Pass:      true,
		}, "")
		return
	}

	v.record(CriterionResult{
		Name:      "NBBO coverage",
		Threshold: fmt.Sprintf(">= %.1f%%", th.NBBOWithinPctMin),
		Actual:    fmt.Sprintf("%.2f%%", *nbbo.PctWithin),
		Pass:      *nbbo.PctWithin >= th.NBBOWithinPctMin,
	}, reasonNBBOLow)

	// Too many fills at or better than midpoint is itself implausible:
	// real fills cluster inside the spread, not beyond the favorable edge.
	midPass := true
	actual := "not computed"
	if nbbo.PctMidOrBetter != nil {
		actual = fmt.Sprintf("%.2f%%", *nbbo.PctMidOrBetter)
		midPass = *nbbo.PctMidOrBetter <= th.MidRateMaxPct
	}
	v.record(CriterionResult{
		Name:      "Mid-or-better rate",
		Threshold: fmt.Sprintf("<= %.1f%%", th.MidRateMaxPct),
		Actual:    actual,
		Pass:      midPass,
	}, reasonMidTooHigh)
}

func (e *Evaluator) evaluateProfitFactor(v *Verdict, scenarios []slippage.Scenario, penalty, min float64, name, reason string) {
	scenario := findScenario(scenarios, penalty)

	if scenario == nil || scenario.ProfitFactor == nil {
		// No losing days or the penalty level was not run: nothing to gate.
		v.record(CriterionResult{
			Name:      name,
			Threshold: fmt.Sprintf(">= %.2f", min),
			Actual:    "not computed",
			Pass:      true,
		}, "")
		return
	}

	v.record(CriterionResult{
		Name:      name,
		Threshold: fmt.Sprintf(">= %.2f", min),
		Actual:    fmt.Sprintf("%.2f", *scenario.ProfitFactor),
		Pass:      *scenario.ProfitFactor >= min,
	}, reason)
}

func findScenario(scenarios []slippage.Scenario, penalty float64) *slippage.Scenario {
	for i := range scenarios {
		if math.Abs(scenarios[i].Penalty-penalty) < 1e-9 {
			return &scenarios[i]
		}
	}
	return nil
}

// record appends the criterion and, on failure, flips the verdict and
// attaches the reason.
func (v *Verdict) record(c CriterionResult, reason string) {
	v.Criteria = append(v.Criteria, c)
	if !c.Pass && reason != "" {
		v.Outcome = OutcomeReject
		v.Reasons = append(v.Reasons, reason)
	}
}
