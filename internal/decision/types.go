package decision

// Outcome is the terminal audit verdict.
type Outcome string

const (
	OutcomeApprove Outcome = "APPROVE"
	OutcomeReject  Outcome = "REJECT"
)

// Thresholds gate the verdict. The zero value rejects everything; use
// DefaultThresholds as the baseline and override from configuration.
type Thresholds struct {
	GuardrailBreachesMax int     `yaml:"guardrail_breaches_max" json:"guardrail_breaches_max"`
	NBBOWithinPctMin     float64 `yaml:"nbbo_within_pct_min" json:"nbbo_within_pct_min"`
	MidRateMaxPct        float64 `yaml:"mid_rate_max_pct" json:"mid_rate_max_pct"`
	PF5cMin              float64 `yaml:"pf_5c_min" json:"pf_5c_min"`
	PF10cMin             float64 `yaml:"pf_10c_min" json:"pf_10c_min"`
}

// DefaultThresholds returns the standard pre-paper gate.
func DefaultThresholds() Thresholds {
	return Thresholds{
		GuardrailBreachesMax: 0,
		NBBOWithinPctMin:     98.0,
		MidRateMaxPct:        60.0,
		PF5cMin:              1.30,
		PF10cMin:             1.15,
	}
}

// CriterionResult records one gate check for the report.
type CriterionResult struct {
	Name      string `json:"name"`
	Threshold string `json:"threshold"`
	Actual    string `json:"actual"`
	Pass      bool   `json:"pass"`
}

// Verdict is the final decision with its supporting reasons. A REJECT
// always carries at least one reason; the verdict is never revised within
// a run.
type Verdict struct {
	Outcome  Outcome           `json:"decision"`
	Reasons  []string          `json:"reasons"`
	Criteria []CriterionResult `json:"criteria"`
}
