// Package config loads the audit configuration document. Unknown keys are
// ignored; recognized keys override the defaults (shallow merge).
package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"backtest-audit/internal/decision"
	"backtest-audit/internal/quotecheck"
	"backtest-audit/internal/slippage"
)

// Config holds the recognized audit options.
type Config struct {
	DateRange  DateRange           `yaml:"date_range" json:"date_range"`
	Thresholds decision.Thresholds `yaml:"thresholds" json:"thresholds"`
	Execution  Execution           `yaml:"execution" json:"execution"`
}

// DateRange bounds are informational; they are reported, not enforced as
// data filters.
type DateRange struct {
	Start string `yaml:"start" json:"start"`
	End   string `yaml:"end" json:"end"`
}

// Execution holds the analyzer tuning knobs.
type Execution struct {
	// Tolerance is the absolute price tolerance for the NBBO band.
	Tolerance float64 `yaml:"tolerance" json:"tolerance"`

	// SlippagePenaltyCents are the per-contract stress levels.
	SlippagePenaltyCents []float64 `yaml:"slippage_penalty_cents" json:"slippage_penalty_cents"`
}

// Default returns the standard audit configuration.
func Default() Config {
	return Config{
		DateRange: DateRange{
			Start: "2005-01-01",
			End:   "2025-07-31",
		},
		Thresholds: decision.DefaultThresholds(),
		Execution: Execution{
			Tolerance:            quotecheck.DefaultTolerance,
			SlippagePenaltyCents: append([]float64(nil), slippage.DefaultPenalties...),
		},
	}
}

// Load reads a YAML configuration file over the defaults. An empty path
// returns the defaults unchanged.
func Load(path string) (Config, error) {
	cfg := Default()
	if path == "" {
		return cfg, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return cfg, fmt.Errorf("read config: %w", err)
	}
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return cfg, fmt.Errorf("parse config: %w", err)
	}

	// An explicitly emptied penalty list would make the stress analyzer a
	// no-op; fall back to the defaults instead.
	if len(cfg.Execution.SlippagePenaltyCents) == 0 {
		cfg.Execution.SlippagePenaltyCents = append([]float64(nil), slippage.DefaultPenalties...)
	}
	return cfg, nil
}
