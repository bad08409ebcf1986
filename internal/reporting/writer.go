package reporting

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"backtest-audit/internal/guardrail"
)

// Artifact file names written under the output directory.
const (
	SummaryFile = "audit_summary.json"
	ReportFile  = "audit_report.md"
	BreachFile  = "breaches.csv"
	OutlierFile = "nbbo_outliers_sample.csv"
)

// WriteArtifacts writes the summary document, the Markdown report and,
// when findings exist, the breach and outlier CSV exports.
func WriteArtifacts(dir string, s *Summary, breaches []guardrail.Breach) error {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("create output dir: %w", err)
	}

	data, err := json.MarshalIndent(s, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal summary: %w", err)
	}
	if err := writeFile(dir, SummaryFile, string(data)+"\n"); err != nil {
		return err
	}

	if err := writeFile(dir, ReportFile, RenderMarkdown(s)); err != nil {
		return err
	}

	if len(breaches) > 0 {
		if err := writeFile(dir, BreachFile, RenderBreachCSV(breaches)); err != nil {
			return err
		}
	}
	if s.NBBO != nil && len(s.NBBO.Outliers) > 0 {
		if err := writeFile(dir, OutlierFile, RenderOutlierCSV(s.NBBO.Outliers)); err != nil {
			return err
		}
	}
	return nil
}

func writeFile(dir, name, content string) error {
	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		return fmt.Errorf("write %s: %w", name, err)
	}
	return nil
}
