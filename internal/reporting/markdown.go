package reporting

import (
	"encoding/json"
	"fmt"
	"strings"
	"time"
)

// RenderMarkdown renders the audit summary as a human-readable report.
func RenderMarkdown(s *Summary) string {
	var sb strings.Builder

	sb.WriteString(fmt.Sprintf("# Pre-Paper Audit — %s\n\n", s.Store))
	sb.WriteString(fmt.Sprintf("Generated: %s\n\n", s.GeneratedAt.Format(time.RFC3339)))
	sb.WriteString(fmt.Sprintf("**Decision:** %s\n\n", s.Decision))
	if len(s.Reasons) > 0 {
		sb.WriteString("**Reasons:** " + strings.Join(s.Reasons, "; ") + "\n\n")
	}

	sb.WriteString("## Gate Checks\n\n")
	sb.WriteString("| Check | Threshold | Actual | Status |\n")
	sb.WriteString("|-------|-----------|--------|--------|\n")
	for _, c := range s.Criteria {
		status := "FAIL"
		if c.Pass {
			status = "PASS"
		}
		sb.WriteString(fmt.Sprintf("| %s | %s | %s | %s |\n",
			c.Name, c.Threshold, c.Actual, status))
	}
	sb.WriteString("\n")

	sb.WriteString("## Summary\n\n")
	sb.WriteString("```json\n")
	if data, err := json.MarshalIndent(s, "", "  "); err == nil {
		sb.Write(data)
		sb.WriteString("\n")
	}
	sb.WriteString("```\n")

	if s.GuardrailBreachCount > 0 {
		sb.WriteString(fmt.Sprintf("\nGuardrail breaches: %d (see breaches.csv)\n", s.GuardrailBreachCount))
	}
	if s.NBBO != nil && len(s.NBBO.Outliers) > 0 {
		sb.WriteString(fmt.Sprintf("\nNBBO outliers sample: %d rows in nbbo_outliers_sample.csv\n",
			min(len(s.NBBO.Outliers), maxOutlierRows)))
	}

	return sb.String()
}
