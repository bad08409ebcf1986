package reporting

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"backtest-audit/internal/config"
	"backtest-audit/internal/decision"
	"backtest-audit/internal/guardrail"
	"backtest-audit/internal/quotecheck"
)

func sampleSummary() *Summary {
	within := 99.12
	mid := 41.0
	return &Summary{
		Store:       "results.db",
		Backend:     "sqlite",
		TradesTable: "trades",
		QuotesTable: "nbbo_quotes",
		GeneratedAt: time.Date(2025, 7, 31, 12, 0, 0, 0, time.UTC),
		DateRange:   config.DateRange{Start: "2005-01-01", End: "2025-07-31"},
		TradeCount:  120,
		NBBO: &quotecheck.Summary{
			Checked:   120,
			Within:    119,
			PctWithin: &within, PctMidOrBetter: &mid,
		},
		Thresholds: decision.DefaultThresholds(),
		Decision:   decision.OutcomeApprove,
		Criteria: []decision.CriterionResult{
			{Name: "Guardrail breaches", Threshold: "<= 0", Actual: "0", Pass: true},
			{Name: "NBBO coverage", Threshold: ">= 98.0%", Actual: "99.12%", Pass: true},
		},
	}
}

func TestRenderMarkdown(t *testing.T) {
	s := sampleSummary()
	out := RenderMarkdown(s)

	for _, want := range []string{
		"# Pre-Paper Audit — results.db",
		"**Decision:** APPROVE",
		"| Guardrail breaches | <= 0 | 0 | PASS |",
		"```json",
	} {
		if !strings.Contains(out, want) {
			t.Errorf("markdown missing %q", want)
		}
	}
	if strings.Contains(out, "**Reasons:**") {
		t.Error("approved report must not list reasons")
	}
}

func TestRenderMarkdown_RejectListsReasons(t *testing.T) {
	s := sampleSummary()
	s.Decision = decision.OutcomeReject
	s.Reasons = []string{"Guardrail breaches present", "NBBO coverage below threshold"}
	s.Criteria[0].Pass = false
	s.GuardrailBreachCount = 4

	out := RenderMarkdown(s)

	if !strings.Contains(out, "**Decision:** REJECT") {
		t.Error("missing REJECT decision line")
	}
	if !strings.Contains(out, "Guardrail breaches present; NBBO coverage below threshold") {
		t.Error("reasons must be joined with a semicolon")
	}
	if !strings.Contains(out, "| Guardrail breaches | <= 0 | 0 | FAIL |") {
		t.Error("failed criterion must render FAIL")
	}
	if !strings.Contains(out, "breaches.csv") {
		t.Error("report must point at the breach export")
	}
}

func TestRenderBreachCSV(t *testing.T) {
	out := RenderBreachCSV([]guardrail.Breach{
		{Date: "2024-03-12", NetPnL: -250.5, AllowedLoss: 200, StreakAtOpen: 1},
	})

	lines := strings.Split(strings.TrimRight(out, "\n"), "\n")
	if len(lines) != 2 {
		t.Fatalf("expected header plus 1 row, got %d lines", len(lines))
	}
	if lines[0] != "date,net_pnl,allowed_loss,loss_streak_at_open" {
		t.Errorf("unexpected header: %q", lines[0])
	}
	if lines[1] != "2024-03-12,-250.50,200,1" {
		t.Errorf("unexpected row: %q", lines[1])
	}
}

func TestRenderOutlierCSV_CapsRows(t *testing.T) {
	outliers := make([]quotecheck.Outlier, 0, maxOutlierRows+50)
	for i := 0; i < maxOutlierRows+50; i++ {
		outliers = append(outliers, quotecheck.Outlier{
			Symbol: "SPXW",
			Time:   "2024-03-15 09:31:00",
			Price:  1.12, Bid: 1.00, Ask: 1.10,
		})
	}
	out := RenderOutlierCSV(outliers)

	lines := strings.Split(strings.TrimRight(out, "\n"), "\n")
	if len(lines) != maxOutlierRows+1 {
		t.Errorf("expected %d lines, got %d", maxOutlierRows+1, len(lines))
	}
	if lines[0] != "symbol,time,price,bid,ask" {
		t.Errorf("unexpected header: %q", lines[0])
	}
	if lines[1] != "SPXW,2024-03-15 09:31:00,1.12,1,1.1" {
		t.Errorf("unexpected row: %q", lines[1])
	}
}

func TestSampleBreaches_Cap(t *testing.T) {
	breaches := make([]guardrail.Breach, 25)
	for i := range breaches {
		breaches[i].Date = fmt.Sprintf("2024-03-%02d", i+1)
	}
	if got := SampleBreaches(breaches); len(got) != maxBreachSamples {
		t.Errorf("expected %d samples, got %d", maxBreachSamples, len(got))
	}
	if got := SampleBreaches(breaches[:5]); len(got) != 5 {
		t.Errorf("short list must pass through, got %d", len(got))
	}
	if got := SampleBreaches(nil); got == nil {
		t.Error("empty sample must be an empty slice, not nil")
	}
}

func TestWriteArtifacts(t *testing.T) {
	dir := t.TempDir()
	s := sampleSummary()
	s.GuardrailBreachCount = 1
	breaches := []guardrail.Breach{
		{Date: "2024-03-12", NetPnL: -250, AllowedLoss: 200, StreakAtOpen: 1},
	}
	s.BreachSamples = breaches
	s.NBBO.Outliers = []quotecheck.Outlier{
		{Symbol: "SPXW", Time: "2024-03-15 09:31:00", Price: 1.12, Bid: 1.00, Ask: 1.10},
	}

	if err := WriteArtifacts(dir, s, breaches); err != nil {
		t.Fatal(err)
	}

	data, err := os.ReadFile(filepath.Join(dir, SummaryFile))
	if err != nil {
		t.Fatal(err)
	}
	var decoded map[string]any
	if err := json.Unmarshal(data, &decoded); err != nil {
		t.Fatalf("summary is not valid JSON: %v", err)
	}
	if decoded["decision"] != "APPROVE" {
		t.Errorf("unexpected decision in summary: %v", decoded["decision"])
	}

	for _, name := range []string{ReportFile, BreachFile, OutlierFile} {
		if _, err := os.Stat(filepath.Join(dir, name)); err != nil {
			t.Errorf("missing artifact %s: %v", name, err)
		}
	}
}

func TestWriteArtifacts_NoFindingsSkipsCSVs(t *testing.T) {
	dir := t.TempDir()
	if err := WriteArtifacts(dir, sampleSummary(), nil); err != nil {
		t.Fatal(err)
	}

	if _, err := os.Stat(filepath.Join(dir, BreachFile)); !os.IsNotExist(err) {
		t.Error("breach CSV must not be written without breaches")
	}
	if _, err := os.Stat(filepath.Join(dir, OutlierFile)); !os.IsNotExist(err) {
		t.Error("outlier CSV must not be written without outliers")
	}
}
