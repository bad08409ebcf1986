// Package pipeline wires the audit end to end: table detection, role
// resolution, trade normalization, the three analyzers and the final
// threshold-gated verdict. One pass, no retries; the same store and
// configuration always produce the same summary.
package pipeline

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/sirupsen/logrus"

	"backtest-audit/internal/config"
	"backtest-audit/internal/decision"
	"backtest-audit/internal/domain"
	"backtest-audit/internal/guardrail"
	"backtest-audit/internal/normalize"
	"backtest-audit/internal/quotecheck"
	"backtest-audit/internal/reporting"
	"backtest-audit/internal/schema"
	"backtest-audit/internal/slippage"
	"backtest-audit/internal/storage"
)

// ErrNoTradesTable is the fatal no-viable-input condition: nothing in the
// store matches the trades table patterns.
var ErrNoTradesTable = errors.New("no trades table found in result store")

// Result bundles the summary with the full breach list backing the CSV
// export (the summary itself only embeds a capped sample).
type Result struct {
	Summary  *reporting.Summary
	Breaches []guardrail.Breach
}

// Auditor runs the full audit over one result store.
type Auditor struct {
	store   storage.ResultStore
	cfg     config.Config
	log     *logrus.Entry
	now     func() time.Time
	source  string
	backend string
}

// New creates an auditor over a result store.
func New(store storage.ResultStore, cfg config.Config) *Auditor {
	return &Auditor{
		store: store,
		cfg:   cfg,
		log:   logrus.WithField("component", "audit"),
		now:   func() time.Time { return time.Now().UTC() },
	}
}

// WithSource labels the summary with the store's backend kind and
// path/DSN reference.
func (a *Auditor) WithSource(backend, ref string) *Auditor {
	a.backend = backend
	a.source = ref
	return a
}

// WithClock sets a custom clock for deterministic output.
func (a *Auditor) WithClock(now func() time.Time) *Auditor {
	a.now = now
	return a
}

// WithLogger sets a custom log entry.
func (a *Auditor) WithLogger(log *logrus.Entry) *Auditor {
	a.log = log
	return a
}

// Run executes the audit. Returns ErrNoTradesTable when the store has no
// recognizable trades table; every other data deficiency degrades instead
// of failing.
func (a *Auditor) Run(ctx context.Context) (*Result, error) {
	tables, err := a.store.Tables(ctx)
	if err != nil {
		return nil, err
	}

	tradesTable, ok := schema.DetectTable(tables, schema.TradeTablePatterns)
	if !ok {
		return nil, ErrNoTradesTable
	}
	quotesTable, hasQuotes := schema.DetectTable(tables, schema.QuoteTablePatterns)
	barsTable, _ := schema.DetectTable(tables, schema.BarTablePatterns)

	a.log.WithFields(logrus.Fields{
		"trades": tradesTable,
		"quotes": quotesTable,
		"bars":   barsTable,
	}).Info("resolved result store tables")

	trades, tradeRoles, err := a.loadTrades(ctx, tradesTable)
	if err != nil {
		return nil, err
	}

	quoteIndex, err := a.loadQuotes(ctx, quotesTable, hasQuotes, tradeRoles)
	if err != nil {
		return nil, err
	}

	// The analyzers share only the read-only trade slice and quote index;
	// each writes to its own accumulator.
	var (
		guard     *guardrail.Result
		nbbo      *quotecheck.Summary
		scenarios []slippage.Scenario
	)
	var wg sync.WaitGroup
	wg.Add(3)
	go func() {
		defer wg.Done()
		guard = guardrail.Run(trades)
	}()
	go func() {
		defer wg.Done()
		if quoteIndex != nil {
			nbbo = quotecheck.Check(trades, quoteIndex, a.cfg.Execution.Tolerance)
		}
	}()
	go func() {
		defer wg.Done()
		scenarios = slippage.Stress(trades, a.cfg.Execution.SlippagePenaltyCents)
	}()
	wg.Wait()

	verdict := decision.NewEvaluator(a.cfg.Thresholds).Evaluate(decision.Input{
		BreachCount: guard.BreachCount(),
		NBBO:        nbbo,
		Scenarios:   scenarios,
	})

	a.log.WithFields(logrus.Fields{
		"decision": verdict.Outcome,
		"breaches": guard.BreachCount(),
		"trades":   len(trades),
	}).Info("audit complete")

	summary := &reporting.Summary{
		Store:                a.source,
		Backend:              a.backend,
		TradesTable:          tradesTable,
		QuotesTable:          quotesTable,
		BarsTable:            barsTable,
		GeneratedAt:          a.now(),
		DateRange:            a.cfg.DateRange,
		TradeCount:           len(trades),
		TradingDays:          len(guard.Daily),
		GuardrailBreachCount: guard.BreachCount(),
		BreachSamples:        reporting.SampleBreaches(guard.Breaches),
		NBBO:                 nbbo,
		Slippage:             scenarios,
		Thresholds:           a.cfg.Thresholds,
		Decision:             verdict.Outcome,
		Reasons:              verdict.Reasons,
		Criteria:             verdict.Criteria,
	}

	return &Result{Summary: summary, Breaches: guard.Breaches}, nil
}

// loadTrades resolves trade roles and bulk-reads the resolved columns.
func (a *Auditor) loadTrades(ctx context.Context, table string) ([]domain.Trade, schema.RoleMap, error) {
	columns, err := a.store.Columns(ctx, table)
	if err != nil {
		return nil, nil, err
	}
	roles := schema.ResolveTradeRoles(columns)

	selected := roles.TradeColumns()
	if len(selected) == 0 {
		// Nothing usable resolved; downstream aggregations will be empty.
		a.log.WithField("table", table).Warn("no trade columns resolved")
		return nil, roles, nil
	}

	rows, err := a.store.Rows(ctx, table, selected)
	if err != nil {
		return nil, nil, err
	}
	return normalize.FromRows(rows, roles), roles, nil
}

// loadQuotes builds the quote index when the check is eligible; a nil
// index means the NBBO check is skipped and reported as not computed.
func (a *Auditor) loadQuotes(ctx context.Context, table string, hasQuotes bool, tradeRoles schema.RoleMap) (*quotecheck.Index, error) {
	if !hasQuotes {
		a.log.Info("no quotes table; NBBO check skipped")
		return nil, nil
	}

	columns, err := a.store.Columns(ctx, table)
	if err != nil {
		return nil, err
	}
	roles := schema.ResolveQuoteRoles(columns)
	if !quotecheck.Eligible(tradeRoles, roles) {
		a.log.WithField("table", table).Warn("quote roles unresolved; NBBO check skipped")
		return nil, nil
	}

	rows, err := a.store.Rows(ctx, table, roles.QuoteColumns())
	if err != nil {
		return nil, err
	}
	idx := quotecheck.BuildIndex(rows, roles)
	a.log.WithFields(logrus.Fields{
		"table":   table,
		"symbols": idx.Symbols(),
	}).Info("quote index built")
	return idx, nil
}
