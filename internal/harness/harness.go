package harness

import (
	"fmt"
	"io"
	"log/slog"

	"github.com/roach88/docmig/internal/doc"
	"github.com/roach88/docmig/internal/ledger"
	"github.com/roach88/docmig/internal/steps"
	"github.com/roach88/docmig/internal/testutil"
)

// Harness executes migration scenarios.
type Harness struct {
	logger *slog.Logger
}

// Option configures a Harness.
type Option func(*Harness)

// WithLogger routes ledger and step logs to logger.
func WithLogger(logger *slog.Logger) Option {
	return func(h *Harness) {
		if logger != nil {
			h.logger = logger
		}
	}
}

// New creates a harness. Logs are discarded unless WithLogger is given.
func New(opts ...Option) *Harness {
	h := &Harness{
		logger: slog.New(slog.NewTextHandler(io.Discard, nil)),
	}
	for _, opt := range opts {
		opt(h)
	}
	return h
}

// Run executes a scenario with a default harness.
func Run(scenario *Scenario) (*Result, error) {
	return New().Run(scenario)
}

// Run decodes the scenario's document, migrates it and evaluates the
// assertions.
//
// The returned error covers execution failures only (unreadable
// document, failed step). Assertion failures are collected in the
// result.
func (h *Harness) Run(scenario *Scenario) (*Result, error) {
	d, _, err := doc.DecodeFile(scenario.Document)
	if err != nil {
		return nil, fmt.Errorf("scenario %q: %w", scenario.Name, err)
	}

	start := scenario.IDStart
	if start == 0 {
		start = DefaultIDStart
	}
	l := steps.NewLedger(
		ledger.WithLogger(h.logger),
		ledger.WithIDGenerator(testutil.NewSequentialIDs(start)),
	)
	if scenario.Until > 0 {
		l = l.Until(scenario.Until)
	}

	report, err := l.RunReport(d)
	if err != nil {
		return nil, fmt.Errorf("scenario %q: %w", scenario.Name, err)
	}

	result := NewResult()
	result.From = report.From
	result.To = report.To
	result.Document = d
	for _, s := range report.Steps {
		result.AddStep(s)
	}

	h.logger.Info("scenario migrated",
		"scenario", scenario.Name,
		"from", report.From,
		"to", report.To,
		"fixes", report.Fixes(),
		"flagged", report.Flagged(),
	)

	if err := evaluateAssertions(result, scenario.Assertions); err != nil {
		return nil, fmt.Errorf("scenario %q: %w", scenario.Name, err)
	}

	return result, nil
}
