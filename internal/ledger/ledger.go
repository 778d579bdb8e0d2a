package ledger

import (
	"fmt"
	"log/slog"
	"slices"

	"github.com/roach88/docmig/internal/model"
)

// Step is one revision-stamped migration procedure.
//
// Apply reports whether it changed anything. Steps should be safe to
// re-invoke, but the ledger never runs a step twice against the same
// root because of the revision gate.
type Step struct {
	Revision int
	Name     string
	Apply    func(ctx *Context, root model.Root) (bool, error)
}

// Ledger is an immutable, ascending catalogue of steps.
type Ledger struct {
	steps   []Step
	logger  *slog.Logger
	ids     model.IDGenerator
	metrics *Metrics
}

// Option configures a Ledger.
type Option func(*Ledger)

// WithLogger sets the logger. Defaults to slog.Default().
func WithLogger(logger *slog.Logger) Option {
	return func(l *Ledger) {
		if logger != nil {
			l.logger = logger
		}
	}
}

// WithIDGenerator sets the GlobalID generator handed to steps.
// Defaults to model.UUIDGenerator{}.
func WithIDGenerator(ids model.IDGenerator) Option {
	return func(l *Ledger) {
		if ids != nil {
			l.ids = ids
		}
	}
}

// WithMetrics records run outcomes into m.
func WithMetrics(m *Metrics) Option {
	return func(l *Ledger) {
		l.metrics = m
	}
}

// New validates steps and returns a ledger sorted by revision.
//
// Revisions must be positive and unique; names must be non-empty and
// every step needs an Apply function.
func New(steps []Step, opts ...Option) (*Ledger, error) {
	sorted := slices.Clone(steps)
	slices.SortFunc(sorted, func(a, b Step) int { return a.Revision - b.Revision })

	for i, s := range sorted {
		switch {
		case s.Revision <= 0:
			return nil, fmt.Errorf("%w: %q has revision %d", ErrInvalidStep, s.Name, s.Revision)
		case s.Name == "":
			return nil, fmt.Errorf("%w: revision %d has no name", ErrInvalidStep, s.Revision)
		case s.Apply == nil:
			return nil, fmt.Errorf("%w: %q has no apply function", ErrInvalidStep, s.Name)
		case i > 0 && sorted[i-1].Revision == s.Revision:
			return nil, fmt.Errorf("%w: revision %d declared by %q and %q", ErrInvalidStep, s.Revision, sorted[i-1].Name, s.Name)
		}
	}

	l := &Ledger{
		steps:  sorted,
		logger: slog.Default(),
		ids:    model.UUIDGenerator{},
	}
	for _, opt := range opts {
		opt(l)
	}
	return l, nil
}

// MustNew is like New but panics on an invalid catalogue.
func MustNew(steps []Step, opts ...Option) *Ledger {
	l, err := New(steps, opts...)
	if err != nil {
		panic(err)
	}
	return l
}

// Steps returns the catalogue in ascending revision order.
func (l *Ledger) Steps() []Step {
	return slices.Clone(l.steps)
}

// Max returns the highest declared revision, or 0 for an empty ledger.
func (l *Ledger) Max() int {
	if len(l.steps) == 0 {
		return 0
	}
	return l.steps[len(l.steps)-1].Revision
}

// Until returns a ledger limited to steps with revision ≤ rev.
func (l *Ledger) Until(rev int) *Ledger {
	cp := *l
	cp.steps = nil
	for _, s := range l.steps {
		if s.Revision <= rev {
			cp.steps = append(cp.steps, s)
		}
	}
	return &cp
}

// Pending returns the steps Run would execute for a root at revision rev.
func (l *Ledger) Pending(rev int) []Step {
	var out []Step
	for _, s := range l.steps {
		if s.Revision > rev {
			out = append(out, s)
		}
	}
	return out
}

// Run migrates root and reports whether any step ran.
func (l *Ledger) Run(root model.Root) (bool, error) {
	rep, err := l.RunReport(root)
	if err != nil {
		return false, err
	}
	return rep.Ran(), nil
}

// RunReport migrates root and returns a report of the steps executed.
//
// On a step error the report covers the steps that completed, the root
// keeps the revision of the last completed step, and the error is a
// *StepError. Fixes a failing step already applied are not rolled back.
func (l *Ledger) RunReport(root model.Root) (*Report, error) {
	if root == nil {
		return nil, ErrNilRoot
	}
	from := root.Revision()
	rep := &Report{From: from, To: from, Steps: []StepResult{}}

	if from < 0 {
		return rep, fmt.Errorf("%w: %d", ErrNegativeRevision, from)
	}
	if from > l.Max() {
		l.logger.Warn("document revision is newer than engine", "revision", from, "max", l.Max())
		l.metrics.document(outcomeNewer)
		return rep, nil
	}

	for _, step := range l.steps {
		if step.Revision <= root.Revision() {
			continue
		}
		res, err := l.runStep(step, root)
		if err != nil {
			l.metrics.document(outcomeFailed)
			return rep, err
		}
		root.SetRevision(step.Revision)
		rep.To = step.Revision
		rep.Steps = append(rep.Steps, res)
		l.metrics.step(res)
	}

	if !rep.Ran() {
		l.metrics.document(outcomeCurrent)
		return rep, nil
	}

	root.MarkDirty()
	l.logger.Info("document structure updated",
		"from", rep.From,
		"to", rep.To,
		"jumps", len(rep.Steps),
		"fixes", rep.Fixes(),
	)
	l.metrics.document(outcomeMigrated)
	return rep, nil
}

func (l *Ledger) runStep(step Step, root model.Root) (StepResult, error) {
	ctx := NewContext(step, l.logger, l.ids)
	ctx.Logger().Debug("running migration step")

	changed, err := step.Apply(ctx, root)
	if err == nil && ctx.Buffer().Len() > 0 {
		err = fmt.Errorf("%w: %d pending", ErrUnappliedFixes, ctx.Buffer().Len())
	}
	if err != nil {
		ctx.Logger().Error("migration step failed", "error", err)
		return StepResult{}, &StepError{Revision: step.Revision, Name: step.Name, Err: err}
	}

	res := StepResult{
		Revision: step.Revision,
		Name:     step.Name,
		Changed:  changed,
		Fixes:    ctx.Applied(),
		Flagged:  ctx.Flagged(),
	}
	ctx.Logger().Debug("migration step done", "changed", changed, "fixes", res.Fixes, "flagged", res.Flagged)
	return res, nil
}
