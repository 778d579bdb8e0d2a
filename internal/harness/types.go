package harness

import (
	"github.com/roach88/docmig/internal/doc"
	"github.com/roach88/docmig/internal/ledger"
)

// StepEvent records one migration step executed by a scenario.
type StepEvent struct {
	Revision int    `json:"revision"`
	Name     string `json:"name"`
	Changed  bool   `json:"changed"`
	Fixes    int    `json:"fixes"`
	Flagged  int    `json:"flagged"`
}

// Result is the outcome of a scenario execution.
type Result struct {
	// Pass indicates that every assertion held.
	Pass bool `json:"pass"`

	// From and To are the document revisions before and after the run.
	From int `json:"from"`
	To   int `json:"to"`

	// Trace lists the executed steps in revision order.
	Trace []StepEvent `json:"trace"`

	// Errors contains assertion failures. Empty if Pass is true.
	Errors []string `json:"errors,omitempty"`

	// Document is the migrated graph.
	Document *doc.Domain `json:"-"`
}

// NewResult creates a new passing result.
func NewResult() *Result {
	return &Result{
		Pass:   true,
		Trace:  []StepEvent{},
		Errors: []string{},
	}
}

// AddError adds an assertion failure and marks the result as failed.
func (r *Result) AddError(err string) {
	r.Errors = append(r.Errors, err)
	r.Pass = false
}

// AddStep appends a step outcome to the trace.
func (r *Result) AddStep(s ledger.StepResult) {
	r.Trace = append(r.Trace, StepEvent{
		Revision: s.Revision,
		Name:     s.Name,
		Changed:  s.Changed,
		Fixes:    s.Fixes,
		Flagged:  s.Flagged,
	})
}

// Fixes returns the total number of fixes in the trace.
func (r *Result) Fixes() int {
	n := 0
	for _, e := range r.Trace {
		n += e.Fixes
	}
	return n
}

// Flagged returns the total number of flagged items in the trace.
func (r *Result) Flagged() int {
	n := 0
	for _, e := range r.Trace {
		n += e.Flagged
	}
	return n
}

// Changed returns the names of the steps that reported a change.
func (r *Result) Changed() []string {
	out := []string{}
	for _, e := range r.Trace {
		if e.Changed {
			out = append(out, e.Name)
		}
	}
	return out
}
