package ledger

// Report describes one Run.
type Report struct {
	From  int          `json:"from"`
	To    int          `json:"to"`
	Steps []StepResult `json:"steps"`
}

// StepResult describes one executed step.
type StepResult struct {
	Revision int    `json:"revision"`
	Name     string `json:"name"`
	Changed  bool   `json:"changed"`
	Fixes    int    `json:"fixes"`
	Flagged  int    `json:"flagged,omitempty"`
}

// Ran reports whether at least one step executed.
func (r *Report) Ran() bool {
	return r != nil && len(r.Steps) > 0
}

// Fixes returns the total number of fixes applied across steps.
func (r *Report) Fixes() int {
	if r == nil {
		return 0
	}
	n := 0
	for _, s := range r.Steps {
		n += s.Fixes
	}
	return n
}

// Flagged returns the number of items steps reported without fixing.
func (r *Report) Flagged() int {
	if r == nil {
		return 0
	}
	n := 0
	for _, s := range r.Steps {
		n += s.Flagged
	}
	return n
}

// Changed returns the names of the steps that reported a change.
func (r *Report) Changed() []string {
	if r == nil {
		return nil
	}
	var out []string
	for _, s := range r.Steps {
		if s.Changed {
			out = append(out, s.Name)
		}
	}
	return out
}
