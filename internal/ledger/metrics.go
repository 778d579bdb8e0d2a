package ledger

import (
	"fmt"
	"strconv"

	"github.com/prometheus/client_golang/prometheus"
)

// Document outcomes recorded by Metrics.
const (
	outcomeMigrated = "migrated"
	outcomeCurrent  = "current"
	outcomeNewer    = "newer"
	outcomeFailed   = "failed"
)

// Metrics counts ledger activity. A nil *Metrics records nothing.
type Metrics struct {
	documents *prometheus.CounterVec
	steps     *prometheus.CounterVec
	fixes     *prometheus.CounterVec
	flagged   *prometheus.CounterVec
}

// NewMetrics creates the ledger counters and registers them with reg.
func NewMetrics(reg prometheus.Registerer) (*Metrics, error) {
	m := &Metrics{
		documents: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "docmig",
			Name:      "documents_total",
			Help:      "Documents passed through the migration ledger, by outcome.",
		}, []string{"outcome"}),
		steps: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "docmig",
			Name:      "steps_run_total",
			Help:      "Migration steps executed, by step and whether they changed the document.",
		}, []string{"revision", "step", "changed"}),
		fixes: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "docmig",
			Name:      "fixes_applied_total",
			Help:      "Deferred fixes applied, by step.",
		}, []string{"revision", "step"}),
		flagged: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "docmig",
			Name:      "items_flagged_total",
			Help:      "Items detected but left unrepaired, by step.",
		}, []string{"revision", "step"}),
	}
	for _, c := range []prometheus.Collector{m.documents, m.steps, m.fixes, m.flagged} {
		if err := reg.Register(c); err != nil {
			return nil, fmt.Errorf("register ledger metrics: %w", err)
		}
	}
	return m, nil
}

func (m *Metrics) document(outcome string) {
	if m == nil {
		return
	}
	m.documents.WithLabelValues(outcome).Inc()
}

func (m *Metrics) step(res StepResult) {
	if m == nil {
		return
	}
	rev := strconv.Itoa(res.Revision)
	m.steps.WithLabelValues(rev, res.Name, strconv.FormatBool(res.Changed)).Inc()
	m.fixes.WithLabelValues(rev, res.Name).Add(float64(res.Fixes))
	m.flagged.WithLabelValues(rev, res.Name).Add(float64(res.Flagged))
}
