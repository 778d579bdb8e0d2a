package harness

import (
	"testing"

	"github.com/sebdah/goldie/v2"

	"github.com/roach88/docmig/internal/canon"
)

// TraceSnapshot is the golden form of a scenario run.
type TraceSnapshot struct {
	ScenarioName string      `json:"scenario_name"`
	From         int         `json:"from"`
	To           int         `json:"to"`
	Trace        []StepEvent `json:"trace"`
}

// MarshalTrace renders the snapshot of result as canonical JSON.
func MarshalTrace(scenarioName string, result *Result) ([]byte, error) {
	return canon.MarshalValue(TraceSnapshot{
		ScenarioName: scenarioName,
		From:         result.From,
		To:           result.To,
		Trace:        result.Trace,
	})
}

// RunWithGolden executes a scenario and compares the trace against a golden file.
// The golden file is stored in testdata/golden/{scenario.Name}.golden
//
// To regenerate golden files, run:
//
//	go test ./internal/harness -update
//
// Returns an error if scenario execution fails. Test failure (via goldie)
// occurs if the trace doesn't match the golden file.
func RunWithGolden(t *testing.T, scenario *Scenario) (*Result, error) {
	t.Helper()

	result, err := Run(scenario)
	if err != nil {
		return nil, err
	}
	if err := AssertGolden(t, scenario.Name, result); err != nil {
		return nil, err
	}
	return result, nil
}

// AssertGolden compares the given result's trace against a golden file
// without re-running the scenario.
func AssertGolden(t *testing.T, scenarioName string, result *Result) error {
	t.Helper()

	traceJSON, err := MarshalTrace(scenarioName, result)
	if err != nil {
		return err
	}

	g := goldie.New(t,
		goldie.WithFixtureDir("testdata/golden"),
		goldie.WithNameSuffix(".golden"),
	)
	g.Assert(t, scenarioName, traceJSON)

	return nil
}
