package harness

import (
	"testing"

	"github.com/sebdah/goldie/v2"

	"github.com/roach88/tablecore/internal/canon"
)

// Snapshot captures a scenario's trace and final page for golden
// comparison.
type Snapshot struct {
	Scenario string       `json:"scenario"`
	Trace    []TraceEvent `json:"trace"`
	Page     []PageRow    `json:"page"`
}

// Marshal encodes the snapshot as canonical JSON.
func (s Snapshot) Marshal() ([]byte, error) {
	if s.Trace == nil {
		s.Trace = []TraceEvent{}
	}
	if s.Page == nil {
		s.Page = []PageRow{}
	}
	return canon.Marshal(s)
}

// RunWithGolden executes a scenario and compares its snapshot against
// testdata/golden/{scenario.Name}.golden.
//
// To regenerate golden files, run:
//
//	go test ./internal/harness -update
//
// Returns error if scenario execution fails. Test failure (via goldie)
// occurs if the snapshot doesn't match the golden file.
func RunWithGolden(t *testing.T, scenario *Scenario, opts ...Option) (*Result, error) {
	t.Helper()

	result, err := Run(scenario, opts...)
	if err != nil {
		return nil, err
	}
	if err := AssertGolden(t, scenario.Name, result); err != nil {
		return nil, err
	}
	return result, nil
}

// AssertGolden compares an existing result against a golden file without
// re-running the scenario.
func AssertGolden(t *testing.T, scenarioName string, result *Result) error {
	t.Helper()

	data, err := Snapshot{
		Scenario: scenarioName,
		Trace:    result.Trace,
		Page:     result.Page,
	}.Marshal()
	if err != nil {
		return err
	}

	g := goldie.New(t,
		goldie.WithFixtureDir("testdata/golden"),
		goldie.WithNameSuffix(".golden"),
	)
	g.Assert(t, scenarioName, data)
	return nil
}
