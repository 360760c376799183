package harness

import (
	"context"
	"testing"

	"github.com/sebdah/goldie/v2"

	"github.com/roach88/userstats/internal/report"
)

// Snapshot renders the deterministic part of a scenario result as canonical
// JSON: the output file content and the recorded run.
func Snapshot(scenario *Scenario, result *Result) ([]byte, error) {
	snapshot := map[string]any{
		"scenario_name": scenario.Name,
		"reference_at":  scenario.Now,
		"output":        string(result.Output),
	}
	if result.Run != nil {
		run := map[string]any{
			"status":     string(result.Run.Status),
			"user_count": result.Run.UserCount,
			"digest":     result.Run.Digest,
		}
		if result.Run.ErrorCode != "" {
			run["error_code"] = result.Run.ErrorCode
		}
		snapshot["run"] = run
	}

	data, err := report.MarshalCanonical(snapshot)
	if err != nil {
		return nil, err
	}
	return append(data, '\n'), nil
}

// RunWithGolden executes a scenario and compares its snapshot against a golden file.
// The golden file is stored in testdata/golden/{scenario.Name}.golden
//
// To regenerate golden files, run:
//
//	go test ./internal/harness -update
//
// Returns error if scenario execution fails.
// Test failure (via goldie) occurs if the snapshot doesn't match the golden file.
func RunWithGolden(t *testing.T, scenario *Scenario) (*Result, error) {
	t.Helper()

	result, err := Run(context.Background(), scenario)
	if err != nil {
		return nil, err
	}

	if err := AssertGolden(t, scenario, result); err != nil {
		return nil, err
	}
	return result, nil
}

// AssertGolden compares an existing result against the scenario's golden file
// without re-running it.
func AssertGolden(t *testing.T, scenario *Scenario, result *Result) error {
	t.Helper()

	data, err := Snapshot(scenario, result)
	if err != nil {
		return err
	}

	g := goldie.New(t,
		goldie.WithFixtureDir("testdata/golden"),
		goldie.WithNameSuffix(".golden"),
	)
	g.Assert(t, scenario.Name, data)
	return nil
}
