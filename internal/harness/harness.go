package harness

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/roach88/userstats/internal/config"
	"github.com/roach88/userstats/internal/pipeline"
	"github.com/roach88/userstats/internal/stats"
	"github.com/roach88/userstats/internal/store"
	"github.com/roach88/userstats/internal/user"
)

// Result is the outcome of a scenario execution.
type Result struct {
	// Pass is true if all assertions hold.
	Pass bool `json:"pass"`

	// Output is the content of the output file after the run.
	Output []byte `json:"-"`

	// RunError is the pipeline error, if any. Parse and validation errors
	// are expected outcomes for many scenarios and do not fail Run.
	RunError string `json:"run_error,omitempty"`

	// Run is the history record written for the execution.
	Run *store.Run `json:"run,omitempty"`

	// Errors contains assertion failures. Empty if Pass is true.
	Errors []string `json:"errors,omitempty"`
}

// NewResult creates a new passing result.
func NewResult() *Result {
	return &Result{Pass: true, Errors: []string{}}
}

// AddError adds an assertion failure and marks the result as failed.
func (r *Result) AddError(err string) {
	r.Errors = append(r.Errors, err)
	r.Pass = false
}

// Run executes a scenario and returns the result.
//
// Each scenario runs in a fresh temporary directory with a fresh in-memory
// history store. Errors are returned only when the scenario cannot be
// executed at all (bad schema, I/O failure); failed assertions are reported
// in the Result.
func Run(ctx context.Context, scenario *Scenario) (*Result, error) {
	now, err := scenario.ReferenceTime()
	if err != nil {
		return nil, fmt.Errorf("invalid now: %w", err)
	}

	cfg := config.Config{Timezone: scenario.Timezone}
	if cfg.Timezone == "" {
		cfg.Timezone = "UTC"
	}
	loc, err := cfg.Location()
	if err != nil {
		return nil, err
	}

	validator, err := loadValidator(scenario.Schema)
	if err != nil {
		return nil, err
	}

	doc, err := scenario.Document()
	if err != nil {
		return nil, fmt.Errorf("build input: %w", err)
	}

	dir, err := os.MkdirTemp("", "userstats-scenario-*")
	if err != nil {
		return nil, fmt.Errorf("create work dir: %w", err)
	}
	defer os.RemoveAll(dir)

	input := filepath.Join(dir, "users.json")
	output := filepath.Join(dir, "stats.json")
	if err := os.WriteFile(input, doc, 0o644); err != nil {
		return nil, fmt.Errorf("write input: %w", err)
	}

	st, err := store.Open(":memory:")
	if err != nil {
		return nil, fmt.Errorf("failed to create in-memory store: %w", err)
	}
	defer st.Close()

	_, runErr := pipeline.Run(ctx, pipeline.Job{
		InputPath:  input,
		OutputPath: output,
		Validator:  validator,
		Location:   loc,
		Clock:      stats.FixedClock(now),
		Recorder:   st,
		Logger:     slog.New(slog.NewTextHandler(io.Discard, nil)), // Suppress logs in scenarios
	})
	if runErr != nil && !user.IsParseError(runErr) && !user.IsValidationError(runErr) {
		return nil, fmt.Errorf("run pipeline: %w", runErr)
	}

	result := NewResult()
	if runErr != nil {
		result.RunError = runErr.Error()
	}

	result.Output, err = os.ReadFile(output)
	if err != nil {
		return nil, fmt.Errorf("read output: %w", err)
	}

	runs, err := st.ListRuns(ctx, 1)
	if err != nil {
		return nil, err
	}
	if len(runs) == 1 {
		run := runs[0]
		// Paths point into the removed work dir.
		run.InputPath = filepath.Base(run.InputPath)
		run.OutputPath = filepath.Base(run.OutputPath)
		run.StartedAt = time.Time{}
		result.Run = &run
	}

	for _, assertion := range scenario.Assertions {
		if err := checkAssertion(result, assertion); err != nil {
			result.AddError(err.Error())
		}
	}

	return result, nil
}

func loadValidator(schema string) (*user.Validator, error) {
	if schema == "" {
		return user.DefaultValidator()
	}
	src, err := os.ReadFile(schema)
	if err != nil {
		return nil, fmt.Errorf("read schema: %w", err)
	}
	return user.NewValidator(src)
}
