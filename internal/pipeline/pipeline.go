// Package pipeline runs one userstats batch: parse, validate, compute, write.
//
// Run is straight-line. The output file receives either the statistics
// object or a structured error object; in the error case the underlying
// error is also returned so the caller can exit non-zero.
//
//	input.json ─▶ ParseRecords ─▶ Validator ─▶ stats.Compute ─▶ output.json
//	                  │               │
//	                  └── E201 ───────┴── E202 ──▶ output.json (error object)
package pipeline

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"time"

	"github.com/roach88/userstats/internal/report"
	"github.com/roach88/userstats/internal/stats"
	"github.com/roach88/userstats/internal/store"
	"github.com/roach88/userstats/internal/user"
)

// Recorder persists run outcomes. *store.Store implements it.
type Recorder interface {
	RecordRun(ctx context.Context, run store.Run) (string, error)
}

// Job describes one pipeline run.
type Job struct {
	InputPath  string
	OutputPath string

	// Validator checks records. Nil uses the embedded #User schema.
	Validator *user.Validator

	// Location interprets last_login values without an offset. Nil means time.Local.
	Location *time.Location

	// Clock supplies "now" for offline durations. Nil uses the wall clock.
	Clock stats.Clock

	// Recorder, if set, receives every run that passed path validation.
	Recorder Recorder

	// Logger defaults to slog.Default().
	Logger *slog.Logger
}

// Result describes a successful run.
type Result struct {
	RunID       string         // empty without a Recorder
	Summary     *stats.Summary // nil when the input has no users
	UserCount   int
	Digest      string // report.Digest of the output file
	ReferenceAt time.Time
}

// RecordError reports a run whose output was written but could not be
// recorded by the Recorder.
type RecordError struct {
	Err error
}

func (e *RecordError) Error() string {
	return fmt.Sprintf("record run: %v", e.Err)
}

func (e *RecordError) Unwrap() error {
	return e.Err
}

// Run executes job.
//
// Errors:
//   - *PathError: bad paths, output untouched
//   - *user.ParseError: E201 error object written
//   - *user.ValidationError: E202 error object written
//   - *RecordError: output written, Recorder failed
//   - anything else: I/O or schema failure
func Run(ctx context.Context, job Job) (*Result, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	log := job.Logger
	if log == nil {
		log = slog.Default()
	}
	clock := job.Clock
	if clock == nil {
		clock = stats.SystemClock{}
	}
	loc := job.Location
	if loc == nil {
		loc = time.Local
	}

	if err := ValidatePaths(job.InputPath, job.OutputPath); err != nil {
		return nil, err
	}

	validator := job.Validator
	if validator == nil {
		v, err := user.DefaultValidator()
		if err != nil {
			return nil, err
		}
		validator = v
	}

	run := store.Run{
		InputPath:   job.InputPath,
		OutputPath:  job.OutputPath,
		StartedAt:   time.Now(),
		ReferenceAt: clock.Now(),
	}

	log.Debug("reading users", "path", job.InputPath)
	data, err := os.ReadFile(job.InputPath)
	if err != nil {
		return nil, fmt.Errorf("read input: %w", err)
	}

	recs, err := user.ParseRecords(data)
	if err == nil {
		log.Debug("records parsed", "count", len(recs))
		var users user.Users
		users, err = validator.ValidateAll(recs, loc)
		if err == nil {
			return finish(ctx, job, log, run, users)
		}
	}

	return nil, fail(ctx, job, log, run, err)
}

// finish computes and writes the summary for validated users.
func finish(ctx context.Context, job Job, log *slog.Logger, run store.Run, users user.Users) (*Result, error) {
	summary, _ := stats.Compute(users, run.ReferenceAt)

	out, err := report.WriteSummary(job.OutputPath, summary)
	if err != nil {
		return nil, err
	}
	log.Info("statistics written", "output", job.OutputPath, "users", len(users), "digest", out.Digest)

	result := &Result{
		Summary:     summary,
		UserCount:   len(users),
		Digest:      out.Digest,
		ReferenceAt: run.ReferenceAt,
	}

	if job.Recorder != nil {
		run.Status = store.StatusOK
		run.UserCount = len(users)
		run.Digest = out.Digest
		run.Output = string(out.Data)
		id, err := job.Recorder.RecordRun(ctx, run)
		if err != nil {
			return nil, &RecordError{Err: err}
		}
		result.RunID = id
		log.Debug("run recorded", "run_id", id)
	}

	return result, nil
}

// fail writes the error object for a parse or validation error and returns
// the cause. Other errors are returned as is.
func fail(ctx context.Context, job Job, log *slog.Logger, run store.Run, cause error) error {
	code, message, details, ok := describeFailure(cause)
	if !ok {
		return cause
	}

	log.Warn("input rejected", "code", code, "error", cause)
	out, err := report.WriteError(job.OutputPath, code, message, details)
	if err != nil {
		return errors.Join(cause, err)
	}

	if job.Recorder != nil {
		run.Status = store.StatusError
		run.ErrorCode = code
		run.Digest = out.Digest
		run.Output = string(out.Data)
		if _, err := job.Recorder.RecordRun(ctx, run); err != nil {
			log.Error("failed to record run", "error", err)
		}
	}

	return cause
}

// describeFailure maps a load error to its output error object.
func describeFailure(err error) (code, message string, details map[string]any, ok bool) {
	var pe *user.ParseError
	if errors.As(err, &pe) {
		return report.CodeInvalidJSON, report.MessageInvalidJSON,
			map[string]any{"offset": pe.Offset}, true
	}

	var ve *user.ValidationError
	if errors.As(err, &ve) {
		details = map[string]any{"errors": ve.Messages}
		if !ve.Document {
			details["user"] = ve.User
		}
		return report.CodeValidation, report.MessageValidation, details, true
	}

	return "", "", nil, false
}
