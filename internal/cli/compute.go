package cli

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/roach88/userstats/internal/config"
	"github.com/roach88/userstats/internal/pipeline"
	"github.com/roach88/userstats/internal/report"
	"github.com/roach88/userstats/internal/stats"
	"github.com/roach88/userstats/internal/store"
	"github.com/roach88/userstats/internal/user"
)

// ComputeOptions holds flags for the compute command.
type ComputeOptions struct {
	*RootOptions
	Now      string
	Database string
	Schema   string
	Timezone string

	// Clock allows overriding the reference clock (for testing).
	// --now takes precedence. If both are unset, the wall clock is used.
	Clock stats.Clock
}

// ComputeResult is the JSON payload of a successful compute.
type ComputeResult struct {
	Output      string         `json:"output"`
	Users       int            `json:"users"`
	Digest      string         `json:"digest"`
	RunID       string         `json:"run_id,omitempty"`
	ReferenceAt time.Time      `json:"reference_at"`
	Stats       *stats.Summary `json:"stats,omitempty"`
}

// NewComputeCommand creates the compute command.
func NewComputeCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &ComputeOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "compute <data-file> <output-file>",
		Short: "Compute age statistics for a users file",
		Long: `Compute age statistics for a JSON users file and write them to the output file.

On invalid JSON or an invalid user record the output file receives a
structured error object instead, and the command exits with status 1.

Example:
  userstats compute ./users.json ./stats.json
  userstats compute ./users.json ./stats.json --now 2024-06-01T12:00:00Z --db ./history.db`,
		Args:          cobra.ExactArgs(2),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runCompute(opts, args[0], args[1], cmd)
		},
	}

	cmd.Flags().StringVar(&opts.Now, "now", "", "reference time for offline durations (RFC 3339, default: current time)")
	cmd.Flags().StringVar(&opts.Database, "db", "", "record the run in this SQLite history database")
	cmd.Flags().StringVar(&opts.Schema, "schema", "", "CUE file defining #User (default: embedded schema)")
	cmd.Flags().StringVar(&opts.Timezone, "timezone", "", "IANA zone for last_login values without an offset (default: local)")

	return cmd
}

func runCompute(opts *ComputeOptions, input, output string, cmd *cobra.Command) error {
	formatter := newFormatter(opts.RootOptions, cmd.OutOrStdout(), cmd.ErrOrStderr())
	logger := setupLogging(opts.Verbose, cmd.ErrOrStderr())

	s, err := resolveSettings(formatter, opts.RootOptions, config.Config{
		Schema:   opts.Schema,
		DB:       opts.Database,
		Timezone: opts.Timezone,
	})
	if err != nil {
		return err
	}

	clock, err := opts.referenceClock()
	if err != nil {
		return formatter.Fail(ExitCommandError, ErrCodeConfig, err.Error(), nil, err)
	}

	job := pipeline.Job{
		InputPath:  input,
		OutputPath: output,
		Validator:  s.Validator,
		Location:   s.Location,
		Clock:      clock,
		Logger:     logger,
	}

	if s.Config.DB != "" {
		formatter.VerboseLog("Recording run in %s", s.Config.DB)
		st, err := store.Open(s.Config.DB)
		if err != nil {
			return formatter.Fail(ExitCommandError, ErrCodeDatabase, "failed to open database", err.Error(), err)
		}
		defer func() {
			if closeErr := st.Close(); closeErr != nil {
				logger.Error("error closing database", "error", closeErr)
			}
		}()
		job.Recorder = st
	}

	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}

	res, err := pipeline.Run(ctx, job)
	if err != nil {
		return reportComputeError(formatter, err)
	}

	return outputComputeSuccess(formatter, output, res)
}

// referenceClock resolves --now, the injected Clock, or the wall clock.
func (o *ComputeOptions) referenceClock() (stats.Clock, error) {
	if o.Now != "" {
		t, err := time.Parse(time.RFC3339, o.Now)
		if err != nil {
			return nil, fmt.Errorf("invalid --now %q: expected RFC 3339 time", o.Now)
		}
		return stats.FixedClock(t), nil
	}
	if o.Clock != nil {
		return o.Clock, nil
	}
	return stats.SystemClock{}, nil
}

// reportComputeError maps pipeline errors to CLI error codes and exit codes.
func reportComputeError(f *OutputFormatter, err error) error {
	var (
		pathErr   *pipeline.PathError
		parseErr  *user.ParseError
		valErr    *user.ValidationError
		recordErr *pipeline.RecordError
	)
	switch {
	case errors.As(err, &pathErr):
		return f.Fail(ExitCommandError, ErrCodeNotFound, pathErr.Error(), nil, err)
	case errors.As(err, &parseErr):
		return f.Fail(ExitFailure, ErrCodeInvalidJSON, report.MessageInvalidJSON,
			map[string]any{"offset": parseErr.Offset}, err)
	case errors.As(err, &valErr):
		details := map[string]any{"errors": valErr.Messages}
		if !valErr.Document {
			details["user"] = valErr.User
		}
		return f.Fail(ExitFailure, ErrCodeValidation, report.MessageValidation, details, err)
	case errors.As(err, &recordErr):
		return f.Fail(ExitCommandError, ErrCodeDatabase, recordErr.Error(), nil, err)
	default:
		return f.Fail(ExitCommandError, ErrCodeWriteFailed, err.Error(), nil, err)
	}
}

func outputComputeSuccess(f *OutputFormatter, output string, res *pipeline.Result) error {
	if f.Format == "json" {
		return f.Success(ComputeResult{
			Output:      output,
			Users:       res.UserCount,
			Digest:      res.Digest,
			RunID:       res.RunID,
			ReferenceAt: res.ReferenceAt,
			Stats:       res.Summary,
		})
	}

	fmt.Fprintf(f.Writer, "✓ Statistics for %d user(s) written to %s\n", res.UserCount, output)
	f.VerboseLog("Digest: %s", res.Digest)
	if res.RunID != "" {
		f.VerboseLog("Run ID: %s", res.RunID)
	}
	return nil
}
