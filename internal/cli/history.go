package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"time"

	"github.com/spf13/cobra"

	"github.com/roach88/userstats/internal/config"
	"github.com/roach88/userstats/internal/store"
)

// HistoryOptions holds flags for the history command.
type HistoryOptions struct {
	*RootOptions
	Database string
	Limit    int
	RunID    string // optional - show a single run with its output
}

// HistoryResult holds the history output.
type HistoryResult struct {
	Runs []store.Run `json:"runs"`
}

// NewHistoryCommand creates the history command.
func NewHistoryCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &HistoryOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "history",
		Short: "List recorded compute runs",
		Long: `List compute runs recorded in a history database, most recent first.

Example:
  userstats history --db ./history.db
  userstats history --db ./history.db --id 0190a1b2-...`,
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runHistory(opts, cmd)
		},
	}

	cmd.Flags().StringVar(&opts.Database, "db", "", "path to SQLite history database")
	cmd.Flags().IntVar(&opts.Limit, "limit", 20, "maximum number of runs to list (0 for all)")
	cmd.Flags().StringVar(&opts.RunID, "id", "", "show a single run, including its output")

	return cmd
}

func runHistory(opts *HistoryOptions, cmd *cobra.Command) error {
	formatter := newFormatter(opts.RootOptions, cmd.OutOrStdout(), cmd.ErrOrStderr())
	logger := setupLogging(opts.Verbose, cmd.ErrOrStderr())

	cfg, err := loadSettings(opts.RootOptions, config.Config{DB: opts.Database})
	if err != nil {
		return formatter.Fail(ExitCommandError, ErrCodeConfig, err.Error(), nil, err)
	}
	if cfg.DB == "" {
		err := errors.New("--db is required (or set db in the config file)")
		return formatter.Fail(ExitCommandError, ErrCodeConfig, err.Error(), nil, err)
	}

	st, err := store.Open(cfg.DB)
	if err != nil {
		return formatter.Fail(ExitCommandError, ErrCodeDatabase, "failed to open database", err.Error(), err)
	}
	defer func() {
		if closeErr := st.Close(); closeErr != nil {
			logger.Error("error closing database", "error", closeErr)
		}
	}()

	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}

	if opts.RunID != "" {
		run, err := st.GetRun(ctx, opts.RunID)
		if errors.Is(err, store.ErrRunNotFound) {
			return formatter.Fail(ExitFailure, ErrCodeNotFound,
				fmt.Sprintf("run not found: %s", opts.RunID), nil, err)
		}
		if err != nil {
			return formatter.Fail(ExitCommandError, ErrCodeDatabase, err.Error(), nil, err)
		}
		if formatter.Format == "json" {
			return formatter.Success(run)
		}
		outputRunText(formatter.Writer, run)
		return nil
	}

	runs, err := st.ListRuns(ctx, opts.Limit)
	if err != nil {
		return formatter.Fail(ExitCommandError, ErrCodeDatabase, err.Error(), nil, err)
	}

	if formatter.Format == "json" {
		return formatter.Success(HistoryResult{Runs: runs})
	}
	outputHistoryText(formatter.Writer, runs, opts.Verbose)
	return nil
}

// outputHistoryText prints one line per run.
func outputHistoryText(w io.Writer, runs []store.Run, verbose bool) {
	if len(runs) == 0 {
		fmt.Fprintln(w, "No runs recorded")
		return
	}

	for _, run := range runs {
		fmt.Fprintf(w, "%s  %s  %-5s  %-4s  %3d user(s)  %s\n",
			truncateID(run.ID),
			run.StartedAt.UTC().Format(time.RFC3339),
			run.Status,
			orDash(run.ErrorCode),
			run.UserCount,
			run.InputPath)
		if verbose {
			fmt.Fprintf(w, "       Output: %s\n", run.OutputPath)
			fmt.Fprintf(w, "       Digest: %s\n", run.Digest)
		}
	}
}

// outputRunText prints a single run with the bytes it wrote.
func outputRunText(w io.Writer, run store.Run) {
	fmt.Fprintf(w, "Run:        %s\n", run.ID)
	fmt.Fprintf(w, "Status:     %s\n", run.Status)
	if run.ErrorCode != "" {
		fmt.Fprintf(w, "Error code: %s\n", run.ErrorCode)
	}
	fmt.Fprintf(w, "Started:    %s\n", run.StartedAt.UTC().Format(time.RFC3339Nano))
	fmt.Fprintf(w, "Reference:  %s\n", run.ReferenceAt.UTC().Format(time.RFC3339Nano))
	fmt.Fprintf(w, "Input:      %s\n", run.InputPath)
	fmt.Fprintf(w, "Output:     %s\n", run.OutputPath)
	fmt.Fprintf(w, "Users:      %d\n", run.UserCount)
	fmt.Fprintf(w, "Digest:     %s\n", run.Digest)
	fmt.Fprintln(w)
	fmt.Fprint(w, run.Output)
}

// truncateID truncates a long ID for display.
func truncateID(id string) string {
	if len(id) <= 13 {
		return id
	}
	return id[:13] + "…"
}

func orDash(s string) string {
	if s == "" {
		return "-"
	}
	return s
}
