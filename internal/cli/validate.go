package cli

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/roach88/userstats/internal/config"
	"github.com/roach88/userstats/internal/user"
)

// ValidateOptions holds flags for the validate command.
type ValidateOptions struct {
	*RootOptions
	Schema   string
	Timezone string
}

// ValidationResult holds validation results.
type ValidationResult struct {
	Valid bool     `json:"valid"`
	Users int      `json:"users"`
	Names []string `json:"names,omitempty"`
}

// NewValidateCommand creates the validate command.
func NewValidateCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &ValidateOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "validate <data-file>",
		Short: "Validate a users file without computing statistics",
		Long: `Validate a JSON users file against the #User schema.

Performs the same parsing and validation as compute but writes no output
file. Faster feedback while editing data or a custom schema.`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true, // Don't print usage on errors
		SilenceErrors: true, // Don't print errors - we handle our own error output
		RunE: func(cmd *cobra.Command, args []string) error {
			return runValidate(opts, args[0], cmd)
		},
	}

	cmd.Flags().StringVar(&opts.Schema, "schema", "", "CUE file defining #User (default: embedded schema)")
	cmd.Flags().StringVar(&opts.Timezone, "timezone", "", "IANA zone for last_login values without an offset (default: local)")

	return cmd
}

func runValidate(opts *ValidateOptions, input string, cmd *cobra.Command) error {
	formatter := newFormatter(opts.RootOptions, cmd.OutOrStdout(), cmd.ErrOrStderr())
	setupLogging(opts.Verbose, cmd.ErrOrStderr())

	s, err := resolveSettings(formatter, opts.RootOptions, config.Config{
		Schema:   opts.Schema,
		Timezone: opts.Timezone,
	})
	if err != nil {
		return err
	}

	data, err := os.ReadFile(input)
	if err != nil {
		return formatter.Fail(ExitCommandError, ErrCodeNotFound,
			fmt.Sprintf("cannot read %s", input), err.Error(), err)
	}

	recs, err := user.ParseRecords(data)
	if err != nil {
		return reportComputeError(formatter, err)
	}
	formatter.VerboseLog("Found %d record(s) in %s", len(recs), input)

	users, err := s.Validator.ValidateAll(recs, s.Location)
	if err != nil {
		return reportComputeError(formatter, err)
	}

	return outputValidateSuccess(formatter, users)
}

func outputValidateSuccess(f *OutputFormatter, users user.Users) error {
	if f.Format == "json" {
		names := make([]string, 0, len(users))
		for _, u := range users {
			names = append(names, u.Name)
		}
		return f.Success(ValidationResult{Valid: true, Users: len(users), Names: names})
	}

	fmt.Fprintf(f.Writer, "✓ %d user(s) valid\n", len(users))
	return nil
}
