// Command userstats computes age statistics over a JSON file of user records.
package main

import (
	"errors"
	"os"

	"github.com/roach88/userstats/internal/cli"
)

func main() {
	cmd := cli.NewRootCommand()
	if err := cmd.Execute(); err != nil {
		// Usage errors are printed by cobra and carry no exit code of their own.
		var exitErr *cli.ExitError
		if !errors.As(err, &exitErr) {
			os.Exit(cli.ExitCommandError)
		}
		os.Exit(exitErr.Code)
	}
}
