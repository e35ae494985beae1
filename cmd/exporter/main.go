package main

import (
	"errors"
	"fmt"
	"os"

	"finance-export-service/cmd/exporter/cmd"
)

var (
	version = "dev"
	commit  = "unknown"
	date    = "unknown"
)

func main() {
	// Set version information
	cmd.SetVersionInfo(version, commit, date)

	if err := cmd.Execute(); err != nil {
		var exitErr *cmd.ExitError
		if errors.As(err, &exitErr) {
			// Details were already printed by the command's error handler.
			os.Exit(exitErr.Code)
		}
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
