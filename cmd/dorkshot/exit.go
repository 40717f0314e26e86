package main

import (
	"fmt"
	"os"

	"github.com/waftester/dorkshot/pkg/defaults"
	"github.com/waftester/dorkshot/pkg/ui"
)

// exitWithError prints a formatted error message and exits with code 1.
// Use this instead of Printer.Error + os.Exit for consistent CLI error handling.
func exitWithError(format string, args ...any) {
	ui.NewPrinter(os.Stderr).Error(fmt.Sprintf(format, args...))
	os.Exit(defaults.ExitFailure)
}
