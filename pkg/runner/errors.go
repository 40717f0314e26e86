package runner

import "errors"

// Sentinel errors for runner failure modes.
// Callers should use errors.Is() to check for these.
var (
	// ErrOutputDirExists indicates the run directory for this second is
	// already present. Runs never write into an existing directory.
	ErrOutputDirExists = errors.New("runner: output directory already exists")

	// ErrBrowserLaunch indicates the browser session could not be started.
	ErrBrowserLaunch = errors.New("runner: browser launch failed")

	// ErrCaptureFailed indicates a screenshot could not be taken, saved or
	// annotated. It ends the run.
	ErrCaptureFailed = errors.New("runner: capture failed")
)
