package defaults

// Exit codes for the CLI.
const (
	ExitSuccess = 0 // Run finished, or usage was printed
	ExitFailure = 1 // Fatal capture, browser or configuration error
)
