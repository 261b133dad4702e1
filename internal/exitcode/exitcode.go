// Package exitcode defines exit codes for the CLI.
package exitcode

const (
	// Success indicates successful completion.
	Success = 0

	// UserError indicates bad arguments, validation failures, or a
	// project or task that does not resolve.
	UserError = 1

	// AuthError indicates a missing, expired or rejected session, or an
	// unreadable config.
	AuthError = 2

	// BackendError indicates a network failure or a 5xx from the API.
	BackendError = 3
)
