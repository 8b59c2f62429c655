// Package exitcode defines exit codes for the CLI.
package exitcode

const (
	// Success indicates successful completion.
	Success = 0

	// UserError indicates a user error (bad args, not found, invalid status).
	UserError = 1

	// ConfigError indicates a configuration error (bad backend URL, bad .env).
	ConfigError = 2

	// BackendError indicates a backend/HTTP/network error.
	BackendError = 3
)
