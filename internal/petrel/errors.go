package petrel

import "errors"

// Failure classes surfaced to the user as a printed message plus nonzero
// exit. Callers classify with errors.Is.
var (
	// ErrCLINotFound: the host `container` binary is not installed.
	ErrCLINotFound = errors.New("the 'container' CLI was not found; ensure you are running macOS with the Apple container subsystem installed")

	// ErrSubsystemNotRunning: subsystem stopped and auto-start was disabled.
	ErrSubsystemNotRunning = errors.New("Apple container subsystem is not running; start it with: container system start")

	// ErrSubsystemStartFailed: the start command failed or readiness timed out.
	ErrSubsystemStartFailed = errors.New("failed to start the Apple container subsystem")

	// ErrInvalidOptions: mutually exclusive flags/arguments were combined.
	ErrInvalidOptions = errors.New("invalid options")
)
