package resolver

import (
	"errors"
	"fmt"
)

// ErrNoRunner reports that no command runner was configured.
var ErrNoRunner = errors.New("command runner unavailable")

// FetchError describes why the live version query did not produce a list.
// Its message doubles as the advisory shown to the user.
type FetchError struct {
	// ExitCode is the command's exit status when it ran and failed.
	ExitCode int
	// Empty is set when the command succeeded but nothing usable was parsed.
	Empty bool
	// Err is the underlying cause when the command could not run.
	Err error
}

func (e *FetchError) Error() string {
	switch {
	case errors.Is(e.Err, ErrNoRunner):
		return "Command runner unavailable"
	case e.Err != nil:
		return fmt.Sprintf("Failed to fetch versions: %v", e.Err)
	case e.Empty:
		return "No versions found"
	default:
		return fmt.Sprintf("Failed to fetch versions (exit %d)", e.ExitCode)
	}
}

func (e *FetchError) Unwrap() error { return e.Err }
