package cli

import (
	"errors"
	"fmt"

	"github.com/mini-maxit/taucheck/pkg/constants"
)

// ExitError carries the process exit code for an error returned by the command.
type ExitError struct {
	Code    int
	Message string
	Err     error
}

func (e *ExitError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

func (e *ExitError) Unwrap() error {
	return e.Err
}

func NewExitError(code int, message string) *ExitError {
	return &ExitError{Code: code, Message: message}
}

func WrapExitError(code int, message string, err error) *ExitError {
	return &ExitError{Code: code, Message: message, Err: err}
}

// GetExitCode extracts the exit code from err. Errors that are not an
// ExitError come from argument parsing and count as command errors.
func GetExitCode(err error) int {
	if err == nil {
		return constants.ExitAccepted
	}
	var exitErr *ExitError
	if errors.As(err, &exitErr) {
		return exitErr.Code
	}
	return constants.ExitCommandError
}
