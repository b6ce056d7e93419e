package cli

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/mini-maxit/taucheck/pkg/constants"
)

func TestGetExitCode(t *testing.T) {
	assert.Equal(t, constants.ExitAccepted, GetExitCode(nil))
	assert.Equal(t, constants.ExitRejected, GetExitCode(NewExitError(constants.ExitRejected, "rejected")))
	assert.Equal(t, constants.ExitCommandError, GetExitCode(errors.New("unknown flag")))

	wrapped := fmt.Errorf("outer: %w", WrapExitError(constants.ExitRejected, "inner", errors.New("cause")))
	assert.Equal(t, constants.ExitRejected, GetExitCode(wrapped))
}

func TestExitErrorMessage(t *testing.T) {
	cause := errors.New("cause")
	err := WrapExitError(constants.ExitCommandError, "failed", cause)
	assert.Equal(t, "failed: cause", err.Error())
	assert.ErrorIs(t, err, cause)
	assert.Equal(t, "plain", NewExitError(constants.ExitRejected, "plain").Error())
}
