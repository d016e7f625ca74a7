package jumbleerr_test

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/pragmatics/jumble/internal/jumbleerr"
)

func TestExitCodeUsageError(t *testing.T) {
	require.Equal(t, 2, jumbleerr.ExitCode(jumbleerr.NewUsageError("bad flag %q", "--nope")))
}

func TestExitCodeBaselineAndEngineErrors(t *testing.T) {
	require.Equal(t, 1, jumbleerr.ExitCode(&jumbleerr.BaselineError{ClassName: "Foo", Reason: "red"}))
	require.Equal(t, 1, jumbleerr.ExitCode(&jumbleerr.EngineError{Reason: "boom"}))
}

func TestExitCodeNil(t *testing.T) {
	require.Equal(t, 0, jumbleerr.ExitCode(nil))
}

func TestEngineErrorUnwrap(t *testing.T) {
	cause := errors.New("underlying")
	err := &jumbleerr.EngineError{Reason: "dispatch failed", Cause: cause}

	require.ErrorIs(t, err, cause)
	require.Contains(t, err.Error(), "dispatch failed")
	require.Contains(t, err.Error(), "underlying")
}

func TestBaselineErrorMessage(t *testing.T) {
	err := &jumbleerr.BaselineError{ClassName: "com.example.Foo", Reason: "testBar failed"}
	require.Contains(t, err.Error(), "com.example.Foo")
	require.Contains(t, err.Error(), "testBar failed")
}
