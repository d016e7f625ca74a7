package testrunner

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	m "github.com/pragmatics/jumble/internal/model"
)

func TestParseVerdictSurvived(t *testing.T) {
	v, err := parseVerdict("SURVIVED\n", "", nil)
	require.NoError(t, err)
	require.Equal(t, m.Survived, v.Outcome)
}

func TestParseVerdictTimeout(t *testing.T) {
	v, err := parseVerdict("TIMEOUT\n", "", nil)
	require.NoError(t, err)
	require.Equal(t, m.Timeout, v.Outcome)
}

func TestParseVerdictKilledCapturesKiller(t *testing.T) {
	v, err := parseVerdict("KILLED com.example.FooTest\n", "", nil)
	require.NoError(t, err)
	require.Equal(t, m.Killed, v.Outcome)
	require.Equal(t, "com.example.FooTest", v.Killer)
}

func TestParseVerdictErrorCapturesReason(t *testing.T) {
	v, err := parseVerdict("ERROR classloader blew up\n", "", nil)
	require.NoError(t, err)
	require.Equal(t, m.RuntimeError, v.Outcome)
	require.Equal(t, "classloader blew up", v.Reason)
}

func TestParseVerdictEmptyOutputIsRuntimeError(t *testing.T) {
	v, err := parseVerdict("", "panic: oom", errors.New("exit status 1"))
	require.NoError(t, err)
	require.Equal(t, m.RuntimeError, v.Outcome)
	require.Contains(t, v.Reason, "oom")
}

func TestDeadlineMarginAddsFiveSecondMargin(t *testing.T) {
	require.Equal(t, 15*time.Second, deadlineMargin(10000))
}
