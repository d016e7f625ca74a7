package worker_test

import (
	"testing"

	"github.com/stretchr/testify/require"

	m "github.com/pragmatics/jumble/internal/model"
	"github.com/pragmatics/jumble/internal/worker"
)

func TestPointKeyRoundTrips(t *testing.T) {
	p := m.Point{MethodIndex: 3, Offset: 17, Kind: m.KindConstantPool}

	parsed, err := worker.ParsePointKey(worker.PointKey(p))
	require.NoError(t, err)
	require.Equal(t, p, parsed)
}

func TestParsePointKeyRejectsMalformed(t *testing.T) {
	_, err := worker.ParsePointKey("not-a-key")
	require.Error(t, err)

	_, err = worker.ParsePointKey("abc:2:stores")
	require.Error(t, err)
}

func TestDescriptorToTestOrderAppliesKillers(t *testing.T) {
	point := m.Point{MethodIndex: 0, Offset: 0, Kind: m.KindNegateConditional}

	desc := worker.Descriptor{
		Tests: []m.TestTiming{
			{TestClass: "A", TestMethod: "A"},
			{TestClass: "B", TestMethod: "B"},
		},
		Killers: map[string]string{worker.PointKey(point): "B"},
	}

	order, err := desc.ToTestOrder()
	require.NoError(t, err)
	require.Equal(t, "B", order.ForPoint(point)[0].TestClass)
}

func TestFormatAndParseVerdictLineRoundTrip(t *testing.T) {
	cases := []m.Verdict{
		{Index: 1, Outcome: m.Survived},
		{Index: 2, Outcome: m.Timeout},
		{Index: 3, Outcome: m.Killed, Killer: "FooTest"},
		{Index: 4, Outcome: m.RuntimeError, Reason: "classloader blew up"},
	}

	for _, v := range cases {
		line := worker.FormatVerdict(v.Index, v)

		index, parsed, ok, err := worker.ParseVerdictLine(line)
		require.NoError(t, err)
		require.True(t, ok)
		require.Equal(t, v.Index, index)
		require.Equal(t, v.Outcome, parsed.Outcome)

		if v.Outcome == m.Killed {
			require.Equal(t, v.Killer, parsed.Killer)
		}
	}
}

func TestParseVerdictLineDoneSentinel(t *testing.T) {
	_, _, ok, err := worker.ParseVerdictLine("DONE")
	require.NoError(t, err)
	require.False(t, ok)
}
