package scheduler_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	m "github.com/pragmatics/jumble/internal/model"
	"github.com/pragmatics/jumble/internal/scheduler"
)

type fakeCounter struct {
	total int
	err   error
}

func (f fakeCounter) Count() (int, error) { return f.total, f.err }

type scriptedDispatcher struct {
	outcomes   []m.Outcome
	errs       map[int]error
	calls      map[int]int
	lastBudget time.Duration
}

func (d *scriptedDispatcher) Dispatch(_ context.Context, index int, order *m.TestOrder, budget time.Duration) (m.Mutation, m.Verdict, error) {
	if d.calls == nil {
		d.calls = make(map[int]int)
	}
	d.calls[index]++
	d.lastBudget = budget

	if err, ok := d.errs[index]; ok {
		return m.Mutation{}, m.Verdict{}, err
	}

	point := m.Point{MethodIndex: 0, Offset: index, Kind: m.KindNegateConditional}
	mutation := m.Mutation{Index: index, Point: point}

	outcome := d.outcomes[index]
	verdict := m.Verdict{Index: index, Outcome: outcome}

	if outcome == m.Killed && len(order.Tests) > 0 {
		verdict.Killer = order.Tests[0].TestClass
	}

	return mutation, verdict, nil
}

type noopListener struct{}

func (noopListener) Start(int)                     {}
func (noopListener) Mutation(m.Mutation)            {}
func (noopListener) Verdict(m.Mutation, m.Verdict)  {}
func (noopListener) End(int, int, int)              {}

func warmUpFixture(_ context.Context) (*m.TestOrder, error) {
	return m.NewTestOrder([]m.TestTiming{{TestClass: "FooTest", TestMethod: "FooTest", Elapsed: time.Millisecond}}), nil
}

func TestRunCountsKilledAndSurvived(t *testing.T) {
	dispatcher := &scriptedDispatcher{outcomes: []m.Outcome{m.Killed, m.Survived, m.Timeout}}

	cfg := scheduler.Config{Listener: noopListener{}}

	killed, survived, err := scheduler.Run(context.Background(), cfg, fakeCounter{total: 3}, warmUpFixture, dispatcher)
	require.NoError(t, err)
	require.Equal(t, 2, killed) // Killed + Timeout both count as killed
	require.Equal(t, 1, survived)
}

func TestRunCountingErrorBecomesEngineError(t *testing.T) {
	cfg := scheduler.Config{Listener: noopListener{}}

	_, _, err := scheduler.Run(context.Background(), cfg, fakeCounter{err: errors.New("boom")}, warmUpFixture, &scriptedDispatcher{})
	require.Error(t, err)
}

func TestRunRetriesSameIndexThenMarksEngineErrorAndContinues(t *testing.T) {
	dispatcher := &scriptedDispatcher{
		outcomes: []m.Outcome{m.Survived, m.Survived, m.Survived, m.Survived, m.Survived},
		errs: map[int]error{
			2: errors.New("crash"),
		},
	}

	cfg := scheduler.Config{Listener: noopListener{}}

	killed, survived, err := scheduler.Run(context.Background(), cfg, fakeCounter{total: 5}, warmUpFixture, dispatcher)
	require.NoError(t, err)
	require.Equal(t, 0, killed)
	require.Equal(t, 4, survived) // every index but the permanently-crashing one

	require.Equal(t, 3, dispatcher.calls[2]) // retried on the same index, not advanced past it
	require.Equal(t, 1, dispatcher.calls[0])
	require.Equal(t, 1, dispatcher.calls[4])
}

func TestRunComputesPerMutantBudgetAsSummedPerTestBudgetsTimesOnePointFive(t *testing.T) {
	// spec.md §4.D/§5: B_i = 10*t_i + 2s per test, overall budget = sum(B_i) * 1.5.
	// Two tests at 1s and 3s: B_1=12s, B_2=32s, sum=44s, *1.5 = 66s.
	warmUp := func(context.Context) (*m.TestOrder, error) {
		return m.NewTestOrder([]m.TestTiming{
			{TestClass: "FastTest", TestMethod: "FastTest", Elapsed: time.Second},
			{TestClass: "SlowTest", TestMethod: "SlowTest", Elapsed: 3 * time.Second},
		}), nil
	}

	dispatcher := &scriptedDispatcher{outcomes: []m.Outcome{m.Survived}}
	cfg := scheduler.Config{Listener: noopListener{}}

	_, _, err := scheduler.Run(context.Background(), cfg, fakeCounter{total: 1}, warmUp, dispatcher)
	require.NoError(t, err)
	require.Equal(t, 66*time.Second, dispatcher.lastBudget)
}

func TestRunStartIndexSkipsEarlierMutations(t *testing.T) {
	dispatcher := &scriptedDispatcher{outcomes: []m.Outcome{m.Killed, m.Killed, m.Survived}}

	cfg := scheduler.Config{Listener: noopListener{}, StartIndex: 2}

	killed, survived, err := scheduler.Run(context.Background(), cfg, fakeCounter{total: 3}, warmUpFixture, dispatcher)
	require.NoError(t, err)
	require.Equal(t, 0, killed)
	require.Equal(t, 1, survived)
}
