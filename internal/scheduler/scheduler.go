// Package scheduler implements component F, the Fast Runner: the state
// machine driving Init -> Counting -> WarmUp -> Looping -> Done (spec.md
// §4.F), dispatching one mutant at a time to a worker process and emitting
// listener events in Mutation-then-Verdict order. Grounded on the
// teacher's internal/domain/mutation_streamer.go channel-streaming idiom
// and internal/domain/workflow_v2.go's bounded fan-out, adapted from "many
// Go-source mutants in parallel" to "exactly one JVM-process mutant in
// flight at a time" — spec.md §4.F requires process-level parallelism
// only, never concurrent mutant execution within one worker.
package scheduler

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/pragmatics/jumble/internal/cache"
	"github.com/pragmatics/jumble/internal/jumbleerr"
	"github.com/pragmatics/jumble/internal/listener"
	m "github.com/pragmatics/jumble/internal/model"
)

// State names the Fast Runner's state machine positions, exported purely
// for logging/diagnostics — nothing outside this package switches on it.
type State int

const (
	StateInit State = iota
	StateCounting
	StateWarmUp
	StateLooping
	StateDone
)

func (s State) String() string {
	switch s {
	case StateInit:
		return "init"
	case StateCounting:
		return "counting"
	case StateWarmUp:
		return "warm-up"
	case StateLooping:
		return "looping"
	case StateDone:
		return "done"
	default:
		return "unknown"
	}
}

// Counter counts mutation points without applying any of them.
type Counter interface {
	Count() (int, error)
}

// Dispatcher hands one mutant index to a worker and returns the full
// mutation it applied (so the listener can describe it) and its verdict.
// internal/worker.Batch implements this in-process, launching one java run
// per mutant; tests can fake it directly.
type Dispatcher interface {
	Dispatch(ctx context.Context, index int, order *m.TestOrder, budget time.Duration) (m.Mutation, m.Verdict, error)
}

// maxConsecutiveAbnormalExits is the failure-policy threshold from spec.md
// §4.F: a worker that exits abnormally mid-batch has its unreceived verdicts
// re-queued into the next worker; three consecutive abnormal exits for the
// same index mark that index EngineError(i) and the loop continues.
const maxConsecutiveAbnormalExits = 3

// Config bundles what one run of the Fast Runner needs.
type Config struct {
	TargetFingerprint string
	TestFingerprint   string
	Cache             *cache.Store // nil disables caching entirely
	LoadCache         bool
	SaveCache         bool
	Listener          listener.Listener
	// StartIndex implements --first-mutation (spec.md §6): indices below
	// it are skipped entirely, as if they did not exist.
	StartIndex int
}

// Run drives the full state machine for one class, returning the killed
// and survived counts, or a *jumbleerr.EngineError / *jumbleerr.BaselineError
// on failure.
func Run(ctx context.Context, cfg Config, counter Counter, warmUp func(context.Context) (*m.TestOrder, error), dispatcher Dispatcher) (killed, survived int, err error) {
	logState(StateInit)
	logState(StateCounting)

	total, err := counter.Count()
	if err != nil {
		return 0, 0, &jumbleerr.EngineError{Reason: "counting mutation points", Cause: err}
	}

	logState(StateWarmUp)

	testOrder, err := loadOrWarmUp(ctx, cfg, warmUp)
	if err != nil {
		return 0, 0, err
	}

	cfg.Listener.Start(total)

	logState(StateLooping)

	killed, survived, timedOut, errored, loopErr := loop(ctx, cfg.StartIndex, total, testOrder, dispatcher, cfg.Listener)

	logState(StateDone)

	cfg.Listener.End(killed, survived, total)

	if loopErr != nil {
		return killed, survived, loopErr
	}

	slog.Info("scheduler: run complete", "total", total, "killed", killed, "survived", survived, "timed_out", timedOut, "errored", errored)

	if cfg.SaveCache && cfg.Cache != nil {
		manifest := m.FromTestOrder(cfg.TargetFingerprint, cfg.TestFingerprint, testOrder, totalElapsed(testOrder))
		if err := cfg.Cache.Save(manifest); err != nil {
			slog.Warn("scheduler: failed to save run cache", "error", err)
		}
	}

	return killed, survived, nil
}

func logState(s State) {
	slog.Debug("scheduler: entering state", "state", s.String())
}

func loadOrWarmUp(ctx context.Context, cfg Config, warmUp func(context.Context) (*m.TestOrder, error)) (*m.TestOrder, error) {
	if cfg.LoadCache && cfg.Cache != nil {
		manifest, err := cfg.Cache.Load(cfg.TargetFingerprint, cfg.TestFingerprint)
		if err == nil {
			slog.Debug("scheduler: loaded test order from cache")
			return manifest.ToTestOrder(), nil
		}
	}

	testOrder, err := warmUp(ctx)
	if err != nil {
		return nil, &jumbleerr.BaselineError{Reason: err.Error()}
	}

	return testOrder, nil
}

// PickIndex/Dispatch/Collect are folded into loop: the per-mutant work is
// small enough that splitting them into separately named states only adds
// indirection without adding clarity the teacher's own streamers don't
// bother with either.
//
// Failure policy (spec.md §4.F): a dispatch that fails abnormally is
// retried on the very same index, not abandoned — the next worker picks up
// where the last one crashed. Only after three consecutive abnormal exits
// for that one index does the loop give up on it, record EngineError(i) as
// that mutant's verdict, and move on to index+1. One stuck index never
// aborts the rest of the run.
func loop(ctx context.Context, startIndex, total int, testOrder *m.TestOrder, dispatcher Dispatcher, lst listener.Listener) (killed, survived, timedOut, errored int, err error) {
	budget := perMutantBudget(testOrder)

	for index := startIndex; index < total; index++ {
		if cErr := ctx.Err(); cErr != nil {
			return killed, survived, timedOut, errored, &jumbleerr.EngineError{Reason: "run cancelled", Cause: cErr}
		}

		var (
			mutation    m.Mutation
			verdict     m.Verdict
			dispatchErr error
		)

		consecutiveAbnormal := 0

		for {
			mutation, verdict, dispatchErr = dispatcher.Dispatch(ctx, index, testOrder, budget)
			if dispatchErr == nil {
				break
			}

			consecutiveAbnormal++

			slog.Warn("scheduler: abnormal worker exit, retrying index", "index", index, "attempt", consecutiveAbnormal, "error", dispatchErr)

			if consecutiveAbnormal >= maxConsecutiveAbnormalExits {
				break
			}
		}

		if dispatchErr != nil {
			errored++

			mutation = m.Mutation{Index: index}
			verdict = m.Verdict{
				Index:   index,
				Outcome: m.RuntimeError,
				Reason: fmt.Sprintf("EngineError(%d): %d consecutive abnormal worker exits: %v",
					index, consecutiveAbnormal, dispatchErr),
			}

			lst.Mutation(mutation)
			lst.Verdict(mutation, verdict)

			continue
		}

		lst.Mutation(mutation)
		lst.Verdict(mutation, verdict)

		switch verdict.Outcome {
		case m.Killed:
			killed++

			if verdict.Killer != "" {
				testOrder.Promote(mutation.Point, verdict.Killer)
			}
		case m.Timeout:
			killed++
			timedOut++
		case m.Survived:
			survived++
		case m.FailedToLoad, m.RuntimeError:
			errored++
		}
	}

	return killed, survived, timedOut, errored, nil
}

func totalElapsed(order *m.TestOrder) time.Duration {
	var total time.Duration

	for _, t := range order.Tests {
		total += t.Elapsed
	}

	return total
}

// perMutantBudget computes the overall per-mutant budget (spec.md §5): the
// sum of each test's own per-test budget B_i = 10*t_i + 2s, times 1.5. It is
// computed once per run, not per mutant, because every mutant is tried
// against the same set of tests (only their order, not their number or
// individual elapsed times, varies per mutation point).
func perMutantBudget(order *m.TestOrder) time.Duration {
	var sum time.Duration

	for _, t := range order.Tests {
		sum += m.Budget(t.Elapsed)
	}

	return time.Duration(float64(sum) * 1.5)
}
