package engine

import (
	"context"
	"time"

	"github.com/pragmatics/jumble/internal/cache"
	m "github.com/pragmatics/jumble/internal/model"
	"github.com/pragmatics/jumble/internal/scheduler"
	"github.com/pragmatics/jumble/internal/worker"
)

// counterAdapter and dispatcherAdapter satisfy internal/scheduler's small
// interfaces against a single in-process worker.Batch — the direct,
// non-forked execution path, the only one engine.Run uses
// (--max-external-mutations does not change it). A forked multi-process path would instead send
// "MUTATE <index>" lines to one or more cmd/jumble-worker children and
// implement the same two interfaces over that pipe; both paths converge
// on the same scheduler.Run call.
type counterAdapter struct{ batch *worker.Batch }

func (c counterAdapter) Count() (int, error) { return c.batch.Count() }

type dispatcherAdapter struct{ batch *worker.Batch }

func (d dispatcherAdapter) Dispatch(ctx context.Context, index int, order *m.TestOrder, budget time.Duration) (m.Mutation, m.Verdict, error) {
	return d.batch.Dispatch(ctx, index, order, budget)
}

func schedulerConfig(opts Options, store *cache.Store, targetFP, testFP string) scheduler.Config {
	return scheduler.Config{
		TargetFingerprint: targetFP,
		TestFingerprint:   testFP,
		Cache:             store,
		LoadCache:         store != nil && !opts.NoLoadCache && !opts.NoUseCache,
		SaveCache:         store != nil && !opts.NoSaveCache && !opts.NoUseCache,
		Listener:          opts.Listener,
		StartIndex:        opts.FirstMutation,
	}
}

func runScheduler(ctx context.Context, cfg scheduler.Config, batch *worker.Batch, warmUp func(context.Context) (*m.TestOrder, error)) (int, int, error) {
	return scheduler.Run(ctx, cfg, counterAdapter{batch: batch}, warmUp, dispatcherAdapter{batch: batch})
}
