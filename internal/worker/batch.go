// Package worker implements component G: the process that actually mutates
// a class and runs it against the ordered test list. Batch is the
// in-process building block every invocation shape (single-process,
// forked worker pool) is built from; cmd/jumble-worker wraps it behind the
// line protocol described in spec.md §4.G for the forked-process case.
package worker

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/pragmatics/jumble/internal/loader"
	m "github.com/pragmatics/jumble/internal/model"
	"github.com/pragmatics/jumble/internal/mutate"
	"github.com/pragmatics/jumble/internal/testrunner"
)

// Batch mutates and tests one class, dispatching indices on demand. It
// satisfies internal/scheduler.Dispatcher.
type Batch struct {
	ClassFile       *m.ClassFile
	ClassBinaryName string // e.g. "com/example/Widget", slash form
	Mutater         *mutate.Mutater
	MutateOptions   mutate.Options
	Runner          *testrunner.Runner
	Classpath       []string
	ExtraDeferred   []string
	WorkDir         string // scratch directory for staged mutant .class files
}

// Dispatch mutates the class at index, stages the mutant .class file in its
// own subdirectory (so the classpath-ordering policy in internal/loader can
// put exactly that directory first), and runs the ordered test list against
// it within budget.
func (b *Batch) Dispatch(ctx context.Context, index int, order *m.TestOrder, budget time.Duration) (m.Mutation, m.Verdict, error) {
	mutation, ok, err := b.Mutater.Mutate(b.ClassFile, index, b.MutateOptions)
	if err != nil {
		return m.Mutation{}, m.Verdict{}, fmt.Errorf("worker: mutating index %d: %w", index, err)
	}

	if !ok {
		return m.Mutation{}, m.Verdict{Outcome: m.RuntimeError, Reason: "no such mutation point"}, nil
	}

	mutantDir, err := b.stage(index, mutation.Bytes)
	if err != nil {
		return mutation, m.Verdict{}, fmt.Errorf("worker: staging mutant %d: %w", index, err)
	}
	defer os.RemoveAll(mutantDir)

	policy := loader.NewPolicy(b.ClassBinaryName, b.ExtraDeferred)
	classpath := policy.Classpath(mutantDir, b.Classpath)

	orderedTests := order.ForPoint(mutation.Point)
	testClasses := make([]string, len(orderedTests))
	for i, t := range orderedTests {
		testClasses[i] = t.TestClass
	}

	targetClass := strings.ReplaceAll(b.ClassBinaryName, "/", ".")

	verdict, err := b.Runner.Run(ctx, mutantDir, classpath, targetClass, testClasses, budget.Milliseconds())
	if err != nil {
		return mutation, m.Verdict{}, fmt.Errorf("worker: running mutant %d: %w", index, err)
	}

	return mutation, m.Verdict{Index: index, Outcome: verdict.Outcome, Killer: verdict.Killer, Reason: verdict.Reason}, nil
}

// stage writes a mutated class's bytes to <WorkDir>/mutant-<index>/<binary
// path>.class, the directory shape internal/loader.Policy.Classpath expects
// to prepend.
func (b *Batch) stage(index int, bytes []byte) (string, error) {
	dir := filepath.Join(b.WorkDir, fmt.Sprintf("mutant-%d", index))
	classPath := filepath.Join(dir, filepath.FromSlash(b.ClassBinaryName)+".class")

	if err := os.MkdirAll(filepath.Dir(classPath), 0o755); err != nil {
		return "", err
	}

	if err := os.WriteFile(classPath, bytes, 0o644); err != nil {
		return "", err
	}

	return dir, nil
}

// Count delegates to the Mutater so Batch also satisfies
// internal/scheduler.Counter.
func (b *Batch) Count() (int, error) {
	return b.Mutater.Count(b.ClassFile, b.MutateOptions)
}
