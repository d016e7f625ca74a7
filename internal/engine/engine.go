// Package engine wires components C-H together into the single operation
// spec.md §2 describes: mutate one class, test every mutant, report a
// score. Grounded on the teacher's internal/domain.WorkflowV2, generalized
// from "many Go source files sharded across goroutines" to "one class
// file driven through the Fast Runner state machine."
package engine

import (
	"bytes"
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/pragmatics/jumble/internal/cache"
	"github.com/pragmatics/jumble/internal/classfile"
	"github.com/pragmatics/jumble/internal/convention"
	"github.com/pragmatics/jumble/internal/jumbleerr"
	"github.com/pragmatics/jumble/internal/listener"
	m "github.com/pragmatics/jumble/internal/model"
	"github.com/pragmatics/jumble/internal/mutate"
	"github.com/pragmatics/jumble/internal/order"
	"github.com/pragmatics/jumble/internal/testrunner"
	"github.com/pragmatics/jumble/internal/worker"
	"golang.org/x/sync/errgroup"
)

// Options collects everything a single `jumble` invocation needs, one
// field per CLI flag from spec.md §6.
type Options struct {
	ClassName       string   // dotted or slash binary name of the class under test
	TestClassNames  []string // explicit TESTCLASS... positional args; empty to guess one
	NoGuessTestName bool     // --no-guess-test-name: never fall back to GuessTestClassName
	Classpath       []string
	ExtraDeferred   []string
	EnabledKinds    map[m.Kind]bool
	ExcludedMethods map[string]bool
	NoOrder         bool
	NoSaveCache     bool
	NoLoadCache     bool
	NoUseCache      bool
	FirstMutation   int
	CacheDir        string
	WorkDir         string
	Listener        listener.Listener
	JVMArgs         []string
	DefineProperty  []string
}

// Run locates the class under test on Options.Classpath, warms up test
// timing (or loads it from cache), then drives the scheduler's state
// machine over every mutation point, returning the final killed/survived
// counts.
func Run(ctx context.Context, opts Options) (killed, survived int, err error) {
	classPath, classBytes, err := resolveClassBytes(opts.ClassName, opts.Classpath)
	if err != nil {
		return 0, 0, &jumbleerr.UsageError{Msg: err.Error()}
	}

	cf, err := classfile.Parse(bytes.NewReader(classBytes))
	if err != nil {
		return 0, 0, &jumbleerr.UsageError{Msg: fmt.Sprintf("parsing %s: %v", classPath, err)}
	}

	testClasses := opts.TestClassNames
	if len(testClasses) == 0 {
		if opts.NoGuessTestName {
			return 0, 0, &jumbleerr.UsageError{Msg: "no test class given and --no-guess-test-name set"}
		}

		testClasses = []string{convention.GuessTestClassName(opts.ClassName)}
	}

	runner := testrunner.New(opts.CacheDir)
	runner.JVMArgs = opts.JVMArgs
	runner.DefineProperty = opts.DefineProperty

	mutater := mutate.New()
	mutateOpts := mutate.Options{EnabledKinds: opts.EnabledKinds, ExcludedMethods: opts.ExcludedMethods}

	store, cacheErr := cache.New(opts.CacheDir)
	if cacheErr != nil {
		store = nil // caching is best-effort: a bad cache dir never fails the run
	}

	targetFP := cache.Fingerprint(classBytes)
	testFP := cache.TestFingerprint(testClasses)

	binaryName := strings.ReplaceAll(opts.ClassName, ".", "/")
	dottedName := strings.ReplaceAll(binaryName, "/", ".")

	warmUp := func(ctx context.Context) (*m.TestOrder, error) {
		if opts.NoOrder {
			tests := make([]m.TestTiming, len(testClasses))
			for i, tc := range testClasses {
				tests[i] = m.TestTiming{TestClass: tc, TestMethod: tc}
			}

			return &m.TestOrder{Tests: tests}, nil
		}

		return order.WarmUp(ctx, runner, filepath.Dir(classPath), opts.Classpath, dottedName, testClasses)
	}

	batch := &worker.Batch{
		ClassFile:       cf,
		ClassBinaryName: binaryName,
		Mutater:         mutater,
		MutateOptions:   mutateOpts,
		Runner:          runner,
		Classpath:       opts.Classpath,
		ExtraDeferred:   opts.ExtraDeferred,
		WorkDir:         opts.WorkDir,
	}

	cfg := schedulerConfig(opts, store, targetFP, testFP)

	return runScheduler(ctx, cfg, batch, warmUp)
}

// resolveClassBytes finds className (dotted or slash form) on classpath,
// preferring an exact .class file match over any directory-prefix
// ambiguity, matching the JVM's own first-match-wins classpath search.
//
// Large classpaths (spec.md §6 --classpath is repeatable) are probed
// concurrently via errgroup, the same bounded-fan-out primitive the
// teacher's workflow_pipeline.go uses to parallelize independent I/O — the
// scan is concurrent, but the winner is still the lowest-index entry that
// exists, so classpath order is preserved exactly as a sequential search
// would see it.
func resolveClassBytes(className string, classpath []string) (string, []byte, error) {
	rel := filepath.FromSlash(strings.ReplaceAll(className, ".", "/")) + ".class"

	candidates := make([]string, len(classpath))
	found := make([]bool, len(classpath))

	g := new(errgroup.Group)
	g.SetLimit(8)

	for i, entry := range classpath {
		i, entry := i, entry

		candidates[i] = filepath.Join(entry, rel)

		g.Go(func() error {
			if _, err := os.Stat(candidates[i]); err == nil {
				found[i] = true
			}

			return nil
		})
	}

	_ = g.Wait()

	for i, ok := range found {
		if !ok {
			continue
		}

		bytes, err := os.ReadFile(candidates[i])
		if err == nil {
			return candidates[i], bytes, nil
		}
	}

	if bytes, err := os.ReadFile(className); err == nil {
		return className, bytes, nil
	}

	return "", nil, fmt.Errorf("class %q not found on classpath", className)
}
