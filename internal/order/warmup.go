// Package order implements component E: establishing test timing and run
// order before the main mutation loop starts. Grounded on the scoring pass
// shape in the teacher's internal/domain/mutation_score.go, generalized
// from tallying a finished report to timing a live baseline run.
package order

import (
	"context"
	"errors"
	"fmt"
	"time"

	m "github.com/pragmatics/jumble/internal/model"
	"github.com/pragmatics/jumble/internal/testrunner"
)

// ErrBaselineRed is returned when the unmutated class fails its own test
// suite: mutation testing against a red baseline is meaningless, so the
// caller should abort with a BaselineError rather than proceed.
var ErrBaselineRed = errors.New("order: baseline test run failed against the unmutated class")

// TestRunner is the subset of testrunner.Runner that warm-up needs. Timing
// each test class individually (budget = a long, generous ceiling) lets
// WarmUp measure elapsed time without assuming anything about how the
// harness batches classes.
type TestRunner interface {
	Run(ctx context.Context, mutantDir string, classpath []string, targetClass string, testClasses []string, budgetMillis int64) (testrunner.Verdict, error)
}

// baselineBudgetMillis is generous because a slow-but-passing baseline test
// must never be mistaken for a hung one; the per-mutant budget computed
// from WarmUp's measurements is what keeps the main loop fast.
const baselineBudgetMillis = 5 * 60 * 1000

// WarmUp runs every test class once, unmutated, in isolation, timing each
// one, then returns a TestOrder sorted fastest-first (spec.md §4.E). If any
// test fails against the unmutated baseline, it returns ErrBaselineRed.
func WarmUp(ctx context.Context, runner TestRunner, mutantDir string, classpath []string, targetClass string, testClasses []string) (*m.TestOrder, error) {
	timings := make([]m.TestTiming, 0, len(testClasses))

	for _, class := range testClasses {
		start := time.Now()

		verdict, err := runner.Run(ctx, mutantDir, classpath, targetClass, []string{class}, baselineBudgetMillis)
		if err != nil {
			return nil, fmt.Errorf("order: warm-up run for %s: %w", class, err)
		}

		elapsed := time.Since(start)

		switch verdict.Outcome {
		case m.Survived:
			// A baseline class "survives" its own unmutated code: that is
			// the pass case (nothing was mutated, so nothing should fail).
			testClass, testMethod := splitTestClass(class)
			timings = append(timings, m.TestTiming{TestClass: testClass, TestMethod: testMethod, Elapsed: elapsed})
		case m.Killed, m.RuntimeError, m.Timeout:
			return nil, fmt.Errorf("%w: %s", ErrBaselineRed, class)
		}
	}

	return m.NewTestOrder(timings), nil
}

// splitTestClass returns (TestClass, TestMethod) for one warm-up timing.
// The harness reports kills at class granularity ("KILLED <class>"), so
// TestMethod mirrors TestClass here — keeping them equal lets
// model.TestOrder.Promote/ForPoint match killers without caring whether a
// future harness revision reports finer-grained method kills.
func splitTestClass(class string) (string, string) {
	return class, class
}
