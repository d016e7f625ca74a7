package model

import "time"

// TestTiming is one test method's warm-up elapsed time.
type TestTiming struct {
	TestClass  string
	TestMethod string
	Elapsed    time.Duration
}

// TestOrder is an ordered sequence of tests to run against a mutant, along
// with the per-mutation-point memory of which test last killed a mutant at
// that point. Invariant: Tests is always a permutation of the tests recorded
// during warm-up — Promote only records a point's killer; it never adds,
// removes or reorders Tests.
type TestOrder struct {
	Tests   []TestTiming
	killers map[Point]string
}

// NewTestOrder builds a TestOrder sorted ascending by warm-up elapsed time.
func NewTestOrder(timings []TestTiming) *TestOrder {
	sorted := make([]TestTiming, len(timings))
	copy(sorted, timings)

	for i := 1; i < len(sorted); i++ {
		for j := i; j > 0 && sorted[j].Elapsed < sorted[j-1].Elapsed; j-- {
			sorted[j], sorted[j-1] = sorted[j-1], sorted[j]
		}
	}

	return &TestOrder{Tests: sorted, killers: make(map[Point]string)}
}

// ForPoint returns the test order to try for a mutant at the given point:
// the last killer at that point first (if one is known), then the rest of
// the warm-up-sorted order.
func (o *TestOrder) ForPoint(p Point) []TestTiming {
	killer, ok := o.killers[p]
	if !ok {
		return o.Tests
	}

	ordered := make([]TestTiming, 0, len(o.Tests))

	var found *TestTiming

	for i := range o.Tests {
		if o.Tests[i].TestMethod == killer {
			found = &o.Tests[i]
			continue
		}

		ordered = append(ordered, o.Tests[i])
	}

	if found == nil {
		return o.Tests
	}

	return append([]TestTiming{*found}, ordered...)
}

// Promote records that `killer` killed the mutant at point p, so future
// mutants at the same point try it first.
func (o *TestOrder) Promote(p Point, killer string) {
	if o.killers == nil {
		o.killers = make(map[Point]string)
	}

	o.killers[p] = killer
}

// Budget derives a per-test time budget from its warm-up elapsed time:
// B = 10*t + 2s, confirmed against the original implementation's
// computeTimeout.
func Budget(warmUp time.Duration) time.Duration {
	return warmUp*10 + 2*time.Second
}
