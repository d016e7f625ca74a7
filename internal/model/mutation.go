package model

import "fmt"

// Kind is one of the eight mutation kinds the engine supports. The set is
// closed: every Kind outside AlwaysOnKinds is individually togglable from the
// CLI (the AlwaysOnKinds always run), and enumeration
// order within a single bytecode offset follows KindOrder below.
type Kind string

// The closed set of mutation kinds.
const (
	KindNegateConditional Kind = "negate-conditional"
	KindSwapArith         Kind = "swap-arith"
	KindIncrements        Kind = "increments"
	KindReturnValues      Kind = "return-values"
	KindInlineConstants   Kind = "inline-constants"
	KindConstantPool      Kind = "constant-pool"
	KindSwitch            Kind = "switch"
	KindStores            Kind = "stores"
)

// KindOrder is the fixed tie-break ordering applied within one bytecode
// offset when more than one enabled kind matches the same instruction.
var KindOrder = []Kind{
	KindNegateConditional,
	KindSwapArith,
	KindIncrements,
	KindReturnValues,
	KindInlineConstants,
	KindConstantPool,
	KindSwitch,
	KindStores,
}

// AlwaysOnKinds are enabled regardless of CLI flags, per spec.
var AlwaysOnKinds = map[Kind]bool{
	KindNegateConditional: true,
	KindSwapArith:         true,
}

// Point is the logical address of one mutation opportunity: a method, a
// bytecode offset inside it, and the kind of edit that applies there.
type Point struct {
	MethodIndex int
	Offset      int
	Kind        Kind
}

// Mutation is the result of applying a Point to a class image: the mutated
// bytes, a human-readable description, and the line it corresponds to.
type Mutation struct {
	Index       int
	Point       Point
	Bytes       []byte
	Description string
	Line        int
	MethodName  string
}

// Outcome is the verdict of running tests against one mutant.
type Outcome int

// The closed set of mutant outcomes.
const (
	Survived Outcome = iota
	Killed
	Timeout // counted as Killed for scoring purposes
	FailedToLoad
	RuntimeError
)

// String renders an Outcome the way the default listener prints it.
func (o Outcome) String() string {
	switch o {
	case Survived:
		return "survived"
	case Killed:
		return "killed"
	case Timeout:
		return "timeout"
	case FailedToLoad:
		return "failed-to-load"
	case RuntimeError:
		return "runtime-error"
	default:
		return fmt.Sprintf("outcome(%d)", int(o))
	}
}

// CountsAsKilled reports whether an Outcome should contribute to the
// numerator of the mutation score. Timeout counts as killed (benefit of the
// doubt, per spec); FailedToLoad and RuntimeError are engine-side failures,
// not properties of the test suite, and are reported but excluded from both
// the numerator and denominator.
func (o Outcome) CountsAsKilled() bool {
	return o == Killed || o == Timeout
}

// ScoredOutcome reports whether the Outcome should appear in the score's
// denominator at all.
func (o Outcome) ScoredOutcome() bool {
	return o == Killed || o == Timeout || o == Survived
}

// Verdict is one line of the worker's report on a single mutation index.
type Verdict struct {
	Index   int
	Outcome Outcome
	Killer  string // test name, populated only when Outcome == Killed
	Reason  string // populated for RuntimeError/FailedToLoad
}
