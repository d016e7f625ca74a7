// Package kinds implements one generator per mutation kind: a small,
// pure function pair answering "does this kind apply at this bytecode
// offset?" and "apply it, returning the equal-length replacement". This
// mirrors the teacher's per-kind generator files under
// internal/domain/mutagens/ (branch.go, arithmetic.go, boolean.go): one
// file per mutation family, dispatch by a shared registry, no shared
// mutable state between rules.
package kinds

import m "github.com/pragmatics/jumble/internal/model"

// Rule is one mutation kind's generator.
type Rule struct {
	Kind Kind

	// Matches reports whether this rule applies to the instruction at
	// code[offset]. It must not mutate anything.
	Matches func(pool *m.ConstantPool, code []byte, offset int) bool

	// Apply produces the mutated instruction bytes and a human-readable
	// description. It returns ok=false when no equal-length rewrite
	// exists, in which case the point is still counted but not applied
	// (per spec.md §4.A/§4.B).
	Apply func(pool *m.ConstantPool, code []byte, offset int) (mutated []byte, description string, ok bool)
}

// Kind re-exports model.Kind so rule files don't need to import model
// just for the type alias.
type Kind = m.Kind

// Registry lists every rule in the fixed tie-break order from model.KindOrder.
var Registry = []Rule{
	NegateConditional,
	SwapArith,
	Increments,
	ReturnValues,
	InlineConstants,
	ConstantPool,
	ConstantPoolNull,
	Switch,
	SwitchDefault,
	Stores,
}

// ForKinds filters Registry down to the enabled kinds, preserving order.
func ForKinds(enabled map[m.Kind]bool) []Rule {
	rules := make([]Rule, 0, len(Registry))

	for _, r := range Registry {
		if enabled[r.Kind] {
			rules = append(rules, r)
		}
	}

	return rules
}
