// Package mutate implements component B: given class bytes, a mutation
// index, the enabled kinds, and an exclusion filter, produce the mutated
// bytes and a description, or report that enumeration has run out of
// points. Grounded on the teacher's per-kind generator shape in
// internal/domain/mutagens/*.go, generalized from Go-source AST nodes to
// JVM bytecode offsets.
package mutate

import (
	"fmt"

	"github.com/pragmatics/jumble/internal/classfile"
	"github.com/pragmatics/jumble/internal/mutate/kinds"
	m "github.com/pragmatics/jumble/internal/model"
)

// defaultExcludedMethods are always excluded, regardless
// of the caller's --exclude list (spec.md §3 "Exclusion filter").
var defaultExcludedMethods = map[string]bool{
	"main":       true,
	"integrity":  true,
	"<clinit>":   true, // static initializers are never meaningfully mutated
}

// Mutater walks a class's methods in declaration order and, within each
// method, its bytecode in ascending offset order, applying the fixed
// per-offset kind ordering from model.KindOrder.
type Mutater struct{}

// New constructs a Mutater. It carries no state: every call is independent,
// matching spec.md's "mutate(bytes, index, kinds, exclusions) -> result"
// contract being a pure function of its arguments.
func New() *Mutater {
	return &Mutater{}
}

// Options configures one Mutate/Count call.
type Options struct {
	EnabledKinds    map[m.Kind]bool
	ExcludedMethods map[string]bool
}

func (o Options) effectiveKinds() map[m.Kind]bool {
	enabled := make(map[m.Kind]bool, len(o.EnabledKinds)+len(m.AlwaysOnKinds))
	for k, v := range o.EnabledKinds {
		if v {
			enabled[k] = true
		}
	}

	for k := range m.AlwaysOnKinds {
		enabled[k] = true
	}

	return enabled
}

func (o Options) isExcluded(name string) bool {
	return defaultExcludedMethods[name] || o.ExcludedMethods[name]
}

// Count enumerates every mutation point without applying any of them,
// returning the total N the scheduler needs for its Counting state.
func (mt *Mutater) Count(cf *m.ClassFile, opts Options) (int, error) {
	n := 0

	err := mt.walk(cf, opts, func(int, int, int, kinds.Rule) (bool, error) {
		n++
		return false, nil
	})

	return n, err
}

// Mutate applies the mutation at the given 0-based index, returning
// (mutation, true, nil) on success, (zero, false, nil) once index is past
// the last point ("no such point", per spec.md §4.B), or a non-nil error if
// the class bytes are structurally unusable.
func (mt *Mutater) Mutate(cf *m.ClassFile, index int, opts Options) (m.Mutation, bool, error) {
	if index < 0 {
		return m.Mutation{}, false, fmt.Errorf("mutate: negative index %d", index)
	}

	var (
		result m.Mutation
		found  bool
	)

	ordinal := 0

	err := mt.walk(cf, opts, func(methodIdx, offset, methodOrdinal int, rule kinds.Rule) (bool, error) {
		if ordinal != index {
			ordinal++
			return false, nil
		}

		method := &cf.Methods[methodIdx]
		code := method.Code()

		// Constant-pool rules edit the pool in place; keep the original
		// entries so the ClassFile is unchanged once this call returns.
		poolSnapshot := make([]m.Constant, len(cf.ConstantPool.Entries))
		copy(poolSnapshot, cf.ConstantPool.Entries)

		mutated, desc, ok := rule.Apply(&cf.ConstantPool, code.Code, offset)
		if !ok {
			// Matched but not applicable: still counted, point is skipped.
			cf.ConstantPool.Entries = poolSnapshot
			ordinal++
			return false, nil
		}

		line := classfile.LineForOffset(method, offset)
		bytesOut := emitWithMutatedMethod(cf, method, mutated)
		cf.ConstantPool.Entries = poolSnapshot

		result = m.Mutation{
			Index:       index,
			Point:       m.Point{MethodIndex: methodIdx, Offset: offset, Kind: rule.Kind},
			Bytes:       bytesOut,
			Description: desc,
			Line:        line,
			MethodName:  cf.MethodName(method),
		}
		found = true

		return true, nil
	})
	if err != nil {
		return m.Mutation{}, false, err
	}

	return result, found, nil
}

// emitWithMutatedMethod swaps a method's code to the mutated form, emits the
// full class image, then restores the method's code and the constant pool as
// they were on entry. Mutate itself undoes a rule's in-place pool edit, so
// the ClassFile can be reused for the next index in the same worker batch.
func emitWithMutatedMethod(cf *m.ClassFile, method *m.Method, mutatedCode []byte) []byte {
	code := method.Code()
	original := code.Code

	poolSnapshot := make([]m.Constant, len(cf.ConstantPool.Entries))
	copy(poolSnapshot, cf.ConstantPool.Entries)

	code.Code = mutatedCode
	out := classfile.Emit(cf)

	code.Code = original
	cf.ConstantPool.Entries = poolSnapshot

	return out
}

// walk drives the method/offset/kind traversal shared by Count and Mutate.
// visit is called once per matching (method, offset, kind) triple in
// enumeration order; it returns (stop, error). Returning stop=true ends the
// walk immediately (Mutate uses this once it has applied its target index).
func (mt *Mutater) walk(cf *m.ClassFile, opts Options, visit func(methodIdx, offset, ordinalInMethod int, rule kinds.Rule) (bool, error)) error {
	enabledKinds := opts.effectiveKinds()
	rules := kinds.ForKinds(enabledKinds)
	ldcRefCount := countLdcReferences(cf)

	for methodIdx := range cf.Methods {
		method := &cf.Methods[methodIdx]
		if method.IsSynthetic() || opts.isExcluded(cf.MethodName(method)) {
			continue
		}

		code := method.Code()
		if code == nil {
			continue // abstract/native: no bytecode to mutate
		}

		guarded, err := assertionGuardRanges(&cf.ConstantPool, code.Code)
		if err != nil {
			return fmt.Errorf("mutate: method %q: %w", cf.MethodName(method), err)
		}

		offset := 0
		ordinal := 0

		for offset < len(code.Code) {
			length, err := classfile.InstructionLength(code.Code, offset)
			if err != nil {
				return fmt.Errorf("mutate: method %q at offset %d: %w", cf.MethodName(method), offset, err)
			}

			if !inAnyRange(guarded, offset) {
				for _, rule := range rules {
					if !rule.Matches(&cf.ConstantPool, code.Code, offset) {
						continue
					}

					// The exclusivity requirement only constrains LDC-family
					// rewrites, which share a pool slot with every other
					// reference to it. ACONST_NULL never references the pool
					// at all, so it has nothing to leak into and is exempt.
					if rule.Kind == m.KindConstantPool {
						if _, isLdc := ldcOperandIndex(code.Code, offset); isLdc && !exclusiveReference(code.Code, offset, ldcRefCount) {
							continue
						}
					}

					stop, err := visit(methodIdx, offset, ordinal, rule)
					if err != nil {
						return err
					}

					ordinal++

					if stop {
						return nil
					}
				}
			}

			offset += length
		}
	}

	return nil
}

// countLdcReferences tallies, across every method's code, how many LDC-family
// instructions reference each constant-pool index. The constant-pool kind
// only ever mutates an index with exactly one referencing site (spec.md
// §4.B), so perturbing it cannot change behaviour anywhere else in the class.
func countLdcReferences(cf *m.ClassFile) map[uint16]int {
	counts := make(map[uint16]int)

	for i := range cf.Methods {
		code := cf.Methods[i].Code()
		if code == nil {
			continue
		}

		offset := 0

		for offset < len(code.Code) {
			length, err := classfile.InstructionLength(code.Code, offset)
			if err != nil {
				break
			}

			if idx, ok := ldcOperandIndex(code.Code, offset); ok {
				counts[idx]++
			}

			offset += length
		}
	}

	return counts
}

func ldcOperandIndex(code []byte, offset int) (uint16, bool) {
	switch code[offset] {
	case classfile.OpLdc:
		return uint16(code[offset+1]), true
	case classfile.OpLdcW, classfile.OpLdc2W:
		return uint16(code[offset+1])<<8 | uint16(code[offset+2]), true
	default:
		return 0, false
	}
}

func exclusiveReference(code []byte, offset int, refCount map[uint16]int) bool {
	idx, ok := ldcOperandIndex(code, offset)
	if !ok {
		return false
	}

	return refCount[idx] == 1
}

type byteRange struct{ start, end int }

func inAnyRange(ranges []byteRange, offset int) bool {
	for _, r := range ranges {
		if offset >= r.start && offset < r.end {
			return true
		}
	}

	return false
}

// assertionGuardRanges finds every `GETSTATIC $assertionsDisabled; IFNE
// skip; ...; skip:` span in a method's code, per spec.md §4.B. Instructions
// inside such a span are never mutation candidates: their behaviour is only
// observable when assertions are enabled, which the test harness does not
// guarantee.
func assertionGuardRanges(pool *m.ConstantPool, code []byte) ([]byteRange, error) {
	var ranges []byteRange

	offset := 0

	for offset < len(code) {
		length, err := classfile.InstructionLength(code, offset)
		if err != nil {
			return nil, err
		}

		if code[offset] == classfile.OpIfne && offset >= 3 && code[offset-3] == classfile.OpGetstatic &&
			isAssertionsDisabledField(pool, uint16(code[offset-2])<<8|uint16(code[offset-1])) {
			target := offset + int(int16(uint16(code[offset+1])<<8|uint16(code[offset+2])))
			if target > offset {
				ranges = append(ranges, byteRange{start: offset + length, end: target})
			}
		}

		offset += length
	}

	return ranges, nil
}

// isAssertionsDisabledField reports whether a GETSTATIC's constant-pool
// operand resolves to a field literally named "$assertionsDisabled" — the
// field javac synthesizes for the `assert` statement's enablement check.
// Any other static-boolean GETSTATIC (an ordinary feature flag, say) is not
// an assertion guard and stays eligible for mutation.
func isAssertionsDisabledField(pool *m.ConstantPool, fieldrefIndex uint16) bool {
	if int(fieldrefIndex) >= len(pool.Entries) {
		return false
	}

	fieldref := pool.Get(fieldrefIndex)
	if fieldref.Tag != m.TagFieldref {
		return false
	}

	if int(fieldref.NameAndTypeIndex) >= len(pool.Entries) {
		return false
	}

	nameAndType := pool.Get(fieldref.NameAndTypeIndex)
	if nameAndType.Tag != m.TagNameAndType {
		return false
	}

	if int(nameAndType.NameIndex) >= len(pool.Entries) {
		return false
	}

	return pool.Get(nameAndType.NameIndex).UTF8 == "$assertionsDisabled"
}
