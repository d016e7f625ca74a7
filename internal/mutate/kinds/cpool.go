package kinds

import (
	"fmt"

	cf "github.com/pragmatics/jumble/internal/classfile"
	m "github.com/pragmatics/jumble/internal/model"
)

// ConstantPool perturbs a numeric or string constant-pool entry referenced
// by an LDC/LDC_W instruction in the current method (spec.md §4.B). Unlike
// every other kind, the edit lands in the pool, not in the code array — the
// returned "mutated" code is byte-identical to the input; Apply mutates the
// pool entry in place instead. Enumeration in internal/mutate only offers
// this kind at constants used exclusively by the method being mutated, so
// perturbing the shared entry does not leak into other methods' behaviour.
var ConstantPool = Rule{
	Kind: m.KindConstantPool,
	Matches: func(pool *m.ConstantPool, code []byte, offset int) bool {
		idx, ok := ldcIndex(code, offset)
		if !ok {
			return false
		}

		entry := pool.Get(idx)

		return entry.Tag == m.TagInteger || entry.Tag == m.TagString
	},
	Apply: func(pool *m.ConstantPool, code []byte, offset int) ([]byte, string, bool) {
		idx, ok := ldcIndex(code, offset)
		if !ok {
			return nil, "", false
		}

		entry := pool.Get(idx)

		switch entry.Tag {
		case m.TagInteger:
			pool.Entries[idx].Int32 = entry.Int32 + 1
			return code, fmt.Sprintf("perturbed constant-pool integer at offset %d (%d -> %d)", offset, entry.Int32, entry.Int32+1), true

		case m.TagString:
			emptyIdx := cf.AppendUTF8(pool, "")
			pool.Entries[idx].NameIndex = emptyIdx

			return code, fmt.Sprintf("replaced constant-pool string at offset %d with empty string", offset), true

		default:
			return nil, "", false
		}
	},
}

// ConstantPoolNull perturbs the `null` literal pushed by ACONST_NULL into a
// sentinel non-null reference (spec.md §4.B). Unlike a numeric or string
// constant, null is never stored in the constant pool at all — it is the one
// member of this kind whose edit lands in the code array rather than the
// pool, and whose replacement must already be a valid same-length
// instruction: ALOAD_0 ("this") is always a reference value and always one
// byte, matching ACONST_NULL's own length. If the method is static, or the
// target site expects a type incompatible with the method's receiver, the
// JVM's verifier rejects the mutant at load time — caught as
// Killed(verification), not lost.
var ConstantPoolNull = Rule{
	Kind: m.KindConstantPool,
	Matches: func(_ *m.ConstantPool, code []byte, offset int) bool {
		return code[offset] == cf.OpAconstNull
	},
	Apply: func(_ *m.ConstantPool, code []byte, offset int) ([]byte, string, bool) {
		const opAload0 = 0x2a
		return withOpcode(code, offset, opAload0), fmt.Sprintf("replaced null constant with 'this' reference at offset %d", offset), true
	},
}

// ldcIndex resolves the constant-pool index an LDC family instruction
// references, normalizing the 1-byte and 2-byte index forms.
func ldcIndex(code []byte, offset int) (uint16, bool) {
	switch code[offset] {
	case cf.OpLdc:
		return uint16(code[offset+1]), true
	case cf.OpLdcW, cf.OpLdc2W:
		return uint16(code[offset+1])<<8 | uint16(code[offset+2]), true
	default:
		return 0, false
	}
}
