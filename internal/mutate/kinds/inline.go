package kinds

import (
	"fmt"

	cf "github.com/pragmatics/jumble/internal/classfile"
	m "github.com/pragmatics/jumble/internal/model"
)

// InlineConstants perturbs a small-integer literal embedded directly in the
// instruction stream by +/-1, per spec.md §4.B. BIPUSH/SIPUSH carry their
// operand inline so the opcode itself never changes; ICONST_<n> carries its
// value in the opcode and so must switch opcodes within the -1..5 family.
var InlineConstants = Rule{
	Kind: m.KindInlineConstants,
	Matches: func(_ *m.ConstantPool, code []byte, offset int) bool {
		_, _, ok := inlineRewrite(code, offset)
		return ok
	},
	Apply: func(_ *m.ConstantPool, code []byte, offset int) ([]byte, string, bool) {
		return inlineRewrite(code, offset)
	},
}

func inlineRewrite(code []byte, offset int) ([]byte, string, bool) {
	switch code[offset] {
	case cf.OpBipush:
		v := int8(code[offset+1])
		if v == 127 {
			return withByteOperand(code, offset, 1, byte(int8(v-1))), fmt.Sprintf("decremented bipush constant at offset %d", offset), true
		}

		return withByteOperand(code, offset, 1, byte(int8(v+1))), fmt.Sprintf("incremented bipush constant at offset %d", offset), true

	case cf.OpSipush:
		v := int16(uint16(code[offset+1])<<8 | uint16(code[offset+2]))
		nv := v + 1

		if v == 32767 {
			nv = v - 1
		}

		out := make([]byte, len(code))
		copy(out, code)
		out[offset+1] = byte(uint16(nv) >> 8)
		out[offset+2] = byte(uint16(nv))

		return out, fmt.Sprintf("perturbed sipush constant at offset %d", offset), true

	default:
		if v, ok := smallIntConstOpcodes[code[offset]]; ok {
			// 0->1, 1->0, n->n+1 (spec.md §4.B's worked example): 1 and 5
			// go down (to 0 and 4), since ICONST_5 has no ICONST_6 above it.
			next := v + 1

			switch v {
			case 1:
				next = 0
			case 5:
				next = v - 1
			}

			if newOp, ok2 := iconstForValue(next); ok2 {
				return withOpcode(code, offset, newOp), fmt.Sprintf("perturbed inline constant at offset %d", offset), true
			}

			return nil, "", false
		}

		return nil, "", false
	}
}
