package kinds

import (
	"fmt"

	cf "github.com/pragmatics/jumble/internal/classfile"
	m "github.com/pragmatics/jumble/internal/model"
)

// ReturnValues mutates a method's return value by rewriting the
// value-producing instruction immediately before the return opcode, never
// the return opcode itself (spec.md §4.B: rewriting IRETURN to add a NEG
// would change length). Only value-producing instructions that are
// themselves a single byte are candidates, since the replacement must have
// identical length; anything else does not match, so the return is not
// offered (or counted) as a mutation point at all.
var ReturnValues = Rule{
	Kind: m.KindReturnValues,
	Matches: func(_ *m.ConstantPool, code []byte, offset int) bool {
		if !isReturnOpcode(code[offset]) || offset == 0 {
			return false
		}

		_, _, ok := returnRewrite(code, offset)

		return ok
	},
	Apply: func(_ *m.ConstantPool, code []byte, offset int) ([]byte, string, bool) {
		newOp, desc, ok := returnRewrite(code, offset)
		if !ok {
			return nil, "", false
		}

		return withOpcode(code, offset-1, newOp), desc, true
	},
}

// returnRewrite finds a same-length substitute for the single-byte
// instruction immediately preceding a return opcode.
func returnRewrite(code []byte, offset int) (byte, string, bool) {
	prevStart := -1
	for pos := 0; pos < offset; {
		n, err := cf.InstructionLength(code, pos)
		if err != nil || n <= 0 {
			return 0, "", false
		}
		prevStart, pos = pos, pos+n
	}

	if prevStart != offset-1 {
		return 0, "", false // the byte before the return is an operand, not an instruction
	}

	prevOp := code[offset-1]

	switch code[offset] {
	case cf.OpIreturn:
		if v, ok := smallIntConstOpcodes[prevOp]; ok {
			// Boolean-shaped (0/1) returns invert; everything else negates
			// or, failing that, bumps by one within the representable range.
			if v == 0 || v == 1 {
				if flipped, ok2 := iconstForValue(1 - v); ok2 {
					return flipped, fmt.Sprintf("inverted boolean return at offset %d", offset), true
				}
			}

			if negated, ok2 := iconstForValue(-v); ok2 {
				return negated, fmt.Sprintf("negated integer return at offset %d", offset), true
			}

			if bumped, ok2 := iconstForValue(v + 1); ok2 {
				return bumped, fmt.Sprintf("incremented integer return at offset %d", offset), true
			}
		}

		return 0, "", false

	case cf.OpAreturn:
		if prevOp == cf.OpAconstNull {
			return 0, "", false // already null, nothing to mutate to
		}

		if isArefConstantOpcode(prevOp) {
			return cf.OpAconstNull, fmt.Sprintf("replaced object return with null at offset %d", offset), true
		}

		return 0, "", false

	default:
		return 0, "", false
	}
}

// isArefConstantOpcode reports whether op is a single-byte instruction that
// pushes a reference value onto the stack (the aload_<n> shorthand forms).
func isArefConstantOpcode(op byte) bool {
	switch op {
	case 0x2a, 0x2b, 0x2c, 0x2d: // aload_0..aload_3
		return true
	default:
		return false
	}
}
