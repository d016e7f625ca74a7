package kinds

import (
	"fmt"

	cf "github.com/pragmatics/jumble/internal/classfile"
	m "github.com/pragmatics/jumble/internal/model"
)

// Increments negates the signed constant operand of an IINC instruction in
// place: `local += k` becomes `local -= k`. IINC's layout is
// [opcode, index, const] so only the third byte changes.
var Increments = Rule{
	Kind: m.KindIncrements,
	Matches: func(_ *m.ConstantPool, code []byte, offset int) bool {
		return code[offset] == cf.OpIinc
	},
	Apply: func(_ *m.ConstantPool, code []byte, offset int) ([]byte, string, bool) {
		if code[offset] != cf.OpIinc {
			return nil, "", false
		}

		original := int8(code[offset+2])
		if original == -128 {
			// -(-128) does not fit in an int8; no equal-length rewrite exists.
			return nil, "", false
		}

		negated := byte(int8(-original))

		return withByteOperand(code, offset, 2, negated), fmt.Sprintf("negated increment at offset %d (%d -> %d)", offset, original, int8(negated)), true
	},
}
