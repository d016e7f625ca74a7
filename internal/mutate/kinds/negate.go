package kinds

import (
	"fmt"

	m "github.com/pragmatics/jumble/internal/model"
)

// NegateConditional flips a conditional branch's predicate to its logical
// inverse, keeping the branch target untouched (same opcode length either
// way, so the edit is always applicable once matched).
var NegateConditional = Rule{
	Kind: m.KindNegateConditional,
	Matches: func(_ *m.ConstantPool, code []byte, offset int) bool {
		_, ok := conditionalInverse[code[offset]]
		return ok
	},
	Apply: func(_ *m.ConstantPool, code []byte, offset int) ([]byte, string, bool) {
		inverse, ok := conditionalInverse[code[offset]]
		if !ok {
			return nil, "", false
		}

		return withOpcode(code, offset, inverse), fmt.Sprintf("negated conditional at offset %d", offset), true
	},
}
