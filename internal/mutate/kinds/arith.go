package kinds

import (
	"fmt"

	m "github.com/pragmatics/jumble/internal/model"
)

// SwapArith swaps one arithmetic opcode for its fixed counterpart (spec.md
// §4.B): +<->-, *<->/, %<->*, shifts within their family, bitwise ops
// rotated within their family.
var SwapArith = Rule{
	Kind: m.KindSwapArith,
	Matches: func(_ *m.ConstantPool, code []byte, offset int) bool {
		_, ok := arithSwap[code[offset]]
		return ok
	},
	Apply: func(_ *m.ConstantPool, code []byte, offset int) ([]byte, string, bool) {
		counterpart, ok := arithSwap[code[offset]]
		if !ok {
			return nil, "", false
		}

		return withOpcode(code, offset, counterpart), fmt.Sprintf("swapped arithmetic operator at offset %d", offset), true
	},
}
