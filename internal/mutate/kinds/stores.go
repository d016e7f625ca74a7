package kinds

import (
	"fmt"

	cf "github.com/pragmatics/jumble/internal/classfile"
	m "github.com/pragmatics/jumble/internal/model"
)

// storeFamily pairs one explicit-index store opcode (e.g. ISTORE <idx>)
// with its four compact store_<n> forms (n in 0..3). Every opcode in a
// family stores the same JVM stack type (int, long, float, double, or
// reference), so swapping within one family never changes a store's type.
type storeFamily struct {
	op         byte
	shortForms [4]byte
}

var storeFamilies = []storeFamily{
	{op: cf.OpIstore, shortForms: [4]byte{0x3b, 0x3c, 0x3d, 0x3e}}, // istore_<n>
	{op: cf.OpLstore, shortForms: [4]byte{0x3f, 0x40, 0x41, 0x42}}, // lstore_<n>
	{op: cf.OpFstore, shortForms: [4]byte{0x43, 0x44, 0x45, 0x46}}, // fstore_<n>
	{op: cf.OpDstore, shortForms: [4]byte{0x47, 0x48, 0x49, 0x4a}}, // dstore_<n>
	{op: cf.OpAstore, shortForms: [4]byte{0x4b, 0x4c, 0x4d, 0x4e}}, // astore_<n>
}

// Stores replaces a local-variable store with a store to an adjacent local
// slot of the same stack type (spec.md §4.B), for every store opcode family
// (int/long/float/double/reference), not just int. Both the explicit-index
// form (<x>STORE <idx>) and the compact <x>store_<n> forms are handled; the
// replacement always has the same instruction length as the original.
var Stores = Rule{
	Kind: m.KindStores,
	Matches: func(_ *m.ConstantPool, code []byte, offset int) bool {
		_, _, ok := storeRewrite(code, offset)
		return ok
	},
	Apply: func(_ *m.ConstantPool, code []byte, offset int) ([]byte, string, bool) {
		return storeRewrite(code, offset)
	},
}

func storeRewrite(code []byte, offset int) ([]byte, string, bool) {
	for _, family := range storeFamilies {
		if code[offset] == family.op {
			idx := code[offset+1]
			adjacent := idx + 1

			if idx == 255 {
				adjacent = idx - 1
			}

			return withByteOperand(code, offset, 1, adjacent), fmt.Sprintf("redirected local store at offset %d (slot %d -> %d)", offset, idx, adjacent), true
		}

		for i, op := range family.shortForms {
			if code[offset] != op {
				continue
			}

			adjacent := (i + 1) % len(family.shortForms)

			return withOpcode(code, offset, family.shortForms[adjacent]), fmt.Sprintf("redirected local store at offset %d (slot %d -> %d)", offset, i, adjacent), true
		}
	}

	return nil, "", false
}
