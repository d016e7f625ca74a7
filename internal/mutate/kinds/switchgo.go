package kinds

import (
	"fmt"

	cf "github.com/pragmatics/jumble/internal/classfile"
	m "github.com/pragmatics/jumble/internal/model"
)

// Switch swaps two adjacent case targets in a TABLESWITCH/LOOKUPSWITCH
// instruction (spec.md §4.B). Swapping two 4-byte jump-offset fields never
// changes the instruction's length, so this kind always applies once
// matched.
var Switch = Rule{
	Kind: m.KindSwitch,
	Matches: func(_ *m.ConstantPool, code []byte, offset int) bool {
		n, ok := switchCaseCount(code, offset)
		return ok && n >= 2
	},
	Apply: func(_ *m.ConstantPool, code []byte, offset int) ([]byte, string, bool) {
		firstCaseOffset, ok := switchFirstCaseOffset(code, offset)
		if !ok {
			return nil, "", false
		}

		n, ok := switchCaseCount(code, offset)
		if !ok || n < 2 {
			return nil, "", false
		}

		stride := switchEntryStride(code[offset])

		out := make([]byte, len(code))
		copy(out, code)

		a := firstCaseOffset + jumpFieldOffset(code[offset])
		b := a + stride

		var tmp [4]byte
		copy(tmp[:], out[a:a+4])
		copy(out[a:a+4], out[b:b+4])
		copy(out[b:b+4], tmp[:])

		return out, fmt.Sprintf("swapped two case targets at offset %d", offset), true
	},
}

// SwitchDefault redirects a TABLESWITCH/LOOKUPSWITCH's default branch to its
// first case's target (spec.md §4.B's "redirect default to a case target"
// half of the switch kind). This is a distinct mutation point from Switch's
// case-swap at the same offset: SwitchDefault is offered whenever the switch
// kind is enabled and the instruction has at least one case, Switch only
// when it has at least two.
var SwitchDefault = Rule{
	Kind: m.KindSwitch,
	Matches: func(_ *m.ConstantPool, code []byte, offset int) bool {
		n, ok := switchCaseCount(code, offset)
		return ok && n >= 1
	},
	Apply: func(_ *m.ConstantPool, code []byte, offset int) ([]byte, string, bool) {
		firstCaseOffset, ok := switchFirstCaseOffset(code, offset)
		if !ok {
			return nil, "", false
		}

		n, ok := switchCaseCount(code, offset)
		if !ok || n < 1 {
			return nil, "", false
		}

		pad := cf.SwitchPadding(offset)
		defaultOffset := offset + 1 + pad

		caseTarget := firstCaseOffset + jumpFieldOffset(code[offset])

		out := make([]byte, len(code))
		copy(out, code)
		copy(out[defaultOffset:defaultOffset+4], out[caseTarget:caseTarget+4])

		return out, fmt.Sprintf("redirected default branch to first case target at offset %d", offset), true
	},
}

func switchEntryStride(op byte) int {
	if op == cf.OpLookupswitch {
		return 8 // match(4) + offset(4)
	}

	return 4 // tableswitch: just offset(4)
}

func jumpFieldOffset(op byte) int {
	if op == cf.OpLookupswitch {
		return 4 // skip the match value to reach the jump offset
	}

	return 0
}

func switchFirstCaseOffset(code []byte, offset int) (int, bool) {
	pad := cf.SwitchPadding(offset)
	base := offset + 1 + pad

	switch code[offset] {
	case cf.OpTableswitch:
		return base + 12, true
	case cf.OpLookupswitch:
		return base + 8, true
	default:
		return 0, false
	}
}

func switchCaseCount(code []byte, offset int) (int, bool) {
	pad := cf.SwitchPadding(offset)
	base := offset + 1 + pad

	switch code[offset] {
	case cf.OpTableswitch:
		low := int32(cf.BE32(code[base+4:]))
		high := int32(cf.BE32(code[base+8:]))

		return int(high-low) + 1, true
	case cf.OpLookupswitch:
		return int(cf.BE32(code[base+4:])), true
	default:
		return 0, false
	}
}
