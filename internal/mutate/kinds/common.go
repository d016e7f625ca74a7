package kinds

import (
	cf "github.com/pragmatics/jumble/internal/classfile"
)

// withOpcode returns a copy of code with the opcode at offset replaced,
// preserving every operand byte untouched. Used by rules that only ever
// swap the single opcode byte for another of the same instruction length
// (negate-conditional, swap-arith).
func withOpcode(code []byte, offset int, newOp byte) []byte {
	out := make([]byte, len(code))
	copy(out, code)
	out[offset] = newOp

	return out
}

// withByteOperand returns a copy of code with a single operand byte
// replaced (used by increments/inline-constants/stores, whose operand is
// one byte after the opcode).
func withByteOperand(code []byte, offset int, operandPos int, newValue byte) []byte {
	out := make([]byte, len(code))
	copy(out, code)
	out[offset+operandPos] = newValue

	return out
}

// conditionalInverse is the closed negate-conditional pairing from spec.md
// §4.B: IFEQ<->IFNE, IFLT<->IFGE, IFGT<->IFLE, the IF_ICMP family, and
// IFNULL<->IFNONNULL. Branch target operands are untouched since the
// inverse opcode always has the same instruction length.
var conditionalInverse = map[byte]byte{
	cf.OpIfeq: cf.OpIfne, cf.OpIfne: cf.OpIfeq,
	cf.OpIflt: cf.OpIfge, cf.OpIfge: cf.OpIflt,
	cf.OpIfgt: cf.OpIfle, cf.OpIfle: cf.OpIfgt,
	cf.OpIfIcmpeq: cf.OpIfIcmpne, cf.OpIfIcmpne: cf.OpIfIcmpeq,
	cf.OpIfIcmplt: cf.OpIfIcmpge, cf.OpIfIcmpge: cf.OpIfIcmplt,
	cf.OpIfIcmpgt: cf.OpIfIcmple, cf.OpIfIcmple: cf.OpIfIcmpgt,
	cf.OpIfnull: cf.OpIfnonnull, cf.OpIfnonnull: cf.OpIfnull,
}

// arithSwap is the fixed counterpart mapping from spec.md §4.B; where more
// than one opposite could apply, the first listed wins so enumeration stays
// deterministic (e.g. IREM's counterpart is IMUL, not the reverse).
var arithSwap = map[byte]byte{
	cf.OpIadd: cf.OpIsub, cf.OpIsub: cf.OpIadd,
	cf.OpLadd: cf.OpLsub, cf.OpLsub: cf.OpLadd,
	cf.OpFadd: cf.OpFsub, cf.OpFsub: cf.OpFadd,
	cf.OpDadd: cf.OpDsub, cf.OpDsub: cf.OpDadd,

	cf.OpImul: cf.OpIdiv, cf.OpIdiv: cf.OpImul,
	cf.OpLmul: cf.OpLdiv, cf.OpLdiv: cf.OpLmul,
	cf.OpFmul: cf.OpFdiv, cf.OpFdiv: cf.OpFmul,
	cf.OpDmul: cf.OpDdiv, cf.OpDdiv: cf.OpDmul,

	cf.OpIrem: cf.OpImul,
	cf.OpLrem: cf.OpLmul,
	cf.OpFrem: cf.OpFmul,
	cf.OpDrem: cf.OpDmul,

	// ISHL<->ISHR and IAND<->IOR are independent bidirectional pairs. IUSHR
	// and IXOR each also pair with one side of those, but ISHL and IOR are
	// already claimed by their own pair: tie-break picks the first listed,
	// so ISHL keeps mapping to ISHR (not IUSHR) and IOR keeps mapping to
	// IAND (not IXOR); IUSHR and IXOR fall back to the other half of the
	// pair they share a claim with.
	cf.OpIshl: cf.OpIshr, cf.OpIshr: cf.OpIshl,
	cf.OpIushr: cf.OpIshl,
	cf.OpLshl: cf.OpLshr, cf.OpLshr: cf.OpLshl,
	cf.OpLushr: cf.OpLshl,

	cf.OpIand: cf.OpIor, cf.OpIor: cf.OpIand,
	cf.OpIxor: cf.OpIor,
	cf.OpLand: cf.OpLor, cf.OpLor: cf.OpLand,
	cf.OpLxor: cf.OpLor,
}

// smallIntConstOpcodes maps ICONST_m1..ICONST_5 to their represented value.
var smallIntConstOpcodes = map[byte]int32{
	cf.OpIconstM1: -1,
	cf.OpIconst0:  0,
	cf.OpIconst1:  1,
	cf.OpIconst2:  2,
	cf.OpIconst3:  3,
	cf.OpIconst4:  4,
	cf.OpIconst5:  5,
}

// iconstForValue is the inverse of smallIntConstOpcodes, valid only for
// -1..5; callers must check the range first.
func iconstForValue(v int32) (byte, bool) {
	for op, val := range smallIntConstOpcodes {
		if val == v {
			return op, true
		}
	}

	return 0, false
}

func isReturnOpcode(op byte) bool {
	switch op {
	case cf.OpIreturn, cf.OpLreturn, cf.OpFreturn, cf.OpDreturn, cf.OpAreturn, cf.OpReturn:
		return true
	default:
		return false
	}
}
