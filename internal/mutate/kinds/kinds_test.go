package kinds

import (
	"testing"

	"github.com/stretchr/testify/require"

	cf "github.com/pragmatics/jumble/internal/classfile"
)

func TestArithSwapPairsAreIndependentBidirectionalPairsWithTieBreak(t *testing.T) {
	require.Equal(t, cf.OpIshr, arithSwap[cf.OpIshl])
	require.Equal(t, cf.OpIshl, arithSwap[cf.OpIshr])
	require.Equal(t, cf.OpIshl, arithSwap[cf.OpIushr]) // claims ISHL, loses the tie to pair #1

	require.Equal(t, cf.OpIor, arithSwap[cf.OpIand])
	require.Equal(t, cf.OpIand, arithSwap[cf.OpIor])
	require.Equal(t, cf.OpIor, arithSwap[cf.OpIxor]) // claims IOR, loses the tie to pair #2
}

func TestSwitchDefaultRedirectsToFirstCaseTarget(t *testing.T) {
	// TABLESWITCH at offset 0: default=40, low=0, high=1, case targets 20, 30.
	pad := cf.SwitchPadding(0)
	code := make([]byte, 1+pad+12+2*4)
	code[0] = cf.OpTableswitch

	base := 1 + pad
	cf.PutBE32(code[base:], 40)    // default
	cf.PutBE32(code[base+4:], 0)   // low
	cf.PutBE32(code[base+8:], 1)   // high
	cf.PutBE32(code[base+12:], 20) // case 0 target
	cf.PutBE32(code[base+16:], 30) // case 1 target

	out, desc, ok := SwitchDefault.Apply(nil, code, 0)
	require.True(t, ok)
	require.NotEmpty(t, desc)
	require.Equal(t, uint32(20), cf.BE32(out[base:]))
}

func TestConstantPoolNullMatchesOnlyAconstNull(t *testing.T) {
	code := []byte{cf.OpAconstNull, cf.OpAreturn}

	require.True(t, ConstantPoolNull.Matches(nil, code, 0))
	require.False(t, ConstantPoolNull.Matches(nil, code, 1))

	out, desc, ok := ConstantPoolNull.Apply(nil, code, 0)
	require.True(t, ok)
	require.NotEmpty(t, desc)
	require.Equal(t, byte(0x2a), out[0]) // ALOAD_0 ("this"), same length as ACONST_NULL
	require.Len(t, out, len(code))
}

func TestStoresHandlesEveryStackTypeNotJustInt(t *testing.T) {
	cases := []struct {
		name string
		op   byte
	}{
		{"istore", cf.OpIstore},
		{"lstore", cf.OpLstore},
		{"fstore", cf.OpFstore},
		{"dstore", cf.OpDstore},
		{"astore", cf.OpAstore},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			code := []byte{tc.op, 3}

			out, desc, ok := storeRewrite(code, 0)
			require.True(t, ok, "expected a rewrite for %s", tc.name)
			require.NotEmpty(t, desc)
			require.Equal(t, byte(4), out[1])
		})
	}
}

func TestStoresShortFormsStayWithinTheSameFamily(t *testing.T) {
	// lstore_1 (0x40) must redirect to another lstore_<n> short form (here
	// lstore_2, 0x41), never crossing into the istore/fstore/dstore/astore
	// families.
	code := []byte{0x40}

	out, _, ok := storeRewrite(code, 0)
	require.True(t, ok)
	require.Equal(t, byte(0x41), out[0])
}

func TestInlineConstantOneMapsToZero(t *testing.T) {
	code := []byte{cf.OpIconst1}

	out, desc, ok := inlineRewrite(code, 0)
	require.True(t, ok)
	require.NotEmpty(t, desc)
	require.Equal(t, byte(cf.OpIconst0), out[0])
}

func TestInlineConstantZeroMapsToOne(t *testing.T) {
	code := []byte{cf.OpIconst0}

	out, _, ok := inlineRewrite(code, 0)
	require.True(t, ok)
	require.Equal(t, byte(cf.OpIconst1), out[0])
}

func TestInlineConstantFiveDecrementsAtTheBoundary(t *testing.T) {
	code := []byte{cf.OpIconst5}

	out, _, ok := inlineRewrite(code, 0)
	require.True(t, ok)
	require.Equal(t, byte(cf.OpIconst4), out[0])
}
