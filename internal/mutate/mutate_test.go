package mutate_test

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/pragmatics/jumble/internal/classfile"
	m "github.com/pragmatics/jumble/internal/model"
	"github.com/pragmatics/jumble/internal/mutate"
)

// buildClassWithConditional builds a minimal one-method class whose body is
// `IFGT +3; RETURN` — one negate-conditional candidate, nothing else.
func buildClassWithConditional(t *testing.T, methodName string) *m.ClassFile {
	t.Helper()

	pool := &m.ConstantPool{Entries: []m.Constant{{}}}
	utf8Code := classfile.AppendUTF8(pool, "Code")
	utf8Name := classfile.AppendUTF8(pool, methodName)
	utf8Desc := classfile.AppendUTF8(pool, "()V")
	utf8ThisName := classfile.AppendUTF8(pool, "Widget")
	utf8SuperName := classfile.AppendUTF8(pool, "java/lang/Object")
	thisClass := pool.Append(m.Constant{Tag: m.TagClass, NameIndex: utf8ThisName})
	superClass := pool.Append(m.Constant{Tag: m.TagClass, NameIndex: utf8SuperName})

	code := []byte{classfile.OpIfgt, 0x00, 0x03, classfile.OpReturn}

	method := m.Method{
		AccessFlags:     m.AccPublic,
		NameIndex:       utf8Name,
		DescriptorIndex: utf8Desc,
		Attributes: []m.Attribute{
			{
				NameIndex: utf8Code,
				Code: &m.CodeAttribute{
					MaxStack:  1,
					MaxLocals: 1,
					Code:      code,
				},
			},
		},
	}

	return &m.ClassFile{
		MinorVersion: 0,
		MajorVersion: 52,
		ConstantPool: *pool,
		AccessFlags:  m.AccPublic | m.AccSuper,
		ThisClass:    thisClass,
		SuperClass:   superClass,
		Methods:      []m.Method{method},
	}
}

func TestCountFindsTheOneConditional(t *testing.T) {
	cf := buildClassWithConditional(t, "compute")

	mutater := mutate.New()
	n, err := mutater.Count(cf, mutate.Options{})
	require.NoError(t, err)
	require.Equal(t, 1, n)
}

func TestMutateNegatesTheConditional(t *testing.T) {
	cf := buildClassWithConditional(t, "compute")

	mutater := mutate.New()
	mutation, ok, err := mutater.Mutate(cf, 0, mutate.Options{})
	require.NoError(t, err)
	require.True(t, ok)
	require.Equal(t, m.KindNegateConditional, mutation.Point.Kind)
	require.NotEmpty(t, mutation.Bytes)

	// The mutation is applied to a scratch copy; the original code is
	// restored so the same ClassFile can be reused for the next index.
	require.Equal(t, byte(classfile.OpIfgt), cf.Methods[0].Code().Code[0])
}

func TestMutateOutOfRangeIndexReportsNotFound(t *testing.T) {
	cf := buildClassWithConditional(t, "compute")

	mutater := mutate.New()
	_, ok, err := mutater.Mutate(cf, 5, mutate.Options{})
	require.NoError(t, err)
	require.False(t, ok)
}

func TestExcludedMethodNeverMutated(t *testing.T) {
	cf := buildClassWithConditional(t, "main")

	mutater := mutate.New()
	n, err := mutater.Count(cf, mutate.Options{})
	require.NoError(t, err)
	require.Equal(t, 0, n)
}

func TestCallerExcludePatternAlsoFiltersMethod(t *testing.T) {
	cf := buildClassWithConditional(t, "compute")

	mutater := mutate.New()
	n, err := mutater.Count(cf, mutate.Options{ExcludedMethods: map[string]bool{"compute": true}})
	require.NoError(t, err)
	require.Equal(t, 0, n)
}
