package classfile_test

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/pragmatics/jumble/internal/classfile"
	m "github.com/pragmatics/jumble/internal/model"
)

// buildMinimalClass hand-assembles a tiny class file: one method "answer"
// with a Code attribute that does `return 42`.
func buildMinimalClass(t *testing.T) []byte {
	t.Helper()

	pool := &m.ConstantPool{Entries: []m.Constant{{}}}
	utf8Code := classfile.AppendUTF8(pool, "Code")
	utf8Name := classfile.AppendUTF8(pool, "answer")
	utf8Desc := classfile.AppendUTF8(pool, "()I")
	utf8ThisName := classfile.AppendUTF8(pool, "Answer")
	utf8SuperName := classfile.AppendUTF8(pool, "java/lang/Object")
	thisClass := pool.Append(m.Constant{Tag: m.TagClass, NameIndex: utf8ThisName})
	superClass := pool.Append(m.Constant{Tag: m.TagClass, NameIndex: utf8SuperName})

	code := []byte{classfile.OpBipush, 42, classfile.OpIreturn}

	method := m.Method{
		AccessFlags:     m.AccPublic | m.AccStatic,
		NameIndex:       utf8Name,
		DescriptorIndex: utf8Desc,
		Attributes: []m.Attribute{
			{
				NameIndex: utf8Code,
				Code: &m.CodeAttribute{
					MaxStack:  1,
					MaxLocals: 0,
					Code:      code,
				},
			},
		},
	}

	cf := &m.ClassFile{
		MinorVersion: 0,
		MajorVersion: 52,
		ConstantPool: *pool,
		AccessFlags:  m.AccPublic | m.AccSuper,
		ThisClass:    thisClass,
		SuperClass:   superClass,
		Methods:      []m.Method{method},
	}

	return classfile.Emit(cf)
}

func TestRoundTripLossless(t *testing.T) {
	original := buildMinimalClass(t)

	parsed, err := classfile.Parse(bytes.NewReader(original))
	require.NoError(t, err)

	reEmitted := classfile.Emit(parsed)
	require.Equal(t, original, reEmitted, "emit(parse(x)) must reproduce x byte-for-byte")
}

func TestParseRejectsBadMagic(t *testing.T) {
	_, err := classfile.Parse(bytes.NewReader([]byte{0, 0, 0, 0}))
	require.Error(t, err)
}

func TestParsePreservesUnknownAttribute(t *testing.T) {
	original := buildMinimalClass(t)

	parsed, err := classfile.Parse(bytes.NewReader(original))
	require.NoError(t, err)

	// Attach an attribute this codec does not understand and confirm it
	// survives a second round-trip as an opaque blob.
	unknownName := classfile.AppendUTF8(&parsed.ConstantPool, "CustomVendorAttribute")
	parsed.Attributes = append(parsed.Attributes, m.Attribute{NameIndex: unknownName, Raw: []byte{1, 2, 3}})

	reEmitted := classfile.Emit(parsed)

	reparsed, err := classfile.Parse(bytes.NewReader(reEmitted))
	require.NoError(t, err)
	require.Len(t, reparsed.Attributes, 1)
	require.Equal(t, []byte{1, 2, 3}, reparsed.Attributes[0].Raw)
}

func TestMethodCodeRoundTrips(t *testing.T) {
	original := buildMinimalClass(t)

	parsed, err := classfile.Parse(bytes.NewReader(original))
	require.NoError(t, err)
	require.Len(t, parsed.Methods, 1)

	code := parsed.Methods[0].Code()
	require.NotNil(t, code)
	require.Equal(t, []byte{classfile.OpBipush, 42, classfile.OpIreturn}, code.Code)
}
