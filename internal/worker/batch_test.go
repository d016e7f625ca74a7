package worker

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/pragmatics/jumble/internal/classfile"
	m "github.com/pragmatics/jumble/internal/model"
	"github.com/pragmatics/jumble/internal/mutate"
)

func newMutater() *mutate.Mutater { return mutate.New() }

// buildTrivialClassFile builds a one-method class with no mutation
// candidates at all, just enough structure for Count to walk safely.
func buildTrivialClassFile(t *testing.T) *m.ClassFile {
	t.Helper()

	pool := &m.ConstantPool{Entries: []m.Constant{{}}}
	utf8Code := classfile.AppendUTF8(pool, "Code")
	utf8Name := classfile.AppendUTF8(pool, "noop")
	utf8Desc := classfile.AppendUTF8(pool, "()V")
	utf8ThisName := classfile.AppendUTF8(pool, "Widget")
	utf8SuperName := classfile.AppendUTF8(pool, "java/lang/Object")
	thisClass := pool.Append(m.Constant{Tag: m.TagClass, NameIndex: utf8ThisName})
	superClass := pool.Append(m.Constant{Tag: m.TagClass, NameIndex: utf8SuperName})

	method := m.Method{
		AccessFlags:     m.AccPublic,
		NameIndex:       utf8Name,
		DescriptorIndex: utf8Desc,
		Attributes: []m.Attribute{
			{
				NameIndex: utf8Code,
				Code: &m.CodeAttribute{
					MaxStack:  0,
					MaxLocals: 0,
					Code:      []byte{classfile.OpReturn},
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

func TestStageWritesMutantClassAtBinaryPath(t *testing.T) {
	batch := &Batch{
		ClassBinaryName: "com/example/Widget",
		WorkDir:         t.TempDir(),
	}

	dir, err := batch.stage(3, []byte{0xCA, 0xFE, 0xBA, 0xBE})
	require.NoError(t, err)
	require.Equal(t, filepath.Join(batch.WorkDir, "mutant-3"), dir)

	contents, err := os.ReadFile(filepath.Join(dir, "com", "example", "Widget.class"))
	require.NoError(t, err)
	require.Equal(t, []byte{0xCA, 0xFE, 0xBA, 0xBE}, contents)
}

func TestCountDelegatesToMutater(t *testing.T) {
	batch := &Batch{
		ClassFile: buildTrivialClassFile(t),
		Mutater:   newMutater(),
	}

	n, err := batch.Count()
	require.NoError(t, err)
	require.GreaterOrEqual(t, n, 0)
}
