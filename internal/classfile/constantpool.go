package classfile

import (
	"fmt"
	"math"

	m "github.com/pragmatics/jumble/internal/model"
)

// parseConstantPool reads the constant_pool_count and entries. The pool is
// kept 1-indexed (Entries[0] is an unused placeholder) so indices read from
// the rest of the class file line up directly with slice positions.
func parseConstantPool(r *reader) (*m.ConstantPool, error) {
	count, err := r.u16()
	if err != nil {
		return nil, err
	}

	pool := &m.ConstantPool{Entries: make([]m.Constant, 1, count)}

	for i := uint16(1); i < count; i++ {
		c, err := parseConstant(r)
		if err != nil {
			return nil, fmt.Errorf("entry %d: %w", i, err)
		}

		pool.Entries = append(pool.Entries, c)

		if c.Tag == m.TagLong || c.Tag == m.TagDouble {
			// Long/Double entries occupy the next slot too; the loop
			// counter must advance an extra step to stay aligned with the
			// indices other entries reference.
			pool.Entries = append(pool.Entries, m.Constant{})
			i++
		}
	}

	return pool, nil
}

func parseConstant(r *reader) (m.Constant, error) {
	tagByte, err := r.u8()
	if err != nil {
		return m.Constant{}, err
	}

	tag := m.ConstantTag(tagByte)

	switch tag {
	case m.TagUtf8:
		n, err := r.u16()
		if err != nil {
			return m.Constant{}, err
		}

		b, err := r.bytes(int(n))
		if err != nil {
			return m.Constant{}, err
		}

		return m.Constant{Tag: tag, UTF8: string(b)}, nil

	case m.TagInteger, m.TagFloat:
		v, err := r.u32()
		if err != nil {
			return m.Constant{}, err
		}

		return m.Constant{Tag: tag, Int32: int32(v)}, nil

	case m.TagLong, m.TagDouble:
		v, err := r.u64()
		if err != nil {
			return m.Constant{}, err
		}

		return m.Constant{Tag: tag, Int64: int64(v)}, nil

	case m.TagClass, m.TagString:
		idx, err := r.u16()
		if err != nil {
			return m.Constant{}, err
		}

		return m.Constant{Tag: tag, NameIndex: idx}, nil

	case m.TagFieldref, m.TagMethodref, m.TagInterfaceMethodref:
		classIdx, err := r.u16()
		if err != nil {
			return m.Constant{}, err
		}

		ntIdx, err := r.u16()
		if err != nil {
			return m.Constant{}, err
		}

		return m.Constant{Tag: tag, ClassIndex: classIdx, NameAndTypeIndex: ntIdx}, nil

	case m.TagNameAndType:
		nameIdx, err := r.u16()
		if err != nil {
			return m.Constant{}, err
		}

		descIdx, err := r.u16()
		if err != nil {
			return m.Constant{}, err
		}

		return m.Constant{Tag: tag, NameIndex: nameIdx, DescriptorIndex: descIdx}, nil

	default:
		return m.Constant{}, fmt.Errorf("unknown constant tag %d", tagByte)
	}
}

func writeConstantPool(w *writer, pool *m.ConstantPool) {
	w.u16(uint16(len(pool.Entries)))

	for i := 1; i < len(pool.Entries); i++ {
		c := pool.Entries[i]
		if c.Tag == 0 {
			continue // dead slot following a Long/Double entry
		}

		writeConstant(w, c)

		if c.Tag == m.TagLong || c.Tag == m.TagDouble {
			i++
		}
	}
}

func writeConstant(w *writer, c m.Constant) {
	w.u8(byte(c.Tag))

	switch c.Tag {
	case m.TagUtf8:
		w.u16(uint16(len(c.UTF8)))
		w.raw([]byte(c.UTF8))
	case m.TagInteger, m.TagFloat:
		w.u32(uint32(c.Int32))
	case m.TagLong, m.TagDouble:
		w.u64(uint64(c.Int64))
	case m.TagClass, m.TagString:
		w.u16(c.NameIndex)
	case m.TagFieldref, m.TagMethodref, m.TagInterfaceMethodref:
		w.u16(c.ClassIndex)
		w.u16(c.NameAndTypeIndex)
	case m.TagNameAndType:
		w.u16(c.NameIndex)
		w.u16(c.DescriptorIndex)
	}
}

// AppendUTF8 interns a UTF8 constant, returning its index (reusing an
// existing identical entry when one exists, to avoid growing the pool on
// every mutation).
func AppendUTF8(pool *m.ConstantPool, s string) uint16 {
	for i, c := range pool.Entries {
		if c.Tag == m.TagUtf8 && c.UTF8 == s {
			return uint16(i)
		}
	}

	return pool.Append(m.Constant{Tag: m.TagUtf8, UTF8: s})
}

// AppendInt appends a fresh Integer constant and returns its index. Unlike
// AppendUTF8 this never interns: a mutation wants a *distinct* slot so the
// original constant used elsewhere is left untouched.
func AppendInt(pool *m.ConstantPool, v int32) uint16 {
	return pool.Append(m.Constant{Tag: m.TagInteger, Int32: v})
}

// MaxInt32 is the largest value a CONSTANT_Integer pool entry can hold
// (SIPUSH, the widest inline constant, tops out at 32767).
const MaxInt32 = math.MaxInt32
