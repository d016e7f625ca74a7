package classfile

import (
	m "github.com/pragmatics/jumble/internal/model"
)

const (
	attrCode                = "Code"
	attrLineNumberTable     = "LineNumberTable"
	attrLocalVariableTable  = "LocalVariableTable"
)

func attrName(pool *m.ConstantPool, nameIndex uint16) string {
	return pool.Get(nameIndex).UTF8
}

func parseAttributes(r *reader, pool *m.ConstantPool, count uint16) ([]m.Attribute, error) {
	attrs := make([]m.Attribute, 0, count)

	for i := uint16(0); i < count; i++ {
		a, err := parseAttribute(r, pool)
		if err != nil {
			return nil, err
		}

		attrs = append(attrs, a)
	}

	return attrs, nil
}

func parseAttribute(r *reader, pool *m.ConstantPool) (m.Attribute, error) {
	nameIndex, err := r.u16()
	if err != nil {
		return m.Attribute{}, err
	}

	length, err := r.u32()
	if err != nil {
		return m.Attribute{}, err
	}

	raw, err := r.bytes(int(length))
	if err != nil {
		return m.Attribute{}, err
	}

	switch attrName(pool, nameIndex) {
	case attrCode:
		code, err := parseCodeAttribute(raw, pool)
		if err != nil {
			// Malformed Code attribute: keep it opaque rather than failing
			// the whole parse; the mutater will simply find no points here.
			return m.Attribute{NameIndex: nameIndex, Raw: raw}, nil
		}

		return m.Attribute{NameIndex: nameIndex, Code: code}, nil
	case attrLineNumberTable:
		lt, err := parseLineNumberTable(raw)
		if err != nil {
			return m.Attribute{NameIndex: nameIndex, Raw: raw}, nil
		}

		return m.Attribute{NameIndex: nameIndex, LineTable: lt}, nil
	case attrLocalVariableTable:
		lv, err := parseLocalVariableTable(raw)
		if err != nil {
			return m.Attribute{NameIndex: nameIndex, Raw: raw}, nil
		}

		return m.Attribute{NameIndex: nameIndex, LocalVars: lv}, nil
	default:
		return m.Attribute{NameIndex: nameIndex, Raw: raw}, nil
	}
}

func writeAttributes(w *writer, pool *m.ConstantPool, attrs []m.Attribute) {
	w.u16(uint16(len(attrs)))

	for i := range attrs {
		writeAttribute(w, pool, &attrs[i])
	}
}

func writeAttribute(w *writer, pool *m.ConstantPool, a *m.Attribute) {
	w.u16(a.NameIndex)

	switch {
	case a.Code != nil:
		body := encodeCodeAttribute(pool, a.Code)
		w.u32(uint32(len(body)))
		w.raw(body)
	case a.LineTable != nil:
		body := encodeLineNumberTable(a.LineTable)
		w.u32(uint32(len(body)))
		w.raw(body)
	case a.LocalVars != nil:
		body := encodeLocalVariableTable(a.LocalVars)
		w.u32(uint32(len(body)))
		w.raw(body)
	default:
		w.u32(uint32(len(a.Raw)))
		w.raw(a.Raw)
	}
}

func parseCodeAttribute(raw []byte, pool *m.ConstantPool) (*m.CodeAttribute, error) {
	r := newReader(raw)

	maxStack, err := r.u16()
	if err != nil {
		return nil, err
	}

	maxLocals, err := r.u16()
	if err != nil {
		return nil, err
	}

	codeLen, err := r.u32()
	if err != nil {
		return nil, err
	}

	code, err := r.bytes(int(codeLen))
	if err != nil {
		return nil, err
	}

	excCount, err := r.u16()
	if err != nil {
		return nil, err
	}

	exc := make([]m.ExceptionTableEntry, 0, excCount)

	for i := uint16(0); i < excCount; i++ {
		start, _ := r.u16()
		end, _ := r.u16()
		handler, _ := r.u16()
		catchType, err := r.u16()
		if err != nil {
			return nil, err
		}

		exc = append(exc, m.ExceptionTableEntry{StartPC: start, EndPC: end, HandlerPC: handler, CatchType: catchType})
	}

	attrCount, err := r.u16()
	if err != nil {
		return nil, err
	}

	nested, err := parseAttributes(r, pool, attrCount)
	if err != nil {
		return nil, err
	}

	if err := requireEOF(r); err != nil {
		return nil, err
	}

	codeCopy := make([]byte, len(code))
	copy(codeCopy, code)

	return &m.CodeAttribute{
		MaxStack:     maxStack,
		MaxLocals:    maxLocals,
		Code:         codeCopy,
		ExceptionTbl: exc,
		Attributes:   nested,
	}, nil
}

func encodeCodeAttribute(pool *m.ConstantPool, c *m.CodeAttribute) []byte {
	w := &writer{}
	w.u16(c.MaxStack)
	w.u16(c.MaxLocals)
	w.u32(uint32(len(c.Code)))
	w.raw(c.Code)

	w.u16(uint16(len(c.ExceptionTbl)))

	for _, e := range c.ExceptionTbl {
		w.u16(e.StartPC)
		w.u16(e.EndPC)
		w.u16(e.HandlerPC)
		w.u16(e.CatchType)
	}

	writeAttributes(w, pool, c.Attributes)

	return w.buf
}

func parseLineNumberTable(raw []byte) (*m.LineNumberTableAttribute, error) {
	r := newReader(raw)

	count, err := r.u16()
	if err != nil {
		return nil, err
	}

	entries := make([]m.LineNumberEntry, 0, count)

	for i := uint16(0); i < count; i++ {
		startPC, err := r.u16()
		if err != nil {
			return nil, err
		}

		line, err := r.u16()
		if err != nil {
			return nil, err
		}

		entries = append(entries, m.LineNumberEntry{StartPC: startPC, Line: line})
	}

	if err := requireEOF(r); err != nil {
		return nil, err
	}

	return &m.LineNumberTableAttribute{Entries: entries}, nil
}

func encodeLineNumberTable(lt *m.LineNumberTableAttribute) []byte {
	w := &writer{}
	w.u16(uint16(len(lt.Entries)))

	for _, e := range lt.Entries {
		w.u16(e.StartPC)
		w.u16(e.Line)
	}

	return w.buf
}

func parseLocalVariableTable(raw []byte) (*m.LocalVariableTableAttribute, error) {
	r := newReader(raw)

	count, err := r.u16()
	if err != nil {
		return nil, err
	}

	entries := make([]m.LocalVariableEntry, 0, count)

	for i := uint16(0); i < count; i++ {
		start, _ := r.u16()
		length, _ := r.u16()
		nameIdx, _ := r.u16()
		descIdx, _ := r.u16()
		index, err := r.u16()
		if err != nil {
			return nil, err
		}

		entries = append(entries, m.LocalVariableEntry{
			StartPC: start, Length: length, NameIndex: nameIdx, DescIndex: descIdx, Index: index,
		})
	}

	if err := requireEOF(r); err != nil {
		return nil, err
	}

	return &m.LocalVariableTableAttribute{Entries: entries}, nil
}

func encodeLocalVariableTable(lv *m.LocalVariableTableAttribute) []byte {
	w := &writer{}
	w.u16(uint16(len(lv.Entries)))

	for _, e := range lv.Entries {
		w.u16(e.StartPC)
		w.u16(e.Length)
		w.u16(e.NameIndex)
		w.u16(e.DescIndex)
		w.u16(e.Index)
	}

	return w.buf
}

// LineForOffset resolves a bytecode offset to a source line via a method's
// LineNumberTable, returning 0 if the method carries no such attribute.
func LineForOffset(method *m.Method, offset int) int {
	code := method.Code()
	if code == nil {
		return 0
	}

	var lt *m.LineNumberTableAttribute

	for i := range code.Attributes {
		if code.Attributes[i].LineTable != nil {
			lt = code.Attributes[i].LineTable
			break
		}
	}

	if lt == nil {
		return 0
	}

	best := 0

	for _, e := range lt.Entries {
		if int(e.StartPC) <= offset {
			best = int(e.Line)
		}
	}

	return best
}
