package classfile

import (
	"fmt"
	"io"

	m "github.com/pragmatics/jumble/internal/model"
)

const magic uint32 = 0xCAFEBABE

// Parse reads a complete class-file image and returns its in-memory
// representation. Parse is lossless: Emit(Parse(b)) reproduces b exactly,
// because every attribute this codec does not interpret is retained as an
// opaque blob rather than being dropped or re-measured.
func Parse(r io.Reader) (*m.ClassFile, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("classfile: read: %w", err)
	}

	cur := newReader(data)

	got, err := cur.u32()
	if err != nil {
		return nil, fmt.Errorf("classfile: reading magic: %w", err)
	}

	if got != magic {
		return nil, fmt.Errorf("classfile: bad magic %#x", got)
	}

	minor, err := cur.u16()
	if err != nil {
		return nil, err
	}

	major, err := cur.u16()
	if err != nil {
		return nil, err
	}

	pool, err := parseConstantPool(cur)
	if err != nil {
		return nil, fmt.Errorf("classfile: constant pool: %w", err)
	}

	accessFlags, err := cur.u16()
	if err != nil {
		return nil, err
	}

	thisClass, err := cur.u16()
	if err != nil {
		return nil, err
	}

	superClass, err := cur.u16()
	if err != nil {
		return nil, err
	}

	ifaceCount, err := cur.u16()
	if err != nil {
		return nil, err
	}

	interfaces := make([]uint16, ifaceCount)
	for i := range interfaces {
		interfaces[i], err = cur.u16()
		if err != nil {
			return nil, err
		}
	}

	fields, err := parseFields(cur, pool)
	if err != nil {
		return nil, fmt.Errorf("classfile: fields: %w", err)
	}

	methods, err := parseMethods(cur, pool)
	if err != nil {
		return nil, fmt.Errorf("classfile: methods: %w", err)
	}

	attrCount, err := cur.u16()
	if err != nil {
		return nil, err
	}

	attrs, err := parseAttributes(cur, pool, attrCount)
	if err != nil {
		return nil, fmt.Errorf("classfile: class attributes: %w", err)
	}

	if err := requireEOF(cur); err != nil {
		return nil, err
	}

	return &m.ClassFile{
		MinorVersion: minor,
		MajorVersion: major,
		ConstantPool: *pool,
		AccessFlags:  accessFlags,
		ThisClass:    thisClass,
		SuperClass:   superClass,
		Interfaces:   interfaces,
		Fields:       fields,
		Methods:      methods,
		Attributes:   attrs,
	}, nil
}

// Emit re-serializes a ClassFile to its binary form.
func Emit(cf *m.ClassFile) []byte {
	w := &writer{}
	w.u32(magic)
	w.u16(cf.MinorVersion)
	w.u16(cf.MajorVersion)

	writeConstantPool(w, &cf.ConstantPool)

	w.u16(cf.AccessFlags)
	w.u16(cf.ThisClass)
	w.u16(cf.SuperClass)

	w.u16(uint16(len(cf.Interfaces)))
	for _, i := range cf.Interfaces {
		w.u16(i)
	}

	w.u16(uint16(len(cf.Fields)))

	for i := range cf.Fields {
		writeMember(w, &cf.ConstantPool, cf.Fields[i].AccessFlags, cf.Fields[i].NameIndex, cf.Fields[i].DescriptorIndex, cf.Fields[i].Attributes)
	}

	w.u16(uint16(len(cf.Methods)))

	for i := range cf.Methods {
		writeMember(w, &cf.ConstantPool, cf.Methods[i].AccessFlags, cf.Methods[i].NameIndex, cf.Methods[i].DescriptorIndex, cf.Methods[i].Attributes)
	}

	writeAttributes(w, &cf.ConstantPool, cf.Attributes)

	return w.buf
}

func parseFields(r *reader, pool *m.ConstantPool) ([]m.Field, error) {
	count, err := r.u16()
	if err != nil {
		return nil, err
	}

	fields := make([]m.Field, 0, count)

	for i := uint16(0); i < count; i++ {
		access, name, desc, attrs, err := parseMember(r, pool)
		if err != nil {
			return nil, err
		}

		fields = append(fields, m.Field{AccessFlags: access, NameIndex: name, DescriptorIndex: desc, Attributes: attrs})
	}

	return fields, nil
}

func parseMethods(r *reader, pool *m.ConstantPool) ([]m.Method, error) {
	count, err := r.u16()
	if err != nil {
		return nil, err
	}

	methods := make([]m.Method, 0, count)

	for i := uint16(0); i < count; i++ {
		access, name, desc, attrs, err := parseMember(r, pool)
		if err != nil {
			return nil, err
		}

		methods = append(methods, m.Method{AccessFlags: access, NameIndex: name, DescriptorIndex: desc, Attributes: attrs})
	}

	return methods, nil
}

func parseMember(r *reader, pool *m.ConstantPool) (access, name, desc uint16, attrs []m.Attribute, err error) {
	access, err = r.u16()
	if err != nil {
		return
	}

	name, err = r.u16()
	if err != nil {
		return
	}

	desc, err = r.u16()
	if err != nil {
		return
	}

	attrCount, err := r.u16()
	if err != nil {
		return
	}

	attrs, err = parseAttributes(r, pool, attrCount)

	return
}

func writeMember(w *writer, pool *m.ConstantPool, access, name, desc uint16, attrs []m.Attribute) {
	w.u16(access)
	w.u16(name)
	w.u16(desc)
	writeAttributes(w, pool, attrs)
}
