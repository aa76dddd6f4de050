// Copyright 2018 Saferwall. All rights reserved.
// Use of this source code is governed by Apache v2 license
// license that can be found in the LICENSE file.

package classfile

// Attribute is the tagged union of class/member-level attribute variants.
// Attribute names this decoder does not recognize still produce a value,
// UnknownAttribute, so that unfamiliar attributes never abort an otherwise
// well-formed decode.
type Attribute interface {
	attribute()
}

// CodeAttributeEntry is the restricted variant nested inside a Code
// attribute: only LineNumberTable, LocalVariableTable, or Unknown are legal
// at this nesting. Any other attribute name found here is downgraded to
// CodeUnknownAttribute rather than rejected, matching the outer dispatcher's
// forward-compatible treatment of unrecognized names.
type CodeAttributeEntry interface {
	codeAttributeEntry()
}

// ExceptionEntry is one row of a Code attribute's exception table.
type ExceptionEntry struct {
	StartPC   uint16
	EndPC     uint16
	HandlerPC uint16
	// CatchType is nil for the "catches any" (finally-like) handler,
	// encoded on the wire as index 0.
	CatchType *ClassEntry
}

// CodeAttribute is the Code attribute of a method_info. The bytecode array
// is stored verbatim; this decoder never interprets instruction opcodes.
type CodeAttribute struct {
	MaxStack       uint16
	MaxLocals      uint16
	Code           []byte
	ExceptionTable []ExceptionEntry
	Attributes     []CodeAttributeEntry
}

// ExceptionsAttribute lists the checked exception classes a method may
// throw.
type ExceptionsAttribute struct {
	Exceptions []*ClassEntry
}

// InnerClassEntry is one row of an InnerClasses attribute.
type InnerClassEntry struct {
	// Inner and Outer are nil when the wire index is 0. A nonzero index
	// that does not resolve to a Class entry is a fatal Link error, as is
	// any failure to resolve Name, which is mandatory.
	Inner *ClassEntry
	Outer *ClassEntry
	Name  *Utf8Entry
	Flags InnerClassAccessFlags
}

// InnerClassesAttribute lists nested-class relationships.
type InnerClassesAttribute struct {
	Classes []InnerClassEntry
}

// SourceFileAttribute names the original source file.
type SourceFileAttribute struct {
	File *Utf8Entry
}

// LineNumberEntry maps a bytecode offset to a source line.
type LineNumberEntry struct {
	StartPC uint16
	Line    uint16
}

// LineNumberTableAttribute maps bytecode offsets to source lines.
type LineNumberTableAttribute struct {
	Lines []LineNumberEntry
}

// LocalVariableEntry describes one local variable's live range.
type LocalVariableEntry struct {
	StartPC    uint16
	Length     uint16
	Name       *Utf8Entry
	Descriptor *Utf8Entry
	Index      uint16
}

// LocalVariableTableAttribute describes local variable live ranges.
type LocalVariableTableAttribute struct {
	Variables []LocalVariableEntry
}

// DeprecatedAttribute marks a deprecated class, field, or method. It carries
// no payload; any declared length is read and discarded.
type DeprecatedAttribute struct{}

// SyntheticAttribute marks a compiler-generated member. Its declared length
// must be exactly 0; a nonzero length is a fatal Parsing error.
type SyntheticAttribute struct{}

// ConstValue is the tagged union of values a ConstantValue attribute may
// carry: Integer, Float, Long, Double, or String.
type ConstValue struct {
	Entry ConstPoolEntry
}

// ConstantValueAttribute gives a field's compile-time constant value.
type ConstantValueAttribute struct {
	Value ConstValue
}

// UnknownAttribute preserves only the declared length of an attribute this
// decoder does not recognize; its bytes are consumed but not retained.
type UnknownAttribute struct {
	Length uint32
}

// CodeUnknownAttribute is the Code-nested equivalent of UnknownAttribute: an
// attribute name inside a Code attribute's own attribute table that isn't
// LineNumberTable or LocalVariableTable.
type CodeUnknownAttribute struct {
	Length uint32
}

func (*CodeAttribute) attribute()               {}
func (*ExceptionsAttribute) attribute()         {}
func (*InnerClassesAttribute) attribute()       {}
func (*SourceFileAttribute) attribute()         {}
func (*LineNumberTableAttribute) attribute()    {}
func (*LocalVariableTableAttribute) attribute() {}
func (*DeprecatedAttribute) attribute()         {}
func (*ConstantValueAttribute) attribute()      {}
func (*SyntheticAttribute) attribute()          {}
func (*UnknownAttribute) attribute()            {}

func (*LineNumberTableAttribute) codeAttributeEntry()    {}
func (*LocalVariableTableAttribute) codeAttributeEntry() {}
func (*CodeUnknownAttribute) codeAttributeEntry()        {}

// attribute name constants, matched against the resolved Utf8 name_index.
const (
	attrCode               = "Code"
	attrExceptions         = "Exceptions"
	attrInnerClasses       = "InnerClasses"
	attrSourceFile         = "SourceFile"
	attrLineNumberTable    = "LineNumberTable"
	attrLocalVariableTable = "LocalVariableTable"
	attrDeprecated         = "Deprecated"
	attrConstantValue      = "ConstantValue"
	attrSynthetic          = "Synthetic"
)

// readAttributes reads a u16 attribute count followed by that many outer
// (class/member-level) attribute blocks, dispatching each by its resolved
// name.
func readAttributes(r *reader, pool *ConstantPool, strictLength bool) ([]Attribute, error) {
	count, err := r.readU16()
	if err != nil {
		return nil, err
	}
	attrs := make([]Attribute, 0, count)
	for i := uint16(0); i < count; i++ {
		attr, err := readOneAttribute(r, pool, strictLength)
		if err != nil {
			return nil, err
		}
		attrs = append(attrs, attr)
	}
	return attrs, nil
}

// readOneAttribute reads one { name_index, length, bytes[length] } block and
// dispatches on the resolved name. Each typed decoder reads the fields it
// knows; by default a mismatch between the declared length and the bytes a
// decoder actually consumes is not cross-checked (see the design notes),
// unless strictLength requests it.
func readOneAttribute(r *reader, pool *ConstantPool, strictLength bool) (Attribute, error) {
	nameIndex, err := r.readU16()
	if err != nil {
		return nil, err
	}
	name, err := pool.Utf8(nameIndex)
	if err != nil {
		return nil, err
	}
	length, err := r.readU32()
	if err != nil {
		return nil, err
	}
	start := r.offset()

	var attr Attribute
	switch name.Value {
	case attrCode:
		attr, err = readCodeAttribute(r, pool, strictLength)
	case attrExceptions:
		attr, err = readExceptionsAttribute(r, pool)
	case attrInnerClasses:
		attr, err = readInnerClassesAttribute(r, pool)
	case attrSourceFile:
		attr, err = readSourceFileAttribute(r, pool)
	case attrLineNumberTable:
		attr, err = readLineNumberTableAttribute(r)
	case attrLocalVariableTable:
		attr, err = readLocalVariableTableAttribute(r, pool)
	case attrDeprecated:
		attr, err = readDeprecatedAttribute(r, length)
	case attrConstantValue:
		attr, err = readConstantValueAttribute(r, pool)
	case attrSynthetic:
		attr, err = readSyntheticAttribute(length)
	default:
		attr, err = readUnknownAttribute(r, length)
	}
	if err != nil {
		return nil, err
	}

	if strictLength {
		consumed := r.offset() - start
		if uint32(consumed) != length {
			return nil, newError(Parsing, "attribute %q declared length %d but decoder consumed %d bytes", name.Value, length, consumed)
		}
	}
	return attr, nil
}

func readCodeAttribute(r *reader, pool *ConstantPool, strictLength bool) (*CodeAttribute, error) {
	maxStack, err := r.readU16()
	if err != nil {
		return nil, err
	}
	maxLocals, err := r.readU16()
	if err != nil {
		return nil, err
	}
	codeLength, err := r.readU32()
	if err != nil {
		return nil, err
	}
	if codeLength == 0 {
		return nil, newError(Link, "Code attribute code_length must be at least 1")
	}
	code, err := r.readBytes(codeLength)
	if err != nil {
		return nil, err
	}
	exceptionTableLength, err := r.readU16()
	if err != nil {
		return nil, err
	}
	exceptions := make([]ExceptionEntry, 0, exceptionTableLength)
	for i := uint16(0); i < exceptionTableLength; i++ {
		entry, err := readExceptionEntry(r, pool)
		if err != nil {
			return nil, err
		}
		exceptions = append(exceptions, entry)
	}
	nested, err := readCodeAttributeEntries(r, pool, strictLength)
	if err != nil {
		return nil, err
	}
	return &CodeAttribute{
		MaxStack:       maxStack,
		MaxLocals:      maxLocals,
		Code:           code,
		ExceptionTable: exceptions,
		Attributes:     nested,
	}, nil
}

func readExceptionEntry(r *reader, pool *ConstantPool) (ExceptionEntry, error) {
	startPC, err := r.readU16()
	if err != nil {
		return ExceptionEntry{}, err
	}
	endPC, err := r.readU16()
	if err != nil {
		return ExceptionEntry{}, err
	}
	handlerPC, err := r.readU16()
	if err != nil {
		return ExceptionEntry{}, err
	}
	catchTypeIndex, err := r.readU16()
	if err != nil {
		return ExceptionEntry{}, err
	}
	catchType, err := pool.OptionalClass(catchTypeIndex)
	if err != nil {
		return ExceptionEntry{}, err
	}
	return ExceptionEntry{
		StartPC:   startPC,
		EndPC:     endPC,
		HandlerPC: handlerPC,
		CatchType: catchType,
	}, nil
}

// readCodeAttributeEntries reads the restricted nested attribute table
// inside a Code attribute. Any name other than LineNumberTable or
// LocalVariableTable downgrades to CodeUnknownAttribute.
func readCodeAttributeEntries(r *reader, pool *ConstantPool, strictLength bool) ([]CodeAttributeEntry, error) {
	count, err := r.readU16()
	if err != nil {
		return nil, err
	}
	entries := make([]CodeAttributeEntry, 0, count)
	for i := uint16(0); i < count; i++ {
		nameIndex, err := r.readU16()
		if err != nil {
			return nil, err
		}
		name, err := pool.Utf8(nameIndex)
		if err != nil {
			return nil, err
		}
		length, err := r.readU32()
		if err != nil {
			return nil, err
		}
		start := r.offset()

		var entry CodeAttributeEntry
		switch name.Value {
		case attrLineNumberTable:
			entry, err = readLineNumberTableAttribute(r)
		case attrLocalVariableTable:
			entry, err = readLocalVariableTableAttribute(r, pool)
		default:
			entry, err = readCodeUnknownAttribute(r, length)
		}
		if err != nil {
			return nil, err
		}
		if strictLength {
			consumed := r.offset() - start
			if uint32(consumed) != length {
				return nil, newError(Parsing, "nested attribute %q declared length %d but decoder consumed %d bytes", name.Value, length, consumed)
			}
		}
		entries = append(entries, entry)
	}
	return entries, nil
}

func readExceptionsAttribute(r *reader, pool *ConstantPool) (*ExceptionsAttribute, error) {
	count, err := r.readU16()
	if err != nil {
		return nil, err
	}
	classes := make([]*ClassEntry, 0, count)
	for i := uint16(0); i < count; i++ {
		idx, err := r.readU16()
		if err != nil {
			return nil, err
		}
		class, err := pool.Class(idx)
		if err != nil {
			return nil, err
		}
		classes = append(classes, class)
	}
	return &ExceptionsAttribute{Exceptions: classes}, nil
}

func readInnerClassesAttribute(r *reader, pool *ConstantPool) (*InnerClassesAttribute, error) {
	count, err := r.readU16()
	if err != nil {
		return nil, err
	}
	entries := make([]InnerClassEntry, 0, count)
	for i := uint16(0); i < count; i++ {
		innerIndex, err := r.readU16()
		if err != nil {
			return nil, err
		}
		outerIndex, err := r.readU16()
		if err != nil {
			return nil, err
		}
		nameIndex, err := r.readU16()
		if err != nil {
			return nil, err
		}
		flags, err := readInnerClassAccessFlags(r)
		if err != nil {
			return nil, err
		}
		inner, err := pool.OptionalClass(innerIndex)
		if err != nil {
			return nil, err
		}
		outer, err := pool.OptionalClass(outerIndex)
		if err != nil {
			return nil, err
		}
		name, err := pool.Utf8(nameIndex)
		if err != nil {
			return nil, err
		}
		entries = append(entries, InnerClassEntry{
			Inner: inner,
			Outer: outer,
			Name:  name,
			Flags: flags,
		})
	}
	return &InnerClassesAttribute{Classes: entries}, nil
}

func readSourceFileAttribute(r *reader, pool *ConstantPool) (*SourceFileAttribute, error) {
	idx, err := r.readU16()
	if err != nil {
		return nil, err
	}
	file, err := pool.Utf8(idx)
	if err != nil {
		return nil, err
	}
	return &SourceFileAttribute{File: file}, nil
}

func readLineNumberTableAttribute(r *reader) (*LineNumberTableAttribute, error) {
	count, err := r.readU16()
	if err != nil {
		return nil, err
	}
	lines := make([]LineNumberEntry, 0, count)
	for i := uint16(0); i < count; i++ {
		startPC, err := r.readU16()
		if err != nil {
			return nil, err
		}
		line, err := r.readU16()
		if err != nil {
			return nil, err
		}
		lines = append(lines, LineNumberEntry{StartPC: startPC, Line: line})
	}
	return &LineNumberTableAttribute{Lines: lines}, nil
}

func readLocalVariableTableAttribute(r *reader, pool *ConstantPool) (*LocalVariableTableAttribute, error) {
	count, err := r.readU16()
	if err != nil {
		return nil, err
	}
	vars := make([]LocalVariableEntry, 0, count)
	for i := uint16(0); i < count; i++ {
		startPC, err := r.readU16()
		if err != nil {
			return nil, err
		}
		length, err := r.readU16()
		if err != nil {
			return nil, err
		}
		nameIndex, err := r.readU16()
		if err != nil {
			return nil, err
		}
		descIndex, err := r.readU16()
		if err != nil {
			return nil, err
		}
		index, err := r.readU16()
		if err != nil {
			return nil, err
		}
		name, err := pool.Utf8(nameIndex)
		if err != nil {
			return nil, err
		}
		descriptor, err := pool.Utf8(descIndex)
		if err != nil {
			return nil, err
		}
		vars = append(vars, LocalVariableEntry{
			StartPC:    startPC,
			Length:     length,
			Name:       name,
			Descriptor: descriptor,
			Index:      index,
		})
	}
	return &LocalVariableTableAttribute{Variables: vars}, nil
}

func readDeprecatedAttribute(r *reader, length uint32) (*DeprecatedAttribute, error) {
	if _, err := r.readBytes(length); err != nil {
		return nil, err
	}
	return &DeprecatedAttribute{}, nil
}

func readSyntheticAttribute(length uint32) (*SyntheticAttribute, error) {
	if length != 0 {
		return nil, newError(Parsing, "Synthetic attribute must have length 0, got %d", length)
	}
	return &SyntheticAttribute{}, nil
}

func readConstantValueAttribute(r *reader, pool *ConstantPool) (*ConstantValueAttribute, error) {
	idx, err := r.readU16()
	if err != nil {
		return nil, err
	}
	entry, err := pool.ConstValue(idx)
	if err != nil {
		return nil, err
	}
	return &ConstantValueAttribute{Value: ConstValue{Entry: entry}}, nil
}

func readUnknownAttribute(r *reader, length uint32) (*UnknownAttribute, error) {
	if _, err := r.readBytes(length); err != nil {
		return nil, err
	}
	return &UnknownAttribute{Length: length}, nil
}

func readCodeUnknownAttribute(r *reader, length uint32) (*CodeUnknownAttribute, error) {
	if _, err := r.readBytes(length); err != nil {
		return nil, err
	}
	return &CodeUnknownAttribute{Length: length}, nil
}
