// Copyright 2018 Saferwall. All rights reserved.
// Use of this source code is governed by Apache v2 license
// license that can be found in the LICENSE file.

package classfile

// ClassFileMagic is the four-byte magic number every class file begins
// with.
const ClassFileMagic = 0xCAFEBABE

// ClassVersion is the class file format version. Versions are read but not
// range-checked: any minor/major pair is accepted.
type ClassVersion struct {
	Minor uint16
	Major uint16
}

// Class is the fully assembled, fully linked representation of one class
// file. It owns its constant pool; every handle reachable from its members
// and attributes shares ownership of the pool's Utf8 and Class payloads. A
// Class is never mutated after assembleClass returns it.
type Class struct {
	Version      ClassVersion
	ConstantPool *ConstantPool
	AccessFlags  ClassAccessFlags
	ThisClass    *ClassEntry
	// SuperClass is nil only for the root Object class.
	SuperClass *ClassEntry
	Interfaces []*ClassEntry
	Fields     []Member
	Methods    []Member
	Attributes []Attribute
}

// assembleClass drives the class assembler: header check, version, constant
// pool, access flags, this/super, interfaces, fields, methods, and
// class-level attributes, in file order, exactly as laid out in the design.
func assembleClass(r *reader, strictLength bool) (*Class, error) {
	magic, err := r.readU32()
	if err != nil {
		return nil, err
	}
	if magic != ClassFileMagic {
		return nil, newError(Parsing, "bad magic 0x%08x, not a class file", magic)
	}

	minor, err := r.readU16()
	if err != nil {
		return nil, err
	}
	major, err := r.readU16()
	if err != nil {
		return nil, err
	}

	pool, err := decodeConstantPool(r)
	if err != nil {
		return nil, err
	}

	accessFlags, err := readClassAccessFlags(r)
	if err != nil {
		return nil, err
	}

	thisClassIndex, err := r.readU16()
	if err != nil {
		return nil, err
	}
	thisClass, err := pool.Class(thisClassIndex)
	if err != nil {
		return nil, err
	}

	superClassIndex, err := r.readU16()
	if err != nil {
		return nil, err
	}
	superClass, err := pool.OptionalClass(superClassIndex)
	if err != nil {
		return nil, err
	}

	interfaces, err := readInterfaces(r, pool)
	if err != nil {
		return nil, err
	}

	fields, err := readMembers(r, pool, strictLength)
	if err != nil {
		return nil, err
	}

	methods, err := readMembers(r, pool, strictLength)
	if err != nil {
		return nil, err
	}

	attributes, err := readAttributes(r, pool, strictLength)
	if err != nil {
		return nil, err
	}

	return &Class{
		Version:      ClassVersion{Minor: minor, Major: major},
		ConstantPool: pool,
		AccessFlags:  accessFlags,
		ThisClass:    thisClass,
		SuperClass:   superClass,
		Interfaces:   interfaces,
		Fields:       fields,
		Methods:      methods,
		Attributes:   attributes,
	}, nil
}

func readInterfaces(r *reader, pool *ConstantPool) ([]*ClassEntry, error) {
	count, err := r.readU16()
	if err != nil {
		return nil, err
	}
	interfaces := make([]*ClassEntry, 0, count)
	for i := uint16(0); i < count; i++ {
		idx, err := r.readU16()
		if err != nil {
			return nil, err
		}
		class, err := pool.Class(idx)
		if err != nil {
			return nil, err
		}
		interfaces = append(interfaces, class)
	}
	return interfaces, nil
}
