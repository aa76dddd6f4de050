// Copyright 2021 Saferwall. All rights reserved.
// Use of this source code is governed by Apache v2 license
// license that can be found in the LICENSE file.

package classfile

import "testing"

func TestAssembleClassHelloWorldEndToEnd(t *testing.T) {
	r := newReader(helloWorldClassBytes())
	class, err := assembleClass(r, false)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if class.ConstantPool.Count() != 28 {
		t.Errorf("pool Count() = %d, want 28", class.ConstantPool.Count())
	}
	if class.ThisClass.Name.Value != "HelloWorld" {
		t.Errorf("this_class = %q, want HelloWorld", class.ThisClass.Name.Value)
	}
	if class.SuperClass == nil || class.SuperClass.Name.Value != "java/lang/Object" {
		t.Errorf("super_class = %v, want java/lang/Object", class.SuperClass)
	}
	if len(class.Fields) != 0 {
		t.Errorf("len(Fields) = %d, want 0", len(class.Fields))
	}
	if len(class.Interfaces) != 0 {
		t.Errorf("len(Interfaces) = %d, want 0", len(class.Interfaces))
	}
	if len(class.Methods) != 2 {
		t.Fatalf("len(Methods) = %d, want 2", len(class.Methods))
	}
	if len(class.Attributes) != 1 {
		t.Fatalf("len(Attributes) = %d, want 1", len(class.Attributes))
	}
	if !class.AccessFlags.Has(ClassPublic) || !class.AccessFlags.Has(ClassSuper) {
		t.Errorf("AccessFlags = %x, want Public|Super", class.AccessFlags)
	}

	sf, ok := class.Attributes[0].(*SourceFileAttribute)
	if !ok {
		t.Fatalf("class attribute[0] = %T, want *SourceFileAttribute", class.Attributes[0])
	}
	if sf.File.Value != "HelloWorld.java" {
		t.Errorf("SourceFile = %q, want HelloWorld.java", sf.File.Value)
	}

	ctor := class.Methods[0]
	if ctor.Name.Value != "<init>" || ctor.Descriptor.Value != "()V" {
		t.Errorf("methods[0] = %s%s, want <init>()V", ctor.Name.Value, ctor.Descriptor.Value)
	}
	main := class.Methods[1]
	if main.Name.Value != "main" {
		t.Errorf("methods[1].Name = %q, want main", main.Name.Value)
	}
	if !main.AccessFlags.Has(MemberStatic) {
		t.Errorf("main access flags missing Static")
	}
	code, ok := main.Attributes[0].(*CodeAttribute)
	if !ok {
		t.Fatalf("main.Attributes[0] = %T, want *CodeAttribute", main.Attributes[0])
	}
	if len(code.Code) == 0 {
		t.Errorf("Code is empty")
	}
	lnt, ok := code.Attributes[0].(*LineNumberTableAttribute)
	if !ok {
		t.Fatalf("code.Attributes[0] = %T, want *LineNumberTableAttribute", code.Attributes[0])
	}
	if len(lnt.Lines) != 2 {
		t.Errorf("len(Lines) = %d, want 2", len(lnt.Lines))
	}
}

func TestAssembleClassRejectsBadMagic(t *testing.T) {
	b := newBuilder()
	b.u32(0x12345678)
	r := newReader(b.bytes())

	_, err := assembleClass(r, false)
	if err == nil || !IsKind(err, Parsing) {
		t.Fatalf("got %v, want Parsing", err)
	}
}

func TestAssembleClassTruncatedHeaderIsCannotRead(t *testing.T) {
	b := newBuilder()
	b.u32(ClassFileMagic)
	b.u16(0) // minor only, truncated before major
	r := newReader(b.bytes())

	_, err := assembleClass(r, false)
	if err == nil || !IsKind(err, CannotRead) {
		t.Fatalf("got %v, want CannotRead", err)
	}
}

func TestAssembleClassSuperClassZeroMeansNone(t *testing.T) {
	// A class with super_class index 0, as only java/lang/Object may have.
	b := newBuilder()
	b.u32(ClassFileMagic)
	b.u16(0)
	b.u16(55)
	b.u16(3) // constant_pool_count
	b.classRef(2)
	b.utf8(tagUtf8, "java/lang/Object")
	b.u16(uint16(ClassPublic))
	b.u16(1) // this_class
	b.u16(0) // super_class = 0
	b.u16(0) // interfaces_count
	b.u16(0) // fields_count
	b.u16(0) // methods_count
	b.u16(0) // class attributes_count

	r := newReader(b.bytes())
	class, err := assembleClass(r, false)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if class.SuperClass != nil {
		t.Errorf("SuperClass = %v, want nil", class.SuperClass)
	}
}

func TestAssembleClassRejectsUnrecognizedAccessFlagBit(t *testing.T) {
	b := newBuilder()
	b.u32(ClassFileMagic)
	b.u16(0)
	b.u16(55)
	b.u16(1) // empty constant pool
	b.u16(0x0002) // Private is not valid at class level
	r := newReader(b.bytes())

	_, err := assembleClass(r, false)
	if err == nil || !IsKind(err, Parsing) {
		t.Fatalf("got %v, want Parsing", err)
	}
}
