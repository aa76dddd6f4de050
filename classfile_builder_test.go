// Copyright 2021 Saferwall. All rights reserved.
// Use of this source code is governed by Apache v2 license
// license that can be found in the LICENSE file.

package classfile

import (
	"bytes"
	"encoding/binary"
	"math"
)

// builder assembles raw class-file bytes for tests. There is no retrieved
// binary fixture corpus in this pack, so tests construct minimal-but-valid
// (or deliberately invalid) class files byte by byte instead of reading
// fixture files off disk, the way the teacher's tests do with
// getAbsoluteFilePath.
type builder struct {
	buf bytes.Buffer
}

func newBuilder() *builder { return &builder{} }

func (b *builder) bytes() []byte { return b.buf.Bytes() }

func (b *builder) u8(v uint8) *builder {
	b.buf.WriteByte(v)
	return b
}

func (b *builder) u16(v uint16) *builder {
	var tmp [2]byte
	binary.BigEndian.PutUint16(tmp[:], v)
	b.buf.Write(tmp[:])
	return b
}

func (b *builder) u32(v uint32) *builder {
	var tmp [4]byte
	binary.BigEndian.PutUint32(tmp[:], v)
	b.buf.Write(tmp[:])
	return b
}

func (b *builder) i32(v int32) *builder { return b.u32(uint32(v)) }

func (b *builder) i64(v int64) *builder {
	b.u32(uint32(uint64(v) >> 32))
	b.u32(uint32(uint64(v)))
	return b
}

func (b *builder) f32(v float32) *builder { return b.u32(math.Float32bits(v)) }

func (b *builder) f64(v float64) *builder { return b.i64(int64(math.Float64bits(v))) }

func (b *builder) raw(data []byte) *builder {
	b.buf.Write(data)
	return b
}

// utf8 writes a tagged Utf8 constant pool entry.
func (b *builder) utf8(tag uint8, s string) *builder {
	b.u8(tag)
	b.u16(uint16(len(s)))
	b.buf.WriteString(s)
	return b
}

// classRef writes a tagged Class constant pool entry.
func (b *builder) classRef(nameIndex uint16) *builder {
	return b.u8(tagClass).u16(nameIndex)
}

func (b *builder) nameAndType(nameIndex, descriptorIndex uint16) *builder {
	return b.u8(tagNameAndType).u16(nameIndex).u16(descriptorIndex)
}

func (b *builder) fieldRef(classIndex, natIndex uint16) *builder {
	return b.u8(tagFieldRef).u16(classIndex).u16(natIndex)
}

func (b *builder) methodRef(classIndex, natIndex uint16) *builder {
	return b.u8(tagMethodRef).u16(classIndex).u16(natIndex)
}

func (b *builder) interfaceMethodRef(classIndex, natIndex uint16) *builder {
	return b.u8(tagInterfaceMethodRef).u16(classIndex).u16(natIndex)
}

func (b *builder) stringRef(utf8Index uint16) *builder {
	return b.u8(tagString).u16(utf8Index)
}

func (b *builder) integer(v int32) *builder {
	return b.u8(tagInteger).i32(v)
}

func (b *builder) float(v float32) *builder {
	return b.u8(tagFloat).f32(v)
}

func (b *builder) long(v int64) *builder {
	return b.u8(tagLong).i64(v)
}

func (b *builder) double(v float64) *builder {
	return b.u8(tagDouble).f64(v)
}

// helloWorldClassBytes assembles a minimal, internally consistent class file
// equivalent to the canonical `javac HelloWorld.java` output described in
// the end-to-end test scenario: this_class "HelloWorld", super_class
// "java/lang/Object", a pool of 28 entries, two methods (<init> and main),
// no fields, no interfaces, and one class-level SourceFile attribute.
func helloWorldClassBytes() []byte {
	b := newBuilder()
	b.u32(ClassFileMagic)
	b.u16(0) // minor
	b.u16(55) // major

	// constant_pool_count = 29 (28 addressable entries, indices 1..28).
	b.u16(29)
	b.methodRef(6, 15)       // 1: Object.<init>
	b.fieldRef(16, 17)       // 2: System.out
	b.stringRef(18)          // 3: "Hello, World!"
	b.methodRef(19, 20)      // 4: PrintStream.println
	b.classRef(21)           // 5: HelloWorld
	b.classRef(22)           // 6: java/lang/Object
	b.utf8(tagUtf8, "<init>")           // 7
	b.utf8(tagUtf8, "()V")              // 8
	b.utf8(tagUtf8, "Code")             // 9
	b.utf8(tagUtf8, "LineNumberTable")  // 10
	b.utf8(tagUtf8, "main")             // 11
	b.utf8(tagUtf8, "([Ljava/lang/String;)V") // 12
	b.utf8(tagUtf8, "SourceFile")       // 13
	b.utf8(tagUtf8, "HelloWorld.java")  // 14
	b.nameAndType(7, 8)      // 15: <init>:()V
	b.classRef(23)           // 16: java/lang/System
	b.nameAndType(24, 25)    // 17: out:Ljava/io/PrintStream;
	b.utf8(tagUtf8, "Hello, World!")    // 18
	b.classRef(26)           // 19: java/io/PrintStream
	b.nameAndType(27, 28)    // 20: println:(Ljava/lang/String;)V
	b.utf8(tagUtf8, "HelloWorld")       // 21
	b.utf8(tagUtf8, "java/lang/Object") // 22
	b.utf8(tagUtf8, "java/lang/System") // 23
	b.utf8(tagUtf8, "out")              // 24
	b.utf8(tagUtf8, "Ljava/io/PrintStream;") // 25
	b.utf8(tagUtf8, "java/io/PrintStream")   // 26
	b.utf8(tagUtf8, "println")          // 27
	b.utf8(tagUtf8, "(Ljava/lang/String;)V") // 28

	b.u16(uint16(ClassPublic | ClassSuper)) // access_flags
	b.u16(5)                                 // this_class
	b.u16(6)                                 // super_class
	b.u16(0)                                 // interfaces_count
	b.u16(0)                                 // fields_count

	// methods_count = 2
	b.u16(2)

	// <init>
	b.u16(uint16(MemberPublic))
	b.u16(7) // name: <init>
	b.u16(8) // descriptor: ()V
	b.u16(1) // attributes_count
	writeInitCode(b)

	// main
	b.u16(uint16(MemberPublic | MemberStatic))
	b.u16(11) // name: main
	b.u16(12) // descriptor
	b.u16(1)  // attributes_count
	writeMainCode(b)

	// class attributes
	b.u16(1)
	b.u16(13) // name: SourceFile
	b.u32(2)  // length
	b.u16(14) // sourcefile index

	return b.bytes()
}

func writeInitCode(b *builder) {
	code := []byte{0x2A, 0xB7, 0x00, 0x01, 0xB1} // aload_0; invokespecial #1; return
	b.u16(9) // name: Code
	var body bytes.Buffer
	inner := &builder{buf: body}
	inner.u16(1)             // max_stack
	inner.u16(1)             // max_locals
	inner.u32(uint32(len(code)))
	inner.raw(code)
	inner.u16(0) // exception_table_length
	inner.u16(1) // nested attributes_count
	inner.u16(10) // name: LineNumberTable
	inner.u32(2 + 4)
	inner.u16(1) // line_number_table_length
	inner.u16(0) // start_pc
	inner.u16(1) // line
	payload := inner.bytes()
	b.u32(uint32(len(payload)))
	b.raw(payload)
}

func writeMainCode(b *builder) {
	code := []byte{0xB2, 0x00, 0x02, 0x12, 0x03, 0xB6, 0x00, 0x04, 0xB1}
	b.u16(9) // name: Code
	var body bytes.Buffer
	inner := &builder{buf: body}
	inner.u16(2) // max_stack
	inner.u16(1) // max_locals
	inner.u32(uint32(len(code)))
	inner.raw(code)
	inner.u16(0) // exception_table_length
	inner.u16(1) // nested attributes_count
	inner.u16(10) // name: LineNumberTable
	inner.u32(2 + 8)
	inner.u16(2) // line_number_table_length
	inner.u16(0)
	inner.u16(8)
	inner.u16(8)
	inner.u16(9)
	payload := inner.bytes()
	b.u32(uint32(len(payload)))
	b.raw(payload)
}
