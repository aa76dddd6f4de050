// Copyright 2021 Saferwall. All rights reserved.
// Use of this source code is governed by Apache v2 license
// license that can be found in the LICENSE file.

package classfile

import "testing"

func TestReadClassAccessFlagsRejectsUnknownBits(t *testing.T) {
	b := newBuilder()
	b.u16(0x0002) // Private is not a recognized class-level bit
	r := newReader(b.bytes())

	_, err := readClassAccessFlags(r)
	if err == nil {
		t.Fatal("expected error for unrecognized class access flag bit")
	}
	if !IsKind(err, Parsing) {
		t.Errorf("got %v, want Parsing", err)
	}
}

func TestReadClassAccessFlagsAcceptsPublicSuper(t *testing.T) {
	b := newBuilder()
	b.u16(uint16(ClassPublic | ClassSuper))
	r := newReader(b.bytes())

	flags, err := readClassAccessFlags(r)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !flags.Has(ClassPublic) || !flags.Has(ClassSuper) {
		t.Errorf("flags = %x, want Public|Super", flags)
	}
}

func TestReadMemberAccessFlagsRejectsUnknownBits(t *testing.T) {
	b := newBuilder()
	b.u16(0x0200) // Interface bit is not valid for a member
	r := newReader(b.bytes())

	_, err := readMemberAccessFlags(r)
	if err == nil || !IsKind(err, Parsing) {
		t.Fatalf("got %v, want Parsing", err)
	}
}

func TestReadInnerClassAccessFlagsAcceptsInterfaceBit(t *testing.T) {
	b := newBuilder()
	b.u16(uint16(InnerPublic | InnerInterface))
	r := newReader(b.bytes())

	flags, err := readInnerClassAccessFlags(r)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !flags.Has(InnerInterface) {
		t.Errorf("flags = %x, want Interface set", flags)
	}
}
