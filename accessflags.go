// Copyright 2018 Saferwall. All rights reserved.
// Use of this source code is governed by Apache v2 license
// license that can be found in the LICENSE file.

package classfile

// Three distinct bit-flag types, one per context, each with its own
// recognized mask. A bit outside the recognized mask for its context is a
// fatal Parsing error: the JVM spec itself ignores unknown bits, but this
// decoder is deliberately stricter (see the design notes).

// ClassAccessFlags are the access_flags of the class itself.
type ClassAccessFlags uint16

const (
	ClassPublic    ClassAccessFlags = 0x0001
	ClassFinal     ClassAccessFlags = 0x0010
	ClassSuper     ClassAccessFlags = 0x0020
	ClassInterface ClassAccessFlags = 0x0200
	ClassAbstract  ClassAccessFlags = 0x0400

	classAccessMask = ClassPublic | ClassFinal | ClassSuper | ClassInterface | ClassAbstract
)

// Has reports whether all bits in mask are set.
func (f ClassAccessFlags) Has(mask ClassAccessFlags) bool { return f&mask == mask }

func readClassAccessFlags(r *reader) (ClassAccessFlags, error) {
	v, err := r.readU16()
	if err != nil {
		return 0, err
	}
	flags := ClassAccessFlags(v)
	if flags&^classAccessMask != 0 {
		return 0, newError(Parsing, "class access_flags 0x%04x contains unrecognized bits", v)
	}
	return flags, nil
}

// MemberAccessFlags are the access_flags of a field_info or method_info.
// Fields and methods share this mask; the distinction between the two is
// positional in the class file, not carried by the flags.
type MemberAccessFlags uint16

const (
	MemberPublic    MemberAccessFlags = 0x0001
	MemberPrivate   MemberAccessFlags = 0x0002
	MemberProtected MemberAccessFlags = 0x0004
	MemberStatic    MemberAccessFlags = 0x0008
	MemberFinal     MemberAccessFlags = 0x0010
	MemberVolatile  MemberAccessFlags = 0x0040
	MemberTransient MemberAccessFlags = 0x0080

	memberAccessMask = MemberPublic | MemberPrivate | MemberProtected | MemberStatic |
		MemberFinal | MemberVolatile | MemberTransient
)

func (f MemberAccessFlags) Has(mask MemberAccessFlags) bool { return f&mask == mask }

func readMemberAccessFlags(r *reader) (MemberAccessFlags, error) {
	v, err := r.readU16()
	if err != nil {
		return 0, err
	}
	flags := MemberAccessFlags(v)
	if flags&^memberAccessMask != 0 {
		return 0, newError(Parsing, "member access_flags 0x%04x contains unrecognized bits", v)
	}
	return flags, nil
}

// InnerClassAccessFlags are the access_flags of an InnerClasses entry. Note
// the bit values differ from MemberAccessFlags even though several names
// overlap (Interface here is 0x0040, not Volatile; Abstract is 0x0080, not
// Transient).
type InnerClassAccessFlags uint16

const (
	InnerPublic    InnerClassAccessFlags = 0x0001
	InnerPrivate   InnerClassAccessFlags = 0x0002
	InnerProtected InnerClassAccessFlags = 0x0004
	InnerStatic    InnerClassAccessFlags = 0x0008
	InnerFinal     InnerClassAccessFlags = 0x0010
	InnerInterface InnerClassAccessFlags = 0x0040
	InnerAbstract  InnerClassAccessFlags = 0x0080

	innerClassAccessMask = InnerPublic | InnerPrivate | InnerProtected | InnerStatic |
		InnerFinal | InnerInterface | InnerAbstract
)

func (f InnerClassAccessFlags) Has(mask InnerClassAccessFlags) bool { return f&mask == mask }

func readInnerClassAccessFlags(r *reader) (InnerClassAccessFlags, error) {
	v, err := r.readU16()
	if err != nil {
		return 0, err
	}
	flags := InnerClassAccessFlags(v)
	if flags&^innerClassAccessMask != 0 {
		return 0, newError(Parsing, "inner class access_flags 0x%04x contains unrecognized bits", v)
	}
	return flags, nil
}
