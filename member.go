// Copyright 2018 Saferwall. All rights reserved.
// Use of this source code is governed by Apache v2 license
// license that can be found in the LICENSE file.

package classfile

// Member is the shape shared by field_info and method_info: the two are
// structurally identical on the wire, distinguished only by which section of
// the class file they appear in.
type Member struct {
	AccessFlags MemberAccessFlags
	Name        *Utf8Entry
	Descriptor  *Utf8Entry
	Attributes  []Attribute
}

func readMember(r *reader, pool *ConstantPool, strictLength bool) (Member, error) {
	flags, err := readMemberAccessFlags(r)
	if err != nil {
		return Member{}, err
	}
	nameIndex, err := r.readU16()
	if err != nil {
		return Member{}, err
	}
	name, err := pool.Utf8(nameIndex)
	if err != nil {
		return Member{}, err
	}
	descIndex, err := r.readU16()
	if err != nil {
		return Member{}, err
	}
	descriptor, err := pool.Utf8(descIndex)
	if err != nil {
		return Member{}, err
	}
	attrs, err := readAttributes(r, pool, strictLength)
	if err != nil {
		return Member{}, err
	}
	return Member{
		AccessFlags: flags,
		Name:        name,
		Descriptor:  descriptor,
		Attributes:  attrs,
	}, nil
}

func readMembers(r *reader, pool *ConstantPool, strictLength bool) ([]Member, error) {
	count, err := r.readU16()
	if err != nil {
		return nil, err
	}
	members := make([]Member, 0, count)
	for i := uint16(0); i < count; i++ {
		m, err := readMember(r, pool, strictLength)
		if err != nil {
			return nil, err
		}
		members = append(members, m)
	}
	return members, nil
}
