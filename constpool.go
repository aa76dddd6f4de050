// Copyright 2018 Saferwall. All rights reserved.
// Use of this source code is governed by Apache v2 license
// license that can be found in the LICENSE file.

package classfile

// ConstPoolEntry is the tagged union of constant-pool entry variants. After
// resolution, the only implementations reachable from a decoded Class are
// the concrete entry types below; no entry carries a raw index.
type ConstPoolEntry interface {
	constPoolEntry()
}

// Utf8Entry holds an immutable shared UTF-8 string. Multiple entries that
// originally referenced the same Utf8 index resolve to the same *Utf8Entry.
type Utf8Entry struct {
	Value string
}

// IntegerEntry holds a signed 32-bit constant.
type IntegerEntry struct {
	Value int32
}

// FloatEntry holds an IEEE-754 32-bit constant.
type FloatEntry struct {
	Value float32
}

// LongEntry holds a signed 64-bit constant. It occupies two pool slots; the
// slot immediately after it is reserved and unreferenceable.
type LongEntry struct {
	Value int64
}

// DoubleEntry holds an IEEE-754 64-bit constant. Like LongEntry it occupies
// two pool slots.
type DoubleEntry struct {
	Value float64
}

// StringEntry is a reference to a Utf8Entry.
type StringEntry struct {
	Value *Utf8Entry
}

// ClassEntry names a class via its internal, slash-separated name.
type ClassEntry struct {
	Name *Utf8Entry
}

// NameAndTypeEntry pairs a member name with its descriptor.
type NameAndTypeEntry struct {
	Name       *Utf8Entry
	Descriptor *Utf8Entry
}

// FieldRefEntry is a symbolic reference to a field.
type FieldRefEntry struct {
	Class       *ClassEntry
	NameAndType *NameAndTypeEntry
}

// MethodRefEntry is a symbolic reference to a class method.
type MethodRefEntry struct {
	Class       *ClassEntry
	NameAndType *NameAndTypeEntry
}

// InterfaceMethodRefEntry is a symbolic reference to an interface method.
type InterfaceMethodRefEntry struct {
	Class       *ClassEntry
	NameAndType *NameAndTypeEntry
}

// unusableEntry occupies the slot immediately following a Long or Double
// entry. It exists only to keep positional indexing correct; any attempt to
// resolve a handle to it is a Link error.
type unusableEntry struct{}

func (*Utf8Entry) constPoolEntry()              {}
func (*IntegerEntry) constPoolEntry()           {}
func (*FloatEntry) constPoolEntry()             {}
func (*LongEntry) constPoolEntry()              {}
func (*DoubleEntry) constPoolEntry()            {}
func (*StringEntry) constPoolEntry()            {}
func (*ClassEntry) constPoolEntry()             {}
func (*NameAndTypeEntry) constPoolEntry()       {}
func (*FieldRefEntry) constPoolEntry()          {}
func (*MethodRefEntry) constPoolEntry()         {}
func (*InterfaceMethodRefEntry) constPoolEntry() {}
func (*unusableEntry) constPoolEntry()          {}

// constant pool tags, as laid out on the wire.
const (
	tagUtf8               = 1
	tagInteger            = 3
	tagFloat              = 4
	tagLong               = 5
	tagDouble             = 6
	tagClass              = 7
	tagString             = 8
	tagFieldRef           = 9
	tagMethodRef          = 10
	tagInterfaceMethodRef = 11
	tagNameAndType        = 12
)

// poolProxy is an unresolved, pass-1 constant-pool entry: it still carries
// raw 1-based indices into the pool rather than direct handles. It exists
// only during decode.
type poolProxy interface {
	poolProxy()
}

type utf8Proxy struct{ value string }
type integerProxy struct{ value int32 }
type floatProxy struct{ value float32 }
type longProxy struct{ value int64 }
type doubleProxy struct{ value float64 }
type classProxy struct{ nameIndex uint16 }
type stringProxy struct{ utf8Index uint16 }
type nameAndTypeProxy struct{ nameIndex, descriptorIndex uint16 }
type fieldRefProxy struct{ classIndex, nameAndTypeIndex uint16 }
type methodRefProxy struct{ classIndex, nameAndTypeIndex uint16 }
type interfaceMethodRefProxy struct{ classIndex, nameAndTypeIndex uint16 }
type unusableProxy struct{}

func (utf8Proxy) poolProxy()               {}
func (integerProxy) poolProxy()            {}
func (floatProxy) poolProxy()              {}
func (longProxy) poolProxy()               {}
func (doubleProxy) poolProxy()             {}
func (classProxy) poolProxy()              {}
func (stringProxy) poolProxy()             {}
func (nameAndTypeProxy) poolProxy()        {}
func (fieldRefProxy) poolProxy()           {}
func (methodRefProxy) poolProxy()          {}
func (interfaceMethodRefProxy) poolProxy() {}
func (unusableProxy) poolProxy()           {}

// ConstantPool is the fully linked, post-resolution constant pool of a
// decoded class. It owns every Utf8 and Class payload reachable from the
// class; members and attributes hold shared handles into it.
type ConstantPool struct {
	// entries[i] corresponds to constant_pool index i+1 (index 0 is
	// reserved and never stored here).
	entries []ConstPoolEntry
}

// Count returns the number of addressable entries (constant_pool_count - 1).
func (p *ConstantPool) Count() int {
	return len(p.entries)
}

// Entries returns the pool's entries in index order (entries[0] is index 1).
// The reserved slot following a Long or Double entry is included as a nil
// element so that positional offsets from Count() still line up.
func (p *ConstantPool) Entries() []ConstPoolEntry {
	out := make([]ConstPoolEntry, len(p.entries))
	for i, e := range p.entries {
		if _, unusable := e.(*unusableEntry); unusable {
			continue
		}
		out[i] = e
	}
	return out
}

// entryAt fetches the entry at a 1-based index, which must be nonzero.
func (p *ConstantPool) entryAt(index uint16) (ConstPoolEntry, error) {
	if index == 0 {
		return nil, newError(Link, "constant pool index 0 is not valid here")
	}
	i := int(index) - 1
	if i < 0 || i >= len(p.entries) {
		return nil, newError(Link, "constant pool index %d out of range (pool has %d entries)", index, len(p.entries))
	}
	entry := p.entries[i]
	if _, unusable := entry.(*unusableEntry); unusable {
		return nil, newError(Link, "constant pool index %d refers to the reserved slot after a Long/Double entry", index)
	}
	return entry, nil
}

// Utf8 resolves index to a Utf8Entry; index must be nonzero.
func (p *ConstantPool) Utf8(index uint16) (*Utf8Entry, error) {
	e, err := p.entryAt(index)
	if err != nil {
		return nil, err
	}
	u, ok := e.(*Utf8Entry)
	if !ok {
		return nil, newError(Link, "constant pool index %d is not a Utf8 entry", index)
	}
	return u, nil
}

// Class resolves index to a ClassEntry; index must be nonzero.
func (p *ConstantPool) Class(index uint16) (*ClassEntry, error) {
	e, err := p.entryAt(index)
	if err != nil {
		return nil, err
	}
	c, ok := e.(*ClassEntry)
	if !ok {
		return nil, newError(Link, "constant pool index %d is not a Class entry", index)
	}
	return c, nil
}

// OptionalClass resolves index to a ClassEntry, treating a zero index as a
// legal absence (used for super_class and exception catch_type).
func (p *ConstantPool) OptionalClass(index uint16) (*ClassEntry, error) {
	if index == 0 {
		return nil, nil
	}
	return p.Class(index)
}

// NameAndType resolves index to a NameAndTypeEntry; index must be nonzero.
func (p *ConstantPool) NameAndType(index uint16) (*NameAndTypeEntry, error) {
	e, err := p.entryAt(index)
	if err != nil {
		return nil, err
	}
	nt, ok := e.(*NameAndTypeEntry)
	if !ok {
		return nil, newError(Link, "constant pool index %d is not a NameAndType entry", index)
	}
	return nt, nil
}

// ConstValue resolves index to an entry usable as a ConstantValue attribute
// payload: Integer, Float, Long, Double, or String.
func (p *ConstantPool) ConstValue(index uint16) (ConstPoolEntry, error) {
	e, err := p.entryAt(index)
	if err != nil {
		return nil, err
	}
	switch e.(type) {
	case *IntegerEntry, *FloatEntry, *LongEntry, *DoubleEntry, *StringEntry:
		return e, nil
	default:
		return nil, newError(Link, "constant pool index %d is not a valid ConstantValue (must be Integer/Float/Long/Double/String)", index)
	}
}

// decodeConstantPool performs the two-pass decode described in the design:
// pass 1 reads raw tagged proxy entries, advancing two slots for wide
// (Long/Double) entries; pass 2 resolves every proxy into a direct handle,
// re-resolving shared dependencies from the proxy table so that forward
// references (an entry naming a pool index greater than its own) work.
func decodeConstantPool(r *reader) (*ConstantPool, error) {
	count, err := r.readU16()
	if err != nil {
		return nil, err
	}
	if count == 0 {
		return nil, newError(Parsing, "constant_pool_count must be at least 1")
	}
	slots := int(count) - 1
	proxies := make([]poolProxy, slots)

	for i := 0; i < slots; {
		tag, err := r.readU8()
		if err != nil {
			return nil, err
		}
		switch tag {
		case tagUtf8:
			v, err := r.readUTF8()
			if err != nil {
				return nil, err
			}
			proxies[i] = utf8Proxy{v}
			i++
		case tagInteger:
			v, err := r.readI32()
			if err != nil {
				return nil, err
			}
			proxies[i] = integerProxy{v}
			i++
		case tagFloat:
			v, err := r.readF32()
			if err != nil {
				return nil, err
			}
			proxies[i] = floatProxy{v}
			i++
		case tagLong:
			v, err := r.readI64()
			if err != nil {
				return nil, err
			}
			proxies[i] = longProxy{v}
			if i+1 < slots {
				proxies[i+1] = unusableProxy{}
			}
			i += 2
		case tagDouble:
			v, err := r.readF64()
			if err != nil {
				return nil, err
			}
			proxies[i] = doubleProxy{v}
			if i+1 < slots {
				proxies[i+1] = unusableProxy{}
			}
			i += 2
		case tagClass:
			idx, err := r.readU16()
			if err != nil {
				return nil, err
			}
			proxies[i] = classProxy{idx}
			i++
		case tagString:
			idx, err := r.readU16()
			if err != nil {
				return nil, err
			}
			proxies[i] = stringProxy{idx}
			i++
		case tagFieldRef:
			c, nt, err := readTwoIndices(r)
			if err != nil {
				return nil, err
			}
			proxies[i] = fieldRefProxy{c, nt}
			i++
		case tagMethodRef:
			c, nt, err := readTwoIndices(r)
			if err != nil {
				return nil, err
			}
			proxies[i] = methodRefProxy{c, nt}
			i++
		case tagInterfaceMethodRef:
			c, nt, err := readTwoIndices(r)
			if err != nil {
				return nil, err
			}
			proxies[i] = interfaceMethodRefProxy{c, nt}
			i++
		case tagNameAndType:
			n, d, err := readTwoIndices(r)
			if err != nil {
				return nil, err
			}
			proxies[i] = nameAndTypeProxy{n, d}
			i++
		default:
			return nil, newError(Parsing, "unknown constant pool tag %d at slot %d", tag, i+1)
		}
	}

	resolved := make([]ConstPoolEntry, slots)
	resolver := &poolResolver{proxies: proxies, resolved: resolved}
	for i := range proxies {
		if proxies[i] == nil {
			continue
		}
		entry, err := resolver.resolve(i)
		if err != nil {
			return nil, err
		}
		resolved[i] = entry
	}
	return &ConstantPool{entries: resolved}, nil
}

func readTwoIndices(r *reader) (uint16, uint16, error) {
	a, err := r.readU16()
	if err != nil {
		return 0, 0, err
	}
	b, err := r.readU16()
	if err != nil {
		return 0, 0, err
	}
	return a, b, nil
}

// poolResolver resolves pass-1 proxies into linked entries, memoizing each
// slot so shared dependencies (e.g. two Class entries naming the same Utf8)
// are only resolved once and share the same *Utf8Entry handle.
type poolResolver struct {
	proxies  []poolProxy
	resolved []ConstPoolEntry
}

// proxyAt dereferences a raw 1-based index into the proxy table, rejecting
// index 0 and out-of-range indices.
func (r *poolResolver) proxyAt(index uint16) (int, error) {
	if index == 0 {
		return 0, newError(Link, "constant pool index 0 is not valid here")
	}
	i := int(index) - 1
	if i < 0 || i >= len(r.proxies) || r.proxies[i] == nil {
		return 0, newError(Link, "constant pool index %d out of range", index)
	}
	return i, nil
}

func (r *poolResolver) resolve(i int) (ConstPoolEntry, error) {
	if r.resolved[i] != nil {
		return r.resolved[i], nil
	}
	var entry ConstPoolEntry
	var err error
	switch p := r.proxies[i].(type) {
	case utf8Proxy:
		entry = &Utf8Entry{Value: p.value}
	case integerProxy:
		entry = &IntegerEntry{Value: p.value}
	case floatProxy:
		entry = &FloatEntry{Value: p.value}
	case longProxy:
		entry = &LongEntry{Value: p.value}
	case doubleProxy:
		entry = &DoubleEntry{Value: p.value}
	case unusableProxy:
		entry = &unusableEntry{}
	case classProxy:
		utf8, rerr := r.resolveUtf8(p.nameIndex)
		if rerr != nil {
			err = rerr
			break
		}
		entry = &ClassEntry{Name: utf8}
	case stringProxy:
		utf8, rerr := r.resolveUtf8(p.utf8Index)
		if rerr != nil {
			err = rerr
			break
		}
		entry = &StringEntry{Value: utf8}
	case nameAndTypeProxy:
		name, rerr := r.resolveUtf8(p.nameIndex)
		if rerr != nil {
			err = rerr
			break
		}
		descriptor, rerr := r.resolveUtf8(p.descriptorIndex)
		if rerr != nil {
			err = rerr
			break
		}
		entry = &NameAndTypeEntry{Name: name, Descriptor: descriptor}
	case fieldRefProxy:
		class, nt, rerr := r.resolveClassAndNameAndType(p.classIndex, p.nameAndTypeIndex)
		if rerr != nil {
			err = rerr
			break
		}
		entry = &FieldRefEntry{Class: class, NameAndType: nt}
	case methodRefProxy:
		class, nt, rerr := r.resolveClassAndNameAndType(p.classIndex, p.nameAndTypeIndex)
		if rerr != nil {
			err = rerr
			break
		}
		entry = &MethodRefEntry{Class: class, NameAndType: nt}
	case interfaceMethodRefProxy:
		class, nt, rerr := r.resolveClassAndNameAndType(p.classIndex, p.nameAndTypeIndex)
		if rerr != nil {
			err = rerr
			break
		}
		entry = &InterfaceMethodRefEntry{Class: class, NameAndType: nt}
	default:
		err = newError(Parsing, "unresolvable constant pool proxy at slot %d", i+1)
	}
	if err != nil {
		return nil, err
	}
	r.resolved[i] = entry
	return entry, nil
}

func (r *poolResolver) resolveUtf8(index uint16) (*Utf8Entry, error) {
	i, err := r.proxyAt(index)
	if err != nil {
		return nil, err
	}
	entry, err := r.resolve(i)
	if err != nil {
		return nil, err
	}
	u, ok := entry.(*Utf8Entry)
	if !ok {
		return nil, newError(Link, "constant pool index %d is not a Utf8 entry", index)
	}
	return u, nil
}

func (r *poolResolver) resolveClass(index uint16) (*ClassEntry, error) {
	i, err := r.proxyAt(index)
	if err != nil {
		return nil, err
	}
	entry, err := r.resolve(i)
	if err != nil {
		return nil, err
	}
	c, ok := entry.(*ClassEntry)
	if !ok {
		return nil, newError(Link, "constant pool index %d is not a Class entry", index)
	}
	return c, nil
}

func (r *poolResolver) resolveNameAndType(index uint16) (*NameAndTypeEntry, error) {
	i, err := r.proxyAt(index)
	if err != nil {
		return nil, err
	}
	entry, err := r.resolve(i)
	if err != nil {
		return nil, err
	}
	nt, ok := entry.(*NameAndTypeEntry)
	if !ok {
		return nil, newError(Link, "constant pool index %d is not a NameAndType entry", index)
	}
	return nt, nil
}

func (r *poolResolver) resolveClassAndNameAndType(classIndex, nameAndTypeIndex uint16) (*ClassEntry, *NameAndTypeEntry, error) {
	class, err := r.resolveClass(classIndex)
	if err != nil {
		return nil, nil, err
	}
	nt, err := r.resolveNameAndType(nameAndTypeIndex)
	if err != nil {
		return nil, nil, err
	}
	return class, nt, nil
}
