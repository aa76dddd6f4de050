// Copyright 2018 Saferwall. All rights reserved.
// Use of this source code is governed by Apache v2 license
// license that can be found in the LICENSE file.

package classfile

import (
	"encoding/binary"
	"math"
	"unicode/utf8"

	"golang.org/x/text/encoding/unicode"
)

// reader is a forward-only, bounds-checked cursor over a class file's bytes.
// It never seeks and never buffers beyond the slice it was handed: every
// read either advances the cursor by the requested width or returns a
// CannotRead error.
type reader struct {
	data []byte
	pos  uint32
}

func newReader(data []byte) *reader {
	return &reader{data: data}
}

// offset returns the current cursor position, useful for diagnostics.
func (r *reader) offset() uint32 {
	return r.pos
}

// remaining reports how many bytes are left to read.
func (r *reader) remaining() uint32 {
	return uint32(len(r.data)) - r.pos
}

func (r *reader) take(n uint32) ([]byte, error) {
	if r.remaining() < n {
		return nil, newError(CannotRead, "unexpected end of stream at offset %d, wanted %d bytes", r.pos, n)
	}
	b := r.data[r.pos : r.pos+n]
	r.pos += n
	return b, nil
}

// readU8 reads one unsigned byte.
func (r *reader) readU8() (uint8, error) {
	b, err := r.take(1)
	if err != nil {
		return 0, err
	}
	return b[0], nil
}

// readU16 reads a big-endian 16-bit unsigned integer.
func (r *reader) readU16() (uint16, error) {
	b, err := r.take(2)
	if err != nil {
		return 0, err
	}
	return binary.BigEndian.Uint16(b), nil
}

// readU32 reads a big-endian 32-bit unsigned integer.
func (r *reader) readU32() (uint32, error) {
	b, err := r.take(4)
	if err != nil {
		return 0, err
	}
	return binary.BigEndian.Uint32(b), nil
}

// readI32 reads a big-endian signed 32-bit integer.
func (r *reader) readI32() (int32, error) {
	v, err := r.readU32()
	if err != nil {
		return 0, err
	}
	return int32(v), nil
}

// readI64 reads a big-endian signed 64-bit integer.
func (r *reader) readI64() (int64, error) {
	hi, err := r.readU32()
	if err != nil {
		return 0, err
	}
	lo, err := r.readU32()
	if err != nil {
		return 0, err
	}
	return int64(uint64(hi)<<32 | uint64(lo)), nil
}

// readF32 reads a big-endian IEEE-754 single-precision float.
func (r *reader) readF32() (float32, error) {
	v, err := r.readU32()
	if err != nil {
		return 0, err
	}
	return math.Float32frombits(v), nil
}

// readF64 reads a big-endian IEEE-754 double-precision float.
func (r *reader) readF64() (float64, error) {
	v, err := r.readI64()
	if err != nil {
		return 0, err
	}
	return math.Float64frombits(uint64(v)), nil
}

// readBytes reads exactly n bytes verbatim; used for the Code attribute's
// opaque bytecode array, which this decoder never interprets.
func (r *reader) readBytes(n uint32) ([]byte, error) {
	b, err := r.take(n)
	if err != nil {
		return nil, err
	}
	out := make([]byte, n)
	copy(out, b)
	return out, nil
}

// utf8Decoder converts Utf8 payloads once readUTF8 has checked them as
// standard UTF-8 (the decoder alone replaces ill-formed bytes with U+FFFD
// instead of failing). The JVM class file
// format actually specifies a modified UTF-8 variant (0xC0 0x80 for the null
// byte, six-byte surrogate pairs for supplementary characters); this decoder
// deliberately does not implement that variant, so genuinely modified-UTF-8
// content is rejected with an Encoding error. See the design notes for why.
var utf8Decoder = unicode.UTF8.NewDecoder()

// readUTF8 reads a u16 length-prefixed string and validates it as standard
// UTF-8, returning an Encoding error for anything that doesn't decode clean.
func (r *reader) readUTF8() (string, error) {
	length, err := r.readU16()
	if err != nil {
		return "", err
	}
	raw, err := r.take(uint32(length))
	if err != nil {
		return "", err
	}
	if !utf8.Valid(raw) {
		return "", newError(Encoding, "invalid UTF-8 in Utf8 entry")
	}
	decoded, err := utf8Decoder.Bytes(raw)
	if err != nil {
		return "", newError(Encoding, "invalid UTF-8 in Utf8 entry: %v", err)
	}
	return string(decoded), nil
}
