// Copyright 2018 Saferwall. All rights reserved.
// Use of this source code is governed by Apache v2 license
// license that can be found in the LICENSE file.

package classfile

import "fmt"

// Kind classifies why a decode failed. The decoder reports a flat set of
// kinds, no hierarchy: the first error always aborts the whole decode and no
// partial Class is ever returned.
type Kind int

const (
	// CannotRead is reported when the underlying byte source EOFs or fails
	// mid-field.
	CannotRead Kind = iota + 1

	// Parsing is reported when a structural invariant is violated: a bad
	// magic number, an unknown constant-pool tag, a nonzero-length
	// Synthetic attribute, an unrecognized access-flag bit, or any other
	// malformed-but-complete field.
	Parsing

	// Link is reported when a constant-pool index is out of range, is zero
	// where a nonzero index is required, or resolves to the wrong entry
	// variant. A Code attribute whose code_length is 0 is also reported as
	// Link.
	Link

	// Encoding is reported when Utf8 bytes fail to decode as standard UTF-8.
	Encoding
)

func (k Kind) String() string {
	switch k {
	case CannotRead:
		return "CannotRead"
	case Parsing:
		return "Parsing"
	case Link:
		return "Link"
	case Encoding:
		return "Encoding"
	default:
		return "Unknown"
	}
}

// Error is the single error type returned by this package. Callers branch on
// Kind rather than matching against a list of sentinel values.
type Error struct {
	Kind    Kind
	Message string
}

func (e *Error) Error() string {
	return fmt.Sprintf("classfile: %s: %s", e.Kind, e.Message)
}

func newError(kind Kind, format string, args ...interface{}) *Error {
	return &Error{Kind: kind, Message: fmt.Sprintf(format, args...)}
}

// IsKind reports whether err is a *Error of the given kind.
func IsKind(err error, kind Kind) bool {
	ce, ok := err.(*Error)
	return ok && ce.Kind == kind
}
