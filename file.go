// Copyright 2018 Saferwall. All rights reserved.
// Use of this source code is governed by Apache v2 license
// license that can be found in the LICENSE file.

package classfile

import (
	"os"

	mmap "github.com/edsrzf/mmap-go"

	"github.com/saferwall/classfile/log"
)

// Options configures how a ClassFile is parsed.
type Options struct {
	// StrictAttributeLength, when true, rejects an attribute whose declared
	// length field doesn't match the number of bytes its decoder actually
	// consumed. The reference behavior (false, the default) does not
	// cross-check; see the design notes.
	StrictAttributeLength bool

	// Logger receives diagnostics. Defaults to a discarding logger.
	Logger log.Logger
}

// ClassFile represents one JVM class file, open for decoding. It wraps
// either a memory-mapped file (via New) or a caller-supplied buffer (via
// NewBytes); either way the class is assembled in full by Parse before it
// can be read.
type ClassFile struct {
	Class *Class

	data   []byte
	mapped mmap.MMap
	f      *os.File
	opts   *Options
	logger *log.Helper
}

func normalizeOptions(opts *Options) *Options {
	if opts == nil {
		opts = &Options{}
	}
	if opts.Logger == nil {
		opts.Logger = log.Discard
	}
	return opts
}

// New opens the file at path and memory-maps it for parsing. Close must be
// called to release the mapping.
func New(path string, opts *Options) (*ClassFile, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	data, err := mmap.Map(f, mmap.RDONLY, 0)
	if err != nil {
		f.Close()
		return nil, err
	}
	o := normalizeOptions(opts)
	return &ClassFile{
		data:   data,
		mapped: data,
		f:      f,
		opts:   o,
		logger: log.NewHelper(o.Logger),
	}, nil
}

// NewBytes wraps an in-memory buffer, for callers who already hold the
// bytes of a class file (for example, extracted from a jar entry).
func NewBytes(data []byte, opts *Options) (*ClassFile, error) {
	o := normalizeOptions(opts)
	return &ClassFile{
		data:   data,
		opts:   o,
		logger: log.NewHelper(o.Logger),
	}, nil
}

// Close releases the memory mapping, if any, and closes the underlying
// file. It is a no-op for a ClassFile constructed with NewBytes.
func (c *ClassFile) Close() error {
	if c.mapped != nil {
		_ = c.mapped.Unmap()
	}
	if c.f != nil {
		return c.f.Close()
	}
	return nil
}

// Parse decodes the class file in full. On success, c.Class holds the
// assembled, fully linked class. On failure, c.Class remains nil: there is
// no partial result, matching the first-error-aborts contract.
func (c *ClassFile) Parse() error {
	c.logger.Debugf("parsing class file (%d bytes)", len(c.data))
	class, err := assembleClass(newReader(c.data), c.opts.StrictAttributeLength)
	if err != nil {
		c.logger.Errorf("parse failed: %v", err)
		return err
	}
	c.Class = class
	return nil
}

// Decode is a convenience entry point for callers who already hold the
// bytes of a class file and just want the decoded Class, without the
// ClassFile lifecycle (Close is a no-op for byte-backed instances anyway).
func Decode(data []byte) (*Class, error) {
	return assembleClass(newReader(data), false)
}

// DecodeFile memory-maps and decodes the class file at path in one call.
func DecodeFile(path string) (*Class, error) {
	cf, err := New(path, nil)
	if err != nil {
		return nil, err
	}
	defer cf.Close()
	if err := cf.Parse(); err != nil {
		return nil, err
	}
	return cf.Class, nil
}
