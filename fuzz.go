// Copyright 2018 Saferwall. All rights reserved.
// Use of this source code is governed by Apache v2 license
// license that can be found in the LICENSE file.

//go:build gofuzz

package classfile

// Fuzz is the go-fuzz entry point: decode arbitrary bytes as a class file
// and report whether they produced a fully assembled class, exactly like
// the teacher's own PE fuzz target.
func Fuzz(data []byte) int {
	f, err := NewBytes(data, nil)
	if err != nil {
		return 0
	}
	if err := f.Parse(); err != nil {
		return 0
	}
	return 1
}
