// Copyright 2021 Saferwall. All rights reserved.
// Use of this source code is governed by Apache v2 license
// license that can be found in the LICENSE file.

package classfile

import (
	"os"
	"path/filepath"
	"testing"
)

func TestNewBytesAndParse(t *testing.T) {
	tests := []struct {
		name string
		in   []byte
	}{
		{"hello world class", helloWorldClassBytes()},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			file, err := NewBytes(tt.in, nil)
			if err != nil {
				t.Fatalf("NewBytes failed: %v", err)
			}
			defer file.Close()

			if err := file.Parse(); err != nil {
				t.Fatalf("Parse failed: %v", err)
			}
			if file.Class == nil {
				t.Fatalf("Parse succeeded but Class is nil")
			}
		})
	}
}

func TestNewMemoryMapsFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "HelloWorld.class")
	if err := os.WriteFile(path, helloWorldClassBytes(), 0o644); err != nil {
		t.Fatalf("failed to write fixture: %v", err)
	}

	file, err := New(path, nil)
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}
	defer file.Close()

	if err := file.Parse(); err != nil {
		t.Fatalf("Parse failed: %v", err)
	}
	if file.Class.ThisClass.Name.Value != "HelloWorld" {
		t.Errorf("this_class = %q, want HelloWorld", file.Class.ThisClass.Name.Value)
	}
}

func TestDecodeFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "HelloWorld.class")
	if err := os.WriteFile(path, helloWorldClassBytes(), 0o644); err != nil {
		t.Fatalf("failed to write fixture: %v", err)
	}

	class, err := DecodeFile(path)
	if err != nil {
		t.Fatalf("DecodeFile failed: %v", err)
	}
	if class.ThisClass.Name.Value != "HelloWorld" {
		t.Errorf("this_class = %q, want HelloWorld", class.ThisClass.Name.Value)
	}
}
