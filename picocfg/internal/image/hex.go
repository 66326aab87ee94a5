// Copyright 2025 The Embedded Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package image converts the configuration blob to and from the flash image
// formats understood by the Raspberry Pi tooling (Intel HEX and UF2).
package image

import (
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/daedalus-labs/filament-dryer/picocfg/internal/blob"
	"github.com/marcinbor85/gohex"
)

// WriteHex writes data placed at addr in the Intel HEX format.
func WriteHex(w io.Writer, addr uint32, data []byte) error {
	mem := gohex.NewMemory()
	if err := mem.AddBinary(addr, data); err != nil {
		return err
	}
	return mem.DumpIntelHex(w, 16)
}

// ReadHex parses the Intel HEX file.
func ReadHex(r io.Reader) (*gohex.Memory, error) {
	mem := gohex.NewMemory()
	if err := mem.ParseIntelHex(r); err != nil {
		return nil, err
	}
	return mem, nil
}

// Tail returns the last n bytes of the flash stored in mem. The bytes not
// present in mem are 0xff (erased flash).
func Tail(mem *gohex.Memory, n int) []byte {
	return mem.ToBinary(uint32(blob.TotalMemory-n), uint32(n), 0xff)
}

// ReadBlob reads the configuration from a raw blob, Intel HEX or UF2 file
// selected by the file name extension.
func ReadBlob(name string) (c blob.Config, ok bool, err error) {
	var mem *gohex.Memory
	switch strings.ToLower(filepath.Ext(name)) {
	case ".hex", ".ihex":
		f, err := os.Open(name)
		if err != nil {
			return c, false, err
		}
		defer f.Close()
		if mem, err = ReadHex(f); err != nil {
			return c, false, err
		}
	case ".uf2":
		f, err := os.Open(name)
		if err != nil {
			return c, false, err
		}
		defer f.Close()
		if mem, err = ReadUF2(f); err != nil {
			return c, false, err
		}
	default:
		return blob.ReadFile(name)
	}
	return blob.Decode(Tail(mem, blob.MaxTotal+4))
}
