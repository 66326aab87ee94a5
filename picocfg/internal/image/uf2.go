// Copyright 2025 The Embedded Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package image

import (
	"bytes"
	"encoding/binary"
	"errors"
	"fmt"
	"io"

	"github.com/marcinbor85/gohex"
)

const (
	uf2Magic0 = 0x0a324655
	uf2Magic1 = 0x9e5d5157
	uf2Magic2 = 0x0ab16f30

	uf2FamilyIDPresent = 0x00002000

	// The bootrom accepts only 256-byte payloads at 256-byte aligned
	// addresses.
	uf2Payload = 256
)

// UF2Families maps the known family names to the UF2 family IDs.
var UF2Families = map[string]uint32{
	"rp2040":        0xe48bff56,
	"absolute":      0xe48bff57,
	"data":          0xe48bff58,
	"rp2350_arm_s":  0xe48bff59,
	"rp2350_riscv":  0xe48bff5a,
	"rp2350_arm_ns": 0xe48bff5b,
}

type uf2Block struct {
	Magic0 uint32
	Magic1 uint32
	Flags  uint32
	Addr   uint32
	Len    uint32
	Seq    uint32
	Total  uint32
	Family uint32
	Data   [uf2Payload]byte
	_      [476 - uf2Payload]byte
	Magic2 uint32
}

// WriteUF2 writes data placed at addr as a sequence of UF2 blocks. The
// first block starts at addr rounded down to the payload size, the gap is
// filled with 0xff.
func WriteUF2(w io.Writer, addr uint32, data []byte, family uint32) error {
	start := addr &^ (uf2Payload - 1)
	img := bytes.Repeat([]byte{0xff}, int(addr-start))
	img = append(img, data...)
	if r := len(img) % uf2Payload; r != 0 {
		img = append(img, bytes.Repeat([]byte{0xff}, uf2Payload-r)...)
	}
	b := &uf2Block{
		Magic0: uf2Magic0,
		Magic1: uf2Magic1,
		Flags:  uf2FamilyIDPresent,
		Len:    uf2Payload,
		Total:  uint32(len(img) / uf2Payload),
		Family: family,
		Magic2: uf2Magic2,
	}
	for i := range b.Total {
		b.Seq = i
		b.Addr = start + i*uf2Payload
		copy(b.Data[:], img[i*uf2Payload:])
		if err := binary.Write(w, binary.LittleEndian, b); err != nil {
			return err
		}
	}
	return nil
}

// ReadUF2 reads UF2 blocks until EOF and returns the memory they describe.
func ReadUF2(r io.Reader) (*gohex.Memory, error) {
	mem := gohex.NewMemory()
	var b uf2Block
	for n := 0; ; n++ {
		err := binary.Read(r, binary.LittleEndian, &b)
		if err == io.EOF {
			if n == 0 {
				return nil, errors.New("uf2: no blocks")
			}
			return mem, nil
		}
		if err != nil {
			return nil, fmt.Errorf("uf2: block %d: %w", n, err)
		}
		if b.Magic0 != uf2Magic0 || b.Magic1 != uf2Magic1 || b.Magic2 != uf2Magic2 {
			return nil, fmt.Errorf("uf2: block %d: bad magic", n)
		}
		if b.Len > uf2Payload {
			return nil, fmt.Errorf("uf2: block %d: payload size %d", n, b.Len)
		}
		if err = mem.AddBinary(b.Addr, bytes.Clone(b.Data[:b.Len])); err != nil {
			return nil, fmt.Errorf("uf2: block %d: %w", n, err)
		}
	}
}
