// Copyright 2025 The Embedded Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package load

import (
	"bytes"
	"errors"
	"testing"

	"github.com/daedalus-labs/filament-dryer/picocfg/internal/blob"
)

// fakeFlash emulates the last sectors of a NOR flash: erase sets bytes to
// 0xff, write can only clear bits.
type fakeFlash struct {
	base   uint32
	mem    []byte
	rd, wr uint32
	xip    bool
	erases int
	writes int
	broken bool // drop writes
}

func newFakeFlash(base uint32, size int) *fakeFlash {
	f := &fakeFlash{base: base, mem: bytes.Repeat([]byte{0xff}, size), xip: true}
	return f
}

func (f *fakeFlash) SetReadAddr(addr uint32)  { f.rd = addr }
func (f *fakeFlash) SetWriteAddr(addr uint32) { f.wr = addr }

func (f *fakeFlash) ExitXIP() error {
	f.xip = false
	return nil
}

func (f *fakeFlash) EnterXIP() error {
	f.xip = true
	return nil
}

func (f *fakeFlash) Read(p []byte) (int, error) {
	n := copy(p, f.mem[f.rd-f.base:])
	f.rd += uint32(n)
	return n, nil
}

func (f *fakeFlash) Write(p []byte) (int, error) {
	if f.xip {
		return 0, errors.New("write in XIP mode")
	}
	if f.wr%256 != 0 || len(p) != 256 {
		return 0, errors.New("unaligned write")
	}
	f.writes++
	if !f.broken {
		m := f.mem[f.wr-f.base:]
		for i, b := range p {
			m[i] &= b
		}
	}
	f.wr += uint32(len(p))
	return len(p), nil
}

func (f *fakeFlash) FlashErase(addr, size uint32) error {
	if f.xip {
		return errors.New("erase in XIP mode")
	}
	f.erases++
	copy(f.mem[addr-f.base:addr-f.base+size], bytes.Repeat([]byte{0xff}, int(size)))
	return nil
}

func TestPatchFlash(t *testing.T) {
	const base = blob.TotalMemory - 2*4096
	f := newFakeFlash(base, 2*4096)
	for i := range f.mem {
		f.mem[i] = byte(i)
	}
	before := bytes.Clone(f.mem)

	cfg := blob.Config{SSID: "MyNet", Passphrase: "secret123"}
	data := cfg.Bytes()
	addr := blob.Offset(len(data))
	written, err := patchFlash(f, addr, data)
	if err != nil {
		t.Fatal(err)
	}
	if !written || f.erases != 1 || f.writes != 4096/256 {
		t.Fatalf("written=%v erases=%d writes=%d", written, f.erases, f.writes)
	}
	at := int(addr - base)
	if !f.xip {
		t.Error("flash left out of XIP mode")
	}
	if !bytes.Equal(f.mem[at:], data) {
		t.Errorf("blob not at the end of the flash: % x", f.mem[at:])
	}
	if !bytes.Equal(f.mem[:at], before[:at]) {
		t.Error("data preceding the blob was not preserved")
	}
	got, ok, err := blob.Decode(f.mem)
	if err != nil || !ok || got != cfg {
		t.Errorf("Decode(flash) = %+v, %v, %v", got, ok, err)
	}

	written, err = patchFlash(f, addr, data)
	if err != nil || written {
		t.Errorf("second patch: written=%v err=%v, want no-op", written, err)
	}
	if f.erases != 1 {
		t.Errorf("unchanged flash erased again")
	}
}

func TestPatchFlashCrossesSector(t *testing.T) {
	const base = blob.TotalMemory - 2*4096
	f := newFakeFlash(base, 2*4096)
	data := bytes.Repeat([]byte{0x5a}, 4096+10)
	addr := blob.Offset(len(data))
	if _, err := patchFlash(f, addr, data); err != nil {
		t.Fatal(err)
	}
	if f.writes != 2*4096/256 {
		t.Errorf("writes = %d, want %d", f.writes, 2*4096/256)
	}
	if !bytes.Equal(f.mem[addr-base:], data) {
		t.Error("blob not written")
	}
	for i, b := range f.mem[:addr-base] {
		if b != 0xff {
			t.Fatalf("byte %d = %#x, want 0xff", i, b)
		}
	}
}

func TestPatchFlashVerify(t *testing.T) {
	const base = blob.TotalMemory - 4096
	f := newFakeFlash(base, 4096)
	f.broken = true
	data := (&blob.Config{SSID: "a"}).Bytes()
	_, err := patchFlash(f, blob.Offset(len(data)), data)
	if !errors.Is(err, errVerify) {
		t.Fatalf("err = %v, want errVerify", err)
	}
}
