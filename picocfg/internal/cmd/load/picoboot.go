// Copyright 2025 The Embedded Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package load

import (
	"bytes"
	"errors"
	"io"
	"time"

	pb "github.com/daedalus-labs/filament-dryer/picocfg/internal/picoboot"
	"github.com/daedalus-labs/filament-dryer/picocfg/internal/util"
)

// flash is the subset of *picoboot.Conn used to patch the flash.
type flash interface {
	io.ReadWriter
	SetReadAddr(addr uint32)
	SetWriteAddr(addr uint32)
	ExitXIP() error
	EnterXIP() error
	FlashErase(addr, size uint32) error
}

var errVerify = errors.New("flash content differs from the written data")

// patchFlash writes data to the flash at addr preserving the rest of the
// sectors it touches. It reports false if the flash already contains data.
func patchFlash(f flash, addr uint32, data []byte) (bool, error) {
	const sectAlign = pb.SectorSize - 1
	start := addr &^ sectAlign
	end := (addr + uint32(len(data)) + sectAlign) &^ sectAlign
	img := make([]byte, end-start)
	f.SetReadAddr(start)
	if _, err := f.Read(img); err != nil {
		return false, err
	}
	blob := img[addr-start : addr-start+uint32(len(data))]
	if bytes.Equal(blob, data) {
		return false, nil
	}
	copy(blob, data)

	if err := f.ExitXIP(); err != nil {
		return false, err
	}
	if err := f.FlashErase(start, end-start); err != nil {
		return false, err
	}
	f.SetWriteAddr(start)
	for i := 0; i < len(img); i += pb.SectorSize {
		for k := i; k < i+pb.SectorSize; k += pb.PageSize {
			if _, err := f.Write(img[k : k+pb.PageSize]); err != nil {
				return false, err
			}
		}
	}
	if err := f.EnterXIP(); err != nil {
		return false, err
	}

	check := make([]byte, len(img))
	f.SetReadAddr(start)
	if _, err := f.Read(check); err != nil {
		return false, err
	}
	if !bytes.Equal(check, img) {
		return false, errVerify
	}
	return true, nil
}

func picoboot(l util.Logger, busAddr string, addr uint32, data []byte, reboot bool) {
	conn, err := pb.Connect(busAddr)
	util.FatalErr("", err)
	defer conn.Close()
	util.FatalErr("", conn.SetExclusiveAccess(true))
	l.Printf("device: %s", conn.Chip())

	written, err := patchFlash(conn, addr, data)
	util.FatalErr("", err)
	if written {
		l.Printf("loaded %d bytes", len(data))
	} else {
		l.Printf("flash already contains this configuration")
	}
	if reboot {
		util.FatalErr("", conn.Reboot(time.Second/2))
	}
}
