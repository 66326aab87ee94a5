// Copyright 2025 The Embedded Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package blob implements the binary configuration blob that the filament
// dryer firmware reads from the end of the Pico W flash.
//
// The blob layout (all integers are 32-bit little-endian):
//
//	SSID length | SSID | passphrase length | passphrase | total length
//
// where total length is the number of bytes preceding it. The firmware finds
// the total length in the last four bytes of the flash and walks backwards.
package blob

import (
	"encoding/binary"
	"errors"
	"fmt"
	"os"
	"path/filepath"
)

// Flash geometry of the Pico W (RP2040 + 2 MiB QSPI flash).
const (
	FlashBase   = 0x1000_0000 // XIP base address
	FlashSize   = 2 * 1024 * 1024
	TotalMemory = FlashBase + FlashSize // (256 + 2) MiB
)

// Default output locations.
const (
	Dir  = "build"
	File = "build/picocfg.bin"
)

// Limits enforced by the firmware when it reads the blob.
const (
	MaxTotal  = 1024
	MaxString = 256
)

const lenSize = 4

var (
	ErrShort   = errors.New("blob: too short")
	ErrTooLong = errors.New("blob: length exceeds firmware limit")
	ErrCorrupt = errors.New("blob: inconsistent field lengths")
)

// Config is the content of the blob.
type Config struct {
	SSID       string
	Passphrase string
}

// Size returns the size of the encoded blob including the trailing total
// length field.
func (c *Config) Size() int {
	return FieldSize(c.SSID) + FieldSize(c.Passphrase) + lenSize
}

// Append appends the encoded blob to buf.
func (c *Config) Append(buf []byte) []byte {
	start := len(buf)
	buf = AppendField(buf, c.SSID)
	buf = AppendField(buf, c.Passphrase)
	return binary.LittleEndian.AppendUint32(buf, uint32(len(buf)-start))
}

// Bytes returns the encoded blob.
func (c *Config) Bytes() []byte {
	return c.Append(make([]byte, 0, c.Size()))
}

// Offset returns the flash address at which the blob of the given size must
// be placed so that it ends exactly at TotalMemory.
func Offset(size int) uint32 {
	return uint32(TotalMemory - size)
}

// FormatOffset formats the offset the way picotool is given it: 0x prefix,
// eight hex digits wide, space padded.
func FormatOffset(off uint32) string {
	return fmt.Sprintf("0x%8x", off)
}

// FieldSize returns the encoded size of the length-prefixed s.
func FieldSize(s string) int {
	return lenSize + len(s)
}

// AppendField appends s prefixed by its byte length.
func AppendField(buf []byte, s string) []byte {
	buf = binary.LittleEndian.AppendUint32(buf, uint32(len(s)))
	return append(buf, s...)
}

// WriteField writes the length-prefixed value to the named file. The file is
// truncated if first is true, otherwise the field is appended. It returns the
// number of bytes written.
func WriteField(name, value string, first bool) (n int, err error) {
	flag := os.O_WRONLY | os.O_CREATE | os.O_APPEND
	if first {
		flag = os.O_WRONLY | os.O_CREATE | os.O_TRUNC
	}
	f, err := os.OpenFile(name, flag, 0o644)
	if err != nil {
		return 0, err
	}
	defer func() {
		if e := f.Close(); err == nil {
			err = e
		}
	}()
	buf := AppendField(make([]byte, 0, FieldSize(value)), value)
	return f.Write(buf)
}

// WriteTotal appends the total length field to the named file.
func WriteTotal(name string, total int) (err error) {
	f, err := os.OpenFile(name, os.O_WRONLY|os.O_APPEND, 0)
	if err != nil {
		return err
	}
	defer func() {
		if e := f.Close(); err == nil {
			err = e
		}
	}()
	var buf [lenSize]byte
	binary.LittleEndian.PutUint32(buf[:], uint32(total))
	_, err = f.Write(buf[:])
	return
}

// WriteFile creates the directory of name if necessary and writes the blob
// field by field. It returns the size of the file.
func WriteFile(name string, c *Config) (size int, err error) {
	if err = os.MkdirAll(filepath.Dir(name), 0o755); err != nil {
		return
	}
	total, err := WriteField(name, c.SSID, true)
	if err != nil {
		return
	}
	n, err := WriteField(name, c.Passphrase, false)
	if err != nil {
		return
	}
	total += n
	if err = WriteTotal(name, total); err != nil {
		return
	}
	return total + lenSize, nil
}

// Decode decodes the blob that ends at the end of p, the same way the
// firmware does: the total length is taken from the last four bytes and
// the fields are located relative to it. Bytes of p before the blob are
// ignored. A zero total length yields an empty Config and ok == false.
func Decode(p []byte) (c Config, ok bool, err error) {
	if len(p) < lenSize {
		return c, false, ErrShort
	}
	le := binary.LittleEndian
	end := len(p) - lenSize
	total := le.Uint32(p[end:])
	if total == 0 {
		return c, false, nil
	}
	if total > MaxTotal {
		return c, false, fmt.Errorf("%w: total length %d", ErrTooLong, total)
	}
	if int(total) > end {
		return c, false, ErrShort
	}
	body := p[end-int(total) : end]
	ssid, body, err := decodeField(body)
	if err != nil {
		return c, false, fmt.Errorf("ssid: %w", err)
	}
	pass, body, err := decodeField(body)
	if err != nil {
		return c, false, fmt.Errorf("passphrase: %w", err)
	}
	if len(body) != 0 {
		return c, false, ErrCorrupt
	}
	return Config{SSID: ssid, Passphrase: pass}, true, nil
}

func decodeField(p []byte) (s string, rest []byte, err error) {
	if len(p) < lenSize {
		return "", nil, ErrCorrupt
	}
	n := binary.LittleEndian.Uint32(p)
	if n > MaxString {
		return "", nil, fmt.Errorf("%w: string length %d", ErrTooLong, n)
	}
	p = p[lenSize:]
	if int(n) > len(p) {
		return "", nil, ErrCorrupt
	}
	return string(p[:n]), p[n:], nil
}

// ReadFile reads and decodes the named blob file.
func ReadFile(name string) (c Config, ok bool, err error) {
	p, err := os.ReadFile(name)
	if err != nil {
		return
	}
	return Decode(p)
}
