// Copyright 2025 The Embedded Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package picoboot implements the host side of the PICOBOOT protocol spoken
// by the RP2040 and RP2350 bootrom in BOOTSEL mode.
package picoboot

import (
	"encoding/binary"
	"errors"
	"io"
	"strconv"
	"strings"
	"time"

	usb "github.com/google/gousb"
)

const magic uint32 = 0x431fd10b

const (
	cmdExclusiveAccess uint8 = 0x01
	cmdReboot          uint8 = 0x02
	cmdFlashErase      uint8 = 0x03
	cmdRead            uint8 = 0x84
	cmdWrite           uint8 = 0x05
	cmdExitXIP         uint8 = 0x06
	cmdEnterXIP        uint8 = 0x07
	cmdReboot2         uint8 = 0x0a
)

// USB identifiers of the bootrom.
const (
	Vendor        usb.ID = 0x2e8a
	ProductRP2040 usb.ID = 0x0003
	ProductRP2350 usb.ID = 0x000f
)

// Flash page and sector sizes. Writes must be page aligned, erases sector
// aligned.
const (
	PageSize   = 256
	SectorSize = 4096
)

// The flash is mapped at [flashStart, flashEnd).
const (
	flashStart = 0x1000_0000
	flashEnd   = 0x2000_0000
)

type Conn struct {
	usbCtx    *usb.Context
	dev       *usb.Device
	cfg       *usb.Config
	intf      *usb.Interface
	oe        *usb.OutEndpoint
	ie        *usb.InEndpoint
	product   usb.ID
	cmdBuf    [32]byte
	token     uint32
	readSpec  [2]uint32
	writeSpec [2]uint32
}

func parseBusAddr(busAddr string) (int, int) {
	s := strings.Split(busAddr, ":")
	if len(s) != 2 {
		return -1, -1
	}
	bus, err := strconv.ParseUint(s[0], 10, 8)
	if err != nil {
		return -1, -1
	}
	dev, err := strconv.ParseUint(s[1], 10, 8)
	if err != nil {
		return -1, -1
	}
	return int(bus), int(dev)
}

type Error struct {
	Op  string
	Err error
}

func (e *Error) Unwrap() error {
	return e.Err
}

func (e *Error) Error() string {
	return "picoboot: " + e.Op + ": " + e.Err.Error()
}

func wrapErr(op string, err *error) {
	if *err != nil {
		*err = &Error{op, *err}
	}
}

// Connect connects to the USB device in BOOTSEL mode. You can select the
// concrete device on the USB bus by providing BUS:DEV string where both BUS
// and DEV are decimal unsigned integers. If busAddr is empty Connect looks
// for the only RP2040 or RP2350 device in BOOTSEL mode.
func Connect(busAddr string) (conn *Conn, err error) {
	defer wrapErr("Connect", &err)
	bus, addr := parseBusAddr(busAddr)
	if busAddr != "" && bus < 0 {
		return nil, errors.New("bad USB device address: " + busAddr)
	}
	ctx := usb.NewContext()
	pc := &Conn{usbCtx: ctx}
	defer func() {
		if err != nil {
			pc.Close()
		}
	}()
	var cn, in, an int
	devs, err := ctx.OpenDevices(func(desc *usb.DeviceDesc) bool {
		if bus >= 0 && (desc.Bus != bus || desc.Address != addr) {
			return false
		}
		if desc.Vendor != Vendor {
			return false
		}
		if desc.Product != ProductRP2040 && desc.Product != ProductRP2350 {
			return false
		}
		for _, cfg := range desc.Configs {
			for _, id := range cfg.Interfaces {
				for _, is := range id.AltSettings {
					if is.Class == 0xff && is.SubClass == 0 && is.Protocol == 0 {
						cn, in, an = cfg.Number, id.Number, is.Alternate
						return true
					}
				}
			}
		}
		return false
	})
	if len(devs) != 1 {
		for _, d := range devs {
			d.Close()
		}
	}
	if err != nil {
		return
	}
	if len(devs) == 0 {
		return nil, errors.New("no USB devices in BOOTSEL mode were found")
	}
	if len(devs) != 1 {
		return nil, errors.New("found more than one USB device in BOOTSEL mode")
	}
	pc.dev = devs[0]
	pc.product = pc.dev.Desc.Product
	pc.dev.SetAutoDetach(true)

	// Determine PICOBOOT bulk endpoints (TX/RX).
	if pc.cfg, err = pc.dev.Config(cn); err != nil {
		return
	}
	if pc.intf, err = pc.cfg.Interface(in, an); err != nil {
		return
	}
	var rxn, txn int
	if n := len(pc.intf.Setting.Endpoints); n != 2 {
		return nil, errors.New("want exactly two USB bulk endpoints")
	}
	for _, ed := range pc.intf.Setting.Endpoints {
		if ed.Direction == usb.EndpointDirectionIn {
			rxn = ed.Number
		} else {
			txn = ed.Number
		}
	}
	if rxn == 0 {
		return nil, errors.New("no USB IN endpoint in the USB interface")
	}
	if txn == 0 {
		return nil, errors.New("no USB OUT endpoint in the USB interface")
	}
	if pc.ie, err = pc.intf.InEndpoint(rxn); err != nil {
		return
	}
	if pc.oe, err = pc.intf.OutEndpoint(txn); err != nil {
		return
	}
	binary.LittleEndian.AppendUint32(pc.cmdBuf[:0], magic)
	return pc, nil
}

// Close releases the USB interface, configuration, device and context.
func (c *Conn) Close() (err error) {
	if c.intf != nil {
		c.intf.Close()
	}
	if c.cfg != nil {
		c.cfg.Close()
	}
	if c.dev != nil {
		c.dev.Close()
	}
	err = c.usbCtx.Close()
	wrapErr("Close", &err)
	return
}

// Chip returns the name of the connected chip.
func (c *Conn) Chip() string {
	if c.product == ProductRP2350 {
		return "RP2350"
	}
	return "RP2040"
}

func (c *Conn) writeCmd(cmdId uint8, transferLength int, args any) error {
	cmdSize := 0
	if args != nil {
		cmdSize = binary.Size(args)
	}
	if uint(cmdSize) > 16 {
		return errors.New("wrong args size")
	}
	le := binary.LittleEndian
	buf := c.cmdBuf[:4] // persistent magic number
	buf = le.AppendUint32(buf, c.token)
	buf = append(buf, cmdId, uint8(cmdSize))
	buf = buf[:len(buf)+2] // reserved field
	buf = le.AppendUint32(buf, uint32(transferLength))
	if args != nil {
		buf, _ = binary.Append(buf, le, args)
	}
	n := len(buf)
	buf = buf[:cap(buf)]
	clear(buf[n:]) // padd with zeros
	_, err := c.oe.Write(buf)
	c.token++
	return err
}

// simpleCmd sends a command without a data phase and waits for its status.
func (c *Conn) simpleCmd(cmdId uint8, args any) error {
	if err := c.writeCmd(cmdId, 0, args); err != nil {
		return err
	}
	_, err := c.ie.Read(nil)
	return err
}

func (c *Conn) SetExclusiveAccess(ea bool) (err error) {
	defer wrapErr("SetExclusiveAccess", &err)
	var arg uint8
	if ea {
		arg = 1
	}
	return c.simpleCmd(cmdExclusiveAccess, &arg)
}

// ExitXIP switches the flash out of the execute-in-place mode. It must
// precede flash erase and write commands.
func (c *Conn) ExitXIP() (err error) {
	defer wrapErr("ExitXIP", &err)
	return c.simpleCmd(cmdExitXIP, nil)
}

// EnterXIP switches the flash back to the execute-in-place mode.
func (c *Conn) EnterXIP() (err error) {
	defer wrapErr("EnterXIP", &err)
	return c.simpleCmd(cmdEnterXIP, nil)
}

// FlashErase erases size bytes of the flash starting at addr. Both addr and
// size must be multiples of SectorSize.
func (c *Conn) FlashErase(addr, size uint32) (err error) {
	defer wrapErr("FlashErase", &err)
	if addr%SectorSize != 0 || size%SectorSize != 0 {
		return errors.New("unaligned flash erase")
	}
	args := [2]uint32{addr, size}
	return c.simpleCmd(cmdFlashErase, &args)
}

func (c *Conn) SetReadAddr(addr uint32) {
	c.readSpec[0] = addr
}

func (c *Conn) SetWriteAddr(addr uint32) {
	c.writeSpec[0] = addr
}

// Read performs n-byte PICOBOOT read transaction (if err == nil then n is
// always equal to len(p)) starting just after the last read address (see also
// SetReadAddr).
func (c *Conn) Read(p []byte) (n int, err error) {
	defer wrapErr("Read", &err)
	c.readSpec[1] = uint32(len(p))
	err = c.writeCmd(cmdRead, len(p), &c.readSpec)
	if err != nil {
		return
	}
	n, err = io.ReadFull(c.ie, p)
	if err != nil {
		return
	}
	c.readSpec[0] += uint32(n)
	_, err = c.oe.Write(nil)
	return
}

// Write performs PICOBOOT write transaction starting just after the last
// written address (see also SetWriteAddr). Flash writes must be page aligned.
func (c *Conn) Write(p []byte) (n int, err error) {
	defer wrapErr("Write", &err)
	if a := c.writeSpec[0]; a >= flashStart && a < flashEnd {
		if a%PageSize != 0 || len(p)%PageSize != 0 {
			return 0, errors.New("unaligned flash write")
		}
	}
	c.writeSpec[1] = uint32(len(p))
	err = c.writeCmd(cmdWrite, len(p), &c.writeSpec)
	if err != nil {
		return
	}
	n, err = c.oe.Write(p)
	if err != nil {
		return
	}
	c.writeSpec[0] += uint32(n)
	_, err = c.ie.Read(nil)
	return
}

// Reboot reboots the device into the application stored in the flash after
// the specified delay.
func (c *Conn) Reboot(delay time.Duration) (err error) {
	defer wrapErr("Reboot", &err)
	ms := uint32(delay / time.Millisecond)
	if c.product == ProductRP2350 {
		const rebootNormal = 0
		args := [4]uint32{rebootNormal, ms, 0, 0}
		return c.simpleCmd(cmdReboot2, &args)
	}
	args := [3]uint32{0, 0, ms} // pc = 0, sp = 0: normal boot
	return c.simpleCmd(cmdReboot, &args)
}
