// Copyright 2025 The Embedded Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package load

import (
	"flag"
	"fmt"
	"os"

	"github.com/daedalus-labs/filament-dryer/picocfg/internal/blob"
	"github.com/daedalus-labs/filament-dryer/picocfg/internal/picotool"
	"github.com/daedalus-labs/filament-dryer/picocfg/internal/util"
)

const Descr = "write the Wi-Fi configuration to the end of the Pico flash"

func Main(cmd string, args []string) {
	fs := flag.NewFlagSet(cmd, flag.ExitOnError)
	fs.Usage = func() {
		fmt.Fprintf(os.Stderr, "Usage:\n  %s [OPTIONS]\nOptions:\n", cmd)
		fs.PrintDefaults()
	}
	cfg := util.ConfigFlags(fs)
	via := fs.String(
		"via", "picotool", "select the way the configuration is loaded:\n"+
			"picotool: run picotool load (the device may run an application)\n"+
			"picoboot: talk PICOBOOT over USB (the device must be in BOOTSEL mode)\n",
	)
	busAddr := fs.String("usb", "", "select the USB device by `BUS:ADDR` (picoboot only)")
	reboot := fs.Bool("reboot", false, "reboot the device after loading (picoboot only)")
	quiet := fs.Bool("quiet", false, "do not print diagnostic information")
	fs.Parse(args)
	if fs.NArg() != 0 {
		fs.Usage()
		os.Exit(1)
	}
	l := util.Logger{Quiet: *quiet}
	switch *via {
	case "picotool":
		size := util.Build(l, blob.File, cfg)
		off := blob.Offset(size)
		l.Printf("writing %s to pico @ %s", blob.File, blob.FormatOffset(off))
		util.FatalErr("picotool", picotool.Load(blob.File, off))
	case "picoboot":
		size := util.Build(l, blob.File, cfg)
		data, err := os.ReadFile(blob.File)
		util.FatalErr("", err)
		off := blob.Offset(size)
		l.Printf("writing %s to pico @ %s", blob.File, blob.FormatOffset(off))
		picoboot(l, *busAddr, off, data, *reboot)
	default:
		util.Fatal("unknown loading method: %s", *via)
	}
}
