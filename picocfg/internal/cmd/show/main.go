// Copyright 2025 The Embedded Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package show

import (
	"flag"
	"fmt"
	"os"

	"github.com/daedalus-labs/filament-dryer/picocfg/internal/blob"
	"github.com/daedalus-labs/filament-dryer/picocfg/internal/image"
	"github.com/daedalus-labs/filament-dryer/picocfg/internal/util"
)

const Descr = "print the configuration stored in a BIN, HEX or UF2 file"

func Main(cmd string, args []string) {
	fs := flag.NewFlagSet(cmd, flag.ExitOnError)
	fs.Usage = func() {
		fmt.Fprintf(os.Stderr, "Usage:\n  %s [OPTIONS] [FILE]\nOptions:\n", cmd)
		fs.PrintDefaults()
	}
	reveal := fs.Bool("reveal", false, "print the passphrase")
	fs.Parse(args)
	if fs.NArg() > 1 {
		fs.Usage()
		os.Exit(1)
	}
	name := fs.Arg(0)
	if name == "" {
		name = blob.File
	}
	c, ok, err := image.ReadBlob(name)
	util.FatalErr(name, err)
	if !ok {
		fmt.Fprintln(util.Stdout, "no configuration")
		return
	}
	fmt.Fprint(util.Stdout, describe(&c, *reveal))
}

func describe(c *blob.Config, reveal bool) string {
	pass := fmt.Sprintf("(%d bytes, use -reveal to print)", len(c.Passphrase))
	if reveal {
		pass = fmt.Sprintf("%q", c.Passphrase)
	}
	size := c.Size()
	return fmt.Sprintf(
		"ssid:       %q\npassphrase: %s\nsize:       %d bytes\naddress:    %s\n",
		c.SSID, pass, size, blob.FormatOffset(blob.Offset(size)),
	)
}
