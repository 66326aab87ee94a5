// Copyright 2025 The Embedded Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package hex

import (
	"flag"
	"fmt"
	"os"
	"path/filepath"

	"github.com/daedalus-labs/filament-dryer/picocfg/internal/blob"
	"github.com/daedalus-labs/filament-dryer/picocfg/internal/image"
	"github.com/daedalus-labs/filament-dryer/picocfg/internal/util"
)

const Descr = "create the configuration as an Intel HEX flash image"

func Main(cmd string, args []string) {
	fs := flag.NewFlagSet(cmd, flag.ExitOnError)
	fs.Usage = func() {
		fmt.Fprintf(os.Stderr, "Usage:\n  %s [OPTIONS] [HEX]\nOptions:\n", cmd)
		fs.PrintDefaults()
	}
	cfg := util.ConfigFlags(fs)
	quiet := fs.Bool("quiet", false, "do not print diagnostic information")
	fs.Parse(args)
	if fs.NArg() > 1 {
		fs.Usage()
		os.Exit(1)
	}
	out := util.OutFile(fs.Arg(0), ".hex")
	l := util.Logger{Quiet: *quiet}
	util.WarnLimits(cfg)
	data := cfg.Bytes()
	addr := blob.Offset(len(data))
	util.FatalErr("dumpintelhex", writeHex(out, addr, data))
	l.Printf("created %s (%d bytes @ %s)", out, len(data), blob.FormatOffset(addr))
}

func writeHex(out string, addr uint32, data []byte) error {
	if err := os.MkdirAll(filepath.Dir(out), 0o755); err != nil {
		return err
	}
	of, err := os.Create(out)
	if err != nil {
		return err
	}
	if err = image.WriteHex(of, addr, data); err != nil {
		of.Close()
		return err
	}
	return of.Close()
}
