// Copyright 2025 The Embedded Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package bin

import (
	"flag"
	"fmt"
	"os"

	"github.com/daedalus-labs/filament-dryer/picocfg/internal/blob"
	"github.com/daedalus-labs/filament-dryer/picocfg/internal/util"
)

const Descr = "create the configuration blob without loading it"

func Main(cmd string, args []string) {
	fs := flag.NewFlagSet(cmd, flag.ExitOnError)
	fs.Usage = func() {
		fmt.Fprintf(os.Stderr, "Usage:\n  %s [OPTIONS]\nOptions:\n", cmd)
		fs.PrintDefaults()
	}
	cfg := util.ConfigFlags(fs)
	quiet := fs.Bool("quiet", false, "do not print diagnostic information")
	fs.Parse(args)
	if fs.NArg() != 0 {
		fs.Usage()
		os.Exit(1)
	}
	l := util.Logger{Quiet: *quiet}
	size := util.Build(l, blob.File, cfg)
	l.Printf("flash address: %s", blob.FormatOffset(blob.Offset(size)))
}
