// Copyright 2025 The Embedded Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package uf2

import (
	"flag"
	"fmt"
	"maps"
	"os"
	"path/filepath"
	"slices"
	"strconv"
	"strings"

	"github.com/daedalus-labs/filament-dryer/picocfg/internal/blob"
	"github.com/daedalus-labs/filament-dryer/picocfg/internal/image"
	"github.com/daedalus-labs/filament-dryer/picocfg/internal/util"
)

const Descr = "create the configuration as a UF2 image for the BOOTSEL drive"

func Main(cmd string, args []string) {
	fs := flag.NewFlagSet(cmd, flag.ExitOnError)
	fs.Usage = func() {
		fmt.Fprintf(os.Stderr, "Usage:\n  %s [OPTIONS] [UF2]\nOptions:\n", cmd)
		fs.PrintDefaults()
	}
	cfg := util.ConfigFlags(fs)
	family := fs.String(
		"family", "rp2040",
		"UF2 family `ID` (32-bit number) or a known family name:\n"+
			strings.Join(slices.Sorted(maps.Keys(image.UF2Families)), "\n"),
	)
	quiet := fs.Bool("quiet", false, "do not print diagnostic information")
	fs.Parse(args)
	if fs.NArg() > 1 {
		fs.Usage()
		os.Exit(1)
	}
	familyID, err := parseFamily(*family)
	util.FatalErr("uf2", err)
	out := util.OutFile(fs.Arg(0), ".uf2")
	l := util.Logger{Quiet: *quiet}
	util.WarnLimits(cfg)
	data := cfg.Bytes()
	addr := blob.Offset(len(data))
	util.FatalErr("uf2", writeUF2(out, addr, data, familyID))
	l.Printf("created %s (%d bytes @ %s)", out, len(data), blob.FormatOffset(addr))
}

// parseFamily accepts a known family name or a 32-bit number.
func parseFamily(family string) (uint32, error) {
	if id, ok := image.UF2Families[family]; ok {
		return id, nil
	}
	u, err := strconv.ParseUint(family, 0, 32)
	if err != nil {
		return 0, fmt.Errorf(`bad family ID: "%s"`, family)
	}
	return uint32(u), nil
}

func writeUF2(out string, addr uint32, data []byte, family uint32) error {
	if err := os.MkdirAll(filepath.Dir(out), 0o755); err != nil {
		return err
	}
	of, err := os.Create(out)
	if err != nil {
		return err
	}
	if err = image.WriteUF2(of, addr, data, family); err != nil {
		of.Close()
		return err
	}
	return of.Close()
}
