// Copyright 2025 The Embedded Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Picocfg stores the Wi-Fi configuration of the filament dryer at the end of
// the Pico W flash.
//
// Without a command it runs load, so
//
//	picocfg -s MyNet -p secret123
//
// builds build/picocfg.bin and writes it to the device using picotool.
package main

import (
	"fmt"
	"maps"
	"os"
	"slices"
	"strings"

	"github.com/daedalus-labs/filament-dryer/picocfg/internal/cmd/bin"
	"github.com/daedalus-labs/filament-dryer/picocfg/internal/cmd/hex"
	"github.com/daedalus-labs/filament-dryer/picocfg/internal/cmd/load"
	"github.com/daedalus-labs/filament-dryer/picocfg/internal/cmd/show"
	"github.com/daedalus-labs/filament-dryer/picocfg/internal/cmd/uf2"
)

type tool struct {
	descr string
	main  func(cmd string, args []string)
}

var tools = map[string]tool{
	"bin":  {bin.Descr, bin.Main},
	"hex":  {hex.Descr, hex.Main},
	"load": {load.Descr, load.Main},
	"show": {show.Descr, show.Main},
	"uf2":  {uf2.Descr, uf2.Main},
}

const defaultTool = "load"

func printToolList() {
	names := slices.Sorted(maps.Keys(tools))
	maxLen := 0
	for _, k := range names {
		if maxLen < len(k) {
			maxLen = len(k)
		}
	}
	uw := os.Stderr
	uw.WriteString("Usage:\n  picocfg [COMMAND] [ARGUMENTS]\n\n")
	uw.WriteString("Available commands (default " + defaultTool + "):\n")
	for _, name := range names {
		fmt.Fprintf(uw, "  %-*s  %s\n", maxLen, name, tools[name].descr)
	}
}

// command splits the command line into the command name and its arguments.
func command(args []string) (string, []string) {
	if len(args) == 0 || strings.HasPrefix(args[0], "-") {
		return defaultTool, args
	}
	return args[0], args[1:]
}

func main() {
	if len(os.Args) > 1 && (os.Args[1] == "-h" || os.Args[1] == "help") {
		printToolList()
		return
	}
	name, args := command(os.Args[1:])
	tool, ok := tools[name]
	if !ok {
		printToolList()
		os.Exit(1)
	}
	tool.main(name, args)
}
