// Copyright 2025 The Embedded Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package picotool runs the Raspberry Pi picotool utility.
package picotool

import (
	"os"
	"os/exec"

	"github.com/daedalus-labs/filament-dryer/picocfg/internal/blob"
)

// Command is the name (or path) of the picotool executable.
var Command = "picotool"

// LoadArgs returns the command line that loads the binary file to the flash
// at the given address. The -f flag forces a device running an application
// (not in BOOTSEL mode) to reboot into BOOTSEL before loading.
func LoadArgs(name string, addr uint32) []string {
	return []string{
		Command, "load", "-f", name, "--offset", blob.FormatOffset(addr),
	}
}

// Load runs picotool to load the binary file to the flash at addr. The
// standard streams of picotool are connected to the ones of this process.
// An *exec.ExitError is returned if picotool exits with a non-zero status.
func Load(name string, addr uint32) error {
	args := LoadArgs(name, addr)
	path, err := exec.LookPath(args[0])
	if err != nil {
		return err
	}
	cmd := &exec.Cmd{
		Path:   path,
		Args:   args,
		Stdin:  os.Stdin,
		Stdout: os.Stdout,
		Stderr: os.Stderr,
	}
	return cmd.Run()
}
