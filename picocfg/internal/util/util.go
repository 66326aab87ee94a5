// Copyright 2025 The Embedded Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package util

import (
	"flag"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/daedalus-labs/filament-dryer/picocfg/internal/blob"
)

// Stdout and Stderr are the destinations of the progress and diagnostic
// messages.
var (
	Stdout io.Writer = os.Stdout
	Stderr io.Writer = os.Stderr
)

var exit = os.Exit

func Warn(f string, args ...any) {
	fmt.Fprintf(Stderr, f+"\n", args...)
}

func Fatal(f string, args ...any) {
	fmt.Fprintf(Stderr, f+"\n", args...)
	exit(1)
}

// FatalErr prints an error description and exits the program if the
// err != nil.
func FatalErr(what string, err error) {
	if err == nil {
		return
	}
	s := err.Error() + "\n"
	if what != "" {
		s = what + ": " + s
	}
	io.WriteString(Stderr, s)
	exit(1)
}

// Logger prints progress messages unless it is quiet.
type Logger struct {
	Quiet bool
}

func (l Logger) Printf(f string, args ...any) {
	if !l.Quiet {
		fmt.Fprintf(Stdout, f+"\n", args...)
	}
}

// ConfigFlags registers the -s/-ssid and -p/-passphrase flags in fs. The
// flag package accepts them with one or two dashes.
func ConfigFlags(fs *flag.FlagSet) *blob.Config {
	c := new(blob.Config)
	const (
		ssidUsage = "the wireless `SSID` the device should connect to"
		passUsage = "the `passphrase` of the specified wireless SSID"
	)
	fs.StringVar(&c.SSID, "ssid", "", ssidUsage)
	fs.StringVar(&c.SSID, "s", "", "shorthand for -ssid")
	fs.StringVar(&c.Passphrase, "passphrase", "", passUsage)
	fs.StringVar(&c.Passphrase, "p", "", "shorthand for -passphrase")
	return c
}

// WarnLimits warns about strings the firmware will refuse to read.
func WarnLimits(c *blob.Config) {
	if n := len(c.SSID); n > blob.MaxString {
		Warn("warning: ssid is %d bytes, the firmware accepts at most %d", n, blob.MaxString)
	}
	if n := len(c.Passphrase); n > blob.MaxString {
		Warn("warning: passphrase is %d bytes, the firmware accepts at most %d", n, blob.MaxString)
	}
	if n := c.Size() - 4; n > blob.MaxTotal {
		Warn("warning: configuration is %d bytes, the firmware accepts at most %d", n, blob.MaxTotal)
	}
}

// OutFile returns name or, if name is empty, the default output file with
// the given extension (build/picocfg.EXT).
func OutFile(name, ext string) string {
	if name != "" {
		return name
	}
	return strings.TrimSuffix(blob.File, ".bin") + ext
}

// Build writes the blob to name reporting the progress to l. It returns the
// size of the written file.
func Build(l Logger, name string, c *blob.Config) int {
	WarnLimits(c)
	size, err := blob.WriteFile(name, c)
	FatalErr("", err)
	l.Printf("ssid:       %q (%d bytes)", c.SSID, len(c.SSID))
	l.Printf("passphrase: %d bytes", len(c.Passphrase))
	l.Printf("created %s (%d bytes)", name, size)
	return size
}
