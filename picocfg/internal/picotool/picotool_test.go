// Copyright 2025 The Embedded Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package picotool

import (
	"errors"
	"os"
	"os/exec"
	"path/filepath"
	"runtime"
	"slices"
	"strings"
	"testing"
)

func TestLoadArgs(t *testing.T) {
	got := LoadArgs("build/picocfg.bin", 270532582)
	want := []string{
		"picotool", "load", "-f", "build/picocfg.bin", "--offset", "0x101fffe6",
	}
	if !slices.Equal(got, want) {
		t.Errorf("LoadArgs = %q, want %q", got, want)
	}
}

// fakePicotool installs a shell script as Command that stores its arguments
// in a file and exits with the given status.
func fakePicotool(t *testing.T, status int) (argsFile string) {
	t.Helper()
	if runtime.GOOS == "windows" {
		t.Skip("needs /bin/sh")
	}
	if _, err := exec.LookPath("sh"); err != nil {
		t.Skip("needs /bin/sh")
	}
	dir := t.TempDir()
	argsFile = filepath.Join(dir, "args")
	script := "#!/bin/sh\necho \"$@\" > '" + argsFile + "'\nexit " +
		string(rune('0'+status)) + "\n"
	exe := filepath.Join(dir, "picotool")
	if err := os.WriteFile(exe, []byte(script), 0o755); err != nil {
		t.Fatal(err)
	}
	old := Command
	Command = exe
	t.Cleanup(func() { Command = old })
	return argsFile
}

func TestLoad(t *testing.T) {
	argsFile := fakePicotool(t, 0)
	if err := Load("build/picocfg.bin", 0x101ffff4); err != nil {
		t.Fatal(err)
	}
	p, err := os.ReadFile(argsFile)
	if err != nil {
		t.Fatal(err)
	}
	if s := strings.TrimSpace(string(p)); s != "load -f build/picocfg.bin --offset 0x101ffff4" {
		t.Errorf("picotool called with %q", s)
	}
}

func TestLoadExitStatus(t *testing.T) {
	fakePicotool(t, 3)
	err := Load("build/picocfg.bin", 0x101ffff4)
	var ee *exec.ExitError
	if !errors.As(err, &ee) {
		t.Fatalf("Load err = %v, want *exec.ExitError", err)
	}
	if ee.ExitCode() != 3 {
		t.Errorf("exit code %d, want 3", ee.ExitCode())
	}
}

func TestLoadNotFound(t *testing.T) {
	old := Command
	Command = filepath.Join(t.TempDir(), "no-such-picotool")
	defer func() { Command = old }()
	if err := Load("build/picocfg.bin", 0); err == nil {
		t.Fatal("Load succeeded without picotool")
	}
}
