// Copyright 2025 The Embedded Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package bin

import (
	"os"
	"testing"

	"github.com/daedalus-labs/filament-dryer/picocfg/internal/blob"
)

func TestCreateBlob(t *testing.T) {
	wd, err := os.Getwd()
	if err != nil {
		t.Fatal(err)
	}
	if err := os.Chdir(t.TempDir()); err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { os.Chdir(wd) })

	Main("bin", []string{"-s", "MyNet", "--passphrase", "secret123", "-quiet"})
	fi, err := os.Stat(blob.File)
	if err != nil {
		t.Fatal(err)
	}
	if fi.Size() != 26 {
		t.Errorf("%s is %d bytes, want 26", blob.File, fi.Size())
	}
	c, ok, err := blob.ReadFile(blob.File)
	if err != nil || !ok || c != (blob.Config{SSID: "MyNet", Passphrase: "secret123"}) {
		t.Errorf("ReadFile = %+v, %v, %v", c, ok, err)
	}
}
