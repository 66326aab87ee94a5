// Copyright 2025 The Embedded Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package show

import (
	"strings"
	"testing"

	"github.com/daedalus-labs/filament-dryer/picocfg/internal/blob"
)

func TestDescribe(t *testing.T) {
	c := &blob.Config{SSID: "MyNet", Passphrase: "secret123"}
	s := describe(c, false)
	if strings.Contains(s, "secret123") {
		t.Errorf("passphrase revealed: %q", s)
	}
	for _, want := range []string{`"MyNet"`, "9 bytes", "26 bytes", "0x101fffe6"} {
		if !strings.Contains(s, want) {
			t.Errorf("%q missing in %q", want, s)
		}
	}
	if s = describe(c, true); !strings.Contains(s, `"secret123"`) {
		t.Errorf("passphrase not revealed: %q", s)
	}
}
