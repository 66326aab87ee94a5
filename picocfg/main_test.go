// Copyright 2025 The Embedded Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package main

import (
	"slices"
	"testing"
)

func TestCommand(t *testing.T) {
	tests := []struct {
		args []string
		name string
		rest []string
	}{
		{nil, "load", nil},
		{[]string{"-s", "MyNet"}, "load", []string{"-s", "MyNet"}},
		{[]string{"--passphrase", "x"}, "load", []string{"--passphrase", "x"}},
		{[]string{"hex", "-s", "MyNet"}, "hex", []string{"-s", "MyNet"}},
		{[]string{"show"}, "show", []string{}},
	}
	for _, tc := range tests {
		name, rest := command(tc.args)
		if name != tc.name || !slices.Equal(rest, tc.rest) {
			t.Errorf("command(%q) = %q, %q; want %q, %q",
				tc.args, name, rest, tc.name, tc.rest)
		}
		if _, ok := tools[name]; !ok {
			t.Errorf("no tool %q", name)
		}
	}
}
