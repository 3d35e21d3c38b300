// SPDX-License-Identifier: MPL-2.0

package testutil

import (
	"runtime"
	"testing"

	"github.com/mitchellh/go-homedir"
)

// SetHomeDir points the user's home directory at dir for the rest of the
// test, so "~" in toolchain files expands beneath it. On Windows both HOME
// and USERPROFILE are set, since go-homedir consults HOME first. The
// go-homedir cache is flushed now and again when the test ends.
//
// It uses t.Setenv and therefore cannot be combined with t.Parallel.
func SetHomeDir(t *testing.T, dir string) {
	t.Helper()

	t.Setenv("HOME", dir)
	if runtime.GOOS == "windows" {
		t.Setenv("USERPROFILE", dir)
	}
	homedir.Reset()
	t.Cleanup(homedir.Reset)
}
