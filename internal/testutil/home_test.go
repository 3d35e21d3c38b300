// SPDX-License-Identifier: MPL-2.0

package testutil

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/mitchellh/go-homedir"
)

func TestSetHomeDir(t *testing.T) {
	home := t.TempDir()
	SetHomeDir(t, home)

	if got := os.Getenv("HOME"); got != home {
		t.Errorf("HOME = %q, want %q", got, home)
	}

	got, err := homedir.Dir()
	if err != nil {
		t.Fatalf("homedir.Dir() error = %v", err)
	}
	if got != home {
		t.Errorf("homedir.Dir() = %q, want %q", got, home)
	}

	expanded, err := homedir.Expand("~/py/bin/python")
	if err != nil {
		t.Fatalf("homedir.Expand() error = %v", err)
	}
	if want := filepath.Join(home, "py", "bin", "python"); expanded != want {
		t.Errorf("homedir.Expand() = %q, want %q", expanded, want)
	}
}

func TestSetHomeDir_Sequential(t *testing.T) {
	first, second := t.TempDir(), t.TempDir()

	SetHomeDir(t, first)
	if got, _ := homedir.Dir(); got != first {
		t.Fatalf("homedir.Dir() = %q, want %q", got, first)
	}

	SetHomeDir(t, second)
	if got, _ := homedir.Dir(); got != second {
		t.Errorf("homedir.Dir() after second call = %q, want %q (cache not flushed)", got, second)
	}
}
