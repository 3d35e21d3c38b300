// SPDX-License-Identifier: MPL-2.0

package testutil

import (
	"os"
	"path/filepath"
	"runtime"
	"testing"
)

// MustChdir moves the process into dir and returns a func that moves it
// back. Tests using it must not run in parallel.
func MustChdir(t testing.TB, dir string) func() {
	t.Helper()
	originalWd, err := os.Getwd()
	if err != nil {
		t.Fatalf("failed to get current directory: %v", err)
	}
	if err := os.Chdir(dir); err != nil {
		t.Fatalf("failed to change directory to %s: %v", dir, err)
	}
	return func() {
		if err := os.Chdir(originalWd); err != nil {
			t.Errorf("failed to restore directory to %s: %v", originalWd, err)
		}
	}
}

// MustMkdirAll is os.MkdirAll that fails the test on error.
func MustMkdirAll(t testing.TB, path string, perm os.FileMode) {
	t.Helper()
	if err := os.MkdirAll(path, perm); err != nil {
		t.Fatalf("failed to create directory %s: %v", path, err)
	}
}

// WriteFiles creates each slash-separated relative path under root, creating
// parent directories as needed. Every file contains its own relative path.
// It returns the OS-native absolute paths in input order.
func WriteFiles(t testing.TB, root string, files ...string) []string {
	t.Helper()
	paths := make([]string, 0, len(files))
	for _, rel := range files {
		path := filepath.Join(root, filepath.FromSlash(rel))
		MustMkdirAll(t, filepath.Dir(path), 0o755)
		if err := os.WriteFile(path, []byte(rel), 0o644); err != nil {
			t.Fatalf("failed to write %s: %v", path, err)
		}
		paths = append(paths, path)
	}
	return paths
}

// WriteExecutable writes a file with the executable bit set under root and
// returns its absolute path. On Windows the content is irrelevant to
// executability; on POSIX a shell script body makes the file runnable.
func WriteExecutable(t testing.TB, root, rel, content string) string {
	t.Helper()
	path := filepath.Join(root, filepath.FromSlash(rel))
	MustMkdirAll(t, filepath.Dir(path), 0o755)
	if err := os.WriteFile(path, []byte(content), 0o755); err != nil {
		t.Fatalf("failed to write %s: %v", path, err)
	}
	return path
}

// SkipOnWindows skips tests that rely on POSIX shell scripts as stand-in
// toolchain executables.
func SkipOnWindows(t testing.TB) {
	t.Helper()
	if runtime.GOOS == "windows" {
		t.Skip("skipping: requires POSIX shell scripts")
	}
}
