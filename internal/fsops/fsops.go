// SPDX-License-Identifier: MPL-2.0

// Package fsops provides the small set of filesystem operations build scripts
// need around toolchain environments: creating directory trees, removing
// trees, and reporting the working directory.
package fsops

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
)

// ErrNotDirectory is returned by Mkdirs when the path exists but is not a directory.
var ErrNotDirectory = errors.New("path exists but is not a directory")

// Mkdirs creates path and any missing parents. It is a no-op when the
// directory already exists.
func Mkdirs(path string) error {
	abs, err := filepath.Abs(path)
	if err != nil {
		return fmt.Errorf("resolve %s: %w", path, err)
	}

	info, err := os.Stat(abs)
	switch {
	case err == nil && info.IsDir():
		return nil
	case err == nil:
		return fmt.Errorf("cannot create directory %s: %w", abs, ErrNotDirectory)
	case !errors.Is(err, os.ErrNotExist):
		return fmt.Errorf("cannot access %s: %w", abs, err)
	}

	if err := os.MkdirAll(abs, 0o755); err != nil {
		return fmt.Errorf("create directory %s: %w", abs, err)
	}
	return nil
}

// Remove deletes path, recursively for directories. A missing path is not an error.
func Remove(path string) error {
	abs, err := filepath.Abs(path)
	if err != nil {
		return fmt.Errorf("resolve %s: %w", path, err)
	}
	if err := os.RemoveAll(abs); err != nil {
		return fmt.Errorf("remove %s: %w", abs, err)
	}
	return nil
}

// Pwd returns the absolute current working directory.
func Pwd() (string, error) {
	wd, err := os.Getwd()
	if err != nil {
		return "", fmt.Errorf("get working directory: %w", err)
	}
	return wd, nil
}
