// SPDX-License-Identifier: MPL-2.0

package config

import (
	"context"
	_ "embed"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"regexp"
	"slices"
	"strings"

	"github.com/charmbracelet/log"
	"github.com/mitchellh/go-homedir"

	"github.com/cish/cish/pkg/cueutil"
)

const (
	// ToolchainsFileName is the toolchain definition file name inside the
	// system and user config directories.
	ToolchainsFileName = "toolchains.json"
	// EnvToolchains names an extra toolchain file with the highest precedence.
	EnvToolchains = "CISH_TOOLCHAINS"
)

//go:embed toolchains_schema.cue
var toolchainsSchema []byte

// ErrConfigParse is the sentinel error wrapped by ConfigParseError.
var ErrConfigParse = errors.New("malformed toolchain configuration")

// windowsAbs matches drive-letter and UNC paths so Windows-style entries keep
// their meaning when a definition file is read on another OS.
var windowsAbs = regexp.MustCompile(`^([A-Za-z]:[\\/]|\\\\)`)

type (
	// VersionLabel is the opaque key a build script uses to select a
	// toolchain, e.g. "2.7" or "3.12-debug".
	VersionLabel string

	// Entry is one toolchain definition as read from a file. The interpreter
	// path is not checked for existence here.
	Entry struct {
		Label       VersionLabel `json:"label" toml:"label"`
		Interpreter string       `json:"interpreter" toml:"interpreter"`
		// Source is the file that defined the entry.
		Source string `json:"source" toml:"source"`
	}

	// ConfigParseError is returned when a toolchain file exists but cannot be
	// read or does not match the expected shape. It aborts the whole Locate.
	ConfigParseError struct {
		Path string
		Err  error
	}

	// Locator merges toolchain definitions from an ordered list of files.
	// Later files override earlier ones for the same label.
	Locator struct {
		paths []string
	}
)

// Error implements the error interface.
func (e *ConfigParseError) Error() string {
	return fmt.Sprintf("malformed toolchain configuration %s: %v", e.Path, e.Err)
}

// Unwrap returns ErrConfigParse and the underlying cause.
func (e *ConfigParseError) Unwrap() []error {
	return []error{ErrConfigParse, e.Err}
}

// String returns the label itself.
func (l VersionLabel) String() string { return string(l) }

// DefaultSearchPaths returns the toolchain files consulted when settings do
// not override them, lowest precedence first:
//
//  1. SystemConfigDir()/toolchains.json
//  2. ConfigDir()/toolchains.json
//  3. $CISH_TOOLCHAINS, when set
func DefaultSearchPaths() []string {
	paths := []string{filepath.Join(SystemConfigDir(), ToolchainsFileName)}
	if dir, err := ConfigDir(); err == nil {
		paths = append(paths, filepath.Join(dir, ToolchainsFileName))
	} else {
		log.Debug("user config directory unavailable", "err", err)
	}
	if extra := os.Getenv(EnvToolchains); extra != "" {
		paths = append(paths, extra)
	}
	return paths
}

// SearchPaths returns cfg.SearchPaths with "~" expanded, or
// DefaultSearchPaths when cfg is nil or lists no paths.
func SearchPaths(cfg *Config) []string {
	if cfg == nil || len(cfg.SearchPaths) == 0 {
		return DefaultSearchPaths()
	}
	paths := make([]string, 0, len(cfg.SearchPaths))
	for _, p := range cfg.SearchPaths {
		if expanded, err := homedir.Expand(p); err == nil {
			p = expanded
		}
		paths = append(paths, p)
	}
	return paths
}

// NewLocator creates a Locator over the given candidate files.
func NewLocator(paths ...string) *Locator {
	return &Locator{paths: slices.Clone(paths)}
}

// Paths returns the candidate files in precedence order.
func (l *Locator) Paths() []string {
	return slices.Clone(l.paths)
}

// Locate reads every existing candidate file and merges their entries.
// Missing files are skipped; when none exist the result is empty. Any file
// that exists but is malformed fails the whole operation.
func (l *Locator) Locate(ctx context.Context) (map[VersionLabel]Entry, error) {
	entries := make(map[VersionLabel]Entry)
	for _, path := range l.paths {
		if err := ctx.Err(); err != nil {
			return nil, fmt.Errorf("locate toolchains canceled: %w", err)
		}
		if path == "" {
			continue
		}

		fileEntries, found, err := readToolchainFile(path)
		if err != nil {
			return nil, err
		}
		if !found {
			log.Debug("toolchain file not found", "path", path)
			continue
		}

		log.Debug("loaded toolchain file", "path", path, "entries", len(fileEntries))
		for _, e := range fileEntries {
			if prev, ok := entries[e.Label]; ok {
				log.Debug("toolchain overridden", "label", e.Label, "previous", prev.Source, "source", e.Source)
			}
			entries[e.Label] = e
		}
	}
	return entries, nil
}

// readToolchainFile returns found=false only when path does not exist.
func readToolchainFile(path string) ([]Entry, bool, error) {
	info, err := os.Stat(path)
	if errors.Is(err, fs.ErrNotExist) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, &ConfigParseError{Path: path, Err: err}
	}
	if info.IsDir() {
		return nil, false, &ConfigParseError{Path: path, Err: errors.New("is a directory")}
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, false, &ConfigParseError{Path: path, Err: err}
	}

	result, err := cueutil.DecodeJSON[map[string]string](toolchainsSchema, data, "#Toolchains", cueutil.WithFilename(path))
	if err != nil {
		return nil, false, &ConfigParseError{Path: path, Err: err}
	}

	source := path
	if abs, err := filepath.Abs(path); err == nil {
		source = abs
	}

	entries := make([]Entry, 0, len(*result.Value))
	for label, interpreter := range *result.Value {
		resolved, err := resolveInterpreter(interpreter, filepath.Dir(source))
		if err != nil {
			return nil, false, &ConfigParseError{Path: path, Err: fmt.Errorf("label %q: %w", label, err)}
		}
		entries = append(entries, Entry{Label: VersionLabel(label), Interpreter: resolved, Source: source})
	}
	slices.SortFunc(entries, func(a, b Entry) int { return strings.Compare(string(a.Label), string(b.Label)) })
	return entries, true, nil
}

// resolveInterpreter expands a leading "~" and anchors relative paths at the
// directory of the defining file. Absolute paths of either OS family are kept.
func resolveInterpreter(p, baseDir string) (string, error) {
	expanded, err := homedir.Expand(p)
	if err != nil {
		return "", err
	}
	if filepath.IsAbs(expanded) || windowsAbs.MatchString(expanded) {
		return expanded, nil
	}
	return filepath.Join(baseDir, expanded), nil
}
