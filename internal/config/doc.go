// SPDX-License-Identifier: MPL-2.0

// Package config locates toolchain definitions and loads cish settings.
//
// Toolchain definitions are flat JSON objects mapping a version label to an
// interpreter path. Locator reads an ordered list of candidate files and
// merges them, later files overriding earlier ones for the same label; see
// DefaultSearchPaths for the system, user and $CISH_TOOLCHAINS layering.
//
// Settings live in config.cue inside ConfigDir (XDG on Linux,
// ~/Library/Application Support on macOS, %APPDATA% on Windows). The file is
// validated against an embedded CUE schema (config_schema.cue) and merged
// into Viper, so CISH_* environment variables override file values.
package config
