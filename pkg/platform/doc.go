// SPDX-License-Identifier: MPL-2.0

// Package platform provides cross-platform compatibility utilities.
//
// It centralizes GOOS names, executable naming conventions and detection of
// application sandboxes (Flatpak, Snap) from which child processes must be
// spawned on the host to reach toolchains installed outside the sandbox.
package platform
