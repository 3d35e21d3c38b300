// SPDX-License-Identifier: MPL-2.0

// Package testutil holds test helpers that fail the test instead of returning
// errors.
//
// Helpers cover the home directory (SetHomeDir), the working directory
// (MustChdir, MustMkdirAll), and fixture trees that mimic
// toolchain installations (WriteFiles, WriteExecutable).
package testutil
