// SPDX-License-Identifier: MPL-2.0

// Package cmd contains the cish command-line interface.
//
// Every command is built by a constructor that receives the App, the
// composition root holding the settings provider, process runner and output
// streams. Handlers load settings and toolchain files per invocation, so a
// single App can serve several executions in tests.
package cmd
