// SPDX-License-Identifier: MPL-2.0

// Package procexec executes external programs for toolchain environments.
//
// Programs are spawned directly from an argument vector; no shell ever sees
// the arguments, so metacharacters are passed through verbatim. Output is
// buffered (and optionally teed to caller writers), the caller blocks until
// the child exits, and a nonzero exit status is reported through
// Result.ExitCode rather than as an error. Errors are reserved for failures to
// run the program at all:
//
//   - ExecutableNotFoundError: the path is missing, a directory, or not executable
//   - TimeoutError: Command.Timeout elapsed and the child was killed
//
// Invoker satisfies Runner, which is the seam higher layers depend on so that
// tests can substitute a recording fake.
package procexec
