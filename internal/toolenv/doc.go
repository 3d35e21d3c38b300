// SPDX-License-Identifier: MPL-2.0

// Package toolenv binds interpreter toolchains to runnable environments.
//
// An Environment wraps one interpreter. Its library path and tool directory
// are derived from the interpreter location through a Platform layout, so
// "pip" resolves to bin/pip on POSIX and Scripts\pip.exe on Windows without
// callers knowing either convention. Environment.Run is the single way to
// execute something; Python, Pip and TestRunner are thin wrappers over it.
//
// A Registry turns located toolchain entries into Environments on demand and
// offers Default, the interpreter running the current build. A
// VirtualEnvFactory creates a virtual environment from a base Environment and
// returns a new, independent Environment rooted in it.
package toolenv
