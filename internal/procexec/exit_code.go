// SPDX-License-Identifier: MPL-2.0

package procexec

import "strconv"

// ExitCode represents a process exit status code.
// The zero value (0) means success. A negative value means the child did not
// exit normally (for example, it was killed by a signal).
type ExitCode int

// IsSuccess returns true if the exit code indicates successful execution.
func (c ExitCode) IsSuccess() bool { return c == 0 }

// Signaled returns true when the process was terminated without an exit status.
func (c ExitCode) Signaled() bool { return c < 0 }

// String returns the decimal string representation of the ExitCode.
func (c ExitCode) String() string { return strconv.Itoa(int(c)) }
