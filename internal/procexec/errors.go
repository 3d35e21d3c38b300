// SPDX-License-Identifier: MPL-2.0

package procexec

import (
	"errors"
	"fmt"
	"time"
)

var (
	// ErrExecutableNotFound is the sentinel error wrapped by ExecutableNotFoundError.
	ErrExecutableNotFound = errors.New("executable not found")
	// ErrTimeout is the sentinel error wrapped by TimeoutError.
	ErrTimeout = errors.New("command timed out")
	// ErrNotExecutable is the cause recorded when a file lacks execute permission.
	ErrNotExecutable = errors.New("file is not executable")
	// ErrIsDirectory is the cause recorded when the path names a directory.
	ErrIsDirectory = errors.New("path is a directory")
)

type (
	// ExecutableNotFoundError is returned when the resolved program path does
	// not exist or cannot be executed. It is distinct from a nonzero exit.
	ExecutableNotFoundError struct {
		Path string
		Err  error
	}

	// TimeoutError is returned when Command.Timeout elapsed. The child has
	// been killed before the error is returned; Result holds whatever output
	// was captured up to that point.
	TimeoutError struct {
		Path    string
		Timeout time.Duration
		Result  *Result
	}
)

// Error implements the error interface.
func (e *ExecutableNotFoundError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("executable not found: %s: %v", e.Path, e.Err)
	}
	return "executable not found: " + e.Path
}

// Unwrap returns ErrExecutableNotFound and the underlying cause.
func (e *ExecutableNotFoundError) Unwrap() []error {
	if e.Err == nil {
		return []error{ErrExecutableNotFound}
	}
	return []error{ErrExecutableNotFound, e.Err}
}

// Error implements the error interface.
func (e *TimeoutError) Error() string {
	return fmt.Sprintf("%s timed out after %s", e.Path, e.Timeout)
}

// Unwrap returns ErrTimeout so callers can use errors.Is for programmatic detection.
func (e *TimeoutError) Unwrap() error { return ErrTimeout }
