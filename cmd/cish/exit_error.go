// SPDX-License-Identifier: MPL-2.0

package cmd

import (
	"errors"
	"fmt"
)

const (
	// exitFailure is the exit code for cish's own errors.
	exitFailure = 1
	// exitTimeout is the exit code when a child is killed for exceeding its
	// timeout, as with coreutils timeout(1).
	exitTimeout = 124
)

// ExitError carries the process exit code out of a RunE handler. A nil Err
// exits silently: the child already reported its own failure.
type ExitError struct {
	Code int
	Err  error
}

// Error returns the error message for ExitError.
func (e *ExitError) Error() string {
	if e.Err != nil {
		return e.Err.Error()
	}
	return fmt.Sprintf("exit status %d", e.Code)
}

// Unwrap returns the underlying error, if any.
func (e *ExitError) Unwrap() error {
	return e.Err
}

// exitCodeFor maps the error returned by the command tree to a process exit
// code.
func exitCodeFor(err error) int {
	if err == nil {
		return 0
	}
	var exitErr *ExitError
	if errors.As(err, &exitErr) && exitErr.Code > 0 {
		return exitErr.Code
	}
	return exitFailure
}
