// SPDX-License-Identifier: MPL-2.0

package toolenv

import (
	"errors"
	"fmt"
	"strings"

	"github.com/cish/cish/internal/config"
	"github.com/cish/cish/internal/procexec"
)

// maxStderrInMessage bounds how much child stderr is quoted in Error().
const maxStderrInMessage = 2048

var (
	// ErrUnknownVersion is the sentinel error wrapped by UnknownVersionError.
	ErrUnknownVersion = errors.New("unknown toolchain version")
	// ErrCommandFailed is the sentinel error wrapped by CommandFailedError.
	ErrCommandFailed = errors.New("command failed")
)

type (
	// UnknownVersionError is returned by Registry.Resolve for a label that no
	// toolchain file defines.
	UnknownVersionError struct {
		Label config.VersionLabel
		// Known lists the defined labels, sorted.
		Known []config.VersionLabel
	}

	// CommandFailedError is returned by Environment.Run when exit code
	// checking is enabled and the program exited nonzero. Run returns the
	// Result alongside it.
	CommandFailedError struct {
		Program  string
		Args     []string
		ExitCode procexec.ExitCode
		Stderr   string
	}
)

// Error implements the error interface.
func (e *UnknownVersionError) Error() string {
	if len(e.Known) == 0 {
		return fmt.Sprintf("unknown toolchain version %q (no toolchains are configured)", e.Label)
	}
	known := make([]string, len(e.Known))
	for i, l := range e.Known {
		known[i] = string(l)
	}
	return fmt.Sprintf("unknown toolchain version %q (known: %s)", e.Label, strings.Join(known, ", "))
}

// Unwrap returns ErrUnknownVersion so callers can use errors.Is for programmatic detection.
func (e *UnknownVersionError) Unwrap() error { return ErrUnknownVersion }

// Error implements the error interface.
func (e *CommandFailedError) Error() string {
	msg := fmt.Sprintf("%s exited with code %d", procexec.CommandLine(e.Program, e.Args), e.ExitCode)
	stderr := strings.TrimSpace(e.Stderr)
	if stderr == "" {
		return msg
	}
	if len(stderr) > maxStderrInMessage {
		stderr = "..." + stderr[len(stderr)-maxStderrInMessage:]
	}
	return msg + ": " + stderr
}

// Unwrap returns ErrCommandFailed so callers can use errors.Is for programmatic detection.
func (e *CommandFailedError) Unwrap() error { return ErrCommandFailed }
