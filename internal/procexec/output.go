// SPDX-License-Identifier: MPL-2.0

package procexec

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os/exec"
)

type (
	// capturedOutput holds the captured stdout and stderr buffers.
	capturedOutput struct {
		stdout bytes.Buffer
		stderr bytes.Buffer
	}

	// executeOutput configures where command output is directed during execution.
	// Output is always captured; when the caller supplied writers it is also
	// streamed to them as it arrives.
	executeOutput struct {
		stdout io.Writer
		stderr io.Writer
	}
)

// newExecuteOutput creates the output configuration for one invocation.
func newExecuteOutput(captured *capturedOutput, stdout, stderr io.Writer) executeOutput {
	return executeOutput{
		stdout: tee(&captured.stdout, stdout),
		stderr: tee(&captured.stderr, stderr),
	}
}

func tee(buf *bytes.Buffer, stream io.Writer) io.Writer {
	if stream == nil {
		return buf
	}
	return io.MultiWriter(buf, stream)
}

// extractExitCode determines the exit code from a command execution error.
// A nonzero exit is recorded in the result and is not an error; failures to
// start the program are classified as ExecutableNotFoundError.
func extractExitCode(path string, err error, result *Result) (*Result, error) {
	if err == nil {
		result.ExitCode = 0
		return result, nil
	}

	var exitErr *exec.ExitError
	if errors.As(err, &exitErr) {
		result.ExitCode = ExitCode(exitErr.ExitCode())
		return result, nil
	}

	if errors.Is(err, exec.ErrNotFound) || errors.Is(err, fs.ErrNotExist) || errors.Is(err, fs.ErrPermission) {
		return nil, &ExecutableNotFoundError{Path: path, Err: err}
	}

	return nil, fmt.Errorf("failed to execute %s: %w", path, err)
}
