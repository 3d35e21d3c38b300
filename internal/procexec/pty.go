// SPDX-License-Identifier: MPL-2.0

package procexec

import (
	"fmt"
	"io"
	"os/exec"

	"github.com/creack/pty"
)

// runTTY runs cmd attached to a pseudo-terminal. The terminal merges stdout
// and stderr, so everything lands in the captured stdout buffer and, when
// stream is set, is copied there as well.
func runTTY(cmd *exec.Cmd, captured *capturedOutput, stream io.Writer) error {
	ptmx, err := pty.Start(cmd)
	if err != nil {
		return fmt.Errorf("start on pseudo-terminal: %w", err)
	}
	defer func() { _ = ptmx.Close() }()

	w := tee(&captured.stdout, stream)
	copied := make(chan struct{})
	go func() {
		// Reading the master returns an error (EIO on Linux) once the child
		// side is closed; that is the normal end of output.
		_, _ = io.Copy(w, ptmx)
		close(copied)
	}()

	waitErr := cmd.Wait()
	<-copied
	return waitErr
}
