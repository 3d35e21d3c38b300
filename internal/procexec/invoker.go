// SPDX-License-Identifier: MPL-2.0

package procexec

import (
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"os/exec"
	"runtime"
	"sort"
	"strings"
	"time"

	"github.com/charmbracelet/log"

	"github.com/cish/cish/pkg/platform"
)

// waitDelay bounds how long Wait blocks on output pipes after the child is
// killed by context cancellation or a timeout.
const waitDelay = 5 * time.Second

type (
	// Command describes a single invocation. It is built per call and not retained.
	Command struct {
		// Path is the executable: a path containing a separator, or a bare
		// name resolved through PATH.
		Path string
		// Args are passed to the program verbatim.
		Args []string
		// Dir is the working directory; empty means the caller's.
		Dir string
		// Env is overlaid on the caller's environment, replacing existing keys.
		Env map[string]string
		// Stdin is connected to the child when set (ignored in TTY mode).
		Stdin io.Reader
		// Stdout and Stderr receive output as it is produced, in addition
		// to the buffered copies in Result.
		Stdout io.Writer
		Stderr io.Writer
		// Timeout kills the child after the given duration when positive.
		Timeout time.Duration
		// TTY attaches the child to a pseudo-terminal.
		TTY bool
		// HostSpawn runs the program on the host when the current process
		// is inside a Flatpak or Snap sandbox.
		HostSpawn bool
	}

	// Result is the outcome of a completed invocation.
	Result struct {
		ExitCode ExitCode
		Stdout   []byte
		Stderr   []byte
		Duration time.Duration
	}

	// Runner executes commands. Invoker is the production implementation.
	Runner interface {
		Invoke(ctx context.Context, c Command) (*Result, error)
	}

	// Invoker spawns processes with os/exec.
	Invoker struct {
		logger   *log.Logger
		stat     func(string) (fs.FileInfo, error)
		lookPath func(string) (string, error)
		sandbox  func() platform.SandboxType
		goos     string
	}

	// Option configures an Invoker.
	Option func(*Invoker)
)

// New creates an Invoker.
func New(opts ...Option) *Invoker {
	inv := &Invoker{
		logger:   log.Default(),
		stat:     os.Stat,
		lookPath: exec.LookPath,
		sandbox:  platform.DetectSandbox,
		goos:     runtime.GOOS,
	}
	for _, opt := range opts {
		opt(inv)
	}
	return inv
}

// WithLogger sets the logger used for debug output.
func WithLogger(l *log.Logger) Option {
	return func(inv *Invoker) {
		if l != nil {
			inv.logger = l
		}
	}
}

// WithSandboxDetector overrides sandbox detection for HostSpawn commands.
func WithSandboxDetector(detect func() platform.SandboxType) Option {
	return func(inv *Invoker) {
		inv.sandbox = detect
	}
}

// Success returns true if the command exited with status 0.
func (r *Result) Success() bool {
	return r.ExitCode.IsSuccess()
}

// Invoke runs c and blocks until the child exits.
func (inv *Invoker) Invoke(ctx context.Context, c Command) (*Result, error) {
	if err := ctx.Err(); err != nil {
		return nil, fmt.Errorf("invoke %s canceled: %w", c.Path, err)
	}

	path, args := c.Path, c.Args
	if st := inv.hostSandbox(c); st != platform.SandboxNone {
		path, args = platform.HostCommand(st, path, args)
	} else {
		resolved, err := inv.checkExecutable(path)
		if err != nil {
			return nil, err
		}
		path = resolved
	}

	if err := validateWorkDir(c.Dir); err != nil {
		return nil, err
	}

	runCtx := ctx
	if c.Timeout > 0 {
		var cancel context.CancelFunc
		runCtx, cancel = context.WithTimeout(ctx, c.Timeout)
		defer cancel()
	}

	cmd := exec.CommandContext(runCtx, path, args...)
	cmd.Dir = c.Dir
	cmd.Env = mergeEnv(os.Environ(), c.Env, inv.goos)
	cmd.WaitDelay = waitDelay

	inv.logger.Debug("invoking", "cmd", CommandLine(path, args), "dir", c.Dir, "tty", c.TTY)

	captured := &capturedOutput{}
	start := time.Now()
	var runErr error
	if c.TTY {
		runErr = runTTY(cmd, captured, c.Stdout)
	} else {
		out := newExecuteOutput(captured, c.Stdout, c.Stderr)
		cmd.Stdin = c.Stdin
		cmd.Stdout = out.stdout
		cmd.Stderr = out.stderr
		runErr = cmd.Run()
	}

	result := &Result{
		Stdout:   captured.stdout.Bytes(),
		Stderr:   captured.stderr.Bytes(),
		Duration: time.Since(start),
	}

	if c.Timeout > 0 && ctx.Err() == nil && errors.Is(runCtx.Err(), context.DeadlineExceeded) {
		result.ExitCode = -1
		inv.logger.Debug("timed out", "cmd", path, "timeout", c.Timeout)
		return result, &TimeoutError{Path: path, Timeout: c.Timeout, Result: result}
	}
	if err := ctx.Err(); err != nil {
		return nil, fmt.Errorf("invoke %s canceled: %w", path, err)
	}

	res, err := extractExitCode(path, runErr, result)
	if err != nil {
		return nil, err
	}
	inv.logger.Debug("exited", "cmd", path, "code", res.ExitCode, "duration", res.Duration)
	return res, nil
}

func (inv *Invoker) hostSandbox(c Command) platform.SandboxType {
	if !c.HostSpawn || inv.sandbox == nil {
		return platform.SandboxNone
	}
	return inv.sandbox()
}

// checkExecutable verifies the program can be spawned before any process is
// created, so a missing toolchain surfaces as ExecutableNotFoundError rather
// than an opaque start failure.
func (inv *Invoker) checkExecutable(path string) (string, error) {
	if path == "" {
		return "", &ExecutableNotFoundError{Path: path, Err: errors.New("empty program path")}
	}

	if !strings.ContainsAny(path, `/\`) {
		resolved, err := inv.lookPath(path)
		if err != nil {
			return "", &ExecutableNotFoundError{Path: path, Err: err}
		}
		return resolved, nil
	}

	info, err := inv.stat(path)
	if err != nil {
		return "", &ExecutableNotFoundError{Path: path, Err: err}
	}
	if info.IsDir() {
		return "", &ExecutableNotFoundError{Path: path, Err: ErrIsDirectory}
	}
	if !platform.IsWindows(inv.goos) && info.Mode().Perm()&0o111 == 0 {
		return "", &ExecutableNotFoundError{Path: path, Err: ErrNotExecutable}
	}
	return path, nil
}

// validateWorkDir validates that a working directory exists and is accessible.
// This provides a better error message than letting exec fail with a cryptic error.
func validateWorkDir(dir string) error {
	if dir == "" {
		return nil
	}

	info, err := os.Stat(dir)
	if err != nil {
		if os.IsNotExist(err) {
			return fmt.Errorf("working directory does not exist: %s", dir)
		}
		if os.IsPermission(err) {
			return fmt.Errorf("working directory permission denied: %s", dir)
		}
		return fmt.Errorf("cannot access working directory: %w", err)
	}

	if !info.IsDir() {
		return fmt.Errorf("working directory is not a directory: %s", dir)
	}

	return nil
}

// mergeEnv overlays env onto environ. Keys in env replace existing entries
// (case-insensitively on Windows); new keys are appended in sorted order.
func mergeEnv(environ []string, env map[string]string, goos string) []string {
	if len(env) == 0 {
		return environ
	}

	fold := platform.IsWindows(goos)
	match := func(a, b string) bool {
		if fold {
			return strings.EqualFold(a, b)
		}
		return a == b
	}

	keys := make([]string, 0, len(env))
	for k := range env {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	result := make([]string, 0, len(environ)+len(env))
	used := make(map[string]bool, len(env))
	for _, entry := range environ {
		name, _, ok := strings.Cut(entry, "=")
		if !ok {
			result = append(result, entry)
			continue
		}
		replaced := false
		for _, k := range keys {
			if match(name, k) {
				if !used[k] {
					result = append(result, k+"="+env[k])
					used[k] = true
				}
				replaced = true
				break
			}
		}
		if !replaced {
			result = append(result, entry)
		}
	}
	for _, k := range keys {
		if !used[k] {
			result = append(result, k+"="+env[k])
		}
	}
	return result
}
