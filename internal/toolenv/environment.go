// SPDX-License-Identifier: MPL-2.0

package toolenv

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"slices"
	"strings"

	"github.com/charmbracelet/log"

	"github.com/cish/cish/internal/config"
	"github.com/cish/cish/internal/fsops"
	"github.com/cish/cish/internal/procexec"
)

const (
	envPath       = "PATH"
	envVirtualEnv = "VIRTUAL_ENV"
)

// Environment is one interpreter toolchain. It is immutable once constructed
// and safe for concurrent use.
type Environment struct {
	interpreter string
	platform    Platform
	// virtualEnv is the environment directory when this Environment was
	// created by a VirtualEnvFactory or detected through $VIRTUAL_ENV.
	virtualEnv string

	runner   procexec.Runner
	logger   *log.Logger
	defaults runConfig

	venvDir    string
	venvTool   config.VenvTool
	testRunner string

	stat   func(string) (fs.FileInfo, error)
	getenv func(string) string
}

// NewEnvironment binds an Environment to interpreter. The interpreter must
// exist and must not be a directory; otherwise the error is a
// *procexec.ExecutableNotFoundError.
func NewEnvironment(interpreter string, opts ...Option) (*Environment, error) {
	e := newEnvironment(interpreter, opts...)
	if err := e.checkInterpreter(); err != nil {
		return nil, err
	}
	return e, nil
}

// newEnvironment constructs without the existence check. A bare interpreter
// name is accepted and resolved through PATH at invocation.
func newEnvironment(interpreter string, opts ...Option) *Environment {
	e := &Environment{
		interpreter: interpreter,
		platform:    HostPlatform(),
		runner:      procexec.New(),
		logger:      log.Default(),
		defaults:    defaultRunConfig(),
		venvDir:     config.DefaultConfig().VenvDir,
		venvTool:    config.VenvToolVenv,
		testRunner:  config.DefaultConfig().TestRunner,
		stat:        os.Stat,
		getenv:      os.Getenv,
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

func (e *Environment) checkInterpreter() error {
	info, err := e.stat(e.interpreter)
	if err != nil {
		return &procexec.ExecutableNotFoundError{Path: e.interpreter, Err: err}
	}
	if info.IsDir() {
		return &procexec.ExecutableNotFoundError{Path: e.interpreter, Err: procexec.ErrIsDirectory}
	}
	return nil
}

// derive returns a copy bound to another interpreter. Settings, runner and
// logger carry over; nothing else is shared with e.
func (e *Environment) derive(interpreter, virtualEnv string) *Environment {
	d := *e
	d.interpreter = interpreter
	d.virtualEnv = virtualEnv
	d.defaults = e.defaults.clone()
	return &d
}

// Interpreter returns the interpreter path.
func (e *Environment) Interpreter() string { return e.interpreter }

// Platform returns the layout family.
func (e *Environment) Platform() Platform { return e.platform }

// VirtualEnv returns the virtual environment directory, or "" for a base
// installation.
func (e *Environment) VirtualEnv() string { return e.virtualEnv }

// bare reports whether the interpreter is a name to be found on PATH.
func (e *Environment) bare() bool {
	return !strings.ContainsAny(e.interpreter, `/\`)
}

// Root returns the installation root derived from the interpreter.
func (e *Environment) Root() string {
	if e.bare() {
		return ""
	}
	return e.platform.layout().root(e.interpreter)
}

// LibraryPath returns the library directory derived from the interpreter:
// <root>/lib on POSIX, <root>\Lib on Windows.
func (e *Environment) LibraryPath() string {
	if e.bare() {
		return ""
	}
	return e.platform.layout().libraryPath(e.interpreter)
}

// ToolDir returns the directory holding the toolchain's programs: the
// interpreter's directory on POSIX, <root>\Scripts on Windows.
func (e *Environment) ToolDir() string {
	if e.bare() {
		return ""
	}
	return e.platform.layout().toolDir(e.interpreter)
}

// ResolveProgram maps a logical program name to the path Run executes. It
// does not touch the filesystem. The interpreter's own name resolves to the
// interpreter; with a bare interpreter every program stays a bare name.
func (e *Environment) ResolveProgram(name string) string {
	l := e.platform.layout()
	if l.isInterpreter(e.interpreter, name) {
		return e.interpreter
	}
	if e.bare() {
		return name
	}
	return l.program(l.toolDir(e.interpreter), name)
}

// WithRunOptions returns a copy of e whose Run applies opts before each
// call's own options.
func (e *Environment) WithRunOptions(opts ...RunOption) *Environment {
	d := e.derive(e.interpreter, e.virtualEnv)
	for _, opt := range opts {
		opt(&d.defaults)
	}
	return d
}

// Run executes program from this toolchain with args and blocks until it
// exits. With exit code checking on (the default) a nonzero exit returns
// both the Result and a *CommandFailedError.
func (e *Environment) Run(ctx context.Context, program string, args []string, opts ...RunOption) (*procexec.Result, error) {
	rc := e.defaults.clone()
	for _, opt := range opts {
		opt(&rc)
	}

	path := e.ResolveProgram(program)
	e.logger.Debug("run", "program", program, "path", path, "interpreter", e.interpreter)

	res, err := e.runner.Invoke(ctx, procexec.Command{
		Path:      path,
		Args:      args,
		Dir:       rc.dir,
		Env:       e.childEnv(rc.env),
		Stdin:     rc.stdin,
		Stdout:    rc.stdout,
		Stderr:    rc.stderr,
		Timeout:   rc.timeout,
		TTY:       rc.tty,
		HostSpawn: rc.hostSpawn,
	})
	if err != nil {
		return res, err
	}

	if rc.checkExitCode && !res.ExitCode.IsSuccess() {
		return res, &CommandFailedError{
			Program:  path,
			Args:     slices.Clone(args),
			ExitCode: res.ExitCode,
			Stderr:   string(res.Stderr),
		}
	}
	return res, nil
}

// childEnv prepends the tool directories to PATH and marks virtual
// environments; caller-supplied variables win.
func (e *Environment) childEnv(overlay map[string]string) map[string]string {
	env := make(map[string]string, len(overlay)+2)
	if !e.bare() {
		entries := e.platform.layout().pathEntries(e.interpreter)
		if inherited := e.getenv(envPath); inherited != "" {
			entries = append(entries, inherited)
		}
		env[envPath] = strings.Join(entries, e.platform.listSeparator())
	}
	if e.virtualEnv != "" {
		env[envVirtualEnv] = e.virtualEnv
	}
	for k, v := range overlay {
		env[k] = v
	}
	return env
}

// Virtualenv creates a virtual environment in targetDir from this
// toolchain and returns an Environment bound to it. An empty targetDir means
// the configured venv directory (default "venv") under the working
// directory.
func (e *Environment) Virtualenv(ctx context.Context, targetDir string) (*Environment, error) {
	if targetDir == "" {
		targetDir = e.venvDir
	}
	if !filepath.IsAbs(targetDir) {
		cwd, err := fsops.Pwd()
		if err != nil {
			return nil, err
		}
		targetDir = filepath.Join(cwd, targetDir)
	}
	return NewVirtualEnvFactory(WithTool(e.venvTool)).Create(ctx, e, targetDir)
}

// FindExecutable searches the filesystem for name in the root and tool
// directories (plus any Scripts or scripts subdirectory of the interpreter's
// directory). Candidate names are {name} and {name}.exe; for the
// interpreter w{name}.exe is tried before {name}.exe. The first existing
// file wins. On failure the error lists every candidate.
func (e *Environment) FindExecutable(name string) (string, error) {
	if e.bare() {
		return "", fmt.Errorf("unable to find %q: interpreter %q has no installation directory", name, e.interpreter)
	}

	interpDir := filepath.Dir(filepath.FromSlash(e.interpreter))
	dirs := []string{
		interpDir,
		filepath.FromSlash(e.Root()),
		filepath.FromSlash(e.ToolDir()),
		filepath.Join(interpDir, "Scripts"),
		filepath.Join(interpDir, "scripts"),
	}

	patterns := []string{"%s", "%s.exe"}
	if name == interpreterName {
		patterns = []string{"%s", "w%s.exe", "%s.exe"}
	}

	var searched []string
	seen := make(map[string]bool)
	for _, dir := range dirs {
		if seen[dir] {
			continue
		}
		seen[dir] = true
		info, err := e.stat(dir)
		if err != nil || !info.IsDir() {
			continue
		}
		for _, pattern := range patterns {
			candidate := filepath.Join(dir, fmt.Sprintf(pattern, name))
			searched = append(searched, candidate)
			if info, err := e.stat(candidate); err == nil && !info.IsDir() {
				return candidate, nil
			}
		}
	}

	if len(searched) == 0 {
		return "", &procexec.ExecutableNotFoundError{
			Path: name,
			Err:  errors.New("none of the environment directories exist"),
		}
	}
	return "", &procexec.ExecutableNotFoundError{
		Path: name,
		Err:  fmt.Errorf("looked at %s", strings.Join(searched, ", ")),
	}
}
