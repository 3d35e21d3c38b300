// SPDX-License-Identifier: MPL-2.0

package toolenv

import (
	"bytes"
	"context"
	"errors"
	"io/fs"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"testing"
	"time"

	"github.com/cish/cish/internal/config"
	"github.com/cish/cish/internal/procexec"
	"github.com/cish/cish/internal/testutil"
)

func TestRun_ExitCodeChecking(t *testing.T) {
	t.Parallel()

	runner := &recordingRunner{respond: exitWith(1, "boom\n")}
	env := newEnvironment("/opt/py/bin/python", WithPlatform(PlatformPOSIX), WithRunner(runner))

	t.Run("checked by default", func(t *testing.T) {
		t.Parallel()

		res, err := env.Run(context.Background(), "pip", []string{"install", "six"})
		var failed *CommandFailedError
		if !errors.As(err, &failed) {
			t.Fatalf("Run() error = %v, want *CommandFailedError", err)
		}
		if !errors.Is(err, ErrCommandFailed) {
			t.Error("error should wrap ErrCommandFailed")
		}
		if failed.ExitCode != 1 {
			t.Errorf("ExitCode = %d, want 1", failed.ExitCode)
		}
		if failed.Program != "/opt/py/bin/pip" || !slices.Equal(failed.Args, []string{"install", "six"}) {
			t.Errorf("CommandFailedError = %+v", failed)
		}
		if failed.Stderr != "boom\n" {
			t.Errorf("Stderr = %q", failed.Stderr)
		}
		if res == nil || res.ExitCode != 1 {
			t.Errorf("Run() result = %v, want result with exit code 1", res)
		}
		if !strings.Contains(err.Error(), "exited with code 1: boom") {
			t.Errorf("Error() = %q", err.Error())
		}
	})

	t.Run("unchecked returns the result", func(t *testing.T) {
		t.Parallel()

		res, err := env.Run(context.Background(), "pip", nil, WithCheckExitCode(false))
		if err != nil {
			t.Fatalf("Run() error = %v, want nil", err)
		}
		if res.ExitCode != 1 {
			t.Errorf("ExitCode = %d, want 1", res.ExitCode)
		}
	})
}

func TestRun_CommandAssembly(t *testing.T) {
	t.Parallel()

	var stdout bytes.Buffer
	stdin := strings.NewReader("input")
	tests := []struct {
		name        string
		platform    Platform
		interpreter string
		virtualEnv  string
		program     string
		opts        []RunOption
		wantPath    string
		wantEnv     map[string]string
	}{
		{
			name:        "posix path overlay",
			platform:    PlatformPOSIX,
			interpreter: "/opt/py/bin/python",
			program:     "pip",
			wantPath:    "/opt/py/bin/pip",
			wantEnv:     map[string]string{"PATH": "/opt/py/bin:/usr/bin"},
		},
		{
			name:        "windows path overlay includes root",
			platform:    PlatformWindows,
			interpreter: `C:\Python27\python.exe`,
			program:     "pip",
			wantPath:    `C:\Python27\Scripts\pip.exe`,
			wantEnv:     map[string]string{"PATH": `C:\Python27\Scripts;C:\Python27;/usr/bin`},
		},
		{
			name:        "virtualenv marker",
			platform:    PlatformPOSIX,
			interpreter: "/work/venv/bin/python",
			virtualEnv:  "/work/venv",
			program:     "python",
			wantPath:    "/work/venv/bin/python",
			wantEnv:     map[string]string{"PATH": "/work/venv/bin:/usr/bin", "VIRTUAL_ENV": "/work/venv"},
		},
		{
			name:        "caller variables win",
			platform:    PlatformPOSIX,
			interpreter: "/opt/py/bin/python",
			program:     "python",
			opts:        []RunOption{WithEnv(map[string]string{"PATH": "/only", "PYTHONHASHSEED": "0"})},
			wantPath:    "/opt/py/bin/python",
			wantEnv:     map[string]string{"PATH": "/only", "PYTHONHASHSEED": "0"},
		},
		{
			name:        "bare interpreter has no overlay",
			platform:    PlatformPOSIX,
			interpreter: "python",
			program:     "python",
			wantPath:    "python",
			wantEnv:     map[string]string{},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			runner := &recordingRunner{}
			env := newEnvironment(tt.interpreter,
				WithPlatform(tt.platform),
				WithRunner(runner),
				withGetenv(fixedEnv(map[string]string{"PATH": "/usr/bin"})),
			)
			env.virtualEnv = tt.virtualEnv

			opts := append([]RunOption{WithDir("/work"), WithTimeout(time.Minute), WithOutput(&stdout, nil), WithInput(stdin)}, tt.opts...)
			if _, err := env.Run(context.Background(), tt.program, []string{"-c", "pass"}, opts...); err != nil {
				t.Fatalf("Run() error = %v", err)
			}

			got := runner.last()
			if got.Path != tt.wantPath {
				t.Errorf("Path = %q, want %q", got.Path, tt.wantPath)
			}
			if !slices.Equal(got.Args, []string{"-c", "pass"}) {
				t.Errorf("Args = %q", got.Args)
			}
			if got.Dir != "/work" || got.Timeout != time.Minute || got.Stdout != &stdout || got.Stdin != stdin {
				t.Errorf("Command = %+v", got)
			}
			if len(got.Env) != len(tt.wantEnv) {
				t.Errorf("Env = %v, want %v", got.Env, tt.wantEnv)
			}
			for k, v := range tt.wantEnv {
				if got.Env[k] != v {
					t.Errorf("Env[%s] = %q, want %q", k, got.Env[k], v)
				}
			}
		})
	}
}

func TestRun_Defaults(t *testing.T) {
	t.Parallel()

	runner := &recordingRunner{respond: exitWith(2, "")}
	cfg := config.DefaultConfig()
	cfg.CheckExitCode = false
	cfg.Timeout = 3 * time.Second
	cfg.HostSpawn = true

	env := newEnvironment("/opt/py/bin/python", WithPlatform(PlatformPOSIX), WithRunner(runner), WithSettings(cfg))

	res, err := env.Run(context.Background(), "python", nil)
	if err != nil {
		t.Fatalf("Run() with check_exit_code=false error = %v", err)
	}
	if res.ExitCode != 2 {
		t.Errorf("ExitCode = %d", res.ExitCode)
	}
	if c := runner.last(); c.Timeout != 3*time.Second || !c.HostSpawn {
		t.Errorf("Command = %+v, want settings defaults", c)
	}

	// Per-call options override defaults, and WithRunOptions layers on a copy.
	strict := env.WithRunOptions(WithCheckExitCode(true), WithTTY(true))
	if _, err := strict.Run(context.Background(), "python", nil); !errors.Is(err, ErrCommandFailed) {
		t.Errorf("strict Run() error = %v, want ErrCommandFailed", err)
	}
	if c := runner.last(); !c.TTY {
		t.Error("WithRunOptions(WithTTY(true)) not applied")
	}
	if _, err := env.Run(context.Background(), "python", nil); err != nil {
		t.Errorf("original Environment changed by WithRunOptions: %v", err)
	}
	if _, err := env.Run(context.Background(), "python", nil, WithTimeout(0)); err != nil || runner.last().Timeout != 0 {
		t.Errorf("per-call WithTimeout(0) not applied: %v", err)
	}
}

func TestRun_InvokerErrorsPassThrough(t *testing.T) {
	t.Parallel()

	notFound := &procexec.ExecutableNotFoundError{Path: "/opt/py/bin/pip", Err: fs.ErrNotExist}
	runner := &recordingRunner{respond: func(procexec.Command) (*procexec.Result, error) { return nil, notFound }}
	env := newEnvironment("/opt/py/bin/python", WithPlatform(PlatformPOSIX), WithRunner(runner))

	res, err := env.Run(context.Background(), "pip", nil)
	if res != nil || !errors.Is(err, procexec.ErrExecutableNotFound) {
		t.Errorf("Run() = %v, %v", res, err)
	}
}

func TestNewEnvironment_ChecksInterpreter(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	interp := testutil.WriteFiles(t, dir, "bin/python")[0]

	env, err := NewEnvironment(interp)
	if err != nil {
		t.Fatalf("NewEnvironment(existing) error = %v", err)
	}
	if env.Interpreter() != interp || env.Platform() != HostPlatform() || env.VirtualEnv() != "" {
		t.Errorf("Environment = %+v", env)
	}

	_, err = NewEnvironment(filepath.Join(dir, "bin", "python9"))
	if !errors.Is(err, procexec.ErrExecutableNotFound) || !errors.Is(err, fs.ErrNotExist) {
		t.Errorf("NewEnvironment(missing) error = %v", err)
	}

	_, err = NewEnvironment(filepath.Join(dir, "bin"))
	if !errors.Is(err, procexec.ErrIsDirectory) {
		t.Errorf("NewEnvironment(dir) error = %v, want ErrIsDirectory", err)
	}
}

func TestConveniences(t *testing.T) {
	t.Parallel()

	cfg := config.DefaultConfig()
	cfg.TestRunner = "unittest"

	tests := []struct {
		name     string
		call     func(context.Context, *Environment) error
		opts     []Option
		wantArgs []string
	}{
		{
			name:     "python",
			call:     func(ctx context.Context, e *Environment) error { _, err := Python(ctx, e, "-c", "pass"); return err },
			wantArgs: []string{"-c", "pass"},
		},
		{
			name:     "pip",
			call:     func(ctx context.Context, e *Environment) error { _, err := Pip(ctx, e, "install", "six"); return err },
			wantArgs: []string{"-m", "pip", "install", "six"},
		},
		{
			name:     "test runner default",
			call:     func(ctx context.Context, e *Environment) error { _, err := TestRunner(ctx, e, "-x"); return err },
			wantArgs: []string{"-m", "pytest", "-x"},
		},
		{
			name:     "test runner from settings",
			call:     func(ctx context.Context, e *Environment) error { _, err := TestRunner(ctx, e); return err },
			opts:     []Option{WithSettings(cfg)},
			wantArgs: []string{"-m", "unittest"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			runner := &recordingRunner{}
			opts := append([]Option{WithPlatform(PlatformPOSIX), WithRunner(runner)}, tt.opts...)
			env := newEnvironment("/opt/py/bin/python", opts...)

			if err := tt.call(context.Background(), env); err != nil {
				t.Fatalf("call error = %v", err)
			}
			got := runner.last()
			if got.Path != "/opt/py/bin/python" {
				t.Errorf("Path = %q, want the interpreter", got.Path)
			}
			if !slices.Equal(got.Args, tt.wantArgs) {
				t.Errorf("Args = %q, want %q", got.Args, tt.wantArgs)
			}
		})
	}
}

func TestFindExecutable(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name        string
		files       []string
		interpreter string
		find        string
		want        string
	}{
		{
			name:        "linux style",
			files:       []string{"bin/python", "bin/pip", "bin/virtualenv"},
			interpreter: "bin/python",
			find:        "pip",
			want:        "bin/pip",
		},
		{
			name:        "windows style",
			files:       []string{"python.exe", "Scripts/pip", "Scripts/virtualenv"},
			interpreter: "python.exe",
			find:        "pip",
			want:        "Scripts/pip",
		},
		{
			name:        "prefer wpython",
			files:       []string{"python.exe", "wpython.exe"},
			interpreter: "python.exe",
			find:        "python",
			want:        "wpython.exe",
		},
		{
			name:        "w prefix only for python",
			files:       []string{"python.exe", "wpip.exe", "pip.exe"},
			interpreter: "python.exe",
			find:        "pip",
			want:        "pip.exe",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			dir := t.TempDir()
			testutil.WriteFiles(t, dir, tt.files...)
			env := newEnvironment(filepath.Join(dir, filepath.FromSlash(tt.interpreter)))

			got, err := env.FindExecutable(tt.find)
			if err != nil {
				t.Fatalf("FindExecutable(%q) error = %v", tt.find, err)
			}
			if want := filepath.Join(dir, filepath.FromSlash(tt.want)); got != want {
				t.Errorf("FindExecutable(%q) = %q, want %q", tt.find, got, want)
			}
		})
	}
}

func TestFindExecutable_NotFound(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	testutil.WriteFiles(t, dir, "bin/python")
	env := newEnvironment(filepath.Join(dir, "bin", "python"))

	_, err := env.FindExecutable("pytest")
	if !errors.Is(err, procexec.ErrExecutableNotFound) {
		t.Fatalf("FindExecutable() error = %v, want ErrExecutableNotFound", err)
	}
	for _, candidate := range []string{filepath.Join(dir, "bin", "pytest"), filepath.Join(dir, "bin", "pytest.exe")} {
		if !strings.Contains(err.Error(), candidate) {
			t.Errorf("error %q does not list candidate %s", err, candidate)
		}
	}

	if _, err := newEnvironment("python").FindExecutable("pip"); err == nil {
		t.Error("FindExecutable on a bare interpreter should fail")
	}

	gone := newEnvironment(filepath.Join(dir, "missing", "bin", "python"))
	if _, err := gone.FindExecutable("pip"); !errors.Is(err, procexec.ErrExecutableNotFound) {
		t.Errorf("FindExecutable with no directories error = %v", err)
	}
}

// fakeInterpreter is a POSIX shell stand-in for a Python interpreter. It
// implements "-m venv DIR" by copying itself to DIR/bin/python, exits with
// the code given by "-c exit:N" and otherwise echoes how it was invoked.
const fakeInterpreter = `#!/bin/sh
if [ "$1" = "-m" ] && [ "$2" = "venv" ]; then
	mkdir -p "$3/bin" && cp "$0" "$3/bin/python" && exit 0
fi
case "$2" in
	exit:*) echo "failing" >&2; exit "${2#exit:}" ;;
esac
echo "interp=$0 args=$*"
`

func TestRun_RealProcess(t *testing.T) {
	t.Parallel()
	testutil.SkipOnWindows(t)

	dir := t.TempDir()
	interp := testutil.WriteExecutable(t, dir, "bin/python", fakeInterpreter)
	env, err := NewEnvironment(interp)
	if err != nil {
		t.Fatalf("NewEnvironment() error = %v", err)
	}

	res, err := Python(context.Background(), env, "-c", "pass")
	if err != nil {
		t.Fatalf("Python() error = %v", err)
	}
	if want := "interp=" + interp + " args=-c pass\n"; string(res.Stdout) != want {
		t.Errorf("Stdout = %q, want %q", res.Stdout, want)
	}

	_, err = Python(context.Background(), env, "-c", "exit:1")
	var failed *CommandFailedError
	if !errors.As(err, &failed) || failed.ExitCode != 1 || failed.Stderr != "failing\n" {
		t.Errorf("Python(exit:1) error = %v, want CommandFailedError with exit code 1", err)
	}

	res, err = env.Run(context.Background(), "python", []string{"-c", "exit:1"}, WithCheckExitCode(false))
	if err != nil || res.ExitCode != 1 {
		t.Errorf("unchecked Run() = %v, %v", res, err)
	}

	if _, err := env.Run(context.Background(), "pip", nil); !errors.Is(err, procexec.ErrExecutableNotFound) {
		t.Errorf("Run(pip) error = %v, want ErrExecutableNotFound", err)
	}
}

func TestVirtualenv_DefaultDir(t *testing.T) {
	testutil.SkipOnWindows(t)

	base := testutil.WriteExecutable(t, t.TempDir(), "bin/python", fakeInterpreter)
	work := t.TempDir()
	defer testutil.MustChdir(t, work)()

	env, err := NewEnvironment(base)
	if err != nil {
		t.Fatalf("NewEnvironment() error = %v", err)
	}

	venv, err := env.Virtualenv(context.Background(), "")
	if err != nil {
		t.Fatalf("Virtualenv() error = %v", err)
	}

	cwd, _ := os.Getwd()
	if want := filepath.Join(cwd, "venv", "bin", "python"); venv.Interpreter() != want {
		t.Errorf("Interpreter() = %q, want %q", venv.Interpreter(), want)
	}
}
