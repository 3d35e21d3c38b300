// SPDX-License-Identifier: MPL-2.0

package toolenv

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"slices"
	"testing"

	"github.com/cish/cish/internal/config"
	"github.com/cish/cish/internal/procexec"
	"github.com/cish/cish/internal/testutil"
)

// creatingRunner plays the creation tool: it writes bin/python into the
// last argument, the target directory.
func creatingRunner(t *testing.T) *recordingRunner {
	t.Helper()
	return &recordingRunner{respond: func(c procexec.Command) (*procexec.Result, error) {
		dir := c.Args[len(c.Args)-1]
		testutil.WriteFiles(t, dir, "bin/python")
		return &procexec.Result{}, nil
	}}
}

func TestVirtualEnvFactory_Create(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name     string
		tool     config.VenvTool
		wantArgs func(base, dir string) []string
	}{
		{
			name:     "venv module",
			tool:     config.VenvToolVenv,
			wantArgs: func(_, dir string) []string { return []string{"-m", "venv", dir} },
		},
		{
			name:     "virtualenv pins the base interpreter",
			tool:     config.VenvToolVirtualenv,
			wantArgs: func(base, dir string) []string { return []string{"-m", "virtualenv", "-p", base, dir} },
		},
		{
			name:     "empty tool keeps venv",
			tool:     "",
			wantArgs: func(_, dir string) []string { return []string{"-m", "venv", dir} },
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			runner := creatingRunner(t)
			base := newEnvironment("/opt/py/bin/python", WithPlatform(PlatformPOSIX), WithRunner(runner),
				WithRunDefaults(WithCheckExitCode(false), WithDir("/elsewhere")))
			dir := filepath.Join(t.TempDir(), "nested", "venv")

			venv, err := NewVirtualEnvFactory(WithTool(tt.tool)).Create(context.Background(), base, dir)
			if err != nil {
				t.Fatalf("Create() error = %v", err)
			}

			call := runner.last()
			if call.Path != "/opt/py/bin/python" {
				t.Errorf("tool ran with %q, want the base interpreter", call.Path)
			}
			if want := tt.wantArgs(base.Interpreter(), dir); !slices.Equal(call.Args, want) {
				t.Errorf("Args = %q, want %q", call.Args, want)
			}

			wantInterp := filepath.Join(dir, "bin", "python")
			if venv.Interpreter() != wantInterp || venv.VirtualEnv() != dir {
				t.Errorf("venv = %q in %q, want %q in %q", venv.Interpreter(), venv.VirtualEnv(), wantInterp, dir)
			}
			if base.VirtualEnv() != "" {
				t.Error("base Environment was modified")
			}

			// The new Environment runs through the same runner and carries
			// the base's run defaults.
			if _, err := Pip(context.Background(), venv, "install", "six"); err != nil {
				t.Fatalf("Pip() error = %v", err)
			}
			got := runner.last()
			if got.Path != wantInterp || got.Dir != "/elsewhere" || got.Env["VIRTUAL_ENV"] != dir {
				t.Errorf("venv command = %+v", got)
			}
		})
	}
}

func TestVirtualEnvFactory_CreateFailures(t *testing.T) {
	t.Parallel()

	t.Run("tool exits nonzero", func(t *testing.T) {
		t.Parallel()

		runner := &recordingRunner{respond: exitWith(1, "No module named venv")}
		base := newEnvironment("/opt/py/bin/python", WithRunner(runner), WithRunDefaults(WithCheckExitCode(false)))

		_, err := NewVirtualEnvFactory().Create(context.Background(), base, t.TempDir())
		var failed *CommandFailedError
		if !errors.As(err, &failed) {
			t.Fatalf("Create() error = %v, want *CommandFailedError despite unchecked defaults", err)
		}
		if failed.Stderr != "No module named venv" {
			t.Errorf("Stderr = %q", failed.Stderr)
		}
	})

	t.Run("no interpreter produced", func(t *testing.T) {
		t.Parallel()

		base := newEnvironment("/opt/py/bin/python", WithRunner(&recordingRunner{}))
		_, err := NewVirtualEnvFactory().Create(context.Background(), base, t.TempDir())
		if !errors.Is(err, procexec.ErrExecutableNotFound) {
			t.Errorf("Create() error = %v, want ErrExecutableNotFound", err)
		}
	})

	t.Run("invalid tool", func(t *testing.T) {
		t.Parallel()

		runner := &recordingRunner{}
		base := newEnvironment("/opt/py/bin/python", WithRunner(runner))
		_, err := NewVirtualEnvFactory(WithTool("conda")).Create(context.Background(), base, t.TempDir())
		if !errors.Is(err, config.ErrInvalidVenvTool) {
			t.Errorf("Create() error = %v, want ErrInvalidVenvTool", err)
		}
		if len(runner.calls) != 0 {
			t.Error("tool was run for an invalid tool name")
		}
	})
}

func TestVirtualEnvFactory_Clear(t *testing.T) {
	t.Parallel()

	dir := filepath.Join(t.TempDir(), "venv")
	stale := testutil.WriteFiles(t, dir, "stale.txt")[0]

	runner := creatingRunner(t)
	base := newEnvironment("/opt/py/bin/python", WithPlatform(PlatformPOSIX), WithRunner(runner))

	if _, err := NewVirtualEnvFactory().Create(context.Background(), base, dir); err != nil {
		t.Fatalf("Create() error = %v", err)
	}
	if _, err := os.Stat(stale); err != nil {
		t.Fatalf("Create() without clear removed existing content: %v", err)
	}

	if _, err := NewVirtualEnvFactory(WithClear(true)).Create(context.Background(), base, dir); err != nil {
		t.Fatalf("Create(clear) error = %v", err)
	}
	if _, err := os.Stat(stale); !errors.Is(err, os.ErrNotExist) {
		t.Errorf("stale file survived clear: %v", err)
	}
}

func TestVirtualenv_UsesSettings(t *testing.T) {
	t.Parallel()

	cfg := config.DefaultConfig()
	cfg.VenvTool = config.VenvToolVirtualenv
	runner := creatingRunner(t)
	base := newEnvironment("/opt/py/bin/python", WithPlatform(PlatformPOSIX), WithRunner(runner), WithSettings(cfg))

	dir := filepath.Join(t.TempDir(), "env")
	venv, err := base.Virtualenv(context.Background(), dir)
	if err != nil {
		t.Fatalf("Virtualenv() error = %v", err)
	}
	if !slices.Contains(runner.last().Args, "virtualenv") {
		t.Errorf("Args = %q, want the virtualenv tool", runner.last().Args)
	}
	if venv.VirtualEnv() != dir {
		t.Errorf("VirtualEnv() = %q, want %q", venv.VirtualEnv(), dir)
	}
}

func TestVirtualenv_RealProcess(t *testing.T) {
	t.Parallel()
	testutil.SkipOnWindows(t)

	base, err := NewEnvironment(testutil.WriteExecutable(t, t.TempDir(), "bin/python", fakeInterpreter))
	if err != nil {
		t.Fatalf("NewEnvironment() error = %v", err)
	}

	dir := filepath.Join(t.TempDir(), "venv")
	venv, err := base.Virtualenv(context.Background(), dir)
	if err != nil {
		t.Fatalf("Virtualenv() error = %v", err)
	}

	res, err := Python(context.Background(), venv, "-c", "pass")
	if err != nil {
		t.Fatalf("Python() in venv error = %v", err)
	}
	want := "interp=" + filepath.Join(dir, "bin", "python") + " args=-c pass\n"
	if string(res.Stdout) != want {
		t.Errorf("Stdout = %q, want %q", res.Stdout, want)
	}
}
