// SPDX-License-Identifier: MPL-2.0

package cmd

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/cish/cish/internal/issue"
	"github.com/cish/cish/internal/procexec"
	"github.com/cish/cish/internal/toolenv"
)

// runFlags are the per-invocation options shared by run and the
// convenience commands.
type runFlags struct {
	cwd     string
	env     []string
	noCheck bool
	timeout time.Duration
	tty     bool
}

func (f *runFlags) register(cmd *cobra.Command) {
	cmd.Flags().StringVar(&f.cwd, "cwd", "", "working directory for the program")
	cmd.Flags().StringArrayVarP(&f.env, "env", "e", nil, "set an environment variable (KEY=VALUE, repeatable)")
	cmd.Flags().BoolVar(&f.noCheck, "no-check", false, "do not treat a nonzero exit code as an error")
	cmd.Flags().DurationVar(&f.timeout, "timeout", 0, "kill the program after this duration (overrides the timeout setting)")
	cmd.Flags().BoolVar(&f.tty, "tty", false, "attach the program to a pseudo-terminal")
}

// options turns the flags into RunOptions. Settings defaults apply unless a
// flag was given explicitly.
func (f *runFlags) options(cmd *cobra.Command, app *App) ([]toolenv.RunOption, error) {
	opts := []toolenv.RunOption{
		toolenv.WithInput(app.stdin),
		toolenv.WithOutput(app.stdout, app.stderr),
	}
	if f.cwd != "" {
		opts = append(opts, toolenv.WithDir(f.cwd))
	}
	if len(f.env) > 0 {
		vars, err := parseEnvAssignments(f.env)
		if err != nil {
			return nil, err
		}
		opts = append(opts, toolenv.WithEnv(vars))
	}
	if f.noCheck {
		opts = append(opts, toolenv.WithCheckExitCode(false))
	}
	if cmd.Flags().Changed("timeout") {
		opts = append(opts, toolenv.WithTimeout(f.timeout))
	}
	if f.tty {
		opts = append(opts, toolenv.WithTTY(true))
	}
	return opts, nil
}

func parseEnvAssignments(assignments []string) (map[string]string, error) {
	vars := make(map[string]string, len(assignments))
	for _, a := range assignments {
		key, value, ok := strings.Cut(a, "=")
		if !ok || key == "" {
			return nil, fmt.Errorf("invalid --env %q (want KEY=VALUE)", a)
		}
		vars[key] = value
	}
	return vars, nil
}

func newRunCommand(app *App) *cobra.Command {
	var flags runFlags

	cmd := &cobra.Command{
		Use:   "run <label> <program> [-- args...]",
		Short: "Run a program from a toolchain",
		Long: `Run program from the toolchain registered under label. The program name is
mapped to the toolchain's tool directory ("pip" becomes bin/pip on POSIX and
Scripts\pip.exe on Windows) and the tool directories are prepended to PATH.
The label "default" selects the active virtual environment or the python on
PATH. The exit code mirrors the program's.`,
		Example: `  cish run 3.12 pip -- install -r requirements.txt
  cish run 2.7 python --env PYTHONHASHSEED=0 -- -c "import sys"`,
		Args: cobra.MinimumNArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			return app.runProgram(cmd, &flags, args[0], func(ctx context.Context, env *toolenv.Environment, opts []toolenv.RunOption) (*procexec.Result, error) {
				return env.Run(ctx, args[1], args[2:], opts...)
			})
		},
	}

	flags.register(cmd)
	return cmd
}

func newPythonCommand(app *App) *cobra.Command {
	return newConvenienceCommand(app, "python", "Run the toolchain's interpreter", toolenv.Python)
}

func newPipCommand(app *App) *cobra.Command {
	return newConvenienceCommand(app, "pip", "Run pip through the toolchain's interpreter", toolenv.Pip)
}

func newTestCommand(app *App) *cobra.Command {
	return newConvenienceCommand(app, "test", "Run the configured test runner module (default pytest)", toolenv.TestRunner)
}

func newConvenienceCommand(app *App, name, short string, fn func(context.Context, *toolenv.Environment, ...string) (*procexec.Result, error)) *cobra.Command {
	var flags runFlags

	cmd := &cobra.Command{
		Use:   name + " <label> [-- args...]",
		Short: short,
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return app.runProgram(cmd, &flags, args[0], func(ctx context.Context, env *toolenv.Environment, opts []toolenv.RunOption) (*procexec.Result, error) {
				return fn(ctx, env.WithRunOptions(opts...), args[1:]...)
			})
		},
	}

	flags.register(cmd)
	return cmd
}

// runProgram resolves label, runs invoke and turns its outcome into the
// process exit code.
func (a *App) runProgram(cmd *cobra.Command, flags *runFlags, label string, invoke func(context.Context, *toolenv.Environment, []toolenv.RunOption) (*procexec.Result, error)) error {
	opts, err := flags.options(cmd, a)
	if err != nil {
		return err
	}
	env, err := a.environment(cmd.Context(), label)
	if err != nil {
		return err
	}

	res, err := invoke(cmd.Context(), env, opts)
	return exitFromRun(res, err)
}

// exitFromRun maps a Run outcome to the error returned from RunE. The
// child's exit code is mirrored; output was already streamed.
func exitFromRun(res *procexec.Result, err error) error {
	switch {
	case errors.Is(err, procexec.ErrTimeout):
		return &ExitError{Code: exitTimeout, Err: newServiceError(err, issue.CommandTimedOutId)}
	case errors.Is(err, toolenv.ErrCommandFailed):
		return &ExitError{Code: childExitCode(res), Err: newServiceError(err, issue.CommandFailedId)}
	case errors.Is(err, procexec.ErrExecutableNotFound):
		return newServiceError(err, issue.ProgramNotFoundId)
	case err != nil:
		return err
	case res != nil && !res.ExitCode.IsSuccess():
		return &ExitError{Code: childExitCode(res)}
	}
	return nil
}

// childExitCode returns the code to exit with for a failed child. A child
// killed by a signal has no exit status and maps to 1.
func childExitCode(res *procexec.Result) int {
	if res == nil || res.ExitCode.Signaled() {
		return exitFailure
	}
	return int(res.ExitCode)
}
