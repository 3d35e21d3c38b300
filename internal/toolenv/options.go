// SPDX-License-Identifier: MPL-2.0

package toolenv

import (
	"io"
	"io/fs"
	"maps"
	"time"

	"github.com/charmbracelet/log"

	"github.com/cish/cish/internal/config"
	"github.com/cish/cish/internal/procexec"
)

type (
	// runConfig is the per-invocation configuration assembled from an
	// Environment's defaults and the RunOptions of one call.
	runConfig struct {
		dir           string
		env           map[string]string
		checkExitCode bool
		timeout       time.Duration
		stdin         io.Reader
		stdout        io.Writer
		stderr        io.Writer
		tty           bool
		hostSpawn     bool
	}

	// RunOption configures a single Environment.Run call.
	RunOption func(*runConfig)

	// Option configures an Environment.
	Option func(*Environment)
)

func defaultRunConfig() runConfig {
	return runConfig{checkExitCode: true}
}

func (c runConfig) clone() runConfig {
	c.env = maps.Clone(c.env)
	return c
}

// WithDir sets the child's working directory.
func WithDir(dir string) RunOption {
	return func(c *runConfig) { c.dir = dir }
}

// WithEnv adds variables to the child's environment. Later calls add to and
// override earlier ones; the variables win over the PATH overlay.
func WithEnv(env map[string]string) RunOption {
	return func(c *runConfig) {
		if c.env == nil {
			c.env = make(map[string]string, len(env))
		}
		maps.Copy(c.env, env)
	}
}

// WithCheckExitCode controls whether a nonzero exit is reported as
// CommandFailedError (the default) or only through Result.ExitCode.
func WithCheckExitCode(check bool) RunOption {
	return func(c *runConfig) { c.checkExitCode = check }
}

// WithTimeout kills the child after d. Zero disables the limit.
func WithTimeout(d time.Duration) RunOption {
	return func(c *runConfig) { c.timeout = d }
}

// WithOutput streams the child's output to the given writers while it is
// also captured in the Result. Either writer may be nil.
func WithOutput(stdout, stderr io.Writer) RunOption {
	return func(c *runConfig) {
		c.stdout = stdout
		c.stderr = stderr
	}
}

// WithInput connects r to the child's standard input.
func WithInput(r io.Reader) RunOption {
	return func(c *runConfig) { c.stdin = r }
}

// WithTTY attaches the child to a pseudo-terminal.
func WithTTY(tty bool) RunOption {
	return func(c *runConfig) { c.tty = tty }
}

// WithHostSpawn runs the child on the host when cish is sandboxed.
func WithHostSpawn(hostSpawn bool) RunOption {
	return func(c *runConfig) { c.hostSpawn = hostSpawn }
}

// WithPlatform overrides the host platform layout.
func WithPlatform(p Platform) Option {
	return func(e *Environment) { e.platform = p }
}

// WithRunner sets the process runner. The default is procexec.New().
func WithRunner(r procexec.Runner) Option {
	return func(e *Environment) {
		if r != nil {
			e.runner = r
		}
	}
}

// WithLogger sets the logger used for debug output.
func WithLogger(l *log.Logger) Option {
	return func(e *Environment) {
		if l != nil {
			e.logger = l
		}
	}
}

// WithRunDefaults sets options applied to every Run before the call's own.
func WithRunDefaults(opts ...RunOption) Option {
	return func(e *Environment) {
		for _, opt := range opts {
			opt(&e.defaults)
		}
	}
}

// WithSettings applies the run defaults and virtual environment settings of
// cfg.
func WithSettings(cfg *config.Config) Option {
	return func(e *Environment) {
		if cfg == nil {
			return
		}
		WithRunDefaults(
			WithCheckExitCode(cfg.CheckExitCode),
			WithTimeout(cfg.Timeout),
			WithHostSpawn(cfg.HostSpawn),
		)(e)
		e.venvDir = cfg.VenvDir
		e.venvTool = cfg.VenvTool
		e.testRunner = cfg.TestRunner
	}
}

// withStat replaces the interpreter existence check.
func withStat(stat func(string) (fs.FileInfo, error)) Option {
	return func(e *Environment) { e.stat = stat }
}

// withGetenv replaces the lookup used for the inherited PATH.
func withGetenv(getenv func(string) string) Option {
	return func(e *Environment) { e.getenv = getenv }
}
