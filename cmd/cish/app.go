// SPDX-License-Identifier: MPL-2.0

package cmd

import (
	"context"
	"errors"
	"io"
	"os"

	"github.com/charmbracelet/log"

	"github.com/cish/cish/internal/config"
	"github.com/cish/cish/internal/issue"
	"github.com/cish/cish/internal/procexec"
	"github.com/cish/cish/internal/toolenv"
)

// defaultLabel selects Registry.Default unless a toolchain file defines it.
const defaultLabel config.VersionLabel = "default"

type (
	// App wires CLI services and shared dependencies. It is the composition
	// root for the CLI layer: every Cobra handler receives an App and
	// resolves settings, toolchains and Environments through it.
	App struct {
		Config config.Provider
		Runner procexec.Runner
		stdin  io.Reader
		stdout io.Writer
		stderr io.Writer
		logger *log.Logger

		// global flags
		verbose    bool
		configPath string
	}

	// Dependencies defines the injection points for building an App. Nil
	// fields are replaced with production defaults by NewApp.
	Dependencies struct {
		Config config.Provider
		Runner procexec.Runner
		Stdin  io.Reader
		Stdout io.Writer
		Stderr io.Writer
	}
)

// NewApp creates an App with defaults for omitted dependencies.
func NewApp(deps Dependencies) *App {
	if deps.Stdin == nil {
		deps.Stdin = os.Stdin
	}
	if deps.Stdout == nil {
		deps.Stdout = os.Stdout
	}
	if deps.Stderr == nil {
		deps.Stderr = os.Stderr
	}
	if deps.Config == nil {
		deps.Config = config.NewProvider()
	}

	logger := log.NewWithOptions(deps.Stderr, log.Options{
		Prefix: config.AppName,
		Level:  log.WarnLevel,
	})
	if deps.Runner == nil {
		deps.Runner = procexec.New(procexec.WithLogger(logger))
	}

	return &App{
		Config: deps.Config,
		Runner: deps.Runner,
		stdin:  deps.Stdin,
		stdout: deps.Stdout,
		stderr: deps.Stderr,
		logger: logger,
	}
}

// configureLogging sets the log level from --verbose, falling back to the
// settings' log_level. The logger also becomes the package default so
// library packages logging through charmbracelet/log share it.
func (a *App) configureLogging(cfg *config.Config) {
	level := log.WarnLevel
	if cfg != nil {
		if parsed, err := log.ParseLevel(string(cfg.LogLevel)); err == nil {
			level = parsed
		}
	}
	if a.verbose {
		level = log.DebugLevel
	}
	a.logger.SetLevel(level)
	log.SetDefault(a.logger)
}

func (a *App) loadOptions() config.LoadOptions {
	return config.LoadOptions{ConfigFilePath: a.configPath}
}

// settings loads the settings for this invocation.
func (a *App) settings(ctx context.Context) (*config.Config, error) {
	cfg, err := a.Config.Load(ctx, a.loadOptions())
	if err != nil {
		return nil, newServiceError(err, issue.SettingsLoadFailedId)
	}
	a.configureLogging(cfg)
	return cfg, nil
}

// registry locates the toolchain files named by cfg and binds a Registry
// whose Environments carry cfg's run defaults.
func (a *App) registry(ctx context.Context, cfg *config.Config) (*toolenv.Registry, []string, error) {
	locator := config.NewLocator(config.SearchPaths(cfg)...)
	entries, err := locator.Locate(ctx)
	if err != nil {
		var id issue.Id
		if errors.Is(err, config.ErrConfigParse) {
			id = issue.ToolchainConfigInvalidId
		}
		return nil, nil, newServiceError(err, id)
	}

	reg := toolenv.NewRegistry(entries,
		toolenv.WithRegistryLogger(a.logger),
		toolenv.WithEnvironmentOptions(
			toolenv.WithSettings(cfg),
			toolenv.WithRunner(a.Runner),
		),
	)
	return reg, locator.Paths(), nil
}

// environment resolves label to an Environment. The label "default" means
// the interpreter running the build unless a toolchain file defines it.
func (a *App) environment(ctx context.Context, label string) (*toolenv.Environment, error) {
	cfg, err := a.settings(ctx)
	if err != nil {
		return nil, err
	}
	reg, _, err := a.registry(ctx, cfg)
	if err != nil {
		return nil, err
	}
	return resolveLabel(reg, config.VersionLabel(label))
}

func resolveLabel(reg *toolenv.Registry, label config.VersionLabel) (*toolenv.Environment, error) {
	if label == defaultLabel {
		if _, defined := reg.Entry(label); !defined {
			return reg.Default(), nil
		}
	}

	env, err := reg.Resolve(label)
	if err != nil {
		id := issue.InterpreterNotFoundId
		if errors.Is(err, toolenv.ErrUnknownVersion) {
			id = issue.UnknownVersionId
		}
		return nil, newServiceError(err, id)
	}
	return env, nil
}
