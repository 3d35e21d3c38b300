// SPDX-License-Identifier: MPL-2.0

package toolenv

import (
	"maps"
	"os"
	"os/exec"
	"slices"
	"strings"

	"github.com/charmbracelet/log"

	"github.com/cish/cish/internal/config"
)

type (
	// Registry binds located toolchain entries to Environments. It is
	// read-only after construction.
	Registry struct {
		entries  map[config.VersionLabel]config.Entry
		envOpts  []Option
		logger   *log.Logger
		getenv   func(string) string
		lookPath func(string) (string, error)
	}

	// RegistryOption configures a Registry.
	RegistryOption func(*Registry)
)

// NewRegistry creates a Registry over entries, typically the result of
// config.Locator.Locate.
func NewRegistry(entries map[config.VersionLabel]config.Entry, opts ...RegistryOption) *Registry {
	r := &Registry{
		entries:  maps.Clone(entries),
		logger:   log.Default(),
		getenv:   os.Getenv,
		lookPath: exec.LookPath,
	}
	if r.entries == nil {
		r.entries = make(map[config.VersionLabel]config.Entry)
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// WithEnvironmentOptions passes opts to every Environment the Registry binds.
func WithEnvironmentOptions(opts ...Option) RegistryOption {
	return func(r *Registry) { r.envOpts = append(r.envOpts, opts...) }
}

// WithRegistryLogger sets the logger for the Registry and the Environments it binds.
func WithRegistryLogger(l *log.Logger) RegistryOption {
	return func(r *Registry) {
		if l != nil {
			r.logger = l
			r.envOpts = append(r.envOpts, WithLogger(l))
		}
	}
}

// withInterpreterLookup replaces the $VIRTUAL_ENV and PATH lookups used by Default.
func withInterpreterLookup(getenv func(string) string, lookPath func(string) (string, error)) RegistryOption {
	return func(r *Registry) {
		r.getenv = getenv
		r.lookPath = lookPath
	}
}

// Resolve binds the toolchain registered under label. An undefined label
// yields *UnknownVersionError; a defined label whose interpreter is missing
// yields *procexec.ExecutableNotFoundError.
func (r *Registry) Resolve(label config.VersionLabel) (*Environment, error) {
	entry, ok := r.entries[label]
	if !ok {
		return nil, &UnknownVersionError{Label: label, Known: r.Labels()}
	}
	env, err := NewEnvironment(entry.Interpreter, r.envOpts...)
	if err != nil {
		return nil, err
	}
	r.logger.Debug("resolved toolchain", "label", label, "interpreter", entry.Interpreter, "source", entry.Source)
	return env, nil
}

// Default returns the Environment of the interpreter running the current
// build: the active virtual environment ($VIRTUAL_ENV), else python3 or
// python from PATH, else the bare name "python" left to PATH resolution at
// invocation. It reads no configuration and never fails.
func (r *Registry) Default() *Environment {
	probe := newEnvironment("", r.envOpts...)
	l := probe.platform.layout()

	if venv := r.getenv(envVirtualEnv); venv != "" {
		interp := l.venvInterpreter(venv)
		if env := probe.derive(interp, venv); env.checkInterpreter() == nil {
			r.logger.Debug("default toolchain from VIRTUAL_ENV", "interpreter", interp)
			return env
		}
		r.logger.Debug("VIRTUAL_ENV has no interpreter, ignoring", "dir", venv)
	}

	for _, name := range []string{"python3", interpreterName} {
		if p, err := r.lookPath(name); err == nil {
			r.logger.Debug("default toolchain from PATH", "interpreter", p)
			return probe.derive(p, "")
		}
	}

	r.logger.Debug("no interpreter on PATH, deferring lookup to invocation")
	return probe.derive(interpreterName, "")
}

// All binds every entry. The first failure, in label order, is returned and
// no Environments are.
func (r *Registry) All() (map[config.VersionLabel]*Environment, error) {
	envs := make(map[config.VersionLabel]*Environment, len(r.entries))
	for _, label := range r.Labels() {
		env, err := r.Resolve(label)
		if err != nil {
			return nil, err
		}
		envs[label] = env
	}
	return envs, nil
}

// Labels returns the defined labels, sorted.
func (r *Registry) Labels() []config.VersionLabel {
	labels := slices.Collect(maps.Keys(r.entries))
	slices.SortFunc(labels, func(a, b config.VersionLabel) int { return strings.Compare(string(a), string(b)) })
	return labels
}

// Entry returns the definition behind label.
func (r *Registry) Entry(label config.VersionLabel) (config.Entry, bool) {
	e, ok := r.entries[label]
	return e, ok
}
