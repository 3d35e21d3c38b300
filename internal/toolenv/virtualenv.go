// SPDX-License-Identifier: MPL-2.0

package toolenv

import (
	"context"
	"fmt"
	"path/filepath"

	"github.com/cish/cish/internal/config"
	"github.com/cish/cish/internal/fsops"
)

type (
	// VirtualEnvFactory creates virtual environments from a base Environment.
	VirtualEnvFactory struct {
		tool  config.VenvTool
		clear bool
	}

	// FactoryOption configures a VirtualEnvFactory.
	FactoryOption func(*VirtualEnvFactory)
)

// NewVirtualEnvFactory creates a factory that uses the venv module unless
// configured otherwise.
func NewVirtualEnvFactory(opts ...FactoryOption) *VirtualEnvFactory {
	f := &VirtualEnvFactory{tool: config.VenvToolVenv}
	for _, opt := range opts {
		opt(f)
	}
	return f
}

// WithTool selects venv or virtualenv. An empty tool keeps the default.
func WithTool(tool config.VenvTool) FactoryOption {
	return func(f *VirtualEnvFactory) {
		if tool != "" {
			f.tool = tool
		}
	}
}

// WithClear removes the target directory before creating the environment.
func WithClear(clear bool) FactoryOption {
	return func(f *VirtualEnvFactory) { f.clear = clear }
}

// Tool returns the configured creation tool.
func (f *VirtualEnvFactory) Tool() config.VenvTool { return f.tool }

// Create runs the creation tool with base's interpreter and returns an
// Environment bound to the new interpreter in targetDir. Creation is always
// attempted, even when targetDir already holds an environment. A failing
// tool yields *CommandFailedError; a missing resulting interpreter yields
// *procexec.ExecutableNotFoundError.
func (f *VirtualEnvFactory) Create(ctx context.Context, base *Environment, targetDir string) (*Environment, error) {
	if ok, errs := f.tool.IsValid(); !ok {
		return nil, errs[0]
	}

	dir, err := filepath.Abs(targetDir)
	if err != nil {
		return nil, fmt.Errorf("resolve virtual environment directory %s: %w", targetDir, err)
	}

	if f.clear {
		if err := fsops.Remove(dir); err != nil {
			return nil, err
		}
	}
	if err := fsops.Mkdirs(filepath.Dir(dir)); err != nil {
		return nil, err
	}

	args := []string{"-m", string(f.tool)}
	if f.tool == config.VenvToolVirtualenv {
		args = append(args, "-p", base.Interpreter())
	}
	args = append(args, dir)

	base.logger.Info("creating virtual environment", "dir", dir, "tool", f.tool, "base", base.Interpreter())
	if _, err := base.Run(ctx, interpreterName, args, WithCheckExitCode(true)); err != nil {
		return nil, fmt.Errorf("create virtual environment %s: %w", dir, err)
	}

	venv := base.derive(base.platform.layout().venvInterpreter(dir), dir)
	if err := venv.checkInterpreter(); err != nil {
		return nil, fmt.Errorf("create virtual environment %s: %w", dir, err)
	}
	return venv, nil
}
