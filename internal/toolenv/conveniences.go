// SPDX-License-Identifier: MPL-2.0

package toolenv

import (
	"context"

	"github.com/cish/cish/internal/procexec"
)

// Python runs the interpreter with args.
func Python(ctx context.Context, env *Environment, args ...string) (*procexec.Result, error) {
	return env.Run(ctx, interpreterName, args)
}

// Pip runs "python -m pip" with args, so the pip of this interpreter is used
// even when its script wrapper is missing.
func Pip(ctx context.Context, env *Environment, args ...string) (*procexec.Result, error) {
	return env.Run(ctx, interpreterName, append([]string{"-m", "pip"}, args...))
}

// TestRunner runs the configured test runner module (pytest by default)
// through the interpreter with args.
func TestRunner(ctx context.Context, env *Environment, args ...string) (*procexec.Result, error) {
	return env.Run(ctx, interpreterName, append([]string{"-m", env.testRunner}, args...))
}
