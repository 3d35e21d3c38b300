// SPDX-License-Identifier: MPL-2.0

package cmd

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/rogpeppe/go-internal/testscript"
)

func TestMain(m *testing.M) {
	testscript.Main(m, map[string]func(){
		"cish": Execute,
	})
}

// TestScripts runs the testdata/*.txtar scripts against the cish command.
// Each script gets its own settings directory ($WORK/config) and an
// overriding toolchain file at $WORK/toolchains.json.
func TestScripts(t *testing.T) {
	t.Parallel()

	testscript.Run(t, testscript.Params{
		Dir:                 "testdata",
		RequireExplicitExec: true,
		Setup: func(env *testscript.Env) error {
			env.Setenv("CISH_CONFIG_DIR", filepath.Join(env.WorkDir, "config"))
			env.Setenv("CISH_TOOLCHAINS", filepath.Join(env.WorkDir, "toolchains.json"))
			env.Setenv("HOME", filepath.Join(env.WorkDir, "home"))
			env.Setenv("NO_COLOR", "1")
			return os.MkdirAll(filepath.Join(env.WorkDir, "home"), 0o755)
		},
	})
}
