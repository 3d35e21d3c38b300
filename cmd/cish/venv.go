// SPDX-License-Identifier: MPL-2.0

package cmd

import (
	"fmt"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/cish/cish/internal/config"
	"github.com/cish/cish/internal/fsops"
	"github.com/cish/cish/internal/issue"
	"github.com/cish/cish/internal/toolenv"
)

func newVenvCommand(app *App) *cobra.Command {
	var (
		tool     string
		clearDir bool
	)

	cmd := &cobra.Command{
		Use:   "venv <label> [dir]",
		Short: "Create a virtual environment from a toolchain",
		Long: `Create a virtual environment in dir (default: the venv_dir setting, "venv")
from the toolchain registered under label and print its interpreter path.
Creation is always attempted, even when dir already holds an environment.`,
		Args: cobra.RangeArgs(1, 2),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			cfg, err := app.settings(ctx)
			if err != nil {
				return err
			}
			reg, _, err := app.registry(ctx, cfg)
			if err != nil {
				return err
			}
			base, err := resolveLabel(reg, config.VersionLabel(args[0]))
			if err != nil {
				return err
			}

			dir := cfg.VenvDir
			if len(args) == 2 {
				dir = args[1]
			}
			if !filepath.IsAbs(dir) {
				cwd, err := fsops.Pwd()
				if err != nil {
					return err
				}
				dir = filepath.Join(cwd, dir)
			}

			venvTool := cfg.VenvTool
			if cmd.Flags().Changed("tool") {
				venvTool = config.VenvTool(tool)
			}

			factory := toolenv.NewVirtualEnvFactory(toolenv.WithTool(venvTool), toolenv.WithClear(clearDir))
			venv, err := factory.Create(ctx, base.WithRunOptions(toolenv.WithOutput(app.stderr, app.stderr)), dir)
			if err != nil {
				return newServiceError(err, issue.VirtualenvFailedId)
			}

			fmt.Fprintln(app.stdout, venv.Interpreter())
			return nil
		},
	}

	cmd.Flags().StringVar(&tool, "tool", "", "creation tool: venv or virtualenv (default from settings)")
	cmd.Flags().BoolVar(&clearDir, "clear", false, "remove the directory before creating the environment")
	return cmd
}
