// SPDX-License-Identifier: MPL-2.0

package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/cish/cish/internal/issue"
)

func newWhichCommand(app *App) *cobra.Command {
	var search bool

	cmd := &cobra.Command{
		Use:   "which <label> <program>",
		Short: "Print the path a program resolves to in a toolchain",
		Long: `Print the path "cish run" would execute for program in the toolchain
registered under label. The path is derived from the interpreter location
without touching the filesystem; --search instead looks for an existing file
in the installation and Scripts directories.`,
		Args: cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			env, err := app.environment(cmd.Context(), args[0])
			if err != nil {
				return err
			}

			path := env.ResolveProgram(args[1])
			if search {
				if path, err = env.FindExecutable(args[1]); err != nil {
					return newServiceError(err, issue.ProgramNotFoundId)
				}
			}
			fmt.Fprintln(app.stdout, path)
			return nil
		},
	}

	cmd.Flags().BoolVar(&search, "search", false, "search the filesystem for an existing executable")
	return cmd
}
