// SPDX-License-Identifier: MPL-2.0

package cmd

import (
	"context"
	"fmt"
	"io"
	"os"

	"github.com/charmbracelet/fang"
	"github.com/spf13/cobra"
)

var (
	// Version is the semantic version (set via -ldflags).
	Version = "dev"
	// Commit is the git commit hash (set via -ldflags).
	Commit = "unknown"
	// BuildDate is the build timestamp (set via -ldflags).
	BuildDate = "unknown"
)

// NewRootCommand builds the cish command tree around app.
func NewRootCommand(app *App) *cobra.Command {
	rootCmd := &cobra.Command{
		Use:   "cish",
		Short: "Run programs from configured interpreter toolchains",
		Long: TitleStyle.Render("cish") + SubtitleStyle.Render(" - run programs from configured interpreter toolchains") + `

cish maps version labels such as "2.7" or "3.12" to installed Python
interpreters and runs their programs with the right PATH, so build scripts
never hardcode per-machine installation paths.

Toolchains are defined in JSON files mapping a label to an interpreter:
  /etc/cish/toolchains.json, <config dir>/toolchains.json, $CISH_TOOLCHAINS
Later files override earlier ones.

` + SubtitleStyle.Render("Examples:") + `
  cish envs                       List configured toolchains
  cish run 3.12 pip -- install .  Run pip from the 3.12 toolchain
  cish test default -- -x         Run the test runner with the current python
  cish venv 3.12 .venv            Create a virtual environment`,
		PersistentPreRun: func(*cobra.Command, []string) {
			app.configureLogging(nil)
		},
	}

	rootCmd.PersistentFlags().BoolVarP(&app.verbose, "verbose", "v", false, "enable debug logging and full error chains")
	rootCmd.PersistentFlags().StringVar(&app.configPath, "config", "", "settings file (default is <config dir>/config.cue)")

	rootCmd.AddCommand(
		newEnvsCommand(app),
		newWhichCommand(app),
		newRunCommand(app),
		newPythonCommand(app),
		newPipCommand(app),
		newTestCommand(app),
		newVenvCommand(app),
		newConfigCommand(app),
	)
	return rootCmd
}

// getVersionString returns a formatted version string for display.
func getVersionString() string {
	if Version == "dev" {
		return "dev (built from source)"
	}
	return fmt.Sprintf("%s (commit: %s, built: %s)", Version, Commit, BuildDate)
}

// Execute runs the command tree with args and returns the process exit code.
func (a *App) Execute(ctx context.Context, args []string) int {
	rootCmd := NewRootCommand(a)
	rootCmd.SetArgs(args)
	rootCmd.SetIn(a.stdin)
	rootCmd.SetOut(a.stdout)
	rootCmd.SetErr(a.stderr)

	err := fang.Execute(
		ctx,
		rootCmd,
		fang.WithVersion(getVersionString()),
		fang.WithNotifySignal(os.Interrupt),
		fang.WithErrorHandler(func(w io.Writer, _ fang.Styles, err error) {
			a.renderError(w, err)
		}),
	)
	return exitCodeFor(err)
}

// Execute is called by main.main. It builds the production App and exits
// with the code of the executed command.
func Execute() {
	os.Exit(NewApp(Dependencies{}).Execute(context.Background(), os.Args[1:]))
}
