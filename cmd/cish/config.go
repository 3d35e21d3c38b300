// SPDX-License-Identifier: MPL-2.0

package cmd

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/cish/cish/internal/config"
	"github.com/cish/cish/internal/issue"
)

// newConfigCommand creates the `cish config` command tree.
func newConfigCommand(app *App) *cobra.Command {
	cfgCmd := &cobra.Command{
		Use:   "config",
		Short: "Manage cish settings",
		Long: `Manage cish settings.

Settings are stored in config.cue inside the config directory:
  - Linux: ~/.config/cish
  - macOS: ~/Library/Application Support/cish
  - Windows: %APPDATA%\cish
$CISH_CONFIG_DIR overrides the directory and CISH_* variables override
individual keys (for example CISH_CHECK_EXIT_CODE=false).`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return cmd.Help()
		},
	}

	cfgCmd.AddCommand(&cobra.Command{
		Use:   "show",
		Short: "Show the effective settings",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return showConfig(cmd.Context(), app)
		},
	})

	cfgCmd.AddCommand(&cobra.Command{
		Use:   "path",
		Short: "Show the settings file path",
		Args:  cobra.NoArgs,
		RunE: func(*cobra.Command, []string) error {
			return showConfigPath(app)
		},
	})

	cfgCmd.AddCommand(&cobra.Command{
		Use:   "init",
		Short: "Create a settings file with the defaults",
		Args:  cobra.NoArgs,
		RunE: func(*cobra.Command, []string) error {
			return initConfig(app)
		},
	})

	cfgCmd.AddCommand(&cobra.Command{
		Use:   "set <key> <value>",
		Short: "Set a settings value",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			return setConfigValue(cmd.Context(), app, args[0], args[1])
		},
	})

	cfgCmd.AddCommand(&cobra.Command{
		Use:   "dump",
		Short: "Output the effective settings as CUE",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := app.settings(cmd.Context())
			if err != nil {
				return err
			}
			fmt.Fprint(app.stdout, config.GenerateCUE(cfg))
			return nil
		},
	})

	return cfgCmd
}

func showConfig(ctx context.Context, app *App) error {
	cfg, err := app.settings(ctx)
	if err != nil {
		return err
	}
	path, exists, err := app.Config.Path(app.loadOptions())
	if err != nil {
		return err
	}

	w := app.stdout
	key := CmdStyle
	value := SuccessStyle

	fmt.Fprintln(w, TitleStyle.Render("Current Settings"))
	fmt.Fprintln(w)
	if exists {
		fmt.Fprintf(w, "%s: %s\n", key.Render("Settings file"), path)
	} else {
		fmt.Fprintf(w, "%s: %s\n", key.Render("Settings file"), SubtitleStyle.Render("(using defaults)"))
	}
	fmt.Fprintln(w)

	fmt.Fprintf(w, "%s:\n", key.Render("search_paths"))
	if len(cfg.SearchPaths) == 0 {
		fmt.Fprintf(w, "  %s\n", SubtitleStyle.Render("(defaults)"))
	}
	for _, p := range config.SearchPaths(cfg) {
		fmt.Fprintf(w, "  - %s\n", value.Render(p))
	}
	fmt.Fprintf(w, "%s: %s\n", key.Render("check_exit_code"), value.Render(strconv.FormatBool(cfg.CheckExitCode)))
	fmt.Fprintf(w, "%s: %s\n", key.Render("timeout"), value.Render(config.TimeoutString(cfg.Timeout)))
	fmt.Fprintf(w, "%s: %s\n", key.Render("venv_dir"), value.Render(cfg.VenvDir))
	fmt.Fprintf(w, "%s: %s\n", key.Render("venv_tool"), value.Render(string(cfg.VenvTool)))
	fmt.Fprintf(w, "%s: %s\n", key.Render("test_runner"), value.Render(cfg.TestRunner))
	fmt.Fprintf(w, "%s: %s\n", key.Render("host_spawn"), value.Render(strconv.FormatBool(cfg.HostSpawn)))
	fmt.Fprintf(w, "%s: %s\n", key.Render("log_level"), value.Render(string(cfg.LogLevel)))
	return nil
}

func showConfigPath(app *App) error {
	path, exists, err := app.Config.Path(app.loadOptions())
	if err != nil {
		return err
	}
	fmt.Fprintln(app.stdout, path)
	if !exists {
		app.logger.Info("settings file does not exist yet; run 'cish config init'", "path", path)
	}
	return nil
}

func initConfig(app *App) error {
	path, created, err := config.CreateDefaultConfig("")
	if err != nil {
		return issue.NewErrorContext().
			WithOperation("create settings file").
			WithSuggestion("Check that the config directory is writable or set CISH_CONFIG_DIR").
			WithIssue(issue.SettingsLoadFailedId).
			Wrap(err).
			BuildError()
	}
	if !created {
		fmt.Fprintf(app.stdout, "%s Settings file already exists at %s\n", WarningStyle.Render("!"), path)
		return nil
	}
	fmt.Fprintf(app.stdout, "%s Created default settings at %s\n", SuccessStyle.Render("✓"), path)
	return nil
}

func setConfigValue(ctx context.Context, app *App, key, value string) error {
	cfg, err := app.Config.Load(ctx, config.LoadOptions{})
	if err != nil {
		return newServiceError(err, issue.SettingsLoadFailedId)
	}

	switch key {
	case "search_paths":
		cfg.SearchPaths = nil
		for _, p := range strings.Split(value, ",") {
			if p = strings.TrimSpace(p); p != "" {
				cfg.SearchPaths = append(cfg.SearchPaths, p)
			}
		}
	case "check_exit_code", "host_spawn":
		b, err := strconv.ParseBool(value)
		if err != nil {
			return fmt.Errorf("invalid %s %q: want true or false", key, value)
		}
		if key == "check_exit_code" {
			cfg.CheckExitCode = b
		} else {
			cfg.HostSpawn = b
		}
	case "timeout":
		d, err := time.ParseDuration(value)
		if err != nil {
			return fmt.Errorf("invalid timeout %q: %w", value, err)
		}
		cfg.Timeout = d
	case "venv_dir":
		cfg.VenvDir = value
	case "venv_tool":
		cfg.VenvTool = config.VenvTool(value)
	case "test_runner":
		cfg.TestRunner = value
	case "log_level":
		cfg.LogLevel = config.LogLevel(value)
	default:
		return fmt.Errorf("unknown settings key: %s\nValid keys: search_paths, check_exit_code, timeout, venv_dir, venv_tool, test_runner, host_spawn, log_level", key)
	}

	if err := cfg.Validate(); err != nil {
		return err
	}
	if err := config.Save("", cfg); err != nil {
		return fmt.Errorf("failed to save settings: %w", err)
	}

	fmt.Fprintf(app.stdout, "%s %s = %s\n", SuccessStyle.Render("✓"), key, value)
	return nil
}
