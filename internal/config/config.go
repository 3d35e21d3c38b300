// SPDX-License-Identifier: MPL-2.0

package config

import (
	"context"
	_ "embed"
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"time"

	"github.com/cish/cish/internal/issue"
	"github.com/cish/cish/pkg/cueutil"
	"github.com/cish/cish/pkg/platform"

	"github.com/spf13/viper"
)

const (
	// AppName is the application name.
	AppName = "cish"
	// ConfigFileName is the name of the settings file (without extension).
	ConfigFileName = "config"
	// ConfigFileExt is the settings file extension.
	ConfigFileExt = "cue"
	// EnvPrefix prefixes environment variables that override settings.
	EnvPrefix = "CISH"
	// EnvConfigDir names the environment variable that relocates ConfigDir.
	EnvConfigDir = "CISH_CONFIG_DIR"
)

//go:embed config_schema.cue
var configSchema []byte

// ConfigDir returns the cish configuration directory using platform-specific
// conventions: Windows uses %APPDATA%, macOS uses ~/Library/Application Support,
// and Linux/others use $XDG_CONFIG_HOME (defaulting to ~/.config).
// $CISH_CONFIG_DIR takes precedence over all of them.
//
//nolint:revive // ConfigDir is more descriptive than Dir for external callers
func ConfigDir() (string, error) {
	if configDirOverride != "" {
		return configDirOverride, nil
	}
	if dir := os.Getenv(EnvConfigDir); dir != "" {
		return dir, nil
	}

	var configDir string

	switch runtime.GOOS {
	case platform.Windows:
		configDir = os.Getenv("APPDATA")
		if configDir == "" {
			configDir = filepath.Join(os.Getenv("USERPROFILE"), "AppData", "Roaming")
		}
	case platform.Darwin:
		home, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("failed to get home directory: %w", err)
		}
		configDir = filepath.Join(home, "Library", "Application Support")
	default: // Linux and others
		configDir = os.Getenv("XDG_CONFIG_HOME")
		if configDir == "" {
			home, err := os.UserHomeDir()
			if err != nil {
				return "", fmt.Errorf("failed to get home directory: %w", err)
			}
			configDir = filepath.Join(home, ".config")
		}
	}

	return filepath.Join(configDir, AppName), nil
}

// SystemConfigDir returns the machine-wide configuration directory:
// /etc/cish on POSIX and %ProgramData%\cish on Windows.
func SystemConfigDir() string {
	if runtime.GOOS == platform.Windows {
		programData := os.Getenv("ProgramData")
		if programData == "" {
			programData = `C:\ProgramData`
		}
		return filepath.Join(programData, AppName)
	}
	return filepath.Join("/etc", AppName)
}

// loadWithOptions performs option-driven settings loading without mutating
// package-level state. It returns the path of the file that was read, or ""
// when defaults were used.
func loadWithOptions(ctx context.Context, opts LoadOptions) (*Config, string, error) {
	select {
	case <-ctx.Done():
		return nil, "", fmt.Errorf("load config canceled: %w", ctx.Err())
	default:
	}

	v := viper.New()

	defaults := DefaultConfig()
	v.SetDefault("search_paths", defaults.SearchPaths)
	v.SetDefault("check_exit_code", defaults.CheckExitCode)
	v.SetDefault("timeout", defaults.Timeout)
	v.SetDefault("venv_dir", defaults.VenvDir)
	v.SetDefault("venv_tool", string(defaults.VenvTool))
	v.SetDefault("test_runner", defaults.TestRunner)
	v.SetDefault("host_spawn", defaults.HostSpawn)
	v.SetDefault("log_level", string(defaults.LogLevel))

	// CISH_CHECK_EXIT_CODE=false etc. Only keys with a default are bound,
	// which is every key above.
	v.SetEnvPrefix(EnvPrefix)
	v.AutomaticEnv()

	if opts.ConfigFilePath != "" && !fileExists(opts.ConfigFilePath) {
		return nil, "", issue.NewErrorContext().
			WithOperation("load configuration").
			WithResource(opts.ConfigFilePath).
			WithSuggestion("Verify the file path is correct").
			WithSuggestion("Use 'cish config path' to see where settings are read from").
			Wrap(fmt.Errorf("config file not found: %s", opts.ConfigFilePath)).
			BuildError()
	}

	cuePath, err := settingsPath(opts)
	if err != nil {
		return nil, "", err
	}

	resolvedPath := ""
	if fileExists(cuePath) {
		if err := loadCUEIntoViper(v, cuePath); err != nil {
			return nil, "", issue.NewErrorContext().
				WithOperation("load configuration").
				WithResource(cuePath).
				WithSuggestion("Check that the file contains valid CUE syntax").
				WithSuggestion("Verify the configuration values match the expected schema").
				WithSuggestion("Run 'cish config show' to see every supported key").
				Wrap(err).
				BuildError()
		}
		resolvedPath = cuePath
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, "", fmt.Errorf("failed to parse config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, "", issue.NewErrorContext().
			WithOperation("validate configuration").
			WithResource(resolvedPath).
			WithSuggestion("Check CISH_* environment variables for typos").
			Wrap(err).
			BuildError()
	}

	return &cfg, resolvedPath, nil
}

// settingsPath returns the settings file selected by opts.
func settingsPath(opts LoadOptions) (string, error) {
	if opts.ConfigFilePath != "" {
		return opts.ConfigFilePath, nil
	}
	cfgDir, err := configDirWithOverride(opts.ConfigDirPath)
	if err != nil {
		return "", err
	}
	return filepath.Join(cfgDir, ConfigFileName+"."+ConfigFileExt), nil
}

// configDirWithOverride resolves the configuration directory, honoring
// explicit provider options before platform defaults.
func configDirWithOverride(configDirPath string) (string, error) {
	if configDirPath != "" {
		return configDirPath, nil
	}

	return ConfigDir()
}

// loadCUEIntoViper parses a CUE file, validates it against the #Config schema,
// and merges its contents into Viper so that environment overrides still apply.
func loadCUEIntoViper(v *viper.Viper, path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("failed to read config file: %w", err)
	}

	result, err := cueutil.ParseAndDecode[map[string]any](configSchema, data, "#Config", cueutil.WithFilename(path))
	if err != nil {
		return err
	}

	if err := v.MergeConfigMap(*result.Value); err != nil {
		return fmt.Errorf("failed to merge config: %w", err)
	}

	return nil
}

// fileExists checks if a file exists and is not a directory
func fileExists(path string) bool {
	info, err := os.Stat(path)
	if os.IsNotExist(err) {
		return false
	}
	return err == nil && !info.IsDir()
}

// CreateDefaultConfig writes a settings file with the built-in defaults into
// dir (ConfigDir when empty). An existing file is left untouched; the
// returned bool reports whether a file was written.
func CreateDefaultConfig(dir string) (string, bool, error) {
	cfgDir, err := configDirWithOverride(dir)
	if err != nil {
		return "", false, err
	}

	cfgPath := filepath.Join(cfgDir, ConfigFileName+"."+ConfigFileExt)
	if _, err := os.Stat(cfgPath); err == nil {
		return cfgPath, false, nil
	}

	if err := Save(cfgDir, DefaultConfig()); err != nil {
		return "", false, err
	}
	return cfgPath, true, nil
}

// Save writes cfg as config.cue into dir (ConfigDir when empty).
func Save(dir string, cfg *Config) error {
	cfgDir, err := configDirWithOverride(dir)
	if err != nil {
		return err
	}

	if err := os.MkdirAll(cfgDir, 0o755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	cfgPath := filepath.Join(cfgDir, ConfigFileName+"."+ConfigFileExt)
	if err := os.WriteFile(cfgPath, []byte(GenerateCUE(cfg)), 0o644); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}

	return nil
}

// GenerateCUE generates a CUE representation of the settings.
func GenerateCUE(cfg *Config) string {
	var sb strings.Builder

	sb.WriteString("// cish settings\n")
	sb.WriteString("// Environment variables (CISH_CHECK_EXIT_CODE, CISH_TIMEOUT, ...) override these values.\n\n")

	if len(cfg.SearchPaths) > 0 {
		sb.WriteString("search_paths: [\n")
		for _, p := range cfg.SearchPaths {
			fmt.Fprintf(&sb, "\t%q,\n", p)
		}
		sb.WriteString("]\n")
	} else {
		sb.WriteString("// search_paths: [\"/etc/cish/toolchains.json\", \"~/toolchains.json\"]\n")
	}

	fmt.Fprintf(&sb, "check_exit_code: %v\n", cfg.CheckExitCode)
	if cfg.Timeout > 0 {
		fmt.Fprintf(&sb, "timeout: %q\n", cfg.Timeout.String())
	} else {
		sb.WriteString("// timeout: \"10m\"\n")
	}
	fmt.Fprintf(&sb, "venv_dir: %q\n", cfg.VenvDir)
	fmt.Fprintf(&sb, "venv_tool: %q\n", string(cfg.VenvTool))
	fmt.Fprintf(&sb, "test_runner: %q\n", cfg.TestRunner)
	fmt.Fprintf(&sb, "host_spawn: %v\n", cfg.HostSpawn)
	fmt.Fprintf(&sb, "log_level: %q\n", string(cfg.LogLevel))

	return sb.String()
}

// TimeoutString renders a timeout for display; zero means unlimited.
func TimeoutString(d time.Duration) string {
	if d <= 0 {
		return "none"
	}
	return d.String()
}
