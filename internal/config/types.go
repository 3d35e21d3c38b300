// SPDX-License-Identifier: MPL-2.0

package config

import (
	"errors"
	"fmt"
	"slices"
	"time"
)

const (
	// VenvToolVenv creates virtual environments with the standard library
	// venv module.
	VenvToolVenv VenvTool = "venv"
	// VenvToolVirtualenv creates virtual environments with the third-party
	// virtualenv package.
	VenvToolVirtualenv VenvTool = "virtualenv"

	// LogLevelDebug enables debug output, including every spawned command line.
	LogLevelDebug LogLevel = "debug"
	// LogLevelInfo logs informational messages.
	LogLevelInfo LogLevel = "info"
	// LogLevelWarn logs warnings and errors only.
	LogLevelWarn LogLevel = "warn"
	// LogLevelError logs errors only.
	LogLevelError LogLevel = "error"
)

var (
	// ErrInvalidVenvTool is returned when a VenvTool value is not recognized.
	ErrInvalidVenvTool = errors.New("invalid virtual environment tool")
	// ErrInvalidLogLevel is returned when a LogLevel value is not recognized.
	ErrInvalidLogLevel = errors.New("invalid log level")
	// ErrInvalidConfig is the sentinel error wrapped by InvalidConfigError.
	ErrInvalidConfig = errors.New("invalid config")
)

type (
	// VenvTool selects the command used to create virtual environments.
	VenvTool string

	// LogLevel is the minimum level written by the CLI logger.
	LogLevel string

	// Config holds the cish settings.
	Config struct {
		// SearchPaths replaces the default toolchain search path list when
		// non-empty. Later entries win.
		SearchPaths []string `json:"search_paths" mapstructure:"search_paths"`
		// CheckExitCode is the default for Environment.Run exit checking.
		CheckExitCode bool `json:"check_exit_code" mapstructure:"check_exit_code"`
		// Timeout bounds every invocation when positive.
		Timeout time.Duration `json:"timeout" mapstructure:"timeout"`
		// VenvDir is the target of "cish venv" when no directory is given.
		// Relative values resolve against the working directory.
		VenvDir string `json:"venv_dir" mapstructure:"venv_dir"`
		// VenvTool selects venv or virtualenv.
		VenvTool VenvTool `json:"venv_tool" mapstructure:"venv_tool"`
		// TestRunner is the module run by the test convenience.
		TestRunner string `json:"test_runner" mapstructure:"test_runner"`
		// HostSpawn runs toolchains on the host when cish itself is sandboxed.
		HostSpawn bool `json:"host_spawn" mapstructure:"host_spawn"`
		// LogLevel is the CLI log level.
		LogLevel LogLevel `json:"log_level" mapstructure:"log_level"`
	}

	// InvalidConfigError is returned when decoded settings fail validation.
	// It wraps ErrInvalidConfig for errors.Is() compatibility.
	InvalidConfigError struct {
		FieldErrors []error
	}
)

// DefaultConfig returns the built-in settings.
func DefaultConfig() *Config {
	return &Config{
		SearchPaths:   []string{},
		CheckExitCode: true,
		Timeout:       0,
		VenvDir:       "venv",
		VenvTool:      VenvToolVenv,
		TestRunner:    "pytest",
		HostSpawn:     false,
		LogLevel:      LogLevelWarn,
	}
}

// IsValid returns whether the VenvTool is a known tool.
func (t VenvTool) IsValid() (bool, []error) {
	if slices.Contains([]VenvTool{VenvToolVenv, VenvToolVirtualenv}, t) {
		return true, nil
	}
	return false, []error{fmt.Errorf("%w: %q (want venv or virtualenv)", ErrInvalidVenvTool, string(t))}
}

// String returns the string representation of the VenvTool.
func (t VenvTool) String() string { return string(t) }

// IsValid returns whether the LogLevel is a known level.
func (l LogLevel) IsValid() (bool, []error) {
	if slices.Contains([]LogLevel{LogLevelDebug, LogLevelInfo, LogLevelWarn, LogLevelError}, l) {
		return true, nil
	}
	return false, []error{fmt.Errorf("%w: %q", ErrInvalidLogLevel, string(l))}
}

// String returns the string representation of the LogLevel.
func (l LogLevel) String() string { return string(l) }

// Validate checks constraints that also apply to values coming from the
// environment, which bypass the CUE schema.
func (c *Config) Validate() error {
	var errs []error
	if ok, fieldErrs := c.VenvTool.IsValid(); !ok {
		errs = append(errs, fieldErrs...)
	}
	if ok, fieldErrs := c.LogLevel.IsValid(); !ok {
		errs = append(errs, fieldErrs...)
	}
	if c.Timeout < 0 {
		errs = append(errs, fmt.Errorf("timeout must not be negative, got %s", c.Timeout))
	}
	if c.TestRunner == "" {
		errs = append(errs, errors.New("test_runner must not be empty"))
	}
	if len(errs) > 0 {
		return &InvalidConfigError{FieldErrors: errs}
	}
	return nil
}

// Error implements the error interface.
func (e *InvalidConfigError) Error() string {
	return fmt.Sprintf("invalid config: %v", errors.Join(e.FieldErrors...))
}

// Unwrap returns ErrInvalidConfig so callers can use errors.Is for programmatic detection.
func (e *InvalidConfigError) Unwrap() error { return ErrInvalidConfig }
