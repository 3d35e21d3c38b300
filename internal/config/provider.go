// SPDX-License-Identifier: MPL-2.0

package config

import "context"

// LoadOptions defines explicit settings loading inputs.
type LoadOptions struct {
	// ConfigFilePath forces loading from a specific settings file when set.
	// The file must exist.
	ConfigFilePath string
	// ConfigDirPath overrides the config directory lookup when set.
	ConfigDirPath string
}

// Provider loads settings from explicit options.
type Provider interface {
	// Load returns defaults merged with the settings file (when present)
	// and CISH_* environment overrides.
	Load(ctx context.Context, opts LoadOptions) (*Config, error)
	// Path reports the settings file Load reads and whether it exists.
	Path(opts LoadOptions) (string, bool, error)
}

type fileProvider struct{}

// NewProvider creates a settings provider backed by the filesystem.
func NewProvider() Provider {
	return &fileProvider{}
}

func (p *fileProvider) Load(ctx context.Context, opts LoadOptions) (*Config, error) {
	cfg, _, err := loadWithOptions(ctx, opts)
	if err != nil {
		return nil, err
	}
	return cfg, nil
}

func (p *fileProvider) Path(opts LoadOptions) (string, bool, error) {
	path, err := settingsPath(opts)
	if err != nil {
		return "", false, err
	}
	return path, fileExists(path), nil
}
