package workflows

import (
	"github.com/PolarWolf314/jupwallet/internal/configs"
)

// ConfigResult describes the effective configuration.
type ConfigResult struct {
	Settings     *configs.Settings
	Config       *configs.Config
	DatabasePath string

	// Rendered is the config as TOML.
	Rendered string

	// FromFile is false when no config file exists and defaults are shown.
	FromFile bool

	// Written is true when ConfigInit wrote a file.
	Written bool
}

// ConfigShow loads the effective configuration without opening the store.
func ConfigShow(dataDir string) (*ConfigResult, error) {
	settings, err := configs.NewSettings(dataDir)
	if err != nil {
		return nil, err
	}

	cfg, err := configs.LoadConfig(settings)
	if err != nil {
		return nil, err
	}
	return configResult(settings, cfg, settings.HasConfig())
}

// ConfigInit writes a default config file. An existing file is left alone
// unless overwrite is set, in which case its installation id is kept.
func ConfigInit(dataDir string, overwrite bool) (*ConfigResult, error) {
	settings, err := configs.NewSettings(dataDir)
	if err != nil {
		return nil, err
	}

	if settings.HasConfig() && !overwrite {
		cfg, err := configs.LoadConfig(settings)
		if err != nil {
			return nil, err
		}
		return configResult(settings, cfg, true)
	}

	cfg := configs.NewInstallationConfig()
	if settings.HasConfig() {
		if existing, err := configs.LoadConfig(settings); err == nil && existing.Installation.ID != "" {
			cfg.Installation = existing.Installation
		}
	}

	if err := settings.EnsureDirectories(); err != nil {
		return nil, err
	}
	if err := configs.SaveConfig(settings, cfg); err != nil {
		return nil, err
	}

	result, err := configResult(settings, cfg, true)
	if err != nil {
		return nil, err
	}
	result.Written = true
	return result, nil
}

func configResult(settings *configs.Settings, cfg *configs.Config, fromFile bool) (*ConfigResult, error) {
	rendered, err := configs.EncodeTOML(cfg)
	if err != nil {
		return nil, err
	}
	return &ConfigResult{
		Settings:     settings,
		Config:       cfg,
		DatabasePath: cfg.DatabasePath(settings),
		Rendered:     rendered,
		FromFile:     fromFile,
	}, nil
}
