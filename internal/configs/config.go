package configs

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"

	kerrors "github.com/PolarWolf314/jupwallet/internal/errors"
)

const (
	minSessionKeyBytes = 32
	maxSessionKeyBytes = 1024
)

type Config struct {
	Installation Installation   `toml:"installation"`
	Database     DatabaseConfig `toml:"database"`
	Security     SecurityConfig `toml:"security"`
	Logging      LoggingConfig  `toml:"logging"`
}

type Installation struct {
	ID        string    `toml:"id"`
	CreatedAt time.Time `toml:"created_at"`
}

type DatabaseConfig struct {
	// Driver is "sqlite" or "bolt".
	Driver string `toml:"driver"`
	// Path defaults to <data>/data/jupwallet.db (or .bolt).
	Path string `toml:"path,omitempty"`
}

type SecurityConfig struct {
	SessionKeyBytes int `toml:"session_key_bytes"`
}

type LoggingConfig struct {
	Verbose bool `toml:"verbose"`
	Debug   bool `toml:"debug"`
}

// DefaultConfig returns the configuration used when no file exists.
func DefaultConfig() *Config {
	return &Config{
		Database: DatabaseConfig{Driver: "sqlite"},
		Security: SecurityConfig{SessionKeyBytes: 64},
	}
}

// NewInstallationConfig returns the defaults stamped with a fresh
// installation id, as written by "jupwallet init".
func NewInstallationConfig() *Config {
	cfg := DefaultConfig()
	cfg.Installation = Installation{
		ID:        uuid.New().String(),
		CreatedAt: time.Now().UTC().Truncate(time.Second),
	}
	return cfg
}

// LoadConfig reads the config file, filling unset values with defaults.
// A missing file yields DefaultConfig.
func LoadConfig(s *Settings) (*Config, error) {
	cfg := DefaultConfig()

	if _, err := os.Stat(s.ConfigPath); errors.Is(err, os.ErrNotExist) {
		return cfg, nil
	}

	if err := LoadTOML(s.ConfigPath, cfg); err != nil {
		return nil, fmt.Errorf("%w: %s: %v", kerrors.ErrInvalidConfig, s.ConfigPath, err)
	}

	defaults := DefaultConfig()
	if cfg.Database.Driver == "" {
		cfg.Database.Driver = defaults.Database.Driver
	}
	if cfg.Security.SessionKeyBytes == 0 {
		cfg.Security.SessionKeyBytes = defaults.Security.SessionKeyBytes
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// SaveConfig writes cfg to the settings' config path.
func SaveConfig(s *Settings, cfg *Config) error {
	if err := SaveTOML(s.ConfigPath, cfg); err != nil {
		return fmt.Errorf("failed to save config: %w", err)
	}
	return nil
}

// Validate checks the values a user can get wrong by hand-editing the file.
func (c *Config) Validate() error {
	switch c.Database.Driver {
	case "sqlite", "bolt":
	default:
		return fmt.Errorf("%w: %q", kerrors.ErrUnknownDriver, c.Database.Driver)
	}

	if n := c.Security.SessionKeyBytes; n < minSessionKeyBytes || n > maxSessionKeyBytes {
		return fmt.Errorf("%w: security.session_key_bytes must be between %d and %d, got %d",
			kerrors.ErrInvalidConfig, minSessionKeyBytes, maxSessionKeyBytes, n)
	}
	return nil
}

// DatabasePath returns the configured store path, resolving relative paths
// against the data directory.
func (c *Config) DatabasePath(s *Settings) string {
	path := c.Database.Path
	if path == "" {
		return s.DefaultDatabasePath(c.Database.Driver)
	}
	if !filepath.IsAbs(path) {
		path = filepath.Join(s.DataDir, path)
	}
	return path
}
