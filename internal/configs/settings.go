package configs

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/PolarWolf314/jupwallet/internal/utils"
)

// EnvDataDir overrides the default data directory.
const EnvDataDir = "JUPWALLET_HOME"

const defaultDataDir = "~/.solana/jupwallet"

// Settings holds the filesystem layout of one jupwallet installation.
type Settings struct {
	DataDir    string
	ConfigPath string
	DBDir      string
	SessionDir string
	AuditPath  string
}

// NewSettings resolves the data directory. An empty dataDir falls back to
// JUPWALLET_HOME and then to ~/.solana/jupwallet.
func NewSettings(dataDir string) (*Settings, error) {
	if dataDir == "" {
		dataDir = os.Getenv(EnvDataDir)
	}
	if dataDir == "" {
		dataDir = defaultDataDir
	}

	dataDir, err := utils.ExpandHome(dataDir)
	if err != nil {
		return nil, err
	}
	dataDir, err = filepath.Abs(dataDir)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve data directory: %w", err)
	}

	return &Settings{
		DataDir:    dataDir,
		ConfigPath: filepath.Join(dataDir, "config.toml"),
		DBDir:      filepath.Join(dataDir, "data"),
		SessionDir: filepath.Join(dataDir, "session"),
		AuditPath:  filepath.Join(dataDir, "audit.jsonl"),
	}, nil
}

// DefaultDatabasePath returns the store file used when the config leaves
// database.path empty.
func (s *Settings) DefaultDatabasePath(driver string) string {
	name := "jupwallet.db"
	if driver == "bolt" {
		name = "jupwallet.bolt"
	}
	return filepath.Join(s.DBDir, name)
}

// EnsureDirectories creates the data, database and session directories
// with owner-only permissions.
func (s *Settings) EnsureDirectories() error {
	for _, dir := range []string{s.DataDir, s.DBDir, s.SessionDir} {
		if err := utils.EnsurePrivateDir(dir); err != nil {
			return err
		}
	}
	return nil
}

// HasConfig reports whether a config file exists in the data directory.
func (s *Settings) HasConfig() bool {
	_, err := os.Stat(s.ConfigPath)
	return err == nil
}
