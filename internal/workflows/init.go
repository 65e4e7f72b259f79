package workflows

import (
	"context"
	"errors"
	"fmt"
	"os"

	"github.com/PolarWolf314/jupwallet/internal/audit"
	"github.com/PolarWolf314/jupwallet/internal/configs"
	kerrors "github.com/PolarWolf314/jupwallet/internal/errors"
)

// InitOptions configures the init workflow.
type InitOptions struct {
	EnvOptions

	// Password is the new master password.
	Password []byte

	// Driver selects the record store, "sqlite" or "bolt". Empty keeps the
	// default or the value of an existing config file.
	Driver string

	// Force wipes an existing installation first. Every stored wallet is lost.
	Force bool

	// StartSession persists a session right away so agents can run without
	// the password.
	StartSession bool
}

// InitResult contains the outcome of an init operation.
type InitResult struct {
	DataDir        string
	ConfigPath     string
	DatabasePath   string
	InstallationID string
	SessionStarted bool

	// Reinitialized is true when Force replaced an existing installation.
	Reinitialized bool
}

// Init creates the data directory, config file and master secret.
//
// Returns ErrEmptyPassword for an empty password and ErrAlreadyInitialized
// if a master secret exists and Force is not set.
func Init(ctx context.Context, opts InitOptions) (*InitResult, error) {
	if len(opts.Password) == 0 {
		return nil, kerrors.ErrEmptyPassword
	}

	settings, err := configs.NewSettings(opts.DataDir)
	if err != nil {
		return nil, err
	}

	result := &InitResult{DataDir: settings.DataDir, ConfigPath: settings.ConfigPath}

	if settings.HasConfig() {
		initialized, err := isInitialized(ctx, settings, opts.EnvOptions)
		if err != nil && !opts.Force {
			return nil, err
		}
		if initialized || err != nil {
			if !opts.Force {
				return nil, kerrors.ErrAlreadyInitialized
			}
			opts.Logger.Infof("Removing existing installation at %s", settings.DataDir)
			if err := os.RemoveAll(settings.DataDir); err != nil {
				return nil, fmt.Errorf("failed to remove existing installation: %w", err)
			}
			result.Reinitialized = true
		}
	}

	_, statErr := os.Stat(settings.DataDir)
	createdDataDir := errors.Is(statErr, os.ErrNotExist)
	succeeded := false
	defer func() {
		if !succeeded && createdDataDir {
			os.RemoveAll(settings.DataDir)
		}
	}()

	if err := settings.EnsureDirectories(); err != nil {
		return nil, err
	}

	cfg, err := configs.LoadConfig(settings)
	if err != nil {
		return nil, err
	}
	if cfg.Installation.ID == "" {
		fresh := configs.NewInstallationConfig()
		cfg.Installation = fresh.Installation
	}
	if opts.Driver != "" {
		cfg.Database.Driver = opts.Driver
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if err := configs.SaveConfig(settings, cfg); err != nil {
		return nil, err
	}
	opts.Logger.Infof("Wrote config to %s", settings.ConfigPath)

	env, err := openEnv(settings, opts.EnvOptions)
	if err != nil {
		return nil, err
	}
	defer env.Close()

	err = env.Master.Initialize(ctx, opts.Password)
	env.Audit.Outcome(audit.Entry{Operation: audit.OpInit}, err)
	if err != nil {
		return nil, err
	}

	// A session file left from a lost store holds a key the new record
	// never wrapped.
	if err := env.Session.Clear(); err != nil {
		return nil, err
	}

	if opts.StartSession {
		err := env.Session.Start(ctx, opts.Password)
		env.Audit.Outcome(audit.Entry{Operation: audit.OpSessionStart, Source: SourcePassword}, err)
		if err != nil {
			return nil, fmt.Errorf("master password set but session could not be started: %w", err)
		}
		result.SessionStarted = true
	}

	succeeded = true
	result.DatabasePath = cfg.DatabasePath(settings)
	result.InstallationID = cfg.Installation.ID
	return result, nil
}

func isInitialized(ctx context.Context, settings *configs.Settings, opts EnvOptions) (bool, error) {
	env, err := openEnv(settings, opts)
	if err != nil {
		return false, err
	}
	defer env.Close()
	return env.Master.IsInitialized(ctx)
}
