package workflows

import (
	"context"
	"fmt"

	"github.com/PolarWolf314/jupwallet/internal/audit"
	"github.com/PolarWolf314/jupwallet/internal/configs"
	kerrors "github.com/PolarWolf314/jupwallet/internal/errors"
	logger "github.com/PolarWolf314/jupwallet/internal/logging"
	"github.com/PolarWolf314/jupwallet/internal/master"
	"github.com/PolarWolf314/jupwallet/internal/secrets"
	"github.com/PolarWolf314/jupwallet/internal/session"
	"github.com/PolarWolf314/jupwallet/internal/store"
	"github.com/PolarWolf314/jupwallet/internal/wallet"
)

// Key sources recorded in audit entries and results.
const (
	SourcePassword = "password"
	SourceSession  = "session"
)

// EnvOptions configures OpenEnv.
type EnvOptions struct {
	// DataDir overrides JUPWALLET_HOME and the default data directory.
	DataDir string

	Logger logger.Logger

	// KDF defaults to secrets.DefaultKDF. Tests pass cheaper parameters.
	KDF *secrets.KDF

	// MachineKey defaults to session.HostKeySource.
	MachineKey session.MachineKeySource
}

// Env is a fully wired jupwallet installation.
type Env struct {
	Settings *configs.Settings
	Config   *configs.Config
	Store    store.Store
	Master   *master.Service
	Session  *session.Service
	Wallets  *wallet.Service
	Audit    *audit.Log
	Log      logger.Logger
}

// OpenEnv opens an initialized installation. It fails with
// ErrNotInitialized when the data directory has no config file.
func OpenEnv(opts EnvOptions) (*Env, error) {
	settings, err := configs.NewSettings(opts.DataDir)
	if err != nil {
		return nil, err
	}
	if !settings.HasConfig() {
		return nil, kerrors.ErrNotInitialized
	}
	return openEnv(settings, opts)
}

func openEnv(settings *configs.Settings, opts EnvOptions) (*Env, error) {
	cfg, err := configs.LoadConfig(settings)
	if err != nil {
		return nil, err
	}

	log := opts.Logger
	log.Verbose = log.Verbose || cfg.Logging.Verbose
	log.Debug = log.Debug || cfg.Logging.Debug

	dbPath := cfg.DatabasePath(settings)
	log.Debugf("Opening %s store at %s", cfg.Database.Driver, dbPath)

	st, err := store.Open(cfg.Database.Driver, dbPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open record store: %w", err)
	}

	kdf := opts.KDF
	if kdf == nil {
		kdf = secrets.DefaultKDF()
	}

	m := master.New(st, kdf, log, master.WithSessionKeyLength(cfg.Security.SessionKeyBytes))

	sessionOpts := []session.Option{session.WithKeyLength(cfg.Security.SessionKeyBytes)}
	if opts.MachineKey != nil {
		sessionOpts = append(sessionOpts, session.WithMachineKeySource(opts.MachineKey))
	}

	return &Env{
		Settings: settings,
		Config:   cfg,
		Store:    st,
		Master:   m,
		Session:  session.New(m, st, settings.SessionDir, log, sessionOpts...),
		Wallets:  wallet.NewService(st, m, secrets.NewSealer(kdf), log),
		Audit:    audit.New(settings.AuditPath),
		Log:      log,
	}, nil
}

// Close releases the record store and drops cached keys.
func (e *Env) Close() error {
	e.Master.ClearSession()
	return e.Store.Close()
}

// authorize makes the session key available to the wallet service. With a
// password nothing needs to happen, the services unwrap the key themselves.
// Without one the persisted session, if any, seeds the master service.
func (e *Env) authorize(ctx context.Context, password []byte) (string, error) {
	if password != nil {
		return SourcePassword, nil
	}
	if e.Master.IsAuthenticated() {
		return SourceSession, nil
	}

	key, ok := e.Session.SessionKey(ctx)
	if !ok {
		initialized, err := e.Master.IsInitialized(ctx)
		if err != nil {
			return "", err
		}
		if !initialized {
			return "", kerrors.ErrNotInitialized
		}
		return "", kerrors.ErrSessionNotAuthenticated
	}
	defer key.Destroy()

	e.Master.SetSessionKey(key)
	e.Log.Debugf("Using persisted session from %s", e.Session.Path())
	return SourceSession, nil
}
