package session

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	kerrors "github.com/PolarWolf314/jupwallet/internal/errors"
	logger "github.com/PolarWolf314/jupwallet/internal/logging"
	"github.com/PolarWolf314/jupwallet/internal/master"
	"github.com/PolarWolf314/jupwallet/internal/secrets"
	"github.com/PolarWolf314/jupwallet/internal/store"
)

// Info describes the session state.
type Info struct {
	// Exists is true when a wrapped session key is stored in the master record.
	Exists      bool
	CreatedAt   time.Time
	WalletCount int
	// FilePresent is true when a session file exists on disk.
	FilePresent bool
}

// Option configures a Service.
type Option func(*Service)

// WithKeyLength sets the size of keys created by GenerateSessionKey.
func WithKeyLength(n int) Option {
	return func(s *Service) {
		if n > 0 {
			s.keyLength = n
		}
	}
}

// WithMachineKeySource replaces the default HostKeySource.
func WithMachineKeySource(src MachineKeySource) Option {
	return func(s *Service) {
		s.machine = src
	}
}

// Service persists the session key between processes.
type Service struct {
	master    *master.Service
	store     store.Store
	machine   MachineKeySource
	path      string
	keyLength int
	log       logger.Logger

	mu     sync.Mutex
	cached *secrets.SealedKey
}

// New returns a Service keeping its session file in sessionDir.
func New(m *master.Service, st store.Store, sessionDir string, log logger.Logger, opts ...Option) *Service {
	s := &Service{
		master:    m,
		store:     st,
		machine:   HostKeySource{},
		path:      filepath.Join(sessionDir, FileName),
		keyLength: secrets.DefaultSessionKeyLength,
		log:       log,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Path returns the session file location.
func (s *Service) Path() string {
	return s.path
}

// GenerateSessionKey replaces the session key with a new random one, wraps
// it under password and persists it. Every wallet sealed under the previous
// key becomes unreadable.
func (s *Service) GenerateSessionKey(ctx context.Context, password []byte) error {
	key, err := secrets.GenerateKey(s.keyLength)
	if err != nil {
		return err
	}
	defer key.Destroy()

	if err := s.master.RewrapSessionKey(ctx, password, key); err != nil {
		return err
	}

	s.remember(key)
	s.log.Debugf("Generated new session key")

	return s.persist(key)
}

// Start recovers the existing session key with password and persists it,
// leaving the master record untouched.
func (s *Service) Start(ctx context.Context, password []byte) error {
	key, err := s.master.SessionKeyWithPassword(ctx, password)
	if err != nil {
		return err
	}
	defer key.Destroy()

	s.remember(key)
	return s.persist(key)
}

// SessionKey returns a copy of the session key from memory or the session
// file. ok is false when no usable session exists, including a session file
// whose key is not the one wrapped in the master record.
func (s *Service) SessionKey(ctx context.Context) (*secrets.Key, bool) {
	s.mu.Lock()
	cached := s.cached
	s.mu.Unlock()

	if !cached.Empty() {
		if key, err := cached.Open(); err == nil {
			return key, true
		}
	}

	if ctx.Err() != nil {
		return nil, false
	}

	key, err := s.load()
	if err != nil {
		if !errors.Is(err, os.ErrNotExist) {
			s.log.Debugf("Ignoring unusable session file %s: %v", s.path, err)
		}
		return nil, false
	}

	matches, err := s.master.MatchesSessionKey(ctx, key)
	if err != nil || !matches {
		key.Destroy()
		if err != nil {
			s.log.Debugf("Ignoring session file %s: %v", s.path, err)
		} else {
			s.log.Debugf("Ignoring session file %s: key does not match the master record", s.path)
		}
		return nil, false
	}

	s.mu.Lock()
	s.cached = secrets.Seal(key)
	s.mu.Unlock()
	return key, true
}

// HasSession reports whether SessionKey would succeed.
func (s *Service) HasSession(ctx context.Context) bool {
	key, ok := s.SessionKey(ctx)
	if ok {
		key.Destroy()
	}
	return ok
}

// Info reports whether a session key exists, when the master record was
// created and how many wallets are stored.
func (s *Service) Info(ctx context.Context) (Info, error) {
	var info Info

	if _, err := os.Stat(s.path); err == nil {
		info.FilePresent = true
	}

	record, err := s.store.FindMasterSecret(ctx)
	if errors.Is(err, store.ErrRecordNotFound) {
		return info, nil
	}
	if err != nil {
		return info, fmt.Errorf("failed to read master secret: %w", err)
	}
	if !record.Complete() {
		return info, fmt.Errorf("%w: master secret record is incomplete", kerrors.ErrIntegrityFailure)
	}

	count, err := s.store.CountWallets(ctx)
	if err != nil {
		return info, err
	}

	info.Exists = true
	info.CreatedAt = record.CreatedAt
	info.WalletCount = count
	return info, nil
}

// Clear removes the session file and forgets the session key in this
// process. It does not change the master record.
func (s *Service) Clear() error {
	s.mu.Lock()
	s.cached = nil
	s.mu.Unlock()
	s.master.ClearSession()

	if err := os.Remove(s.path); err != nil && !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("failed to remove session file: %w", err)
	}
	return nil
}

// Regenerate verifies password, clears the current session and generates a
// new session key. A wrong password leaves everything as it was.
func (s *Service) Regenerate(ctx context.Context, password []byte) error {
	if !s.master.VerifyPassword(ctx, password) {
		initialized, err := s.master.IsInitialized(ctx)
		if err != nil {
			return err
		}
		if !initialized {
			return kerrors.ErrNotInitialized
		}
		return kerrors.ErrInvalidPassword
	}

	if err := s.Clear(); err != nil {
		return err
	}
	return s.GenerateSessionKey(ctx, password)
}

func (s *Service) remember(key *secrets.Key) {
	s.mu.Lock()
	s.cached = secrets.Seal(key)
	s.mu.Unlock()
	s.master.SetSessionKey(key)
}

func (s *Service) persist(key *secrets.Key) error {
	machineKey, err := s.machine.MachineKey()
	if err != nil {
		return err
	}
	defer machineKey.Destroy()

	data, err := encodeSessionFile(key, machineKey)
	if err != nil {
		return fmt.Errorf("failed to encrypt session file: %w", err)
	}
	if err := writeFileAtomic(s.path, data); err != nil {
		return err
	}

	s.log.Debugf("Session key written to %s", s.path)
	return nil
}

func (s *Service) load() (*secrets.Key, error) {
	data, err := os.ReadFile(s.path)
	if err != nil {
		return nil, err
	}

	machineKey, err := s.machine.MachineKey()
	if err != nil {
		return nil, err
	}
	defer machineKey.Destroy()

	return decodeSessionFile(data, machineKey)
}
