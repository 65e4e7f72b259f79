package master

import (
	"context"
	"encoding/hex"
	"errors"
	"fmt"
	"sync"

	kerrors "github.com/PolarWolf314/jupwallet/internal/errors"
	logger "github.com/PolarWolf314/jupwallet/internal/logging"
	"github.com/PolarWolf314/jupwallet/internal/secrets"
	"github.com/PolarWolf314/jupwallet/internal/store"
)

// State is the lifecycle state of the master password.
type State int

const (
	// Uninitialized means no master secret record exists.
	Uninitialized State = iota
	// Initialized means the record exists but no session key is cached.
	Initialized
	// Authenticated means the session key is cached in this process.
	Authenticated
)

func (s State) String() string {
	switch s {
	case Uninitialized:
		return "uninitialized"
	case Initialized:
		return "initialized"
	case Authenticated:
		return "authenticated"
	default:
		return fmt.Sprintf("State(%d)", int(s))
	}
}

// Option configures a Service.
type Option func(*Service)

// WithSessionKeyLength sets the size in bytes of session keys created by
// Initialize. Non-positive values keep the default.
func WithSessionKeyLength(n int) Option {
	return func(s *Service) {
		if n > 0 {
			s.sessionKeyLength = n
		}
	}
}

// Service manages the master secret record and the in-process session key.
// It is safe for concurrent use.
type Service struct {
	store            store.MasterSecretStore
	kdf              *secrets.KDF
	log              logger.Logger
	sessionKeyLength int

	mu     sync.Mutex
	cached *secrets.SealedKey
}

// New returns a Service backed by st.
func New(st store.MasterSecretStore, kdf *secrets.KDF, log logger.Logger, opts ...Option) *Service {
	s := &Service{
		store:            st,
		kdf:              kdf,
		log:              log,
		sessionKeyLength: secrets.DefaultSessionKeyLength,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Initialize creates the master secret record for password with a fresh
// random session key. It does not authenticate the process.
func (s *Service) Initialize(ctx context.Context, password []byte) error {
	if len(password) == 0 {
		return kerrors.ErrEmptyPassword
	}
	if err := ctx.Err(); err != nil {
		return err
	}

	_, err := s.store.FindMasterSecret(ctx)
	if err == nil {
		return kerrors.ErrAlreadyInitialized
	}
	if !errors.Is(err, store.ErrRecordNotFound) {
		return fmt.Errorf("failed to check master secret: %w", err)
	}

	verifier, err := s.kdf.HashPassword(password)
	if err != nil {
		return fmt.Errorf("failed to hash master password: %w", err)
	}

	kdfSalt, err := secrets.GenerateSalt(secrets.DefaultSaltLength)
	if err != nil {
		return err
	}

	sessionKey, err := secrets.GenerateKey(s.sessionKeyLength)
	if err != nil {
		return err
	}
	defer sessionKey.Destroy()

	wrapped, err := s.wrap(password, kdfSalt, sessionKey)
	if err != nil {
		return err
	}

	err = s.store.CreateMasterSecret(ctx, &store.MasterSecret{
		PasswordHash:        verifier,
		KDFSalt:             hex.EncodeToString(kdfSalt),
		EncryptedSessionKey: wrapped.Ciphertext,
		SessionNonce:        wrapped.Nonce,
		SessionAuthTag:      wrapped.AuthTag,
		SessionKeyCheck:     secrets.KeyCheck(sessionKey),
	})
	if errors.Is(err, store.ErrRecordExists) {
		return kerrors.ErrAlreadyInitialized
	}
	if err != nil {
		return fmt.Errorf("failed to store master secret: %w", err)
	}

	s.log.Debugf("Master password initialized")
	return nil
}

// IsInitialized reports whether the master secret record exists.
func (s *Service) IsInitialized(ctx context.Context) (bool, error) {
	_, err := s.store.FindMasterSecret(ctx)
	if errors.Is(err, store.ErrRecordNotFound) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("failed to read master secret: %w", err)
	}
	return true, nil
}

// VerifyPassword reports whether password matches the stored verifier. A
// missing record or any read failure yields false.
func (s *Service) VerifyPassword(ctx context.Context, password []byte) bool {
	record, err := s.store.FindMasterSecret(ctx)
	if err != nil {
		if !errors.Is(err, store.ErrRecordNotFound) {
			s.log.Debugf("Failed to read master secret: %v", err)
		}
		return false
	}
	return s.kdf.VerifyPassword(record.PasswordHash, password)
}

// SessionKeyWithPassword unwraps the session key with password without
// touching the cache. The caller owns the returned key.
func (s *Service) SessionKeyWithPassword(ctx context.Context, password []byte) (*secrets.Key, error) {
	record, err := s.loadVerified(ctx, password)
	if err != nil {
		return nil, err
	}
	return s.unwrap(password, record)
}

// Authenticate unwraps the session key with password and caches it for the
// rest of the process.
func (s *Service) Authenticate(ctx context.Context, password []byte) error {
	key, err := s.SessionKeyWithPassword(ctx, password)
	if err != nil {
		return err
	}
	defer key.Destroy()

	s.SetSessionKey(key)
	s.log.Debugf("Master password authenticated")
	return nil
}

// SetSessionKey caches a copy of key. Used when the key was recovered from a
// persisted session instead of the password.
func (s *Service) SetSessionKey(key *secrets.Key) {
	sealed := secrets.Seal(key)

	s.mu.Lock()
	defer s.mu.Unlock()
	s.cached = sealed
}

// SessionKey returns a copy of the cached session key. It fails with
// ErrSessionKeyNotInitialized when there is no master record at all and with
// ErrSessionNotAuthenticated when the process has not authenticated.
func (s *Service) SessionKey(ctx context.Context) (*secrets.Key, error) {
	s.mu.Lock()
	cached := s.cached
	s.mu.Unlock()

	if !cached.Empty() {
		key, err := cached.Open()
		if err == nil {
			return key, nil
		}
		s.log.Debugf("Cached session key unavailable: %v", err)
	}

	initialized, err := s.IsInitialized(ctx)
	if err != nil {
		return nil, err
	}
	if !initialized {
		return nil, kerrors.ErrSessionKeyNotInitialized
	}
	return nil, kerrors.ErrSessionNotAuthenticated
}

// MatchesSessionKey reports whether key is the session key wrapped in the
// master record. It needs no password, so a persisted key can be checked
// before it is trusted.
func (s *Service) MatchesSessionKey(ctx context.Context, key *secrets.Key) (bool, error) {
	record, err := s.loadRecord(ctx)
	if err != nil {
		return false, err
	}
	return secrets.VerifyKeyCheck(key, record.SessionKeyCheck), nil
}

// IsAuthenticated reports whether a session key is cached.
func (s *Service) IsAuthenticated() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return !s.cached.Empty()
}

// ClearSession drops the cached session key. Calling it repeatedly is safe.
func (s *Service) ClearSession() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.cached = nil
}

// State reports the lifecycle state.
func (s *Service) State(ctx context.Context) (State, error) {
	if s.IsAuthenticated() {
		return Authenticated, nil
	}
	initialized, err := s.IsInitialized(ctx)
	if err != nil {
		return Uninitialized, err
	}
	if initialized {
		return Initialized, nil
	}
	return Uninitialized, nil
}

// RewrapSessionKey replaces the wrapped session key in the record with key,
// encrypted under a KEK freshly derived from password. All wallet envelopes
// sealed under the previous session key become unreadable.
func (s *Service) RewrapSessionKey(ctx context.Context, password []byte, key *secrets.Key) error {
	record, err := s.loadVerified(ctx, password)
	if err != nil {
		return err
	}

	kdfSalt, err := hex.DecodeString(record.KDFSalt)
	if err != nil {
		return fmt.Errorf("%w: malformed kdf salt", kerrors.ErrIntegrityFailure)
	}

	wrapped, err := s.wrap(password, kdfSalt, key)
	if err != nil {
		return err
	}

	err = s.store.UpdateMasterSecret(ctx, store.SessionEnvelopeUpdate{
		EncryptedSessionKey: wrapped.Ciphertext,
		SessionNonce:        wrapped.Nonce,
		SessionAuthTag:      wrapped.AuthTag,
		SessionKeyCheck:     secrets.KeyCheck(key),
	})
	if errors.Is(err, store.ErrRecordNotFound) {
		return kerrors.ErrNotInitialized
	}
	if err != nil {
		return fmt.Errorf("failed to update master secret: %w", err)
	}

	s.log.Debugf("Session key rewrapped")
	return nil
}

// loadRecord reads the master record and rejects partially written ones.
func (s *Service) loadRecord(ctx context.Context) (*store.MasterSecret, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	record, err := s.store.FindMasterSecret(ctx)
	if errors.Is(err, store.ErrRecordNotFound) {
		return nil, kerrors.ErrNotInitialized
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read master secret: %w", err)
	}
	if !record.Complete() {
		return nil, fmt.Errorf("%w: master secret record is incomplete", kerrors.ErrIntegrityFailure)
	}
	return record, nil
}

func (s *Service) loadVerified(ctx context.Context, password []byte) (*store.MasterSecret, error) {
	record, err := s.loadRecord(ctx)
	if err != nil {
		return nil, err
	}

	if !s.kdf.VerifyPassword(record.PasswordHash, password) {
		return nil, kerrors.ErrInvalidPassword
	}
	return record, nil
}

func (s *Service) wrap(password, kdfSalt []byte, key *secrets.Key) (*secrets.Sealed, error) {
	kek, err := s.kdf.DeriveKey(password, kdfSalt, secrets.DerivedKeyLength)
	if err != nil {
		return nil, fmt.Errorf("failed to derive key-encryption key: %w", err)
	}
	defer kek.Destroy()

	wrapped, err := secrets.Encrypt(key.Bytes(), kek.Bytes(), nil)
	if err != nil {
		return nil, fmt.Errorf("failed to wrap session key: %w", err)
	}
	return wrapped, nil
}

func (s *Service) unwrap(password []byte, record *store.MasterSecret) (*secrets.Key, error) {
	kdfSalt, err := hex.DecodeString(record.KDFSalt)
	if err != nil {
		return nil, fmt.Errorf("%w: malformed kdf salt", kerrors.ErrIntegrityFailure)
	}

	kek, err := s.kdf.DeriveKey(password, kdfSalt, secrets.DerivedKeyLength)
	if err != nil {
		return nil, fmt.Errorf("failed to derive key-encryption key: %w", err)
	}
	defer kek.Destroy()

	plain, err := secrets.Decrypt(record.EncryptedSessionKey, kek.Bytes(), record.SessionNonce, record.SessionAuthTag)
	if err != nil {
		return nil, fmt.Errorf("failed to unwrap session key: %w", err)
	}
	return secrets.NewKey(plain), nil
}
