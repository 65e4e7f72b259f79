package store

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	kerrors "github.com/PolarWolf314/jupwallet/internal/errors"
)

// MasterSecretID is the fixed identifier of the singleton master secret row.
const MasterSecretID = 1

const (
	DriverSQLite = "sqlite"
	DriverBolt   = "bolt"
)

var (
	// ErrRecordNotFound indicates the requested record does not exist.
	ErrRecordNotFound = errors.New("record not found")

	// ErrRecordExists indicates a uniqueness constraint was violated.
	ErrRecordExists = errors.New("record already exists")
)

// MasterSecret is the singleton record holding the password verifier and
// the session key wrapped under the password-derived KEK.
type MasterSecret struct {
	ID                  int64     `json:"id"`
	PasswordHash        string    `json:"password_hash"`
	KDFSalt             string    `json:"kdf_salt"`
	EncryptedSessionKey string    `json:"encrypted_session_key"`
	SessionNonce        string    `json:"session_nonce"`
	SessionAuthTag      string    `json:"session_auth_tag"`
	SessionKeyCheck     string    `json:"session_key_check"`
	CreatedAt           time.Time `json:"created_at"`
	UpdatedAt           time.Time `json:"updated_at"`
}

// Complete reports whether every field of the record is populated.
func (m *MasterSecret) Complete() bool {
	return m != nil && m.PasswordHash != "" && m.KDFSalt != "" &&
		m.EncryptedSessionKey != "" && m.SessionNonce != "" && m.SessionAuthTag != "" &&
		m.SessionKeyCheck != ""
}

// SessionEnvelopeUpdate replaces the wrapped session key of the master record.
type SessionEnvelopeUpdate struct {
	EncryptedSessionKey string
	SessionNonce        string
	SessionAuthTag      string
	SessionKeyCheck     string
}

// Wallet is a stored wallet. The Encrypted/Key* fields form the private key
// envelope and are never changed after creation.
type Wallet struct {
	ID           string     `json:"id"`
	Name         string     `json:"name"`
	Address      string     `json:"address"`
	EncryptedKey string     `json:"encrypted_key"`
	KeyNonce     string     `json:"key_nonce"`
	KeySalt      string     `json:"key_salt"`
	KeyAuthTag   string     `json:"key_auth_tag"`
	IsActive     bool       `json:"is_active"`
	CreatedAt    time.Time  `json:"created_at"`
	LastUsed     *time.Time `json:"last_used,omitempty"`
}

// MasterSecretStore persists the singleton master secret record.
type MasterSecretStore interface {
	// FindMasterSecret returns ErrRecordNotFound when init has not run.
	FindMasterSecret(ctx context.Context) (*MasterSecret, error)
	// CreateMasterSecret returns ErrRecordExists if the record is already there.
	CreateMasterSecret(ctx context.Context, record *MasterSecret) error
	UpdateMasterSecret(ctx context.Context, update SessionEnvelopeUpdate) error
}

// WalletStore persists wallet records.
type WalletStore interface {
	FindWalletByID(ctx context.Context, id string) (*Wallet, error)
	FindWalletByAddress(ctx context.Context, address string) (*Wallet, error)
	ListWallets(ctx context.Context, includeInactive bool) ([]*Wallet, error)
	CountWallets(ctx context.Context) (int, error)
	CreateWallet(ctx context.Context, wallet *Wallet) error
	// UpdateWallet persists name, activity and last-used changes only.
	UpdateWallet(ctx context.Context, wallet *Wallet) error
	DeleteWallet(ctx context.Context, id string) error
}

// Store is the full record store.
type Store interface {
	MasterSecretStore
	WalletStore
	Close() error
}

// Open opens the store at path with the named driver, creating the parent
// directory with owner-only permissions.
func Open(driver, path string) (Store, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0700); err != nil {
		return nil, fmt.Errorf("failed to create database directory: %w", err)
	}

	switch driver {
	case DriverSQLite, "":
		return OpenSQLite(path)
	case DriverBolt:
		return OpenBolt(path)
	default:
		return nil, fmt.Errorf("%w: %q", kerrors.ErrUnknownDriver, driver)
	}
}
