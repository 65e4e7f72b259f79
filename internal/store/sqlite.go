package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/mattn/go-sqlite3"
)

const sqliteSchema = `
CREATE TABLE IF NOT EXISTS master_secret (
	id                    INTEGER PRIMARY KEY CHECK (id = 1),
	password_hash         TEXT NOT NULL,
	kdf_salt              TEXT NOT NULL,
	encrypted_session_key TEXT NOT NULL,
	session_nonce         TEXT NOT NULL,
	session_auth_tag      TEXT NOT NULL,
	session_key_check     TEXT NOT NULL,
	created_at            TIMESTAMP NOT NULL,
	updated_at            TIMESTAMP NOT NULL
);

CREATE TABLE IF NOT EXISTS wallets (
	id            TEXT PRIMARY KEY,
	name          TEXT NOT NULL,
	address       TEXT NOT NULL UNIQUE,
	encrypted_key TEXT NOT NULL,
	key_nonce     TEXT NOT NULL,
	key_salt      TEXT NOT NULL,
	key_auth_tag  TEXT NOT NULL,
	is_active     INTEGER NOT NULL DEFAULT 1,
	created_at    TIMESTAMP NOT NULL,
	last_used     TIMESTAMP NULL
);
`

const walletColumns = `id, name, address, encrypted_key, key_nonce, key_salt, key_auth_tag, is_active, created_at, last_used`

// SQLiteStore is the default Store backed by a single SQLite file.
type SQLiteStore struct {
	db *sql.DB
}

// OpenSQLite opens (creating if needed) the database at path and applies the
// schema.
func OpenSQLite(path string) (*SQLiteStore, error) {
	db, err := sql.Open("sqlite3", path+"?_busy_timeout=5000")
	if err != nil {
		return nil, fmt.Errorf("failed to open sqlite database: %w", err)
	}
	db.SetMaxOpenConns(1)

	if _, err := db.Exec(sqliteSchema); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to apply sqlite schema: %w", err)
	}

	if err := os.Chmod(path, 0600); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to restrict database permissions: %w", err)
	}

	return &SQLiteStore{db: db}, nil
}

func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

func (s *SQLiteStore) FindMasterSecret(ctx context.Context) (*MasterSecret, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT id, password_hash, kdf_salt, encrypted_session_key, session_nonce,
		       session_auth_tag, session_key_check, created_at, updated_at
		FROM master_secret WHERE id = ?`, MasterSecretID)

	var m MasterSecret
	err := row.Scan(&m.ID, &m.PasswordHash, &m.KDFSalt, &m.EncryptedSessionKey,
		&m.SessionNonce, &m.SessionAuthTag, &m.SessionKeyCheck, &m.CreatedAt, &m.UpdatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrRecordNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read master secret: %w", err)
	}
	return &m, nil
}

func (s *SQLiteStore) CreateMasterSecret(ctx context.Context, record *MasterSecret) error {
	now := time.Now().UTC()
	if record.CreatedAt.IsZero() {
		record.CreatedAt = now
	}
	record.UpdatedAt = record.CreatedAt
	record.ID = MasterSecretID

	_, err := s.db.ExecContext(ctx, `
		INSERT INTO master_secret (id, password_hash, kdf_salt, encrypted_session_key,
		                           session_nonce, session_auth_tag, session_key_check,
		                           created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		record.ID, record.PasswordHash, record.KDFSalt, record.EncryptedSessionKey,
		record.SessionNonce, record.SessionAuthTag, record.SessionKeyCheck, record.CreatedAt, record.UpdatedAt)
	if isConstraintViolation(err) {
		return ErrRecordExists
	}
	if err != nil {
		return fmt.Errorf("failed to create master secret: %w", err)
	}
	return nil
}

func (s *SQLiteStore) UpdateMasterSecret(ctx context.Context, update SessionEnvelopeUpdate) error {
	res, err := s.db.ExecContext(ctx, `
		UPDATE master_secret
		SET encrypted_session_key = ?, session_nonce = ?, session_auth_tag = ?,
		    session_key_check = ?, updated_at = ?
		WHERE id = ?`,
		update.EncryptedSessionKey, update.SessionNonce, update.SessionAuthTag, update.SessionKeyCheck,
		time.Now().UTC(), MasterSecretID)
	if err != nil {
		return fmt.Errorf("failed to update master secret: %w", err)
	}
	return requireAffected(res)
}

func (s *SQLiteStore) FindWalletByID(ctx context.Context, id string) (*Wallet, error) {
	row := s.db.QueryRowContext(ctx, `SELECT `+walletColumns+` FROM wallets WHERE id = ?`, id)
	return scanWallet(row)
}

func (s *SQLiteStore) FindWalletByAddress(ctx context.Context, address string) (*Wallet, error) {
	row := s.db.QueryRowContext(ctx, `SELECT `+walletColumns+` FROM wallets WHERE address = ?`, address)
	return scanWallet(row)
}

func (s *SQLiteStore) ListWallets(ctx context.Context, includeInactive bool) ([]*Wallet, error) {
	query := `SELECT ` + walletColumns + ` FROM wallets`
	if !includeInactive {
		query += ` WHERE is_active = 1`
	}
	query += ` ORDER BY created_at, name`

	rows, err := s.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to list wallets: %w", err)
	}
	defer rows.Close()

	var wallets []*Wallet
	for rows.Next() {
		w, err := scanWallet(rows)
		if err != nil {
			return nil, err
		}
		wallets = append(wallets, w)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to list wallets: %w", err)
	}
	return wallets, nil
}

func (s *SQLiteStore) CountWallets(ctx context.Context) (int, error) {
	var n int
	if err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM wallets`).Scan(&n); err != nil {
		return 0, fmt.Errorf("failed to count wallets: %w", err)
	}
	return n, nil
}

func (s *SQLiteStore) CreateWallet(ctx context.Context, wallet *Wallet) error {
	if wallet.CreatedAt.IsZero() {
		wallet.CreatedAt = time.Now().UTC()
	}

	_, err := s.db.ExecContext(ctx, `INSERT INTO wallets (`+walletColumns+`)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		wallet.ID, wallet.Name, wallet.Address, wallet.EncryptedKey, wallet.KeyNonce,
		wallet.KeySalt, wallet.KeyAuthTag, wallet.IsActive, wallet.CreatedAt, nullTime(wallet.LastUsed))
	if isConstraintViolation(err) {
		return ErrRecordExists
	}
	if err != nil {
		return fmt.Errorf("failed to create wallet: %w", err)
	}
	return nil
}

func (s *SQLiteStore) UpdateWallet(ctx context.Context, wallet *Wallet) error {
	res, err := s.db.ExecContext(ctx, `
		UPDATE wallets SET name = ?, is_active = ?, last_used = ? WHERE id = ?`,
		wallet.Name, wallet.IsActive, nullTime(wallet.LastUsed), wallet.ID)
	if err != nil {
		return fmt.Errorf("failed to update wallet: %w", err)
	}
	return requireAffected(res)
}

func (s *SQLiteStore) DeleteWallet(ctx context.Context, id string) error {
	res, err := s.db.ExecContext(ctx, `DELETE FROM wallets WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("failed to delete wallet: %w", err)
	}
	return requireAffected(res)
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanWallet(row rowScanner) (*Wallet, error) {
	var (
		w        Wallet
		lastUsed sql.NullTime
	)
	err := row.Scan(&w.ID, &w.Name, &w.Address, &w.EncryptedKey, &w.KeyNonce,
		&w.KeySalt, &w.KeyAuthTag, &w.IsActive, &w.CreatedAt, &lastUsed)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrRecordNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read wallet: %w", err)
	}
	if lastUsed.Valid {
		t := lastUsed.Time
		w.LastUsed = &t
	}
	return &w, nil
}

func nullTime(t *time.Time) sql.NullTime {
	if t == nil {
		return sql.NullTime{}
	}
	return sql.NullTime{Time: *t, Valid: true}
}

func requireAffected(res sql.Result) error {
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to read affected rows: %w", err)
	}
	if n == 0 {
		return ErrRecordNotFound
	}
	return nil
}

func isConstraintViolation(err error) bool {
	var sqliteErr sqlite3.Error
	return errors.As(err, &sqliteErr) && sqliteErr.Code == sqlite3.ErrConstraint
}
