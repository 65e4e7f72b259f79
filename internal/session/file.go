package session

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/PolarWolf314/jupwallet/internal/secrets"
)

// FileName is the session file name inside the session directory.
const FileName = "key"

type sessionFile struct {
	Encrypted string `json:"encrypted"`
	Nonce     string `json:"nonce"`
	AuthTag   string `json:"authTag"`
}

func encodeSessionFile(key, machineKey *secrets.Key) ([]byte, error) {
	sealed, err := secrets.Encrypt(key.Bytes(), machineKey.Bytes(), nil)
	if err != nil {
		return nil, err
	}
	return json.Marshal(sessionFile{
		Encrypted: sealed.Ciphertext,
		Nonce:     sealed.Nonce,
		AuthTag:   sealed.AuthTag,
	})
}

func decodeSessionFile(data []byte, machineKey *secrets.Key) (*secrets.Key, error) {
	var f sessionFile
	if err := json.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("malformed session file: %w", err)
	}
	plain, err := secrets.Decrypt(f.Encrypted, machineKey.Bytes(), f.Nonce, f.AuthTag)
	if err != nil {
		return nil, err
	}
	return secrets.NewKey(plain), nil
}

// writeFileAtomic replaces path with data via a temp file in the same
// directory. Concurrent writers do not interleave; the last rename wins.
func writeFileAtomic(path string, data []byte) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0700); err != nil {
		return fmt.Errorf("failed to create session directory: %w", err)
	}
	if err := os.Chmod(dir, 0700); err != nil {
		return fmt.Errorf("failed to restrict session directory: %w", err)
	}

	tmp, err := os.CreateTemp(dir, ".key-*")
	if err != nil {
		return fmt.Errorf("failed to create session file: %w", err)
	}
	tmpName := tmp.Name()
	defer os.Remove(tmpName)

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return fmt.Errorf("failed to write session file: %w", err)
	}
	if err := tmp.Sync(); err != nil {
		tmp.Close()
		return fmt.Errorf("failed to sync session file: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("failed to close session file: %w", err)
	}
	if err := os.Chmod(tmpName, 0600); err != nil {
		return fmt.Errorf("failed to restrict session file: %w", err)
	}
	if err := os.Rename(tmpName, path); err != nil {
		return fmt.Errorf("failed to install session file: %w", err)
	}
	return nil
}
