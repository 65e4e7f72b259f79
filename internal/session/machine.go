package session

import (
	"crypto/sha256"
	"fmt"
	"io"

	"golang.org/x/crypto/hkdf"

	"github.com/PolarWolf314/jupwallet/internal/secrets"
	"github.com/PolarWolf314/jupwallet/internal/utils"
)

const machineKeyInfo = "jupwallet session file v1"

// MachineKeySource supplies the 32-byte key that protects the session file.
type MachineKeySource interface {
	MachineKey() (*secrets.Key, error)
}

// HostKeySource derives the machine key from "hostname:username:jupwallet".
type HostKeySource struct{}

func (HostKeySource) MachineKey() (*secrets.Key, error) {
	id, err := utils.MachineIdentity()
	if err != nil {
		return nil, fmt.Errorf("failed to determine machine identity: %w", err)
	}
	return DeriveMachineKey(id + ":jupwallet")
}

// DeriveMachineKey expands an identity string into a cipher key with
// HKDF-SHA256.
func DeriveMachineKey(identity string) (*secrets.Key, error) {
	out := make([]byte, secrets.CipherKeyLength)
	r := hkdf.New(sha256.New, []byte(identity), nil, []byte(machineKeyInfo))
	if _, err := io.ReadFull(r, out); err != nil {
		secrets.Zero(out)
		return nil, fmt.Errorf("failed to derive machine key: %w", err)
	}
	return secrets.NewKey(out), nil
}
