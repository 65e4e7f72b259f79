package wallet

import (
	"bytes"
	"crypto/ed25519"
	"crypto/rand"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/btcsuite/btcutil/base58"

	kerrors "github.com/PolarWolf314/jupwallet/internal/errors"
	"github.com/PolarWolf314/jupwallet/internal/secrets"
)

// GenerateKeypair returns a fresh private key and its address.
func GenerateKeypair() (*secrets.Key, string, error) {
	pub, priv, err := ed25519.GenerateKey(rand.Reader)
	if err != nil {
		return nil, "", fmt.Errorf("failed to generate keypair: %w", err)
	}
	return secrets.NewKey(priv), base58.Encode(pub), nil
}

// ParsePrivateKey accepts a base58 64-byte private key, a base58 32-byte
// seed, or a solana-keygen JSON byte array, and returns the 64-byte private
// key with its address.
func ParsePrivateKey(encoded string) (*secrets.Key, string, error) {
	encoded = strings.TrimSpace(encoded)
	if encoded == "" {
		return nil, "", kerrors.ErrInvalidPrivateKey
	}

	var raw []byte
	if strings.HasPrefix(encoded, "[") {
		var err error
		if raw, err = decodeByteArray(encoded); err != nil {
			return nil, "", err
		}
	} else {
		raw = base58.Decode(encoded)
	}
	defer secrets.Zero(raw)

	switch len(raw) {
	case ed25519.SeedSize:
		priv := ed25519.NewKeyFromSeed(raw)
		return secrets.NewKey(priv), addressOf(priv), nil

	case ed25519.PrivateKeySize:
		// The trailing half must be the public key of the leading seed.
		priv := ed25519.NewKeyFromSeed(raw[:ed25519.SeedSize])
		if !bytes.Equal(priv[ed25519.SeedSize:], raw[ed25519.SeedSize:]) {
			secrets.Zero(priv)
			return nil, "", fmt.Errorf("%w: public key does not match seed", kerrors.ErrInvalidPrivateKey)
		}
		return secrets.NewKey(priv), addressOf(priv), nil

	default:
		return nil, "", fmt.Errorf("%w: expected 32 or 64 bytes, got %d", kerrors.ErrInvalidPrivateKey, len(raw))
	}
}

// EncodePrivateKey renders a 64-byte private key in base58, the format
// wallets such as Phantom import.
func EncodePrivateKey(key *secrets.Key) string {
	return base58.Encode(key.Bytes())
}

// decodeByteArray parses the "[12,34,...]" format of solana-keygen files.
func decodeByteArray(encoded string) ([]byte, error) {
	var values []int
	if err := json.Unmarshal([]byte(encoded), &values); err != nil {
		return nil, fmt.Errorf("%w: malformed byte array", kerrors.ErrInvalidPrivateKey)
	}

	raw := make([]byte, len(values))
	for i, v := range values {
		if v < 0 || v > 255 {
			secrets.Zero(raw)
			return nil, fmt.Errorf("%w: byte array value out of range", kerrors.ErrInvalidPrivateKey)
		}
		raw[i] = byte(v)
	}
	for i := range values {
		values[i] = 0
	}
	return raw, nil
}

func addressOf(priv []byte) string {
	return base58.Encode(priv[ed25519.SeedSize:])
}
