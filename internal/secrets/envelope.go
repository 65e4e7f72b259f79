package secrets

import (
	"encoding/hex"
	"fmt"

	kerrors "github.com/PolarWolf314/jupwallet/internal/errors"
)

// Envelope is a single secret encrypted under a key derived from the
// session key and its own salt. All fields are lowercase hex.
type Envelope struct {
	Ciphertext string
	Nonce      string
	Salt       string
	AuthTag    string
}

// Sealer encrypts individual secrets under a session key. It holds no key
// material; a session key is only borrowed for the duration of one call.
type Sealer struct {
	kdf *KDF
}

// NewSealer returns a Sealer deriving per-secret keys with kdf.
func NewSealer(kdf *KDF) *Sealer {
	return &Sealer{kdf: kdf}
}

// EncryptSecret encrypts plaintext under a fresh per-secret key derived from
// sessionKey and a new random salt.
func (s *Sealer) EncryptSecret(plaintext []byte, sessionKey *Key) (*Envelope, error) {
	if sessionKey.Len() == 0 {
		return nil, fmt.Errorf("encrypting secret: %w", kerrors.ErrInvalidKeyLength)
	}

	salt, err := GenerateSalt(DefaultSaltLength)
	if err != nil {
		return nil, err
	}

	key, err := s.kdf.DeriveKey(sessionKey.Bytes(), salt, DerivedKeyLength)
	if err != nil {
		return nil, fmt.Errorf("deriving secret key: %w", err)
	}
	defer key.Destroy()

	sealed, err := Encrypt(plaintext, key.Bytes(), nil)
	if err != nil {
		return nil, err
	}

	return &Envelope{
		Ciphertext: sealed.Ciphertext,
		Nonce:      sealed.Nonce,
		Salt:       hex.EncodeToString(salt),
		AuthTag:    sealed.AuthTag,
	}, nil
}

// DecryptSecret re-derives the per-secret key from sessionKey and the
// envelope salt and decrypts. The derived key is wiped on every path.
func (s *Sealer) DecryptSecret(env Envelope, sessionKey *Key) ([]byte, error) {
	if sessionKey.Len() == 0 {
		return nil, fmt.Errorf("decrypting secret: %w", kerrors.ErrInvalidKeyLength)
	}

	salt, err := hex.DecodeString(env.Salt)
	if err != nil || len(salt) == 0 {
		return nil, fmt.Errorf("%w: malformed salt", kerrors.ErrIntegrityFailure)
	}

	key, err := s.kdf.DeriveKey(sessionKey.Bytes(), salt, DerivedKeyLength)
	if err != nil {
		return nil, fmt.Errorf("deriving secret key: %w", err)
	}
	defer key.Destroy()

	return Decrypt(env.Ciphertext, key.Bytes(), env.Nonce, env.AuthTag)
}
