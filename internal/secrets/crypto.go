package secrets

import (
	"crypto/aes"
	"crypto/cipher"
	"crypto/rand"
	"encoding/hex"
	"fmt"

	kerrors "github.com/PolarWolf314/jupwallet/internal/errors"
)

const (
	// CipherKeyLength is the only key length accepted by Encrypt and Decrypt.
	CipherKeyLength = 32

	// NonceLength is the GCM nonce size.
	NonceLength = 12

	// TagLength is the GCM authentication tag size.
	TagLength = 16
)

// Sealed is the output of Encrypt. All fields are lowercase hex.
type Sealed struct {
	Ciphertext string
	Nonce      string
	AuthTag    string
}

func newGCM(key []byte) (cipher.AEAD, error) {
	if len(key) != CipherKeyLength {
		return nil, fmt.Errorf("%w: expected %d bytes, got %d bytes", kerrors.ErrInvalidKeyLength, CipherKeyLength, len(key))
	}
	block, err := aes.NewCipher(key)
	if err != nil {
		return nil, fmt.Errorf("failed to create cipher block: %w", err)
	}
	gcm, err := cipher.NewGCMWithTagSize(block, TagLength)
	if err != nil {
		return nil, fmt.Errorf("failed to create GCM: %w", err)
	}
	return gcm, nil
}

// Encrypt encrypts plaintext with AES-256-GCM.
//
// If nonce is nil a random one is generated; callers should only pass a
// nonce in tests, since reusing a nonce under the same key breaks GCM.
func Encrypt(plaintext, key, nonce []byte) (*Sealed, error) {
	gcm, err := newGCM(key)
	if err != nil {
		return nil, err
	}

	if nonce == nil {
		nonce = make([]byte, NonceLength)
		if _, err := rand.Read(nonce); err != nil {
			return nil, fmt.Errorf("%w: generating nonce: %v", kerrors.ErrEncryptFailed, err)
		}
	} else if len(nonce) != NonceLength {
		return nil, fmt.Errorf("%w: nonce must be %d bytes, got %d", kerrors.ErrEncryptFailed, NonceLength, len(nonce))
	}

	out := gcm.Seal(nil, nonce, plaintext, nil)
	split := len(out) - TagLength

	return &Sealed{
		Ciphertext: hex.EncodeToString(out[:split]),
		Nonce:      hex.EncodeToString(nonce),
		AuthTag:    hex.EncodeToString(out[split:]),
	}, nil
}

// Decrypt reverses Encrypt. Any tag mismatch or malformed input yields
// ErrIntegrityFailure; corrupted plaintext is never returned.
func Decrypt(ciphertext string, key []byte, nonce, authTag string) ([]byte, error) {
	gcm, err := newGCM(key)
	if err != nil {
		return nil, err
	}

	ct, err := hex.DecodeString(ciphertext)
	if err != nil {
		return nil, fmt.Errorf("%w: malformed ciphertext", kerrors.ErrIntegrityFailure)
	}
	iv, err := hex.DecodeString(nonce)
	if err != nil || len(iv) != NonceLength {
		return nil, fmt.Errorf("%w: malformed nonce", kerrors.ErrIntegrityFailure)
	}
	tag, err := hex.DecodeString(authTag)
	if err != nil || len(tag) != TagLength {
		return nil, fmt.Errorf("%w: malformed auth tag", kerrors.ErrIntegrityFailure)
	}

	sealed := make([]byte, 0, len(ct)+len(tag))
	sealed = append(sealed, ct...)
	sealed = append(sealed, tag...)

	plaintext, err := gcm.Open(nil, iv, sealed, nil)
	if err != nil {
		return nil, kerrors.ErrIntegrityFailure
	}
	return plaintext, nil
}
