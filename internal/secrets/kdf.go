package secrets

import (
	"crypto/rand"
	"crypto/subtle"
	"encoding/base64"
	"fmt"
	"strings"

	kerrors "github.com/PolarWolf314/jupwallet/internal/errors"
	"golang.org/x/crypto/argon2"
)

const (
	// DefaultSaltLength is the salt size used for KEK and per-secret derivation.
	DefaultSaltLength = 32

	// DefaultSessionKeyLength is the size of a freshly generated session key.
	DefaultSessionKeyLength = 64

	// DerivedKeyLength is the size of every key handed to the cipher.
	DerivedKeyLength = 32
)

// Upper bounds accepted when verifying a stored hash. A tampered record
// must not be able to make verification allocate unbounded memory.
const (
	maxVerifyMemory  = 1024 * 1024 // KiB
	maxVerifyTime    = 64
	maxVerifyThreads = 64
)

// Argon2Params are the Argon2id cost parameters.
type Argon2Params struct {
	Memory  uint32 // KiB
	Time    uint32
	Threads uint8
	KeyLen  uint32
	SaltLen int
}

// DefaultArgon2Params are the fixed production parameters: 64 MiB, 3 passes, 4 lanes.
var DefaultArgon2Params = Argon2Params{
	Memory:  64 * 1024,
	Time:    3,
	Threads: 4,
	KeyLen:  32,
	SaltLen: 16,
}

// KDF wraps Argon2id behind two separate entry points: password hashing,
// which produces a self-describing verifier, and deterministic key derivation,
// which produces raw key bytes. A verifier is never used as a key and a
// derived key is never stored as a verifier.
type KDF struct {
	params Argon2Params
}

// NewKDF returns a KDF using the given parameters.
func NewKDF(params Argon2Params) *KDF {
	return &KDF{params: params}
}

// DefaultKDF returns a KDF using DefaultArgon2Params.
func DefaultKDF() *KDF {
	return NewKDF(DefaultArgon2Params)
}

// HashPassword hashes password with a fresh random salt.
//
// The result has the form $argon2id$v=19$m=<M>,t=<T>,p=<P>$<salt>$<hash>
// and embeds everything needed to verify it later.
func (k *KDF) HashPassword(password []byte) (string, error) {
	salt, err := GenerateSalt(k.params.SaltLen)
	if err != nil {
		return "", err
	}
	return k.HashPasswordWithSalt(password, salt)
}

// HashPasswordWithSalt hashes password with the supplied salt.
func (k *KDF) HashPasswordWithSalt(password, salt []byte) (string, error) {
	if len(salt) == 0 {
		return "", fmt.Errorf("hashing password: salt cannot be empty")
	}
	hash := argon2.IDKey(password, salt, k.params.Time, k.params.Memory, k.params.Threads, k.params.KeyLen)
	defer Zero(hash)

	return fmt.Sprintf("$argon2id$v=%d$m=%d,t=%d,p=%d$%s$%s",
		argon2.Version, k.params.Memory, k.params.Time, k.params.Threads,
		base64.RawStdEncoding.EncodeToString(salt),
		base64.RawStdEncoding.EncodeToString(hash),
	), nil
}

// VerifyPassword reports whether password matches verifier. It never
// returns an error: a malformed verifier is simply a mismatch.
func (k *KDF) VerifyPassword(verifier string, password []byte) bool {
	parts := strings.Split(verifier, "$")
	if len(parts) != 6 || parts[0] != "" || parts[1] != "argon2id" {
		return false
	}

	var version int
	if _, err := fmt.Sscanf(parts[2], "v=%d", &version); err != nil || version != argon2.Version {
		return false
	}

	var memory, time uint32
	var threads uint8
	if _, err := fmt.Sscanf(parts[3], "m=%d,t=%d,p=%d", &memory, &time, &threads); err != nil {
		return false
	}
	if memory == 0 || memory > maxVerifyMemory || time == 0 || time > maxVerifyTime || threads == 0 || threads > maxVerifyThreads {
		return false
	}

	salt, err := base64.RawStdEncoding.DecodeString(parts[4])
	if err != nil || len(salt) == 0 {
		return false
	}
	expected, err := base64.RawStdEncoding.DecodeString(parts[5])
	if err != nil || len(expected) == 0 {
		return false
	}

	actual := argon2.IDKey(password, salt, time, memory, threads, uint32(len(expected)))
	defer Zero(actual)

	return subtle.ConstantTimeCompare(actual, expected) == 1
}

// DeriveKey deterministically derives length bytes from secret and salt.
// Identical inputs always yield identical output.
func (k *KDF) DeriveKey(secret, salt []byte, length uint32) (*Key, error) {
	if length == 0 {
		return nil, fmt.Errorf("deriving key of length 0: %w", kerrors.ErrInvalidKeyLength)
	}
	if len(salt) == 0 {
		return nil, fmt.Errorf("deriving key: salt cannot be empty")
	}
	return NewKey(argon2.IDKey(secret, salt, k.params.Time, k.params.Memory, k.params.Threads, length)), nil
}

// GenerateSalt returns n cryptographically secure random bytes.
// A non-positive n selects DefaultSaltLength.
func GenerateSalt(n int) ([]byte, error) {
	if n <= 0 {
		n = DefaultSaltLength
	}
	salt := make([]byte, n)
	if _, err := rand.Read(salt); err != nil {
		return nil, fmt.Errorf("failed to generate salt: %w", err)
	}
	return salt, nil
}

// GenerateKey returns a new random key of n bytes.
// A non-positive n selects DefaultSessionKeyLength.
func GenerateKey(n int) (*Key, error) {
	if n <= 0 {
		n = DefaultSessionKeyLength
	}
	b := make([]byte, n)
	if _, err := rand.Read(b); err != nil {
		return nil, fmt.Errorf("failed to generate key: %w", err)
	}
	return NewKey(b), nil
}
