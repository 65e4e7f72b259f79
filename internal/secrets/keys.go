package secrets

import (
	"crypto/hmac"
	"crypto/sha256"
	"crypto/subtle"
	"encoding/hex"
	"errors"
	"runtime"

	"github.com/awnumar/memguard"
)

// ErrKeyUnavailable is returned when a sealed key cannot be opened.
var ErrKeyUnavailable = errors.New("sealed key unavailable")

// Key owns a buffer of key material and wipes it on Destroy.
//
// Every function that obtains a Key is responsible for calling Destroy on
// all exit paths, normally with defer right after the error check. A
// finalizer wipes keys that escape without being destroyed.
type Key struct {
	b []byte
}

// NewKey takes ownership of b. The caller must not use b afterwards.
func NewKey(b []byte) *Key {
	k := &Key{b: b}
	runtime.SetFinalizer(k, (*Key).Destroy)
	return k
}

// Bytes returns the underlying key material. The slice is only valid until
// Destroy is called and must not be retained.
func (k *Key) Bytes() []byte {
	if k == nil {
		return nil
	}
	return k.b
}

// Len returns the key length in bytes.
func (k *Key) Len() int {
	if k == nil {
		return 0
	}
	return len(k.b)
}

// Clone returns an independent copy of k.
func (k *Key) Clone() *Key {
	if k == nil {
		return nil
	}
	cp := make([]byte, len(k.b))
	copy(cp, k.b)
	return NewKey(cp)
}

// Equal reports whether k and other hold the same bytes, in constant time.
func (k *Key) Equal(other *Key) bool {
	if k.Len() != other.Len() {
		return false
	}
	return subtle.ConstantTimeCompare(k.Bytes(), other.Bytes()) == 1
}

// Destroy wipes the key material. It is safe to call more than once.
func (k *Key) Destroy() {
	if k == nil || k.b == nil {
		return
	}
	memguard.WipeBytes(k.b)
	k.b = nil
	runtime.SetFinalizer(k, nil)
}

// keyCheckLabel is MACed under a key to fingerprint it.
const keyCheckLabel = "jupwallet session key check v1"

// KeyCheck returns a hex HMAC-SHA256 fingerprint of k. It identifies the key
// without revealing it.
func KeyCheck(k *Key) string {
	mac := hmac.New(sha256.New, k.Bytes())
	mac.Write([]byte(keyCheckLabel))
	return hex.EncodeToString(mac.Sum(nil))
}

// VerifyKeyCheck reports whether check is the fingerprint of k, in constant
// time. A malformed check never matches.
func VerifyKeyCheck(k *Key, check string) bool {
	want, err := hex.DecodeString(check)
	if err != nil || k.Len() == 0 {
		return false
	}
	mac := hmac.New(sha256.New, k.Bytes())
	mac.Write([]byte(keyCheckLabel))
	return hmac.Equal(mac.Sum(nil), want)
}

// Zero wipes b in place.
func Zero(b []byte) {
	memguard.WipeBytes(b)
}

// SealedKey keeps a key encrypted in memory between uses.
type SealedKey struct {
	enclave *memguard.Enclave
}

// Seal copies k into an encrypted enclave. k itself is left untouched.
func Seal(k *Key) *SealedKey {
	if k.Len() == 0 {
		return &SealedKey{}
	}
	cp := make([]byte, k.Len())
	copy(cp, k.Bytes())
	// NewEnclave wipes cp after sealing it.
	return &SealedKey{enclave: memguard.NewEnclave(cp)}
}

// Open decrypts the enclave into a fresh Key owned by the caller.
func (s *SealedKey) Open() (*Key, error) {
	if s == nil || s.enclave == nil {
		return nil, ErrKeyUnavailable
	}

	buf, err := s.enclave.Open()
	if err != nil {
		return nil, ErrKeyUnavailable
	}
	defer buf.Destroy()

	cp := make([]byte, buf.Size())
	copy(cp, buf.Bytes())
	return NewKey(cp), nil
}

// Empty reports whether there is nothing sealed.
func (s *SealedKey) Empty() bool {
	return s == nil || s.enclave == nil
}
