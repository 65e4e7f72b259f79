package secrets

import (
	"crypto/rand"
	"encoding/hex"
	"testing"
)

// testParams keeps Argon2id cheap so the suite stays fast.
var testParams = Argon2Params{Memory: 1024, Time: 1, Threads: 1, KeyLen: 32, SaltLen: 16}

func randBytes(t *testing.T, n int) []byte {
	t.Helper()
	b := make([]byte, n)
	if _, err := rand.Read(b); err != nil {
		t.Fatalf("rand.Read: %v", err)
	}
	return b
}

// flipBit flips one bit of a hex-encoded value and re-encodes it.
func flipBit(t *testing.T, value string, bit int) string {
	t.Helper()
	b, err := hex.DecodeString(value)
	if err != nil {
		t.Fatalf("Failed to decode hex: %v", err)
	}
	b[bit/8] ^= 1 << (bit % 8)
	return hex.EncodeToString(b)
}
