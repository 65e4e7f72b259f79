package wallet

import (
	"crypto/ed25519"
	"fmt"
	"strings"
	"testing"

	"github.com/btcsuite/btcutil/base58"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	kerrors "github.com/PolarWolf314/jupwallet/internal/errors"
)

func fixedSeed() []byte {
	seed := make([]byte, ed25519.SeedSize)
	for i := range seed {
		seed[i] = byte(i + 1)
	}
	return seed
}

func TestGenerateKeypair(t *testing.T) {
	priv, address, err := GenerateKeypair()
	require.NoError(t, err)
	defer priv.Destroy()

	assert.Equal(t, ed25519.PrivateKeySize, priv.Len())
	assert.Equal(t, base58.Encode(priv.Bytes()[32:]), address)

	assert.Equal(t, address, addressOf(priv.Bytes()))
}

func TestParsePrivateKeyFormats(t *testing.T) {
	full := ed25519.NewKeyFromSeed(fixedSeed())
	wantAddress := base58.Encode(full[32:])

	byteArray := make([]string, len(full))
	for i, b := range full {
		byteArray[i] = fmt.Sprint(b)
	}

	tests := []struct {
		name  string
		input string
	}{
		{"base58 private key", base58.Encode(full)},
		{"base58 seed", base58.Encode(fixedSeed())},
		{"surrounding whitespace", "  " + base58.Encode(full) + "\n"},
		{"json byte array", "[" + strings.Join(byteArray, ",") + "]"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			priv, address, err := ParsePrivateKey(tt.input)
			require.NoError(t, err)
			defer priv.Destroy()

			assert.Equal(t, wantAddress, address)
			assert.Equal(t, []byte(full), priv.Bytes())
			assert.Equal(t, base58.Encode(full), EncodePrivateKey(priv))
		})
	}
}

func TestParsePrivateKeyInvalid(t *testing.T) {
	full := ed25519.NewKeyFromSeed(fixedSeed())
	mismatched := make([]byte, len(full))
	copy(mismatched, full)
	mismatched[63] ^= 0xff

	tests := []struct {
		name  string
		input string
	}{
		{"empty", ""},
		{"whitespace", "   "},
		{"not base58", "0OIl"},
		{"wrong length", base58.Encode([]byte("too short"))},
		{"public key mismatch", base58.Encode(mismatched)},
		{"malformed array", "[1,2,"},
		{"array out of range", "[256" + strings.Repeat(",0", 31) + "]"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, _, err := ParsePrivateKey(tt.input)
			assert.ErrorIs(t, err, kerrors.ErrInvalidPrivateKey)
		})
	}
}

func TestValidateName(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		wantErr bool
	}{
		{"simple", "trading", false},
		{"spaces inside", "cold storage", false},
		{"max length", strings.Repeat("a", MaxNameLength), false},
		{"max length multibyte", strings.Repeat("é", MaxNameLength), false},
		{"empty", "", true},
		{"blank", "   ", true},
		{"too long", strings.Repeat("a", MaxNameLength+1), true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateName(tt.input)
			if tt.wantErr {
				assert.ErrorIs(t, err, kerrors.ErrInvalidWalletName)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}
