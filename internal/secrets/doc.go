// Package secrets provides the cryptographic primitives of jupwallet.
//
// # Building Blocks
//
//   - KDF: Argon2id with two separate entry points. HashPassword produces a
//     self-describing verifier for the master password; DeriveKey produces
//     raw, deterministic key bytes. The two are never interchanged.
//   - Encrypt / Decrypt: AES-256-GCM with a 12-byte nonce and a 16-byte tag.
//     Ciphertext, nonce and tag cross the package boundary as lowercase hex.
//     Keys must be exactly 32 bytes; anything else fails with
//     ErrInvalidKeyLength rather than being padded or truncated.
//   - Key: owner of key material. Destroy wipes the buffer and is expected
//     to be deferred on every path that obtains a key.
//   - SealedKey: a key kept encrypted in memory (memguard enclave) between
//     uses, for long-lived caches.
//   - Sealer: encrypts one wallet secret under a session key. Each secret
//     gets its own random salt, so the per-secret key differs even though
//     every secret shares the same session key.
//
// # Key Hierarchy
//
//	master password --Argon2id(kdfSalt)--> KEK --AES-GCM--> session key
//	session key --Argon2id(salt_i)--> secret key_i --AES-GCM--> wallet secret_i
//
// # Cost
//
// DefaultArgon2Params (64 MiB, t=3, p=4) make each derivation take in the
// order of hundreds of milliseconds. That cost is the brute-force defence
// and is not parallelized away. A derivation that has started always runs
// to completion.
package secrets
