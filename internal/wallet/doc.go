// Package wallet stores Solana-style ed25519 wallets under the session key.
//
// Each wallet's 64-byte ed25519 private key (seed followed by public key)
// is sealed in its own envelope with secrets.Sealer; the address is the
// base58 encoding of the public key. Envelopes are written once and never
// rewritten, so rename, deactivate and mark-used only touch metadata.
//
// Creating and importing wallets accept either the master password or a
// previously authenticated master.Service. Exporting a private key always
// requires the password, even when a session is active.
package wallet
