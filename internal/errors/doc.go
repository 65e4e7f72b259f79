// Package errors provides typed error values for jupwallet.
//
// Using sentinel errors allows callers to handle specific error conditions
// programmatically with errors.Is() rather than string matching. This makes
// error handling more robust and refactoring-safe.
//
// # Error Categories
//
// Errors are grouped by category:
//
//   - Master password errors: store state and password checks
//     (ErrNotInitialized, ErrAlreadyInitialized, ErrInvalidPassword)
//   - Session errors: no usable session key in this process
//     (ErrSessionNotAuthenticated, ErrSessionKeyNotInitialized)
//   - Crypto errors: authenticated decryption and key sizing
//     (ErrIntegrityFailure, ErrInvalidKeyLength)
//   - Wallet errors: wallet records and key material
//     (ErrWalletNotFound, ErrWalletAlreadyExists, ErrInvalidPrivateKey)
//   - Configuration and input errors
//     (ErrInvalidConfig, ErrUnknownDriver, ErrInvalidDateFormat)
//
// # Usage
//
// Return errors from internal packages:
//
//	if record == nil {
//	    return nil, errors.ErrNotInitialized
//	}
//
// Handle errors in the CLI layer:
//
//	key, err := masterSvc.SessionKey(ctx)
//	if errors.Is(err, kerrors.ErrSessionNotAuthenticated) {
//	    // Prompt for the master password
//	}
//
// Wrap errors with additional context:
//
//	return fmt.Errorf("decrypting wallet %s: %w", walletID, errors.ErrIntegrityFailure)
//
// ErrIntegrityFailure is never reported for a wrong password. A tag mismatch
// under a key derived from a verified password means tampering or an
// envelope sealed under a replaced session key.
package errors
