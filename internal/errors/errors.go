package errors

import "errors"

// Master password errors indicate problems with the master secret record.
var (
	// ErrNotInitialized indicates no master password has been set yet.
	ErrNotInitialized = errors.New("master password not set, run 'jupwallet init' first")

	// ErrAlreadyInitialized indicates init was attempted on an initialized store.
	ErrAlreadyInitialized = errors.New("master password already initialized")

	// ErrInvalidPassword indicates the supplied master password did not verify.
	ErrInvalidPassword = errors.New("invalid master password")

	// ErrEmptyPassword indicates an empty master password was supplied.
	ErrEmptyPassword = errors.New("master password cannot be empty")

	// ErrPasswordMismatch indicates the confirmation prompt did not match.
	ErrPasswordMismatch = errors.New("passwords do not match")
)

// Session errors indicate that no session key is available to this process.
var (
	// ErrSessionNotAuthenticated indicates a master record exists but no session key is cached.
	ErrSessionNotAuthenticated = errors.New("session not authenticated")

	// ErrSessionKeyNotInitialized indicates there is no session key at all because init never ran.
	ErrSessionKeyNotInitialized = errors.New("session key not initialized, run 'jupwallet init' first")
)

// Cryptographic errors indicate failures during encryption or decryption operations.
var (
	// ErrIntegrityFailure indicates an authentication tag did not verify or the input was malformed.
	ErrIntegrityFailure = errors.New("integrity check failed")

	// ErrInvalidKeyLength indicates a symmetric key has an unexpected length.
	ErrInvalidKeyLength = errors.New("invalid symmetric key length")

	// ErrEncryptFailed indicates encryption failed for a reason other than key length.
	ErrEncryptFailed = errors.New("encryption failed")
)

// Wallet errors indicate issues with wallet records.
var (
	// ErrWalletNotFound indicates the requested wallet does not exist.
	ErrWalletNotFound = errors.New("wallet not found")

	// ErrWalletAlreadyExists indicates a wallet with the same address is already stored.
	ErrWalletAlreadyExists = errors.New("wallet already exists")

	// ErrInvalidPrivateKey indicates the private key is malformed or unsupported.
	ErrInvalidPrivateKey = errors.New("invalid private key format")

	// ErrInvalidWalletName indicates the wallet name failed validation.
	ErrInvalidWalletName = errors.New("invalid wallet name")
)

// Configuration errors indicate problems with the local installation.
var (
	// ErrInvalidConfig indicates the configuration file is malformed.
	ErrInvalidConfig = errors.New("configuration is invalid")

	// ErrUnknownDriver indicates the configured database driver is not supported.
	ErrUnknownDriver = errors.New("unknown database driver")
)

// Input errors indicate malformed command arguments.
var (
	// ErrInvalidDateFormat indicates a date filter was not YYYY-MM-DD.
	ErrInvalidDateFormat = errors.New("invalid date format")

	// ErrNoAuditLog indicates the audit log does not exist yet.
	ErrNoAuditLog = errors.New("no audit log found")

	// ErrTTYRequired indicates the command must run in an interactive terminal.
	ErrTTYRequired = errors.New("interactive terminal required")

	// ErrAborted indicates the operator declined a confirmation prompt.
	ErrAborted = errors.New("aborted by user")
)
