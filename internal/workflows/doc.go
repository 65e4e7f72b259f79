// Package workflows provides high-level orchestration for jupwallet commands.
//
// Workflows coordinate the configs, store, master, session, wallet and audit
// packages to implement complete user-facing features. Each workflow handles
// one command's business logic, independent of CLI concerns like flag
// parsing, password prompts, spinners and output formatting.
//
// # Environment
//
// OpenEnv resolves the data directory, loads the config, opens the record
// store and wires every service together. Commands open one Env, run one
// workflow and close it. Init is the exception: it creates the installation
// and so opens its own Env.
//
// # Authorization
//
// Operations that need the session key take an optional password. With a
// password the key is unwrapped from the master record. Without one, a
// persisted session is used if present; otherwise the workflow returns
// ErrSessionNotAuthenticated and the CLI asks for the password and retries.
// ExportWallet is the exception and always requires the password.
//
// # Error Handling
//
// Workflows return sentinel errors from internal/errors so the CLI can map
// them to messages with errors.Is:
//
//	result, err := workflows.ExportWallet(ctx, env, opts)
//	if errors.Is(err, kerrors.ErrInvalidPassword) {
//	    // Show a friendly message
//	}
//
// Every security-relevant workflow records an audit entry, including failed
// attempts.
package workflows
