// Package configs resolves jupwallet's data directory and manages its TOML
// configuration file.
//
// # Settings
//
// NewSettings picks the data directory from, in order: an explicit value
// (the --data-dir flag), the JUPWALLET_HOME environment variable, and
// ~/.solana/jupwallet. Every other path is derived from it:
//
//	<data>/config.toml        configuration
//	<data>/data/jupwallet.db  record store (sqlite; jupwallet.bolt for bolt)
//	<data>/session/key        persisted session key
//	<data>/audit.jsonl        audit trail
//
// # Config
//
// The config file has three tables:
//
//	[installation] id, created_at   written once by "jupwallet init"
//	[database]     driver, path     "sqlite" (default) or "bolt"
//	[security]     session_key_bytes
//	[logging]      verbose, debug
//
// Missing values fall back to DefaultConfig. A missing file is not an error.
package configs
