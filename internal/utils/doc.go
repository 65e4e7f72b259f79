// Package utils provides shared helpers used across jupwallet packages.
//
// # System Utilities
//
//   - GetUsername, GetHostname: identity of the current account and host
//   - MachineIdentity: "hostname:username", the input of the session machine key
//   - SanitizeWalletName, GenerateWalletName: default wallet names
//
// # Filesystem Utilities
//
//   - ExpandHome: resolves a leading "~" in user-supplied paths
//   - EnsurePrivateDir: creates a directory readable only by its owner
//
// # String Utilities
//
//   - FormatPaths, ShortenAddress: human-readable output helpers
//
// # I/O and Terminal Utilities
//
//   - ReadStdin: reads piped input such as an imported private key
//   - ReadPassphrase, ReadPassphraseFromTTY: no-echo password prompts
//   - IsTerminal, IsTTYAvailable: terminal detection
package utils
