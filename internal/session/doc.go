// Package session lets non-interactive invocations reuse the session key.
//
// After the operator authenticates once, the session key is written to
// <data>/session/key encrypted under a machine key. Later processes on the
// same host and account read it back without the master password.
//
// The machine key is derived from the host name and user name only. Anyone
// who can read the session file as that user on that host can recover the
// session key; the file permissions (0600, directory 0700) are the actual
// protection. This trades secrecy for unattended operation on purpose.
// Environments that need more can supply a different MachineKeySource, for
// example one backed by an OS keychain.
//
// A missing, unreadable or undecryptable session file is reported as "no
// session" rather than an error.
package session
