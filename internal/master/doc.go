// Package master owns the master password and the session key it protects.
//
// The master secret record holds an Argon2id verifier of the password and
// the session key wrapped with AES-256-GCM under a key-encryption key
// derived from the password and a separate KDF salt. The verifier and the
// KEK are computed independently, so knowing the verifier reveals nothing
// about the KEK.
//
// A Service moves through three states:
//
//	Uninitialized --Initialize--> Initialized --Authenticate--> Authenticated
//	                                   ^                              |
//	                                   +--------ClearSession----------+
//
// The authenticated state is per process; the record never stores it. The
// unwrapped session key is cached in a memguard enclave and handed out as
// copies the caller must Destroy.
package master
