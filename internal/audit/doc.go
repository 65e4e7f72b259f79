// Package audit keeps a local trail of security-relevant operations.
//
// Entries are appended as JSON Lines to <data>/audit.jsonl (mode 0600):
//
//	{"ts":"2026-01-02T15:04:05.000000Z","user":"alice","host":"laptop","op":"wallet.export","wallet_id":"...","source":"password"}
//
// Failed attempts are recorded too, with "failed":true and the error text,
// which makes repeated wrong-password attempts visible.
//
// Logging is best-effort. A write failure never fails the operation.
package audit
