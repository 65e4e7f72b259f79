// Package store persists the master secret record and wallet records.
//
// Two backends implement Store:
//
//   - sqlite (default): a single SQLite database file via mattn/go-sqlite3.
//     The master secret row uses the fixed primary key 1, so a second
//     concurrent insert fails on the primary key constraint.
//   - bolt: a bbolt key/value file. Uniqueness is checked inside the
//     read-write transaction, which bbolt serializes.
//
// Both return ErrRecordNotFound for missing rows and ErrRecordExists for
// uniqueness violations, so callers never need to know which backend is in
// use. Stored envelopes are opaque hex strings; this package never sees key
// material in plaintext.
package store
