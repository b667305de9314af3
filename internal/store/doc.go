// Package store provides SQLite-backed storage for table state snapshots.
//
// A snapshot is the canonical JSON encoding of a table.State saved under a
// table name. Saves are idempotent: saving a state whose fingerprint already
// exists for the same table name returns the existing snapshot.
//
// # Ordering
//
// Snapshots carry a per-table seq assigned at insert. Listings order by
// seq ASC, id ASC COLLATE BINARY and never by wall-clock time, so two
// stores fed the same saves list them identically.
//
// # Database Configuration
//
//   - WAL mode: Concurrent reads during writes
//   - synchronous=NORMAL: Balance durability/performance
//   - busy_timeout=5000: Wait for locks up to 5 seconds
//
// Fingerprints are computed by the canon package: RFC 8785 canonical JSON
// hashed with SHA-256 under the canon.DomainState domain.
package store
