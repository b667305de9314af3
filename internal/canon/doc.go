// Package canon produces canonical JSON and content fingerprints for table
// state.
//
// Canonical JSON follows RFC 8785: object keys sorted by UTF-16 code units,
// no HTML escaping, NFC-normalized strings and a single textual form per
// number. Two values that are structurally equal encode to the same bytes,
// so their fingerprints are equal too.
//
// The table pipeline keys its memo cache on these fingerprints, and the
// snapshot store uses them to make saves idempotent.
package canon
