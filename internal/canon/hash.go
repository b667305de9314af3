package canon

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
)

// Fingerprint domains. The version suffix allows the encoding to change
// without colliding with stored fingerprints.
const (
	DomainState      = "tablecore/state/v1"
	DomainSliceState = "tablecore/state-slice/v1"
	DomainTableSpec  = "tablecore/table-spec/v1"
)

// HashWithDomain returns hex(SHA-256(domain || 0x00 || data)). The zero
// byte keeps domain and data from running into each other.
func HashWithDomain(domain string, data []byte) string {
	h := sha256.New()
	h.Write([]byte(domain))
	h.Write([]byte{0x00})
	h.Write(data)
	return hex.EncodeToString(h.Sum(nil))
}

// Fingerprint hashes the canonical JSON of v under domain.
func Fingerprint(domain string, v any) (string, error) {
	data, err := Marshal(v)
	if err != nil {
		return "", fmt.Errorf("fingerprint %s: %w", domain, err)
	}
	return HashWithDomain(domain, data), nil
}

// MustFingerprint is Fingerprint for values known to encode, such as table
// state built from JSON. It panics on error.
func MustFingerprint(domain string, v any) string {
	fp, err := Fingerprint(domain, v)
	if err != nil {
		panic(err)
	}
	return fp
}
