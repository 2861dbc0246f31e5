package domain

import (
	"crypto/sha256"
	"encoding/hex"
)

// FingerprintPolicy defines the logic to compute a stable identity for the
// content of one analysis request. It ensures idempotency: the same bytes
// always map to the same fingerprint, which keys the whole-request cache.
type FingerprintPolicy interface {
	FromBytes(content []byte) string
	FromURL(url string) string
}

type sha256Fingerprint struct{}

// NewFingerprintPolicy creates the default SHA-256 fingerprint policy.
func NewFingerprintPolicy() FingerprintPolicy {
	return &sha256Fingerprint{}
}

// FromBytes returns the hex SHA-256 digest of the raw content.
func (p *sha256Fingerprint) FromBytes(content []byte) string {
	sum := sha256.Sum256(content)
	return hex.EncodeToString(sum[:])
}

// FromURL returns the digest of the URL string. Used to consult the cache
// before a download happens, accepting identity-by-URL for remote sources.
// A separator prefix keeps URL and content keyspaces from colliding.
func (p *sha256Fingerprint) FromURL(url string) string {
	sum := sha256.Sum256([]byte("url\x00" + url))
	return hex.EncodeToString(sum[:])
}
