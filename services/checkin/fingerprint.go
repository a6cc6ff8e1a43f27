package checkin

import (
	"crypto/sha256"
	"encoding/hex"
	"sort"
	"strings"
)

// FingerprintHasher derives a stable opaque identifier from device
// characteristics. The serialization is canonical (keys sorted), so the
// same characteristics map always yields the same hash regardless of
// insertion order, and the server secret makes the value unforgeable.
type FingerprintHasher struct {
	secret []byte
}

// NewFingerprintHasher creates a hasher bound to the server secret.
func NewFingerprintHasher(secret []byte) *FingerprintHasher {
	return &FingerprintHasher{secret: secret}
}

// Hash returns the hex-encoded SHA-256 fingerprint of the characteristics.
func (h *FingerprintHasher) Hash(characteristics map[string]string) string {
	keys := make([]string, 0, len(characteristics))
	for k := range characteristics {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	parts := make([]string, 0, len(keys))
	for _, k := range keys {
		parts = append(parts, k+":"+characteristics[k])
	}

	payload := strings.Join(parts, "|") + ":" + string(h.secret)
	sum := sha256.Sum256([]byte(payload))
	return hex.EncodeToString(sum[:])
}
