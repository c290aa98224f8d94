package utils

import (
	"crypto/sha1"
	"encoding/hex"
	"strings"

	"github.com/google/uuid"
)

// ShortHash returns the first 10 hex chars of the SHA-1 of s. Used to key
// preview stages by URL without storing the raw URL in the key.
func ShortHash(s string) string {
	sum := sha1.Sum([]byte(s))
	return hex.EncodeToString(sum[:])[:10]
}

// NewPostID returns an opaque 12-char post identifier.
func NewPostID() string {
	return strings.ReplaceAll(uuid.NewString(), "-", "")[:12]
}
