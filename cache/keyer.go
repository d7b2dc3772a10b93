package cache

import (
	"crypto/sha256"
	"encoding/hex"
	"strings"
)

// Fingerprint derives the stable cache key for a user input and category.
//
// The input is normalized (lowercased, trimmed, inner whitespace
// collapsed) so trivially different phrasings of the same request share
// a key. The digest is an explicit SHA-256 rather than a runtime hash so
// keys are reproducible across processes and restarts.
//
// Format: conv:<category>:<hash> where hash is the first 16 hex
// characters of SHA-256(normalized input).
func Fingerprint(text, category string) string {
	normalized := Normalize(text)

	h := sha256.New()
	h.Write([]byte(category))
	h.Write([]byte{0})
	h.Write([]byte(normalized))
	digest := h.Sum(nil)

	if category == "" {
		category = "general"
	}
	return "conv:" + category + ":" + hex.EncodeToString(digest[:8])
}

// Normalize lowercases, trims, and collapses runs of whitespace to a
// single space. Same normalization the fingerprint is computed over.
func Normalize(text string) string {
	return strings.Join(strings.Fields(strings.ToLower(text)), " ")
}
