package util

import (
	"crypto/rand"
	"encoding/hex"
)

// NewID returns a random identifier like "brd_3f2a...". An empty prefix
// yields the bare hex, used when concatenating token parts.
func NewID(prefix string) string {
	bytes := make([]byte, 16)
	_, _ = rand.Read(bytes)
	if prefix == "" {
		return hex.EncodeToString(bytes)
	}
	return prefix + "_" + hex.EncodeToString(bytes)
}
