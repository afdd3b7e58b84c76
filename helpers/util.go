package helpers

import (
	"crypto/sha256"
	"encoding/hex"
	"strings"
)

// HashID derives a stable identifier from a name such as a show title.
// Names are compared case- and accent-insensitively.
func HashID(name string) string {
	return digest(FoldAccents(strings.TrimSpace(name)))
}

// URLID derives a stable identifier from a URL or a file path, which are
// case sensitive.
func URLID(raw string) string {
	return digest(strings.TrimSpace(raw))
}

func digest(key string) string {
	sum := sha256.Sum256([]byte(key))
	return hex.EncodeToString(sum[:16])
}
