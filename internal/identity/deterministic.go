// Package identity mints the correlation ids carried by pipeline logs.
package identity

import (
	"path/filepath"
	"strings"

	hashid "github.com/goliatone/hashid/pkg/hashid"
	"github.com/google/uuid"
)

const documentNamespace = "notepub:document:"

// DocumentKey identifies a source file across publish runs. Equivalent
// spellings of the same path share a key; a blank path has none.
func DocumentKey(path string) string {
	path = strings.TrimSpace(path)
	if path == "" {
		return ""
	}
	return stableUUID(documentNamespace + filepath.Clean(path)).String()
}

// RunID returns a fresh random identifier for one pipeline run.
func RunID() string {
	return uuid.NewString()
}

// stableUUID hashes key with SHA-256 through hashid, falling back to a
// name-based UUID if hashid rejects the input.
func stableUUID(key string) uuid.UUID {
	id, err := hashid.NewUUID(key, hashid.WithHashAlgorithm(hashid.SHA256), hashid.WithNormalization(true))
	if err == nil && id != uuid.Nil {
		return id
	}
	return uuid.NewSHA1(uuid.NameSpaceOID, []byte(key))
}
