package cache

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
)

// schemaVersion is folded into every key. Bump it when layouts, snapshots
// or artifacts change shape so entries written by older builds miss.
const schemaVersion = 1

// hashKey returns "kind:" followed by the SHA-256 of the schema version and
// parts encoded as JSON. Options structs hash by field value, so two
// requests that differ only in an unset option share an entry.
func hashKey(kind string, parts ...any) string {
	data, _ := json.Marshal(append([]any{schemaVersion}, parts...))
	sum := sha256.Sum256(data)
	return kind + ":" + hex.EncodeToString(sum[:])
}

// Hash returns the hex SHA-256 of data. Traces and models are keyed by
// content, so the same file under another name hits the cache.
func Hash(data []byte) string {
	sum := sha256.Sum256(data)
	return hex.EncodeToString(sum[:])
}
