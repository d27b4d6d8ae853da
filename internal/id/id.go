// Package id generates identifiers for records that exist only on the client
// until the server assigns a durable one.
package id

import (
	"crypto/rand"
	"encoding/hex"
	"strings"
)

// LocalPrefix marks identifiers minted on the client.
const LocalPrefix = "local-"

// Generate returns a random 12-character hex ID prefixed with LocalPrefix.
func Generate() string {
	b := make([]byte, 6)
	_, _ = rand.Read(b)
	return LocalPrefix + hex.EncodeToString(b)
}

// IsLocal reports whether id was minted by Generate and is not yet known to
// the server.
func IsLocal(id string) bool {
	return strings.HasPrefix(id, LocalPrefix)
}
