// Package guuid provides a Go-native Unique Universal Identifier implementation
// used for session correlation in logs and metrics labels.
package guuid

import (
	"crypto/rand"
	"encoding/hex"
	"fmt"
)

// GUUID represents a 16-byte globally unique identifier, used as a
// SenderSession/ReceiverSession's correlation ID. It never appears on the
// wire — only in log fields and metrics labels.
type GUUID [16]byte

// New generates a new GUUID using crypto/rand for high entropy
func New() (GUUID, error) {
	var g GUUID
	_, err := rand.Read(g[:])
	if err != nil {
		return GUUID{}, fmt.Errorf("failed to generate GUUID: %w", err)
	}
	return g, nil
}

// String returns the string representation of the GUUID
func (g GUUID) String() string {
	return hex.EncodeToString(g[:])
}
