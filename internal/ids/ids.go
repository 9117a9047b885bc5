// Package ids generates collision-resistant, URL-safe identifiers for
// sessions and participants.
package ids

import (
	"crypto/rand"
	"encoding/base64"
	"fmt"
)

const (
	sessionIDBytes     = 16
	participantIDBytes = 12
)

// generates a cryptographically secure random session ID
func NewSessionID() (string, error) {
	return generate(sessionIDBytes)
}

// generates a cryptographically secure random participant ID
func NewParticipantID() (string, error) {
	return generate(participantIDBytes)
}

func generate(n int) (string, error) {
	bytes := make([]byte, n)

	if _, err := rand.Read(bytes); err != nil {
		return "", fmt.Errorf("failed to generate identifier: %w", err)
	}

	return base64.RawURLEncoding.EncodeToString(bytes), nil
}
