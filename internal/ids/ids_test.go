package ids

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewSessionID(t *testing.T) {
	id, err := NewSessionID()
	require.NoError(t, err)

	// 16 bytes base64url without padding
	assert.Len(t, id, 22)
	assert.False(t, strings.ContainsAny(id, "+/="), "id must be URL-safe: %s", id)
}

func TestNewParticipantID(t *testing.T) {
	id, err := NewParticipantID()
	require.NoError(t, err)

	// 12 bytes base64url without padding
	assert.Len(t, id, 16)
	assert.False(t, strings.ContainsAny(id, "+/="), "id must be URL-safe: %s", id)
}

func TestIDsAreUnique(t *testing.T) {
	seen := make(map[string]bool)

	for range 1000 {
		id, err := NewSessionID()
		require.NoError(t, err)
		assert.False(t, seen[id], "duplicate session id generated")
		seen[id] = true
	}

	for range 1000 {
		id, err := NewParticipantID()
		require.NoError(t, err)
		assert.False(t, seen[id], "duplicate participant id generated")
		seen[id] = true
	}
}
