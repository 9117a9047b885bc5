package websocket

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func originRequest(t *testing.T, origin string) *http.Request {
	t.Helper()

	req := httptest.NewRequest(http.MethodGet, "/ws", nil)
	if origin != "" {
		req.Header.Set("Origin", origin)
	}

	return req
}

func TestOriginCheckerOutsideProduction(t *testing.T) {
	check := NewOriginChecker("development", nil)

	assert.True(t, check(originRequest(t, "http://anywhere.example")))
	assert.True(t, check(originRequest(t, "")))
}

func TestOriginCheckerProduction(t *testing.T) {
	check := NewOriginChecker("production", []string{"https://pairpad.dev", "https://staging.pairpad.dev"})

	assert.True(t, check(originRequest(t, "https://pairpad.dev")))
	assert.False(t, check(originRequest(t, "https://evil.example")))
	assert.False(t, check(originRequest(t, "")))
}

func TestOriginCheckerProductionWithoutConfiguredOrigins(t *testing.T) {
	check := NewOriginChecker("production", nil)

	assert.False(t, check(originRequest(t, "https://pairpad.dev")))
}

func TestGenerateClientID(t *testing.T) {
	id, err := GenerateClientID()
	require.NoError(t, err)
	assert.Len(t, id, 32)

	other, err := GenerateClientID()
	require.NoError(t, err)
	assert.NotEqual(t, id, other)
}
