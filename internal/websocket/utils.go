package websocket

import (
	"crypto/rand"
	"encoding/hex"
	"net/http"
	"slices"

	"codeberg.org/pairpad/server/internal/logger"
)

// NewOriginChecker builds the upgrade origin check from configuration. Any
// origin is allowed outside production; in production the Origin header must
// match one of allowedOrigins exactly.
func NewOriginChecker(environment string, allowedOrigins []string) func(*http.Request) bool {
	return func(r *http.Request) bool {
		if environment != "production" {
			return true
		}

		origin := r.Header.Get("Origin")
		if origin == "" {
			logger.Warn("websocket connection with no origin header")
			return false
		}

		if len(allowedOrigins) == 0 {
			logger.Warn("websocket origin rejected - no origins configured",
				"origin", origin,
			)
			return false
		}

		if slices.Contains(allowedOrigins, origin) {
			return true
		}

		logger.Warn("websocket origin rejected - not in allowed origins",
			"origin", origin,
			"allowed_origins", allowedOrigins,
		)

		return false
	}
}

// generates a random identifier for a new connection
func GenerateClientID() (string, error) {
	bytes := make([]byte, 16)

	if _, err := rand.Read(bytes); err != nil {
		return "", err
	}

	return hex.EncodeToString(bytes), nil
}
