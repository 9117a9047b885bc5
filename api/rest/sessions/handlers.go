package sessions

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"codeberg.org/pairpad/server/internal/errors"
	"codeberg.org/pairpad/server/internal/logger"
	"codeberg.org/pairpad/server/internal/store"
)

// creates a handler that provisions a new empty session
func CreateSessionHandler(sessions *store.Store, sessionTTL time.Duration) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req CreateSessionRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			errors.BadRequest(c, "Invalid or missing language", err)
			return
		}

		language, ok := store.ParseLanguage(req.Language)
		if !ok {
			errors.BadRequest(c, "Invalid or missing language", nil)
			return
		}

		session, err := sessions.Create(language)
		if err != nil {
			errors.InternalError(c, "failed to create session", err)
			return
		}

		logger.Info("session created",
			"session_id", session.ID,
			"language", session.Language,
		)

		c.JSON(http.StatusCreated, CreateSessionResponse{
			SessionID: session.ID,
			ExpiresIn: sessionTTL.Milliseconds(),
		})
	}
}

// creates a handler that reports session metadata. Unknown ids still answer
// 200 with exists set to false, so clients can poll without handling 404s.
func GetSessionHandler(sessions *store.Store) gin.HandlerFunc {
	return func(c *gin.Context) {
		sessionID := c.Param("id")

		c.JSON(http.StatusOK, sessions.Metadata(sessionID))
	}
}

// creates a handler that returns the current shared buffer and language
func GetSessionCodeHandler(sessions *store.Store) gin.HandlerFunc {
	return func(c *gin.Context) {
		sessionID := c.Param("id")

		session, exists := sessions.Get(sessionID)
		if !exists {
			errors.SessionNotFound(c)
			return
		}

		c.JSON(http.StatusOK, CodeResponse{
			Code:     session.Code,
			Language: session.Language,
		})
	}
}
