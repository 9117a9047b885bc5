package health

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"codeberg.org/pairpad/server/internal/store"
)

// Response represents the health check response
type Response struct {
	Status   string `json:"status"`
	Service  string `json:"service"`
	Sessions int    `json:"sessions"`
}

// creates a handler reporting liveness and the number of live sessions
func Handler(sessions *store.Store) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.JSON(http.StatusOK, Response{
			Status:   "healthy",
			Service:  "pairpad",
			Sessions: sessions.Count(),
		})
	}
}

// responds with pong for testing
func PingHandler(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"message": "pong",
	})
}
