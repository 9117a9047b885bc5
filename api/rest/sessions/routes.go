package sessions

import (
	"fmt"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/ulule/limiter/v3"
	mgin "github.com/ulule/limiter/v3/drivers/middleware/gin"
	"github.com/ulule/limiter/v3/drivers/store/memory"

	"codeberg.org/pairpad/server/internal/errors"
	"codeberg.org/pairpad/server/internal/store"
)

// RegisterRoutes mounts the session REST endpoints. Session creation is rate
// limited per IP; rateFormat uses the limiter notation (e.g. "30-M").
func RegisterRoutes(router *gin.RouterGroup, sessions *store.Store, sessionTTL time.Duration, rateFormat string) error {
	createLimiter, err := newCreateLimiter(rateFormat)
	if err != nil {
		return fmt.Errorf("invalid session creation rate %q: %w", rateFormat, err)
	}

	router.POST("/sessions", createLimiter, CreateSessionHandler(sessions, sessionTTL))
	router.GET("/sessions/:id", GetSessionHandler(sessions))
	router.GET("/sessions/:id/code", GetSessionCodeHandler(sessions))

	return nil
}

func newCreateLimiter(rateFormat string) (gin.HandlerFunc, error) {
	rate, err := limiter.NewRateFromFormatted(rateFormat)
	if err != nil {
		return nil, err
	}

	instance := limiter.New(memory.NewStore(), rate)

	return mgin.NewMiddleware(instance, mgin.WithLimitReachedHandler(func(c *gin.Context) {
		errors.TooManyRequests(c, "session creation rate exceeded")
	})), nil
}
