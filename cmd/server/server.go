package main

import (
	"github.com/gin-gonic/gin"

	"codeberg.org/pairpad/server/internal/config"
	"codeberg.org/pairpad/server/internal/store"
	ws "codeberg.org/pairpad/server/internal/websocket"
)

// creates and configures a new server instance with all dependencies
func NewServer(cfg *config.Config) (*Server, error) {
	sessions := store.New()
	hub := ws.NewHub(sessions)

	cleanupService := store.NewCleanupService(
		sessions,
		cfg.CleanupInterval,
		cfg.SessionTTL,
		cfg.EmptySessionTTL,
	)

	if cfg.Environment == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	router := gin.Default()

	server := &Server{
		config:         cfg,
		sessions:       sessions,
		hub:            hub,
		cleanupService: cleanupService,
		router:         router,
	}

	if err := RegisterRoutes(router, server); err != nil {
		return nil, err
	}

	return server, nil
}
