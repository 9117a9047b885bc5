package main

import (
	"github.com/gin-gonic/gin"

	"codeberg.org/pairpad/server/internal/config"
	"codeberg.org/pairpad/server/internal/store"
	ws "codeberg.org/pairpad/server/internal/websocket"
)

// holds all dependencies and state for the API server
type Server struct {
	config         *config.Config
	sessions       *store.Store
	hub            *ws.Hub
	cleanupService *store.CleanupService
	router         *gin.Engine
}
