package main

import (
	"github.com/gin-gonic/gin"

	"codeberg.org/pairpad/server/api/rest/health"
	"codeberg.org/pairpad/server/api/rest/sessions"
	"codeberg.org/pairpad/server/api/websocket"
)

// sets up all API routes and middleware
func RegisterRoutes(router *gin.Engine, server *Server) error {
	router.Use(CORSMiddleware(server.config.AllowedOrigins))
	router.GET("/health", health.Handler(server.sessions))

	api := router.Group("/api")

	{
		api.GET("/ping", health.PingHandler)

		if err := sessions.RegisterRoutes(api, server.sessions, server.config.SessionTTL, server.config.CreateSessionRate); err != nil {
			return err
		}
	}

	websocket.RegisterRoutes(&router.RouterGroup, server.hub, server.config)

	return nil
}
