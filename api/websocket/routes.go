package websocket

import (
	"github.com/gin-gonic/gin"

	"codeberg.org/pairpad/server/internal/config"
	ws "codeberg.org/pairpad/server/internal/websocket"
)

func RegisterRoutes(router *gin.RouterGroup, hub *ws.Hub, cfg *config.Config) {
	router.GET("/ws", WebSocketHandler(hub, cfg))
}
