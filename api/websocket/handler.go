package websocket

import (
	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"

	"codeberg.org/pairpad/server/internal/config"
	"codeberg.org/pairpad/server/internal/errors"
	"codeberg.org/pairpad/server/internal/logger"
	ws "codeberg.org/pairpad/server/internal/websocket"
)

// upgrades the HTTP connection and hands it to the hub. Connections start
// unbound; session membership is negotiated over the socket itself via
// join-session, so the upgrade takes no parameters.
func WebSocketHandler(hub *ws.Hub, cfg *config.Config) gin.HandlerFunc {
	upgrader := websocket.Upgrader{
		ReadBufferSize:  1024,
		WriteBufferSize: 1024,
		CheckOrigin:     ws.NewOriginChecker(cfg.Environment, cfg.AllowedOrigins),
	}

	return func(c *gin.Context) {
		clientID, err := ws.GenerateClientID()
		if err != nil {
			errors.InternalError(c, "failed to generate client ID", err)
			return
		}

		conn, err := upgrader.Upgrade(c.Writer, c.Request, nil)
		if err != nil {
			logger.ErrorErr(err, "failed to upgrade connection",
				"ip", c.ClientIP(),
			)

			return
		}

		client := ws.NewClient(clientID, conn, hub)

		hub.Register <- client

		go client.WritePump()
		go client.ReadPump()

		logger.Info("websocket connection established",
			"client_id", clientID,
			"ip", c.ClientIP(),
		)
	}
}
