package handlers

import (
	"context"

	"github.com/gin-gonic/gin"

	"github.com/edgard/construfacil/internal/realtime"
)

// NewChatSocketHandler serves GET /ws, upgrading the request to the realtime
// chat channel.
func NewChatSocketHandler(deps HandlerDeps) gin.HandlerFunc {
	log := deps.Logger.With("handler", "chat_socket")
	upgrader := realtime.NewUpgrader(deps.Config.Server.AllowedOrigins)

	return func(c *gin.Context) {
		conn, err := upgrader.Upgrade(c.Writer, c.Request, nil)
		if err != nil {
			// The upgrader has already written the HTTP error.
			log.WarnContext(c.Request.Context(), "Websocket upgrade failed", "error", err)
			return
		}

		client := realtime.NewClient(deps.Hub, conn, deps.Config.Chat)
		log.DebugContext(c.Request.Context(), "Websocket connected", "client_id", client.ID, "remote", c.ClientIP())
		client.Serve(context.WithoutCancel(c.Request.Context()), deps.Broadcaster.HandleFrame)
	}
}
