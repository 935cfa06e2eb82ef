package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// NewHealthHandler serves GET /health.
func NewHealthHandler(deps HandlerDeps) gin.HandlerFunc {
	return func(c *gin.Context) {
		body := gin.H{"status": "ok", "service": "construfacil"}
		if deps.Hub != nil {
			body["clients"] = deps.Hub.ClientCount()
		}
		if deps.Chat != nil {
			body["messages"] = deps.Chat.Len()
		}
		c.JSON(http.StatusOK, body)
	}
}
