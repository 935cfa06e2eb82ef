package realtime

import (
	"net/http"
	"slices"
	"strings"

	"github.com/gorilla/websocket"
)

// NewUpgrader returns a websocket upgrader that accepts the given origins.
// "*" accepts any origin. Requests without an Origin header are accepted.
func NewUpgrader(allowedOrigins []string) *websocket.Upgrader {
	allowAll := slices.Contains(allowedOrigins, "*")
	return &websocket.Upgrader{
		ReadBufferSize:  1024,
		WriteBufferSize: 1024,
		CheckOrigin: func(r *http.Request) bool {
			if allowAll {
				return true
			}
			origin := r.Header.Get("Origin")
			if origin == "" {
				return true
			}
			return slices.ContainsFunc(allowedOrigins, func(o string) bool {
				return strings.EqualFold(strings.TrimRight(o, "/"), origin)
			})
		},
	}
}
