package websocket

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"github.com/sirupsen/logrus"

	"github.com/gunagantinikhil/code-cast1/internal/hub"
)

// WebSocketHandler upgrades /ws requests and hands the connection to the Hub.
type WebSocketHandler struct {
	upgrader websocket.Upgrader
	hub      *hub.Hub
}

// NewWebSocketHandler creates a WebSocketHandler. allowOrigin decides whether a browser
// origin may open a connection; requests without an Origin header are always accepted.
func NewWebSocketHandler(h *hub.Hub, allowOrigin func(origin string) bool) *WebSocketHandler {
	if h == nil {
		panic("Hub cannot be nil for WebSocketHandler")
	}
	upgrader := websocket.Upgrader{
		ReadBufferSize:  1024,
		WriteBufferSize: 1024,
		CheckOrigin: func(r *http.Request) bool {
			origin := r.Header.Get("Origin")
			if origin == "" || allowOrigin == nil {
				return true
			}
			return allowOrigin(origin)
		},
	}
	return &WebSocketHandler{upgrader: upgrader, hub: h}
}

// HandleConnection handles GET /ws.
func (h *WebSocketHandler) HandleConnection(c *gin.Context) {
	logCtx := logrus.WithFields(logrus.Fields{"remote": c.ClientIP(), "origin": c.GetHeader("Origin")})

	conn, err := h.upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		// Upgrade has already written the HTTP error.
		logCtx.WithError(err).Warn("WS Handler: Failed to upgrade connection")
		return
	}

	client := h.hub.Serve(conn)
	logCtx.WithField("conn_id", client.ID()).Info("WS Handler: Connection upgraded to WebSocket")
}
