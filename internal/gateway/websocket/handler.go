package websocket

import (
	"net/http"

	"github.com/gin-gonic/gin"
	gorillaws "github.com/gorilla/websocket"
	"go.uber.org/zap"

	"github.com/kandev/luban/internal/common/logger"
	"github.com/kandev/luban/internal/orchestrator"
)

var upgrader = gorillaws.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin: func(r *http.Request) bool {
		return true
	},
}

// Handler upgrades incoming HTTP requests to WebSocket connections and wires
// them into a Hub.
type Handler struct {
	hub  *Hub
	loop *orchestrator.Loop
	log  *logger.Logger
}

// NewHandler returns a Handler that registers new connections with hub.
func NewHandler(hub *Hub, loop *orchestrator.Loop, log *logger.Logger) *Handler {
	return &Handler{
		hub:  hub,
		loop: loop,
		log:  log.WithFields(zap.String("component", "ws_handler")),
	}
}

// HandleConnection upgrades c's request and runs the resulting client's
// pumps until the connection closes. The session cookie that gated access to
// this route has already been checked by the auth middleware.
func (h *Handler) HandleConnection(c *gin.Context) {
	conn, err := upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		h.log.WithError(err).Warn("upgrade failed")
		return
	}

	client := NewClient(conn, h.hub, h.loop, h.log)
	h.hub.register <- client

	go client.WritePump()
	client.ReadPump()
}
