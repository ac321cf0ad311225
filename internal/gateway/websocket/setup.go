package websocket

import (
	"github.com/gin-gonic/gin"

	"github.com/kandev/luban/internal/common/logger"
	"github.com/kandev/luban/internal/orchestrator"
)

// Gateway bundles the Hub and Handler that make up the WebSocket surface.
type Gateway struct {
	Hub     *Hub
	Handler *Handler
}

// NewGateway wires a Hub and Handler onto loop.
func NewGateway(loop *orchestrator.Loop, log *logger.Logger) *Gateway {
	hub := NewHub(loop, log)
	return &Gateway{
		Hub:     hub,
		Handler: NewHandler(hub, loop, log),
	}
}

// SetupRoutes registers the WebSocket upgrade route on router. The caller is
// responsible for putting the session-cookie auth middleware in front of the
// route group this is added to.
func (g *Gateway) SetupRoutes(router gin.IRouter) {
	router.GET("/api/events", g.Handler.HandleConnection)
}
