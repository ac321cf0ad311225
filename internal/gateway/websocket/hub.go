package websocket

import (
	"context"
	"encoding/json"
	"sync"

	"github.com/kandev/luban/internal/common/logger"
	"github.com/kandev/luban/internal/orchestrator"
	"github.com/kandev/luban/internal/orchestrator/broadcaster"
	ws "github.com/kandev/luban/pkg/websocket"
)

// protocolVersion is exchanged in the Hello handshake. Bumping it signals a
// client that its cached resync assumptions no longer hold.
const protocolVersion = 1

// Hub tracks every connected client and fans out ServerEvents published by
// the orchestrator loop. Its broadcast loop fans out uniformly --
// AppChanged/ConversationChanged are global or per-thread, not
// per-client-subscription scoped -- but a client whose send buffer is full
// is disconnected rather than silently skipped, so a client never believes
// itself current when it has actually missed a revision.
type Hub struct {
	loop *orchestrator.Loop
	log  *logger.Logger

	mu      sync.RWMutex
	clients map[string]*Client

	register   chan *Client
	unregister chan *Client
}

// NewHub returns a Hub ready to Run.
func NewHub(loop *orchestrator.Loop, log *logger.Logger) *Hub {
	return &Hub{
		loop:       loop,
		log:        log,
		clients:    make(map[string]*Client),
		register:   make(chan *Client),
		unregister: make(chan *Client),
	}
}

// Run drains the orchestrator's event stream and the register/unregister
// channels until ctx is cancelled.
func (h *Hub) Run(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			h.closeAll()
			return
		case c := <-h.register:
			h.mu.Lock()
			h.clients[c.id] = c
			h.mu.Unlock()
			c.sendHello(h.loop.Rev())
			c.sendServerEvent(h.loop.ResyncEvent())
		case c := <-h.unregister:
			h.mu.Lock()
			if _, ok := h.clients[c.id]; ok {
				delete(h.clients, c.id)
				close(c.send)
			}
			h.mu.Unlock()
		case event := <-h.loop.Events():
			h.broadcast(event)
		}
	}
}

func (h *Hub) closeAll() {
	h.mu.Lock()
	defer h.mu.Unlock()
	for id, c := range h.clients {
		close(c.send)
		delete(h.clients, id)
	}
}

// broadcast fans a ServerEvent out to every client, or (for a
// ConversationChanged event) to every client -- the protocol has no
// per-client subscription narrowing, so scoping happens in the payload's
// workspace_id/thread_id, not in delivery.
func (h *Hub) broadcast(event broadcaster.ServerEvent) {
	msg, err := serverEventMessage(event)
	if err != nil {
		h.log.WithError(err).Warn("encode server event")
		return
	}
	data, err := json.Marshal(msg)
	if err != nil {
		h.log.WithError(err).Warn("marshal server event message")
		return
	}

	h.mu.RLock()
	targets := make([]*Client, 0, len(h.clients))
	for _, c := range h.clients {
		targets = append(targets, c)
	}
	h.mu.RUnlock()

	for _, c := range targets {
		select {
		case c.send <- data:
		default:
			// A client that can't keep up with its send buffer has
			// necessarily missed a revision, and the resync protocol only
			// recovers that on a fresh connection -- so disconnect it
			// instead, forcing its own reconnect logic to fire and pick up
			// a full resync.
			go h.disconnect(c)
		}
	}
}

func (h *Hub) disconnect(c *Client) {
	h.unregister <- c
	c.conn.Close()
}

func serverEventMessage(event broadcaster.ServerEvent) (*ws.Message, error) {
	switch event.Kind {
	case broadcaster.EventAppChanged:
		return ws.NewNotification(ws.ActionAppChanged, appChangedPayload{Rev: event.Rev, App: event.AppSnapshot})
	case broadcaster.EventConversationChanged:
		return ws.NewNotification(ws.ActionConversationChanged, conversationChangedPayload{
			Rev:         event.Rev,
			WorkspaceID: uint64(event.WorkspaceID),
			ThreadID:    uint64(event.ThreadID),
			Snapshot:    event.ConversationSnapshot,
		})
	default:
		return ws.NewNotification(string(event.Kind), event)
	}
}
