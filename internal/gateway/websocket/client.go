package websocket

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"

	"github.com/kandev/luban/internal/common/logger"
	"github.com/kandev/luban/internal/orchestrator"
	"github.com/kandev/luban/internal/orchestrator/broadcaster"
	ws "github.com/kandev/luban/pkg/websocket"
)

const (
	writeWait      = 10 * time.Second
	pongWait       = 60 * time.Second
	pingInterval   = (pongWait * 9) / 10
	maxMessageSize = 512 * 1024
	sendBufferSize = 256

	// actionAck names the response to a submitted Action. It is not in
	// pkg/websocket's action list because it is never dispatched through
	// the reducer -- it only ever appears as a Response's Action field.
	actionAck = "ack"
)

// Client is one connected WebSocket peer.
type Client struct {
	id   string
	conn *websocket.Conn
	hub  *Hub
	loop *orchestrator.Loop
	log  *logger.Logger

	send chan []byte
}

// NewClient wraps conn as a tracked peer of hub.
func NewClient(conn *websocket.Conn, hub *Hub, loop *orchestrator.Loop, log *logger.Logger) *Client {
	id := uuid.NewString()
	return &Client{
		id:   id,
		conn: conn,
		hub:  hub,
		loop: loop,
		log:  log,
		send: make(chan []byte, sendBufferSize),
	}
}

func (c *Client) sendHello(serverRev uint64) {
	msg, err := ws.NewNotification(ws.ActionHello, helloPayload{ProtocolVersion: protocolVersion, ServerRev: serverRev})
	if err != nil {
		return
	}
	data, err := json.Marshal(msg)
	if err != nil {
		return
	}
	select {
	case c.send <- data:
	default:
	}
}

func (c *Client) sendServerEvent(event broadcaster.ServerEvent) {
	msg, err := serverEventMessage(event)
	if err != nil {
		return
	}
	data, err := json.Marshal(msg)
	if err != nil {
		return
	}
	select {
	case c.send <- data:
	default:
	}
}

// ReadPump reads client messages until the connection closes or fails. It
// must run on its own goroutine; it unregisters the client on return.
func (c *Client) ReadPump() {
	defer func() {
		c.hub.unregister <- c
		c.conn.Close()
	}()

	c.conn.SetReadLimit(maxMessageSize)
	_ = c.conn.SetReadDeadline(time.Now().Add(pongWait))
	c.conn.SetPongHandler(func(string) error {
		return c.conn.SetReadDeadline(time.Now().Add(pongWait))
	})

	for {
		_, data, err := c.conn.ReadMessage()
		if err != nil {
			return
		}
		go c.handleMessage(data)
	}
}

// WritePump drains send and forwards it to the connection, plus a periodic
// ping to keep intermediate proxies from timing the connection out.
func (c *Client) WritePump() {
	ticker := time.NewTicker(pingInterval)
	defer func() {
		ticker.Stop()
		c.conn.Close()
	}()

	for {
		select {
		case data, ok := <-c.send:
			_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				_ = c.conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}
			if err := c.conn.WriteMessage(websocket.TextMessage, data); err != nil {
				return
			}
		case <-ticker.C:
			_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}

func (c *Client) handleMessage(data []byte) {
	var msg ws.Message
	if err := json.Unmarshal(data, &msg); err != nil {
		c.log.WithError(err).Warn("malformed client message")
		return
	}

	if msg.Action == ws.ActionHello {
		// Informational only -- every connection already received its
		// Hello/resync pair at registration time.
		return
	}

	if msg.Action == ws.ActionHealthCheck {
		c.replyAck(msg.ID, c.loop.Rev())
		return
	}

	action, known, err := decodeAction(msg.Action, msg.Payload)
	if err != nil {
		c.replyError(msg.ID, msg.Action, ws.ErrorCodeBadRequest, err.Error())
		return
	}
	if !known {
		c.replyError(msg.ID, msg.Action, ws.ErrorCodeUnknownAction, "unknown action: "+msg.Action)
		return
	}

	rev := c.loop.SubmitAndAwait(action)
	c.replyAck(msg.ID, rev)
}

func (c *Client) replyAck(requestID string, rev uint64) {
	resp, err := ws.NewResponse(requestID, actionAck, ackPayload{RequestID: requestID, Rev: rev})
	if err != nil {
		return
	}
	data, err := json.Marshal(resp)
	if err != nil {
		return
	}
	select {
	case c.send <- data:
	default:
	}
}

func (c *Client) replyError(requestID, action, code, message string) {
	msg, err := ws.NewError(requestID, action, code, message, nil)
	if err != nil {
		return
	}
	data, err := json.Marshal(msg)
	if err != nil {
		return
	}
	select {
	case c.send <- data:
	default:
	}
}
