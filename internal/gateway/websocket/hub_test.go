package websocket

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	gorillaws "github.com/gorilla/websocket"

	"github.com/kandev/luban/internal/common/logger"
	"github.com/kandev/luban/internal/orchestrator/broadcaster"
)

// newTestConn returns a live server-side *websocket.Conn backed by a real
// HTTP upgrade, so exercising Hub.disconnect's c.conn.Close() doesn't panic
// on a nil connection the way a bare &Client{} would.
func newTestConn(t *testing.T) *gorillaws.Conn {
	t.Helper()
	connCh := make(chan *gorillaws.Conn, 1)
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		conn, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			t.Errorf("upgrade: %v", err)
			return
		}
		connCh <- conn
	}))
	t.Cleanup(srv.Close)

	wsURL := "ws" + srv.URL[len("http"):]
	clientConn, _, err := gorillaws.DefaultDialer.Dial(wsURL, nil)
	if err != nil {
		t.Fatalf("dial: %v", err)
	}
	t.Cleanup(func() { clientConn.Close() })

	return <-connCh
}

func TestBroadcastDisconnectsClientWithFullSendBuffer(t *testing.T) {
	h := &Hub{
		log:        logger.Default(),
		clients:    make(map[string]*Client),
		register:   make(chan *Client),
		unregister: make(chan *Client, 1),
	}

	// send has capacity 0 so the very first broadcast finds it full.
	c := &Client{id: "client-1", conn: newTestConn(t), send: make(chan []byte)}
	h.clients[c.id] = c

	event := broadcaster.ServerEvent{Kind: broadcaster.EventAppChanged, Rev: 1}
	h.broadcast(event)

	select {
	case unregistered := <-h.unregister:
		if unregistered.id != c.id {
			t.Fatalf("expected %s to be unregistered, got %s", c.id, unregistered.id)
		}
	case <-time.After(time.Second):
		t.Fatal("expected a full send buffer to trigger disconnect")
	}
}

func TestBroadcastDeliversToClientWithRoom(t *testing.T) {
	h := &Hub{
		log:        logger.Default(),
		clients:    make(map[string]*Client),
		register:   make(chan *Client),
		unregister: make(chan *Client, 1),
	}

	c := &Client{id: "client-1", send: make(chan []byte, 1)}
	h.clients[c.id] = c

	event := broadcaster.ServerEvent{Kind: broadcaster.EventAppChanged, Rev: 1}
	h.broadcast(event)

	select {
	case data := <-c.send:
		if len(data) == 0 {
			t.Fatal("expected a non-empty payload")
		}
	case <-time.After(time.Second):
		t.Fatal("expected the event to be delivered")
	}
}
