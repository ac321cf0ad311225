package websocket

import "github.com/kandev/luban/internal/orchestrator/model"

// helloPayload is the server's half of the handshake: sent once per
// connection, immediately followed by a full resync AppChanged.
type helloPayload struct {
	ProtocolVersion int    `json:"protocol_version"`
	ServerRev       uint64 `json:"server_rev"`
}

// clientHelloPayload is what a client may send back; LastSeenRev is
// informational only -- this server always answers a fresh connection
// with a full resync regardless of what the client claims to have seen,
// since there is no cheap way to validate that claim against history.
type clientHelloPayload struct {
	ProtocolVersion int    `json:"protocol_version"`
	LastSeenRev     uint64 `json:"last_seen_rev"`
}

type appChangedPayload struct {
	Rev uint64                     `json:"rev"`
	App *model.PersistedAppState   `json:"app"`
}

type conversationChangedPayload struct {
	Rev         uint64                      `json:"rev"`
	WorkspaceID uint64                      `json:"workspace_id"`
	ThreadID    uint64                      `json:"thread_id"`
	Snapshot    *model.ConversationSnapshot `json:"snapshot"`
}

// actionEnvelope holds the request_id a client expects echoed back in the
// matching Ack. It carries neither the dotted action name nor the
// action-specific payload.
type actionEnvelope struct {
	RequestID string `json:"request_id"`
}

// ackPayload answers an actionEnvelope once the action has been applied
// and any effects it produced have been scheduled.
type ackPayload struct {
	RequestID string `json:"request_id"`
	Rev       uint64 `json:"rev"`
}
