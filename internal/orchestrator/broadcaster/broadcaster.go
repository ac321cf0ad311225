// Package broadcaster turns AppState mutations into the minimal set of
// server events a connected client needs, tagged with a monotonically
// increasing revision so a reconnecting client can resync without replaying
// history it already has.
package broadcaster

import (
	"sync"

	"github.com/kandev/luban/internal/orchestrator/model"
)

// EventKind discriminates ServerEvent's tagged union.
type EventKind string

const (
	EventAppChanged          EventKind = "app_changed"
	EventConversationChanged EventKind = "conversation_changed"
)

// ServerEvent is one unit of server-pushed state, always tagged with the
// revision of the AppState that produced it.
type ServerEvent struct {
	Kind EventKind
	Rev  uint64

	AppSnapshot *model.PersistedAppState

	WorkspaceID         model.WorkspaceID
	ThreadID            model.WorkspaceThreadID
	ConversationSnapshot *model.ConversationSnapshot
}

// Tracker owns the global revision counter. Exactly one Tracker exists per
// running orchestrator; every reducer step that produces at least one
// effect touching shared state should advance through it.
type Tracker struct {
	mu  sync.Mutex
	rev uint64
}

// NewTracker starts a Tracker at revision 0; the first Next call produces
// revision 1, matching the hello protocol's server_rev semantics (rev 0
// means "nothing has happened yet").
func NewTracker() *Tracker {
	return &Tracker{}
}

// Rev returns the current revision without advancing it.
func (t *Tracker) Rev() uint64 {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.rev
}

// NextAppChanged advances the revision and produces an AppChanged event
// carrying the full current snapshot. The orchestrator takes the
// simple-and-correct path here (diffing AppState into a minimal per-field
// patch is not worth the complexity at this scale): every mutation pushes
// the whole snapshot.
func (t *Tracker) NextAppChanged(state *model.AppState) ServerEvent {
	t.mu.Lock()
	t.rev++
	rev := t.rev
	t.mu.Unlock()

	snapshot := state.ToPersisted()
	return ServerEvent{Kind: EventAppChanged, Rev: rev, AppSnapshot: &snapshot}
}

// NextConversationChanged advances the revision and produces a
// ConversationChanged event scoped to one thread, used after an
// AgentEventReceived/ConversationLoaded step where pushing the whole
// AppState snapshot would be wasteful for a conversation that can run to
// thousands of entries.
func (t *Tracker) NextConversationChanged(wsID model.WorkspaceID, threadID model.WorkspaceThreadID, entries []model.ConversationEntry) ServerEvent {
	t.mu.Lock()
	t.rev++
	rev := t.rev
	t.mu.Unlock()

	snapshot := model.ConversationSnapshot{WorkspaceID: wsID, ThreadID: threadID, Entries: entries}
	return ServerEvent{
		Kind:                EventConversationChanged,
		Rev:                 rev,
		WorkspaceID:         wsID,
		ThreadID:            threadID,
		ConversationSnapshot: &snapshot,
	}
}

// ResyncEvent returns the AppChanged event a newly (re)connecting client
// should receive, without advancing the revision -- a resync observes the
// current state, it doesn't cause a new one.
func (t *Tracker) ResyncEvent(state *model.AppState) ServerEvent {
	t.mu.Lock()
	rev := t.rev
	t.mu.Unlock()

	snapshot := state.ToPersisted()
	return ServerEvent{Kind: EventAppChanged, Rev: rev, AppSnapshot: &snapshot}
}
