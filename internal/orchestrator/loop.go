// Package orchestrator wires the reducer, the effect dispatcher, the
// broadcaster and the persistence store into a single-threaded actor: every
// Action, whether it came from a WebSocket client or from an effect
// reporting back, is applied by exactly one goroutine, so the reducer's
// "pure function, no I/O" contract never has to account for concurrent
// callers.
package orchestrator

import (
	"context"

	"github.com/kandev/luban/internal/common/config"
	"github.com/kandev/luban/internal/common/logger"
	"github.com/kandev/luban/internal/orchestrator/broadcaster"
	"github.com/kandev/luban/internal/orchestrator/effects"
	"github.com/kandev/luban/internal/orchestrator/model"
	"github.com/kandev/luban/internal/orchestrator/persistence"
	"github.com/kandev/luban/internal/orchestrator/reducer"
)

// actionsChanCapacity is generous: the loop drains far faster than a
// human or an agent CLI can produce actions, so this only needs to absorb
// bursts (an agent streaming many items per second) without blocking the
// agentrunner callback goroutine that submits them.
const actionsChanCapacity = 1024

// Loop owns the current AppState and is the only goroutine allowed to
// mutate it.
type Loop struct {
	dispatcher *effects.Dispatcher
	tracker    *broadcaster.Tracker

	actions chan queuedAction
	events  chan broadcaster.ServerEvent

	state *model.AppState
}

// queuedAction pairs an Action with an optional completion channel. done is
// nil for fire-and-forget submissions (effects reporting back); it is set
// for a client-originated Action that expects an Ack once the action has
// been applied.
type queuedAction struct {
	action reducer.Action
	done   chan uint64
}

// New constructs a Loop. The caller must call Run before Submit does
// anything useful; actions sent before Run starts simply queue in the
// buffered channel.
func New(roots config.RootsConfig, store *persistence.Store, log *logger.Logger) *Loop {
	l := &Loop{
		tracker: broadcaster.NewTracker(),
		actions: make(chan queuedAction, actionsChanCapacity),
		events:  make(chan broadcaster.ServerEvent, actionsChanCapacity),
		state:   model.NewAppState(),
	}
	l.dispatcher = effects.New(roots, store, log, l.Submit, l.CurrentState)
	return l
}

// Submit enqueues an action for the loop goroutine to apply, without
// waiting for it to be processed. Safe to call from any goroutine,
// including the loop's own effect dispatcher.
func (l *Loop) Submit(action reducer.Action) {
	l.actions <- queuedAction{action: action}
}

// SubmitAndAwait enqueues action and blocks until the loop goroutine has
// applied it and dispatched any resulting effects, returning the server
// revision as of that point. A WebSocket Action handler uses this to
// answer with an Ack{request_id, rev} per the protocol's "once applied and
// scheduled, not necessarily completed" contract.
func (l *Loop) SubmitAndAwait(action reducer.Action) uint64 {
	done := make(chan uint64, 1)
	l.actions <- queuedAction{action: action, done: done}
	return <-done
}

// CurrentState returns the loop's live AppState pointer. Callers outside
// the loop goroutine (the save worker, a resync handler) must treat it as
// read-only: the loop goroutine may replace the fields it points at the
// moment after this returns, but never mutates a *model.AppState in place
// once handed out, so reading it here is safe even without a lock.
func (l *Loop) CurrentState() *model.AppState {
	return l.state
}

// Events returns the channel of server events a WebSocket hub should
// forward to every connected client.
func (l *Loop) Events() <-chan broadcaster.ServerEvent {
	return l.events
}

// ResyncEvent returns the AppChanged snapshot a freshly (re)connecting
// client should receive.
func (l *Loop) ResyncEvent() broadcaster.ServerEvent {
	return l.tracker.ResyncEvent(l.state)
}

// Rev returns the loop's current revision without advancing it.
func (l *Loop) Rev() uint64 {
	return l.tracker.Rev()
}

// Run drives the actor loop until ctx is cancelled. It should run on its
// own goroutine for the lifetime of the process.
func (l *Loop) Run(ctx context.Context) {
	l.Submit(reducer.Action{Kind: reducer.ActionAppStarted})

	for {
		select {
		case <-ctx.Done():
			return
		case q := <-l.actions:
			l.apply(q.action)
			if q.done != nil {
				q.done <- l.tracker.Rev()
			}
		}
	}
}

// apply runs one reducer step, dispatches its effects against the
// pre-step snapshot the reducer also cloned from, and publishes a
// revision-tagged event when the action is the kind a client needs to
// hear about.
func (l *Loop) apply(action reducer.Action) {
	before := l.state
	next, effs := reducer.Reduce(before, action)
	l.state = next

	for _, eff := range effs {
		l.dispatcher.Dispatch(eff, before)
	}

	if action.Kind == reducer.ActionAgentEventReceived {
		thread, ok := next.Threads[model.ThreadKey{WorkspaceID: action.WorkspaceID, ThreadID: action.ThreadID}]
		if ok {
			l.publish(l.tracker.NextConversationChanged(action.WorkspaceID, action.ThreadID, thread.Entries))
			return
		}
	}

	if shouldBroadcast(action.Kind) {
		l.publish(l.tracker.NextAppChanged(next))
	}
}

func (l *Loop) publish(event broadcaster.ServerEvent) {
	select {
	case l.events <- event:
	default:
		// A full events channel means no hub is draining it yet (startup
		// race) or every client is badly backed up; dropping an
		// AppChanged here is safe because the next one carries a full
		// snapshot anyway, and a reconnect always gets a fresh resync.
	}
}

// shouldBroadcast reports whether applying action could plausibly have
// changed something a connected client's snapshot depends on. The save
// bookkeeping actions and the action that only arms the next one
// (AppStarted) are excluded; AppStateLoaded is broadcast.
func shouldBroadcast(kind reducer.ActionKind) bool {
	switch kind {
	case reducer.ActionAppStarted,
		reducer.ActionAppStateSaved,
		reducer.ActionAppStateSaveFailed:
		return false
	default:
		return true
	}
}
