package effects

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/kandev/luban/internal/orchestrator/model"
	"github.com/kandev/luban/internal/orchestrator/reducer"
)

// writeFakeAgent writes an executable shell script that prints script,
// flushing after each line, so it behaves like a real agent CLI streaming
// one JSON event per line on stdout. It reads and discards stdin first, the
// way a real agent CLI's prompt-read does, so Run's stdin-writer goroutine
// never blocks.
func writeFakeAgent(t *testing.T, script string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "fake-agent.sh")
	body := "#!/bin/sh\ncat > /dev/null\n" + script
	if err := os.WriteFile(path, []byte(body), 0755); err != nil {
		t.Fatalf("write fake agent: %v", err)
	}
	return path
}

func turnTestSnapshot() (*model.AppState, model.WorkspaceID, model.WorkspaceThreadID) {
	state := model.NewAppState()
	wsID := model.WorkspaceID(1)
	state.Workspaces[wsID] = model.Workspace{ID: wsID, ProjectID: 1, WorkspaceName: "feature", WorktreePath: "/tmp", Status: model.WorkspaceActive}
	threadID := model.WorkspaceThreadID(1)
	key := model.ThreadKey{WorkspaceID: wsID, ThreadID: threadID}
	state.Threads[key] = model.WorkspaceThread{ID: threadID, WorkspaceID: wsID, TurnStatus: model.TurnRunning}
	return state, wsID, threadID
}

func TestRunAgentTurnStreamsToolCallThenFinishes(t *testing.T) {
	script := `echo '{"type":"thread.started","thread_id":"t1"}'
echo '{"type":"turn.started"}'
echo '{"type":"item.started","item":{"type":"command_execution","id":"c1","command":"echo hi","status":"in_progress"}}'
echo '{"type":"item.completed","item":{"type":"command_execution","id":"c1","command":"echo hi","aggregated_output":"hi\n","exit_code":0,"status":"completed"}}'
echo '{"type":"turn.completed","usage":{}}'
`
	binary := writeFakeAgent(t, script)

	d, rs := newTestDispatcher(t)
	d.roots.CodexBin = binary
	snapshot, wsID, threadID := turnTestSnapshot()

	d.runAgentTurn(reducer.Effect{Kind: reducer.EffectRunAgentTurn, WorkspaceID: wsID, ThreadID: threadID, Text: "do it"}, snapshot)

	if !rs.waitFor(reducer.ActionAgentTurnFinished, 2*time.Second) {
		t.Fatal("expected AgentTurnFinished after the script exits")
	}

	reducerState := snapshot.Clone()
	for _, a := range rs.snapshot() {
		if a.Kind == reducer.ActionAgentEventReceived {
			reducerState, _ = reducer.Reduce(reducerState, a)
		}
	}

	key := model.ThreadKey{WorkspaceID: wsID, ThreadID: threadID}
	thread := reducerState.Threads[key]
	var cmdEntries []model.ConversationEntry
	for _, e := range thread.Entries {
		if e.Kind == model.EntryCommandExecution {
			cmdEntries = append(cmdEntries, e)
		}
	}
	if len(cmdEntries) != 1 {
		t.Fatalf("expected exactly one command_execution entry after merge, got %d: %+v", len(cmdEntries), thread.Entries)
	}
	entry := cmdEntries[0]
	if entry.Status != model.ItemCompleted {
		t.Fatalf("expected Completed status, got %v", entry.Status)
	}
	if entry.ExitCode == nil || *entry.ExitCode != 0 {
		t.Fatalf("expected exit code 0, got %v", entry.ExitCode)
	}
	if entry.ID == "c1" {
		t.Fatal("expected the raw item id to be turn-scope qualified, not left bare")
	}
	suffix := "/c1"
	if len(entry.ID) <= len(suffix) || entry.ID[len(entry.ID)-len(suffix):] != suffix {
		t.Fatalf("expected a qualified id ending in %q, got %q", suffix, entry.ID)
	}
}

func TestRunAgentTurnCancelMidTurnKillsSubprocessPromptly(t *testing.T) {
	// Sleeps past the watchdog interval without ever exiting on its own;
	// Cancel must get it killed well within this test's timeout.
	script := `echo '{"type":"item.started","item":{"type":"command_execution","id":"long1","command":"sleep","status":"in_progress"}}'
sleep 5
`
	binary := writeFakeAgent(t, script)

	d, rs := newTestDispatcher(t)
	d.roots.CodexBin = binary
	snapshot, wsID, threadID := turnTestSnapshot()

	key := model.ThreadKey{WorkspaceID: wsID, ThreadID: threadID}
	done := make(chan struct{})
	go func() {
		d.runAgentTurn(reducer.Effect{Kind: reducer.EffectRunAgentTurn, WorkspaceID: wsID, ThreadID: threadID, Text: "do it"}, snapshot)
		close(done)
	}()

	if !rs.waitFor(reducer.ActionAgentEventReceived, 2*time.Second) {
		t.Fatal("expected the in-progress command event before cancelling")
	}

	d.handlesMu.Lock()
	handle := d.handles[key]
	d.handlesMu.Unlock()
	if handle == nil {
		t.Fatal("expected a handle to be registered for the in-flight turn")
	}
	handle.Cancel()

	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("expected the cancelled turn to finish promptly")
	}

	if !rs.waitFor(reducer.ActionAgentTurnFinished, time.Second) {
		t.Fatal("expected AgentTurnFinished after cancellation")
	}
	if rs.count(reducer.ActionConversationLoadFailed) != 0 {
		t.Fatal("a cancelled turn must not be reported as an error")
	}

	// The partial item already observed must remain reachable -- the
	// dispatcher itself never drops it, only the reducer's merge keeps it.
	found := false
	for _, a := range rs.snapshot() {
		if a.Kind == reducer.ActionAgentEventReceived {
			found = true
		}
	}
	if !found {
		t.Fatal("expected the partial item event to have been submitted before cancellation")
	}
}
