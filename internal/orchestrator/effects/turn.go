package effects

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"os/exec"
	"strings"

	"github.com/kandev/luban/internal/orchestrator/agentrunner"
	"github.com/kandev/luban/internal/orchestrator/idempotency"
	"github.com/kandev/luban/internal/orchestrator/model"
	"github.com/kandev/luban/internal/orchestrator/reducer"
)

func (d *Dispatcher) openWorkspaceInIDE(eff reducer.Effect, snapshot *model.AppState) {
	ws, ok := snapshot.Workspaces[eff.WorkspaceID]
	if !ok {
		d.submit(reducer.Action{Kind: reducer.ActionOpenWorkspaceInIDEFailed, WorkspaceID: eff.WorkspaceID, Message: "workspace not found"})
		return
	}

	editor := strings.TrimSpace(os.Getenv("LUBAN_IDE_COMMAND"))
	if editor == "" {
		editor = "code"
	}
	cmd := exec.Command(editor, ws.WorktreePath)
	if err := cmd.Start(); err != nil {
		d.submit(reducer.Action{Kind: reducer.ActionOpenWorkspaceInIDEFailed, WorkspaceID: eff.WorkspaceID, Message: fmt.Sprintf("launch %s: %v", editor, err)})
		return
	}
	// The editor process outlives this goroutine deliberately; Release
	// detaches it instead of leaving a zombie behind once it exits.
	_ = cmd.Process.Release()
}

func (d *Dispatcher) openWorkspacePullRequest(eff reducer.Effect, snapshot *model.AppState) {
	ws, ok := snapshot.Workspaces[eff.WorkspaceID]
	if !ok {
		d.submit(reducer.Action{Kind: reducer.ActionOpenWorkspacePullRequestFailed, WorkspaceID: eff.WorkspaceID, Message: "workspace not found"})
		return
	}

	cmd := exec.Command("gh", "pr", "create", "--web", "--head", ws.BranchName)
	cmd.Dir = ws.WorktreePath
	output, err := cmd.CombinedOutput()
	if err != nil {
		msg := strings.TrimSpace(string(output))
		if msg == "" {
			msg = err.Error()
		}
		d.submit(reducer.Action{Kind: reducer.ActionOpenWorkspacePullRequestFailed, WorkspaceID: eff.WorkspaceID, Message: msg})
		return
	}
}

// runAgentTurn implements the RunAgentTurn orchestration: allocate a
// turn-scope id, render the prompt, spawn the agent CLI, and feed every
// event back into the reducer as AgentEventReceived until the turn ends.
func (d *Dispatcher) runAgentTurn(eff reducer.Effect, snapshot *model.AppState) {
	key := model.ThreadKey{WorkspaceID: eff.WorkspaceID, ThreadID: eff.ThreadID}
	ws, ok := snapshot.Workspaces[eff.WorkspaceID]
	if !ok {
		d.finishTurn(key)
		return
	}
	thread, ok := snapshot.Threads[key]
	if !ok {
		d.finishTurn(key)
		return
	}

	dedupKey := fmt.Sprintf("run_agent_turn:%d:%d", eff.WorkspaceID, eff.ThreadID)
	begin := d.turnDedup.Begin(dedupKey)
	switch begin.Outcome {
	case idempotency.Done:
		d.finishTurn(key)
		return
	case idempotency.Wait:
		<-begin.Chan
		d.finishTurn(key)
		return
	}

	runner, binary, argv := d.buildInvocation(ws, thread, eff)

	turnScopeID := newTurnScopeID()
	handle := &agentrunner.Handle{}
	d.handlesMu.Lock()
	d.handles[key] = handle
	d.handlesMu.Unlock()
	defer func() {
		d.handlesMu.Lock()
		delete(d.handles, key)
		d.handlesMu.Unlock()
	}()

	onEvent := func(raw json.RawMessage) error {
		qualified, err := qualifyEvent(turnScopeID, raw)
		if err != nil {
			return err
		}
		d.submit(reducer.Action{Kind: reducer.ActionAgentEventReceived, WorkspaceID: eff.WorkspaceID, ThreadID: eff.ThreadID, Event: qualified})
		return nil
	}

	params := agentrunner.Params{
		BinaryPath:     binary,
		WorktreePath:   ws.WorktreePath,
		Prompt:         renderPrompt(eff.Text, eff.Attachments, runner),
		Model:          derefOr(eff.RunConfig.ModelID, ""),
		ThinkingEffort: derefOr(eff.RunConfig.ThinkingEffort, ""),
	}

	_, runErr := agentrunner.Run(context.Background(), argv, params, handle, onEvent)
	d.turnDedup.Complete(dedupKey, struct{}{}, nil)
	if runErr != nil {
		d.log.WithError(runErr).Warn("agent turn ended with an error")
		d.submit(reducer.Action{Kind: reducer.ActionConversationLoadFailed, WorkspaceID: eff.WorkspaceID, ThreadID: eff.ThreadID, Message: runErr.Error()})
	}
	d.finishTurn(key)
}

func (d *Dispatcher) finishTurn(key model.ThreadKey) {
	d.submit(reducer.Action{Kind: reducer.ActionAgentTurnFinished, WorkspaceID: key.WorkspaceID, ThreadID: key.ThreadID})
}

func derefOr(s *string, fallback string) string {
	if s == nil {
		return fallback
	}
	return *s
}

// buildInvocation picks the runner (explicit override, else the thread's
// default, else Codex) and returns its binary path and argv.
func (d *Dispatcher) buildInvocation(ws model.Workspace, thread model.WorkspaceThread, eff reducer.Effect) (model.RunnerKind, string, []string) {
	runner := model.RunnerCodex
	if eff.RunConfig.Runner != nil {
		runner = *eff.RunConfig.Runner
	} else if thread.RunConfig != nil && thread.RunConfig.Runner != nil {
		runner = *thread.RunConfig.Runner
	}

	params := agentrunner.Params{
		WorktreePath:   ws.WorktreePath,
		Model:          derefOr(eff.RunConfig.ModelID, ""),
		ThinkingEffort: derefOr(eff.RunConfig.ThinkingEffort, ""),
	}

	switch runner {
	case model.RunnerAmp:
		mode := derefOr(eff.RunConfig.AmpMode, "")
		return runner, d.ampBinary(), agentrunner.BuildAmpArgv(params, mode)
	case model.RunnerClaude:
		return runner, d.roots.ClaudeBin, agentrunner.BuildClaudeArgv(params)
	case model.RunnerDroid:
		return runner, d.droidBinary(), agentrunner.BuildDroidArgv(params)
	default:
		return model.RunnerCodex, d.roots.CodexBin, agentrunner.BuildCodexArgv(params)
	}
}

func (d *Dispatcher) ampBinary() string {
	return "amp"
}

func (d *Dispatcher) droidBinary() string {
	return "droid"
}

// renderPrompt appends the "Attached files:" section RunAgentTurn
// orchestration calls for: one line per attachment, prefixed with "@" for
// Amp (its own context-file syntax) and bare for every other runner.
func renderPrompt(text string, attachments []model.AttachmentRef, runner model.RunnerKind) string {
	if len(attachments) == 0 {
		return text
	}
	prefix := ""
	if runner == model.RunnerAmp {
		prefix = "@"
	}
	var b strings.Builder
	b.WriteString(text)
	b.WriteString("\n\nAttached files:\n")
	for _, a := range attachments {
		fmt.Fprintf(&b, "- %s: %s%s\n", a.DisplayName, prefix, a.Path)
	}
	return b.String()
}
