package reducer

import (
	"github.com/kandev/luban/internal/orchestrator/draft"
	"github.com/kandev/luban/internal/orchestrator/model"
	"github.com/kandev/luban/internal/orchestrator/slug"
)

// Reduce applies action to state and returns the next state plus the
// effects the dispatcher must carry out. It never mutates state: the
// returned AppState is always a fresh clone, so a caller holding a
// reference to the previous state (e.g. a concurrently-running effect
// worker) continues to see a consistent, unchanged snapshot.
func Reduce(state *model.AppState, action Action) (*model.AppState, []Effect) {
	next := state.Clone()
	var effects []Effect

	persists := func() {
		effects = append(effects, Effect{Kind: EffectSaveAppState})
	}

	switch action.Kind {
	case ActionAppStarted:
		effects = append(effects, Effect{Kind: EffectLoadAppState})

	case ActionAppStateLoaded:
		next = model.FromPersisted(action.Persisted)

	case ActionAppStateLoadFailed:
		next.LastError = action.Message

	case ActionSaveAppState:
		persists()

	case ActionAppStateSaveFailed:
		next.LastError = action.Message

	case ActionClearError:
		next.LastError = ""

	case ActionOpenDashboard:
		next.MainPane = model.MainPaneDashboard

	case ActionDashboardPreviewOpened:
		next.DashboardPreviewWorkspace = &action.WorkspaceID
		if ws, ok := next.Workspaces[action.WorkspaceID]; ok {
			ws.UnreadCompletion = false
			next.Workspaces[action.WorkspaceID] = ws
		}
		persists()

	case ActionDashboardPreviewClosed:
		next.DashboardPreviewWorkspace = nil

	case ActionAddProject:
		id := next.NextProjectID()
		next.Projects = append(next.Projects, model.Project{
			ID:           id,
			DisplayName:  action.Path,
			Path:         action.Path,
			Slug:         slug.Sanitize(action.Path),
			IsGit:        action.IsGit,
			Expanded:     true,
			SidebarOrder: len(next.Projects),
		})
		persists()

	case ActionToggleProjectExpanded:
		if i := next.FindProjectIndex(action.ProjectID); i >= 0 {
			next.Projects[i].Expanded = !next.Projects[i].Expanded
			persists()
		}

	case ActionDeleteProject:
		if i := next.FindProjectIndex(action.ProjectID); i >= 0 {
			for _, wsID := range next.Projects[i].Workspaces {
				delete(next.Workspaces, wsID)
				delete(next.Tabs, wsID)
			}
			next.Projects = append(next.Projects[:i], next.Projects[i+1:]...)
			persists()
		}

	case ActionReorderProject:
		reorderProjects(next, action.ProjectID, action.ToIndex)
		persists()

	case ActionCreateWorkspace:
		effects = append(effects, Effect{Kind: EffectCreateWorkspace, ProjectID: action.ProjectID})

	case ActionEnsureMainWorkspace:
		if !hasMainWorkspace(next, action.ProjectID) {
			effects = append(effects, Effect{Kind: EffectCreateWorkspace, ProjectID: action.ProjectID})
		}

	case ActionWorkspaceCreated:
		id := next.NextWorkspaceID()
		ws := model.Workspace{
			ID:            id,
			ProjectID:     action.ProjectID,
			WorkspaceName: action.WorkspaceName,
			BranchName:    action.BranchName,
			WorktreePath:  action.WorktreePath,
			Status:        model.WorkspaceActive,
		}
		next.Workspaces[id] = ws
		next.Tabs[id] = model.NewEmptyWorkspaceTabs()
		if i := next.FindProjectIndex(action.ProjectID); i >= 0 {
			next.Projects[i].Workspaces = append(next.Projects[i].Workspaces, id)
			next.Projects[i].CreateWorkspaceStat = model.CreateWorkspaceStatus{Kind: model.CreateWorkspaceIdle}
		}
		persists()

	case ActionWorkspaceCreateFailed:
		if i := next.FindProjectIndex(action.ProjectID); i >= 0 {
			next.Projects[i].CreateWorkspaceStat = model.CreateWorkspaceStatus{
				Kind:    model.CreateWorkspaceFailed,
				Message: action.Message,
			}
		}

	case ActionOpenWorkspace:
		next.MainPane = model.MainPaneWorkspace
		next.LastOpenWorkspaceID = &action.WorkspaceID

	case ActionOpenWorkspaceInIDE:
		effects = append(effects, Effect{Kind: EffectOpenWorkspaceInIDE, WorkspaceID: action.WorkspaceID})

	case ActionOpenWorkspaceInIDEFailed:
		next.LastError = action.Message

	case ActionOpenWorkspacePullRequest:
		effects = append(effects, Effect{Kind: EffectOpenWorkspacePullRequest, WorkspaceID: action.WorkspaceID})

	case ActionOpenWorkspacePullRequestFailed:
		next.LastError = action.Message

	case ActionArchiveWorkspace:
		if ws, ok := next.Workspaces[action.WorkspaceID]; ok {
			ws.ArchiveStat = model.ArchiveStatus{Kind: model.ArchiveInProgress}
			next.Workspaces[action.WorkspaceID] = ws
			effects = append(effects, Effect{Kind: EffectArchiveWorkspace, WorkspaceID: action.WorkspaceID})
		}

	case ActionWorkspaceArchived:
		if ws, ok := next.Workspaces[action.WorkspaceID]; ok {
			ws.Status = model.WorkspaceArchived
			ws.ArchiveStat = model.ArchiveStatus{Kind: model.ArchiveIdle}
			next.Workspaces[action.WorkspaceID] = ws
			persists()
		}

	case ActionWorkspaceArchiveFailed:
		if ws, ok := next.Workspaces[action.WorkspaceID]; ok {
			ws.ArchiveStat = model.ArchiveStatus{Kind: model.ArchiveFailed, Message: action.Message}
			next.Workspaces[action.WorkspaceID] = ws
		}

	case ActionCreateWorkspaceThread:
		tabs := next.Tabs[action.WorkspaceID]
		id := tabs.AllocateThreadID()
		tabs.Activate(id)
		next.Tabs[action.WorkspaceID] = tabs
		key := model.ThreadKey{WorkspaceID: action.WorkspaceID, ThreadID: id}
		next.Threads[key] = model.WorkspaceThread{
			ID:          id,
			WorkspaceID: action.WorkspaceID,
			TurnStatus:  model.TurnIdle,
		}
		persists()

	case ActionActivateWorkspaceThread:
		tabs := next.Tabs[action.WorkspaceID]
		tabs.Activate(action.ThreadID)
		next.Tabs[action.WorkspaceID] = tabs
		effects = append(effects, Effect{Kind: EffectEnsureConversation, WorkspaceID: action.WorkspaceID, ThreadID: action.ThreadID})

	case ActionCloseWorkspaceThreadTab:
		tabs := next.Tabs[action.WorkspaceID]
		tabs.ArchiveTab(action.ThreadID)
		next.Tabs[action.WorkspaceID] = tabs
		persists()

	case ActionRestoreWorkspaceThreadTab:
		tabs := next.Tabs[action.WorkspaceID]
		tabs.RestoreTab(action.ThreadID, true)
		next.Tabs[action.WorkspaceID] = tabs
		persists()

	case ActionReorderWorkspaceThreadTab:
		tabs := next.Tabs[action.WorkspaceID]
		tabs.ReorderTab(action.ThreadID, action.ToIndex)
		next.Tabs[action.WorkspaceID] = tabs
		persists()

	case ActionConversationLoaded:
		reconcileConversation(next, action.WorkspaceID, action.ThreadID, action.Snapshot)

	case ActionConversationLoadFailed:
		next.LastError = action.Message

	case ActionSendAgentMessage:
		sendAgentMessage(next, &effects, action)

	case ActionChatModelChanged:
		withThread(next, action.WorkspaceID, action.ThreadID, func(t *model.WorkspaceThread) {
			cfg := ensureRunConfig(t)
			id := action.ModelID
			cfg.ModelID = &id
		})
		persists()

	case ActionThinkingEffortChanged:
		withThread(next, action.WorkspaceID, action.ThreadID, func(t *model.WorkspaceThread) {
			cfg := ensureRunConfig(t)
			eff := action.ThinkingEffort
			cfg.ThinkingEffort = &eff
		})
		persists()

	case ActionChatDraftChanged:
		withThread(next, action.WorkspaceID, action.ThreadID, func(t *model.WorkspaceThread) {
			t.Draft = action.Text
		})

	case ActionChatDraftAttachmentAdded:
		withThread(next, action.WorkspaceID, action.ThreadID, func(t *model.WorkspaceThread) {
			t.DraftAttachments = append(t.DraftAttachments, model.DraftAttachment{
				ID:     action.AttachmentID,
				Kind:   action.AttachmentKind,
				Anchor: action.Anchor,
			})
		})

	case ActionChatDraftAttachmentResolved:
		withThread(next, action.WorkspaceID, action.ThreadID, func(t *model.WorkspaceThread) {
			for i := range t.DraftAttachments {
				if t.DraftAttachments[i].ID == action.AttachmentID {
					path := action.ResolvedAtt.Path
					t.DraftAttachments[i].Path = &path
				}
			}
		})

	case ActionChatDraftAttachmentFailed:
		withThread(next, action.WorkspaceID, action.ThreadID, func(t *model.WorkspaceThread) {
			for i := range t.DraftAttachments {
				if t.DraftAttachments[i].ID == action.AttachmentID {
					t.DraftAttachments[i].Failed = true
				}
			}
		})

	case ActionChatDraftAttachmentRemoved:
		withThread(next, action.WorkspaceID, action.ThreadID, func(t *model.WorkspaceThread) {
			out := t.DraftAttachments[:0:0]
			for _, a := range t.DraftAttachments {
				if a.ID != action.AttachmentID {
					out = append(out, a)
				}
			}
			t.DraftAttachments = out
		})

	case ActionRemoveQueuedPrompt:
		withThread(next, action.WorkspaceID, action.ThreadID, func(t *model.WorkspaceThread) {
			if action.Index >= 0 && action.Index < len(t.QueuedPrompts) {
				t.QueuedPrompts = append(t.QueuedPrompts[:action.Index], t.QueuedPrompts[action.Index+1:]...)
			}
		})
		persists()

	case ActionClearQueuedPrompts:
		withThread(next, action.WorkspaceID, action.ThreadID, func(t *model.WorkspaceThread) {
			t.QueuedPrompts = nil
		})
		persists()

	case ActionAgentEventReceived:
		mergeAgentEvent(next, action.WorkspaceID, action.ThreadID, action.Event)

	case ActionAgentTurnFinished:
		agentTurnFinished(next, &effects, action)

	case ActionCancelAgentTurn:
		effects = append(effects, Effect{Kind: EffectCancelAgentTurn, WorkspaceID: action.WorkspaceID, ThreadID: action.ThreadID})

	case ActionResumeQueuedPrompts:
		resumeQueuedPrompts(next, &effects, action)

	case ActionAgentCodexEnabledChanged:
		next.AgentCodexEnabled = action.Enabled
		persists()
	case ActionAgentAmpEnabledChanged:
		next.AgentAmpEnabled = action.Enabled
		persists()
	case ActionAgentClaudeEnabledChanged:
		next.AgentClaudeEnabled = action.Enabled
		persists()
	case ActionAgentDroidEnabledChanged:
		next.AgentDroidEnabled = action.Enabled
		persists()

	case ActionToggleTerminalPane:
		next.TerminalPaneOpen = !next.TerminalPaneOpen
		persists()

	case ActionTerminalPaneWidthChanged:
		next.TerminalPaneWidth = int(action.Width)
		persists()

	case ActionSidebarWidthChanged:
		next.SidebarWidth = int(action.Width)
		persists()

	case ActionAppearanceThemeChanged:
		next.Appearance.Theme = action.Theme
		persists()

	case ActionGlobalZoomChanged:
		next.GlobalZoomPercent = action.Percent
		persists()

	case ActionWorkspaceChatScrollSaved:
		withThread(next, action.WorkspaceID, action.ThreadID, func(t *model.WorkspaceThread) {
			t.ChatScrollY10 = action.ScrollOffsetY10
		})

	case ActionWorkspaceChatScrollAnchorSaved:
		withThread(next, action.WorkspaceID, action.ThreadID, func(t *model.WorkspaceThread) {
			t.ChatScrollAnchor = action.ScrollAnchor
		})
	}

	return next, effects
}

func withThread(state *model.AppState, wsID model.WorkspaceID, threadID model.WorkspaceThreadID, fn func(*model.WorkspaceThread)) {
	key := model.ThreadKey{WorkspaceID: wsID, ThreadID: threadID}
	t, ok := state.Threads[key]
	if !ok {
		return
	}
	fn(&t)
	state.Threads[key] = t
}

func ensureRunConfig(t *model.WorkspaceThread) *model.RunConfigOverride {
	if t.RunConfig == nil {
		t.RunConfig = &model.RunConfigOverride{}
	}
	return t.RunConfig
}

func hasMainWorkspace(state *model.AppState, projectID model.ProjectID) bool {
	for _, ws := range state.Workspaces {
		if ws.ProjectID == projectID && ws.IsMain() {
			return true
		}
	}
	return false
}

func reorderProjects(state *model.AppState, projectID model.ProjectID, toIndex int) {
	from := state.FindProjectIndex(projectID)
	if from < 0 {
		return
	}
	p := state.Projects[from]
	rest := append(append([]model.Project(nil), state.Projects[:from]...), state.Projects[from+1:]...)
	target := toIndex
	if target > len(rest) {
		target = len(rest)
	}
	if target < 0 {
		target = 0
	}
	out := make([]model.Project, 0, len(rest)+1)
	out = append(out, rest[:target]...)
	out = append(out, p)
	out = append(out, rest[target:]...)
	for i := range out {
		out[i].SidebarOrder = i
	}
	state.Projects = out
}

// sendAgentMessage implements the §4.5 SendAgentMessage rule: if idle,
// compose and append a UserMessage entry and start a turn; otherwise queue
// the prompt, whose entry is appended when the queue is popped after the
// current turn finishes.
func sendAgentMessage(state *model.AppState, effects *[]Effect, action Action) {
	key := model.ThreadKey{WorkspaceID: action.WorkspaceID, ThreadID: action.ThreadID}
	t, ok := state.Threads[key]
	if !ok {
		return
	}

	composed := draft.ComposeUserMessageText(action.Text, t.DraftAttachments)

	if t.TurnStatus == model.TurnIdle {
		t.Entries = appendUserMessage(t.Entries, composed, action.Attachments)
		t.TurnStatus = model.TurnRunning
		t.Draft = ""
		t.DraftAttachments = nil
		state.Threads[key] = t
		*effects = append(*effects, Effect{
			Kind:        EffectRunAgentTurn,
			WorkspaceID: action.WorkspaceID,
			ThreadID:    action.ThreadID,
			Text:        composed,
			Attachments: action.Attachments,
			RunConfig:   derefRunConfig(t.RunConfig),
		})
	} else {
		t.QueuedPrompts = append(t.QueuedPrompts, model.QueuedPrompt{Text: composed, Attachments: action.Attachments})
		state.Threads[key] = t
	}
}

func derefRunConfig(rc *model.RunConfigOverride) model.RunConfigOverride {
	if rc == nil {
		return model.RunConfigOverride{}
	}
	return *rc
}

func appendUserMessage(entries []model.ConversationEntry, text string, attachments []model.AttachmentRef) []model.ConversationEntry {
	return append(entries, model.ConversationEntry{
		Kind:        model.EntryUserMessage,
		Text:        text,
		Attachments: attachments,
	})
}

// agentTurnFinished implements the §4.5 AgentTurnFinished rule: pop the
// queue if non-empty and start the next turn, otherwise go idle. A
// workspace not currently dashboard-previewed is marked unread.
func agentTurnFinished(state *model.AppState, effects *[]Effect, action Action) {
	key := model.ThreadKey{WorkspaceID: action.WorkspaceID, ThreadID: action.ThreadID}
	t, ok := state.Threads[key]
	if !ok {
		return
	}

	if len(t.QueuedPrompts) > 0 {
		head := t.QueuedPrompts[0]
		t.QueuedPrompts = t.QueuedPrompts[1:]
		t.Entries = appendUserMessage(t.Entries, head.Text, head.Attachments)
		t.TurnStatus = model.TurnRunning
		state.Threads[key] = t
		*effects = append(*effects, Effect{
			Kind:        EffectRunAgentTurn,
			WorkspaceID: action.WorkspaceID,
			ThreadID:    action.ThreadID,
			Text:        head.Text,
			Attachments: head.Attachments,
			RunConfig:   derefRunConfig(t.RunConfig),
		})
		return
	}

	t.TurnStatus = model.TurnIdle
	state.Threads[key] = t

	previewed := state.DashboardPreviewWorkspace != nil && *state.DashboardPreviewWorkspace == action.WorkspaceID
	if !previewed {
		if ws, ok := state.Workspaces[action.WorkspaceID]; ok {
			ws.UnreadCompletion = true
			state.Workspaces[action.WorkspaceID] = ws
		}
	}

	*effects = append(*effects, Effect{Kind: EffectSaveAppState})
}

// resumeQueuedPrompts lets the user manually kick a thread's queue when it
// is idle with prompts still waiting -- the normal path pops the queue from
// AgentTurnFinished, but a thread can end up idle-with-a-queue after a
// reconnect that missed the finish event.
func resumeQueuedPrompts(state *model.AppState, effects *[]Effect, action Action) {
	key := model.ThreadKey{WorkspaceID: action.WorkspaceID, ThreadID: action.ThreadID}
	t, ok := state.Threads[key]
	if !ok || t.TurnStatus != model.TurnIdle || len(t.QueuedPrompts) == 0 {
		return
	}

	head := t.QueuedPrompts[0]
	t.QueuedPrompts = t.QueuedPrompts[1:]
	t.Entries = appendUserMessage(t.Entries, head.Text, head.Attachments)
	t.TurnStatus = model.TurnRunning
	state.Threads[key] = t

	*effects = append(*effects, Effect{
		Kind:        EffectRunAgentTurn,
		WorkspaceID: action.WorkspaceID,
		ThreadID:    action.ThreadID,
		Text:        head.Text,
		Attachments: head.Attachments,
		RunConfig:   derefRunConfig(t.RunConfig),
	})
}

// reconcileConversation implements the reconciliation rule: if the
// in-memory entries are a prefix of the snapshot, the snapshot is newer and
// wins; if the snapshot is a suffix of the in-memory entries, the in-memory
// entries are the longer superset and win; otherwise the snapshot wins.
func reconcileConversation(state *model.AppState, wsID model.WorkspaceID, threadID model.WorkspaceThreadID, snapshot model.ConversationSnapshot) {
	key := model.ThreadKey{WorkspaceID: wsID, ThreadID: threadID}
	t, ok := state.Threads[key]
	if !ok {
		t = model.WorkspaceThread{ID: threadID, WorkspaceID: wsID, TurnStatus: model.TurnIdle}
	}

	merged := reconcileEntries(t.Entries, snapshot.Entries)
	if len(merged) > model.MaxConversationEntriesInMemory {
		merged = merged[len(merged)-model.MaxConversationEntriesInMemory:]
	}
	t.Entries = merged
	state.Threads[key] = t
}

func reconcileEntries(inMemory, snapshot []model.ConversationEntry) []model.ConversationEntry {
	if isPrefix(inMemory, snapshot) {
		return snapshot
	}
	if isSuffix(snapshot, inMemory) {
		return inMemory
	}
	return snapshot
}

func isPrefix(prefix, full []model.ConversationEntry) bool {
	if len(prefix) > len(full) {
		return false
	}
	for i := range prefix {
		if prefix[i].ID != full[i].ID {
			return false
		}
	}
	return true
}

func isSuffix(suffix, full []model.ConversationEntry) bool {
	if len(suffix) > len(full) {
		return false
	}
	offset := len(full) - len(suffix)
	for i := range suffix {
		if suffix[i].ID != full[offset+i].ID {
			return false
		}
	}
	return true
}

// mergeAgentEvent implements the §4.5 AgentEventReceived merge-by-id rule:
// item lifecycle events replace an existing entry with the same id
// (scanning from the tail, since items typically complete in roughly LIFO
// order relative to when they started) or append a new one.
func mergeAgentEvent(state *model.AppState, wsID model.WorkspaceID, threadID model.WorkspaceThreadID, raw []byte) {
	entry, ok := decodeAgentEventEntry(raw)
	if !ok {
		return
	}

	key := model.ThreadKey{WorkspaceID: wsID, ThreadID: threadID}
	t, ok := state.Threads[key]
	if !ok {
		return
	}

	for i := len(t.Entries) - 1; i >= 0; i-- {
		if t.Entries[i].ID == entry.ID {
			t.Entries[i] = entry
			state.Threads[key] = t
			return
		}
	}
	t.Entries = append(t.Entries, entry)
	state.Threads[key] = t
}
