// Package reducer implements the orchestrator's single pure state
// transition function: (AppState, Action) -> (AppState, []Effect). It
// performs no I/O; every side effect the system needs is represented as a
// value in the returned Effect slice and carried out by a separate
// dispatcher.
package reducer

import (
	"encoding/json"

	"github.com/kandev/luban/internal/orchestrator/model"
)

// ActionKind discriminates Action's tagged union. Names mirror
// original_source's actions.rs enum variants one for one; Go has no
// enum-with-payload, so one flat struct carries every variant's fields
// and only the ones relevant to Kind are populated.
type ActionKind string

const (
	ActionAppStarted ActionKind = "app_started"

	ActionOpenDashboard          ActionKind = "open_dashboard"
	ActionDashboardPreviewOpened ActionKind = "dashboard_preview_opened"
	ActionDashboardPreviewClosed ActionKind = "dashboard_preview_closed"

	ActionAddProject            ActionKind = "add_project"
	ActionToggleProjectExpanded ActionKind = "toggle_project_expanded"
	ActionDeleteProject         ActionKind = "delete_project"
	ActionReorderProject        ActionKind = "reorder_project"

	ActionCreateWorkspace      ActionKind = "create_workspace"
	ActionEnsureMainWorkspace  ActionKind = "ensure_main_workspace"
	ActionWorkspaceCreated     ActionKind = "workspace_created"
	ActionWorkspaceCreateFailed ActionKind = "workspace_create_failed"

	ActionOpenWorkspace                   ActionKind = "open_workspace"
	ActionOpenWorkspaceInIDE              ActionKind = "open_workspace_in_ide"
	ActionOpenWorkspaceInIDEFailed        ActionKind = "open_workspace_in_ide_failed"
	ActionOpenWorkspacePullRequest        ActionKind = "open_workspace_pull_request"
	ActionOpenWorkspacePullRequestFailed  ActionKind = "open_workspace_pull_request_failed"
	ActionArchiveWorkspace                ActionKind = "archive_workspace"
	ActionWorkspaceArchived               ActionKind = "workspace_archived"
	ActionWorkspaceArchiveFailed          ActionKind = "workspace_archive_failed"

	ActionConversationLoaded     ActionKind = "conversation_loaded"
	ActionConversationLoadFailed ActionKind = "conversation_load_failed"
	ActionSendAgentMessage       ActionKind = "send_agent_message"
	ActionChatModelChanged       ActionKind = "chat_model_changed"
	ActionThinkingEffortChanged  ActionKind = "thinking_effort_changed"

	ActionChatDraftChanged             ActionKind = "chat_draft_changed"
	ActionChatDraftAttachmentAdded     ActionKind = "chat_draft_attachment_added"
	ActionChatDraftAttachmentResolved  ActionKind = "chat_draft_attachment_resolved"
	ActionChatDraftAttachmentFailed    ActionKind = "chat_draft_attachment_failed"
	ActionChatDraftAttachmentRemoved   ActionKind = "chat_draft_attachment_removed"

	ActionRemoveQueuedPrompt  ActionKind = "remove_queued_prompt"
	ActionClearQueuedPrompts  ActionKind = "clear_queued_prompts"
	ActionResumeQueuedPrompts ActionKind = "resume_queued_prompts"

	ActionAgentEventReceived ActionKind = "agent_event_received"
	ActionAgentTurnFinished  ActionKind = "agent_turn_finished"
	ActionCancelAgentTurn    ActionKind = "cancel_agent_turn"

	ActionCreateWorkspaceThread   ActionKind = "create_workspace_thread"
	ActionActivateWorkspaceThread ActionKind = "activate_workspace_thread"
	ActionCloseWorkspaceThreadTab ActionKind = "close_workspace_thread_tab"
	ActionRestoreWorkspaceThreadTab ActionKind = "restore_workspace_thread_tab"
	ActionReorderWorkspaceThreadTab ActionKind = "reorder_workspace_thread_tab"

	ActionToggleTerminalPane     ActionKind = "toggle_terminal_pane"
	ActionTerminalPaneWidthChanged ActionKind = "terminal_pane_width_changed"
	ActionSidebarWidthChanged    ActionKind = "sidebar_width_changed"
	ActionAppearanceThemeChanged ActionKind = "appearance_theme_changed"
	ActionGlobalZoomChanged      ActionKind = "global_zoom_changed"

	ActionAgentCodexEnabledChanged  ActionKind = "agent_codex_enabled_changed"
	ActionAgentAmpEnabledChanged    ActionKind = "agent_amp_enabled_changed"
	ActionAgentClaudeEnabledChanged ActionKind = "agent_claude_enabled_changed"
	ActionAgentDroidEnabledChanged  ActionKind = "agent_droid_enabled_changed"

	ActionWorkspaceChatScrollSaved       ActionKind = "workspace_chat_scroll_saved"
	ActionWorkspaceChatScrollAnchorSaved ActionKind = "workspace_chat_scroll_anchor_saved"

	ActionSaveAppState      ActionKind = "save_app_state"
	ActionAppStateLoaded    ActionKind = "app_state_loaded"
	ActionAppStateLoadFailed ActionKind = "app_state_load_failed"
	ActionAppStateSaved     ActionKind = "app_state_saved"
	ActionAppStateSaveFailed ActionKind = "app_state_save_failed"

	ActionClearError ActionKind = "clear_error"
)

// Action is a flat tagged union: only the fields relevant to Kind are
// populated.
type Action struct {
	Kind ActionKind

	ProjectID   model.ProjectID
	WorkspaceID model.WorkspaceID
	ThreadID    model.WorkspaceThreadID

	Path  string
	IsGit bool

	ToIndex int
	Index   int

	WorkspaceName string
	BranchName    string
	WorktreePath  string
	Message       string

	Text        string
	Attachments []model.AttachmentRef
	Snapshot    model.ConversationSnapshot

	ModelID        string
	ThinkingEffort string

	AttachmentID     uint64
	AttachmentKind   model.AttachmentKind
	Anchor           int
	ResolvedAtt      model.AttachmentRef

	Event json.RawMessage

	Width   uint16
	Theme   model.AppearanceTheme
	Percent uint16
	Enabled bool

	ScrollOffsetY10 int
	ScrollAnchor    string

	Persisted model.PersistedAppState
}
