package websocket

// Action constants for the orchestrator's WebSocket protocol. Every
// ClientAction the reducer understands has a matching constant here; the
// dispatcher rejects anything else with ErrorCodeUnknownAction.
const (
	ActionHealthCheck = "health.check"
	ActionHello       = "hello"

	// Projects
	ActionAddProject            = "project.add"
	ActionToggleProjectExpanded = "project.toggle_expanded"
	ActionDeleteProject         = "project.delete"
	ActionReorderProject        = "project.reorder"

	// Workspaces
	ActionCreateWorkspace     = "workspace.create"
	ActionEnsureMainWorkspace = "workspace.ensure_main"
	ActionOpenWorkspace       = "workspace.open"
	ActionOpenWorkspaceInIDE  = "workspace.open_in_ide"
	ActionOpenWorkspacePR     = "workspace.open_pull_request"
	ActionArchiveWorkspace    = "workspace.archive"

	// Dashboard
	ActionOpenDashboard         = "dashboard.open"
	ActionDashboardPreviewOpen  = "dashboard.preview_opened"
	ActionDashboardPreviewClose = "dashboard.preview_closed"

	// Threads & tabs
	ActionCreateWorkspaceThread = "thread.create"
	ActionActivateThreadTab     = "thread.activate"
	ActionCloseThreadTab        = "thread.close_tab"
	ActionRestoreThreadTab      = "thread.restore_tab"
	ActionReorderThreadTab      = "thread.reorder_tab"

	// Conversation
	ActionSendAgentMessage       = "conversation.send_message"
	ActionChatDraftChanged       = "conversation.draft_changed"
	ActionChatDraftAttachAdded   = "conversation.draft_attachment_added"
	ActionChatDraftAttachRemoved = "conversation.draft_attachment_removed"
	ActionCancelAgentTurn        = "conversation.cancel_turn"
	ActionRemoveQueuedPrompt     = "conversation.remove_queued_prompt"
	ActionClearQueuedPrompts     = "conversation.clear_queued_prompts"

	// Per-thread config
	ActionChatModelChanged      = "conversation.model_changed"
	ActionThinkingEffortChanged = "conversation.thinking_effort_changed"

	// Per-runner config
	ActionAgentCodexEnabled  = "agent.codex_enabled_changed"
	ActionAgentAmpEnabled    = "agent.amp_enabled_changed"
	ActionAgentClaudeEnabled = "agent.claude_enabled_changed"
	ActionAgentDroidEnabled  = "agent.droid_enabled_changed"

	// Layout & appearance
	ActionToggleTerminalPane  = "layout.toggle_terminal_pane"
	ActionTerminalPaneWidth   = "layout.terminal_pane_width_changed"
	ActionSidebarWidthChanged = "layout.sidebar_width_changed"
	ActionAppearanceTheme     = "appearance.theme_changed"
	ActionGlobalZoomChanged   = "appearance.zoom_changed"

	// Server -> client notifications
	ActionAppChanged              = "app.changed"
	ActionConversationChanged     = "conversation.changed"
	ActionTerminalCommandStarted  = "terminal.command_started"
	ActionTerminalCommandFinished = "terminal.command_finished"
)

// Error codes
const (
	ErrorCodeBadRequest    = "BAD_REQUEST"
	ErrorCodeNotFound      = "NOT_FOUND"
	ErrorCodeInternalError = "INTERNAL_ERROR"
	ErrorCodeUnauthorized  = "UNAUTHORIZED"
	ErrorCodeForbidden     = "FORBIDDEN"
	ErrorCodeValidation    = "VALIDATION_ERROR"
	ErrorCodeUnknownAction = "UNKNOWN_ACTION"
)
