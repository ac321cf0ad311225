package model

// PersistedAppState is the on-disk serialization of AppState. It strips
// transient fields that must never survive a restart: in-flight statuses
// (CreateWorkspaceStatus, ArchiveStatus, BranchRenameStatus, TurnStatus),
// the runtime LastError, and pending attachment blobs that have not yet
// been committed to the blob store. A reload reconstructs AppState from
// this snapshot and re-derives the transient fields at their zero values.
type PersistedAppState struct {
	SchemaVersion int `json:"schema_version"`

	Projects  []PersistedProject  `json:"projects"`
	Workspaces []PersistedWorkspace `json:"workspaces"`
	Tabs      map[WorkspaceID]WorkspaceTabs `json:"tabs"`
	Threads   []PersistedThread   `json:"threads"`

	MainPane                  MainPane     `json:"main_pane"`
	RightPane                 RightPane    `json:"right_pane"`
	DashboardPreviewWorkspace *WorkspaceID `json:"dashboard_preview_workspace_id,omitempty"`
	LastOpenWorkspaceID       *WorkspaceID `json:"last_open_workspace_id,omitempty"`

	SidebarWidth      int        `json:"sidebar_width"`
	TerminalPaneOpen  bool       `json:"terminal_pane_open"`
	TerminalPaneWidth int        `json:"terminal_pane_width"`
	GlobalZoomPercent uint16     `json:"global_zoom_percent"`
	Appearance        Appearance `json:"appearance"`

	AgentRunnerDefaultModels map[RunnerKind]string `json:"agent_runner_default_models"`
	AgentCodexEnabled        bool                  `json:"agent_codex_enabled"`
	AgentAmpEnabled          bool                  `json:"agent_amp_enabled"`
	AgentClaudeEnabled       bool                  `json:"agent_claude_enabled"`
	AgentDroidEnabled        bool                  `json:"agent_droid_enabled"`

	TaskPromptTemplates   map[string]string `json:"task_prompt_templates"`
	SystemPromptTemplates map[string]string `json:"system_prompt_templates"`

	StarredTasks []WorkspaceThreadID `json:"starred_tasks"`

	Telegram PersistedTelegram `json:"telegram"`

	NextProjectID   uint64 `json:"next_project_id"`
	NextWorkspaceID uint64 `json:"next_workspace_id"`
}

// PersistedProject drops only Project's CreateWorkspaceStat, a runtime
// status; every other field is durable state.
type PersistedProject struct {
	ID                  ProjectID             `json:"id"`
	DisplayName         string                `json:"display_name"`
	Path                string                `json:"path"`
	Slug                string                `json:"slug"`
	IsGit               bool                  `json:"is_git"`
	Expanded            bool                  `json:"expanded"`
	Workspaces          []WorkspaceID         `json:"workspaces"`
	SidebarOrder        int                   `json:"sidebar_order"`
}

// PersistedWorkspace strips ArchiveStatus and BranchRenameStatus: both are
// in-flight markers for an operation that either finished (in which case
// the workspace's durable fields already reflect the outcome) or was
// interrupted by a crash, in which case the operation must be retried
// fresh rather than resumed from a half-applied status.
type PersistedWorkspace struct {
	ID                WorkspaceID    `json:"id"`
	ProjectID         ProjectID      `json:"project_id"`
	WorkspaceName     string         `json:"workspace_name"`
	BranchName        string         `json:"branch_name"`
	WorktreePath      string         `json:"worktree_path"`
	Status            WorkspaceStatus `json:"status"`
	LastActivityAtUTC int64          `json:"last_activity_at_utc_ms"`
	UnreadCompletion  bool           `json:"unread_completion"`
}

// PersistedThread strips TurnStatus (always reloads Idle: any turn running
// at crash time died with the process) and QueuedPrompts (a queue is only
// meaningful relative to a live turn).
type PersistedThread struct {
	ID               WorkspaceThreadID   `json:"id"`
	WorkspaceID      WorkspaceID         `json:"workspace_id"`
	Title            string              `json:"title"`
	Entries          []ConversationEntry `json:"entries"`
	Draft            string              `json:"draft"`
	DraftAttachments []DraftAttachment   `json:"draft_attachments"`
	RunConfig        *RunConfigOverride  `json:"run_config,omitempty"`
	ChatScrollAnchor string              `json:"chat_scroll_anchor,omitempty"`
	ChatScrollY10    int                 `json:"chat_scroll_y10,omitempty"`
}

// PersistedTelegram keeps the BotTokenSet flag but not the bot token
// itself, which is held only in memory and is not written to the state
// snapshot; the runtime LastError is dropped as well.
type PersistedTelegram struct {
	Enabled       bool                  `json:"enabled"`
	BotTokenSet   bool                  `json:"bot_token_set"`
	BotUsername   string                `json:"bot_username,omitempty"`
	PairedChatID  *int64                `json:"paired_chat_id,omitempty"`
	ConfigRev     uint64                `json:"config_rev"`
	TopicBindings map[WorkspaceID]int64 `json:"topic_bindings"`
}

// ToPersisted produces the durable snapshot of s. It does not capture the
// telegram bot token itself -- callers persisting secrets separately must
// carry it over out of band.
func (s *AppState) ToPersisted() PersistedAppState {
	p := PersistedAppState{
		SchemaVersion:             1,
		Tabs:                      make(map[WorkspaceID]WorkspaceTabs, len(s.Tabs)),
		MainPane:                  s.MainPane,
		RightPane:                 s.RightPane,
		DashboardPreviewWorkspace: s.DashboardPreviewWorkspace,
		LastOpenWorkspaceID:       s.LastOpenWorkspaceID,
		SidebarWidth:              s.SidebarWidth,
		TerminalPaneOpen:          s.TerminalPaneOpen,
		TerminalPaneWidth:         s.TerminalPaneWidth,
		GlobalZoomPercent:         s.GlobalZoomPercent,
		Appearance:                s.Appearance,
		AgentRunnerDefaultModels:  s.AgentRunnerDefaultModels,
		AgentCodexEnabled:         s.AgentCodexEnabled,
		AgentAmpEnabled:           s.AgentAmpEnabled,
		AgentClaudeEnabled:        s.AgentClaudeEnabled,
		AgentDroidEnabled:         s.AgentDroidEnabled,
		TaskPromptTemplates:       s.TaskPromptTemplates,
		SystemPromptTemplates:     s.SystemPromptTemplates,
		NextProjectID:             s.projectAlloc.Peek(),
		NextWorkspaceID:           s.workspaceAlloc.Peek(),
		Telegram: PersistedTelegram{
			Enabled:       s.Telegram.Enabled,
			BotTokenSet:   s.Telegram.BotTokenSet,
			BotUsername:   s.Telegram.BotUsername,
			PairedChatID:  s.Telegram.PairedChatID,
			ConfigRev:     s.Telegram.ConfigRev,
			TopicBindings: s.Telegram.TopicBindings,
		},
	}

	for _, proj := range s.Projects {
		p.Projects = append(p.Projects, PersistedProject{
			ID:            proj.ID,
			DisplayName:   proj.DisplayName,
			Path:          proj.Path,
			Slug:          proj.Slug,
			IsGit:         proj.IsGit,
			Expanded:      proj.Expanded,
			Workspaces:    proj.Workspaces,
			SidebarOrder:  proj.SidebarOrder,
		})
	}

	for id, ws := range s.Workspaces {
		p.Workspaces = append(p.Workspaces, PersistedWorkspace{
			ID:                id,
			ProjectID:         ws.ProjectID,
			WorkspaceName:     ws.WorkspaceName,
			BranchName:        ws.BranchName,
			WorktreePath:      ws.WorktreePath,
			Status:            ws.Status,
			LastActivityAtUTC: ws.LastActivityAtUTC,
			UnreadCompletion:  ws.UnreadCompletion,
		})
	}

	for k, v := range s.Tabs {
		p.Tabs[k] = v
	}

	for key, th := range s.Threads {
		p.Threads = append(p.Threads, PersistedThread{
			ID:               key.ThreadID,
			WorkspaceID:      key.WorkspaceID,
			Title:            th.Title,
			Entries:          th.Entries,
			Draft:            th.Draft,
			DraftAttachments: th.DraftAttachments,
			RunConfig:        th.RunConfig,
			ChatScrollAnchor: th.ChatScrollAnchor,
			ChatScrollY10:    th.ChatScrollY10,
		})
	}

	for id, starred := range s.StarredTasks {
		if starred {
			p.StarredTasks = append(p.StarredTasks, id)
		}
	}

	return p
}

// FromPersisted reconstructs an in-memory AppState from a durable
// snapshot. Transient fields not carried by PersistedAppState take their
// zero values: workspaces reload with no in-flight archive/rename status,
// threads reload with TurnStatus Idle and an empty queue.
func FromPersisted(p PersistedAppState) *AppState {
	s := NewAppState()
	s.MainPane = p.MainPane
	s.RightPane = p.RightPane
	s.DashboardPreviewWorkspace = p.DashboardPreviewWorkspace
	s.LastOpenWorkspaceID = p.LastOpenWorkspaceID
	s.SidebarWidth = p.SidebarWidth
	s.TerminalPaneOpen = p.TerminalPaneOpen
	s.TerminalPaneWidth = p.TerminalPaneWidth
	s.GlobalZoomPercent = p.GlobalZoomPercent
	s.Appearance = p.Appearance
	s.AgentCodexEnabled = p.AgentCodexEnabled
	s.AgentAmpEnabled = p.AgentAmpEnabled
	s.AgentClaudeEnabled = p.AgentClaudeEnabled
	s.AgentDroidEnabled = p.AgentDroidEnabled

	if p.AgentRunnerDefaultModels != nil {
		s.AgentRunnerDefaultModels = p.AgentRunnerDefaultModels
	}
	if p.TaskPromptTemplates != nil {
		s.TaskPromptTemplates = p.TaskPromptTemplates
	}
	if p.SystemPromptTemplates != nil {
		s.SystemPromptTemplates = p.SystemPromptTemplates
	}

	s.Telegram = TelegramTopicBinding{
		Enabled:       p.Telegram.Enabled,
		BotTokenSet:   p.Telegram.BotTokenSet,
		BotUsername:   p.Telegram.BotUsername,
		PairedChatID:  p.Telegram.PairedChatID,
		ConfigRev:     p.Telegram.ConfigRev,
		TopicBindings: p.Telegram.TopicBindings,
	}
	if s.Telegram.TopicBindings == nil {
		s.Telegram.TopicBindings = make(map[WorkspaceID]int64)
	}

	for _, pp := range p.Projects {
		s.Projects = append(s.Projects, Project{
			ID:                  pp.ID,
			DisplayName:         pp.DisplayName,
			Path:                pp.Path,
			Slug:                pp.Slug,
			IsGit:               pp.IsGit,
			Expanded:            pp.Expanded,
			Workspaces:          pp.Workspaces,
			SidebarOrder:        pp.SidebarOrder,
			CreateWorkspaceStat: CreateWorkspaceStatus{Kind: CreateWorkspaceIdle},
		})
	}

	for _, pw := range p.Workspaces {
		s.Workspaces[pw.ID] = Workspace{
			ID:                pw.ID,
			ProjectID:         pw.ProjectID,
			WorkspaceName:     pw.WorkspaceName,
			BranchName:        pw.BranchName,
			WorktreePath:      pw.WorktreePath,
			Status:            pw.Status,
			LastActivityAtUTC: pw.LastActivityAtUTC,
			ArchiveStat:       ArchiveStatus{Kind: ArchiveIdle},
			BranchRenameStat:  BranchRenameStatus{Kind: BranchRenameNone},
			UnreadCompletion:  pw.UnreadCompletion,
		}
	}

	for k, v := range p.Tabs {
		s.Tabs[k] = v
	}

	for _, pt := range p.Threads {
		s.Threads[ThreadKey{WorkspaceID: pt.WorkspaceID, ThreadID: pt.ID}] = WorkspaceThread{
			ID:               pt.ID,
			WorkspaceID:      pt.WorkspaceID,
			Title:            pt.Title,
			Entries:          pt.Entries,
			Draft:            pt.Draft,
			DraftAttachments: pt.DraftAttachments,
			QueuedPrompts:    nil,
			TurnStatus:       TurnIdle,
			RunConfig:        pt.RunConfig,
			ChatScrollAnchor: pt.ChatScrollAnchor,
			ChatScrollY10:    pt.ChatScrollY10,
		}
	}

	for _, id := range p.StarredTasks {
		s.StarredTasks[id] = true
	}

	s.projectAlloc.Restore(p.NextProjectID)
	s.workspaceAlloc.Restore(p.NextWorkspaceID)

	return s
}
