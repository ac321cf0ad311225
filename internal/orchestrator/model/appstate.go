package model

// ThreadKey addresses a WorkspaceThread without a back-pointer to its
// workspace, so AppState's conversation map can be a flat keyed lookup with
// no cyclic references between Workspace and WorkspaceThread.
type ThreadKey struct {
	WorkspaceID WorkspaceID
	ThreadID    WorkspaceThreadID
}

// AppState aggregates every entity the orchestrator owns. It holds no
// process handles -- only plain data, so it can be cloned cheaply and
// handed to effect workers as an immutable snapshot.
type AppState struct {
	Projects  []Project
	Workspaces map[WorkspaceID]Workspace
	Tabs      map[WorkspaceID]WorkspaceTabs
	Threads   map[ThreadKey]WorkspaceThread

	MainPane                   MainPane
	RightPane                  RightPane
	DashboardPreviewWorkspace  *WorkspaceID
	LastOpenWorkspaceID        *WorkspaceID

	SidebarWidth     int
	TerminalPaneOpen bool
	TerminalPaneWidth int
	GlobalZoomPercent uint16
	Appearance        Appearance

	AgentRunnerDefaultModels map[RunnerKind]string
	AgentCodexEnabled        bool
	AgentAmpEnabled          bool
	AgentClaudeEnabled       bool
	AgentDroidEnabled        bool

	TaskPromptTemplates   map[string]string
	SystemPromptTemplates map[string]string

	StarredTasks map[WorkspaceThreadID]bool

	Telegram TelegramTopicBinding

	LastError string

	projectAlloc IDAllocator
	workspaceAlloc IDAllocator
}

// NewAppState returns an empty AppState with sane zero-value defaults.
func NewAppState() *AppState {
	return &AppState{
		Workspaces:               make(map[WorkspaceID]Workspace),
		Tabs:                     make(map[WorkspaceID]WorkspaceTabs),
		Threads:                  make(map[ThreadKey]WorkspaceThread),
		MainPane:                 MainPaneDashboard,
		RightPane:                RightPaneNone,
		SidebarWidth:             280,
		TerminalPaneWidth:        320,
		GlobalZoomPercent:        100,
		Appearance:               Appearance{Theme: ThemeSystem, Fonts: AppearanceFonts{UIFontSize: 14, CodeFontSize: 13}},
		AgentRunnerDefaultModels: make(map[RunnerKind]string),
		AgentCodexEnabled:        true,
		TaskPromptTemplates:      make(map[string]string),
		SystemPromptTemplates:    make(map[string]string),
		StarredTasks:             make(map[WorkspaceThreadID]bool),
		Telegram:                 TelegramTopicBinding{TopicBindings: make(map[WorkspaceID]int64)},
		projectAlloc:             *NewIDAllocator(),
		workspaceAlloc:           *NewIDAllocator(),
	}
}

// NextProjectID and NextWorkspaceID allocate dense, never-reused ids.
func (s *AppState) NextProjectID() ProjectID     { return ProjectID(s.projectAlloc.Next()) }
func (s *AppState) NextWorkspaceID() WorkspaceID { return WorkspaceID(s.workspaceAlloc.Next()) }

// Clone returns a deep copy of the state. The reducer calls this once per
// Action so that the previous AppState (handed out to effect workers as an
// immutable snapshot) is never mutated in place.
func (s *AppState) Clone() *AppState {
	cp := &AppState{
		MainPane:                  s.MainPane,
		RightPane:                 s.RightPane,
		SidebarWidth:              s.SidebarWidth,
		TerminalPaneOpen:          s.TerminalPaneOpen,
		TerminalPaneWidth:         s.TerminalPaneWidth,
		GlobalZoomPercent:         s.GlobalZoomPercent,
		Appearance:                s.Appearance,
		AgentCodexEnabled:         s.AgentCodexEnabled,
		AgentAmpEnabled:           s.AgentAmpEnabled,
		AgentClaudeEnabled:        s.AgentClaudeEnabled,
		AgentDroidEnabled:         s.AgentDroidEnabled,
		LastError:                 s.LastError,
		Telegram:                  s.Telegram.Clone(),
		projectAlloc:              s.projectAlloc,
		workspaceAlloc:            s.workspaceAlloc,
	}

	cp.Projects = make([]Project, len(s.Projects))
	for i, p := range s.Projects {
		cp.Projects[i] = p.Clone()
	}

	cp.Workspaces = make(map[WorkspaceID]Workspace, len(s.Workspaces))
	for k, v := range s.Workspaces {
		cp.Workspaces[k] = v.Clone()
	}

	cp.Tabs = make(map[WorkspaceID]WorkspaceTabs, len(s.Tabs))
	for k, v := range s.Tabs {
		cp.Tabs[k] = v.Clone()
	}

	cp.Threads = make(map[ThreadKey]WorkspaceThread, len(s.Threads))
	for k, v := range s.Threads {
		cp.Threads[k] = v.Clone()
	}

	if s.DashboardPreviewWorkspace != nil {
		v := *s.DashboardPreviewWorkspace
		cp.DashboardPreviewWorkspace = &v
	}
	if s.LastOpenWorkspaceID != nil {
		v := *s.LastOpenWorkspaceID
		cp.LastOpenWorkspaceID = &v
	}

	cp.AgentRunnerDefaultModels = make(map[RunnerKind]string, len(s.AgentRunnerDefaultModels))
	for k, v := range s.AgentRunnerDefaultModels {
		cp.AgentRunnerDefaultModels[k] = v
	}
	cp.TaskPromptTemplates = make(map[string]string, len(s.TaskPromptTemplates))
	for k, v := range s.TaskPromptTemplates {
		cp.TaskPromptTemplates[k] = v
	}
	cp.SystemPromptTemplates = make(map[string]string, len(s.SystemPromptTemplates))
	for k, v := range s.SystemPromptTemplates {
		cp.SystemPromptTemplates[k] = v
	}
	cp.StarredTasks = make(map[WorkspaceThreadID]bool, len(s.StarredTasks))
	for k, v := range s.StarredTasks {
		cp.StarredTasks[k] = v
	}

	return cp
}

// FindProjectIndex returns the index of the project with the given id, or
// -1 if not found.
func (s *AppState) FindProjectIndex(id ProjectID) int {
	for i, p := range s.Projects {
		if p.ID == id {
			return i
		}
	}
	return -1
}
