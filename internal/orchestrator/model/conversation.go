package model

// TurnStatus is the lifecycle state of a WorkspaceThread's active turn.
type TurnStatus string

const (
	TurnIdle     TurnStatus = "idle"
	TurnRunning  TurnStatus = "running"
	TurnAwaiting TurnStatus = "awaiting"
	TurnPaused   TurnStatus = "paused"
)

// RunnerKind identifies which agent CLI a turn runs against.
type RunnerKind string

const (
	RunnerCodex  RunnerKind = "codex"
	RunnerAmp    RunnerKind = "amp"
	RunnerClaude RunnerKind = "claude"
	RunnerDroid  RunnerKind = "droid"
)

// RunConfigOverride optionally overrides a thread's default model/effort/
// runner selection.
type RunConfigOverride struct {
	ModelID         *string     `json:"model_id,omitempty"`
	ThinkingEffort  *string     `json:"thinking_effort,omitempty"`
	Runner          *RunnerKind `json:"runner,omitempty"`
	AmpMode         *string     `json:"amp_mode,omitempty"`
}

// QueuedPrompt is a SendAgentMessage submitted while a turn is already
// running; it waits for AgentTurnFinished before becoming the next turn.
type QueuedPrompt struct {
	Text        string            `json:"text"`
	Attachments []AttachmentRef   `json:"attachments"`
}

// ItemStatus is shared by CommandExecution, FileChange and McpToolCall
// entries.
type ItemStatus string

const (
	ItemInProgress ItemStatus = "in_progress"
	ItemCompleted  ItemStatus = "completed"
	ItemFailed     ItemStatus = "failed"
)

// FileChangeKind enumerates the kinds of file mutation a FileChange entry
// may report.
type FileChangeKind string

const (
	FileAdd    FileChangeKind = "add"
	FileDelete FileChangeKind = "delete"
	FileUpdate FileChangeKind = "update"
)

// FileChangeEntry is one path+kind pair inside a FileChange item.
type FileChangeEntry struct {
	Path string         `json:"path"`
	Kind FileChangeKind `json:"kind"`
}

// TodoItem is one line of a TodoList item.
type TodoItem struct {
	Text      string `json:"text"`
	Completed bool   `json:"completed"`
}

// EntryKind discriminates ConversationEntry's tagged union.
type EntryKind string

const (
	EntryUserMessage       EntryKind = "user_message"
	EntryAgentMessage      EntryKind = "agent_message"
	EntryReasoning         EntryKind = "reasoning"
	EntryCommandExecution  EntryKind = "command_execution"
	EntryFileChange        EntryKind = "file_change"
	EntryMcpToolCall       EntryKind = "mcp_tool_call"
	EntryWebSearch         EntryKind = "web_search"
	EntryTodoList          EntryKind = "todo_list"
	EntryError             EntryKind = "error"
	EntryTerminalStarted   EntryKind = "terminal_command_started"
	EntryTerminalFinished  EntryKind = "terminal_command_finished"
)

// ConversationEntry is a tagged union. Only the fields relevant to Kind are
// populated; the rest are zero values. Plain struct with omitempty-style
// fields rather than an interface-per-variant hierarchy, since every entry
// still needs a uniform by-id lookup for the reducer's merge-by-id rule.
type ConversationEntry struct {
	ID             string         `json:"id"`
	Kind           EntryKind      `json:"kind"`
	CreatedAtMillis int64         `json:"created_at_unix_ms"`

	// AgentMessage / Reasoning / Error / WebSearch
	Text string `json:"text,omitempty"`

	// UserMessage
	Attachments []AttachmentRef `json:"attachments,omitempty"`

	// CommandExecution
	Command    string      `json:"command,omitempty"`
	Output     string      `json:"output,omitempty"`
	ExitCode   *int        `json:"exit_code,omitempty"`
	Status     ItemStatus  `json:"status,omitempty"`

	// FileChange
	Files []FileChangeEntry `json:"files,omitempty"`

	// McpToolCall
	Server    string         `json:"server,omitempty"`
	Tool      string         `json:"tool,omitempty"`
	Arguments map[string]any `json:"arguments,omitempty"`
	Result    *string        `json:"result,omitempty"`
	ToolError *string        `json:"tool_error,omitempty"`

	// TodoList
	Items []TodoItem `json:"items,omitempty"`

	// Terminal user events
	ReconnectToken string `json:"reconnect_token,omitempty"`
	OutputBase64   string `json:"output_base64,omitempty"`
	OutputByteLen  int    `json:"output_byte_len,omitempty"`
}

// Clone returns a deep copy of the entry.
func (e ConversationEntry) Clone() ConversationEntry {
	cp := e
	cp.Attachments = append([]AttachmentRef(nil), e.Attachments...)
	cp.Files = append([]FileChangeEntry(nil), e.Files...)
	cp.Items = append([]TodoItem(nil), e.Items...)
	if e.Arguments != nil {
		cp.Arguments = make(map[string]any, len(e.Arguments))
		for k, v := range e.Arguments {
			cp.Arguments[k] = v
		}
	}
	return cp
}

// WorkspaceThread is one conversation inside a workspace.
type WorkspaceThread struct {
	ID                WorkspaceThreadID   `json:"id"`
	WorkspaceID       WorkspaceID         `json:"workspace_id"`
	Title             string              `json:"title"`
	Entries           []ConversationEntry `json:"entries"`
	Draft             string              `json:"draft"`
	DraftAttachments  []DraftAttachment   `json:"draft_attachments"`
	QueuedPrompts     []QueuedPrompt      `json:"queued_prompts"`
	TurnStatus        TurnStatus          `json:"turn_status"`
	RunConfig         *RunConfigOverride  `json:"run_config,omitempty"`
	ChatScrollAnchor  string              `json:"chat_scroll_anchor,omitempty"`
	ChatScrollY10     int                 `json:"chat_scroll_y10,omitempty"`
}

// MaxConversationEntriesInMemory bounds how many entries a thread keeps
// in-memory before the reducer may truncate from the head.
const MaxConversationEntriesInMemory = 5000

func (t WorkspaceThread) Clone() WorkspaceThread {
	cp := t
	cp.Entries = make([]ConversationEntry, len(t.Entries))
	for i, e := range t.Entries {
		cp.Entries[i] = e.Clone()
	}
	cp.DraftAttachments = append([]DraftAttachment(nil), t.DraftAttachments...)
	cp.QueuedPrompts = append([]QueuedPrompt(nil), t.QueuedPrompts...)
	if t.RunConfig != nil {
		rc := *t.RunConfig
		cp.RunConfig = &rc
	}
	return cp
}

// ConversationSnapshot is the reload form of a thread's conversation: an
// ordered entry list plus enough thread metadata to reconcile it against
// in-memory state.
type ConversationSnapshot struct {
	WorkspaceID WorkspaceID         `json:"workspace_id"`
	ThreadID    WorkspaceThreadID   `json:"thread_id"`
	Entries     []ConversationEntry `json:"entries"`
}
