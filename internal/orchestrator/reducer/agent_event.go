package reducer

import (
	"encoding/json"

	"github.com/kandev/luban/internal/orchestrator/model"
)

// wireEvent mirrors the agent CLI's item.started/updated/completed JSON
// payloads (one flat shape covering every item.type variant), the same
// schema codex.rs's CodexThreadEvent/CodexThreadItem decode.
type wireEvent struct {
	Type string  `json:"type"`
	Item *wireItem `json:"item"`
}

type wireItem struct {
	Type     string `json:"type"`
	ID       string `json:"id"`
	Text     string `json:"text"`
	Command  string `json:"command"`
	Output   string `json:"aggregated_output"`
	ExitCode *int   `json:"exit_code"`
	Status   string `json:"status"`
	Changes  []struct {
		Path string `json:"path"`
		Kind string `json:"kind"`
	} `json:"changes"`
	Server    string         `json:"server"`
	Tool      string         `json:"tool"`
	Arguments map[string]any `json:"arguments"`
	Result    *string        `json:"result"`
	Error     *struct {
		Message string `json:"message"`
	} `json:"error"`
	Query   string `json:"query"`
	Items   []struct {
		Text      string `json:"text"`
		Completed bool   `json:"completed"`
	} `json:"items"`
	Message string `json:"message"`
}

// decodeAgentEventEntry turns one item.started/item.updated/item.completed
// payload into a ConversationEntry. It reports ok=false for event types the
// reducer doesn't project into the conversation (turn.*, thread.started,
// bare error) since those are consumed elsewhere (AgentTurnFinished) or
// ignored.
func decodeAgentEventEntry(raw json.RawMessage) (model.ConversationEntry, bool) {
	var evt wireEvent
	if err := json.Unmarshal(raw, &evt); err != nil {
		return model.ConversationEntry{}, false
	}
	if evt.Item == nil {
		return model.ConversationEntry{}, false
	}
	item := evt.Item

	entry := model.ConversationEntry{ID: item.ID}

	switch item.Type {
	case "agent_message":
		entry.Kind = model.EntryAgentMessage
		entry.Text = item.Text
	case "reasoning":
		entry.Kind = model.EntryReasoning
		entry.Text = item.Text
	case "command_execution":
		entry.Kind = model.EntryCommandExecution
		entry.Command = item.Command
		entry.Output = item.Output
		entry.ExitCode = item.ExitCode
		entry.Status = itemStatus(item.Status)
	case "file_change":
		entry.Kind = model.EntryFileChange
		entry.Status = itemStatus(item.Status)
		for _, c := range item.Changes {
			entry.Files = append(entry.Files, model.FileChangeEntry{Path: c.Path, Kind: fileChangeKind(c.Kind)})
		}
	case "mcp_tool_call":
		entry.Kind = model.EntryMcpToolCall
		entry.Server = item.Server
		entry.Tool = item.Tool
		entry.Arguments = item.Arguments
		entry.Result = item.Result
		if item.Error != nil {
			entry.ToolError = &item.Error.Message
		}
		entry.Status = itemStatus(item.Status)
	case "web_search":
		entry.Kind = model.EntryWebSearch
		entry.Text = item.Query
	case "todo_list":
		entry.Kind = model.EntryTodoList
		for _, i := range item.Items {
			entry.Items = append(entry.Items, model.TodoItem{Text: i.Text, Completed: i.Completed})
		}
	case "error":
		entry.Kind = model.EntryError
		entry.Text = item.Message
	default:
		return model.ConversationEntry{}, false
	}

	return entry, true
}

func itemStatus(s string) model.ItemStatus {
	switch s {
	case "completed":
		return model.ItemCompleted
	case "failed":
		return model.ItemFailed
	default:
		return model.ItemInProgress
	}
}

func fileChangeKind(k string) model.FileChangeKind {
	switch k {
	case "add":
		return model.FileAdd
	case "delete":
		return model.FileDelete
	default:
		return model.FileUpdate
	}
}
