package websocket

import (
	"encoding/json"
	"fmt"

	ws "github.com/kandev/luban/pkg/websocket"

	"github.com/kandev/luban/internal/orchestrator/model"
	"github.com/kandev/luban/internal/orchestrator/reducer"
)

// wirePayload is the union of every field a client action might send. Only
// the fields relevant to a given action's Kind are read; this mirrors the
// reducer's own flat Action struct rather than introducing one payload
// type per action.
type wirePayload struct {
	ProjectID      uint64                `json:"project_id"`
	WorkspaceID    uint64                `json:"workspace_id"`
	ThreadID       uint64                `json:"thread_id"`
	ToIndex        int                   `json:"to_index"`
	Index          int                   `json:"index"`
	Path           string                `json:"path"`
	IsGit          bool                  `json:"is_git"`
	Text           string                `json:"text"`
	Attachments    []model.AttachmentRef `json:"attachments"`
	ModelID        string                `json:"model_id"`
	ThinkingEffort string                `json:"thinking_effort"`
	AttachmentID   uint64                `json:"attachment_id"`
	AttachmentKind model.AttachmentKind  `json:"attachment_kind"`
	Anchor         int                   `json:"anchor"`
	Width          uint16                `json:"width"`
	Theme          model.AppearanceTheme `json:"theme"`
	Percent        uint16                `json:"percent"`
	Enabled        bool                  `json:"enabled"`
}

// actionKindByWire maps the wire protocol's dotted action strings to the
// reducer's ActionKind. decodeAction looks the kind up here and decodes every
// payload the same generic way; an action absent from this map is rejected
// as unknown.
var actionKindByWire = map[string]reducer.ActionKind{
	ws.ActionAddProject:            reducer.ActionAddProject,
	ws.ActionToggleProjectExpanded: reducer.ActionToggleProjectExpanded,
	ws.ActionDeleteProject:         reducer.ActionDeleteProject,
	ws.ActionReorderProject:        reducer.ActionReorderProject,

	ws.ActionCreateWorkspace:     reducer.ActionCreateWorkspace,
	ws.ActionEnsureMainWorkspace: reducer.ActionEnsureMainWorkspace,
	ws.ActionOpenWorkspace:       reducer.ActionOpenWorkspace,
	ws.ActionOpenWorkspaceInIDE:  reducer.ActionOpenWorkspaceInIDE,
	ws.ActionOpenWorkspacePR:     reducer.ActionOpenWorkspacePullRequest,
	ws.ActionArchiveWorkspace:    reducer.ActionArchiveWorkspace,

	ws.ActionOpenDashboard:         reducer.ActionOpenDashboard,
	ws.ActionDashboardPreviewOpen:  reducer.ActionDashboardPreviewOpened,
	ws.ActionDashboardPreviewClose: reducer.ActionDashboardPreviewClosed,

	ws.ActionCreateWorkspaceThread: reducer.ActionCreateWorkspaceThread,
	ws.ActionActivateThreadTab:     reducer.ActionActivateWorkspaceThread,
	ws.ActionCloseThreadTab:        reducer.ActionCloseWorkspaceThreadTab,
	ws.ActionRestoreThreadTab:      reducer.ActionRestoreWorkspaceThreadTab,
	ws.ActionReorderThreadTab:      reducer.ActionReorderWorkspaceThreadTab,

	ws.ActionSendAgentMessage:       reducer.ActionSendAgentMessage,
	ws.ActionChatDraftChanged:       reducer.ActionChatDraftChanged,
	ws.ActionChatDraftAttachAdded:   reducer.ActionChatDraftAttachmentAdded,
	ws.ActionChatDraftAttachRemoved: reducer.ActionChatDraftAttachmentRemoved,
	ws.ActionCancelAgentTurn:        reducer.ActionCancelAgentTurn,
	ws.ActionRemoveQueuedPrompt:     reducer.ActionRemoveQueuedPrompt,
	ws.ActionClearQueuedPrompts:     reducer.ActionClearQueuedPrompts,

	ws.ActionChatModelChanged:      reducer.ActionChatModelChanged,
	ws.ActionThinkingEffortChanged: reducer.ActionThinkingEffortChanged,

	ws.ActionAgentCodexEnabled:  reducer.ActionAgentCodexEnabledChanged,
	ws.ActionAgentAmpEnabled:    reducer.ActionAgentAmpEnabledChanged,
	ws.ActionAgentClaudeEnabled: reducer.ActionAgentClaudeEnabledChanged,
	ws.ActionAgentDroidEnabled:  reducer.ActionAgentDroidEnabledChanged,

	ws.ActionToggleTerminalPane:  reducer.ActionToggleTerminalPane,
	ws.ActionTerminalPaneWidth:   reducer.ActionTerminalPaneWidthChanged,
	ws.ActionSidebarWidthChanged: reducer.ActionSidebarWidthChanged,
	ws.ActionAppearanceTheme:     reducer.ActionAppearanceThemeChanged,
	ws.ActionGlobalZoomChanged:   reducer.ActionGlobalZoomChanged,
}

// decodeAction turns one client-submitted wire action into a reducer.Action.
// The returned bool is false when action is not one this server understands.
func decodeAction(action string, raw json.RawMessage) (reducer.Action, bool, error) {
	kind, ok := actionKindByWire[action]
	if !ok {
		return reducer.Action{}, false, nil
	}

	var p wirePayload
	if len(raw) > 0 {
		if err := json.Unmarshal(raw, &p); err != nil {
			return reducer.Action{}, true, fmt.Errorf("decode payload for %s: %w", action, err)
		}
	}

	return reducer.Action{
		Kind:           kind,
		ProjectID:      model.ProjectID(p.ProjectID),
		WorkspaceID:    model.WorkspaceID(p.WorkspaceID),
		ThreadID:       model.WorkspaceThreadID(p.ThreadID),
		ToIndex:        p.ToIndex,
		Index:          p.Index,
		Path:           p.Path,
		IsGit:          p.IsGit,
		Text:           p.Text,
		Attachments:    p.Attachments,
		ModelID:        p.ModelID,
		ThinkingEffort: p.ThinkingEffort,
		AttachmentID:   p.AttachmentID,
		AttachmentKind: p.AttachmentKind,
		Anchor:         p.Anchor,
		Width:          p.Width,
		Theme:          p.Theme,
		Percent:        p.Percent,
		Enabled:        p.Enabled,
	}, true, nil
}
