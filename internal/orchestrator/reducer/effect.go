package reducer

import "github.com/kandev/luban/internal/orchestrator/model"

// EffectKind discriminates Effect's tagged union, mirroring
// original_source's effects.rs.
type EffectKind string

const (
	EffectLoadAppState EffectKind = "load_app_state"
	EffectSaveAppState EffectKind = "save_app_state"

	EffectCreateWorkspace               EffectKind = "create_workspace"
	EffectOpenWorkspaceInIDE            EffectKind = "open_workspace_in_ide"
	EffectOpenWorkspacePullRequest      EffectKind = "open_workspace_pull_request"
	EffectArchiveWorkspace              EffectKind = "archive_workspace"
	EffectEnsureConversation            EffectKind = "ensure_conversation"
	EffectLoadConversation              EffectKind = "load_conversation"
	EffectRunAgentTurn                  EffectKind = "run_agent_turn"
	EffectCancelAgentTurn               EffectKind = "cancel_agent_turn"
	EffectLoadWorkspaceThreads          EffectKind = "load_workspace_threads"
)

// Effect is a flat tagged union describing one unit of side-effecting
// work the dispatcher must carry out. The reducer never performs this
// work itself.
type Effect struct {
	Kind EffectKind

	ProjectID   model.ProjectID
	WorkspaceID model.WorkspaceID
	ThreadID    model.WorkspaceThreadID

	Text        string
	Attachments []model.AttachmentRef
	RunConfig   model.RunConfigOverride
}
