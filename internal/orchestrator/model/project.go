package model

// CreateWorkspaceStatusKind is the project-scoped status of the most recent
// workspace-creation attempt.
type CreateWorkspaceStatusKind string

const (
	CreateWorkspaceIdle       CreateWorkspaceStatusKind = "idle"
	CreateWorkspaceInProgress CreateWorkspaceStatusKind = "in_progress"
	CreateWorkspaceFailed     CreateWorkspaceStatusKind = "failed"
)

// CreateWorkspaceStatus carries an optional message when Kind is Failed.
type CreateWorkspaceStatus struct {
	Kind    CreateWorkspaceStatusKind `json:"kind"`
	Message string                    `json:"message,omitempty"`
}

// Project is a directory the user has registered with Luban.
type Project struct {
	ID                  ProjectID             `json:"id"`
	DisplayName         string                `json:"display_name"`
	Path                string                `json:"path"`
	Slug                string                `json:"slug"`
	IsGit               bool                  `json:"is_git"`
	Expanded            bool                  `json:"expanded"`
	CreateWorkspaceStat CreateWorkspaceStatus `json:"create_workspace_status"`
	Workspaces          []WorkspaceID         `json:"workspaces"`
	SidebarOrder        int                   `json:"sidebar_order"`
}

// Clone returns a deep copy so the reducer never hands out aliased state.
func (p Project) Clone() Project {
	cp := p
	cp.Workspaces = append([]WorkspaceID(nil), p.Workspaces...)
	return cp
}
