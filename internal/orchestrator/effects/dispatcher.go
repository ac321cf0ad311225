// Package effects carries out the side-effecting work the reducer
// describes as an Effect value: spawning agent CLIs, creating and archiving
// git worktrees, persisting AppState snapshots, and opening a workspace in
// an editor or as a pull request. No goroutine here ever mutates AppState
// directly -- every outcome is fed back in as an Action through Submit.
package effects

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/kandev/luban/internal/common/config"
	"github.com/kandev/luban/internal/common/logger"
	"github.com/kandev/luban/internal/orchestrator/agentrunner"
	"github.com/kandev/luban/internal/orchestrator/blob"
	"github.com/kandev/luban/internal/orchestrator/idempotency"
	"github.com/kandev/luban/internal/orchestrator/model"
	"github.com/kandev/luban/internal/orchestrator/persistence"
	"github.com/kandev/luban/internal/orchestrator/reducer"
	"github.com/kandev/luban/internal/orchestrator/workspace"
)

const (
	workspaceDedupTTL = 10 * time.Second
	turnDedupTTL      = 10 * time.Second
	dedupMaxEntries   = 4096
)

// Dispatcher owns every long-lived resource an Effect needs: the roots
// config, the persistence store, idempotency stores for the two
// client-retryable effects, and the table of in-flight agent turns a
// CancelAgentTurn effect must be able to reach.
type Dispatcher struct {
	roots config.RootsConfig
	store *persistence.Store
	log   *logger.Logger

	submit       func(reducer.Action)
	currentState func() *model.AppState

	workspaceDedup *idempotency.Store[model.Workspace]
	turnDedup      *idempotency.Store[struct{}]

	handlesMu sync.Mutex
	handles   map[model.ThreadKey]*agentrunner.Handle

	saveMu         sync.Mutex
	saveNeeded     bool
	saveInProgress bool
}

// New returns a Dispatcher. submit feeds an Action back into the
// orchestrator's single-threaded reducer loop; currentState returns the
// loop's latest AppState, used by the save worker so a save always
// persists the freshest snapshot rather than the one in effect at the
// time SaveAppState was dispatched.
func New(roots config.RootsConfig, store *persistence.Store, log *logger.Logger, submit func(reducer.Action), currentState func() *model.AppState) *Dispatcher {
	return &Dispatcher{
		roots:          roots,
		store:          store,
		log:            log,
		submit:         submit,
		currentState:   currentState,
		workspaceDedup: idempotency.New[model.Workspace](workspaceDedupTTL, dedupMaxEntries),
		turnDedup:      idempotency.New[struct{}](turnDedupTTL, dedupMaxEntries),
		handles:        make(map[model.ThreadKey]*agentrunner.Handle),
	}
}

// Dispatch carries out one Effect. snapshot is the AppState the triggering
// action was applied to (the state before the reducer step that produced
// this Effect); handlers that need data beyond what's on
// the Effect itself (a project's path, a workspace's worktree) read it from
// here rather than re-fetching from currentState, so a handler always sees
// the state consistent with the action that triggered it.
func (d *Dispatcher) Dispatch(eff reducer.Effect, snapshot *model.AppState) {
	switch eff.Kind {
	case reducer.EffectLoadAppState:
		go d.loadAppState()
	case reducer.EffectSaveAppState:
		d.requestSave()
	case reducer.EffectCreateWorkspace:
		go d.createWorkspace(eff, snapshot)
	case reducer.EffectOpenWorkspaceInIDE:
		go d.openWorkspaceInIDE(eff, snapshot)
	case reducer.EffectOpenWorkspacePullRequest:
		go d.openWorkspacePullRequest(eff, snapshot)
	case reducer.EffectArchiveWorkspace:
		go d.archiveWorkspace(eff, snapshot)
	case reducer.EffectEnsureConversation, reducer.EffectLoadConversation, reducer.EffectLoadWorkspaceThreads:
		// These effects reload from the same persisted AppState snapshot
		// the reducer already applied in-memory -- there is no secondary
		// conversation store to query, so they are no-ops beyond the
		// AppStateLoaded the dispatcher already submitted at startup.
	case reducer.EffectRunAgentTurn:
		go d.runAgentTurn(eff, snapshot)
	case reducer.EffectCancelAgentTurn:
		d.cancelAgentTurn(eff)
	default:
		d.log.Warn("unhandled effect", zap.String("kind", string(eff.Kind)))
	}
}

func (d *Dispatcher) loadAppState() {
	snapshot, ok, err := d.store.Load()
	if err != nil {
		d.submit(reducer.Action{Kind: reducer.ActionAppStateLoadFailed, Message: err.Error()})
		return
	}
	if !ok {
		d.submit(reducer.Action{Kind: reducer.ActionAppStateLoaded, Persisted: model.NewAppState().ToPersisted()})
		return
	}
	d.submit(reducer.Action{Kind: reducer.ActionAppStateLoaded, Persisted: snapshot})
}

// requestSave coalesces concurrent save requests: if a save worker is
// already running it will notice saveNeeded and loop again, so at most one
// extra save runs no matter how many SaveAppState effects arrive while a
// write is in flight.
func (d *Dispatcher) requestSave() {
	d.saveMu.Lock()
	d.saveNeeded = true
	if d.saveInProgress {
		d.saveMu.Unlock()
		return
	}
	d.saveInProgress = true
	d.saveMu.Unlock()

	go d.saveWorker()
}

func (d *Dispatcher) saveWorker() {
	for {
		d.saveMu.Lock()
		if !d.saveNeeded {
			d.saveInProgress = false
			d.saveMu.Unlock()
			return
		}
		d.saveNeeded = false
		d.saveMu.Unlock()

		snapshot := d.currentState().ToPersisted()
		if err := d.store.Save(snapshot, time.Now().UnixMilli()); err != nil {
			d.submit(reducer.Action{Kind: reducer.ActionAppStateSaveFailed, Message: err.Error()})
			continue
		}
		d.submit(reducer.Action{Kind: reducer.ActionAppStateSaved})
	}
}

func (d *Dispatcher) createWorkspace(eff reducer.Effect, snapshot *model.AppState) {
	project := findProject(snapshot, eff.ProjectID)
	if project == nil {
		d.submit(reducer.Action{Kind: reducer.ActionWorkspaceCreateFailed, ProjectID: eff.ProjectID, Message: "project not found"})
		return
	}

	key := fmt.Sprintf("create_workspace:%d", eff.ProjectID)
	begin := d.workspaceDedup.Begin(key)
	switch begin.Outcome {
	case idempotency.Done:
		d.submitWorkspaceCreated(eff.ProjectID, begin.Value, begin.Err)
		return
	case idempotency.Wait:
		result := <-begin.Chan
		d.submitWorkspaceCreated(eff.ProjectID, result.Value, result.Err)
		return
	}

	ctx := context.Background()
	created, err := workspace.CreateWorkspace(ctx, d.roots.LubanRoot, project.Path, project.Slug)
	if err != nil {
		d.workspaceDedup.Complete(key, model.Workspace{}, err)
		d.submit(reducer.Action{Kind: reducer.ActionWorkspaceCreateFailed, ProjectID: eff.ProjectID, Message: err.Error()})
		return
	}

	ws := model.Workspace{
		ProjectID:     eff.ProjectID,
		WorkspaceName: created.WorkspaceName,
		BranchName:    created.BranchName,
		WorktreePath:  created.WorktreePath,
		Status:        model.WorkspaceActive,
	}
	d.workspaceDedup.Complete(key, ws, nil)
	d.submit(reducer.Action{
		Kind:          reducer.ActionWorkspaceCreated,
		ProjectID:     eff.ProjectID,
		WorkspaceName: ws.WorkspaceName,
		BranchName:    ws.BranchName,
		WorktreePath:  ws.WorktreePath,
	})
}

func (d *Dispatcher) submitWorkspaceCreated(projectID model.ProjectID, ws model.Workspace, err error) {
	if err != nil {
		d.submit(reducer.Action{Kind: reducer.ActionWorkspaceCreateFailed, ProjectID: projectID, Message: err.Error()})
		return
	}
	d.submit(reducer.Action{
		Kind:          reducer.ActionWorkspaceCreated,
		ProjectID:     projectID,
		WorkspaceName: ws.WorkspaceName,
		BranchName:    ws.BranchName,
		WorktreePath:  ws.WorktreePath,
	})
}

func (d *Dispatcher) archiveWorkspace(eff reducer.Effect, snapshot *model.AppState) {
	ws, ok := snapshot.Workspaces[eff.WorkspaceID]
	if !ok {
		d.submit(reducer.Action{Kind: reducer.ActionWorkspaceArchiveFailed, WorkspaceID: eff.WorkspaceID, Message: "workspace not found"})
		return
	}
	project := findProject(snapshot, ws.ProjectID)
	if project == nil {
		d.submit(reducer.Action{Kind: reducer.ActionWorkspaceArchiveFailed, WorkspaceID: eff.WorkspaceID, Message: "project not found"})
		return
	}

	if err := workspace.ArchiveWorkspace(context.Background(), project.Path, ws.WorktreePath); err != nil {
		d.submit(reducer.Action{Kind: reducer.ActionWorkspaceArchiveFailed, WorkspaceID: eff.WorkspaceID, Message: err.Error()})
		return
	}
	d.submit(reducer.Action{Kind: reducer.ActionWorkspaceArchived, WorkspaceID: eff.WorkspaceID})
}

func (d *Dispatcher) cancelAgentTurn(eff reducer.Effect) {
	key := model.ThreadKey{WorkspaceID: eff.WorkspaceID, ThreadID: eff.ThreadID}
	d.handlesMu.Lock()
	handle := d.handles[key]
	d.handlesMu.Unlock()
	if handle != nil {
		handle.Cancel()
	}
}

func findProject(state *model.AppState, id model.ProjectID) *model.Project {
	idx := state.FindProjectIndex(id)
	if idx < 0 {
		return nil
	}
	return &state.Projects[idx]
}

// newBlobStore roots a content-addressed attachment store under the
// project/workspace's conversation directory, per the filesystem layout
// LUBAN_ROOT/conversations/<project_slug>/<workspace_name>/context.
func newBlobStore(roots config.RootsConfig, projectSlug, workspaceName string) *blob.Store {
	return blob.New(fmt.Sprintf("%s/conversations/%s/%s/context", roots.LubanRoot, projectSlug, workspaceName))
}

// newTurnScopeID mirrors original_source's turn-<micros_hex>-<rand_hex>
// format. uuid.New() supplies the random half so the id space doesn't
// depend on crypto/rand call sites scattered through the codebase.
func newTurnScopeID() string {
	micros := time.Now().UnixMicro()
	rnd := uuid.New()
	return fmt.Sprintf("turn-%x-%s", micros, rnd.String()[:8])
}
