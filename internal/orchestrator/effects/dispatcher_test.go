package effects

import (
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/kandev/luban/internal/common/config"
	"github.com/kandev/luban/internal/common/logger"
	"github.com/kandev/luban/internal/orchestrator/model"
	"github.com/kandev/luban/internal/orchestrator/persistence"
	"github.com/kandev/luban/internal/orchestrator/reducer"
)

func newTestDispatcher(t *testing.T) (*Dispatcher, *recordingSubmitter) {
	t.Helper()
	store, err := persistence.Open(filepath.Join(t.TempDir(), "luban.db"))
	if err != nil {
		t.Fatalf("persistence.Open: %v", err)
	}
	t.Cleanup(func() { store.Close() })

	rs := &recordingSubmitter{}
	state := model.NewAppState()
	d := New(config.RootsConfig{LubanRoot: t.TempDir()}, store, logger.Default(), rs.submit, func() *model.AppState { return state })
	return d, rs
}

type recordingSubmitter struct {
	mu      sync.Mutex
	actions []reducer.Action
}

func (r *recordingSubmitter) submit(a reducer.Action) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.actions = append(r.actions, a)
}

func (r *recordingSubmitter) count(kind reducer.ActionKind) int {
	r.mu.Lock()
	defer r.mu.Unlock()
	n := 0
	for _, a := range r.actions {
		if a.Kind == kind {
			n++
		}
	}
	return n
}

func (r *recordingSubmitter) snapshot() []reducer.Action {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]reducer.Action, len(r.actions))
	copy(out, r.actions)
	return out
}

func (r *recordingSubmitter) waitFor(kind reducer.ActionKind, timeout time.Duration) bool {
	deadline := time.Now().Add(timeout)
	for time.Now().Before(deadline) {
		if r.count(kind) > 0 {
			return true
		}
		time.Sleep(time.Millisecond)
	}
	return false
}

func TestLoadAppStateOnFreshStoreReportsEmptySnapshot(t *testing.T) {
	d, rs := newTestDispatcher(t)

	d.loadAppState()

	if !rs.waitFor(reducer.ActionAppStateLoaded, time.Second) {
		t.Fatal("expected an AppStateLoaded action")
	}
	if rs.count(reducer.ActionAppStateLoadFailed) != 0 {
		t.Fatal("did not expect a load failure on a fresh store")
	}
}

func TestRequestSaveCoalescesConcurrentCallers(t *testing.T) {
	d, rs := newTestDispatcher(t)

	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			d.requestSave()
		}()
	}
	wg.Wait()

	deadline := time.Now().Add(time.Second)
	for time.Now().Before(deadline) {
		d.saveMu.Lock()
		inProgress := d.saveInProgress
		d.saveMu.Unlock()
		if !inProgress {
			break
		}
		time.Sleep(time.Millisecond)
	}

	if rs.count(reducer.ActionAppStateSaved) == 0 {
		t.Fatal("expected at least one AppStateSaved action")
	}
	// Every requestSave call sets saveNeeded rather than spawning its own
	// worker, so 8 concurrent requests should not produce 8 separate saves.
	if n := rs.count(reducer.ActionAppStateSaved); n > 3 {
		t.Fatalf("expected coalesced saves, got %d AppStateSaved actions", n)
	}
}

func TestCreateWorkspaceFailsWhenProjectMissing(t *testing.T) {
	d, rs := newTestDispatcher(t)
	snapshot := model.NewAppState()

	d.createWorkspace(reducer.Effect{Kind: reducer.EffectCreateWorkspace, ProjectID: 999}, snapshot)

	if !rs.waitFor(reducer.ActionWorkspaceCreateFailed, time.Second) {
		t.Fatal("expected a WorkspaceCreateFailed action for an unknown project")
	}
}
