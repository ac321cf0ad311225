package orchestrator

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/kandev/luban/internal/common/config"
	"github.com/kandev/luban/internal/common/logger"
	"github.com/kandev/luban/internal/orchestrator/persistence"
	"github.com/kandev/luban/internal/orchestrator/reducer"
)

func newTestLoop(t *testing.T) *Loop {
	t.Helper()
	store, err := persistence.Open(filepath.Join(t.TempDir(), "luban.db"))
	if err != nil {
		t.Fatalf("persistence.Open: %v", err)
	}
	t.Cleanup(func() { store.Close() })

	roots := config.RootsConfig{LubanRoot: t.TempDir()}
	loop := New(roots, store, logger.Default())

	ctx, cancel := context.WithCancel(context.Background())
	t.Cleanup(cancel)
	go loop.Run(ctx)
	return loop
}

func TestSubmitAndAwaitReturnsAdvancingRevision(t *testing.T) {
	loop := newTestLoop(t)

	rev1 := loop.SubmitAndAwait(reducer.Action{Kind: reducer.ActionAddProject, Path: "/tmp/one", IsGit: true})
	rev2 := loop.SubmitAndAwait(reducer.Action{Kind: reducer.ActionAddProject, Path: "/tmp/two", IsGit: true})

	if rev2 <= rev1 {
		t.Fatalf("expected revision to advance, got rev1=%d rev2=%d", rev1, rev2)
	}
}

func TestAppStartedDoesNotBroadcast(t *testing.T) {
	// Construct the Loop without running it, so applying AppStarted in
	// isolation can't race with the asynchronous AppStateLoaded it
	// schedules -- that action broadcasts on its own and would make a
	// timing-based assertion on the full Run() loop flaky.
	store, err := persistence.Open(filepath.Join(t.TempDir(), "luban.db"))
	if err != nil {
		t.Fatalf("persistence.Open: %v", err)
	}
	defer store.Close()
	loop := New(config.RootsConfig{LubanRoot: t.TempDir()}, store, logger.Default())

	loop.apply(reducer.Action{Kind: reducer.ActionAppStarted})

	select {
	case ev := <-loop.Events():
		t.Fatalf("did not expect a broadcast from AppStarted alone, got %+v", ev)
	case <-time.After(50 * time.Millisecond):
	}
}

func TestMutatingActionBroadcastsAppChanged(t *testing.T) {
	loop := newTestLoop(t)

	loop.SubmitAndAwait(reducer.Action{Kind: reducer.ActionAddProject, Path: "/tmp/three", IsGit: false})

	select {
	case ev := <-loop.Events():
		if ev.AppSnapshot == nil {
			t.Fatal("expected an AppChanged event to carry a snapshot")
		}
	case <-time.After(time.Second):
		t.Fatal("expected an AppChanged event after a mutating action")
	}
}

func TestShouldBroadcastExcludesLifecycleActions(t *testing.T) {
	for _, kind := range []reducer.ActionKind{
		reducer.ActionAppStarted,
		reducer.ActionAppStateSaved,
		reducer.ActionAppStateSaveFailed,
	} {
		if shouldBroadcast(kind) {
			t.Fatalf("expected %s to be excluded from broadcast", kind)
		}
	}
	if !shouldBroadcast(reducer.ActionAddProject) {
		t.Fatal("expected a state-mutating action to broadcast")
	}
}
