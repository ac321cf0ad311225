package persistence

import (
	"path/filepath"
	"testing"

	"github.com/kandev/luban/internal/orchestrator/model"
)

func TestLoadOnFreshDatabaseReportsNotOK(t *testing.T) {
	store, err := Open(filepath.Join(t.TempDir(), "luban.db"))
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	defer store.Close()

	_, ok, err := store.Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if ok {
		t.Fatalf("expected ok=false on a fresh database")
	}
}

func TestSaveThenLoadRoundTrips(t *testing.T) {
	store, err := Open(filepath.Join(t.TempDir(), "luban.db"))
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	defer store.Close()

	state := model.NewAppState()
	state.Projects = append(state.Projects, model.Project{ID: 1, DisplayName: "demo", Slug: "demo"})
	snapshot := state.ToPersisted()

	if err := store.Save(snapshot, 1000); err != nil {
		t.Fatalf("Save: %v", err)
	}

	got, ok, err := store.Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if !ok {
		t.Fatalf("expected ok=true after a save")
	}
	if len(got.Projects) != 1 || got.Projects[0].DisplayName != "demo" {
		t.Fatalf("expected the saved project to round-trip, got %+v", got.Projects)
	}

	if err := store.Save(snapshot, 2000); err != nil {
		t.Fatalf("second Save (upsert path): %v", err)
	}
}
