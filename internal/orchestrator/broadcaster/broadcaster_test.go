package broadcaster

import (
	"testing"

	"github.com/kandev/luban/internal/orchestrator/model"
)

func TestRevisionIsMonotonic(t *testing.T) {
	tracker := NewTracker()
	state := model.NewAppState()

	first := tracker.NextAppChanged(state)
	second := tracker.NextConversationChanged(1, 1, nil)
	third := tracker.NextAppChanged(state)

	if !(first.Rev < second.Rev && second.Rev < third.Rev) {
		t.Fatalf("expected strictly increasing revisions, got %d, %d, %d", first.Rev, second.Rev, third.Rev)
	}
}

func TestResyncDoesNotAdvanceRevision(t *testing.T) {
	tracker := NewTracker()
	state := model.NewAppState()

	tracker.NextAppChanged(state)
	before := tracker.Rev()
	tracker.ResyncEvent(state)
	after := tracker.Rev()

	if before != after {
		t.Fatalf("ResyncEvent must not advance the revision, got %d -> %d", before, after)
	}
}
