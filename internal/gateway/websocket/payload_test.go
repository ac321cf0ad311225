package websocket

import (
	"encoding/json"
	"testing"

	ws "github.com/kandev/luban/pkg/websocket"

	"github.com/kandev/luban/internal/orchestrator/reducer"
)

func TestDecodeActionUnknownActionReturnsFalse(t *testing.T) {
	_, known, err := decodeAction("not.a.real.action", nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if known {
		t.Fatal("expected an unrecognized action string to be reported as unknown")
	}
}

func TestDecodeActionPopulatesFieldsFromPayload(t *testing.T) {
	raw := json.RawMessage(`{"project_id":42,"is_git":true}`)

	action, known, err := decodeAction(ws.ActionAddProject, raw)
	if err != nil {
		t.Fatalf("decodeAction: %v", err)
	}
	if !known {
		t.Fatal("expected project.add to be recognized")
	}
	if action.Kind != reducer.ActionAddProject {
		t.Fatalf("expected ActionAddProject, got %s", action.Kind)
	}
	if !action.IsGit {
		t.Fatal("expected is_git to decode true")
	}
}

func TestDecodeActionRejectsMalformedPayload(t *testing.T) {
	_, known, err := decodeAction(ws.ActionAddProject, json.RawMessage(`not json`))
	if err == nil {
		t.Fatal("expected an error decoding malformed payload")
	}
	if !known {
		t.Fatal("a malformed payload for a known action is still a known action")
	}
}

func TestDecodeActionEmptyPayloadIsFine(t *testing.T) {
	action, known, err := decodeAction(ws.ActionEnsureMainWorkspace, nil)
	if err != nil {
		t.Fatalf("decodeAction: %v", err)
	}
	if !known {
		t.Fatal("expected workspace.ensure_main to be recognized")
	}
	if action.Kind != reducer.ActionEnsureMainWorkspace {
		t.Fatalf("unexpected kind: %s", action.Kind)
	}
}
