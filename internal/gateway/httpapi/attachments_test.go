package httpapi

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"lukechampine.com/blake3"

	"github.com/kandev/luban/internal/common/config"
	"github.com/kandev/luban/internal/common/logger"
	"github.com/kandev/luban/internal/orchestrator"
	"github.com/kandev/luban/internal/orchestrator/model"
	"github.com/kandev/luban/internal/orchestrator/persistence"
	"github.com/kandev/luban/internal/orchestrator/reducer"
)

func TestAttachmentUploadResolvesPastedTextAsAttachment(t *testing.T) {
	store, err := persistence.Open(filepath.Join(t.TempDir(), "luban.db"))
	if err != nil {
		t.Fatalf("persistence.Open: %v", err)
	}
	t.Cleanup(func() { store.Close() })

	roots := config.RootsConfig{LubanRoot: t.TempDir()}
	loop := orchestrator.New(roots, store, logger.Default())
	ctx, cancel := context.WithCancel(context.Background())
	t.Cleanup(cancel)
	go loop.Run(ctx)

	loop.SubmitAndAwait(reducer.Action{Kind: reducer.ActionAddProject, Path: "/tmp/proj", IsGit: false})

	// Register the workspace/thread directly via WorkspaceCreated, bypassing
	// the real git worktree creation effect this test doesn't need.
	loop.SubmitAndAwait(reducer.Action{
		Kind: reducer.ActionWorkspaceCreated, ProjectID: 1,
		WorkspaceName: "feature", BranchName: "luban/feature", WorktreePath: t.TempDir(),
	})
	state := loop.CurrentState()
	var wsID model.WorkspaceID
	for id := range state.Workspaces {
		wsID = id
	}
	loop.SubmitAndAwait(reducer.Action{Kind: reducer.ActionCreateWorkspaceThread, WorkspaceID: wsID})
	state = loop.CurrentState()
	var threadID model.WorkspaceThreadID
	for key := range state.Threads {
		if key.WorkspaceID == wsID {
			threadID = key.ThreadID
		}
	}

	loop.SubmitAndAwait(reducer.Action{
		Kind: reducer.ActionChatDraftAttachmentAdded, WorkspaceID: wsID, ThreadID: threadID,
		AttachmentID: 1, AttachmentKind: model.AttachmentText, Anchor: 0,
	})

	pastedText := strings.Repeat("x", 10000)

	var body bytes.Buffer
	mw := multipart.NewWriter(&body)
	if err := mw.WriteField("kind", string(model.AttachmentText)); err != nil {
		t.Fatalf("write kind field: %v", err)
	}
	part, err := mw.CreateFormFile("file", "paste.txt")
	if err != nil {
		t.Fatalf("create form file: %v", err)
	}
	if _, err := part.Write([]byte(pastedText)); err != nil {
		t.Fatalf("write file part: %v", err)
	}
	mw.Close()

	gin.SetMode(gin.TestMode)
	router := gin.New()
	NewAttachmentsHandler(roots, loop, logger.Default()).SetupRoutes(router)

	url := "/api/workspaces/" + strconv.FormatUint(uint64(wsID), 10) +
		"/threads/" + strconv.FormatUint(uint64(threadID), 10) +
		"/attachments/1"
	req := httptest.NewRequest(http.MethodPost, url, &body)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}

	var ref model.AttachmentRef
	if err := json.Unmarshal(rec.Body.Bytes(), &ref); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if ref.Extension != "txt" {
		t.Fatalf("expected txt extension, got %q", ref.Extension)
	}
	if ref.Kind != model.AttachmentText {
		t.Fatalf("expected text kind, got %q", ref.Kind)
	}

	wantHash := blake3.Sum256([]byte(pastedText))
	wantHex := fmt.Sprintf("%x", wantHash)
	if ref.ID != wantHex {
		t.Fatalf("expected blob hash %s, got %s", wantHex, ref.ID)
	}
	if _, err := os.Stat(ref.Path); err != nil {
		t.Fatalf("expected resolved blob path to exist on disk: %v", err)
	}

	deadline := time.Now().Add(time.Second)
	for {
		state := loop.CurrentState()
		th := state.Threads[model.ThreadKey{WorkspaceID: wsID, ThreadID: threadID}]
		resolved := false
		for _, a := range th.DraftAttachments {
			if a.ID == 1 && a.Ready() {
				resolved = true
			}
		}
		if resolved {
			break
		}
		if time.Now().After(deadline) {
			t.Fatal("expected the draft attachment to resolve with a path")
		}
		time.Sleep(time.Millisecond)
	}

	// Pasting large text as an attachment must not have altered the draft
	// text itself -- only the attachment list gains an entry.
	th := loop.CurrentState().Threads[model.ThreadKey{WorkspaceID: wsID, ThreadID: threadID}]
	if th.Draft != "" {
		t.Fatalf("expected the draft text to remain unchanged, got %q", th.Draft)
	}
}
