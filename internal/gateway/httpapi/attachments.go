// Package httpapi holds the orchestrator's plain-HTTP endpoints: the ones
// that don't belong on the WebSocket control plane because they carry
// binary bodies (attachment uploads) rather than JSON actions.
package httpapi

import (
	"io"
	"net/http"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/kandev/luban/internal/common/config"
	"github.com/kandev/luban/internal/common/logger"
	"github.com/kandev/luban/internal/orchestrator"
	"github.com/kandev/luban/internal/orchestrator/blob"
	"github.com/kandev/luban/internal/orchestrator/model"
	"github.com/kandev/luban/internal/orchestrator/reducer"
)

const maxUploadBytes = 32 << 20 // 32MiB, generous for a pasted image or a small text file

// AttachmentsHandler resolves a draft attachment already registered via
// ActionChatDraftAttachmentAdded against a blob store rooted at the owning
// workspace's conversation directory.
type AttachmentsHandler struct {
	roots config.RootsConfig
	loop  *orchestrator.Loop
	log   *logger.Logger
}

// NewAttachmentsHandler returns a handler backed by loop's current state for
// project/workspace lookups.
func NewAttachmentsHandler(roots config.RootsConfig, loop *orchestrator.Loop, log *logger.Logger) *AttachmentsHandler {
	return &AttachmentsHandler{roots: roots, loop: loop, log: log}
}

// SetupRoutes registers the attachment upload route on router.
func (h *AttachmentsHandler) SetupRoutes(router gin.IRouter) {
	router.POST("/api/workspaces/:workspace_id/threads/:thread_id/attachments/:attachment_id", h.handleUpload)
}

// handleUpload reads a single multipart "file" field, stores it in the
// owning workspace's blob store, and submits the resulting
// ActionChatDraftAttachmentResolved (or ...Failed on error) before
// answering. A client can treat a non-2xx response as the send.
func (h *AttachmentsHandler) handleUpload(c *gin.Context) {
	workspaceID, err := parseID(c.Param("workspace_id"))
	if err != nil {
		c.Status(http.StatusBadRequest)
		return
	}
	threadID, err := parseID(c.Param("thread_id"))
	if err != nil {
		c.Status(http.StatusBadRequest)
		return
	}
	attachmentID, err := parseID(c.Param("attachment_id"))
	if err != nil {
		c.Status(http.StatusBadRequest)
		return
	}

	state := h.loop.CurrentState()
	ws, ok := state.Workspaces[model.WorkspaceID(workspaceID)]
	if !ok {
		c.Status(http.StatusNotFound)
		return
	}
	idx := state.FindProjectIndex(ws.ProjectID)
	if idx < 0 {
		c.Status(http.StatusNotFound)
		return
	}
	project := state.Projects[idx]

	kind := model.AttachmentKind(c.PostForm("kind"))
	if kind == "" {
		kind = model.AttachmentFile
	}

	fileHeader, err := c.FormFile("file")
	if err != nil {
		h.fail(model.WorkspaceID(workspaceID), model.WorkspaceThreadID(threadID), attachmentID, "missing file field")
		c.Status(http.StatusBadRequest)
		return
	}
	if fileHeader.Size > maxUploadBytes {
		h.fail(model.WorkspaceID(workspaceID), model.WorkspaceThreadID(threadID), attachmentID, "file too large")
		c.Status(http.StatusRequestEntityTooLarge)
		return
	}

	f, err := fileHeader.Open()
	if err != nil {
		h.fail(model.WorkspaceID(workspaceID), model.WorkspaceThreadID(threadID), attachmentID, err.Error())
		c.Status(http.StatusInternalServerError)
		return
	}
	defer f.Close()

	data, err := io.ReadAll(io.LimitReader(f, maxUploadBytes+1))
	if err != nil {
		h.fail(model.WorkspaceID(workspaceID), model.WorkspaceThreadID(threadID), attachmentID, err.Error())
		c.Status(http.StatusInternalServerError)
		return
	}

	ext := strings.TrimPrefix(filepath.Ext(fileHeader.Filename), ".")
	store := blob.New(h.roots.LubanRoot + "/conversations/" + project.Slug + "/" + ws.WorkspaceName + "/context")
	stored, err := store.StoreBytes(data, ext)
	if err != nil {
		h.fail(model.WorkspaceID(workspaceID), model.WorkspaceThreadID(threadID), attachmentID, err.Error())
		c.Status(http.StatusBadRequest)
		return
	}

	ref := model.AttachmentRef{
		ID:          stored.Hash,
		Extension:   stored.Extension,
		ByteLength:  stored.ByteLen,
		DisplayName: fileHeader.Filename,
		Kind:        kind,
		Path:        stored.Path,
	}
	h.loop.Submit(reducer.Action{
		Kind:         reducer.ActionChatDraftAttachmentResolved,
		WorkspaceID:  model.WorkspaceID(workspaceID),
		ThreadID:     model.WorkspaceThreadID(threadID),
		AttachmentID: attachmentID,
		ResolvedAtt:  ref,
	})
	c.JSON(http.StatusOK, ref)
}

func (h *AttachmentsHandler) fail(workspaceID model.WorkspaceID, threadID model.WorkspaceThreadID, attachmentID uint64, reason string) {
	h.log.Warn("attachment upload failed", zap.String("reason", reason))
	h.loop.Submit(reducer.Action{
		Kind:         reducer.ActionChatDraftAttachmentFailed,
		WorkspaceID:  workspaceID,
		ThreadID:     threadID,
		AttachmentID: attachmentID,
		Message:      reason,
	})
}

func parseID(s string) (uint64, error) {
	return strconv.ParseUint(s, 10, 64)
}
