package model

// WorkspaceTabs tracks the per-workspace set of open and archived thread
// tabs plus the dense thread-id allocator for that workspace.
//
// Invariants: ActiveTab is in OpenTabs whenever OpenTabs is non-empty; a
// thread id appears in at most one of OpenTabs/ArchivedTabs; NextThreadID
// strictly exceeds every id ever allocated in this workspace.
type WorkspaceTabs struct {
	OpenTabs     []WorkspaceThreadID
	ArchivedTabs []WorkspaceThreadID
	ActiveTab    WorkspaceThreadID
	NextThreadID uint64
}

// NewEmptyWorkspaceTabs returns tabs with no open or archived threads.
// ActiveTab is a placeholder and undefined until OpenTabs is non-empty.
func NewEmptyWorkspaceTabs() WorkspaceTabs {
	return WorkspaceTabs{
		OpenTabs:     nil,
		ArchivedTabs: nil,
		ActiveTab:    1,
		NextThreadID: 1,
	}
}

// NewWorkspaceTabsWithInitial returns tabs with a single open, active tab.
func NewWorkspaceTabsWithInitial(threadID WorkspaceThreadID) WorkspaceTabs {
	return WorkspaceTabs{
		OpenTabs:     []WorkspaceThreadID{threadID},
		ArchivedTabs: nil,
		ActiveTab:    threadID,
		NextThreadID: uint64(threadID) + 1,
	}
}

func removeID(ids []WorkspaceThreadID, target WorkspaceThreadID) []WorkspaceThreadID {
	out := ids[:0:0]
	for _, id := range ids {
		if id != target {
			out = append(out, id)
		}
	}
	return out
}

func containsID(ids []WorkspaceThreadID, target WorkspaceThreadID) bool {
	for _, id := range ids {
		if id == target {
			return true
		}
	}
	return false
}

func (t *WorkspaceTabs) removeOpen(threadID WorkspaceThreadID) {
	t.OpenTabs = removeID(t.OpenTabs, threadID)
}

func (t *WorkspaceTabs) removeArchived(threadID WorkspaceThreadID) {
	t.ArchivedTabs = removeID(t.ArchivedTabs, threadID)
}

func (t *WorkspaceTabs) ensureOpen(threadID WorkspaceThreadID) {
	if !containsID(t.OpenTabs, threadID) {
		t.OpenTabs = append(t.OpenTabs, threadID)
	}
}

func (t *WorkspaceTabs) ensureArchived(threadID WorkspaceThreadID) {
	if !containsID(t.ArchivedTabs, threadID) {
		t.ArchivedTabs = append(t.ArchivedTabs, threadID)
	}
}

// Activate makes threadID the active, open tab, moving it out of the
// archived set if it was there.
func (t *WorkspaceTabs) Activate(threadID WorkspaceThreadID) {
	t.ActiveTab = threadID
	t.removeArchived(threadID)
	t.ensureOpen(threadID)
}

// ArchiveTab moves threadID from open to archived. If it was the active
// tab, the new active tab falls back to its left neighbor in OpenTabs, then
// its right neighbor, then the first remaining open tab (computed from the
// pre-removal index: left neighbor first, then right, then the first
// remaining open tab.
func (t *WorkspaceTabs) ArchiveTab(threadID WorkspaceThreadID) {
	var activeFallback *WorkspaceThreadID
	if t.ActiveTab == threadID {
		idx := -1
		for i, id := range t.OpenTabs {
			if id == threadID {
				idx = i
				break
			}
		}
		if idx >= 0 {
			if idx > 0 {
				v := t.OpenTabs[idx-1]
				activeFallback = &v
			} else if idx+1 < len(t.OpenTabs) {
				v := t.OpenTabs[idx+1]
				activeFallback = &v
			}
		}
	}

	t.removeOpen(threadID)
	t.ensureArchived(threadID)

	if activeFallback != nil {
		t.ActiveTab = *activeFallback
	} else if len(t.OpenTabs) > 0 {
		t.ActiveTab = t.OpenTabs[0]
	}
}

// RestoreTab reopens an archived (or already-open) tab, optionally making it
// active. It always ensures the tab is open, even if it was never archived
// in the first place.
func (t *WorkspaceTabs) RestoreTab(threadID WorkspaceThreadID, activate bool) {
	t.removeArchived(threadID)
	t.ensureOpen(threadID)
	if activate {
		t.ActiveTab = threadID
	}
}

// AllocateThreadID hands out the next dense thread id for this workspace.
func (t *WorkspaceTabs) AllocateThreadID() WorkspaceThreadID {
	id := WorkspaceThreadID(t.NextThreadID)
	t.NextThreadID++
	return id
}

// ReorderTab moves an open tab to toIndex, clamped to the open-tab slice
// bounds, so that the tab ends up at index toIndex. Reports
// whether a move actually happened (false if threadID is not open, or the
// move is a no-op).
func (t *WorkspaceTabs) ReorderTab(threadID WorkspaceThreadID, toIndex int) bool {
	fromIndex := -1
	for i, id := range t.OpenTabs {
		if id == threadID {
			fromIndex = i
			break
		}
	}
	if fromIndex < 0 {
		return false
	}
	if fromIndex == toIndex {
		return false
	}

	tab := t.OpenTabs[fromIndex]
	rest := append(append([]WorkspaceThreadID(nil), t.OpenTabs[:fromIndex]...), t.OpenTabs[fromIndex+1:]...)

	target := toIndex
	if target > len(rest) {
		target = len(rest)
	}

	out := make([]WorkspaceThreadID, 0, len(rest)+1)
	out = append(out, rest[:target]...)
	out = append(out, tab)
	out = append(out, rest[target:]...)
	t.OpenTabs = out
	return true
}

// Clone returns a deep copy.
func (t WorkspaceTabs) Clone() WorkspaceTabs {
	cp := t
	cp.OpenTabs = append([]WorkspaceThreadID(nil), t.OpenTabs...)
	cp.ArchivedTabs = append([]WorkspaceThreadID(nil), t.ArchivedTabs...)
	return cp
}
