package model

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRestoreTabOpensEvenWhenNotArchived(t *testing.T) {
	tabs := NewWorkspaceTabsWithInitial(1)
	tabs.RestoreTab(2, true)

	assert.Equal(t, WorkspaceThreadID(2), tabs.ActiveTab)
	assert.Contains(t, tabs.OpenTabs, WorkspaceThreadID(2))
	assert.NotContains(t, tabs.ArchivedTabs, WorkspaceThreadID(2))
}

func TestArchiveTabFallsBackToLeftNeighbor(t *testing.T) {
	tabs := NewWorkspaceTabsWithInitial(1)
	tabs.ensureOpen(2)
	tabs.ensureOpen(3)
	tabs.Activate(3)

	tabs.ArchiveTab(3)

	assert.Equal(t, WorkspaceThreadID(2), tabs.ActiveTab)
	assert.Equal(t, []WorkspaceThreadID{1, 2}, tabs.OpenTabs)
	assert.Equal(t, []WorkspaceThreadID{3}, tabs.ArchivedTabs)
}

func TestArchiveTabFallsBackToRightNeighborWhenNoLeft(t *testing.T) {
	tabs := NewWorkspaceTabsWithInitial(1)
	tabs.ensureOpen(2)
	tabs.Activate(1)

	tabs.ArchiveTab(1)

	assert.Equal(t, WorkspaceThreadID(2), tabs.ActiveTab)
}

func TestAllocateThreadIDIsDenseAndIncreasing(t *testing.T) {
	tabs := NewEmptyWorkspaceTabs()
	first := tabs.AllocateThreadID()
	second := tabs.AllocateThreadID()

	require.Equal(t, WorkspaceThreadID(1), first)
	require.Equal(t, WorkspaceThreadID(2), second)
	assert.Greater(t, tabs.NextThreadID, uint64(second))
}

func TestReorderTabMovesRightward(t *testing.T) {
	tabs := NewWorkspaceTabsWithInitial(1)
	tabs.ensureOpen(2)
	tabs.ensureOpen(3)

	moved := tabs.ReorderTab(1, 2)

	require.True(t, moved)
	assert.Equal(t, []WorkspaceThreadID{2, 3, 1}, tabs.OpenTabs)
}

func TestReorderTabNoopWhenSameIndex(t *testing.T) {
	tabs := NewWorkspaceTabsWithInitial(1)
	tabs.ensureOpen(2)

	moved := tabs.ReorderTab(1, 0)

	assert.False(t, moved)
	assert.Equal(t, []WorkspaceThreadID{1, 2}, tabs.OpenTabs)
}
