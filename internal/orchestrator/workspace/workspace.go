// Package workspace creates and retires the git worktrees that back each
// Workspace: a dedicated branch plus a checked-out working tree, named from
// a random two-word slug rather than anything user-supplied.
package workspace

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/kandev/luban/internal/orchestrator/gitdriver"
	"github.com/kandev/luban/internal/orchestrator/words"
)

// maxNameAttempts bounds the unique-name retry loop. Two concurrent
// creations racing on the same project must not collide on-disk; the
// existence checks inside the loop are the only synchronization between
// them, so this ceiling is a correctness property, not a tuning knob.
const maxNameAttempts = 64

// ErrNameExhausted is returned when no unique workspace name was found
// within maxNameAttempts tries.
var ErrNameExhausted = errors.New("workspace: exhausted name attempts")

// Created describes a newly provisioned workspace worktree.
type Created struct {
	WorkspaceName string
	BranchName    string
	WorktreePath  string
}

// CreateWorkspace fetches the project's default remote, then creates a new
// branch plus worktree under lubanRoot/worktrees/<projectSlug>/<name>,
// where name is a random two-word slug that does not collide with an
// existing worktree directory or local branch.
func CreateWorkspace(ctx context.Context, lubanRoot, projectPath, projectSlug string) (Created, error) {
	remote, err := gitdriver.SelectRemote(ctx, projectPath)
	if err != nil {
		return Created{}, fmt.Errorf("select remote: %w", err)
	}

	if _, err := gitdriver.RunGit(ctx, projectPath, "fetch", "--prune", remote); err != nil {
		return Created{}, fmt.Errorf("fetch %s: %w", remote, err)
	}

	upstreamRef, err := gitdriver.ResolveDefaultUpstreamRef(ctx, projectPath, remote)
	if err != nil {
		return Created{}, fmt.Errorf("resolve upstream ref: %w", err)
	}

	worktreesDir := filepath.Join(lubanRoot, "worktrees", projectSlug)

	for attempt := 0; attempt < maxNameAttempts; attempt++ {
		name, err := words.Random()
		if err != nil {
			return Created{}, fmt.Errorf("generate workspace name: %w", err)
		}
		branchName := "luban/" + name
		worktreePath := filepath.Join(worktreesDir, name)

		if _, statErr := os.Stat(worktreePath); statErr == nil {
			continue
		}
		if gitdriver.BranchExists(ctx, projectPath, "refs/heads/"+branchName) {
			continue
		}

		if err := os.MkdirAll(worktreesDir, 0755); err != nil {
			return Created{}, fmt.Errorf("create worktrees dir: %w", err)
		}
		if _, err := gitdriver.RunGit(ctx, projectPath, "worktree", "add", "-b", branchName, worktreePath, upstreamRef); err != nil {
			return Created{}, fmt.Errorf("git worktree add: %w", err)
		}

		return Created{WorkspaceName: name, BranchName: branchName, WorktreePath: worktreePath}, nil
	}

	return Created{}, ErrNameExhausted
}

// ArchiveWorkspace removes the worktree at worktreePath, leaving its
// branch intact so the workspace's history remains reachable after
// archiving.
func ArchiveWorkspace(ctx context.Context, projectPath, worktreePath string) error {
	if _, err := gitdriver.RunGit(ctx, projectPath, "worktree", "remove", worktreePath); err != nil {
		return fmt.Errorf("git worktree remove: %w", err)
	}
	return nil
}
