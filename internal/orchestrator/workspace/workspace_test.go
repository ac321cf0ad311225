package workspace

import (
	"context"
	"os"
	"os/exec"
	"path/filepath"
	"testing"
)

// newTestProject sets up a bare "origin" repo plus a clone that tracks it,
// the way CreateWorkspace expects to find a project: a remote named
// "origin" with a resolvable refs/remotes/origin/HEAD.
func newTestProject(t *testing.T) string {
	t.Helper()
	ctx := context.Background()
	root := t.TempDir()

	bare := filepath.Join(root, "origin.git")
	runGit(t, ctx, root, "init", "--bare", "-b", "main", bare)

	seed := filepath.Join(root, "seed")
	runGit(t, ctx, root, "init", "-b", "main", seed)
	runGit(t, ctx, seed, "config", "user.email", "test@example.com")
	runGit(t, ctx, seed, "config", "user.name", "test")
	if err := os.WriteFile(filepath.Join(seed, "README.md"), []byte("hello\n"), 0644); err != nil {
		t.Fatalf("write seed file: %v", err)
	}
	runGit(t, ctx, seed, "add", ".")
	runGit(t, ctx, seed, "commit", "-m", "initial")
	runGit(t, ctx, seed, "remote", "add", "origin", bare)
	runGit(t, ctx, seed, "push", "origin", "main")

	clone := filepath.Join(root, "clone")
	runGit(t, ctx, root, "clone", bare, clone)
	runGit(t, ctx, clone, "config", "user.email", "test@example.com")
	runGit(t, ctx, clone, "config", "user.name", "test")

	return clone
}

func runGit(t *testing.T, ctx context.Context, dir string, args ...string) {
	t.Helper()
	cmd := exec.CommandContext(ctx, "git", args...)
	cmd.Dir = dir
	out, err := cmd.CombinedOutput()
	if err != nil {
		t.Fatalf("git %v: %v\n%s", args, err, out)
	}
}

func TestCreateWorkspaceHappyPath(t *testing.T) {
	projectPath := newTestProject(t)
	lubanRoot := t.TempDir()

	created, err := CreateWorkspace(context.Background(), lubanRoot, projectPath, "demo")
	if err != nil {
		t.Fatalf("CreateWorkspace: %v", err)
	}

	if created.BranchName[:len("luban/")] != "luban/" {
		t.Fatalf("expected branch under luban/, got %s", created.BranchName)
	}
	wantWorktree := filepath.Join(lubanRoot, "worktrees", "demo", created.WorkspaceName)
	if created.WorktreePath != wantWorktree {
		t.Fatalf("expected worktree path %s, got %s", wantWorktree, created.WorktreePath)
	}
	if _, err := os.Stat(created.WorktreePath); err != nil {
		t.Fatalf("expected worktree directory to exist: %v", err)
	}
	if !gitdriverBranchExists(t, projectPath, created.BranchName) {
		t.Fatalf("expected branch %s to exist", created.BranchName)
	}
}

func TestCreateWorkspaceRetriesOnNameCollision(t *testing.T) {
	// words.Random draws from crypto/rand so the exact name can't be
	// pinned from a test, but creating a workspace occupies its worktree
	// directory on disk -- a second call that happened to draw the same
	// name would find that path already stat-able and must retry past
	// it, per the loop's existence check.
	projectPath := newTestProject(t)
	lubanRoot := t.TempDir()

	first, err := CreateWorkspace(context.Background(), lubanRoot, projectPath, "demo")
	if err != nil {
		t.Fatalf("first CreateWorkspace: %v", err)
	}

	second, err := CreateWorkspace(context.Background(), lubanRoot, projectPath, "demo")
	if err != nil {
		t.Fatalf("second CreateWorkspace: %v", err)
	}
	if second.WorkspaceName == first.WorkspaceName {
		t.Fatal("expected a distinct workspace name on the second call")
	}

	entries, err := os.ReadDir(filepath.Join(lubanRoot, "worktrees", "demo"))
	if err != nil {
		t.Fatalf("read worktrees dir: %v", err)
	}
	names := map[string]bool{}
	for _, e := range entries {
		names[e.Name()] = true
	}
	if !names[first.WorkspaceName] || !names[second.WorkspaceName] {
		t.Fatal("expected both worktrees to be present on disk")
	}
}

func gitdriverBranchExists(t *testing.T, repoPath, branch string) bool {
	t.Helper()
	cmd := exec.CommandContext(context.Background(), "git", "rev-parse", "--verify", "refs/heads/"+branch)
	cmd.Dir = repoPath
	return cmd.Run() == nil
}
