package vcs

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/dwmtools/dwm/command"
)

// GitBackend implements Backend on top of git worktrees.
type GitBackend struct {
	runner *command.Runner
}

// NewGitBackend creates a git backend using the given runner.
func NewGitBackend(runner *command.Runner) *GitBackend {
	return &GitBackend{runner: runner}
}

func (g *GitBackend) git(dir string, args ...string) (string, error) {
	return g.runner.RunIn(dir, "git", args...)
}

// Kind returns KindGit.
func (g *GitBackend) Kind() Kind { return KindGit }

// MainWorkspaceName returns the name used for the worktree backed by the
// original repo directory.
func (g *GitBackend) MainWorkspaceName() string { return "main-worktree" }

// RootFrom returns the repository toplevel for any directory inside it.
func (g *GitBackend) RootFrom(dir string) (string, error) {
	out, err := g.git(dir, "rev-parse", "--show-toplevel")
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(out), nil
}

// detectTrunk tries to detect the trunk/main branch name.
// Checks: main, master, then origin/HEAD symbolic ref.
func (g *GitBackend) detectTrunk(dir string) string {
	if _, err := g.git(dir, "rev-parse", "--verify", "refs/heads/main"); err == nil {
		return "main"
	}
	if _, err := g.git(dir, "rev-parse", "--verify", "refs/heads/master"); err == nil {
		return "master"
	}
	if out, err := g.git(dir, "symbolic-ref", "refs/remotes/origin/HEAD"); err == nil {
		if branch, ok := strings.CutPrefix(strings.TrimSpace(out), "refs/remotes/origin/"); ok {
			return branch
		}
	}
	return "main"
}

// worktreeEntry is one record of `git worktree list --porcelain`.
type worktreeEntry struct {
	path   string
	head   string
	branch string
}

// parseWorktreeList parses `git worktree list --porcelain` output. Bare
// worktrees are excluded; a detached HEAD leaves branch empty.
func parseWorktreeList(output string) []worktreeEntry {
	var entries []worktreeEntry
	var current worktreeEntry
	var isBare bool

	flush := func() {
		if current.path != "" && !isBare {
			entries = append(entries, current)
		}
		current = worktreeEntry{}
		isBare = false
	}

	for _, line := range strings.Split(output, "\n") {
		switch {
		case line == "":
			flush()
		case strings.HasPrefix(line, "worktree "):
			current.path = strings.TrimPrefix(line, "worktree ")
		case strings.HasPrefix(line, "HEAD "):
			current.head = strings.TrimPrefix(line, "HEAD ")
		case strings.HasPrefix(line, "branch refs/heads/"):
			current.branch = strings.TrimPrefix(line, "branch refs/heads/")
		case line == "bare":
			isBare = true
		}
	}
	flush()

	return entries
}

// WorkspaceList lists all worktrees of the repository.
func (g *GitBackend) WorkspaceList(repoDir string) ([]Workspace, error) {
	out, err := g.git(repoDir, "worktree", "list", "--porcelain")
	if err != nil {
		return nil, err
	}

	var results []Workspace
	for _, wt := range parseWorktreeList(out) {
		shortHash := wt.head
		if len(shortHash) > 8 {
			shortHash = shortHash[:8]
		}

		description := ""
		if desc, err := g.git(wt.path, "log", "--format=%s", "-1"); err == nil {
			description = strings.TrimSpace(desc)
		}

		var bookmarks []string
		if wt.branch != "" {
			bookmarks = []string{wt.branch}
		}

		results = append(results, Workspace{
			Name: filepath.Base(wt.path),
			Info: WorkspaceInfo{
				ChangeID:    shortHash,
				Description: description,
				Bookmarks:   bookmarks,
			},
		})
	}
	return results, nil
}

// WorkspaceAdd creates a worktree with a branch named after the workspace.
func (g *GitBackend) WorkspaceAdd(repoDir, wsPath, name, at string) error {
	args := []string{"worktree", "add", wsPath, "-b", name}
	if at != "" {
		args = append(args, at)
	}
	_, err := g.git(repoDir, args...)
	return err
}

// WorkspaceRemove removes the worktree from git tracking and deletes its
// directory.
func (g *GitBackend) WorkspaceRemove(repoDir, name, wsPath string) error {
	_, err := g.git(repoDir, "worktree", "remove", wsPath, "--force")
	return err
}

// WorkspaceRename moves the worktree directory; git tracks the move itself.
func (g *GitBackend) WorkspaceRename(repoDir, oldPath, newPath, oldName, newName string) error {
	_, err := g.git(repoDir, "worktree", "move", oldPath, newPath)
	return err
}

// DiffStatVsTrunk returns the summary diff stat of trunk..HEAD for the
// worktree. Failures collapse to a zero stat.
func (g *GitBackend) DiffStatVsTrunk(repoDir, worktreeDir, wsName string) (DiffStat, error) {
	trunk := g.detectTrunk(worktreeDir)
	out, err := g.git(worktreeDir, "diff", "--stat", trunk+"..HEAD")
	if err != nil {
		return DiffStat{}, nil
	}
	return ParseDiffStat(out), nil
}

// LatestDescription returns the subject of the most recent commit.
func (g *GitBackend) LatestDescription(repoDir, worktreeDir, wsName string) string {
	out, err := g.git(worktreeDir, "log", "--format=%s", "-1")
	if err != nil {
		return ""
	}
	return strings.TrimSpace(out)
}

// IsMergedIntoTrunk reports whether HEAD is an ancestor of trunk.
func (g *GitBackend) IsMergedIntoTrunk(repoDir, worktreeDir, wsName string) bool {
	trunk := g.detectTrunk(worktreeDir)
	_, err := g.git(worktreeDir, "merge-base", "--is-ancestor", "HEAD", trunk)
	return err == nil
}

// PreviewLog returns a short one-line-per-commit log excerpt.
func (g *GitBackend) PreviewLog(repoDir, worktreeDir, wsName string, limit int) string {
	out, err := g.git(worktreeDir, "log", "--oneline", "--decorate", fmt.Sprintf("-%d", limit))
	if err != nil {
		return ""
	}
	return out
}

// PreviewDiffStat returns the per-file diff summary against trunk.
func (g *GitBackend) PreviewDiffStat(repoDir, worktreeDir, wsName string) string {
	trunk := g.detectTrunk(worktreeDir)
	out, err := g.git(worktreeDir, "diff", "--stat", trunk+"..HEAD")
	if err != nil {
		return ""
	}
	return out
}
