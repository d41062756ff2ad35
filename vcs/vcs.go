// Package vcs abstracts the two version-control backends dwm supports, jj
// workspaces and git worktrees, behind a common Backend interface. All VCS
// interaction happens through subprocess invocation and text-output parsing;
// nothing here links against a VCS library.
package vcs

import (
	"fmt"
	"hash/fnv"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/dwmtools/dwm/command"
	"github.com/dwmtools/dwm/errors"
)

// Kind identifies a supported VCS.
type Kind string

const (
	KindJj  Kind = "jj"
	KindGit Kind = "git"
)

// ParseKind parses a Kind from its string form.
func ParseKind(s string) (Kind, error) {
	switch s {
	case "jj":
		return KindJj, nil
	case "git":
		return KindGit, nil
	default:
		return "", errors.UnknownVcs(s)
	}
}

// Backend returns the backend implementation for this kind.
func (k Kind) Backend(runner *command.Runner) Backend {
	if k == KindGit {
		return &GitBackend{runner: runner}
	}
	return &JjBackend{runner: runner}
}

// WorkspaceInfo is VCS-level metadata for a single workspace/worktree as
// reported by the underlying VCS.
type WorkspaceInfo struct {
	// ChangeID is the short change/commit id (8 hex chars).
	ChangeID string
	// Description is the commit message of the workspace's current revision.
	Description string
	// Bookmarks are branch or bookmark names pointing at this revision.
	Bookmarks []string
}

// Workspace pairs a workspace name with its VCS metadata.
type Workspace struct {
	Name string
	Info WorkspaceInfo
}

// DiffStat is the parsed summary line from `jj diff --stat` or
// `git diff --stat`.
type DiffStat struct {
	FilesChanged int
	Insertions   int
	Deletions    int
}

// Total returns insertions plus deletions, the magnitude used for sorting.
func (d DiffStat) Total() int {
	return d.Insertions + d.Deletions
}

// IsZero reports whether the stat describes a clean workspace.
func (d DiffStat) IsZero() bool {
	return d.FilesChanged == 0 && d.Insertions == 0 && d.Deletions == 0
}

// Backend is the abstraction over jj and git that workspace operations are
// delegated to.
type Backend interface {
	// RootFrom returns the repository root given any directory inside the repo.
	RootFrom(dir string) (string, error)

	// WorkspaceList lists all workspaces/worktrees known to the VCS.
	WorkspaceList(repoDir string) ([]Workspace, error)
	// WorkspaceAdd creates a new workspace/worktree at wsPath with the given
	// name. at optionally specifies the starting revision ("" for the default).
	WorkspaceAdd(repoDir, wsPath, name, at string) error
	// WorkspaceRemove removes the workspace/worktree from VCS tracking.
	WorkspaceRemove(repoDir, name, wsPath string) error
	// WorkspaceRename updates VCS metadata and moves the workspace directory.
	WorkspaceRename(repoDir, oldPath, newPath, oldName, newName string) error

	// DiffStatVsTrunk returns the diff stat between trunk and the workspace's
	// current revision.
	DiffStatVsTrunk(repoDir, worktreeDir, wsName string) (DiffStat, error)
	// LatestDescription returns the most recent non-empty commit description
	// reachable from the workspace's head, or "" if none is found.
	LatestDescription(repoDir, worktreeDir, wsName string) string
	// IsMergedIntoTrunk reports whether the workspace's changes are already
	// merged into the trunk branch.
	IsMergedIntoTrunk(repoDir, worktreeDir, wsName string) bool

	// PreviewLog returns a human-readable log excerpt for the preview pane,
	// "" on any failure.
	PreviewLog(repoDir, worktreeDir, wsName string, limit int) string
	// PreviewDiffStat returns a human-readable per-file diff summary for the
	// preview pane, "" on any failure.
	PreviewDiffStat(repoDir, worktreeDir, wsName string) string

	// Kind returns the VCS kind for this backend.
	Kind() Kind
	// MainWorkspaceName is the name of the primary workspace that lives in
	// the original repo directory.
	MainWorkspaceName() string
}

// RepoNameFrom returns the dwm storage directory name for the repo that
// contains dir.
func RepoNameFrom(b Backend, dir string) (string, error) {
	root, err := b.RootFrom(dir)
	if err != nil {
		return "", err
	}
	return RepoDirName(root), nil
}

// RepoDirName builds the per-repo storage directory name for a repo root.
//
// The name is <basename>-<8-char-hash> so that two repos with the same
// directory name but different paths get distinct dwm directories.
func RepoDirName(root string) string {
	return fmt.Sprintf("%s-%s", filepath.Base(root), hashPath(root))
}

// hashPath computes a short FNV-1a hex hash of a path string.
func hashPath(path string) string {
	h := fnv.New32a()
	h.Write([]byte(path))
	return fmt.Sprintf("%08x", h.Sum32())
}

// Detect finds the VCS backend for a directory by walking up looking for
// .jj/ (priority) then .git.
func Detect(dir string, runner *command.Runner) (Backend, error) {
	current := dir
	for {
		if info, err := os.Stat(filepath.Join(current, ".jj")); err == nil && info.IsDir() {
			return KindJj.Backend(runner), nil
		}
		if _, err := os.Stat(filepath.Join(current, ".git")); err == nil {
			return KindGit.Backend(runner), nil
		}
		parent := filepath.Dir(current)
		if parent == current {
			break
		}
		current = parent
	}
	return nil, errors.NoRepo(dir)
}

// KindFileName is the marker file inside a dwm repo directory that records
// which VCS the repo uses.
const KindFileName = ".vcs-type"

// ReadKind reads the Kind from a dwm repo directory's .vcs-type file.
// Defaults to jj for backward compatibility if the file doesn't exist.
func ReadKind(repoDir string) (Kind, error) {
	path := filepath.Join(repoDir, KindFileName)
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return KindJj, nil
		}
		return "", fmt.Errorf("could not read %s: %w", path, err)
	}
	kind, err := ParseKind(strings.TrimSpace(string(data)))
	if err != nil {
		return "", fmt.Errorf("in %s: %w", path, err)
	}
	return kind, nil
}

// MainRepoFileName is the marker file inside a dwm repo directory that
// records the absolute path of the original repository checkout.
const MainRepoFileName = ".main-repo"

// WriteMarkers records the VCS kind and main repo path inside a dwm repo
// directory.
func WriteMarkers(repoDir string, kind Kind, mainRepoPath string) error {
	if err := os.WriteFile(filepath.Join(repoDir, KindFileName), []byte(string(kind)+"\n"), 0644); err != nil {
		return err
	}
	return os.WriteFile(filepath.Join(repoDir, MainRepoFileName), []byte(mainRepoPath+"\n"), 0644)
}

// ReadMainRepoPath reads the original repo checkout path from a dwm repo
// directory's .main-repo file.
func ReadMainRepoPath(repoDir string) (string, error) {
	data, err := os.ReadFile(filepath.Join(repoDir, MainRepoFileName))
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(string(data)), nil
}

// DetectFromRepoDir detects the VCS backend for a dwm repo directory by
// reading its .vcs-type file.
func DetectFromRepoDir(repoDir string, runner *command.Runner) (Backend, error) {
	kind, err := ReadKind(repoDir)
	if err != nil {
		return nil, err
	}
	return kind.Backend(runner), nil
}

// ParseDiffStat parses the full output of `jj diff --stat` or
// `git diff --stat`, extracting the summary line at the end.
func ParseDiffStat(output string) DiffStat {
	lines := strings.Split(strings.TrimRight(output, "\n"), "\n")
	if len(lines) == 0 {
		return DiffStat{}
	}
	if stat, ok := ParseDiffStatLine(lines[len(lines)-1]); ok {
		return stat
	}
	return DiffStat{}
}

// ParseDiffStatLine parses a single diff summary line such as
// "3 files changed, 10 insertions(+), 5 deletions(-)".
// The second result is false if the line does not look like a summary line.
func ParseDiffStatLine(line string) (DiffStat, bool) {
	line = strings.TrimSpace(line)
	if !strings.Contains(line, "file") {
		return DiffStat{}, false
	}
	var stat DiffStat

	for _, part := range strings.Split(line, ",") {
		tokens := strings.Fields(strings.TrimSpace(part))
		if len(tokens) < 2 {
			continue
		}
		n, err := strconv.Atoi(tokens[0])
		if err != nil {
			continue
		}
		switch {
		case strings.HasPrefix(tokens[1], "file"):
			stat.FilesChanged = n
		case strings.HasPrefix(tokens[1], "insertion"):
			stat.Insertions = n
		case strings.HasPrefix(tokens[1], "deletion"):
			stat.Deletions = n
		}
	}

	return stat, true
}
