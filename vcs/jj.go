package vcs

import (
	"fmt"
	"os"
	"strings"

	"github.com/dwmtools/dwm/command"
)

// workspaceListTemplate extracts one NUL-delimited record per workspace:
// name, short change id, description, comma-joined bookmark names.
const workspaceListTemplate = `name ++ "\0" ++ self.working_copy_commit().change_id().shortest(8) ++ "\0"` +
	` ++ self.working_copy_commit().description() ++ "\0"` +
	` ++ self.working_copy_commit().bookmarks().map(|b| b.name()).join(",") ++ "\0\n"`

// JjBackend implements Backend on top of jj workspaces.
type JjBackend struct {
	runner *command.Runner
}

// NewJjBackend creates a jj backend using the given runner.
func NewJjBackend(runner *command.Runner) *JjBackend {
	return &JjBackend{runner: runner}
}

func (j *JjBackend) jj(dir string, args ...string) (string, error) {
	return j.runner.RunIn(dir, "jj", args...)
}

// Kind returns KindJj.
func (j *JjBackend) Kind() Kind { return KindJj }

// MainWorkspaceName returns jj's name for the workspace in the original repo
// directory.
func (j *JjBackend) MainWorkspaceName() string { return "default" }

// RootFrom returns the workspace root for any directory inside it.
func (j *JjBackend) RootFrom(dir string) (string, error) {
	out, err := j.jj(dir, "root")
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(out), nil
}

// WorkspaceList lists all workspaces known to the repo.
func (j *JjBackend) WorkspaceList(repoDir string) ([]Workspace, error) {
	out, err := j.jj(repoDir, "workspace", "list", "-T", workspaceListTemplate)
	if err != nil {
		return nil, err
	}
	return parseWorkspaceInfo(out), nil
}

// parseWorkspaceInfo parses the NUL-delimited workspace list template output.
func parseWorkspaceInfo(output string) []Workspace {
	var results []Workspace
	for _, record := range strings.Split(output, "\x00\n") {
		record = strings.Trim(record, "\n")
		if record == "" {
			continue
		}
		fields := strings.Split(record, "\x00")
		if len(fields) < 4 {
			continue
		}
		var bookmarks []string
		for _, b := range strings.Split(fields[3], ",") {
			if b = strings.TrimSpace(b); b != "" {
				bookmarks = append(bookmarks, b)
			}
		}
		results = append(results, Workspace{
			Name: fields[0],
			Info: WorkspaceInfo{
				ChangeID:    fields[1],
				Description: fields[2],
				Bookmarks:   bookmarks,
			},
		})
	}
	return results
}

// WorkspaceAdd creates a workspace at wsPath, optionally starting from the
// given revision.
func (j *JjBackend) WorkspaceAdd(repoDir, wsPath, name, at string) error {
	args := []string{"workspace", "add", "--name", name}
	if at != "" {
		args = append(args, "--revision", at)
	}
	args = append(args, wsPath)
	_, err := j.jj(repoDir, args...)
	return err
}

// WorkspaceRemove forgets the workspace; directory removal is the caller's
// job.
func (j *JjBackend) WorkspaceRemove(repoDir, name, wsPath string) error {
	_, err := j.jj(repoDir, "workspace", "forget", name)
	return err
}

// WorkspaceRename forgets the old workspace, moves the directory, and re-adds
// it under the new name at the same change. jj has no native workspace
// rename.
func (j *JjBackend) WorkspaceRename(repoDir, oldPath, newPath, oldName, newName string) error {
	changeID := ""
	if workspaces, err := j.WorkspaceList(repoDir); err == nil {
		for _, ws := range workspaces {
			if ws.Name == oldName {
				changeID = ws.Info.ChangeID
				break
			}
		}
	}

	if _, err := j.jj(repoDir, "workspace", "forget", oldName); err != nil {
		return err
	}
	if err := os.Rename(oldPath, newPath); err != nil {
		return err
	}
	return j.WorkspaceAdd(repoDir, newPath, newName, changeID)
}

// DiffStatVsTrunk returns the summary diff stat between trunk() and the
// workspace's working-copy commit. Failures collapse to a zero stat.
func (j *JjBackend) DiffStatVsTrunk(repoDir, worktreeDir, wsName string) (DiffStat, error) {
	out, err := j.jj(repoDir, "diff", "--stat", "--from", "trunk()", "--to", wsName+"@")
	if err != nil {
		return DiffStat{}, nil
	}
	return ParseDiffStat(out), nil
}

// LatestDescription finds the latest ancestor of <wsName>@ that has a
// non-empty description.
func (j *JjBackend) LatestDescription(repoDir, worktreeDir, wsName string) string {
	revset := fmt.Sprintf(`latest(ancestors(%s@) & description(glob:"?*"))`, wsName)
	out, err := j.jj(repoDir, "log", "--no-graph", "-r", revset, "-T", "description", "--limit", "1")
	if err != nil {
		return ""
	}
	return strings.TrimSpace(out)
}

// IsMergedIntoTrunk reports whether the workspace's working-copy commit is
// already an ancestor of trunk.
func (j *JjBackend) IsMergedIntoTrunk(repoDir, worktreeDir, wsName string) bool {
	revset := fmt.Sprintf("%s@ ~ ::trunk()", wsName)
	out, err := j.jj(repoDir, "log", "--no-graph", "-r", revset, "-T", `"."`)
	if err != nil {
		return false
	}
	return strings.TrimSpace(out) == ""
}

// PreviewLog returns a log excerpt of the workspace's ancestry.
func (j *JjBackend) PreviewLog(repoDir, worktreeDir, wsName string, limit int) string {
	out, err := j.jj(repoDir, "log", "--no-graph", "--limit", fmt.Sprintf("%d", limit),
		"-r", fmt.Sprintf("ancestors(%s@)", wsName),
		"-T", `change_id.shortest(8) ++ " " ++ description.first_line() ++ "\n"`)
	if err != nil {
		return ""
	}
	return out
}

// PreviewDiffStat returns the per-file diff summary against trunk().
func (j *JjBackend) PreviewDiffStat(repoDir, worktreeDir, wsName string) string {
	out, err := j.jj(repoDir, "diff", "--stat", "--from", "trunk()", "--to", wsName+"@")
	if err != nil {
		return ""
	}
	return out
}
