package agent

import (
	"encoding/json"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/dwmtools/dwm/vcs"
)

// HookEvent is the JSON payload delivered on stdin by the agent runtime's
// hook mechanism.
type HookEvent struct {
	SessionID        string `json:"session_id"`
	HookEventName    string `json:"hook_event_name"`
	NotificationType string `json:"notification_type,omitempty"`
	Cwd              string `json:"cwd,omitempty"`
}

// HandleHook reads a hook event from r and updates the status file for the
// session. Events from directories outside any managed repo are ignored
// without error, so the hook can be installed globally.
func HandleHook(r io.Reader, baseDir string) error {
	data, err := io.ReadAll(r)
	if err != nil {
		return err
	}

	var event HookEvent
	if err := json.Unmarshal(data, &event); err != nil {
		return err
	}
	if event.SessionID == "" {
		return nil
	}

	cwd := event.Cwd
	if cwd == "" {
		if cwd, err = os.Getwd(); err != nil {
			return err
		}
	}

	repoDir, workspace, ok := resolveWorkspace(cwd, baseDir)
	if !ok {
		return nil
	}

	switch event.HookEventName {
	case "PreToolUse", "UserPromptSubmit":
		return WriteStatus(repoDir, event.SessionID, workspace, StatusWorking)
	case "Stop":
		return WriteStatus(repoDir, event.SessionID, workspace, StatusIdle)
	case "Notification":
		switch event.NotificationType {
		case "idle_prompt", "permission_prompt":
			return WriteStatus(repoDir, event.SessionID, workspace, StatusWaiting)
		}
		return nil
	case "SessionEnd":
		return RemoveStatus(repoDir, event.SessionID)
	default:
		return nil
	}
}

// resolveWorkspace maps a working directory to the repo it belongs to and
// the workspace name inside it. Two layouts are recognized: a managed
// workspace under <base>/<repo-dir>/<workspace>/..., and the main repo
// checkout itself (matched via the .main-repo marker).
func resolveWorkspace(cwd, baseDir string) (repoDir, workspace string, ok bool) {
	absBase, err := filepath.Abs(baseDir)
	if err != nil {
		return "", "", false
	}
	absCwd, err := filepath.Abs(cwd)
	if err != nil {
		return "", "", false
	}

	if rel, err := filepath.Rel(absBase, absCwd); err == nil && !strings.HasPrefix(rel, "..") && rel != "." {
		parts := strings.Split(rel, string(filepath.Separator))
		if len(parts) >= 2 {
			return filepath.Join(absBase, parts[0]), parts[1], true
		}
		return "", "", false
	}

	// Not under the base dir: walk up looking for a main repo that dwm
	// manages.
	dir := absCwd
	for {
		marker := filepath.Join(absBase, vcs.RepoDirName(dir), vcs.MainRepoFileName)
		if _, err := os.Stat(marker); err == nil {
			kind, err := vcs.ReadKind(filepath.Join(absBase, vcs.RepoDirName(dir)))
			if err != nil {
				return "", "", false
			}
			return filepath.Join(absBase, vcs.RepoDirName(dir)), mainWorkspaceName(kind), true
		}
		parent := filepath.Dir(dir)
		if parent == dir {
			return "", "", false
		}
		dir = parent
	}
}

func mainWorkspaceName(kind vcs.Kind) string {
	if kind == vcs.KindGit {
		return "main-worktree"
	}
	return "default"
}
