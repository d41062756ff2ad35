// Package agent tracks automation sessions working inside dwm workspaces.
//
// Each session writes a small JSON status file under
// <repo>/.agent-status/<session>.json; readers aggregate those files into
// per-workspace summaries. The protocol is best-effort on the read side:
// unreadable or stale files are silently skipped.
package agent

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"
)

// StaleTimeout is how long before a status file is considered stale and
// ignored.
const StaleTimeout = 10 * time.Minute

// Status is the state of a single agent session.
type Status string

const (
	StatusWorking Status = "working"
	StatusIdle    Status = "idle"
	StatusWaiting Status = "waiting"
)

// StatusFile is the on-disk representation of a single agent's status file.
type StatusFile struct {
	Workspace string `json:"workspace"`
	Status    Status `json:"status"`
	UpdatedAt int64  `json:"updated_at"`
}

// Summary aggregates agent counts for a single workspace.
type Summary struct {
	Waiting int
	Working int
	Idle    int
}

// IsEmpty reports whether no sessions are tracked.
func (s Summary) IsEmpty() bool {
	return s.Waiting == 0 && s.Working == 0 && s.Idle == 0
}

// MostUrgent returns the most urgent status present, for color selection.
// The second result is false when the summary is empty.
func (s Summary) MostUrgent() (Status, bool) {
	switch {
	case s.Waiting > 0:
		return StatusWaiting, true
	case s.Working > 0:
		return StatusWorking, true
	case s.Idle > 0:
		return StatusIdle, true
	default:
		return "", false
	}
}

// String renders the summary as "1 waiting, 2 working".
func (s Summary) String() string {
	var parts []string
	if s.Waiting > 0 {
		parts = append(parts, fmt.Sprintf("%d waiting", s.Waiting))
	}
	if s.Working > 0 {
		parts = append(parts, fmt.Sprintf("%d working", s.Working))
	}
	if s.Idle > 0 {
		parts = append(parts, fmt.Sprintf("%d idle", s.Idle))
	}
	return strings.Join(parts, ", ")
}

// statusDir returns the .agent-status directory for a repo.
func statusDir(repoDir string) string {
	return filepath.Join(repoDir, ".agent-status")
}

// ReadSummaries reads all agent status files for a repo and returns
// per-workspace summaries. Stale entries are silently ignored; any read or
// parse error collapses to "no data".
func ReadSummaries(repoDir string) map[string]Summary {
	return readSummariesAt(repoDir, time.Now())
}

func readSummariesAt(repoDir string, now time.Time) map[string]Summary {
	result := make(map[string]Summary)

	entries, err := os.ReadDir(statusDir(repoDir))
	if err != nil {
		return result
	}

	for _, entry := range entries {
		if filepath.Ext(entry.Name()) != ".json" {
			continue
		}
		data, err := os.ReadFile(filepath.Join(statusDir(repoDir), entry.Name()))
		if err != nil {
			continue
		}
		var sf StatusFile
		if err := json.Unmarshal(data, &sf); err != nil {
			continue
		}

		updated := time.Unix(sf.UpdatedAt, 0)
		if now.Sub(updated) > StaleTimeout {
			continue
		}

		summary := result[sf.Workspace]
		switch sf.Status {
		case StatusWorking:
			summary.Working++
		case StatusIdle:
			summary.Idle++
		case StatusWaiting:
			summary.Waiting++
		default:
			continue
		}
		result[sf.Workspace] = summary
	}

	return result
}

// WriteStatus writes an agent status file for the given session. The write
// is atomic (temp file plus rename) so concurrent readers never observe a
// partial file.
func WriteStatus(repoDir, sessionID, workspace string, status Status) error {
	dir := statusDir(repoDir)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return err
	}

	sf := StatusFile{
		Workspace: workspace,
		Status:    status,
		UpdatedAt: time.Now().Unix(),
	}
	data, err := json.Marshal(sf)
	if err != nil {
		return err
	}

	finalPath := filepath.Join(dir, sessionID+".json")
	tmpPath := filepath.Join(dir, ".tmp-"+sessionID+".json")
	if err := os.WriteFile(tmpPath, data, 0644); err != nil {
		return err
	}
	return os.Rename(tmpPath, finalPath)
}

// RemoveStatus removes the agent status file for the given session.
func RemoveStatus(repoDir, sessionID string) error {
	path := filepath.Join(statusDir(repoDir), sessionID+".json")
	if err := os.Remove(path); err != nil && !os.IsNotExist(err) {
		return err
	}
	return nil
}

// RemoveStatusesForWorkspace removes all agent status files for a given
// workspace name. Used when a workspace is deleted.
func RemoveStatusesForWorkspace(repoDir, workspace string) {
	entries, err := os.ReadDir(statusDir(repoDir))
	if err != nil {
		return
	}

	for _, entry := range entries {
		if filepath.Ext(entry.Name()) != ".json" {
			continue
		}
		path := filepath.Join(statusDir(repoDir), entry.Name())
		data, err := os.ReadFile(path)
		if err != nil {
			continue
		}
		var sf StatusFile
		if err := json.Unmarshal(data, &sf); err != nil {
			continue
		}
		if sf.Workspace == workspace {
			_ = os.Remove(path)
		}
	}
}
