// Package workspace implements the on-disk workspace layout under the dwm
// base directory and the lifecycle operations on it: create, delete, switch,
// rename, list, and the non-interactive status table.
package workspace

import (
	"fmt"
	"time"

	"github.com/dwmtools/dwm/agent"
	"github.com/dwmtools/dwm/vcs"
)

// staleDays is the inactivity threshold after which a workspace is shown as
// stale.
const staleDays = 30

// Entry is all data needed to display a single workspace row in the picker
// or status output. Entries are value data: produced wholesale by List /
// ListAll, never mutated in place except for the Agents field.
type Entry struct {
	Name         string
	Path         string
	LastModified *time.Time
	DiffStat     vcs.DiffStat
	IsMain       bool
	ChangeID     string
	Description  string
	Bookmarks    []string
	IsStale      bool
	// RepoName is set only in cross-repo listings.
	RepoName     string
	MainRepoPath string
	Vcs          vcs.Kind
	Agents       *agent.Summary
}

// computeIsStale reports whether a non-main workspace should be shown as
// stale: merged into trunk, or inactive longer than the threshold.
func computeIsStale(merged bool, lastModified *time.Time, now time.Time) bool {
	if merged {
		return true
	}
	if lastModified != nil {
		return now.Sub(*lastModified) > staleDays*24*time.Hour
	}
	return false
}

// FormatTimeAgo renders a modification time as a relative age such as
// "5m ago" or "2mo ago". Returns "unknown" for a nil time.
func FormatTimeAgo(t *time.Time) string {
	return formatTimeAgoAt(t, time.Now())
}

func formatTimeAgoAt(t *time.Time, now time.Time) string {
	if t == nil {
		return "unknown"
	}
	elapsed := now.Sub(*t)
	if elapsed < 0 {
		return "unknown"
	}
	secs := int64(elapsed.Seconds())
	if secs < 60 {
		return "just now"
	}
	mins := secs / 60
	if mins < 60 {
		return fmt.Sprintf("%dm ago", mins)
	}
	hours := mins / 60
	if hours < 24 {
		return fmt.Sprintf("%dh ago", hours)
	}
	days := hours / 24
	if days < 30 {
		return fmt.Sprintf("%dd ago", days)
	}
	return fmt.Sprintf("%dmo ago", days/30)
}
