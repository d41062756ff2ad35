package workspace

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/dwmtools/dwm/agent"
)

var (
	styleProgress = lipgloss.NewStyle().Foreground(lipgloss.Color("6"))
	styleSuccess  = lipgloss.NewStyle().Foreground(lipgloss.Color("2"))
	styleHeader   = lipgloss.NewStyle().Bold(true).Faint(true)
	styleName     = lipgloss.NewStyle().Foreground(lipgloss.Color("6"))
	styleChange   = lipgloss.NewStyle().Foreground(lipgloss.Color("5"))
	styleBookmark = lipgloss.NewStyle().Foreground(lipgloss.Color("4"))
	styleTime     = lipgloss.NewStyle().Foreground(lipgloss.Color("3"))
	styleAdded    = lipgloss.NewStyle().Foreground(lipgloss.Color("2"))
	styleRemoved  = lipgloss.NewStyle().Foreground(lipgloss.Color("1"))
	styleWaiting  = lipgloss.NewStyle().Foreground(lipgloss.Color("3"))
	styleWorking  = lipgloss.NewStyle().Foreground(lipgloss.Color("2"))
	styleDim      = lipgloss.NewStyle().Faint(true)
)

// progressf prints a colored progress message to stderr; stdout stays
// reserved for paths consumed by the shell wrapper.
func progressf(format string, args ...interface{}) {
	fmt.Fprintln(os.Stderr, styleProgress.Render(fmt.Sprintf(format, args...)))
}

func successf(format string, args ...interface{}) {
	fmt.Fprintln(os.Stderr, styleSuccess.Render("✓ "+fmt.Sprintf(format, args...)))
}

// PrintStatus writes the non-interactive workspace status table to stderr.
func PrintStatus(entries []Entry) {
	WriteStatus(os.Stderr, entries)
}

// WriteStatus renders the status table to any writer. The agents column is
// shown only when at least one workspace has active sessions.
func WriteStatus(w io.Writer, entries []Entry) {
	const descW = 40
	nameW, bookmarkW, agentW := 4, 9, 0

	hasAgents := false
	for _, e := range entries {
		if n := len(displayName(e)); n > nameW {
			nameW = n
		}
		if n := len(strings.Join(e.Bookmarks, ", ")); n > bookmarkW {
			bookmarkW = n
		}
		if e.Agents != nil && !e.Agents.IsEmpty() {
			hasAgents = true
			if n := len(e.Agents.String()); n > agentW {
				agentW = n
			}
		}
	}
	if hasAgents && agentW < 6 {
		agentW = 6
	}

	const changeW = 8
	header := fmt.Sprintf("%-*s  %-*s  %-*s  %-*s  %-9s", nameW, "NAME", changeW, "CHANGE",
		descW, "DESCRIPTION", bookmarkW, "BOOKMARKS", "MODIFIED")
	if hasAgents {
		header += fmt.Sprintf("  %-*s", agentW, "AGENTS")
	}
	header += "  CHANGES"
	fmt.Fprintln(w, styleHeader.Render(header))

	for _, e := range entries {
		dim := e.IsStale
		cell := func(s string, style lipgloss.Style) string {
			if dim {
				return styleDim.Render(s)
			}
			return style.Render(s)
		}

		desc := firstLine(e.Description)
		if len(desc) > descW {
			desc = desc[:descW]
		}

		row := []string{
			cell(fmt.Sprintf("%-*s", nameW, displayName(e)), styleName),
			cell(fmt.Sprintf("%-*s", changeW, e.ChangeID), styleChange),
			cell(fmt.Sprintf("%-*s", descW, desc), lipgloss.NewStyle()),
			cell(fmt.Sprintf("%-*s", bookmarkW, strings.Join(e.Bookmarks, ", ")), styleBookmark),
			cell(fmt.Sprintf("%-9s", FormatTimeAgo(e.LastModified)), styleTime),
		}
		if hasAgents {
			row = append(row, agentCell(e, agentW, dim))
		}
		row = append(row, changesCell(e, dim))

		fmt.Fprintln(w, strings.Join(row, "  "))
	}
}

func displayName(e Entry) string {
	switch {
	case e.IsMain:
		return e.Name + " (main)"
	case e.IsStale:
		return e.Name + " [stale]"
	default:
		return e.Name
	}
}

func firstLine(s string) string {
	if i := strings.IndexByte(s, '\n'); i >= 0 {
		return s[:i]
	}
	return s
}

// ChangesSummary renders a diff stat as "+10 -5", "N files", or "clean".
func ChangesSummary(e Entry) string {
	stat := e.DiffStat
	if stat.IsZero() {
		return "clean"
	}
	var parts []string
	if stat.Insertions > 0 {
		parts = append(parts, fmt.Sprintf("+%d", stat.Insertions))
	}
	if stat.Deletions > 0 {
		parts = append(parts, fmt.Sprintf("-%d", stat.Deletions))
	}
	if len(parts) == 0 {
		return fmt.Sprintf("%d files", stat.FilesChanged)
	}
	return strings.Join(parts, " ")
}

func changesCell(e Entry, dim bool) string {
	text := ChangesSummary(e)
	switch {
	case dim:
		return styleDim.Render(text)
	case e.DiffStat.Deletions > e.DiffStat.Insertions:
		return styleRemoved.Render(text)
	case e.DiffStat.Insertions > 0:
		return styleAdded.Render(text)
	default:
		return styleDim.Render(text)
	}
}

func agentCell(e Entry, width int, dim bool) string {
	if e.Agents == nil || e.Agents.IsEmpty() {
		return fmt.Sprintf("%-*s", width, "")
	}
	text := fmt.Sprintf("%-*s", width, e.Agents.String())
	if dim {
		return styleDim.Render(text)
	}
	urgent, _ := e.Agents.MostUrgent()
	switch urgent {
	case agent.StatusWaiting:
		return styleWaiting.Render(text)
	case agent.StatusWorking:
		return styleWorking.Render(text)
	default:
		return styleDim.Render(text)
	}
}
