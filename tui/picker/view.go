package picker

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/dwmtools/dwm/agent"
	"github.com/dwmtools/dwm/workspace"
)

var (
	styleTitle     = lipgloss.NewStyle().Bold(true)
	styleCursorRow = lipgloss.NewStyle().Reverse(true)
	styleStaleRow  = lipgloss.NewStyle().Faint(true)
	styleCreateRow = lipgloss.NewStyle().Foreground(lipgloss.Color("2")).Italic(true)
	styleFooter    = lipgloss.NewStyle().Faint(true)
	styleStatus    = lipgloss.NewStyle().Foreground(lipgloss.Color("2"))
	stylePrompt    = lipgloss.NewStyle().Foreground(lipgloss.Color("3")).Bold(true)
	styleAgentWait = lipgloss.NewStyle().Foreground(lipgloss.Color("3"))
	styleAgentWork = lipgloss.NewStyle().Foreground(lipgloss.Color("2"))
	stylePreview   = lipgloss.NewStyle().Border(lipgloss.RoundedBorder()).Padding(0, 1)
)

// View renders one frame from current model state.
func (m *Model) View() string {
	var b strings.Builder

	title := "workspaces"
	if m.multiRepo {
		title = "workspaces (all repos)"
	}
	b.WriteString(styleTitle.Render(title))
	b.WriteString("\n\n")

	list := m.renderList()
	if m.showPreview {
		list = lipgloss.JoinHorizontal(lipgloss.Top, list, "  ", m.renderPreview())
	}
	b.WriteString(list)
	b.WriteString("\n\n")
	b.WriteString(m.renderFooter())
	return b.String()
}

func (m *Model) renderList() string {
	var rows []string
	for pos, idx := range m.filteredIndices {
		rows = append(rows, m.renderRow(m.entries[idx], pos == m.selected))
	}
	if !m.multiRepo {
		label := "+ create new workspace"
		if m.mode == modeInputName {
			label = "+ create: " + m.inputBuf + "█"
		}
		if m.onCreateRow() {
			rows = append(rows, styleCursorRow.Render("> "+label))
		} else {
			rows = append(rows, styleCreateRow.Render("  "+label))
		}
	}
	if len(rows) == 0 {
		return styleFooter.Render("  no matching workspaces")
	}
	return strings.Join(rows, "\n")
}

func (m *Model) renderRow(e workspace.Entry, cursor bool) string {
	name := e.Name
	if e.RepoName != "" {
		name = e.RepoName + "/" + e.Name
	}
	switch {
	case e.IsMain:
		name += " (main)"
	case e.IsStale:
		name += " [stale]"
	}

	cols := []string{
		fmt.Sprintf("%-28s", truncate(name, 28)),
		fmt.Sprintf("%-8s", e.ChangeID),
		fmt.Sprintf("%-36s", truncate(firstLine(e.Description), 36)),
		fmt.Sprintf("%-9s", workspace.FormatTimeAgo(e.LastModified)),
		fmt.Sprintf("%-9s", workspace.ChangesSummary(e)),
	}
	line := strings.Join(cols, "  ")
	if badge := agentBadge(e.Agents); badge != "" {
		line += "  " + badge
	}

	if cursor {
		return styleCursorRow.Render("> " + line)
	}
	if e.IsStale {
		return styleStaleRow.Render("  " + line)
	}
	return "  " + line
}

func agentBadge(s *agent.Summary) string {
	if s == nil || s.IsEmpty() {
		return ""
	}
	text := s.String()
	urgent, _ := s.MostUrgent()
	switch urgent {
	case agent.StatusWaiting:
		return styleAgentWait.Render(text)
	case agent.StatusWorking:
		return styleAgentWork.Render(text)
	default:
		return styleFooter.Render(text)
	}
}

func (m *Model) renderPreview() string {
	var content string
	switch {
	case m.previewLoading:
		content = "loading..."
	case m.preview.Log == "" && m.preview.DiffStat == "":
		content = ""
	default:
		content = strings.TrimRight(m.preview.Log, "\n")
		if m.preview.DiffStat != "" {
			content += "\n\n" + strings.TrimRight(m.preview.DiffStat, "\n")
		}
	}
	width := 48
	if m.width > 0 && m.width/2-4 < width {
		width = m.width/2 - 4
	}
	if width < 20 {
		width = 20
	}
	return stylePreview.Width(width).Render(content)
}

func (m *Model) renderFooter() string {
	switch m.mode {
	case modeFilter:
		return stylePrompt.Render("filter: ") + m.filterBuf + "█"
	case modeConfirmDelete:
		return stylePrompt.Render(fmt.Sprintf("delete workspace '%s'? [y/n]", m.pendingDelete))
	case modeInputName:
		return styleFooter.Render("enter: create  esc: cancel")
	}

	var parts []string
	if m.status != "" {
		parts = append(parts, styleStatus.Render(m.status))
	}
	if m.filterBuf != "" {
		parts = append(parts, fmt.Sprintf("filter: %s", m.filterBuf))
	}
	parts = append(parts, fmt.Sprintf("sort: %s", m.sortMode.Label()))
	line := styleFooter.Render(strings.Join(parts, "  |  "))
	return line + "\n" + m.help.View(m.keys)
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	if n <= 1 {
		return s[:n]
	}
	return s[:n-1] + "…"
}

func firstLine(s string) string {
	if i := strings.IndexByte(s, '\n'); i >= 0 {
		return s[:i]
	}
	return s
}
