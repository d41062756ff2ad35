// Package picker implements the interactive workspace picker: a modal
// terminal UI whose entry list is refreshed live by background pollers while
// the render loop stays responsive.
package picker

import (
	"sort"
	"strings"

	"github.com/charmbracelet/bubbles/help"

	"github.com/dwmtools/dwm/agent"
	"github.com/dwmtools/dwm/poll"
	"github.com/dwmtools/dwm/workspace"
)

// SortMode orders the entry list. Cyclic: Recency -> Name -> DiffSize.
type SortMode int

const (
	SortRecency SortMode = iota
	SortName
	SortDiffSize
)

// Next returns the following mode in the cycle.
func (s SortMode) Next() SortMode {
	switch s {
	case SortRecency:
		return SortName
	case SortName:
		return SortDiffSize
	default:
		return SortRecency
	}
}

// Label is the mode's display name in the footer.
func (s SortMode) Label() string {
	switch s {
	case SortRecency:
		return "recency"
	case SortName:
		return "name"
	default:
		return "diff size"
	}
}

// mode is the picker's interaction state. Exactly one is active; it decides
// how every key event is interpreted.
type mode int

const (
	modeBrowse mode = iota
	modeInputName
	modeFilter
	modeConfirmDelete
)

// Preview is the content of the preview pane for one entry.
type Preview struct {
	Log      string
	DiffStat string
}

// Result is what a picker session produced. A nil *Result means the user
// quit without choosing.
type Result struct {
	// Selected is the path of the chosen workspace, when non-empty.
	Selected string
	// Create requests a new workspace; CreateName is empty for auto-naming.
	Create     bool
	CreateName string
}

// Model is the picker state. It is mutated only from the UI goroutine;
// background pollers reach it exclusively through the mailboxes.
type Model struct {
	entries         []workspace.Entry
	filteredIndices []int
	selected        int

	mode          mode
	pendingDelete string
	inputBuf      string
	filterBuf     string
	sortMode      SortMode

	// multiRepo disables the create/delete surface and the synthetic row.
	multiRepo bool

	showPreview    bool
	previewLoading bool
	preview        Preview
	previewFor     string
	previewBox     *poll.Mailbox[Preview]

	agentBox *poll.Mailbox[map[string]agent.Summary]
	entryBox *poll.Mailbox[[]workspace.Entry]

	deps   Deps
	keys   KeyMap
	help   help.Model
	status string
	width  int
	height int

	result *Result
	err    error
}

// newModel builds a sorted, unfiltered model over an initial entry snapshot.
func newModel(entries []workspace.Entry, deps Deps, agentBox *poll.Mailbox[map[string]agent.Summary], entryBox *poll.Mailbox[[]workspace.Entry], multiRepo bool) *Model {
	m := &Model{
		entries:   entries,
		sortMode:  SortRecency,
		multiRepo: multiRepo,
		agentBox:  agentBox,
		entryBox:  entryBox,
		deps:      deps,
		keys:      DefaultKeyMap,
		help:      help.New(),
	}
	m.applySort()
	m.recomputeFilter()
	return m
}

// entryKey identifies an entry across refreshes; in multi-repo mode the same
// workspace name can appear under several repos.
func entryKey(e workspace.Entry) string {
	if e.RepoName != "" {
		return e.RepoName + "/" + e.Name
	}
	return e.Name
}

// totalRows counts the selectable rows: filtered entries plus the synthetic
// create row in single-repo mode.
func (m *Model) totalRows() int {
	if m.multiRepo {
		return len(m.filteredIndices)
	}
	return len(m.filteredIndices) + 1
}

// onCreateRow reports whether the cursor sits on the synthetic create row.
func (m *Model) onCreateRow() bool {
	return !m.multiRepo && m.selected == len(m.filteredIndices)
}

// selectedEntry returns the entry under the cursor, nil on the create row or
// when the filtered set is empty.
func (m *Model) selectedEntry() *workspace.Entry {
	if m.selected < len(m.filteredIndices) {
		return &m.entries[m.filteredIndices[m.selected]]
	}
	return nil
}

// next moves the cursor down one row, wrapping at the bottom.
func (m *Model) next() {
	if total := m.totalRows(); total > 0 {
		m.selected = (m.selected + 1) % total
	}
}

// previous moves the cursor up one row, wrapping at the top.
func (m *Model) previous() {
	if total := m.totalRows(); total > 0 {
		m.selected = (m.selected + total - 1) % total
	}
}

// applySort reorders entries by the active sort mode. All modes are stable
// so equal elements keep their relative order across repeated sorts.
func (m *Model) applySort() {
	sortEntries(m.entries, m.sortMode)
}

func sortEntries(entries []workspace.Entry, mode SortMode) {
	switch mode {
	case SortName:
		sort.SliceStable(entries, func(i, j int) bool {
			return strings.ToLower(entries[i].Name) < strings.ToLower(entries[j].Name)
		})
	case SortRecency:
		// Most recent first; entries with no known time sort last.
		sort.SliceStable(entries, func(i, j int) bool {
			a, b := entries[i].LastModified, entries[j].LastModified
			switch {
			case a != nil && b != nil:
				return a.After(*b)
			case a != nil:
				return true
			default:
				return false
			}
		})
	case SortDiffSize:
		sort.SliceStable(entries, func(i, j int) bool {
			return entries[i].DiffStat.Total() > entries[j].DiffStat.Total()
		})
	}
}

// matchesFilter is a case-insensitive substring match against name,
// description, or any bookmark.
func matchesFilter(e workspace.Entry, query string) bool {
	query = strings.ToLower(query)
	if strings.Contains(strings.ToLower(e.Name), query) ||
		strings.Contains(strings.ToLower(e.Description), query) {
		return true
	}
	for _, b := range e.Bookmarks {
		if strings.Contains(strings.ToLower(b), query) {
			return true
		}
	}
	return false
}

// recomputeFilter rebuilds filteredIndices against the current entry order
// and clamps the selection. An empty filter matches everything.
func (m *Model) recomputeFilter() {
	m.filteredIndices = m.filteredIndices[:0]
	for i, e := range m.entries {
		if m.filterBuf == "" || matchesFilter(e, m.filterBuf) {
			m.filteredIndices = append(m.filteredIndices, i)
		}
	}
	m.clampSelected()
}

func (m *Model) clampSelected() {
	if total := m.totalRows(); m.selected >= total {
		if total == 0 {
			m.selected = 0
		} else {
			m.selected = total - 1
		}
	}
}

// mergeEntries replaces the entry set with a live refresh without disturbing
// the user: re-sort, re-filter, then restore the selection by the previously
// selected entry's identity, falling back to row 0 when it is gone.
func (m *Model) mergeEntries(entries []workspace.Entry) {
	var selKey string
	onCreate := m.onCreateRow()
	if e := m.selectedEntry(); e != nil {
		selKey = entryKey(*e)
	}

	m.entries = entries
	m.applySort()
	m.recomputeFilter()

	if onCreate {
		m.selected = len(m.filteredIndices)
		return
	}
	m.selected = 0
	if selKey != "" {
		for pos, idx := range m.filteredIndices {
			if entryKey(m.entries[idx]) == selKey {
				m.selected = pos
				break
			}
		}
	}
	m.clampSelected()
}

// patchAgents updates the Agents field of matching entries in place. No
// re-sort: agent churn must not move rows under the cursor.
func (m *Model) patchAgents(summaries map[string]agent.Summary) {
	for i := range m.entries {
		if s, ok := summaries[entryKey(m.entries[i])]; ok {
			copied := s
			m.entries[i].Agents = &copied
		} else {
			m.entries[i].Agents = nil
		}
	}
}
