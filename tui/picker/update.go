package picker

import (
	"fmt"
	"time"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/dwmtools/dwm/poll"
)

// tickInterval bounds how long the loop waits for input before draining the
// mailboxes again, so live refreshes land even when no key is pressed.
const tickInterval = 100 * time.Millisecond

// previewLogLimit is how many log lines the preview pane requests.
const previewLogLimit = 10

type tickMsg time.Time

func tick() tea.Cmd {
	return tea.Tick(tickInterval, func(t time.Time) tea.Msg { return tickMsg(t) })
}

// Init schedules the first drain tick.
func (m *Model) Init() tea.Cmd {
	return tick()
}

// Update drives the event loop: drain mailboxes on every tick, dispatch keys
// by the active mode.
func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.help.Width = msg.Width
		return m, nil

	case tickMsg:
		m.drainMailboxes()
		return m, tick()

	case tea.KeyMsg:
		return m.handleKey(msg)
	}
	return m, nil
}

// drainMailboxes folds any pending poller output into the model. Agent
// summaries are patched in place with no re-sort; a full entry snapshot goes
// through the merge algorithm.
func (m *Model) drainMailboxes() {
	if m.agentBox != nil {
		if summaries, ok := m.agentBox.Take(); ok {
			m.patchAgents(summaries)
		}
	}
	if m.entryBox != nil {
		if entries, ok := m.entryBox.Take(); ok {
			m.mergeEntries(entries)
			m.refreshPreview()
		}
	}
	if m.previewBox != nil {
		if preview, ok := m.previewBox.Take(); ok {
			m.preview = preview
			m.previewLoading = false
			m.previewBox = nil
		}
	}
}

func (m *Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch m.mode {
	case modeBrowse:
		return m.browseKey(msg)
	case modeInputName:
		return m.inputNameKey(msg)
	case modeFilter:
		return m.filterKey(msg)
	case modeConfirmDelete:
		return m.confirmDeleteKey(msg)
	}
	return m, nil
}

func (m *Model) browseKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	// On the create row every printable character begins name entry, even
	// ones that are Browse shortcuts elsewhere in the list.
	if m.onCreateRow() && msg.Type == tea.KeyRunes && !msg.Alt {
		m.mode = modeInputName
		m.inputBuf = string(msg.Runes)
		return m, nil
	}

	switch {
	case key.Matches(msg, m.keys.Quit):
		return m, tea.Quit

	case key.Matches(msg, m.keys.Down):
		m.next()
		m.refreshPreview()

	case key.Matches(msg, m.keys.Up):
		m.previous()
		m.refreshPreview()

	case key.Matches(msg, m.keys.Sort):
		m.sortMode = m.sortMode.Next()
		m.applySort()
		m.recomputeFilter()
		m.selected = 0
		m.refreshPreview()

	case key.Matches(msg, m.keys.Filter):
		m.mode = modeFilter

	case key.Matches(msg, m.keys.Preview):
		m.showPreview = !m.showPreview
		if m.showPreview {
			m.refreshPreview()
		} else {
			m.previewFor = ""
			m.previewBox = nil
			m.previewLoading = false
		}

	case key.Matches(msg, m.keys.Delete):
		if m.multiRepo {
			break
		}
		if e := m.selectedEntry(); e != nil && !e.IsMain {
			m.pendingDelete = e.Name
			m.mode = modeConfirmDelete
		}

	case key.Matches(msg, m.keys.Select):
		if m.onCreateRow() {
			m.result = &Result{Create: true}
			return m, tea.Quit
		}
		if e := m.selectedEntry(); e != nil {
			m.result = &Result{Selected: e.Path}
			return m, tea.Quit
		}
	}
	return m, nil
}

func (m *Model) inputNameKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.Type {
	case tea.KeyEsc:
		m.mode = modeBrowse
		m.inputBuf = ""
	case tea.KeyEnter:
		name := m.inputBuf
		if isBlank(name) {
			name = ""
		}
		m.result = &Result{Create: true, CreateName: name}
		return m, tea.Quit
	case tea.KeyBackspace:
		if m.inputBuf != "" {
			m.inputBuf = m.inputBuf[:len(m.inputBuf)-1]
		}
		if m.inputBuf == "" {
			m.mode = modeBrowse
		}
	case tea.KeyRunes:
		m.inputBuf += string(msg.Runes)
	case tea.KeySpace:
		m.inputBuf += " "
	}
	return m, nil
}

func (m *Model) filterKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.Type {
	case tea.KeyEsc:
		m.filterBuf = ""
		m.recomputeFilter()
		m.mode = modeBrowse
		m.refreshPreview()
	case tea.KeyEnter:
		// The filter stays applied; only editing stops.
		m.mode = modeBrowse
	case tea.KeyBackspace:
		if m.filterBuf != "" {
			m.filterBuf = m.filterBuf[:len(m.filterBuf)-1]
		}
		m.recomputeFilter()
		m.refreshPreview()
	case tea.KeyRunes:
		m.filterBuf += string(msg.Runes)
		m.recomputeFilter()
		m.refreshPreview()
	case tea.KeySpace:
		m.filterBuf += " "
		m.recomputeFilter()
		m.refreshPreview()
	}
	return m, nil
}

func (m *Model) confirmDeleteKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case msg.Type == tea.KeyRunes && string(msg.Runes) == "y":
		name := m.pendingDelete
		m.pendingDelete = ""
		m.mode = modeBrowse
		return m.performDelete(name)
	case msg.Type == tea.KeyEsc,
		msg.Type == tea.KeyRunes && string(msg.Runes) == "n":
		m.pendingDelete = ""
		m.mode = modeBrowse
	}
	return m, nil
}

// performDelete runs the delete collaborator in the foreground: the user is
// actively waiting, so failures propagate instead of being swallowed. A
// redirect means the workspace under the caller's cwd is gone and the picker
// must exit so the shell can cd away.
func (m *Model) performDelete(name string) (tea.Model, tea.Cmd) {
	redirect, err := m.deps.Delete(name)
	if err != nil {
		m.err = err
		return m, tea.Quit
	}
	if redirect {
		return m, tea.Quit
	}

	m.status = fmt.Sprintf("deleted '%s'", name)
	if entries, err := m.deps.ListEntries(); err == nil {
		m.mergeEntries(entries)
	}
	m.refreshPreview()
	return m, nil
}

// refreshPreview triggers a one-shot background fetch when the preview pane
// is visible and the highlighted entry changed. A superseded fetch keeps
// running but posts into a mailbox that is no longer read.
func (m *Model) refreshPreview() {
	if !m.showPreview {
		return
	}
	e := m.selectedEntry()
	if e == nil {
		m.previewFor = ""
		m.preview = Preview{}
		m.previewLoading = false
		m.previewBox = nil
		return
	}
	k := entryKey(*e)
	if k == m.previewFor {
		return
	}
	m.previewFor = k
	m.previewLoading = true
	entry := *e
	deps := m.deps
	m.previewBox = poll.Fetch(func() Preview {
		return Preview{
			Log:      deps.PreviewLog(entry, previewLogLimit),
			DiffStat: deps.PreviewDiffStat(entry),
		}
	})
}

func isBlank(s string) bool {
	for _, r := range s {
		if r != ' ' && r != '\t' {
			return false
		}
	}
	return true
}
