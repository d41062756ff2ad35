package picker

import (
	"os"
	"sync"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/dwmtools/dwm/agent"
	"github.com/dwmtools/dwm/poll"
	"github.com/dwmtools/dwm/tui"
	"github.com/dwmtools/dwm/workspace"
)

// Poll intervals. Agent summaries are cheap file scans and latency-sensitive;
// a full entry refresh may shell out per workspace and tolerates staleness.
const (
	agentPollInterval = 2 * time.Second
	entryPollInterval = 10 * time.Second
)

// Deps are the collaborator operations the picker drives. All of them are
// called off the UI goroutine except Delete, which runs in the foreground on
// user confirmation.
type Deps struct {
	// ListEntries produces a fresh entry snapshot. Used for the initial
	// paint, the background refresh poller, and the post-delete refresh.
	ListEntries func() ([]workspace.Entry, error)
	// ReadSummaries produces agent summaries keyed like the entries
	// (workspace name, or repo/name in multi-repo mode). Best-effort.
	ReadSummaries func() map[string]agent.Summary
	// Delete removes the named workspace. A true result means a redirect
	// path was already emitted and the picker must exit immediately.
	Delete func(name string) (bool, error)
	// PreviewLog and PreviewDiffStat build the preview pane content.
	// Best-effort, empty on failure.
	PreviewLog      func(e workspace.Entry, limit int) string
	PreviewDiffStat func(e workspace.Entry) string
}

// Run starts a single-repo picker session and blocks until the user decides.
// A nil result with a nil error means the user quit (or there was nothing to
// pick). Both pollers are joined before the terminal returns to normal mode,
// so no poller outlives the session.
func Run(deps Deps) (*Result, error) {
	return run(deps, false)
}

// RunAll starts the cross-repo variant: no create row, no deletion, entries
// carry their repo name.
func RunAll(deps Deps) (*Result, error) {
	return run(deps, true)
}

func run(deps Deps, multiRepo bool) (*Result, error) {
	entries, err := deps.ListEntries()
	if err != nil {
		return nil, err
	}
	if len(entries) == 0 {
		return nil, nil
	}

	tui.Initialize()

	stop := poll.NewStopSignal()
	var wg sync.WaitGroup

	agentBox := poll.NewMailbox[map[string]agent.Summary]()
	poll.Spawn(&wg, agentPollInterval, stop, agentBox, func() (map[string]agent.Summary, bool) {
		summaries := deps.ReadSummaries()
		return summaries, summaries != nil
	})

	entryBox := poll.NewMailbox[[]workspace.Entry]()
	poll.Spawn(&wg, entryPollInterval, stop, entryBox, func() ([]workspace.Entry, bool) {
		refreshed, err := deps.ListEntries()
		return refreshed, err == nil
	})

	m := newModel(entries, deps, agentBox, entryBox, multiRepo)

	// Render on stderr: stdout stays reserved for the path the shell
	// wrapper cds into. Bubble Tea restores the terminal on every exit
	// path, including panics and errors.
	p := tea.NewProgram(m, tea.WithAltScreen(), tea.WithOutput(os.Stderr))
	final, runErr := p.Run()

	stop.Stop()
	wg.Wait()

	if runErr != nil {
		return nil, runErr
	}
	fm := final.(*Model)
	if fm.err != nil {
		return nil, fm.err
	}
	return fm.result, nil
}
