package picker

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dwmtools/dwm/agent"
	"github.com/dwmtools/dwm/poll"
	"github.com/dwmtools/dwm/vcs"
	"github.com/dwmtools/dwm/workspace"
)

func entryAt(name string, modifiedAgo *time.Duration, insertions, deletions int) workspace.Entry {
	e := workspace.Entry{
		Name: name,
		Path: "/ws/" + name,
		DiffStat: vcs.DiffStat{
			FilesChanged: 1,
			Insertions:   insertions,
			Deletions:    deletions,
		},
	}
	if modifiedAgo != nil {
		t := time.Now().Add(-*modifiedAgo)
		e.LastModified = &t
	}
	return e
}

func ago(d time.Duration) *time.Duration { return &d }

func testModel(entries ...workspace.Entry) *Model {
	return newModel(entries, Deps{}, poll.NewMailbox[map[string]agent.Summary](),
		poll.NewMailbox[[]workspace.Entry](), false)
}

func visibleNames(m *Model) []string {
	var names []string
	for _, idx := range m.filteredIndices {
		names = append(names, m.entries[idx].Name)
	}
	return names
}

func TestNavigationWrapsBothEnds(t *testing.T) {
	m := testModel(
		entryAt("a", ago(time.Minute), 0, 0),
		entryAt("b", ago(2*time.Minute), 0, 0),
	)
	total := m.totalRows()
	require.Equal(t, 3, total, "two entries plus the create row")

	// previous() at 0 wraps to the last row.
	m.previous()
	assert.Equal(t, total-1, m.selected)

	// next() at the last row wraps to 0.
	m.next()
	assert.Equal(t, 0, m.selected)

	for i := 0; i < 2*total; i++ {
		m.next()
		assert.GreaterOrEqual(t, m.selected, 0)
		assert.Less(t, m.selected, total)
	}
}

func TestSortByNameCaseInsensitive(t *testing.T) {
	m := testModel(
		entryAt("Zeta", nil, 0, 0),
		entryAt("alpha", nil, 0, 0),
		entryAt("Beta", nil, 0, 0),
	)
	m.sortMode = SortName
	m.applySort()
	m.recomputeFilter()
	assert.Equal(t, []string{"alpha", "Beta", "Zeta"}, visibleNames(m))
}

func TestSortByRecencyMostRecentFirst(t *testing.T) {
	m := testModel(
		entryAt("cherry", ago(120*time.Second), 0, 0),
		entryAt("apple", ago(0), 0, 0),
		entryAt("banana", ago(60*time.Second), 0, 0),
	)
	assert.Equal(t, []string{"apple", "banana", "cherry"}, visibleNames(m))
}

func TestSortByRecencyNilTimesSortLast(t *testing.T) {
	m := testModel(
		entryAt("unknown1", nil, 0, 0),
		entryAt("recent", ago(time.Minute), 0, 0),
		entryAt("unknown2", nil, 0, 0),
		entryAt("older", ago(time.Hour), 0, 0),
	)
	names := visibleNames(m)
	assert.Equal(t, []string{"recent", "older"}, names[:2])
	assert.ElementsMatch(t, []string{"unknown1", "unknown2"}, names[2:])
}

func TestSortByDiffSizeLargestFirst(t *testing.T) {
	m := testModel(
		entryAt("small", nil, 1, 1),
		entryAt("big", nil, 100, 50),
		entryAt("mid", nil, 10, 5),
	)
	m.sortMode = SortDiffSize
	m.applySort()
	m.recomputeFilter()
	assert.Equal(t, []string{"big", "mid", "small"}, visibleNames(m))
}

func TestSortIsIdempotent(t *testing.T) {
	m := testModel(
		entryAt("b", ago(time.Minute), 3, 0),
		entryAt("a", ago(time.Hour), 3, 0),
		entryAt("c", nil, 3, 0),
	)
	for _, sm := range []SortMode{SortRecency, SortName, SortDiffSize} {
		m.sortMode = sm
		m.applySort()
		first := visibleNames(m)
		m.applySort()
		m.recomputeFilter()
		assert.Equal(t, first, visibleNames(m), "mode %s", sm.Label())
	}
}

func TestSortModeCycles(t *testing.T) {
	assert.Equal(t, SortName, SortRecency.Next())
	assert.Equal(t, SortDiffSize, SortName.Next())
	assert.Equal(t, SortRecency, SortDiffSize.Next())
}

func TestFilterMatchesNameDescriptionAndBookmarks(t *testing.T) {
	byName := workspace.Entry{Name: "feature-login"}
	byDesc := workspace.Entry{Name: "x", Description: "fix the Login flow"}
	byBookmark := workspace.Entry{Name: "y", Bookmarks: []string{"login-fix"}}
	miss := workspace.Entry{Name: "z", Description: "other", Bookmarks: []string{"misc"}}

	assert.True(t, matchesFilter(byName, "login"))
	assert.True(t, matchesFilter(byDesc, "login"))
	assert.True(t, matchesFilter(byBookmark, "LOGIN"))
	assert.False(t, matchesFilter(miss, "login"))
}

func TestFilterIsNarrowing(t *testing.T) {
	m := testModel(
		entryAt("apple", nil, 0, 0),
		entryAt("banana", nil, 0, 0),
		entryAt("cherry", nil, 0, 0),
	)
	full := append([]int(nil), m.filteredIndices...)

	m.filterBuf = "an"
	m.recomputeFilter()
	assert.Subset(t, full, m.filteredIndices)
	assert.Equal(t, []string{"banana"}, visibleNames(m))

	m.filterBuf = ""
	m.recomputeFilter()
	assert.Equal(t, full, m.filteredIndices)
}

func TestMergePreservesSelection(t *testing.T) {
	m := testModel(
		entryAt("a", ago(time.Minute), 0, 0),
		entryAt("b", ago(2*time.Minute), 0, 0),
		entryAt("c", ago(3*time.Minute), 0, 0),
	)
	m.selected = 1 // "b"

	m.mergeEntries([]workspace.Entry{
		entryAt("c", ago(3*time.Minute), 0, 0),
		entryAt("a", ago(time.Minute), 0, 0),
		entryAt("b", ago(2*time.Minute), 0, 0),
	})

	require.NotNil(t, m.selectedEntry())
	assert.Equal(t, "b", m.selectedEntry().Name)
}

func TestMergeResetsSelectionOnDisappearance(t *testing.T) {
	m := testModel(
		entryAt("a", ago(time.Minute), 0, 0),
		entryAt("b", ago(2*time.Minute), 0, 0),
	)
	m.selected = 1 // "b"

	m.mergeEntries([]workspace.Entry{entryAt("a", ago(time.Minute), 0, 0)})

	assert.Equal(t, 0, m.selected)
	require.NotNil(t, m.selectedEntry())
	assert.Equal(t, "a", m.selectedEntry().Name)
}

func TestMergeKeepsCursorOnCreateRow(t *testing.T) {
	m := testModel(entryAt("a", nil, 0, 0))
	m.selected = m.totalRows() - 1
	require.True(t, m.onCreateRow())

	m.mergeEntries([]workspace.Entry{
		entryAt("a", nil, 0, 0),
		entryAt("b", nil, 0, 0),
	})
	assert.True(t, m.onCreateRow())
}

func TestMergeRecomputesFilter(t *testing.T) {
	m := testModel(entryAt("banana", nil, 0, 0))
	m.filterBuf = "ban"
	m.recomputeFilter()

	m.mergeEntries([]workspace.Entry{
		entryAt("banana", nil, 0, 0),
		entryAt("bandit", nil, 0, 0),
		entryAt("cherry", nil, 0, 0),
	})
	assert.ElementsMatch(t, []string{"banana", "bandit"}, visibleNames(m))
}

func TestPatchAgentsInPlaceWithoutResort(t *testing.T) {
	m := testModel(
		entryAt("a", ago(time.Minute), 0, 0),
		entryAt("b", ago(2*time.Minute), 0, 0),
	)
	before := visibleNames(m)

	m.patchAgents(map[string]agent.Summary{"b": {Working: 2}})

	assert.Equal(t, before, visibleNames(m), "agent updates must not move rows")
	require.NotNil(t, m.entries[1].Agents)
	assert.Equal(t, agent.Summary{Working: 2}, *m.entries[1].Agents)
	assert.Nil(t, m.entries[0].Agents)

	// A workspace whose sessions all ended loses its badge.
	m.patchAgents(map[string]agent.Summary{})
	assert.Nil(t, m.entries[1].Agents)
}

func TestMultiRepoHasNoCreateRow(t *testing.T) {
	m := newModel([]workspace.Entry{
		{Name: "ws", RepoName: "repo1", Path: "/r1/ws"},
		{Name: "ws", RepoName: "repo2", Path: "/r2/ws"},
	}, Deps{}, poll.NewMailbox[map[string]agent.Summary](), poll.NewMailbox[[]workspace.Entry](), true)

	assert.Equal(t, 2, m.totalRows())
	assert.False(t, m.onCreateRow())
}

func TestMultiRepoEntryKeysAreRepoQualified(t *testing.T) {
	m := newModel([]workspace.Entry{
		{Name: "ws", RepoName: "repo1", Path: "/r1/ws"},
		{Name: "ws", RepoName: "repo2", Path: "/r2/ws"},
	}, Deps{}, poll.NewMailbox[map[string]agent.Summary](), poll.NewMailbox[[]workspace.Entry](), true)
	m.selected = 1
	selectedPath := m.selectedEntry().Path

	m.mergeEntries([]workspace.Entry{
		{Name: "ws", RepoName: "repo2", Path: "/r2/ws"},
		{Name: "ws", RepoName: "repo1", Path: "/r1/ws"},
	})
	assert.Equal(t, selectedPath, m.selectedEntry().Path)
}

func TestClampAfterFilterShrinksRows(t *testing.T) {
	m := testModel(
		entryAt("apple", nil, 0, 0),
		entryAt("banana", nil, 0, 0),
		entryAt("cherry", nil, 0, 0),
	)
	m.selected = 3 // create row

	m.filterBuf = "apple"
	m.recomputeFilter()
	assert.Less(t, m.selected, m.totalRows())
}
