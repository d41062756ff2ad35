package workspace

import (
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dwmtools/dwm/agent"
	"github.com/dwmtools/dwm/command"
	"github.com/dwmtools/dwm/vcs"
)

// fakeBackend records calls and serves canned VCS data so manager logic can
// be tested without git or jj installed.
type fakeBackend struct {
	mu         sync.Mutex
	root       string
	workspaces []vcs.Workspace
	stats      map[string]vcs.DiffStat
	merged     map[string]bool

	addCalls    []string
	removeCalls []string
	renameCalls [][2]string
	removeErr   error
}

func newFakeBackend(root string) *fakeBackend {
	return &fakeBackend{
		root:   root,
		stats:  map[string]vcs.DiffStat{},
		merged: map[string]bool{},
	}
}

func (f *fakeBackend) Kind() vcs.Kind                  { return vcs.KindJj }
func (f *fakeBackend) MainWorkspaceName() string       { return "default" }
func (f *fakeBackend) RootFrom(string) (string, error) { return f.root, nil }

func (f *fakeBackend) WorkspaceList(string) ([]vcs.Workspace, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]vcs.Workspace(nil), f.workspaces...), nil
}

func (f *fakeBackend) WorkspaceAdd(repoDir, wsPath, name, at string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.addCalls = append(f.addCalls, name)
	return os.MkdirAll(wsPath, 0755)
}

func (f *fakeBackend) WorkspaceRemove(repoDir, name, wsPath string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.removeCalls = append(f.removeCalls, name)
	return f.removeErr
}

func (f *fakeBackend) WorkspaceRename(repoDir, oldPath, newPath, oldName, newName string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.renameCalls = append(f.renameCalls, [2]string{oldName, newName})
	return os.Rename(oldPath, newPath)
}

func (f *fakeBackend) DiffStatVsTrunk(repoDir, worktreeDir, wsName string) (vcs.DiffStat, error) {
	return f.stats[wsName], nil
}

func (f *fakeBackend) LatestDescription(repoDir, worktreeDir, wsName string) string { return "" }

func (f *fakeBackend) IsMergedIntoTrunk(repoDir, worktreeDir, wsName string) bool {
	return f.merged[wsName]
}

func (f *fakeBackend) PreviewLog(repoDir, worktreeDir, wsName string, limit int) string { return "" }
func (f *fakeBackend) PreviewDiffStat(repoDir, worktreeDir, wsName string) string       { return "" }

// setupRepo builds a fake main repo plus its dwm repo dir, and returns a
// manager rooted in the main repo.
func setupRepo(t *testing.T) (*Manager, *fakeBackend, string) {
	t.Helper()
	baseDir := t.TempDir()
	mainRepo := filepath.Join(t.TempDir(), "myrepo")
	require.NoError(t, os.MkdirAll(mainRepo, 0755))

	backend := newFakeBackend(mainRepo)
	repoDir := filepath.Join(baseDir, vcs.RepoDirName(mainRepo))
	require.NoError(t, os.MkdirAll(repoDir, 0755))
	require.NoError(t, vcs.WriteMarkers(repoDir, vcs.KindJj, mainRepo))

	return NewManagerWith(backend, mainRepo, baseDir), backend, repoDir
}

func TestNewCreatesWorkspace(t *testing.T) {
	m, backend, repoDir := setupRepo(t)

	path, err := m.New("feature", "", "")
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(repoDir, "feature"), path)
	assert.Equal(t, []string{"feature"}, backend.addCalls)
	assert.DirExists(t, path)
}

func TestNewRejectsDotPrefix(t *testing.T) {
	m, _, _ := setupRepo(t)
	_, err := m.New(".hidden", "", "")
	assert.Error(t, err)
}

func TestNewRejectsExisting(t *testing.T) {
	m, _, repoDir := setupRepo(t)
	require.NoError(t, os.MkdirAll(filepath.Join(repoDir, "taken"), 0755))

	_, err := m.New("taken", "", "")
	assert.Error(t, err)
}

func TestNewAutoGeneratesName(t *testing.T) {
	m, backend, _ := setupRepo(t)

	path, err := m.New("", "", "")
	require.NoError(t, err)
	assert.NotEmpty(t, filepath.Base(path))
	require.Len(t, backend.addCalls, 1)
	assert.Equal(t, filepath.Base(path), backend.addCalls[0])
}

func TestNewFromResolvesChangeID(t *testing.T) {
	m, backend, _ := setupRepo(t)
	backend.workspaces = []vcs.Workspace{
		{Name: "source", Info: vcs.WorkspaceInfo{ChangeID: "abc12345"}},
	}

	_, err := m.New("copy", "", "source")
	require.NoError(t, err)

	_, err = m.New("copy2", "", "missing")
	assert.Error(t, err)
}

func TestNewWritesMarkerFilesOnFirstUse(t *testing.T) {
	baseDir := t.TempDir()
	mainRepo := filepath.Join(t.TempDir(), "fresh")
	require.NoError(t, os.MkdirAll(mainRepo, 0755))
	m := NewManagerWith(newFakeBackend(mainRepo), mainRepo, baseDir)

	_, err := m.New("first", "", "")
	require.NoError(t, err)

	repoDir := filepath.Join(baseDir, vcs.RepoDirName(mainRepo))
	kind, err := vcs.ReadKind(repoDir)
	require.NoError(t, err)
	assert.Equal(t, vcs.KindJj, kind)
	path, err := vcs.ReadMainRepoPath(repoDir)
	require.NoError(t, err)
	assert.Equal(t, mainRepo, path)
}

func TestDeleteRemovesWorkspaceAndAgentStatuses(t *testing.T) {
	m, backend, repoDir := setupRepo(t)
	wsPath := filepath.Join(repoDir, "doomed")
	require.NoError(t, os.MkdirAll(wsPath, 0755))
	require.NoError(t, agent.WriteStatus(repoDir, "sess", "doomed", agent.StatusIdle))

	redirect, err := m.Delete("doomed", false)
	require.NoError(t, err)
	assert.Empty(t, redirect)
	assert.Equal(t, []string{"doomed"}, backend.removeCalls)
	assert.NoDirExists(t, wsPath)
	assert.Empty(t, agent.ReadSummaries(repoDir))
}

func TestDeleteRedirectsWhenCwdInside(t *testing.T) {
	m, backend, repoDir := setupRepo(t)
	wsPath := filepath.Join(repoDir, "current")
	require.NoError(t, os.MkdirAll(filepath.Join(wsPath, "src"), 0755))

	inside := NewManagerWith(backend, filepath.Join(wsPath, "src"), m.BaseDir())
	redirect, err := inside.Delete("current", false)
	require.NoError(t, err)
	assert.Equal(t, backend.root, redirect)
}

func TestDeleteInfersNameFromCwd(t *testing.T) {
	m, backend, repoDir := setupRepo(t)
	wsPath := filepath.Join(repoDir, "inferred")
	require.NoError(t, os.MkdirAll(wsPath, 0755))

	inside := NewManagerWith(backend, wsPath, m.BaseDir())
	redirect, err := inside.Delete("", false)
	require.NoError(t, err)
	assert.Equal(t, backend.root, redirect)
	assert.Equal(t, []string{"inferred"}, backend.removeCalls)
}

func TestDeleteUnknownWorkspace(t *testing.T) {
	m, _, _ := setupRepo(t)
	_, err := m.Delete("ghost", false)
	assert.Error(t, err)
}

func TestSwitchResolvesWorkspacePath(t *testing.T) {
	m, _, repoDir := setupRepo(t)
	wsPath := filepath.Join(repoDir, "target")
	require.NoError(t, os.MkdirAll(wsPath, 0755))

	path, err := m.Switch("target")
	require.NoError(t, err)
	assert.Equal(t, wsPath, path)
}

func TestSwitchMainResolvesToMainRepo(t *testing.T) {
	m, backend, _ := setupRepo(t)
	path, err := m.Switch("default")
	require.NoError(t, err)
	assert.Equal(t, backend.root, path)
}

func TestSwitchUnknownWorkspace(t *testing.T) {
	m, _, _ := setupRepo(t)
	_, err := m.Switch("ghost")
	assert.Error(t, err)
}

func TestRenameMovesWorkspace(t *testing.T) {
	m, backend, repoDir := setupRepo(t)
	require.NoError(t, os.MkdirAll(filepath.Join(repoDir, "old"), 0755))

	redirect, err := m.Rename("old", "new")
	require.NoError(t, err)
	assert.Empty(t, redirect)
	assert.Equal(t, [][2]string{{"old", "new"}}, backend.renameCalls)
	assert.DirExists(t, filepath.Join(repoDir, "new"))
	assert.NoDirExists(t, filepath.Join(repoDir, "old"))
}

func TestRenameRefusesMain(t *testing.T) {
	m, _, _ := setupRepo(t)
	_, err := m.Rename("default", "other")
	assert.Error(t, err)
}

func TestRenameRedirectsNestedCwd(t *testing.T) {
	m, backend, repoDir := setupRepo(t)
	oldPath := filepath.Join(repoDir, "old")
	require.NoError(t, os.MkdirAll(filepath.Join(oldPath, "src", "deep"), 0755))

	inside := NewManagerWith(backend, filepath.Join(oldPath, "src", "deep"), m.BaseDir())
	redirect, err := inside.Rename("old", "new")
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(repoDir, "new", "src", "deep"), redirect)
}

func TestRenameRejectsExistingTarget(t *testing.T) {
	m, _, repoDir := setupRepo(t)
	require.NoError(t, os.MkdirAll(filepath.Join(repoDir, "old"), 0755))
	require.NoError(t, os.MkdirAll(filepath.Join(repoDir, "new"), 0755))

	_, err := m.Rename("old", "new")
	assert.Error(t, err)
}

func TestListIncludesMainFirst(t *testing.T) {
	m, backend, repoDir := setupRepo(t)
	require.NoError(t, os.MkdirAll(filepath.Join(repoDir, "feature"), 0755))
	backend.workspaces = []vcs.Workspace{
		{Name: "default", Info: vcs.WorkspaceInfo{ChangeID: "aaaa1111", Description: "trunk work"}},
		{Name: "feature", Info: vcs.WorkspaceInfo{ChangeID: "bbbb2222", Description: "feature work",
			Bookmarks: []string{"feat"}}},
	}
	backend.stats["feature"] = vcs.DiffStat{FilesChanged: 2, Insertions: 10, Deletions: 3}

	entries, err := m.List()
	require.NoError(t, err)
	require.Len(t, entries, 2)

	assert.True(t, entries[0].IsMain)
	assert.Equal(t, "default", entries[0].Name)
	assert.Equal(t, backend.root, entries[0].Path)
	assert.False(t, entries[0].IsStale)

	assert.Equal(t, "feature", entries[1].Name)
	assert.Equal(t, "bbbb2222", entries[1].ChangeID)
	assert.Equal(t, []string{"feat"}, entries[1].Bookmarks)
	assert.Equal(t, 13, entries[1].DiffStat.Total())
}

func TestListSkipsDotDirectories(t *testing.T) {
	m, _, repoDir := setupRepo(t)
	require.NoError(t, os.MkdirAll(filepath.Join(repoDir, ".agent-status"), 0755))
	require.NoError(t, os.MkdirAll(filepath.Join(repoDir, "real"), 0755))

	entries, err := m.List()
	require.NoError(t, err)
	require.Len(t, entries, 2)
	assert.Equal(t, "real", entries[1].Name)
}

func TestListMarksMergedWorkspaceStale(t *testing.T) {
	m, backend, repoDir := setupRepo(t)
	require.NoError(t, os.MkdirAll(filepath.Join(repoDir, "done"), 0755))
	backend.workspaces = []vcs.Workspace{{Name: "done"}}
	backend.merged["done"] = true

	entries, err := m.List()
	require.NoError(t, err)
	require.Len(t, entries, 2)
	assert.True(t, entries[1].IsStale)
}

func TestListAttachesAgentSummaries(t *testing.T) {
	m, _, repoDir := setupRepo(t)
	require.NoError(t, os.MkdirAll(filepath.Join(repoDir, "busy"), 0755))
	require.NoError(t, agent.WriteStatus(repoDir, "s1", "busy", agent.StatusWorking))

	entries, err := m.List()
	require.NoError(t, err)
	require.Len(t, entries, 2)
	require.NotNil(t, entries[1].Agents)
	assert.Equal(t, agent.Summary{Working: 1}, *entries[1].Agents)
}

func TestListFromInsideBaseDir(t *testing.T) {
	m, backend, repoDir := setupRepo(t)
	wsPath := filepath.Join(repoDir, "ws")
	require.NoError(t, os.MkdirAll(wsPath, 0755))

	inside := NewManagerWith(backend, wsPath, m.BaseDir())
	entries, err := inside.List()
	require.NoError(t, err)
	require.Len(t, entries, 2)
	assert.Equal(t, backend.root, entries[0].Path)
}

func TestListAllPopulatesRepoName(t *testing.T) {
	m, _, repoDir := setupRepo(t)
	require.NoError(t, os.MkdirAll(filepath.Join(repoDir, "ws"), 0755))
	// A stray dir without markers must be skipped.
	require.NoError(t, os.MkdirAll(filepath.Join(m.BaseDir(), "not-a-repo"), 0755))

	entries, err := ListAll(m.BaseDir(), command.NewRunner())
	require.NoError(t, err)
	require.Len(t, entries, 2)
	for _, e := range entries {
		assert.Equal(t, "myrepo", e.RepoName)
	}
}

func TestListAllMissingBaseDir(t *testing.T) {
	entries, err := ListAll(filepath.Join(t.TempDir(), "nope"), command.NewRunner())
	require.NoError(t, err)
	assert.Empty(t, entries)
}

func TestIsInside(t *testing.T) {
	assert.True(t, isInside("/base/ws", "/base/ws"))
	assert.True(t, isInside("/base/ws/src", "/base/ws"))
	assert.False(t, isInside("/base/other", "/base/ws"))
	assert.False(t, isInside("/base", "/base/ws"))
}

func TestComputeIsStale(t *testing.T) {
	now := time.Now()
	recent := now.Add(-time.Hour)
	ancient := now.Add(-31 * 24 * time.Hour)

	assert.True(t, computeIsStale(true, &recent, now))
	assert.False(t, computeIsStale(false, &recent, now))
	assert.True(t, computeIsStale(false, &ancient, now))
	assert.False(t, computeIsStale(false, nil, now))
}
