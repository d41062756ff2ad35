package workspace

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/dwmtools/dwm/agent"
	"github.com/dwmtools/dwm/command"
	"github.com/dwmtools/dwm/errors"
	"github.com/dwmtools/dwm/logging"
	"github.com/dwmtools/dwm/vcs"
)

// Manager performs workspace lifecycle operations for one repository. The
// backend, working directory, and base directory are injected so tests can
// run against a fake backend and a temp dir.
type Manager struct {
	backend vcs.Backend
	cwd     string
	baseDir string
	log     *logrus.Entry
}

// NewManager builds a Manager for the repository containing cwd. When cwd is
// already inside the dwm base directory the backend is resolved from the
// repo's .vcs-type marker; otherwise it is detected from cwd.
func NewManager(cwd, baseDir string, runner *command.Runner) (*Manager, error) {
	var backend vcs.Backend
	var err error
	if repoName, ok := repoNameFromBasePath(cwd, baseDir); ok {
		backend, err = vcs.DetectFromRepoDir(filepath.Join(baseDir, repoName), runner)
	} else {
		backend, err = vcs.Detect(cwd, runner)
	}
	if err != nil {
		return nil, err
	}
	return NewManagerWith(backend, cwd, baseDir), nil
}

// NewManagerWith builds a Manager around an explicit backend.
func NewManagerWith(backend vcs.Backend, cwd, baseDir string) *Manager {
	return &Manager{
		backend: backend,
		cwd:     cwd,
		baseDir: baseDir,
		log:     logging.NewLogger("workspace", logging.Options{BaseDir: baseDir}),
	}
}

// Backend returns the VCS backend the manager operates through.
func (m *Manager) Backend() vcs.Backend { return m.backend }

// BaseDir returns the dwm base directory.
func (m *Manager) BaseDir() string { return m.baseDir }

// repoNameFromBasePath extracts the repo directory name when cwd lies under
// the base directory, e.g. <base>/<repo>/<workspace>/... -> <repo>.
func repoNameFromBasePath(cwd, baseDir string) (string, bool) {
	rel, err := filepath.Rel(baseDir, cwd)
	if err != nil || rel == "." || strings.HasPrefix(rel, "..") {
		return "", false
	}
	parts := strings.Split(rel, string(filepath.Separator))
	if len(parts) == 0 || parts[0] == "" {
		return "", false
	}
	return parts[0], true
}

// repoName resolves the dwm repo directory name for the manager's cwd.
func (m *Manager) repoName() (string, error) {
	if name, ok := repoNameFromBasePath(m.cwd, m.baseDir); ok {
		return name, nil
	}
	return vcs.RepoNameFrom(m.backend, m.cwd)
}

// RepoDir returns the per-repo storage directory for the manager's cwd.
func (m *Manager) RepoDir() (string, error) {
	name, err := m.repoName()
	if err != nil {
		return "", err
	}
	return filepath.Join(m.baseDir, name), nil
}

// mainRepoPath reads the original checkout path for a repo name.
func (m *Manager) mainRepoPath(repoName string) (string, error) {
	path, err := vcs.ReadMainRepoPath(filepath.Join(m.baseDir, repoName))
	if err != nil {
		return "", errors.Wrap(err, errors.ErrCodeInternal,
			fmt.Sprintf("could not read main repo path for '%s'", repoName))
	}
	return path, nil
}

// ensureRepoDir creates the per-repo storage directory and its marker files
// on first use.
func (m *Manager) ensureRepoDir(repoName, mainRepoRoot string) (string, error) {
	dir := filepath.Join(m.baseDir, repoName)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return "", err
	}
	if _, err := os.Stat(filepath.Join(dir, vcs.MainRepoFileName)); os.IsNotExist(err) {
		if err := vcs.WriteMarkers(dir, m.backend.Kind(), mainRepoRoot); err != nil {
			return "", err
		}
	}
	return dir, nil
}

// New creates a workspace and returns its path, which the caller prints to
// stdout for the shell wrapper to cd into. An empty name auto-generates one;
// at pins the starting revision; from names an existing workspace whose
// current change becomes the starting revision.
func (m *Manager) New(name, at, from string) (string, error) {
	repoName, err := m.repoName()
	if err != nil {
		return "", err
	}
	root, err := m.backend.RootFrom(m.cwd)
	if err != nil {
		return "", err
	}
	dir, err := m.ensureRepoDir(repoName, root)
	if err != nil {
		return "", err
	}

	if from != "" {
		workspaces, err := m.backend.WorkspaceList(root)
		if err != nil {
			return "", err
		}
		at = ""
		for _, ws := range workspaces {
			if ws.Name == from {
				at = ws.Info.ChangeID
				break
			}
		}
		if at == "" {
			return "", errors.WorkspaceNotFound(from, dir)
		}
	}

	if name == "" {
		name = GenerateUnique(dir)
	} else if strings.HasPrefix(name, ".") {
		return "", errors.InvalidWorkspaceName(name, "name cannot start with '.'")
	}

	wsPath := filepath.Join(dir, name)
	if _, err := os.Stat(wsPath); err == nil {
		return "", errors.WorkspaceExists(name, wsPath)
	}

	m.log.WithFields(logrus.Fields{"workspace": name, "repo": repoName}).Info("creating workspace")
	progressf("creating workspace '%s'...", name)
	if err := m.backend.WorkspaceAdd(root, wsPath, name, at); err != nil {
		return "", err
	}
	successf("workspace '%s' created at %s", name, wsPath)

	return wsPath, nil
}

// Delete removes a workspace. An empty name infers the workspace from cwd.
// The returned redirect path is non-empty when cwd was inside the deleted
// workspace and the shell should cd away; the caller prints it to stdout.
func (m *Manager) Delete(name string, verbose bool) (string, error) {
	repoName, wsName, err := m.resolveTarget(name)
	if err != nil {
		return "", err
	}

	wsPath := filepath.Join(m.baseDir, repoName, wsName)
	if _, err := os.Stat(wsPath); err != nil {
		return "", errors.WorkspaceNotFound(wsName, wsPath)
	}

	mainRepo, err := m.mainRepoPath(repoName)
	if err != nil {
		return "", err
	}

	m.log.WithFields(logrus.Fields{"workspace": wsName, "repo": repoName}).Info("deleting workspace")
	if verbose {
		progressf("forgetting workspace '%s'...", wsName)
	}
	if err := m.backend.WorkspaceRemove(mainRepo, wsName, wsPath); err != nil {
		return "", err
	}
	if _, err := os.Stat(wsPath); err == nil {
		if verbose {
			progressf("removing %s...", wsPath)
		}
		if err := os.RemoveAll(wsPath); err != nil {
			return "", err
		}
	}

	agent.RemoveStatusesForWorkspace(filepath.Join(m.baseDir, repoName), wsName)

	if verbose {
		successf("workspace '%s' deleted", wsName)
	}

	if isInside(m.cwd, wsPath) {
		return mainRepo, nil
	}
	return "", nil
}

// Switch resolves the path of the named workspace; the main workspace name
// resolves to the original repo checkout.
func (m *Manager) Switch(name string) (string, error) {
	repoName, err := m.repoName()
	if err != nil {
		return "", err
	}

	if name == m.backend.MainWorkspaceName() {
		return m.mainRepoPath(repoName)
	}

	wsPath := filepath.Join(m.baseDir, repoName, name)
	if _, err := os.Stat(wsPath); err != nil {
		return "", errors.WorkspaceNotFound(name, wsPath)
	}
	return wsPath, nil
}

// Rename renames a workspace. The main workspace is refused. The returned
// redirect path is non-empty when cwd was inside the renamed workspace.
func (m *Manager) Rename(oldName, newName string) (string, error) {
	repoName, err := m.repoName()
	if err != nil {
		return "", err
	}

	if oldName == m.backend.MainWorkspaceName() {
		return "", errors.MainWorkspace(oldName, "rename")
	}
	if strings.HasPrefix(newName, ".") {
		return "", errors.InvalidWorkspaceName(newName, "name cannot start with '.'")
	}

	oldPath := filepath.Join(m.baseDir, repoName, oldName)
	if _, err := os.Stat(oldPath); err != nil {
		return "", errors.WorkspaceNotFound(oldName, oldPath)
	}
	newPath := filepath.Join(m.baseDir, repoName, newName)
	if _, err := os.Stat(newPath); err == nil {
		return "", errors.WorkspaceExists(newName, newPath)
	}

	mainRepo, err := m.mainRepoPath(repoName)
	if err != nil {
		return "", err
	}

	m.log.WithFields(logrus.Fields{"from": oldName, "to": newName}).Info("renaming workspace")
	progressf("renaming workspace '%s' -> '%s'...", oldName, newName)
	if err := m.backend.WorkspaceRename(mainRepo, oldPath, newPath, oldName, newName); err != nil {
		return "", err
	}
	successf("workspace '%s' renamed to '%s'", oldName, newName)

	if isInside(m.cwd, oldPath) {
		rel, err := filepath.Rel(oldPath, m.cwd)
		if err != nil {
			return newPath, nil
		}
		return filepath.Join(newPath, rel), nil
	}
	return "", nil
}

// InferName returns the workspace name for the current directory, which must
// be <base>/<repo>/<workspace>[/...].
func (m *Manager) InferName() (string, error) {
	rel, err := filepath.Rel(m.baseDir, m.cwd)
	if err != nil || strings.HasPrefix(rel, "..") {
		return "", errors.New(errors.ErrCodeInvalidInput,
			fmt.Sprintf("not inside a dwm workspace (current dir must be under %s)", m.baseDir))
	}
	parts := strings.Split(rel, string(filepath.Separator))
	if len(parts) < 2 {
		return "", errors.New(errors.ErrCodeInvalidInput,
			"could not determine workspace name from current directory")
	}
	return parts[1], nil
}

// resolveTarget resolves the repo name and workspace name for an operation.
// An empty wsName is inferred from cwd, which then must be inside a managed
// workspace.
func (m *Manager) resolveTarget(wsName string) (string, string, error) {
	if wsName != "" {
		repoName, err := m.repoName()
		if err != nil {
			return "", "", err
		}
		return repoName, wsName, nil
	}

	repoName, ok := repoNameFromBasePath(m.cwd, m.baseDir)
	if !ok {
		return "", "", errors.New(errors.ErrCodeInvalidInput,
			fmt.Sprintf("not inside a dwm workspace (current dir must be under %s)", m.baseDir))
	}
	inferred, err := m.InferName()
	if err != nil {
		return "", "", err
	}
	return repoName, inferred, nil
}

// List builds an Entry per workspace of the current repo, main workspace
// first, including diff stats, staleness, and agent summaries.
func (m *Manager) List() ([]Entry, error) {
	repoName, err := m.repoName()
	if err != nil {
		return nil, err
	}

	var mainRepo string
	if _, insideBase := repoNameFromBasePath(m.cwd, m.baseDir); insideBase {
		mainRepo, err = m.mainRepoPath(repoName)
		if err != nil {
			return nil, err
		}
	} else {
		mainRepo, err = m.backend.RootFrom(m.cwd)
		if err != nil {
			return nil, err
		}
	}

	repoDir := filepath.Join(m.baseDir, repoName)
	if _, err := os.Stat(repoDir); err != nil {
		return nil, nil
	}

	summaries := agent.ReadSummaries(repoDir)
	now := time.Now()
	kind := m.backend.Kind()
	mainName := m.backend.MainWorkspaceName()

	vcsWorkspaces, err := m.backend.WorkspaceList(mainRepo)
	if err != nil {
		m.log.WithError(err).Warn("workspace list failed; continuing without VCS metadata")
		vcsWorkspaces = nil
	}
	infoFor := func(name string) (vcs.WorkspaceInfo, bool) {
		for _, ws := range vcsWorkspaces {
			if ws.Name == name {
				return ws.Info, true
			}
		}
		return vcs.WorkspaceInfo{}, false
	}

	var entries []Entry

	mainInfo, _ := infoFor(mainName)
	mainStat, _ := m.backend.DiffStatVsTrunk(mainRepo, mainRepo, mainName)
	entries = append(entries, Entry{
		Name:         mainName,
		Path:         mainRepo,
		LastModified: modTime(mainRepo),
		DiffStat:     mainStat,
		IsMain:       true,
		ChangeID:     mainInfo.ChangeID,
		Description:  m.describeWorkspace(mainRepo, mainRepo, mainName, mainInfo),
		Bookmarks:    mainInfo.Bookmarks,
		MainRepoPath: mainRepo,
		Vcs:          kind,
		Agents:       takeSummary(summaries, mainName),
	})

	dirEntries, err := os.ReadDir(repoDir)
	if err != nil {
		return nil, err
	}
	for _, de := range dirEntries {
		if !de.IsDir() || strings.HasPrefix(de.Name(), ".") {
			continue
		}
		name := de.Name()
		wsPath := filepath.Join(repoDir, name)

		info, hasInfo := infoFor(name)
		var stat vcs.DiffStat
		merged := false
		if hasInfo {
			stat, _ = m.backend.DiffStatVsTrunk(mainRepo, wsPath, name)
			merged = m.backend.IsMergedIntoTrunk(mainRepo, wsPath, name)
		}

		modified := modTime(wsPath)
		entries = append(entries, Entry{
			Name:         name,
			Path:         wsPath,
			LastModified: modified,
			DiffStat:     stat,
			ChangeID:     info.ChangeID,
			Description:  m.describeWorkspace(mainRepo, wsPath, name, info),
			Bookmarks:    info.Bookmarks,
			IsStale:      computeIsStale(merged, modified, now),
			MainRepoPath: mainRepo,
			Vcs:          kind,
			Agents:       takeSummary(summaries, name),
		})
	}

	return entries, nil
}

// describeWorkspace prefers the working-copy description, falling back to the
// latest described ancestor when it is empty.
func (m *Manager) describeWorkspace(mainRepo, wsPath, name string, info vcs.WorkspaceInfo) string {
	if strings.TrimSpace(info.Description) != "" {
		return info.Description
	}
	return m.backend.LatestDescription(mainRepo, wsPath, name)
}

// ListAll builds entries for every workspace across all repos tracked under
// the base directory. Directories without a .main-repo marker are skipped;
// each entry's RepoName is populated from the original checkout's basename.
func ListAll(baseDir string, runner *command.Runner) ([]Entry, error) {
	dirEntries, err := os.ReadDir(baseDir)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, err
	}

	log := logging.NewLogger("workspace", logging.Options{BaseDir: baseDir})
	var all []Entry
	for _, de := range dirEntries {
		if !de.IsDir() {
			continue
		}
		repoDir := filepath.Join(baseDir, de.Name())
		mainRepo, err := vcs.ReadMainRepoPath(repoDir)
		if err != nil {
			continue
		}
		repoName := filepath.Base(mainRepo)

		backend, err := vcs.DetectFromRepoDir(repoDir, runner)
		if err != nil {
			continue
		}

		m := NewManagerWith(backend, repoDir, baseDir)
		entries, err := m.List()
		if err != nil {
			log.WithError(err).WithField("repo", repoName).Warn("skipping repo")
			continue
		}
		for i := range entries {
			entries[i].RepoName = repoName
		}
		all = append(all, entries...)
	}
	return all, nil
}

// isInside reports whether cwd is the workspace path or a descendant of it.
func isInside(cwd, wsPath string) bool {
	rel, err := filepath.Rel(wsPath, cwd)
	if err != nil {
		return false
	}
	return rel == "." || !strings.HasPrefix(rel, "..")
}

// modTime returns a directory's modification time, nil when unavailable.
func modTime(path string) *time.Time {
	info, err := os.Stat(path)
	if err != nil {
		return nil
	}
	t := info.ModTime()
	return &t
}

// takeSummary removes and returns the summary for a workspace, nil when
// absent.
func takeSummary(summaries map[string]agent.Summary, name string) *agent.Summary {
	s, ok := summaries[name]
	if !ok {
		return nil
	}
	delete(summaries, name)
	return &s
}
