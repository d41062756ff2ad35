// Package cmd defines the dwm subcommands.
package cmd

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/dwmtools/dwm/agent"
	"github.com/dwmtools/dwm/command"
	"github.com/dwmtools/dwm/config"
	"github.com/dwmtools/dwm/tui/picker"
	"github.com/dwmtools/dwm/vcs"
	"github.com/dwmtools/dwm/workspace"
)

// newManager builds a workspace manager for the current directory.
func newManager() (*workspace.Manager, error) {
	cwd, err := os.Getwd()
	if err != nil {
		return nil, err
	}
	baseDir, err := config.BaseDir()
	if err != nil {
		return nil, err
	}
	return workspace.NewManager(cwd, baseDir, command.NewRunner())
}

// NewNewCmd creates the `dwm new` subcommand.
func NewNewCmd() *cobra.Command {
	var at, from string
	cmd := &cobra.Command{
		Use:   "new [name]",
		Short: "Create a new workspace",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			name := ""
			if len(args) > 0 {
				name = args[0]
			}
			m, err := newManager()
			if err != nil {
				return err
			}
			path, err := m.New(name, at, from)
			if err != nil {
				return err
			}
			// stdout: path for the shell wrapper to cd into.
			fmt.Println(path)
			return nil
		},
	}
	cmd.Flags().StringVar(&at, "at", "", "Start from a specific revision instead of the default")
	cmd.Flags().StringVar(&from, "from", "", "Start from another workspace's current change")
	return cmd
}

// NewListCmd creates the `dwm list` subcommand, the interactive picker.
func NewListCmd() *cobra.Command {
	var all bool
	cmd := &cobra.Command{
		Use:   "list",
		Short: "List workspaces and pick one interactively",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if all {
				return runPickerAll()
			}
			return runPicker()
		},
	}
	cmd.Flags().BoolVar(&all, "all", false, "Show workspaces across all repos")
	return cmd
}

func runPicker() error {
	m, err := newManager()
	if err != nil {
		return err
	}

	deps := picker.Deps{
		ListEntries: m.List,
		ReadSummaries: func() map[string]agent.Summary {
			repoDir, err := m.RepoDir()
			if err != nil {
				return nil
			}
			return agent.ReadSummaries(repoDir)
		},
		Delete: func(name string) (bool, error) {
			redirect, err := m.Delete(name, false)
			if err != nil {
				return false, err
			}
			if redirect != "" {
				fmt.Println(redirect)
				return true, nil
			}
			return false, nil
		},
		PreviewLog: func(e workspace.Entry, limit int) string {
			return m.Backend().PreviewLog(e.MainRepoPath, e.Path, e.Name, limit)
		},
		PreviewDiffStat: func(e workspace.Entry) string {
			return m.Backend().PreviewDiffStat(e.MainRepoPath, e.Path, e.Name)
		},
	}

	result, err := picker.Run(deps)
	if err != nil {
		return err
	}
	switch {
	case result == nil:
	case result.Selected != "":
		fmt.Println(result.Selected)
	case result.Create:
		path, err := m.New(result.CreateName, "", "")
		if err != nil {
			return err
		}
		fmt.Println(path)
	}
	return nil
}

func runPickerAll() error {
	baseDir, err := config.BaseDir()
	if err != nil {
		return err
	}
	runner := command.NewRunner()

	deps := picker.Deps{
		ListEntries: func() ([]workspace.Entry, error) {
			return workspace.ListAll(baseDir, runner)
		},
		ReadSummaries: func() map[string]agent.Summary {
			return readAllSummaries(baseDir)
		},
		PreviewLog: func(e workspace.Entry, limit int) string {
			return e.Vcs.Backend(runner).PreviewLog(e.MainRepoPath, e.Path, e.Name, limit)
		},
		PreviewDiffStat: func(e workspace.Entry) string {
			return e.Vcs.Backend(runner).PreviewDiffStat(e.MainRepoPath, e.Path, e.Name)
		},
	}

	result, err := picker.RunAll(deps)
	if err != nil {
		return err
	}
	if result != nil && result.Selected != "" {
		fmt.Println(result.Selected)
	}
	return nil
}

// readAllSummaries aggregates agent summaries across every tracked repo,
// keyed repo/name to match multi-repo entries.
func readAllSummaries(baseDir string) map[string]agent.Summary {
	dirEntries, err := os.ReadDir(baseDir)
	if err != nil {
		return nil
	}
	result := make(map[string]agent.Summary)
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
		for name, summary := range agent.ReadSummaries(repoDir) {
			result[repoName+"/"+name] = summary
		}
	}
	return result
}

// NewStatusCmd creates the `dwm status` subcommand.
func NewStatusCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "status",
		Short: "Print a non-interactive workspace summary",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			m, err := newManager()
			if err != nil {
				return err
			}
			entries, err := m.List()
			if err != nil {
				return err
			}
			workspace.PrintStatus(entries)
			return nil
		},
	}
}

// NewSwitchCmd creates the `dwm switch` subcommand.
func NewSwitchCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "switch <name>",
		Short: "Switch to a workspace by name",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			m, err := newManager()
			if err != nil {
				return err
			}
			path, err := m.Switch(args[0])
			if err != nil {
				return err
			}
			fmt.Println(path)
			return nil
		},
	}
}

// NewRenameCmd creates the `dwm rename` subcommand. With one argument the
// current workspace is renamed; with two, the named one.
func NewRenameCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "rename <name> [new-name]",
		Short: "Rename a workspace",
		Args:  cobra.RangeArgs(1, 2),
		RunE: func(cmd *cobra.Command, args []string) error {
			m, err := newManager()
			if err != nil {
				return err
			}
			oldName, newName := "", ""
			if len(args) == 2 {
				oldName, newName = args[0], args[1]
			} else {
				newName = args[0]
				if oldName, err = m.InferName(); err != nil {
					return err
				}
			}
			redirect, err := m.Rename(oldName, newName)
			if err != nil {
				return err
			}
			if redirect != "" {
				fmt.Println(redirect)
			}
			return nil
		},
	}
}

// NewDeleteCmd creates the `dwm delete` subcommand.
func NewDeleteCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "delete [name]",
		Short: "Delete a workspace (by name, or the current one if omitted)",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			name := ""
			if len(args) > 0 {
				name = args[0]
			}
			m, err := newManager()
			if err != nil {
				return err
			}
			redirect, err := m.Delete(name, true)
			if err != nil {
				return err
			}
			if redirect != "" {
				fmt.Println(redirect)
			}
			return nil
		},
	}
}
