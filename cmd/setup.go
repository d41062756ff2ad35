package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/dwmtools/dwm/agent"
	"github.com/dwmtools/dwm/cli"
	"github.com/dwmtools/dwm/config"
	"github.com/dwmtools/dwm/shell"
)

// hookCommand is what the agent hook config invokes for every event.
const hookCommand = "dwm hook-handler"

// NewShellSetupCmd creates the `dwm shell-setup` subcommand, which prints the
// shell wrapper function for eval'ing from an rc file.
func NewShellSetupCmd() *cobra.Command {
	var fish, posix bool
	cmd := &cobra.Command{
		Use:   "shell-setup",
		Short: "Print the shell integration function",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			shellName := os.Getenv("SHELL")
			if fish {
				shellName = "fish"
			} else if posix {
				shellName = "bash"
			}
			shell.PrintSetup(os.Stdout, shellName)
			return nil
		},
	}
	cmd.Flags().BoolVar(&fish, "fish", false, "Print the fish variant")
	cmd.Flags().BoolVar(&posix, "posix", false, "Print the POSIX (bash/zsh) variant")
	return cmd
}

// NewHookHandlerCmd creates the `dwm hook-handler` subcommand. It is invoked
// by the agent's hook system with a JSON event on stdin and must never fail
// loudly, so errors are swallowed after logging.
func NewHookHandlerCmd() *cobra.Command {
	return &cobra.Command{
		Use:    "hook-handler",
		Short:  "Process an agent hook event from stdin",
		Hidden: true,
		Args:   cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			baseDir, err := config.BaseDir()
			if err != nil {
				return nil
			}
			if err := agent.HandleHook(os.Stdin, baseDir); err != nil {
				cli.GetLogger(cmd).WithError(err).Debug("hook event ignored")
			}
			return nil
		},
	}
}

// NewAgentSetupCmd creates the `dwm agent-setup` subcommand, which installs
// the hook-handler into the agent's settings file.
func NewAgentSetupCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "agent-setup",
		Short: "Install agent status hooks",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			settingsPath, err := agent.DefaultSettingsPath()
			if err != nil {
				return err
			}
			if err := agent.SetupHooks(settingsPath, hookCommand); err != nil {
				return err
			}
			fmt.Fprintf(os.Stderr, "✓ Agent hooks installed in %s\n", settingsPath)
			return nil
		},
	}
}

// NewSetupCmd creates the `dwm setup` subcommand, the interactive first-run
// setup: shell integration plus agent hooks, each behind a prompt.
func NewSetupCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "setup",
		Short: "Interactively set up shell integration and agent hooks",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			shellPath := os.Getenv("SHELL")
			home, err := os.UserHomeDir()
			if err != nil {
				return err
			}
			rcPath := shell.RcFile(home, shellPath)

			if shell.Confirm(os.Stdin, fmt.Sprintf("Add shell integration to %s?", rcPath)) {
				modified, err := shell.SetupRc(rcPath, shellPath)
				if err != nil {
					return err
				}
				if modified {
					fmt.Fprintf(os.Stderr, "✓ Shell integration added to %s\n", rcPath)
					fmt.Fprintln(os.Stderr, "  Restart your shell or source the file to activate it.")
				} else {
					fmt.Fprintf(os.Stderr, "✓ Shell integration already present in %s\n", rcPath)
				}
			}

			if shell.Confirm(os.Stdin, "Install agent status hooks?") {
				settingsPath, err := agent.DefaultSettingsPath()
				if err != nil {
					return err
				}
				if err := agent.SetupHooks(settingsPath, hookCommand); err != nil {
					return err
				}
				fmt.Fprintf(os.Stderr, "✓ Agent hooks installed in %s\n", settingsPath)
			}
			return nil
		},
	}
}
