package cmd

import (
	"github.com/spf13/cobra"

	"github.com/dwmtools/dwm/cli"
	"github.com/dwmtools/dwm/config"
	"github.com/dwmtools/dwm/logging"
)

// NewRootCmd assembles the full dwm command tree. Running dwm with no
// subcommand opens the interactive picker.
func NewRootCmd() *cobra.Command {
	rootCmd := cli.NewStandardCommand(
		"dwm",
		"Developer workspace manager for jj workspaces and git worktrees",
	)
	rootCmd.Args = cobra.NoArgs
	rootCmd.PersistentPreRunE = func(cmd *cobra.Command, args []string) error {
		return initLogging(cmd)
	}
	rootCmd.RunE = func(cmd *cobra.Command, args []string) error {
		return runPicker()
	}

	rootCmd.AddCommand(NewNewCmd())
	rootCmd.AddCommand(NewListCmd())
	rootCmd.AddCommand(NewStatusCmd())
	rootCmd.AddCommand(NewSwitchCmd())
	rootCmd.AddCommand(NewRenameCmd())
	rootCmd.AddCommand(NewDeleteCmd())
	rootCmd.AddCommand(NewShellSetupCmd())
	rootCmd.AddCommand(NewHookHandlerCmd())
	rootCmd.AddCommand(NewAgentSetupCmd())
	rootCmd.AddCommand(NewSetupCmd())
	rootCmd.AddCommand(NewVersionCmd())

	cli.ApplyStyledHelp(rootCmd)

	return rootCmd
}

// initLogging configures the shared loggers from <base>/config.yml before any
// subcommand runs. --verbose overrides the configured level.
func initLogging(cmd *cobra.Command) error {
	baseDir, err := config.BaseDir()
	if err != nil {
		return err
	}
	cfg, err := config.Load(baseDir)
	if err != nil {
		return err
	}
	level := cfg.Log.Level
	if verbose, _ := cmd.Flags().GetBool("verbose"); verbose {
		level = "debug"
	}
	logging.NewLogger("cli", logging.Options{BaseDir: baseDir, Level: level})
	return nil
}
