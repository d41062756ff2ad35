package cli

import (
	"fmt"
	"os"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"golang.org/x/term"
)

const (
	helpMaxWidth = 72
	helpMinWidth = 40
)

var (
	helpTitle   = lipgloss.NewStyle().Bold(true)
	helpSection = lipgloss.NewStyle().Bold(true).Faint(true)
	helpName    = lipgloss.NewStyle().Foreground(lipgloss.Color("6"))
	helpFlag    = lipgloss.NewStyle().Foreground(lipgloss.Color("5"))
	helpMuted   = lipgloss.NewStyle().Faint(true)
)

// ApplyStyledHelp installs the dwm help renderer on a command and all of its
// subcommands. Call after every subcommand has been added.
func ApplyStyledHelp(cmd *cobra.Command) {
	cmd.SetHelpFunc(styledHelp)
	for _, sub := range cmd.Commands() {
		ApplyStyledHelp(sub)
	}
}

// helpWidth returns the wrap width for help text, derived from the terminal
// and clamped to a readable range.
func helpWidth() int {
	width, _, err := term.GetSize(int(os.Stdout.Fd()))
	if err != nil || width < helpMinWidth {
		return helpMaxWidth
	}
	if width > helpMaxWidth {
		return helpMaxWidth
	}
	return width
}

func styledHelp(cmd *cobra.Command, args []string) {
	width := helpWidth()

	fmt.Println(helpTitle.Render(cmd.CommandPath()) + " — " + cmd.Short)

	long := cmd.Long
	if long != "" {
		fmt.Println()
		fmt.Println(wrap(long, width))
	}

	fmt.Println()
	fmt.Println(helpSection.Render("Usage"))
	if cmd.Runnable() {
		fmt.Println("  " + cmd.UseLine())
	}
	if cmd.HasAvailableSubCommands() {
		fmt.Println("  " + cmd.CommandPath() + " [command]")
	}

	if cmd.HasAvailableSubCommands() {
		fmt.Println()
		fmt.Println(helpSection.Render("Commands"))
		nameWidth := 0
		for _, sub := range cmd.Commands() {
			if sub.IsAvailableCommand() && len(sub.Name()) > nameWidth {
				nameWidth = len(sub.Name())
			}
		}
		for _, sub := range cmd.Commands() {
			if !sub.IsAvailableCommand() {
				continue
			}
			pad := strings.Repeat(" ", nameWidth-len(sub.Name()))
			fmt.Printf("  %s%s  %s\n", helpName.Render(sub.Name()), pad, sub.Short)
		}
	}

	var flags []*pflag.Flag
	cmd.LocalFlags().VisitAll(func(f *pflag.Flag) {
		if !f.Hidden {
			flags = append(flags, f)
		}
	})
	if len(flags) > 0 {
		fmt.Println()
		fmt.Println(helpSection.Render("Flags"))
		flagWidth := 0
		for _, f := range flags {
			if len(flagLabel(f)) > flagWidth {
				flagWidth = len(flagLabel(f))
			}
		}
		for _, f := range flags {
			label := flagLabel(f)
			pad := strings.Repeat(" ", flagWidth-len(label))
			fmt.Printf("  %s%s  %s\n", helpFlag.Render(label), pad, f.Usage)
		}
	}

	if cmd.HasAvailableSubCommands() {
		fmt.Println()
		fmt.Println(helpMuted.Render(
			fmt.Sprintf("Use \"%s [command] --help\" for more information.", cmd.CommandPath())))
	}
}

func flagLabel(f *pflag.Flag) string {
	if f.Shorthand != "" {
		return fmt.Sprintf("-%s, --%s", f.Shorthand, f.Name)
	}
	return fmt.Sprintf("    --%s", f.Name)
}

// wrap breaks text at word boundaries, preserving existing line breaks.
func wrap(text string, width int) string {
	var out []string
	for _, paragraph := range strings.Split(text, "\n") {
		if len(paragraph) <= width {
			out = append(out, paragraph)
			continue
		}
		line := ""
		for _, word := range strings.Fields(paragraph) {
			switch {
			case line == "":
				line = word
			case len(line)+1+len(word) <= width:
				line += " " + word
			default:
				out = append(out, line)
				line = word
			}
		}
		if line != "" {
			out = append(out, line)
		}
	}
	return strings.Join(out, "\n")
}
