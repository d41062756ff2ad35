// Package tui holds terminal setup shared by dwm's interactive views.
package tui

import (
	"os"

	"github.com/charmbracelet/lipgloss"
	"github.com/muesli/termenv"
)

// Initialize pins the lipgloss color profile before any view renders.
//
// dwm draws on stderr while stdout carries paths for the shell wrapper, so
// automatic profile detection can land on the wrong descriptor. NO_COLOR
// disables styling outright; CLICOLOR_FORCE/COLORTERM force full color for
// non-interactive runs such as CI captures.
func Initialize() {
	if os.Getenv("NO_COLOR") != "" {
		lipgloss.SetColorProfile(termenv.Ascii)
		return
	}
	if os.Getenv("CLICOLOR_FORCE") == "1" || os.Getenv("COLORTERM") == "truecolor" {
		lipgloss.SetColorProfile(termenv.TrueColor)
	}
}
