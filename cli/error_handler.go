package cli

import (
	"fmt"
	"os"

	"github.com/dwmtools/dwm/errors"
)

// ErrorHandler renders user-friendly error messages on stderr.
type ErrorHandler struct {
	Verbose bool
}

// NewErrorHandler creates a new error handler.
func NewErrorHandler(verbose bool) *ErrorHandler {
	return &ErrorHandler{Verbose: verbose}
}

// Handle prints a message appropriate to the error's code and returns the
// error unchanged so callers can set the exit status.
func (h *ErrorHandler) Handle(err error) error {
	switch errors.GetCode(err) {
	case errors.ErrCodeNoRepo:
		fmt.Fprintf(os.Stderr, "❌ %v\n", err)
		fmt.Fprintf(os.Stderr, "Run dwm from inside a jj or git repository, or a dwm workspace.\n")

	case errors.ErrCodeWorkspaceNotFound:
		fmt.Fprintf(os.Stderr, "❌ %v\n", err)
		fmt.Fprintf(os.Stderr, "Run 'dwm status' to see available workspaces.\n")

	case errors.ErrCodeVcsNotInstalled:
		fmt.Fprintf(os.Stderr, "❌ %v\n", err)

	case errors.ErrCodeMainWorkspace:
		fmt.Fprintf(os.Stderr, "❌ %v\n", err)

	default:
		fmt.Fprintf(os.Stderr, "❌ Error: %v\n", err)
		if h.Verbose {
			if dwmErr, ok := err.(*errors.DwmError); ok {
				fmt.Fprintf(os.Stderr, "\nError details:\n%s\n", dwmErr.ToJSON())
			}
		}
	}
	return err
}
