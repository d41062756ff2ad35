// Package shell generates the shell-integration wrapper that lets `dwm`
// change the caller's working directory. The binary prints target paths on
// stdout; the wrapper function cds into them.
package shell

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/mattn/go-isatty"
)

// posixFunction is the wrapper for bash/zsh. `command dwm` bypasses the
// function itself so the real binary runs instead of recursing.
const posixFunction = `dwm() {
    local output
    output="$(command dwm "$@")"
    local exit_code=$?
    if [ $exit_code -eq 0 ] && [ -n "$output" ] && [ -d "$output" ]; then
        cd "$output" || return 1
    elif [ -n "$output" ]; then
        echo "$output"
    fi
    return $exit_code
}`

// fishFunction is the same wrapper in fish syntax.
const fishFunction = `function dwm
    set -l output (command dwm $argv)
    set -l exit_code $status
    if test $exit_code -eq 0; and test -n "$output"; and test -d "$output"
        cd $output; or return 1
    else if test -n "$output"
        echo $output
    end
    return $exit_code
end`

// Function returns the wrapper function source for the given shell name.
// Unrecognized shells get the POSIX variant.
func Function(shellName string) string {
	if strings.Contains(shellName, "fish") {
		return fishFunction
	}
	return posixFunction
}

// PrintSetup writes the wrapper function to w for eval'ing. When stdout is a
// terminal a usage hint goes to stderr so piping the output stays clean.
func PrintSetup(w io.Writer, shellName string) {
	fmt.Fprintln(w, Function(shellName))
	if f, ok := w.(*os.File); ok && isatty.IsTerminal(f.Fd()) {
		fmt.Fprintln(os.Stderr, "# Add this to your shell rc file:")
		fmt.Fprintln(os.Stderr, "#   eval \"$(dwm shell-setup)\"")
	}
}

// RcFile returns the rc file path for the user's shell, based on $SHELL.
func RcFile(home, shellPath string) string {
	switch filepath.Base(shellPath) {
	case "zsh":
		return filepath.Join(home, ".zshrc")
	case "fish":
		return filepath.Join(home, ".config", "fish", "config.fish")
	default:
		return filepath.Join(home, ".bashrc")
	}
}

// evalLine is the line appended to an rc file by interactive setup.
const evalLine = `eval "$(dwm shell-setup)"`

// fishEvalLine is the fish equivalent.
const fishEvalLine = `dwm shell-setup | source`

// SetupRc appends the eval line to rcPath unless it is already present.
// Returns true when the file was modified.
func SetupRc(rcPath, shellName string) (bool, error) {
	line := evalLine
	if strings.Contains(shellName, "fish") {
		line = fishEvalLine
	}

	if data, err := os.ReadFile(rcPath); err == nil {
		if strings.Contains(string(data), line) {
			return false, nil
		}
	} else if !os.IsNotExist(err) {
		return false, err
	}

	if err := os.MkdirAll(filepath.Dir(rcPath), 0755); err != nil {
		return false, err
	}
	f, err := os.OpenFile(rcPath, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0644)
	if err != nil {
		return false, err
	}
	defer f.Close()

	if _, err := fmt.Fprintf(f, "\n# dwm shell integration\n%s\n", line); err != nil {
		return false, err
	}
	return true, nil
}

// Confirm prompts the user on stderr and reads a y/n answer from r.
func Confirm(r io.Reader, prompt string) bool {
	fmt.Fprintf(os.Stderr, "%s [y/N] ", prompt)
	answer, err := bufio.NewReader(r).ReadString('\n')
	if err != nil && answer == "" {
		return false
	}
	answer = strings.ToLower(strings.TrimSpace(answer))
	return answer == "y" || answer == "yes"
}
