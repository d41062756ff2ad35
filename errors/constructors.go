package errors

import (
	"fmt"
	"os/exec"
)

// NoRepo creates an error for a directory with no detectable repository
func NoRepo(dir string) *DwmError {
	return New(ErrCodeNoRepo,
		fmt.Sprintf("no jj or git repository found in %s or any parent directory", dir)).
		WithDetail("dir", dir)
}

// WorkspaceNotFound creates a workspace not found error
func WorkspaceNotFound(name, path string) *DwmError {
	return New(ErrCodeWorkspaceNotFound,
		fmt.Sprintf("workspace '%s' not found at %s", name, path)).
		WithDetail("workspace", name).
		WithDetail("path", path)
}

// WorkspaceExists creates a workspace already exists error
func WorkspaceExists(name, path string) *DwmError {
	return New(ErrCodeWorkspaceExists,
		fmt.Sprintf("workspace '%s' already exists at %s", name, path)).
		WithDetail("workspace", name).
		WithDetail("path", path)
}

// InvalidWorkspaceName creates an invalid workspace name error
func InvalidWorkspaceName(name, reason string) *DwmError {
	return New(ErrCodeWorkspaceInvalid,
		fmt.Sprintf("invalid workspace name '%s': %s", name, reason)).
		WithDetail("workspace", name)
}

// MainWorkspace creates an error for operations refused on the main workspace
func MainWorkspace(name, op string) *DwmError {
	return New(ErrCodeMainWorkspace,
		fmt.Sprintf("cannot %s the main workspace '%s'", op, name)).
		WithDetail("workspace", name)
}

// VcsFailed creates a VCS subprocess failure error
func VcsFailed(cmd string, err error) *DwmError {
	dwmErr := Wrap(err, ErrCodeVcsFailed, fmt.Sprintf("command failed: %s", cmd)).
		WithDetail("command", cmd)

	if exitErr, ok := err.(*exec.ExitError); ok {
		dwmErr = dwmErr.WithDetail("exitCode", exitErr.ExitCode())
	}

	return dwmErr
}

// VcsNotInstalled creates an error for a missing VCS binary
func VcsNotInstalled(binary string, err error) *DwmError {
	return Wrap(err, ErrCodeVcsNotInstalled,
		fmt.Sprintf("failed to run %s - is it installed?", binary)).
		WithDetail("binary", binary)
}

// UnknownVcs creates an error for an unrecognized VCS kind
func UnknownVcs(kind string) *DwmError {
	return New(ErrCodeVcsUnknown, fmt.Sprintf("unknown VCS type '%s'", kind)).
		WithDetail("kind", kind)
}
