package command

import (
	"context"
	"errors"
	"os/exec"
	"strings"
	"time"

	dwmerrors "github.com/dwmtools/dwm/errors"
)

// DefaultTimeout bounds a single VCS subprocess invocation. Diff stats over
// large repositories can be slow, but nothing dwm runs should take minutes.
const DefaultTimeout = 60 * time.Second

// Runner executes external commands and captures their output. It wraps an
// Executor so tests can substitute mock binaries.
type Runner struct {
	executor Executor
	timeout  time.Duration
}

// NewRunner creates a Runner backed by the real os/exec implementation.
func NewRunner() *Runner {
	return NewRunnerWithExecutor(&RealExecutor{})
}

// NewRunnerWithExecutor creates a Runner with a custom Executor.
func NewRunnerWithExecutor(exec Executor) *Runner {
	return &Runner{executor: exec, timeout: DefaultTimeout}
}

// RunIn runs `name args...` with dir as the working directory and returns
// stdout. A non-zero exit is reported as a VCS_FAILED error carrying the
// subprocess stderr; a missing binary is reported as VCS_NOT_INSTALLED.
func (r *Runner) RunIn(dir, name string, args ...string) (string, error) {
	ctx, cancel := context.WithTimeout(context.Background(), r.timeout)
	defer cancel()

	cmd := r.executor.CommandContext(ctx, name, args...)
	cmd.Dir = dir

	var stdout, stderr strings.Builder
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	if err := cmd.Run(); err != nil {
		if errors.Is(err, exec.ErrNotFound) {
			return "", dwmerrors.VcsNotInstalled(name, err)
		}
		display := name + " " + strings.Join(args, " ")
		return "", dwmerrors.VcsFailed(display, err).
			WithDetail("stderr", strings.TrimSpace(stderr.String()))
	}
	return stdout.String(), nil
}
