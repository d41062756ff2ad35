package command

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dwmtools/dwm/errors"
)

func TestRunInCapturesStdout(t *testing.T) {
	out, err := NewRunner().RunIn(t.TempDir(), "echo", "hello")
	require.NoError(t, err)
	assert.Equal(t, "hello\n", out)
}

func TestRunInRunsInDirectory(t *testing.T) {
	dir := t.TempDir()
	out, err := NewRunner().RunIn(dir, "pwd")
	require.NoError(t, err)
	assert.Contains(t, out, dir)
}

func TestRunInReportsFailureWithStderr(t *testing.T) {
	_, err := NewRunner().RunIn(t.TempDir(), "sh", "-c", "echo oops >&2; exit 3")
	require.Error(t, err)
	assert.True(t, errors.Is(err, errors.ErrCodeVcsFailed))

	dwmErr, ok := err.(*errors.DwmError)
	require.True(t, ok)
	assert.Equal(t, "oops", dwmErr.Details["stderr"])
	assert.Equal(t, 3, dwmErr.Details["exitCode"])
}

func TestRunInReportsMissingBinary(t *testing.T) {
	_, err := NewRunner().RunIn(t.TempDir(), "definitely-not-a-real-binary-xyz")
	require.Error(t, err)
	assert.True(t, errors.Is(err, errors.ErrCodeVcsNotInstalled))
}
