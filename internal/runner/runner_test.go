package runner

import (
	"context"
	"errors"
	"os/exec"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestExecRunner_Run(t *testing.T) {
	if _, err := exec.LookPath("sh"); err != nil {
		t.Skip("sh not available")
	}

	t.Run("captures stdout and stderr", func(t *testing.T) {
		r := New()

		res, err := r.Run(context.Background(), Command{
			Name: "sh",
			Args: []string{"-c", "echo out; echo err >&2"},
		})

		require.NoError(t, err)
		assert.Equal(t, "out\n", res.Stdout)
		assert.Equal(t, "err\n", res.Stderr)
		assert.Equal(t, 0, res.ExitCode)
	})

	t.Run("runs in the given directory", func(t *testing.T) {
		dir := t.TempDir()
		r := New()

		res, err := r.Run(context.Background(), Command{Name: "sh", Args: []string{"-c", "pwd -P"}, Dir: dir})

		require.NoError(t, err)
		want, err := filepath.EvalSymlinks(dir)
		require.NoError(t, err)
		assert.Equal(t, want+"\n", res.Stdout)
	})

	t.Run("non-zero exit returns result and exit error", func(t *testing.T) {
		r := New()

		res, err := r.Run(context.Background(), Command{Name: "sh", Args: []string{"-c", "echo nope >&2; exit 3"}})

		require.Error(t, err)
		var exitErr *exec.ExitError
		assert.True(t, errors.As(err, &exitErr))
		assert.Equal(t, 3, res.ExitCode)
		assert.Equal(t, "nope\n", res.Stderr)
	})

	t.Run("extra environment", func(t *testing.T) {
		r := New(WithEnv("PATCH_RELEASE_TEST", "42"))

		res, err := r.Run(context.Background(), Command{Name: "sh", Args: []string{"-c", "echo $PATCH_RELEASE_TEST"}})

		require.NoError(t, err)
		assert.Equal(t, "42\n", res.Stdout)
	})
}

func TestExecRunner_MissingBinary(t *testing.T) {
	r := New()

	res, err := r.Run(context.Background(), Command{Name: "definitely-not-a-real-binary-xyz"})

	require.Error(t, err)
	assert.True(t, errors.Is(err, exec.ErrNotFound))
	assert.Equal(t, -1, res.ExitCode)
}

func TestCommand_String(t *testing.T) {
	cmd := Command{Name: "patch", Args: []string{"-p1", "-i", "patch.diff"}}
	assert.Equal(t, "patch -p1 -i patch.diff", cmd.String())
}

func TestMockRunner_Commands(t *testing.T) {
	m := new(MockRunner)
	first := Command{Name: "git", Args: []string{"status"}}
	second := Command{Name: "tar", Args: []string{"czf", "x.tar.gz", "x"}}
	m.On("Run", context.Background(), first).Return(&Result{}, nil)
	m.On("Run", context.Background(), second).Return(nil, errors.New("boom"))

	_, err := m.Run(context.Background(), first)
	require.NoError(t, err)
	res, err := m.Run(context.Background(), second)
	require.Error(t, err)
	assert.Nil(t, res)

	assert.Equal(t, []Command{first, second}, m.Commands())
	m.AssertExpectations(t)
}
