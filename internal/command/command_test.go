package command

import (
	"context"
	"errors"
	"os/exec"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRealExecutor_Output(t *testing.T) {
	t.Parallel()

	executor := &RealExecutor{}

	t.Run("returns_stdout", func(t *testing.T) {
		t.Parallel()

		out, err := executor.Output(context.Background(), "echo", "-n", "hello")

		require.NoError(t, err)
		assert.Equal(t, "hello", string(out))
	})

	t.Run("returns_exit_error_for_failed_command", func(t *testing.T) {
		t.Parallel()

		_, err := executor.Output(context.Background(), "false")

		var exitErr *exec.ExitError
		require.ErrorAs(t, err, &exitErr)
		assert.Equal(t, 1, exitErr.ExitCode())
	})

	t.Run("returns_error_for_nonexistent_command", func(t *testing.T) {
		t.Parallel()

		_, err := executor.Output(context.Background(), "nonexistent_command_that_should_not_exist_12345")

		require.Error(t, err)
		assert.True(t, errors.Is(err, exec.ErrNotFound))
	})
}

func TestRealExecutor_CombinedOutput(t *testing.T) {
	t.Parallel()

	executor := &RealExecutor{}

	out, err := executor.CombinedOutput(context.Background(), "sh", "-c", "echo wrong fs type >&2; exit 32")

	var exitErr *exec.ExitError
	require.ErrorAs(t, err, &exitErr)
	assert.Equal(t, 32, exitErr.ExitCode())
	assert.Equal(t, "wrong fs type\n", string(out))
}

func TestExecutor_Interface(t *testing.T) {
	t.Parallel()

	var _ Executor = (*RealExecutor)(nil)
}
