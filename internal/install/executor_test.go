package install

import (
	"bytes"
	"context"
	"path/filepath"
	"runtime"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func skipWithoutPOSIXShell(t *testing.T) {
	t.Helper()
	if runtime.GOOS == "windows" {
		t.Skip("requires /bin/sh")
	}
}

func TestShellExecutorSuccess(t *testing.T) {
	skipWithoutPOSIXShell(t)
	dir := t.TempDir()
	var stdout bytes.Buffer

	err := NewShellExecutor().Run(context.Background(), Command{
		Script: "pwd && echo installed",
		Dir:    dir,
		Shell:  true,
		Stdout: &stdout,
	})
	require.NoError(t, err)

	resolved, err := filepath.EvalSymlinks(dir)
	require.NoError(t, err)
	assert.Contains(t, stdout.String(), resolved)
	assert.Contains(t, stdout.String(), "installed")
}

func TestShellExecutorNonZeroExit(t *testing.T) {
	skipWithoutPOSIXShell(t)
	var stderr bytes.Buffer

	err := NewShellExecutor().Run(context.Background(), Command{
		Script: "echo broken >&2; exit 3",
		Dir:    t.TempDir(),
		Shell:  true,
		Stderr: &stderr,
	})

	var execErr *ExecutionError
	require.ErrorAs(t, err, &execErr)
	assert.Equal(t, 3, execErr.Code)
	assert.Equal(t, "broken\n", stderr.String())
}

func TestShellExecutorCommandNotFound(t *testing.T) {
	skipWithoutPOSIXShell(t)

	err := NewShellExecutor().Run(context.Background(), Command{
		Script: "definitely-not-a-real-installer --now",
		Dir:    t.TempDir(),
		Shell:  true,
		Stderr: &bytes.Buffer{},
	})

	var spawnErr *SpawnError
	require.ErrorAs(t, err, &spawnErr)
	assert.Equal(t, "definitely-not-a-real-installer", spawnErr.Program)
}

func TestShellExecutorNotFoundInLaterStep(t *testing.T) {
	skipWithoutPOSIXShell(t)
	var stdout bytes.Buffer

	err := NewShellExecutor().Run(context.Background(), Command{
		Script: "echo fetched && envsetup-missing-tool-xyz --install",
		Dir:    t.TempDir(),
		Shell:  true,
		Stdout: &stdout,
		Stderr: &bytes.Buffer{},
	})

	var spawnErr *SpawnError
	require.ErrorAs(t, err, &spawnErr)
	assert.Equal(t, "echo", spawnErr.Program)
	assert.Equal(t, "fetched\n", stdout.String())
}

func TestShellExecutorMissingDirectory(t *testing.T) {
	skipWithoutPOSIXShell(t)
	missing := filepath.Join(t.TempDir(), "gone")

	err := NewShellExecutor().Run(context.Background(), Command{
		Script: "true",
		Dir:    missing,
		Shell:  true,
	})

	var spawnErr *SpawnError
	require.ErrorAs(t, err, &spawnErr)
	assert.Equal(t, missing, spawnErr.Dir)
}

func TestShellExecutorDirectMode(t *testing.T) {
	skipWithoutPOSIXShell(t)
	var stdout bytes.Buffer

	err := NewShellExecutor().Run(context.Background(), Command{
		Script: `echo "two words"`,
		Dir:    t.TempDir(),
		Stdout: &stdout,
	})
	require.NoError(t, err)
	assert.Equal(t, "two words\n", stdout.String())
}

func TestShellExecutorDirectModeMissingProgram(t *testing.T) {
	err := NewShellExecutor().Run(context.Background(), Command{
		Script: "definitely-not-a-real-installer",
		Dir:    t.TempDir(),
	})

	var spawnErr *SpawnError
	require.ErrorAs(t, err, &spawnErr)
}

func TestShellExecutorTimeout(t *testing.T) {
	skipWithoutPOSIXShell(t)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	err := NewShellExecutor().Run(ctx, Command{Script: "sleep 5", Dir: t.TempDir(), Shell: true})
	require.Error(t, err)
}
