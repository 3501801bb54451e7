package main

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kashifsb/envsetup/internal/install"
	"github.com/kashifsb/envsetup/pkg/logger"
)

func TestExitCode(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want int
	}{
		{"spawn", fmt.Errorf("install base/git: %w", &install.SpawnError{Program: "brew", Err: errors.New("not found")}), 127},
		{"timeout", fmt.Errorf("resolve: %w", context.DeadlineExceeded), 124},
		{"permission", fmt.Errorf("write report: %w", os.ErrPermission), 126},
		{"interrupted", context.Canceled, 130},
		{"general", errors.New("invalid config"), 1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, exitCode(tt.err))
		})
	}
}

func execute(t *testing.T, args ...string) (string, error) {
	t.Helper()
	t.Cleanup(logger.SetTestMode)

	var out bytes.Buffer
	cmd := newRootCmd(context.Background())
	cmd.SetOut(&out)
	cmd.SetErr(&bytes.Buffer{})
	cmd.SetArgs(append(args, "--settings", writeSettings(t)))
	err := cmd.Execute()
	return out.String(), err
}

func writeSettings(t *testing.T) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "settings.yaml")
	require.NoError(t, os.WriteFile(path, []byte("no-open: true\n"), 0o644))
	return path
}

func TestInitThenValidateAndList(t *testing.T) {
	dir := t.TempDir()

	out, err := execute(t, "init", dir, "--starter", "go", "--name", "demo")
	require.NoError(t, err)
	assert.Contains(t, out, "Created")

	configPath := filepath.Join(dir, "envsetup.yaml")

	out, err = execute(t, "validate", "--config", configPath)
	require.NoError(t, err)
	assert.Contains(t, out, "name: demo")
	assert.Contains(t, out, "gopls")

	out, err = execute(t, "list", "-c", configPath)
	require.NoError(t, err)
	assert.Regexp(t, `gopls\s+auto`, out)
	assert.Regexp(t, `(?m)^  go\s+link`, out)
}

func TestInitListStarters(t *testing.T) {
	out, err := execute(t, "init", "--list")
	require.NoError(t, err)
	assert.Contains(t, out, "minimal")
}

func TestHeadlessInstallWithNothingToRun(t *testing.T) {
	dir := t.TempDir()
	configPath := filepath.Join(dir, "envsetup.yaml")
	require.NoError(t, os.WriteFile(configPath, []byte(`
name: manual-only
systems:
  base:
    vpn:
      instructions: ask IT for a VPN profile
`), 0o644))
	reportPath := filepath.Join(dir, "report.md")

	out, err := execute(t, "install", "-c", configPath, "--headless", "--report", reportPath)
	require.NoError(t, err)
	assert.Contains(t, out, "### ➜ vpn")
	assert.Contains(t, out, "ask IT for a VPN profile")
	assert.FileExists(t, reportPath)
}

func TestMissingSettingsFileFails(t *testing.T) {
	cmd := newRootCmd(context.Background())
	cmd.SetOut(&bytes.Buffer{})
	cmd.SetErr(&bytes.Buffer{})
	cmd.SetArgs([]string{"list", "--settings", filepath.Join(t.TempDir(), "absent.yaml")})
	t.Cleanup(logger.SetTestMode)

	err := cmd.Execute()
	assert.ErrorContains(t, err, "read settings")
}
