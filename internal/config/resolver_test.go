package config

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func newTestResolver(t *testing.T, opts ...Option) *Resolver {
	t.Helper()
	opts = append([]Option{WithEnviron(fixedEnviron("TOOLS=/opt/tools"))}, opts...)
	r, err := NewResolver(opts...)
	require.NoError(t, err)
	return r
}

func TestResolveSingleFile(t *testing.T) {
	dir := t.TempDir()
	path := writeFile(t, dir, "envsetup.yaml", `
name: demo
autoinstall: true
systems:
  base:
    git: brew install git
    docs: https://example.com/setup
    tools:
      install: "ls {{ .env.TOOLS }}"
      sudo: true
`)

	cfg, err := newTestResolver(t).Resolve(context.Background(), path)
	require.NoError(t, err)

	assert.Equal(t, "demo", cfg.Name)
	assert.True(t, cfg.AutoinstallEnabled())
	assert.Equal(t, path, cfg.Path)
	assert.Equal(t, []string{path}, cfg.Sources)

	base := cfg.Systems["base"]
	assert.Equal(t, []string{"docs", "git", "tools"}, base.Names())
	assert.Equal(t, "ls /opt/tools", base["tools"].Install)
	assert.True(t, base["tools"].Sudo)
	assert.Equal(t, dir, base["git"].Cwd)
	assert.Equal(t, "git", base["git"].Name)
	assert.False(t, base["docs"].AutoinstallEnabled())
	assert.True(t, base["docs"].OpenEnabled())
}

func TestResolveIsIdempotent(t *testing.T) {
	dir := t.TempDir()
	path := writeFile(t, dir, "envsetup.yaml", `
includes: ["extra.yaml"]
systems:
  base:
    git: brew install git
`)
	writeFile(t, dir, "extra.yaml", "systems:\n  base:\n    jq: brew install jq\n")

	r := newTestResolver(t)
	first, err := r.Resolve(context.Background(), path)
	require.NoError(t, err)
	second, err := r.Resolve(context.Background(), path)
	require.NoError(t, err)

	assert.Equal(t, first, second)
}

func TestResolveIncludeOverridesRecord(t *testing.T) {
	dir := t.TempDir()
	path := writeFile(t, dir, "envsetup.yaml", `
name: root
includes: ["teams/*.yaml"]
systems:
  base:
    git:
      install: brew install git
      sudo: true
      resources: [https://git-scm.com]
    make: brew install make
`)
	writeFile(t, dir, "teams/platform.yaml", `
name: ignored
autoinstall: true
systems:
  base:
    git: apt-get install -y git
  cloud:
    gcloud: https://cloud.google.com/sdk/docs/install
`)

	cfg, err := newTestResolver(t).Resolve(context.Background(), path)
	require.NoError(t, err)

	assert.Equal(t, "root", cfg.Name)
	assert.False(t, cfg.AutoinstallEnabled())
	assert.Equal(t, []string{"teams/*.yaml"}, cfg.Includes)

	git := cfg.Systems["base"]["git"]
	assert.Equal(t, "apt-get install -y git", git.Install)
	assert.False(t, git.Sudo)
	assert.Empty(t, git.Resources)
	assert.Equal(t, filepath.Join(dir, "teams"), git.Cwd)

	assert.Equal(t, dir, cfg.Systems["base"]["make"].Cwd)
	assert.Equal(t, []string{"base", "cloud"}, cfg.SystemNames())
}

func TestResolveDoublestarIncludes(t *testing.T) {
	dir := t.TempDir()
	path := writeFile(t, dir, "envsetup.yaml", "includes: [\"deps/**/*.yaml\"]\nsystems: {}\n")
	writeFile(t, dir, "deps/a.yaml", "systems:\n  base:\n    a: echo a\n")
	writeFile(t, dir, "deps/nested/deeper/b.yaml", "systems:\n  base:\n    b: echo b\n")
	writeFile(t, dir, "deps/nested/ignored.txt", "not yaml: [")

	cfg, err := newTestResolver(t).Resolve(context.Background(), path)
	require.NoError(t, err)

	assert.Equal(t, []string{"a", "b"}, cfg.Systems["base"].Names())
	assert.Equal(t, filepath.Join(dir, "deps", "nested", "deeper"), cfg.Systems["base"]["b"].Cwd)
	assert.Len(t, cfg.Sources, 3)
}

func TestResolveIncludeCyclesAndDiamonds(t *testing.T) {
	dir := t.TempDir()
	path := writeFile(t, dir, "a.yaml", `
includes: [b.yaml, c.yaml]
systems:
  base:
    a: echo a
`)
	writeFile(t, dir, "b.yaml", `
includes: [c.yaml, a.yaml]
systems:
  base:
    b: echo b
`)
	writeFile(t, dir, "c.yaml", `
includes: [a.yaml]
systems:
  base:
    c: echo c
`)

	cfg, err := newTestResolver(t).Resolve(context.Background(), path)
	require.NoError(t, err)

	assert.Equal(t, []string{"a", "b", "c"}, cfg.Systems["base"].Names())
	assert.Equal(t, []string{
		filepath.Join(dir, "a.yaml"),
		filepath.Join(dir, "b.yaml"),
		filepath.Join(dir, "c.yaml"),
	}, cfg.Sources)
}

func TestResolveIncludeMatchingNothing(t *testing.T) {
	dir := t.TempDir()
	path := writeFile(t, dir, "envsetup.yaml", "includes: [\"missing/*.yaml\"]\nsystems:\n  base: {}\n")

	cfg, err := newTestResolver(t).Resolve(context.Background(), path)
	require.NoError(t, err)
	assert.Contains(t, cfg.Systems, "base")
}

func TestResolveValidationErrorInInclude(t *testing.T) {
	dir := t.TempDir()
	path := writeFile(t, dir, "envsetup.yaml", "includes: [bad.yaml]\nsystems: {}\n")
	bad := writeFile(t, dir, "bad.yaml", "systems:\n  base:\n    tool:\n      sudo: sometimes\n")

	_, err := newTestResolver(t).Resolve(context.Background(), path)
	require.Error(t, err)

	var validationErr *ValidationError
	require.True(t, errors.As(err, &validationErr))
	assert.Equal(t, bad, validationErr.Path)
	assert.Contains(t, err.Error(), "/systems/base/tool/sudo")
}

func TestResolveTemplateNonTermination(t *testing.T) {
	dir := t.TempDir()
	path := writeFile(t, dir, "envsetup.yaml", "grow: \"x{{ .grow }}\"\nsystems: {}\n")

	_, err := newTestResolver(t, WithMaxPasses(3)).Resolve(context.Background(), path)
	require.Error(t, err)

	var loopErr *TemplateNonTerminationError
	require.True(t, errors.As(err, &loopErr))
	assert.Equal(t, path, loopErr.Path)
	assert.Equal(t, 3, loopErr.Passes)
}

func TestResolveAbsentSystems(t *testing.T) {
	dir := t.TempDir()
	path := writeFile(t, dir, "envsetup.yaml", `
systems:
  linux:
  darwin: {}
  base:
    skipped:
`)

	cfg, err := newTestResolver(t).Resolve(context.Background(), path)
	require.NoError(t, err)

	assert.Equal(t, []string{"base", "darwin"}, cfg.SystemNames())
	assert.Empty(t, cfg.Systems["base"])
	assert.Zero(t, cfg.DependencyCount())
}

func TestResolvePlatformFacts(t *testing.T) {
	dir := t.TempDir()
	path := writeFile(t, dir, "envsetup.yaml", `
systems:
  base:
    pkg: "install-{{ .platform.os }}-{{ .platform.arch }}"
`)

	r := newTestResolver(t, WithPlatform(map[string]any{"os": "linux", "arch": "arm64"}))
	cfg, err := r.Resolve(context.Background(), path)
	require.NoError(t, err)

	assert.Equal(t, "install-linux-arm64", cfg.Systems["base"]["pkg"].Install)
}

func TestResolveMissingFile(t *testing.T) {
	_, err := newTestResolver(t).Resolve(context.Background(), filepath.Join(t.TempDir(), "nope.yaml"))
	require.Error(t, err)
	assert.ErrorIs(t, err, os.ErrNotExist)
}

func TestResolveCanceledContext(t *testing.T) {
	dir := t.TempDir()
	path := writeFile(t, dir, "envsetup.yaml", "systems: {}\n")

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := newTestResolver(t).Resolve(ctx, path)
	assert.ErrorIs(t, err, context.Canceled)
}

func TestResolveDocumentSharesVisited(t *testing.T) {
	dir := t.TempDir()
	shared := writeFile(t, dir, "shared.yaml", "systems:\n  base:\n    jq: brew install jq\n")

	visited := NewVisited()
	visited.Add(shared)

	doc := &Document{
		Name:     "inline",
		Includes: []string{"shared.yaml"},
		Systems:  map[string]System{"base": {"git": Shorthand("brew install git")}},
	}

	cfg, err := newTestResolver(t).ResolveDocument(context.Background(), doc, dir, visited)
	require.NoError(t, err)

	assert.Equal(t, []string{"git"}, cfg.Systems["base"].Names())
	assert.Empty(t, cfg.Path)
}
