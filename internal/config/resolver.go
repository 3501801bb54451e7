package config

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"time"

	"github.com/bmatcuk/doublestar/v4"
	"gopkg.in/yaml.v3"

	"github.com/kashifsb/envsetup/pkg/logger"
)

// PlatformKey is the reserved template key holding host facts.
const PlatformKey = "platform"

// Resolver loads configuration files and merges their includes.
type Resolver struct {
	expander  *Expander
	validator *Validator
	data      map[string]any
	log       *logger.ContextLogger
}

// Option configures a Resolver.
type Option func(*Resolver)

// WithEnviron replaces the environment snapshot exposed to templates.
func WithEnviron(environ func() []string) Option {
	return func(r *Resolver) {
		r.expander.Environ = environ
	}
}

// WithMaxPasses bounds template re-expansion.
func WithMaxPasses(n int) Option {
	return func(r *Resolver) {
		r.expander.MaxPasses = n
	}
}

// WithPlatform exposes host facts to templates under PlatformKey.
func WithPlatform(facts map[string]any) Option {
	return func(r *Resolver) {
		r.data[PlatformKey] = facts
	}
}

// WithTemplateData adds caller data to the template context.
func WithTemplateData(key string, value any) Option {
	return func(r *Resolver) {
		r.data[key] = value
	}
}

func NewResolver(opts ...Option) (*Resolver, error) {
	validator, err := NewValidator()
	if err != nil {
		return nil, err
	}

	r := &Resolver{
		expander:  NewExpander(),
		validator: validator,
		data:      make(map[string]any),
		log:       logger.Component("config"),
	}
	for _, opt := range opts {
		opt(r)
	}
	return r, nil
}

// Resolve resolves the file at path with a fresh visited set. Dependencies
// declared in the file run in the file's directory.
func (r *Resolver) Resolve(ctx context.Context, path string) (*ResolvedConfig, error) {
	start := time.Now()
	defer logger.LogDuration("resolve config", start, "path", path)

	abs, err := filepath.Abs(path)
	if err != nil {
		return nil, fmt.Errorf("resolve path %q: %w", path, err)
	}

	visited := NewVisited()
	cfg, err := r.ResolveFile(ctx, abs, filepath.Dir(abs), visited)
	if err != nil {
		return nil, err
	}
	cfg.Sources = visited.Paths()

	r.log.Info("Resolved config",
		"path", abs,
		"files", len(cfg.Sources),
		"systems", len(cfg.Systems),
		"dependencies", cfg.DependencyCount())
	return cfg, nil
}

// ResolveFile records path in visited, loads it and resolves its includes.
// cwd is the directory its dependencies run in and its include patterns
// are relative to.
func (r *Resolver) ResolveFile(ctx context.Context, path, cwd string, visited *Visited) (*ResolvedConfig, error) {
	visited.Add(path)
	return r.resolveFile(ctx, path, cwd, visited)
}

func (r *Resolver) resolveFile(ctx context.Context, path, cwd string, visited *Visited) (*ResolvedConfig, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	doc, err := r.Load(path)
	if err != nil {
		return nil, err
	}

	cfg, err := r.ResolveDocument(ctx, doc, cwd, visited)
	if err != nil {
		return nil, err
	}
	cfg.Path = path
	return cfg, nil
}

// ResolveDocument normalizes an already loaded document and merges every
// include not yet in visited.
func (r *Resolver) ResolveDocument(ctx context.Context, doc *Document, cwd string, visited *Visited) (*ResolvedConfig, error) {
	cfg := &ResolvedConfig{
		Name:        doc.Name,
		Autoinstall: doc.Autoinstall,
		Includes:    doc.Includes,
		Systems:     NormalizeSystems(doc.Systems, cwd),
	}

	includes, err := expandIncludes(doc.Includes, cwd)
	if err != nil {
		return nil, err
	}

	for _, include := range includes {
		if !visited.Add(include) {
			r.log.Debug("Skipping include already resolved", "include", include)
			continue
		}

		r.log.Debug("Resolving include", "include", include, "cwd", cwd)
		sub, err := r.resolveFile(ctx, include, filepath.Dir(include), visited)
		if err != nil {
			return nil, fmt.Errorf("include %s: %w", include, err)
		}
		MergeSystems(cfg.Systems, sub.Systems)
	}

	return cfg, nil
}

// Load reads, expands, validates and decodes a single file without
// touching its includes.
func (r *Resolver) Load(path string) (*Document, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config: %w", err)
	}
	return r.Parse(path, raw)
}

// Parse expands, validates and decodes file contents. path is only used in
// error messages.
func (r *Resolver) Parse(path string, raw []byte) (*Document, error) {
	expanded, err := r.expander.Expand(string(raw), r.data)
	if err != nil {
		var loopErr *TemplateNonTerminationError
		if errors.As(err, &loopErr) {
			loopErr.Path = path
			return nil, loopErr
		}
		return nil, fmt.Errorf("expand %s: %w", path, err)
	}

	var generic any
	if err := yaml.Unmarshal([]byte(expanded), &generic); err != nil {
		return nil, fmt.Errorf("parse %s: %w", path, err)
	}

	if err := r.validator.Validate(generic); err != nil {
		var validationErr *ValidationError
		if errors.As(err, &validationErr) {
			validationErr.Path = path
		}
		return nil, err
	}

	var doc Document
	if err := yaml.Unmarshal([]byte(expanded), &doc); err != nil {
		return nil, fmt.Errorf("decode %s: %w", path, err)
	}
	return &doc, nil
}

// expandIncludes evaluates include globs relative to cwd. Matches are
// absolute and sorted per pattern; duplicates across patterns are kept in
// first-seen order.
func expandIncludes(patterns []string, cwd string) ([]string, error) {
	var out []string
	seen := make(map[string]struct{})

	for _, pattern := range patterns {
		full := pattern
		if !filepath.IsAbs(full) {
			full = filepath.Join(cwd, pattern)
		}

		matches, err := doublestar.FilepathGlob(full, doublestar.WithFilesOnly())
		if err != nil {
			return nil, fmt.Errorf("expand include %q: %w", pattern, err)
		}
		if len(matches) == 0 {
			logger.Component("config").Debug("Include matched no files", "pattern", pattern, "cwd", cwd)
		}

		sort.Strings(matches)
		for _, match := range matches {
			abs, err := filepath.Abs(match)
			if err != nil {
				return nil, fmt.Errorf("expand include %q: %w", pattern, err)
			}
			if _, dup := seen[abs]; dup {
				continue
			}
			seen[abs] = struct{}{}
			out = append(out, abs)
		}
	}

	return out, nil
}
