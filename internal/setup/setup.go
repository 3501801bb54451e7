// Package setup runs envsetup over a resolved configuration: it selects
// dependencies, installs them, and renders the run report.
package setup

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/kashifsb/envsetup/internal/config"
	"github.com/kashifsb/envsetup/internal/install"
	"github.com/kashifsb/envsetup/internal/platform"
	"github.com/kashifsb/envsetup/internal/ui"
	"github.com/kashifsb/envsetup/pkg/logger"
	"github.com/kashifsb/envsetup/pkg/utils"
)

// Summary is the outcome of a run.
type Summary struct {
	Config   *config.ResolvedConfig
	Results  []Result
	Markdown string
}

// Count returns how many results ended in status.
func (s *Summary) Count(status install.Status) int {
	n := 0
	for _, result := range s.Results {
		if result.Status == status {
			n++
		}
	}
	return n
}

// Run resolves the configuration and installs every selected dependency.
// A returned error means the run could not complete: the configuration
// did not resolve or an install command could not be started. The summary
// is returned alongside a start failure so the partial report survives.
func Run(ctx context.Context, opts Options) (*Summary, error) {
	opts.applyDefaults()
	start := time.Now()

	cfg, err := Resolve(ctx, opts)
	if err != nil {
		return nil, err
	}

	targets, err := selectTargets(cfg, opts.Systems)
	if err != nil {
		return nil, err
	}

	logger.Info("Installing dependencies",
		"config", cfg.Path,
		"systems", len(cfg.Systems),
		"dependencies", len(targets),
		"autoinstall", cfg.AutoinstallEnabled(),
		"jobs", opts.Jobs)

	dispatcher := install.NewDispatcher(opts.Launcher)

	var (
		results  []Result
		markdown string
		runErr   error
	)
	if opts.Headless {
		r := &runner{
			cfg:        cfg,
			opts:       opts,
			progress:   ui.NewConsoleProgress(opts.Stderr),
			dispatcher: dispatcher,
			stdin:      opts.Stdin,
			stdout:     opts.Stdout,
			stderr:     opts.Stderr,
		}
		results, runErr = r.installDependencies(ctx, targets)
		markdown = buildDocument(cfg, results).Markdown()
		fmt.Fprint(opts.Stdout, markdown)
	} else {
		results, markdown, runErr = RunInteractive(ctx, cfg, targets, opts, dispatcher)
	}

	summary := &Summary{Config: cfg, Results: results, Markdown: markdown}

	if opts.ReportPath != "" {
		if err := writeReport(opts.ReportPath, markdown); err != nil {
			return summary, err
		}
		logger.Info("Wrote report", "path", opts.ReportPath)
	}

	if err := dispatcher.Wait(); err != nil {
		logger.Warn("Some links could not be opened", "error", err)
	}

	logger.Info("Finished",
		"installed", summary.Count(install.StatusInstalled),
		"failed", summary.Count(install.StatusFailed),
		"not_installed", summary.Count(install.StatusNotInstalled),
		"duration", utils.FormatDuration(time.Since(start)))

	return summary, runErr
}

// Resolve resolves the configured file with host facts available to its
// templates.
func Resolve(ctx context.Context, opts Options) (*config.ResolvedConfig, error) {
	opts.applyDefaults()

	if !utils.FileExists(opts.ConfigPath) {
		return nil, fmt.Errorf("config file %s not found (run 'envsetup init' to create one)", opts.ConfigPath)
	}

	facts := platform.Detect(ctx)
	resolver, err := config.NewResolver(
		config.WithEnviron(opts.Environ),
		config.WithPlatform(facts.TemplateData()),
	)
	if err != nil {
		return nil, fmt.Errorf("create resolver: %w", err)
	}

	cfg, err := resolver.Resolve(ctx, opts.ConfigPath)
	if err != nil {
		return nil, fmt.Errorf("resolve config: %w", err)
	}
	return cfg, nil
}

func writeReport(path, markdown string) error {
	if err := utils.EnsureDir(filepath.Dir(path)); err != nil {
		return fmt.Errorf("create report directory: %w", err)
	}
	if err := os.WriteFile(path, []byte(markdown), 0o644); err != nil {
		return fmt.Errorf("write report: %w", err)
	}
	return nil
}
