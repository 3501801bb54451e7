package setup

import (
	"context"
	"fmt"
	"io"
	"strings"

	"golang.org/x/sync/errgroup"

	"github.com/kashifsb/envsetup/internal/config"
	"github.com/kashifsb/envsetup/internal/install"
	"github.com/kashifsb/envsetup/internal/report"
	"github.com/kashifsb/envsetup/pkg/logger"
)

// Target is one dependency selected for a run.
type Target struct {
	System     string
	Dependency config.ResolvedDependency
}

// Key identifies a target within a run.
func (t Target) Key() string {
	return t.System + "/" + t.Dependency.Name
}

// Result is the outcome of one target.
type Result struct {
	System     string
	Dependency string
	Status     install.Status
	Reason     install.Reason
	Report     *report.Report
	Err        error
}

// hooks observe installs as they start and finish. Either may be nil.
type hooks struct {
	started  func(key string)
	finished func(key string, result Result)
}

// selectTargets lists the dependencies of the requested systems, or of
// every system when none are requested, sorted by system then name.
func selectTargets(cfg *config.ResolvedConfig, systems []string) ([]Target, error) {
	names := cfg.SystemNames()
	if len(systems) > 0 {
		for _, name := range systems {
			if _, ok := cfg.Systems[name]; !ok {
				return nil, fmt.Errorf("unknown system %q (available: %s)", name, strings.Join(names, ", "))
			}
		}
		names = dedupe(systems)
	}

	var targets []Target
	for _, name := range names {
		system := cfg.Systems[name]
		for _, depName := range system.Names() {
			targets = append(targets, Target{System: name, Dependency: system[depName]})
		}
	}
	return targets, nil
}

// runner carries what every install of one run shares.
type runner struct {
	cfg        *config.ResolvedConfig
	opts       Options
	progress   install.Progress
	dispatcher *install.Dispatcher
	stdin      io.Reader
	stdout     io.Writer
	stderr     io.Writer
	hooks      hooks
}

// installDependencies runs one orchestrator per target, at most Jobs at a
// time. A spawn failure stops new installs and is returned; results are in
// target order whatever the completion order.
func (r *runner) installDependencies(ctx context.Context, targets []Target) ([]Result, error) {
	cfg, opts, h := r.cfg, r.opts, r.hooks
	results := make([]Result, len(targets))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(opts.Jobs)

	for i, target := range targets {
		g.Go(func() error {
			o := install.New(cfg, target.Dependency,
				install.WithExecutor(opts.Executor),
				install.WithDispatcher(r.dispatcher),
				install.WithProgress(r.progress),
				install.WithOutput(r.stdin, r.stdout, r.stderr),
				install.WithOpenLinks(!opts.NoOpen),
				install.WithTimeout(opts.Timeout),
			)

			result := Result{
				System:     target.System,
				Dependency: target.Dependency.Name,
				Reason:     install.Decide(target.Dependency, cfg.AutoinstallEnabled()).Reason,
				Report:     o.Report(),
			}

			if err := gctx.Err(); err != nil {
				result.Status = o.Status()
				result.Err = err
				results[i] = result
				return nil
			}

			if h.started != nil {
				h.started(target.Key())
			}
			logger.Debug("Installing dependency", "system", target.System, "dependency", target.Dependency.Name)

			err := o.Run(gctx)
			result.Status = o.Status()
			result.Err = o.Err()
			results[i] = result

			if h.finished != nil {
				h.finished(target.Key(), result)
			}
			if err != nil {
				return fmt.Errorf("install %s: %w", target.Key(), err)
			}
			return nil
		})
	}

	err := g.Wait()
	return results, err
}

// buildDocument files every result under its system.
func buildDocument(cfg *config.ResolvedConfig, results []Result) *report.Document {
	doc := report.NewDocument(cfg.Name)
	for _, result := range results {
		doc.Add(result.System, result.Report)
	}
	return doc
}

func dedupe(names []string) []string {
	seen := make(map[string]struct{}, len(names))
	out := make([]string, 0, len(names))
	for _, name := range names {
		if _, ok := seen[name]; ok {
			continue
		}
		seen[name] = struct{}{}
		out = append(out, name)
	}
	return out
}
