package setup

import (
	"context"
	"fmt"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/kashifsb/envsetup/internal/config"
	"github.com/kashifsb/envsetup/internal/install"
	"github.com/kashifsb/envsetup/internal/ui"
	"github.com/kashifsb/envsetup/pkg/utils"
)

// RunInteractive installs targets behind a full screen view that follows
// progress and then shows the report. Quitting the view early cancels the
// remaining installs.
func RunInteractive(ctx context.Context, cfg *config.ResolvedConfig, targets []Target, opts Options, dispatcher *install.Dispatcher) ([]Result, string, error) {
	opts.applyDefaults()

	model := ui.NewModel(title(cfg), steps(targets))
	p := tea.NewProgram(
		model,
		tea.WithAltScreen(),
		tea.WithMouseCellMotion(),
		tea.WithInput(opts.Stdin),
		tea.WithOutput(opts.Stdout),
	)

	runCtx, cancel := context.WithCancel(ctx)
	defer cancel()

	r, flush := newInteractiveRunner(cfg, opts, dispatcher, p.Send)

	var (
		results  []Result
		markdown string
		runErr   error
	)
	done := make(chan struct{})
	go func() {
		defer close(done)
		results, runErr = r.installDependencies(runCtx, targets)
		flush()
		markdown = buildDocument(cfg, results).Markdown()
		p.Send(ui.RunCompleteMsg{Report: markdown, Err: runErr})
	}()

	go func() {
		select {
		case <-ctx.Done():
			p.Send(ui.ShutdownMsg{})
		case <-done:
		}
	}()

	_, err := p.Run()
	cancel()
	<-done

	if err != nil {
		return results, markdown, fmt.Errorf("run interactive view: %w", err)
	}
	return results, markdown, runErr
}

// newInteractiveRunner returns a runner reporting to the view through send.
// Command output reaches the view line by line; the returned func delivers
// any unterminated last line. Commands get no stdin since the view owns the
// terminal.
func newInteractiveRunner(cfg *config.ResolvedConfig, opts Options, dispatcher *install.Dispatcher, send func(tea.Msg)) (*runner, func()) {
	stdout := ui.NewLineWriter(send)
	stderr := ui.NewLineWriter(send)

	r := &runner{
		cfg:        cfg,
		opts:       opts,
		progress:   install.NopProgress{},
		dispatcher: dispatcher,
		stdout:     stdout,
		stderr:     stderr,
		hooks: hooks{
			started: func(key string) {
				send(ui.StepStartedMsg{Key: key})
			},
			finished: func(key string, result Result) {
				send(ui.StepFinishedMsg{Key: key, Status: result.Status.String(), Detail: stepDetail(result)})
			},
		},
	}
	return r, func() {
		stdout.Flush()
		stderr.Flush()
	}
}

func steps(targets []Target) []ui.Step {
	out := make([]ui.Step, len(targets))
	for i, target := range targets {
		out[i] = ui.Step{Key: target.Key(), System: target.System, Name: target.Dependency.Name}
	}
	return out
}

func title(cfg *config.ResolvedConfig) string {
	if cfg.Name != "" {
		return cfg.Name
	}
	return "envsetup"
}

// stepDetail is the short note shown next to a finished step.
func stepDetail(result Result) string {
	switch {
	case result.Err != nil:
		return utils.TruncateString(utils.FirstLine(result.Err.Error()), 60)
	case result.Status == install.StatusNotInstalled:
		return string(result.Reason)
	default:
		return ""
	}
}
