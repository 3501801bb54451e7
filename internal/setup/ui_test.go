package setup

import (
	"context"
	"fmt"
	"sync"
	"testing"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kashifsb/envsetup/internal/install"
	"github.com/kashifsb/envsetup/internal/ui"
)

type chattyExecutor struct{}

func (chattyExecutor) Run(_ context.Context, cmd install.Command) error {
	fmt.Fprint(cmd.Stdout, "downloading sdk\r\nunpacking")
	fmt.Fprintln(cmd.Stderr, "warning: old python")
	fmt.Fprint(cmd.Stdout, " archive\ndone")
	return nil
}

func TestInteractiveRunnerStreamsOutput(t *testing.T) {
	opts, _, _ := testOptions(t, demoConfig, chattyExecutor{})
	opts.Headless = false
	opts.Systems = []string{"cloud"}
	opts.applyDefaults()

	ctx := context.Background()
	cfg, err := Resolve(ctx, opts)
	require.NoError(t, err)
	targets, err := selectTargets(cfg, opts.Systems)
	require.NoError(t, err)

	var (
		mu   sync.Mutex
		msgs []tea.Msg
	)
	send := func(msg tea.Msg) {
		mu.Lock()
		defer mu.Unlock()
		msgs = append(msgs, msg)
	}

	dispatcher := install.NewDispatcher(opts.Launcher)
	r, flush := newInteractiveRunner(cfg, opts, dispatcher, send)
	results, err := r.installDependencies(ctx, targets)
	require.NoError(t, err)
	flush()
	require.NoError(t, dispatcher.Wait())

	require.Len(t, results, 1)
	assert.Equal(t, install.StatusInstalled, results[0].Status)

	model := ui.NewModel("demo", steps(targets))
	model.Update(tea.WindowSizeMsg{Width: 100, Height: 40})
	var lines []string
	for _, msg := range msgs {
		if out, ok := msg.(ui.OutputMsg); ok {
			lines = append(lines, out.Line)
		}
		model.Update(msg)
	}

	assert.Equal(t, []string{"downloading sdk", "warning: old python", "unpacking archive", "done"}, lines)
	assert.Equal(t, lines, model.Output())
	assert.Contains(t, model.View(), "unpacking archive")
}
