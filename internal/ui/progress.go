package ui

import (
	"fmt"
	"io"
	"sync"
)

// ConsoleProgress prints one styled line per install update. It is safe
// for concurrent use by several installs.
type ConsoleProgress struct {
	mu  sync.Mutex
	out io.Writer
}

func NewConsoleProgress(out io.Writer) *ConsoleProgress {
	return &ConsoleProgress{out: out}
}

func (p *ConsoleProgress) Info(msg string) {
	p.print(StatusInfo, infoStyle.Render(msg))
}

func (p *ConsoleProgress) Succeed(msg string) {
	p.print(StatusInstalled, successStyle.Render(msg))
}

func (p *ConsoleProgress) Fail(msg string) {
	p.print(StatusFailed, errorStyle.Render(msg))
}

func (p *ConsoleProgress) Warn(msg string) {
	p.print(StatusWarning, warningStyle.Render(msg))
}

func (p *ConsoleProgress) print(status, msg string) {
	p.mu.Lock()
	defer p.mu.Unlock()
	fmt.Fprintf(p.out, "%s %s\n", StatusIndicator(status), msg)
}
