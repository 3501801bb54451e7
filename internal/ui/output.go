package ui

import (
	"bytes"
	"strings"
	"sync"

	tea "github.com/charmbracelet/bubbletea"
)

// OutputMsg carries one line written by a running install command.
type OutputMsg struct {
	Line string
}

// LineWriter forwards command output to the view one line at a time.
// Installs running in parallel may share a LineWriter.
type LineWriter struct {
	mu   sync.Mutex
	send func(tea.Msg)
	buf  []byte
}

// NewLineWriter returns a writer delivering every complete line to send,
// usually (*tea.Program).Send.
func NewLineWriter(send func(tea.Msg)) *LineWriter {
	return &LineWriter{send: send}
}

func (w *LineWriter) Write(p []byte) (int, error) {
	w.mu.Lock()
	defer w.mu.Unlock()

	w.buf = append(w.buf, p...)
	for {
		i := bytes.IndexByte(w.buf, '\n')
		if i < 0 {
			break
		}
		line := strings.TrimRight(string(w.buf[:i]), "\r")
		w.buf = w.buf[i+1:]
		w.send(OutputMsg{Line: line})
	}
	return len(p), nil
}

// Flush delivers a trailing line that has no newline.
func (w *LineWriter) Flush() {
	w.mu.Lock()
	defer w.mu.Unlock()

	if len(w.buf) == 0 {
		return
	}
	w.send(OutputMsg{Line: strings.TrimRight(string(w.buf), "\r")})
	w.buf = nil
}
