// Package report collects the narrative produced while installing one
// dependency and renders it, and whole runs, as Markdown.
package report

import (
	"strings"
	"sync"
)

// Report is the sink one install writes its narrative into. It is safe for
// concurrent use, although a single install writes to it sequentially.
type Report struct {
	mu     sync.Mutex
	name   string
	header string
	intro  string
	infos  []string
	errors []string
}

func New(name string) *Report {
	return &Report{name: name}
}

func (r *Report) Name() string {
	return r.name
}

func (r *Report) SetHeader(header string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.header = header
}

func (r *Report) Header() string {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.header
}

func (r *Report) SetIntro(intro string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.intro = intro
}

func (r *Report) Intro() string {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.intro
}

// AddInfo appends a Markdown block to the body.
func (r *Report) AddInfo(block string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.infos = append(r.infos, block)
}

// AddError appends an error block, rendered fenced under the errors heading.
func (r *Report) AddError(block string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.errors = append(r.errors, block)
}

func (r *Report) Infos() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]string(nil), r.infos...)
}

func (r *Report) Errors() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]string(nil), r.errors...)
}

// Markdown renders header, intro, info blocks and errors in that order,
// separated by blank lines. Empty parts are left out.
func (r *Report) Markdown() string {
	r.mu.Lock()
	defer r.mu.Unlock()

	var blocks []string
	if r.header != "" {
		blocks = append(blocks, r.header)
	}
	if r.intro != "" {
		blocks = append(blocks, r.intro)
	}
	blocks = append(blocks, r.infos...)
	if len(r.errors) > 0 {
		blocks = append(blocks, "#### Errors")
		for _, e := range r.errors {
			blocks = append(blocks, Fence("", e))
		}
	}
	return strings.Join(blocks, "\n\n")
}

// Fence wraps body in a fenced code block tagged with lang.
func Fence(lang, body string) string {
	return "```" + lang + "\n" + strings.TrimRight(body, "\n") + "\n```"
}
