package config

import (
	"bytes"
	"fmt"
	"os"
	"strings"
	"text/template"

	"github.com/Masterminds/sprig/v3"
	"gopkg.in/yaml.v3"
)

const (
	// DefaultMaxPasses bounds template re-expansion.
	DefaultMaxPasses = 16

	// EnvKey is the reserved template key holding environment variables.
	EnvKey = "env"

	// noValue is what text/template prints for an absent map key.
	noValue = "<no value>"
)

// Expander renders a document as a template until the output stops
// changing.
type Expander struct {
	// MaxPasses is the number of renders allowed before giving up.
	MaxPasses int
	// Environ returns the environment as KEY=VALUE pairs. Defaults to
	// os.Environ.
	Environ func() []string
}

// NewExpander returns an Expander reading the process environment.
func NewExpander() *Expander {
	return &Expander{MaxPasses: DefaultMaxPasses, Environ: os.Environ}
}

// Expand renders text against data, a permissive parse of text itself and
// the environment under EnvKey, repeating until a render returns its input.
// Later sources win on key collisions.
func (e *Expander) Expand(text string, data map[string]any) (string, error) {
	env := EnvMap(e.environ())
	funcs := templateFuncs(env)

	current := text
	for pass := 1; pass <= e.maxPasses(); pass++ {
		out, err := render(current, funcs, templateContext(current, data, env))
		if err != nil {
			return "", fmt.Errorf("expand template (pass %d): %w", pass, err)
		}
		if out == current {
			return out, nil
		}
		current = out
	}

	return "", &TemplateNonTerminationError{Passes: e.maxPasses()}
}

func (e *Expander) maxPasses() int {
	if e.MaxPasses <= 0 {
		return DefaultMaxPasses
	}
	return e.MaxPasses
}

func (e *Expander) environ() []string {
	if e.Environ == nil {
		return os.Environ()
	}
	return e.Environ()
}

func render(text string, funcs template.FuncMap, ctx map[string]any) (string, error) {
	tmpl, err := template.New("config").
		Funcs(funcs).
		Option("missingkey=zero").
		Parse(text)
	if err != nil {
		return "", err
	}

	var buf bytes.Buffer
	if err := tmpl.Execute(&buf, ctx); err != nil {
		return "", err
	}
	// Missing fields render empty, like missing environment variables.
	return strings.ReplaceAll(buf.String(), noValue, ""), nil
}

// templateContext merges caller data, the document's own fields and the
// environment. The document parse is only a substitution source; text that
// does not parse simply contributes nothing.
func templateContext(text string, data map[string]any, env map[string]string) map[string]any {
	ctx := make(map[string]any, len(data)+8)
	for key, value := range data {
		ctx[key] = value
	}

	var doc map[string]any
	if err := yaml.Unmarshal([]byte(text), &doc); err == nil {
		for key, value := range doc {
			ctx[key] = value
		}
	}

	ctx[EnvKey] = env
	return ctx
}

// templateFuncs is the sprig function map with the environment functions
// bound to the same snapshot the templates see under .env.
func templateFuncs(env map[string]string) template.FuncMap {
	funcs := sprig.TxtFuncMap()
	funcs["env"] = func(key string) string {
		return env[key]
	}
	funcs["expandenv"] = func(s string) string {
		return os.Expand(s, func(key string) string { return env[key] })
	}
	return funcs
}

// EnvMap converts KEY=VALUE pairs into a map. Malformed entries are
// skipped.
func EnvMap(environ []string) map[string]string {
	env := make(map[string]string, len(environ))
	for _, entry := range environ {
		if key, value, ok := strings.Cut(entry, "="); ok && key != "" {
			env[key] = value
		}
	}
	return env
}
