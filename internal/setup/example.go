package setup

import (
	"bytes"
	"embed"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"runtime"
	"sort"
	"text/template"

	"github.com/kashifsb/envsetup/internal/config"
	"github.com/kashifsb/envsetup/internal/platform"
	"github.com/kashifsb/envsetup/pkg/logger"
	"github.com/kashifsb/envsetup/pkg/utils"
)

//go:embed templates/*.tmpl
var templates embed.FS

// Starter is a scaffold for a new dependency file.
type Starter struct {
	Name        string
	Description string
	Template    string
}

// StarterData is passed to starter templates. Starters use [[ ]] as
// delimiters so the {{ }} expressions meant for envsetup survive.
type StarterData struct {
	Name     string
	Platform string
}

// StarterManager writes starter dependency files.
type StarterManager struct {
	starters map[string]Starter
}

func NewStarterManager() *StarterManager {
	return &StarterManager{
		starters: map[string]Starter{
			"minimal": {
				Name:        "minimal",
				Description: "One system with a command, a link and a manual step",
				Template:    "templates/minimal.yaml.tmpl",
			},
			"node": {
				Name:        "node",
				Description: "Node.js toolchain through nvm and pnpm",
				Template:    "templates/node.yaml.tmpl",
			},
			"go": {
				Name:        "go",
				Description: "Go toolchain and common linters",
				Template:    "templates/go.yaml.tmpl",
			},
		},
	}
}

// Starters returns the starters sorted by name.
func (sm *StarterManager) Starters() []Starter {
	out := make([]Starter, 0, len(sm.starters))
	for _, starter := range sm.starters {
		out = append(out, starter)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out
}

func (sm *StarterManager) ListStarters(w io.Writer) {
	fmt.Fprintln(w, "📚 Available starters:")
	fmt.Fprintln(w)
	for _, starter := range sm.Starters() {
		fmt.Fprintf(w, "  🔹 %s\n", starter.Name)
		fmt.Fprintf(w, "     %s\n", starter.Description)
	}
}

// Create renders starter into dir/envsetup.yaml and returns the written
// path. An existing file is only replaced when force is set. The rendered
// file is parsed before it is written.
func (sm *StarterManager) Create(dir, starter, name string, force bool) (string, error) {
	s, ok := sm.starters[starter]
	if !ok {
		return "", fmt.Errorf("starter %q not supported", starter)
	}

	target := filepath.Join(dir, DefaultConfigFile)
	if utils.FileExists(target) && !force {
		return "", fmt.Errorf("%s already exists (use --force to overwrite)", target)
	}

	if name == "" {
		abs, err := filepath.Abs(dir)
		if err != nil {
			return "", fmt.Errorf("resolve directory: %w", err)
		}
		name = filepath.Base(abs)
	}

	content, err := sm.render(s, StarterData{Name: name, Platform: runtime.GOOS})
	if err != nil {
		return "", err
	}

	facts := platform.Facts{OS: runtime.GOOS, Arch: runtime.GOARCH}
	resolver, err := config.NewResolver(config.WithPlatform(facts.TemplateData()))
	if err != nil {
		return "", fmt.Errorf("create resolver: %w", err)
	}
	if _, err := resolver.Parse(target, content); err != nil {
		return "", fmt.Errorf("starter %s is invalid: %w", starter, err)
	}

	if err := utils.EnsureDir(dir); err != nil {
		return "", fmt.Errorf("create directory: %w", err)
	}
	if err := os.WriteFile(target, content, 0o644); err != nil {
		return "", fmt.Errorf("write %s: %w", target, err)
	}

	logger.Info("Created dependency file", "path", target, "starter", starter)
	return target, nil
}

func (sm *StarterManager) render(s Starter, data StarterData) ([]byte, error) {
	raw, err := templates.ReadFile(s.Template)
	if err != nil {
		return nil, fmt.Errorf("read starter template: %w", err)
	}

	tmpl, err := template.New(s.Name).Delims("[[", "]]").Parse(string(raw))
	if err != nil {
		return nil, fmt.Errorf("parse starter template: %w", err)
	}

	var buf bytes.Buffer
	if err := tmpl.Execute(&buf, data); err != nil {
		return nil, fmt.Errorf("execute starter template: %w", err)
	}
	return buf.Bytes(), nil
}
