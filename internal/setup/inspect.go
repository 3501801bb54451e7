package setup

import (
	"context"
	"fmt"
	"io"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/kashifsb/envsetup/internal/config"
	"github.com/kashifsb/envsetup/internal/install"
	"github.com/kashifsb/envsetup/pkg/utils"
)

// Action is what a run would do with a dependency.
type Action string

const (
	ActionAuto   Action = "auto"
	ActionSudo   Action = "sudo"
	ActionManual Action = "manual"
	ActionLink   Action = "link"
)

// ActionFor classifies dep under the global autoinstall flag.
func ActionFor(dep config.ResolvedDependency, globalAutoinstall bool) Action {
	plan := install.Decide(dep, globalAutoinstall)
	switch {
	case plan.Run:
		return ActionAuto
	case plan.Reason == install.ReasonSudo:
		return ActionSudo
	case plan.Reason == install.ReasonNoCommand && len(dep.Resources) > 0:
		return ActionLink
	default:
		return ActionManual
	}
}

// Validate resolves the configuration and writes the files it was built
// from followed by the resolved configuration as YAML.
func Validate(ctx context.Context, opts Options, w io.Writer) (*config.ResolvedConfig, error) {
	cfg, err := Resolve(ctx, opts)
	if err != nil {
		return nil, err
	}

	fmt.Fprintf(w, "# %s is valid\n", cfg.Path)
	fmt.Fprintln(w, "# sources:")
	for _, source := range cfg.Sources {
		fmt.Fprintf(w, "#   %s\n", source)
	}

	enc := yaml.NewEncoder(w)
	enc.SetIndent(2)
	if err := enc.Encode(cfg); err != nil {
		return nil, fmt.Errorf("encode resolved config: %w", err)
	}
	if err := enc.Close(); err != nil {
		return nil, fmt.Errorf("encode resolved config: %w", err)
	}
	return cfg, nil
}

// List writes one line per dependency with the action a run would take.
func List(ctx context.Context, opts Options, w io.Writer) (*config.ResolvedConfig, error) {
	cfg, err := Resolve(ctx, opts)
	if err != nil {
		return nil, err
	}

	targets, err := selectTargets(cfg, opts.Systems)
	if err != nil {
		return nil, err
	}

	global := cfg.AutoinstallEnabled()
	system := ""
	for _, target := range targets {
		if target.System != system {
			system = target.System
			fmt.Fprintf(w, "%s:\n", system)
		}
		dep := target.Dependency
		line := fmt.Sprintf("  %-24s %-7s", dep.Name, ActionFor(dep, global))
		if dep.Description != "" {
			line += " " + dep.Description
		}
		fmt.Fprintln(w, strings.TrimRight(line, " "))
	}
	if len(targets) == 0 {
		fmt.Fprintln(w, "no dependencies")
		return cfg, nil
	}

	auto := 0
	for _, target := range targets {
		if ActionFor(target.Dependency, global) == ActionAuto {
			auto++
		}
	}
	fmt.Fprintf(w, "\n%d %s, %d installed automatically\n",
		len(targets), utils.Plural(len(targets), "dependency", "dependencies"), auto)
	return cfg, nil
}
