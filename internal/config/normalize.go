package config

import (
	"regexp"
	"slices"
)

var urlPattern = regexp.MustCompile(`^https?://`)

// Normalize converts one raw dependency value into its canonical form.
// It returns false for an absent value, which callers drop.
func Normalize(value DependencyValue, name, cwd string) (ResolvedDependency, bool) {
	switch value.Kind {
	case ValueShorthand:
		if urlPattern.MatchString(value.Shorthand) {
			return ResolvedDependency{
				Autoinstall: boolPtr(false),
				Open:        boolPtr(true),
				Resources:   []string{value.Shorthand},
				Sudo:        false,
				Cwd:         cwd,
				Name:        name,
			}, true
		}
		return ResolvedDependency{
			Autoinstall: boolPtr(true),
			Install:     value.Shorthand,
			Sudo:        false,
			Cwd:         cwd,
			Name:        name,
		}, true

	case ValueRecord:
		record := value.Record
		dep := ResolvedDependency{
			Autoinstall:  boolPtr(true),
			DependsOn:    slices.Clone(record.DependsOn),
			Description:  record.Description,
			Detect:       record.Detect,
			Install:      record.Install,
			Instructions: record.Instructions,
			Open:         boolPtr(true),
			Resources:    slices.Clone(record.Resources),
			Sudo:         record.Sudo != nil && *record.Sudo,
			Cwd:          cwd,
			Name:         name,
		}
		if record.Autoinstall != nil {
			dep.Autoinstall = boolPtr(*record.Autoinstall)
		}
		if record.Open != nil {
			dep.Open = boolPtr(*record.Open)
		}
		return dep, true

	default:
		return ResolvedDependency{}, false
	}
}

// NormalizeSystems normalizes every system of a document. Absent systems
// and absent dependencies are dropped; an empty system is kept.
func NormalizeSystems(systems map[string]System, cwd string) map[string]ResolvedSystem {
	resolved := make(map[string]ResolvedSystem, len(systems))
	for systemName, system := range systems {
		if system == nil {
			continue
		}
		deps := make(ResolvedSystem, len(system))
		for depName, value := range system {
			if dep, ok := Normalize(value, depName, cwd); ok {
				deps[depName] = dep
			}
		}
		resolved[systemName] = deps
	}
	return resolved
}

// MergeSystems merges from into into. Systems merge by name; inside a
// system each dependency from from replaces the whole record of the same
// name, and names present on only one side survive.
func MergeSystems(into, from map[string]ResolvedSystem) {
	for systemName, system := range from {
		target, ok := into[systemName]
		if !ok {
			target = make(ResolvedSystem, len(system))
			into[systemName] = target
		}
		for depName, dep := range system {
			target[depName] = dep
		}
	}
}
