// Package config resolves envsetup configuration files.
//
// A configuration file is YAML that is first expanded as a template (it may
// reference its own fields, the environment under .env and host facts under
// .platform), then validated against the embedded JSON schema, normalized
// and finally merged with every file matched by its includes.
package config

import (
	"fmt"
	"sort"

	"gopkg.in/yaml.v3"
)

// Dependency is the full record form of a dependency as written in a file.
// Pointer booleans keep "absent" distinct from false.
type Dependency struct {
	Autoinstall  *bool    `yaml:"autoinstall,omitempty"`
	DependsOn    []string `yaml:"depends_on,omitempty"`
	Description  string   `yaml:"description,omitempty"`
	Detect       string   `yaml:"detect,omitempty"`
	Install      string   `yaml:"install,omitempty"`
	Instructions string   `yaml:"instructions,omitempty"`
	Open         *bool    `yaml:"open,omitempty"`
	Resources    []string `yaml:"resources,omitempty"`
	Sudo         *bool    `yaml:"sudo,omitempty"`
}

// ValueKind tags the variant held by a DependencyValue.
type ValueKind int

const (
	// ValueAbsent is a null entry. It is the zero value because the YAML
	// decoder leaves null nodes at their zero value.
	ValueAbsent ValueKind = iota
	// ValueShorthand is a bare string: a URL or an install command.
	ValueShorthand
	// ValueRecord is a full Dependency mapping.
	ValueRecord
)

func (k ValueKind) String() string {
	switch k {
	case ValueShorthand:
		return "shorthand"
	case ValueRecord:
		return "record"
	default:
		return "absent"
	}
}

// DependencyValue is one entry of a system as written in a file.
type DependencyValue struct {
	Kind      ValueKind
	Shorthand string
	Record    Dependency
}

// Shorthand builds a shorthand dependency value.
func Shorthand(s string) DependencyValue {
	return DependencyValue{Kind: ValueShorthand, Shorthand: s}
}

// Record builds a record dependency value.
func Record(d Dependency) DependencyValue {
	return DependencyValue{Kind: ValueRecord, Record: d}
}

// UnmarshalYAML decodes null, string and mapping nodes into the matching
// variant.
func (v *DependencyValue) UnmarshalYAML(node *yaml.Node) error {
	switch node.Kind {
	case yaml.AliasNode:
		return v.UnmarshalYAML(node.Alias)
	case yaml.ScalarNode:
		switch node.ShortTag() {
		case "!!null":
			*v = DependencyValue{}
		case "!!str":
			*v = Shorthand(node.Value)
		default:
			return fmt.Errorf("line %d: dependency must be a string, a mapping or null, got %s", node.Line, node.ShortTag())
		}
		return nil
	case yaml.MappingNode:
		var record Dependency
		if err := node.Decode(&record); err != nil {
			return err
		}
		*v = Record(record)
		return nil
	default:
		return fmt.Errorf("line %d: dependency must be a string, a mapping or null", node.Line)
	}
}

// MarshalYAML mirrors UnmarshalYAML.
func (v DependencyValue) MarshalYAML() (interface{}, error) {
	switch v.Kind {
	case ValueShorthand:
		return v.Shorthand, nil
	case ValueRecord:
		return v.Record, nil
	default:
		return nil, nil
	}
}

// System maps dependency names to their raw values.
type System map[string]DependencyValue

// Document is one configuration file after template expansion and
// validation. A nil System marks an absent system.
type Document struct {
	Name        string            `yaml:"name,omitempty"`
	Autoinstall *bool             `yaml:"autoinstall,omitempty"`
	Includes    []string          `yaml:"includes,omitempty"`
	Systems     map[string]System `yaml:"systems"`
}

// ResolvedDependency is a normalized dependency. It carries the directory
// its install command runs in and the name it was declared under.
type ResolvedDependency struct {
	Autoinstall  *bool    `yaml:"autoinstall,omitempty"`
	DependsOn    []string `yaml:"depends_on,omitempty"`
	Description  string   `yaml:"description,omitempty"`
	Detect       string   `yaml:"detect,omitempty"`
	Install      string   `yaml:"install,omitempty"`
	Instructions string   `yaml:"instructions,omitempty"`
	Open         *bool    `yaml:"open,omitempty"`
	Resources    []string `yaml:"resources,omitempty"`
	Sudo         bool     `yaml:"sudo"`

	Cwd  string `yaml:"_cwd"`
	Name string `yaml:"_name"`
}

// AutoinstallEnabled reports the dependency-level autoinstall permission.
func (d ResolvedDependency) AutoinstallEnabled() bool {
	return d.Autoinstall != nil && *d.Autoinstall
}

// OpenEnabled reports whether resource links should be launched.
func (d ResolvedDependency) OpenEnabled() bool {
	return d.Open != nil && *d.Open
}

// HasInstall reports whether an install command is declared.
func (d ResolvedDependency) HasInstall() bool {
	return d.Install != ""
}

// ResolvedSystem maps dependency names to normalized dependencies.
type ResolvedSystem map[string]ResolvedDependency

// Names returns the dependency names in sorted order.
func (s ResolvedSystem) Names() []string {
	return sortedKeys(s)
}

// ResolvedConfig is the result of resolving a file and all its includes.
// Name, Autoinstall and Includes always come from the top-level file.
type ResolvedConfig struct {
	Name        string                    `yaml:"name,omitempty"`
	Autoinstall *bool                     `yaml:"autoinstall,omitempty"`
	Includes    []string                  `yaml:"includes,omitempty"`
	Systems     map[string]ResolvedSystem `yaml:"systems"`

	// Path is the absolute path of the top-level file, empty when the
	// config was resolved from an in-memory document.
	Path string `yaml:"-"`
	// Sources lists every file that was resolved, in resolution order.
	Sources []string `yaml:"-"`
}

// AutoinstallEnabled reports the global autoinstall permission. An absent
// flag does not grant permission.
func (c *ResolvedConfig) AutoinstallEnabled() bool {
	return c != nil && c.Autoinstall != nil && *c.Autoinstall
}

// SystemNames returns the system names in sorted order.
func (c *ResolvedConfig) SystemNames() []string {
	return sortedKeys(c.Systems)
}

// DependencyCount returns the total number of dependencies across systems.
func (c *ResolvedConfig) DependencyCount() int {
	n := 0
	for _, system := range c.Systems {
		n += len(system)
	}
	return n
}

func sortedKeys[V any](m map[string]V) []string {
	keys := make([]string, 0, len(m))
	for key := range m {
		keys = append(keys, key)
	}
	sort.Strings(keys)
	return keys
}

func boolPtr(b bool) *bool {
	return &b
}
