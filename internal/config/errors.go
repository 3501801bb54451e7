package config

import (
	"fmt"
	"strings"
)

// ValidationError reports every schema violation found in one file.
type ValidationError struct {
	Path       string
	Violations []string
}

func (e *ValidationError) Error() string {
	msg := strings.Join(e.Violations, "; ")
	if e.Path == "" {
		return fmt.Sprintf("invalid config: %s", msg)
	}
	return fmt.Sprintf("invalid config %s: %s", e.Path, msg)
}

// TemplateNonTerminationError is returned when template expansion does not
// reach a fixed point within the pass limit.
type TemplateNonTerminationError struct {
	Path   string
	Passes int
}

func (e *TemplateNonTerminationError) Error() string {
	if e.Path == "" {
		return fmt.Sprintf("template expansion did not settle after %d passes", e.Passes)
	}
	return fmt.Sprintf("template expansion of %s did not settle after %d passes", e.Path, e.Passes)
}
