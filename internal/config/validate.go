package config

import (
	_ "embed"
	"errors"
	"fmt"
	"sort"
	"strings"
	"sync"
	"time"

	jsonschema "github.com/santhosh-tekuri/jsonschema/v5"
)

//go:embed schema.json
var schemaJSON string

const schemaURL = "envsetup.schema.json"

var (
	compiledSchema     *jsonschema.Schema
	compiledSchemaErr  error
	compiledSchemaOnce sync.Once
)

// Schema returns the embedded JSON schema describing a configuration file.
func Schema() string {
	return schemaJSON
}

// Validator checks decoded documents against the embedded schema.
type Validator struct {
	schema *jsonschema.Schema
}

// NewValidator compiles the embedded schema once and reuses it.
func NewValidator() (*Validator, error) {
	compiledSchemaOnce.Do(func() {
		compiler := jsonschema.NewCompiler()
		compiler.Draft = jsonschema.Draft2020
		if err := compiler.AddResource(schemaURL, strings.NewReader(schemaJSON)); err != nil {
			compiledSchemaErr = fmt.Errorf("add config schema: %w", err)
			return
		}
		compiledSchema, compiledSchemaErr = compiler.Compile(schemaURL)
		if compiledSchemaErr != nil {
			compiledSchemaErr = fmt.Errorf("compile config schema: %w", compiledSchemaErr)
		}
	})
	if compiledSchemaErr != nil {
		return nil, compiledSchemaErr
	}
	return &Validator{schema: compiledSchema}, nil
}

// Validate checks doc, a generic YAML decode, and returns a
// *ValidationError listing every violation.
func (v *Validator) Validate(doc any) error {
	err := v.schema.Validate(jsonValue(doc))
	if err == nil {
		return nil
	}

	var schemaErr *jsonschema.ValidationError
	if !errors.As(err, &schemaErr) {
		return &ValidationError{Violations: []string{err.Error()}}
	}
	return &ValidationError{Violations: violations(schemaErr)}
}

// violations flattens the cause tree to its leaves, one line per failing
// instance location.
func violations(err *jsonschema.ValidationError) []string {
	var out []string
	var walk func(*jsonschema.ValidationError)
	walk = func(e *jsonschema.ValidationError) {
		if len(e.Causes) == 0 {
			location := e.InstanceLocation
			if location == "" {
				location = "(root)"
			}
			out = append(out, fmt.Sprintf("%s: %s", location, e.Message))
			return
		}
		for _, cause := range e.Causes {
			walk(cause)
		}
	}
	walk(err)
	sort.Strings(out)
	return out
}

// jsonValue converts YAML decoder output into the value space the schema
// validator accepts: string keys only and no YAML-specific scalar types.
func jsonValue(v any) any {
	switch val := v.(type) {
	case map[string]any:
		out := make(map[string]any, len(val))
		for key, item := range val {
			out[key] = jsonValue(item)
		}
		return out
	case map[any]any:
		out := make(map[string]any, len(val))
		for key, item := range val {
			out[fmt.Sprint(key)] = jsonValue(item)
		}
		return out
	case []any:
		out := make([]any, len(val))
		for i, item := range val {
			out[i] = jsonValue(item)
		}
		return out
	case int:
		return int64(val)
	case uint64:
		return float64(val)
	case time.Time:
		return val.Format(time.RFC3339)
	default:
		return val
	}
}
