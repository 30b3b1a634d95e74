// Package schema holds the versioned JSON Schemas for structured pipeline
// contracts and validates payloads against them. The registry is built once
// at startup and is read-only afterwards.
package schema

import (
	"encoding/json"
	"fmt"
	"sort"

	"github.com/santhosh-tekuri/jsonschema/v5"
)

// Registered schema names. Versioned by name suffix; a new contract revision
// registers a new name rather than mutating an existing one.
const (
	ExtractorV1 = "extractor_v1"
	PlannerV1   = "planner_v1"
	ResponseV1  = "response_v1"
)

// Issue is one structured validation failure.
type Issue struct {
	Path    string `json:"path"`
	Message string `json:"message"`
}

// ValidationError aggregates the issues found for one payload.
type ValidationError struct {
	Schema string
	Issues []Issue
}

func (e *ValidationError) Error() string {
	if len(e.Issues) == 0 {
		return fmt.Sprintf("payload does not conform to %s", e.Schema)
	}
	return fmt.Sprintf("payload does not conform to %s: %s at %s",
		e.Schema, e.Issues[0].Message, e.Issues[0].Path)
}

// Registry compiles and holds the required schemas.
type Registry struct {
	schemas map[string]*jsonschema.Schema
}

// New compiles every required schema. A missing or malformed schema is a
// startup failure; callers are expected to exit.
func New() (*Registry, error) {
	sources := map[string]string{
		ExtractorV1: extractorV1Schema,
		PlannerV1:   plannerV1Schema,
		ResponseV1:  responseV1Schema,
	}

	r := &Registry{schemas: make(map[string]*jsonschema.Schema, len(sources))}
	for name, src := range sources {
		compiled, err := jsonschema.CompileString(name, src)
		if err != nil {
			return nil, fmt.Errorf("compiling schema %s: %w", name, err)
		}
		r.schemas[name] = compiled
	}
	return r, nil
}

// Names returns the registered schema names, sorted.
func (r *Registry) Names() []string {
	names := make([]string, 0, len(r.schemas))
	for name := range r.schemas {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Has reports whether a schema is registered.
func (r *Registry) Has(name string) bool {
	_, ok := r.schemas[name]
	return ok
}

// Validate checks a decoded JSON value against the named schema.
// Returns *ValidationError on conformance failures.
func (r *Registry) Validate(name string, value any) error {
	compiled, ok := r.schemas[name]
	if !ok {
		return fmt.Errorf("unknown schema %q", name)
	}
	if err := compiled.Validate(value); err != nil {
		return &ValidationError{Schema: name, Issues: flatten(err)}
	}
	return nil
}

// ValidateRaw decodes raw JSON and validates it. Malformed JSON is reported
// as a validation error on the document root.
func (r *Registry) ValidateRaw(name string, raw []byte) error {
	var value any
	if err := json.Unmarshal(raw, &value); err != nil {
		return &ValidationError{
			Schema: name,
			Issues: []Issue{{Path: "/", Message: fmt.Sprintf("invalid JSON: %v", err)}},
		}
	}
	return r.Validate(name, value)
}

// flatten walks the nested cause tree into leaf issues.
func flatten(err error) []Issue {
	ve, ok := err.(*jsonschema.ValidationError)
	if !ok {
		return []Issue{{Path: "/", Message: err.Error()}}
	}
	var issues []Issue
	var walk func(*jsonschema.ValidationError)
	walk = func(v *jsonschema.ValidationError) {
		if len(v.Causes) == 0 {
			path := v.InstanceLocation
			if path == "" {
				path = "/"
			}
			issues = append(issues, Issue{Path: path, Message: v.Message})
			return
		}
		for _, cause := range v.Causes {
			walk(cause)
		}
	}
	walk(ve)
	return issues
}
