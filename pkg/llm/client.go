// Package llm abstracts the small-language-model server as a JSON-constrained
// oracle: every call produces a payload that parses as JSON and validates
// against a registered schema, or a typed error. The concrete transport is
// the OpenAI-compatible chat completions API that SLM servers expose.
package llm

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"
)

// ErrorKind classifies client failures for the fallback paths upstream.
type ErrorKind string

const (
	ErrInvalidJSON ErrorKind = "invalid_json"
	ErrTimeout     ErrorKind = "timeout"
	ErrTransport   ErrorKind = "transport"
)

// Error is the typed failure surfaced by GenerateJSON.
type Error struct {
	Kind ErrorKind
	Err  error
}

func (e *Error) Error() string {
	return fmt.Sprintf("llm %s: %v", e.Kind, e.Err)
}

func (e *Error) Unwrap() error { return e.Err }

// KindOf extracts the error kind, defaulting to transport.
func KindOf(err error) ErrorKind {
	var le *Error
	if errors.As(err, &le) {
		return le.Kind
	}
	return ErrTransport
}

// Request is one constrained generation call.
type Request struct {
	System string
	User   string
	// SchemaName names the registered schema the reply must validate against.
	SchemaName string
	Timeout    time.Duration
	MaxTokens  int
}

// Client issues constrained JSON generation calls. Implementations must be
// safe for concurrent use and must never return unvalidated payloads.
type Client interface {
	GenerateJSON(ctx context.Context, req Request) (json.RawMessage, error)
}
