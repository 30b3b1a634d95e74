// Package tools provides the uniform transport the broker uses to invoke
// workspace tools: call(tool, args, timeout, idempotency_key) -> result.
// Retries, circuit breaking and observation bookkeeping live in the broker;
// callers only perform one attempt and classify its failure.
package tools

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/turnos-ai/orchestrator/pkg/models"
)

// Caller performs a single tool invocation.
type Caller interface {
	Call(ctx context.Context, tool string, args map[string]any, timeout time.Duration, idempotencyKey string) (map[string]any, error)
}

// CallError classifies a failed invocation for the broker's retry decision.
type CallError struct {
	Kind models.ErrorKind
	Err  error
}

func (e *CallError) Error() string {
	return fmt.Sprintf("tool call failed (%s): %v", e.Kind, e.Err)
}

func (e *CallError) Unwrap() error { return e.Err }

// KindOf extracts the failure class, defaulting to transient for errors the
// transport did not classify.
func KindOf(err error) models.ErrorKind {
	var ce *CallError
	if errors.As(err, &ce) {
		return ce.Kind
	}
	return models.ErrorKindTransient
}
