package tools

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/turnos-ai/orchestrator/pkg/models"
)

const idempotencyHeader = "X-Idempotency-Key"

// HTTPCaller invokes tools over HTTP: POST {base}/tools/{name} with the args
// as a JSON body. The backing service is the booking platform's internal tool
// gateway.
type HTTPCaller struct {
	base   string
	client *http.Client
}

// NewHTTPCaller creates a caller against the given base URL. The shared
// http.Client carries no timeout of its own; per-call deadlines come from
// the context.
func NewHTTPCaller(base string) *HTTPCaller {
	return &HTTPCaller{
		base: base,
		client: &http.Client{
			Transport: &http.Transport{
				MaxIdleConnsPerHost: 16,
				IdleConnTimeout:     90 * time.Second,
			},
		},
	}
}

func (h *HTTPCaller) Call(ctx context.Context, tool string, args map[string]any, timeout time.Duration, idempotencyKey string) (map[string]any, error) {
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	body, err := json.Marshal(args)
	if err != nil {
		return nil, &CallError{Kind: models.ErrorKindPermanent, Err: fmt.Errorf("encoding args: %w", err)}
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, h.base+"/tools/"+tool, bytes.NewReader(body))
	if err != nil {
		return nil, &CallError{Kind: models.ErrorKindPermanent, Err: err}
	}
	req.Header.Set("Content-Type", "application/json")
	if idempotencyKey != "" {
		req.Header.Set(idempotencyHeader, idempotencyKey)
	}

	resp, err := h.client.Do(req)
	if err != nil {
		if errors.Is(err, context.DeadlineExceeded) || errors.Is(ctx.Err(), context.DeadlineExceeded) {
			return nil, &CallError{Kind: models.ErrorKindTimeout, Err: err}
		}
		return nil, &CallError{Kind: models.ErrorKindTransient, Err: err}
	}
	defer resp.Body.Close()

	payload, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return nil, &CallError{Kind: models.ErrorKindTransient, Err: fmt.Errorf("reading response: %w", err)}
	}

	switch {
	case resp.StatusCode >= 500:
		return nil, &CallError{Kind: models.ErrorKindTransient,
			Err: fmt.Errorf("tool %s returned %d", tool, resp.StatusCode)}
	case resp.StatusCode >= 400:
		return nil, &CallError{Kind: models.ErrorKindPermanent,
			Err: fmt.Errorf("tool %s returned %d", tool, resp.StatusCode)}
	}

	var result map[string]any
	if err := json.Unmarshal(payload, &result); err != nil {
		return nil, &CallError{Kind: models.ErrorKindPermanent,
			Err: fmt.Errorf("tool %s returned malformed JSON: %w", tool, err)}
	}
	return result, nil
}
