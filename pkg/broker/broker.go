// Package broker executes approved tool plans. Read calls fan out
// concurrently, write calls run strictly in plan order with idempotency
// protection, and every planned call yields exactly one observation.
package broker

import (
	"context"
	"log/slog"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/turnos-ai/orchestrator/pkg/models"
	"github.com/turnos-ai/orchestrator/pkg/policy"
	"github.com/turnos-ai/orchestrator/pkg/tools"
)

// DefaultTimeout applies to tools whose manifest entry carries none.
const DefaultTimeout = 800 * time.Millisecond

// DefaultMaxRetries bounds total attempts for idempotent calls on transient
// failures.
const DefaultMaxRetries = 3

// Config carries the broker's tunables.
type Config struct {
	DefaultTimeout  time.Duration
	MaxRetries      int
	RetryBase       time.Duration
	CircuitCooldown time.Duration
	IdempotencyTTL  time.Duration
}

// Broker dispatches approved plans through a single Caller. One broker
// serves the whole process: its circuit table and idempotency cache are
// shared across requests.
type Broker struct {
	caller         tools.Caller
	breakers       *breakerTable
	idem           *idemCache
	defaultTimeout time.Duration
	maxRetries     int
	retryBase      time.Duration
}

func New(caller tools.Caller, cfg Config) *Broker {
	if cfg.DefaultTimeout <= 0 {
		cfg.DefaultTimeout = DefaultTimeout
	}
	if cfg.MaxRetries <= 0 {
		cfg.MaxRetries = DefaultMaxRetries
	}
	if cfg.RetryBase <= 0 {
		cfg.RetryBase = DefaultRetryBase
	}
	return &Broker{
		caller:         caller,
		breakers:       newBreakerTable(cfg.CircuitCooldown),
		idem:           newIdemCache(cfg.IdempotencyTTL),
		defaultTimeout: cfg.DefaultTimeout,
		maxRetries:     cfg.MaxRetries,
		retryBase:      cfg.RetryBase,
	}
}

// Execute runs the plan and returns one executed call per approved call, in
// plan order. Consecutive read calls run concurrently; each write call is a
// barrier and runs alone, so later reads observe its effects.
func (b *Broker) Execute(ctx context.Context, workspaceID string, calls []policy.ApprovedCall) []models.ExecutedCall {
	out := make([]models.ExecutedCall, len(calls))
	for i, call := range calls {
		out[i] = models.ExecutedCall{Tool: call.Tool, Args: call.Args}
	}

	i := 0
	for i < len(calls) {
		if calls[i].Entry.Policy.Write {
			out[i].Observation = b.executeWrite(ctx, workspaceID, calls[i])
			i++
			continue
		}

		j := i
		for j < len(calls) && !calls[j].Entry.Policy.Write {
			j++
		}
		b.executeReads(ctx, workspaceID, calls[i:j], out[i:j])
		i = j
	}

	b.idem.sweep()
	return out
}

// executeReads fans a run of idempotent calls out concurrently.
func (b *Broker) executeReads(ctx context.Context, workspaceID string, calls []policy.ApprovedCall, out []models.ExecutedCall) {
	if len(calls) == 1 {
		out[0].Observation = b.executeRead(ctx, workspaceID, calls[0])
		return
	}

	g, gctx := errgroup.WithContext(ctx)
	for i := range calls {
		i := i
		g.Go(func() error {
			out[i].Observation = b.executeRead(gctx, workspaceID, calls[i])
			return nil
		})
	}
	g.Wait()
}

// executeRead runs one idempotent call with up to maxRetries attempts total
// on transient failures.
func (b *Broker) executeRead(ctx context.Context, workspaceID string, call policy.ApprovedCall) models.Observation {
	return b.attemptLoop(ctx, workspaceID, call, b.maxRetries, retryableRead)
}

// executeWrite runs one write call under idempotency protection. The call is
// detached from the caller's cancellation: once started, a booking either
// completes or fails on its own timeout, never half-way because the user
// hung up.
func (b *Broker) executeWrite(ctx context.Context, workspaceID string, call policy.ApprovedCall) models.Observation {
	detached := context.WithoutCancel(ctx)

	obs, replayed := b.idem.do(call.IdempotencyKey, func() models.Observation {
		return b.attemptLoop(detached, workspaceID, call, 2, retryableWrite)
	})
	if replayed {
		slog.Info("Write call replayed from idempotency cache",
			"workspace_id", workspaceID, "tool", call.Tool)
	}
	return obs
}

// retryableRead allows another attempt on any transient-class failure.
func retryableRead(kind models.ErrorKind) bool {
	return kind == models.ErrorKindTransient || kind == models.ErrorKindTimeout
}

// retryableWrite allows exactly one extra attempt, and only when the prior
// attempt got no definite response. A 5xx is a definite response: the tool
// saw the request, retrying could double-book.
func retryableWrite(kind models.ErrorKind) bool {
	return kind == models.ErrorKindTimeout
}

func (b *Broker) attemptLoop(ctx context.Context, workspaceID string, call policy.ApprovedCall, maxAttempts int, retryable func(models.ErrorKind) bool) models.Observation {
	breaker := b.breakers.get(workspaceID + "/" + call.Tool)
	if !breaker.admit() {
		return observation(call.Tool, nil, models.ErrorKindCircuitOpen, time.Now(), 0)
	}

	timeout := call.Entry.Timeout(b.defaultTimeout)
	start := time.Now()

	var lastKind models.ErrorKind
	attempts := 0
	for attempts < maxAttempts {
		if attempts > 0 {
			delay := computeBackoff(b.retryBase, attempts-1)
			select {
			case <-ctx.Done():
				return observation(call.Tool, nil, models.ErrorKindTimeout, start, attempts)
			case <-time.After(delay):
			}
		}
		attempts++

		result, err := b.caller.Call(ctx, call.Tool, call.Args, timeout, call.IdempotencyKey)
		if err == nil {
			breaker.record(false)
			return observation(call.Tool, result, "", start, attempts)
		}

		lastKind = tools.KindOf(err)
		breaker.record(true)
		slog.Warn("Tool call attempt failed",
			"workspace_id", workspaceID, "tool", call.Tool,
			"attempt", attempts, "kind", lastKind, "error", err)

		if !retryable(lastKind) {
			break
		}
		// The breaker may have opened mid-loop; stop retrying against it.
		if !breaker.admit() {
			lastKind = models.ErrorKindCircuitOpen
			break
		}
	}

	return observation(call.Tool, nil, lastKind, start, attempts)
}

func observation(tool string, result map[string]any, kind models.ErrorKind, start time.Time, attempts int) models.Observation {
	obs := models.Observation{
		Tool:      tool,
		OK:        kind == "",
		Result:    result,
		ErrorKind: kind,
		LatencyMS: time.Since(start).Milliseconds(),
		Attempts:  attempts,
	}
	if obs.Result == nil {
		obs.Result = map[string]any{}
	}
	return obs
}
