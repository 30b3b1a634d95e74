package manifest

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"golang.org/x/sync/singleflight"
)

// DefaultTTL bounds manifest staleness.
const DefaultTTL = 5 * time.Minute

// Source produces the manifest for a workspace. A workspace unknown to the
// source must yield an empty entry list, not an error.
type Source interface {
	Fetch(ctx context.Context, workspaceID string) ([]Entry, error)
}

type cachedManifest struct {
	manifest  Manifest
	fetchedAt time.Time
}

// Resolver serves per-workspace manifests from an in-memory cache in front
// of a Source. Expired entries are served stale while a background refresh
// runs; concurrent refreshes for the same workspace collapse to one fetch.
type Resolver struct {
	source Source
	ttl    time.Duration

	mu      sync.RWMutex
	entries map[string]cachedManifest
	group   singleflight.Group
}

// NewResolver creates a resolver with the given TTL (DefaultTTL when <= 0).
func NewResolver(source Source, ttl time.Duration) *Resolver {
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	return &Resolver{
		source:  source,
		ttl:     ttl,
		entries: make(map[string]cachedManifest),
	}
}

// Lookup returns the manifest for a workspace. A fresh cache entry is served
// directly; a stale one is returned as-is while a non-blocking refresh runs.
// Only a cold miss blocks on the source.
func (r *Resolver) Lookup(ctx context.Context, workspaceID string) (Manifest, error) {
	r.mu.RLock()
	cached, ok := r.entries[workspaceID]
	r.mu.RUnlock()

	if ok {
		if time.Since(cached.fetchedAt) > r.ttl {
			go r.refresh(workspaceID)
		}
		return cached.manifest, nil
	}

	v, err, _ := r.group.Do(workspaceID, func() (any, error) {
		return r.fetch(ctx, workspaceID)
	})
	if err != nil {
		return Manifest{WorkspaceID: workspaceID}, err
	}
	return v.(Manifest), nil
}

func (r *Resolver) fetch(ctx context.Context, workspaceID string) (Manifest, error) {
	entries, err := r.source.Fetch(ctx, workspaceID)
	if err != nil {
		return Manifest{}, err
	}
	m := Manifest{WorkspaceID: workspaceID, Entries: entries}

	r.mu.Lock()
	r.entries[workspaceID] = cachedManifest{manifest: m, fetchedAt: time.Now()}
	r.mu.Unlock()
	return m, nil
}

// refresh re-fetches one workspace in the background. Failures keep the
// stale entry; the next lookup retries.
func (r *Resolver) refresh(workspaceID string) {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	_, err, _ := r.group.Do(workspaceID, func() (any, error) {
		return r.fetch(ctx, workspaceID)
	})
	if err != nil {
		slog.Warn("Manifest refresh failed, serving stale entry",
			"workspace_id", workspaceID, "error", err)
	}
}

// Invalidate drops the cached manifest for a workspace.
func (r *Resolver) Invalidate(workspaceID string) {
	r.mu.Lock()
	delete(r.entries, workspaceID)
	r.mu.Unlock()
}
