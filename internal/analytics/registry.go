package analytics

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/vitrine-lab/vitrine/internal/core/storage"
	"github.com/vitrine-lab/vitrine/internal/identity"
	"github.com/vitrine-lab/vitrine/internal/localstore"
	"github.com/vitrine-lab/vitrine/internal/metrics"
)

// SharedDeps are the collaborators shared by every device pipeline.
type SharedDeps struct {
	Store     localstore.Store
	Auth      identity.Authenticator
	Events    storage.EventStore
	Summaries storage.SummaryStore
	Mirror    storage.EventMirror
	Forwarder TagForwarder
	Options   Options
}

// Registry hands out one initialized pipeline per device id.
type Registry struct {
	deps SharedDeps

	mu        sync.Mutex
	pipelines map[string]*Pipeline
}

// NewRegistry creates an empty registry.
func NewRegistry(deps SharedDeps) *Registry {
	return &Registry{
		deps:      deps,
		pipelines: make(map[string]*Pipeline),
	}
}

// Get returns the pipeline of deviceID, creating it on first use.
func (r *Registry) Get(ctx context.Context, deviceID string) (*Pipeline, error) {
	if deviceID == "" {
		return nil, fmt.Errorf("device id is required")
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if p, ok := r.pipelines[deviceID]; ok {
		// Sweep takes the same lock, so a handed-out pipeline is never stale.
		p.Touch()
		return p, nil
	}

	p := NewPipeline(Deps{
		Storage:   r.deps.Store.Scope(deviceID),
		Auth:      r.deps.Auth,
		Events:    r.deps.Events,
		Summaries: r.deps.Summaries,
		Mirror:    r.deps.Mirror,
		Forwarder: r.deps.Forwarder,
		Options:   r.deps.Options,
	})
	if err := p.Init(ctx); err != nil {
		return nil, fmt.Errorf("init pipeline: %w", err)
	}

	r.pipelines[deviceID] = p
	metrics.ActivePipelines.Set(float64(len(r.pipelines)))
	return p, nil
}

// Sweep disposes pipelines idle for longer than idle and returns how many were removed.
// Device state lives in the local store, so a swept device resumes where it left off.
func (r *Registry) Sweep(idle time.Duration) int {
	cutoff := time.Now().Add(-idle)

	r.mu.Lock()
	var stale []*Pipeline
	for id, p := range r.pipelines {
		if p.idleSince(cutoff) {
			stale = append(stale, p)
			delete(r.pipelines, id)
		}
	}
	metrics.ActivePipelines.Set(float64(len(r.pipelines)))
	r.mu.Unlock()

	for _, p := range stale {
		p.Dispose()
	}
	return len(stale)
}

// Len returns the number of live pipelines.
func (r *Registry) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.pipelines)
}

// Close disposes every pipeline.
func (r *Registry) Close() {
	r.mu.Lock()
	all := make([]*Pipeline, 0, len(r.pipelines))
	for id, p := range r.pipelines {
		all = append(all, p)
		delete(r.pipelines, id)
	}
	metrics.ActivePipelines.Set(0)
	r.mu.Unlock()

	for _, p := range all {
		p.Dispose()
	}
	slog.Info("[Registry] Disposed all pipelines", "count", len(all))
}
