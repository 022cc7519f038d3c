package analytics

import (
	"context"
	"log/slog"
	"time"
)

// Janitor periodically disposes idle device pipelines.
type Janitor struct {
	registry *Registry
	interval time.Duration
	idle     time.Duration
}

// NewJanitor creates a janitor sweeping every interval for pipelines idle longer than idle.
func NewJanitor(registry *Registry, interval, idle time.Duration) *Janitor {
	return &Janitor{registry: registry, interval: interval, idle: idle}
}

// Start sweeps until ctx is cancelled, then disposes every pipeline.
func (j *Janitor) Start(ctx context.Context) error {
	ticker := time.NewTicker(j.interval)
	defer ticker.Stop()

	slog.Info("[Janitor] Starting idle pipeline sweeper",
		"interval", j.interval,
		"idle_timeout", j.idle,
	)

	for {
		select {
		case <-ticker.C:
			if n := j.registry.Sweep(j.idle); n > 0 {
				slog.Info("[Janitor] Disposed idle pipelines", "count", n, "remaining", j.registry.Len())
			}
		case <-ctx.Done():
			slog.Info("[Janitor] Stopping (context cancelled)")
			j.registry.Close()
			return nil
		}
	}
}
