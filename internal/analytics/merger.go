package analytics

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	v1 "github.com/vitrine-lab/vitrine/internal/api/v1"
	"github.com/vitrine-lab/vitrine/internal/core/storage"
	"github.com/vitrine-lab/vitrine/internal/localstore"
	"github.com/vitrine-lab/vitrine/internal/metrics"
)

// MergeResult describes one merge attempt.
type MergeResult struct {
	Merged  int  `json:"merged"`
	Skipped bool `json:"skipped"`
}

// Merger moves the device's anonymous buffer into the shared store under a
// signed-in user.
//
// The batch is all-or-nothing: the buffer shrinks only after the batch
// commits. Events keep their ids, so a batch retried after a failed
// cleanup is deduplicated by the store.
type Merger struct {
	storage localstore.Storage
	buffer  *Buffer
	events  storage.EventStore
	mirror  storage.EventMirror
	lockTTL time.Duration
	now     func() time.Time
}

// NewMerger creates a merger. mirror may be nil.
func NewMerger(storage localstore.Storage, buffer *Buffer, events storage.EventStore, mirror storage.EventMirror, lockTTL time.Duration) *Merger {
	return &Merger{
		storage: storage,
		buffer:  buffer,
		events:  events,
		mirror:  mirror,
		lockTTL: lockTTL,
		now:     time.Now,
	}
}

// MergeOnLogin drains the buffer into the shared store as userID's events.
// A drain already running for the device is not waited for; the result is
// marked Skipped.
func (m *Merger) MergeOnLogin(ctx context.Context, userID string) (MergeResult, error) {
	if userID == "" {
		return MergeResult{}, fmt.Errorf("user id is required")
	}

	unlock, acquired, err := m.storage.TryLock(ctx, localstore.LockDrainName, m.lockTTL)
	if err != nil {
		metrics.Merges.WithLabelValues(metrics.MergeFailed).Inc()
		return MergeResult{}, fmt.Errorf("acquire drain lock: %w", err)
	}
	if !acquired {
		slog.Info("[Merger] Drain already in progress, skipping", "user_id", userID)
		metrics.Merges.WithLabelValues(metrics.MergeSkipped).Inc()
		return MergeResult{Skipped: true}, nil
	}
	defer unlock()

	buffered, err := m.buffer.Load(ctx)
	if err != nil {
		metrics.Merges.WithLabelValues(metrics.MergeFailed).Inc()
		return MergeResult{}, fmt.Errorf("load buffer: %w", err)
	}
	if len(buffered) == 0 {
		metrics.Merges.WithLabelValues(metrics.MergeEmpty).Inc()
		return MergeResult{}, nil
	}

	now := m.now().UTC()
	retagged := make([]*v1.Event, 0, len(buffered))
	for _, e := range buffered {
		copied := *e
		copied.UserID = userID
		copied.IsAnonymous = false
		copied.Timestamp = now
		if err := copied.Validate(); err != nil {
			// Unreadable leftovers are dropped with the rest of the batch.
			slog.Warn("[Merger] Discarding invalid buffered event", "event_id", e.ID, "error", err)
			continue
		}
		retagged = append(retagged, &copied)
	}

	if len(retagged) > 0 {
		if err := m.events.SaveEvents(ctx, retagged); err != nil {
			metrics.Merges.WithLabelValues(metrics.MergeFailed).Inc()
			return MergeResult{}, fmt.Errorf("write merged events: %w", err)
		}
	}

	if err := m.buffer.Drop(ctx, len(buffered)); err != nil {
		// The next merge resends the same ids and the store skips them.
		slog.Warn("[Merger] Failed to clear merged events from buffer", "user_id", userID, "error", err)
	}

	if m.mirror != nil && len(retagged) > 0 {
		if err := m.mirror.MirrorEvents(ctx, retagged); err != nil {
			slog.Warn("[Merger] Failed to mirror merged events", "count", len(retagged), "error", err)
			metrics.WriteFailures.WithLabelValues(metrics.TargetMirror).Inc()
		}
	}

	slog.Info("[Merger] Merged anonymous events", "user_id", userID, "count", len(retagged))
	metrics.Merges.WithLabelValues(metrics.MergeDrained).Inc()
	metrics.MergedEvents.Add(float64(len(retagged)))
	return MergeResult{Merged: len(retagged)}, nil
}
