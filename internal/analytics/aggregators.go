package analytics

import (
	"context"
	"errors"
	"log/slog"
	"sort"
	"time"

	v1 "github.com/vitrine-lab/vitrine/internal/api/v1"
	"github.com/vitrine-lab/vitrine/internal/core/storage"
)

const (
	defaultTopProducts  = 10
	defaultRecentEvents = 20
)

// Dashboard is a merchant's analytics overview.
type Dashboard struct {
	// Summary is the stored user summary plus the counts of events still
	// buffered on this device.
	Summary      *v1.UserSummary      `json:"summary"`
	TopProducts  []*v1.ProductSummary `json:"top_products"`
	RecentEvents []*v1.Event          `json:"recent_events"`
}

// Aggregators serve the read-side views. Nothing is cached.
type Aggregators struct {
	summaries    storage.SummaryStore
	events       storage.EventStore
	buffer       *Buffer
	topProducts  int
	recentEvents int
}

// NewAggregators creates the read-side views. Non-positive limits use the
// defaults (10 and 20). buffer may be nil for views not bound to a device.
func NewAggregators(summaries storage.SummaryStore, events storage.EventStore, buffer *Buffer, topProducts, recentEvents int) *Aggregators {
	if topProducts <= 0 {
		topProducts = defaultTopProducts
	}
	if recentEvents <= 0 {
		recentEvents = defaultRecentEvents
	}
	return &Aggregators{
		summaries:    summaries,
		events:       events,
		buffer:       buffer,
		topProducts:  topProducts,
		recentEvents: recentEvents,
	}
}

// UserSummary returns the user's rollup, nil when there is none.
func (a *Aggregators) UserSummary(ctx context.Context, userID string) (*v1.UserSummary, error) {
	summary, err := a.summaries.UserSummary(ctx, userID)
	if errors.Is(err, storage.ErrNotFound) {
		return nil, nil
	}
	if err != nil {
		slog.Error("[Aggregators] Failed to read user summary", "user_id", userID, "error", err)
		return nil, err
	}
	return summary, nil
}

// ProductSummary returns the product's rollup, nil when there is none.
func (a *Aggregators) ProductSummary(ctx context.Context, productID string) (*v1.ProductSummary, error) {
	summary, err := a.summaries.ProductSummary(ctx, productID)
	if errors.Is(err, storage.ErrNotFound) {
		return nil, nil
	}
	if err != nil {
		slog.Error("[Aggregators] Failed to read product summary", "product_id", productID, "error", err)
		return nil, err
	}
	return summary, nil
}

// BufferedEvents returns the device's buffered events. Unreadable buffers read as empty.
func (a *Aggregators) BufferedEvents(ctx context.Context) []*v1.Event {
	if a.buffer == nil {
		return []*v1.Event{}
	}
	events, err := a.buffer.Load(ctx)
	if err != nil {
		slog.Warn("[Aggregators] Failed to read anonymous buffer", "error", err)
		return []*v1.Event{}
	}
	if events == nil {
		return []*v1.Event{}
	}
	return events
}

// Dashboard builds merchantID's overview.
func (a *Aggregators) Dashboard(ctx context.Context, merchantID string) (*Dashboard, error) {
	summary, err := a.UserSummary(ctx, merchantID)
	if err != nil {
		return nil, err
	}
	buffered := a.BufferedEvents(ctx)
	combined := combineSummary(merchantID, summary, buffered)

	owners := v1.OwnerSet(merchantID)
	top, err := a.summaries.TopProducts(ctx, owners, a.topProducts)
	if err != nil {
		slog.Error("[Aggregators] Failed to read top products", "user_id", merchantID, "error", err)
		return nil, err
	}

	recent, err := a.events.RecentEvents(ctx, owners, a.recentEvents)
	if err != nil {
		slog.Error("[Aggregators] Failed to read recent events", "user_id", merchantID, "error", err)
		return nil, err
	}

	return &Dashboard{
		Summary:      combined,
		TopProducts:  top,
		RecentEvents: mergeRecent(recent, buffered, a.recentEvents),
	}, nil
}

// combineSummary adds the buffered events to a copy of the stored summary.
func combineSummary(userID string, stored *v1.UserSummary, buffered []*v1.Event) *v1.UserSummary {
	combined := &v1.UserSummary{
		UserID: userID,
		Counters: v1.Counters{
			Counts:   make(map[v1.EventKind]int64),
			LastSeen: make(map[v1.EventKind]time.Time),
		},
	}
	if stored != nil {
		combined.TotalEvents = stored.TotalEvents
		combined.CreatedAt = stored.CreatedAt
		combined.LastUpdated = stored.LastUpdated
		for k, v := range stored.Counts {
			combined.Counts[k] = v
		}
		for k, v := range stored.LastSeen {
			combined.LastSeen[k] = v
		}
	}

	for _, e := range buffered {
		combined.Counts[e.Type]++
		combined.TotalEvents++
	}
	return combined
}

// mergeRecent merges stored and buffered events, newest first.
func mergeRecent(stored, buffered []*v1.Event, limit int) []*v1.Event {
	all := make([]*v1.Event, 0, len(stored)+len(buffered))
	all = append(all, stored...)
	all = append(all, buffered...)

	sort.SliceStable(all, func(i, j int) bool {
		return all[i].Timestamp.After(all[j].Timestamp)
	})
	if len(all) > limit {
		all = all[:limit]
	}
	return all
}
