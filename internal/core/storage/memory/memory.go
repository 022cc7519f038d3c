package memory

import (
	"context"
	"sort"
	"sync"
	"time"

	v1 "github.com/vitrine-lab/vitrine/internal/api/v1"
	"github.com/vitrine-lab/vitrine/internal/core/storage"
)

// Store is an in-memory implementation of storage.EventStore and
// storage.SummaryStore. Useful for testing and development.
type Store struct {
	mu       sync.RWMutex
	events   []*v1.Event
	eventIDs map[string]struct{}
	users    map[string]*v1.UserSummary
	products map[string]*v1.ProductSummary
}

// NewStore creates an empty in-memory store.
func NewStore() *Store {
	return &Store{
		eventIDs: make(map[string]struct{}),
		users:    make(map[string]*v1.UserSummary),
		products: make(map[string]*v1.ProductSummary),
	}
}

func (s *Store) SaveEvent(ctx context.Context, event *v1.Event) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.eventIDs[event.ID]; exists {
		return storage.ErrDuplicate
	}
	s.appendLocked(event)
	return nil
}

func (s *Store) SaveEvents(ctx context.Context, events []*v1.Event) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, event := range events {
		if _, exists := s.eventIDs[event.ID]; exists {
			continue
		}
		s.appendLocked(event)
	}
	return nil
}

func (s *Store) appendLocked(event *v1.Event) {
	// Store a copy to prevent external modification
	copy := *event
	s.events = append(s.events, &copy)
	s.eventIDs[event.ID] = struct{}{}
}

func (s *Store) RecentEvents(ctx context.Context, userIDs []string, limit int) ([]*v1.Event, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	owners := make(map[string]struct{}, len(userIDs))
	for _, id := range userIDs {
		owners[id] = struct{}{}
	}

	var result []*v1.Event
	for _, event := range s.events {
		if _, ok := owners[event.UserID]; !ok {
			continue
		}
		copy := *event
		result = append(result, &copy)
	}

	sort.SliceStable(result, func(i, j int) bool {
		return result[i].Timestamp.After(result[j].Timestamp)
	})
	if limit > 0 && len(result) > limit {
		result = result[:limit]
	}
	return result, nil
}

// Events returns a copy of every stored event in write order.
func (s *Store) Events() []*v1.Event {
	s.mu.RLock()
	defer s.mu.RUnlock()

	result := make([]*v1.Event, 0, len(s.events))
	for _, event := range s.events {
		copy := *event
		result = append(result, &copy)
	}
	return result
}

func (s *Store) IncrementUserSummary(ctx context.Context, userID string, kind v1.EventKind, at time.Time) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	summary, exists := s.users[userID]
	if !exists {
		summary = &v1.UserSummary{UserID: userID, Counters: newCounters(), CreatedAt: at}
		s.users[userID] = summary
	}
	bump(&summary.Counters, kind, at)
	summary.TotalEvents++
	summary.LastUpdated = at
	return nil
}

func (s *Store) IncrementProductSummary(ctx context.Context, hit storage.ProductHit, kind v1.EventKind, at time.Time) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	summary, exists := s.products[hit.ProductID]
	if !exists {
		summary = &v1.ProductSummary{
			ProductID: hit.ProductID,
			UserID:    hit.UserID,
			Counters:  newCounters(),
			CreatedAt: at,
		}
		s.products[hit.ProductID] = summary
	}
	if hit.ProductName != "" {
		summary.ProductName = hit.ProductName
	}
	bump(&summary.Counters, kind, at)
	summary.TotalEvents++
	summary.LastUpdated = at
	return nil
}

func (s *Store) UserSummary(ctx context.Context, userID string) (*v1.UserSummary, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	summary, exists := s.users[userID]
	if !exists {
		return nil, storage.ErrNotFound
	}
	copy := *summary
	copy.Counters = cloneCounters(summary.Counters)
	return &copy, nil
}

func (s *Store) ProductSummary(ctx context.Context, productID string) (*v1.ProductSummary, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	summary, exists := s.products[productID]
	if !exists {
		return nil, storage.ErrNotFound
	}
	copy := *summary
	copy.Counters = cloneCounters(summary.Counters)
	return &copy, nil
}

func (s *Store) TopProducts(ctx context.Context, ownerIDs []string, limit int) ([]*v1.ProductSummary, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	owners := make(map[string]struct{}, len(ownerIDs))
	for _, id := range ownerIDs {
		owners[id] = struct{}{}
	}

	var result []*v1.ProductSummary
	for _, summary := range s.products {
		if _, ok := owners[summary.UserID]; !ok {
			continue
		}
		copy := *summary
		copy.Counters = cloneCounters(summary.Counters)
		result = append(result, &copy)
	}

	sort.Slice(result, func(i, j int) bool {
		vi, vj := result[i].Count(v1.KindProductView), result[j].Count(v1.KindProductView)
		if vi != vj {
			return vi > vj
		}
		return result[i].ProductID < result[j].ProductID
	})
	if limit > 0 && len(result) > limit {
		result = result[:limit]
	}
	return result, nil
}

func newCounters() v1.Counters {
	return v1.Counters{
		Counts:   make(map[v1.EventKind]int64),
		LastSeen: make(map[v1.EventKind]time.Time),
	}
}

func bump(c *v1.Counters, kind v1.EventKind, at time.Time) {
	c.Counts[kind]++
	c.LastSeen[kind] = at
}

func cloneCounters(c v1.Counters) v1.Counters {
	out := newCounters()
	for k, v := range c.Counts {
		out.Counts[k] = v
	}
	for k, v := range c.LastSeen {
		out.LastSeen[k] = v
	}
	return out
}
