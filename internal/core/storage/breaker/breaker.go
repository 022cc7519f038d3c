package breaker

import (
	"context"
	"errors"
	"log/slog"
	"time"

	gobreaker "github.com/sony/gobreaker/v2"
	v1 "github.com/vitrine-lab/vitrine/internal/api/v1"
	"github.com/vitrine-lab/vitrine/internal/core/storage"
)

// Config holds circuit breaker settings for the shared store.
type Config struct {
	Name             string
	MaxRequests      uint32
	Interval         time.Duration
	Timeout          time.Duration
	FailureThreshold uint32
}

// New creates a breaker that opens after FailureThreshold consecutive failures.
func New(cfg Config, onStateChange func(name string, from, to gobreaker.State)) *gobreaker.CircuitBreaker[interface{}] {
	settings := gobreaker.Settings{
		Name:        cfg.Name,
		MaxRequests: cfg.MaxRequests,
		Interval:    cfg.Interval,
		Timeout:     cfg.Timeout,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= cfg.FailureThreshold
		},
		// Duplicates and missing documents are answers, not outages.
		IsSuccessful: func(err error) bool {
			return err == nil || errors.Is(err, storage.ErrDuplicate) || errors.Is(err, storage.ErrNotFound)
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			slog.Warn("[Breaker] State transition",
				"name", name,
				"from", from.String(),
				"to", to.String())
			if onStateChange != nil {
				onStateChange(name, from, to)
			}
		},
	}

	return gobreaker.NewCircuitBreaker[interface{}](settings)
}

// EventStore guards a storage.EventStore with a circuit breaker.
// While the circuit is open calls fail fast with gobreaker.ErrOpenState.
type EventStore struct {
	next storage.EventStore
	cb   *gobreaker.CircuitBreaker[interface{}]
}

// WrapEventStore returns next guarded by cb.
func WrapEventStore(next storage.EventStore, cb *gobreaker.CircuitBreaker[interface{}]) *EventStore {
	return &EventStore{next: next, cb: cb}
}

func (s *EventStore) SaveEvent(ctx context.Context, event *v1.Event) error {
	_, err := s.cb.Execute(func() (interface{}, error) {
		return nil, s.next.SaveEvent(ctx, event)
	})
	return err
}

func (s *EventStore) SaveEvents(ctx context.Context, events []*v1.Event) error {
	_, err := s.cb.Execute(func() (interface{}, error) {
		return nil, s.next.SaveEvents(ctx, events)
	})
	return err
}

func (s *EventStore) RecentEvents(ctx context.Context, userIDs []string, limit int) ([]*v1.Event, error) {
	result, err := s.cb.Execute(func() (interface{}, error) {
		return s.next.RecentEvents(ctx, userIDs, limit)
	})
	if err != nil {
		return nil, err
	}
	events, _ := result.([]*v1.Event)
	return events, nil
}

// SummaryStore guards a storage.SummaryStore with a circuit breaker.
type SummaryStore struct {
	next storage.SummaryStore
	cb   *gobreaker.CircuitBreaker[interface{}]
}

// WrapSummaryStore returns next guarded by cb.
func WrapSummaryStore(next storage.SummaryStore, cb *gobreaker.CircuitBreaker[interface{}]) *SummaryStore {
	return &SummaryStore{next: next, cb: cb}
}

func (s *SummaryStore) IncrementUserSummary(ctx context.Context, userID string, kind v1.EventKind, at time.Time) error {
	_, err := s.cb.Execute(func() (interface{}, error) {
		return nil, s.next.IncrementUserSummary(ctx, userID, kind, at)
	})
	return err
}

func (s *SummaryStore) IncrementProductSummary(ctx context.Context, hit storage.ProductHit, kind v1.EventKind, at time.Time) error {
	_, err := s.cb.Execute(func() (interface{}, error) {
		return nil, s.next.IncrementProductSummary(ctx, hit, kind, at)
	})
	return err
}

func (s *SummaryStore) UserSummary(ctx context.Context, userID string) (*v1.UserSummary, error) {
	result, err := s.cb.Execute(func() (interface{}, error) {
		return s.next.UserSummary(ctx, userID)
	})
	if err != nil {
		return nil, err
	}
	summary, _ := result.(*v1.UserSummary)
	return summary, nil
}

func (s *SummaryStore) ProductSummary(ctx context.Context, productID string) (*v1.ProductSummary, error) {
	result, err := s.cb.Execute(func() (interface{}, error) {
		return s.next.ProductSummary(ctx, productID)
	})
	if err != nil {
		return nil, err
	}
	summary, _ := result.(*v1.ProductSummary)
	return summary, nil
}

func (s *SummaryStore) TopProducts(ctx context.Context, ownerIDs []string, limit int) ([]*v1.ProductSummary, error) {
	result, err := s.cb.Execute(func() (interface{}, error) {
		return s.next.TopProducts(ctx, ownerIDs, limit)
	})
	if err != nil {
		return nil, err
	}
	products, _ := result.([]*v1.ProductSummary)
	return products, nil
}
