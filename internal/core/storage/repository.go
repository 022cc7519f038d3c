package storage

import (
	"context"
	"errors"
	"time"

	v1 "github.com/vitrine-lab/vitrine/internal/api/v1"
)

// ErrDuplicate is returned when an event with the same id already exists.
var ErrDuplicate = errors.New("event already exists")

// ErrNotFound is returned when a rollup document does not exist.
var ErrNotFound = errors.New("document not found")

// EventStore defines the interface for storing and retrieving raw events.
type EventStore interface {
	SaveEvent(ctx context.Context, event *v1.Event) error

	// SaveEvents writes all events in one unit. Either every event is
	// stored or none is; duplicates within the batch are skipped.
	SaveEvents(ctx context.Context, events []*v1.Event) error

	// RecentEvents returns the newest events recorded under any of userIDs,
	// newest first.
	RecentEvents(ctx context.Context, userIDs []string, limit int) ([]*v1.Event, error)
}

// ProductHit identifies the product an event was recorded against.
type ProductHit struct {
	ProductID   string
	ProductName string
	// UserID is the merchant the event was recorded under.
	UserID string
}

// SummaryStore keeps the per-user and per-product rollup documents.
// Every increment is a single atomic upsert.
type SummaryStore interface {
	IncrementUserSummary(ctx context.Context, userID string, kind v1.EventKind, at time.Time) error
	IncrementProductSummary(ctx context.Context, hit ProductHit, kind v1.EventKind, at time.Time) error

	// UserSummary returns ErrNotFound when the user has no rollup yet.
	UserSummary(ctx context.Context, userID string) (*v1.UserSummary, error)

	// ProductSummary returns ErrNotFound when the product has no rollup yet.
	ProductSummary(ctx context.Context, productID string) (*v1.ProductSummary, error)

	// TopProducts returns the products owned by any of ownerIDs ordered by
	// product_view count, highest first.
	TopProducts(ctx context.Context, ownerIDs []string, limit int) ([]*v1.ProductSummary, error)
}

// EventMirror receives a copy of every raw event written to the shared store.
// Mirrors are best effort; their failures never fail the primary write.
type EventMirror interface {
	MirrorEvents(ctx context.Context, events []*v1.Event) error
}
