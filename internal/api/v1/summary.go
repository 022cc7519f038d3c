package v1

import (
	"encoding/json"
	"time"
)

// Counters holds the per-kind part of a rollup document.
type Counters struct {
	Counts   map[EventKind]int64     `json:"-"`
	LastSeen map[EventKind]time.Time `json:"-"`
}

// Count returns the counter for k, zero when the kind was never seen.
func (c Counters) Count(k EventKind) int64 {
	return c.Counts[k]
}

// UserSummary is the rollup document for one known user.
// Counts never decrease.
type UserSummary struct {
	UserID string
	Counters
	TotalEvents int64
	CreatedAt   time.Time
	LastUpdated time.Time
}

// ProductSummary is the rollup document for one product. UserID is the
// merchant the events were recorded under.
type ProductSummary struct {
	ProductID   string
	ProductName string
	UserID      string
	Counters
	TotalEvents int64
	CreatedAt   time.Time
	LastUpdated time.Time
}

// MarshalJSON renders the flat document shape:
// "<kind>_count" and "<kind>_last" per kind seen, plus the totals.
func (s UserSummary) MarshalJSON() ([]byte, error) {
	doc := s.Counters.document()
	doc["userId"] = s.UserID
	doc["total_events"] = s.TotalEvents
	doc["created_at"] = s.CreatedAt
	doc["last_updated"] = s.LastUpdated
	return json.Marshal(doc)
}

// MarshalJSON renders the flat document shape, see UserSummary.MarshalJSON.
func (s ProductSummary) MarshalJSON() ([]byte, error) {
	doc := s.Counters.document()
	doc["productId"] = s.ProductID
	doc["productName"] = s.ProductName
	doc["userId"] = s.UserID
	doc["total_events"] = s.TotalEvents
	doc["created_at"] = s.CreatedAt
	doc["last_updated"] = s.LastUpdated
	return json.Marshal(doc)
}

func (c Counters) document() map[string]interface{} {
	doc := make(map[string]interface{}, 2*len(c.Counts)+6)
	for kind, count := range c.Counts {
		doc[kind.CountField()] = count
	}
	for kind, last := range c.LastSeen {
		doc[kind.LastField()] = last
	}
	return doc
}
