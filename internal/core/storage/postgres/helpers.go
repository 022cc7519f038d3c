package postgres

import (
	"encoding/json"
	"fmt"
	"time"

	v1 "github.com/vitrine-lab/vitrine/internal/api/v1"
)

// marshalEventData marshals an event's data field to JSON.
// Nil data is stored as an empty object, never SQL NULL.
func marshalEventData(event *v1.Event) ([]byte, error) {
	if event.Data == nil {
		return []byte(`{}`), nil
	}

	dataJSON, err := json.Marshal(event.Data)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal data: %w", err)
	}
	return dataJSON, nil
}

func eventArgs(event *v1.Event, dataJSON []byte) []interface{} {
	return []interface{}{
		event.ID,
		string(event.Type),
		event.UserID,
		event.IsAnonymous,
		dataJSON,
		event.Timestamp,
		event.UserAgent,
		event.Referrer,
		event.PagePath,
		event.SessionID,
		event.Browser,
		event.OS,
		event.DeviceType,
	}
}

type scanner interface {
	Scan(dest ...interface{}) error
}

// scanEventRow scans a database row into an Event struct.
// Compatible with both sql.Row (single) and sql.Rows (multiple).
func scanEventRow(row scanner) (*v1.Event, error) {
	var evt v1.Event
	var dataJSON []byte

	err := row.Scan(
		&evt.ID,
		&evt.Type,
		&evt.UserID,
		&evt.IsAnonymous,
		&dataJSON,
		&evt.Timestamp,
		&evt.UserAgent,
		&evt.Referrer,
		&evt.PagePath,
		&evt.SessionID,
		&evt.Browser,
		&evt.OS,
		&evt.DeviceType,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to scan event row: %w", err)
	}

	if len(dataJSON) > 0 {
		if err := json.Unmarshal(dataJSON, &evt.Data); err != nil {
			return nil, fmt.Errorf("failed to unmarshal data: %w", err)
		}
	}

	return &evt, nil
}

// decodeCounters turns the counters and last_seen jsonb columns into typed maps.
func decodeCounters(countersJSON, lastSeenJSON []byte) (v1.Counters, error) {
	var rawCounts map[string]int64
	var rawLast map[string]time.Time

	if len(countersJSON) > 0 {
		if err := json.Unmarshal(countersJSON, &rawCounts); err != nil {
			return v1.Counters{}, fmt.Errorf("failed to unmarshal counters: %w", err)
		}
	}
	if len(lastSeenJSON) > 0 {
		if err := json.Unmarshal(lastSeenJSON, &rawLast); err != nil {
			return v1.Counters{}, fmt.Errorf("failed to unmarshal last_seen: %w", err)
		}
	}

	counters := v1.Counters{
		Counts:   make(map[v1.EventKind]int64, len(rawCounts)),
		LastSeen: make(map[v1.EventKind]time.Time, len(rawLast)),
	}
	for kind, count := range rawCounts {
		counters.Counts[v1.EventKind(kind)] = count
	}
	for kind, last := range rawLast {
		counters.LastSeen[v1.EventKind(kind)] = last
	}
	return counters, nil
}

func scanUserSummary(row scanner) (*v1.UserSummary, error) {
	var summary v1.UserSummary
	var countersJSON, lastSeenJSON []byte

	err := row.Scan(
		&summary.UserID,
		&countersJSON,
		&lastSeenJSON,
		&summary.TotalEvents,
		&summary.CreatedAt,
		&summary.LastUpdated,
	)
	if err != nil {
		return nil, err
	}

	summary.Counters, err = decodeCounters(countersJSON, lastSeenJSON)
	if err != nil {
		return nil, err
	}
	return &summary, nil
}

func scanProductSummary(row scanner) (*v1.ProductSummary, error) {
	var summary v1.ProductSummary
	var countersJSON, lastSeenJSON []byte

	err := row.Scan(
		&summary.ProductID,
		&summary.ProductName,
		&summary.UserID,
		&countersJSON,
		&lastSeenJSON,
		&summary.TotalEvents,
		&summary.CreatedAt,
		&summary.LastUpdated,
	)
	if err != nil {
		return nil, err
	}

	summary.Counters, err = decodeCounters(countersJSON, lastSeenJSON)
	if err != nil {
		return nil, err
	}
	return &summary, nil
}
