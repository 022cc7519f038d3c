package analytics

import (
	"context"
	"errors"
	"fmt"

	"github.com/goccy/go-json"

	v1 "github.com/vitrine-lab/vitrine/internal/api/v1"
	"github.com/vitrine-lab/vitrine/internal/localstore"
)

// Buffer is the device-local, append-only list of events that could not
// reach the shared store. It is stored as one JSON array.
type Buffer struct {
	storage localstore.Storage
}

// NewBuffer creates the buffer on a device's storage.
func NewBuffer(storage localstore.Storage) *Buffer {
	return &Buffer{storage: storage}
}

// Append adds event to the end of the buffer.
func (b *Buffer) Append(ctx context.Context, event *v1.Event) error {
	return b.storage.Update(ctx, localstore.KeyBuffer, func(current string, exists bool) (string, error) {
		var events []*v1.Event
		if exists && current != "" {
			if err := json.Unmarshal([]byte(current), &events); err != nil {
				return "", fmt.Errorf("decode buffer: %w", err)
			}
		}

		events = append(events, event)
		raw, err := json.Marshal(events)
		if err != nil {
			return "", fmt.Errorf("encode buffer: %w", err)
		}
		return string(raw), nil
	})
}

// Load returns the buffered events in append order. An absent buffer is empty.
func (b *Buffer) Load(ctx context.Context) ([]*v1.Event, error) {
	raw, err := b.storage.Get(ctx, localstore.KeyBuffer)
	if errors.Is(err, localstore.ErrNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	if raw == "" {
		return nil, nil
	}

	var events []*v1.Event
	if err := json.Unmarshal([]byte(raw), &events); err != nil {
		return nil, fmt.Errorf("decode buffer: %w", err)
	}
	return events, nil
}

// Drop removes the first n events. Events appended after they were loaded are kept.
func (b *Buffer) Drop(ctx context.Context, n int) error {
	return b.storage.Update(ctx, localstore.KeyBuffer, func(current string, exists bool) (string, error) {
		var events []*v1.Event
		if exists && current != "" {
			if err := json.Unmarshal([]byte(current), &events); err != nil {
				return "", fmt.Errorf("decode buffer: %w", err)
			}
		}

		drop := n
		if drop > len(events) {
			drop = len(events)
		}
		rest := events[drop:]
		if len(rest) == 0 {
			return "[]", nil
		}

		raw, err := json.Marshal(rest)
		if err != nil {
			return "", fmt.Errorf("encode buffer: %w", err)
		}
		return string(raw), nil
	})
}
