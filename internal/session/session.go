// Package session derives the per-device session id every event is tagged with.
package session

import (
	"context"
	"errors"
	"log/slog"
	"math/rand/v2"
	"strconv"
	"sync"
	"time"

	"github.com/vitrine-lab/vitrine/internal/localstore"
)

const (
	idPrefix     = "session_"
	suffixLength = 9
	base36       = "0123456789abcdefghijklmnopqrstuvwxyz"
)

// Identity resolves and memoizes one device's session id.
type Identity struct {
	storage localstore.Storage
	now     func() time.Time

	mu sync.Mutex
	id string
}

// New creates the session identity for a device's storage.
func New(storage localstore.Storage) *Identity {
	return &Identity{storage: storage, now: time.Now}
}

// ID returns the device's session id, creating and persisting it on first use.
// When the storage cannot be used a fresh id is returned on every call.
func (s *Identity) ID(ctx context.Context) string {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.id != "" {
		return s.id
	}

	stored, err := s.storage.Get(ctx, localstore.KeySessionID)
	if err == nil && stored != "" {
		s.id = stored
		return s.id
	}
	if err != nil && !errors.Is(err, localstore.ErrNotFound) {
		slog.Debug("[Session] Storage unavailable, using ephemeral id", "error", err)
		return NewID(s.now())
	}

	id := NewID(s.now())
	if err := s.storage.Set(ctx, localstore.KeySessionID, id); err != nil {
		slog.Debug("[Session] Failed to persist session id", "error", err)
		return id
	}

	s.id = id
	return s.id
}

// NewID formats a session id: "session_" + unix millis + "_" + 9 base36 characters.
func NewID(now time.Time) string {
	suffix := make([]byte, suffixLength)
	for i := range suffix {
		suffix[i] = base36[rand.IntN(len(base36))]
	}
	return idPrefix + strconv.FormatInt(now.UnixMilli(), 10) + "_" + string(suffix)
}
