package localstore

import (
	"context"
	"sync"
	"time"
)

// Memory is an in-process Store. Useful for single-instance deployments and tests.
type Memory struct {
	mu      sync.Mutex
	devices map[string]map[string]string
	locks   map[string]memoryLock
	nextID  uint64
	now     func() time.Time
}

type memoryLock struct {
	id      uint64
	expires time.Time
}

// NewMemory creates an empty in-memory store.
func NewMemory() *Memory {
	return &Memory{
		devices: make(map[string]map[string]string),
		locks:   make(map[string]memoryLock),
		now:     time.Now,
	}
}

// Scope returns the storage of deviceID.
func (m *Memory) Scope(deviceID string) Storage {
	return &memoryScope{m: m, device: deviceID}
}

// Close is a no-op.
func (m *Memory) Close() error { return nil }

type memoryScope struct {
	m      *Memory
	device string
}

func (s *memoryScope) Get(ctx context.Context, key string) (string, error) {
	s.m.mu.Lock()
	defer s.m.mu.Unlock()

	value, ok := s.m.devices[s.device][key]
	if !ok {
		return "", ErrNotFound
	}
	return value, nil
}

func (s *memoryScope) Set(ctx context.Context, key, value string) error {
	s.m.mu.Lock()
	defer s.m.mu.Unlock()

	s.setLocked(key, value)
	return nil
}

func (s *memoryScope) setLocked(key, value string) {
	values, ok := s.m.devices[s.device]
	if !ok {
		values = make(map[string]string)
		s.m.devices[s.device] = values
	}
	values[key] = value
}

func (s *memoryScope) Remove(ctx context.Context, key string) error {
	s.m.mu.Lock()
	defer s.m.mu.Unlock()

	delete(s.m.devices[s.device], key)
	return nil
}

func (s *memoryScope) Update(ctx context.Context, key string, fn UpdateFunc) error {
	s.m.mu.Lock()
	defer s.m.mu.Unlock()

	current, exists := s.m.devices[s.device][key]
	next, err := fn(current, exists)
	if err != nil {
		return err
	}
	s.setLocked(key, next)
	return nil
}

func (s *memoryScope) TryLock(ctx context.Context, name string, ttl time.Duration) (func(), bool, error) {
	s.m.mu.Lock()
	defer s.m.mu.Unlock()

	lockKey := s.device + "\x00" + name
	now := s.m.now()
	if held, ok := s.m.locks[lockKey]; ok && now.Before(held.expires) {
		return nil, false, nil
	}

	s.m.nextID++
	id := s.m.nextID
	s.m.locks[lockKey] = memoryLock{id: id, expires: now.Add(ttl)}

	unlock := func() {
		s.m.mu.Lock()
		defer s.m.mu.Unlock()
		// An expired lock may have been taken over; only release our own.
		if held, ok := s.m.locks[lockKey]; ok && held.id == id {
			delete(s.m.locks, lockKey)
		}
	}
	return unlock, true, nil
}
