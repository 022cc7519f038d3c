// Package localstore keeps the device-local key-value state of the analytics
// pipeline: consent choices, the session id, the cached anonymous principal
// and the buffer of events that could not reach the shared store.
package localstore

import (
	"context"
	"errors"
	"time"
)

// Keys used by the pipeline.
const (
	KeyConsent    = "cookieConsent"
	KeySettings   = "cookieSettings"
	KeySessionID  = "analytics_session_id"
	KeyBuffer     = "anonymous_analytics"
	KeyPrincipal  = "analytics_principal"
	LockDrainName = "anonymous_analytics.drain"
)

var (
	// ErrNotFound is returned by Get when the key is absent.
	ErrNotFound = errors.New("key not found")

	// ErrUnavailable is returned by every operation of a store that cannot be reached.
	ErrUnavailable = errors.New("local storage unavailable")
)

// UpdateFunc computes the next value of a key from its current one.
// exists is false when the key is absent.
type UpdateFunc func(current string, exists bool) (string, error)

// Storage is the key-value area of a single device.
type Storage interface {
	Get(ctx context.Context, key string) (string, error)
	Set(ctx context.Context, key, value string) error
	Remove(ctx context.Context, key string) error

	// Update applies fn to the key's value atomically with respect to
	// other writers of the same key.
	Update(ctx context.Context, key string, fn UpdateFunc) error

	// TryLock takes the named lock for at most ttl. acquired is false when
	// another holder has it; unlock is nil in that case.
	TryLock(ctx context.Context, name string, ttl time.Duration) (unlock func(), acquired bool, err error)
}

// Store hands out per-device storage.
type Store interface {
	Scope(deviceID string) Storage
	Close() error
}

// Unavailable models a device whose storage cannot be used at all
// (private browsing, quota exhausted, backend down).
type Unavailable struct{}

func (Unavailable) Scope(string) Storage { return Unavailable{} }
func (Unavailable) Close() error         { return nil }

func (Unavailable) Get(context.Context, string) (string, error) { return "", ErrUnavailable }
func (Unavailable) Set(context.Context, string, string) error   { return ErrUnavailable }
func (Unavailable) Remove(context.Context, string) error        { return ErrUnavailable }

func (Unavailable) Update(context.Context, string, UpdateFunc) error { return ErrUnavailable }

func (Unavailable) TryLock(context.Context, string, time.Duration) (func(), bool, error) {
	return nil, false, ErrUnavailable
}
