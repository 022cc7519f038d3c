package localstore

import (
	"context"
	"errors"
	"strconv"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestMemory_ScopesAreIsolated(t *testing.T) {
	store := NewMemory()
	ctx := context.Background()

	a := store.Scope("device-a")
	b := store.Scope("device-b")

	require.NoError(t, a.Set(ctx, KeyConsent, "accepted"))

	value, err := a.Get(ctx, KeyConsent)
	require.NoError(t, err)
	require.Equal(t, "accepted", value)

	_, err = b.Get(ctx, KeyConsent)
	require.ErrorIs(t, err, ErrNotFound)

	require.NoError(t, a.Remove(ctx, KeyConsent))
	_, err = a.Get(ctx, KeyConsent)
	require.ErrorIs(t, err, ErrNotFound)
}

func TestMemory_UpdateIsAtomic(t *testing.T) {
	store := NewMemory()
	ctx := context.Background()
	scope := store.Scope("device-a")

	var wg sync.WaitGroup
	for i := 0; i < 100; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			err := scope.Update(ctx, "counter", func(current string, exists bool) (string, error) {
				n := 0
				if exists {
					n, _ = strconv.Atoi(current)
				}
				return strconv.Itoa(n + 1), nil
			})
			require.NoError(t, err)
		}()
	}
	wg.Wait()

	value, err := scope.Get(ctx, "counter")
	require.NoError(t, err)
	require.Equal(t, "100", value)
}

func TestMemory_UpdateErrorLeavesValue(t *testing.T) {
	store := NewMemory()
	ctx := context.Background()
	scope := store.Scope("device-a")
	require.NoError(t, scope.Set(ctx, KeyBuffer, "[]"))

	boom := errors.New("boom")
	err := scope.Update(ctx, KeyBuffer, func(string, bool) (string, error) { return "", boom })
	require.ErrorIs(t, err, boom)

	value, err := scope.Get(ctx, KeyBuffer)
	require.NoError(t, err)
	require.Equal(t, "[]", value)
}

func TestMemory_TryLock(t *testing.T) {
	store := NewMemory()
	now := time.Date(2026, 2, 8, 12, 0, 0, 0, time.UTC)
	store.now = func() time.Time { return now }
	ctx := context.Background()

	scope := store.Scope("device-a")

	unlock, acquired, err := scope.TryLock(ctx, LockDrainName, time.Minute)
	require.NoError(t, err)
	require.True(t, acquired)

	_, acquired, err = scope.TryLock(ctx, LockDrainName, time.Minute)
	require.NoError(t, err)
	require.False(t, acquired)

	// Other devices are not affected.
	otherUnlock, acquired, err := store.Scope("device-b").TryLock(ctx, LockDrainName, time.Minute)
	require.NoError(t, err)
	require.True(t, acquired)
	otherUnlock()

	unlock()
	unlock, acquired, err = scope.TryLock(ctx, LockDrainName, time.Minute)
	require.NoError(t, err)
	require.True(t, acquired)

	// An expired lock can be taken over, and the stale unlock must not release it.
	now = now.Add(2 * time.Minute)
	takeover, acquired, err := scope.TryLock(ctx, LockDrainName, time.Minute)
	require.NoError(t, err)
	require.True(t, acquired)

	unlock()
	_, acquired, err = scope.TryLock(ctx, LockDrainName, time.Minute)
	require.NoError(t, err)
	require.False(t, acquired)
	takeover()
}

func TestUnavailable(t *testing.T) {
	scope := Unavailable{}.Scope("device-a")
	ctx := context.Background()

	_, err := scope.Get(ctx, KeyConsent)
	require.ErrorIs(t, err, ErrUnavailable)
	require.ErrorIs(t, scope.Set(ctx, KeyConsent, "accepted"), ErrUnavailable)
	require.ErrorIs(t, scope.Remove(ctx, KeyConsent), ErrUnavailable)
	require.ErrorIs(t, scope.Update(ctx, KeyBuffer, nil), ErrUnavailable)

	_, acquired, err := scope.TryLock(ctx, LockDrainName, time.Second)
	require.ErrorIs(t, err, ErrUnavailable)
	require.False(t, acquired)
}
