package session

import (
	"context"
	"regexp"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"github.com/vitrine-lab/vitrine/internal/localstore"
)

var idPattern = regexp.MustCompile(`^session_\d+_[0-9a-z]{9}$`)

func TestNewID_Format(t *testing.T) {
	now := time.UnixMilli(1760000000123)
	id := NewID(now)

	require.Regexp(t, idPattern, id)
	require.Contains(t, id, "_1760000000123_")
}

func TestIdentity_IsStable(t *testing.T) {
	store := localstore.NewMemory()
	ctx := context.Background()

	first := New(store.Scope("device-1")).ID(ctx)
	second := New(store.Scope("device-1")).ID(ctx)
	require.Equal(t, first, second)
	require.Regexp(t, idPattern, first)

	other := New(store.Scope("device-2")).ID(ctx)
	require.NotEqual(t, first, other)
}

func TestIdentity_MemoizedAcrossConcurrentCalls(t *testing.T) {
	identity := New(localstore.NewMemory().Scope("device-1"))
	ctx := context.Background()

	ids := make([]string, 20)
	var wg sync.WaitGroup
	for i := range ids {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			ids[i] = identity.ID(ctx)
		}(i)
	}
	wg.Wait()

	for _, id := range ids {
		require.Equal(t, ids[0], id)
	}
}

func TestIdentity_ReusesStoredID(t *testing.T) {
	storage := localstore.NewMemory().Scope("device-1")
	ctx := context.Background()
	require.NoError(t, storage.Set(ctx, localstore.KeySessionID, "session_1_abcdefghi"))

	require.Equal(t, "session_1_abcdefghi", New(storage).ID(ctx))
}

func TestIdentity_UnavailableStorageIsEphemeral(t *testing.T) {
	identity := New(localstore.Unavailable{})
	identity.now = func() time.Time { return time.UnixMilli(42) }
	ctx := context.Background()

	first := identity.ID(ctx)
	require.Regexp(t, idPattern, first)

	// Fresh id per call; the random suffix makes a collision practically impossible.
	require.NotEqual(t, first, identity.ID(ctx))
}
