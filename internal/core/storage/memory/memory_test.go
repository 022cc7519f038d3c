package memory

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	v1 "github.com/vitrine-lab/vitrine/internal/api/v1"
	"github.com/vitrine-lab/vitrine/internal/core/storage"
)

func TestStore_SaveEventRejectsDuplicates(t *testing.T) {
	store := NewStore()
	ctx := context.Background()
	event := &v1.Event{ID: "evt-1", Type: v1.KindStoreVisit, UserID: "user123", Timestamp: time.Now()}

	require.NoError(t, store.SaveEvent(ctx, event))
	require.ErrorIs(t, store.SaveEvent(ctx, event), storage.ErrDuplicate)
	require.Len(t, store.Events(), 1)
}

func TestStore_RecentEventsNewestFirst(t *testing.T) {
	store := NewStore()
	ctx := context.Background()
	base := time.Date(2026, 2, 8, 12, 0, 0, 0, time.UTC)

	require.NoError(t, store.SaveEvents(ctx, []*v1.Event{
		{ID: "a", Type: v1.KindStoreVisit, UserID: "user123", Timestamp: base},
		{ID: "b", Type: v1.KindStoreVisit, UserID: "anonymous_user123", Timestamp: base.Add(2 * time.Minute)},
		{ID: "c", Type: v1.KindStoreVisit, UserID: "someone-else", Timestamp: base.Add(3 * time.Minute)},
		{ID: "d", Type: v1.KindProductView, UserID: "user123", Timestamp: base.Add(time.Minute)},
	}))

	events, err := store.RecentEvents(ctx, v1.OwnerSet("user123"), 2)
	require.NoError(t, err)
	require.Len(t, events, 2)
	require.Equal(t, "b", events[0].ID)
	require.Equal(t, "d", events[1].ID)
}

func TestStore_ConcurrentIncrementsAreExact(t *testing.T) {
	store := NewStore()
	ctx := context.Background()
	at := time.Now()

	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			require.NoError(t, store.IncrementUserSummary(ctx, "user123", v1.KindProductView, at))
			require.NoError(t, store.IncrementProductSummary(ctx, storage.ProductHit{
				ProductID: "p1", ProductName: "Mug", UserID: "user123",
			}, v1.KindProductView, at))
		}()
	}
	wg.Wait()

	user, err := store.UserSummary(ctx, "user123")
	require.NoError(t, err)
	require.Equal(t, int64(50), user.Count(v1.KindProductView))
	require.Equal(t, int64(50), user.TotalEvents)

	product, err := store.ProductSummary(ctx, "p1")
	require.NoError(t, err)
	require.Equal(t, int64(50), product.Count(v1.KindProductView))
	require.Equal(t, "Mug", product.ProductName)
}

func TestStore_SummariesNotFound(t *testing.T) {
	store := NewStore()

	_, err := store.UserSummary(context.Background(), "ghost")
	require.ErrorIs(t, err, storage.ErrNotFound)

	_, err = store.ProductSummary(context.Background(), "ghost")
	require.ErrorIs(t, err, storage.ErrNotFound)
}

func TestStore_TopProducts(t *testing.T) {
	store := NewStore()
	ctx := context.Background()
	at := time.Now()

	views := map[string]int{"p1": 1, "p2": 3, "p3": 2}
	for id, n := range views {
		for i := 0; i < n; i++ {
			require.NoError(t, store.IncrementProductSummary(ctx, storage.ProductHit{ProductID: id, UserID: "user123"}, v1.KindProductView, at))
		}
	}
	require.NoError(t, store.IncrementProductSummary(ctx, storage.ProductHit{ProductID: "p4", UserID: "anonymous_user123"}, v1.KindProductClick, at))
	require.NoError(t, store.IncrementProductSummary(ctx, storage.ProductHit{ProductID: "p5", UserID: "other"}, v1.KindProductView, at))

	top, err := store.TopProducts(ctx, v1.OwnerSet("user123"), 10)
	require.NoError(t, err)

	ids := make([]string, 0, len(top))
	for _, p := range top {
		ids = append(ids, p.ProductID)
	}
	require.Equal(t, []string{"p2", "p3", "p1", "p4"}, ids)
}

func TestStore_ReturnsCopies(t *testing.T) {
	store := NewStore()
	ctx := context.Background()

	require.NoError(t, store.IncrementUserSummary(ctx, "user123", v1.KindStoreVisit, time.Now()))
	summary, err := store.UserSummary(ctx, "user123")
	require.NoError(t, err)
	summary.Counts[v1.KindStoreVisit] = 100

	again, err := store.UserSummary(ctx, "user123")
	require.NoError(t, err)
	require.Equal(t, int64(1), again.Count(v1.KindStoreVisit))
}
