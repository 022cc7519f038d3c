package postgres

import (
	"context"
	"errors"
	"regexp"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/require"
	v1 "github.com/vitrine-lab/vitrine/internal/api/v1"
	"github.com/vitrine-lab/vitrine/internal/core/storage"
)

func TestSummaryAdapter_IncrementUserSummary(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	adapter := NewSummaryAdapter(db)
	at := time.Date(2026, 2, 8, 12, 0, 0, 0, time.UTC)

	mock.ExpectExec(regexp.QuoteMeta(queryIncrementUserSummary)).
		WithArgs("user123", "product_view", at).
		WillReturnResult(sqlmock.NewResult(0, 1))

	require.NoError(t, adapter.IncrementUserSummary(context.Background(), "user123", v1.KindProductView, at))
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestSummaryAdapter_IncrementProductSummary(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	adapter := NewSummaryAdapter(db)
	at := time.Date(2026, 2, 8, 12, 0, 0, 0, time.UTC)

	mock.ExpectExec(regexp.QuoteMeta(queryIncrementProductSummary)).
		WithArgs("p1", "Mug", "user123", "product_click", at).
		WillReturnError(errors.New("deadlock detected"))

	err = adapter.IncrementProductSummary(context.Background(), storage.ProductHit{
		ProductID:   "p1",
		ProductName: "Mug",
		UserID:      "user123",
	}, v1.KindProductClick, at)
	require.Error(t, err)
	require.ErrorContains(t, err, "increment product summary p1")
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestSummaryAdapter_UserSummary(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	adapter := NewSummaryAdapter(db)
	created := time.Date(2026, 2, 1, 9, 0, 0, 0, time.UTC)
	updated := time.Date(2026, 2, 8, 12, 0, 0, 0, time.UTC)

	mock.ExpectQuery(regexp.QuoteMeta(queryUserSummary)).
		WithArgs("user123").
		WillReturnRows(sqlmock.NewRows(
			[]string{"user_id", "counters", "last_seen", "total_events", "created_at", "last_updated"},
		).AddRow(
			"user123",
			[]byte(`{"product_view":2,"store_visit":1}`),
			[]byte(`{"product_view":"2026-02-08T12:00:00+00:00"}`),
			int64(3),
			created,
			updated,
		))

	summary, err := adapter.UserSummary(context.Background(), "user123")
	require.NoError(t, err)
	require.Equal(t, "user123", summary.UserID)
	require.Equal(t, int64(2), summary.Count(v1.KindProductView))
	require.Equal(t, int64(1), summary.Count(v1.KindStoreVisit))
	require.Equal(t, int64(0), summary.Count(v1.KindSearchQuery))
	require.True(t, updated.Equal(summary.LastSeen[v1.KindProductView]))
	require.Equal(t, int64(3), summary.TotalEvents)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestSummaryAdapter_NotFound(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	adapter := NewSummaryAdapter(db)

	mock.ExpectQuery(regexp.QuoteMeta(queryUserSummary)).
		WithArgs("ghost").
		WillReturnRows(sqlmock.NewRows([]string{"user_id"}))
	mock.ExpectQuery(regexp.QuoteMeta(queryProductSummary)).
		WithArgs("missing-product").
		WillReturnRows(sqlmock.NewRows([]string{"product_id"}))

	_, err = adapter.UserSummary(context.Background(), "ghost")
	require.ErrorIs(t, err, storage.ErrNotFound)

	_, err = adapter.ProductSummary(context.Background(), "missing-product")
	require.ErrorIs(t, err, storage.ErrNotFound)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestSummaryAdapter_TopProducts(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	adapter := NewSummaryAdapter(db)
	at := time.Date(2026, 2, 8, 12, 0, 0, 0, time.UTC)

	mock.ExpectQuery(regexp.QuoteMeta(queryTopProducts)).
		WithArgs(sqlmock.AnyArg(), 10).
		WillReturnRows(sqlmock.NewRows([]string{
			"product_id", "product_name", "user_id", "counters", "last_seen",
			"total_events", "created_at", "last_updated",
		}).
			AddRow("p2", "Lamp", "user123", []byte(`{"product_view":7}`), []byte(`{}`), int64(7), at, at).
			AddRow("p1", "Mug", "anonymous_user123", []byte(`{"product_view":2,"product_click":1}`), []byte(`{}`), int64(3), at, at),
		).RowsWillBeClosed()

	products, err := adapter.TopProducts(context.Background(), v1.OwnerSet("user123"), 10)
	require.NoError(t, err)
	require.Len(t, products, 2)
	require.Equal(t, "p2", products[0].ProductID)
	require.Equal(t, int64(7), products[0].Count(v1.KindProductView))
	require.Equal(t, "anonymous_user123", products[1].UserID)
	require.Equal(t, int64(1), products[1].Count(v1.KindProductClick))
	require.NoError(t, mock.ExpectationsWereMet())
}
