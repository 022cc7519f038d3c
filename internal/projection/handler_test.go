package projection

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/vitrine-lab/vitrine/internal/analytics"
	v1 "github.com/vitrine-lab/vitrine/internal/api/v1"
	"github.com/vitrine-lab/vitrine/internal/core/storage"
	"github.com/vitrine-lab/vitrine/internal/core/storage/memory"
	"github.com/vitrine-lab/vitrine/internal/identity"
	"github.com/vitrine-lab/vitrine/internal/localstore"
	storagemocks "github.com/vitrine-lab/vitrine/internal/mocks/storage"
)

func newTokens(t *testing.T) *identity.TokenService {
	t.Helper()
	tokens, err := identity.NewTokenService(identity.TokenConfig{Secret: "test-secret", TTL: time.Hour})
	require.NoError(t, err)
	return tokens
}

func TestService_SummaryStatusMapping(t *testing.T) {
	gin.SetMode(gin.TestMode)

	summary := &v1.UserSummary{
		UserID: "user-1",
		Counters: v1.Counters{
			Counts:   map[v1.EventKind]int64{v1.KindProductView: 2},
			LastSeen: map[v1.EventKind]time.Time{v1.KindProductView: time.Date(2026, 2, 7, 10, 0, 0, 0, time.UTC)},
		},
		TotalEvents: 2,
	}

	tests := []struct {
		name           string
		path           string
		expectedStatus int
		configure      func(store *storagemocks.SummaryStore)
	}{
		{
			name:           "user summary found returns 200",
			path:           "/v1/analytics/users/user-1",
			expectedStatus: http.StatusOK,
			configure: func(store *storagemocks.SummaryStore) {
				store.EXPECT().UserSummary(mock.Anything, "user-1").Return(summary, nil).Once()
			},
		},
		{
			name:           "unknown user returns 404",
			path:           "/v1/analytics/users/user-2",
			expectedStatus: http.StatusNotFound,
			configure: func(store *storagemocks.SummaryStore) {
				store.EXPECT().UserSummary(mock.Anything, "user-2").Return(nil, storage.ErrNotFound).Once()
			},
		},
		{
			name:           "store error returns 500",
			path:           "/v1/analytics/users/user-1",
			expectedStatus: http.StatusInternalServerError,
			configure: func(store *storagemocks.SummaryStore) {
				store.EXPECT().UserSummary(mock.Anything, "user-1").Return(nil, errors.New("db down")).Once()
			},
		},
		{
			name:           "unknown product returns 404",
			path:           "/v1/analytics/products/p-404",
			expectedStatus: http.StatusNotFound,
			configure: func(store *storagemocks.SummaryStore) {
				store.EXPECT().ProductSummary(mock.Anything, "p-404").Return(nil, storage.ErrNotFound).Once()
			},
		},
		{
			name:           "product found returns 200",
			path:           "/v1/analytics/products/p1",
			expectedStatus: http.StatusOK,
			configure: func(store *storagemocks.SummaryStore) {
				store.EXPECT().ProductSummary(mock.Anything, "p1").
					Return(&v1.ProductSummary{ProductID: "p1", UserID: "user-1", TotalEvents: 1}, nil).Once()
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			summaries := storagemocks.NewSummaryStore(t)
			tt.configure(summaries)

			reader := analytics.NewAggregators(summaries, nil, nil, 0, 0)
			registry := analytics.NewRegistry(analytics.SharedDeps{Store: localstore.NewMemory(), Auth: newTokens(t)})
			svc := NewService(reader, registry, newTokens(t))

			r := gin.New()
			svc.RegisterRoutes(r)

			req := httptest.NewRequest(http.MethodGet, tt.path, nil)
			resp := httptest.NewRecorder()
			r.ServeHTTP(resp, req)

			require.Equal(t, tt.expectedStatus, resp.Code)
		})
	}
}

func TestService_UserSummaryDocumentShape(t *testing.T) {
	gin.SetMode(gin.TestMode)

	store := memory.NewStore()
	ctx := context.Background()
	at := time.Date(2026, 2, 7, 10, 0, 0, 0, time.UTC)
	require.NoError(t, store.IncrementUserSummary(ctx, "user123", v1.KindProductView, at))
	require.NoError(t, store.IncrementUserSummary(ctx, "user123", v1.KindProductView, at))

	tokens := newTokens(t)
	registry := analytics.NewRegistry(analytics.SharedDeps{Store: localstore.NewMemory(), Auth: tokens, Events: store, Summaries: store})
	svc := NewService(analytics.NewAggregators(store, store, nil, 0, 0), registry, tokens)

	r := gin.New()
	svc.RegisterRoutes(r)

	req := httptest.NewRequest(http.MethodGet, "/v1/analytics/users/user123", nil)
	resp := httptest.NewRecorder()
	r.ServeHTTP(resp, req)
	require.Equal(t, http.StatusOK, resp.Code)

	var doc map[string]interface{}
	require.NoError(t, json.Unmarshal(resp.Body.Bytes(), &doc))
	require.Equal(t, "user123", doc["userId"])
	require.Equal(t, float64(2), doc["product_view_count"])
	require.Equal(t, float64(2), doc["total_events"])
	require.Contains(t, doc, "product_view_last")
}

func TestService_HandleDashboard(t *testing.T) {
	gin.SetMode(gin.TestMode)

	store := memory.NewStore()
	tokens := newTokens(t)
	registry := analytics.NewRegistry(analytics.SharedDeps{
		Store:     localstore.NewMemory(),
		Auth:      tokens,
		Events:    store,
		Summaries: store,
	})
	t.Cleanup(registry.Close)
	svc := NewService(analytics.NewAggregators(store, store, nil, 0, 0), registry, tokens)

	ctx := context.Background()
	p, err := registry.Get(ctx, "device-1")
	require.NoError(t, err)
	p.Consent.Accept(ctx)
	p.Record(ctx, v1.KindProductView, "merchant-1", v1.ProductPayload{ProductID: "p1"})

	r := gin.New()
	svc.RegisterRoutes(r)

	// Unauthenticated callers are rejected.
	req := httptest.NewRequest(http.MethodGet, "/v1/analytics/dashboard", nil)
	req.Header.Set("X-Device-ID", "device-1")
	resp := httptest.NewRecorder()
	r.ServeHTTP(resp, req)
	require.Equal(t, http.StatusUnauthorized, resp.Code)

	merchant, err := tokens.Issue("merchant-1")
	require.NoError(t, err)

	req = httptest.NewRequest(http.MethodGet, "/v1/analytics/dashboard", nil)
	req.Header.Set("X-Device-ID", "device-1")
	req.Header.Set("Authorization", "Bearer "+merchant.Token)
	resp = httptest.NewRecorder()
	r.ServeHTTP(resp, req)
	require.Equal(t, http.StatusOK, resp.Code)

	var body struct {
		Summary      map[string]interface{}   `json:"summary"`
		TopProducts  []map[string]interface{} `json:"top_products"`
		RecentEvents []map[string]interface{} `json:"recent_events"`
	}
	require.NoError(t, json.Unmarshal(resp.Body.Bytes(), &body))
	require.Equal(t, float64(1), body.Summary["product_view_count"])
	require.Len(t, body.TopProducts, 1)
	require.Equal(t, "p1", body.TopProducts[0]["productId"])
	require.Len(t, body.RecentEvents, 1)
}
