package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/lib/pq"
	v1 "github.com/vitrine-lab/vitrine/internal/api/v1"
	"github.com/vitrine-lab/vitrine/internal/core/storage"
)

// SummaryAdapter implements storage.SummaryStore using PostgreSQL.
// Each increment is one INSERT ... ON CONFLICT DO UPDATE, so concurrent
// writers never lose a count.
type SummaryAdapter struct {
	db *sql.DB
}

// NewSummaryAdapter creates a new SummaryAdapter sharing the given connection.
func NewSummaryAdapter(db *sql.DB) *SummaryAdapter {
	return &SummaryAdapter{db: db}
}

// IncrementUserSummary bumps kind's counter, last-seen time and the total for userID.
func (a *SummaryAdapter) IncrementUserSummary(ctx context.Context, userID string, kind v1.EventKind, at time.Time) error {
	if _, err := a.db.ExecContext(ctx, queryIncrementUserSummary, userID, string(kind), at); err != nil {
		return fmt.Errorf("increment user summary %s: %w", userID, err)
	}

	slog.Debug("[SummaryAdapter] Incremented user summary",
		"user_id", userID,
		"event_type", kind)
	return nil
}

// IncrementProductSummary bumps kind's counter for the product in hit.
func (a *SummaryAdapter) IncrementProductSummary(ctx context.Context, hit storage.ProductHit, kind v1.EventKind, at time.Time) error {
	_, err := a.db.ExecContext(ctx, queryIncrementProductSummary,
		hit.ProductID,
		hit.ProductName,
		hit.UserID,
		string(kind),
		at,
	)
	if err != nil {
		return fmt.Errorf("increment product summary %s: %w", hit.ProductID, err)
	}

	slog.Debug("[SummaryAdapter] Incremented product summary",
		"product_id", hit.ProductID,
		"user_id", hit.UserID,
		"event_type", kind)
	return nil
}

// UserSummary reads one user's rollup.
func (a *SummaryAdapter) UserSummary(ctx context.Context, userID string) (*v1.UserSummary, error) {
	summary, err := scanUserSummary(a.db.QueryRowContext(ctx, queryUserSummary, userID))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, storage.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("read user summary %s: %w", userID, err)
	}
	return summary, nil
}

// ProductSummary reads one product's rollup.
func (a *SummaryAdapter) ProductSummary(ctx context.Context, productID string) (*v1.ProductSummary, error) {
	summary, err := scanProductSummary(a.db.QueryRowContext(ctx, queryProductSummary, productID))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, storage.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("read product summary %s: %w", productID, err)
	}
	return summary, nil
}

// TopProducts ranks the products owned by ownerIDs by product_view count.
func (a *SummaryAdapter) TopProducts(ctx context.Context, ownerIDs []string, limit int) ([]*v1.ProductSummary, error) {
	rows, err := a.db.QueryContext(ctx, queryTopProducts, pq.Array(ownerIDs), limit)
	if err != nil {
		return nil, fmt.Errorf("query top products: %w", err)
	}
	defer rows.Close()

	var products []*v1.ProductSummary
	for rows.Next() {
		summary, err := scanProductSummary(rows)
		if err != nil {
			return nil, fmt.Errorf("scan top product: %w", err)
		}
		products = append(products, summary)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating top products: %w", err)
	}

	return products, nil
}
