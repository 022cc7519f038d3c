package projection

import (
	"context"

	v1 "github.com/vitrine-lab/vitrine/internal/api/v1"
	"github.com/vitrine-lab/vitrine/internal/server"
)

// SummaryReader reads rollups. Implementations return nil, nil for unknown ids.
type SummaryReader interface {
	UserSummary(ctx context.Context, userID string) (*v1.UserSummary, error)
	ProductSummary(ctx context.Context, productID string) (*v1.ProductSummary, error)
}

// Service implements the analytics read API.
// Summaries are served straight from the shared store; the dashboard also
// folds in the calling device's buffered events.
type Service struct {
	summaries SummaryReader
	pipelines server.PipelineProvider
	tokens    server.TokenVerifier
}

// NewService creates a new projection service.
func NewService(summaries SummaryReader, pipelines server.PipelineProvider, tokens server.TokenVerifier) *Service {
	if summaries == nil {
		panic("projection: summary reader must not be nil")
	}
	if pipelines == nil {
		panic("projection: pipeline provider must not be nil")
	}
	if tokens == nil {
		panic("projection: token verifier must not be nil")
	}
	return &Service{
		summaries: summaries,
		pipelines: pipelines,
		tokens:    tokens,
	}
}
