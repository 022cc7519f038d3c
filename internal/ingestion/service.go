package ingestion

import (
	"github.com/gin-gonic/gin"

	"github.com/vitrine-lab/vitrine/internal/server"
)

type Service struct {
	pipelines        server.PipelineProvider
	tokens           server.TokenVerifier
	maxBodySizeBytes int
}

func NewService(pipelines server.PipelineProvider, tokens server.TokenVerifier, maxBodySizeMB int) *Service {
	if pipelines == nil {
		panic("ingestion: pipeline provider must not be nil")
	}
	if tokens == nil {
		panic("ingestion: token verifier must not be nil")
	}
	if maxBodySizeMB <= 0 {
		maxBodySizeMB = 1 // default to 1MB
	}
	return &Service{
		pipelines:        pipelines,
		tokens:           tokens,
		maxBodySizeBytes: maxBodySizeMB * 1024 * 1024,
	}
}

// RegisterRoutes registers the ingestion service routes.
func (s *Service) RegisterRoutes(r gin.IRouter) {
	g := r.Group("/v1", server.DeviceScope(s.pipelines), server.Authenticate(s.tokens))

	g.POST("/events", s.IngestHandler)
	g.POST("/page-views", s.PageViewHandler)
	g.POST("/merge", server.RequireUser(), s.MergeHandler)

	g.GET("/consent", s.GetConsentHandler)
	g.PUT("/consent", s.SaveSettingsHandler)
	g.DELETE("/consent", s.ResetConsentHandler)
	g.POST("/consent/accept", s.AcceptConsentHandler)
	g.POST("/consent/decline", s.DeclineConsentHandler)

	g.GET("/session", s.SessionHandler)
	g.GET("/buffer", s.BufferHandler)
	g.POST("/auth/anonymous", s.AnonymousSignInHandler)
}
