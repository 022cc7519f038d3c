package ingestion

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/vitrine-lab/vitrine/internal/analytics"
	"github.com/vitrine-lab/vitrine/internal/consent"
	"github.com/vitrine-lab/vitrine/internal/server"
)

type consentResponse struct {
	Consent       consent.Consent  `json:"consent"`
	Settings      consent.Settings `json:"settings"`
	BannerVisible bool             `json:"banner_visible"`
}

// GetConsentHandler handles GET /v1/consent.
func (s *Service) GetConsentHandler(c *gin.Context) {
	p, _ := server.PipelineFrom(c)
	c.JSON(http.StatusOK, consentState(c, p))
}

// SaveSettingsHandler handles PUT /v1/consent with the per-category toggles.
func (s *Service) SaveSettingsHandler(c *gin.Context) {
	var settings consent.Settings
	if _, err := s.bindBody(c, &settings); err != nil {
		writeError(c, err)
		return
	}

	p, _ := server.PipelineFrom(c)
	p.Consent.SaveSettings(c.Request.Context(), settings)
	c.JSON(http.StatusOK, consentState(c, p))
}

// ResetConsentHandler handles DELETE /v1/consent.
func (s *Service) ResetConsentHandler(c *gin.Context) {
	p, _ := server.PipelineFrom(c)
	p.Consent.Reset(c.Request.Context())
	c.JSON(http.StatusOK, consentState(c, p))
}

// AcceptConsentHandler handles POST /v1/consent/accept.
func (s *Service) AcceptConsentHandler(c *gin.Context) {
	p, _ := server.PipelineFrom(c)
	p.Consent.Accept(c.Request.Context())
	c.JSON(http.StatusOK, consentState(c, p))
}

// DeclineConsentHandler handles POST /v1/consent/decline.
func (s *Service) DeclineConsentHandler(c *gin.Context) {
	p, _ := server.PipelineFrom(c)
	p.Consent.Decline(c.Request.Context())
	c.JSON(http.StatusOK, consentState(c, p))
}

func consentState(c *gin.Context, p *analytics.Pipeline) consentResponse {
	ctx := c.Request.Context()
	return consentResponse{
		Consent:       p.Consent.GetConsent(ctx),
		Settings:      p.Consent.GetSettings(ctx),
		BannerVisible: p.Consent.BannerVisible(ctx),
	}
}
