package projection

import (
	"net/http"

	"github.com/gin-gonic/gin"

	httperr "github.com/vitrine-lab/vitrine/internal/core/errors"
	"github.com/vitrine-lab/vitrine/internal/server"
)

// RegisterRoutes registers all projection API routes on the given router.
func (s *Service) RegisterRoutes(r gin.IRouter) {
	g := r.Group("/v1/analytics")

	g.GET("/users/:user_id", s.HandleUserSummary)
	g.GET("/products/:product_id", s.HandleProductSummary)
	g.GET("/dashboard",
		server.DeviceScope(s.pipelines),
		server.Authenticate(s.tokens),
		server.RequireUser(),
		s.HandleDashboard,
	)
}

// HandleUserSummary handles GET /v1/analytics/users/:user_id
func (s *Service) HandleUserSummary(c *gin.Context) {
	var uri struct {
		UserID string `uri:"user_id" binding:"required"`
	}
	if err := c.ShouldBindUri(&uri); err != nil {
		writeInvalidPath(c, err)
		return
	}

	summary, err := s.summaries.UserSummary(c.Request.Context(), uri.UserID)
	if err != nil {
		writeQueryFailed(c, "Failed to read user summary", err)
		return
	}
	if summary == nil {
		writeNotFound(c, "No analytics recorded for user")
		return
	}

	c.JSON(http.StatusOK, summary)
}

// HandleProductSummary handles GET /v1/analytics/products/:product_id
func (s *Service) HandleProductSummary(c *gin.Context) {
	var uri struct {
		ProductID string `uri:"product_id" binding:"required"`
	}
	if err := c.ShouldBindUri(&uri); err != nil {
		writeInvalidPath(c, err)
		return
	}

	summary, err := s.summaries.ProductSummary(c.Request.Context(), uri.ProductID)
	if err != nil {
		writeQueryFailed(c, "Failed to read product summary", err)
		return
	}
	if summary == nil {
		writeNotFound(c, "No analytics recorded for product")
		return
	}

	c.JSON(http.StatusOK, summary)
}

// HandleDashboard handles GET /v1/analytics/dashboard for the signed-in merchant.
func (s *Service) HandleDashboard(c *gin.Context) {
	p, _ := server.PipelineFrom(c)

	dash, err := p.Aggregators.Dashboard(c.Request.Context(), server.UserID(c))
	if err != nil {
		writeQueryFailed(c, "Failed to build dashboard", err)
		return
	}

	c.JSON(http.StatusOK, dash)
}

func writeInvalidPath(c *gin.Context, err error) {
	c.JSON(http.StatusBadRequest, httperr.ErrorResponse{
		ErrorType: httperr.HttpInvalidJsonError,
		Message:   "Invalid path parameters",
		Details:   err.Error(),
	})
}

func writeNotFound(c *gin.Context, message string) {
	c.JSON(http.StatusNotFound, httperr.ErrorResponse{
		ErrorType: httperr.HttpNotFoundError,
		Message:   message,
	})
}

func writeQueryFailed(c *gin.Context, message string, err error) {
	c.JSON(http.StatusInternalServerError, httperr.ErrorResponse{
		ErrorType: httperr.HttpInternalError,
		Message:   message,
		Details:   err.Error(),
	})
}
