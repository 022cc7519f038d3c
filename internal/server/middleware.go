package server

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/vitrine-lab/vitrine/internal/analytics"
	httperr "github.com/vitrine-lab/vitrine/internal/core/errors"
	"github.com/vitrine-lab/vitrine/internal/identity"
)

// HeaderDeviceID carries the caller's device id.
const HeaderDeviceID = "X-Device-ID"

const (
	keyPipeline  = "vitrine.pipeline"
	keyPrincipal = "vitrine.principal"
)

// PipelineProvider hands out the analytics pipeline of a device.
type PipelineProvider interface {
	Get(ctx context.Context, deviceID string) (*analytics.Pipeline, error)
}

// TokenVerifier verifies bearer tokens.
type TokenVerifier interface {
	Verify(token string) (identity.Principal, error)
}

// DeviceScope resolves the device pipeline from the X-Device-ID header and
// attaches the request's client info to the request context.
func DeviceScope(provider PipelineProvider) gin.HandlerFunc {
	return func(c *gin.Context) {
		deviceID := strings.TrimSpace(c.GetHeader(HeaderDeviceID))
		if deviceID == "" {
			c.AbortWithStatusJSON(http.StatusBadRequest, httperr.ErrorResponse{
				ErrorType: httperr.HttpMissingDeviceError,
				Message:   "X-Device-ID header is required",
			})
			return
		}

		p, err := provider.Get(c.Request.Context(), deviceID)
		if err != nil {
			slog.Error("Failed to resolve device pipeline", "error", err)
			c.AbortWithStatusJSON(http.StatusInternalServerError, httperr.ErrorResponse{
				ErrorType: httperr.HttpInternalError,
				Message:   "Failed to resolve device",
			})
			return
		}

		ctx := analytics.WithClientInfo(c.Request.Context(), analytics.ClientInfo{
			UserAgent: c.Request.UserAgent(),
			Referrer:  c.Request.Referer(),
		})
		c.Request = c.Request.WithContext(ctx)
		c.Set(keyPipeline, p)
		c.Next()
	}
}

// Authenticate reads an optional bearer token. Invalid tokens are rejected.
// A known user is announced on the device pipeline's auth listener, which
// merges the anonymous buffer once per session.
func Authenticate(verifier TokenVerifier) gin.HandlerFunc {
	return func(c *gin.Context) {
		header := c.GetHeader("Authorization")
		if header == "" {
			c.Next()
			return
		}

		token, ok := strings.CutPrefix(header, "Bearer ")
		if !ok || token == "" {
			abortUnauthorized(c, "Authorization header must be a bearer token")
			return
		}

		principal, err := verifier.Verify(token)
		if err != nil {
			if !errors.Is(err, identity.ErrInvalidToken) {
				slog.Error("Token verification failed", "error", err)
			}
			abortUnauthorized(c, "Invalid bearer token")
			return
		}

		c.Set(keyPrincipal, principal)
		if p, ok := PipelineFrom(c); ok && !principal.Anonymous {
			p.Listener.Notify(c.Request.Context(), principal)
		}
		c.Next()
	}
}

// RequireUser rejects requests without a known (non-anonymous) user.
func RequireUser() gin.HandlerFunc {
	return func(c *gin.Context) {
		if UserID(c) == "" {
			abortUnauthorized(c, "A signed-in user is required")
			return
		}
		c.Next()
	}
}

// PipelineFrom returns the device pipeline set by DeviceScope.
func PipelineFrom(c *gin.Context) (*analytics.Pipeline, bool) {
	v, ok := c.Get(keyPipeline)
	if !ok {
		return nil, false
	}
	p, ok := v.(*analytics.Pipeline)
	return p, ok
}

// PrincipalFrom returns the verified bearer principal, if any.
func PrincipalFrom(c *gin.Context) (identity.Principal, bool) {
	v, ok := c.Get(keyPrincipal)
	if !ok {
		return identity.Principal{}, false
	}
	p, ok := v.(identity.Principal)
	return p, ok
}

// UserID returns the known user of the request, "" for unknown and anonymous callers.
func UserID(c *gin.Context) string {
	p, ok := PrincipalFrom(c)
	if !ok || p.Anonymous {
		return ""
	}
	return p.ID
}

func abortUnauthorized(c *gin.Context, message string) {
	c.AbortWithStatusJSON(http.StatusUnauthorized, httperr.ErrorResponse{
		ErrorType: httperr.HttpUnauthorizedError,
		Message:   message,
	})
}
