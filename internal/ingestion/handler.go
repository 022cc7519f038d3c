package ingestion

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/vitrine-lab/vitrine/internal/analytics"
	v1 "github.com/vitrine-lab/vitrine/internal/api/v1"
	httperr "github.com/vitrine-lab/vitrine/internal/core/errors"
	"github.com/vitrine-lab/vitrine/internal/identity"
	"github.com/vitrine-lab/vitrine/internal/server"
)

const (
	msgReadBodyFailed = "Failed to read request body"
	msgInvalidJSON    = "Invalid JSON body"
	msgMergeFailed    = "Failed to merge anonymous events"
)

// ingestionError carries the structured HTTP error shape from a helper back to the orchestrator.
// Helpers return this instead of writing to gin.Context directly, keeping them decoupled from HTTP.
type ingestionError struct {
	statusCode int
	errorType  string
	message    string
	details    interface{}
}

func (e *ingestionError) Error() string {
	return e.message
}

// eventRequest is the wire shape of POST /v1/events.
type eventRequest struct {
	EventType string          `json:"event_type" binding:"required"`
	Data      json.RawMessage `json:"data"`
	PagePath  string          `json:"page_path"`
	Referrer  string          `json:"referrer"`
}

type pageViewRequest struct {
	PagePath string `json:"page_path" binding:"required"`
}

// IngestHandler handles POST /v1/events.
// Once the body is understood the answer is 202: recording is best effort
// and consent, identity and write outcomes are not reported to the caller.
func (s *Service) IngestHandler(c *gin.Context) {
	var req eventRequest
	payloadSize, err := s.bindBody(c, &req)
	if err != nil {
		writeError(c, err)
		return
	}

	kind, payload, err := parsePayload(req)
	if err != nil {
		writeError(c, err)
		return
	}

	p, _ := server.PipelineFrom(c)
	userID := server.UserID(c)

	slog.Debug("Received Event",
		"event_type", kind,
		"user_id", userID,
		"payload_size", payloadSize)

	ctx := withRequestInfo(c, req.PagePath, req.Referrer)
	p.Record(ctx, kind, userID, payload)

	c.JSON(http.StatusAccepted, gin.H{"status": "accepted"})
}

// PageViewHandler handles POST /v1/page-views, a store_visit shortcut.
func (s *Service) PageViewHandler(c *gin.Context) {
	var req pageViewRequest
	if _, err := s.bindBody(c, &req); err != nil {
		writeError(c, err)
		return
	}

	p, _ := server.PipelineFrom(c)
	ctx := withRequestInfo(c, req.PagePath, "")
	p.TrackPageView(ctx, server.UserID(c), req.PagePath)

	c.JSON(http.StatusAccepted, gin.H{"status": "accepted"})
}

// MergeHandler handles POST /v1/merge for a signed-in user.
func (s *Service) MergeHandler(c *gin.Context) {
	p, _ := server.PipelineFrom(c)
	userID := server.UserID(c)

	result, err := p.SignedIn(c.Request.Context(), userID)
	if err != nil {
		slog.Error("Merge failed", "user_id", userID, "error", err)
		writeError(c, &ingestionError{
			statusCode: http.StatusInternalServerError,
			errorType:  httperr.HttpInternalError,
			message:    msgMergeFailed,
		})
		return
	}

	c.JSON(http.StatusOK, result)
}

// SessionHandler handles GET /v1/session.
func (s *Service) SessionHandler(c *gin.Context) {
	p, _ := server.PipelineFrom(c)
	ctx := c.Request.Context()

	c.JSON(http.StatusOK, gin.H{
		"session_id":     p.Session.ID(ctx),
		"banner_visible": p.Consent.BannerVisible(ctx),
	})
}

// BufferHandler handles GET /v1/buffer.
func (s *Service) BufferHandler(c *gin.Context) {
	p, _ := server.PipelineFrom(c)
	c.JSON(http.StatusOK, gin.H{"events": p.Aggregators.BufferedEvents(c.Request.Context())})
}

// AnonymousSignInHandler handles POST /v1/auth/anonymous.
func (s *Service) AnonymousSignInHandler(c *gin.Context) {
	p, _ := server.PipelineFrom(c)

	principal, err := p.Bridge.Ensure(c.Request.Context())
	if err != nil {
		status := http.StatusInternalServerError
		errorType := httperr.HttpInternalError
		if errors.Is(err, identity.ErrIdentityUnavailable) {
			status = http.StatusServiceUnavailable
			errorType = httperr.HttpIdentityUnavailableError
		}
		writeError(c, &ingestionError{
			statusCode: status,
			errorType:  errorType,
			message:    "Anonymous sign-in unavailable",
		})
		return
	}

	c.JSON(http.StatusOK, principal)
}

// bindBody reads the size-limited request body and binds it into dst.
// Returns the raw payload size (used for structured logging upstream).
func (s *Service) bindBody(c *gin.Context, dst interface{}) (int, *ingestionError) {
	// Enforce maximum body size to prevent OOM attacks
	maxBytes := int64(s.maxBodySizeBytes)
	limitedBody := io.LimitReader(c.Request.Body, maxBytes+1) // +1 to detect oversized requests

	bodyBytes, err := io.ReadAll(limitedBody)
	if err != nil {
		slog.Error("Failed to read request body", "error", err)
		return 0, &ingestionError{
			statusCode: http.StatusInternalServerError,
			errorType:  httperr.HttpInternalError,
			message:    msgReadBodyFailed,
		}
	}

	if int64(len(bodyBytes)) > maxBytes {
		slog.Warn("Request body exceeds maximum size", "size", len(bodyBytes), "max", maxBytes)
		return len(bodyBytes), &ingestionError{
			statusCode: http.StatusRequestEntityTooLarge,
			errorType:  httperr.HttpInvalidJsonError,
			message:    "Request body exceeds maximum allowed size",
			details: map[string]interface{}{
				"max_size_mb": maxBytes / (1024 * 1024),
			},
		}
	}

	c.Request.Body = io.NopCloser(bytes.NewReader(bodyBytes))

	if err := c.ShouldBindJSON(dst); err != nil {
		slog.Warn("Invalid JSON body received", "error", err, "payload_size", len(bodyBytes))
		return len(bodyBytes), &ingestionError{
			statusCode: http.StatusBadRequest,
			errorType:  httperr.HttpInvalidJsonError,
			message:    msgInvalidJSON,
		}
	}

	return len(bodyBytes), nil
}

// parsePayload resolves the event kind and decodes data into its payload variant.
func parsePayload(req eventRequest) (v1.EventKind, v1.Payload, *ingestionError) {
	kind, err := v1.ParseKind(req.EventType)
	if err != nil {
		slog.Warn("Unknown event type", "event_type", req.EventType)
		return "", nil, &ingestionError{
			statusCode: http.StatusBadRequest,
			errorType:  httperr.HttpInvalidEventError,
			message:    err.Error(),
			details:    map[string]interface{}{"known_types": v1.Kinds},
		}
	}

	payload, err := v1.DecodePayload(kind, req.Data)
	if err != nil {
		slog.Warn("Payload rejected", "event_type", kind, "error", err)
		errorType := httperr.HttpInvalidJsonError
		if errors.Is(err, v1.ErrPayloadMismatch) {
			errorType = httperr.HttpPayloadMismatchError
		}
		return "", nil, &ingestionError{
			statusCode: http.StatusBadRequest,
			errorType:  errorType,
			message:    err.Error(),
		}
	}

	return kind, payload, nil
}

// withRequestInfo fills the page path and referrer reported in the body
// into the client info set by the device middleware.
func withRequestInfo(c *gin.Context, pagePath, referrer string) context.Context {
	ctx := c.Request.Context()
	info := analytics.ClientInfoFrom(ctx)
	if pagePath != "" {
		info.PagePath = pagePath
	}
	if referrer != "" {
		info.Referrer = referrer
	}
	return analytics.WithClientInfo(ctx, info)
}

// writeError serializes an ingestionError as the JSON HTTP response.
func writeError(c *gin.Context, err *ingestionError) {
	c.JSON(err.statusCode, httperr.ErrorResponse{
		ErrorType: err.errorType,
		Message:   err.message,
		Details:   err.details,
	})
}
