// Package analytics records storefront interactions, merges the anonymous
// buffer on sign-in and serves the read-side summaries.
package analytics

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	v1 "github.com/vitrine-lab/vitrine/internal/api/v1"
	"github.com/vitrine-lab/vitrine/internal/consent"
	"github.com/vitrine-lab/vitrine/internal/core/storage"
	"github.com/vitrine-lab/vitrine/internal/identity"
	"github.com/vitrine-lab/vitrine/internal/metrics"
)

// AnonymousIdentity yields the backend-issued anonymous principal.
type AnonymousIdentity interface {
	Ensure(ctx context.Context) (identity.Principal, error)
}

// SessionSource yields the device's session id.
type SessionSource interface {
	ID(ctx context.Context) string
}

// TagForwarder relays interactions to the third-party tag pipeline.
type TagForwarder interface {
	Forward(kind v1.EventKind, data v1.Data)
}

// Recorder writes interaction events and bumps the rollups.
//
// Record never returns an error: every step logs and swallows its own
// failure, and a failure in one step does not stop the next.
type Recorder struct {
	consent   *consent.Store
	session   SessionSource
	anonymous AnonymousIdentity
	buffer    *Buffer
	events    storage.EventStore
	summaries storage.SummaryStore
	mirror    storage.EventMirror
	forwarder TagForwarder

	writeTimeout time.Duration
	now          func() time.Time
}

// RecorderConfig holds the recorder's collaborators. Mirror and Forwarder are optional.
type RecorderConfig struct {
	Consent      *consent.Store
	Session      SessionSource
	Anonymous    AnonymousIdentity
	Buffer       *Buffer
	Events       storage.EventStore
	Summaries    storage.SummaryStore
	Mirror       storage.EventMirror
	Forwarder    TagForwarder
	WriteTimeout time.Duration
}

// NewRecorder creates a recorder.
func NewRecorder(cfg RecorderConfig) *Recorder {
	return &Recorder{
		consent:      cfg.Consent,
		session:      cfg.Session,
		anonymous:    cfg.Anonymous,
		buffer:       cfg.Buffer,
		events:       cfg.Events,
		summaries:    cfg.Summaries,
		mirror:       cfg.Mirror,
		forwarder:    cfg.Forwarder,
		writeTimeout: cfg.WriteTimeout,
		now:          time.Now,
	}
}

// Record captures one interaction.
// userID is the signed-in user, or "" for an unknown visitor.
func (r *Recorder) Record(ctx context.Context, kind v1.EventKind, userID string, payload v1.Payload) {
	defer func() {
		if rec := recover(); rec != nil {
			slog.Error("[Recorder] Recovered from panic", "event_type", kind, "panic", rec)
		}
	}()

	if !r.consent.IsAllowed(ctx, consent.Analytics) {
		metrics.EventsDropped.WithLabelValues(metrics.ReasonConsent).Inc()
		return
	}

	if !kind.Accepts(payload) {
		slog.Warn("[Recorder] Payload does not match event kind, dropping", "event_type", kind)
		metrics.EventsDropped.WithLabelValues(metrics.ReasonMismatch).Inc()
		return
	}

	var data v1.Data
	if payload != nil {
		data = v1.Sanitize(payload.Fields())
	} else {
		data = v1.Data{}
	}

	event := r.newEvent(ctx, kind, data)
	if userID != "" {
		r.recordKnown(ctx, event, userID)
	} else {
		r.recordAnonymous(ctx, event)
	}

	r.bumpRollups(ctx, kind, userID, data)

	if r.forwarder != nil {
		r.forwarder.Forward(kind, data)
	}
}

func (r *Recorder) newEvent(ctx context.Context, kind v1.EventKind, data v1.Data) *v1.Event {
	info := ClientInfoFrom(ctx)
	dev := parseUserAgent(info.UserAgent)

	return &v1.Event{
		ID:         uuid.NewString(),
		Type:       kind,
		Data:       data,
		Timestamp:  r.now().UTC(),
		UserAgent:  info.UserAgent,
		Referrer:   info.Referrer,
		PagePath:   info.PagePath,
		SessionID:  r.session.ID(ctx),
		Browser:    dev.Browser,
		OS:         dev.OS,
		DeviceType: dev.DeviceType,
	}
}

func (r *Recorder) recordKnown(ctx context.Context, event *v1.Event, userID string) {
	event.UserID = userID
	event.IsAnonymous = false

	if err := r.save(ctx, event); err != nil {
		slog.Error("[Recorder] Failed to write event",
			"event_type", event.Type,
			"user_id", userID,
			"error", err)
		metrics.WriteFailures.WithLabelValues(metrics.TargetEvents).Inc()
		return
	}
	metrics.EventsRecorded.WithLabelValues(string(event.Type), metrics.PathAuthenticated).Inc()
}

// recordAnonymous writes under the anonymous principal, falling back to the
// device buffer when no principal can be had or the write fails.
func (r *Recorder) recordAnonymous(ctx context.Context, event *v1.Event) {
	event.IsAnonymous = true

	principal, err := r.anonymous.Ensure(ctx)
	if err == nil {
		event.UserID = principal.ID
		if err = r.save(ctx, event); err == nil {
			metrics.EventsRecorded.WithLabelValues(string(event.Type), metrics.PathAnonymous).Inc()
			return
		}
		metrics.WriteFailures.WithLabelValues(metrics.TargetEvents).Inc()
	}
	slog.Debug("[Recorder] Anonymous write unavailable, buffering locally", "event_type", event.Type, "error", err)

	event.UserID = v1.AnonymousPrefix + event.SessionID
	if err := r.buffer.Append(ctx, event); err != nil {
		slog.Warn("[Recorder] Failed to buffer anonymous event", "event_type", event.Type, "error", err)
		metrics.WriteFailures.WithLabelValues(metrics.TargetBuffer).Inc()
		return
	}
	metrics.EventsRecorded.WithLabelValues(string(event.Type), metrics.PathBuffered).Inc()
}

func (r *Recorder) save(ctx context.Context, event *v1.Event) error {
	if err := event.Validate(); err != nil {
		return fmt.Errorf("invalid event: %w", err)
	}

	writeCtx, cancel := r.writeContext(ctx)
	defer cancel()

	if err := r.events.SaveEvent(writeCtx, event); err != nil {
		return err
	}

	if r.mirror != nil {
		if err := r.mirror.MirrorEvents(writeCtx, []*v1.Event{event}); err != nil {
			slog.Warn("[Recorder] Failed to mirror event", "event_id", event.ID, "error", err)
			metrics.WriteFailures.WithLabelValues(metrics.TargetMirror).Inc()
		}
	}
	return nil
}

// bumpRollups updates the user and product summaries. Both depend only on
// the caller-supplied userID, not on where the event was written.
func (r *Recorder) bumpRollups(ctx context.Context, kind v1.EventKind, userID string, data v1.Data) {
	if userID == "" {
		return
	}
	at := r.now().UTC()

	if !v1.IsAnonymousID(userID) {
		writeCtx, cancel := r.writeContext(ctx)
		err := r.summaries.IncrementUserSummary(writeCtx, userID, kind, at)
		cancel()
		if err != nil {
			slog.Error("[Recorder] Failed to update user summary", "user_id", userID, "event_type", kind, "error", err)
			metrics.WriteFailures.WithLabelValues(metrics.TargetUserSummary).Inc()
		}
	}

	productID := data.ProductID()
	if productID == "" {
		return
	}

	hit := storage.ProductHit{ProductID: productID, ProductName: data.ProductName(), UserID: userID}
	writeCtx, cancel := r.writeContext(ctx)
	defer cancel()
	if err := r.summaries.IncrementProductSummary(writeCtx, hit, kind, at); err != nil {
		slog.Error("[Recorder] Failed to update product summary", "product_id", productID, "event_type", kind, "error", err)
		metrics.WriteFailures.WithLabelValues(metrics.TargetProductSummary).Inc()
	}
}

func (r *Recorder) writeContext(ctx context.Context) (context.Context, context.CancelFunc) {
	if r.writeTimeout <= 0 {
		return context.WithCancel(ctx)
	}
	return context.WithTimeout(ctx, r.writeTimeout)
}
