package analytics

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"time"

	v1 "github.com/vitrine-lab/vitrine/internal/api/v1"
	"github.com/vitrine-lab/vitrine/internal/consent"
	"github.com/vitrine-lab/vitrine/internal/core/storage"
	"github.com/vitrine-lab/vitrine/internal/identity"
	"github.com/vitrine-lab/vitrine/internal/localstore"
	"github.com/vitrine-lab/vitrine/internal/metrics"
	"github.com/vitrine-lab/vitrine/internal/session"
)

// ErrDisposed is returned by pipeline operations after Dispose.
var ErrDisposed = errors.New("pipeline disposed")

// Failed sign-in merges are retried by the auth listener no sooner than
// mergeRetryBase, doubling per failure up to mergeRetryMax.
const (
	mergeRetryBase = time.Second
	mergeRetryMax  = time.Minute
)

type mergeRetry struct {
	failures int
	next     time.Time
}

// Options tunes a pipeline.
type Options struct {
	WriteTimeout     time.Duration
	DrainLockTTL     time.Duration
	TopProductsLimit int
	RecentLimit      int
}

// Deps are the collaborators a pipeline is built from.
// Mirror and Forwarder are optional.
type Deps struct {
	Storage   localstore.Storage
	Auth      identity.Authenticator
	Events    storage.EventStore
	Summaries storage.SummaryStore
	Mirror    storage.EventMirror
	Forwarder TagForwarder
	Options   Options
}

// Pipeline is the analytics context of one device. It owns the device's
// consent, session, anonymous identity and buffer.
type Pipeline struct {
	Consent     *consent.Store
	Session     *session.Identity
	Bridge      *identity.Bridge
	Listener    *identity.Listener
	Recorder    *Recorder
	Merger      *Merger
	Aggregators *Aggregators
	Buffer      *Buffer

	unsubscribe func()

	mu       sync.RWMutex
	disposed bool
	inflight sync.WaitGroup
	active   int
	lastUsed time.Time
	signedIn map[string]bool
	retries  map[string]mergeRetry
	now      func() time.Time
}

// NewPipeline wires a pipeline. Call Init before use and Dispose when done.
func NewPipeline(deps Deps) *Pipeline {
	buffer := NewBuffer(deps.Storage)
	consentStore := consent.New(deps.Storage)
	sess := session.New(deps.Storage)
	bridge := identity.NewBridge(deps.Auth, deps.Storage)

	p := &Pipeline{
		Consent:  consentStore,
		Session:  sess,
		Bridge:   bridge,
		Listener: identity.NewListener(),
		Buffer:   buffer,
		Recorder: NewRecorder(RecorderConfig{
			Consent:      consentStore,
			Session:      sess,
			Anonymous:    bridge,
			Buffer:       buffer,
			Events:       deps.Events,
			Summaries:    deps.Summaries,
			Mirror:       deps.Mirror,
			Forwarder:    deps.Forwarder,
			WriteTimeout: deps.Options.WriteTimeout,
		}),
		Merger:      NewMerger(deps.Storage, buffer, deps.Events, deps.Mirror, deps.Options.DrainLockTTL),
		Aggregators: NewAggregators(deps.Summaries, deps.Events, buffer, deps.Options.TopProductsLimit, deps.Options.RecentLimit),
		signedIn:    make(map[string]bool),
		retries:     make(map[string]mergeRetry),
		now:         time.Now,
	}
	p.lastUsed = p.now()
	return p
}

// Init resolves the session id and subscribes the merge to sign-ins.
func (p *Pipeline) Init(ctx context.Context) error {
	if err := p.enter(); err != nil {
		return err
	}
	defer p.exit()

	sessionID := p.Session.ID(ctx)
	p.unsubscribe = p.Listener.Subscribe(func(ctx context.Context, principal identity.Principal) {
		if principal.Anonymous {
			return
		}
		if wait := p.mergeBackoff(ctx, principal.ID); wait > 0 {
			slog.Debug("[Pipeline] Merge on sign-in backing off", "user_id", principal.ID, "retry_in", wait)
			return
		}
		if _, err := p.SignedIn(ctx, principal.ID); err != nil {
			slog.Error("[Pipeline] Merge on sign-in failed", "user_id", principal.ID, "error", err)
		}
	})

	slog.Debug("[Pipeline] Initialized", "session_id", sessionID)
	return nil
}

// Dispose stops accepting work and waits for in-flight calls to finish.
func (p *Pipeline) Dispose() {
	p.mu.Lock()
	if p.disposed {
		p.mu.Unlock()
		return
	}
	p.disposed = true
	p.mu.Unlock()

	p.inflight.Wait()
	if p.unsubscribe != nil {
		p.unsubscribe()
	}
}

// Record captures one interaction. Dropped after Dispose.
func (p *Pipeline) Record(ctx context.Context, kind v1.EventKind, userID string, payload v1.Payload) {
	if err := p.enter(); err != nil {
		metrics.EventsDropped.WithLabelValues(metrics.ReasonDisposed).Inc()
		return
	}
	defer p.exit()

	p.Recorder.Record(ctx, kind, userID, payload)
}

// TrackPageView records a store_visit for pagePath.
func (p *Pipeline) TrackPageView(ctx context.Context, userID, pagePath string) {
	p.Record(ctx, v1.KindStoreVisit, userID, v1.StoreVisitPayload{
		PagePath:  pagePath,
		Timestamp: p.now().UTC().Format(time.RFC3339Nano),
	})
}

// SignedIn merges the anonymous buffer for userID, at most once per
// session and user. A failed merge is retried on the next call.
func (p *Pipeline) SignedIn(ctx context.Context, userID string) (MergeResult, error) {
	if err := p.enter(); err != nil {
		return MergeResult{}, err
	}
	defer p.exit()

	key := p.Session.ID(ctx) + "\x00" + userID
	p.mu.Lock()
	done := p.signedIn[key]
	p.mu.Unlock()
	if done {
		return MergeResult{Skipped: true}, nil
	}

	result, err := p.Merger.MergeOnLogin(ctx, userID)
	if err != nil {
		p.mu.Lock()
		retry := p.retries[key]
		retry.failures++
		retry.next = p.now().Add(retryDelay(retry.failures))
		p.retries[key] = retry
		p.mu.Unlock()
		return result, err
	}
	if result.Skipped {
		return result, nil
	}

	p.mu.Lock()
	p.signedIn[key] = true
	delete(p.retries, key)
	p.mu.Unlock()
	return result, nil
}

// mergeBackoff returns how long the listener should wait before retrying
// a failed merge for userID. Zero means try now.
func (p *Pipeline) mergeBackoff(ctx context.Context, userID string) time.Duration {
	key := p.Session.ID(ctx) + "\x00" + userID

	p.mu.RLock()
	defer p.mu.RUnlock()
	retry, ok := p.retries[key]
	if !ok {
		return 0
	}
	if wait := retry.next.Sub(p.now()); wait > 0 {
		return wait
	}
	return 0
}

func retryDelay(failures int) time.Duration {
	delay := mergeRetryBase
	for i := 1; i < failures && delay < mergeRetryMax; i++ {
		delay *= 2
	}
	if delay > mergeRetryMax {
		delay = mergeRetryMax
	}
	return delay
}

// LastUsed is when the pipeline last accepted a call or was handed out.
func (p *Pipeline) LastUsed() time.Time {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return p.lastUsed
}

// Touch marks the pipeline as used now.
func (p *Pipeline) Touch() {
	p.mu.Lock()
	p.lastUsed = p.now()
	p.mu.Unlock()
}

// idleSince reports whether the pipeline has no call running and was last
// used before cutoff.
func (p *Pipeline) idleSince(cutoff time.Time) bool {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return p.active == 0 && p.lastUsed.Before(cutoff)
}

// enter registers an in-flight call. Callers must call p.exit.
func (p *Pipeline) enter() error {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.disposed {
		return ErrDisposed
	}
	p.inflight.Add(1)
	p.active++
	p.lastUsed = p.now()
	return nil
}

func (p *Pipeline) exit() {
	p.mu.Lock()
	p.active--
	p.lastUsed = p.now()
	p.mu.Unlock()
	p.inflight.Done()
}
