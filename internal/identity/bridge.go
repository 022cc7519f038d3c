package identity

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"

	"github.com/vitrine-lab/vitrine/internal/localstore"
	"golang.org/x/sync/singleflight"
)

// Authenticator is the backend auth service the bridge signs in against.
type Authenticator interface {
	SignInAnonymously(ctx context.Context) (Principal, error)
	Verify(token string) (Principal, error)
}

// Bridge lazily obtains a backend-issued anonymous principal for one device.
//
// Concurrent callers share a single in-flight sign-in. A successful
// principal is kept in memory and its token cached in device storage;
// a failed attempt is not remembered, so the next call tries again.
type Bridge struct {
	auth    Authenticator
	storage localstore.Storage
	group   singleflight.Group

	mu      sync.Mutex
	current *Principal
}

// NewBridge creates the bridge for a device.
func NewBridge(auth Authenticator, storage localstore.Storage) *Bridge {
	return &Bridge{auth: auth, storage: storage}
}

// Ensure returns the device's anonymous principal, signing in when needed.
// Errors wrap ErrIdentityUnavailable.
func (b *Bridge) Ensure(ctx context.Context) (Principal, error) {
	if p, ok := b.Current(); ok {
		return p, nil
	}

	// The sign-in is shared by every waiting caller, so it must outlive the
	// request that happened to start it.
	ctx = context.WithoutCancel(ctx)

	v, err, shared := b.group.Do("anonymous", func() (interface{}, error) {
		// Another flight may have finished between Current and Do.
		if p, ok := b.Current(); ok {
			return p, nil
		}

		if p, ok := b.restore(ctx); ok {
			b.set(p)
			return p, nil
		}

		p, err := b.auth.SignInAnonymously(ctx)
		if err != nil {
			if errors.Is(err, ErrIdentityUnavailable) {
				return nil, err
			}
			return nil, fmt.Errorf("%w: %v", ErrIdentityUnavailable, err)
		}

		b.set(p)
		if err := b.storage.Set(ctx, localstore.KeyPrincipal, p.Token); err != nil {
			slog.Debug("[Identity] Failed to cache anonymous token", "error", err)
		}
		slog.Debug("[Identity] Signed in anonymously", "principal_id", p.ID)
		return p, nil
	})
	if err != nil {
		slog.Debug("[Identity] Anonymous sign-in failed", "shared", shared, "error", err)
		return Principal{}, err
	}

	return v.(Principal), nil
}

// restore verifies a token cached by an earlier process.
func (b *Bridge) restore(ctx context.Context) (Principal, bool) {
	token, err := b.storage.Get(ctx, localstore.KeyPrincipal)
	if err != nil || token == "" {
		return Principal{}, false
	}

	p, err := b.auth.Verify(token)
	if err != nil || !p.Anonymous {
		slog.Debug("[Identity] Discarding cached anonymous token", "error", err)
		_ = b.storage.Remove(ctx, localstore.KeyPrincipal)
		return Principal{}, false
	}
	return p, true
}

// Current returns the resolved principal, if any.
func (b *Bridge) Current() (Principal, bool) {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.current == nil {
		return Principal{}, false
	}
	return *b.current, true
}

func (b *Bridge) set(p Principal) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.current = &p
}

// Forget drops the principal and its cached token.
func (b *Bridge) Forget(ctx context.Context) {
	b.mu.Lock()
	b.current = nil
	b.mu.Unlock()

	if err := b.storage.Remove(ctx, localstore.KeyPrincipal); err != nil {
		slog.Debug("[Identity] Failed to clear cached anonymous token", "error", err)
	}
}
