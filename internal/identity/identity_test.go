package identity

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"github.com/vitrine-lab/vitrine/internal/localstore"
)

func newTestTokens(t *testing.T, allowAnonymous bool) *TokenService {
	t.Helper()
	svc, err := NewTokenService(TokenConfig{
		Secret:         "test-secret",
		Issuer:         "vitrine-test",
		TTL:            time.Hour,
		AllowAnonymous: allowAnonymous,
	})
	require.NoError(t, err)
	return svc
}

func TestTokenService_IssueAndVerify(t *testing.T) {
	svc := newTestTokens(t, true)

	p, err := svc.Issue("user-1")
	require.NoError(t, err)
	require.False(t, p.Anonymous)

	verified, err := svc.Verify(p.Token)
	require.NoError(t, err)
	require.Equal(t, "user-1", verified.ID)
	require.False(t, verified.Anonymous)
}

func TestTokenService_AnonymousPrincipal(t *testing.T) {
	svc := newTestTokens(t, true)

	p, err := svc.SignInAnonymously(context.Background())
	require.NoError(t, err)
	require.True(t, p.Anonymous)
	require.NotEmpty(t, p.ID)

	verified, err := svc.Verify(p.Token)
	require.NoError(t, err)
	require.Equal(t, p.ID, verified.ID)
	require.True(t, verified.Anonymous)
}

func TestTokenService_AnonymousDisabled(t *testing.T) {
	svc := newTestTokens(t, false)

	_, err := svc.SignInAnonymously(context.Background())
	require.ErrorIs(t, err, ErrIdentityUnavailable)
}

func TestTokenService_RejectsBadTokens(t *testing.T) {
	svc := newTestTokens(t, true)
	other, err := NewTokenService(TokenConfig{Secret: "other", Issuer: "vitrine-test", TTL: time.Hour})
	require.NoError(t, err)

	foreign, err := other.Issue("user-1")
	require.NoError(t, err)

	_, err = svc.Verify(foreign.Token)
	require.ErrorIs(t, err, ErrInvalidToken)

	_, err = svc.Verify("not-a-token")
	require.ErrorIs(t, err, ErrInvalidToken)

	svc.now = func() time.Time { return time.Now().Add(-2 * time.Hour) }
	expired, err := svc.Issue("user-1")
	require.NoError(t, err)
	svc.now = time.Now

	_, err = svc.Verify(expired.Token)
	require.ErrorIs(t, err, ErrInvalidToken)
}

func TestNewTokenService_Validation(t *testing.T) {
	_, err := NewTokenService(TokenConfig{TTL: time.Hour})
	require.Error(t, err)

	_, err = NewTokenService(TokenConfig{Secret: "s"})
	require.Error(t, err)
}

// countingAuth counts sign-ins and holds each one until release is closed.
type countingAuth struct {
	calls   atomic.Int32
	release chan struct{}
	fail    error
	tokens  *TokenService
}

func (a *countingAuth) SignInAnonymously(ctx context.Context) (Principal, error) {
	a.calls.Add(1)
	if a.release != nil {
		<-a.release
	}
	if a.fail != nil {
		return Principal{}, a.fail
	}
	return a.tokens.SignInAnonymously(ctx)
}

func (a *countingAuth) Verify(token string) (Principal, error) {
	return a.tokens.Verify(token)
}

// contextAuth fails sign-ins whose context is already done.
type contextAuth struct {
	tokens *TokenService
}

func (a contextAuth) SignInAnonymously(ctx context.Context) (Principal, error) {
	if err := ctx.Err(); err != nil {
		return Principal{}, err
	}
	return a.tokens.SignInAnonymously(ctx)
}

func (a contextAuth) Verify(token string) (Principal, error) {
	return a.tokens.Verify(token)
}

func TestBridge_SignInOutlivesCallerContext(t *testing.T) {
	bridge := NewBridge(contextAuth{tokens: newTestTokens(t, true)}, localstore.NewMemory().Scope("device-1"))

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	p, err := bridge.Ensure(ctx)
	require.NoError(t, err)
	require.True(t, p.Anonymous)
}

func TestBridge_SingleInFlightSignIn(t *testing.T) {
	auth := &countingAuth{release: make(chan struct{}), tokens: newTestTokens(t, true)}
	bridge := NewBridge(auth, localstore.NewMemory().Scope("device-1"))
	ctx := context.Background()

	const callers = 16
	results := make([]Principal, callers)
	errs := make([]error, callers)

	var started, done sync.WaitGroup
	for i := 0; i < callers; i++ {
		started.Add(1)
		done.Add(1)
		go func(i int) {
			defer done.Done()
			started.Done()
			results[i], errs[i] = bridge.Ensure(ctx)
		}(i)
	}
	started.Wait()
	time.Sleep(20 * time.Millisecond)
	close(auth.release)
	done.Wait()

	require.Equal(t, int32(1), auth.calls.Load())
	for i := 0; i < callers; i++ {
		require.NoError(t, errs[i])
		require.Equal(t, results[0].ID, results[i].ID)
	}

	// Resolved principal is reused without another sign-in.
	again, err := bridge.Ensure(ctx)
	require.NoError(t, err)
	require.Equal(t, results[0].ID, again.ID)
	require.Equal(t, int32(1), auth.calls.Load())
}

func TestBridge_FailureIsNotMemoized(t *testing.T) {
	auth := &countingAuth{fail: errors.New("backend down"), tokens: newTestTokens(t, true)}
	bridge := NewBridge(auth, localstore.NewMemory().Scope("device-1"))
	ctx := context.Background()

	_, err := bridge.Ensure(ctx)
	require.ErrorIs(t, err, ErrIdentityUnavailable)
	_, ok := bridge.Current()
	require.False(t, ok)

	auth.fail = nil
	p, err := bridge.Ensure(ctx)
	require.NoError(t, err)
	require.True(t, p.Anonymous)
	require.Equal(t, int32(2), auth.calls.Load())
}

func TestBridge_RestoresCachedToken(t *testing.T) {
	tokens := newTestTokens(t, true)
	store := localstore.NewMemory()
	ctx := context.Background()

	first := NewBridge(&countingAuth{tokens: tokens}, store.Scope("device-1"))
	p, err := first.Ensure(ctx)
	require.NoError(t, err)

	auth := &countingAuth{tokens: tokens}
	second := NewBridge(auth, store.Scope("device-1"))
	restored, err := second.Ensure(ctx)
	require.NoError(t, err)
	require.Equal(t, p.ID, restored.ID)
	require.Equal(t, int32(0), auth.calls.Load())
}

func TestBridge_DiscardsInvalidCachedToken(t *testing.T) {
	storage := localstore.NewMemory().Scope("device-1")
	ctx := context.Background()
	require.NoError(t, storage.Set(ctx, localstore.KeyPrincipal, "garbage"))

	auth := &countingAuth{tokens: newTestTokens(t, true)}
	p, err := NewBridge(auth, storage).Ensure(ctx)
	require.NoError(t, err)
	require.True(t, p.Anonymous)
	require.Equal(t, int32(1), auth.calls.Load())

	cached, err := storage.Get(ctx, localstore.KeyPrincipal)
	require.NoError(t, err)
	require.Equal(t, p.Token, cached)
}

func TestBridge_Forget(t *testing.T) {
	storage := localstore.NewMemory().Scope("device-1")
	ctx := context.Background()
	bridge := NewBridge(&countingAuth{tokens: newTestTokens(t, true)}, storage)

	_, err := bridge.Ensure(ctx)
	require.NoError(t, err)

	bridge.Forget(ctx)
	_, ok := bridge.Current()
	require.False(t, ok)
	_, err = storage.Get(ctx, localstore.KeyPrincipal)
	require.ErrorIs(t, err, localstore.ErrNotFound)
}

func TestListener_SubscribeNotify(t *testing.T) {
	l := NewListener()
	ctx := context.Background()

	var got []string
	unsubscribe := l.Subscribe(func(_ context.Context, p Principal) {
		got = append(got, p.ID)
	})

	l.Notify(ctx, Principal{ID: "user-1"})
	unsubscribe()
	l.Notify(ctx, Principal{ID: "user-2"})

	require.Equal(t, []string{"user-1"}, got)
}
