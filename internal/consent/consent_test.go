package consent

import (
	"context"
	"testing"

	"github.com/leanovate/gopter"
	"github.com/leanovate/gopter/gen"
	"github.com/leanovate/gopter/prop"
	"github.com/stretchr/testify/require"
	"github.com/vitrine-lab/vitrine/internal/localstore"
)

func newStore(t *testing.T) (*Store, localstore.Storage) {
	t.Helper()
	storage := localstore.NewMemory().Scope("device-1")
	return New(storage), storage
}

func TestStore_UnsetDefaults(t *testing.T) {
	store, _ := newStore(t)
	ctx := context.Background()

	require.Equal(t, Unset, store.GetConsent(ctx))
	require.Equal(t, DefaultSettings(), store.GetSettings(ctx))
	require.False(t, store.IsAllowed(ctx, Analytics))
	require.True(t, store.IsAllowed(ctx, Necessary))
	require.True(t, store.BannerVisible(ctx))
}

func TestStore_CoarseOverride(t *testing.T) {
	parameters := gopter.DefaultTestParameters()
	properties := gopter.NewProperties(parameters)

	categories := []Category{Analytics, Functional, Preferences}

	properties.Property("accepted allows and declined denies every category regardless of toggles", prop.ForAll(
		func(analytics, functional, preferences bool, accepted bool) bool {
			store := New(localstore.NewMemory().Scope("device-1"))
			ctx := context.Background()

			store.SaveSettings(ctx, Settings{
				Necessary:   true,
				Analytics:   analytics,
				Functional:  functional,
				Preferences: preferences,
			})
			if accepted {
				store.SetConsent(ctx, Accepted)
			} else {
				store.SetConsent(ctx, Declined)
			}

			for _, c := range categories {
				if store.IsAllowed(ctx, c) != accepted {
					return false
				}
			}
			return store.IsAllowed(ctx, Necessary)
		},
		gen.Bool(), gen.Bool(), gen.Bool(), gen.Bool(),
	))

	properties.Property("unset defers to the stored toggles", prop.ForAll(
		func(analytics, functional, preferences bool) bool {
			store := New(localstore.NewMemory().Scope("device-1"))
			ctx := context.Background()

			store.SaveSettings(ctx, Settings{
				Analytics:   analytics,
				Functional:  functional,
				Preferences: preferences,
			})

			return store.IsAllowed(ctx, Analytics) == analytics &&
				store.IsAllowed(ctx, Functional) == functional &&
				store.IsAllowed(ctx, Preferences) == preferences
		},
		gen.Bool(), gen.Bool(), gen.Bool(),
	))

	properties.TestingRun(t)
}

func TestStore_GetSettingsMergesOverDefaults(t *testing.T) {
	store, storage := newStore(t)
	ctx := context.Background()

	require.NoError(t, storage.Set(ctx, localstore.KeySettings, `{"analytics":true}`))
	require.Equal(t, Settings{Necessary: true, Analytics: true}, store.GetSettings(ctx))

	require.NoError(t, storage.Set(ctx, localstore.KeySettings, `{not json`))
	require.Equal(t, DefaultSettings(), store.GetSettings(ctx))
}

func TestStore_NecessaryStoredVerbatimButReportedTrue(t *testing.T) {
	store, storage := newStore(t)
	ctx := context.Background()

	store.SaveSettings(ctx, Settings{Necessary: false, Functional: true})

	raw, err := storage.Get(ctx, localstore.KeySettings)
	require.NoError(t, err)
	require.JSONEq(t, `{"necessary":false,"analytics":false,"functional":true,"preferences":false}`, raw)

	settings := store.GetSettings(ctx)
	require.True(t, settings.Necessary)
	require.True(t, settings.Functional)
	require.True(t, store.IsAllowed(ctx, Necessary))
}

func TestStore_UnknownConsentValueIsUnset(t *testing.T) {
	store, storage := newStore(t)
	ctx := context.Background()

	require.NoError(t, storage.Set(ctx, localstore.KeyConsent, "maybe"))
	require.Equal(t, Unset, store.GetConsent(ctx))
}

func TestStore_AcceptDeclineReset(t *testing.T) {
	store, _ := newStore(t)
	ctx := context.Background()

	store.Accept(ctx)
	require.Equal(t, Accepted, store.GetConsent(ctx))
	require.Equal(t, AllSettings(), store.GetSettings(ctx))
	require.False(t, store.BannerVisible(ctx))

	store.Decline(ctx)
	require.Equal(t, Declined, store.GetConsent(ctx))
	require.Equal(t, DefaultSettings(), store.GetSettings(ctx))
	require.False(t, store.IsAllowed(ctx, Analytics))

	store.Reset(ctx)
	require.Equal(t, Unset, store.GetConsent(ctx))
	require.True(t, store.BannerVisible(ctx))
}

func TestStore_UnavailableStorageDegrades(t *testing.T) {
	store := New(localstore.Unavailable{})
	ctx := context.Background()

	store.Accept(ctx)
	store.Reset(ctx)

	require.Equal(t, Unset, store.GetConsent(ctx))
	require.Equal(t, DefaultSettings(), store.GetSettings(ctx))
	require.False(t, store.IsAllowed(ctx, Analytics))
}
