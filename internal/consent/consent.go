// Package consent stores a visitor's cookie/privacy choice and answers
// whether a category of processing is allowed.
package consent

import (
	"context"
	"errors"
	"log/slog"

	"github.com/goccy/go-json"
	"github.com/vitrine-lab/vitrine/internal/localstore"
)

// Consent is the coarse choice made on the consent banner.
type Consent string

const (
	Accepted Consent = "accepted"
	Declined Consent = "declined"
	Unset    Consent = ""
)

// Category is one toggle of the settings dialog.
type Category string

const (
	Necessary   Category = "necessary"
	Analytics   Category = "analytics"
	Functional  Category = "functional"
	Preferences Category = "preferences"
)

// Settings holds the per-category toggles.
type Settings struct {
	Necessary   bool `json:"necessary"`
	Analytics   bool `json:"analytics"`
	Functional  bool `json:"functional"`
	Preferences bool `json:"preferences"`
}

// DefaultSettings allows only what the site needs to function.
func DefaultSettings() Settings {
	return Settings{Necessary: true}
}

// AllSettings enables every category.
func AllSettings() Settings {
	return Settings{Necessary: true, Analytics: true, Functional: true, Preferences: true}
}

// Allows reports the stored flag for c.
func (s Settings) Allows(c Category) bool {
	switch c {
	case Necessary:
		return true
	case Analytics:
		return s.Analytics
	case Functional:
		return s.Functional
	case Preferences:
		return s.Preferences
	default:
		return false
	}
}

// Store reads and writes one device's consent state.
//
// Reads never fail: absent, unreadable or unparsable values fall back to
// Unset and DefaultSettings. Writes to unavailable storage are dropped.
type Store struct {
	storage localstore.Storage
}

// New creates a consent store on a device's storage.
func New(storage localstore.Storage) *Store {
	return &Store{storage: storage}
}

// GetConsent returns the stored choice, Unset when there is none.
func (s *Store) GetConsent(ctx context.Context) Consent {
	value, err := s.storage.Get(ctx, localstore.KeyConsent)
	if err != nil {
		if !errors.Is(err, localstore.ErrNotFound) {
			slog.Debug("[Consent] Read failed, treating as unset", "error", err)
		}
		return Unset
	}

	switch Consent(value) {
	case Accepted, Declined:
		return Consent(value)
	default:
		return Unset
	}
}

// GetSettings returns the stored toggles merged over DefaultSettings.
// Necessary is always reported as true.
func (s *Store) GetSettings(ctx context.Context) Settings {
	settings := DefaultSettings()

	raw, err := s.storage.Get(ctx, localstore.KeySettings)
	if err != nil {
		return settings
	}

	// Fields missing from the stored document keep their default.
	if err := json.Unmarshal([]byte(raw), &settings); err != nil {
		slog.Debug("[Consent] Stored settings unparsable, using defaults", "error", err)
		return DefaultSettings()
	}

	settings.Necessary = true
	return settings
}

// SaveSettings stores the toggles as given.
func (s *Store) SaveSettings(ctx context.Context, settings Settings) {
	raw, err := json.Marshal(settings)
	if err != nil {
		slog.Debug("[Consent] Failed to encode settings", "error", err)
		return
	}
	s.write(ctx, localstore.KeySettings, string(raw))
}

// SetConsent stores the coarse choice. Unset removes it.
func (s *Store) SetConsent(ctx context.Context, c Consent) {
	if c == Unset {
		s.remove(ctx, localstore.KeyConsent)
		return
	}
	s.write(ctx, localstore.KeyConsent, string(c))
}

// Accept records the banner's accept action: every category enabled.
func (s *Store) Accept(ctx context.Context) {
	s.SetConsent(ctx, Accepted)
	s.SaveSettings(ctx, AllSettings())
}

// Decline records the banner's decline action: only necessary processing.
func (s *Store) Decline(ctx context.Context) {
	s.SetConsent(ctx, Declined)
	s.SaveSettings(ctx, DefaultSettings())
}

// IsAllowed applies the coarse override: accepted allows everything,
// declined allows only necessary, unset defers to the stored toggles.
func (s *Store) IsAllowed(ctx context.Context, c Category) bool {
	if c == Necessary {
		return true
	}

	switch s.GetConsent(ctx) {
	case Accepted:
		return true
	case Declined:
		return false
	default:
		return s.GetSettings(ctx).Allows(c)
	}
}

// BannerVisible reports whether the visitor still has to choose.
func (s *Store) BannerVisible(ctx context.Context) bool {
	return s.GetConsent(ctx) == Unset
}

// Reset forgets the choice and the toggles, so the banner shows again.
func (s *Store) Reset(ctx context.Context) {
	s.remove(ctx, localstore.KeyConsent)
	s.remove(ctx, localstore.KeySettings)
}

func (s *Store) write(ctx context.Context, key, value string) {
	if err := s.storage.Set(ctx, key, value); err != nil {
		slog.Debug("[Consent] Write dropped", "key", key, "error", err)
	}
}

func (s *Store) remove(ctx context.Context, key string) {
	if err := s.storage.Remove(ctx, key); err != nil {
		slog.Debug("[Consent] Remove dropped", "key", key, "error", err)
	}
}
