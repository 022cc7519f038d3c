package v1

import (
	"fmt"
	"strings"
	"time"
)

// AnonymousPrefix tags user ids synthesized for visitors that could not get
// a backend-issued anonymous principal.
const AnonymousPrefix = "anonymous_"

// Event is one recorded storefront interaction.
// Events are never updated after creation.
type Event struct {
	// ID is assigned when the event is created.
	ID string `json:"id"`

	// Type is the interaction kind.
	Type EventKind `json:"event_type"`

	// UserID is a known user id, a backend-issued anonymous principal id,
	// or "anonymous_" + session id for locally buffered events.
	UserID      string `json:"user_id"`
	IsAnonymous bool   `json:"is_anonymous"`

	// Data is the sanitized payload.
	Data Data `json:"data"`

	Timestamp time.Time `json:"timestamp"`
	UserAgent string    `json:"user_agent"`
	Referrer  string    `json:"referrer"`
	PagePath  string    `json:"page_path"`
	SessionID string    `json:"session_id"`

	// Derived from UserAgent when the event is created.
	Browser    string `json:"browser,omitempty"`
	OS         string `json:"os,omitempty"`
	DeviceType string `json:"device_type,omitempty"`
}

// Validate ensures the event carries the attributes every store requires.
func (e *Event) Validate() error {
	if e.ID == "" {
		return fmt.Errorf("id is required")
	}

	if !e.Type.Valid() {
		return fmt.Errorf("invalid event_type %q", e.Type)
	}

	if e.UserID == "" {
		return fmt.Errorf("user_id is required")
	}

	if e.Timestamp.IsZero() {
		return fmt.Errorf("timestamp is required")
	}

	return nil
}

// IsAnonymousID reports whether id is a locally synthesized anonymous id.
func IsAnonymousID(id string) bool {
	return strings.HasPrefix(id, AnonymousPrefix)
}

// OwnerSet returns the user ids a merchant's analytics views query:
// the merchant id itself and its "anonymous_" twin.
func OwnerSet(merchantID string) []string {
	return []string{merchantID, AnonymousPrefix + merchantID}
}
