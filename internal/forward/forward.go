// Package forward relays recorded interactions to the third-party tag pipeline.
package forward

import (
	"fmt"
	"log/slog"
	"time"

	"github.com/goccy/go-json"
	"github.com/nats-io/nats.go"

	v1 "github.com/vitrine-lab/vitrine/internal/api/v1"
)

const (
	eventCategory = "engagement"
	eventValue    = 1
)

// Publisher sends a message on a subject. *nats.Conn satisfies it.
type Publisher interface {
	Publish(subject string, data []byte) error
}

// Message is the tag-shaped record published for each interaction.
type Message struct {
	Event            string  `json:"event"`
	EventCategory    string  `json:"event_category"`
	EventLabel       string  `json:"event_label"`
	Value            int     `json:"value"`
	CustomParameters v1.Data `json:"custom_parameters"`
}

// NewMessage builds the tag message for an interaction.
// The label is the product name, else the category id, else "general".
func NewMessage(kind v1.EventKind, data v1.Data) Message {
	if data == nil {
		data = v1.Data{}
	}
	return Message{
		Event:            string(kind),
		EventCategory:    eventCategory,
		EventLabel:       data.Label(),
		Value:            eventValue,
		CustomParameters: data,
	}
}

// Forwarder publishes tag messages. Failures are logged, never returned.
type Forwarder struct {
	pub     Publisher
	subject string
}

// New creates a forwarder publishing on subject.
func New(pub Publisher, subject string) *Forwarder {
	return &Forwarder{pub: pub, subject: subject}
}

// Forward publishes the interaction. It does not wait for delivery.
func (f *Forwarder) Forward(kind v1.EventKind, data v1.Data) {
	payload, err := json.Marshal(NewMessage(kind, data))
	if err != nil {
		slog.Warn("[Forwarder] Failed to encode tag message", "event_type", kind, "error", err)
		return
	}

	if err := f.pub.Publish(f.subject, payload); err != nil {
		slog.Warn("[Forwarder] Failed to publish tag message", "event_type", kind, "error", err)
	}
}

// Connect dials NATS with reconnects enabled.
func Connect(url string) (*nats.Conn, error) {
	nc, err := nats.Connect(url,
		nats.Name("vitrine-forwarder"),
		nats.RetryOnFailedConnect(true),
		nats.MaxReconnects(10),
		nats.ReconnectWait(time.Second),
	)
	if err != nil {
		return nil, fmt.Errorf("connect to NATS: %w", err)
	}
	return nc, nil
}
