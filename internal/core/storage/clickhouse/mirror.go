package clickhouse

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/ClickHouse/clickhouse-go/v2"
	v1 "github.com/vitrine-lab/vitrine/internal/api/v1"
)

const (
	createEventsTable = `
		CREATE TABLE IF NOT EXISTS analytics_events (
			id           String,
			event_type   LowCardinality(String),
			user_id      String,
			is_anonymous Bool,
			data         String,
			occurred_at  DateTime64(3, 'UTC'),
			user_agent   String,
			referrer     String,
			page_path    String,
			session_id   String,
			browser      LowCardinality(String),
			os           LowCardinality(String),
			device_type  LowCardinality(String)
		)
		ENGINE = MergeTree
		ORDER BY (user_id, occurred_at)
	`

	insertEvents = `
		INSERT INTO analytics_events (
			id, event_type, user_id, is_anonymous, data, occurred_at,
			user_agent, referrer, page_path, session_id, browser, os, device_type
		)
	`
)

// batch is the part of driver.Batch the mirror uses.
type batch interface {
	Append(v ...any) error
	Send() error
}

// Options configures the ClickHouse connection.
type Options struct {
	Addr        []string
	Database    string
	Username    string
	Password    string
	DialTimeout time.Duration
}

// Mirror copies raw events into ClickHouse for ad-hoc analysis.
// It implements storage.EventMirror.
type Mirror struct {
	conn    clickhouse.Conn
	prepare func(ctx context.Context, query string) (batch, error)
}

// Open connects over the native protocol with LZ4 compression and pings the server.
func Open(opts Options) (*Mirror, error) {
	conn, err := clickhouse.Open(&clickhouse.Options{
		Addr: opts.Addr,
		Auth: clickhouse.Auth{
			Database: opts.Database,
			Username: opts.Username,
			Password: opts.Password,
		},
		ClientInfo: clickhouse.ClientInfo{
			Products: []struct {
				Name    string
				Version string
			}{{Name: "vitrine", Version: "1.0.0"}},
		},
		Compression: &clickhouse.Compression{
			Method: clickhouse.CompressionLZ4,
		},
		DialTimeout: opts.DialTimeout,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to connect to ClickHouse: %w", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := conn.Ping(ctx); err != nil {
		conn.Close()
		return nil, fmt.Errorf("failed to ping ClickHouse: %w", err)
	}

	if err := conn.Exec(ctx, createEventsTable); err != nil {
		conn.Close()
		return nil, fmt.Errorf("failed to create ClickHouse events table: %w", err)
	}

	slog.Info("[ClickHouse] Mirror connected", "addr", opts.Addr, "database", opts.Database)
	return NewMirror(conn), nil
}

// NewMirror wraps an open connection.
func NewMirror(conn clickhouse.Conn) *Mirror {
	return &Mirror{
		conn: conn,
		prepare: func(ctx context.Context, query string) (batch, error) {
			return conn.PrepareBatch(ctx, query)
		},
	}
}

// MirrorEvents appends events to one batch and sends it.
// Events that fail to append are logged and skipped.
func (m *Mirror) MirrorEvents(ctx context.Context, events []*v1.Event) error {
	if len(events) == 0 {
		return nil
	}

	b, err := m.prepare(ctx, insertEvents)
	if err != nil {
		return fmt.Errorf("failed to prepare batch insert: %w", err)
	}

	appended := 0
	for _, event := range events {
		data, err := json.Marshal(event.Data)
		if err != nil {
			slog.Warn("[ClickHouse] Skipping event with unencodable data", "event_id", event.ID, "error", err)
			continue
		}

		err = b.Append(
			event.ID,
			string(event.Type),
			event.UserID,
			event.IsAnonymous,
			string(data),
			event.Timestamp,
			event.UserAgent,
			event.Referrer,
			event.PagePath,
			event.SessionID,
			event.Browser,
			event.OS,
			event.DeviceType,
		)
		if err != nil {
			slog.Warn("[ClickHouse] Error appending event to batch", "event_id", event.ID, "error", err)
			continue
		}
		appended++
	}

	if appended == 0 {
		return nil
	}

	if err := b.Send(); err != nil {
		return fmt.Errorf("failed to send batch: %w", err)
	}

	slog.Debug("[ClickHouse] Mirrored events", "count", appended)
	return nil
}

// Ping reports whether ClickHouse answers.
func (m *Mirror) Ping(ctx context.Context) error {
	return m.conn.Ping(ctx)
}

// Close closes the connection.
func (m *Mirror) Close() error {
	if m.conn == nil {
		return nil
	}
	if err := m.conn.Close(); err != nil {
		return fmt.Errorf("failed to close ClickHouse connection: %w", err)
	}
	slog.Info("[ClickHouse] Connection closed")
	return nil
}
