package natsadapter

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/nats-io/nats.go"

	"github.com/samirrijal/unirenta/internal/core/domain"
)

// Subjects
const (
	SubjectNavigationPrefix = "unirenta.navigation."
	SubjectNoticePrefix     = "unirenta.notices."
	SubjectBroadcast        = "unirenta.broadcast.notices"
)

// Publisher implements ports.EventPublisher using NATS JetStream.
type Publisher struct {
	conn *nats.Conn
	js   nats.JetStreamContext
}

// NewPublisher connects to NATS and enables JetStream.
func NewPublisher(url string) (*Publisher, error) {
	conn, err := RawConn(url)
	if err != nil {
		return nil, fmt.Errorf("nats connect: %w", err)
	}

	js, err := conn.JetStream()
	if err != nil {
		return nil, fmt.Errorf("jetstream: %w", err)
	}

	// Ensure streams exist
	streams := []nats.StreamConfig{
		{
			Name:      "UNIRENTA_NAVIGATION",
			Subjects:  []string{SubjectNavigationPrefix + ">"},
			Retention: nats.LimitsPolicy,
			MaxAge:    7 * 24 * time.Hour,
			Storage:   nats.FileStorage,
		},
		{
			Name:      "UNIRENTA_NOTICES",
			Subjects:  []string{SubjectNoticePrefix + ">"},
			Retention: nats.InterestPolicy,
			MaxAge:    24 * time.Hour,
			Storage:   nats.FileStorage,
		},
	}

	for _, cfg := range streams {
		if _, err := js.AddStream(&cfg); err != nil {
			// Stream may already exist, try update
			if _, err := js.UpdateStream(&cfg); err != nil {
				return nil, fmt.Errorf("ensure stream %s: %w", cfg.Name, err)
			}
		}
	}

	return &Publisher{conn: conn, js: js}, nil
}

// PublishNavigation records a popup selection on unirenta.navigation.<kind>.
func (p *Publisher) PublishNavigation(ctx context.Context, ev *domain.NavigationEvent) error {
	data, err := json.Marshal(ev)
	if err != nil {
		return err
	}
	_, err = p.js.Publish(SubjectNavigationPrefix+string(ev.Kind), data, nats.Context(ctx))
	return err
}

// PublishNotice records a classified notice on unirenta.notices.<severity>.
func (p *Publisher) PublishNotice(ctx context.Context, n *domain.Notice) error {
	data, err := json.Marshal(n)
	if err != nil {
		return err
	}
	_, err = p.js.Publish(SubjectNoticePrefix+string(n.Severity), data, nats.Context(ctx))
	return err
}

// PublishBroadcast sends a notice to every open map session. Broadcasts
// are not persisted.
func (p *Publisher) PublishBroadcast(ctx context.Context, n *domain.Notice) error {
	data, err := json.Marshal(n)
	if err != nil {
		return err
	}
	return p.conn.Publish(SubjectBroadcast, data)
}

// Connected reports whether the underlying connection is up.
func (p *Publisher) Connected() bool {
	return p.conn.IsConnected()
}

// Close drains and closes the connection.
func (p *Publisher) Close() {
	_ = p.conn.Drain()
}

// RawConn creates a plain NATS connection.
func RawConn(url string) (*nats.Conn, error) {
	return nats.Connect(url,
		nats.Name("unirenta"),
		nats.RetryOnFailedConnect(true),
		nats.MaxReconnects(-1),
		nats.ReconnectWait(2*time.Second),
	)
}
