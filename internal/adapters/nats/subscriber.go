package natsadapter

import (
	"encoding/json"
	"fmt"
	"log/slog"

	"github.com/nats-io/nats.go"

	"github.com/samirrijal/unirenta/internal/core/domain"
)

// Subscriber fans broadcast notices out to in-process listeners.
type Subscriber struct {
	conn *nats.Conn
}

// NewSubscriber creates a subscriber with its own NATS connection.
func NewSubscriber(url string) (*Subscriber, error) {
	conn, err := RawConn(url)
	if err != nil {
		return nil, fmt.Errorf("nats connect: %w", err)
	}
	return &Subscriber{conn: conn}, nil
}

// SubscribeBroadcasts calls handler for every broadcast notice until the
// returned cancel function is called. Malformed messages are dropped.
func (s *Subscriber) SubscribeBroadcasts(handler func(n domain.Notice)) (func(), error) {
	sub, err := s.conn.Subscribe(SubjectBroadcast, func(msg *nats.Msg) {
		var n domain.Notice
		if err := json.Unmarshal(msg.Data, &n); err != nil {
			slog.Warn("dropping malformed broadcast", "error", err)
			return
		}
		handler(n)
	})
	if err != nil {
		return nil, fmt.Errorf("subscribe %s: %w", SubjectBroadcast, err)
	}
	return func() { _ = sub.Unsubscribe() }, nil
}

// Close drains the connection.
func (s *Subscriber) Close() {
	_ = s.conn.Drain()
}
