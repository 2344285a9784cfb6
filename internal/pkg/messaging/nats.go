package messaging

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/nats-io/nats.go"
)

var (
	ErrNATSSubjectRequired = errors.New("messaging: nats subject is required")
	ErrNATSURLRequired     = errors.New("messaging: nats url is required")
)

// natsFlushTimeout bounds the round trip when the caller set no deadline.
const natsFlushTimeout = 5 * time.Second

type NATSConfig struct {
	URL     string
	Options []nats.Option
}

// NATS publishes to core NATS subjects. There is no broker-side id, so
// PublishResult.MessageID stays empty.
type NATS struct {
	conn *nats.Conn
}

func NewNATS(cfg NATSConfig) (*NATS, error) {
	if cfg.URL == "" {
		return nil, ErrNATSURLRequired
	}

	conn, err := nats.Connect(cfg.URL, cfg.Options...)
	if err != nil {
		return nil, fmt.Errorf("messaging: nats connect %s: %w", cfg.URL, err)
	}
	return &NATS{conn: conn}, nil
}

// Publish returns once the server has seen the message, so a dead
// connection is reported to the caller instead of being buffered.
func (n *NATS) Publish(ctx context.Context, destination string, msg OutgoingMessage) (PublishResult, error) {
	if err := ctx.Err(); err != nil {
		return PublishResult{}, err
	}
	if destination == "" {
		return PublishResult{}, ErrNATSSubjectRequired
	}

	m := &nats.Msg{Subject: destination, Data: msg.Body, Header: nats.Header{}}
	for _, h := range msg.Headers {
		if h.Key != "" {
			m.Header.Add(h.Key, string(h.Value))
		}
	}

	if err := n.conn.PublishMsg(m); err != nil {
		return PublishResult{}, fmt.Errorf("messaging: nats publish %s: %w", destination, err)
	}

	if _, ok := ctx.Deadline(); !ok {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, natsFlushTimeout)
		defer cancel()
	}
	if err := n.conn.FlushWithContext(ctx); err != nil {
		return PublishResult{}, fmt.Errorf("messaging: nats flush: %w", err)
	}

	return PublishResult{Topic: destination, Timestamp: time.Now()}, nil
}

// Close drains in-flight messages, then closes the connection.
func (n *NATS) Close() error {
	err := n.conn.Drain()
	n.conn.Close()
	if errors.Is(err, nats.ErrConnectionClosed) {
		return nil
	}
	return err
}
