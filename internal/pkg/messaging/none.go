package messaging

import (
	"context"
	"time"
)

// None discards every message.
type None struct{}

// Publish accepts and drops msg.
func (None) Publish(ctx context.Context, destination string, _ OutgoingMessage) (PublishResult, error) {
	if err := ctx.Err(); err != nil {
		return PublishResult{}, err
	}
	return PublishResult{Topic: destination, Timestamp: time.Now()}, nil
}

// Close is a no-op.
func (None) Close() error {
	return nil
}
