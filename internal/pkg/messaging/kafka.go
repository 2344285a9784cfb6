package messaging

import (
	"context"
	"errors"
	"fmt"
	"io"
	"sync/atomic"
	"time"

	"github.com/segmentio/kafka-go"
)

var (
	ErrKafkaTopicRequired   = errors.New("messaging: kafka topic is required")
	ErrKafkaBrokersRequired = errors.New("messaging: kafka brokers are required")
)

const defaultKafkaBatchTimeout = 10 * time.Millisecond

// KafkaConfig configures the Kafka publisher. A nil Transport keeps the
// kafka-go default.
type KafkaConfig struct {
	Brokers      []string
	Transport    kafka.RoundTripper
	BatchTimeout time.Duration
}

// Kafka publishes through a single writer; the topic travels on each
// message, and messages with the same key land on the same partition.
type Kafka struct {
	w      *kafka.Writer
	closed atomic.Bool
}

func NewKafka(cfg KafkaConfig) (*Kafka, error) {
	if len(cfg.Brokers) == 0 {
		return nil, ErrKafkaBrokersRequired
	}

	batch := cfg.BatchTimeout
	if batch <= 0 {
		batch = defaultKafkaBatchTimeout
	}

	return &Kafka{w: &kafka.Writer{
		Addr:                   kafka.TCP(cfg.Brokers...),
		Balancer:               &kafka.Hash{},
		BatchTimeout:           batch,
		RequiredAcks:           kafka.RequireAll,
		AllowAutoTopicCreation: true,
		Transport:              cfg.Transport,
	}}, nil
}

// Publish blocks until every in-sync replica has the message.
func (k *Kafka) Publish(ctx context.Context, destination string, msg OutgoingMessage) (PublishResult, error) {
	switch {
	case ctx.Err() != nil:
		return PublishResult{}, ctx.Err()
	case destination == "":
		return PublishResult{}, ErrKafkaTopicRequired
	case k.closed.Load():
		return PublishResult{}, io.ErrClosedPipe
	}

	m := kafka.Message{Topic: destination, Key: msg.Key, Value: msg.Body, Time: time.Now()}
	for _, h := range msg.Headers {
		if h.Key != "" {
			m.Headers = append(m.Headers, kafka.Header{Key: h.Key, Value: h.Value})
		}
	}

	if err := k.w.WriteMessages(ctx, m); err != nil {
		return PublishResult{}, fmt.Errorf("messaging: kafka publish %s: %w", destination, err)
	}
	return PublishResult{Topic: destination, Timestamp: m.Time}, nil
}

// Close flushes pending batches. Later calls are no-ops.
func (k *Kafka) Close() error {
	if !k.closed.CompareAndSwap(false, true) {
		return nil
	}
	return k.w.Close()
}
