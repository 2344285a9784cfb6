package messaging

import (
	"context"
	"errors"
	"fmt"
	"strings"
)

// Driver names accepted by NewFromDriver.
const (
	DriverNone         = "none"
	DriverNSQ          = "nsq"
	DriverNATS         = "nats"
	DriverKafka        = "kafka"
	DriverGooglePubSub = "google-pubsub"
)

var ErrUnknownDriver = errors.New("messaging: unknown driver")

// FactoryOptions carries the settings of every backend; only the one
// matching the driver is read.
type FactoryOptions struct {
	NSQ    NSQConfig
	Kafka  KafkaConfig
	NATS   NATSConfig
	PubSub PubSubConfig
}

type constructor func(context.Context, FactoryOptions) (Publisher, error)

// built drops the typed nil a failed constructor returns.
func built[T Publisher](p T, err error) (Publisher, error) {
	if err != nil {
		return nil, err
	}
	return p, nil
}

var drivers = map[string]constructor{
	DriverNone: func(context.Context, FactoryOptions) (Publisher, error) {
		return None{}, nil
	},
	DriverNSQ: func(_ context.Context, o FactoryOptions) (Publisher, error) {
		return built[*NSQ](NewNSQ(o.NSQ))
	},
	DriverNATS: func(_ context.Context, o FactoryOptions) (Publisher, error) {
		return built[*NATS](NewNATS(o.NATS))
	},
	DriverKafka: func(_ context.Context, o FactoryOptions) (Publisher, error) {
		return built[*Kafka](NewKafka(o.Kafka))
	},
	DriverGooglePubSub: func(ctx context.Context, o FactoryOptions) (Publisher, error) {
		return built[*PubSub](NewPubSub(ctx, o.PubSub))
	},
}

// NewFromDriver builds the Publisher named by driver, case-insensitively.
// A blank driver means DriverNone.
func NewFromDriver(ctx context.Context, driver string, opts FactoryOptions) (Publisher, error) {
	name := strings.ToLower(strings.TrimSpace(driver))
	if name == "" {
		name = DriverNone
	}

	build, ok := drivers[name]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnknownDriver, driver)
	}
	return build(ctx, opts)
}
