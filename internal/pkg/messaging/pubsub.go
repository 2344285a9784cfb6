package messaging

import (
	"context"
	"errors"
	"fmt"
	"io"
	"sync"
	"time"

	"cloud.google.com/go/pubsub/v2"
	"google.golang.org/api/option"
)

var (
	ErrPubSubProjectIDRequired = errors.New("messaging: pubsub project id is required")
	ErrPubSubTopicRequired     = errors.New("messaging: pubsub topic is required")
)

// PubSubConfig selects either an existing Client or a ProjectID plus
// ClientOptions for a client this package owns.
type PubSubConfig struct {
	ProjectID     string
	Client        *pubsub.Client
	ClientOptions []option.ClientOption
}

// PubSub publishes to Google Pub/Sub. Headers become attributes and a
// non-empty Key becomes the ordering key.
type PubSub struct {
	client *pubsub.Client

	mu     sync.Mutex
	topics map[string]*pubsub.Publisher
}

func NewPubSub(ctx context.Context, cfg PubSubConfig) (*PubSub, error) {
	client := cfg.Client
	if client == nil {
		if cfg.ProjectID == "" {
			return nil, ErrPubSubProjectIDRequired
		}

		var err error
		if client, err = pubsub.NewClient(ctx, cfg.ProjectID, cfg.ClientOptions...); err != nil {
			return nil, fmt.Errorf("messaging: pubsub client: %w", err)
		}
	}

	return &PubSub{client: client, topics: make(map[string]*pubsub.Publisher)}, nil
}

// Publish blocks until the server acknowledges msg or ctx ends.
func (p *PubSub) Publish(ctx context.Context, destination string, msg OutgoingMessage) (PublishResult, error) {
	if err := ctx.Err(); err != nil {
		return PublishResult{}, err
	}
	if destination == "" {
		return PublishResult{}, ErrPubSubTopicRequired
	}

	pub, err := p.topic(destination)
	if err != nil {
		return PublishResult{}, err
	}

	id, err := pub.Publish(ctx, &pubsub.Message{
		Data:        msg.Body,
		Attributes:  HeaderMap(msg.Headers),
		OrderingKey: string(msg.Key),
	}).Get(ctx)
	if err != nil {
		if msg.Key != nil {
			pub.ResumePublish(string(msg.Key))
		}
		return PublishResult{}, fmt.Errorf("messaging: pubsub publish %s: %w", destination, err)
	}

	return PublishResult{MessageID: id, Topic: destination, Timestamp: time.Now()}, nil
}

// topic returns the cached publisher for name; a nil map means closed.
func (p *PubSub) topic(name string) (*pubsub.Publisher, error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.topics == nil {
		return nil, io.ErrClosedPipe
	}

	pub, ok := p.topics[name]
	if !ok {
		pub = p.client.Publisher(name)
		pub.EnableMessageOrdering = true
		p.topics[name] = pub
	}
	return pub, nil
}

// Close flushes every publisher then closes the client. Safe to call twice.
func (p *PubSub) Close() error {
	p.mu.Lock()
	topics := p.topics
	p.topics = nil
	p.mu.Unlock()

	if topics == nil {
		return nil
	}

	var wg sync.WaitGroup
	for _, pub := range topics {
		wg.Go(pub.Stop)
	}
	wg.Wait()

	return p.client.Close()
}
