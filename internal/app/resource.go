package app

import (
	"context"
	"crypto/tls"
	"fmt"
	"strings"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/nats-io/nats.go"
	"github.com/nsqio/go-nsq"
	"github.com/redis/go-redis/v9"
	"github.com/segmentio/kafka-go"
	"github.com/segmentio/kafka-go/sasl/plain"
	"github.com/shandysiswandi/gotp/internal/pkg/messaging"
	"golang.org/x/oauth2/google"
	"google.golang.org/api/option"
)

const (
	pingTimeout = 5 * time.Second
	pubsubScope = "https://www.googleapis.com/auth/pubsub"
)

func (a *App) initDatabase() error {
	cfg, err := pgxpool.ParseConfig(a.config.GetString("database.url"))
	if err != nil {
		return fmt.Errorf("parse database.url: %w", err)
	}

	cfg.MaxConns = a.config.GetInt32("database.pool.max_conns")
	cfg.MinConns = a.config.GetInt32("database.pool.min_conns")
	cfg.MaxConnLifetime = a.config.GetSecond("database.pool.max_conn_lifetime_seconds")
	cfg.MaxConnIdleTime = a.config.GetSecond("database.pool.max_conn_idle_seconds")
	cfg.HealthCheckPeriod = a.config.GetSecond("database.pool.health_check_period_seconds")

	pool, err := pgxpool.NewWithConfig(a.ctx, cfg)
	if err != nil {
		return err
	}
	a.dbConn = pool
	a.onClose("database", func(context.Context) error {
		pool.Close()
		return nil
	})

	ctx, cancel := context.WithTimeout(a.ctx, pingTimeout)
	defer cancel()
	return pool.Ping(ctx)
}

func (a *App) initCache() error {
	opt, err := redis.ParseURL(a.config.GetString("redis.url"))
	if err != nil {
		return fmt.Errorf("parse redis.url: %w", err)
	}

	rdb := redis.NewClient(opt)
	a.cacheConn = rdb
	a.onClose("redis", func(context.Context) error { return rdb.Close() })

	ctx, cancel := context.WithTimeout(a.ctx, pingTimeout)
	defer cancel()
	return rdb.Ping(ctx).Err()
}

func (a *App) initMessaging() error {
	driver := strings.ToLower(strings.TrimSpace(a.config.GetString("messaging.driver")))
	opts := messaging.FactoryOptions{}

	switch driver {
	case messaging.DriverNSQ:
		opts.NSQ = a.nsqConfig()
	case messaging.DriverNATS:
		opts.NATS = a.natsConfig()
	case messaging.DriverKafka:
		opts.Kafka = messaging.KafkaConfig{
			Brokers:      a.config.GetArray("messaging.kafka.brokers"),
			Transport:    a.kafkaTransport(),
			BatchTimeout: a.config.GetMillisecond("messaging.kafka.batch_timeout_ms"),
		}
	case messaging.DriverGooglePubSub:
		clientOpts, err := a.pubsubOptions(a.ctx)
		if err != nil {
			return err
		}
		opts.PubSub = messaging.PubSubConfig{
			ProjectID:     a.config.GetString("messaging.pubsub.project_id"),
			ClientOptions: clientOpts,
		}
	}

	pub, err := messaging.NewFromDriver(a.ctx, driver, opts)
	if err != nil {
		return err
	}

	a.messaging = pub
	a.onClose("messaging "+driver, func(context.Context) error { return pub.Close() })
	return nil
}

func (a *App) nsqConfig() messaging.NSQConfig {
	cfg := nsq.NewConfig()
	cfg.DialTimeout = a.config.GetSecond("messaging.nsq.dial_timeout_seconds")
	cfg.ReadTimeout = a.config.GetSecond("messaging.nsq.read_timeout_seconds")
	cfg.WriteTimeout = a.config.GetSecond("messaging.nsq.write_timeout_seconds")

	return messaging.NSQConfig{
		ProducerAddr: a.config.GetString("messaging.nsq.producer_addr"),
		Config:       cfg,
	}
}

func (a *App) natsConfig() messaging.NATSConfig {
	const p = "messaging.nats."
	return messaging.NATSConfig{
		URL: a.config.GetString(p + "url"),
		Options: []nats.Option{
			nats.Name(a.config.GetString(p + "name")),
			nats.Timeout(a.config.GetSecond(p + "timeout_seconds")),
			nats.MaxReconnects(a.config.GetInt(p + "max_reconnects")),
			nats.ReconnectWait(a.config.GetSecond(p + "reconnect_wait_seconds")),
			nats.PingInterval(a.config.GetSecond(p + "ping_interval_seconds")),
			nats.MaxPingsOutstanding(a.config.GetInt(p + "max_pings_outstanding")),
			nats.RetryOnFailedConnect(a.config.GetBool(p + "retry_on_failed_connect")),
		},
	}
}

// kafkaTransport is nil, meaning the kafka-go default, unless SASL or TLS
// is configured.
func (a *App) kafkaTransport() kafka.RoundTripper {
	user := a.config.GetString("messaging.kafka.sasl.username")
	useTLS := a.config.GetBool("messaging.kafka.tls")
	if user == "" && !useTLS {
		return nil
	}

	t := &kafka.Transport{DialTimeout: a.config.GetSecond("messaging.kafka.dial_timeout_seconds")}
	if user != "" {
		t.SASL = plain.Mechanism{Username: user, Password: a.config.GetString("messaging.kafka.sasl.password")}
	}
	if useTLS {
		t.TLS = &tls.Config{MinVersion: tls.VersionTLS12}
	}
	return t
}

// pubsubOptions maps messaging.pubsub.* to client options. With none of
// them set the client falls back to application default credentials.
func (a *App) pubsubOptions(ctx context.Context) ([]option.ClientOption, error) {
	var opts []option.ClientOption

	if a.config.GetBool("messaging.pubsub.without_auth") {
		opts = append(opts, option.WithoutAuthentication())
	}
	if raw := a.config.GetBinary("messaging.pubsub.credentials_json"); len(raw) > 0 {
		creds, err := google.CredentialsFromJSON(ctx, raw, pubsubScope)
		if err != nil {
			return nil, fmt.Errorf("messaging.pubsub.credentials_json: %w", err)
		}
		opts = append(opts, option.WithCredentials(creds))
	}
	if ep := strings.TrimSpace(a.config.GetString("messaging.pubsub.endpoint")); ep != "" {
		opts = append(opts, option.WithEndpoint(ep))
	}

	return opts, nil
}
