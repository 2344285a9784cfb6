package config

// defaults apply when neither the file nor the environment sets a key.
var defaults = map[string]any{
	"app.name":    "gotp",
	"app.env":     "local",
	"app.version": "dev",

	"app.server.http.address":                     ":8080",
	"app.server.http.read_timeout_seconds":        10,
	"app.server.http.read_header_timeout_seconds": 5,
	"app.server.http.write_timeout_seconds":       10,
	"app.server.http.idle_timeout_seconds":        60,
	"app.server.shutdown_timeout_seconds":         15,
	"app.server.max_goroutine":                    100,

	"instrument.enabled":                 false,
	"instrument.trace_sample_ratio":      1.0,
	"instrument.metric_interval_seconds": 15,

	"database.pool.max_conns":                   10,
	"database.pool.min_conns":                   1,
	"database.pool.max_conn_lifetime_seconds":   3600,
	"database.pool.max_conn_idle_seconds":       300,
	"database.pool.health_check_period_seconds": 60,

	"messaging.driver":                      "none",
	"messaging.nsq.dial_timeout_seconds":    1,
	"messaging.nsq.read_timeout_seconds":    60,
	"messaging.nsq.write_timeout_seconds":   1,
	"messaging.nats.name":                   "gotp",
	"messaging.nats.max_reconnects":         60,
	"messaging.nats.timeout_seconds":        2,
	"messaging.nats.reconnect_wait_seconds": 2,
	"messaging.nats.ping_interval_seconds":  120,
	"messaging.nats.max_pings_outstanding":  2,
	"messaging.kafka.batch_timeout_ms":      10,

	"modules.authenticator.enabled":          true,
	"modules.authenticator.issuer":           "NOTP-System",
	"modules.authenticator.lock_ttl_seconds": 5,
	"modules.authenticator.qr_size":          400,
}
