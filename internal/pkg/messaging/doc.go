// Package messaging publishes domain events to a message broker.
//
// Business code depends on Publisher only. The concrete backend (NATS, Kafka,
// NSQ or Google Pub/Sub) is chosen by configuration through NewFromDriver;
// DriverNone discards messages so the service runs without a broker.
package messaging
