package events

import (
	"context"
	"fmt"

	"github.com/nats-io/nats.go"
)

// NATSPublisher implements Publisher using NATS JetStream
type NATSPublisher struct {
	conn *nats.Conn
	js   nats.JetStreamContext
}

// newNATSPublisher connects to NATS and enables JetStream
func newNATSPublisher(url, username, password string) (*NATSPublisher, error) {
	opts := []nats.Option{nats.Name("gridcast")}
	if username != "" {
		opts = append(opts, nats.UserInfo(username, password))
	}

	conn, err := nats.Connect(url, opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to NATS: %w", err)
	}

	js, err := conn.JetStream()
	if err != nil {
		conn.Close()
		return nil, fmt.Errorf("failed to create JetStream context: %w", err)
	}

	return &NATSPublisher{conn: conn, js: js}, nil
}

// Publish publishes a message to a subject using JetStream
func (p *NATSPublisher) Publish(_ context.Context, subject string, data []byte) error {
	if _, err := p.js.Publish(subject, data); err != nil {
		return fmt.Errorf("failed to publish to subject %s: %w", subject, err)
	}
	return nil
}

// Close closes the NATS connection
func (p *NATSPublisher) Close() error {
	p.conn.Close()
	return nil
}
