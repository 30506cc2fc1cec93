// Package events publishes pipeline run results to an external broker so
// downstream consumers (dashboards, alerting) can react to ingest and
// forecast runs without polling the store.
package events

import "context"

// SubjectRuns is the subject/topic prefix run results are published under.
const SubjectRuns = "gridcast.runs"

// RunSubject returns the per-operation run subject,
// e.g. "gridcast.runs.ingest".
func RunSubject(op string) string {
	return SubjectRuns + "." + op
}

// Publisher publishes run events to a broker
type Publisher interface {
	// Publish publishes a message to a subject/topic
	Publish(ctx context.Context, subject string, data []byte) error

	// Close closes the connection
	Close() error
}

// NoopPublisher discards all events. Used when publishing is disabled.
type NoopPublisher struct{}

// Publish discards the message.
func (NoopPublisher) Publish(_ context.Context, _ string, _ []byte) error { return nil }

// Close is a no-op.
func (NoopPublisher) Close() error { return nil }
