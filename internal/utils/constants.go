package utils

import "time"

// Pipeline step timeouts.
const (
	// DefaultStepTimeout bounds each external I/O step (source fetch,
	// store read/write) within a pipeline run.
	DefaultStepTimeout = 30 * time.Second

	// DefaultRequestTimeout is the timeout for upstream HTTP requests.
	DefaultRequestTimeout = 30 * time.Second
)

// Retry policy for transient I/O failures.
const (
	// DefaultMaxRetries is the number of retry attempts after the first
	// failure of a source or store call.
	DefaultMaxRetries = 3

	// DefaultRetryBackoff is the initial backoff between retries; the
	// interval grows exponentially up to MaxRetryBackoff.
	DefaultRetryBackoff = 200 * time.Millisecond

	// MaxRetryBackoff caps the exponential backoff.
	MaxRetryBackoff = 5 * time.Second
)

// EventsType represents the run-event publisher backend.
type EventsType string

const (
	// EventsTypeNATS publishes run events to NATS JetStream.
	EventsTypeNATS EventsType = "nats"

	// EventsTypeRedis publishes run events to Redis Streams.
	EventsTypeRedis EventsType = "redis"

	// EventsTypeKafka publishes run events to Apache Kafka.
	EventsTypeKafka EventsType = "kafka"

	// EventsTypeMemory keeps run events in process (for testing).
	EventsTypeMemory EventsType = "memory"

	// EventsTypeNone disables run-event publishing.
	EventsTypeNone EventsType = "none"
)

// StoreType represents the series-store backend.
type StoreType string

const (
	// StoreTypePostgres persists all records in PostgreSQL.
	StoreTypePostgres StoreType = "postgres"

	// StoreTypeMemory keeps all records in process (for testing and
	// local development).
	StoreTypeMemory StoreType = "memory"
)
