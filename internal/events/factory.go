package events

import (
	"fmt"
	"strings"

	"github.com/gridcast/gridcast/internal/config"
	"github.com/gridcast/gridcast/internal/utils"
)

// NewPublisher creates a Publisher based on configuration.
// Default is the no-op publisher when type is empty or "none".
func NewPublisher(cfg config.EventsConfig) (Publisher, error) {
	eventsType := utils.EventsType(strings.ToLower(cfg.Type))

	switch eventsType {
	case utils.EventsTypeNone, "":
		return NoopPublisher{}, nil

	case utils.EventsTypeNATS:
		return newNATSPublisher(cfg.URL, cfg.Username, cfg.Password)

	case utils.EventsTypeRedis:
		return newRedisPublisher(cfg.URL, cfg.Password, cfg.RedisDB, cfg.RedisStream)

	case utils.EventsTypeKafka:
		return newKafkaPublisher(cfg.KafkaBrokers)

	case utils.EventsTypeMemory:
		return NewMemoryPublisher(), nil

	default:
		return nil, fmt.Errorf("unsupported events type: %s (supported: nats, redis, kafka, memory, none)", cfg.Type)
	}
}
