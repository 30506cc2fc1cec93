package store

import (
	"context"
	"fmt"

	"github.com/gridcast/gridcast/internal/config"
	"github.com/gridcast/gridcast/internal/utils"
)

// New creates a Store from configuration.
func New(ctx context.Context, cfg config.StoreConfig) (Store, error) {
	switch utils.StoreType(cfg.Type) {
	case utils.StoreTypePostgres:
		return NewPostgresStore(ctx, cfg.DSN)
	case utils.StoreTypeMemory:
		return NewMemoryStore(), nil
	default:
		return nil, fmt.Errorf("unknown store type: %s", cfg.Type)
	}
}
