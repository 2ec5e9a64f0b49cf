// Package store persists the active verification session identifier so an
// interrupted flow can resume across restarts. It is the only durable client
// state in the verification flow: one string under one well-known key.
package store

import (
	"github.com/go-redis/redis/v8"

	"github.com/ridelink/kycflow/internal/config"
)

// Store is the durable session-identifier port. Load returns an empty
// string, not an error, when no identifier is persisted. Clear is a no-op
// when nothing is stored.
type Store interface {
	SaveSessionID(id string) error
	LoadSessionID() (string, error)
	ClearSessionID() error
}

// ForConfig selects the configured store implementation: Redis when
// enabled, otherwise a state file under the configured directory
func ForConfig(cfg *config.Config) Store {
	if cfg.Redis.Enabled {
		return NewRedisStore(redis.NewClient(&redis.Options{
			Addr:     cfg.Redis.Addr,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		}), cfg.Profile)
	}
	return NewFileStore(cfg.State.Dir, cfg.Profile)
}
