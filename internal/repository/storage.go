package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	config "github.com/maheshrc27/postflow-studio/configs"
)

var ErrNotFound = errors.New("key not found")

// Storage is a small key/value store with optional per-key expiry. Values
// are opaque bytes; a ttl of zero keeps the key until it is deleted.
type Storage interface {
	Get(ctx context.Context, key string) ([]byte, error)
	Set(ctx context.Context, key string, value []byte, ttl time.Duration) error
	Delete(ctx context.Context, keys ...string) error
	Keys(ctx context.Context, prefix string) ([]string, error)
	Close() error
}

// NewStorage opens the driver selected by STORAGE_DRIVER.
func NewStorage(ctx context.Context, cfg config.Config) (Storage, error) {
	switch cfg.StorageDriver {
	case "", "file":
		return NewFileStorage(cfg.StorageDir)
	case "postgres":
		if cfg.PostgresURI == "" {
			return nil, errors.New("POSTGRES_URI is required for the postgres storage driver")
		}
		return NewPostgresStorage(ctx, cfg.PostgresURI)
	case "redis":
		if cfg.RedisURI == "" {
			return nil, errors.New("REDIS_URI is required for the redis storage driver")
		}
		return NewRedisStorage(ctx, cfg.RedisURI)
	default:
		return nil, fmt.Errorf("unknown storage driver %q", cfg.StorageDriver)
	}
}

// Purger is implemented by stores that keep expired keys until swept.
// Redis expires keys itself and does not need it.
type Purger interface {
	Purge(ctx context.Context) (int64, error)
}
