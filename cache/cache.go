package cache

import (
	"context"
	"errors"
	"time"

	"github.com/allegro/bigcache/v3"
)

// ErrEntryNotFound is returned by Get when the key is absent or evicted.
var ErrEntryNotFound = bigcache.ErrEntryNotFound

type Cache interface {
	Get(key string) ([]byte, error)
	Set(key string, entry []byte) error
	Delete(key string) error
}

// NewCache returns an in-memory cache whose entries are dropped after the
// given eviction window.
func NewCache(ctx context.Context, cacheEviction time.Duration) (Cache, error) {
	if cacheEviction <= 0 {
		return nil, errors.New("cache eviction must be positive")
	}

	cfg := bigcache.DefaultConfig(cacheEviction)
	if cacheEviction < cfg.CleanWindow {
		cfg.CleanWindow = cacheEviction
	}

	cache, err := bigcache.New(ctx, cfg)
	if err != nil {
		return nil, err
	}

	return cache, nil
}

// IsMiss reports whether err means the key simply wasn't cached.
func IsMiss(err error) bool {
	return errors.Is(err, ErrEntryNotFound)
}
