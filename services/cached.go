package services

import (
	"context"
	"fmt"

	"github.com/vela-games/lfsgate/cache"
	"github.com/vela-games/lfsgate/exporter"
	"go.uber.org/zap"
)

// CachingIssuer reuses URLs minted by next while they sit in the cache. The
// cache eviction window must be shorter than next's URL lifetime.
type CachingIssuer struct {
	next          URLIssuer
	cache         cache.Cache
	promCollector *exporter.GatewayCollector
	logger        *zap.Logger
}

func NewCachingIssuer(next URLIssuer, c cache.Cache, promCollector *exporter.GatewayCollector, logger *zap.Logger) *CachingIssuer {
	return &CachingIssuer{
		next:          next,
		cache:         c,
		promCollector: promCollector,
		logger:        logger,
	}
}

func cacheKey(bucket, objectKey string, method Method) string {
	return fmt.Sprintf("%s:%s:%s", method, bucket, objectKey)
}

func (ci *CachingIssuer) Sign(ctx context.Context, bucket, objectKey string, method Method) (string, error) {
	if _, err := checkSignArgs(ctx, bucket, objectKey, method); err != nil {
		return "", err
	}

	key := cacheKey(bucket, objectKey, method)

	data, err := ci.cache.Get(key)
	if err == nil && len(data) > 0 {
		ci.promCollector.CacheHits.Add(1)
		return string(data), nil
	}
	if err != nil && !cache.IsMiss(err) {
		ci.logger.Warn("error reading url cache", zap.String("key", key), zap.Error(err))
	}
	ci.promCollector.CacheMiss.Add(1)

	url, err := ci.next.Sign(ctx, bucket, objectKey, method)
	if err != nil {
		return "", err
	}

	if err := ci.cache.Set(key, []byte(url)); err != nil {
		ci.logger.Warn("error caching url", zap.String("key", key), zap.Error(err))
	}

	return url, nil
}
