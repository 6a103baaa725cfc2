package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/vela-games/lfsgate/cache"
	"github.com/vela-games/lfsgate/config"
	"github.com/vela-games/lfsgate/exporter"
	"github.com/vela-games/lfsgate/gateway"
	"github.com/vela-games/lfsgate/lfs"
	"github.com/vela-games/lfsgate/services"
	"go.uber.org/zap"
)

// DefaultMaxBodyBytes caps a batch request body when no limit is configured.
const DefaultMaxBodyBytes = 10 << 20

type LFSHandler struct {
	builder       lfs.ResponseBuilder
	maxBodyBytes  int64
	promCollector *exporter.GatewayCollector
	logger        *zap.Logger
}

// NewLFSHandler builds the issuer and gateway once; every request shares them.
func NewLFSHandler(ctx context.Context, cfg *config.Config, promCollector *exporter.GatewayCollector, logger *zap.Logger) (*LFSHandler, error) {
	issuer, err := newIssuer(cfg)
	if err != nil {
		return nil, err
	}

	if cfg.URLCacheEnabled {
		urlCache, err := cache.NewCache(ctx, cfg.URLCacheEviction)
		if err != nil {
			return nil, err
		}
		issuer = services.NewCachingIssuer(issuer, urlCache, promCollector, logger)
	}

	gw, err := gateway.New(cfg.Bucket, issuer)
	if err != nil {
		return nil, err
	}

	if cfg.ExpiryMismatch() {
		logger.Warn("advertised expires_in differs from the signed url lifetime",
			zap.Duration("expires_in", cfg.LinkExpiresIn),
			zap.Duration("signed_url_expiration", cfg.SignedURLExpiration))
	}

	logger.Info("lfs handler ready",
		zap.String("backend", cfg.StorageBackend),
		zap.String("bucket", gw.Bucket()),
		zap.Bool("url_cache", cfg.URLCacheEnabled))

	return &LFSHandler{
		builder: lfs.ResponseBuilder{
			URLs:        gw,
			ExpiresIn:   cfg.ExpiresInSeconds(),
			Concurrency: cfg.SignConcurrency,
		},
		maxBodyBytes:  cfg.MaxBodyBytes,
		promCollector: promCollector,
		logger:        logger,
	}, nil
}

func newIssuer(cfg *config.Config) (services.URLIssuer, error) {
	switch cfg.StorageBackend {
	case config.BackendGCS:
		return services.NewGCSIssuer(cfg.GCSCredentialsFile, cfg.SignedURLExpiration)
	case config.BackendS3:
		return services.NewS3Issuer(cfg.S3UseAccelerate, cfg.SignedURLExpiration)
	}

	return nil, fmt.Errorf("unknown storage backend %q", cfg.StorageBackend)
}

func (l LFSHandler) PostBatch(c *gin.Context) {
	ctx := c.Request.Context()
	requestID := c.GetString(RequestIDKey)
	log := l.logger.With(zap.String("request_id", requestID))

	limit := l.maxBodyBytes
	if limit <= 0 {
		limit = DefaultMaxBodyBytes
	}

	body, err := io.ReadAll(http.MaxBytesReader(c.Writer, c.Request.Body, limit))
	if err != nil {
		if l.cancelled(c, log, requestID) {
			return
		}

		var maxBytesErr *http.MaxBytesError
		if errors.As(err, &maxBytesErr) {
			l.reject(c, log, requestID, fmt.Errorf("%w: limit is %d bytes", lfs.ErrBodyTooLarge, maxBytesErr.Limit))
			return
		}
		l.reject(c, log, requestID, fmt.Errorf("%w: reading body: %w", lfs.ErrMalformedJSON, err))
		return
	}

	log.Info("batch request", zap.ByteString("body", body))

	batchRequest, err := lfs.ParseBatchRequest(body)
	if err != nil {
		log.Error("error parsing batch request", zap.Error(err))
		l.reject(c, log, requestID, err)
		return
	}

	operation := lfs.ParseOperation(batchRequest.Operation)
	l.promCollector.BatchRequests.With("operation", operation.String()).Add(1)

	batchResponse, err := l.builder.Build(ctx, batchRequest)

	if l.cancelled(c, log, requestID) {
		return
	}

	if err != nil {
		l.reject(c, log, requestID, err)
		return
	}

	data, err := json.Marshal(batchResponse)
	if err != nil {
		l.reject(c, log, requestID, err)
		return
	}

	log.Debug("batch response", zap.ByteString("body", data))
	l.promCollector.ObjectsSigned.With("operation", operation.String()).Add(float64(len(batchResponse.Objects)))

	c.Data(http.StatusOK, lfs.MediaType, data)
}

// cancelled ends the request once its context is done. A passed deadline is
// answered with a timeout error; a client that went away gets nothing.
func (l LFSHandler) cancelled(c *gin.Context, log *zap.Logger, requestID string) bool {
	err := c.Request.Context().Err()
	if err == nil {
		return false
	}

	if errors.Is(err, context.DeadlineExceeded) {
		l.reject(c, log, requestID, fmt.Errorf("%w: %w", lfs.ErrTimeout, err))
		return true
	}

	log.Warn("batch request cancelled", zap.Error(err))
	c.Abort()
	return true
}

func (l LFSHandler) reject(c *gin.Context, log *zap.Logger, requestID string, err error) {
	kind := lfs.ErrorKind(err)
	status := lfs.StatusCode(err)

	l.promCollector.Rejections.With("kind", kind).Add(1)

	fields := []zap.Field{zap.String("kind", kind), zap.Int("status", status), zap.Error(err)}
	if status >= http.StatusInternalServerError && status != http.StatusNotImplemented {
		log.Error("batch request failed", fields...)
	} else {
		log.Warn("batch request rejected", fields...)
	}

	data, marshalErr := json.Marshal(lfs.ErrorResponse{
		Message:   lfs.Message(err),
		RequestID: requestID,
	})
	if marshalErr != nil {
		c.AbortWithStatus(status)
		return
	}

	c.Abort()
	c.Data(status, lfs.MediaType, data)
}
