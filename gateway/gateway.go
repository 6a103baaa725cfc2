// Package gateway binds a URL issuer to the bucket LFS objects live in.
package gateway

import (
	"context"
	"errors"

	"github.com/vela-games/lfsgate/services"
)

// Gateway is immutable after New and safe for concurrent use. The bucket comes
// from configuration only; objects are keyed by their oid.
type Gateway struct {
	bucket string
	issuer services.URLIssuer
}

func New(bucket string, issuer services.URLIssuer) (*Gateway, error) {
	if bucket == "" {
		return nil, errors.New("gateway: bucket must not be empty")
	}
	if issuer == nil {
		return nil, errors.New("gateway: issuer is required")
	}

	return &Gateway{
		bucket: bucket,
		issuer: issuer,
	}, nil
}

func (g *Gateway) Bucket() string {
	return g.bucket
}

// GetDownloadURL returns a URL the client can GET the object from.
func (g *Gateway) GetDownloadURL(ctx context.Context, oid string) (string, error) {
	return g.issuer.Sign(ctx, g.bucket, oid, services.MethodRead)
}

// GetUploadURL returns a URL the client can PUT the object to.
func (g *Gateway) GetUploadURL(ctx context.Context, oid string) (string, error) {
	return g.issuer.Sign(ctx, g.bucket, oid, services.MethodWrite)
}
