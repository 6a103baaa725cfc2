package lfs

import (
	"context"
	"fmt"

	"golang.org/x/sync/errgroup"
)

// URLProvider mints the per-object transfer URLs.
type URLProvider interface {
	GetDownloadURL(ctx context.Context, oid string) (string, error)
	GetUploadURL(ctx context.Context, oid string) (string, error)
}

// ResponseBuilder turns validated request objects into a BatchResponse.
type ResponseBuilder struct {
	URLs URLProvider
	// ExpiresIn is advertised on every granted link, in seconds. It is not
	// derived from the lifetime of the URL itself.
	ExpiresIn int
	// Concurrency bounds how many URLs of one batch are minted at once.
	Concurrency int
}

// Build dispatches on the request's operation.
func (b ResponseBuilder) Build(ctx context.Context, req *BatchRequest) (*BatchResponse, error) {
	switch op := ParseOperation(req.Operation); op {
	case OperationUpload:
		return b.BuildUploadResponse(ctx, req.Objects)
	case OperationDownload:
		return b.BuildDownloadResponse(ctx, req.Objects)
	case OperationVerify:
		return nil, fmt.Errorf("%w: %s is not implemented", ErrUnsupportedOperation, op)
	}

	return nil, fmt.Errorf("%w: %q", ErrUnsupportedOperation, req.Operation)
}

// BuildUploadResponse signs a write URL for every object, in request order.
func (b ResponseBuilder) BuildUploadResponse(ctx context.Context, objects []Pointer) (*BatchResponse, error) {
	return b.build(ctx, objects, b.URLs.GetUploadURL, func(link *Link) *Actions {
		return &Actions{Upload: link, Download: emptyLink()}
	})
}

// BuildDownloadResponse signs a read URL for every object, in request order.
func (b ResponseBuilder) BuildDownloadResponse(ctx context.Context, objects []Pointer) (*BatchResponse, error) {
	return b.build(ctx, objects, b.URLs.GetDownloadURL, func(link *Link) *Actions {
		return &Actions{Upload: emptyLink(), Download: link}
	})
}

func (b ResponseBuilder) build(
	ctx context.Context,
	objects []Pointer,
	sign func(ctx context.Context, oid string) (string, error),
	actions func(link *Link) *Actions,
) (*BatchResponse, error) {
	expiresIn := b.ExpiresIn
	if expiresIn <= 0 {
		expiresIn = DefaultExpiresIn
	}

	concurrency := b.Concurrency
	if concurrency < 1 {
		concurrency = 1
	}

	// Each worker writes only its own index so order follows the request.
	out := make([]*ObjectResponse, len(objects))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(concurrency)

	for i, obj := range objects {
		if gctx.Err() != nil {
			break
		}

		g.Go(func() error {
			href, err := sign(gctx, obj.Oid)
			if err != nil {
				return fmt.Errorf("%w: oid %s: %w", ErrSigningFailure, obj.Oid, err)
			}
			if href == "" {
				return fmt.Errorf("%w: oid %s: empty url", ErrSigningFailure, obj.Oid)
			}

			out[i] = &ObjectResponse{
				Pointer:       obj,
				Authenticated: true,
				Actions:       actions(&Link{Href: href, ExpiresIn: expiresIn}),
			}
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	return &BatchResponse{
		Transfer: TransferBasic,
		Objects:  out,
	}, nil
}
