package services

import (
	"context"
	"errors"
	"fmt"
	"net/http"
)

// ErrSigning is wrapped by every error a URLIssuer returns.
var ErrSigning = errors.New("signing failure")

// Method is the single operation a signed URL grants.
type Method int

const (
	MethodRead Method = iota + 1
	MethodWrite
)

// HTTPMethod returns the verb the signed URL is scoped to.
func (m Method) HTTPMethod() (string, error) {
	switch m {
	case MethodRead:
		return http.MethodGet, nil
	case MethodWrite:
		return http.MethodPut, nil
	}

	return "", fmt.Errorf("%w: unknown method %d", ErrSigning, m)
}

func (m Method) String() string {
	verb, err := m.HTTPMethod()
	if err != nil {
		return "UNKNOWN"
	}
	return verb
}

// URLIssuer mints a time-bounded URL for one object and one HTTP method.
// Implementations must return an error rather than an empty URL.
type URLIssuer interface {
	Sign(ctx context.Context, bucket, objectKey string, method Method) (string, error)
}

func signingError(format string, args ...interface{}) error {
	return fmt.Errorf("%w: %s", ErrSigning, fmt.Sprintf(format, args...))
}

// checkSignArgs validates what every issuer requires before touching credentials.
func checkSignArgs(ctx context.Context, bucket, objectKey string, method Method) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", fmt.Errorf("%w: %w", ErrSigning, err)
	}
	if bucket == "" {
		return "", signingError("bucket must not be empty")
	}
	if objectKey == "" {
		return "", signingError("object key must not be empty")
	}

	return method.HTTPMethod()
}
