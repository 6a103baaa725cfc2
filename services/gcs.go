package services

import (
	"context"
	"fmt"
	"os"
	"time"

	"cloud.google.com/go/storage"
	"golang.org/x/oauth2/google"
)

// GCSIssuer signs V4 URLs with a service account key loaded once at construction.
type GCSIssuer struct {
	googleAccessID string
	privateKey     []byte
	expiration     time.Duration
}

// NewGCSIssuer reads and parses the service account JSON at credentialsFile.
// A missing or malformed file is an error here, not a quietly unusable issuer.
func NewGCSIssuer(credentialsFile string, expiration time.Duration) (*GCSIssuer, error) {
	if credentialsFile == "" {
		return nil, signingError("credentials file must not be empty")
	}

	data, err := os.ReadFile(credentialsFile)
	if err != nil {
		return nil, fmt.Errorf("%w: reading credentials: %w", ErrSigning, err)
	}

	return NewGCSIssuerFromJSON(data, expiration)
}

// NewGCSIssuerFromJSON builds an issuer from service account key material.
func NewGCSIssuerFromJSON(data []byte, expiration time.Duration) (*GCSIssuer, error) {
	if expiration <= 0 {
		return nil, signingError("expiration must be positive")
	}

	jwtConfig, err := google.JWTConfigFromJSON(data)
	if err != nil {
		return nil, fmt.Errorf("%w: parsing credentials: %w", ErrSigning, err)
	}

	if jwtConfig.Email == "" || len(jwtConfig.PrivateKey) == 0 {
		return nil, signingError("credentials have no client_email or private_key")
	}

	return &GCSIssuer{
		googleAccessID: jwtConfig.Email,
		privateKey:     jwtConfig.PrivateKey,
		expiration:     expiration,
	}, nil
}

func (g *GCSIssuer) Sign(ctx context.Context, bucket, objectKey string, method Method) (string, error) {
	verb, err := checkSignArgs(ctx, bucket, objectKey, method)
	if err != nil {
		return "", err
	}

	url, err := storage.SignedURL(bucket, objectKey, &storage.SignedURLOptions{
		GoogleAccessID: g.googleAccessID,
		PrivateKey:     g.privateKey,
		Method:         verb,
		Expires:        time.Now().Add(g.expiration),
		Scheme:         storage.SigningSchemeV4,
	})
	if err != nil {
		return "", fmt.Errorf("%w: gcs: %w", ErrSigning, err)
	}

	if url == "" {
		return "", signingError("gcs returned an empty url for %s", objectKey)
	}

	return url, nil
}
