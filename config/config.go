package config

import (
	"errors"
	"fmt"
	"time"

	"github.com/kelseyhightower/envconfig"
)

const (
	BackendGCS = "gcs"
	BackendS3  = "s3"

	// MaxGCSSignedURLExpiration is the longest lifetime GCS accepts for a V4 signed URL.
	MaxGCSSignedURLExpiration = 7 * 24 * time.Hour
)

type Config struct {
	DebugMode                bool          `split_words:"true" default:"false"`
	Port                     int           `default:"8080"`
	LogLevel                 string        `split_words:"true" default:"info"`
	StorageBackend           string        `split_words:"true" default:"gcs"`
	Bucket                   string        `required:"true"`
	GCSCredentialsFile       string        `envconfig:"GCS_CREDENTIALS_FILE" default:"credentials.json"`
	S3UseAccelerate          bool          `split_words:"true" default:"false"`
	SignedURLExpiration      time.Duration `envconfig:"SIGNED_URL_EXPIRATION" default:"1h"`
	LinkExpiresIn            time.Duration `split_words:"true" default:"24h"`
	SignConcurrency          int           `split_words:"true" default:"8"`
	MaxBodyBytes             int64         `split_words:"true" default:"10485760"`
	URLCacheEnabled          bool          `envconfig:"URL_CACHE_ENABLED" default:"false"`
	URLCacheEviction         time.Duration `envconfig:"URL_CACHE_EVICTION" default:"10m"`
	EnablePrometheusExporter bool          `split_words:"true" default:"false"`
}

func GetConfig() (*Config, error) {
	var gatewayConfiguration Config

	err := envconfig.Process("app", &gatewayConfiguration)
	if err != nil {
		return nil, err
	}

	if err := gatewayConfiguration.Validate(); err != nil {
		return nil, err
	}

	return &gatewayConfiguration, nil
}

// Validate checks the rules envconfig tags cannot express.
func (c *Config) Validate() error {
	if c.Bucket == "" {
		return errors.New("bucket must not be empty")
	}

	switch c.StorageBackend {
	case BackendGCS:
		if c.GCSCredentialsFile == "" {
			return errors.New("gcs backend requires a credentials file")
		}
		if c.SignedURLExpiration > MaxGCSSignedURLExpiration {
			return fmt.Errorf("signed url expiration %v exceeds the gcs maximum of %v", c.SignedURLExpiration, MaxGCSSignedURLExpiration)
		}
	case BackendS3:
	default:
		return fmt.Errorf("unknown storage backend %q", c.StorageBackend)
	}

	if c.SignedURLExpiration <= 0 {
		return errors.New("signed url expiration must be positive")
	}
	if c.LinkExpiresIn < time.Second {
		return errors.New("link expires_in must be at least one second")
	}
	if c.SignConcurrency < 1 {
		return errors.New("sign concurrency must be at least 1")
	}
	if c.MaxBodyBytes < 1 {
		return errors.New("max body bytes must be at least 1")
	}
	if c.URLCacheEnabled && c.URLCacheEviction >= c.SignedURLExpiration {
		return fmt.Errorf("url cache eviction %v must be shorter than the signed url expiration %v", c.URLCacheEviction, c.SignedURLExpiration)
	}

	return nil
}

// ExpiresInSeconds is the value advertised to clients in every action's expires_in.
func (c *Config) ExpiresInSeconds() int {
	return int(c.LinkExpiresIn / time.Second)
}

// ExpiryMismatch reports whether clients are told a lifetime different from the
// one the signer actually grants.
func (c *Config) ExpiryMismatch() bool {
	return c.LinkExpiresIn != c.SignedURLExpiration
}
