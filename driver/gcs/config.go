package gcs

import (
	"context"
	"fmt"

	"cloud.google.com/go/storage"
	"github.com/gobeaver/beaver-kit/config"
	"google.golang.org/api/option"
)

// Config holds the GCS connection settings. Without a credentials file the
// client uses GOOGLE_APPLICATION_CREDENTIALS or the default credentials.
type Config struct {
	Bucket          string `env:"FILESNIFF_GCS_BUCKET"`
	Prefix          string `env:"FILESNIFF_GCS_PREFIX"`
	CredentialsFile string `env:"FILESNIFF_GCS_CREDENTIALS_FILE"`
	Endpoint        string `env:"FILESNIFF_GCS_ENDPOINT"`
	Anonymous       bool   `env:"FILESNIFF_GCS_ANONYMOUS,default:false"`
}

// GetConfig returns config loaded from environment
func GetConfig() (*Config, error) {
	cfg := &Config{}
	if err := config.Load(cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}

// NewFromConfig creates an adapter for the bucket cfg names
func NewFromConfig(ctx context.Context, cfg *Config) (*Adapter, error) {
	if cfg == nil || cfg.Bucket == "" {
		return nil, fmt.Errorf("invalid config: bucket is required")
	}

	client, err := storage.NewClient(ctx, clientOptions(cfg)...)
	if err != nil {
		return nil, fmt.Errorf("failed to create GCS client: %w", err)
	}

	var opts []AdapterOption
	if cfg.Prefix != "" {
		opts = append(opts, WithPrefix(cfg.Prefix))
	}

	return New(client, cfg.Bucket, opts...), nil
}

func clientOptions(cfg *Config) []option.ClientOption {
	var opts []option.ClientOption
	if cfg.CredentialsFile != "" {
		opts = append(opts, option.WithCredentialsFile(cfg.CredentialsFile))
	}
	if cfg.Endpoint != "" {
		opts = append(opts, option.WithEndpoint(cfg.Endpoint))
	}
	if cfg.Anonymous {
		opts = append(opts, option.WithoutAuthentication())
	}
	return opts
}
