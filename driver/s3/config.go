package s3

import (
	"context"
	"fmt"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/gobeaver/beaver-kit/config"
)

// Config holds the S3 connection settings
type Config struct {
	Region          string `env:"FILESNIFF_S3_REGION,default:us-east-1"`
	Bucket          string `env:"FILESNIFF_S3_BUCKET"`
	Prefix          string `env:"FILESNIFF_S3_PREFIX"`
	Endpoint        string `env:"FILESNIFF_S3_ENDPOINT"`
	AccessKeyID     string `env:"FILESNIFF_S3_ACCESS_KEY_ID"`
	SecretAccessKey string `env:"FILESNIFF_S3_SECRET_ACCESS_KEY"`
	ForcePathStyle  bool   `env:"FILESNIFF_S3_FORCE_PATH_STYLE,default:false"`
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

	client, err := newClient(ctx, cfg)
	if err != nil {
		return nil, fmt.Errorf("failed to create S3 client: %w", err)
	}

	var opts []AdapterOption
	if cfg.Prefix != "" {
		opts = append(opts, WithPrefix(cfg.Prefix))
	}

	return New(client, cfg.Bucket, opts...), nil
}

func newClient(ctx context.Context, cfg *Config) (*s3.Client, error) {
	awsCfg, err := awsconfig.LoadDefaultConfig(ctx, awsconfig.WithRegion(cfg.Region))
	if err != nil {
		return nil, err
	}

	// Override with explicit credentials if provided
	if cfg.AccessKeyID != "" && cfg.SecretAccessKey != "" {
		awsCfg.Credentials = credentials.NewStaticCredentialsProvider(
			cfg.AccessKeyID,
			cfg.SecretAccessKey,
			"",
		)
	}

	return s3.NewFromConfig(awsCfg, func(o *s3.Options) {
		if cfg.Endpoint != "" {
			o.BaseEndpoint = aws.String(cfg.Endpoint)
		}
		o.UsePathStyle = cfg.ForcePathStyle
	}), nil
}
