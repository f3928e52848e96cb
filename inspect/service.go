package inspect

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/gobeaver/beaver-kit/config"

	"github.com/gobeaver/filesniff"
	"github.com/gobeaver/filesniff/driver/local"
	"github.com/gobeaver/filesniff/internal/logging"
)

// Global instance
var (
	defaultInspector *Inspector
	defaultOnce      sync.Once
	defaultErr       error
)

// Builder creates Inspectors from environment variables with a custom
// prefix
type Builder struct {
	prefix string
}

// WithPrefix creates a new Builder with the specified prefix
func WithPrefix(prefix string) *Builder {
	return &Builder{prefix: prefix}
}

// Init initializes the global Inspector using the builder's prefix
func (b *Builder) Init() error {
	cfg := &filesniff.Config{}
	if err := config.Load(cfg, config.LoadOptions{Prefix: b.prefix}); err != nil {
		return err
	}
	return Init(cfg)
}

// New creates a new Inspector using the builder's prefix
func (b *Builder) New() (*Inspector, error) {
	cfg := &filesniff.Config{}
	if err := config.Load(cfg, config.LoadOptions{Prefix: b.prefix}); err != nil {
		return nil, err
	}
	return NewFromConfig(cfg)
}

// Init initializes the global Inspector. Without a config it is loaded from
// the environment. Only the first call has any effect.
func Init(configs ...*filesniff.Config) error {
	defaultOnce.Do(func() {
		var cfg *filesniff.Config
		if len(configs) > 0 {
			cfg = configs[0]
		} else {
			cfg, defaultErr = filesniff.GetConfig()
			if defaultErr != nil {
				return
			}
		}

		defaultInspector, defaultErr = NewFromConfig(cfg)
	})

	return defaultErr
}

// Default returns the global Inspector, initializing it from the
// environment on first use
func Default() (*Inspector, error) {
	if err := Init(); err != nil {
		return nil, err
	}
	return defaultInspector, nil
}

// InspectPath inspects path with the global Inspector
func InspectPath(ctx context.Context, path string) (*Report, error) {
	in, err := Default()
	if err != nil {
		return nil, err
	}
	return in.Inspect(ctx, path)
}

// NewFromConfig creates an Inspector over the local directory
// cfg.LocalBasePath
func NewFromConfig(cfg *filesniff.Config, opts ...Option) (*Inspector, error) {
	cfgOpts, err := FromConfig(cfg)
	if err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	fs, err := local.New(cfg.LocalBasePath)
	if err != nil {
		return nil, fmt.Errorf("failed to create driver: %w", err)
	}
	return New(fs, append(cfgOpts, opts...)...), nil
}

// FromConfig translates cfg into Inspector options
func FromConfig(cfg *filesniff.Config) ([]Option, error) {
	if err := validateConfig(cfg); err != nil {
		return nil, err
	}

	logger, err := logging.New(cfg.LogLevel, logging.LogFormat(cfg.LogFormat))
	if err != nil {
		return nil, err
	}

	opts := []Option{
		WithLogger(logger),
		WithBytesToAnalyze(cfg.BytesToAnalyze),
		WithChunkSize(cfg.ChunkSize),
		WithSignatureBytes(cfg.SignatureBytes),
		WithCharacteristicLines(cfg.CharacteristicLines),
		WithMaxEncodingAttempts(cfg.MaxEncodingAttempts),
		WithHeaderThreshold(float64(cfg.HeaderThresholdPercent) / 100),
	}
	if cfg.Seed != 0 {
		opts = append(opts, WithSeed(uint64(cfg.Seed)))
	}
	return opts, nil
}

// validateConfig checks configuration validity
func validateConfig(cfg *filesniff.Config) error {
	if cfg == nil {
		return errors.New("config is required")
	}
	if cfg.LocalBasePath == "" {
		return errors.New("local base path is required")
	}
	if cfg.BytesToAnalyze < 0 || cfg.ChunkSize < 0 {
		return errors.New("sample sizes must not be negative")
	}
	if cfg.MaxEncodingAttempts < 0 {
		return errors.New("max encoding attempts must not be negative")
	}
	if cfg.HeaderThresholdPercent < 0 || cfg.HeaderThresholdPercent >= 100 {
		return fmt.Errorf("header threshold must be in [0, 100), got %d", cfg.HeaderThresholdPercent)
	}
	return nil
}
