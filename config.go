package filesniff

import (
	"github.com/gobeaver/beaver-kit/config"
)

type Config struct {
	// Local driver configuration
	LocalBasePath string `env:"FILESNIFF_LOCAL_BASE_PATH,default:."`

	// Sampling
	BytesToAnalyze int   `env:"FILESNIFF_BYTES_TO_ANALYZE,default:16184"`
	ChunkSize      int   `env:"FILESNIFF_CHUNK_SIZE,default:4096"`
	Seed           int64 `env:"FILESNIFF_SEED,default:0"` // 0 seeds from the clock

	// Type classification
	SignatureBytes      int `env:"FILESNIFF_SIGNATURE_BYTES,default:16"`
	CharacteristicLines int `env:"FILESNIFF_CHARACTERISTIC_LINES,default:21"`

	// Dialect inference
	MaxEncodingAttempts    int `env:"FILESNIFF_MAX_ENCODING_ATTEMPTS,default:5"`
	HeaderThresholdPercent int `env:"FILESNIFF_HEADER_THRESHOLD_PERCENT,default:10"`

	// Logging
	LogLevel  string `env:"FILESNIFF_LOG_LEVEL,default:warn"`
	LogFormat string `env:"FILESNIFF_LOG_FORMAT,default:text"` // text or json
}

// GetConfig returns config loaded from environment
func GetConfig() (*Config, error) {
	cfg := &Config{}
	if err := config.Load(cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}
