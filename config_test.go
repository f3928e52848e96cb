package filesniff

import (
	"testing"
)

func TestGetConfig(t *testing.T) {
	defaults := Config{
		LocalBasePath:          ".",
		BytesToAnalyze:         16184,
		ChunkSize:              4096,
		Seed:                   0,
		SignatureBytes:         16,
		CharacteristicLines:    21,
		MaxEncodingAttempts:    5,
		HeaderThresholdPercent: 10,
		LogLevel:               "warn",
		LogFormat:              "text",
	}

	tests := []struct {
		name    string
		envVars map[string]string
		want    Config
	}{
		{
			name:    "default values",
			envVars: map[string]string{},
			want:    defaults,
		},
		{
			name: "sampling configuration",
			envVars: map[string]string{
				"BEAVER_FILESNIFF_LOCAL_BASE_PATH":      "/data/incoming",
				"BEAVER_FILESNIFF_BYTES_TO_ANALYZE":     "4096",
				"BEAVER_FILESNIFF_CHUNK_SIZE":           "512",
				"BEAVER_FILESNIFF_SEED":                 "42",
				"BEAVER_FILESNIFF_SIGNATURE_BYTES":      "8",
				"BEAVER_FILESNIFF_CHARACTERISTIC_LINES": "10",
			},
			want: func() Config {
				c := defaults
				c.LocalBasePath = "/data/incoming"
				c.BytesToAnalyze = 4096
				c.ChunkSize = 512
				c.Seed = 42
				c.SignatureBytes = 8
				c.CharacteristicLines = 10
				return c
			}(),
		},
		{
			name: "inference and logging",
			envVars: map[string]string{
				"BEAVER_FILESNIFF_MAX_ENCODING_ATTEMPTS":    "2",
				"BEAVER_FILESNIFF_HEADER_THRESHOLD_PERCENT": "25",
				"BEAVER_FILESNIFF_LOG_LEVEL":                "debug",
				"BEAVER_FILESNIFF_LOG_FORMAT":               "json",
			},
			want: func() Config {
				c := defaults
				c.MaxEncodingAttempts = 2
				c.HeaderThresholdPercent = 25
				c.LogLevel = "debug"
				c.LogFormat = "json"
				return c
			}(),
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			for k, v := range tt.envVars {
				t.Setenv(k, v)
			}

			cfg, err := GetConfig()
			if err != nil {
				t.Fatalf("GetConfig() error = %v", err)
			}
			if *cfg != tt.want {
				t.Errorf("GetConfig() = %+v, want %+v", *cfg, tt.want)
			}
		})
	}
}
