package logging

import (
	"bytes"
	"encoding/json"
	"testing"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewWithWriter(t *testing.T) {
	tests := []struct {
		name    string
		level   string
		format  LogFormat
		want    logrus.Level
		wantErr bool
	}{
		{name: "defaults", want: logrus.WarnLevel},
		{name: "debug text", level: "debug", format: LogFormatText, want: logrus.DebugLevel},
		{name: "upper case level", level: "INFO", format: LogFormatJSON, want: logrus.InfoLevel},
		{name: "bad level", level: "loud", wantErr: true},
		{name: "bad format", level: "info", format: "xml", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			logger, err := NewWithWriter(&bytes.Buffer{}, tt.level, tt.format)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, logger.GetLevel())
		})
	}
}

func TestJSONFormat(t *testing.T) {
	var buf bytes.Buffer
	logger, err := NewWithWriter(&buf, "debug", LogFormatJSON)
	require.NoError(t, err)

	logger.WithField("encoding", "utf-8").Debug("inferred")

	var entry map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &entry))
	assert.Equal(t, "utf-8", entry["encoding"])
	assert.Equal(t, "inferred", entry["msg"])
}

func TestDiscard(t *testing.T) {
	logger := Discard()
	assert.NotPanics(t, func() { logger.Error("dropped") })
}
