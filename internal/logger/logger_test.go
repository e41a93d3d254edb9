package logger

import (
	"bytes"
	"encoding/json"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNew(t *testing.T) {
	tests := []struct {
		level    string
		expected zerolog.Level
	}{
		{"", zerolog.InfoLevel},
		{"debug", zerolog.DebugLevel},
		{"WARN", zerolog.WarnLevel},
		{"error", zerolog.ErrorLevel},
	}

	for _, tt := range tests {
		t.Run(tt.level, func(t *testing.T) {
			log, err := New(tt.level, &bytes.Buffer{})
			require.NoError(t, err)
			assert.Equal(t, tt.expected, log.GetLevel())
		})
	}
}

func TestNew_UnknownLevel(t *testing.T) {
	_, err := New("loud", &bytes.Buffer{})
	assert.Error(t, err)
}

func TestNew_WritesJSONWithTimestamp(t *testing.T) {
	var buf bytes.Buffer
	log, err := New("info", &buf)
	require.NoError(t, err)

	log.Debug().Msg("hidden")
	log.Info().Str("component", "test").Msg("shown")

	var line map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &line))
	assert.Equal(t, "shown", line["message"])
	assert.Equal(t, "test", line["component"])
	assert.Contains(t, line, "time")
}
