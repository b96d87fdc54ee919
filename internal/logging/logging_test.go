package logging

import (
	"bytes"
	"encoding/json"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/a-poor/bluesst/internal/config"
)

func TestNew(t *testing.T) {
	t.Run("should write json at the configured level", func(t *testing.T) {
		var buf bytes.Buffer
		log, err := New(config.LogConfig{Level: "warn", Format: "json"}, &buf)
		require.NoError(t, err)
		assert.Equal(t, zerolog.WarnLevel, log.GetLevel())

		log.Info().Msg("dropped")
		log.Warn().Str("dir", "/tmp/t").Msg("kept")

		var entry map[string]any
		require.NoError(t, json.Unmarshal(buf.Bytes(), &entry))
		assert.Equal(t, "warn", entry["level"])
		assert.Equal(t, "kept", entry["message"])
		assert.Equal(t, "/tmp/t", entry["dir"])
	})

	t.Run("should default to console at info", func(t *testing.T) {
		var buf bytes.Buffer
		log, err := New(config.LogConfig{}, &buf)
		require.NoError(t, err)
		assert.Equal(t, zerolog.InfoLevel, log.GetLevel())

		log.Info().Msg("hello")
		assert.Contains(t, buf.String(), "hello")
	})

	t.Run("should reject bad settings", func(t *testing.T) {
		_, err := New(config.LogConfig{Level: "loud"}, &bytes.Buffer{})
		assert.Error(t, err)

		_, err = New(config.LogConfig{Format: "xml"}, &bytes.Buffer{})
		assert.Error(t, err)
	})
}
