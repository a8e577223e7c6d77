package logger_test

import (
	"bytes"
	"encoding/json"
	"strings"
	"testing"

	"github.com/UnknownOlympus/datemap/internal/logger"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNew(t *testing.T) {
	t.Parallel()

	t.Run("local logs debug as text", func(t *testing.T) {
		t.Parallel()
		var buf bytes.Buffer
		log := logger.New(logger.EnvLocal, &buf)

		log.Debug("geocoding", "address", "123 Main St")

		assert.Contains(t, buf.String(), "level=DEBUG")
		assert.Contains(t, buf.String(), `address="123 Main St"`)
	})

	t.Run("development logs info as json", func(t *testing.T) {
		t.Parallel()
		var buf bytes.Buffer
		log := logger.New(logger.EnvDev, &buf)

		log.Debug("hidden")
		log.Info("cached", "address", "a")

		var line map[string]any
		require.NoError(t, json.Unmarshal(buf.Bytes(), &line))
		assert.Equal(t, "cached", line["msg"])
		assert.Contains(t, line, "time")
	})

	t.Run("production drops time and info", func(t *testing.T) {
		t.Parallel()
		var buf bytes.Buffer
		log := logger.New(logger.EnvProd, &buf)

		log.Info("hidden")
		log.Warn("no results", "address", "a")

		var line map[string]any
		require.NoError(t, json.Unmarshal(buf.Bytes(), &line))
		assert.Equal(t, "no results", line["msg"])
		assert.NotContains(t, line, "time")
	})

	t.Run("unknown env warns and logs errors only", func(t *testing.T) {
		t.Parallel()
		var buf bytes.Buffer
		log := logger.New("staging", &buf)

		log.Warn("hidden")

		lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
		require.Len(t, lines, 1)
		assert.Contains(t, lines[0], "available_envs")
	})
}
