package logger

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewWithWriterJSON(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	log := NewWithWriter(&buf, "json", zerolog.InfoLevel)
	log.Debug().Msg("hidden")
	log.Info().Str("pair", "EUR/USD").Msg("priced")

	var line map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &line))
	assert.Equal(t, "priced", line["message"])
	assert.Equal(t, "EUR/USD", line["pair"])
	assert.Equal(t, "info", line["level"])
	assert.NotContains(t, buf.String(), "hidden")
}

func TestNewWithWriterConsole(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	log := NewWithWriter(&buf, "console", zerolog.DebugLevel)
	log.Debug().Msg("hello")
	assert.Contains(t, buf.String(), "hello")
	assert.NotContains(t, buf.String(), `"message"`)
}

func TestNewFileOutput(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "rb.log")
	log, closer, err := New(Config{Level: "warn", Format: "json", Output: path})
	require.NoError(t, err)

	log.Info().Msg("skip")
	log.Warn().Msg("kept")
	require.NoError(t, closer.Close())

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), "kept")
	assert.NotContains(t, string(data), "skip")
}

func TestNewBadLevel(t *testing.T) {
	t.Parallel()

	_, _, err := New(Config{Level: "loud"})
	assert.Error(t, err)
}
