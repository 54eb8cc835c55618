package logger

import (
	"bytes"
	"encoding/json"
	"errors"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseLevel(t *testing.T) {
	for _, s := range []string{"off", "error", "warn", "info", "debug", "trace"} {
		l, err := ParseLevel(s)
		require.NoError(t, err)
		require.Equal(t, Level(s), l)
	}

	_, err := ParseLevel("verbose")
	require.Error(t, err)
}

func TestNew_offWritesNothing(t *testing.T) {
	var buf bytes.Buffer
	l := New(&buf, Off, false)

	l.Error().Err(errors.New("boom")).Msg("failed")
	l.Info().Msg("started server")
	l.WithLevel(zerolog.PanicLevel).Msg("still nothing")

	require.Zero(t, buf.Len())
}

func TestNew_releaseWritesJSON(t *testing.T) {
	var buf bytes.Buffer
	l := New(&buf, Info, false)

	l.Info().Str("listen", "127.0.0.1:23294").Msg("started server")

	var entry map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &entry))
	assert.Equal(t, "info", entry["level"])
	assert.Equal(t, "started server", entry["message"])
	assert.Equal(t, "127.0.0.1:23294", entry["listen"])
	assert.Contains(t, entry, "time")
}

func TestNew_devWritesConsole(t *testing.T) {
	var buf bytes.Buffer
	l := New(&buf, Info, true)

	l.Info().Msg("started server")

	out := buf.String()
	require.Contains(t, out, "started server")
	require.False(t, json.Valid(buf.Bytes()))
}

func TestNew_levelFilters(t *testing.T) {
	var buf bytes.Buffer
	l := New(&buf, Warn, false)

	l.Info().Msg("hidden")
	require.Zero(t, buf.Len())

	l.Warn().Msg("shown")
	require.Contains(t, buf.String(), "shown")
}
