package log

import (
	"bytes"
	"encoding/json"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"
)

func TestParseLevel(t *testing.T) {
	require.Equal(t, zerolog.DebugLevel, ParseLevel("DEBUG"))
	require.Equal(t, zerolog.WarnLevel, ParseLevel("warning"))
	require.Equal(t, zerolog.ErrorLevel, ParseLevel(" error "))
	require.Equal(t, zerolog.InfoLevel, ParseLevel("verbose"))
}

func TestComponentField(t *testing.T) {
	var buf bytes.Buffer
	logger := Component(NewWithWriter(&buf, "info"), "hub")

	logger.Debug().Msg("hidden")
	logger.Info().Str("room_id", "r1").Msg("joined")

	var line map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &line))
	require.Equal(t, "hub", line["component"])
	require.Equal(t, "r1", line["room_id"])
	require.Equal(t, "joined", line["message"])
}
