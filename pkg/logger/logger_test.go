package logger

import (
	"bytes"
	"encoding/json"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseLevel(t *testing.T) {
	assert.Equal(t, zerolog.DebugLevel, parseLevel("DEBUG"))
	assert.Equal(t, zerolog.WarnLevel, parseLevel(" warn "))
	assert.Equal(t, zerolog.InfoLevel, parseLevel("verbose"))
}

func TestNew_JSONConServicioYComponente(t *testing.T) {
	var buf bytes.Buffer
	l := New(Config{Env: "production", Level: "info", Service: "stock-ledger", Out: &buf})

	l.Debug().Msg("no debe salir")
	assert.Zero(t, buf.Len())

	sweeper := l.Component("sweeper")
	sweeper.Info().Int("expired", 2).Msg("barrido")

	var line map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &line))
	assert.Equal(t, "stock-ledger", line["service"])
	assert.Equal(t, "sweeper", line["component"])
	assert.Equal(t, "barrido", line["message"])
	assert.EqualValues(t, 2, line["expired"])
}
