package logx

import (
	"bytes"
	"encoding/json"
	"testing"

	"github.com/rs/zerolog/log"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestInitWriter_JSON(t *testing.T) {
	var buf bytes.Buffer
	InitWriter(&buf, "market-api", "production")

	log.Info().Int64("id", 7).Msg("user created")

	var line map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &line))
	assert.Equal(t, "market-api", line["service"])
	assert.Equal(t, "user created", line["message"])
	assert.Equal(t, float64(7), line["id"])
}

func TestInitWriter_Console(t *testing.T) {
	var buf bytes.Buffer
	InitWriter(&buf, "market-api", "development")

	log.Info().Msg("listening")
	assert.Contains(t, buf.String(), "listening")
}
