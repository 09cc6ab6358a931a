package logging

import (
	"bytes"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
)

func TestNewLevel(t *testing.T) {
	var buf bytes.Buffer
	log := New("warn", &buf)
	assert.Equal(t, zerolog.WarnLevel, log.GetLevel())

	log.Info().Msg("hidden")
	assert.Empty(t, buf.String())

	log.Warn().Str("method", "dop853").Msg("visible")
	assert.Contains(t, buf.String(), "visible")
	assert.Contains(t, buf.String(), "method=dop853")
}

func TestNewFallback(t *testing.T) {
	assert.Equal(t, zerolog.InfoLevel, New("", nil).GetLevel())
	assert.Equal(t, zerolog.InfoLevel, New("chatty", nil).GetLevel())
	assert.Equal(t, zerolog.TraceLevel, New("trace", nil).GetLevel())
}
