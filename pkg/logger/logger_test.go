package logger

import (
	"bytes"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
)

func TestParseLevel(t *testing.T) {
	assert.Equal(t, zerolog.DebugLevel, parseLevel("DEBUG"))
	assert.Equal(t, zerolog.ErrorLevel, parseLevel("error"))
	assert.Equal(t, zerolog.InfoLevel, parseLevel("desconocido"))
}

func TestNewWithWriter_JSONConServicio(t *testing.T) {
	var buf bytes.Buffer
	l := newWithWriter(&buf, Config{Env: "production", Level: "info", Service: "nordiqua-api"})

	l.Debug().Msg("oculto")
	l.Info().Str("user_id", "u1").Msg("visible")

	out := buf.String()
	assert.NotContains(t, out, "oculto")
	assert.Contains(t, out, `"service":"nordiqua-api"`)
	assert.Contains(t, out, `"user_id":"u1"`)
}
