package logger

import (
	"bytes"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
)

func TestParseLevel(t *testing.T) {
	cases := map[string]zerolog.Level{
		"trace":   zerolog.TraceLevel,
		"DEBUG":   zerolog.DebugLevel,
		" warn ":  zerolog.WarnLevel,
		"warning": zerolog.WarnLevel,
		"error":   zerolog.ErrorLevel,
		"":        zerolog.InfoLevel,
		"bogus":   zerolog.InfoLevel,
	}
	for in, want := range cases {
		assert.Equal(t, want, ParseLevel(in), in)
	}
}

func TestInit_FirstCallWins(t *testing.T) {
	Reset()
	t.Cleanup(Reset)

	var first, second bytes.Buffer
	Init(Options{Level: "debug", Output: &first})
	Init(Options{Level: "error", Output: &second})

	log := Get()
	log.Debug().Str("k", "v").Msg("hello")

	assert.Contains(t, first.String(), `"message":"hello"`)
	assert.Empty(t, second.String())
}

func TestGet_BeforeInitIsSilent(t *testing.T) {
	Reset()
	t.Cleanup(Reset)
	assert.Equal(t, zerolog.Disabled, Get().GetLevel())
}
