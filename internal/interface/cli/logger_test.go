package cli

import (
	"bytes"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestLogger_LevelFiltering(t *testing.T) {
	var buf bytes.Buffer
	l := NewLogger(LogLevelWarn, &buf)

	l.Debug("debug %d", 1)
	l.Info("info %d", 2)
	l.Warn("warn %d", 3)
	l.Error("error %d", 4)

	out := buf.String()
	assert.NotContains(t, out, "debug 1")
	assert.NotContains(t, out, "info 2")
	assert.Contains(t, out, "WARN")
	assert.Contains(t, out, "warn 3")
	assert.Contains(t, out, "ERROR")
	assert.Contains(t, out, "error 4")

	buf.Reset()
	l.SetLevel(LogLevelDebug)
	l.Debug("now visible")
	assert.Contains(t, buf.String(), "DEBUG")
	assert.Equal(t, LogLevelDebug, l.GetLevel())
}

func TestLogger_SetOutput(t *testing.T) {
	var first, second bytes.Buffer
	l := NewLogger(LogLevelInfo, &first)
	l.Info("one")
	l.SetOutput(&second)
	l.Info("two")

	assert.Contains(t, first.String(), "one")
	assert.NotContains(t, first.String(), "two")
	assert.Equal(t, 1, strings.Count(second.String(), "two"))
}

func TestLogLevelFromString(t *testing.T) {
	tests := map[string]LogLevel{
		"debug":   LogLevelDebug,
		" INFO ":  LogLevelInfo,
		"warn":    LogLevelWarn,
		"error":   LogLevelError,
		"":        LogLevelWarn,
		"verbose": LogLevelWarn,
	}
	for in, want := range tests {
		assert.Equal(t, want, LogLevelFromString(in), "input %q", in)
	}
}
