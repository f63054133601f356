package logger

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestParseLevel(t *testing.T) {
	tests := []struct {
		in   string
		want LogLevel
	}{
		{"debug", LevelDebug},
		{"INFO", LevelInfo},
		{" warn ", LevelWarn},
		{"error", LevelError},
		{"verbose", LevelInfo},
		{"", LevelInfo},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.want, ParseLevel(tt.in), "ParseLevel(%q)", tt.in)
	}
}

func TestLoggerFiltersBelowMinLevel(t *testing.T) {
	var buf bytes.Buffer
	l := New(LevelWarn, &buf)

	l.Info("Ingestor", "should not appear")
	l.Warn("Ingestor", "skipped file=%s", "a.csv")

	out := buf.String()
	assert.NotContains(t, out, "should not appear")
	assert.Contains(t, out, "[WARN] [Ingestor] skipped file=a.csv")
}

func TestLoggerWithoutComponent(t *testing.T) {
	var buf bytes.Buffer
	l := New(LevelDebug, &buf)

	l.Debug("", "rows=%d", 3)

	assert.Contains(t, buf.String(), "[DEBUG] rows=3")
}
