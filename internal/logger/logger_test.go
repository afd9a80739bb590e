package logger

import (
	"bytes"
	"context"
	"log/slog"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestColoredHandler(t *testing.T) {
	var buf bytes.Buffer
	log := slog.New(NewColoredHandler(&buf, &slog.HandlerOptions{Level: slog.LevelInfo}))

	ctx := WithRequestID(context.Background(), "req-42")
	log.InfoContext(ctx, "Shortlist completed", "shortlisted", 3, "session", "s1")
	log.Debug("hidden")

	out := buf.String()
	assert.Equal(t, 1, strings.Count(out, "\n"))
	assert.Contains(t, out, "[req-42]")
	assert.Contains(t, out, "Shortlist completed")
	assert.Contains(t, out, "shortlisted")
	assert.Contains(t, out, `"s1"`)
	assert.NotContains(t, out, "hidden")
}

func TestColoredHandler_WithAttrs(t *testing.T) {
	var buf bytes.Buffer
	log := slog.New(NewColoredHandler(&buf, nil)).With(RequestIDAttr, "req-7", "component", "api")

	log.Info("ready")

	out := buf.String()
	assert.Contains(t, out, "[req-7]")
	assert.Contains(t, out, "component")
	assert.Equal(t, 1, strings.Count(out, "req-7"))
}

func TestParseLevel(t *testing.T) {
	tests := []struct {
		name string
		want slog.Level
	}{
		{name: "debug", want: slog.LevelDebug},
		{name: "INFO", want: slog.LevelInfo},
		{name: " warn ", want: slog.LevelWarn},
		{name: "error", want: slog.LevelError},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ParseLevel(tt.name)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}

	_, err := ParseLevel("verbose")
	assert.Error(t, err)
}

func TestRequestIDContext(t *testing.T) {
	assert.Empty(t, GetRequestID(context.Background()))
	assert.Equal(t, "abc", GetRequestID(WithRequestID(context.Background(), "abc")))
}
