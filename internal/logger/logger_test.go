package logger

import (
	"bytes"
	"encoding/json"
	"log/slog"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/seenimoa/newsbrief/internal/config"
)

func TestParseLevel(t *testing.T) {
	t.Parallel()

	tests := map[string]slog.Level{
		"debug":   slog.LevelDebug,
		"DEBUG":   slog.LevelDebug,
		"info":    slog.LevelInfo,
		"warn":    slog.LevelWarn,
		"warning": slog.LevelWarn,
		"error":   slog.LevelError,
		"":        slog.LevelInfo,
		"verbose": slog.LevelInfo,
	}
	for in, want := range tests {
		assert.Equal(t, want, ParseLevel(in), "ParseLevel(%q)", in)
	}
}

func TestNew_TextFormatFiltersByLevel(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	log := New(Options{Level: "warn", Format: "text", Output: &buf})

	log.Info("hidden")
	log.Warn("topic skipped", slog.String("topic", "golang"))

	out := buf.String()
	assert.NotContains(t, out, "hidden")
	assert.Contains(t, out, "topic skipped")
	assert.Contains(t, out, "topic=golang")
}

func TestNew_JSONFormat(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	log := New(Options{Level: "debug", Format: "json", Output: &buf})
	log.Debug("fetched", slog.Int("articles", 3))

	var rec map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &rec))
	assert.Equal(t, "fetched", rec["msg"])
	assert.Equal(t, "DEBUG", rec["level"])
	assert.EqualValues(t, 3, rec["articles"])
}

func TestNewFromConfig_WithoutSentry(t *testing.T) {
	t.Parallel()

	log, flush := NewFromConfig(config.LoggingConfig{Level: "info", Format: "text"}, config.SentryConfig{})
	require.NotNil(t, log)
	require.NotNil(t, flush)
	flush()
	assert.True(t, log.Enabled(t.Context(), slog.LevelInfo))
	assert.False(t, log.Enabled(t.Context(), slog.LevelDebug))
}

func TestMultiHandler(t *testing.T) {
	t.Parallel()

	var infoBuf, errBuf bytes.Buffer
	info := slog.NewTextHandler(&infoBuf, &slog.HandlerOptions{Level: slog.LevelInfo})
	errOnly := slog.NewTextHandler(&errBuf, &slog.HandlerOptions{Level: slog.LevelError})

	log := slog.New(newMultiHandler(info, errOnly)).With(slog.String("run", "r1")).WithGroup("send")
	log.Info("delivered")
	log.Error("smtp auth failed", slog.String("host", "smtp.example.com"))

	assert.Equal(t, 2, strings.Count(infoBuf.String(), "run=r1"))
	assert.Contains(t, infoBuf.String(), "send.host=smtp.example.com")
	assert.NotContains(t, errBuf.String(), "delivered")
	assert.Contains(t, errBuf.String(), "smtp auth failed")
}
