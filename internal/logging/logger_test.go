package logging

import (
	"bytes"
	"context"
	"encoding/json"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseLevel(t *testing.T) {
	assert.Equal(t, slog.LevelDebug, ParseLevel("debug"))
	assert.Equal(t, slog.LevelInfo, ParseLevel("info"))
	assert.Equal(t, slog.LevelWarn, ParseLevel("warn"))
	assert.Equal(t, slog.LevelError, ParseLevel("error"))
	assert.Equal(t, slog.LevelInfo, ParseLevel("verbose"))
}

func TestNewLogger_JSONOutput(t *testing.T) {
	var buf bytes.Buffer
	logger := NewLogger(Config{Level: "info", Format: "json", Output: &buf})

	logger.Debug("hidden")
	logger.WithRequestID("req-1").WithFields("layout", "title_given").Info("parsed")

	var line map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &line))
	assert.Equal(t, "parsed", line["msg"])
	assert.Equal(t, "req-1", line["request_id"])
	assert.Equal(t, "title_given", line["layout"])
}

func TestNewLogger_TextOutput(t *testing.T) {
	var buf bytes.Buffer
	logger := NewLogger(Config{Level: "warn", Format: "text", Output: &buf})

	logger.Info("skipped")
	logger.Warn("overrides missing", slog.String("path", "surnames.txt"))

	assert.NotContains(t, buf.String(), "skipped")
	assert.Contains(t, buf.String(), "path=surnames.txt")
}

func TestContextHelpers(t *testing.T) {
	ctx := context.Background()
	assert.NotNil(t, FromContext(ctx))
	assert.Equal(t, "", GetRequestID(ctx))

	logger := NewLogger(Config{Output: &bytes.Buffer{}})
	ctx = WithLogger(ctx, logger)
	ctx = WithRequestIDContext(ctx, "abc")

	assert.Same(t, logger, FromContext(ctx))
	assert.Equal(t, "abc", GetRequestID(ctx))
}

func TestMultiHandler(t *testing.T) {
	var a, b bytes.Buffer
	h := newMultiHandler(
		slog.NewTextHandler(&a, &slog.HandlerOptions{Level: slog.LevelInfo}),
		slog.NewTextHandler(&b, &slog.HandlerOptions{Level: slog.LevelError}),
	)
	logger := slog.New(h).With("svc", "nameparse").WithGroup("g")

	logger.Info("one", "k", "v")
	logger.Error("two")

	assert.Contains(t, a.String(), "one")
	assert.Contains(t, a.String(), "two")
	assert.NotContains(t, b.String(), "one")
	assert.Contains(t, b.String(), "svc=nameparse")
	assert.True(t, h.Enabled(context.Background(), slog.LevelInfo))
	assert.False(t, h.Enabled(context.Background(), slog.LevelDebug))
}
