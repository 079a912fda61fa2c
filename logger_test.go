package lsmkit

import (
	"bytes"
	"context"
	"errors"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewLogger_DefaultHandler(t *testing.T) {
	l := NewLogger(nil)
	require.NotNil(t, l)
	require.NotNil(t, l.Logger)
}

func TestLogger_Fields(t *testing.T) {
	var buf bytes.Buffer
	l := NewLogger(slog.NewJSONHandler(&buf, &slog.HandlerOptions{Level: slog.LevelDebug}))

	l.WithPath("/tmp/t.sst").WithCache("LRUCache").WithShards(16).Info("hello")

	out := buf.String()
	assert.Contains(t, out, `"path":"/tmp/t.sst"`)
	assert.Contains(t, out, `"cache":"LRUCache"`)
	assert.Contains(t, out, `"shards":16`)
}

func TestLogger_LogTableFinish(t *testing.T) {
	var buf bytes.Buffer
	l := NewLogger(slog.NewJSONHandler(&buf, &slog.HandlerOptions{Level: slog.LevelDebug}))

	l.LogTableFinish(context.Background(), "ok.sst", 42, 4096, nil)
	assert.Contains(t, buf.String(), "table finished")
	assert.Contains(t, buf.String(), `"entries":42`)

	buf.Reset()
	l.LogTableFinish(context.Background(), "bad.sst", 1, 0, errors.New("disk full"))
	assert.Contains(t, buf.String(), "table build failed")
	assert.Contains(t, buf.String(), "disk full")
}

func TestNoopLogger_Discards(t *testing.T) {
	l := NoopLogger()
	// Must not panic and must not write anywhere observable.
	l.Info("dropped")
	l.LogTableOpen(context.Background(), "x.sst", 0, errors.New("ignored"))
}
