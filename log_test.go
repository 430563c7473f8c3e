package cgin

import (
	"bytes"
	"context"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoggerDefaultsToSilent(t *testing.T) {
	assert.False(t, Logger().Enabled(context.Background(), slog.LevelError))
}

func TestSetLogger(t *testing.T) {
	var buf bytes.Buffer
	SetLogger(slog.New(slog.NewTextHandler(&buf, &slog.HandlerOptions{Level: slog.LevelDebug})))
	defer SetLogger(nil)

	dev := newFakeDevice()
	b := NewBuffer(BufferConfig{Size: 2048, Property: PreferHost, Operations: []Operation{UniformBuffer}})
	require.NoError(t, b.Initialize(dev))

	assert.Contains(t, buf.String(), "buffer initialized")
	assert.Contains(t, buf.String(), "size=2KiB")

	SetLogger(nil)
	assert.False(t, Logger().Enabled(context.Background(), slog.LevelError))
}
