package logging

import (
	"context"
	"log/slog"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseLevel(t *testing.T) {
	tests := []struct {
		in   string
		want slog.Level
	}{
		{"debug", slog.LevelDebug},
		{"INFO", slog.LevelInfo},
		{"warn", slog.LevelWarn},
		{"warning", slog.LevelWarn},
		{"error", slog.LevelError},
		{"", slog.LevelInfo},
		{"verbose", slog.LevelInfo},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			assert.Equal(t, tt.want, ParseLevel(tt.in))
		})
	}
}

func TestNew_ErrorLevelDisablesInfo(t *testing.T) {
	logger := New("error", "json")
	require.NotNil(t, logger)
	assert.False(t, logger.Enabled(context.Background(), slog.LevelInfo))
	assert.True(t, logger.Enabled(context.Background(), slog.LevelError))
}

func TestNewFromConfig_RotatedFile(t *testing.T) {
	file := filepath.Join(t.TempDir(), "scamshield.log")
	logger := NewFromConfig(Config{Level: "debug", File: file, MaxSizeMB: 1})
	require.NotNil(t, logger)

	logger.Info("scored payment", "action", "hold")
	assert.FileExists(t, file)
}

func TestContextHelpers(t *testing.T) {
	ctx := context.Background()
	assert.Equal(t, "", RequestID(ctx))
	assert.Equal(t, slog.Default(), FromContext(ctx))

	logger := Discard()
	ctx = WithLogger(ctx, logger)
	ctx = WithRequestID(ctx, "req-42")

	assert.Equal(t, "req-42", RequestID(ctx))
	assert.Same(t, logger, FromContext(ctx))
	assert.NotNil(t, L(ctx))
}
