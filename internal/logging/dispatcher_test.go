package logging

import (
	"bytes"
	"encoding/json"
	"log/slog"
	"testing"

	"github.com/markerlane/markerlane/internal/dispatcher"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var _ dispatcher.Logger = (*DispatcherLogger)(nil)

func decodeLine(t *testing.T, buf *bytes.Buffer) map[string]any {
	t.Helper()
	var entry map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &entry), buf.String())
	return entry
}

func TestDispatcherLogger_Levels(t *testing.T) {
	tests := []struct {
		level string
		log   func(*DispatcherLogger)
	}{
		{"DEBUG", func(l *DispatcherLogger) { l.Debug("queued", "command", "persist:save", "depth", 3) }},
		{"INFO", func(l *DispatcherLogger) { l.Info("queued", "command", "persist:save", "depth", 3) }},
		{"ERROR", func(l *DispatcherLogger) { l.Error("queued", "command", "persist:save", "depth", 3) }},
	}

	for _, tt := range tests {
		t.Run(tt.level, func(t *testing.T) {
			var buf bytes.Buffer
			logger := slog.New(slog.NewJSONHandler(&buf, &slog.HandlerOptions{Level: slog.LevelDebug}))
			tt.log(NewDispatcherLogger(logger))

			entry := decodeLine(t, &buf)
			assert.Equal(t, tt.level, entry["level"])
			assert.Equal(t, "queued", entry["msg"])
			assert.Equal(t, "dispatcher", entry["component"])
			assert.Equal(t, "persist:save", entry["command"])
			assert.Equal(t, float64(3), entry["depth"])
		})
	}
}

func TestDispatcherLogger_RespectsLevel(t *testing.T) {
	var buf bytes.Buffer
	logger := slog.New(slog.NewJSONHandler(&buf, &slog.HandlerOptions{Level: slog.LevelError}))
	dl := NewDispatcherLogger(logger)

	dl.Debug("hidden")
	dl.Info("hidden")
	assert.Zero(t, buf.Len())

	dl.Error("shown")
	assert.Equal(t, "shown", decodeLine(t, &buf)["msg"])
}

func TestDispatcherLogger_NilLogger(t *testing.T) {
	dl := NewDispatcherLogger(nil)
	require.NotNil(t, dl)
	dl.Info("goes to the default logger")
}

func TestDispatcherLogger_WithDispatcher(t *testing.T) {
	var buf bytes.Buffer
	logger := slog.New(slog.NewJSONHandler(&buf, &slog.HandlerOptions{Level: slog.LevelDebug}))

	d, err := dispatcher.New(NewDispatcherLogger(logger))
	require.NoError(t, err)
	t.Cleanup(d.Close)

	d.Register("next", func(dispatcher.Event) (any, error) { return "a1", nil }, dispatcher.Logged())
	_, err = d.Dispatch(dispatcher.Event{Command: "next"})
	require.NoError(t, err)

	assert.Contains(t, buf.String(), `"component":"dispatcher"`)
	assert.Contains(t, buf.String(), `"command":"next"`)
}
