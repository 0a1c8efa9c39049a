// Copyright (c) Microsoft. All rights reserved.

package logging_test

import (
	"bytes"
	"context"
	"encoding/json"
	"log/slog"
	"testing"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/microsoft/weather-agent/go/internal/logging"
)

func TestNew_Level(t *testing.T) {
	assert.Equal(t, logrus.DebugLevel, logging.New("debug", "text").GetLevel())
	assert.Equal(t, logrus.InfoLevel, logging.New("nonsense", "text").GetLevel())
	assert.Equal(t, logrus.InfoLevel, logging.New("", "").GetLevel())

	_, isJSON := logging.New("info", "JSON").Formatter.(*logrus.JSONFormatter)
	assert.True(t, isJSON)
	_, isText := logging.New("info", "text").Formatter.(*logrus.TextFormatter)
	assert.True(t, isText)
}

func TestSlogHandler(t *testing.T) {
	var buf bytes.Buffer
	logger := logging.NewWithWriter(&buf, "info", "json")
	log := logging.NewSlogLogger(logger).With("component", "agent").WithGroup("tool")

	log.Debug("hidden")
	log.Warn("tool invocation error", "name", "weatherTool", slog.Group("err", "code", 7))

	var entry map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &entry))

	assert.Equal(t, "warning", entry["level"])
	assert.Equal(t, "tool invocation error", entry["msg"])
	assert.Equal(t, "agent", entry["component"])

	tool, ok := entry["tool"].(map[string]any)
	require.True(t, ok, "tool group missing: %v", entry)
	assert.Equal(t, "weatherTool", tool["name"])
	assert.Equal(t, map[string]any{"code": float64(7)}, tool["err"])
}

func TestSlogHandler_Enabled(t *testing.T) {
	h := logging.NewSlogHandler(logging.NewWithWriter(&bytes.Buffer{}, "warn", "text"))
	assert.False(t, h.Enabled(context.Background(), slog.LevelInfo))
	assert.True(t, h.Enabled(context.Background(), slog.LevelError))
}

func TestSlogHandler_FollowsLoggerLevel(t *testing.T) {
	logger := logging.NewWithWriter(&bytes.Buffer{}, "info", "text")
	h := logging.NewSlogHandler(logger)
	assert.False(t, h.Enabled(context.Background(), slog.LevelDebug))

	logger.SetLevel(logrus.DebugLevel)
	assert.True(t, h.Enabled(context.Background(), slog.LevelDebug))
}
