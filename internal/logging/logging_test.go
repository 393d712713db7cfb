package logging

import (
	"bytes"
	"encoding/json"
	"log/slog"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewJSON(t *testing.T) {
	var buf bytes.Buffer
	logger, err := New(Options{Level: "debug", Format: "json", Writer: &buf})
	require.NoError(t, err)

	logger.Debug("pipeline state", "state", "fetching", "run_id", "abc")

	var line map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &line))
	assert.Equal(t, "pipeline state", line["msg"])
	assert.Equal(t, "debug", line["level"])
	assert.Equal(t, "fetching", line["state"])

	ts, ok := line["ts"].(string)
	require.True(t, ok, "ts key present")
	_, err = time.Parse(time.RFC3339, ts)
	assert.NoError(t, err)
	assert.True(t, strings.HasSuffix(ts, "Z"), "timestamps are UTC")
}

func TestNewConsole(t *testing.T) {
	var buf bytes.Buffer
	logger, err := New(Options{Writer: &buf})
	require.NoError(t, err)

	logger.Debug("hidden")
	logger.Info("extraction complete", "version", "33.2.0")

	out := buf.String()
	assert.NotContains(t, out, "hidden", "default level is info")
	assert.Contains(t, out, "level=INFO")
	assert.Contains(t, out, `msg="extraction complete"`)
	assert.Contains(t, out, "version=33.2.0")
}

func TestNewRejectsUnknownValues(t *testing.T) {
	_, err := New(Options{Format: "xml"})
	assert.Error(t, err)

	_, err = New(Options{Level: "chatty"})
	assert.Error(t, err)
}

func TestParseLevel(t *testing.T) {
	tests := map[string]slog.Level{
		"":        slog.LevelInfo,
		"DEBUG":   slog.LevelDebug,
		" warn ":  slog.LevelWarn,
		"warning": slog.LevelWarn,
		"error":   slog.LevelError,
	}
	for in, want := range tests {
		got, err := ParseLevel(in)
		require.NoError(t, err, in)
		assert.Equal(t, want, got, in)
	}
}

func TestComponent(t *testing.T) {
	var buf bytes.Buffer
	logger, err := New(Options{Format: "json", Writer: &buf})
	require.NoError(t, err)

	Component(logger, "check").Info("done")
	assert.Contains(t, buf.String(), `"component":"check"`)

	assert.NotPanics(t, func() { Component(nil, "extract").Error("dropped") })
}
