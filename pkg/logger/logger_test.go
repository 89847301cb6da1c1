package logger

import (
	"bytes"
	"encoding/json"
	"errors"
	"strings"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/wonny/bullscan/pkg/config"
)

func decodeLine(t *testing.T, buf *bytes.Buffer) map[string]interface{} {
	t.Helper()
	var entry map[string]interface{}
	require.NoError(t, json.Unmarshal(bytes.TrimSpace(buf.Bytes()), &entry))
	return entry
}

func TestNew_SetsGlobalLevel(t *testing.T) {
	tests := []struct {
		level string
		want  zerolog.Level
	}{
		{"debug", zerolog.DebugLevel},
		{"info", zerolog.InfoLevel},
		{"warn", zerolog.WarnLevel},
		{"error", zerolog.ErrorLevel},
	}

	for _, tt := range tests {
		t.Run(tt.level, func(t *testing.T) {
			l := New(&config.Config{Env: "development", LogLevel: tt.level, LogFormat: "json"})
			require.NotNil(t, l)
			assert.Equal(t, tt.want, zerolog.GlobalLevel())
		})
	}
}

func TestParseLogLevel(t *testing.T) {
	assert.Equal(t, zerolog.DebugLevel, parseLogLevel("DEBUG"))
	assert.Equal(t, zerolog.WarnLevel, parseLogLevel("warning"))
	assert.Equal(t, zerolog.InfoLevel, parseLogLevel("nonsense"))
	assert.Equal(t, zerolog.InfoLevel, parseLogLevel(""))
}

func TestNewWithWriter_JSON(t *testing.T) {
	var buf bytes.Buffer
	l := NewWithWriter(&buf, "debug", "json", "staging")

	l.Infof("scored %d symbols", 16)

	entry := decodeLine(t, &buf)
	assert.Equal(t, "info", entry["level"])
	assert.Equal(t, "scored 16 symbols", entry["message"])
	assert.Equal(t, "staging", entry["env"])
}

func TestNewWithWriter_Console(t *testing.T) {
	var buf bytes.Buffer
	l := NewWithWriter(&buf, "debug", "console", "")

	l.Warn("benchmark stale")

	out := buf.String()
	assert.Contains(t, out, "benchmark stale")
	assert.False(t, strings.HasPrefix(strings.TrimSpace(out), "{"))
}

func TestChildLoggers(t *testing.T) {
	var buf bytes.Buffer
	l := NewWithWriter(&buf, "debug", "json", "")

	l.Component("scoring").
		WithRun("run-1").
		WithFields(map[string]interface{}{"symbol": "AAPL"}).
		WithError(errors.New("boom")).
		Error("score failed")

	entry := decodeLine(t, &buf)
	assert.Equal(t, "scoring", entry["component"])
	assert.Equal(t, "run-1", entry["run_id"])
	assert.Equal(t, "AAPL", entry["symbol"])
	assert.Equal(t, "boom", entry["error"])
}

func TestLevelFiltering(t *testing.T) {
	var buf bytes.Buffer
	l := NewWithWriter(&buf, "warn", "json", "")

	l.Debug("hidden")
	l.Info("hidden")
	assert.Zero(t, buf.Len())

	l.Error("shown")
	assert.Contains(t, buf.String(), "shown")
}

func TestNop(t *testing.T) {
	assert.NotPanics(t, func() {
		Nop().WithField("k", "v").Info("discarded")
	})
}
