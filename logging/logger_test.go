package logging

import (
	"bytes"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/grovetools/pilot/pkg/store"
)

func env(vars map[string]string) func(string) string {
	return func(key string) string { return vars[key] }
}

func TestBuildLevel(t *testing.T) {
	tests := []struct {
		name string
		cfg  store.LoggingSettings
		vars map[string]string
		want logrus.Level
	}{
		{"default", store.LoggingSettings{}, nil, logrus.InfoLevel},
		{"settings", store.LoggingSettings{Level: "warn"}, nil, logrus.WarnLevel},
		{"env wins", store.LoggingSettings{Level: "warn"}, map[string]string{"PILOT_LOG_LEVEL": "error"}, logrus.ErrorLevel},
		{"invalid falls back", store.LoggingSettings{Level: "loud"}, nil, logrus.InfoLevel},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			entry := build("test", tt.cfg, env(tt.vars), io.Discard, true, time.Now())
			assert.Equal(t, tt.want, entry.Logger.GetLevel())
			assert.Equal(t, "test", entry.Data["component"])
		})
	}
}

func TestBuildCaller(t *testing.T) {
	entry := build("test", store.LoggingSettings{}, env(map[string]string{"PILOT_LOG_CALLER": "true"}), io.Discard, true, time.Now())
	assert.True(t, entry.Logger.ReportCaller)
}

func TestBuildSinks(t *testing.T) {
	t.Run("interactive info is quiet", func(t *testing.T) {
		var stderr bytes.Buffer
		entry := build("test", store.LoggingSettings{}, env(nil), &stderr, true, time.Now())
		entry.Info("hidden")
		assert.Empty(t, stderr.String())
		assert.Equal(t, io.Discard, entry.Logger.Out)
	})

	t.Run("non-interactive reaches stderr", func(t *testing.T) {
		var stderr bytes.Buffer
		entry := build("test", store.LoggingSettings{}, env(nil), &stderr, false, time.Now())
		entry.Info("shown")
		assert.Contains(t, stderr.String(), "shown")
	})

	t.Run("debug reaches stderr", func(t *testing.T) {
		var stderr bytes.Buffer
		entry := build("test", store.LoggingSettings{Level: "debug"}, env(nil), &stderr, true, time.Now())
		entry.Debug("shown")
		assert.Contains(t, stderr.String(), "shown")
	})

	t.Run("file sink", func(t *testing.T) {
		dir := t.TempDir()
		now := time.Date(2026, 5, 1, 0, 0, 0, 0, time.UTC)
		cfg := store.LoggingSettings{File: store.FileSinkSettings{Enabled: true, Path: dir}}
		entry := build("sessions", cfg, env(nil), io.Discard, true, now)
		entry.Info("to file")

		data, err := os.ReadFile(filepath.Join(dir, "sessions-2026-05-01.log"))
		require.NoError(t, err)
		assert.Contains(t, string(data), "to file")
	})
}

func TestLogFilePath(t *testing.T) {
	now := time.Date(2026, 5, 1, 0, 0, 0, 0, time.UTC)
	assert.Equal(t, "/var/log/pilot.log", logFilePath("x", "/var/log/pilot.log", now))
	assert.Equal(t, "/var/log/x-2026-05-01.log", logFilePath("x", "/var/log", now))
	assert.True(t, strings.HasSuffix(logFilePath("x", "", now), filepath.Join("logs", "x-2026-05-01.log")))
}

func TestTextFormatter(t *testing.T) {
	tests := []struct {
		name    string
		config  store.LogFormatSettings
		want    []string
		notWant []string
	}{
		{
			name:   "default",
			config: store.LogFormatSettings{},
			want:   []string{"[WARN]", "test-component", "test message", "a=1 b=2"},
		},
		{
			name:    "simple",
			config:  store.LogFormatSettings{DisableTimestamp: true, DisableComponent: true},
			want:    []string{"[WARN]", "test message"},
			notWant: []string{"test-component", "2026-"},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			entry := &logrus.Entry{
				Time:    time.Date(2026, 5, 1, 12, 0, 0, 0, time.UTC),
				Level:   logrus.WarnLevel,
				Message: "test message",
				Data:    logrus.Fields{"component": "test-component", "b": 2, "a": 1},
			}
			out, err := (&TextFormatter{Config: tt.config}).Format(entry)
			require.NoError(t, err)
			for _, w := range tt.want {
				assert.Contains(t, string(out), w)
			}
			for _, nw := range tt.notWant {
				assert.NotContains(t, string(out), nw)
			}
		})
	}
}

func TestNewLoggerSingleton(t *testing.T) {
	orig := loadConfig
	loadConfig = func() store.LoggingSettings { return store.LoggingSettings{} }
	defer func() { loadConfig = orig }()

	a := NewLogger("singleton-test")
	b := NewLogger("singleton-test")
	assert.Same(t, a, b)
}
