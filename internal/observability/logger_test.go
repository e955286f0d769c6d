// internal/observability/logger_test.go
package observability

import (
	"bytes"
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"syscall"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/xkilldash9x/clawlogin/internal/config"
)

// initBuffered initializes the global logger against an in-memory buffer.
func initBuffered(t *testing.T, cfg config.LoggerConfig) *bytes.Buffer {
	t.Helper()
	ResetForTest()
	t.Cleanup(ResetForTest)
	var buf bytes.Buffer
	Initialize(cfg, zapcore.AddSync(&buf))
	return &buf
}

func TestInitialize(t *testing.T) {
	t.Run("console logger with colors", func(t *testing.T) {
		buf := initBuffered(t, config.LoggerConfig{
			Level:       "debug",
			Format:      "console",
			ServiceName: "clawlogin",
			Colors:      config.ColorConfig{Info: "green"},
		})

		GetLogger().Named("driver").Info("Navigating to target")
		Sync()

		output := buf.String()
		assert.Contains(t, output, "INFO")
		assert.Contains(t, output, "Navigating to target")
		assert.Contains(t, output, "clawlogin.driver.")
		assert.Contains(t, output, colorCodes["green"])
		assert.Contains(t, output, colorReset)
	})

	t.Run("json logger", func(t *testing.T) {
		buf := initBuffered(t, config.LoggerConfig{Level: "info", Format: "json", ServiceName: "JSONTest"})

		GetLogger().Warn("Step failed", zap.String("step", "github_button"))
		Sync()

		var entry map[string]interface{}
		require.NoError(t, json.Unmarshal(buf.Bytes(), &entry), "log output should be valid JSON")
		assert.Equal(t, "WARN", entry["level"])
		assert.Equal(t, "JSONTest", entry["logger"])
		assert.Equal(t, "Step failed", entry["msg"])
		assert.Equal(t, "github_button", entry["step"])
	})

	t.Run("level filtering", func(t *testing.T) {
		buf := initBuffered(t, config.LoggerConfig{Level: "warn", Format: "json"})
		GetLogger().Info("hidden")
		GetLogger().Error("shown")
		Sync()
		assert.NotContains(t, buf.String(), "hidden")
		assert.Contains(t, buf.String(), "shown")
	})

	t.Run("invalid level falls back to info", func(t *testing.T) {
		buf := initBuffered(t, config.LoggerConfig{Level: "loud", Format: "json"})
		GetLogger().Debug("debug line")
		GetLogger().Info("info line")
		Sync()
		assert.NotContains(t, buf.String(), "debug line")
		assert.Contains(t, buf.String(), "info line")
	})

	t.Run("writes rotated file", func(t *testing.T) {
		logFile := filepath.Join(t.TempDir(), "clawlogin.log")
		initBuffered(t, config.LoggerConfig{Level: "debug", Format: "console", LogFile: logFile, MaxSize: 1})

		GetLogger().Error("This should go to the file.")
		Sync()

		content, err := os.ReadFile(logFile)
		require.NoError(t, err)
		assert.Contains(t, string(content), "This should go to the file.")
		assert.True(t, strings.HasPrefix(strings.TrimSpace(string(content)), "{"), "file sink is always JSON")
	})

	t.Run("only initializes once", func(t *testing.T) {
		buf := initBuffered(t, config.LoggerConfig{Level: "info", Format: "json", ServiceName: "First"})
		first := GetLogger()

		Initialize(config.LoggerConfig{Level: "debug", ServiceName: "Second"}, zapcore.AddSync(&bytes.Buffer{}))
		second := GetLogger()

		assert.Same(t, first, second)
		second.Info("test")
		Sync()
		assert.Contains(t, buf.String(), "First")
		assert.NotContains(t, buf.String(), "Second")
	})
}

func TestGetLogger(t *testing.T) {
	t.Run("fallback when not initialized", func(t *testing.T) {
		ResetForTest()
		require.NotNil(t, GetLogger())
	})

	t.Run("returns the stored logger", func(t *testing.T) {
		initBuffered(t, config.LoggerConfig{Level: "info", ServiceName: "GlobalTest"})
		assert.Equal(t, globalLogger.Load(), GetLogger())
	})
}

func TestForRun(t *testing.T) {
	buf := initBuffered(t, config.LoggerConfig{Level: "info", Format: "json"})
	ForRun("run-123").Info("hello")
	Sync()

	var entry map[string]interface{}
	require.NoError(t, json.Unmarshal(buf.Bytes(), &entry))
	assert.Equal(t, "run-123", entry["run_id"])
}

func TestRedact(t *testing.T) {
	buf := initBuffered(t, config.LoggerConfig{Level: "info", Format: "json"})
	Redact("hunter2-password", "ghp_abcdef123456", "yes", "  ")

	logger := ForRun("run-1").With(zap.String("token", "ghp_abcdef123456"))
	logger.Info("typing hunter2-password",
		zap.String("field", "prefix hunter2-password suffix"),
		zap.Error(errors.New("401 for ghp_abcdef123456")),
		zap.String("cookie", "logged_in=yes"),
	)
	Sync()

	var entry map[string]interface{}
	require.NoError(t, json.Unmarshal(buf.Bytes(), &entry))
	assert.Equal(t, "typing [REDACTED]", entry["msg"])
	assert.Equal(t, "prefix [REDACTED] suffix", entry["field"])
	assert.Equal(t, "401 for [REDACTED]", entry["error"])
	assert.Equal(t, "[REDACTED]", entry["token"])
	assert.Equal(t, "logged_in=yes", entry["cookie"], "short values are not registered")
	assert.NotContains(t, buf.String(), "hunter2-password")
}

func TestRedact_ClearedByReset(t *testing.T) {
	Redact("hunter2-password")
	buf := initBuffered(t, config.LoggerConfig{Level: "info", Format: "json"})
	GetLogger().Info("hunter2-password")
	Sync()
	assert.Contains(t, buf.String(), "hunter2-password")
}

func TestIsTerminalSyncError(t *testing.T) {
	assert.True(t, isTerminalSyncError(&os.PathError{Op: "sync", Path: "/dev/stdout", Err: syscall.EINVAL}))
	assert.False(t, isTerminalSyncError(errors.New("disk full")))
}
