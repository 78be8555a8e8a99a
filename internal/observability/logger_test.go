// internal/observability/logger_test.go
package observability

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xkilldash9x/ficwright/internal/config"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// bufferSyncer adapts a bytes.Buffer to zapcore.WriteSyncer.
type bufferSyncer struct{ bytes.Buffer }

func (b *bufferSyncer) Sync() error { return nil }

func TestInitialize(t *testing.T) {
	t.Run("ConsoleWithColors", func(t *testing.T) {
		ResetForTest()
		t.Cleanup(ResetForTest)

		var buf bufferSyncer
		Initialize(config.LoggerConfig{
			Level:       "debug",
			Format:      "console",
			ServiceName: "TestService",
			Colors:      config.ColorConfig{Info: "green"},
		}, &buf)

		GetLogger().Info("This is a test message.")
		Sync()

		out := buf.String()
		assert.Contains(t, out, "INFO")
		assert.Contains(t, out, colorGreen)
		assert.Contains(t, out, colorReset)
		assert.Contains(t, out, "TestService.")
		assert.Contains(t, out, "This is a test message.")
	})

	t.Run("JSONFormat", func(t *testing.T) {
		ResetForTest()
		t.Cleanup(ResetForTest)

		var buf bufferSyncer
		Initialize(config.LoggerConfig{Level: "info", Format: "json", ServiceName: "svc"}, &buf)

		GetLogger().Warn("structured", zap.String("widget", "checkbox"))
		Sync()

		var entry map[string]interface{}
		require.NoError(t, json.Unmarshal([]byte(strings.TrimSpace(buf.String())), &entry))
		assert.Equal(t, "WARN", entry["level"])
		assert.Equal(t, "structured", entry["msg"])
		assert.Equal(t, "checkbox", entry["widget"])
		assert.Equal(t, "svc", entry["logger"])
	})

	t.Run("LevelFiltering", func(t *testing.T) {
		ResetForTest()
		t.Cleanup(ResetForTest)

		var buf bufferSyncer
		Initialize(config.LoggerConfig{Level: "warn", Format: "json"}, &buf)

		GetLogger().Info("hidden")
		GetLogger().Error("shown")
		Sync()

		assert.NotContains(t, buf.String(), "hidden")
		assert.Contains(t, buf.String(), "shown")
	})

	t.Run("InvalidLevelFallsBackToInfo", func(t *testing.T) {
		ResetForTest()
		t.Cleanup(ResetForTest)

		var buf bufferSyncer
		Initialize(config.LoggerConfig{Level: "chatty", Format: "json"}, &buf)

		GetLogger().Debug("hidden")
		GetLogger().Info("shown")
		Sync()

		assert.NotContains(t, buf.String(), "hidden")
		assert.Contains(t, buf.String(), "shown")
	})

	t.Run("FileCore", func(t *testing.T) {
		ResetForTest()
		t.Cleanup(ResetForTest)

		path := filepath.Join(t.TempDir(), "ficwright.log")
		Initialize(config.LoggerConfig{Level: "info", Format: "console", LogFile: path, MaxSize: 1}, zapcore.AddSync(&bytes.Buffer{}))

		GetLogger().Info("to the file")
		Sync()

		data, err := os.ReadFile(path)
		require.NoError(t, err)
		assert.Contains(t, string(data), `"msg":"to the file"`)
	})

	t.Run("OnlyFirstCallWins", func(t *testing.T) {
		ResetForTest()
		t.Cleanup(ResetForTest)

		var first, second bufferSyncer
		Initialize(config.LoggerConfig{Level: "info", Format: "json"}, &first)
		Initialize(config.LoggerConfig{Level: "info", Format: "json"}, &second)

		GetLogger().Info("once")
		Sync()

		assert.Contains(t, first.String(), "once")
		assert.Empty(t, second.String())
	})
}

func TestGetLogger_Fallback(t *testing.T) {
	ResetForTest()
	t.Cleanup(ResetForTest)

	logger := GetLogger()
	require.NotNil(t, logger)
}
