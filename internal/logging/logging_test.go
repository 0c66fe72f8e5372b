package logging

import (
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"
)

func TestNewWritesJSONFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "logs", "polish.log")

	logger, err := New(Options{Level: "debug", Path: path})
	require.NoError(t, err)
	logger.Debug("hello", zap.String("k", "v"))
	_ = logger.Sync()

	data, err := os.ReadFile(path)
	require.NoError(t, err)

	var entry map[string]any
	require.NoError(t, json.Unmarshal([]byte(strings.TrimSpace(string(data))), &entry))
	assert.Equal(t, "hello", entry["msg"])
	assert.Equal(t, "debug", entry["level"])
	assert.Equal(t, "v", entry["k"])
}

func TestNewLevelFilters(t *testing.T) {
	path := filepath.Join(t.TempDir(), "polish.log")

	logger, err := New(Options{Level: "warn", Path: path})
	require.NoError(t, err)
	logger.Info("quiet")
	_ = logger.Sync()

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Empty(t, data)
}

func TestNewInvalidLevel(t *testing.T) {
	_, err := New(Options{Level: "loud", Path: filepath.Join(t.TempDir(), "x.log")})
	assert.Error(t, err)
}

func TestNewWithoutOutputs(t *testing.T) {
	logger, err := New(Options{})
	require.NoError(t, err)
	assert.NotNil(t, logger)
}

func TestSecret(t *testing.T) {
	core, logs := observer.New(zap.InfoLevel)
	zap.New(core).Info("configured",
		Secret("api_key", "AIzaSyExample1234"),
		Secret("short", "abc"),
		Secret("empty", ""),
	)

	fields := logs.All()[0].ContextMap()
	assert.Equal(t, "[REDACTED]1234", fields["api_key"])
	assert.Equal(t, "[REDACTED]", fields["short"])
	assert.Equal(t, "", fields["empty"])
}
