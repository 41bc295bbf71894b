package logging

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func TestNewFile_EmptyPathIsNop(t *testing.T) {
	logger, err := NewFile("", true)
	require.NoError(t, err)
	assert.False(t, logger.Core().Enabled(zap.ErrorLevel))
}

func TestNewFile_WritesToPath(t *testing.T) {
	path := filepath.Join(t.TempDir(), "logs", "bankdash.log")

	logger, err := NewFile(path, true)
	require.NoError(t, err)
	logger.Debug("dashboard fetched", zap.String("request_id", "r-1"))
	_ = logger.Sync() //nolint:errcheck

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), "dashboard fetched")
	assert.Contains(t, string(data), "r-1")
}

func TestNewFile_InfoLevelDropsDebug(t *testing.T) {
	path := filepath.Join(t.TempDir(), "bankdash.log")

	logger, err := NewFile(path, false)
	require.NoError(t, err)
	logger.Debug("hidden")
	logger.Info("shown")
	_ = logger.Sync() //nolint:errcheck

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.NotContains(t, string(data), "hidden")
	assert.Contains(t, string(data), "shown")
}
