package logging

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func TestOpenLogFileDisabled(t *testing.T) {
	file, err := OpenLogFile("")
	require.NoError(t, err)
	assert.Nil(t, file)

	base := zap.NewNop()
	assert.Same(t, base, AttachFileLogger(base, nil, true))
}

func TestAttachFileLoggerWritesJSON(t *testing.T) {
	path := filepath.Join(t.TempDir(), "logs", "bizdash.log")
	file, err := OpenLogFile(path)
	require.NoError(t, err)
	t.Cleanup(func() { _ = file.Close() })

	logger := AttachFileLogger(zap.NewNop(), file, false)
	logger.Debug("hidden")
	logger.Info("store rehydrated", zap.Bool("session", true))
	require.NoError(t, logger.Sync())

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), `"msg":"store rehydrated"`)
	assert.Contains(t, string(data), `"session":true`)
	assert.NotContains(t, string(data), "hidden")
}
