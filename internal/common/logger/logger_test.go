package logger

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewLoggerWritesToFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "board.log")
	log, err := NewLogger(LoggingConfig{Level: "debug", Format: "json", OutputPath: path})
	require.NoError(t, err)

	log.WithTaskID("t1").WithColumn("backlog").Info("task moved")
	require.NoError(t, log.Sync())
	assert.FileExists(t, path)
}

func TestNewLoggerInvalidLevelFallsBackToInfo(t *testing.T) {
	log, err := NewLogger(LoggingConfig{Level: "chatty", Format: "json", OutputPath: "stderr"})
	require.NoError(t, err)
	assert.False(t, log.Zap().Core().Enabled(-1))
	assert.True(t, log.Zap().Core().Enabled(0))
}

func TestWithContextWithoutIDsReturnsSameLogger(t *testing.T) {
	log := NewNop()
	assert.Same(t, log, log.WithContext(context.Background()))

	ctx := ContextWithMoveID(ContextWithRequestID(context.Background(), "r1"), "m1")
	assert.NotSame(t, log, log.WithContext(ctx))
}
