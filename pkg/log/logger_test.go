package log

import (
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestToLogLevel(t *testing.T) {
	assert.Equal(t, slog.LevelDebug, ToLogLevel("debug"))
	assert.Equal(t, slog.LevelInfo, ToLogLevel("info"))
	assert.Equal(t, slog.LevelWarn, ToLogLevel("warn"))
	assert.Equal(t, slog.LevelError, ToLogLevel("error"))
}

func TestToLogLevelUnknownFallsBackToInfo(t *testing.T) {
	assert.NotPanics(t, func() {
		assert.Equal(t, slog.LevelInfo, ToLogLevel("verbose"))
	})
	assert.Equal(t, slog.LevelInfo, ToLogLevel(""))
}
