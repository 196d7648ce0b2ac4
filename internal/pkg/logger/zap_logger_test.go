package logger

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

func TestZapLoggerWritesModuleAndDetails(t *testing.T) {
	core, logs := observer.New(zapcore.DebugLevel)
	l := NewFromZap(zap.New(core))

	l.Info("BraincellService", "braincell created", map[string]interface{}{"braincell_id": "abc"})
	l.Error("ChatService", "stream failed", map[string]interface{}{"error": errors.New("boom")})
	l.Warn("EventBus", "publish failed", nil)

	entries := logs.All()
	require.Len(t, entries, 3)

	assert.Equal(t, "braincell created", entries[0].Message)
	assert.Equal(t, "BraincellService", entries[0].ContextMap()["module"])

	assert.Equal(t, zapcore.ErrorLevel, entries[1].Level)
	assert.Equal(t, "boom", entries[1].ContextMap()["error"])

	assert.Equal(t, map[string]interface{}{}, entries[2].ContextMap()["details"])
}
