package logging

import (
	"testing"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

func TestNew_RespectsLevel(t *testing.T) {
	t.Parallel()

	log := New("test", zapcore.WarnLevel)

	require.False(t, log.Core().Enabled(zapcore.InfoLevel))
	require.True(t, log.Core().Enabled(zapcore.WarnLevel))
	require.True(t, log.Core().Enabled(zapcore.ErrorLevel))
}

//nolint:paralleltest
func TestSetupJSON_ReplacesGlobal(t *testing.T) {
	prev := zap.L()
	t.Cleanup(func() { zap.ReplaceGlobals(prev) })

	log := SetupJSON("test", zapcore.DebugLevel)

	require.Same(t, log, zap.L())
	require.True(t, zap.L().Core().Enabled(zapcore.DebugLevel))
}
