package logger

import (
	"testing"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zapcore"
)

func TestNewLevels(t *testing.T) {
	for _, level := range []string{"debug", "INFO", " warn ", "error"} {
		log, err := New(level)
		require.NoError(t, err, level)
		require.NotNil(t, log)
	}

	log, err := New("debug")
	require.NoError(t, err)
	require.True(t, log.Desugar().Core().Enabled(zapcore.DebugLevel))

	log, err = New("warn")
	require.NoError(t, err)
	require.False(t, log.Desugar().Core().Enabled(zapcore.InfoLevel))
}

func TestNewRejectsUnknownLevel(t *testing.T) {
	_, err := New("loud")
	require.Error(t, err)
	require.Contains(t, err.Error(), "loud")
}

func TestNop(t *testing.T) {
	require.NotPanics(t, func() { Nop().Infow("ignored", "k", "v") })
}
