package logger

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

func TestFieldsPassThrough(t *testing.T) {
	t.Parallel()

	core, logs := observer.New(zapcore.InfoLevel)
	l := Wrap(zap.New(core))

	l.Info("entered position", zap.String("ticker", "TCS"), zap.Int64("qty", 50))
	l.Warn("fill unknown", zap.String("order_id", "01X"))
	l.Error("exit failed", zap.String("ticker", "TCS"))

	require.Equal(t, 3, logs.Len())

	entry := logs.All()[0]
	assert.Equal(t, "entered position", entry.Message)
	assert.Equal(t, "TCS", entry.ContextMap()["ticker"])
	assert.Equal(t, int64(50), entry.ContextMap()["qty"])

	assert.Equal(t, zapcore.WarnLevel, logs.All()[1].Level)
	assert.Equal(t, zapcore.ErrorLevel, logs.All()[2].Level)
}

func TestConstructors(t *testing.T) {
	t.Parallel()

	for _, verbose := range []bool{false, true} {
		l, err := New(verbose)
		require.NoError(t, err)
		require.NotNil(t, l)
	}

	assert.NotPanics(t, func() {
		Nop().Info("discarded", zap.String("k", "v"))
	})
}
