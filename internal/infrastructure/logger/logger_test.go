package logger

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	gormlogger "gorm.io/gorm/logger"
)

func TestNew(t *testing.T) {
	t.Run("creates console logger", func(t *testing.T) {
		logger, err := New(DefaultConfig())
		require.NoError(t, err)
		assert.NotNil(t, logger)
	})

	t.Run("creates json logger", func(t *testing.T) {
		logger, err := New(ProductionConfig())
		require.NoError(t, err)
		assert.NotNil(t, logger)
	})
}

func TestParseLevel(t *testing.T) {
	assert.Equal(t, zapcore.DebugLevel, parseLevel("debug"))
	assert.Equal(t, zapcore.WarnLevel, parseLevel("warning"))
	assert.Equal(t, zapcore.ErrorLevel, parseLevel("ERROR"))
	assert.Equal(t, zapcore.InfoLevel, parseLevel("bogus"))
}

func TestContextPropagation(t *testing.T) {
	base := zap.NewNop()

	t.Run("round-trips the logger", func(t *testing.T) {
		ctx := WithContext(context.Background(), base)
		assert.Same(t, base, FromContext(ctx))
	})

	t.Run("missing logger yields nop", func(t *testing.T) {
		assert.NotNil(t, FromContext(context.Background()))
	})

	t.Run("carries request, company and user ids", func(t *testing.T) {
		ctx := context.Background()
		ctx, _ = WithRequestID(ctx, base, "req-1")
		ctx, _ = WithCompanyID(ctx, base, "company-1")
		ctx, _ = WithUserID(ctx, base, "user-1")

		assert.Equal(t, "req-1", GetRequestID(ctx))
		assert.Equal(t, "company-1", GetCompanyID(ctx))
		assert.Equal(t, "user-1", GetUserID(ctx))
	})

	t.Run("empty context returns empty ids", func(t *testing.T) {
		assert.Empty(t, GetRequestID(context.Background()))
		assert.Empty(t, GetCompanyID(context.Background()))
	})
}

func TestMapGormLogLevel(t *testing.T) {
	assert.Equal(t, gormlogger.Silent, MapGormLogLevel("silent"))
	assert.Equal(t, gormlogger.Info, MapGormLogLevel("debug"))
	assert.Equal(t, gormlogger.Warn, MapGormLogLevel("unknown"))
}

func TestGormLoggerLogMode(t *testing.T) {
	gl := NewGormLogger(zap.NewNop(), gormlogger.Warn)
	changed := gl.LogMode(gormlogger.Info)

	assert.NotSame(t, gl, changed)
	assert.Equal(t, gormlogger.Warn, gl.logLevel)
}
