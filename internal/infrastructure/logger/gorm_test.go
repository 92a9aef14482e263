package logger

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
	gormlogger "gorm.io/gorm/logger"
)

func newObservedGormLogger(level gormlogger.LogLevel, zapLevel zapcore.Level) (*GormLogger, *observer.ObservedLogs) {
	core, recorded := observer.New(zapLevel)
	return NewGormLogger(zap.New(core), level), recorded
}

func traceQuery(sql string, rows int64) func() (string, int64) {
	return func() (string, int64) { return sql, rows }
}

func TestGormLogger_LogMode(t *testing.T) {
	gormLog, _ := newObservedGormLogger(gormlogger.Info, zapcore.InfoLevel)

	clone := gormLog.LogMode(gormlogger.Warn)

	assert.Equal(t, gormlogger.Info, gormLog.logLevel)
	cloneLog, ok := clone.(*GormLogger)
	require.True(t, ok)
	assert.Equal(t, gormlogger.Warn, cloneLog.logLevel)
}

func TestGormLogger_Levels(t *testing.T) {
	t.Run("info passes through", func(t *testing.T) {
		gormLog, recorded := newObservedGormLogger(gormlogger.Info, zapcore.InfoLevel)
		gormLog.Info(context.Background(), "migrated %d tables", 7)

		logs := recorded.All()
		require.Len(t, logs, 1)
		assert.Contains(t, logs[0].Message, "migrated 7 tables")
	})

	t.Run("silent suppresses everything", func(t *testing.T) {
		gormLog, recorded := newObservedGormLogger(gormlogger.Silent, zapcore.DebugLevel)
		gormLog.Info(context.Background(), "hidden")
		gormLog.Trace(context.Background(), time.Now(), traceQuery("SELECT 1", 1), nil)

		assert.Empty(t, recorded.All())
	})
}

func TestGormLogger_Trace(t *testing.T) {
	t.Run("failed statements log the error", func(t *testing.T) {
		gormLog, recorded := newObservedGormLogger(gormlogger.Error, zapcore.ErrorLevel)
		gormLog.Trace(context.Background(), time.Now(),
			traceQuery("INSERT INTO payments VALUES (?)", 0), errors.New("duplicate key"))

		logs := recorded.All()
		require.Len(t, logs, 1)
		assert.Equal(t, "query failed", logs[0].Message)
	})

	t.Run("record not found is never logged", func(t *testing.T) {
		gormLog, recorded := newObservedGormLogger(gormlogger.Error, zapcore.ErrorLevel)
		gormLog.Trace(context.Background(), time.Now(),
			traceQuery("SELECT * FROM payments WHERE id = ?", 0), gormlogger.ErrRecordNotFound)

		assert.Empty(t, recorded.All())
	})

	t.Run("statements above the threshold warn", func(t *testing.T) {
		gormLog, recorded := newObservedGormLogger(gormlogger.Warn, zapcore.WarnLevel)
		gormLog.SlowThreshold(time.Nanosecond)

		gormLog.Trace(context.Background(), time.Now().Add(-time.Second),
			traceQuery("SELECT * FROM payments", 10), nil)

		logs := recorded.All()
		require.Len(t, logs, 1)
		assert.Equal(t, "slow query", logs[0].Message)
	})

	t.Run("normal statements trace at debug", func(t *testing.T) {
		gormLog, recorded := newObservedGormLogger(gormlogger.Info, zapcore.DebugLevel)
		gormLog.Trace(context.Background(), time.Now(),
			traceQuery("SELECT * FROM payments", 5), nil)

		logs := recorded.All()
		require.Len(t, logs, 1)
		assert.Equal(t, "query", logs[0].Message)
	})

	t.Run("carries the request and school of the context", func(t *testing.T) {
		gormLog, recorded := newObservedGormLogger(gormlogger.Info, zapcore.DebugLevel)

		ctx := context.WithValue(context.Background(), RequestIDKey, "req-1")
		ctx = context.WithValue(ctx, SchoolIDKey, "school-1")
		gormLog.Trace(ctx, time.Now(), traceQuery("SELECT * FROM payments", 5), nil)

		logs := recorded.All()
		require.Len(t, logs, 1)
		fields := map[string]string{}
		for _, field := range logs[0].Context {
			fields[field.Key] = field.String
		}
		assert.Equal(t, "req-1", fields["request_id"])
		assert.Equal(t, "school-1", fields["school_id"])
	})
}

func TestMapGormLogLevel(t *testing.T) {
	tests := []struct {
		level    string
		expected gormlogger.LogLevel
	}{
		{"silent", gormlogger.Silent},
		{"error", gormlogger.Error},
		{"warn", gormlogger.Warn},
		{"info", gormlogger.Info},
		{"debug", gormlogger.Info},
		{"unknown", gormlogger.Warn},
		{"", gormlogger.Warn},
	}

	for _, tt := range tests {
		t.Run(tt.level, func(t *testing.T) {
			assert.Equal(t, tt.expected, MapGormLogLevel(tt.level))
		})
	}
}

func TestGormLoggerImplementsInterface(t *testing.T) {
	gormLog, _ := newObservedGormLogger(gormlogger.Info, zapcore.InfoLevel)
	var _ gormlogger.Interface = gormLog
}
