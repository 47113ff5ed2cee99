package db

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func observeLogs(t *testing.T) *observer.ObservedLogs {
	core, logs := observer.New(zapcore.DebugLevel)
	restore := zap.ReplaceGlobals(zap.New(core))
	t.Cleanup(restore)
	return logs
}

func query() (string, int64) {
	return "SELECT 1", 1
}

func TestLoggerTrace(t *testing.T) {
	t.Run("failed query is an error", func(t *testing.T) {
		logs := observeLogs(t)
		NewLogger(logger.Warn).Trace(context.Background(), time.Now(), query, errors.New("boom"))

		entries := logs.All()
		if assert.Len(t, entries, 1) {
			assert.Equal(t, zapcore.ErrorLevel, entries[0].Level)
			assert.Equal(t, "SELECT 1", entries[0].ContextMap()["sql"])
		}
	})

	t.Run("record not found is not logged", func(t *testing.T) {
		logs := observeLogs(t)
		NewLogger(logger.Info).Trace(context.Background(), time.Now(), query, gorm.ErrRecordNotFound)
		// Info still emits the debug query line.
		for _, e := range logs.All() {
			assert.NotEqual(t, zapcore.ErrorLevel, e.Level)
		}
	})

	t.Run("slow query is a warning", func(t *testing.T) {
		logs := observeLogs(t)
		NewLogger(logger.Warn).Trace(context.Background(), time.Now().Add(-time.Second), query, nil)

		entries := logs.All()
		if assert.Len(t, entries, 1) {
			assert.Equal(t, zapcore.WarnLevel, entries[0].Level)
			assert.Equal(t, "slow query", entries[0].Message)
		}
	})

	t.Run("fast query is quiet below info", func(t *testing.T) {
		logs := observeLogs(t)
		NewLogger(logger.Warn).Trace(context.Background(), time.Now(), query, nil)
		assert.Empty(t, logs.All())
	})

	t.Run("silent", func(t *testing.T) {
		logs := observeLogs(t)
		l := NewLogger(logger.Info).LogMode(logger.Silent)
		l.Trace(context.Background(), time.Now(), query, errors.New("boom"))
		l.Error(context.Background(), "ignored %d", 1)
		assert.Empty(t, logs.All())
	})
}
