package logger

import (
	"context"
	"errors"
	"time"

	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

// GormLogger routes gorm's SQL logging through the context logger so queries
// carry the request_id of the HTTP request that issued them.
type GormLogger struct {
	level         gormlogger.LogLevel
	slowThreshold time.Duration
}

// NewGormLogger creates a gorm logger adapter.
// Parameters:
//   - level: gorm log level (Silent, Error, Warn, Info).
//   - slowThreshold: queries slower than this are logged at warn level; 0 disables.
//
// Returns:
//   - *GormLogger: adapter implementing gorm's logger.Interface.
func NewGormLogger(level gormlogger.LogLevel, slowThreshold time.Duration) *GormLogger {
	return &GormLogger{level: level, slowThreshold: slowThreshold}
}

// LogMode returns a copy of the adapter at the given level.
func (g *GormLogger) LogMode(level gormlogger.LogLevel) gormlogger.Interface {
	clone := *g
	clone.level = level
	return &clone
}

func (g *GormLogger) Info(ctx context.Context, msg string, args ...interface{}) {
	if g.level >= gormlogger.Info {
		FromContext(ctx).WithField(FieldComponent, "gorm").Infof(msg, args...)
	}
}

func (g *GormLogger) Warn(ctx context.Context, msg string, args ...interface{}) {
	if g.level >= gormlogger.Warn {
		FromContext(ctx).WithField(FieldComponent, "gorm").Warnf(msg, args...)
	}
}

func (g *GormLogger) Error(ctx context.Context, msg string, args ...interface{}) {
	if g.level >= gormlogger.Error {
		FromContext(ctx).WithField(FieldComponent, "gorm").Errorf(msg, args...)
	}
}

// Trace logs one executed statement with its duration and row count.
func (g *GormLogger) Trace(ctx context.Context, begin time.Time, fc func() (string, int64), err error) {
	if g.level <= gormlogger.Silent {
		return
	}

	elapsed := time.Since(begin)
	sql, rows := fc()
	log := FromContext(ctx).WithFields(Fields{
		FieldComponent:  "gorm",
		FieldDurationMs: elapsed.Milliseconds(),
		"rows":          rows,
	})

	switch {
	case err != nil && g.level >= gormlogger.Error && !errors.Is(err, gorm.ErrRecordNotFound):
		log.WithError(err).Errorf("query failed: %s", sql)
	case g.slowThreshold > 0 && elapsed > g.slowThreshold && g.level >= gormlogger.Warn:
		log.Warnf("slow query: %s", sql)
	case g.level >= gormlogger.Info:
		log.Debugf("query: %s", sql)
	}
}
