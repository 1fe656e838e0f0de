package telemetry

import (
	"go.opentelemetry.io/contrib/bridges/otelzap"
	sdklog "go.opentelemetry.io/otel/sdk/log"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// newOTELCore returns a zap core forwarding entries at or above level to lp
func newOTELCore(name string, lp *sdklog.LoggerProvider, level zapcore.Level) zapcore.Core {
	return &minLevelCore{
		Core:     otelzap.NewCore(name, otelzap.WithLoggerProvider(lp)),
		minLevel: level,
	}
}

// minLevelCore puts a level floor on a core that accepts every level
type minLevelCore struct {
	zapcore.Core
	minLevel zapcore.Level
}

func (c *minLevelCore) Enabled(lvl zapcore.Level) bool {
	return lvl >= c.minLevel && c.Core.Enabled(lvl)
}

func (c *minLevelCore) Check(entry zapcore.Entry, ce *zapcore.CheckedEntry) *zapcore.CheckedEntry {
	if entry.Level < c.minLevel {
		return ce
	}
	return c.Core.Check(entry, ce)
}

func (c *minLevelCore) With(fields []zapcore.Field) zapcore.Core {
	return &minLevelCore{Core: c.Core.With(fields), minLevel: c.minLevel}
}

// teeLogger writes every entry of base to extra as well, keeping the name,
// fields and options of base
func teeLogger(base *zap.Logger, extra zapcore.Core) *zap.Logger {
	return base.WithOptions(zap.WrapCore(func(core zapcore.Core) zapcore.Core {
		return zapcore.NewTee(core, extra)
	}))
}
