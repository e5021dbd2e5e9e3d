package observability

import (
	"context"

	"github.com/jackc/pgx/v5/tracelog"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// PgxTracer трассировка pgx в zap. На debug пишутся все запросы, иначе только предупреждения и ошибки.
func PgxTracer(logger *zap.SugaredLogger) *tracelog.TraceLog {
	level := tracelog.LogLevelWarn
	if logger.Level() <= zapcore.DebugLevel {
		level = tracelog.LogLevelDebug
	}
	return &tracelog.TraceLog{
		Logger:   pgxLogFunc(logger),
		LogLevel: level,
	}
}

func pgxLogFunc(logger *zap.SugaredLogger) tracelog.LoggerFunc {
	return func(_ context.Context, level tracelog.LogLevel, msg string, data map[string]any) {
		kv := make([]any, 0, len(data)*2)
		for k, v := range data {
			kv = append(kv, k, v)
		}
		switch level {
		case tracelog.LogLevelError:
			logger.Errorw(msg, kv...)
		case tracelog.LogLevelWarn:
			logger.Warnw(msg, kv...)
		case tracelog.LogLevelInfo:
			logger.Infow(msg, kv...)
		default:
			logger.Debugw(msg, kv...)
		}
	}
}
