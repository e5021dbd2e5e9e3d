package observability

import (
	"log"
	"strings"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

const serviceName = "familycal"

// InitLogger json-логгер без сэмплирования и стектрейсов, с полями service и version в каждой записи
func InitLogger(level, version string) *zap.SugaredLogger {
	logger, err := newLogConfig(DetermineLogLevel(level), version).Build()
	if err != nil {
		log.Fatal(err)
	}
	return logger.Sugar()
}

func newLogConfig(level zapcore.Level, version string) zap.Config {
	cfg := zap.NewProductionConfig()
	cfg.Level = zap.NewAtomicLevelAt(level)
	cfg.Sampling = nil
	cfg.DisableStacktrace = true
	cfg.EncoderConfig.EncodeTime = zapcore.TimeEncoderOfLayout("2006-01-02 15:04:05.000")
	cfg.InitialFields = map[string]any{
		"service": serviceName,
		"version": version,
	}
	return cfg
}

// DetermineLogLevel неизвестный уровень считается info
func DetermineLogLevel(level string) zapcore.Level {
	level = strings.ToLower(strings.TrimSpace(level))
	if level == "warning" {
		level = "warn"
	}
	lvl, err := zapcore.ParseLevel(level)
	if err != nil {
		return zap.InfoLevel
	}
	return lvl
}
