// Package logging оборачивает zap: глобальный логгер, уровни и логгер запроса в context.
package logging

import (
	"context"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

type contextKey string

const loggerKey contextKey = "logger"

var (
	globalLogger *zap.Logger
	globalLevel  = zap.NewAtomicLevelAt(zapcore.InfoLevel)
)

// Config описывает настройки логирования.
type Config struct {
	// debug, info, warn, error
	Level string `yaml:"level" json:"level" env:"LOG_LEVEL"`
	// json, console
	Format     string `yaml:"format" json:"format" env:"LOG_FORMAT"`
	OutputPath string `yaml:"output_path" json:"output_path" env:"LOG_OUTPUT"`
}

// Init инициализирует глобальный логгер.
func Init(cfg Config) error {
	var level zapcore.Level
	if err := level.UnmarshalText([]byte(cfg.Level)); err != nil {
		level = zapcore.InfoLevel
	}

	var config zap.Config
	if cfg.Format == "console" {
		config = zap.NewDevelopmentConfig()
	} else {
		config = zap.NewProductionConfig()
	}

	globalLevel.SetLevel(level)
	config.Level = globalLevel
	if cfg.OutputPath != "" {
		config.OutputPaths = []string{cfg.OutputPath}
	}

	logger, err := config.Build(zap.AddStacktrace(zapcore.ErrorLevel))
	if err != nil {
		return err
	}

	globalLogger = logger
	return nil
}

// Set подменяет глобальный логгер, например на zaptest/observer в тестах.
func Set(logger *zap.Logger) {
	globalLogger = logger
}

// Sync сбрасывает буферизованные записи.
func Sync() error {
	if globalLogger != nil {
		return globalLogger.Sync()
	}
	return nil
}

// L возвращает глобальный логгер; до Init это no-op логгер.
func L() *zap.Logger {
	if globalLogger == nil {
		return zap.NewNop()
	}
	return globalLogger
}

// WithContext возвращает логгер запроса из context или глобальный.
func WithContext(ctx context.Context) *zap.Logger {
	if ctx != nil {
		if logger, ok := ctx.Value(loggerKey).(*zap.Logger); ok {
			return logger
		}
	}
	return L()
}

// WithRequestID кладёт в context логгер с полем request_id.
func WithRequestID(ctx context.Context, requestID string) context.Context {
	logger := WithContext(ctx).With(zap.String("request_id", requestID))
	return context.WithValue(ctx, loggerKey, logger)
}
