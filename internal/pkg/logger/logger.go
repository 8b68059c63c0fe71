package logger

import (
	"fmt"
	"log/slog"
	"strings"

	"go.uber.org/zap"
	"go.uber.org/zap/exp/zapslog"
	"go.uber.org/zap/zapcore"
)

// New builds the root zap logger for the given level. Development mode uses the console
// encoder, production mode emits JSON.
func New(levelStr string, development bool) (*zap.Logger, error) {
	level := zap.NewAtomicLevel()
	if err := level.UnmarshalText([]byte(strings.ToLower(strings.TrimSpace(levelStr)))); err != nil {
		return nil, fmt.Errorf("invalid log level %q: %w", levelStr, err)
	}

	cfg := zap.NewProductionConfig()
	if development {
		cfg = zap.NewDevelopmentConfig()
	}
	cfg.Level = level
	cfg.EncoderConfig.TimeKey = "ts"
	cfg.EncoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder

	return cfg.Build()
}

// InstallSlog routes the standard library slog default logger through zap.
func InstallSlog(zapLogger *zap.Logger) {
	handler := zapslog.NewHandler(zapLogger.Core(), zapslog.WithName("slog"))
	slog.SetDefault(slog.New(handler))
}
