package logger

import (
	"stablecoin_monitor/internal/app/port"

	"go.uber.org/zap"
)

// zapAdapter implements port.Logger on top of a zap SugaredLogger, so services take
// key-value pairs the same way slog does.
type zapAdapter struct {
	sugar *zap.SugaredLogger
}

// NewZapAdapter wraps a zap logger as a port.Logger.
func NewZapAdapter(l *zap.Logger) port.Logger {
	if l == nil {
		l = zap.NewNop()
	}
	return &zapAdapter{sugar: l.Sugar()}
}

// NewNop returns a port.Logger that discards everything.
func NewNop() port.Logger {
	return NewZapAdapter(zap.NewNop())
}

func (a *zapAdapter) Info(msg string, args ...any) {
	a.sugar.Infow(msg, args...)
}

func (a *zapAdapter) Debug(msg string, args ...any) {
	a.sugar.Debugw(msg, args...)
}

func (a *zapAdapter) Warn(msg string, args ...any) {
	a.sugar.Warnw(msg, args...)
}

func (a *zapAdapter) Error(msg string, args ...any) {
	a.sugar.Errorw(msg, args...)
}
