package hvsp

import "go.uber.org/zap"

type zapLogger struct {
	s *zap.SugaredLogger
}

// NewZapLogger adapts a zap logger to the Logger interface.
// A nil logger yields a no-op logger.
//
// Example:
//
//	l, _ := zap.NewDevelopment()
//	sess := hvsp.New(bus, hvsp.WithLogger(hvsp.NewZapLogger(l)))
func NewZapLogger(l *zap.Logger) Logger {
	if l == nil {
		l = zap.NewNop()
	}
	return &zapLogger{s: l.Sugar()}
}

func (z *zapLogger) Debug(msg string, keysAndValues ...interface{}) {
	z.s.Debugw(msg, keysAndValues...)
}

func (z *zapLogger) Info(msg string, keysAndValues ...interface{}) {
	z.s.Infow(msg, keysAndValues...)
}

func (z *zapLogger) Error(msg string, keysAndValues ...interface{}) {
	z.s.Errorw(msg, keysAndValues...)
}
