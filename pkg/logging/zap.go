package logging

import (
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// zapLogger implements Logger using uber-go/zap.
type zapLogger struct {
	logger *zap.Logger
	fields []Field
}

// Option configures the zap-backed logger.
type Option func(*options)

type options struct {
	development bool
	level       *zapcore.Level
	outputPaths []string
}

// WithDevelopmentMode enables the human-readable development encoder.
func WithDevelopmentMode() Option {
	return func(o *options) { o.development = true }
}

// WithLevel sets the minimum log level.
func WithLevel(level Level) Option {
	return func(o *options) {
		var zl zapcore.Level
		switch level {
		case DEBUG:
			zl = zapcore.DebugLevel
		case WARN:
			zl = zapcore.WarnLevel
		case ERROR:
			zl = zapcore.ErrorLevel
		default:
			zl = zapcore.InfoLevel
		}
		o.level = &zl
	}
}

// WithOutputPaths sets the log output destinations (zap URL syntax).
func WithOutputPaths(paths ...string) Option {
	return func(o *options) { o.outputPaths = paths }
}

// NewLogger creates a production Logger backed by zap. If the zap logger
// cannot be built the nop logger is returned so that logging never becomes
// a hard failure.
func NewLogger(opts ...Option) Logger {
	o := &options{outputPaths: []string{"stdout"}}
	for _, opt := range opts {
		opt(o)
	}

	config := zap.NewProductionConfig()
	if o.development {
		config = zap.NewDevelopmentConfig()
	}
	config.EncoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder
	config.OutputPaths = o.outputPaths
	if o.level != nil {
		config.Level = zap.NewAtomicLevelAt(*o.level)
	}

	logger, err := config.Build(
		zap.AddCaller(),
		zap.AddCallerSkip(1),
		zap.AddStacktrace(zapcore.ErrorLevel),
	)
	if err != nil {
		return NewNopLogger()
	}

	return &zapLogger{logger: logger}
}

func (l *zapLogger) Debug(msg string, fields ...Field) {
	if ce := l.logger.Check(zapcore.DebugLevel, msg); ce != nil {
		ce.Write(l.convert(fields...)...)
	}
}

func (l *zapLogger) Info(msg string, fields ...Field) {
	if ce := l.logger.Check(zapcore.InfoLevel, msg); ce != nil {
		ce.Write(l.convert(fields...)...)
	}
}

func (l *zapLogger) Warn(msg string, fields ...Field) {
	if ce := l.logger.Check(zapcore.WarnLevel, msg); ce != nil {
		ce.Write(l.convert(fields...)...)
	}
}

func (l *zapLogger) Error(msg string, fields ...Field) {
	if ce := l.logger.Check(zapcore.ErrorLevel, msg); ce != nil {
		ce.Write(l.convert(fields...)...)
	}
}

func (l *zapLogger) WithFields(fields ...Field) Logger {
	combined := make([]Field, 0, len(l.fields)+len(fields))
	combined = append(combined, l.fields...)
	combined = append(combined, fields...)
	return &zapLogger{logger: l.logger, fields: combined}
}

// Sync flushes any buffered log entries.
func (l *zapLogger) Sync() error {
	return l.logger.Sync()
}

func (l *zapLogger) convert(fields ...Field) []zap.Field {
	all := make([]Field, 0, len(l.fields)+len(fields))
	all = append(all, l.fields...)
	all = append(all, fields...)

	zapFields := make([]zap.Field, 0, len(all))
	for _, f := range all {
		zapFields = append(zapFields, zap.Any(f.Key, f.Value))
	}
	return zapFields
}
