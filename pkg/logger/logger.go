package logger

import (
	"fmt"
	"strings"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

type Interface interface {
	Debug(message interface{}, args ...interface{})
	Info(message string, args ...interface{})
	Warn(message string, args ...interface{})
	Error(message interface{}, args ...interface{})
	Fatal(message interface{}, args ...interface{})
}

type Logger struct {
	logger *zap.Logger
}

var _ Interface = (*Logger)(nil)

func New(level string) *Logger {
	lvl, err := zapcore.ParseLevel(strings.ToLower(level))
	if err != nil {
		lvl = zapcore.InfoLevel
	}

	cfg := zap.NewProductionConfig()
	cfg.Level = zap.NewAtomicLevelAt(lvl)
	cfg.EncoderConfig.TimeKey = "time"
	cfg.EncoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder

	l, err := cfg.Build(zap.AddCallerSkip(2))
	if err != nil {
		l = zap.NewNop()
	}

	return &Logger{logger: l}
}

// NewWithZap wraps an already built zap logger, e.g. zaptest.NewLogger(t).
func NewWithZap(l *zap.Logger) *Logger {
	return &Logger{logger: l.WithOptions(zap.AddCallerSkip(2))}
}

func (l *Logger) Debug(message interface{}, args ...interface{}) {
	l.msg(zapcore.DebugLevel, message, args...)
}

func (l *Logger) Info(message string, args ...interface{}) {
	l.log(zapcore.InfoLevel, message, nil, args...)
}

func (l *Logger) Warn(message string, args ...interface{}) {
	l.log(zapcore.WarnLevel, message, nil, args...)
}

func (l *Logger) Error(message interface{}, args ...interface{}) {
	l.msg(zapcore.ErrorLevel, message, args...)
}

func (l *Logger) Fatal(message interface{}, args ...interface{}) {
	l.msg(zapcore.FatalLevel, message, args...)
}

// Sync flushes buffered entries.
func (l *Logger) Sync() error {
	return l.logger.Sync()
}

// msg accepts either an error or a format string. For an error the first
// string argument, if any, becomes the message and the error goes to a field.
func (l *Logger) msg(level zapcore.Level, message interface{}, args ...interface{}) {
	switch msg := message.(type) {
	case error:
		if len(args) > 0 {
			if format, ok := args[0].(string); ok {
				l.log(level, format, msg, args[1:]...)
				return
			}
		}
		l.log(level, msg.Error(), nil, args...)
	case string:
		l.log(level, msg, nil, args...)
	default:
		l.log(level, fmt.Sprintf("%s message %v has unknown type %T", level, message, msg), nil)
	}
}

func (l *Logger) log(level zapcore.Level, message string, err error, args ...interface{}) {
	if len(args) > 0 {
		message = fmt.Sprintf(message, args...)
	}

	var fields []zap.Field
	if err != nil {
		fields = append(fields, zap.Error(err))
	}

	if ce := l.logger.Check(level, message); ce != nil {
		ce.Write(fields...)
	}
}
