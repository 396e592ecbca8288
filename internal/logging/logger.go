package logging

import (
	"fmt"
	"io"
	"os"
	"strings"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// Logger writes one JSON object per line: ts, level, msg, component and any
// structured fields.
type Logger struct {
	z     *zap.Logger
	level zap.AtomicLevel
}

func NewLogger(levelStr string) *Logger {
	return NewLoggerWithWriter(levelStr, os.Stdout)
}

func NewLoggerWithWriter(levelStr string, w io.Writer) *Logger {
	level := zap.NewAtomicLevelAt(parseLevel(levelStr))

	encCfg := zapcore.EncoderConfig{
		TimeKey:        "ts",
		LevelKey:       "level",
		MessageKey:     "msg",
		LineEnding:     zapcore.DefaultLineEnding,
		EncodeLevel:    zapcore.LowercaseLevelEncoder,
		EncodeTime:     zapcore.ISO8601TimeEncoder,
		EncodeDuration: zapcore.SecondsDurationEncoder,
	}
	core := zapcore.NewCore(zapcore.NewJSONEncoder(encCfg), zapcore.AddSync(w), level)

	return &Logger{z: zap.New(core), level: level}
}

// Nop discards everything. Handy in tests.
func Nop() *Logger {
	return &Logger{z: zap.NewNop(), level: zap.NewAtomicLevel()}
}

func parseLevel(levelStr string) zapcore.Level {
	switch strings.ToLower(strings.TrimSpace(levelStr)) {
	case "debug":
		return zapcore.DebugLevel
	case "warn", "warning":
		return zapcore.WarnLevel
	case "error":
		return zapcore.ErrorLevel
	default:
		return zapcore.InfoLevel
	}
}

func (l *Logger) WithComponent(name string) *Logger {
	return &Logger{z: l.z.With(zap.String("component", name)), level: l.level}
}

func (l *Logger) Zap() *zap.Logger { return l.z }

func (l *Logger) Sync() error { return l.z.Sync() }

func (l *Logger) Debugw(msg string, fields map[string]any) { l.z.Debug(msg, toFields(fields)...) }
func (l *Logger) Infow(msg string, fields map[string]any)  { l.z.Info(msg, toFields(fields)...) }
func (l *Logger) Warnw(msg string, fields map[string]any)  { l.z.Warn(msg, toFields(fields)...) }
func (l *Logger) Errorw(msg string, fields map[string]any) { l.z.Error(msg, toFields(fields)...) }

func (l *Logger) Debug(format string, args ...interface{}) {
	if l.level.Enabled(zapcore.DebugLevel) {
		l.z.Debug(fmt.Sprintf(format, args...))
	}
}

func (l *Logger) Info(format string, args ...interface{}) {
	if l.level.Enabled(zapcore.InfoLevel) {
		l.z.Info(fmt.Sprintf(format, args...))
	}
}

func (l *Logger) Warn(format string, args ...interface{}) {
	if l.level.Enabled(zapcore.WarnLevel) {
		l.z.Warn(fmt.Sprintf(format, args...))
	}
}

func (l *Logger) Error(format string, args ...interface{}) {
	l.z.Error(fmt.Sprintf(format, args...))
}

func (l *Logger) Fatal(format string, args ...interface{}) {
	l.z.Fatal(fmt.Sprintf(format, args...))
}

func toFields(m map[string]any) []zap.Field {
	if len(m) == 0 {
		return nil
	}
	fields := make([]zap.Field, 0, len(m))
	for k, v := range m {
		if err, ok := v.(error); ok {
			fields = append(fields, zap.NamedError(k, err))
			continue
		}
		fields = append(fields, zap.Any(k, v))
	}
	return fields
}
