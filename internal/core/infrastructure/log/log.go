// Package log provides the zap-backed implementation of the logging interface.
package log

import (
	"fmt"
	"os"
	"strings"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	logiface "github.com/privlend/v1/pkg/interfaces/infrastructure/log"
)

// Logger wraps a zap logger and its sugared form.
type Logger struct {
	zapLogger *zap.Logger
	sugar     *zap.SugaredLogger
}

var _ logiface.Logger = (*Logger)(nil)

// Options controls logger construction.
type Options struct {
	// Level is one of debug, info, warn, error, fatal. Defaults to info.
	Level string
	// JSON selects JSON encoding instead of console encoding.
	JSON bool
}

// New builds a Logger writing to stderr.
func New(opts Options) (*Logger, error) {
	level, err := parseLevel(opts.Level)
	if err != nil {
		return nil, err
	}

	encCfg := zap.NewProductionEncoderConfig()
	encCfg.EncodeTime = zapcore.ISO8601TimeEncoder
	var enc zapcore.Encoder
	if opts.JSON {
		enc = zapcore.NewJSONEncoder(encCfg)
	} else {
		encCfg.EncodeLevel = zapcore.CapitalLevelEncoder
		enc = zapcore.NewConsoleEncoder(encCfg)
	}

	core := zapcore.NewCore(enc, zapcore.Lock(os.Stderr), level)
	zl := zap.New(core, zap.AddCaller(), zap.AddCallerSkip(1))
	return &Logger{zapLogger: zl, sugar: zl.Sugar()}, nil
}

// NewNop returns a logger that discards everything. Used in tests.
func NewNop() *Logger {
	zl := zap.NewNop()
	return &Logger{zapLogger: zl, sugar: zl.Sugar()}
}

func parseLevel(s string) (zapcore.Level, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", string(logiface.InfoLevel):
		return zapcore.InfoLevel, nil
	case string(logiface.DebugLevel):
		return zapcore.DebugLevel, nil
	case string(logiface.WarnLevel):
		return zapcore.WarnLevel, nil
	case string(logiface.ErrorLevel):
		return zapcore.ErrorLevel, nil
	case string(logiface.FatalLevel):
		return zapcore.FatalLevel, nil
	default:
		return zapcore.InfoLevel, fmt.Errorf("unknown log level %q", s)
	}
}

func (l *Logger) Debug(msg string)                          { l.sugar.Debug(msg) }
func (l *Logger) Debugf(format string, args ...interface{}) { l.sugar.Debugf(format, args...) }
func (l *Logger) Info(msg string)                           { l.sugar.Info(msg) }
func (l *Logger) Infof(format string, args ...interface{})  { l.sugar.Infof(format, args...) }
func (l *Logger) Warn(msg string)                           { l.sugar.Warn(msg) }
func (l *Logger) Warnf(format string, args ...interface{})  { l.sugar.Warnf(format, args...) }
func (l *Logger) Error(msg string)                          { l.sugar.Error(msg) }
func (l *Logger) Errorf(format string, args ...interface{}) { l.sugar.Errorf(format, args...) }
func (l *Logger) Fatal(msg string)                          { l.sugar.Fatal(msg) }
func (l *Logger) Fatalf(format string, args ...interface{}) { l.sugar.Fatalf(format, args...) }

func (l *Logger) With(args ...interface{}) logiface.Logger {
	s := l.sugar.With(args...)
	return &Logger{zapLogger: s.Desugar(), sugar: s}
}

func (l *Logger) Sync() error { return l.zapLogger.Sync() }

func (l *Logger) GetZapLogger() *zap.Logger { return l.zapLogger }
