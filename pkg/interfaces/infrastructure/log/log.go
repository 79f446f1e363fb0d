// Package log defines the logging interface shared by every component of the
// proving service. Implementations live under internal/core/infrastructure/log;
// consumers depend only on this package so the backend can be swapped without
// touching business code.
package log

import "go.uber.org/zap"

// Logger is the unified logging interface.
type Logger interface {
	Debug(msg string)
	Debugf(format string, args ...interface{})

	Info(msg string)
	Infof(format string, args ...interface{})

	Warn(msg string)
	Warnf(format string, args ...interface{})

	Error(msg string)
	Errorf(format string, args ...interface{})

	Fatal(msg string)
	Fatalf(format string, args ...interface{})

	// With returns a Logger that attaches the given key/value pairs to every
	// entry it emits.
	With(args ...interface{}) Logger

	// Sync flushes buffered entries to the underlying sink.
	Sync() error

	// GetZapLogger exposes the underlying zap logger for callers that need
	// structured fields (HTTP access logs). May return nil for no-op loggers.
	GetZapLogger() *zap.Logger
}
