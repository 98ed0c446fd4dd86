// Package loguru provides structured, level-based logging with per-sink
// formatting, colorized console output, file rotation/retention, and
// exception capture, in the spirit of Python's loguru.
//
// Usage:
//
//	loguru.Info("server started on port %d", 8080)
//	loguru.LogTo("app.log", loguru.WithFileSinkOptions(loguru.WithRotation("500 MB")))
//	loguru.Catch().Try(func() { riskyWork() })
package loguru

import "sync/atomic"

// defaultLogger is the package-level logger, protected by atomic.Pointer
// for thread-safe reads and writes.
var defaultLogger atomic.Pointer[Logger]

func init() {
	l := NewLogger()
	l.LogTo(Stderr)
	defaultLogger.Store(l)
}

// SetDefault replaces the default logger. Safe for concurrent use.
func SetDefault(l *Logger) { defaultLogger.Store(l) }

// Default returns the current default logger.
func Default() *Logger { return defaultLogger.Load() }

// --- Package-level convenience functions, mirroring Logger's methods ---

func LogTo(sink interface{}, opts ...LogToOption) (int, error) {
	return defaultLogger.Load().LogTo(sink, opts...)
}

func Clear(id int) bool { return defaultLogger.Load().Clear(id) }
func ClearAll() int     { return defaultLogger.Load().ClearAll() }

func Catch(opts ...CatcherOption) *Catcher { return defaultLogger.Load().Catch(opts...) }

func Trace(format string, args ...interface{}) error {
	return defaultLogger.Load().Trace(format, args...)
}
func Debug(format string, args ...interface{}) error {
	return defaultLogger.Load().Debug(format, args...)
}
func Info(format string, args ...interface{}) error {
	return defaultLogger.Load().Info(format, args...)
}
func Success(format string, args ...interface{}) error {
	return defaultLogger.Load().Success(format, args...)
}
func Warning(format string, args ...interface{}) error {
	return defaultLogger.Load().Warning(format, args...)
}
func Error(format string, args ...interface{}) error {
	return defaultLogger.Load().Error(format, args...)
}
func Critical(format string, args ...interface{}) error {
	return defaultLogger.Load().Critical(format, args...)
}

func Exception(err error, format string, args ...interface{}) error {
	return defaultLogger.Load().Exception(err, format, args...)
}

func Flush() error { return defaultLogger.Load().Flush() }
func Close() error { return defaultLogger.Load().Close() }
