// Package logger is the leveled log sink used across the durable engine.
// Messages go through the standard `log` package with a "[LEVEL] " prefix and are
// filtered by a process-wide level.
package logger

import (
	"fmt"
	"io"
	"log"
	"strings"
	"sync/atomic"
)

// LogLevel is a logging level. Smaller values are more verbose.
type LogLevel int32

const (
	LevelDebug LogLevel = iota
	LevelInfo
	LevelWarn
	LevelError
	LevelFatal
)

// String returns the upper-case level name.
func (l LogLevel) String() string {
	switch l {
	case LevelDebug:
		return "DEBUG"
	case LevelInfo:
		return "INFO"
	case LevelWarn:
		return "WARN"
	case LevelError:
		return "ERROR"
	case LevelFatal:
		return "FATAL"
	default:
		return fmt.Sprintf("LogLevel(%d)", int32(l))
	}
}

// logLevel is read from actor goroutines, hence atomic.
var logLevel atomic.Int32

func init() {
	logLevel.Store(int32(LevelInfo))
}

// SetLogLevel sets the global level from its name ("DEBUG", "INFO", "WARN", "ERROR", "FATAL",
// case-insensitive). Unknown names fall back to INFO.
func SetLogLevel(level string) {
	switch strings.ToUpper(strings.TrimSpace(level)) {
	case "DEBUG":
		logLevel.Store(int32(LevelDebug))
	case "INFO", "":
		logLevel.Store(int32(LevelInfo))
	case "WARN", "WARNING":
		logLevel.Store(int32(LevelWarn))
	case "ERROR":
		logLevel.Store(int32(LevelError))
	case "FATAL":
		logLevel.Store(int32(LevelFatal))
	default:
		fmt.Printf("Unknown log level '%s' specified. Defaulting to INFO level.\n", level)
		logLevel.Store(int32(LevelInfo))
	}
}

// GetLogLevel returns the current global level.
func GetLogLevel() LogLevel {
	return LogLevel(logLevel.Load())
}

// IsDebugEnabled reports whether DEBUG messages are currently emitted.
func IsDebugEnabled() bool {
	return GetLogLevel() <= LevelDebug
}

// SetOutput redirects all log output. Mostly useful in tests.
func SetOutput(w io.Writer) {
	log.SetOutput(w)
}

func logf(level LogLevel, format string, v ...interface{}) {
	if GetLogLevel() <= level {
		log.Printf("["+level.String()+"] "+format, v...)
	}
}

// Debugf formats and outputs a DEBUG level log message.
func Debugf(format string, v ...interface{}) {
	logf(LevelDebug, format, v...)
}

// Infof formats and outputs an INFO level log message.
func Infof(format string, v ...interface{}) {
	logf(LevelInfo, format, v...)
}

// Warnf formats and outputs a WARN level log message.
func Warnf(format string, v ...interface{}) {
	logf(LevelWarn, format, v...)
}

// Errorf formats and outputs an ERROR level log message.
func Errorf(format string, v ...interface{}) {
	logf(LevelError, format, v...)
}

// Fatalf outputs a FATAL level log message and terminates the process with os.Exit(1).
func Fatalf(format string, v ...interface{}) {
	log.Fatalf("[FATAL] "+format, v...)
}
