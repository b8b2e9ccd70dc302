// Package logging provides the leveled, prefixed loggers used across vos.
//
// Every component grabs a child of the process-wide logger with WithPrefix.
// All children share the root's level, so raising verbosity from the CLI
// after package initialization still takes effect everywhere.
package logging

import (
	"fmt"
	"io"
	"os"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	charmlog "github.com/charmbracelet/log"
)

// LogLevel represents different logging levels
type LogLevel int32

const (
	// LevelError only logs errors
	LevelError LogLevel = iota
	// LevelWarn logs warnings and errors
	LevelWarn
	// LevelInfo logs general information, warnings and errors
	LevelInfo
	// LevelDebug logs detailed debug information and all above
	LevelDebug
	// LevelTrace logs very detailed trace information and all above
	LevelTrace
)

var levelNames = map[LogLevel]string{
	LevelError: "ERROR",
	LevelWarn:  "WARN",
	LevelInfo:  "INFO",
	LevelDebug: "DEBUG",
	LevelTrace: "TRACE",
}

// String returns the upper-case name of the level.
func (l LogLevel) String() string {
	if name, ok := levelNames[l]; ok {
		return name
	}
	return fmt.Sprintf("LEVEL(%d)", int32(l))
}

// ParseLevel converts a level name (case-insensitive) into a LogLevel.
func ParseLevel(name string) (LogLevel, error) {
	upper := strings.ToUpper(strings.TrimSpace(name))
	for level, levelName := range levelNames {
		if levelName == upper {
			return level, nil
		}
	}
	return LevelWarn, fmt.Errorf("unknown log level %q", name)
}

// Logger provides structured logging capabilities
type Logger struct {
	level  *atomic.Int32
	prefix string
	logger *charmlog.Logger
}

var (
	defaultLogger *Logger
	once          sync.Once
)

// GetLogger returns the default logger instance
func GetLogger() *Logger {
	once.Do(func() {
		defaultLogger = NewLogger("vos")

		if level := os.Getenv("LOG_LEVEL"); level != "" {
			if parsed, err := ParseLevel(level); err == nil {
				defaultLogger.SetLevel(parsed)
			}
		}
	})
	return defaultLogger
}

// NewLogger creates a new logger with the given prefix.
// Output goes to stderr so it never mixes with shell output on stdout.
func NewLogger(prefix string) *Logger {
	formatter := charmlog.ShortCallerFormatter
	if os.Getenv("LOG_LONGFILE") != "" {
		formatter = charmlog.LongCallerFormatter
	}

	backend := charmlog.NewWithOptions(os.Stderr, charmlog.Options{
		Prefix:          prefix,
		Level:           charmlog.DebugLevel,
		ReportTimestamp: true,
		TimeFormat:      time.TimeOnly,
		ReportCaller:    os.Getenv("LOG_CALLER") != "",
		CallerFormatter: formatter,
	})

	level := &atomic.Int32{}
	level.Store(int32(LevelWarn))

	return &Logger{
		level:  level,
		prefix: prefix,
		logger: backend,
	}
}

// SetLevel sets the logging level
func (l *Logger) SetLevel(level LogLevel) {
	l.level.Store(int32(level))
}

// SetOutput redirects this logger. Loggers derived with WithPrefix keep
// their own writer.
func (l *Logger) SetOutput(w io.Writer) {
	l.logger.SetOutput(w)
}

// Level reports the current logging level.
func (l *Logger) Level() LogLevel {
	return LogLevel(l.level.Load())
}

func (l *Logger) shouldLog(level LogLevel) bool {
	return level <= l.Level()
}

// Error logs an error message
func (l *Logger) Error(format string, args ...interface{}) {
	if l.shouldLog(LevelError) {
		l.logger.Helper()
		l.logger.Errorf(format, args...)
	}
}

// Warn logs a warning message
func (l *Logger) Warn(format string, args ...interface{}) {
	if l.shouldLog(LevelWarn) {
		l.logger.Helper()
		l.logger.Warnf(format, args...)
	}
}

// Info logs an informational message
func (l *Logger) Info(format string, args ...interface{}) {
	if l.shouldLog(LevelInfo) {
		l.logger.Helper()
		l.logger.Infof(format, args...)
	}
}

// Debug logs a debug message
func (l *Logger) Debug(format string, args ...interface{}) {
	if l.shouldLog(LevelDebug) {
		l.logger.Helper()
		l.logger.Debugf(format, args...)
	}
}

// Trace logs a trace message. The backend has no trace level, so these are
// emitted at debug level and tagged.
func (l *Logger) Trace(format string, args ...interface{}) {
	if l.shouldLog(LevelTrace) {
		l.logger.Helper()
		l.logger.Debug(fmt.Sprintf(format, args...), "trace", true)
	}
}

// WithPrefix creates a new logger with an additional prefix. The child
// shares the parent's level.
func (l *Logger) WithPrefix(prefix string) *Logger {
	full := prefix
	if l.prefix != "" {
		full = l.prefix + "/" + prefix
	}
	return &Logger{
		level:  l.level,
		prefix: full,
		logger: l.logger.WithPrefix(full),
	}
}
