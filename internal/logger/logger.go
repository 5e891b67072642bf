package logger

import (
	"fmt"
	"io"
	"log"
	"os"
	"path/filepath"
	"sync"
	"time"
)

// Level selects how much ends up in the log file.
type Level int

const (
	LevelDebug Level = iota
	LevelInfo
	LevelWarn
	LevelError
	// LevelNone disables the logger entirely; no file is created.
	LevelNone
)

// String returns the level tag used in log lines.
func (l Level) String() string {
	switch l {
	case LevelDebug:
		return "DEBUG"
	case LevelInfo:
		return "INFO"
	case LevelWarn:
		return "WARN"
	case LevelError:
		return "ERROR"
	case LevelNone:
		return "NONE"
	default:
		return "UNKNOWN"
	}
}

// ParseLevel maps a config or flag value to a Level. Unrecognized
// values fall back to info rather than failing startup.
func ParseLevel(s string) Level {
	switch s {
	case "debug", "DEBUG":
		return LevelDebug
	case "info", "INFO":
		return LevelInfo
	case "warn", "WARN", "warning", "WARNING":
		return LevelWarn
	case "error", "ERROR":
		return LevelError
	case "none", "NONE":
		return LevelNone
	default:
		return LevelInfo
	}
}

// Logger appends leveled lines to a file. The TUI owns the terminal,
// so log output never goes to stdout or stderr. Component loggers are
// derived with WithPrefix and share the same sink.
type Logger struct {
	mu     sync.Mutex
	level  Level
	prefix string
	out    *log.Logger
	file   *os.File
}

var (
	globalLogger *Logger
	initOnce     sync.Once
)

// Init sets up the process-wide logger. Only the first call wins.
func Init(level Level, logPath string) error {
	var err error
	initOnce.Do(func() {
		globalLogger, err = New(level, logPath, "")
	})
	return err
}

// New opens a logger writing to logPath. With LevelNone or an empty
// path the logger discards everything and never touches the disk.
func New(level Level, logPath string, prefix string) (*Logger, error) {
	if level == LevelNone || logPath == "" {
		return &Logger{
			level:  LevelNone,
			prefix: prefix,
			out:    log.New(io.Discard, "", 0),
		}, nil
	}

	if err := os.MkdirAll(filepath.Dir(logPath), 0755); err != nil {
		return nil, fmt.Errorf("failed to create log directory: %w", err)
	}
	file, err := os.OpenFile(logPath, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0644)
	if err != nil {
		return nil, fmt.Errorf("failed to open log file: %w", err)
	}

	return &Logger{
		level:  level,
		prefix: prefix,
		out:    log.New(file, "", 0),
		file:   file,
	}, nil
}

// Global returns the process-wide logger, a discard logger when Init
// was never called.
func Global() *Logger {
	if globalLogger == nil {
		globalLogger = &Logger{
			level: LevelNone,
			out:   log.New(io.Discard, "", 0),
		}
	}
	return globalLogger
}

// WithPrefix derives a component logger sharing this logger's sink.
// Prefixes chain: Global().WithPrefix("server").WithPrefix("ingest")
// tags lines with [server:ingest].
func (l *Logger) WithPrefix(prefix string) *Logger {
	if l.prefix != "" {
		prefix = l.prefix + ":" + prefix
	}
	return &Logger{
		level:  l.level,
		prefix: prefix,
		out:    l.out,
		file:   l.file,
	}
}

func (l *Logger) write(level Level, format string, args ...interface{}) {
	if level < l.level || l.level == LevelNone {
		return
	}

	var tag string
	if l.prefix != "" {
		tag = "[" + l.prefix + "] "
	}

	l.mu.Lock()
	defer l.mu.Unlock()
	l.out.Printf("%s [%s] %s%s",
		time.Now().Format("2006-01-02 15:04:05.000"),
		level.String(), tag, fmt.Sprintf(format, args...))
}

// Debug logs a debug message
func (l *Logger) Debug(format string, args ...interface{}) {
	l.write(LevelDebug, format, args...)
}

// Info logs an informational message
func (l *Logger) Info(format string, args ...interface{}) {
	l.write(LevelInfo, format, args...)
}

// Warn logs a warning message
func (l *Logger) Warn(format string, args ...interface{}) {
	l.write(LevelWarn, format, args...)
}

// Error logs an error message
func (l *Logger) Error(format string, args ...interface{}) {
	l.write(LevelError, format, args...)
}

// Close flushes and closes the underlying file, if any.
func (l *Logger) Close() error {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.file != nil {
		return l.file.Close()
	}
	return nil
}

// Debug logs a debug message using the global logger
func Debug(format string, args ...interface{}) {
	Global().Debug(format, args...)
}

// Info logs an informational message using the global logger
func Info(format string, args ...interface{}) {
	Global().Info(format, args...)
}

// Warn logs a warning message using the global logger
func Warn(format string, args ...interface{}) {
	Global().Warn(format, args...)
}

// Error logs an error message using the global logger
func Error(format string, args ...interface{}) {
	Global().Error(format, args...)
}
