package utils

import (
	"fmt"
	"io"
	"log"
	"os"
	"strings"
	"time"
)

// Level is the minimum severity a Logger prints.
type Level int

const (
	LevelDebug Level = iota
	LevelInfo
	LevelWarn
	LevelError
)

// ParseLevel maps a LOG_LEVEL string to a Level, defaulting to info.
func ParseLevel(s string) Level {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "debug":
		return LevelDebug
	case "warn", "warning":
		return LevelWarn
	case "error":
		return LevelError
	default:
		return LevelInfo
	}
}

// Logger provides leveled logging throughout the pipeline.
type Logger struct {
	level Level
	out   *log.Logger
	err   *log.Logger
}

// NewLogger creates a Logger writing info/warn/debug to stdout and errors to stderr.
func NewLogger(level Level) *Logger {
	return &Logger{
		level: level,
		out:   log.New(os.Stdout, "", 0),
		err:   log.New(os.Stderr, "", 0),
	}
}

// NewLoggerTo creates a Logger sending every level to w.
func NewLoggerTo(w io.Writer, level Level) *Logger {
	l := log.New(w, "", 0)
	return &Logger{level: level, out: l, err: l}
}

// Discard returns a Logger that prints nothing.
func Discard() *Logger {
	return NewLoggerTo(io.Discard, LevelError+1)
}

func (l *Logger) timestamp() string {
	return time.Now().Format("2006-01-02 15:04:05")
}

func (l *Logger) emit(dst *log.Logger, lvl Level, tag, format string, args ...any) {
	if lvl < l.level {
		return
	}
	dst.Printf("[%s] %s %s", l.timestamp(), tag, fmt.Sprintf(format, args...))
}

func (l *Logger) Debug(format string, args ...any) {
	l.emit(l.out, LevelDebug, "\033[36mDEBUG\033[0m", format, args...)
}

func (l *Logger) Info(format string, args ...any) {
	l.emit(l.out, LevelInfo, "\033[32mINFO\033[0m ", format, args...)
}

func (l *Logger) Warn(format string, args ...any) {
	l.emit(l.out, LevelWarn, "\033[33mWARN\033[0m ", format, args...)
}

func (l *Logger) Error(format string, args ...any) {
	l.emit(l.err, LevelError, "\033[31mERROR\033[0m", format, args...)
}
