// Package glog is a small leveled logger used across graphrecords for store
// lifecycle and query-evaluation diagnostics, adapted from the teacher's
// apoc/log package (same level set, same "timestamp + level + message +
// fields" line shape) but built around structured key/value fields instead
// of a loosely-typed params map, matching the rest of this module's
// explicit-error-return style.
package glog

import (
	"fmt"
	"log"
	"os"
	"strings"
	"time"
)

// Level is a logging severity, ordered Debug < Info < Warn < Error.
type Level int

const (
	LevelDebug Level = iota
	LevelInfo
	LevelWarn
	LevelError
)

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
	default:
		return "INFO"
	}
}

// ParseLevel maps a level name (case-insensitive) to a Level, defaulting to
// LevelInfo for anything unrecognized.
func ParseLevel(name string) Level {
	switch strings.ToUpper(name) {
	case "DEBUG":
		return LevelDebug
	case "WARN":
		return LevelWarn
	case "ERROR":
		return LevelError
	default:
		return LevelInfo
	}
}

// Field is one structured key/value pair attached to a log line.
type Field struct {
	Key   string
	Value any
}

// F builds a Field — shorthand for call sites.
func F(key string, value any) Field { return Field{Key: key, Value: value} }

// Logger is a leveled logger writing to an underlying *log.Logger. The zero
// Logger has no underlying *log.Logger and is not usable; construct one with
// New.
type Logger struct {
	level  Level
	out    *log.Logger
	prefix string
}

// New builds a Logger writing to w at the given level. A nil w defaults to
// os.Stderr.
func New(w *os.File, level Level) *Logger {
	if w == nil {
		w = os.Stderr
	}
	return &Logger{level: level, out: log.New(w, "", 0)}
}

// Default is the package-level logger used by the free functions below.
var Default = New(os.Stderr, LevelInfo)

// With returns a copy of l that prefixes every line with name, for
// per-component loggers (e.g. "query", "badger", "schema").
func (l *Logger) With(name string) *Logger {
	prefix := name
	if l.prefix != "" {
		prefix = l.prefix + "." + name
	}
	return &Logger{level: l.level, out: l.out, prefix: prefix}
}

// SetLevel adjusts the minimum severity l emits.
func (l *Logger) SetLevel(level Level) { l.level = level }

func (l *Logger) log(level Level, msg string, fields []Field) {
	if level < l.level {
		return
	}
	var b strings.Builder
	b.WriteString(time.Now().UTC().Format("2006-01-02T15:04:05.000Z"))
	b.WriteByte(' ')
	b.WriteString(level.String())
	if l.prefix != "" {
		b.WriteByte(' ')
		b.WriteString(l.prefix)
	}
	b.WriteString(": ")
	b.WriteString(msg)
	for _, f := range fields {
		fmt.Fprintf(&b, " %s=%v", f.Key, f.Value)
	}
	l.out.Println(b.String())
}

func (l *Logger) Debug(msg string, fields ...Field) { l.log(LevelDebug, msg, fields) }
func (l *Logger) Info(msg string, fields ...Field)  { l.log(LevelInfo, msg, fields) }
func (l *Logger) Warn(msg string, fields ...Field)  { l.log(LevelWarn, msg, fields) }
func (l *Logger) Error(msg string, fields ...Field) { l.log(LevelError, msg, fields) }

// Debug logs at LevelDebug on the package default logger.
func Debug(msg string, fields ...Field) { Default.Debug(msg, fields...) }

// Info logs at LevelInfo on the package default logger.
func Info(msg string, fields ...Field) { Default.Info(msg, fields...) }

// Warn logs at LevelWarn on the package default logger.
func Warn(msg string, fields ...Field) { Default.Warn(msg, fields...) }

// Error logs at LevelError on the package default logger.
func Error(msg string, fields ...Field) { Default.Error(msg, fields...) }

// Timer starts a timer and returns a function that logs the elapsed
// duration under msg when called — used to bracket a query evaluation or a
// store transaction.
func (l *Logger) Timer(msg string, fields ...Field) func() {
	start := time.Now()
	return func() {
		l.log(LevelDebug, msg, append(append([]Field{}, fields...), F("elapsed", time.Since(start))))
	}
}
