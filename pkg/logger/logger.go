// Package logger provides the leveled logger shared by the agent packages.
package logger

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"
	"sync"
	"time"
)

// Level orders log severities.
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
	default:
		return "ERROR"
	}
}

// ParseLevel maps a level name to a Level. Unknown names map to info.
func ParseLevel(name string) Level {
	switch strings.ToLower(strings.TrimSpace(name)) {
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

// Logger is the logging interface used across the agent.
type Logger interface {
	Info(msg string, obj any)
	Warn(msg string, obj any)
	Debug(msg string, obj any)
	Error(msg string, obj any)
}

// NopLogger discards all log messages.
type NopLogger struct{}

func (NopLogger) Info(string, any)  {}
func (NopLogger) Warn(string, any)  {}
func (NopLogger) Debug(string, any) {}
func (NopLogger) Error(string, any) {}

type writerLogger struct {
	mu     *sync.Mutex
	w      io.Writer
	min    Level
	fields map[string]any
	now    func() time.Time
}

// Option customizes a writer logger.
type Option func(*writerLogger)

// WithLevel drops records below min.
func WithLevel(min Level) Option {
	return func(l *writerLogger) {
		l.min = min
	}
}

// WithFields attaches fields to every record, e.g. a session id.
func WithFields(fields map[string]any) Option {
	return func(l *writerLogger) {
		for k, v := range fields {
			l.fields[k] = v
		}
	}
}

// NewWriterLogger builds a logger that writes one line per record to w.
func NewWriterLogger(w io.Writer, opts ...Option) Logger {
	l := &writerLogger{
		mu:     &sync.Mutex{},
		w:      w,
		min:    LevelInfo,
		fields: map[string]any{},
		now:    time.Now,
	}
	for _, opt := range opts {
		if opt != nil {
			opt(l)
		}
	}
	return l
}

func (l *writerLogger) write(level Level, msg string, obj any) {
	if l.w == nil || level < l.min {
		return
	}

	var prefix strings.Builder
	prefix.WriteString(l.now().Format(time.RFC3339))
	prefix.WriteString(fmt.Sprintf(" %-5s %s", level, msg))
	if len(l.fields) > 0 {
		if b, err := json.Marshal(l.fields); err == nil {
			prefix.WriteString(" fields=")
			prefix.Write(b)
		}
	}

	l.mu.Lock()
	defer l.mu.Unlock()

	if obj == nil {
		_, _ = fmt.Fprintf(l.w, "%s\n", prefix.String())
		return
	}
	b, err := json.Marshal(obj)
	if err != nil {
		_, _ = fmt.Fprintf(l.w, "%s obj=%q\n", prefix.String(), fmt.Sprintf("%+v", obj))
		return
	}
	_, _ = fmt.Fprintf(l.w, "%s obj=%s\n", prefix.String(), string(b))
}

func (l *writerLogger) Info(msg string, obj any)  { l.write(LevelInfo, msg, obj) }
func (l *writerLogger) Warn(msg string, obj any)  { l.write(LevelWarn, msg, obj) }
func (l *writerLogger) Debug(msg string, obj any) { l.write(LevelDebug, msg, obj) }
func (l *writerLogger) Error(msg string, obj any) { l.write(LevelError, msg, obj) }

// OrNop returns l, or a NopLogger when l is nil.
func OrNop(l Logger) Logger {
	if l == nil {
		return NopLogger{}
	}
	return l
}
