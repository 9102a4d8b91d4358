package logger

import (
	"fmt"
	"io"
	"os"
	"time"

	"github.com/rs/zerolog"
)

// Options configures a logger at creation time.
type Options struct {
	// Level is one of trace, debug, info, warn, error, fatal, panic.
	Level string
	// HumanReadable switches from JSON lines to console output.
	HumanReadable bool
	// Writer overrides the destination. Defaults to stderr.
	Writer io.Writer
}

// Field is one structured key/value pair attached to log entries.
type Field struct {
	Key   string
	Value any
}

// F builds a Field for use with With.
func F(key string, value any) Field {
	return Field{Key: key, Value: value}
}

// Logger is the small structured-logging surface lockstep uses. All methods
// tolerate a nil receiver, so components can run without a logger wired in.
type Logger struct {
	zl zerolog.Logger
}

// New creates a logger from options.
func New(opts Options) (*Logger, error) {
	level, err := zerolog.ParseLevel(opts.Level)
	if err != nil {
		return nil, fmt.Errorf("invalid log level %q: %w", opts.Level, err)
	}

	out := opts.Writer
	if out == nil {
		out = os.Stderr
	}
	if opts.HumanReadable {
		out = zerolog.ConsoleWriter{Out: out, TimeFormat: time.RFC3339}
	}

	zl := zerolog.New(out).Level(level).With().Timestamp().Logger()
	return &Logger{zl: zl}, nil
}

// With returns a derived logger that stamps the given fields on every entry.
func (l *Logger) With(fields ...Field) *Logger {
	if l == nil {
		return nil
	}
	ctx := l.zl.With()
	for _, f := range fields {
		ctx = ctx.Interface(f.Key, f.Value)
	}
	return &Logger{zl: ctx.Logger()}
}

// Subsystem returns a derived logger tagged with a subsystem id.
func (l *Logger) Subsystem(id string) *Logger {
	return l.With(F("subsystem", id))
}

// Debug logs at debug level.
func (l *Logger) Debug(msg string, fields ...Field) {
	if l == nil {
		return
	}
	emit(l.zl.Debug(), msg, fields)
}

// Info logs at info level.
func (l *Logger) Info(msg string, fields ...Field) {
	if l == nil {
		return
	}
	emit(l.zl.Info(), msg, fields)
}

// Warn logs at warn level.
func (l *Logger) Warn(msg string, fields ...Field) {
	if l == nil {
		return
	}
	emit(l.zl.Warn(), msg, fields)
}

// Error logs at error level with an optional cause.
func (l *Logger) Error(err error, msg string, fields ...Field) {
	if l == nil {
		return
	}
	emit(l.zl.Error().Err(err), msg, fields)
}

func emit(ev *zerolog.Event, msg string, fields []Field) {
	for _, f := range fields {
		ev = ev.Interface(f.Key, f.Value)
	}
	ev.Msg(msg)
}
