// Package logger wraps zerolog with context-scoped fields and a level that
// can be changed while the process runs.
package logger

import (
	"context"
	"fmt"
	"io"
	"os"
	"strings"
	"sync/atomic"
	"time"

	"github.com/rs/zerolog"
)

// Options configures the structured logger.
type Options struct {
	ServiceName string
	Level       zerolog.Level
	// Format is "json" (default) or "console".
	Format string
	Output io.Writer
}

// Logger is a structured logger. The zero value is not usable; use New or Nop.
type Logger struct {
	base  *zerolog.Logger
	level *atomic.Int32
}

type ctxKey struct{}

// New builds a Logger from opts.
func New(opts Options) *Logger {
	if opts.Level == zerolog.NoLevel {
		opts.Level = zerolog.InfoLevel
	}

	output := opts.Output
	if output == nil {
		output = os.Stdout
	}
	if strings.EqualFold(opts.Format, "console") {
		output = zerolog.ConsoleWriter{
			Out:        output,
			TimeFormat: "15:04:05",
		}
	}

	zerolog.TimeFieldFormat = time.RFC3339Nano

	level := &atomic.Int32{}
	level.Store(int32(opts.Level))

	base := zerolog.
		New(output).
		Hook(levelGate(level)).
		With().
		Timestamp().
		Str("service", opts.ServiceName).
		Logger()

	return &Logger{base: &base, level: level}
}

// Nop returns a logger that discards everything.
func Nop() *Logger {
	return New(Options{Output: io.Discard, Level: zerolog.Disabled})
}

// levelGate drops events below the current level. Using a hook instead of
// zerolog's own level lets SetLevel affect loggers already attached to contexts.
func levelGate(level *atomic.Int32) zerolog.HookFunc {
	return func(e *zerolog.Event, l zerolog.Level, _ string) {
		if l < zerolog.Level(level.Load()) {
			e.Discard()
		}
	}
}

// ParseLevel converts a textual level, falling back to info.
func ParseLevel(value string) zerolog.Level {
	levelString := strings.ToLower(strings.TrimSpace(value))
	if levelString == "" {
		return zerolog.InfoLevel
	}
	if lvl, err := zerolog.ParseLevel(levelString); err == nil && lvl != zerolog.NoLevel {
		return lvl
	}
	return zerolog.InfoLevel
}

// SetLevel changes the minimum level of this logger and every logger derived from it.
func (l *Logger) SetLevel(level zerolog.Level) {
	l.level.Store(int32(level))
}

// Level returns the current minimum level.
func (l *Logger) Level() zerolog.Level {
	return zerolog.Level(l.level.Load())
}

func (l *Logger) fromContext(ctx context.Context) *zerolog.Logger {
	if ctx == nil {
		return l.base
	}
	if entry, ok := ctx.Value(ctxKey{}).(*zerolog.Logger); ok {
		return entry
	}
	return l.base
}

func attach(ctx context.Context, entry zerolog.Logger) context.Context {
	return context.WithValue(ctx, ctxKey{}, &entry)
}

// WithField returns a context whose log entries carry key=value.
func (l *Logger) WithField(ctx context.Context, key string, value any) context.Context {
	entry := l.fromContext(ctx)
	return attach(ctx, entry.With().Interface(key, value).Logger())
}

// WithFields returns a context whose log entries carry every field.
func (l *Logger) WithFields(ctx context.Context, fields map[string]any) context.Context {
	builder := l.fromContext(ctx).With()
	for k, v := range fields {
		builder = builder.Interface(k, v)
	}
	return attach(ctx, builder.Logger())
}

// WithRequestID tags the context with an HTTP request id.
func (l *Logger) WithRequestID(ctx context.Context, requestID string) context.Context {
	return l.WithField(ctx, "request_id", requestID)
}

// WithComponent tags the context with the emitting component name.
func (l *Logger) WithComponent(ctx context.Context, component string) context.Context {
	return l.WithField(ctx, "component", component)
}

// Debug logs at debug level.
func (l *Logger) Debug(ctx context.Context, msg string) {
	l.fromContext(ctx).Debug().Msg(msg)
}

// Debugf logs a formatted message at debug level.
func (l *Logger) Debugf(ctx context.Context, format string, args ...any) {
	l.fromContext(ctx).Debug().Msgf(format, args...)
}

// Info logs at info level.
func (l *Logger) Info(ctx context.Context, msg string) {
	l.fromContext(ctx).Info().Msg(msg)
}

// Infof logs a formatted message at info level.
func (l *Logger) Infof(ctx context.Context, format string, args ...any) {
	l.fromContext(ctx).Info().Msg(fmt.Sprintf(format, args...))
}

// Warn logs at warn level.
func (l *Logger) Warn(ctx context.Context, msg string) {
	l.fromContext(ctx).Warn().Msg(msg)
}

// Warnf logs a formatted message at warn level.
func (l *Logger) Warnf(ctx context.Context, format string, args ...any) {
	l.fromContext(ctx).Warn().Msg(fmt.Sprintf(format, args...))
}

// Error logs err at error level.
func (l *Logger) Error(ctx context.Context, msg string, err error) {
	event := l.fromContext(ctx).Error()
	if err != nil {
		event = event.Err(err)
	}
	event.Msg(msg)
}
