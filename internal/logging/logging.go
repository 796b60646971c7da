// Package logging provides the leveled logger used across backup-warden.
package logging

import (
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/rs/zerolog"
)

// Logger is the structured logger handed to every component.
// Arguments after msg are alternating key/value pairs.
type Logger interface {
	Debug(msg string, args ...any)
	Info(msg string, args ...any)
	Warn(msg string, args ...any)
	Error(msg string, args ...any)
}

// Options selects verbosity and output encoding.
type Options struct {
	Level  string // "debug", "info", "warn", "error"
	Format string // "text", "json"
}

// ZeroLogger adapts a zerolog.Logger to Logger.
type ZeroLogger struct {
	zl zerolog.Logger
}

// New builds a logger writing to w.
func New(w io.Writer, opts Options) (*ZeroLogger, error) {
	lvl, err := ParseLevel(opts.Level)
	if err != nil {
		return nil, err
	}

	var out io.Writer
	switch strings.ToLower(opts.Format) {
	case "", "text":
		out = zerolog.ConsoleWriter{Out: w, TimeFormat: time.RFC3339}
	case "json":
		out = w
	default:
		return nil, fmt.Errorf("unknown log format %q", opts.Format)
	}

	zl := zerolog.New(out).Level(lvl).With().Timestamp().Logger()
	return &ZeroLogger{zl: zl}, nil
}

// NewStderr is New writing to os.Stderr.
func NewStderr(opts Options) (*ZeroLogger, error) {
	return New(os.Stderr, opts)
}

// ParseLevel maps a config level name to a zerolog level.
func ParseLevel(s string) (zerolog.Level, error) {
	switch strings.ToLower(s) {
	case "", "info":
		return zerolog.InfoLevel, nil
	case "debug":
		return zerolog.DebugLevel, nil
	case "warn", "warning":
		return zerolog.WarnLevel, nil
	case "error":
		return zerolog.ErrorLevel, nil
	default:
		return zerolog.NoLevel, fmt.Errorf("unknown log level %q", s)
	}
}

// With returns a child logger that always carries the given key/value pairs.
func (l *ZeroLogger) With(args ...any) *ZeroLogger {
	return &ZeroLogger{zl: l.zl.With().Fields(args).Logger()}
}

func (l *ZeroLogger) Debug(msg string, args ...any) { l.zl.Debug().Fields(args).Msg(msg) }
func (l *ZeroLogger) Info(msg string, args ...any)  { l.zl.Info().Fields(args).Msg(msg) }
func (l *ZeroLogger) Warn(msg string, args ...any)  { l.zl.Warn().Fields(args).Msg(msg) }
func (l *ZeroLogger) Error(msg string, args ...any) { l.zl.Error().Fields(args).Msg(msg) }

// Nop discards everything.
type Nop struct{}

func (Nop) Debug(string, ...any) {}
func (Nop) Info(string, ...any)  {}
func (Nop) Warn(string, ...any)  {}
func (Nop) Error(string, ...any) {}
