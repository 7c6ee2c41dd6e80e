package logger

import (
	"io"
	"log/slog"
	"os"
	"sync"
)

var (
	defaultLogger *slog.Logger
	once          sync.Once
)

// Options controls the global logger.
type Options struct {
	Debug  bool
	JSON   bool
	Output io.Writer
}

// Init initializes the global logger. Only the first call has an effect.
// Debug enables debug level logging with source locations.
func Init(opts Options) {
	once.Do(func() { setDefault(opts) })
}

func setDefault(opts Options) {
	defaultLogger = New(opts)
	slog.SetDefault(defaultLogger)
}

// New builds a logger without touching the global one.
func New(opts Options) *slog.Logger {
	level := slog.LevelInfo
	if opts.Debug {
		level = slog.LevelDebug
	}

	out := opts.Output
	if out == nil {
		out = os.Stdout
	}

	handlerOpts := &slog.HandlerOptions{
		Level:     level,
		AddSource: opts.Debug,
	}

	var handler slog.Handler = slog.NewTextHandler(out, handlerOpts)
	if opts.JSON {
		handler = slog.NewJSONHandler(out, handlerOpts)
	}
	return slog.New(handler)
}

// get falls back to DEBUG from the environment when Init was never called.
func get() *slog.Logger {
	once.Do(func() { setDefault(Options{Debug: os.Getenv("DEBUG") == "true"}) })
	return defaultLogger
}

// Debug logs at Debug level.
func Debug(msg string, args ...any) {
	get().Debug(msg, args...)
}

// Info logs at Info level.
func Info(msg string, args ...any) {
	get().Info(msg, args...)
}

// Warn logs at Warn level.
func Warn(msg string, args ...any) {
	get().Warn(msg, args...)
}

// Error logs at Error level.
func Error(msg string, args ...any) {
	get().Error(msg, args...)
}

// Fatal logs at Error level and then exits.
func Fatal(msg string, args ...any) {
	get().Error(msg, args...)
	os.Exit(1)
}

// With returns a new logger with the given attributes.
func With(args ...any) *slog.Logger {
	return get().With(args...)
}
