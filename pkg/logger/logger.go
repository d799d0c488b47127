// Package logger builds the structured zap logger used across the dashboard.
// It supports log levels, JSON/console output, domain field helpers, and
// context propagation.
package logger

import (
	"context"
	"io"
	"os"
	"strings"
	"time"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// Options configures the logger.
type Options struct {
	// Level is the minimum level: debug, info, warn, error.
	Level string

	// Format is "json" or "console".
	Format string

	// Output defaults to os.Stdout.
	Output io.Writer

	// AddCaller annotates entries with file:line.
	AddCaller bool
}

// DefaultOptions returns sensible defaults for the logger.
func DefaultOptions() Options {
	return Options{
		Level:     "info",
		Format:    "json",
		Output:    os.Stdout,
		AddCaller: true,
	}
}

// ParseLevel parses a string into a zap level. Unknown values map to info.
func ParseLevel(s string) zapcore.Level {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "debug":
		return zapcore.DebugLevel
	case "info":
		return zapcore.InfoLevel
	case "warn", "warning":
		return zapcore.WarnLevel
	case "error":
		return zapcore.ErrorLevel
	default:
		return zapcore.InfoLevel
	}
}

// New creates a zap logger with the given options.
func New(opts Options) *zap.Logger {
	if opts.Output == nil {
		opts.Output = os.Stdout
	}

	encoderCfg := zap.NewProductionEncoderConfig()
	encoderCfg.TimeKey = "timestamp"
	encoderCfg.EncodeTime = zapcore.ISO8601TimeEncoder

	var encoder zapcore.Encoder
	if opts.Format == "console" {
		encoderCfg.EncodeLevel = zapcore.CapitalColorLevelEncoder
		encoder = zapcore.NewConsoleEncoder(encoderCfg)
	} else {
		encoder = zapcore.NewJSONEncoder(encoderCfg)
	}

	core := zapcore.NewCore(encoder, zapcore.AddSync(opts.Output), ParseLevel(opts.Level))

	zapOpts := []zap.Option{zap.AddStacktrace(zapcore.ErrorLevel)}
	if opts.AddCaller {
		zapOpts = append(zapOpts, zap.AddCaller())
	}
	return zap.New(core, zapOpts...)
}

// Default creates a logger with default options.
func Default() *zap.Logger {
	return New(DefaultOptions())
}

// Nop returns a logger that discards everything. Used by tests and as the
// fallback for components constructed without a logger.
func Nop() *zap.Logger {
	return zap.NewNop()
}

type ctxKey struct{}

// WithContext returns a new context with the logger attached.
func WithContext(ctx context.Context, l *zap.Logger) context.Context {
	return context.WithValue(ctx, ctxKey{}, l)
}

// FromContext retrieves the logger from context, or returns a no-op logger.
func FromContext(ctx context.Context) *zap.Logger {
	if l, ok := ctx.Value(ctxKey{}).(*zap.Logger); ok && l != nil {
		return l
	}
	return Nop()
}

// RequestIDKey is the field key for request tracing.
const RequestIDKey = "request_id"

// Dashboard-related field helpers.
func RequestID(id string) zap.Field       { return zap.String(RequestIDKey, id) }
func UserID(id int64) zap.Field           { return zap.Int64("user_id", id) }
func Email(email string) zap.Field        { return zap.String("email", email) }
func Resource(name string) zap.Field      { return zap.String("resource", name) }
func Component(name string) zap.Field     { return zap.String("component", name) }
func Operation(name string) zap.Field     { return zap.String("operation", name) }
func SessionState(state string) zap.Field { return zap.String("session_state", state) }
func Status(code int) zap.Field           { return zap.Int("status", code) }
func Latency(d time.Duration) zap.Field   { return zap.Duration("latency", d) }
