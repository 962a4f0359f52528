package infrastructure

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel/trace"

	"clientreport/internal/config"
)

var (
	globalLogger     *slog.Logger
	globalLoggerOnce sync.Once

	globalLogFile *os.File
	logFileMu     sync.Mutex
)

type contextKey string

// TraceIDContextKey is the key for storing the request trace id in context.
const TraceIDContextKey contextKey = "trace_id"

// InitializeLogger creates the process-wide logger and installs it as the
// slog default. Only the first call has an effect.
func InitializeLogger(cfg config.LoggingConfig) (*slog.Logger, error) {
	var err error
	globalLoggerOnce.Do(func() {
		var file *os.File
		globalLogger, file, err = newLogger(cfg, os.Stdout)
		if err != nil {
			return
		}
		logFileMu.Lock()
		globalLogFile = file
		logFileMu.Unlock()
		slog.SetDefault(globalLogger)
	})
	return globalLogger, err
}

// GetLogger returns the global logger instance, or the slog default
// before InitializeLogger ran.
func GetLogger() *slog.Logger {
	if globalLogger == nil {
		return slog.Default()
	}
	return globalLogger
}

// NewLogger builds a JSON logger writing to w, to the configured file, or
// both, depending on cfg.Output. The returned file is nil unless a log
// file was opened; the caller owns it.
func NewLogger(cfg config.LoggingConfig, w io.Writer) (*slog.Logger, *os.File, error) {
	return newLogger(cfg, w)
}

func newLogger(cfg config.LoggingConfig, stdout io.Writer) (*slog.Logger, *os.File, error) {
	opts := &slog.HandlerOptions{
		AddSource: parseLogLevel(cfg.Level) == slog.LevelDebug,
		Level:     parseLogLevel(cfg.Level),
	}

	var (
		output io.Writer
		file   *os.File
		err    error
	)
	switch strings.ToLower(cfg.Output) {
	case "file":
		if file, err = openLogFile(cfg.FilePath); err != nil {
			return nil, nil, err
		}
		output = file
	case "both":
		if file, err = openLogFile(cfg.FilePath); err != nil {
			return nil, nil, err
		}
		output = io.MultiWriter(stdout, file)
	default:
		output = stdout
	}

	handler := slog.NewJSONHandler(output, opts)
	return slog.New(&traceHandler{Handler: handler}), file, nil
}

// traceHandler injects trace_id from the request context, falling back to
// the active OpenTelemetry span.
type traceHandler struct {
	slog.Handler
}

func (h *traceHandler) Handle(ctx context.Context, r slog.Record) error {
	if traceID := GetTraceID(ctx); traceID != "" {
		r.AddAttrs(slog.String("trace_id", traceID))
	} else if sc := trace.SpanContextFromContext(ctx); sc.IsValid() {
		r.AddAttrs(slog.String("trace_id", sc.TraceID().String()))
	}
	return h.Handler.Handle(ctx, r)
}

func (h *traceHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	return &traceHandler{Handler: h.Handler.WithAttrs(attrs)}
}

func (h *traceHandler) WithGroup(name string) slog.Handler {
	return &traceHandler{Handler: h.Handler.WithGroup(name)}
}

func parseLogLevel(level string) slog.Level {
	switch strings.ToLower(level) {
	case "debug":
		return slog.LevelDebug
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

// WithTraceID adds a trace ID to the context
func WithTraceID(ctx context.Context, traceID string) context.Context {
	return context.WithValue(ctx, TraceIDContextKey, traceID)
}

// GetTraceID retrieves the trace ID from context
func GetTraceID(ctx context.Context) string {
	if traceID, ok := ctx.Value(TraceIDContextKey).(string); ok {
		return traceID
	}
	return ""
}

// GenerateTraceID creates a new unique trace ID
func GenerateTraceID() string {
	return uuid.NewString()
}

// EnsureTraceID returns ctx with a trace ID, generating one if needed.
func EnsureTraceID(ctx context.Context) context.Context {
	if GetTraceID(ctx) == "" {
		return WithTraceID(ctx, GenerateTraceID())
	}
	return ctx
}

// CloseLogFile closes the global log file if open.
func CloseLogFile() error {
	logFileMu.Lock()
	defer logFileMu.Unlock()

	if globalLogFile != nil {
		err := globalLogFile.Close()
		globalLogFile = nil
		return err
	}
	return nil
}

// ResetLoggerForTesting resets the global logger state.
func ResetLoggerForTesting() {
	_ = CloseLogFile()
	globalLogger = nil
	globalLoggerOnce = sync.Once{}
}

func openLogFile(filePath string) (*os.File, error) {
	dir := filepath.Dir(filePath)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create log directory %s: %w", dir, err)
	}
	file, err := os.OpenFile(filePath, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o644)
	if err != nil {
		return nil, fmt.Errorf("failed to open log file %s: %w", filePath, err)
	}
	return file, nil
}
