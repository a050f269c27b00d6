package logger

import (
	"context"
	"log/slog"
	"os"
)

type ContextKey string

// Business context keys, following OpenTelemetry semantic conventions
// with an 'assistant.' prefix.
const (
	RequestIDKey ContextKey = "assistant.request.id"
	ClinicIDKey  ContextKey = "assistant.clinic.id"
	PatientIDKey ContextKey = "assistant.patient.id"
)

// ContextLogger provides context-aware logging with per-request
// business fields.
type ContextLogger struct {
	logger      *slog.Logger
	serviceName string
}

// NewContextLogger creates a new context-aware logger.
func NewContextLogger(name string) *ContextLogger {
	opts := &slog.HandlerOptions{
		Level: parseLevel(os.Getenv("LOG_LEVEL")),
	}
	handler := slog.NewJSONHandler(os.Stdout, opts)

	return &ContextLogger{
		logger:      slog.New(handler),
		serviceName: name,
	}
}

// WithContext returns a logger with context values extracted and added
// as fields.
func (cl *ContextLogger) WithContext(ctx context.Context) *slog.Logger {
	logger := cl.logger.With("service", cl.serviceName)

	var fields []any

	if requestID := ctx.Value(RequestIDKey); requestID != nil {
		fields = append(fields, string(RequestIDKey), requestID)
	}
	if clinicID := ctx.Value(ClinicIDKey); clinicID != nil {
		fields = append(fields, string(ClinicIDKey), clinicID)
	}
	if patientID := ctx.Value(PatientIDKey); patientID != nil {
		fields = append(fields, string(PatientIDKey), patientID)
	}

	if len(fields) > 0 {
		logger = logger.With(fields...)
	}

	return logger
}

// Context helper functions

// WithRequestID adds the request ID to context for observability.
func WithRequestID(ctx context.Context, requestID string) context.Context {
	return context.WithValue(ctx, RequestIDKey, requestID)
}

// WithClinicID adds the clinic ID to context for observability.
func WithClinicID(ctx context.Context, clinicID string) context.Context {
	return context.WithValue(ctx, ClinicIDKey, clinicID)
}

// WithPatientID adds the patient ID to context for observability.
func WithPatientID(ctx context.Context, patientID string) context.Context {
	return context.WithValue(ctx, PatientIDKey, patientID)
}

func parseLevel(level string) slog.Level {
	switch level {
	case "debug", "DEBUG":
		return slog.LevelDebug
	case "warn", "WARN", "warning", "WARNING":
		return slog.LevelWarn
	case "error", "ERROR":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}
