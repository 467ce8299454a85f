package monitoring

import (
	"log/slog"
	"os"
	"time"
)

// Logger provides structured JSON logging with scoring-specific helpers
type Logger struct {
	*slog.Logger
}

// NewLogger creates a new structured logger
func NewLogger() *Logger {
	handler := slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		Level:     slog.LevelInfo,
		AddSource: true,
		ReplaceAttr: func(groups []string, a slog.Attr) slog.Attr {
			if a.Key == slog.TimeKey {
				return slog.Attr{
					Key:   "timestamp",
					Value: slog.StringValue(a.Value.Time().Format(time.RFC3339)),
				}
			}
			return a
		},
	})

	return &Logger{
		Logger: slog.New(handler),
	}
}

// RequestLogger logs HTTP request details
func (l *Logger) RequestLogger(method, path, ip string, statusCode int, duration time.Duration) {
	l.Info("HTTP Request",
		"method", method,
		"path", path,
		"ip", ip,
		"status_code", statusCode,
		"duration_ms", duration.Milliseconds(),
	)
}

// PredictionLogger logs the outcome of a scoring pipeline run
func (l *Logger) PredictionLogger(latitude, longitude float64, month int, composite float64, failed bool, duration time.Duration) {
	l.Info("Prediction Completed",
		"latitude", latitude,
		"longitude", longitude,
		"month", month,
		"environment_change_outcome", composite,
		"failed", failed,
		"duration_ms", duration.Milliseconds(),
	)
}

