package ports

import "context"

// Logger defines Coyote's structured logging contract. All log calls take
// alternating key/value pairs and must be safe for concurrent use. Common
// fields include component, incident_id, stage, and duration_ms for timed
// operations.
type Logger interface {
	Debug(ctx context.Context, msg string, fields ...interface{})
	Info(ctx context.Context, msg string, fields ...interface{})
	Warn(ctx context.Context, msg string, fields ...interface{})
	Error(ctx context.Context, msg string, fields ...interface{})
	With(fields ...interface{}) Logger
}
