package ports

import "context"

// Tracer manages tracing spans around pipeline and stage execution. Span
// names follow the convention `<component>.<operation>` (e.g. `pipeline.run`,
// `stage.investigate`). A tracer must never alter execution results; running
// without one is functionally identical to running with one.
type Tracer interface {
	StartSpan(ctx context.Context, name string, attributes ...interface{}) (context.Context, Span)
}

// Span represents an active tracing span.
type Span interface {
	SetAttribute(key string, value interface{})
	SetStatus(status SpanStatus, message string)
	End()
}

// SpanStatus provides strongly typed span result semantics.
type SpanStatus string

const (
	SpanStatusOK    SpanStatus = "ok"
	SpanStatusError SpanStatus = "error"
)
