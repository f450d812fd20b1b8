package tracing

import (
	"context"

	"github.com/alexisbeaulieu97/coyote/internal/ports"
)

// NoOpTracer produces spans that record nothing. Injecting it is functionally
// identical to running without tracing, which keeps the engine free of nil
// checks on the hot path.
type NoOpTracer struct{}

// NewNoOpTracer returns a ports.Tracer that discards all spans.
func NewNoOpTracer() ports.Tracer {
	return &NoOpTracer{}
}

// StartSpan implements ports.Tracer.
func (t *NoOpTracer) StartSpan(ctx context.Context, name string, attributes ...interface{}) (context.Context, ports.Span) {
	return ctx, noOpSpan{}
}

type noOpSpan struct{}

func (noOpSpan) SetAttribute(string, interface{})   {}
func (noOpSpan) SetStatus(ports.SpanStatus, string) {}
func (noOpSpan) End()                               {}

var _ ports.Tracer = (*NoOpTracer)(nil)
