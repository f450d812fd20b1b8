package ports

import "context"

// Insight is a knowledge signal worth sharing outside the pipeline: a lesson
// extracted from a resolved incident together with where it applies.
type Insight struct {
	IncidentID string
	Category   string
	Summary    string
	Prevention string
	AppliesTo  []string
	Tags       []string
	Confidence float64
}

// InsightSink receives insights emitted by the knowledge-capture stage and
// the knowledge store. Emission is best-effort: implementations should report
// failures through their return value, and callers must never fail a stage
// because a sink did.
type InsightSink interface {
	Emit(ctx context.Context, insight Insight) error
}
