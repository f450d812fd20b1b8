package insight

import (
	"context"
	"strings"

	"github.com/alexisbeaulieu97/coyote/internal/ports"
)

// LoggingSink emits insights as structured log entries. It is the default
// sink when no external knowledge system is wired in.
type LoggingSink struct {
	logger ports.Logger
}

// NewLoggingSink creates an insight sink that writes each insight to the logger.
func NewLoggingSink(logger ports.Logger) *LoggingSink {
	return &LoggingSink{logger: logger}
}

// Emit implements ports.InsightSink.
func (s *LoggingSink) Emit(ctx context.Context, in ports.Insight) error {
	if s == nil || s.logger == nil {
		return nil
	}
	s.logger.Info(ctx, "insight captured",
		"incident_id", in.IncidentID,
		"category", in.Category,
		"summary", in.Summary,
		"applies_to", strings.Join(in.AppliesTo, ","),
		"tags", strings.Join(in.Tags, ","),
		"confidence", in.Confidence,
	)
	return nil
}

var _ ports.InsightSink = (*LoggingSink)(nil)

// NoOpSink discards all insights.
type NoOpSink struct{}

// NewNoOpSink returns a ports.InsightSink that discards all insights.
func NewNoOpSink() ports.InsightSink {
	return &NoOpSink{}
}

// Emit implements ports.InsightSink.
func (NoOpSink) Emit(context.Context, ports.Insight) error { return nil }
