package engine

import (
	"context"
	"fmt"
	"time"

	"github.com/alexisbeaulieu97/coyote/internal/domain/incident"
	"github.com/alexisbeaulieu97/coyote/internal/ports"
)

// Stage is one workflow step. Implementations provide a stable name, a skip
// predicate, and an execution body; the engine wraps all three with uniform
// timing, tracing, and error capture.
type Stage interface {
	// Name identifies the stage. Names must be unique within a pipeline.
	Name() string

	// ShouldSkip reports whether the stage has nothing to do for this run,
	// typically because an upstream result it consumes is missing or not
	// completed.
	ShouldSkip(sctx *incident.StageContext) bool

	// Execute runs the stage body. Returned errors are converted into a
	// failed result by the engine; they never propagate further.
	Execute(ctx context.Context, sctx *incident.StageContext) (incident.StageResult, error)
}

// runStage executes a single stage with uniform skip, timing, tracing, and
// error-capture semantics. It never returns an error and never panics: any
// failure surfaces as a failed StageResult.
func runStage(ctx context.Context, tracer ports.Tracer, stage Stage, sctx *incident.StageContext) (result incident.StageResult) {
	startedAt := time.Now()

	defer func() {
		if r := recover(); r != nil {
			result = incident.NewFailedResult(stage.Name(), startedAt, fmt.Errorf("stage panicked: %v", r))
		}
	}()

	if stage.ShouldSkip(sctx) {
		return incident.NewSkippedResult(stage.Name(), startedAt)
	}

	spanCtx, span := tracer.StartSpan(ctx, "stage."+stage.Name(),
		"incident_id", sctx.Incident.ID,
		"severity", string(sctx.Incident.Severity),
	)
	if spanCtx != nil {
		ctx = spanCtx
	}
	defer span.End()

	result, err := stage.Execute(ctx, sctx)
	if err != nil {
		span.SetStatus(ports.SpanStatusError, err.Error())
		return incident.NewFailedResult(stage.Name(), startedAt, err)
	}

	result.Stage = stage.Name()
	if result.Status == "" {
		result.Status = incident.StageCompleted
	}
	result.StartedAt = startedAt
	result.Finish(time.Now())

	span.SetAttribute("status", string(result.Status))
	span.SetStatus(ports.SpanStatusOK, "")

	return result
}
