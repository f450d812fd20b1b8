// Package engine sequences pipeline stages against one incident. Execution is
// strictly sequential: each stage's input is the accumulated history of the
// stages before it, and nothing runs concurrently within a run.
package engine

import (
	"context"
	"time"

	"github.com/alexisbeaulieu97/coyote/internal/domain/incident"
	"github.com/alexisbeaulieu97/coyote/internal/infrastructure/logging"
	"github.com/alexisbeaulieu97/coyote/internal/infrastructure/tracing"
	"github.com/alexisbeaulieu97/coyote/internal/ports"
)

// Pipeline drives a list of stages against one incident, applying the
// skip/approval/failure rules and accumulating results.
type Pipeline struct {
	stages      []Stage
	autoProceed bool
	gate        ports.ApprovalGate
	tracer      ports.Tracer
	logger      ports.Logger
}

// Option configures a pipeline instance.
type Option func(*Pipeline)

// WithApprovalGate injects the collaborator consulted after each completed
// stage when auto-proceed is off.
func WithApprovalGate(gate ports.ApprovalGate) Option {
	return func(p *Pipeline) {
		p.gate = gate
	}
}

// WithAutoProceed disables the approval checkpoint between stages.
func WithAutoProceed(auto bool) Option {
	return func(p *Pipeline) {
		p.autoProceed = auto
	}
}

// WithTracer injects a tracer. Tracing must not alter results; omitting it is
// equivalent to the no-op default.
func WithTracer(tracer ports.Tracer) Option {
	return func(p *Pipeline) {
		if tracer != nil {
			p.tracer = tracer
		}
	}
}

// WithLogger injects a structured logger.
func WithLogger(logger ports.Logger) Option {
	return func(p *Pipeline) {
		if logger != nil {
			p.logger = logger
		}
	}
}

// New constructs a pipeline over the given stages.
func New(stages []Stage, opts ...Option) *Pipeline {
	p := &Pipeline{
		stages: stages,
		tracer: tracing.NewNoOpTracer(),
		logger: logging.NewNoOpLogger(),
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// Run executes the pipeline against a fresh context for the incident. It
// never returns an error: stage failures surface in the result's status.
func (p *Pipeline) Run(ctx context.Context, inc incident.Incident) *incident.PipelineResult {
	return p.Resume(ctx, incident.NewStageContext(inc))
}

// Resume executes the pipeline's stages on top of an existing context,
// appending to its history. Passing the context preserved from a run that
// halted in awaiting_approval, together with the not-yet-run stage list,
// continues that run from the exact point it stopped.
func (p *Pipeline) Resume(ctx context.Context, sctx *incident.StageContext) *incident.PipelineResult {
	result := &incident.PipelineResult{
		Incident:  sctx.Incident,
		Stages:    append([]incident.StageResult(nil), sctx.Results...),
		Status:    incident.RunRunning,
		StartedAt: time.Now(),
	}

	spanCtx, span := p.tracer.StartSpan(ctx, "pipeline.run",
		"incident_id", sctx.Incident.ID,
		"stages", len(p.stages),
	)
	if spanCtx != nil {
		ctx = spanCtx
	}
	defer span.End()

	p.logger.Info(ctx, "pipeline started", "incident_id", sctx.Incident.ID, "stages", len(p.stages))

	for _, stage := range p.stages {
		p.logger.Info(ctx, "running stage", "stage", stage.Name())

		stageResult := runStage(ctx, p.tracer, stage, sctx)
		result.Stages = append(result.Stages, stageResult)
		sctx.Append(stageResult)

		switch stageResult.Status {
		case incident.StageFailed:
			p.logger.Error(ctx, "stage failed", "stage", stage.Name(), "error", stageResult.Error)
			result.Status = incident.RunFailed
			result.CompletedAt = time.Now()
			span.SetStatus(ports.SpanStatusError, stageResult.Error)
			return result

		case incident.StageSkipped:
			// Skipped stages never pause the run.
			p.logger.Info(ctx, "stage skipped", "stage", stage.Name())
			continue

		case incident.StageCompleted:
			p.logger.Info(ctx, "stage completed", "stage", stage.Name(), "duration_ms", stageResult.Duration().Milliseconds())
			if p.autoProceed {
				continue
			}
			if p.gate == nil || !p.gate.Decide(ctx, stage.Name(), stageResult) {
				// No decision available or proceed declined: pause here.
				// Accumulated results stay in the context so the run can
				// be resumed with the remaining stage list.
				p.logger.Info(ctx, "pipeline awaiting approval", "after_stage", stage.Name())
				result.Status = incident.RunAwaitingApproval
				span.SetAttribute("run_status", string(incident.RunAwaitingApproval))
				return result
			}
		}
	}

	result.Status = incident.RunCompleted
	result.CompletedAt = time.Now()
	span.SetAttribute("run_status", string(incident.RunCompleted))
	p.logger.Info(ctx, "pipeline completed", "incident_id", sctx.Incident.ID, "successful", result.Successful())

	return result
}

// Stages returns the configured stage list in execution order.
func (p *Pipeline) Stages() []Stage {
	return append([]Stage(nil), p.stages...)
}
