package ports

import (
	"context"

	"github.com/alexisbeaulieu97/coyote/internal/domain/incident"
)

// ApprovalGate decides whether a run may proceed past a completed stage. It
// is consulted only when auto-proceed is off and only for completed results;
// skipped stages never pause the run. Returning false halts the run in the
// awaiting-approval state without discarding accumulated results.
type ApprovalGate interface {
	Decide(ctx context.Context, stage string, result incident.StageResult) bool
}

// ApprovalGateFunc adapts a function to the ApprovalGate interface.
type ApprovalGateFunc func(ctx context.Context, stage string, result incident.StageResult) bool

// Decide implements ApprovalGate.
func (f ApprovalGateFunc) Decide(ctx context.Context, stage string, result incident.StageResult) bool {
	return f(ctx, stage, result)
}
