package incident

import "time"

// Stage names for the built-in resolution workflow. Stage lookups in a
// StageContext key off these values.
const (
	StageInvestigate = "investigate"
	StageDesign      = "design"
	StageImplement   = "implement"
	StageTest        = "test"
	StageLearn       = "learn"
)

// StageStatus represents the terminal status of an executed stage.
type StageStatus string

const (
	StageCompleted StageStatus = "completed"
	StageFailed    StageStatus = "failed"
	StageSkipped   StageStatus = "skipped"
)

// RunStatus represents the status of a whole pipeline run. A run is never
// "skipped"; skipping only exists at the stage level.
type RunStatus string

const (
	RunPending          RunStatus = "pending"
	RunRunning          RunStatus = "running"
	RunCompleted        RunStatus = "completed"
	RunFailed           RunStatus = "failed"
	RunAwaitingApproval RunStatus = "awaiting_approval"
)

// StageResult captures the outcome of a single stage execution. Stage-specific
// fields are only populated on a completed result; failed and skipped results
// carry at most an error message.
type StageResult struct {
	Stage       string
	Status      StageStatus
	StartedAt   time.Time
	CompletedAt time.Time

	// Summary is a short human-readable line; Details holds the raw
	// narrative returned by the generator.
	Summary string
	Details string

	// Investigation findings.
	RootCause         string
	AffectedCode      []string
	OriginatingChange string

	// Fix design.
	FixSpecification string
	Tradeoffs        []string
	Alternatives     []string

	// Implementation output: file path to proposed content.
	CodeChanges   map[string]string
	CommitMessage string

	// Validation verdict.
	TestsPassed    *bool
	Recommendation string
	RegressionRisk string

	// Knowledge capture.
	Category        string
	Lessons         []string
	PreventionSteps []string

	Error string

	// Retries is a policy hook; the engine itself never increments it.
	Retries int
}

// NewSkippedResult builds the uniform result for a stage whose skip predicate
// fired. No stage-specific fields are set.
func NewSkippedResult(stage string, startedAt time.Time) StageResult {
	return StageResult{
		Stage:       stage,
		Status:      StageSkipped,
		StartedAt:   startedAt,
		CompletedAt: time.Now(),
		Summary:     "stage " + stage + " skipped",
	}
}

// NewFailedResult builds the uniform result for a stage whose body returned an
// error. The error's message is preserved; nothing else is.
func NewFailedResult(stage string, startedAt time.Time, err error) StageResult {
	message := ""
	if err != nil {
		message = err.Error()
	}
	return StageResult{
		Stage:       stage,
		Status:      StageFailed,
		StartedAt:   startedAt,
		CompletedAt: time.Now(),
		Summary:     "stage " + stage + " failed",
		Error:       message,
	}
}

// Finish stamps the completion timestamp, never letting it precede the start.
func (r *StageResult) Finish(completedAt time.Time) {
	if completedAt.Before(r.StartedAt) {
		completedAt = r.StartedAt
	}
	r.CompletedAt = completedAt
}

// Duration returns the elapsed wall-clock time, or zero when still running.
func (r StageResult) Duration() time.Duration {
	if r.CompletedAt.IsZero() {
		return 0
	}
	return r.CompletedAt.Sub(r.StartedAt)
}

// IsCompleted reports whether the stage finished successfully.
func (r StageResult) IsCompleted() bool { return r.Status == StageCompleted }

// IsFailure reports whether the stage failed.
func (r StageResult) IsFailure() bool { return r.Status == StageFailed }

// IsSkipped reports whether the stage was skipped.
func (r StageResult) IsSkipped() bool { return r.Status == StageSkipped }

// PipelineResult aggregates the outcome of one pipeline run.
type PipelineResult struct {
	Incident    Incident
	Stages      []StageResult
	Status      RunStatus
	StartedAt   time.Time
	CompletedAt time.Time
}

// Successful reports whether every constituent stage completed or was skipped.
func (r PipelineResult) Successful() bool {
	for _, stage := range r.Stages {
		if stage.Status != StageCompleted && stage.Status != StageSkipped {
			return false
		}
	}
	return true
}

// FailedStage returns the first failed stage, if any.
func (r PipelineResult) FailedStage() (StageResult, bool) {
	for _, stage := range r.Stages {
		if stage.IsFailure() {
			return stage, true
		}
	}
	return StageResult{}, false
}

// Duration returns the elapsed run time, or zero when the run has not reached
// a completion timestamp.
func (r PipelineResult) Duration() time.Duration {
	if r.CompletedAt.IsZero() {
		return 0
	}
	return r.CompletedAt.Sub(r.StartedAt)
}
