package incident

// StageContext is the append-only, ordered history of a run. It carries the
// incident, every prior stage result, and a free-form metadata map. Results
// are never mutated after append; the context is discarded when the run ends.
type StageContext struct {
	Incident Incident
	Results  []StageResult
	Metadata map[string]string
}

// NewStageContext creates an empty context for the given incident.
func NewStageContext(inc Incident) *StageContext {
	return &StageContext{
		Incident: inc,
		Metadata: map[string]string{},
	}
}

// Append records a stage result. Stage names are unique within a run by
// construction since the pipeline never re-runs a stage.
func (c *StageContext) Append(result StageResult) {
	c.Results = append(c.Results, result)
}

// Result returns the first recorded result for the named stage.
func (c *StageContext) Result(stage string) (StageResult, bool) {
	for _, result := range c.Results {
		if result.Stage == stage {
			return result, true
		}
	}
	return StageResult{}, false
}

// Investigation returns the investigation stage result, if recorded.
func (c *StageContext) Investigation() (StageResult, bool) {
	return c.Result(StageInvestigate)
}

// Design returns the design stage result, if recorded.
func (c *StageContext) Design() (StageResult, bool) {
	return c.Result(StageDesign)
}

// Implementation returns the implementation stage result, if recorded.
func (c *StageContext) Implementation() (StageResult, bool) {
	return c.Result(StageImplement)
}
