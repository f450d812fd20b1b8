package stages

import (
	"context"
	"fmt"
	"strings"

	"github.com/alexisbeaulieu97/coyote/internal/domain/incident"
	"github.com/alexisbeaulieu97/coyote/internal/extract"
	"github.com/alexisbeaulieu97/coyote/internal/infrastructure/insight"
	"github.com/alexisbeaulieu97/coyote/internal/infrastructure/logging"
	"github.com/alexisbeaulieu97/coyote/internal/knowledge"
	"github.com/alexisbeaulieu97/coyote/internal/ports"
)

// Learner closes the loop: it distills the run into lessons, writes them to
// the knowledge store, and forwards them to the insight sink. It runs even
// after upstream failures since a failed fix still teaches something.
type Learner struct {
	gen    ports.Generator
	store  *knowledge.Store
	sink   ports.InsightSink
	logger ports.Logger
}

// NewLearner builds the knowledge-capture stage. A nil store disables
// persistence; a nil sink disables insight emission.
func NewLearner(gen ports.Generator, store *knowledge.Store, sink ports.InsightSink, logger ports.Logger) *Learner {
	if sink == nil {
		sink = insight.NewNoOpSink()
	}
	if logger == nil {
		logger = logging.NewNoOpLogger()
	}
	return &Learner{gen: gen, store: store, sink: sink, logger: logger}
}

// Name implements engine.Stage.
func (s *Learner) Name() string { return incident.StageLearn }

// ShouldSkip implements engine.Stage.
func (s *Learner) ShouldSkip(*incident.StageContext) bool { return false }

type learnData struct {
	Incident       incident.Incident
	Investigation  string
	FixDesign      string
	Implementation string
	TestResults    string
}

// lessonBlock is one `#### Lesson` block parsed from the narrative.
type lessonBlock struct {
	Lesson       string
	Prevention   string
	RelatedFiles []string
	Tags         []string
}

// Execute implements engine.Stage.
func (s *Learner) Execute(ctx context.Context, sctx *incident.StageContext) (incident.StageResult, error) {
	details := func(stage, fallback string) string {
		if result, ok := sctx.Result(stage); ok && result.Details != "" {
			return result.Details
		}
		return fallback
	}

	prompt, err := render(learnPrompt, learnData{
		Incident:       sctx.Incident,
		Investigation:  details(incident.StageInvestigate, "No investigation"),
		FixDesign:      details(incident.StageDesign, "No design"),
		Implementation: details(incident.StageImplement, "No implementation"),
		TestResults:    details(incident.StageTest, "No test results"),
	})
	if err != nil {
		return incident.StageResult{}, err
	}

	response, err := s.gen.Complete(ctx, prompt)
	if err != nil {
		return incident.StageResult{}, incident.NewGeneratorError("knowledge extraction call failed", err)
	}

	category := extractCategory(response)
	blocks := parseLessonBlocks(response)
	checklist, _ := extract.Section(response, "Prevention Checklist")

	lessons := make([]string, 0, len(blocks))
	for _, block := range blocks {
		lessons = append(lessons, block.Lesson)
		s.persist(ctx, sctx.Incident.ID, category, block)
	}

	return incident.StageResult{
		Summary:         fmt.Sprintf("captured %d lessons in category: %s", len(blocks), category),
		Details:         response,
		Category:        category,
		Lessons:         lessons,
		PreventionSteps: extract.Checklist(checklist),
	}, nil
}

// persist writes one lesson to the store and forwards it to the sink. Both
// are best-effort: a persistence or emission failure is logged and never
// fails the stage.
func (s *Learner) persist(ctx context.Context, incidentID, category string, block lessonBlock) {
	confidence := knowledge.DefaultConfidence

	if s.store != nil {
		lesson, err := s.store.Add(incidentID, category, block.Lesson, block.Prevention, block.RelatedFiles, block.Tags, knowledge.DefaultConfidence)
		if err != nil {
			s.logger.Warn(ctx, "lesson persistence failed", "incident_id", incidentID, "error", err)
		} else {
			confidence = lesson.Confidence
		}
	}

	err := s.sink.Emit(ctx, ports.Insight{
		IncidentID: incidentID,
		Category:   category,
		Summary:    block.Lesson,
		Prevention: block.Prevention,
		AppliesTo:  block.RelatedFiles,
		Tags:       block.Tags,
		Confidence: confidence,
	})
	if err != nil {
		s.logger.Warn(ctx, "insight emission failed", "incident_id", incidentID, "error", err)
	}
}

// parseLessonBlocks reads the `#### Lesson N` blocks. Blocks with an empty
// lesson line are dropped.
func parseLessonBlocks(text string) []lessonBlock {
	var blocks []lessonBlock
	var current *lessonBlock

	flush := func() {
		if current != nil && current.Lesson != "" {
			blocks = append(blocks, *current)
		}
		current = nil
	}

	for _, line := range strings.Split(text, "\n") {
		if strings.HasPrefix(line, "#### Lesson") {
			flush()
			current = &lessonBlock{}
			continue
		}
		if strings.HasPrefix(line, "###") {
			flush()
			continue
		}
		if current == nil {
			continue
		}
		if value, ok := extract.Field(line, "Lesson"); ok {
			current.Lesson = value
		}
		if value, ok := extract.Field(line, "Prevention"); ok {
			current.Prevention = value
		}
		if value, ok := extract.Field(line, "Related Files"); ok {
			current.RelatedFiles = splitList(value)
		}
		if value, ok := extract.Field(line, "Tags"); ok {
			current.Tags = splitList(value)
		}
	}
	flush()

	return blocks
}

func splitList(value string) []string {
	var out []string
	for _, part := range strings.Split(value, ",") {
		if trimmed := strings.TrimSpace(part); trimmed != "" {
			out = append(out, trimmed)
		}
	}
	return out
}

// extractCategory returns the first non-empty line of the Category section,
// or "unknown" when the section is absent or empty.
func extractCategory(text string) string {
	section, ok := extract.Section(text, "Category")
	if !ok {
		return "unknown"
	}
	if category := firstLine(section); category != "" {
		return category
	}
	return "unknown"
}
