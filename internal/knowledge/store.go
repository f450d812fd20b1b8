// Package knowledge persists lessons learned from resolved incidents in a
// human-readable markdown document. The document is the source of truth: the
// store re-renders the whole file on every addition and reconstructs its
// in-memory view by parsing the file on construction.
package knowledge

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/alexisbeaulieu97/coyote/internal/domain/incident"
	"github.com/alexisbeaulieu97/coyote/internal/extract"
	"github.com/alexisbeaulieu97/coyote/internal/infrastructure/logging"
	"github.com/alexisbeaulieu97/coyote/internal/ports"
)

const documentHeader = "# Lessons Learned\n\nKnowledge captured from resolved incidents.\n"

// Store reads and writes the lessons-learned document. It is not safe for
// concurrent use; each pipeline run owns its store.
type Store struct {
	path    string
	logger  ports.Logger
	lessons []Lesson

	// ordinals tracks the next lesson ordinal per incident so IDs stay
	// stable across loads of the same document.
	ordinals map[string]int
}

// NewStore builds a store backed by the document at path. A missing or
// malformed document yields an empty store; construction never fails.
func NewStore(path string, logger ports.Logger) *Store {
	if logger == nil {
		logger = logging.NewNoOpLogger()
	}
	s := &Store{
		path:     path,
		logger:   logger,
		ordinals: make(map[string]int),
	}
	s.load()
	return s
}

func (s *Store) load() {
	data, err := os.ReadFile(s.path)
	if err != nil {
		if !os.IsNotExist(err) {
			s.logger.Warn(context.Background(), "lessons document unreadable, starting empty", "path", s.path, "error", err)
		}
		return
	}
	s.lessons = s.parse(string(data))
}

// parse reconstructs lessons from the document. Unrecognized blocks are
// skipped rather than failing the load.
func (s *Store) parse(text string) []Lesson {
	var lessons []Lesson
	blocks := splitBlocks(text)
	for _, block := range blocks {
		lesson, ok := s.parseBlock(block)
		if !ok {
			continue
		}
		s.ordinals[lesson.IncidentID]++
		lesson.ID = lessonID(lesson.IncidentID, s.ordinals[lesson.IncidentID])
		lessons = append(lessons, lesson)
	}
	return lessons
}

// splitBlocks returns the text of each "## <incident>: ..." block, in
// document order.
func splitBlocks(text string) []string {
	var blocks []string
	var current []string
	for _, line := range strings.Split(text, "\n") {
		if strings.HasPrefix(line, "## ") {
			if len(current) > 0 {
				blocks = append(blocks, strings.Join(current, "\n"))
			}
			current = []string{line}
			continue
		}
		if len(current) > 0 {
			current = append(current, line)
		}
	}
	if len(current) > 0 {
		blocks = append(blocks, strings.Join(current, "\n"))
	}
	return blocks
}

// parseBlock reads one lesson block. Field lines may appear in any order and
// the optional ones may be absent.
func (s *Store) parseBlock(block string) (Lesson, bool) {
	lines := strings.Split(block, "\n")
	heading := strings.TrimPrefix(lines[0], "## ")
	incidentID, _, found := strings.Cut(heading, ":")
	incidentID = strings.TrimSpace(incidentID)
	if !found || incidentID == "" {
		return Lesson{}, false
	}

	lesson := Lesson{
		IncidentID: incidentID,
		Confidence: DefaultConfidence,
	}
	for _, line := range lines[1:] {
		if value, ok := extract.Field(line, "Date"); ok {
			if parsed, err := time.Parse("2006-01-02", value); err == nil {
				lesson.CreatedAt = parsed
			}
		}
		if value, ok := extract.Field(line, "Category"); ok {
			lesson.Category = value
		}
		if value, ok := extract.Field(line, "Lesson"); ok {
			lesson.Lesson = value
		}
		if value, ok := extract.Field(line, "Prevention"); ok {
			lesson.Prevention = value
		}
		if value, ok := extract.Field(line, "Related Files"); ok {
			lesson.RelatedFiles = splitCommaList(value)
		}
		if value, ok := extract.Field(line, "Tags"); ok {
			lesson.Tags = splitCommaList(value)
		}
	}
	if lesson.Lesson == "" {
		return Lesson{}, false
	}
	return lesson, true
}

func splitCommaList(value string) []string {
	var out []string
	for _, part := range strings.Split(value, ",") {
		if trimmed := strings.TrimSpace(part); trimmed != "" {
			out = append(out, trimmed)
		}
	}
	return out
}

// Add creates a lesson, assigns it the next ordinal id for its incident, and
// rewrites the backing document. Confidence outside (0, 1] falls back to
// DefaultConfidence. The lesson is always returned; a non-nil error reports
// that the rewrite failed and the document is stale.
func (s *Store) Add(incidentID, category, lessonText, prevention string, relatedFiles, tags []string, confidence float64) (Lesson, error) {
	if confidence <= 0 || confidence > 1 {
		confidence = DefaultConfidence
	}
	s.ordinals[incidentID]++
	lesson := Lesson{
		ID:           lessonID(incidentID, s.ordinals[incidentID]),
		IncidentID:   incidentID,
		Category:     category,
		Lesson:       lessonText,
		Prevention:   prevention,
		RelatedFiles: relatedFiles,
		Tags:         tags,
		Confidence:   confidence,
		CreatedAt:    time.Now(),
	}
	s.lessons = append(s.lessons, lesson)

	if err := s.save(); err != nil {
		s.logger.Warn(context.Background(), "lesson captured but document rewrite failed", "lesson_id", lesson.ID, "error", err)
		return lesson, incident.NewPersistenceError(
			fmt.Sprintf("write lessons document %s", s.path), err)
	}
	return lesson, nil
}

func (s *Store) save() error {
	if dir := filepath.Dir(s.path); dir != "." && dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return err
		}
	}
	return os.WriteFile(s.path, []byte(s.document()), 0o644)
}

// document renders the full markdown document from the in-memory lessons.
func (s *Store) document() string {
	var b strings.Builder
	b.WriteString(documentHeader)
	for _, lesson := range s.lessons {
		b.WriteString("\n## ")
		b.WriteString(lesson.IncidentID)
		b.WriteString(": Lesson\n")
		fmt.Fprintf(&b, "**Date**: %s\n", lesson.CreatedAt.Format("2006-01-02"))
		fmt.Fprintf(&b, "**Category**: %s\n", lesson.Category)
		fmt.Fprintf(&b, "**Lesson**: %s\n", lesson.Lesson)
		fmt.Fprintf(&b, "**Prevention**: %s\n", lesson.Prevention)
		if len(lesson.RelatedFiles) > 0 {
			fmt.Fprintf(&b, "**Related Files**: %s\n", strings.Join(lesson.RelatedFiles, ", "))
		}
		if len(lesson.Tags) > 0 {
			fmt.Fprintf(&b, "**Tags**: %s\n", strings.Join(lesson.Tags, ", "))
		}
		b.WriteString("\n---\n")
	}
	return b.String()
}

// Filter narrows a query. All populated dimensions must match; an empty
// filter matches everything.
type Filter struct {
	Categories []string
	Files      []string
	Tags       []string
	Text       string

	// Limit caps the result count; zero or negative means unlimited.
	Limit int
}

// Query returns lessons matching every populated filter dimension, in
// insertion order.
func (s *Store) Query(f Filter) []Lesson {
	var out []Lesson
	for _, lesson := range s.lessons {
		if !f.matches(lesson) {
			continue
		}
		out = append(out, lesson)
		if f.Limit > 0 && len(out) >= f.Limit {
			break
		}
	}
	return out
}

func (f Filter) matches(lesson Lesson) bool {
	if len(f.Categories) > 0 && !containsString(f.Categories, lesson.Category) {
		return false
	}
	if len(f.Tags) > 0 && !anyOverlap(f.Tags, lesson.Tags) {
		return false
	}
	if len(f.Files) > 0 && !anyFileMatch(f.Files, lesson.RelatedFiles) {
		return false
	}
	if f.Text != "" {
		needle := strings.ToLower(f.Text)
		if !strings.Contains(strings.ToLower(lesson.Lesson), needle) &&
			!strings.Contains(strings.ToLower(lesson.Prevention), needle) {
			return false
		}
	}
	return true
}

func containsString(haystack []string, needle string) bool {
	for _, s := range haystack {
		if s == needle {
			return true
		}
	}
	return false
}

func anyOverlap(wanted, have []string) bool {
	for _, w := range wanted {
		if containsString(have, w) {
			return true
		}
	}
	return false
}

// anyFileMatch treats a requested path as matching when it is a substring of
// any related file, so "auth" matches "internal/auth/session.go".
func anyFileMatch(wanted, have []string) bool {
	for _, w := range wanted {
		for _, h := range have {
			if strings.Contains(h, w) {
				return true
			}
		}
	}
	return false
}

// GetByIncident returns all lessons captured for one incident, in order.
func (s *Store) GetByIncident(incidentID string) []Lesson {
	var out []Lesson
	for _, lesson := range s.lessons {
		if lesson.IncidentID == incidentID {
			out = append(out, lesson)
		}
	}
	return out
}

// Categories returns the distinct categories present, sorted.
func (s *Store) Categories() []string {
	seen := make(map[string]struct{})
	for _, lesson := range s.lessons {
		if lesson.Category != "" {
			seen[lesson.Category] = struct{}{}
		}
	}
	out := make([]string, 0, len(seen))
	for category := range seen {
		out = append(out, category)
	}
	sort.Strings(out)
	return out
}

// Count reports how many lessons the store holds.
func (s *Store) Count() int {
	return len(s.lessons)
}

// Path reports the backing document location.
func (s *Store) Path() string {
	return s.path
}
