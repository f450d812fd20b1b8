package knowledge

import (
	"fmt"
	"time"
)

// DefaultConfidence is assigned when a caller or the backing document does
// not state one.
const DefaultConfidence = 0.8

// Lesson is a persisted knowledge unit extracted from a resolved incident.
// Its logical identity is the (incident id, ordinal) pair: reads reconstruct
// lessons by re-parsing the backing document, so the ID stays stable across
// repeated loads of the same document.
type Lesson struct {
	ID           string
	IncidentID   string
	Category     string
	Lesson       string
	Prevention   string
	RelatedFiles []string
	Tags         []string
	Confidence   float64
	CreatedAt    time.Time
}

func lessonID(incidentID string, ordinal int) string {
	return fmt.Sprintf("%s-L%d", incidentID, ordinal)
}
