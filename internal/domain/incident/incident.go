package incident

import (
	"fmt"
	"strings"
	"time"
)

// Severity classifies how urgent an incident is. Values are ordered:
// critical > high > medium > low > info.
type Severity string

const (
	SeverityCritical Severity = "critical"
	SeverityHigh     Severity = "high"
	SeverityMedium   Severity = "medium"
	SeverityLow      Severity = "low"
	SeverityInfo     Severity = "info"
)

var severityRank = map[Severity]int{
	SeverityCritical: 4,
	SeverityHigh:     3,
	SeverityMedium:   2,
	SeverityLow:      1,
	SeverityInfo:     0,
}

// Rank returns the numeric weight of the severity, higher meaning more severe.
// Unknown values rank below info.
func (s Severity) Rank() int {
	if rank, ok := severityRank[s]; ok {
		return rank
	}
	return -1
}

// AtLeast reports whether the severity is at or above the given threshold.
func (s Severity) AtLeast(threshold Severity) bool {
	return s.Rank() >= threshold.Rank()
}

// ParseSeverity maps a string onto a known severity, defaulting to medium.
func ParseSeverity(value string) Severity {
	s := Severity(strings.ToLower(strings.TrimSpace(value)))
	if _, ok := severityRank[s]; ok {
		return s
	}
	return SeverityMedium
}

// Incident is the problem record driving one pipeline run. It is created once
// at pipeline entry and never mutated during the run; enrichment is additive.
type Incident struct {
	ID           string
	Title        string
	Description  string
	ErrorMessage string
	StackTrace   string
	Severity     Severity
	Source       string

	CreatedAt  time.Time
	DetectedAt time.Time

	Labels      map[string]string
	Annotations map[string]string

	AffectedFiles  []string
	RelatedChanges []string

	TraceID  string
	LogQuery string
}

const maxTitleLength = 100

// FromError builds an incident from a raw error message. The ID is derived
// from the detection timestamp and the title from the first line of the
// message, capped at 100 characters.
func FromError(errorMessage, stackTrace, source string, severity Severity) Incident {
	now := time.Now()

	title := errorMessage
	if idx := strings.IndexByte(title, '\n'); idx >= 0 {
		title = title[:idx]
	}
	if len(title) > maxTitleLength {
		title = title[:maxTitleLength]
	}

	return Incident{
		ID:           fmt.Sprintf("INC-%s", now.Format("20060102150405")),
		Title:        title,
		Description:  errorMessage,
		ErrorMessage: errorMessage,
		StackTrace:   stackTrace,
		Severity:     severity,
		Source:       source,
		CreatedAt:    now,
		DetectedAt:   now,
		Labels:       map[string]string{},
		Annotations:  map[string]string{},
	}
}

// AddAffectedFile records a file implicated in the incident. Duplicates are
// ignored so repeated enrichment passes stay additive.
func (i *Incident) AddAffectedFile(path string) {
	for _, existing := range i.AffectedFiles {
		if existing == path {
			return
		}
	}
	i.AffectedFiles = append(i.AffectedFiles, path)
}

// AddRelatedChange records a commit or change reference related to the incident.
func (i *Incident) AddRelatedChange(ref string) {
	for _, existing := range i.RelatedChanges {
		if existing == ref {
			return
		}
	}
	i.RelatedChanges = append(i.RelatedChanges, ref)
}

// Validate ensures the incident satisfies the minimal identity rules.
func (i Incident) Validate() error {
	if i.ID == "" {
		return newMissingFieldError("id")
	}
	if i.Title == "" {
		return newMissingFieldError("title")
	}
	return nil
}
