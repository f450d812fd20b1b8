package knowledge

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTempStore(t *testing.T) *Store {
	t.Helper()
	return NewStore(filepath.Join(t.TempDir(), "LESSONS_LEARNED.md"), nil)
}

func TestStoreStartsEmptyWhenDocumentMissing(t *testing.T) {
	store := newTempStore(t)
	assert.Equal(t, 0, store.Count())
	assert.Empty(t, store.Query(Filter{}))
}

func TestAddAssignsOrdinalIDsPerIncident(t *testing.T) {
	store := newTempStore(t)

	first, err := store.Add("INC-1", "config", "validate inputs", "add schema checks", nil, nil, DefaultConfidence)
	require.NoError(t, err)
	second, err := store.Add("INC-1", "testing", "cover edge cases", "property tests", nil, nil, DefaultConfidence)
	require.NoError(t, err)
	other, err := store.Add("INC-2", "deploy", "stage first", "canary rollout", nil, nil, DefaultConfidence)
	require.NoError(t, err)

	assert.Equal(t, "INC-1-L1", first.ID)
	assert.Equal(t, "INC-1-L2", second.ID)
	assert.Equal(t, "INC-2-L1", other.ID)
}

func TestRoundTripThroughDocument(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "LESSONS_LEARNED.md")

	store := NewStore(path, nil)
	added, err := store.Add(
		"INC-20240101120000",
		"validation",
		"Null payloads reach the handler",
		"Reject empty bodies at the gateway",
		[]string{"internal/api/handler.go", "internal/api/middleware.go"},
		[]string{"nil-check", "gateway"},
		DefaultConfidence,
	)
	require.NoError(t, err)

	reloaded := NewStore(path, nil)
	require.Equal(t, 1, reloaded.Count())

	got := reloaded.GetByIncident("INC-20240101120000")
	require.Len(t, got, 1)
	assert.Equal(t, added.ID, got[0].ID)
	assert.Equal(t, added.Category, got[0].Category)
	assert.Equal(t, added.Lesson, got[0].Lesson)
	assert.Equal(t, added.Prevention, got[0].Prevention)
	assert.ElementsMatch(t, added.RelatedFiles, got[0].RelatedFiles)
	assert.ElementsMatch(t, added.Tags, got[0].Tags)
}

func TestParseToleratesReorderedAndPartialBlocks(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "LESSONS_LEARNED.md")
	doc := `# Lessons Learned

## INC-7: Lesson
**Lesson**: Order of fields does not matter
**Category**: parsing
**Date**: 2024-03-05
**Prevention**: Parse fields independently

---

## INC-8: Lesson
**Lesson**: Optional lines may be absent entirely

---

## not-a-lesson-block
**Category**: orphan

---
`
	require.NoError(t, os.WriteFile(path, []byte(doc), 0o644))

	store := NewStore(path, nil)
	require.Equal(t, 2, store.Count())

	seven := store.GetByIncident("INC-7")
	require.Len(t, seven, 1)
	assert.Equal(t, "parsing", seven[0].Category)
	assert.Equal(t, "2024-03-05", seven[0].CreatedAt.Format("2006-01-02"))

	eight := store.GetByIncident("INC-8")
	require.Len(t, eight, 1)
	assert.Empty(t, eight[0].Category)
	assert.Empty(t, eight[0].RelatedFiles)
}

func TestStoreToleratesMalformedDocument(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "LESSONS_LEARNED.md")
	require.NoError(t, os.WriteFile(path, []byte("complete garbage\n:::\n"), 0o644))

	store := NewStore(path, nil)
	assert.Equal(t, 0, store.Count())

	// The store must still accept new lessons.
	_, err := store.Add("INC-9", "recovery", "start fresh", "validate on load", nil, nil, DefaultConfidence)
	assert.NoError(t, err)
}

func TestQueryFiltersAreConjunctive(t *testing.T) {
	store := newTempStore(t)
	mustAdd := func(incidentID, category, lesson string, files, tags []string) {
		t.Helper()
		_, err := store.Add(incidentID, category, lesson, "prevent", files, tags, DefaultConfidence)
		require.NoError(t, err)
	}

	mustAdd("INC-1", "config", "missing env var broke startup", []string{"internal/config/loader.go"}, []string{"env"})
	mustAdd("INC-2", "config", "stale cache served old flags", []string{"internal/cache/flags.go"}, []string{"cache"})
	mustAdd("INC-3", "testing", "flaky test masked regression", []string{"internal/config/loader.go"}, []string{"flake"})

	got := store.Query(Filter{Categories: []string{"config"}, Files: []string{"internal/config"}})
	require.Len(t, got, 1)
	assert.Equal(t, "INC-1", got[0].IncidentID)

	// Text search is case-insensitive over lesson and prevention.
	got = store.Query(Filter{Text: "STALE CACHE"})
	require.Len(t, got, 1)
	assert.Equal(t, "INC-2", got[0].IncidentID)

	// Tag match requires overlap with requested tags.
	assert.Len(t, store.Query(Filter{Tags: []string{"env", "flake"}}), 2)
}

func TestQueryPreservesInsertionOrderAndHonorsLimit(t *testing.T) {
	store := newTempStore(t)
	for _, id := range []string{"INC-A", "INC-B", "INC-C"} {
		_, err := store.Add(id, "ops", "lesson for "+id, "prevent", nil, nil, DefaultConfidence)
		require.NoError(t, err)
	}

	got := store.Query(Filter{Limit: 2})
	require.Len(t, got, 2)
	assert.Equal(t, "INC-A", got[0].IncidentID)
	assert.Equal(t, "INC-B", got[1].IncidentID)
}

func TestCategoriesAreDistinctAndSorted(t *testing.T) {
	store := newTempStore(t)
	for _, category := range []string{"testing", "config", "testing"} {
		_, err := store.Add("INC-1", category, "lesson", "prevent", nil, nil, DefaultConfidence)
		require.NoError(t, err)
	}

	assert.Equal(t, []string{"config", "testing"}, store.Categories())
}

func TestAddHonorsCallerConfidence(t *testing.T) {
	store := newTempStore(t)

	high, err := store.Add("INC-1", "ops", "redundant probes catch flaps", "double-check alerts", nil, nil, 0.95)
	require.NoError(t, err)
	assert.Equal(t, 0.95, high.Confidence)

	// Out-of-range scores fall back to the default.
	zero, err := store.Add("INC-1", "ops", "unscored lesson", "prevent", nil, nil, 0)
	require.NoError(t, err)
	assert.Equal(t, DefaultConfidence, zero.Confidence)

	over, err := store.Add("INC-1", "ops", "overscored lesson", "prevent", nil, nil, 1.5)
	require.NoError(t, err)
	assert.Equal(t, DefaultConfidence, over.Confidence)
}

func TestAddReturnsLessonEvenWhenWriteFails(t *testing.T) {
	dir := t.TempDir()
	// Point the document at a path whose parent is a file, so MkdirAll fails.
	blocker := filepath.Join(dir, "blocker")
	require.NoError(t, os.WriteFile(blocker, []byte("x"), 0o644))
	store := NewStore(filepath.Join(blocker, "nested", "LESSONS.md"), nil)

	lesson, err := store.Add("INC-1", "ops", "lesson survives write failure", "prevent", nil, nil, DefaultConfidence)
	assert.Error(t, err)
	assert.Equal(t, "INC-1-L1", lesson.ID)
	assert.Equal(t, 1, store.Count())
}
