package extract

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const sampleReport = `Some preamble the model added.

### Root Cause
The cache key omitted the tenant ID, so two tenants shared one entry.

It was introduced during the cache refactor.

### Affected Code
- File: internal/cache/key.go
- Line(s): 42-47
- Function: BuildKey

### Recommended Next Steps
1. Add the tenant ID to the cache key
2) Add a regression test
- Audit other cache keys

### Severity Assessment
High - cross-tenant data exposure
`

func TestSection(t *testing.T) {
	body, ok := Section(sampleReport, "Root Cause")
	require.True(t, ok)
	assert.Equal(t, "The cache key omitted the tenant ID, so two tenants shared one entry.\n\nIt was introduced during the cache refactor.", body)

	body, ok = Section(sampleReport, "Severity Assessment")
	require.True(t, ok)
	assert.Equal(t, "High - cross-tenant data exposure", body)
}

func TestSectionAbsent(t *testing.T) {
	_, ok := Section(sampleReport, "Tradeoffs")
	assert.False(t, ok)

	// Name must match the heading exactly; a longer heading is a different section.
	_, ok = Section("### Root Cause Analysis\ndeep dive\n", "Root Cause")
	assert.False(t, ok)
}

func TestSectionEmptyBody(t *testing.T) {
	body, ok := Section("### Root Cause\n\n### Next\nmore\n", "Root Cause")
	require.True(t, ok)
	assert.Empty(t, body)
}

func TestSectionStopsAtNextHeading(t *testing.T) {
	body, ok := Section(sampleReport, "Affected Code")
	require.True(t, ok)
	assert.Contains(t, body, "internal/cache/key.go")
	assert.NotContains(t, body, "Recommended")
}

// Re-embedding an extracted body under the same heading and extracting again
// must yield byte-identical text.
func TestSectionIdempotent(t *testing.T) {
	first, ok := Section(sampleReport, "Root Cause")
	require.True(t, ok)

	reembedded := "### Root Cause\n" + first + "\n### End\n"
	second, ok := Section(reembedded, "Root Cause")
	require.True(t, ok)
	assert.Equal(t, first, second)
}

func TestList(t *testing.T) {
	section, ok := Section(sampleReport, "Recommended Next Steps")
	require.True(t, ok)

	items := List(section)
	assert.Equal(t, []string{
		"Add the tenant ID to the cache key",
		"Add a regression test",
		"Audit other cache keys",
	}, items)
}

func TestListIgnoresProseAndEmptyItems(t *testing.T) {
	items := List("intro line\n1.\n- \n12) twelve\nplain text\n")
	assert.Equal(t, []string{"twelve"}, items)
}

func TestListEmptyInput(t *testing.T) {
	assert.Nil(t, List(""))
}

func TestField(t *testing.T) {
	value, ok := Field("**Category**: null-reference", "Category")
	require.True(t, ok)
	assert.Equal(t, "null-reference", value)

	_, ok = Field("**Category**: null-reference", "category")
	assert.False(t, ok, "key match is case-sensitive")

	_, ok = Field("Category: null-reference", "Category")
	assert.False(t, ok)

	value, ok = Field("**Lesson**: URLs may contain colons: beware", "Lesson")
	require.True(t, ok)
	assert.Equal(t, "URLs may contain colons: beware", value)
}

func TestKeyedFiles(t *testing.T) {
	files := KeyedFiles(sampleReport)
	assert.Equal(t, []string{"internal/cache/key.go"}, files)
}

func TestKeyedFilesTakesLastColonAndRequiresSeparator(t *testing.T) {
	text := "Note: File: pkg/a.go\n- File: b.go\nFile: \n"
	assert.Equal(t, []string{"pkg/a.go"}, KeyedFiles(text))
}

func TestChecklist(t *testing.T) {
	items := Checklist("- [ ] Add null checks\n- [x] Ship it\n- [ ]\nnot a box\n")
	assert.Equal(t, []string{"Add null checks", "Ship it"}, items)
}

func TestCodeBlocks(t *testing.T) {
	text := "### Files Modified\n\n#### internal/cache/key.go\n```go\nfunc BuildKey() {}\n```\n\n#### Notes\n```\nignored, heading has no path\n```\n\n#### pkg/other.go\n```go\nvar x = 1\nvar y = 2\n```\n"
	blocks := CodeBlocks(text)
	require.Len(t, blocks, 2)
	assert.Equal(t, "func BuildKey() {}", blocks["internal/cache/key.go"])
	assert.Equal(t, "var x = 1\nvar y = 2", blocks["pkg/other.go"])
}

func TestCommitMessage(t *testing.T) {
	text := "### Commit Message\n```\nfix: include tenant ID in cache key\n\nFixes: INC-1\n```\n"
	msg, ok := CommitMessage(text)
	require.True(t, ok)
	assert.Equal(t, "fix: include tenant ID in cache key\n\nFixes: INC-1", msg)

	_, ok = CommitMessage("no commit here")
	assert.False(t, ok)
}

func TestExtractionNeverPanicsOnHostileInput(t *testing.T) {
	inputs := []string{"", "###", "### ", ":::", "**:**:", "- [", "```", "#### /"}
	for _, input := range inputs {
		Section(input, "Root Cause")
		List(input)
		Field(input, "Key")
		KeyedFiles(input)
		Checklist(input)
		CodeBlocks(input)
		CommitMessage(input)
	}
}
