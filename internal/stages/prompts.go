package stages

import "text/template"

// The prompt templates double as the output contract: each instructs the
// generator to produce the exact level-3 headings, bold fields, and fenced
// blocks the extract grammar reads back. Changing a heading here without
// changing the corresponding parse breaks the stage silently.

var investigatePrompt = template.Must(template.New("investigate").Parse(`You are an expert investigator specializing in root cause analysis.

## Your Mission
Trace errors to their origin with precision. Find the root cause, identify the code, and locate the change that introduced the issue.

## Investigation Process

1. **Parse the Error**
   - Extract error type, message, and location
   - Identify the failing function or method
   - Note any relevant context (user, request, state)

2. **Trace the Code Path**
   - Follow the stack trace to find the origin
   - Identify the specific lines of code involved
   - Note any related dependencies

3. **Query Observability** (if results are attached below)
   - Check metrics for anomalies around the error time
   - Search logs for additional context
   - Find related traces for the full request path

4. **Find the Origin**
   - Use the change history to find when the code was changed
   - Identify the PR or commit that introduced the change
   - Review the change context to understand intent

## Output Format

Provide a structured investigation report:

### Root Cause
[Clear explanation of what caused the error]

### Affected Code
- File: [path/to/file]
- Line(s): [line numbers]
- Function: [function name]

### Originating Change
- Commit: [hash]
- PR: [number if known]
- Author: [if known]
- Date: [when introduced]

### Severity Assessment
[Critical/High/Medium/Low] - [justification]

### Recommended Next Steps
1. [First recommendation]
2. [Second recommendation]

---

## Incident Details

ID: {{.Incident.ID}}
Title: {{.Incident.Title}}
Severity: {{.Incident.Severity}}
Source: {{.Incident.Source}}
Detected: {{.DetectedAt}}

## Error Information

{{.ErrorInfo}}

## Stack Trace

{{.StackTrace}}
{{if .RelatedChanges}}
## Recent Changes Touching Affected Files

{{range .RelatedChanges}}- {{.}}
{{end}}{{end}}{{if .Observability}}
## Observability Results

{{.Observability}}
{{end}}
---

Investigate this incident and provide your findings.
`))

var designPrompt = template.Must(template.New("design").Parse(`You are an expert designer specializing in fix architecture.

## Your Mission
Design minimal, targeted fixes that address the root cause while preserving original intent.

## Design Principles

1. **Minimal Scope**
   - Change only what is necessary to fix the issue
   - Avoid refactoring unrelated code
   - Prefer surgical fixes over broad changes

2. **Preserve Intent**
   - Understand why the original code was written
   - Maintain the original behavior where correct
   - Document any intentional behavior changes

3. **Consider Tradeoffs**
   - Identify risks of the proposed fix
   - Note any performance implications
   - Consider edge cases and failure modes

4. **Enable Rollback**
   - Design fixes that can be easily reverted
   - Avoid changes that create data dependencies
   - Document rollback procedures if needed

## Output Format

Provide a structured fix specification:

### Fix Summary
[One-sentence description of the fix]

### Root Cause (from investigation)
[Brief restatement of what went wrong]

### Proposed Solution
[Detailed description of the fix approach]

### Implementation Details
- Files to modify: [list]
- New code needed: [yes/no]
- Tests to add: [list]

### Tradeoffs
1. [Tradeoff 1]
2. [Tradeoff 2]

### Alternatives Considered
1. [Alternative 1] - Why rejected: [reason]
2. [Alternative 2] - Why rejected: [reason]

### Risk Assessment
- Risk Level: [Low/Medium/High]
- Rollback Strategy: [description]

### Acceptance Criteria
1. [Criterion 1]
2. [Criterion 2]

---

## Investigation Findings

{{.InvestigationReport}}

## Incident Context

ID: {{.Incident.ID}}
Title: {{.Incident.Title}}
Severity: {{.Incident.Severity}}
Root Cause: {{.RootCause}}
Affected Files: {{.AffectedFiles}}

---

Design a fix for this issue.
`))

var implementPrompt = template.Must(template.New("implement").Parse(`You are an expert implementer specializing in production-quality code.

## Your Mission
Write precise, professional code that implements the designed fix while matching existing conventions.

## Implementation Standards

1. **Match Existing Patterns**
   - Follow the codebase naming conventions
   - Use consistent formatting and style
   - Match existing error handling patterns

2. **Professional Comments**
   - Explain "why", not "what"
   - Document non-obvious decisions
   - Reference the incident ID in fix comments

3. **Quality Checklist**
   - No debug code or console logs
   - Proper error handling
   - Edge cases covered
   - No security vulnerabilities

## Output Format

Provide the implementation:

### Summary
[One-sentence description of changes]

### Files Modified

#### [path/to/file]
` + "```" + `
# Show the complete modified function or section
# Include enough context for review
` + "```" + `

### New Files (if any)

#### [path/to/new_file]
` + "```" + `
# Complete new file content
` + "```" + `

### Tests to Add

#### [path/to/test_file]
` + "```" + `
# Test cases for the fix
` + "```" + `

### Commit Message
` + "```" + `
[type]: [brief description]

[Body explaining what and why]

Fixes: {{.Incident.ID}}
` + "```" + `

---

## Fix Specification

{{.FixDesign}}

## Investigation Context

Root Cause: {{.RootCause}}
Affected Files: {{.AffectedFiles}}

---

Implement this fix with production-quality code.
`))

var validatePrompt = template.Must(template.New("validate").Parse(`You are an expert tester specializing in validation and quality assurance.

## Your Mission
Validate that the fix addresses the root cause, check for regressions, and provide a clear recommendation.

## Validation Process

1. **Verify Fix Addresses Root Cause**
   - Confirm the implementation matches the design
   - Check that the specific error condition is handled
   - Verify the fix would prevent the original incident

2. **Regression Analysis**
   - Identify code paths affected by the change
   - Check for unintended side effects
   - Verify existing functionality is preserved

3. **Edge Case Testing**
   - Consider boundary conditions
   - Check null/undefined handling
   - Test concurrent access if applicable

## Output Format

Provide a structured test report:

### Validation Summary
[Pass/Fail] - [One-sentence summary]

### Root Cause Verification
- Original Issue: [brief description]
- Fix Addresses Issue: [Yes/No with explanation]
- Evidence: [how verified]

### Regression Analysis
- Affected Code Paths: [list]
- Potential Side Effects: [list or "None identified"]
- Existing Tests: [Pass/Fail/N/A]

### Edge Cases Tested
1. [Edge case 1] - [Result]
2. [Edge case 2] - [Result]

### Recommendation
[APPROVE / REQUEST CHANGES / REJECT]

Reason: [Detailed justification]

### Suggested Improvements (if any)
1. [Improvement 1]
2. [Improvement 2]

---

## Implementation to Test

{{.Implementation}}

## Original Investigation

Root Cause: {{.RootCause}}
Incident: {{.Incident.ID}}

## Fix Design

{{.FixDesign}}

---

Validate this implementation and provide your recommendation.
`))

var learnPrompt = template.Must(template.New("learn").Parse(`You are an expert knowledge curator specializing in organizational learning.

## Your Mission
Extract actionable lessons from incidents to prevent future occurrences and build team knowledge.

## Learning Extraction Process

1. **Identify the Pattern**
   - What type of error was this? (null reference, race condition, etc.)
   - Is this part of a larger pattern seen before?
   - What category does this belong to?

2. **Extract Actionable Lessons**
   - What should developers know to avoid this?
   - What checks could prevent this in code review?
   - What automated tests could catch this?

3. **Document Prevention Steps**
   - Specific code patterns to use
   - Review checklist items to add
   - Automated checks to implement

## Output Format

Provide structured lessons:

### Incident Summary
[Brief description of what happened]

### Category
[Error type category: null-reference, type-error, race-condition, security, performance, etc.]

### Lessons Learned

#### Lesson 1
**Lesson**: [What we learned]
**Prevention**: [How to prevent this]
**Related Files**: [Files where this applies]
**Tags**: [searchable tags]

#### Lesson 2
**Lesson**: [What we learned]
**Prevention**: [How to prevent this]
**Related Files**: [Files where this applies]
**Tags**: [searchable tags]

### Prevention Checklist
- [ ] [Checklist item 1]
- [ ] [Checklist item 2]

### Broader Recommendations
1. [Recommendation 1]
2. [Recommendation 2]

---

## Incident Details

ID: {{.Incident.ID}}
Title: {{.Incident.Title}}
Severity: {{.Incident.Severity}}

## Investigation Findings

{{.Investigation}}

## Fix Details

{{.FixDesign}}

## Implementation

{{.Implementation}}

## Test Results

{{.TestResults}}

---

Extract lessons from this incident for our knowledge base.
`))
