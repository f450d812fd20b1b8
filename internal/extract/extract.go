// Package extract implements the text grammar shared by the pipeline stages
// and the knowledge store. Generator output is untrusted free text, so every
// function here is pure and total: absence is an empty or second return value,
// never an error and never a panic.
package extract

import (
	"regexp"
	"strings"
)

const headingPrefix = "### "

var listItemPattern = regexp.MustCompile(`^(?:\d+[.)]|-)\s*`)

// Section returns the body of the level-3 markdown section with the given
// name. A section begins at a line exactly matching `### <name>` and ends at
// the next level-3 heading or end of input. Leading and trailing blank lines
// are trimmed from the body. The second return value is false when no such
// heading exists.
func Section(text, name string) (string, bool) {
	lines := strings.Split(text, "\n")
	heading := headingPrefix + name

	var body []string
	inSection := false

	for _, line := range lines {
		if !inSection {
			if strings.TrimSpace(line) == heading {
				inSection = true
			}
			continue
		}
		if strings.HasPrefix(line, "###") {
			break
		}
		body = append(body, line)
	}

	if !inSection {
		return "", false
	}
	return strings.TrimSpace(strings.Join(body, "\n")), true
}

// List returns the items of an enumerated or bulleted list within the given
// section body, in order. A line is an item when, after trimming, it starts
// with a digit followed by `.` or `)`, or with `-`. The enumerator or bullet
// prefix is stripped; items that are empty after stripping are discarded.
func List(sectionText string) []string {
	var items []string
	for _, line := range strings.Split(sectionText, "\n") {
		trimmed := strings.TrimSpace(line)
		if trimmed == "" {
			continue
		}
		prefix := listItemPattern.FindString(trimmed)
		if prefix == "" {
			continue
		}
		item := strings.TrimSpace(trimmed[len(prefix):])
		if item != "" {
			items = append(items, item)
		}
	}
	return items
}

// Field reads an inline bold markdown field of the form `**Key**: value`. The
// key comparison is case-sensitive. The second return value is false when the
// line does not carry the requested key.
func Field(line, key string) (string, bool) {
	trimmed := strings.TrimSpace(line)
	prefix := "**" + key + "**:"
	if !strings.HasPrefix(trimmed, prefix) {
		return "", false
	}
	return strings.TrimSpace(trimmed[len(prefix):]), true
}

// KeyedFiles returns the path values of every line carrying a `File:` marker.
// The value is the substring after the last colon, kept only when it contains
// a path separator.
func KeyedFiles(text string) []string {
	var files []string
	for _, line := range strings.Split(text, "\n") {
		if !strings.Contains(line, "File:") {
			continue
		}
		idx := strings.LastIndexByte(line, ':')
		path := strings.TrimSpace(line[idx+1:])
		if path != "" && strings.ContainsRune(path, '/') {
			files = append(files, path)
		}
	}
	return files
}

// Checklist returns the item texts of a `- [ ]` style markdown checklist,
// checked or not.
func Checklist(sectionText string) []string {
	var items []string
	for _, line := range strings.Split(sectionText, "\n") {
		trimmed := strings.TrimSpace(line)
		if !strings.HasPrefix(trimmed, "- [") {
			continue
		}
		_, rest, ok := strings.Cut(trimmed, "]")
		if !ok {
			continue
		}
		item := strings.TrimSpace(rest)
		if item != "" {
			items = append(items, item)
		}
	}
	return items
}

// CodeBlocks maps level-4 file headings (`#### path/to/file`) to the content
// of the fenced code block that follows each of them. Headings without a
// slash in their title are ignored, as are code fences outside a file heading.
func CodeBlocks(text string) map[string]string {
	blocks := map[string]string{}

	var currentFile string
	var currentCode []string
	inFence := false

	flush := func() {
		if currentFile != "" && len(currentCode) > 0 {
			blocks[currentFile] = strings.Join(currentCode, "\n")
		}
		currentFile = ""
		currentCode = nil
	}

	for _, line := range strings.Split(text, "\n") {
		if strings.HasPrefix(line, "#### ") && strings.Contains(line, "/") {
			flush()
			currentFile = strings.TrimSpace(line[5:])
			inFence = false
			continue
		}
		if strings.HasPrefix(strings.TrimSpace(line), "```") {
			if inFence {
				flush()
				inFence = false
			} else if currentFile != "" {
				inFence = true
			}
			continue
		}
		if inFence {
			currentCode = append(currentCode, line)
		}
	}
	flush()

	return blocks
}

// CommitMessage returns the fenced block under a `### Commit Message` heading.
func CommitMessage(text string) (string, bool) {
	section, ok := Section(text, "Commit Message")
	if !ok {
		return "", false
	}

	var lines []string
	inFence := false
	for _, line := range strings.Split(section, "\n") {
		if strings.HasPrefix(strings.TrimSpace(line), "```") {
			if inFence {
				break
			}
			inFence = true
			continue
		}
		if inFence {
			lines = append(lines, line)
		}
	}
	if len(lines) == 0 {
		return "", false
	}
	return strings.TrimSpace(strings.Join(lines, "\n")), true
}
