package manifest

import "strings"

// Line is one physical line of a manifest, identified by its zero-based index.
type Line struct {
	Index int
	Text  string
}

// Extractor selects the candidate dependency lines of one table.
type Extractor struct {
	// Section is the table name without brackets, e.g. "tool.poetry.dependencies"
	Section string
	// ReservedPrefixes mark lines that are never dependencies, e.g. "python ="
	ReservedPrefixes []string
	// TemplatePrefixes mark templating directives, e.g. "{%"
	TemplatePrefixes []string
}

// Extract returns the lines between the "[Section]" header and the next
// header, in file order. Any line starting with "[" whose bracket-trimmed text
// differs from Section ends the table. Reserved and template lines are
// dropped. A file without the section yields no lines.
func (e Extractor) Extract(lines []string) []Line {
	header := "[" + e.Section + "]"
	recording := false
	var deps []Line

	for i, line := range lines {
		if strings.HasPrefix(line, "[") && strings.Trim(line, "[]") != e.Section {
			recording = false
			continue
		}
		if line == header {
			recording = true
			continue
		}
		if hasAnyPrefix(line, e.ReservedPrefixes) || hasAnyPrefix(line, e.TemplatePrefixes) {
			continue
		}
		if recording {
			deps = append(deps, Line{Index: i, Text: line})
		}
	}

	return deps
}

func hasAnyPrefix(s string, prefixes []string) bool {
	for _, p := range prefixes {
		if p != "" && strings.HasPrefix(s, p) {
			return true
		}
	}
	return false
}
