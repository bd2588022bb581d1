package manifest

import (
	"regexp"
	"strings"
)

// comparators may precede a version; only one is accepted by the patterns
const comparators = "^~=><!"

var (
	// inlineTablePattern matches `name = { ..., version = "ver", ... }`
	inlineTablePattern = regexp.MustCompile(`^(?P<package>.*)\s*=\s*\{(.*)version\s*=\s*"(?P<version>[\^~>=<!]?[\d.\-\w]+)"(.*)\}`)
	// barePattern matches `name = "ver"`
	barePattern = regexp.MustCompile(`^(?P<package>.*)\s*=\s*"(?P<version>[\^~>=<!]?[\d.\-\w]+)"`)
)

// Form is the surface syntax a dependency line was written in.
type Form int

const (
	// Unparseable lines match neither dependency shape
	Unparseable Form = iota
	// InlineTable is `name = { version = "1.0", extras = [...] }`
	InlineTable
	// Bare is `name = "1.0"`
	Bare
)

func (f Form) String() string {
	switch f {
	case InlineTable:
		return "inline-table"
	case Bare:
		return "bare"
	default:
		return "unparseable"
	}
}

// Dependency is a parsed dependency line.
type Dependency struct {
	Form Form
	// Name is the package name, whitespace trimmed
	Name string
	// Constraint is the quoted value as written, e.g. "^1.2.3"
	Constraint string
	// Version is Constraint without its leading comparator, e.g. "1.2.3"
	Version string
	// Line is the original line text
	Line string

	// start and end delimit Version within Line
	start, end int
}

// Parse recognizes the inline-table form first, then the bare form. A line
// matching neither is returned with Form Unparseable and only Line set.
func Parse(line string) Dependency {
	for _, p := range []struct {
		re   *regexp.Regexp
		form Form
	}{
		{inlineTablePattern, InlineTable},
		{barePattern, Bare},
	} {
		loc := p.re.FindStringSubmatchIndex(line)
		if loc == nil {
			continue
		}

		pkg := p.re.SubexpIndex("package")
		ver := p.re.SubexpIndex("version")
		constraint := line[loc[2*ver]:loc[2*ver+1]]
		version := strings.TrimLeft(constraint, comparators)

		return Dependency{
			Form:       p.form,
			Name:       strings.TrimSpace(line[loc[2*pkg]:loc[2*pkg+1]]),
			Constraint: constraint,
			Version:    version,
			Line:       line,
			start:      loc[2*ver+1] - len(version),
			end:        loc[2*ver+1],
		}
	}

	return Dependency{Form: Unparseable, Line: line}
}

// Parsed reports whether the line was recognized.
func (d Dependency) Parsed() bool {
	return d.Form != Unparseable
}

// WithVersion returns Line with the version text replaced by v. Comparators
// and every other byte of the line are kept. Unparseable dependencies return
// Line unchanged.
func (d Dependency) WithVersion(v string) string {
	if !d.Parsed() {
		return d.Line
	}
	return d.Line[:d.start] + v + d.Line[d.end:]
}
