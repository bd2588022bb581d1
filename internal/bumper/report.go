package bumper

import (
	"strings"

	"github.com/obentoo/depbump/internal/manifest"
)

// Status is the outcome for one candidate line.
type Status int

const (
	// UpToDate lines already carry the latest version
	UpToDate Status = iota
	// Bumped lines were rewritten to a newer version
	Bumped
	// Unparseable lines match neither dependency form and are left alone
	Unparseable
	// Failed lines could not be resolved against the index
	Failed
)

func (s Status) String() string {
	switch s {
	case Bumped:
		return "bumped"
	case Unparseable:
		return "unparseable"
	case Failed:
		return "failed"
	default:
		return "up-to-date"
	}
}

// LineResult describes what happened to one line of the section.
type LineResult struct {
	// Index is the zero-based line index in the file
	Index  int
	Status Status
	Form   manifest.Form

	Package    string
	OldVersion string
	// NewVersion is the version reported by the index; empty when the lookup
	// failed or the line was not parsed
	NewVersion string
	Kind       manifest.ChangeKind

	OldLine string
	NewLine string

	// Err is the lookup error for Failed lines
	Err error
}

// LineNumber returns the one-based line number.
func (r LineResult) LineNumber() int {
	return r.Index + 1
}

// Ignorable reports whether the line is blank or a comment. Such lines are
// Unparseable but not worth reporting.
func (r LineResult) Ignorable() bool {
	if r.Status != Unparseable {
		return false
	}
	trimmed := strings.TrimSpace(r.OldLine)
	return trimmed == "" || strings.HasPrefix(trimmed, "#")
}

// Report is the outcome of one run over a file.
type Report struct {
	Path    string
	Section string
	DryRun  bool
	// Written is true when the file on disk was overwritten
	Written bool
	// Results holds one entry per candidate line, in file order
	Results []LineResult
}

// Count returns the number of results with the given status.
func (r *Report) Count(status Status) int {
	n := 0
	for _, res := range r.Results {
		if res.Status == status {
			n++
		}
	}
	return n
}

// Bumped returns the results that were rewritten.
func (r *Report) Bumped() []LineResult {
	return r.filter(Bumped)
}

// Failed returns the results whose lookup failed.
func (r *Report) Failed() []LineResult {
	return r.filter(Failed)
}

// Changed reports whether any line was bumped.
func (r *Report) Changed() bool {
	return r.Count(Bumped) > 0
}

func (r *Report) filter(status Status) []LineResult {
	var out []LineResult
	for _, res := range r.Results {
		if res.Status == status {
			out = append(out, res)
		}
	}
	return out
}
