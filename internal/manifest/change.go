package manifest

import (
	"strconv"
	"strings"

	"golang.org/x/mod/semver"
)

// ChangeKind classifies a version bump for reporting.
type ChangeKind int

const (
	NoChange ChangeKind = iota
	Major
	Minor
	Patch
	// Other covers changes outside the first three release components,
	// e.g. 1.0.0rc1 -> 1.0.0 or 1.2.3.4 -> 1.2.3.5
	Other
)

func (k ChangeKind) String() string {
	switch k {
	case Major:
		return "major"
	case Minor:
		return "minor"
	case Patch:
		return "patch"
	case Other:
		return "other"
	default:
		return "none"
	}
}

// Classify names the most significant release component that differs between
// from and to. Versions that are valid semver (with a "v" prefix added) are
// compared with x/mod/semver; anything else falls back to comparing the
// leading digits of each dot-separated part.
func Classify(from, to string) ChangeKind {
	if from == to {
		return NoChange
	}

	vf, vt := "v"+from, "v"+to
	if semver.IsValid(vf) && semver.IsValid(vt) {
		switch {
		case semver.Major(vf) != semver.Major(vt):
			return Major
		case semver.MajorMinor(vf) != semver.MajorMinor(vt):
			return Minor
		case releaseOf(vf) != releaseOf(vt):
			return Patch
		default:
			return Other
		}
	}

	a, b := releaseParts(from), releaseParts(to)
	for i, kind := range []ChangeKind{Major, Minor, Patch} {
		if component(a, i) != component(b, i) {
			return kind
		}
	}
	return Other
}

// releaseOf strips prerelease and build metadata from a canonical semver.
func releaseOf(v string) string {
	v = semver.Canonical(v)
	if i := strings.IndexAny(v, "-+"); i >= 0 {
		v = v[:i]
	}
	return v
}

// releaseParts reads the numeric prefix of each dot-separated part:
// "2.0b1" -> [2, 0], "1!3.1" -> [3, 1].
func releaseParts(v string) []int {
	if i := strings.Index(v, "!"); i >= 0 {
		v = v[i+1:]
	}

	var nums []int
	for _, p := range strings.Split(v, ".") {
		end := 0
		for end < len(p) && p[end] >= '0' && p[end] <= '9' {
			end++
		}
		if end == 0 {
			break
		}
		n, _ := strconv.Atoi(p[:end])
		nums = append(nums, n)
		if end < len(p) {
			break
		}
	}
	return nums
}

func component(nums []int, i int) int {
	if i < len(nums) {
		return nums[i]
	}
	return 0
}
