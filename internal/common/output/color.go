package output

import (
	"io"

	"github.com/fatih/color"
	"github.com/mattn/go-runewidth"
)

var (
	// Line status colors
	Bumped      = color.New(color.FgGreen)
	UpToDate    = color.New(color.Faint)
	Unparseable = color.New(color.FgYellow)
	Failed      = color.New(color.FgRed)

	// Change kind colors
	Major = color.New(color.FgRed, color.Bold)
	Minor = color.New(color.FgYellow)
	Patch = color.New(color.FgGreen)

	// Message colors
	Success = color.New(color.FgGreen)
	Warning = color.New(color.FgYellow)
	Error   = color.New(color.FgRed)
	Info    = color.New(color.FgCyan)
	Dim     = color.New(color.Faint)

	// Structural colors
	Header  = color.New(color.FgWhite, color.Bold)
	Package = color.New(color.FgBlue, color.Bold)
)

// NoColor disables color output
func NoColor() {
	color.NoColor = true
}

// ForceColor enables color output even when not a TTY
func ForceColor() {
	color.NoColor = false
}

// StatusColor returns the color for a line status name ("bumped", "up-to-date",
// "unparseable", "failed").
func StatusColor(status string) *color.Color {
	switch status {
	case "bumped":
		return Bumped
	case "up-to-date":
		return UpToDate
	case "unparseable":
		return Unparseable
	case "failed":
		return Failed
	default:
		return color.New(color.Reset)
	}
}

// KindColor returns the color for a change kind name ("major", "minor", "patch")
func KindColor(kind string) *color.Color {
	switch kind {
	case "major":
		return Major
	case "minor":
		return Minor
	case "patch":
		return Patch
	default:
		return Dim
	}
}

// PrintSuccess prints a success message to w
func PrintSuccess(w io.Writer, format string, args ...interface{}) {
	Success.Fprintf(w, "✓ "+format+"\n", args...)
}

// PrintError prints an error message to w
func PrintError(w io.Writer, format string, args ...interface{}) {
	Error.Fprintf(w, "✗ "+format+"\n", args...)
}

// PrintWarning prints a warning message to w
func PrintWarning(w io.Writer, format string, args ...interface{}) {
	Warning.Fprintf(w, "⚠ "+format+"\n", args...)
}

// PrintInfo prints an info message to w
func PrintInfo(w io.Writer, format string, args ...interface{}) {
	Info.Fprintf(w, "→ "+format+"\n", args...)
}

// Sprintf returns a colored string without printing
func Sprintf(c *color.Color, format string, args ...interface{}) string {
	return c.Sprintf(format, args...)
}

// Sprint returns a colored string without printing
func Sprint(c *color.Color, a ...interface{}) string {
	return c.Sprint(a...)
}

// FormatStatus pads status to width and colors it. Padding is applied
// before coloring so escape codes do not disturb column alignment.
func FormatStatus(status string, width int) string {
	return StatusColor(status).Sprint(Pad(status, width))
}

// Pad right-pads s with spaces to the given display width. Wide runes count
// double, so columns stay aligned for non-ASCII package names.
func Pad(s string, width int) string {
	return runewidth.FillRight(s, width)
}

// Width returns the display width of s
func Width(s string) int {
	return runewidth.StringWidth(s)
}

// MaxWidth returns the largest display width among values
func MaxWidth(values []string) int {
	max := 0
	for _, v := range values {
		if w := Width(v); w > max {
			max = w
		}
	}
	return max
}
