package manifest

import (
	"errors"
	"fmt"
	"os"
	"sort"
	"strings"
)

var (
	// ErrLineOutOfRange is returned when setting a line that does not exist
	ErrLineOutOfRange = errors.New("line index out of range")
	// ErrOutsideSection is returned when a rewrite targets a line that was not
	// extracted from the section
	ErrOutsideSection = errors.New("line is not a dependency candidate")
)

// Buffer holds a manifest as lines. Line terminators are kept aside so that
// Bytes reproduces the original content exactly when nothing was changed:
// "\r\n" lines stay "\r\n" and a missing final newline stays missing.
type Buffer struct {
	lines           []string
	crlf            []bool
	original        []string
	trailingNewline bool
}

// NewBuffer splits text into lines.
func NewBuffer(text string) *Buffer {
	b := &Buffer{}

	parts := strings.Split(text, "\n")
	if len(parts) > 1 && parts[len(parts)-1] == "" {
		b.trailingNewline = true
		parts = parts[:len(parts)-1]
	}

	b.lines = make([]string, len(parts))
	b.crlf = make([]bool, len(parts))
	for i, p := range parts {
		if strings.HasSuffix(p, "\r") {
			b.crlf[i] = true
			p = strings.TrimSuffix(p, "\r")
		}
		b.lines[i] = p
	}
	b.original = append([]string(nil), b.lines...)

	return b
}

// ReadFile loads a manifest from disk.
func ReadFile(path string) (*Buffer, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	return NewBuffer(string(data)), nil
}

// Lines returns a copy of the current lines without terminators.
func (b *Buffer) Lines() []string {
	return append([]string(nil), b.lines...)
}

// Len returns the number of lines.
func (b *Buffer) Len() int {
	return len(b.lines)
}

// Line returns line i.
func (b *Buffer) Line(i int) string {
	return b.lines[i]
}

// Set replaces line i. text must not contain a newline.
func (b *Buffer) Set(i int, text string) error {
	if i < 0 || i >= len(b.lines) {
		return fmt.Errorf("%w: %d (have %d lines)", ErrLineOutOfRange, i, len(b.lines))
	}
	if strings.ContainsAny(text, "\r\n") {
		return fmt.Errorf("line %d: replacement contains a line break", i)
	}
	b.lines[i] = text
	return nil
}

// Modified returns the indices whose text differs from the loaded content, ascending.
func (b *Buffer) Modified() []int {
	var idx []int
	for i := range b.lines {
		if b.lines[i] != b.original[i] {
			idx = append(idx, i)
		}
	}
	sort.Ints(idx)
	return idx
}

// Bytes renders the buffer with its original line terminators.
func (b *Buffer) Bytes() []byte {
	var sb strings.Builder
	for i, line := range b.lines {
		if i > 0 {
			sb.WriteByte('\n')
		}
		sb.WriteString(line)
		if b.crlf[i] {
			sb.WriteByte('\r')
		}
	}
	if b.trailingNewline {
		sb.WriteByte('\n')
	}
	return []byte(sb.String())
}

// Original renders the content as it was loaded.
func (b *Buffer) Original() []byte {
	return (&Buffer{lines: b.original, crlf: b.crlf, trailingNewline: b.trailingNewline}).Bytes()
}

// WriteFile overwrites path with the buffer, keeping the file's permissions.
func (b *Buffer) WriteFile(path string) error {
	perm := os.FileMode(0644)
	if info, err := os.Stat(path); err == nil {
		perm = info.Mode().Perm()
	}
	return os.WriteFile(path, b.Bytes(), perm)
}

// Rewrite applies updates (line index -> new text) to b. Every index must be
// one of candidates, the lines returned by Extract.
func Rewrite(b *Buffer, candidates []Line, updates map[int]string) error {
	allowed := make(map[int]bool, len(candidates))
	for _, c := range candidates {
		allowed[c.Index] = true
	}

	indices := make([]int, 0, len(updates))
	for i := range updates {
		indices = append(indices, i)
	}
	sort.Ints(indices)

	for _, i := range indices {
		if !allowed[i] {
			return fmt.Errorf("%w: line %d", ErrOutsideSection, i+1)
		}
	}
	for _, i := range indices {
		if err := b.Set(i, updates[i]); err != nil {
			return err
		}
	}
	return nil
}
