package index

import (
	"encoding/json"
	"errors"
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"github.com/obentoo/depbump/internal/common/config"
)

// Error variables for parser errors
var (
	// ErrJSONPathNotFound is returned when the JSON path does not exist in the document
	ErrJSONPathNotFound = errors.New("JSON path not found in response")
	// ErrRegexNoMatch is returned when the regex pattern does not match the content
	ErrRegexNoMatch = errors.New("regex pattern did not match")
	// ErrNoVersionFound is returned when the response yields no version text
	ErrNoVersionFound = errors.New("could not extract version from index response")
	// ErrInvalidJSONPath is returned when the JSON path syntax is invalid
	ErrInvalidJSONPath = errors.New("invalid JSON path syntax")
	// ErrInvalidRegexPattern is returned when the regex pattern is invalid
	ErrInvalidRegexPattern = errors.New("invalid regex pattern")
	// ErrNoCaptureGroup is returned when the regex pattern has no capture group
	ErrNoCaptureGroup = errors.New("regex pattern must contain at least one capture group")
	// ErrInvalidParserType is returned for an unknown parser name
	ErrInvalidParserType = errors.New("invalid parser type")
)

// Parser extracts the latest version string from an index response body.
type Parser interface {
	Parse(content []byte) (string, error)
}

// JSONParser extracts the version at a dotted path with optional array
// indexes, e.g. "info.version" or "releases[0].version".
type JSONParser struct {
	Path string
}

// Parse extracts a version string from JSON content using the configured path.
func (p *JSONParser) Parse(content []byte) (string, error) {
	segments, err := parseJSONPath(p.Path)
	if err != nil {
		return "", err
	}

	var data interface{}
	if err := json.Unmarshal(content, &data); err != nil {
		return "", fmt.Errorf("failed to parse JSON: %w", err)
	}

	current := data
	for _, seg := range segments {
		if seg.isIndex {
			arr, ok := current.([]interface{})
			if !ok {
				return "", fmt.Errorf("%w: expected array at index %d", ErrJSONPathNotFound, seg.index)
			}
			if seg.index >= len(arr) {
				return "", fmt.Errorf("%w: array index %d out of bounds (length %d)", ErrJSONPathNotFound, seg.index, len(arr))
			}
			current = arr[seg.index]
			continue
		}

		obj, ok := current.(map[string]interface{})
		if !ok {
			return "", fmt.Errorf("%w: expected object at %q", ErrJSONPathNotFound, seg.field)
		}
		val, exists := obj[seg.field]
		if !exists {
			return "", fmt.Errorf("%w: field %q not found", ErrJSONPathNotFound, seg.field)
		}
		current = val
	}

	switch v := current.(type) {
	case string:
		return v, nil
	case float64:
		return strconv.FormatFloat(v, 'f', -1, 64), nil
	default:
		return "", fmt.Errorf("%w: value at %q is not a string", ErrJSONPathNotFound, p.Path)
	}
}

// pathSegment is one step of a JSON path: a field name or an array index
type pathSegment struct {
	field   string
	index   int
	isIndex bool
}

// parseJSONPath splits "a.b[0].c" into segments.
func parseJSONPath(path string) ([]pathSegment, error) {
	var segments []pathSegment
	remaining := path

	for remaining != "" {
		remaining = strings.TrimPrefix(remaining, ".")
		if remaining == "" {
			break
		}
		if remaining[0] == '[' {
			return nil, fmt.Errorf("%w: unexpected '[' at start", ErrInvalidJSONPath)
		}

		fieldEnd := strings.IndexAny(remaining, ".[")
		if fieldEnd == -1 {
			fieldEnd = len(remaining)
		}
		if fieldEnd == 0 {
			return nil, fmt.Errorf("%w: empty field name", ErrInvalidJSONPath)
		}
		segments = append(segments, pathSegment{field: remaining[:fieldEnd]})
		remaining = remaining[fieldEnd:]

		for strings.HasPrefix(remaining, "[") {
			closeBracket := strings.Index(remaining, "]")
			if closeBracket == -1 {
				return nil, fmt.Errorf("%w: unclosed bracket", ErrInvalidJSONPath)
			}
			indexStr := remaining[1:closeBracket]
			index, err := strconv.Atoi(indexStr)
			if err != nil || index < 0 {
				return nil, fmt.Errorf("%w: invalid array index %q", ErrInvalidJSONPath, indexStr)
			}
			segments = append(segments, pathSegment{index: index, isIndex: true})
			remaining = remaining[closeBracket+1:]
		}
	}

	if len(segments) == 0 {
		return nil, fmt.Errorf("%w: empty path", ErrInvalidJSONPath)
	}

	return segments, nil
}

// RegexParser returns the first capture group of Pattern in the body.
type RegexParser struct {
	compiled *regexp.Regexp
}

// NewRegexParser compiles pattern, which must have a capture group.
func NewRegexParser(pattern string) (*RegexParser, error) {
	re, err := regexp.Compile(pattern)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidRegexPattern, err)
	}
	if re.NumSubexp() < 1 {
		return nil, ErrNoCaptureGroup
	}
	return &RegexParser{compiled: re}, nil
}

// Parse extracts the first capture group match.
func (p *RegexParser) Parse(content []byte) (string, error) {
	matches := p.compiled.FindSubmatch(content)
	if len(matches) < 2 {
		return "", ErrRegexNoMatch
	}
	if len(matches[1]) == 0 {
		return "", fmt.Errorf("%w: capture group matched empty string", ErrRegexNoMatch)
	}
	return string(matches[1]), nil
}

// NewParser builds the parser selected by cfg.Parser.
func NewParser(cfg config.IndexConfig) (Parser, error) {
	switch cfg.Parser {
	case "json":
		if _, err := parseJSONPath(cfg.Path); err != nil {
			return nil, err
		}
		return &JSONParser{Path: cfg.Path}, nil
	case "regex":
		return NewRegexParser(cfg.Pattern)
	case "html":
		return NewHTMLParser(cfg.Selector, cfg.XPath, cfg.Pattern)
	default:
		return nil, fmt.Errorf("%w: got %q", ErrInvalidParserType, cfg.Parser)
	}
}
