package index

import (
	"bytes"
	"errors"
	"fmt"
	"regexp"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"github.com/antchfx/htmlquery"
)

// Error variables for HTML parser errors
var (
	// ErrInvalidXPath is returned when the XPath expression syntax is invalid
	ErrInvalidXPath = errors.New("invalid XPath expression")
	// ErrNoElementFound is returned when no element matches the selector/xpath
	ErrNoElementFound = errors.New("no element found matching selector")
	// ErrNoSelectorOrXPath is returned when neither selector nor xpath is provided
	ErrNoSelectorOrXPath = errors.New("either selector or xpath must be provided")
)

// HTMLParser reads the version from an index web page, e.g. the project page
// of a mirror without a JSON API. The text of the first element matching
// Selector (CSS) or XPath is taken, optionally narrowed by a regex.
type HTMLParser struct {
	Selector string
	XPath    string
	regex    *regexp.Regexp
}

// NewHTMLParser creates an HTMLParser. At least one of selector or xpath must
// be provided; regex, when set, is applied to the extracted text and its
// first capture group (or whole match) is the version.
func NewHTMLParser(selector, xpath, regex string) (*HTMLParser, error) {
	if selector == "" && xpath == "" {
		return nil, ErrNoSelectorOrXPath
	}

	parser := &HTMLParser{Selector: selector, XPath: xpath}
	if regex != "" {
		re, err := regexp.Compile(regex)
		if err != nil {
			return nil, fmt.Errorf("%w: %v", ErrInvalidRegexPattern, err)
		}
		parser.regex = re
	}

	return parser, nil
}

// Parse extracts a version string from HTML content.
func (p *HTMLParser) Parse(content []byte) (string, error) {
	var text string
	var err error

	if p.Selector != "" {
		text, err = p.parseWithCSS(content)
	} else {
		text, err = p.parseWithXPath(content)
	}
	if err != nil {
		return "", err
	}

	if p.regex != nil {
		matches := p.regex.FindStringSubmatch(text)
		switch {
		case matches == nil:
			return "", fmt.Errorf("%w: pattern %q did not match %q", ErrRegexNoMatch, p.regex, text)
		case len(matches) > 1 && matches[1] != "":
			text = matches[1]
		default:
			text = matches[0]
		}
	}

	text = strings.TrimSpace(text)
	if text == "" {
		return "", ErrNoVersionFound
	}

	return text, nil
}

// parseWithCSS returns the text of the first element matching the selector.
func (p *HTMLParser) parseWithCSS(content []byte) (string, error) {
	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(content))
	if err != nil {
		return "", fmt.Errorf("failed to parse HTML: %w", err)
	}

	selection := doc.Find(p.Selector)
	if selection.Length() == 0 {
		return "", fmt.Errorf("%w: %s", ErrNoElementFound, p.Selector)
	}

	return selection.First().Text(), nil
}

// parseWithXPath returns the text of the first node matching the expression.
func (p *HTMLParser) parseWithXPath(content []byte) (string, error) {
	doc, err := htmlquery.Parse(bytes.NewReader(content))
	if err != nil {
		return "", fmt.Errorf("failed to parse HTML: %w", err)
	}

	nodes, err := htmlquery.QueryAll(doc, p.XPath)
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrInvalidXPath, err)
	}
	if len(nodes) == 0 {
		return "", fmt.Errorf("%w: %s", ErrNoElementFound, p.XPath)
	}

	return htmlquery.InnerText(nodes[0]), nil
}
