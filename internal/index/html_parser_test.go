package index

import (
	"errors"
	"testing"
)

const projectPage = `<!DOCTYPE html>
<html>
<body>
  <div class="package-header">
    <h1 class="package-header__name">
      requests 2.32.3
    </h1>
  </div>
  <ul id="history">
    <li><span class="release">2.32.3</span></li>
    <li><span class="release">2.32.2</span></li>
  </ul>
</body>
</html>`

func TestHTMLParserCSSSelectorWithRegex(t *testing.T) {
	p, err := NewHTMLParser("h1.package-header__name", "", `requests\s+(\S+)`)
	if err != nil {
		t.Fatal(err)
	}

	got, err := p.Parse([]byte(projectPage))
	if err != nil {
		t.Fatal(err)
	}
	if got != "2.32.3" {
		t.Errorf("Parse() = %q, want 2.32.3", got)
	}
}

func TestHTMLParserXPathFirstMatch(t *testing.T) {
	p, err := NewHTMLParser("", `//span[@class="release"]`, "")
	if err != nil {
		t.Fatal(err)
	}

	got, err := p.Parse([]byte(projectPage))
	if err != nil {
		t.Fatal(err)
	}
	if got != "2.32.3" {
		t.Errorf("Parse() = %q, want 2.32.3", got)
	}
}

func TestHTMLParserSelectorPreferredOverXPath(t *testing.T) {
	p, err := NewHTMLParser("#history li:nth-child(2) .release", "//h1", "")
	if err != nil {
		t.Fatal(err)
	}

	got, err := p.Parse([]byte(projectPage))
	if err != nil {
		t.Fatal(err)
	}
	if got != "2.32.2" {
		t.Errorf("Parse() = %q, want 2.32.2", got)
	}
}

func TestHTMLParserErrors(t *testing.T) {
	if _, err := NewHTMLParser("", "", ""); !errors.Is(err, ErrNoSelectorOrXPath) {
		t.Errorf("expected ErrNoSelectorOrXPath, got %v", err)
	}
	if _, err := NewHTMLParser("h1", "", "("); !errors.Is(err, ErrInvalidRegexPattern) {
		t.Errorf("expected ErrInvalidRegexPattern, got %v", err)
	}

	p, _ := NewHTMLParser("h2.missing", "", "")
	if _, err := p.Parse([]byte(projectPage)); !errors.Is(err, ErrNoElementFound) {
		t.Errorf("expected ErrNoElementFound, got %v", err)
	}

	p, _ = NewHTMLParser("", "//h2", "")
	if _, err := p.Parse([]byte(projectPage)); !errors.Is(err, ErrNoElementFound) {
		t.Errorf("expected ErrNoElementFound for xpath, got %v", err)
	}

	p, _ = NewHTMLParser("", "//[", "")
	if _, err := p.Parse([]byte(projectPage)); !errors.Is(err, ErrInvalidXPath) {
		t.Errorf("expected ErrInvalidXPath, got %v", err)
	}

	p, _ = NewHTMLParser("h1", "", `v(\d+)`)
	if _, err := p.Parse([]byte(projectPage)); !errors.Is(err, ErrRegexNoMatch) {
		t.Errorf("expected ErrRegexNoMatch, got %v", err)
	}

	p, _ = NewHTMLParser("div.package-header > span", "", "")
	if _, err := p.Parse([]byte(`<div class="package-header"><span>  </span></div>`)); !errors.Is(err, ErrNoVersionFound) {
		t.Errorf("expected ErrNoVersionFound, got %v", err)
	}
}
