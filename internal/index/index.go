// Package index looks up the latest published version of a package on a
// package index such as PyPI.
//
// The default configuration queries https://pypi.org/pypi/{package}/json and
// reads info.version from the response. Other indexes or mirrors are supported
// through the URL template and the json, regex or html parsers.
//
// Usage:
//
//	ix, err := index.New(cfg.Index)
//	if err != nil {
//	    log.Fatal(err)
//	}
//	latest, err := ix.LatestVersion(ctx, "requests")
package index

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"unicode"

	"github.com/obentoo/depbump/internal/common/config"
	"github.com/obentoo/depbump/internal/common/version"
)

var (
	// ErrPackageNotFound is returned when the index answers 404
	ErrPackageNotFound = errors.New("package not found on index")
	// ErrUnexpectedStatus is returned for any other non-200 answer
	ErrUnexpectedStatus = errors.New("unexpected index response status")
	// ErrInvalidVersion is returned when the extracted version could not be
	// written back into a quoted TOML string as is
	ErrInvalidVersion = errors.New("index returned an unusable version")
	// ErrEmptyPackageName is returned when asked about an empty name
	ErrEmptyPackageName = errors.New("empty package name")
)

// Resolver is anything that can name the latest version of a package.
type Resolver interface {
	LatestVersion(ctx context.Context, name string) (string, error)
}

// Index resolves latest versions against one package index.
type Index struct {
	urlTemplate string
	parser      Parser
	client      *Client
}

// Option configures an Index
type Option func(*Index)

// WithClient sets the HTTP client used for lookups
func WithClient(client *Client) Option {
	return func(ix *Index) {
		ix.client = client
	}
}

// WithParser overrides the parser built from the configuration
func WithParser(parser Parser) Option {
	return func(ix *Index) {
		ix.parser = parser
	}
}

// New creates an Index from its configuration.
func New(cfg config.IndexConfig, opts ...Option) (*Index, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	ix := &Index{urlTemplate: cfg.URL}
	for _, opt := range opts {
		opt(ix)
	}

	if ix.parser == nil {
		parser, err := NewParser(cfg)
		if err != nil {
			return nil, fmt.Errorf("failed to create parser: %w", err)
		}
		ix.parser = parser
	}

	if ix.client == nil {
		ix.client = NewClientWithConfig(RetryConfig{
			MaxRetries: cfg.MaxRetries,
			BaseDelay:  cfg.BaseDelay,
			MaxDelay:   cfg.MaxDelay,
			Timeout:    cfg.Timeout,
		})
	}

	headers := map[string]string{"User-Agent": version.UserAgent()}
	if cfg.Parser == "json" {
		headers["Accept"] = "application/json"
	}
	for key, value := range cfg.Headers {
		headers[key] = value
	}
	ix.client.SetDefaultHeaders(headers)

	return ix, nil
}

// URL returns the metadata endpoint for a package.
func (ix *Index) URL(name string) string {
	return strings.ReplaceAll(ix.urlTemplate, config.PackagePlaceholder, url.PathEscape(name))
}

// LatestVersion fetches the package's metadata and extracts its latest version.
func (ix *Index) LatestVersion(ctx context.Context, name string) (string, error) {
	if name == "" {
		return "", ErrEmptyPackageName
	}

	endpoint := ix.URL(name)
	resp, err := ix.client.Get(ctx, endpoint)
	if err != nil {
		return "", fmt.Errorf("GET %s: %w", endpoint, err)
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode == http.StatusNotFound:
		return "", fmt.Errorf("%w: %s", ErrPackageNotFound, name)
	case resp.StatusCode != http.StatusOK:
		return "", fmt.Errorf("%w: GET %s returned %d", ErrUnexpectedStatus, endpoint, resp.StatusCode)
	}

	content, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("failed to read response body: %w", err)
	}

	latest, err := ix.parser.Parse(content)
	if err != nil {
		return "", err
	}

	latest = strings.TrimSpace(latest)
	if !usableVersion(latest) {
		return "", fmt.Errorf("%w: %q", ErrInvalidVersion, latest)
	}

	return latest, nil
}

// usableVersion reports whether v can be placed between the quotes of a TOML
// basic string unchanged: non-empty, printable, no spaces, quotes or backslashes.
func usableVersion(v string) bool {
	if v == "" || strings.ContainsAny(v, " \"'\\") {
		return false
	}
	for _, r := range v {
		if !unicode.IsPrint(r) {
			return false
		}
	}
	return true
}
