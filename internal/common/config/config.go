package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// PackagePlaceholder is replaced by the package name in Index.URL
const PackagePlaceholder = "{package}"

// Defaults
const (
	DefaultSection    = "tool.poetry.dependencies"
	DefaultIndexURL   = "https://pypi.org/pypi/" + PackagePlaceholder + "/json"
	DefaultParser     = "json"
	DefaultJSONPath   = "info.version"
	DefaultTimeout    = 30 * time.Second
	DefaultMaxRetries = 3
	DefaultBaseDelay  = 1 * time.Second
	DefaultMaxDelay   = 4 * time.Second
)

var (
	ErrMissingSection            = errors.New("section is not configured")
	ErrMissingIndexURL           = errors.New("index url is not configured")
	ErrMissingPackagePlaceholder = errors.New("index url must contain " + PackagePlaceholder)
	ErrInvalidParserType         = errors.New("invalid parser type: must be 'json', 'regex' or 'html'")
	ErrMissingPath               = errors.New("missing required field: path (required for json parser)")
	ErrMissingPattern            = errors.New("missing required field: pattern (required for regex parser)")
	ErrMissingSelector           = errors.New("missing required field: selector or xpath (required for html parser)")
	ErrInvalidPattern            = errors.New("invalid pattern")
	ErrNegativeValue             = errors.New("value must not be negative")
)

// Config represents the application configuration
type Config struct {
	// Section is the table scanned when --section is not given
	Section string `yaml:"section"`
	// ReservedPrefixes are line prefixes inside the section that are never
	// treated as dependencies (the interpreter version pin)
	ReservedPrefixes []string `yaml:"reserved_prefixes"`
	// TemplatePrefixes are line prefixes of templating directives
	TemplatePrefixes []string    `yaml:"template_prefixes"`
	Index            IndexConfig `yaml:"index"`
}

// IndexConfig describes how to ask the package index for a latest version
type IndexConfig struct {
	URL      string `yaml:"url"`
	Parser   string `yaml:"parser"`             // "json", "regex" or "html"
	Path     string `yaml:"path,omitempty"`     // json
	Pattern  string `yaml:"pattern,omitempty"`  // regex, or html post-processing
	Selector string `yaml:"selector,omitempty"` // html
	XPath    string `yaml:"xpath,omitempty"`    // html

	// Headers are sent with every request; values support ${VAR} substitution
	Headers map[string]string `yaml:"headers,omitempty"`

	Timeout    time.Duration `yaml:"timeout"`
	MaxRetries int           `yaml:"max_retries"`
	BaseDelay  time.Duration `yaml:"base_delay"`
	MaxDelay   time.Duration `yaml:"max_delay"`
}

// Default returns the configuration used when no config file exists
func Default() *Config {
	return &Config{
		Section:          DefaultSection,
		ReservedPrefixes: []string{"python ="},
		TemplatePrefixes: []string{"{%"},
		Index: IndexConfig{
			URL:        DefaultIndexURL,
			Parser:     DefaultParser,
			Path:       DefaultJSONPath,
			Timeout:    DefaultTimeout,
			MaxRetries: DefaultMaxRetries,
			BaseDelay:  DefaultBaseDelay,
			MaxDelay:   DefaultMaxDelay,
		},
	}
}

// ConfigPaths returns all possible config file paths in priority order
// 1. $XDG_CONFIG_HOME/depbump/config.yaml (~/.config when unset)
// 2. ~/.depbump/config.yaml
func ConfigPaths() ([]string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return nil, err
	}

	xdgConfig := os.Getenv("XDG_CONFIG_HOME")
	if xdgConfig == "" {
		xdgConfig = filepath.Join(home, ".config")
	}

	return []string{
		filepath.Join(xdgConfig, "depbump", "config.yaml"),
		filepath.Join(home, ".depbump", "config.yaml"),
	}, nil
}

// DefaultConfigPath returns the default config file path (XDG standard)
func DefaultConfigPath() (string, error) {
	paths, err := ConfigPaths()
	if err != nil {
		return "", err
	}
	return paths[0], nil
}

// FindConfigPath returns the first existing config file path, or the default
// path if none exists yet
func FindConfigPath() (string, error) {
	paths, err := ConfigPaths()
	if err != nil {
		return "", err
	}

	for _, path := range paths {
		if _, err := os.Stat(path); err == nil {
			return path, nil
		}
	}

	return paths[0], nil
}

// Load reads configuration from the first available config file
func Load() (*Config, error) {
	configPath, err := FindConfigPath()
	if err != nil {
		return nil, err
	}
	return LoadFrom(configPath)
}

// LoadFrom reads configuration from a specific file path. Fields absent from
// the file keep their default values; a missing file yields Default().
func LoadFrom(path string) (*Config, error) {
	cfg := Default()

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return cfg, nil
		}
		return nil, err
	}

	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse %s: %w", path, err)
	}

	return cfg, nil
}

// Save writes configuration to the default config file
func (c *Config) Save() error {
	configPath, err := DefaultConfigPath()
	if err != nil {
		return err
	}
	return c.SaveTo(configPath)
}

// SaveTo writes configuration to a specific file path
func (c *Config) SaveTo(path string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return err
	}

	data, err := yaml.Marshal(c)
	if err != nil {
		return err
	}

	return os.WriteFile(path, data, 0644)
}

// Validate checks that the configuration can drive a run
func (c *Config) Validate() error {
	if strings.TrimSpace(c.Section) == "" {
		return ErrMissingSection
	}
	return c.Index.Validate()
}

// Validate checks required fields per parser type
func (ic *IndexConfig) Validate() error {
	if ic.URL == "" {
		return ErrMissingIndexURL
	}
	if !strings.Contains(ic.URL, PackagePlaceholder) {
		return fmt.Errorf("%w: got %q", ErrMissingPackagePlaceholder, ic.URL)
	}

	switch ic.Parser {
	case "json":
		if ic.Path == "" {
			return ErrMissingPath
		}
	case "regex":
		if ic.Pattern == "" {
			return ErrMissingPattern
		}
	case "html":
		if ic.Selector == "" && ic.XPath == "" {
			return ErrMissingSelector
		}
	default:
		return fmt.Errorf("%w: got %q", ErrInvalidParserType, ic.Parser)
	}

	if ic.Pattern != "" {
		if _, err := regexp.Compile(ic.Pattern); err != nil {
			return fmt.Errorf("%w: %v", ErrInvalidPattern, err)
		}
	}

	if ic.MaxRetries < 0 {
		return fmt.Errorf("max_retries: %w", ErrNegativeValue)
	}
	if ic.Timeout < 0 || ic.BaseDelay < 0 || ic.MaxDelay < 0 {
		return fmt.Errorf("timeout/base_delay/max_delay: %w", ErrNegativeValue)
	}

	return nil
}
