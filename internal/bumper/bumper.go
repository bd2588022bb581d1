// Package bumper drives one bump run over a dependency file: it extracts the
// configured section, resolves each dependency against the package index in
// file order, rewrites the lines that have a newer version and writes the file
// back.
package bumper

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/obentoo/depbump/internal/common/config"
	"github.com/obentoo/depbump/internal/common/logger"
	"github.com/obentoo/depbump/internal/index"
	"github.com/obentoo/depbump/internal/manifest"
)

// ErrNoResolver is returned by New when no resolver could be set up
var ErrNoResolver = errors.New("no version resolver configured")

// Bumper checks and rewrites dependency versions in a file.
type Bumper struct {
	// extractor selects the section lines
	extractor manifest.Extractor
	// resolver answers latest-version queries
	resolver index.Resolver
	// dryRun disables writing
	dryRun bool
	// log receives progress and per-line diagnostics
	log *logger.Logger
}

// Option is a functional option for configuring Bumper
type Option func(*Bumper) error

// WithResolver sets the resolver used for lookups instead of building an
// index from the configuration
func WithResolver(resolver index.Resolver) Option {
	return func(b *Bumper) error {
		if resolver == nil {
			return ErrNoResolver
		}
		b.resolver = resolver
		return nil
	}
}

// WithSection overrides the section to scan
func WithSection(section string) Option {
	return func(b *Bumper) error {
		if section == "" {
			return config.ErrMissingSection
		}
		b.extractor.Section = section
		return nil
	}
}

// WithDryRun resolves and reports without writing the file
func WithDryRun(dryRun bool) Option {
	return func(b *Bumper) error {
		b.dryRun = dryRun
		return nil
	}
}

// WithLogger sets the logger for progress output
func WithLogger(log *logger.Logger) Option {
	return func(b *Bumper) error {
		b.log = log
		return nil
	}
}

// New creates a Bumper from cfg. Unless WithResolver is given, lookups go to
// the index described by cfg.Index.
func New(cfg *config.Config, opts ...Option) (*Bumper, error) {
	if cfg == nil {
		cfg = config.Default()
	}

	b := &Bumper{
		extractor: manifest.Extractor{
			Section:          cfg.Section,
			ReservedPrefixes: cfg.ReservedPrefixes,
			TemplatePrefixes: cfg.TemplatePrefixes,
		},
		log: logger.Default(),
	}

	for _, opt := range opts {
		if err := opt(b); err != nil {
			return nil, fmt.Errorf("failed to apply bumper option: %w", err)
		}
	}

	if b.extractor.Section == "" {
		return nil, config.ErrMissingSection
	}

	if b.resolver == nil {
		ix, err := index.New(cfg.Index)
		if err != nil {
			return nil, fmt.Errorf("failed to set up package index: %w", err)
		}
		b.resolver = ix
	}

	return b, nil
}

// Section returns the section being scanned.
func (b *Bumper) Section() string {
	return b.extractor.Section
}

// Run bumps the dependency versions of the file at path. Lookup failures are
// recorded in the report and leave their line unchanged; only reading,
// validating or writing the file is fatal. The file is written only when at
// least one line changed, dry-run is off and ctx is still live.
func (b *Bumper) Run(ctx context.Context, path string) (*Report, error) {
	buf, err := manifest.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", path, err)
	}

	report := &Report{
		Path:    path,
		Section: b.extractor.Section,
		DryRun:  b.dryRun,
	}

	candidates := b.extractor.Extract(buf.Lines())
	if len(candidates) == 0 {
		b.log.Debug("no [%s] section in %s", b.extractor.Section, path)
		return report, nil
	}

	updates := make(map[int]string)
	for _, line := range candidates {
		if err := ctx.Err(); err != nil {
			return report, err
		}

		result := b.check(ctx, line)
		if result.Status == Failed && ctx.Err() != nil {
			return report, ctx.Err()
		}

		report.Results = append(report.Results, result)
		if result.Status == Bumped {
			updates[result.Index] = result.NewLine
		}
	}

	if len(updates) == 0 {
		return report, nil
	}

	if err := manifest.Rewrite(buf, candidates, updates); err != nil {
		return report, err
	}
	if err := manifest.ValidateRewrite(buf.Original(), buf.Bytes()); err != nil {
		return report, fmt.Errorf("refusing to write %s: %w", path, err)
	}

	if b.dryRun {
		return report, nil
	}
	if err := ctx.Err(); err != nil {
		return report, err
	}

	if err := buf.WriteFile(path); err != nil {
		return report, fmt.Errorf("failed to write %s: %w", path, err)
	}
	report.Written = true

	return report, nil
}

// check parses one line and resolves its latest version.
func (b *Bumper) check(ctx context.Context, line manifest.Line) LineResult {
	dep := manifest.Parse(line.Text)
	result := LineResult{
		Index:   line.Index,
		Form:    dep.Form,
		OldLine: line.Text,
		NewLine: line.Text,
	}

	if !dep.Parsed() {
		result.Status = Unparseable
		if result.Ignorable() {
			b.log.Debug("line %d: skipping %q", result.LineNumber(), line.Text)
		} else {
			b.log.Warn("line %d: not a recognized dependency: %s", result.LineNumber(), strings.TrimSpace(line.Text))
		}
		return result
	}

	result.Package = dep.Name
	result.OldVersion = dep.Version

	b.log.Info("Checking %s", dep.Name)
	latest, err := b.resolver.LatestVersion(ctx, lookupName(dep.Name))
	if err != nil {
		result.Status = Failed
		result.Err = err
		if ctx.Err() == nil {
			b.log.Warn("%s: version lookup failed: %v", dep.Name, err)
		}
		return result
	}

	result.NewVersion = latest
	if latest == dep.Version {
		result.Status = UpToDate
		b.log.Debug("%s is up to date (%s)", dep.Name, latest)
		return result
	}

	b.log.Info("Found new version: %s", latest)
	result.Status = Bumped
	result.Kind = manifest.Classify(dep.Version, latest)
	result.NewLine = dep.WithVersion(latest)

	return result
}

// lookupName strips the quotes of a quoted TOML key such as "ruamel.yaml".
func lookupName(name string) string {
	if len(name) >= 2 {
		if q := name[0]; (q == '"' || q == '\'') && name[len(name)-1] == q {
			return name[1 : len(name)-1]
		}
	}
	return name
}
