package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/obentoo/depbump/internal/bumper"
	"github.com/obentoo/depbump/internal/common/config"
	"github.com/obentoo/depbump/internal/common/logger"
	"github.com/obentoo/depbump/internal/common/output"
	"github.com/spf13/cobra"
)

var (
	// bumpSection overrides the configured section
	bumpSection string
	// bumpDryRun reports without writing
	bumpDryRun bool
	// bumpIndexURL overrides the index URL template
	bumpIndexURL string
)

func init() {
	rootCmd.Flags().StringVarP(&bumpSection, "section", "s", "", "Section to scan (default from config, "+config.DefaultSection+")")
	rootCmd.Flags().BoolVarP(&bumpDryRun, "dry-run", "n", false, "Resolve and report without writing the file")
	rootCmd.Flags().StringVar(&bumpIndexURL, "index-url", "", "Index URL template containing "+config.PackagePlaceholder)
}

// loadConfig reads --config when given, otherwise the first config file found.
func loadConfig() (*config.Config, error) {
	var (
		cfg *config.Config
		err error
	)

	if configPath != "" {
		if _, statErr := os.Stat(configPath); statErr != nil {
			return nil, fmt.Errorf("config file: %w", statErr)
		}
		cfg, err = config.LoadFrom(configPath)
	} else {
		cfg, err = config.Load()
	}
	if err != nil {
		return nil, fmt.Errorf("loading config: %w", err)
	}

	return cfg, nil
}

func runBump(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	if bumpIndexURL != "" {
		cfg.Index.URL = bumpIndexURL
	}
	if bumpSection != "" {
		cfg.Section = bumpSection
	}
	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}

	b, err := bumper.New(cfg, bumper.WithDryRun(bumpDryRun))
	if err != nil {
		return err
	}

	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}

	report, err := b.Run(ctx, args[0])
	if errors.Is(err, context.Canceled) {
		return fmt.Errorf("interrupted, %s was not modified", args[0])
	}
	if report != nil && !quiet {
		displayReport(cmd.OutOrStdout(), report, err)
	}
	return err
}

// statusWidth fits the longest status name
var statusWidth = output.MaxWidth([]string{
	bumper.UpToDate.String(),
	bumper.Bumped.String(),
	bumper.Unparseable.String(),
	bumper.Failed.String(),
})

// displayReport prints one aligned row per reported line and a summary.
// runErr is the error Run returned alongside the report, if any.
func displayReport(w io.Writer, report *bumper.Report, runErr error) {
	var rows []bumper.LineResult
	for _, r := range report.Results {
		if r.Ignorable() && !verbose {
			continue
		}
		rows = append(rows, r)
	}

	if len(rows) == 0 {
		logger.Info("Nothing to check in [%s] of %s", report.Section, report.Path)
		return
	}

	names := make([]string, len(rows))
	for i, r := range rows {
		names[i] = rowName(r)
	}
	nameWidth := output.MaxWidth(names)

	fmt.Fprintln(w)
	output.Header.Fprintf(w, "%s [%s]\n", report.Path, report.Section)
	fmt.Fprintln(w)

	for i, r := range rows {
		status := output.FormatStatus(r.Status.String(), statusWidth)
		name := output.Pad(names[i], nameWidth)
		if r.Package != "" {
			name = output.Sprint(output.Package, name)
		}

		switch r.Status {
		case bumper.Bumped:
			kind := r.Kind.String()
			fmt.Fprintf(w, "  %s  %s  %s → %s  %s\n", name, status, r.OldVersion,
				output.Sprint(output.Success, r.NewVersion), output.Sprint(output.KindColor(kind), kind))
		case bumper.UpToDate:
			fmt.Fprintf(w, "  %s  %s  %s\n", name, status, output.Sprint(output.Dim, r.OldVersion))
		case bumper.Unparseable:
			fmt.Fprintf(w, "  %s  %s  %s\n", name, status, output.Sprint(output.Dim, strings.TrimSpace(r.OldLine)))
		case bumper.Failed:
			fmt.Fprintf(w, "  %s  %s  %v\n", name, status, r.Err)
		}
	}

	displaySummary(w, report, runErr)
}

// rowName is the package name, or the line number for unparsed lines
func rowName(r bumper.LineResult) string {
	if r.Package != "" {
		return r.Package
	}
	return fmt.Sprintf("line %d", r.LineNumber())
}

func displaySummary(w io.Writer, report *bumper.Report, runErr error) {
	bumped := report.Count(bumper.Bumped)
	failed := report.Count(bumper.Failed)

	unrecognized := 0
	for _, r := range report.Results {
		if r.Status == bumper.Unparseable && !r.Ignorable() {
			unrecognized++
		}
	}

	fmt.Fprintln(w)
	switch {
	case bumped > 0 && report.Written:
		output.PrintSuccess(w, "Bumped %d dependenc%s in %s", bumped, plural(bumped), report.Path)
	case bumped > 0 && report.DryRun:
		output.PrintInfo(w, "%d dependenc%s can be bumped (dry run, %s not written)", bumped, plural(bumped), report.Path)
	case bumped > 0:
		reason := "nothing was saved"
		if runErr != nil {
			reason = runErr.Error()
		}
		output.PrintError(w, "%d dependenc%s can be bumped, but %s was not written: %s", bumped, plural(bumped), report.Path, reason)
	case failed == 0 && unrecognized == 0:
		output.PrintSuccess(w, "All dependencies are up to date")
	}

	if failed > 0 {
		output.PrintWarning(w, "%d lookup(s) failed; those lines were left unchanged", failed)
	}
	if unrecognized > 0 {
		output.PrintWarning(w, "%d line(s) were not recognized as dependencies", unrecognized)
	}
}

func plural(n int) string {
	if n == 1 {
		return "y"
	}
	return "ies"
}
