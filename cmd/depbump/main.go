package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/obentoo/depbump/internal/common/logger"
	"github.com/obentoo/depbump/internal/common/output"
	"github.com/spf13/cobra"
)

var (
	verbose bool
	quiet   bool
	noColor bool
	logFile bool
	// configPath overrides the config file lookup
	configPath string
)

var rootCmd = &cobra.Command{
	Use:   "depbump <file>",
	Short: "Bump pinned dependency versions to their latest release",
	Long: `Scan one section of a pyproject-style dependency file, ask the package
index for the latest version of every pinned dependency and rewrite the
file in place with the new versions.

Both dependency forms are understood:
  name = "^1.2.3"
  name = { version = "1.2.3", extras = ["x"] }

Comparators such as ^ or ~ are kept; only the version itself changes.

Examples:
  depbump pyproject.toml                                    Bump [tool.poetry.dependencies]
  depbump pyproject.toml -s tool.poetry.group.dev.dependencies
  depbump pyproject.toml --dry-run                          Show what would change
  depbump pyproject.toml --index-url https://mirror.example/pypi/{package}/json`,
	Args:          cobra.ExactArgs(1),
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		// Configure logging based on flags
		if verbose {
			logger.SetVerbose(true)
		}
		if quiet {
			logger.SetQuiet(true)
		}
		if force := os.Getenv("CLICOLOR_FORCE"); force != "" && force != "0" {
			output.ForceColor()
		}
		if noColor {
			output.NoColor()
		}
		if logFile {
			if err := logger.Default().EnableFileLogging(); err != nil {
				return fmt.Errorf("enabling file logging: %w", err)
			}
		}
		return nil
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		logger.Default().Close()
	},
	RunE: runBump,
}

func init() {
	// Global flags
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Enable verbose output")
	rootCmd.PersistentFlags().BoolVarP(&quiet, "quiet", "q", false, "Suppress non-error output")
	rootCmd.PersistentFlags().BoolVar(&noColor, "no-color", false, "Disable colored output")
	rootCmd.PersistentFlags().BoolVar(&logFile, "log-file", false, "Also write a debug log under $XDG_STATE_HOME/depbump/logs")
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "", "Config file (default $XDG_CONFIG_HOME/depbump/config.yaml)")
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := rootCmd.ExecuteContext(ctx); err != nil {
		output.PrintError(os.Stderr, "%v", err)
		os.Exit(1)
	}
}
