package main

import (
	"fmt"
	"os"

	"github.com/obentoo/depbump/internal/common/config"
	"github.com/obentoo/depbump/internal/common/output"
	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"
)

// configInitForce overwrites an existing config file
var configInitForce bool

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Manage the depbump configuration",
	Long: `Manage the depbump configuration file.

The file is looked up at $XDG_CONFIG_HOME/depbump/config.yaml, then
~/.depbump/config.yaml. Without a file the built-in defaults query PyPI.`,
}

var configInitCmd = &cobra.Command{
	Use:   "init",
	Short: "Write the default configuration",
	Args:  cobra.NoArgs,
	RunE:  runConfigInit,
}

var configShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Print the effective configuration",
	Args:  cobra.NoArgs,
	RunE:  runConfigShow,
}

var configPathCmd = &cobra.Command{
	Use:   "path",
	Short: "Print the config file path",
	Args:  cobra.NoArgs,
	RunE:  runConfigPath,
}

func init() {
	configInitCmd.Flags().BoolVarP(&configInitForce, "force", "f", false, "Overwrite an existing config file")

	configCmd.AddCommand(configInitCmd, configShowCmd, configPathCmd)
	rootCmd.AddCommand(configCmd)
}

// resolveConfigPath returns --config, or the file Load would read
func resolveConfigPath() (string, error) {
	if configPath != "" {
		return configPath, nil
	}
	return config.FindConfigPath()
}

func runConfigInit(cmd *cobra.Command, args []string) error {
	path := configPath
	if path == "" {
		var err error
		if path, err = config.DefaultConfigPath(); err != nil {
			return err
		}
	}

	if _, err := os.Stat(path); err == nil && !configInitForce {
		return fmt.Errorf("config already exists at %s (use --force to overwrite)", path)
	}

	cfg := config.Default()
	var err error
	if configPath != "" {
		err = cfg.SaveTo(path)
	} else {
		err = cfg.Save()
	}
	if err != nil {
		return fmt.Errorf("writing config: %w", err)
	}

	output.PrintSuccess(cmd.OutOrStdout(), "Wrote default config to %s", path)
	return nil
}

func runConfigShow(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	data, err := yaml.Marshal(cfg)
	if err != nil {
		return err
	}

	fmt.Fprint(cmd.OutOrStdout(), string(data))
	return nil
}

func runConfigPath(cmd *cobra.Command, args []string) error {
	path, err := resolveConfigPath()
	if err != nil {
		return err
	}
	fmt.Fprintln(cmd.OutOrStdout(), path)
	return nil
}
