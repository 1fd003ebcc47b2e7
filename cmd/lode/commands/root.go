package commands

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/lode-build/lode/internal/config"
	"github.com/lode-build/lode/internal/logging"
	"github.com/lode-build/lode/internal/registry"
)

var verbose bool

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "lode",
	Short: "Lode - local package registry for the lode build tool",
	Long: `Lode manages the packages available on this machine: it discovers
packages across the user and system repositories, installs new package
versions from downloaded archives, and removes installed packages safely
using per-package install journals.

Configuration comes from ~/.lode/config.yaml (or config.toml) and LODE_*
environment variables.`,
	SilenceUsage:  true,
	SilenceErrors: false,
}

// Execute runs the root command. Called once from main.
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Enable debug logging")
}

// newManager assembles the configuration, logger and package manager shared
// by every subcommand.
func newManager() (*registry.Manager, *logging.Logger, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, nil, err
	}

	logCfg := logging.DefaultConfig()
	logCfg.Level = cfg.Logging.Level
	logCfg.Development = cfg.Logging.Development
	if verbose {
		logCfg.Level = "debug"
		logCfg.Development = true
	}
	log, err := logging.New(logCfg)
	if err != nil {
		return nil, nil, fmt.Errorf("initializing logger: %w", err)
	}

	m := registry.New(registry.Settings{
		UserRoot:    cfg.UserRoot,
		SystemRoot:  cfg.SystemRoot,
		SearchPaths: cfg.SearchPaths,
		HashIgnore:  cfg.HashIgnore,
	}, log)
	return m, log, nil
}

// repositoryLocation maps the --system flag to a repository location.
func repositoryLocation(system bool) registry.Location {
	if system {
		return registry.LocationSystem
	}
	return registry.LocationUser
}
