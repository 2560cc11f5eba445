package cli

import (
	"errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/rshade/entitydeck/internal/config"
)

// newConfigCmd creates the config command group.
func newConfigCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "config",
		Short: "Manage the entitydeck configuration file",
	}
	cmd.AddCommand(NewConfigInitCmd(), NewConfigShowCmd(), NewConfigValidateCmd())
	return cmd
}

// NewConfigInitCmd creates the config init command for initializing configuration.
func NewConfigInitCmd() *cobra.Command {
	var force bool

	cmd := &cobra.Command{
		Use:   "init",
		Short: "Initialize configuration file with default values",
		Long: `Creates a new configuration file with default values at ~/.entitydeck/config.yaml,
or at the path given by --config.`,
		Example: `  # Create the default configuration
  entitydeck config init

  # Create configuration, overwriting existing
  entitydeck config init --force`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			path, _ := cmd.Flags().GetString("config")
			return initConfig(cmd, path, force)
		},
	}

	cmd.Flags().BoolVar(&force, "force", false, "overwrite existing configuration file")

	return cmd
}

// initConfig writes the default configuration to path, or to the default location when
// path is empty.
func initConfig(cmd *cobra.Command, path string, force bool) error {
	cfg := config.Default()
	if path != "" {
		cfg.SetPath(path)
	}
	if cfg.Path() == "" {
		return errors.New("cannot determine the configuration path, pass --config")
	}

	// Check if config already exists and force isn't set
	if !force {
		if _, err := os.Stat(cfg.Path()); err == nil {
			return errors.New("configuration file already exists, use --force to overwrite")
		} else if !os.IsNotExist(err) {
			return fmt.Errorf("cannot access config path %s: %w", cfg.Path(), err)
		}
	}

	if err := cfg.Save(); err != nil {
		return fmt.Errorf("failed to save configuration: %w", err)
	}

	cmd.Printf("Configuration initialized successfully\n")
	cmd.Printf("Configuration file: %s\n", cfg.Path())

	return nil
}

// NewConfigShowCmd creates the config show command, printing the effective
// configuration after file and environment overrides.
func NewConfigShowCmd() *cobra.Command {
	var outFmt string

	cmd := &cobra.Command{
		Use:   "show",
		Short: "Print the effective configuration",
		Example: `  # Show the configuration as YAML
  entitydeck config show

  # Show it as JSON
  entitydeck config show -o json`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if outFmt != outputJSON && outFmt != outputYAML {
				return fmt.Errorf("%w: got %q", errUnsupportedFormat, outFmt)
			}
			return encodeStructured(cmd.OutOrStdout(), outFmt, config.GetGlobalConfig())
		},
	}

	cmd.Flags().StringVarP(&outFmt, "output", "o", outputYAML, "output format: yaml or json")

	return cmd
}
