package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/rshade/entitydeck/internal/config"
)

// NewConfigValidateCmd creates the config validate command for validating configuration.
func NewConfigValidateCmd() *cobra.Command {
	var verbose bool
	cmd := &cobra.Command{
		Use:   "validate",
		Short: "Validate configuration file",
		Long: `Validates the configuration file for syntax and semantic correctness.

This includes:
- Schema version compatibility
- Paging settings (page size, near-end fraction, debounce, duplicate policy)
- Source selection and the sqlite path
- Detail cache TTL`,
		Example: `  # Validate current configuration
  entitydeck config validate

  # Validate and show detailed information
  entitydeck config validate --verbose`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runConfigValidate(cmd, verbose)
		},
	}

	cmd.Flags().BoolVarP(&verbose, "verbose", "v", false, "show detailed validation information")

	return cmd
}

// runConfigValidate executes the configuration validation logic.
func runConfigValidate(cmd *cobra.Command, verbose bool) error {
	cfg := config.GetGlobalConfig()

	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("configuration validation failed: %w", err)
	}

	cmd.Printf("Configuration is valid\n")

	if verbose {
		printVerboseDetails(cmd, cfg)
	}

	return nil
}

// printVerboseDetails prints detailed configuration information.
func printVerboseDetails(cmd *cobra.Command, cfg *config.Config) {
	cmd.Println()
	cmd.Println("Configuration details:")
	cmd.Printf("  Config file: %s\n", cfg.Path())
	cmd.Printf("  Source: %s\n", cfg.Source.Kind)
	switch cfg.Source.Kind {
	case config.SourceSQLite:
		cmd.Printf("  SQLite path: %s\n", cfg.Source.SQLitePath)
	case config.SourcePostgres:
		dsn := "(missing)"
		if cfg.Source.PostgresDSN != "" {
			dsn = "(set)"
		}
		cmd.Printf("  Postgres DSN: %s\n", dsn)
	}
	cmd.Printf("  Page size: %d\n", cfg.Paging.PageSize)
	cmd.Printf("  Near-end fraction: %.2f\n", cfg.Paging.NearEndFraction)
	cmd.Printf("  Debounce: %s\n", cfg.Debounce())
	cmd.Printf("  Duplicate policy: %s\n", cfg.Paging.DuplicatePolicy)
	cmd.Printf("  Initial panels: %d\n", cfg.View.InitialPanels)
	cmd.Printf("  Detail cache: %t (ttl %s, compress %t)\n",
		cfg.DetailCache.Enabled, cfg.CacheTTL(), cfg.DetailCache.Compress)
	cmd.Printf("  Logging level: %s\n", cfg.Logging.Level)
	cmd.Printf("  Log file: %s\n", cfg.Logging.File)
}
