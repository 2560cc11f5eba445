package cli

import (
	"context"
	"fmt"
	"os"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/rshade/entitydeck/internal/config"
	"github.com/rshade/entitydeck/internal/logging"
	"github.com/rshade/entitydeck/internal/metrics"
)

// isTerminal checks if the given file is a terminal.
func isTerminal(f *os.File) bool {
	return term.IsTerminal(int(f.Fd()))
}

// logger is the package-level logger for CLI operations.
var logger zerolog.Logger //nolint:gochecknoglobals // Required for zerolog context integration

// NewRootCmd creates the root Cobra command for the entitydeck CLI.
// It loads configuration, wires up logging and metrics, and registers the subcommands.
// Running it without a subcommand opens the browser.
func NewRootCmd(ver string) *cobra.Command {
	var (
		logResult   *logging.LogPathResult
		cfgPath     string
		projectPath string
	)

	cmd := &cobra.Command{
		Use:     "entitydeck",
		Short:   "Browse paginated entity collections in side-by-side panels",
		Long:    "entitydeck: a terminal browser for large paginated collections with infinite scroll and detail views",
		Version: ver,
		Example: rootCmdExample,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			if cmd.Context() == nil {
				cmd.SetContext(context.Background())
			}
			cfg, err := loadConfig(cmd.Context(), cfgPath, projectPath)
			if err != nil {
				// config init is how a missing or broken file gets replaced.
				if cmd.Name() != "init" {
					return err
				}
				cfg = config.Default()
			}
			config.SetGlobalConfig(cfg)

			logResult = setupLogging(cmd)

			rec := metrics.NewRecorder()
			cmd.SetContext(withRecorder(cmd.Context(), rec))
			startMetricsServer(cmd, cfg, rec)
			return nil
		},
		PersistentPostRunE: func(cmd *cobra.Command, _ []string) error {
			return cleanupLogging(cmd, logResult)
		},
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runBrowse(cmd, browseOptions{})
		},
	}

	cmd.PersistentFlags().StringVar(&cfgPath, "config", "", "config file (default ~/.entitydeck/config.yaml)")
	cmd.PersistentFlags().StringVar(&projectPath, "project-config", "",
		"project overlay file (default: nearest "+config.ProjectConfigFile+" above the working directory)")
	cmd.PersistentFlags().Bool("debug", false, "enable debug logging")
	cmd.PersistentFlags().String("metrics-addr", "", "serve Prometheus metrics on this address (e.g. :9090)")
	cmd.PersistentFlags().String("source", "", "entity source: mock, sqlite or postgres (overrides config)")
	cmd.PersistentFlags().String("db", "", "sqlite database path (overrides config)")
	cmd.PersistentFlags().String("dsn", "", "postgres connection string (overrides config)")
	cmd.AddCommand(newBrowseCmd(), newPagesCmd(), newDetailCmd(), newSeedCmd(), newConfigCmd())

	return cmd
}

// loadConfig reads the config file named by --config, or the default file when the flag
// is empty, merges the project overlay over it and then applies environment overrides.
// Commands validate after their own flag overrides.
func loadConfig(ctx context.Context, path, projectPath string) (*config.Config, error) {
	var cfg *config.Config
	if path == "" {
		cfg = config.New()
	} else {
		loaded, err := config.Load(path)
		if err != nil {
			return nil, err
		}
		cfg = loaded
	}

	startDir, err := os.Getwd()
	if err != nil {
		startDir = "."
	}
	cfg = config.WithProjectOverlay(ctx, cfg, config.ResolveProjectConfig(ctx, projectPath, startDir))
	cfg.ApplyEnv()
	return cfg, nil
}

// applySourceFlags lets --source, --db and --dsn override the configured backend.
// --db and --dsn imply their source kind unless --source is given.
func applySourceFlags(cmd *cobra.Command, cfg *config.Config) {
	kind, _ := cmd.Flags().GetString("source")
	if db, _ := cmd.Flags().GetString("db"); db != "" {
		cfg.Source.SQLitePath = db
		cfg.Source.Kind = config.SourceSQLite
	}
	if dsn, _ := cmd.Flags().GetString("dsn"); dsn != "" {
		cfg.Source.PostgresDSN = dsn
		cfg.Source.Kind = config.SourcePostgres
	}
	if kind != "" {
		cfg.Source.Kind = kind
	}
}

// startMetricsServer serves /metrics in the background for the lifetime of the command.
func startMetricsServer(cmd *cobra.Command, cfg *config.Config, rec *metrics.Recorder) {
	addr, _ := cmd.Flags().GetString("metrics-addr")
	if addr == "" {
		addr = cfg.Metrics.Address
	}
	if addr == "" {
		return
	}
	ctx := cmd.Context()
	go func() {
		if err := rec.Serve(ctx, addr); err != nil {
			logger.Warn().Ctx(ctx).Err(err).Str("addr", addr).Msg("metrics server stopped")
		}
	}()
	logger.Info().Ctx(ctx).Str("addr", addr).Msg("serving metrics")
}

const rootCmdExample = `  # Browse the built-in mock collection
  entitydeck

  # Browse a sqlite database with three panels
  entitydeck browse --db entities.db --panels 3

  # Create a sqlite database with 10,000 entities
  entitydeck seed --db entities.db --count 10000

  # Browse a postgres table
  entitydeck browse --dsn postgres://localhost/entities

  # Print the first five pages as JSON
  entitydeck pages --max-pages 5 --output json

  # Show one entity
  entitydeck detail entity-42

  # Initialize configuration
  entitydeck config init`

// commandError wraps err with the failing operation for the user.
func commandError(op string, err error) error {
	return fmt.Errorf("%s: %w", op, err)
}
