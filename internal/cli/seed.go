package cli

import (
	"errors"
	"time"

	"github.com/MakeNowJust/heredoc/v2"
	"github.com/spf13/cobra"

	"github.com/rshade/entitydeck/internal/config"
	"github.com/rshade/entitydeck/internal/engine/batch"
	"github.com/rshade/entitydeck/internal/logging"
)

const defaultSeedCount = 1000

func newSeedCmd() *cobra.Command {
	var count int

	cmd := &cobra.Command{
		Use:   "seed",
		Short: "Fill a sqlite or postgres database with generated entities",
		Long: heredoc.Doc(`
			Creates (or replaces) entity-1..entity-N in the sqlite database given by --db or
			source.sqlite_path, or in the postgres database given by --dsn, using the same
			records as the mock source. Rows are inserted in batches inside one transaction.
		`),
		Example: heredoc.Doc(`
			# Create a database with 10,000 entities
			entitydeck seed --db entities.db --count 10000

			# Fill a postgres table
			entitydeck seed --dsn postgres://localhost/entities --count 5000
		`),
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runSeed(cmd, count)
		},
	}

	cmd.Flags().IntVar(&count, "count", defaultSeedCount, "number of entities to create")

	return cmd
}

func runSeed(cmd *cobra.Command, count int) error {
	ctx := cmd.Context()
	log := logging.FromContext(ctx)

	cfg := config.GetGlobalConfig()
	applySourceFlags(cmd, cfg)
	target, err := seedTarget(cfg)
	if err != nil {
		return err
	}

	db, err := openSQLSource(ctx, cfg)
	if err != nil {
		return err
	}
	defer func() { _ = db.Close() }()

	start := time.Now()
	progress := func(p batch.Progress) {
		log.Debug().Ctx(ctx).Int("done", p.DoneItems).Int("total", p.TotalItems).Msg("seed batch committed")
		if p.TotalBatches > 1 {
			cmd.PrintErrf("\rSeeding... %3.0f%% (%d/%d)", p.Percent(), p.DoneItems, p.TotalItems)
			if p.Complete() {
				cmd.PrintErrln()
			}
		}
	}
	if err = db.SeedWithProgress(ctx, count, start, progress); err != nil {
		return commandError("seeding database", err)
	}
	log.Info().Ctx(ctx).Int("count", count).Dur("elapsed", time.Since(start)).Msg("database seeded")

	cmd.Printf("Seeded %d entities into %s\n", count, target)
	return nil
}

// errNoDatabase is returned by seed when no database backend is configured.
var errNoDatabase = errors.New("seed needs a database: pass --db or --dsn, or set source.sqlite_path")

// seedTarget describes the database seed writes to, without credentials.
func seedTarget(cfg *config.Config) (string, error) {
	switch {
	case cfg.Source.Kind == config.SourceSQLite && cfg.Source.SQLitePath != "":
		return cfg.Source.SQLitePath, nil
	case cfg.Source.Kind == config.SourcePostgres && cfg.Source.PostgresDSN != "":
		return "postgres", nil
	case cfg.Source.SQLitePath != "":
		cfg.Source.Kind = config.SourceSQLite
		return cfg.Source.SQLitePath, nil
	default:
		return "", errNoDatabase
	}
}
