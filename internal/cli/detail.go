package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/rshade/entitydeck/internal/config"
	"github.com/rshade/entitydeck/internal/logging"
	"github.com/rshade/entitydeck/internal/source"
)

func newDetailCmd() *cobra.Command {
	var outFmt string

	cmd := &cobra.Command{
		Use:   "detail <entity-id>",
		Short: "Fetch and print the full record of one entity",
		Example: `  # Show an entity from the mock collection
  entitydeck detail entity-42

  # Show an entity from a sqlite database as YAML
  entitydeck detail entity-7 --db entities.db -o yaml`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runDetail(cmd, args[0], outFmt)
		},
	}

	cmd.Flags().StringVarP(&outFmt, "output", "o", outputTable, "output format: table, json or yaml")

	return cmd
}

func runDetail(cmd *cobra.Command, entityID, format string) error {
	if err := validateOutputFormat(format); err != nil {
		return err
	}

	ctx := cmd.Context()
	log := logging.FromContext(ctx)
	cfg := config.GetGlobalConfig()
	applySourceFlags(cmd, cfg)

	srcs, err := openSources(ctx, cfg, *log)
	if err != nil {
		return err
	}
	defer func() { _ = srcs.Close() }()

	rec, err := srcs.Details.FetchDetail(ctx, entityID)
	if err != nil {
		if source.IsNotFound(err) {
			return fmt.Errorf("%w: %s", errNoEntity, entityID)
		}
		return commandError("fetching detail", err)
	}
	log.Debug().Ctx(ctx).Str("entity_id", entityID).Msg("detail fetched")

	return renderDetailRecord(cmd.OutOrStdout(), format, rec)
}
