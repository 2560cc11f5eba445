package cli

import (
	"context"
	"errors"
	"fmt"
	"os"

	"github.com/MakeNowJust/heredoc/v2"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"

	"github.com/rshade/entitydeck/internal/config"
	"github.com/rshade/entitydeck/internal/engine/fetch"
	"github.com/rshade/entitydeck/internal/logging"
	"github.com/rshade/entitydeck/internal/session"
	"github.com/rshade/entitydeck/internal/tui"
)

// errNotTerminal is returned when the browser is started without a terminal.
var errNotTerminal = errors.New("browse needs an interactive terminal; use 'entitydeck pages' for scripted output")

// browseOptions holds the browse flags. Zero values keep the configured settings.
type browseOptions struct {
	panels      int
	shareDetail bool
}

func newBrowseCmd() *cobra.Command {
	var opts browseOptions

	cmd := &cobra.Command{
		Use:   "browse",
		Short: "Open the multi-panel browser",
		Long: heredoc.Doc(`
			Opens the full-screen browser. Each panel lists the collection independently and
			loads more entities as you scroll near the end.

			Keys: enter opens details, esc goes back, p toggles the preview popover, a and x add
			and close panels, < and > resize the focused panel, r retries a failed load.
			The mouse wheel scrolls, and dragging a panel border resizes it.
		`),
		Example: heredoc.Doc(`
			# Browse the mock collection in three panels
			entitydeck browse --panels 3

			# Browse a sqlite database
			entitydeck browse --db entities.db
		`),
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runBrowse(cmd, opts)
		},
	}

	cmd.Flags().IntVar(&opts.panels, "panels", 0, "number of panels to open (default from config)")
	cmd.Flags().BoolVar(&opts.shareDetail, "share-detail-cache", false,
		"serve detail views from the preview cache of the same panel")

	return cmd
}

// appOptions maps the configuration onto the browser settings.
func appOptions(cfg *config.Config, opts browseOptions) tui.AppOptions {
	panels := cfg.View.InitialPanels
	if opts.panels > 0 {
		panels = opts.panels
	}
	return tui.AppOptions{
		InitialPanels: panels,
		Session: session.Options{
			Debounce:         cfg.Debounce(),
			DuplicatePolicy:  fetch.DuplicatePolicy(cfg.Paging.DuplicatePolicy),
			NearEndFraction:  cfg.Paging.NearEndFraction,
			Overscan:         cfg.View.Overscan,
			ShareDetailCache: cfg.View.ShareDetailCache || opts.shareDetail,
		},
	}
}

func runBrowse(cmd *cobra.Command, opts browseOptions) error {
	ctx := cmd.Context()
	log := logging.FromContext(ctx)

	cfg := config.GetGlobalConfig()
	applySourceFlags(cmd, cfg)

	if !isTerminal(os.Stdout) || !isTerminal(os.Stdin) {
		return errNotTerminal
	}

	srcs, err := openSources(ctx, cfg, *log)
	if err != nil {
		return err
	}
	defer func() {
		if closeErr := srcs.Close(); closeErr != nil {
			log.Warn().Ctx(ctx).Err(closeErr).Msg("closing source")
		}
	}()

	appOpts := appOptions(cfg, opts)
	appOpts.Pages = srcs.Pages
	appOpts.Details = srcs.Details
	appOpts.Logger = *log
	appOpts.Metrics = recorderFrom(ctx)

	appCtx, cancel := context.WithCancel(ctx)
	defer cancel()

	p := tea.NewProgram(
		tui.NewAppModel(appCtx, appOpts),
		tea.WithAltScreen(),
		tea.WithMouseCellMotion(),
		tea.WithContext(ctx),
	)
	if _, err = p.Run(); err != nil && !errors.Is(err, tea.ErrProgramKilled) {
		return fmt.Errorf("running browser: %w", err)
	}

	log.Info().Ctx(ctx).Msg("browser closed")
	return nil
}
