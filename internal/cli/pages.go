package cli

import (
	"context"
	"fmt"

	"github.com/MakeNowJust/heredoc/v2"
	"github.com/spf13/cobra"

	"github.com/rshade/entitydeck/internal/cli/pagination"
	"github.com/rshade/entitydeck/internal/config"
	"github.com/rshade/entitydeck/internal/logging"
	"github.com/rshade/entitydeck/internal/source"
)

func newPagesCmd() *cobra.Command {
	var (
		params  = pagination.NewParams()
		sortBy  string
		outFmt  string
		walkAll bool
	)

	cmd := &cobra.Command{
		Use:   "pages",
		Short: "Fetch pages from the source and print the entities",
		Long: heredoc.Doc(`
			Walks the configured source from the start, following each page's cursor, and prints
			the fetched entities. --max-pages bounds the walk; --all follows the cursor to the end.
			--sort, --offset and --limit then select what is printed.
		`),
		Example: heredoc.Doc(`
			# Print the first page as a table
			entitydeck pages

			# Print the first three pages as JSON
			entitydeck pages --max-pages 3 --output json

			# Walk the whole sqlite collection and print the last ten names
			entitydeck pages --db entities.db --all --sort name:desc --limit 10
		`),
		RunE: func(cmd *cobra.Command, _ []string) error {
			if walkAll {
				params.MaxPages = 0
			}
			field, order, err := pagination.ParseSort(sortBy)
			if err != nil {
				return err
			}
			params.SortField, params.SortOrder = field, order
			return runPages(cmd, *params, outFmt)
		},
	}

	cmd.Flags().IntVar(&params.MaxPages, "max-pages", pagination.DefaultMaxPages, "maximum number of pages to fetch")
	cmd.Flags().BoolVar(&walkAll, "all", false, "fetch every page")
	cmd.Flags().IntVar(&params.Offset, "offset", 0, "skip this many fetched entities")
	cmd.Flags().IntVar(&params.Limit, "limit", 0, "print at most this many entities (0 = all fetched)")
	cmd.Flags().StringVar(&sortBy, "sort", "", "sort fetched entities by id or name, optionally with :asc or :desc")
	cmd.Flags().StringVarP(&outFmt, "output", "o", outputTable, "output format: table, json or yaml")

	return cmd
}

func runPages(cmd *cobra.Command, params pagination.Params, format string) error {
	if err := params.Validate(); err != nil {
		return err
	}
	if err := validateOutputFormat(format); err != nil {
		return err
	}
	sorter := pagination.NewEntitySorter()
	if params.SortField != "" && !sorter.IsValidField(params.SortField) {
		return fmt.Errorf("%w: %q (valid: %v)", pagination.ErrInvalidSortField, params.SortField, sorter.GetValidFields())
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

	walk, err := walkPages(ctx, srcs.Pages, params.MaxPages)
	if err != nil {
		return commandError("fetching pages", err)
	}
	log.Info().Ctx(ctx).Int("pages", walk.pages).Int("items", len(walk.items)).Msg("pages fetched")

	items := sorter.Sort(walk.items, params.SortField, params.SortOrder)
	selected := pagination.Window(items, params.Offset, params.Limit)

	return renderListing(cmd.OutOrStdout(), format, listing{
		Entities: selected,
		Meta: pagination.NewMeta(params, walk.pages, len(walk.items), len(selected),
			walk.hasMore, walk.next.Token()),
	})
}

// pageWalk is the result of following a source's cursors.
type pageWalk struct {
	items   []source.Entity
	pages   int
	hasMore bool
	next    source.Cursor
}

// walkPages fetches up to maxPages pages (0 = all) starting at the null cursor. Pages
// violating the cursor invariant end the walk with a decode error.
func walkPages(ctx context.Context, src source.PaginatedSource, maxPages int) (pageWalk, error) {
	var (
		w      pageWalk
		cursor source.Cursor
	)
	for maxPages == 0 || w.pages < maxPages {
		page, err := src.FetchPage(ctx, cursor)
		if err != nil {
			return w, err
		}
		if err = page.Validate(); err != nil {
			return w, err
		}
		w.pages++
		w.items = append(w.items, page.Items...)
		w.hasMore = page.HasMore
		w.next = page.Next
		if !page.HasMore {
			break
		}
		cursor = page.Next
	}
	return w, nil
}
