package cli

import (
	"context"
	"errors"
	"fmt"

	"github.com/rs/zerolog"

	"github.com/rshade/entitydeck/internal/config"
	"github.com/rshade/entitydeck/internal/engine/cache"
	"github.com/rshade/entitydeck/internal/source"
)

// sources is the backend selected by configuration, with its detail decorators applied.
type sources struct {
	Pages   source.PaginatedSource
	Details source.DetailSource
	close   func() error
}

// Close releases the backend.
func (s *sources) Close() error {
	if s.close == nil {
		return nil
	}
	return s.close()
}

// openSources builds the configured backend. Details are coalesced when
// source.coalesce_details is set and served from the disk cache when detail_cache is
// enabled.
func openSources(ctx context.Context, cfg *config.Config, log zerolog.Logger) (*sources, error) {
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	var (
		backend source.Backend
		closer  func() error
	)
	switch cfg.Source.Kind {
	case config.SourceSQLite, config.SourcePostgres:
		db, err := openSQLSource(ctx, cfg)
		if err != nil {
			return nil, err
		}
		backend, closer = db, db.Close
	case config.SourceMock:
		backend = source.NewMockSource(source.MockOptions{
			Total:         cfg.Source.MockTotal,
			PageSize:      cfg.Paging.PageSize,
			PageLatency:   cfg.PageLatency(),
			DetailLatency: cfg.DetailLatency(),
		})
	default:
		return nil, fmt.Errorf("%w: %q", config.ErrInvalidSource, cfg.Source.Kind)
	}

	var details source.DetailSource = backend
	if cfg.Source.CoalesceDetails {
		details = source.Coalesce(details)
	}
	if cfg.DetailCache.Enabled {
		var opts []cache.Option
		if cfg.DetailCache.Compress {
			opts = append(opts, cache.WithCompression())
		}
		store, err := cache.NewFileStore(cfg.DetailCache.Directory, true, cfg.CacheTTL(), opts...)
		if err != nil {
			log.Warn().Ctx(ctx).Err(err).Str("dir", cfg.DetailCache.Directory).
				Msg("detail cache unavailable, continuing without it")
		} else {
			pruneDetailCache(ctx, store, log)
			details = source.WithDetailCache(details, store, log)
		}
	}

	log.Debug().Ctx(ctx).
		Str("source", cfg.Source.Kind).
		Bool("coalesce", cfg.Source.CoalesceDetails).
		Bool("detail_cache", cfg.DetailCache.Enabled).
		Msg("sources opened")

	return &sources{Pages: backend, Details: details, close: closer}, nil
}

// pruneDetailCache drops expired entries left over from earlier runs.
func pruneDetailCache(ctx context.Context, store *cache.FileStore, log zerolog.Logger) {
	removed, err := store.CleanupExpired()
	if err != nil {
		log.Warn().Ctx(ctx).Err(err).Msg("detail cache cleanup failed")
		return
	}
	remaining, _ := store.Count()
	log.Debug().Ctx(ctx).Int("removed", removed).Int("remaining", remaining).Msg("detail cache pruned")
}

// openSQLSource opens the sqlite or postgres backend named by source.kind.
func openSQLSource(ctx context.Context, cfg *config.Config) (*source.SQLSource, error) {
	switch cfg.Source.Kind {
	case config.SourceSQLite:
		db, err := source.OpenSQLite(cfg.Source.SQLitePath, cfg.Paging.PageSize)
		if err != nil {
			return nil, commandError("opening sqlite source", err)
		}
		return db, nil
	case config.SourcePostgres:
		db, err := source.OpenPostgres(ctx, cfg.Source.PostgresDSN, cfg.Paging.PageSize)
		if err != nil {
			return nil, commandError("opening postgres source", err)
		}
		return db, nil
	default:
		return nil, fmt.Errorf("%w: %q is not a database source", config.ErrInvalidSource, cfg.Source.Kind)
	}
}

// errNoEntity is returned by detail when the backend has no such id.
var errNoEntity = errors.New("entity not found")
