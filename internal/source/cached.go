package source

import (
	"context"
	"encoding/json"
	"errors"

	"github.com/rs/zerolog"

	"github.com/rshade/entitydeck/internal/engine/cache"
)

// CachedDetails serves detail records from a disk cache before asking inner.
// Cache failures are logged and never fail a lookup.
type CachedDetails struct {
	inner  DetailSource
	store  *cache.FileStore
	logger zerolog.Logger
}

// WithDetailCache wraps inner. A nil or disabled store returns inner unchanged.
func WithDetailCache(inner DetailSource, store *cache.FileStore, logger zerolog.Logger) DetailSource {
	if store == nil || !store.IsEnabled() {
		return inner
	}
	return &CachedDetails{inner: inner, store: store, logger: logger}
}

// FetchDetail implements DetailSource.
func (c *CachedDetails) FetchDetail(ctx context.Context, entityID string) (DetailRecord, error) {
	entry, err := c.store.Get(entityID)
	switch {
	case err == nil:
		var rec DetailRecord
		if decodeErr := json.Unmarshal(entry.Data, &rec); decodeErr == nil {
			return rec, nil
		}
		c.logger.Warn().Str("entity_id", entityID).Msg("discarding undecodable cached detail")
		if delErr := c.store.Delete(entityID); delErr != nil {
			c.logger.Warn().Err(delErr).Str("entity_id", entityID).Msg("detail cache delete failed")
		}
	case errors.Is(err, cache.ErrCacheNotFound), errors.Is(err, cache.ErrCacheExpired):
	default:
		c.logger.Warn().Err(err).Str("entity_id", entityID).Msg("detail cache read failed")
	}

	rec, err := c.inner.FetchDetail(ctx, entityID)
	if err != nil {
		return DetailRecord{}, err
	}
	if data, marshalErr := json.Marshal(rec); marshalErr == nil {
		if setErr := c.store.Set(entityID, data); setErr != nil {
			c.logger.Warn().Err(setErr).Str("entity_id", entityID).Msg("detail cache write failed")
		}
	}
	return rec, nil
}
