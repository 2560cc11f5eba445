package source

import (
	"context"

	"golang.org/x/sync/singleflight"
)

// Coalesced merges concurrent FetchDetail calls for the same entity id into a single
// backend call. Callers keep their own results; a canceled caller stops waiting without
// affecting the others.
type Coalesced struct {
	inner DetailSource
	group singleflight.Group
}

// Coalesce wraps inner with request coalescing.
func Coalesce(inner DetailSource) *Coalesced {
	return &Coalesced{inner: inner}
}

// FetchDetail implements DetailSource.
func (c *Coalesced) FetchDetail(ctx context.Context, entityID string) (DetailRecord, error) {
	shared := context.WithoutCancel(ctx)
	ch := c.group.DoChan(entityID, func() (any, error) {
		return c.inner.FetchDetail(shared, entityID)
	})

	select {
	case <-ctx.Done():
		return DetailRecord{}, &TransportError{Op: "fetch detail", Err: ctx.Err()}
	case res := <-ch:
		if res.Err != nil {
			return DetailRecord{}, res.Err
		}
		rec, _ := res.Val.(DetailRecord)
		return rec, nil
	}
}
