package preview

import (
	"context"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/rs/zerolog"

	"github.com/rshade/entitydeck/internal/metrics"
	"github.com/rshade/entitydeck/internal/source"
)

// Namespaces used by panel sessions.
const (
	NamespacePreview = "preview"
	NamespaceDetail  = "detail"
)

// Status is the load state of one entry.
type Status int

const (
	StatusIdle Status = iota
	StatusLoading
	StatusLoaded
	StatusError
)

// String returns the lowercase status name.
func (s Status) String() string {
	switch s {
	case StatusIdle:
		return "idle"
	case StatusLoading:
		return "loading"
	case StatusLoaded:
		return "loaded"
	case StatusError:
		return "error"
	default:
		return "unknown"
	}
}

// Entry is the cached state of one entity's detail record.
type Entry struct {
	EntityID string
	Status   Status
	Data     *source.DetailRecord
	Err      error
}

// LoadedMsg carries a detail fetch result back to the update loop.
type LoadedMsg struct {
	PanelID   string
	Epoch     uint64
	Namespace string
	EntityID  string
	Record    source.DetailRecord
	Err       error
	Elapsed   time.Duration
}

// Options tunes a Cache.
type Options struct {
	Logger  zerolog.Logger
	Metrics *metrics.Recorder
}

// Cache holds detail entries for one panel and namespace. All methods must be called
// from the update loop.
type Cache struct {
	panelID   string
	namespace string
	src       source.DetailSource
	logger    zerolog.Logger
	metrics   *metrics.Recorder

	ctx    context.Context
	cancel context.CancelFunc
	epoch  uint64
	closed bool

	entries map[string]*Entry
}

// New creates an empty cache. ctx bounds every fetch it issues.
func New(ctx context.Context, panelID, namespace string, src source.DetailSource, opts Options) *Cache {
	c := &Cache{
		panelID:   panelID,
		namespace: namespace,
		src:       src,
		logger: opts.Logger.With().
			Str("panel_id", panelID).
			Str("namespace", namespace).
			Logger(),
		metrics: opts.Metrics,
		entries: make(map[string]*Entry),
	}
	c.ctx, c.cancel = context.WithCancel(ctx)
	return c
}

// GetOrFetch returns the entry for entityID. The command is non-nil only when a fetch
// had to be started: the entry was unknown, or its last fetch failed.
func (c *Cache) GetOrFetch(entityID string) (Entry, tea.Cmd) {
	if c.closed {
		return Entry{EntityID: entityID}, nil
	}
	e, ok := c.entries[entityID]
	if ok && (e.Status == StatusLoading || e.Status == StatusLoaded) {
		c.metrics.DetailHit(c.namespace)
		return *e, nil
	}
	if !ok {
		e = &Entry{EntityID: entityID}
		c.entries[entityID] = e
	}
	e.Status = StatusLoading
	e.Err = nil

	c.logger.Debug().Str("entity_id", entityID).Msg("fetching detail")
	return *e, c.fetch(entityID)
}

func (c *Cache) fetch(entityID string) tea.Cmd {
	ctx, src := c.ctx, c.src
	msg := LoadedMsg{
		PanelID:   c.panelID,
		Epoch:     c.epoch,
		Namespace: c.namespace,
		EntityID:  entityID,
	}
	return func() tea.Msg {
		start := time.Now()
		msg.Record, msg.Err = src.FetchDetail(ctx, entityID)
		msg.Elapsed = time.Since(start)
		return msg
	}
}

// Get returns the entry for entityID without fetching.
func (c *Cache) Get(entityID string) (Entry, bool) {
	e, ok := c.entries[entityID]
	if !ok {
		return Entry{EntityID: entityID}, false
	}
	return *e, true
}

// Resolve applies a fetch result. Results for another panel, namespace or epoch, or for
// an entry that is no longer loading, are dropped. It reports whether the entry changed.
func (c *Cache) Resolve(msg LoadedMsg) bool {
	if c.closed || msg.PanelID != c.panelID || msg.Namespace != c.namespace || msg.Epoch != c.epoch {
		c.metrics.StaleDropped(c.namespace)
		return false
	}
	e, ok := c.entries[msg.EntityID]
	if !ok || e.Status != StatusLoading {
		c.metrics.StaleDropped(c.namespace)
		return false
	}

	if msg.Err != nil {
		e.Status = StatusError
		e.Err = msg.Err
		e.Data = nil
		c.metrics.DetailFetch(c.namespace, resultOf(msg.Err))
		c.logger.Warn().Err(msg.Err).Str("entity_id", msg.EntityID).Msg("detail fetch failed")
		return true
	}

	record := msg.Record
	e.Status = StatusLoaded
	e.Data = &record
	e.Err = nil
	c.metrics.DetailFetch(c.namespace, metrics.ResultOK)
	c.logger.Debug().
		Str("entity_id", msg.EntityID).
		Dur("elapsed", msg.Elapsed).
		Msg("detail loaded")
	return true
}

func resultOf(err error) string {
	if source.IsCanceled(err) {
		return metrics.ResultCanceled
	}
	return metrics.ResultError
}

// Close cancels outstanding fetches and evicts every entry. Later results are dropped.
func (c *Cache) Close() {
	if c.closed {
		return
	}
	c.closed = true
	c.cancel()
	c.epoch++
	c.entries = make(map[string]*Entry)
}

// Len returns the number of cached entries, in any state.
func (c *Cache) Len() int { return len(c.entries) }

// Namespace returns the cache namespace.
func (c *Cache) Namespace() string { return c.namespace }

// PanelID returns the owning panel id.
func (c *Cache) PanelID() string { return c.panelID }

// Epoch returns the current generation.
func (c *Cache) Epoch() uint64 { return c.epoch }

// Closed reports whether Close was called.
func (c *Cache) Closed() bool { return c.closed }
