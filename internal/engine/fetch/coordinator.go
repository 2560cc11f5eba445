package fetch

import (
	"context"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/rs/zerolog"

	"github.com/rshade/entitydeck/internal/metrics"
	"github.com/rshade/entitydeck/internal/source"
)

// DefaultDebounce is the reference quiescence window for near-end triggers.
const DefaultDebounce = 200 * time.Millisecond

// DebounceMsg fires when a debounce window armed by RequestMore elapses.
type DebounceMsg struct {
	PanelID string
	Epoch   uint64
	Tag     uint64
}

// PageMsg carries the outcome of a page fetch back to the update loop.
type PageMsg struct {
	PanelID string
	Epoch   uint64
	Cursor  source.Cursor
	Page    source.Page
	Err     error
	Elapsed time.Duration
}

// Options tunes a Coordinator.
type Options struct {
	Debounce        time.Duration
	DuplicatePolicy DuplicatePolicy
	Logger          zerolog.Logger
	Metrics         *metrics.Recorder
}

// Coordinator owns the pagination state of one panel: the append-only item list, the
// next cursor and the fetch status. All methods must be called from the update loop.
type Coordinator struct {
	panelID string
	src     source.PaginatedSource
	opts    Options
	logger  zerolog.Logger

	parent context.Context
	ctx    context.Context
	cancel context.CancelFunc

	epoch    uint64
	tag      uint64
	pending  bool
	inFlight bool
	closed   bool
	fetches  int

	cursor  source.Cursor
	hasMore bool
	status  Status
	err     error
	items   []source.Entity
	seen    map[string]struct{}
}

// New creates a coordinator for panelID. ctx bounds every fetch it issues.
func New(ctx context.Context, panelID string, src source.PaginatedSource, opts Options) *Coordinator {
	if opts.DuplicatePolicy == "" {
		opts.DuplicatePolicy = KeepFirst
	}
	if opts.Debounce < 0 {
		opts.Debounce = 0
	}
	c := &Coordinator{
		panelID: panelID,
		src:     src,
		opts:    opts,
		logger:  opts.Logger.With().Str("panel_id", panelID).Logger(),
		parent:  ctx,
	}
	c.resetState()
	return c
}

func (c *Coordinator) resetState() {
	c.ctx, c.cancel = context.WithCancel(c.parent)
	c.pending = false
	c.inFlight = false
	c.cursor = source.Cursor{}
	c.hasMore = true
	c.status = StatusIdle
	c.err = nil
	c.items = nil
	c.seen = make(map[string]struct{})
}

// Start issues the first page fetch right away, bypassing the debounce window.
func (c *Coordinator) Start() tea.Cmd {
	if !c.canFetch() {
		return nil
	}
	return c.issue()
}

// RequestMore signals that the list is near its end. It is safe to call on every render:
// it does nothing while a fetch is in flight, after the last page, or on a closed panel.
// Otherwise it (re)arms the debounce window.
func (c *Coordinator) RequestMore() tea.Cmd {
	if !c.canFetch() {
		if c.inFlight {
			c.opts.Metrics.RequestCoalesced()
		}
		return nil
	}
	if c.opts.Debounce == 0 {
		return c.issue()
	}
	if c.pending {
		c.opts.Metrics.RequestCoalesced()
	}

	c.pending = true
	c.tag++
	msg := DebounceMsg{PanelID: c.panelID, Epoch: c.epoch, Tag: c.tag}
	return tea.Tick(c.opts.Debounce, func(time.Time) tea.Msg {
		return msg
	})
}

// Retry refetches immediately after a failure. It is a no-op unless the status is Error.
func (c *Coordinator) Retry() tea.Cmd {
	if c.status != StatusError || !c.canFetch() {
		return nil
	}
	return c.issue()
}

// HandleDebounce issues the fetch for the newest debounce window. Superseded windows and
// windows from an older epoch are ignored.
func (c *Coordinator) HandleDebounce(msg DebounceMsg) tea.Cmd {
	if msg.PanelID != c.panelID || msg.Epoch != c.epoch || msg.Tag != c.tag {
		return nil
	}
	c.pending = false
	if !c.canFetch() {
		return nil
	}
	c.logger.Debug().Uint64("tag", msg.Tag).Msg("debounce window elapsed")
	return c.issue()
}

// HandlePage applies a page result. It reports true when items were appended.
func (c *Coordinator) HandlePage(msg PageMsg) bool {
	if c.closed || msg.PanelID != c.panelID || msg.Epoch != c.epoch || msg.Cursor != c.cursor {
		c.logger.Debug().
			Uint64("msg_epoch", msg.Epoch).
			Uint64("epoch", c.epoch).
			Stringer("cursor", msg.Cursor).
			Msg("dropping stale page result")
		c.opts.Metrics.StaleDropped("page")
		return false
	}
	c.inFlight = false

	if msg.Err == nil {
		msg.Err = msg.Page.Validate()
	}
	if msg.Err != nil {
		c.status = StatusError
		c.err = msg.Err
		c.opts.Metrics.PageFetch(metrics.ResultError, msg.Elapsed)
		c.logger.Warn().Err(msg.Err).Stringer("cursor", msg.Cursor).Msg("page fetch failed")
		return false
	}

	c.opts.Metrics.PageFetch(metrics.ResultOK, msg.Elapsed)
	c.appendItems(msg.Page.Items)
	c.cursor = msg.Page.Next
	c.hasMore = msg.Page.HasMore
	c.status = StatusIdle
	c.err = nil

	c.logger.Debug().
		Int("received", len(msg.Page.Items)).
		Int("total", len(c.items)).
		Bool("has_more", c.hasMore).
		Dur("elapsed", msg.Elapsed).
		Msg("page applied")
	return true
}

func (c *Coordinator) appendItems(items []source.Entity) {
	if c.opts.DuplicatePolicy == AllowDuplicates {
		c.items = append(c.items, items...)
		return
	}
	dropped := 0
	for _, item := range items {
		if _, dup := c.seen[item.ID]; dup {
			dropped++
			continue
		}
		c.seen[item.ID] = struct{}{}
		c.items = append(c.items, item)
	}
	if dropped > 0 {
		c.logger.Warn().Int("dropped", dropped).Msg("backend returned duplicate entity ids")
		c.opts.Metrics.DuplicatesDropped(dropped)
	}
}

// Reset discards every loaded page and starts over from the first one. Fetches of the
// previous epoch are canceled and their results ignored.
func (c *Coordinator) Reset() tea.Cmd {
	if c.closed {
		return nil
	}
	c.cancel()
	c.epoch++
	c.resetState()
	return c.Start()
}

// Close tears the coordinator down. Later results are dropped without state changes.
func (c *Coordinator) Close() {
	if c.closed {
		return
	}
	c.closed = true
	c.cancel()
	c.epoch++
	c.items = nil
	c.seen = nil
}

func (c *Coordinator) canFetch() bool {
	return !c.closed && !c.inFlight && c.hasMore
}

func (c *Coordinator) issue() tea.Cmd {
	c.inFlight = true
	c.pending = false
	c.status = StatusFetching
	c.err = nil
	c.fetches++

	ctx, src := c.ctx, c.src
	msg := PageMsg{PanelID: c.panelID, Epoch: c.epoch, Cursor: c.cursor}
	c.logger.Debug().Stringer("cursor", msg.Cursor).Msg("fetching page")

	return func() tea.Msg {
		start := time.Now()
		msg.Page, msg.Err = src.FetchPage(ctx, msg.Cursor)
		msg.Elapsed = time.Since(start)
		return msg
	}
}

// PanelID returns the owning panel id.
func (c *Coordinator) PanelID() string { return c.panelID }

// Items returns the loaded entities in cursor order. Callers must not modify the slice.
func (c *Coordinator) Items() []source.Entity { return c.items }

// Len returns the number of loaded entities.
func (c *Coordinator) Len() int { return len(c.items) }

// Status returns the fetch status.
func (c *Coordinator) Status() Status { return c.status }

// Err returns the last fetch error while Status is StatusError.
func (c *Coordinator) Err() error { return c.err }

// HasMore reports whether another page may exist.
func (c *Coordinator) HasMore() bool { return c.hasMore }

// InFlight reports whether a page fetch is outstanding.
func (c *Coordinator) InFlight() bool { return c.inFlight }

// Epoch returns the current generation.
func (c *Coordinator) Epoch() uint64 { return c.epoch }

// Fetches returns how many page fetches have been issued.
func (c *Coordinator) Fetches() int { return c.fetches }

// Closed reports whether Close was called.
func (c *Coordinator) Closed() bool { return c.closed }
