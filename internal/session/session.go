package session

import (
	"context"
	"errors"
	"fmt"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/rs/zerolog"

	"github.com/rshade/entitydeck/internal/engine/fetch"
	"github.com/rshade/entitydeck/internal/engine/preview"
	"github.com/rshade/entitydeck/internal/engine/window"
	"github.com/rshade/entitydeck/internal/metrics"
	"github.com/rshade/entitydeck/internal/source"
	listview "github.com/rshade/entitydeck/internal/tui/list"
)

// Panel session errors.
var (
	ErrInvalidTransition = errors.New("invalid panel transition")
	ErrNoSelection       = errors.New("no entity at index")
)

// Mode is the view state of a panel.
type Mode int

const (
	ModeListing Mode = iota
	ModeDetail
)

// String returns the lowercase mode name.
func (m Mode) String() string {
	switch m {
	case ModeListing:
		return "listing"
	case ModeDetail:
		return "detail"
	default:
		return "unknown"
	}
}

// Options configures a Session.
type Options struct {
	Debounce         time.Duration
	DuplicatePolicy  fetch.DuplicatePolicy
	NearEndFraction  float64
	Overscan         int
	ShareDetailCache bool
	Width            int
	Height           int

	// Render draws one list row. Nil renders the entity name.
	Render listview.RenderFunc[source.Entity]

	Logger  zerolog.Logger
	Metrics *metrics.Recorder
}

// PanelState is a snapshot of a panel for rendering and tests.
type PanelState struct {
	ID              string
	Items           []source.Entity
	FetchStatus     fetch.Status
	FetchErr        error
	HasMore         bool
	Selected        int
	Mode            Mode
	DetailEntityID  string
	PopoverEntityID string
}

// Session is one panel. All methods must be called from the update loop.
type Session struct {
	id     string
	logger zerolog.Logger

	coord    *fetch.Coordinator
	list     *listview.VirtualListModel[source.Entity]
	previews *preview.Cache
	details  *preview.Cache

	mode      Mode
	detailID  string
	popoverID string
	closed    bool
}

// New builds a session for panel id. Call Init to issue the first page fetch.
func New(ctx context.Context, id string, pages source.PaginatedSource, details source.DetailSource, opts Options) *Session {
	logger := opts.Logger.With().Str("panel_id", id).Logger()

	render := opts.Render
	if render == nil {
		render = func(e source.Entity, selected bool, _ int) string {
			if selected {
				return "> " + e.Name
			}
			return "  " + e.Name
		}
	}
	list := listview.NewVirtualListModel[source.Entity](nil, opts.Height, opts.Width, render)
	list.SetOverscan(opts.Overscan)
	if opts.NearEndFraction == 0 {
		opts.NearEndFraction = window.DefaultNearEndFraction
	}
	list.SetNearEndFraction(opts.NearEndFraction)

	cacheOpts := preview.Options{Logger: opts.Logger, Metrics: opts.Metrics}
	previews := preview.New(ctx, id, preview.NamespacePreview, details, cacheOpts)
	detailCache := previews
	if !opts.ShareDetailCache {
		detailCache = preview.New(ctx, id, preview.NamespaceDetail, details, cacheOpts)
	}

	return &Session{
		id:     id,
		logger: logger,
		coord: fetch.New(ctx, id, pages, fetch.Options{
			Debounce:        opts.Debounce,
			DuplicatePolicy: opts.DuplicatePolicy,
			Logger:          opts.Logger,
			Metrics:         opts.Metrics,
		}),
		list:     list,
		previews: previews,
		details:  detailCache,
		mode:     ModeListing,
	}
}

// Init issues the first page fetch.
func (s *Session) Init() tea.Cmd {
	return s.coord.Start()
}

// Update routes a message addressed to this panel. Input messages are applied to the
// list only while listing.
func (s *Session) Update(msg tea.Msg) tea.Cmd {
	if s.closed {
		return nil
	}
	switch msg := msg.(type) {
	case fetch.DebounceMsg:
		return s.coord.HandleDebounce(msg)
	case fetch.PageMsg:
		if !s.coord.HandlePage(msg) {
			return nil
		}
		s.list.SetItems(s.coord.Items())
		return s.requestMoreIfNearEnd()
	case preview.LoadedMsg:
		s.resolve(msg)
		return nil
	case tea.WindowSizeMsg:
		s.list.SetSize(msg.Width, msg.Height)
		return s.requestMoreIfNearEnd()
	case tea.KeyMsg, tea.MouseMsg:
		if s.mode != ModeListing {
			return nil
		}
		s.list.Update(msg)
		return s.requestMoreIfNearEnd()
	}
	return nil
}

func (s *Session) resolve(msg preview.LoadedMsg) {
	switch msg.Namespace {
	case s.previews.Namespace():
		s.previews.Resolve(msg)
	case s.details.Namespace():
		s.details.Resolve(msg)
	default:
		s.logger.Debug().Str("namespace", msg.Namespace).Msg("dropping result for unknown namespace")
	}
}

// requestMoreIfNearEnd asks the coordinator for the next page when the last visible row
// crossed the threshold. The coordinator ignores the call while a fetch is in flight.
func (s *Session) requestMoreIfNearEnd() tea.Cmd {
	if !s.list.NearEnd() {
		return nil
	}
	return s.coord.RequestMore()
}

// ScrollBy scrolls the list by delta lines while listing.
func (s *Session) ScrollBy(delta int) tea.Cmd {
	if s.closed || s.mode != ModeListing {
		return nil
	}
	s.list.ScrollBy(delta)
	return s.requestMoreIfNearEnd()
}

// SetSize resizes the list viewport.
func (s *Session) SetSize(width, height int) tea.Cmd {
	return s.Update(tea.WindowSizeMsg{Width: width, Height: height})
}

// Select enters Detail for the entity at index and starts its detail fetch.
func (s *Session) Select(index int) (tea.Cmd, error) {
	if s.closed || s.mode != ModeListing {
		return nil, fmt.Errorf("select in %s: %w", s.mode, ErrInvalidTransition)
	}
	items := s.coord.Items()
	if index < 0 || index >= len(items) {
		return nil, fmt.Errorf("%w %d", ErrNoSelection, index)
	}
	entity := items[index]
	s.list.SetSelected(index)
	s.popoverID = ""
	s.mode = ModeDetail
	s.detailID = entity.ID

	_, cmd := s.details.GetOrFetch(entity.ID)
	s.logger.Debug().Str("entity_id", entity.ID).Msg("entering detail")
	return cmd, nil
}

// SelectCurrent enters Detail for the selected row.
func (s *Session) SelectCurrent() (tea.Cmd, error) {
	return s.Select(s.list.Selected())
}

// Back returns from Detail to Listing. The list keeps its position.
func (s *Session) Back() error {
	if s.closed || s.mode != ModeDetail {
		return fmt.Errorf("back in %s: %w", s.mode, ErrInvalidTransition)
	}
	s.mode = ModeListing
	s.logger.Debug().Str("entity_id", s.detailID).Msg("leaving detail")
	s.detailID = ""
	return nil
}

// TogglePreview opens the preview popover for entityID, or closes it when it is
// already open for that entity.
func (s *Session) TogglePreview(entityID string) tea.Cmd {
	if s.closed || s.mode != ModeListing {
		return nil
	}
	if s.popoverID == entityID {
		s.popoverID = ""
		return nil
	}
	s.popoverID = entityID
	_, cmd := s.previews.GetOrFetch(entityID)
	return cmd
}

// ClosePreview closes the popover. Its cache entry is kept.
func (s *Session) ClosePreview() {
	s.popoverID = ""
}

// Retry refetches what failed: the open detail record, or the page that errored.
func (s *Session) Retry() tea.Cmd {
	if s.closed {
		return nil
	}
	if s.mode == ModeDetail {
		if e, ok := s.details.Get(s.detailID); ok && e.Status == preview.StatusError {
			_, cmd := s.details.GetOrFetch(s.detailID)
			return cmd
		}
		return nil
	}
	if s.popoverID != "" {
		if e, ok := s.previews.Get(s.popoverID); ok && e.Status == preview.StatusError {
			_, cmd := s.previews.GetOrFetch(s.popoverID)
			return cmd
		}
	}
	return s.coord.Retry()
}

// Reload drops every loaded page and starts again from the first one.
func (s *Session) Reload() tea.Cmd {
	if s.closed || s.mode != ModeListing {
		return nil
	}
	s.popoverID = ""
	cmd := s.coord.Reset()
	s.list.SetItems(s.coord.Items())
	s.logger.Debug().Msg("panel reloaded")
	return cmd
}

// Close tears the panel down. Pending fetches are canceled and late results dropped.
func (s *Session) Close() {
	if s.closed {
		return
	}
	s.closed = true
	s.coord.Close()
	s.previews.Close()
	s.details.Close()
	s.popoverID = ""
}

// State returns a snapshot of the panel.
func (s *Session) State() PanelState {
	return PanelState{
		ID:              s.id,
		Items:           s.coord.Items(),
		FetchStatus:     s.coord.Status(),
		FetchErr:        s.coord.Err(),
		HasMore:         s.coord.HasMore(),
		Selected:        s.list.Selected(),
		Mode:            s.mode,
		DetailEntityID:  s.detailID,
		PopoverEntityID: s.popoverID,
	}
}

// ID returns the panel id.
func (s *Session) ID() string { return s.id }

// Mode returns the current view state.
func (s *Session) Mode() Mode { return s.mode }

// Closed reports whether Close was called.
func (s *Session) Closed() bool { return s.closed }

// List returns the list view.
func (s *Session) List() *listview.VirtualListModel[source.Entity] { return s.list }

// Coordinator returns the pagination coordinator.
func (s *Session) Coordinator() *fetch.Coordinator { return s.coord }

// PopoverID returns the entity whose preview is open, or "".
func (s *Session) PopoverID() string { return s.popoverID }

// PreviewEntry returns the cached preview for the open popover.
func (s *Session) PreviewEntry() preview.Entry {
	e, _ := s.previews.Get(s.popoverID)
	return e
}

// DetailEntry returns the cached record of the entity shown in Detail.
func (s *Session) DetailEntry() preview.Entry {
	e, _ := s.details.Get(s.detailID)
	return e
}

// Previews returns the preview cache.
func (s *Session) Previews() *preview.Cache { return s.previews }

// Details returns the detail cache. It is the preview cache when sharing is enabled.
func (s *Session) Details() *preview.Cache { return s.details }
