package tui

import (
	"context"
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/rs/zerolog"
	"golang.org/x/text/message"

	"github.com/rshade/entitydeck/internal/engine/fetch"
	"github.com/rshade/entitydeck/internal/engine/preview"
	"github.com/rshade/entitydeck/internal/layout"
	"github.com/rshade/entitydeck/internal/metrics"
	"github.com/rshade/entitydeck/internal/session"
	"github.com/rshade/entitydeck/internal/source"
	"github.com/rshade/entitydeck/internal/tui/detail"
)

// Screen geometry, in cells.
const (
	toolbarHeight     = 1
	panelChrome       = 2 // top and bottom border
	headerHeight      = 1
	footerHeight      = 1
	minListHeight     = 1
	popoverHeight     = 7
	wheelStep         = 3
	resizeStepPercent = 5
	percent           = 100

	infoMarker  = "[i]"
	rowIDGap    = "  "
	closeMarker = "[x]"
	backMarker  = "< Back"
)

// AppOptions configures the application model.
type AppOptions struct {
	Pages         source.PaginatedSource
	Details       source.DetailSource
	InitialPanels int

	// Session carries the per-panel tunables. Size, row rendering, logger and metrics
	// are filled in by the app.
	Session session.Options

	Logger  zerolog.Logger
	Metrics *metrics.Recorder
}

// AppModel is the Bubble Tea model of the multi-panel browser.
//
//nolint:recvcheck // Bubble Tea requires value receivers for Init/Update/View interface methods.
type AppModel struct {
	ctx    context.Context
	opts   AppOptions
	logger zerolog.Logger

	layout   *layout.Manager
	sessions map[string]*session.Session
	panes    map[string]*detail.Pane
	clicks   *OutsideClickRegistry
	loading  *LoadingState
	printer  *message.Printer
	keys     KeyMap
	help     help.Model

	focus      int
	width      int
	height     int
	dragging   bool
	dragStartX int
	status     string
	quitting   bool
}

// NewAppModel creates the application with opts.InitialPanels panels. Call Init to start
// loading their first pages.
func NewAppModel(ctx context.Context, opts AppOptions) AppModel {
	m := AppModel{
		ctx:      ctx,
		opts:     opts,
		logger:   opts.Logger.With().Str("component", "tui").Logger(),
		layout:   layout.NewManager(opts.InitialPanels),
		sessions: make(map[string]*session.Session),
		panes:    make(map[string]*detail.Pane),
		clicks:   NewOutsideClickRegistry(),
		loading:  NewLoadingState(),
		printer:  newPrinter(),
		keys:     DefaultKeyMap(),
		help:     help.New(),
		width:    defaultWidth,
		height:   defaultHeight,
	}
	m.reconcile(nil)
	m.resizePanels()
	return m
}

// Init starts the spinner and the first page fetch of every panel.
func (m AppModel) Init() tea.Cmd {
	cmds := []tea.Cmd{m.loading.Init()}
	for _, p := range m.layout.Panels() {
		cmds = append(cmds, m.sessions[p.ID].Init())
	}
	return tea.Batch(cmds...)
}

// Update handles messages and updates the model state (Bubble Tea interface).
func (m AppModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmd tea.Cmd
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		cmd = m.resizePanels()
	case spinner.TickMsg:
		cmd = m.loading.Update(msg)
	case fetch.DebounceMsg:
		cmd = m.route(msg.PanelID, msg)
	case fetch.PageMsg:
		cmd = m.route(msg.PanelID, msg)
	case preview.LoadedMsg:
		cmd = m.route(msg.PanelID, msg)
	case tea.KeyMsg:
		m, cmd = m.handleKey(msg)
	case tea.MouseMsg:
		m, cmd = m.handleMouse(msg)
	}
	m.sync()
	return m, cmd
}

// route delivers a panel-scoped message. Messages for panels that were closed are
// dropped.
func (m AppModel) route(panelID string, msg tea.Msg) tea.Cmd {
	s, ok := m.sessions[panelID]
	if !ok {
		m.logger.Debug().Str("panel_id", panelID).Msg("dropping message for closed panel")
		m.opts.Metrics.StaleDropped("panel")
		return nil
	}
	return s.Update(msg)
}

func (m AppModel) handleKey(msg tea.KeyMsg) (AppModel, tea.Cmd) {
	m.status = ""
	s := m.focused()

	switch {
	case key.Matches(msg, m.keys.Quit):
		m.quitting = true
		m.closeAll()
		return m, tea.Quit
	case key.Matches(msg, m.keys.Help):
		m.help.ShowAll = !m.help.ShowAll
		return m, m.resizePanels()
	case key.Matches(msg, m.keys.NextPanel):
		m.focus = (m.focus + 1) % m.layout.Len()
	case key.Matches(msg, m.keys.PrevPanel):
		m.focus = (m.focus - 1 + m.layout.Len()) % m.layout.Len()
	case key.Matches(msg, m.keys.AddPanel):
		return m.addPanel()
	case key.Matches(msg, m.keys.RemovePanel):
		return m.removePanel(m.focus)
	case key.Matches(msg, m.keys.ShrinkPanel):
		return m.nudge(-1)
	case key.Matches(msg, m.keys.GrowPanel):
		return m.nudge(1)
	case key.Matches(msg, m.keys.Back):
		m.back(s)
	case key.Matches(msg, m.keys.Open):
		return m.open(s, s.List().Selected())
	case key.Matches(msg, m.keys.Preview):
		if item := s.List().GetSelectedItem(); item != nil {
			return m, s.TogglePreview(item.ID)
		}
	case key.Matches(msg, m.keys.Retry):
		return m, s.Retry()
	case key.Matches(msg, m.keys.Reload):
		return m, s.Reload()
	case m.keys.isNavigation(msg):
		if s.Mode() == session.ModeDetail {
			return m, m.panes[s.ID()].Update(msg)
		}
		return m, s.Update(msg)
	}
	return m, nil
}

func (m AppModel) back(s *session.Session) {
	if s.PopoverID() != "" {
		s.ClosePreview()
		return
	}
	if s.Mode() == session.ModeDetail {
		if err := s.Back(); err != nil {
			m.logger.Warn().Err(err).Msg("back failed")
		}
	}
}

func (m AppModel) open(s *session.Session, index int) (AppModel, tea.Cmd) {
	cmd, err := s.Select(index)
	if err != nil {
		m.logger.Debug().Err(err).Str("panel_id", s.ID()).Msg("cannot open detail")
		return m, nil
	}
	return m, cmd
}

func (m AppModel) addPanel() (AppModel, tea.Cmd) {
	before := m.layout.Panels()
	p := m.layout.Add()
	cmds := m.reconcile(before)
	m.focus = m.layout.Index(p.ID)
	cmds = append(cmds, m.resizePanels())
	return m, tea.Batch(cmds...)
}

func (m AppModel) removePanel(index int) (AppModel, tea.Cmd) {
	panels := m.layout.Panels()
	if index < 0 || index >= len(panels) {
		return m, nil
	}
	if err := m.layout.Remove(panels[index].ID); err != nil {
		m.status = err.Error()
		return m, nil
	}
	m.reconcile(panels)
	m.focus = min(m.focus, m.layout.Len()-1)
	return m, m.resizePanels()
}

// reconcile creates sessions for added panels and closes the ones of removed panels.
// It returns the init commands of the new sessions.
func (m AppModel) reconcile(before []layout.Panel) []tea.Cmd {
	diff := layout.Reconcile(before, m.layout.Panels())
	for _, id := range diff.Removed {
		if s, ok := m.sessions[id]; ok {
			s.Close()
			delete(m.sessions, id)
		}
		delete(m.panes, id)
		m.clicks.Unregister(id)
	}

	var cmds []tea.Cmd
	for _, id := range diff.Added {
		s := m.newSession(id)
		m.sessions[id] = s
		m.panes[id] = detail.NewPane(1, 1, func(entry preview.Entry, width int) string {
			return RenderDetailEntry(entry, width, m.loading, m.printer)
		})
		if before != nil {
			cmds = append(cmds, s.Init())
		}
	}
	m.opts.Metrics.PanelsActive(len(m.sessions))
	return cmds
}

func (m AppModel) newSession(id string) *session.Session {
	opts := m.opts.Session
	opts.Render = renderRow
	opts.Logger = m.opts.Logger
	opts.Metrics = m.opts.Metrics
	return session.New(m.ctx, id, m.opts.Pages, m.opts.Details, opts)
}

func (m AppModel) nudge(direction int) (AppModel, tea.Cmd) {
	n := m.layout.Len()
	if n < 2 {
		return m, nil
	}
	divider := m.focus
	if divider == n-1 {
		// Growing the last panel moves the divider on its left.
		divider--
		direction = -direction
	}
	deltaX := direction * m.width * resizeStepPercent / percent
	if err := m.layout.Nudge(divider, deltaX, m.width); err != nil {
		m.logger.Debug().Err(err).Msg("resize ignored")
		return m, nil
	}
	return m, m.resizePanels()
}

func (m AppModel) handleMouse(msg tea.MouseMsg) (AppModel, tea.Cmd) {
	switch {
	case msg.Action == tea.MouseActionMotion && m.dragging:
		m.layout.Drag(msg.X-m.dragStartX, m.width)
		return m, m.resizePanels()
	case msg.Action == tea.MouseActionRelease:
		if m.dragging {
			m.layout.EndResize()
			m.dragging = false
		}
		return m, nil
	case msg.Action != tea.MouseActionPress:
		return m, nil
	}

	idx := m.panelAt(msg.X, msg.Y)
	//nolint:exhaustive // Other buttons are ignored.
	switch msg.Button {
	case tea.MouseButtonWheelUp, tea.MouseButtonWheelDown:
		if idx < 0 {
			return m, nil
		}
		s := m.sessionAt(idx)
		if s.Mode() == session.ModeDetail {
			return m, m.panes[s.ID()].Update(msg)
		}
		delta := wheelStep
		if msg.Button == tea.MouseButtonWheelUp {
			delta = -wheelStep
		}
		return m, s.ScrollBy(delta)
	case tea.MouseButtonLeft:
		return m.handleClick(msg.X, msg.Y, idx)
	}
	return m, nil
}

func (m AppModel) handleClick(x, y, idx int) (AppModel, tea.Cmd) {
	openBefore := make(map[string]string, len(m.sessions))
	for id, s := range m.sessions {
		openBefore[id] = s.PopoverID()
	}

	consumed, outside := m.clicks.Dispatch(x, y)
	for _, id := range outside {
		if s, ok := m.sessions[id]; ok {
			s.ClosePreview()
		}
		m.clicks.Unregister(id)
	}
	if consumed || idx < 0 {
		return m, nil
	}

	m.focus = idx
	s := m.sessionAt(idx)
	left, width := m.panelBounds(idx)
	innerLeft := left + 1
	innerWidth := width - panelChrome
	headerY := toolbarHeight + 1
	listY := headerY + headerHeight

	if x == left+width-1 && idx < m.layout.Len()-1 {
		if err := m.layout.BeginResize(idx); err == nil {
			m.dragging = true
			m.dragStartX = x
		}
		return m, nil
	}

	if y == headerY {
		switch {
		case s.Mode() == session.ModeDetail && x < innerLeft+len(backMarker):
			m.back(s)
		case s.Mode() == session.ModeListing && m.layout.Len() > 1 && x >= innerLeft+innerWidth-len(closeMarker):
			return m.removePanel(idx)
		}
		return m, nil
	}

	if s.Mode() != session.ModeListing || y < listY || y >= listY+m.listHeight() {
		return m, nil
	}
	row := s.List().RowAt(y - listY)
	items := s.State().Items
	if row < 0 || row >= len(items) {
		return m, nil
	}
	if x >= innerLeft+innerWidth-len(infoMarker) {
		entityID := items[row].ID
		if openBefore[s.ID()] == entityID {
			s.ClosePreview()
			return m, nil
		}
		return m, s.TogglePreview(entityID)
	}
	return m.open(s, row)
}

// sync brings derived view state up to date after every message: detail panes, empty
// list messages and the click-outside listeners of open popovers.
func (m AppModel) sync() {
	for i, p := range m.layout.Panels() {
		s := m.sessions[p.ID]
		pane := m.panes[p.ID]
		if s == nil || pane == nil {
			continue
		}

		if s.Mode() == session.ModeDetail {
			pane.Show(s.DetailEntry())
		} else if pane.EntityID() != "" {
			pane.Clear()
		}

		state := s.State()
		if len(state.Items) == 0 {
			switch state.FetchStatus {
			case fetch.StatusFetching:
				s.List().SetEmptyText(RenderLoading(m.loading, "Loading..."))
			case fetch.StatusError:
				s.List().SetEmptyText("Could not load entities")
			case fetch.StatusIdle:
				s.List().SetEmptyText("No entities")
			}
		}

		if s.PopoverID() != "" && s.Mode() == session.ModeListing {
			m.clicks.Register(p.ID, m.popoverRect(i))
		} else {
			m.clicks.Unregister(p.ID)
		}
	}
}

func (m AppModel) resizePanels() tea.Cmd {
	widths := m.layout.Widths(m.width)
	listHeight := m.listHeight()
	var cmds []tea.Cmd
	for i, p := range m.layout.Panels() {
		inner := max(widths[i]-panelChrome, 1)
		if s, ok := m.sessions[p.ID]; ok {
			cmds = append(cmds, s.SetSize(inner, listHeight))
		}
		if pane, ok := m.panes[p.ID]; ok {
			pane.SetSize(inner, listHeight)
		}
	}
	return tea.Batch(cmds...)
}

func (m AppModel) closeAll() {
	for _, s := range m.sessions {
		s.Close()
	}
}

func (m AppModel) focused() *session.Session {
	return m.sessionAt(m.focus)
}

func (m AppModel) sessionAt(index int) *session.Session {
	panels := m.layout.Panels()
	return m.sessions[panels[min(max(index, 0), len(panels)-1)].ID]
}

func (m AppModel) helpHeight() int {
	return lipgloss.Height(m.help.View(m.keys))
}

func (m AppModel) panelHeight() int {
	return max(m.height-toolbarHeight-m.helpHeight(), panelChrome+headerHeight+footerHeight+minListHeight)
}

func (m AppModel) listHeight() int {
	return max(m.panelHeight()-panelChrome-headerHeight-footerHeight, minListHeight)
}

// panelBounds returns the first column and the width of panel index.
func (m AppModel) panelBounds(index int) (int, int) {
	widths := m.layout.Widths(m.width)
	left := 0
	for _, w := range widths[:index] {
		left += w
	}
	return left, widths[index]
}

// panelAt returns the panel under (x, y), or -1.
func (m AppModel) panelAt(x, y int) int {
	if y < toolbarHeight || y >= toolbarHeight+m.panelHeight() {
		return -1
	}
	left := 0
	for i, w := range m.layout.Widths(m.width) {
		if x >= left && x < left+w {
			return i
		}
		left += w
	}
	return -1
}

// popoverRect is the screen area of the popover of panel index: the bottom rows of the
// list area.
func (m AppModel) popoverRect(index int) Rect {
	left, width := m.panelBounds(index)
	listHeight := m.listHeight()
	h := min(popoverHeight, listHeight)
	listY := toolbarHeight + 1 + headerHeight
	return Rect{X: left + 1, Y: listY + listHeight - h, W: width - panelChrome, H: h}
}

// View renders the toolbar, the panels side by side and the help line.
func (m AppModel) View() string {
	if m.quitting {
		return ""
	}

	toolbar := ToolbarStyle.Render(fmt.Sprintf("entitydeck  %d panels", m.layout.Len()))
	if m.status != "" {
		toolbar += "  " + CriticalStyle.Render(m.status)
	}

	widths := m.layout.Widths(m.width)
	views := make([]string, 0, len(widths))
	for i := range widths {
		views = append(views, m.renderPanel(i, widths[i]))
	}

	return lipgloss.JoinVertical(lipgloss.Left,
		toolbar,
		lipgloss.JoinHorizontal(lipgloss.Top, views...),
		m.help.View(m.keys),
	)
}

func (m AppModel) renderPanel(index, width int) string {
	s := m.sessionAt(index)
	inner := max(width-panelChrome, 1)
	listHeight := m.listHeight()

	var body string
	if s.Mode() == session.ModeDetail {
		body = m.panes[s.ID()].View()
	} else {
		body = s.List().View()
		if s.PopoverID() != "" {
			body = m.overlayPopover(body, s, inner, listHeight)
		}
	}

	clip := lipgloss.NewStyle().MaxWidth(inner)
	content := lipgloss.JoinVertical(lipgloss.Left,
		clip.Render(m.renderHeader(index, s, inner)),
		body,
		clip.Render(m.renderFooter(s)),
	)

	style := PanelStyle
	if index == m.focus {
		style = FocusedPanelStyle
	}
	return style.Width(inner).Height(m.panelHeight() - panelChrome).Render(content)
}

func (m AppModel) renderHeader(index int, s *session.Session, width int) string {
	if s.Mode() == session.ModeDetail {
		return HeaderStyle.Render(backMarker) + "  " + LabelStyle.Render("Entity detail")
	}
	title := HeaderStyle.Render(fmt.Sprintf("Panel %d", index+1))
	if m.layout.Len() < 2 {
		return title
	}
	gap := max(width-lipgloss.Width(title)-len(closeMarker), 1)
	return title + strings.Repeat(" ", gap) + LabelStyle.Render(closeMarker)
}

func (m AppModel) renderFooter(s *session.Session) string {
	state := s.State()
	count := formatCount(m.printer, len(state.Items))
	switch state.FetchStatus {
	case fetch.StatusFetching:
		return RenderLoading(m.loading, fmt.Sprintf("Loading... (%s items)", count))
	case fetch.StatusError:
		return CriticalStyle.Render("Error: "+source.Describe(state.FetchErr)) + SubtleStyle.Render(" r to retry")
	case fetch.StatusIdle:
	}
	if !state.HasMore {
		return InfoStyle.Render(count + " items, end of list")
	}
	return InfoStyle.Render(count + " items")
}

// overlayPopover replaces the bottom rows of the list view with the popover.
func (m AppModel) overlayPopover(list string, s *session.Session, width, listHeight int) string {
	h := min(popoverHeight, listHeight)
	popover := strings.Split(RenderPreview(s.PreviewEntry(), width, h, m.loading, m.printer), "\n")
	lines := strings.Split(list, "\n")
	for len(lines) < listHeight {
		lines = append(lines, "")
	}
	start := listHeight - h
	for i := 0; i < h && i < len(popover); i++ {
		lines[start+i] = popover[i]
	}
	return strings.Join(lines[:listHeight], "\n")
}

// renderRow draws one entity row: the name and, when it fits, the id on the left and the
// preview marker in the last columns.
func renderRow(e source.Entity, selected bool, width int) string {
	nameWidth := max(width-len(infoMarker)-panelChrome, 1)
	label := e.Name
	if withID := e.Name + rowIDGap + e.ID; e.ID != "" && lipgloss.Width(withID) <= nameWidth {
		label = withID
	}
	name := truncate(label, nameWidth)
	gap := max(width-1-lipgloss.Width(name)-len(infoMarker), 1)
	line := " " + name + strings.Repeat(" ", gap) + infoMarker
	if selected {
		return SelectedStyle.Render(line)
	}
	return line
}

// Focus returns the index of the focused panel.
func (m AppModel) Focus() int { return m.focus }

// Sessions returns the panel sessions in layout order.
func (m AppModel) Sessions() []*session.Session {
	panels := m.layout.Panels()
	out := make([]*session.Session, 0, len(panels))
	for _, p := range panels {
		out = append(out, m.sessions[p.ID])
	}
	return out
}

// Layout returns the panel layout.
func (m AppModel) Layout() *layout.Manager { return m.layout }
