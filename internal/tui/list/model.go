package listview

import (
	"strings"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/rshade/entitydeck/internal/engine/window"
)

// defaultBufferSize is the number of extra rows rendered above/below the viewport.
const defaultBufferSize = 5

// wheelStep is the number of lines a mouse wheel notch scrolls.
const wheelStep = 3

// RenderFunc renders one row. width is the column budget of the list.
type RenderFunc[T any] func(item T, selected bool, width int) string

// HeightFunc measures the height of a row in lines.
type HeightFunc[T any] func(item T) int

// KeyMap defines the navigation bindings of the list.
type KeyMap struct {
	Up       key.Binding
	Down     key.Binding
	PageUp   key.Binding
	PageDown key.Binding
	Home     key.Binding
	End      key.Binding
}

// DefaultKeyMap returns arrow, vim and paging bindings.
func DefaultKeyMap() KeyMap {
	return KeyMap{
		Up:       key.NewBinding(key.WithKeys("up", "k"), key.WithHelp("↑/k", "up")),
		Down:     key.NewBinding(key.WithKeys("down", "j"), key.WithHelp("↓/j", "down")),
		PageUp:   key.NewBinding(key.WithKeys("pgup"), key.WithHelp("pgup", "page up")),
		PageDown: key.NewBinding(key.WithKeys("pgdown"), key.WithHelp("pgdn", "page down")),
		Home:     key.NewBinding(key.WithKeys("home", "g"), key.WithHelp("home/g", "top")),
		End:      key.NewBinding(key.WithKeys("end", "G"), key.WithHelp("end/G", "bottom")),
	}
}

// VirtualListModel implements virtual scrolling over a growing list of items.
type VirtualListModel[T any] struct {
	items      []T
	renderFunc RenderFunc[T]
	heightFunc HeightFunc[T]
	layout     *window.Layout

	// selected is the selected item index, -1 when the list is empty
	selected int

	// offset is the first viewport line, measured in list lines
	offset int

	height int
	width  int

	bufferSize int
	fraction   float64
	emptyText  string
	keys       KeyMap
}

// NewVirtualListModel creates a list of height rows and width columns.
func NewVirtualListModel[T any](items []T, height, width int, renderFunc RenderFunc[T]) *VirtualListModel[T] {
	m := &VirtualListModel[T]{
		renderFunc: renderFunc,
		layout:     window.NewLayout(),
		selected:   -1,
		height:     height,
		width:      width,
		bufferSize: defaultBufferSize,
		fraction:   window.DefaultNearEndFraction,
		emptyText:  "No items",
		keys:       DefaultKeyMap(),
	}
	m.SetItems(items)
	return m
}

// SetHeightFunc switches the list to measured row heights and re-measures every row.
func (m *VirtualListModel[T]) SetHeightFunc(fn HeightFunc[T]) {
	m.heightFunc = fn
	m.layout.Reset()
	m.appendLayout(m.items)
	m.clamp()
}

// SetOverscan sets the number of rows rendered beyond each viewport edge.
func (m *VirtualListModel[T]) SetOverscan(rows int) {
	m.bufferSize = max(rows, 0)
}

// SetNearEndFraction sets the threshold used by NearEnd. Values outside (0,1) are ignored.
func (m *VirtualListModel[T]) SetNearEndFraction(fraction float64) {
	if fraction > 0 && fraction < 1 {
		m.fraction = fraction
	}
}

// SetEmptyText sets the message shown when the list has no items.
func (m *VirtualListModel[T]) SetEmptyText(text string) {
	m.emptyText = text
}

// SetItems replaces the item slice. A list that grew keeps its scroll offset and
// selection; a list that shrank starts over at the top.
func (m *VirtualListModel[T]) SetItems(items []T) {
	prev := len(m.items)
	switch {
	case len(items) >= prev && m.layout.Len() == prev:
		m.appendLayout(items[prev:])
	default:
		m.layout.Reset()
		m.appendLayout(items)
		m.offset = 0
		m.selected = -1
	}
	m.items = items
	if m.selected < 0 && len(items) > 0 {
		m.selected = 0
	}
	m.clamp()
}

func (m *VirtualListModel[T]) appendLayout(items []T) {
	if m.heightFunc == nil {
		m.layout.AppendFixed(len(items), 1)
		return
	}
	for _, item := range items {
		m.layout.Append(m.heightFunc(item))
	}
}

// SetSize changes the viewport dimensions.
func (m *VirtualListModel[T]) SetSize(width, height int) {
	m.width = width
	m.height = max(height, 0)
	m.ensureSelectedVisible()
}

// Init initializes the model (required for tea.Model interface).
func (m *VirtualListModel[T]) Init() tea.Cmd {
	return nil
}

// Update handles keyboard, wheel and resize messages.
func (m *VirtualListModel[T]) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		m.handleKeyMsg(msg)
	case tea.MouseMsg:
		if msg.Action != tea.MouseActionPress {
			break
		}
		//nolint:exhaustive // Only wheel buttons scroll.
		switch msg.Button {
		case tea.MouseButtonWheelUp:
			m.ScrollBy(-wheelStep)
		case tea.MouseButtonWheelDown:
			m.ScrollBy(wheelStep)
		}
	case tea.WindowSizeMsg:
		m.SetSize(msg.Width, msg.Height)
	}
	return m, nil
}

// handleKeyMsg moves the selection and keeps it inside the viewport.
func (m *VirtualListModel[T]) handleKeyMsg(msg tea.KeyMsg) {
	if len(m.items) == 0 {
		return
	}
	page := max(m.layout.Visible(m.offset, m.height).Len(), 1)

	switch {
	case key.Matches(msg, m.keys.Up):
		m.SetSelected(m.selected - 1)
	case key.Matches(msg, m.keys.Down):
		m.SetSelected(m.selected + 1)
	case key.Matches(msg, m.keys.PageUp):
		m.SetSelected(m.selected - page)
	case key.Matches(msg, m.keys.PageDown):
		m.SetSelected(m.selected + page)
	case key.Matches(msg, m.keys.Home):
		m.SetSelected(0)
	case key.Matches(msg, m.keys.End):
		m.SetSelected(len(m.items) - 1)
	}
}

// ScrollBy moves the viewport by delta lines without changing the selection.
func (m *VirtualListModel[T]) ScrollBy(delta int) {
	m.offset = m.layout.ClampOffset(m.offset+delta, m.height)
}

// ScrollTo puts the viewport at line offset.
func (m *VirtualListModel[T]) ScrollTo(offset int) {
	m.offset = m.layout.ClampOffset(offset, m.height)
}

func (m *VirtualListModel[T]) ensureSelectedVisible() {
	if m.selected < 0 {
		m.offset = 0
		return
	}
	top := m.layout.Top(m.selected)
	bottom := top + m.layout.Height(m.selected)
	switch {
	case top < m.offset:
		m.offset = top
	case bottom > m.offset+m.height:
		m.offset = bottom - m.height
	}
	m.offset = m.layout.ClampOffset(m.offset, m.height)
}

func (m *VirtualListModel[T]) clamp() {
	if len(m.items) == 0 {
		m.selected = -1
	} else {
		m.selected = min(max(m.selected, 0), len(m.items)-1)
	}
	m.offset = m.layout.ClampOffset(m.offset, m.height)
}

// View renders the rows of the rendered range, cropped to the viewport.
func (m *VirtualListModel[T]) View() string {
	if m.height <= 0 {
		return ""
	}
	if len(m.items) == 0 {
		return lipgloss.Place(max(m.width, 1), m.height, lipgloss.Center, lipgloss.Center, m.emptyText)
	}

	rendered := m.Rendered()
	lines := make([]string, 0, m.layout.Top(rendered.End)-m.layout.Top(rendered.Start))
	for i := rendered.Start; i < rendered.End; i++ {
		row := m.renderFunc(m.items[i], i == m.selected, m.width)
		rowLines := strings.Split(row, "\n")
		// Pad or trim to the laid-out height so line math matches the layout.
		h := m.layout.Height(i)
		for len(rowLines) < h {
			rowLines = append(rowLines, "")
		}
		lines = append(lines, rowLines[:h]...)
	}

	skip := m.offset - m.layout.Top(rendered.Start)
	lines = lines[skip:]
	if len(lines) > m.height {
		lines = lines[:m.height]
	}
	for len(lines) < m.height {
		lines = append(lines, "")
	}

	content := strings.Join(lines, "\n")
	if m.width > 0 {
		content = lipgloss.NewStyle().MaxWidth(m.width).Render(content)
	}
	return content
}

// Visible returns the rows intersecting the viewport.
func (m *VirtualListModel[T]) Visible() window.Range {
	return m.layout.Visible(m.offset, m.height)
}

// Rendered returns the visible rows plus the overscan margin.
func (m *VirtualListModel[T]) Rendered() window.Range {
	return m.layout.Rendered(m.offset, m.height, m.bufferSize)
}

// NearEnd reports whether the last visible row crossed the near-end threshold.
func (m *VirtualListModel[T]) NearEnd() bool {
	return window.NearEnd(m.Visible(), len(m.items), m.fraction)
}

// RowAt maps a viewport line to an item index, or -1 when the line shows no item.
func (m *VirtualListModel[T]) RowAt(y int) int {
	if y < 0 || y >= m.height {
		return -1
	}
	return m.layout.RowAt(m.offset + y)
}

// ItemCount returns the total number of items in the list.
func (m *VirtualListModel[T]) ItemCount() int {
	return len(m.items)
}

// Selected returns the selected item index, or -1 for an empty list.
func (m *VirtualListModel[T]) Selected() int {
	return m.selected
}

// SetSelected selects index, capped to valid bounds, and scrolls it into view.
func (m *VirtualListModel[T]) SetSelected(index int) {
	if len(m.items) == 0 {
		m.selected = -1
		return
	}
	m.selected = min(max(index, 0), len(m.items)-1)
	m.ensureSelectedVisible()
}

// Offset returns the scroll offset in lines.
func (m *VirtualListModel[T]) Offset() int {
	return m.offset
}

// VisibleFrom returns the first visible item index (inclusive).
func (m *VirtualListModel[T]) VisibleFrom() int {
	return m.Visible().Start
}

// VisibleTo returns the last visible item index (exclusive).
func (m *VirtualListModel[T]) VisibleTo() int {
	return m.Visible().End
}

// Height returns the viewport height.
func (m *VirtualListModel[T]) Height() int {
	return m.height
}

// Width returns the viewport width.
func (m *VirtualListModel[T]) Width() int {
	return m.width
}

// KeyMap returns the navigation bindings, for help rendering.
func (m *VirtualListModel[T]) KeyMap() KeyMap {
	return m.keys
}

// GetSelectedItem returns the selected item, or nil when the list is empty.
func (m *VirtualListModel[T]) GetSelectedItem() *T {
	if m.selected < 0 || m.selected >= len(m.items) {
		return nil
	}
	return &m.items[m.selected]
}
