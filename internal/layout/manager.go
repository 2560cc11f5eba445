package layout

import (
	"errors"
	"fmt"
	"math"

	"github.com/oklog/ulid/v2"
)

// Size bounds, in percent, applied while resizing.
const (
	MinSize = 10.0
	MaxSize = 90.0
)

const fullWidth = 100.0

// Layout errors.
var (
	ErrLastPanel      = errors.New("cannot remove the last panel")
	ErrUnknownPanel   = errors.New("unknown panel")
	ErrInvalidDivider = errors.New("invalid divider index")
)

// Panel is one slot of the layout.
type Panel struct {
	ID   string
	Size float64
}

// Diff is the result of reconciling two panel sequences by id.
type Diff struct {
	Kept    []string
	Added   []string
	Removed []string
}

// Manager holds the ordered panels and the state of an ongoing divider drag.
type Manager struct {
	panels []Panel
	newID  func() string

	resizing   bool
	divider    int
	startLeft  float64
	startRight float64
}

// NewManager creates a layout with n equally sized panels (at least one).
func NewManager(n int) *Manager {
	m := &Manager{newID: func() string { return ulid.Make().String() }}
	for range max(n, 1) {
		m.panels = append(m.panels, Panel{ID: m.newID()})
	}
	m.distribute()
	return m
}

// Panels returns a copy of the ordered panels.
func (m *Manager) Panels() []Panel {
	return append([]Panel(nil), m.panels...)
}

// Len returns the number of panels.
func (m *Manager) Len() int { return len(m.panels) }

// Index returns the position of panel id, or -1.
func (m *Manager) Index(id string) int {
	for i, p := range m.panels {
		if p.ID == id {
			return i
		}
	}
	return -1
}

// Add appends a panel and gives every panel an equal share.
func (m *Manager) Add() Panel {
	m.EndResize()
	p := Panel{ID: m.newID()}
	m.panels = append(m.panels, p)
	m.distribute()
	return m.panels[len(m.panels)-1]
}

// Remove deletes panel id and redistributes the width equally.
func (m *Manager) Remove(id string) error {
	if len(m.panels) <= 1 {
		return ErrLastPanel
	}
	i := m.Index(id)
	if i < 0 {
		return fmt.Errorf("%w: %s", ErrUnknownPanel, id)
	}
	m.EndResize()
	m.panels = append(m.panels[:i], m.panels[i+1:]...)
	m.distribute()
	return nil
}

func (m *Manager) distribute() {
	size := fullWidth / float64(len(m.panels))
	for i := range m.panels {
		m.panels[i].Size = size
	}
}

// BeginResize starts dragging the divider right of panel index.
func (m *Manager) BeginResize(index int) error {
	if index < 0 || index >= len(m.panels)-1 {
		return fmt.Errorf("%w: %d", ErrInvalidDivider, index)
	}
	m.resizing = true
	m.divider = index
	m.startLeft = m.panels[index].Size
	m.startRight = m.panels[index+1].Size
	return nil
}

// Drag moves the active divider by deltaX columns from where the drag began. Both
// neighbors stay within [MinSize, MaxSize] and their combined size is preserved.
func (m *Manager) Drag(deltaX, containerWidth int) {
	if !m.resizing || containerWidth <= 0 {
		return
	}
	delta := float64(deltaX) / float64(containerWidth) * fullWidth
	pair := m.startLeft + m.startRight

	lo := math.Max(MinSize, pair-MaxSize)
	hi := math.Min(MaxSize, pair-MinSize)
	left := m.startLeft + delta
	if lo <= hi {
		left = math.Min(math.Max(left, lo), hi)
	} else {
		left = m.startLeft
	}
	m.panels[m.divider].Size = left
	m.panels[m.divider+1].Size = pair - left
}

// EndResize finishes the active drag.
func (m *Manager) EndResize() {
	m.resizing = false
}

// Resizing reports whether a divider drag is active.
func (m *Manager) Resizing() bool { return m.resizing }

// Divider returns the index of the divider being dragged.
func (m *Manager) Divider() int { return m.divider }

// Nudge moves the divider right of panel index by deltaX columns in one step.
func (m *Manager) Nudge(index, deltaX, containerWidth int) error {
	if err := m.BeginResize(index); err != nil {
		return err
	}
	m.Drag(deltaX, containerWidth)
	m.EndResize()
	return nil
}

// Widths converts the sizes into column widths summing to total. Rounding leftovers go
// to the last panel.
func (m *Manager) Widths(total int) []int {
	widths := make([]int, len(m.panels))
	if total <= 0 {
		return widths
	}
	var sum float64
	for _, p := range m.panels {
		sum += p.Size
	}
	used := 0
	for i, p := range m.panels[:len(m.panels)-1] {
		widths[i] = int(math.Floor(p.Size / sum * float64(total)))
		used += widths[i]
	}
	widths[len(widths)-1] = total - used
	return widths
}

// Reconcile diffs prev against next by panel id. Kept and Added follow next's order;
// Removed follows prev's order.
func Reconcile(prev, next []Panel) Diff {
	before := make(map[string]struct{}, len(prev))
	for _, p := range prev {
		before[p.ID] = struct{}{}
	}
	after := make(map[string]struct{}, len(next))

	var d Diff
	for _, p := range next {
		after[p.ID] = struct{}{}
		if _, ok := before[p.ID]; ok {
			d.Kept = append(d.Kept, p.ID)
		} else {
			d.Added = append(d.Added, p.ID)
		}
	}
	for _, p := range prev {
		if _, ok := after[p.ID]; !ok {
			d.Removed = append(d.Removed, p.ID)
		}
	}
	return d
}
