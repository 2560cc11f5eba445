package listview

import (
	"fmt"
	"strings"
	"testing"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func numbered(n int) []int {
	items := make([]int, n)
	for i := range items {
		items[i] = i
	}
	return items
}

func renderInt(item int, selected bool, _ int) string {
	if selected {
		return fmt.Sprintf("> %d", item)
	}
	return fmt.Sprintf("  %d", item)
}

func keyMsg(s string) tea.KeyMsg {
	switch s {
	case "down":
		return tea.KeyMsg{Type: tea.KeyDown}
	case "up":
		return tea.KeyMsg{Type: tea.KeyUp}
	case "pgdown":
		return tea.KeyMsg{Type: tea.KeyPgDown}
	case "pgup":
		return tea.KeyMsg{Type: tea.KeyPgUp}
	case "home":
		return tea.KeyMsg{Type: tea.KeyHome}
	case "end":
		return tea.KeyMsg{Type: tea.KeyEnd}
	}
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)}
}

func TestNewVirtualListModel(t *testing.T) {
	m := NewVirtualListModel(numbered(100), 10, 40, renderInt)
	assert.Equal(t, 100, m.ItemCount())
	assert.Equal(t, 0, m.Selected())
	assert.Equal(t, 0, m.VisibleFrom())
	assert.Equal(t, 10, m.VisibleTo())
	assert.Nil(t, m.Init())
}

func TestVirtualList_RendersOnlyWindow(t *testing.T) {
	calls := 0
	m := NewVirtualListModel(numbered(10000), 10, 40, func(item int, selected bool, width int) string {
		calls++
		return renderInt(item, selected, width)
	})
	m.ScrollTo(5000)

	view := m.View()
	assert.Equal(t, 20, calls, "ten visible rows plus five overscan rows each side")
	lines := strings.Split(view, "\n")
	require.Len(t, lines, 10)
	assert.Equal(t, "  5000", strings.TrimRight(lines[0], " "))
	assert.Equal(t, "  5009", strings.TrimRight(lines[9], " "))
}

func TestVirtualList_KeyNavigation(t *testing.T) {
	m := NewVirtualListModel(numbered(50), 10, 40, renderInt)

	tests := []struct {
		key      string
		selected int
		from     int
	}{
		{key: "down", selected: 1, from: 0},
		{key: "j", selected: 2, from: 0},
		{key: "k", selected: 1, from: 0},
		{key: "pgdown", selected: 11, from: 2},
		{key: "end", selected: 49, from: 40},
		{key: "down", selected: 49, from: 40},
		{key: "pgup", selected: 39, from: 39},
		{key: "home", selected: 0, from: 0},
		{key: "up", selected: 0, from: 0},
	}
	for _, tt := range tests {
		m.Update(keyMsg(tt.key))
		assert.Equal(t, tt.selected, m.Selected(), "after %s", tt.key)
		assert.Equal(t, tt.from, m.VisibleFrom(), "after %s", tt.key)
	}
}

func TestVirtualList_WheelScrollKeepsSelection(t *testing.T) {
	m := NewVirtualListModel(numbered(50), 10, 40, renderInt)

	m.Update(tea.MouseMsg{Action: tea.MouseActionPress, Button: tea.MouseButtonWheelDown})
	assert.Equal(t, 3, m.Offset())
	assert.Equal(t, 0, m.Selected())

	m.ScrollBy(1000)
	assert.Equal(t, 40, m.Offset())
	m.Update(tea.MouseMsg{Action: tea.MouseActionPress, Button: tea.MouseButtonWheelUp})
	assert.Equal(t, 37, m.Offset())
	m.ScrollBy(-1000)
	assert.Equal(t, 0, m.Offset())
}

func TestVirtualList_NearEnd(t *testing.T) {
	m := NewVirtualListModel(numbered(20), 10, 40, renderInt)
	assert.False(t, m.NearEnd())

	m.ScrollTo(8)
	assert.Equal(t, 17, m.VisibleTo()-1)
	assert.False(t, m.NearEnd())

	m.ScrollTo(9)
	assert.True(t, m.NearEnd(), "row 18 of 20 is visible")

	empty := NewVirtualListModel([]int{}, 10, 40, renderInt)
	assert.False(t, empty.NearEnd())
}

func TestVirtualList_AppendKeepsPosition(t *testing.T) {
	items := numbered(20)
	m := NewVirtualListModel(items, 10, 40, renderInt)
	m.SetSelected(15)
	offset, selected := m.Offset(), m.Selected()

	m.SetItems(numbered(40))
	assert.Equal(t, offset, m.Offset())
	assert.Equal(t, selected, m.Selected())
	assert.False(t, m.NearEnd())
}

func TestVirtualList_ShrinkResetsToTop(t *testing.T) {
	m := NewVirtualListModel(numbered(40), 10, 40, renderInt)
	m.SetSelected(35)
	require.NotZero(t, m.Offset())

	m.SetItems(nil)
	assert.Equal(t, 0, m.Offset())
	assert.Equal(t, -1, m.Selected())
	assert.Nil(t, m.GetSelectedItem())

	m.SetItems(numbered(20))
	assert.Equal(t, 0, m.Offset())
	assert.Equal(t, 0, m.Selected())
}

func TestVirtualList_EmptyState(t *testing.T) {
	m := NewVirtualListModel([]int{}, 5, 20, renderInt)
	m.SetEmptyText("Nothing here")

	view := m.View()
	assert.Contains(t, view, "Nothing here")
	assert.Len(t, strings.Split(view, "\n"), 5)
	assert.Equal(t, -1, m.Selected())
	assert.Equal(t, -1, m.RowAt(0))
}

func TestVirtualList_MeasuredHeights(t *testing.T) {
	m := NewVirtualListModel(numbered(30), 6, 40, func(item int, _ bool, _ int) string {
		return fmt.Sprintf("item %d\ndetail %d", item, item)
	})
	m.SetHeightFunc(func(int) int { return 2 })

	assert.Equal(t, 3, m.VisibleTo())
	assert.Equal(t, 0, m.RowAt(1))
	assert.Equal(t, 1, m.RowAt(2))

	m.SetSelected(5)
	assert.Equal(t, 6, m.Offset(), "row 5 spans lines 10-11")
	lines := strings.Split(m.View(), "\n")
	require.Len(t, lines, 6)
	assert.Equal(t, "item 3", strings.TrimRight(lines[0], " "))
	assert.Equal(t, "detail 5", strings.TrimRight(lines[5], " "))
}

func TestVirtualList_ResizeKeepsSelectionVisible(t *testing.T) {
	m := NewVirtualListModel(numbered(100), 20, 40, renderInt)
	m.SetSelected(19)
	m.Update(tea.WindowSizeMsg{Width: 30, Height: 5})

	assert.Equal(t, 30, m.Width())
	assert.Equal(t, 5, m.Height())
	assert.True(t, m.Visible().Contains(19))
}

func TestVirtualList_GetSelectedItem(t *testing.T) {
	m := NewVirtualListModel([]string{"a", "b", "c"}, 5, 10, func(s string, _ bool, _ int) string { return s })
	m.SetSelected(10)
	require.NotNil(t, m.GetSelectedItem())
	assert.Equal(t, "c", *m.GetSelectedItem())
	m.SetSelected(-3)
	assert.Equal(t, "a", *m.GetSelectedItem())
}
