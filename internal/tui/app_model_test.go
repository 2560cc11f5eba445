package tui

import (
	"context"
	"testing"

	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rshade/entitydeck/internal/engine/fetch"
	"github.com/rshade/entitydeck/internal/engine/preview"
	"github.com/rshade/entitydeck/internal/session"
	"github.com/rshade/entitydeck/internal/source"
)

// With the default 120x30 screen and two panels: each panel is 60 columns wide, the
// list starts on row 3 and is 24 rows tall, the popover covers rows 20-26.
const (
	testListY     = 3
	testMarkerX   = 57
	testDividerX  = 59
	testPopoverY  = 22
	testRightColX = 70
)

func newTestApp(t *testing.T, src *source.MockSource) AppModel {
	t.Helper()
	m := NewAppModel(context.Background(), AppOptions{
		Pages:         src,
		Details:       src,
		InitialPanels: 2,
		Logger:        zerolog.Nop(),
	})
	t.Cleanup(m.closeAll)
	return m
}

// pump runs cmd and feeds every message back into the model until no commands remain.
// Spinner ticks are dropped so the animation does not loop forever.
func pump(m AppModel, cmd tea.Cmd) AppModel {
	queue := []tea.Cmd{cmd}
	for len(queue) > 0 {
		next := queue[0]
		queue = queue[1:]
		if next == nil {
			continue
		}
		switch msg := next().(type) {
		case nil, spinner.TickMsg, tea.QuitMsg:
		case tea.BatchMsg:
			queue = append(queue, msg...)
		default:
			updated, follow := m.Update(msg)
			m = updated.(AppModel)
			queue = append(queue, follow)
		}
	}
	return m
}

func send(m AppModel, msg tea.Msg) AppModel {
	updated, cmd := m.Update(msg)
	return pump(updated.(AppModel), cmd)
}

func runes(s string) tea.KeyMsg {
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)}
}

func click(x, y int) tea.MouseMsg {
	return tea.MouseMsg{X: x, Y: y, Action: tea.MouseActionPress, Button: tea.MouseButtonLeft}
}

func loadedApp(t *testing.T) (AppModel, *source.MockSource) {
	t.Helper()
	src := source.NewMockSource(source.MockOptions{})
	m := newTestApp(t, src)
	m = pump(m, m.Init())
	return m, src
}

func TestNewAppModel(t *testing.T) {
	m := newTestApp(t, source.NewMockSource(source.MockOptions{}))

	sessions := m.Sessions()
	require.Len(t, sessions, 2)
	assert.NotEqual(t, sessions[0].ID(), sessions[1].ID())
	assert.Equal(t, 0, m.Focus())
	assert.Equal(t, 24, sessions[0].List().Height())
	assert.Equal(t, 58, sessions[0].List().Width())
}

func TestAppModel_InitLoadsEveryPanel(t *testing.T) {
	m, src := loadedApp(t)

	for _, s := range m.Sessions() {
		state := s.State()
		assert.Len(t, state.Items, 20)
		assert.Equal(t, fetch.StatusIdle, state.FetchStatus)
	}
	assert.Equal(t, 2, src.PageCalls())
}

func TestAppModel_OpenDetailAndBack(t *testing.T) {
	m, _ := loadedApp(t)
	left, right := m.Sessions()[0], m.Sessions()[1]

	m = send(m, tea.KeyMsg{Type: tea.KeyDown})
	m = send(m, tea.KeyMsg{Type: tea.KeyEnter})

	assert.Equal(t, session.ModeDetail, left.Mode())
	assert.Equal(t, "entity-2", left.State().DetailEntityID)
	assert.Equal(t, session.ModeListing, right.Mode(), "panels are independent")

	pane := m.panes[left.ID()]
	assert.Equal(t, "entity-2", pane.EntityID())
	assert.Equal(t, preview.StatusLoaded, pane.Status())
	assert.Contains(t, m.View(), "Entity 2")

	m = send(m, tea.KeyMsg{Type: tea.KeyEscape})
	assert.Equal(t, session.ModeListing, left.Mode())
	assert.Empty(t, m.panes[left.ID()].EntityID())
	assert.Equal(t, 1, left.List().Selected(), "selection survives the round trip")
}

func TestAppModel_FocusCycles(t *testing.T) {
	m, _ := loadedApp(t)

	m = send(m, tea.KeyMsg{Type: tea.KeyTab})
	assert.Equal(t, 1, m.Focus())
	m = send(m, tea.KeyMsg{Type: tea.KeyTab})
	assert.Equal(t, 0, m.Focus())
	m = send(m, tea.KeyMsg{Type: tea.KeyShiftTab})
	assert.Equal(t, 1, m.Focus())
}

func TestAppModel_AddAndRemovePanel(t *testing.T) {
	m, src := loadedApp(t)

	m = send(m, runes("a"))
	require.Len(t, m.Sessions(), 3)
	assert.Equal(t, 2, m.Focus())
	assert.Len(t, m.Sessions()[2].State().Items, 20, "new panel loads its first page")
	assert.Equal(t, 3, src.PageCalls())
	assert.Equal(t, 40, m.Sessions()[0].List().Width()+2)

	removed := m.Sessions()[2]
	m = send(m, runes("x"))
	require.Len(t, m.Sessions(), 2)
	assert.True(t, removed.Closed())
	assert.Equal(t, 1, m.Focus())
}

func TestAppModel_LastPanelCannotBeRemoved(t *testing.T) {
	src := source.NewMockSource(source.MockOptions{})
	m := NewAppModel(context.Background(), AppOptions{
		Pages: src, Details: src, InitialPanels: 1, Logger: zerolog.Nop(),
	})
	t.Cleanup(m.closeAll)

	m = send(m, runes("x"))
	assert.Len(t, m.Sessions(), 1)
	assert.NotEmpty(t, m.status)
}

func TestAppModel_MessageForClosedPanelDropped(t *testing.T) {
	m, _ := loadedApp(t)
	m = send(m, tea.KeyMsg{Type: tea.KeyTab})
	gone := m.Sessions()[1].ID()
	m = send(m, runes("x"))

	updated, cmd := m.Update(fetch.PageMsg{PanelID: gone, Page: source.Page{Items: []source.Entity{{ID: "late"}}}})
	assert.Nil(t, cmd)
	assert.Len(t, updated.(AppModel).Sessions(), 1)
	assert.Len(t, m.Sessions()[0].State().Items, 20)
}

func TestAppModel_ClickRowOpensDetail(t *testing.T) {
	m, _ := loadedApp(t)

	m = send(m, click(testRightColX, testListY+1))

	right := m.Sessions()[1]
	assert.Equal(t, 1, m.Focus())
	assert.Equal(t, session.ModeDetail, right.Mode())
	assert.Equal(t, "entity-2", right.State().DetailEntityID)
	assert.Equal(t, session.ModeListing, m.Sessions()[0].Mode())
}

func TestAppModel_InfoMarkerTogglesPreview(t *testing.T) {
	m, _ := loadedApp(t)
	left := m.Sessions()[0]

	m = send(m, click(testMarkerX, testListY))
	assert.Equal(t, "entity-1", left.PopoverID())
	assert.Equal(t, session.ModeListing, left.Mode())
	assert.True(t, m.clicks.Registered(left.ID()))
	assert.Equal(t, preview.StatusLoaded, left.PreviewEntry().Status)

	m = send(m, click(testMarkerX, testListY))
	assert.Empty(t, left.PopoverID(), "second click on the same marker closes the popover")
	assert.False(t, m.clicks.Registered(left.ID()))
}

func TestAppModel_ClickOutsideClosesPopover(t *testing.T) {
	m, _ := loadedApp(t)
	left, right := m.Sessions()[0], m.Sessions()[1]

	m = send(m, click(testMarkerX, testListY))
	require.Equal(t, "entity-1", left.PopoverID())

	m = send(m, click(5, testPopoverY))
	assert.Equal(t, "entity-1", left.PopoverID(), "clicks inside the popover are consumed")
	assert.Equal(t, session.ModeListing, left.Mode())

	m = send(m, click(testRightColX, testListY+1))
	assert.Empty(t, left.PopoverID())
	assert.Zero(t, m.clicks.Len())
	assert.Equal(t, session.ModeDetail, right.Mode(), "the click still reaches its target")
}

func TestAppModel_PreviewKey(t *testing.T) {
	m, _ := loadedApp(t)
	left := m.Sessions()[0]

	m = send(m, runes("p"))
	assert.Equal(t, "entity-1", left.PopoverID())
	assert.Contains(t, m.View(), "This is entity number 1")

	m = send(m, tea.KeyMsg{Type: tea.KeyEscape})
	assert.Empty(t, left.PopoverID())
	assert.Equal(t, session.ModeListing, left.Mode())
}

func TestAppModel_DragDivider(t *testing.T) {
	m, _ := loadedApp(t)

	m = send(m, click(testDividerX, 10))
	require.True(t, m.Layout().Resizing())

	m = send(m, tea.MouseMsg{X: testDividerX + 12, Y: 10, Action: tea.MouseActionMotion})
	panels := m.Layout().Panels()
	assert.InDelta(t, 60.0, panels[0].Size, 0.001)
	assert.InDelta(t, 40.0, panels[1].Size, 0.001)
	assert.Equal(t, 70, m.Sessions()[0].List().Width())

	m = send(m, tea.MouseMsg{X: testDividerX + 12, Y: 10, Action: tea.MouseActionRelease})
	assert.False(t, m.Layout().Resizing())

	m = send(m, tea.MouseMsg{X: 0, Y: 10, Action: tea.MouseActionMotion})
	assert.InDelta(t, 60.0, m.Layout().Panels()[0].Size, 0.001, "motion after release is ignored")
}

func TestAppModel_DragClampsToLimits(t *testing.T) {
	m, _ := loadedApp(t)

	m = send(m, click(testDividerX, 10))
	m = send(m, tea.MouseMsg{X: 119, Y: 10, Action: tea.MouseActionMotion})

	panels := m.Layout().Panels()
	assert.InDelta(t, 90.0, panels[0].Size, 0.001)
	assert.InDelta(t, 10.0, panels[1].Size, 0.001)
}

func TestAppModel_ResizeKeys(t *testing.T) {
	m, _ := loadedApp(t)

	m = send(m, runes(">"))
	assert.InDelta(t, 55.0, m.Layout().Panels()[0].Size, 0.001)

	m = send(m, tea.KeyMsg{Type: tea.KeyTab})
	m = send(m, runes(">"))
	panels := m.Layout().Panels()
	assert.InDelta(t, 50.0, panels[0].Size, 0.001, "growing the last panel moves its left divider")
	assert.InDelta(t, 50.0, panels[1].Size, 0.001)
}

func TestAppModel_WheelScrollsPanelUnderPointer(t *testing.T) {
	m, _ := loadedApp(t)
	m = send(m, tea.WindowSizeMsg{Width: 120, Height: 20})

	m = send(m, tea.MouseMsg{
		X: testRightColX, Y: 5, Action: tea.MouseActionPress, Button: tea.MouseButtonWheelDown,
	})
	assert.Equal(t, 3, m.Sessions()[1].List().Offset())
	assert.Equal(t, 0, m.Sessions()[0].List().Offset())
}

func TestAppModel_WindowResize(t *testing.T) {
	m, _ := loadedApp(t)

	m = send(m, tea.WindowSizeMsg{Width: 80, Height: 20})

	s := m.Sessions()[0]
	assert.Equal(t, 14, s.List().Height())
	assert.Equal(t, 38, s.List().Width())
}

func TestAppModel_View(t *testing.T) {
	m, _ := loadedApp(t)

	view := m.View()
	assert.Contains(t, view, "2 panels")
	assert.Contains(t, view, "Panel 1")
	assert.Contains(t, view, "Panel 2")
	assert.Contains(t, view, "Entity 1")
	assert.Contains(t, view, closeMarker)
	assert.Contains(t, view, "20 items")
}

func TestAppModel_ErrorFooterAndRetry(t *testing.T) {
	src := source.NewMockSource(source.MockOptions{FailPageEvery: 1})
	m := newTestApp(t, src)
	m = pump(m, m.Init())

	s := m.Sessions()[0]
	require.Equal(t, fetch.StatusError, s.State().FetchStatus)
	assert.Contains(t, m.View(), "Could not load entities")

	calls := src.PageCalls()
	m = send(m, runes("r"))
	assert.Equal(t, calls+1, src.PageCalls())
}

func TestAppModel_Quit(t *testing.T) {
	m, _ := loadedApp(t)

	updated, cmd := m.Update(runes("q"))
	m = updated.(AppModel)

	require.NotNil(t, cmd)
	assert.Equal(t, tea.QuitMsg{}, cmd())
	for _, s := range m.Sessions() {
		assert.True(t, s.Closed())
	}
	assert.Empty(t, m.View())
}

func TestRenderRow(t *testing.T) {
	row := renderRow(source.Entity{ID: "entity-1", Name: "Entity 1"}, false, 30)
	assert.Equal(t, 30, len(row))
	assert.Equal(t, " Entity 1", row[:9])
	assert.Equal(t, infoMarker, row[len(row)-len(infoMarker):])
	assert.Contains(t, row, "Entity 1  entity-1")

	narrow := renderRow(source.Entity{ID: "entity-1", Name: "Entity 1"}, false, 18)
	assert.Equal(t, 18, len(narrow))
	assert.NotContains(t, narrow, "entity-1", "id dropped when it does not fit")
	assert.Contains(t, narrow, "Entity 1")

	long := renderRow(source.Entity{Name: "An entity with a very long name indeed"}, false, 20)
	assert.Equal(t, 20, len(long))
	assert.Contains(t, long, truncateSuffix)
}
