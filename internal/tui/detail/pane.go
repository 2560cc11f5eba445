package detail

import (
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/rshade/entitydeck/internal/engine/preview"
)

// Renderer turns an entry into the pane content for the given width.
type Renderer func(entry preview.Entry, width int) string

// Pane is a viewport over a rendered detail entry.
type Pane struct {
	viewport viewport.Model
	render   Renderer
	entry    preview.Entry
	shown    bool
}

// NewPane creates a pane of the given size.
func NewPane(width, height int, render Renderer) *Pane {
	vp := viewport.New(width, height)
	vp.MouseWheelEnabled = true
	return &Pane{viewport: vp, render: render}
}

// Show renders entry. Switching to another entity scrolls back to the top.
func (p *Pane) Show(entry preview.Entry) {
	switching := !p.shown || entry.EntityID != p.entry.EntityID
	p.entry = entry
	p.shown = true
	p.refresh()
	if switching {
		p.viewport.GotoTop()
	}
}

// Clear forgets the shown entry.
func (p *Pane) Clear() {
	p.entry = preview.Entry{}
	p.shown = false
	p.viewport.SetContent("")
	p.viewport.GotoTop()
}

// SetSize resizes the viewport and re-renders for the new width.
func (p *Pane) SetSize(width, height int) {
	p.viewport.Width = width
	p.viewport.Height = height
	if p.shown {
		p.refresh()
	}
}

func (p *Pane) refresh() {
	p.viewport.SetContent(p.render(p.entry, p.viewport.Width))
}

// Update scrolls the viewport on keys and wheel events.
func (p *Pane) Update(msg tea.Msg) tea.Cmd {
	var cmd tea.Cmd
	p.viewport, cmd = p.viewport.Update(msg)
	return cmd
}

// View renders the visible part of the content.
func (p *Pane) View() string {
	return p.viewport.View()
}

// EntityID returns the entity being shown, or "".
func (p *Pane) EntityID() string { return p.entry.EntityID }

// Status returns the load state of the shown entry.
func (p *Pane) Status() preview.Status { return p.entry.Status }

// YOffset returns the scroll position.
func (p *Pane) YOffset() int { return p.viewport.YOffset }
