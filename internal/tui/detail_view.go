package tui

import (
	"strings"

	"github.com/charmbracelet/x/ansi"
	"golang.org/x/text/language"
	"golang.org/x/text/message"

	"github.com/rshade/entitydeck/internal/engine/preview"
	"github.com/rshade/entitydeck/internal/source"
)

// Layout constants.
const (
	borderPadding    = 2
	dateLayout       = "Jan 2, 2006 15:04"
	previewDescLimit = 80
	truncateSuffix   = "..."
)

// newPrinter returns the printer used for counts ("12,340").
func newPrinter() *message.Printer {
	return message.NewPrinter(language.English)
}

// formatCount renders n with thousand separators.
func formatCount(p *message.Printer, n int) string {
	return p.Sprintf("%d", n)
}

// RenderDetailView renders the full detail record of an entity: identity, the extra
// fields, timestamps, metadata counts and the description.
func RenderDetailView(record source.DetailRecord, width int, p *message.Printer) string {
	var content strings.Builder

	content.WriteString(HeaderStyle.Render(record.Name))
	content.WriteString("\n\n")

	writeField(&content, "ID:          ", record.ID)
	writeField(&content, "Name:        ", record.Name)
	content.WriteString("\n")

	if record.ExtraField1 != "" || record.ExtraField2 != "" {
		content.WriteString(HeaderStyle.Render("EXTRA"))
		content.WriteString("\n")
		writeField(&content, "Field 1:     ", record.ExtraField1)
		writeField(&content, "Field 2:     ", record.ExtraField2)
		content.WriteString("\n")
	}

	content.WriteString(HeaderStyle.Render("TIMESTAMPS"))
	content.WriteString("\n")
	writeField(&content, "Created:     ", record.CreatedAt.Format(dateLayout))
	writeField(&content, "Updated:     ", record.UpdatedAt.Format(dateLayout))
	content.WriteString("\n")

	if record.Metadata != nil {
		content.WriteString(HeaderStyle.Render("METADATA"))
		content.WriteString("\n")
		writeField(&content, "Views:       ", formatCount(p, record.Metadata.Views))
		writeField(&content, "Likes:       ", formatCount(p, record.Metadata.Likes))
		writeField(&content, "Category:    ", record.Metadata.Category)
		content.WriteString("\n")
	}

	if record.Description != "" {
		content.WriteString(HeaderStyle.Render("DESCRIPTION"))
		content.WriteString("\n")
		content.WriteString(record.Description)
		content.WriteString("\n")
	}

	return ValueStyle.Width(max(width, 1)).Render(content.String())
}

func writeField(b *strings.Builder, label, value string) {
	b.WriteString(LabelStyle.Render(label))
	b.WriteString(ValueStyle.Render(value))
	b.WriteString("\n")
}

// RenderDetailEntry renders a detail entry in any load state.
func RenderDetailEntry(entry preview.Entry, width int, loading *LoadingState, p *message.Printer) string {
	switch entry.Status {
	case preview.StatusLoaded:
		if entry.Data != nil {
			return RenderDetailView(*entry.Data, width, p)
		}
	case preview.StatusError:
		return CriticalStyle.Render("Error: "+source.Describe(entry.Err)) + "\n\n" +
			SubtleStyle.Render("Press r to retry, esc to go back.")
	case preview.StatusLoading, preview.StatusIdle:
	}
	return RenderLoading(loading, "Loading details...")
}

// RenderPreview renders the popover for an entry as a box of exactly width by height cells.
func RenderPreview(entry preview.Entry, width, height int, loading *LoadingState, p *message.Printer) string {
	inner := max(width-borderPadding, 1)

	var body string
	switch entry.Status {
	case preview.StatusLoaded:
		if entry.Data == nil {
			body = RenderLoading(loading, "Loading preview...")
			break
		}
		r := entry.Data
		lines := []string{
			HeaderStyle.Render(r.Name),
			truncate(r.Description, previewDescLimit),
			LabelStyle.Render("Created ") + r.CreatedAt.Format(dateLayout),
		}
		if r.Metadata != nil {
			lines = append(lines, LabelStyle.Render("Views ")+formatCount(p, r.Metadata.Views)+
				LabelStyle.Render("  Likes ")+formatCount(p, r.Metadata.Likes))
		}
		body = strings.Join(lines, "\n")
	case preview.StatusError:
		body = CriticalStyle.Render(source.Describe(entry.Err))
	case preview.StatusLoading, preview.StatusIdle:
		body = RenderLoading(loading, "Loading preview...")
	}
	return PopoverStyle.
		Width(inner).
		Height(max(height-borderPadding, 1)).
		MaxHeight(height).
		MaxWidth(width).
		Render(body)
}

// truncate shortens s to at most n terminal columns.
func truncate(s string, n int) string {
	if ansi.StringWidth(s) <= n {
		return s
	}
	if n <= len(truncateSuffix) {
		return ansi.Truncate(s, n, "")
	}
	return ansi.Truncate(s, n, truncateSuffix)
}
