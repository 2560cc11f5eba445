package tui

import (
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/charmbracelet/lipgloss"
	"github.com/stretchr/testify/assert"

	"github.com/rshade/entitydeck/internal/engine/preview"
	"github.com/rshade/entitydeck/internal/source"
)

func testRecord() *source.DetailRecord {
	created := time.Date(2024, time.March, 5, 14, 30, 0, 0, time.UTC)
	return &source.DetailRecord{
		ID:          "entity-7",
		Name:        "Entity 7",
		Description: "This is entity number 7 in the list",
		ExtraField1: "Extra data field 1 for entity 7",
		CreatedAt:   created,
		UpdatedAt:   created.Add(time.Hour),
		Metadata:    &source.Metadata{Views: 12340, Likes: 3, Category: "Category B"},
	}
}

func TestRenderDetailView(t *testing.T) {
	out := RenderDetailView(*testRecord(), 80, newPrinter())

	for _, want := range []string{
		"Entity 7", "entity-7", "EXTRA", "Extra data field 1 for entity 7",
		"TIMESTAMPS", "Mar 5, 2024 14:30", "METADATA", "12,340", "Category B",
		"DESCRIPTION", "This is entity number 7 in the list",
	} {
		assert.Contains(t, out, want)
	}
}

func TestRenderDetailView_OptionalSections(t *testing.T) {
	rec := testRecord()
	rec.ExtraField1 = ""
	rec.Metadata = nil
	rec.Description = ""

	out := RenderDetailView(*rec, 80, newPrinter())
	assert.NotContains(t, out, "EXTRA")
	assert.NotContains(t, out, "METADATA")
	assert.NotContains(t, out, "DESCRIPTION")
	assert.Contains(t, out, "TIMESTAMPS")
}

func TestRenderDetailEntry(t *testing.T) {
	p := newPrinter()

	loaded := RenderDetailEntry(preview.Entry{Status: preview.StatusLoaded, Data: testRecord()}, 80, nil, p)
	assert.Contains(t, loaded, "Entity 7")

	failed := RenderDetailEntry(preview.Entry{
		Status: preview.StatusError,
		Err:    &source.TransportError{Op: "fetch detail", Err: errors.New("boom")},
	}, 80, nil, p)
	assert.Contains(t, failed, "Press r to retry")

	loading := RenderDetailEntry(preview.Entry{Status: preview.StatusLoading}, 80, nil, p)
	assert.Equal(t, "Loading details...", loading)
}

func TestRenderPreview_FixedSize(t *testing.T) {
	p := newPrinter()
	entries := []preview.Entry{
		{Status: preview.StatusLoading},
		{Status: preview.StatusLoaded, Data: testRecord()},
		{Status: preview.StatusError, Err: errors.New("boom")},
	}
	for _, e := range entries {
		out := RenderPreview(e, 40, 7, nil, p)
		assert.Equal(t, 7, lipgloss.Height(out), e.Status.String())
		assert.LessOrEqual(t, lipgloss.Width(out), 40, e.Status.String())
	}

	out := RenderPreview(entries[1], 40, 7, nil, p)
	assert.Contains(t, out, "Entity 7")
	assert.Contains(t, out, "12,340")
}

func TestTruncate(t *testing.T) {
	assert.Equal(t, "short", truncate("short", 10))
	assert.Equal(t, "abcdefg...", truncate("abcdefghijklmnop", 10))
	assert.Equal(t, "ab", truncate("abcdef", 2))
	assert.Equal(t, strings.Repeat("é", 3), truncate(strings.Repeat("é", 3), 3))
	assert.Equal(t, "日本...", truncate("日本語のテキスト", 7), "wide runes count two columns")
}
