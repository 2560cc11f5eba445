package tui

import "github.com/charmbracelet/lipgloss"

// Default terminal dimensions used before the first WindowSizeMsg.
const (
	defaultWidth  = 120
	defaultHeight = 30
)

// Color palette.
var (
	colorAccent   = lipgloss.Color("63")  //nolint:gochecknoglobals // Style constant.
	colorMuted    = lipgloss.Color("241") //nolint:gochecknoglobals // Style constant.
	colorCritical = lipgloss.Color("196") //nolint:gochecknoglobals // Style constant.
	colorValue    = lipgloss.Color("252") //nolint:gochecknoglobals // Style constant.
)

// Shared styles.
//
//nolint:gochecknoglobals // lipgloss styles are immutable values shared by all views.
var (
	HeaderStyle   = lipgloss.NewStyle().Bold(true).Foreground(colorAccent)
	LabelStyle    = lipgloss.NewStyle().Foreground(colorMuted)
	ValueStyle    = lipgloss.NewStyle().Foreground(colorValue)
	SubtleStyle   = lipgloss.NewStyle().Foreground(colorMuted).Italic(true)
	InfoStyle     = lipgloss.NewStyle().Foreground(colorMuted)
	CriticalStyle = lipgloss.NewStyle().Foreground(colorCritical).Bold(true)
	SelectedStyle = lipgloss.NewStyle().Reverse(true)
	ToolbarStyle  = lipgloss.NewStyle().Bold(true).Padding(0, 1)

	PanelStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(colorMuted)
	FocusedPanelStyle = PanelStyle.BorderForeground(colorAccent)

	PopoverStyle = lipgloss.NewStyle().
			Border(lipgloss.NormalBorder()).
			BorderForeground(colorAccent)
)
