package ui

import (
	"github.com/charmbracelet/lipgloss"

	"github.com/tkmlang/tkml/internal/config"
)

// StyleManager encapsulates all TUI styles and provides methods for style operations
type StyleManager struct {
	// Tree view styles
	Tag      lipgloss.Style
	Attr     lipgloss.Style
	Value    lipgloss.Style
	Cursor   lipgloss.Style
	Dim      lipgloss.Style
	Selected lipgloss.Style

	// Widget preview styles
	WidgetText   lipgloss.Style
	WidgetAccent lipgloss.Style
	WidgetBox    lipgloss.Style

	// Chrome styles
	Border  lipgloss.Style
	Divider lipgloss.Style
	Title   lipgloss.Style

	// Colors for direct access
	SelectedBg lipgloss.Color
}

// DefaultStyles returns a StyleManager with default styles
func DefaultStyles() *StyleManager {
	return &StyleManager{
		Tag:          lipgloss.NewStyle().Foreground(lipgloss.Color("6")),
		Attr:         lipgloss.NewStyle().Foreground(lipgloss.Color("3")),
		Value:        lipgloss.NewStyle().Foreground(lipgloss.Color("2")),
		Cursor:       lipgloss.NewStyle().Foreground(lipgloss.Color("212")),
		Dim:          lipgloss.NewStyle().Foreground(lipgloss.Color("241")),
		Selected:     lipgloss.NewStyle().Background(lipgloss.Color("236")),
		WidgetText:   lipgloss.NewStyle(),
		WidgetAccent: lipgloss.NewStyle().Foreground(lipgloss.Color("212")),
		WidgetBox:    lipgloss.NewStyle().Border(lipgloss.NormalBorder()).BorderForeground(lipgloss.Color("240")),
		Border:       lipgloss.NewStyle().Border(lipgloss.RoundedBorder()).BorderForeground(lipgloss.Color("240")),
		Divider:      lipgloss.NewStyle().Foreground(lipgloss.Color("240")),
		Title:        lipgloss.NewStyle().Bold(true),
		SelectedBg:   lipgloss.Color("236"),
	}
}

// LoadFromConfig updates styles based on configuration
func (s *StyleManager) LoadFromConfig() {
	tagColor := lipgloss.Color(config.GetColorTag())
	attrColor := lipgloss.Color(config.GetColorAttr())
	valueColor := lipgloss.Color(config.GetColorValue())
	accentColor := lipgloss.Color(config.GetColorAccent())
	dimColor := lipgloss.Color(config.GetColorDim())
	borderColor := lipgloss.Color(config.GetColorBorder())
	selectedBg := lipgloss.Color(config.GetColorSelected())

	s.Tag = lipgloss.NewStyle().Foreground(tagColor)
	s.Attr = lipgloss.NewStyle().Foreground(attrColor)
	s.Value = lipgloss.NewStyle().Foreground(valueColor)
	s.Cursor = lipgloss.NewStyle().Foreground(accentColor)
	s.Dim = lipgloss.NewStyle().Foreground(dimColor)
	s.Selected = lipgloss.NewStyle().Background(selectedBg)

	s.WidgetText = lipgloss.NewStyle()
	s.WidgetAccent = lipgloss.NewStyle().Foreground(accentColor)
	s.WidgetBox = lipgloss.NewStyle().Border(lipgloss.NormalBorder()).BorderForeground(borderColor)

	s.Border = lipgloss.NewStyle().Border(lipgloss.RoundedBorder()).BorderForeground(borderColor)
	s.Divider = lipgloss.NewStyle().Foreground(borderColor)
	s.Title = lipgloss.NewStyle().Bold(true).Foreground(tagColor)
	s.SelectedBg = selectedBg
}

// WithSelection returns a copy of the given style with the selected background applied
func (s *StyleManager) WithSelection(style lipgloss.Style) lipgloss.Style {
	return style.Background(s.SelectedBg)
}

// Global style manager instance
var styles = DefaultStyles()

// RefreshStyles updates the global styles from config
func RefreshStyles() {
	styles.LoadFromConfig()
}
