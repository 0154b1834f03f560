package ui

import (
	tea "github.com/charmbracelet/bubbletea"

	"github.com/tkmlang/tkml/internal/parser"
)

// Run opens the interactive preview for a parsed document.
func Run(doc *parser.Document) error {
	RefreshStyles()
	p := tea.NewProgram(newPreviewModel(doc), tea.WithAltScreen())
	_, err := p.Run()
	return err
}
