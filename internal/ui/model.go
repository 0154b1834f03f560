package ui

import (
	"fmt"
	"sort"
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/tkmlang/tkml/internal/parser"
)

// treeRow is one line of the flattened node tree.
type treeRow struct {
	node  *parser.Node
	depth int
}

// flattenTree walks the tree depth-first into display rows.
func flattenTree(root *parser.Node) []treeRow {
	var rows []treeRow
	var walk func(n *parser.Node, depth int)
	walk = func(n *parser.Node, depth int) {
		rows = append(rows, treeRow{node: n, depth: depth})
		for _, child := range n.Children {
			walk(child, depth+1)
		}
	}
	walk(root, 0)
	return rows
}

// openBracket returns the bracket that selects a node's layout.
func openBracket(layout parser.Layout) string {
	switch layout {
	case parser.LayoutGrid:
		return "{"
	case parser.LayoutPlace:
		return "["
	default:
		return "<"
	}
}

type previewModel struct {
	doc      *parser.Document
	rows     []treeRow
	filtered []treeRow

	textInput textinput.Model
	cursor    int
	offset    int
	width     int
	height    int
	quitting  bool
}

func newPreviewModel(doc *parser.Document) previewModel {
	ti := textinput.New()
	ti.Placeholder = "Filter by tag..."
	ti.Focus()
	ti.CharLimit = 64
	ti.Width = 30

	rows := flattenTree(doc.Root)
	return previewModel{
		doc:       doc,
		rows:      rows,
		filtered:  rows,
		textInput: ti,
	}
}

// Init implements tea.Model
func (m previewModel) Init() tea.Cmd {
	return textinput.Blink
}

// Update implements tea.Model
func (m previewModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		return m, nil
	case tea.KeyMsg:
		switch msg.String() {
		case "ctrl+c", "esc":
			m.quitting = true
			return m, tea.Quit
		case "up", "ctrl+p":
			m.moveCursor(-1)
			return m, nil
		case "down", "ctrl+n":
			m.moveCursor(1)
			return m, nil
		case "pgup":
			m.moveCursor(-10)
			return m, nil
		case "pgdown":
			m.moveCursor(10)
			return m, nil
		case "home":
			m.cursor = 0
			m.adjustOffset()
			return m, nil
		case "end":
			m.cursor = max(0, len(m.filtered)-1)
			m.adjustOffset()
			return m, nil
		}
	}

	prevQuery := m.textInput.Value()
	var cmd tea.Cmd
	m.textInput, cmd = m.textInput.Update(msg)
	if m.textInput.Value() != prevQuery {
		m.filterRows()
	}
	return m, cmd
}

// moveCursor moves the cursor by delta, clamping to valid range
func (m *previewModel) moveCursor(delta int) {
	m.cursor = clamp(m.cursor+delta, 0, max(0, len(m.filtered)-1))
	m.adjustOffset()
}

// adjustOffset keeps the cursor inside the visible window
func (m *previewModel) adjustOffset() {
	visible := m.listHeight()
	if m.cursor < m.offset {
		m.offset = m.cursor
	}
	if m.cursor >= m.offset+visible {
		m.offset = m.cursor - visible + 1
	}
}

func (m previewModel) listHeight() int {
	h := m.height - 6 // header, filter, borders
	if h < 3 {
		h = 3
	}
	return h
}

// filterRows keeps rows whose tag contains every query word
func (m *previewModel) filterRows() {
	query := strings.ToLower(strings.TrimSpace(m.textInput.Value()))
	if query == "" {
		m.filtered = m.rows
	} else {
		words := strings.Fields(query)
		var filtered []treeRow
		for _, row := range m.rows {
			name := strings.ToLower(row.node.Name)
			match := true
			for _, word := range words {
				if !strings.Contains(name, word) {
					match = false
					break
				}
			}
			if match {
				filtered = append(filtered, row)
			}
		}
		m.filtered = filtered
	}
	m.cursor = clamp(m.cursor, 0, max(0, len(m.filtered)-1))
	m.adjustOffset()
}

// View implements tea.Model
func (m previewModel) View() string {
	if m.quitting {
		return ""
	}
	if m.width == 0 {
		return "loading..."
	}

	header := styles.Title.Render(m.doc.Path) + " " +
		styles.Dim.Render(fmt.Sprintf("(%d nodes)", len(m.rows)))
	filter := m.textInput.View()

	treeWidth := m.width * 2 / 5
	if treeWidth < 24 {
		treeWidth = 24
	}
	panelWidth := m.width - treeWidth - 4

	tree := m.renderTree(treeWidth)
	panel := m.renderPanel(panelWidth)

	body := lipgloss.JoinHorizontal(lipgloss.Top,
		styles.Border.Width(treeWidth).Render(tree),
		" ",
		styles.Border.Width(panelWidth).Render(panel),
	)

	help := styles.Dim.Render("up/down navigate · type to filter · esc quit")
	return lipgloss.JoinVertical(lipgloss.Left, header, filter, body, help)
}

// renderTree draws the flattened node list with the cursor row
// highlighted.
func (m previewModel) renderTree(width int) string {
	if len(m.filtered) == 0 {
		return styles.Dim.Render("no matching nodes")
	}

	visible := m.listHeight()
	end := min(m.offset+visible, len(m.filtered))

	var b strings.Builder
	for i := m.offset; i < end; i++ {
		row := m.filtered[i]
		indent := strings.Repeat("  ", row.depth)
		line := indent +
			styles.Dim.Render(openBracket(row.node.Layout)) +
			styles.Tag.Render(row.node.Name) +
			styles.Dim.Render(fmt.Sprintf(" %s", row.node.Layout))

		if i == m.cursor {
			line = styles.Cursor.Render("> ") + line
		} else {
			line = "  " + line
		}
		b.WriteString(lipgloss.NewStyle().MaxWidth(width).Render(line))
		if i < end-1 {
			b.WriteString("\n")
		}
	}
	return b.String()
}

// renderPanel draws the selected node's attributes and a live
// rendering of its subtree.
func (m previewModel) renderPanel(width int) string {
	if len(m.filtered) == 0 || m.cursor >= len(m.filtered) {
		return ""
	}
	node := m.filtered[m.cursor].node

	var b strings.Builder
	b.WriteString(styles.Tag.Render(node.Name))
	b.WriteString(styles.Dim.Render(" · " + string(node.Layout)))
	b.WriteString("\n")

	keys := make([]string, 0, len(node.Attributes))
	for key := range node.Attributes {
		keys = append(keys, key)
	}
	sort.Strings(keys)
	for _, key := range keys {
		b.WriteString(styles.Attr.Render(key))
		b.WriteString(styles.Dim.Render("="))
		b.WriteString(styles.Value.Render(node.Attributes[key].String()))
		b.WriteString("\n")
	}
	if len(keys) == 0 {
		b.WriteString(styles.Dim.Render("no attributes"))
		b.WriteString("\n")
	}

	b.WriteString(styles.Divider.Render(strings.Repeat("─", max(1, width-2))))
	b.WriteString("\n")
	b.WriteString(Render(wrapRoot(node), width-2))
	return b.String()
}

// wrapRoot puts a node under a synthetic document root so Render lays
// out the node itself, not only its children.
func wrapRoot(node *parser.Node) *parser.Node {
	return &parser.Node{
		Name:     "root",
		Children: []*parser.Node{node},
		Layout:   parser.LayoutPack,
	}
}
