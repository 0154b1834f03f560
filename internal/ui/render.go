package ui

import (
	"fmt"
	"sort"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/tkmlang/tkml/internal/parser"
	"github.com/tkmlang/tkml/internal/walker"
)

// ============================================================================
// Preview Widgets
// ============================================================================

// layoutInfo captures where a widget asked to be placed inside its
// parent.
type layoutInfo struct {
	kind   parser.Layout
	side   string
	row    int
	column int
	x      int
	y      int
}

func layoutInfoFrom(ctx walker.BuildContext) layoutInfo {
	info := layoutInfo{kind: ctx.Node.Layout}
	if v, ok := ctx.Layout["side"]; ok {
		info.side = v.String()
	}
	info.row = attrInt(ctx.Layout, "row")
	info.column = attrInt(ctx.Layout, "column")
	info.x = attrInt(ctx.Layout, "x")
	info.y = attrInt(ctx.Layout, "y")
	return info
}

func attrInt(attrs map[string]parser.Value, key string) int {
	if v, ok := attrs[key]; ok {
		if f, ok := v.Float(); ok {
			return int(f)
		}
	}
	return 0
}

func configString(attrs map[string]parser.Value, key string) string {
	if v, ok := attrs[key]; ok {
		return v.String()
	}
	return ""
}

// renderable is a preview widget that can draw itself.
type renderable interface {
	walker.Widget
	place() layoutInfo
	render() string
}

// element is a leaf preview widget.
type element struct {
	tag  string
	view string
	info layoutInfo
}

func (e *element) Tag() string       { return e.tag }
func (e *element) place() layoutInfo { return e.info }
func (e *element) render() string    { return e.view }

// frame is a container preview widget. Children lay themselves out by
// the layout manager their own bracket dialect selected.
type frame struct {
	element
	bordered bool
	children []renderable
}

func (f *frame) Add(child walker.Widget) {
	if r, ok := child.(renderable); ok {
		f.children = append(f.children, r)
	}
}

func (f *frame) render() string {
	body := renderChildren(f.children)
	if f.bordered {
		return styles.WidgetBox.Render(body)
	}
	return body
}

// menuBar renders its options on one line separated by dividers.
type menuBar struct {
	element
	options []renderable
}

func (m *menuBar) Add(child walker.Widget) {
	if r, ok := child.(renderable); ok {
		m.options = append(m.options, r)
	}
}

func (m *menuBar) render() string {
	parts := make([]string, len(m.options))
	for i, opt := range m.options {
		parts[i] = opt.render()
	}
	return strings.Join(parts, styles.Divider.Render(" │ "))
}

// ============================================================================
// Layout Dispatch
// ============================================================================

// renderChildren groups siblings by the layout manager each one
// selected and stacks the groups.
func renderChildren(children []renderable) string {
	var packed, gridded, placed []renderable
	for _, c := range children {
		switch c.place().kind {
		case parser.LayoutGrid:
			gridded = append(gridded, c)
		case parser.LayoutPlace:
			placed = append(placed, c)
		default:
			packed = append(packed, c)
		}
	}

	var sections []string
	if len(gridded) > 0 {
		sections = append(sections, renderGrid(gridded))
	}
	if len(packed) > 0 {
		sections = append(sections, renderPack(packed))
	}
	if len(placed) > 0 {
		sections = append(sections, renderPlace(placed))
	}
	if len(sections) == 0 {
		return ""
	}
	return lipgloss.JoinVertical(lipgloss.Left, sections...)
}

// renderPack stacks children vertically; side=left/right children are
// joined into a horizontal row first.
func renderPack(children []renderable) string {
	var row []string
	var stack []string
	for _, c := range children {
		switch c.place().side {
		case "left", "right":
			if len(row) > 0 {
				row = append(row, " ")
			}
			row = append(row, c.render())
		default:
			stack = append(stack, c.render())
		}
	}
	var parts []string
	if len(row) > 0 {
		parts = append(parts, lipgloss.JoinHorizontal(lipgloss.Top, row...))
	}
	parts = append(parts, stack...)
	return lipgloss.JoinVertical(lipgloss.Left, parts...)
}

// renderGrid arranges children into row/column cells with uniform
// column widths.
func renderGrid(children []renderable) string {
	type cellKey struct{ row, column int }
	cells := make(map[cellKey]string)
	maxRow, maxColumn := 0, 0
	for _, c := range children {
		info := c.place()
		cells[cellKey{info.row, info.column}] = c.render()
		if info.row > maxRow {
			maxRow = info.row
		}
		if info.column > maxColumn {
			maxColumn = info.column
		}
	}

	widths := make([]int, maxColumn+1)
	for key, cell := range cells {
		if w := lipgloss.Width(cell); w > widths[key.column] {
			widths[key.column] = w
		}
	}

	rows := make([]string, 0, maxRow+1)
	for r := 0; r <= maxRow; r++ {
		cols := make([]string, 0, maxColumn+1)
		for col := 0; col <= maxColumn; col++ {
			cell := cells[cellKey{r, col}]
			cols = append(cols, lipgloss.NewStyle().Width(widths[col]+1).Render(cell))
		}
		rows = append(rows, lipgloss.JoinHorizontal(lipgloss.Top, cols...))
	}
	return lipgloss.JoinVertical(lipgloss.Left, rows...)
}

// renderPlace approximates absolute placement: x maps to columns of
// left margin, y to blank lines, each offset relative to the previous
// sibling rather than the frame origin.
func renderPlace(children []renderable) string {
	parts := make([]string, len(children))
	for i, c := range children {
		info := c.place()
		parts[i] = lipgloss.NewStyle().
			MarginLeft(clamp(info.x, 0, 40)).
			MarginTop(clamp(info.y, 0, 10)).
			Render(c.render())
	}
	return lipgloss.JoinVertical(lipgloss.Left, parts...)
}

func clamp(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

// ============================================================================
// Widget Factories
// ============================================================================

// Registry returns the widget factories for the standard tags.
func Registry() *walker.Registry {
	r := walker.NewRegistry()

	r.Register("frame", containerFactory("frame", true))
	r.Register("page", containerFactory("page", false))
	r.Register("canvas", containerFactory("canvas", true))
	r.Register("menu", menuFactory)
	r.Register("menuoption", menuOptionFactory)

	r.Register("label", labelFactory)
	r.Register("button", buttonFactory)
	r.Register("entry", entryFactory)
	r.Register("checkbutton", checkFactory("[ ] "))
	r.Register("radiobutton", checkFactory("( ) "))
	r.Register("combobox", comboboxFactory)
	r.Register("listbox", listboxFactory)
	r.Register("spinbox", spinboxFactory)
	r.Register("image", imageFactory)
	r.Register("title", titleFactory)

	r.Register("variable", variableFactory)
	r.Register("geometry", silentFactory)
	r.Register("options", silentFactory)
	r.Register("configure", silentFactory)

	return r
}

func containerFactory(tag string, bordered bool) walker.Factory {
	return func(ctx walker.BuildContext) (walker.Widget, error) {
		return &frame{
			element:  element{tag: tag, info: layoutInfoFrom(ctx)},
			bordered: bordered,
		}, nil
	}
}

func menuFactory(ctx walker.BuildContext) (walker.Widget, error) {
	return &menuBar{element: element{tag: "menu", info: layoutInfoFrom(ctx)}}, nil
}

func menuOptionFactory(ctx walker.BuildContext) (walker.Widget, error) {
	label := configString(ctx.Config, "label")
	return &element{
		tag:  "menuoption",
		view: styles.WidgetText.Render(label),
		info: layoutInfoFrom(ctx),
	}, nil
}

func labelFactory(ctx walker.BuildContext) (walker.Widget, error) {
	return &element{
		tag:  "label",
		view: styles.WidgetText.Render(configString(ctx.Config, "text")),
		info: layoutInfoFrom(ctx),
	}, nil
}

func buttonFactory(ctx walker.BuildContext) (walker.Widget, error) {
	text := configString(ctx.Config, "text")
	return &element{
		tag:  "button",
		view: styles.WidgetAccent.Render("[ " + text + " ]"),
		info: layoutInfoFrom(ctx),
	}, nil
}

func entryFactory(ctx walker.BuildContext) (walker.Widget, error) {
	width := attrInt(ctx.Config, "width")
	if width <= 0 {
		width = 12
	}
	return &element{
		tag:  "entry",
		view: styles.Dim.Render(strings.Repeat("_", clamp(width, 1, 60))),
		info: layoutInfoFrom(ctx),
	}, nil
}

func checkFactory(marker string) walker.Factory {
	return func(ctx walker.BuildContext) (walker.Widget, error) {
		return &element{
			tag:  ctx.Node.Name,
			view: styles.WidgetText.Render(marker + configString(ctx.Config, "text")),
			info: layoutInfoFrom(ctx),
		}, nil
	}
}

func comboboxFactory(ctx walker.BuildContext) (walker.Widget, error) {
	text := configString(ctx.Config, "text")
	if v, ok := ctx.Config["values"]; ok && text == "" && v.Kind == parser.ValueList && len(v.List) > 0 {
		text = v.List[0].String()
	}
	return &element{
		tag:  "combobox",
		view: styles.WidgetBox.Render(text + " v"),
		info: layoutInfoFrom(ctx),
	}, nil
}

func listboxFactory(ctx walker.BuildContext) (walker.Widget, error) {
	var lines []string
	if v, ok := ctx.Config["values"]; ok && v.Kind == parser.ValueList {
		for _, item := range v.List {
			lines = append(lines, item.String())
		}
	}
	return &element{
		tag:  "listbox",
		view: styles.WidgetBox.Render(strings.Join(lines, "\n")),
		info: layoutInfoFrom(ctx),
	}, nil
}

func spinboxFactory(ctx walker.BuildContext) (walker.Widget, error) {
	from := configString(ctx.Config, "from")
	if from == "" {
		from = "0"
	}
	return &element{
		tag:  "spinbox",
		view: styles.WidgetBox.Render(from + " ^"),
		info: layoutInfoFrom(ctx),
	}, nil
}

func imageFactory(ctx walker.BuildContext) (walker.Widget, error) {
	file := configString(ctx.Config, "file")
	return &element{
		tag:  "image",
		view: styles.Dim.Render("[image " + file + "]"),
		info: layoutInfoFrom(ctx),
	}, nil
}

func titleFactory(ctx walker.BuildContext) (walker.Widget, error) {
	return &element{
		tag:  "title",
		view: styles.Title.Render(configString(ctx.Config, "title")),
		info: layoutInfoFrom(ctx),
	}, nil
}

// variableFactory registers a markup-declared variable in the active
// controller; it produces no visible widget.
func variableFactory(ctx walker.BuildContext) (walker.Widget, error) {
	if ctx.Controller == nil {
		return nil, walker.ErrMissingController
	}
	name := configString(ctx.Config, "name")
	if name == "" {
		return nil, fmt.Errorf("variable element needs a name attribute")
	}
	ctx.Controller.Set(name, ctx.Config["value"])
	return nil, nil
}

// silentFactory covers window-level directives (geometry, options,
// configure) that have no terminal rendering.
func silentFactory(ctx walker.BuildContext) (walker.Widget, error) {
	return nil, nil
}

// genericFactory renders tags without a dedicated factory as a plain
// labelled box so a preview never hard-fails on unknown markup.
func genericFactory(ctx walker.BuildContext) (walker.Widget, error) {
	return &frame{
		element:  element{tag: ctx.Node.Name, info: layoutInfoFrom(ctx)},
		bordered: true,
	}, nil
}

// registerFallbacks binds genericFactory to every tag in the tree that
// has no registered factory.
func registerFallbacks(r *walker.Registry, root *parser.Node) {
	eachNode(root, func(n *parser.Node) {
		if _, ok := r.Lookup(n.Name); !ok {
			r.Register(n.Name, genericFactory)
		}
	})
}

func eachNode(n *parser.Node, fn func(*parser.Node)) {
	fn(n)
	for _, child := range n.Children {
		eachNode(child, fn)
	}
}

// ============================================================================
// Rendering Entry Point
// ============================================================================

// Render lays out a parsed document as a terminal mockup. Build
// problems (unresolved controllers, broken bindings) are appended as
// dim footer lines instead of failing the preview.
func Render(root *parser.Node, width int) string {
	registry := Registry()
	registerFallbacks(registry, root)

	w := walker.New(registry)
	top := &frame{element: element{tag: "root"}}
	buildErr := w.Build(root, top)

	out := renderChildren(top.children)
	if buildErr != nil {
		notes := make([]string, 0, len(w.Errs()))
		for _, err := range w.Errs() {
			notes = append(notes, styles.Dim.Render("! "+err.Error()))
		}
		sort.Strings(notes)
		out = lipgloss.JoinVertical(lipgloss.Left, append([]string{out}, notes...)...)
	}
	if width > 0 {
		out = lipgloss.NewStyle().MaxWidth(width).Render(out)
	}
	return out
}
