package walker

import (
	"errors"
	"fmt"

	"github.com/tkmlang/tkml/internal/parser"
)

// ============================================================================
// Controller Protocol
// ============================================================================

// Controller resolves markup-referenced names to live application
// values: command handlers, bound variables, widgets registered by id.
type Controller interface {
	Get(name string) (interface{}, bool)
	Set(name string, value interface{})
}

// MapController is a map-backed Controller, the common case for
// application code and tests.
type MapController struct {
	vars map[string]interface{}
}

// NewMapController creates an empty MapController
func NewMapController() *MapController {
	return &MapController{vars: make(map[string]interface{})}
}

// Get returns the named member
func (c *MapController) Get(name string) (interface{}, bool) {
	v, ok := c.vars[name]
	return v, ok
}

// Set stores a member under the given name
func (c *MapController) Set(name string, value interface{}) {
	c.vars[name] = value
}

// ============================================================================
// Widgets and Factories
// ============================================================================

// Widget is anything a factory can build from a markup element.
type Widget interface {
	Tag() string
}

// Container is a Widget that accepts children built beneath its
// element. A widget that does not implement Container never becomes
// the parent of its element's children; they attach to the enclosing
// container instead.
type Container interface {
	Widget
	Add(child Widget)
}

// BuildContext carries everything a factory needs to build one widget.
type BuildContext struct {
	Node       *parser.Node
	Parent     Widget
	Controller Controller
	// Layout holds the attributes claimed by the node's layout manager,
	// Config everything else (controller and id already stripped).
	Layout map[string]parser.Value
	Config map[string]parser.Value
}

// Resolve looks up a binding attribute through the active controller:
// the attribute's value names a controller member rather than a
// literal option.
func (ctx BuildContext) Resolve(key string) (interface{}, bool) {
	v, ok := ctx.Config[key]
	if !ok || ctx.Controller == nil {
		return nil, false
	}
	return ctx.Controller.Get(v.String())
}

// Factory builds a widget for one markup element.
type Factory func(ctx BuildContext) (Widget, error)

// Registry maps tag names to widget factories.
type Registry struct {
	factories map[string]Factory
}

// NewRegistry creates an empty registry
func NewRegistry() *Registry {
	return &Registry{factories: make(map[string]Factory)}
}

// Register binds a factory to a tag, replacing any previous binding
func (r *Registry) Register(tag string, f Factory) {
	r.factories[tag] = f
}

// Lookup returns the factory for a tag
func (r *Registry) Lookup(tag string) (Factory, bool) {
	f, ok := r.factories[tag]
	return f, ok
}

// ============================================================================
// Layout Attribute Splitting
// ============================================================================

// layoutKeys lists the attribute names claimed by each layout manager.
var layoutKeys = map[parser.Layout][]string{
	parser.LayoutPack: {"after", "anchor", "before", "expand", "fill", "in",
		"ipadx", "ipady", "padx", "pady", "side"},
	parser.LayoutGrid: {"column", "columnspan", "row", "rowspan", "sticky",
		"ipadx", "ipady", "padx", "pady"},
	parser.LayoutPlace: {"relx", "rely", "relheight", "relwidth", "height",
		"width", "x", "y", "anchor", "bordermode"},
}

// SplitLayout partitions a node's attributes into layout-manager
// attributes and widget configuration.
func SplitLayout(attrs map[string]parser.Value, layout parser.Layout) (layoutAttrs, config map[string]parser.Value) {
	claimed := make(map[string]bool)
	for _, key := range layoutKeys[layout] {
		claimed[key] = true
	}

	layoutAttrs = make(map[string]parser.Value)
	config = make(map[string]parser.Value)
	for key, value := range attrs {
		if claimed[key] {
			layoutAttrs[key] = value
		} else {
			config[key] = value
		}
	}
	return layoutAttrs, config
}

// ============================================================================
// Walker
// ============================================================================

// Walker errors. Per-node failures wrap one of these.
var (
	ErrUnknownTag        = errors.New("unknown tag")
	ErrUnknownController = errors.New("unknown controller")
	ErrMissingController = errors.New("no active controller")
)

// Walker instantiates widget trees from parsed markup. Per-node
// failures are collected rather than aborting the build, so one broken
// element does not take down its siblings.
type Walker struct {
	registry    *Registry
	controllers map[string]Controller
	errs        []error
}

// New creates a Walker over the given factory registry
func New(registry *Registry) *Walker {
	return &Walker{
		registry:    registry,
		controllers: make(map[string]Controller),
	}
}

// RegisterController makes a controller addressable from markup
func (w *Walker) RegisterController(name string, c Controller) {
	w.controllers[name] = c
}

// Errs returns the per-node failures of the last Build
func (w *Walker) Errs() []error {
	return w.errs
}

// Build walks the document root and instantiates every child element
// onto parent. The root element itself is only inspected for a
// controller attribute; its children are the top-level widgets. The
// returned error joins all per-node failures.
func (w *Walker) Build(root *parser.Node, parent Widget) error {
	w.errs = nil
	controller := w.switchController(root, nil)
	for _, child := range root.Children {
		w.buildElement(child, parent, controller)
	}
	return errors.Join(w.errs...)
}

// switchController replaces the active controller when the element
// carries a controller attribute.
func (w *Walker) switchController(node *parser.Node, current Controller) Controller {
	key := node.AttrString("controller")
	if key == "" {
		return current
	}
	controller, ok := w.controllers[key]
	if !ok {
		w.errs = append(w.errs, fmt.Errorf("%w %q in %s", ErrUnknownController, key, node.Name))
		return current
	}
	return controller
}

func (w *Walker) buildElement(node *parser.Node, parent Widget, controller Controller) {
	controller = w.switchController(node, controller)

	attrs := make(map[string]parser.Value, len(node.Attributes))
	for key, value := range node.Attributes {
		if key == "controller" || key == "id" {
			continue
		}
		attrs[key] = value
	}
	layoutAttrs, config := SplitLayout(attrs, node.Layout)

	var widget Widget
	factory, ok := w.registry.Lookup(node.Name)
	if !ok {
		w.errs = append(w.errs, fmt.Errorf("%w %q", ErrUnknownTag, node.Name))
	} else {
		built, err := factory(BuildContext{
			Node:       node,
			Parent:     parent,
			Controller: controller,
			Layout:     layoutAttrs,
			Config:     config,
		})
		if err != nil {
			w.errs = append(w.errs, fmt.Errorf("%s: %w", node.Name, err))
		} else {
			widget = built
		}
	}

	if widget != nil {
		if container, ok := parent.(Container); ok {
			container.Add(widget)
		}
		if id := node.AttrString("id"); id != "" {
			if controller == nil {
				w.errs = append(w.errs, fmt.Errorf("%w for id %q in %s", ErrMissingController, id, node.Name))
			} else {
				controller.Set(id, widget)
			}
		}
		// Containers adopt their element's children; anything else
		// passes the enclosing parent through.
		if _, ok := widget.(Container); ok {
			parent = widget
		}
	}

	for _, child := range node.Children {
		w.buildElement(child, parent, controller)
	}
}
