package ui

import (
	"strings"
	"testing"

	"github.com/tkmlang/tkml/internal/parser"
	"github.com/tkmlang/tkml/internal/walker"
)

func parseDoc(t *testing.T, input string) *parser.Node {
	t.Helper()
	root, err := parser.ParseDocument(input)
	if err != nil {
		t.Fatalf("ParseDocument(%q) failed: %v", input, err)
	}
	return root
}

func TestRenderLeafWidgets(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  []string
	}{
		{
			name:  "label",
			input: "<app><label text='Hello'/></app>",
			want:  []string{"Hello"},
		},
		{
			name:  "button",
			input: "<app><button text='Go'/></app>",
			want:  []string{"[ Go ]"},
		},
		{
			name:  "checkbutton",
			input: "<app><checkbutton text='Agree'/></app>",
			want:  []string{"[ ] Agree"},
		},
		{
			name:  "radiobutton",
			input: "<app><radiobutton text='One'/></app>",
			want:  []string{"( ) One"},
		},
		{
			name:  "listbox values",
			input: "<app><listbox values=[red green blue]/></app>",
			want:  []string{"red", "green", "blue"},
		},
		{
			name:  "menu bar",
			input: "<app><menu><menuoption label='File'/><menuoption label='Edit'/></menu></app>",
			want:  []string{"File", "Edit"},
		},
		{
			name:  "title",
			input: "<app><title title='My App'/></app>",
			want:  []string{"My App"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			out := Render(parseDoc(t, tt.input), 80)
			for _, want := range tt.want {
				if !strings.Contains(out, want) {
					t.Errorf("rendering missing %q:\n%s", want, out)
				}
			}
		})
	}
}

func TestRenderGridRowOrder(t *testing.T) {
	root := parseDoc(t, "<app>{label text=topleft row=0 column=0/}{label text=bottomright row=1 column=1/}</app>")
	out := Render(root, 80)

	top := strings.Index(out, "topleft")
	bottom := strings.Index(out, "bottomright")
	if top < 0 || bottom < 0 {
		t.Fatalf("grid cells missing:\n%s", out)
	}
	if top > bottom {
		t.Errorf("row 0 should render above row 1:\n%s", out)
	}
}

func TestRenderPackSides(t *testing.T) {
	root := parseDoc(t, "<app><button text=left side=left/><button text=right side=left/></app>")
	out := Render(root, 80)

	// Side-packed buttons share one line.
	for _, line := range strings.Split(out, "\n") {
		if strings.Contains(line, "left") && strings.Contains(line, "right") {
			return
		}
	}
	t.Errorf("expected side-packed buttons on one line:\n%s", out)
}

func TestRenderPlaceOffsets(t *testing.T) {
	root := parseDoc(t, "<app>[label text=shifted x=10/]</app>")
	out := Render(root, 80)

	found := false
	for _, line := range strings.Split(out, "\n") {
		if i := strings.Index(line, "shifted"); i >= 10 {
			found = true
		}
	}
	if !found {
		t.Errorf("expected placed label offset by at least 10 columns:\n%s", out)
	}
}

func TestRenderUnknownTagFallback(t *testing.T) {
	root := parseDoc(t, "<app><gadget><label text=inside/></gadget></app>")
	out := Render(root, 80)

	if !strings.Contains(out, "inside") {
		t.Errorf("children of unknown tags should still render:\n%s", out)
	}
	if strings.Contains(out, "unknown tag") {
		t.Errorf("unknown tags should fall back, not error:\n%s", out)
	}
}

func TestRenderReportsBuildProblems(t *testing.T) {
	root := parseDoc(t, "<app controller=missing><label text=hi/></app>")
	out := Render(root, 80)

	if !strings.Contains(out, "unknown controller") {
		t.Errorf("expected controller problem in footer:\n%s", out)
	}
	if !strings.Contains(out, "hi") {
		t.Errorf("preview should continue past problems:\n%s", out)
	}
}

func TestVariableFactorySetsController(t *testing.T) {
	root := parseDoc(t, "<app controller=main><variable name=count value=3/></app>")

	registry := Registry()
	w := walker.New(registry)
	main := walker.NewMapController()
	w.RegisterController("main", main)

	if err := w.Build(root, &frame{}); err != nil {
		t.Fatalf("Build failed: %v", err)
	}

	stored, ok := main.Get("count")
	if !ok {
		t.Fatal("expected variable bound in controller")
	}
	value := stored.(parser.Value)
	if value.Kind != parser.ValueNumber || value.Num != 3 {
		t.Errorf("expected numeric 3, got %+v", value)
	}
}

func TestVariableWithoutControllerFails(t *testing.T) {
	root := parseDoc(t, "<app><variable name=count value=3/></app>")
	out := Render(root, 80)

	if !strings.Contains(out, "no active controller") {
		t.Errorf("expected missing controller note:\n%s", out)
	}
}

func TestRegistryCoversStandardTags(t *testing.T) {
	registry := Registry()
	for _, tag := range []string{
		"frame", "canvas", "label", "checkbutton", "radiobutton", "spinbox",
		"button", "entry", "combobox", "listbox", "image", "menu", "page",
		"menuoption", "variable", "title", "options", "geometry", "configure",
	} {
		if _, ok := registry.Lookup(tag); !ok {
			t.Errorf("no factory registered for %q", tag)
		}
	}
}
