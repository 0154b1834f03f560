package ui

import (
	"testing"

	"github.com/tkmlang/tkml/internal/parser"
)

func previewDoc(t *testing.T, input string) *parser.Document {
	t.Helper()
	return &parser.Document{Path: "test.tkml", Root: parseDoc(t, input)}
}

func TestFlattenTree(t *testing.T) {
	doc := previewDoc(t, "<app><frame><button text=a/><label text=b/></frame><entry/></app>")
	rows := flattenTree(doc.Root)

	want := []struct {
		name  string
		depth int
	}{
		{"app", 0},
		{"frame", 1},
		{"button", 2},
		{"label", 2},
		{"entry", 1},
	}
	if len(rows) != len(want) {
		t.Fatalf("expected %d rows, got %d", len(want), len(rows))
	}
	for i, w := range want {
		if rows[i].node.Name != w.name || rows[i].depth != w.depth {
			t.Errorf("row %d: expected %s@%d, got %s@%d",
				i, w.name, w.depth, rows[i].node.Name, rows[i].depth)
		}
	}
}

func TestOpenBracket(t *testing.T) {
	tests := []struct {
		layout parser.Layout
		want   string
	}{
		{parser.LayoutPack, "<"},
		{parser.LayoutGrid, "{"},
		{parser.LayoutPlace, "["},
	}
	for _, tt := range tests {
		if got := openBracket(tt.layout); got != tt.want {
			t.Errorf("openBracket(%q): expected %q, got %q", tt.layout, tt.want, got)
		}
	}
}

func TestFilterRows(t *testing.T) {
	m := newPreviewModel(previewDoc(t, "<app><frame><button text=a/><button text=b/><label text=c/></frame></app>"))

	m.textInput.SetValue("button")
	m.filterRows()
	if len(m.filtered) != 2 {
		t.Errorf("expected 2 button rows, got %d", len(m.filtered))
	}
	for _, row := range m.filtered {
		if row.node.Name != "button" {
			t.Errorf("unexpected row %q in filtered set", row.node.Name)
		}
	}

	m.textInput.SetValue("")
	m.filterRows()
	if len(m.filtered) != len(m.rows) {
		t.Errorf("empty query should restore all %d rows, got %d", len(m.rows), len(m.filtered))
	}

	m.textInput.SetValue("zzz")
	m.filterRows()
	if len(m.filtered) != 0 {
		t.Errorf("expected no rows for unmatched query, got %d", len(m.filtered))
	}
}

func TestMoveCursorClamps(t *testing.T) {
	m := newPreviewModel(previewDoc(t, "<app><a x=1/><b x=2/></app>"))
	m.height = 20

	m.moveCursor(-5)
	if m.cursor != 0 {
		t.Errorf("cursor should clamp at 0, got %d", m.cursor)
	}
	m.moveCursor(100)
	if m.cursor != len(m.filtered)-1 {
		t.Errorf("cursor should clamp at last row, got %d", m.cursor)
	}
}
