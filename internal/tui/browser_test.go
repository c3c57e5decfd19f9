package tui

import (
	"io"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/raphaelgruber/procview/internal/models"
	"github.com/raphaelgruber/procview/internal/search"
)

func sampleTree() []models.FolderTree {
	return []models.FolderTree{
		{ID: "f1", Name: "Plant A", Children: []models.FolderTree{
			{ID: "f2", Name: "Pumps", Parent: "f1", Procedures: []models.ProcedureNode{{ID: "p1", Name: "Pump Start"}}},
			{ID: "f3", Name: "Valves", Parent: "f1", Procedures: []models.ProcedureNode{{ID: "p2", Name: "Valve Check"}}},
		}},
		{ID: "f4", Name: "Utilities", Procedures: []models.ProcedureNode{{ID: "p3", Name: "Air Compressor"}}},
	}
}

func newBrowser(t *testing.T, exp *search.Expansion) Browser {
	t.Helper()
	return NewBrowser(sampleTree(), exp, "", slog.New(slog.NewTextHandler(io.Discard, nil)))
}

func browse(b Browser, keys ...string) Browser {
	for _, k := range keys {
		b, _ = b.browseKey(k)
	}
	return b
}

func labels(rows []search.Row) []string {
	out := make([]string, len(rows))
	for i, r := range rows {
		out[i] = r.Label()
	}
	return out
}

func TestBrowser_StartsCollapsed(t *testing.T) {
	b := newBrowser(t, nil)
	assert.Equal(t, []string{"Plant A", "Utilities"}, labels(b.Rows()))

	out := b.renderContent()
	assert.Contains(t, out, "> ▸ Plant A (2)")
	assert.Contains(t, out, "▸ Utilities (1)")
}

func TestBrowser_ToggleFolder(t *testing.T) {
	b := browse(newBrowser(t, nil), "enter")
	assert.Equal(t, []string{"Plant A", "Pumps", "Valves", "Utilities"}, labels(b.Rows()))
	assert.Contains(t, b.renderContent(), "▾ Plant A")

	b = browse(b, "left")
	assert.Equal(t, []string{"Plant A", "Utilities"}, labels(b.Rows()))
}

func TestBrowser_SearchExpandsMatches(t *testing.T) {
	b := newBrowser(t, nil)
	b.setTerm("pump")

	assert.Equal(t, []string{"Plant A", "Pumps", "Pump Start"}, labels(b.Rows()))
	out := b.renderContent()
	assert.Contains(t, out, "Search: pump")
	assert.NotContains(t, out, "Valve")
}

func TestBrowser_ClearingSearchKeepsUserExpansion(t *testing.T) {
	exp := search.NewExpansion()
	b := browse(newBrowser(t, exp), "down", "enter")
	require.True(t, exp.IsExpanded("f4"))

	b.setTerm("pump")
	b.setTerm("")

	assert.True(t, exp.IsExpanded("f4"), "user toggled folder must stay open")
	assert.True(t, exp.IsExpanded("f1"), "clearing must not force a collapse")
	assert.False(t, exp.IsExpanded("f3"))
	assert.Equal(t,
		[]string{"Plant A", "Pumps", "Pump Start", "Valves", "Utilities", "Air Compressor"},
		labels(b.Rows()))
}

func TestBrowser_CollapseDuringSearchSurvivesClear(t *testing.T) {
	exp := search.NewExpansion()
	b := newBrowser(t, exp)
	b.setTerm("valve")
	b = browse(b, "enter")
	require.False(t, exp.IsExpanded("f1"))

	b, _ = b.browseKey("esc")

	assert.Empty(t, b.Term())
	assert.False(t, exp.IsExpanded("f1"))
	assert.Equal(t, []string{"Plant A", "Utilities"}, labels(b.Rows()))
}

func TestBrowser_SearchModeKeys(t *testing.T) {
	b := browse(newBrowser(t, nil), "/")
	require.True(t, b.searching)

	b.setTerm("air")
	b, _ = b.searchKey("enter", nil)
	assert.False(t, b.searching)
	assert.Equal(t, "air", b.Term())

	b = browse(b, "/")
	b, _ = b.searchKey("esc", nil)
	assert.False(t, b.searching)
	assert.Empty(t, b.Term())
}

func TestBrowser_SelectProcedure(t *testing.T) {
	b := newBrowser(t, nil)
	b.setTerm("valve")

	b, cmd := browse(b, "down", "down").browseKey("enter")

	assert.NotNil(t, cmd)
	doc, ok := b.Selected()
	require.True(t, ok)
	assert.Equal(t, "p2", doc.ID)
	assert.Empty(t, b.renderContent())
}

func TestBrowser_QuitWithoutSelection(t *testing.T) {
	b, cmd := newBrowser(t, nil).browseKey("q")
	assert.NotNil(t, cmd)
	_, ok := b.Selected()
	assert.False(t, ok)
}

func TestBrowser_ExpandAndCollapseAll(t *testing.T) {
	b := browse(newBrowser(t, nil), "e")
	assert.Len(t, b.Rows(), 7)

	b = browse(b, "down", "down", "down", "down", "down", "down", "c")
	assert.Len(t, b.Rows(), 2)
	assert.Equal(t, 1, b.cursor)
}

func TestBrowser_NoMatches(t *testing.T) {
	b := newBrowser(t, nil)
	b.setTerm("zzz")

	assert.Empty(t, b.Rows())
	assert.Contains(t, b.renderContent(), `No procedures match "zzz".`)

	b = browse(b, "enter", "down")
	_, ok := b.Selected()
	assert.False(t, ok)
}

func TestBrowser_InitialTerm(t *testing.T) {
	b := NewBrowser(sampleTree(), nil, "compressor", nil)
	assert.Equal(t, []string{"Utilities", "Air Compressor"}, labels(b.Rows()))
}
