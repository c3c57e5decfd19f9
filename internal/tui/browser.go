package tui

import (
	"fmt"
	"log/slog"
	"strings"

	"charm.land/bubbles/v2/textinput"
	tea "charm.land/bubbletea/v2"

	"github.com/raphaelgruber/procview/internal/models"
	"github.com/raphaelgruber/procview/internal/search"
)

// Browser is the bubbletea model of the folder tree. The search term filters
// the tree and expands every folder holding a match; folders are otherwise
// expanded and collapsed by the user, and that state outlives the search.
type Browser struct {
	tree      []models.FolderTree
	exp       *search.Expansion
	input     textinput.Model
	searching bool
	cursor    int
	selected  *models.ProcedureNode
	width     int
	theme     Theme
	logger    *slog.Logger
	quitting  bool
}

// NewBrowser builds a browser over tree. exp carries the expansion state and
// is updated in place, so it can be reused across runs.
func NewBrowser(tree []models.FolderTree, exp *search.Expansion, term string, logger *slog.Logger) Browser {
	if exp == nil {
		exp = search.NewExpansion()
	}
	if logger == nil {
		logger = slog.Default()
	}

	input := textinput.New()
	input.Prompt = "Search: "
	input.Placeholder = "procedure name"

	b := Browser{
		tree:   tree,
		exp:    exp,
		input:  input,
		width:  defaultWidth,
		theme:  defaultTheme,
		logger: logger,
	}
	b.setTerm(term)
	return b
}

// Term returns the active search term.
func (b Browser) Term() string {
	return strings.TrimSpace(b.input.Value())
}

// Rows returns the visible rows.
func (b Browser) Rows() []search.Row {
	return search.Flatten(search.Filter(b.tree, b.Term()), b.exp)
}

// Selected returns the procedure the user picked, if any.
func (b Browser) Selected() (models.ProcedureNode, bool) {
	if b.selected == nil {
		return models.ProcedureNode{}, false
	}
	return *b.selected, true
}

func (b *Browser) setTerm(term string) {
	b.input.SetValue(term)
	b.applyTerm()
}

// applyTerm expands the folders of the filtered tree. A blank term leaves
// the expansion as it is.
func (b *Browser) applyTerm() {
	if term := b.Term(); term != "" {
		filtered := search.Filter(b.tree, term)
		b.exp.ExpandMatches(filtered)
		b.logger.Debug("folder search", "term", term, "matches", search.CountProcedures(filtered))
	}
	b.cursor = clamp(b.cursor, len(b.Rows()))
}

// Init implements tea.Model.
func (b Browser) Init() tea.Cmd {
	return nil
}

// Update handles messages and returns the updated model.
func (b Browser) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyPressMsg:
		if b.searching {
			return b.searchKey(msg.String(), msg)
		}
		return b.browseKey(msg.String())

	case tea.WindowSizeMsg:
		b.width = msg.Width
		return b, nil
	}
	return b, nil
}

// searchKey edits the search term. Enter keeps the term, esc clears it.
func (b Browser) searchKey(key string, msg tea.Msg) (Browser, tea.Cmd) {
	switch key {
	case "ctrl+c":
		b.quitting = true
		return b, tea.Quit
	case "enter":
		b.searching = false
		b.input.Blur()
		return b, nil
	case "esc":
		b.searching = false
		b.input.Blur()
		b.setTerm("")
		return b, nil
	}

	var cmd tea.Cmd
	b.input, cmd = b.input.Update(msg)
	b.applyTerm()
	return b, cmd
}

func (b Browser) browseKey(key string) (Browser, tea.Cmd) {
	rows := b.Rows()

	switch key {
	case "ctrl+c", "q":
		b.quitting = true
		return b, tea.Quit
	case "/":
		b.searching = true
		return b, b.input.Focus()
	case "esc":
		if b.Term() != "" {
			b.setTerm("")
		}
	case "up", "k":
		b.cursor = clamp(b.cursor-1, len(rows))
	case "down", "j":
		b.cursor = clamp(b.cursor+1, len(rows))
	case "e":
		b.exp.ExpandAll(b.tree)
	case "c":
		b.exp.CollapseAll()
		b.cursor = clamp(b.cursor, len(b.Rows()))
	case "enter", "space", " ", "right", "l":
		if len(rows) == 0 {
			return b, nil
		}
		row := rows[clamp(b.cursor, len(rows))]
		if row.Kind == search.ProcedureRow {
			doc := *row.Procedure
			b.selected = &doc
			b.quitting = true
			return b, tea.Quit
		}
		b.exp.Toggle(row.Folder.ID)
	case "left", "h":
		if len(rows) == 0 {
			return b, nil
		}
		row := rows[clamp(b.cursor, len(rows))]
		if row.Kind == search.FolderRow && row.Expanded {
			b.exp.Toggle(row.Folder.ID)
		}
	}
	return b, nil
}

// View renders the browser.
func (b Browser) View() tea.View {
	return tea.NewView(b.renderContent())
}

func (b Browser) renderContent() string {
	if b.quitting {
		return ""
	}

	var sb strings.Builder
	sb.WriteString(b.theme.titleStyle().Render("Procedures"))
	sb.WriteString("\n")

	switch {
	case b.searching:
		sb.WriteString(b.input.View())
	case b.Term() != "":
		sb.WriteString(fmt.Sprintf("Search: %s %s", b.Term(), b.theme.hintStyle().Render("(esc to clear)")))
	}
	sb.WriteString("\n\n")

	rows := b.Rows()
	if len(rows) == 0 {
		if b.Term() != "" {
			sb.WriteString(fmt.Sprintf("No procedures match %q.\n", b.Term()))
		} else {
			sb.WriteString("No folders found.\n")
		}
	}
	for i, r := range rows {
		sb.WriteString(b.renderRow(r, i == b.cursor))
		sb.WriteString("\n")
	}

	sb.WriteString("\n")
	sb.WriteString(b.theme.hintStyle().Render("↑/↓ move · enter open/toggle · / search · e expand all · c collapse all · q quit"))
	sb.WriteString("\n")
	return sb.String()
}

func (b Browser) renderRow(r search.Row, current bool) string {
	cursor := "  "
	if current {
		cursor = "> "
	}
	pad := strings.Repeat("  ", r.Depth)

	var line string
	switch r.Kind {
	case search.FolderRow:
		marker := "▸"
		if r.Expanded {
			marker = "▾"
		}
		n := search.CountProcedures([]models.FolderTree{*r.Folder})
		line = fmt.Sprintf("%s %s %s", marker, b.theme.folderStyle().Render(r.Label()),
			b.theme.hintStyle().Render(fmt.Sprintf("(%d)", n)))
	case search.ProcedureRow:
		line = "• " + r.Label()
	}
	if current {
		line = b.theme.currentStyle().Render(line)
	}
	return cursor + pad + line
}

// BrowseResult reports how the browser ended.
type BrowseResult struct {
	Procedure models.ProcedureNode
	Selected  bool
	Term      string
}

// Browse runs the folder browser until the user picks a procedure or quits.
func Browse(tree []models.FolderTree, exp *search.Expansion, term string, logger *slog.Logger) (BrowseResult, error) {
	p := tea.NewProgram(NewBrowser(tree, exp, term, logger))

	finalModel, err := p.Run()
	if err != nil {
		return BrowseResult{}, fmt.Errorf("browser error: %w", err)
	}

	if b, ok := finalModel.(Browser); ok {
		doc, selected := b.Selected()
		return BrowseResult{Procedure: doc, Selected: selected, Term: b.Term()}, nil
	}
	return BrowseResult{Term: term}, nil
}
