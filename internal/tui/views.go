package tui

import (
	"fmt"
	"strings"

	"github.com/raphaelgruber/procview/internal/content"
	"github.com/raphaelgruber/procview/internal/procedure"
)

func (m Model) contentWidth() int {
	w := m.width - 4
	if w < 20 {
		w = 20
	}
	return w
}

func (m Model) renderLoading() string {
	title := m.theme.titleStyle().Render(m.doc.Name)
	return fmt.Sprintf("%s\n\n%s\n", title, m.theme.hintStyle().Render("Loading procedure..."))
}

func (m Model) renderHeader() string {
	var tabs []string
	for t := Tab(0); t < tabCount; t++ {
		label := fmt.Sprintf("%d %s", t+1, t)
		if t == m.tab {
			tabs = append(tabs, m.theme.activeTabStyle().Render(label))
		} else {
			tabs = append(tabs, m.theme.tabStyle().Render(label))
		}
	}
	return m.theme.titleStyle().Render(m.doc.Name) + "\n" + strings.Join(tabs, "  ")
}

func (m Model) renderFooter() string {
	var hint string
	switch m.tab {
	case TabProcedure:
		hint = "←/→ page  ↑/↓ answer  enter choose  esc contents"
	case TabContents, TabMap:
		hint = "↑/↓ move  enter open"
	case TabSchematics:
		hint = "↑/↓ select image"
	default:
		hint = ""
	}
	if m.feedbackEnabled {
		hint = strings.TrimSpace(hint + "  f feedback")
	}
	return m.theme.hintStyle().Render(strings.TrimSpace(hint + "  tab switch  q quit"))
}

func (m Model) kindStyle(it procedure.Item, s string) string {
	switch it.Kind {
	case procedure.Decision:
		return m.theme.decisionStyle().Render(s)
	case procedure.End:
		return m.theme.endStyle().Render(s)
	default:
		return s
	}
}

// renderPager shows the current item with its page counter and answers.
func (m Model) renderPager() string {
	pos := m.ctrl.Position()
	it := m.current()
	count := m.ctrl.Count()

	var b strings.Builder
	title := fmt.Sprintf("%s  %s", strings.ToUpper(it.Kind.String()), it.Title)
	b.WriteString(m.kindStyle(it, title))
	b.WriteString("\n\n")

	if text := content.Render(it.Info).Text(m.contentWidth()); text != "" {
		b.WriteString(text)
		b.WriteString("\n")
	}

	if it.Kind == procedure.Decision {
		b.WriteString("\n")
		if !it.HasAnswers() {
			b.WriteString(m.theme.hintStyle().Render("No answers defined"))
			b.WriteString("\n")
		}
		for i, a := range it.Answers {
			line := "  " + a.Text
			if i == m.view.answerCursor {
				line = m.theme.currentStyle().Render("> " + a.Text)
			}
			if _, ok := procedure.Resolve(a, m.items); !ok {
				line += " " + m.theme.warningStyle().Render("(unavailable)")
			}
			b.WriteString(line)
			b.WriteString("\n")
		}
	}

	prev := "◀ prev"
	if !m.ctrl.CanPrevious() {
		prev = m.theme.disabledStyle().Render(prev)
	}
	next := "next ▶"
	if !m.ctrl.CanNext() {
		next = m.theme.disabledStyle().Render(next)
	}
	pct := 0.0
	if count > 0 {
		pct = float64(pos+1) / float64(count)
	}
	fmt.Fprintf(&b, "\n%s  %s  %d / %d  %s", prev, m.progress.ViewAs(pct), pos+1, count, next)
	return b.String()
}

// renderContents lists every item; the cursor follows the shared position.
func (m Model) renderContents() string {
	pos := m.ctrl.Position()
	var b strings.Builder
	for i, it := range m.items {
		marker := "  "
		if i == m.view.contentsCursor {
			marker = "> "
		}
		line := fmt.Sprintf("%s%2d. %s", marker, i+1, it.Title)
		switch {
		case i == pos:
			line = m.theme.currentStyle().Render(line)
		default:
			line = m.kindStyle(it, line)
		}
		b.WriteString(line)
		b.WriteString("\n")
	}
	return strings.TrimRight(b.String(), "\n")
}

// renderMap draws each item as a node followed by its outgoing edges.
func (m Model) renderMap() string {
	pos := m.ctrl.Position()
	var b strings.Builder
	for i, it := range m.items {
		marker := "  "
		if i == m.view.mapCursor {
			marker = "> "
		}
		node := fmt.Sprintf("%s[%d] %s", marker, i+1, it.Title)
		if i == pos {
			node = m.theme.currentStyle().Render(node + "  ●")
		} else {
			node = m.kindStyle(it, node)
		}
		b.WriteString(node)
		b.WriteString("\n")

		for _, e := range procedure.Outgoing(m.edges, i) {
			switch {
			case e.Dangling():
				b.WriteString(m.theme.warningStyle().Render(fmt.Sprintf("      └─ %s → ?", e.Label)))
			case e.Kind == procedure.Branch:
				b.WriteString(fmt.Sprintf("      └─ %s → [%d]", e.Label, e.To+1))
			default:
				b.WriteString(m.theme.hintStyle().Render(fmt.Sprintf("      │  → [%d]", e.To+1)))
			}
			b.WriteString("\n")
		}
	}
	return strings.TrimRight(b.String(), "\n")
}

func (m Model) renderSchematics() string {
	if len(m.doc.Images) == 0 {
		return m.theme.hintStyle().Render("No schematics attached")
	}
	var b strings.Builder
	for i, img := range m.doc.Images {
		name := img.Name
		if name == "" {
			name = fmt.Sprintf("Image %d", i+1)
		}
		if i == m.imageCursor {
			b.WriteString(m.theme.currentStyle().Render("> " + name))
		} else {
			b.WriteString("  " + name)
		}
		b.WriteString("\n")
	}
	sel := m.doc.Images[clamp(m.imageCursor, len(m.doc.Images))]
	b.WriteString("\n")
	b.WriteString(m.theme.hintStyle().Render(content.EncodeURL(sel.Src)))
	return b.String()
}

func (m Model) renderInfo() string {
	return m.theme.boxStyle().Width(m.contentWidth()).Render(InfoText(m.doc, m.contentWidth()-4))
}
