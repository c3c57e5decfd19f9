package tui

import (
	"fmt"
	"io"
	"log/slog"
	"strings"
	"time"

	"github.com/raphaelgruber/procview/internal/content"
	"github.com/raphaelgruber/procview/internal/models"
	"github.com/raphaelgruber/procview/internal/procedure"
)

// InfoText describes the procedure: author, dates, version, safety note and
// barcode location.
func InfoText(doc models.ProcedureNode, width int) string {
	var b strings.Builder
	field := func(label, value string) {
		if value == "" {
			value = "-"
		}
		fmt.Fprintf(&b, "%-10s %s\n", label+":", value)
	}

	field("Name", doc.Name)
	field("Author", doc.Author)
	field("Created", formatDate(doc.CreatedAt, doc.Created()))
	field("Updated", formatDate(doc.UpdatedAt, doc.Updated()))
	field("Version", fmt.Sprintf("%d", doc.Version))
	field("Barcode", doc.URL)
	if doc.Folder != nil {
		field("Folder", doc.Folder.Label())
	}

	if note := doc.SafetyNote; note.Title != "" || note.Info != "" {
		b.WriteString("\n")
		title := note.Title
		if title == "" {
			title = "Safety note"
		}
		b.WriteString("⚠ " + title + "\n")
		if text := content.Render(note.Info).Text(width); text != "" {
			b.WriteString(text + "\n")
		}
	}
	return strings.TrimRight(b.String(), "\n")
}

// WritePlain prints the whole procedure as text, for pipes and --plain.
func WritePlain(w io.Writer, doc models.ProcedureNode, width int, logger *slog.Logger) error {
	items := procedure.BuildItems(doc, logger)

	var b strings.Builder
	b.WriteString(doc.Name + "\n")
	b.WriteString(strings.Repeat("=", max(len([]rune(doc.Name)), 3)) + "\n\n")
	b.WriteString(InfoText(doc, width) + "\n")

	for i, it := range items {
		fmt.Fprintf(&b, "\n[%d/%d] %s: %s\n", i+1, len(items), strings.ToUpper(it.Kind.String()), it.Title)
		if text := content.Render(it.Info).Text(width); text != "" {
			b.WriteString(text + "\n")
		}
		for _, a := range it.Answers {
			target := "?"
			if idx, ok := procedure.Resolve(a, items); ok {
				target = fmt.Sprintf("%d", idx+1)
			}
			fmt.Fprintf(&b, "  - %s -> %s\n", a.Text, target)
		}
	}

	if len(doc.Images) > 0 {
		b.WriteString("\nSchematics\n")
		for _, img := range doc.Images {
			fmt.Fprintf(&b, "  - %s: %s\n", img.Name, content.EncodeURL(img.Src))
		}
	}

	_, err := io.WriteString(w, b.String())
	return err
}

func formatDate(raw string, t time.Time) string {
	if raw == "" {
		return ""
	}
	if t.IsZero() {
		return raw
	}
	return t.Format("2006-01-02 15:04")
}
