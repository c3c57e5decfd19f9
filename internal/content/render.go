package content

import (
	"net/url"
	"regexp"
	"strings"

	"github.com/muesli/reflow/wordwrap"
	"golang.org/x/net/html"
)

// BlockKind classifies a rendered block.
type BlockKind int

const (
	Paragraph BlockKind = iota
	Heading
	ListItem
	TableRow
)

// Block is one display block of rendered markup.
type Block struct {
	Kind   BlockKind
	Marker string // list marker, "•" or "✓"
	Text   string
}

// Image is an image referenced from markup.
type Image struct {
	Src string
	Alt string
}

// Document is markup rendered into terminal blocks.
type Document struct {
	Blocks []Block
	Images []Image
}

var tagRe = regexp.MustCompile(`<[^>]*>`)

// Render sanitizes markup and converts it into display blocks. Malformed
// markup degrades to tag-stripped text.
func Render(markup string) Document {
	clean := Sanitize(markup)
	if clean == "" {
		return Document{}
	}

	root, err := html.Parse(strings.NewReader(clean))
	if err != nil {
		text := strings.TrimSpace(html.UnescapeString(tagRe.ReplaceAllString(clean, " ")))
		text = whitespaceRe.ReplaceAllString(text, " ")
		if text == "" {
			return Document{}
		}
		return Document{Blocks: []Block{{Kind: Paragraph, Text: text}}}
	}

	r := &renderer{}
	if body := findBody(root); body != nil {
		r.walk(body)
	} else {
		r.walk(root)
	}
	r.flush(Paragraph, "")
	return r.doc
}

type renderer struct {
	doc Document
	buf strings.Builder
}

func (r *renderer) flush(kind BlockKind, marker string) {
	text := strings.TrimSpace(whitespaceRe.ReplaceAllString(r.buf.String(), " "))
	r.buf.Reset()
	if text == "" {
		return
	}
	r.doc.Blocks = append(r.doc.Blocks, Block{Kind: kind, Marker: marker, Text: text})
}

func (r *renderer) walk(n *html.Node) {
	switch n.Type {
	case html.TextNode:
		r.buf.WriteString(n.Data)
		return
	case html.ElementNode:
		switch n.Data {
		case "script", "style", "head":
			return
		case "br":
			r.buf.WriteString(" ")
			return
		case "img":
			r.image(n)
			return
		case "li":
			r.flush(Paragraph, "")
			r.children(n)
			marker := "•"
			if strings.Contains(r.buf.String(), "✓") {
				marker = "✓"
			}
			r.flush(ListItem, marker)
			return
		case "tr":
			r.flush(Paragraph, "")
			r.doc.Blocks = appendRow(r.doc.Blocks, n, r)
			return
		case "h1", "h2", "h3", "h4", "h5", "h6":
			r.flush(Paragraph, "")
			r.children(n)
			r.flush(Heading, "")
			return
		case "p", "div", "blockquote", "ul", "ol", "table":
			r.flush(Paragraph, "")
			r.children(n)
			r.flush(Paragraph, "")
			return
		}
	}
	r.children(n)
}

func (r *renderer) children(n *html.Node) {
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		r.walk(c)
	}
}

func (r *renderer) image(n *html.Node) {
	img := Image{Src: EncodeURL(attr(n, "src")), Alt: attr(n, "alt")}
	if img.Src == "" {
		return
	}
	r.doc.Images = append(r.doc.Images, img)
	label := img.Alt
	if label == "" {
		label = "image"
	}
	r.buf.WriteString(" [" + label + "] ")
}

// appendRow renders a table row as its cells joined by " | ".
func appendRow(blocks []Block, tr *html.Node, r *renderer) []Block {
	var cells []string
	for c := tr.FirstChild; c != nil; c = c.NextSibling {
		if c.Type != html.ElementNode || (c.Data != "td" && c.Data != "th") {
			continue
		}
		r.children(c)
		cell := strings.TrimSpace(whitespaceRe.ReplaceAllString(r.buf.String(), " "))
		r.buf.Reset()
		cells = append(cells, cell)
	}
	if len(cells) == 0 {
		return blocks
	}
	return append(blocks, Block{Kind: TableRow, Text: strings.Join(cells, " | ")})
}

func attr(n *html.Node, key string) string {
	for _, a := range n.Attr {
		if a.Key == key {
			return strings.TrimSpace(a.Val)
		}
	}
	return ""
}

// EncodeURL percent-encodes characters that are not valid in a URL, such as
// spaces in image file names.
func EncodeURL(src string) string {
	if src == "" {
		return ""
	}
	u, err := url.Parse(src)
	if err != nil {
		return strings.ReplaceAll(src, " ", "%20")
	}
	return u.String()
}

func findBody(n *html.Node) *html.Node {
	if n.Type == html.ElementNode && n.Data == "body" {
		return n
	}
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		if b := findBody(c); b != nil {
			return b
		}
	}
	return nil
}

// Text lays the document out as plain text wrapped to width. A width of zero
// or less disables wrapping.
func (d Document) Text(width int) string {
	var out []string
	for i, b := range d.Blocks {
		var line string
		switch b.Kind {
		case ListItem:
			line = indent(wrap(b.Text, width-2), b.Marker+" ", "  ")
		case Heading:
			line = strings.ToUpper(wrap(b.Text, width))
		default:
			line = wrap(b.Text, width)
		}
		if i > 0 && needsGap(d.Blocks[i-1].Kind, b.Kind) {
			out = append(out, "")
		}
		out = append(out, line)
	}
	return strings.Join(out, "\n")
}

// needsGap keeps consecutive list items and table rows together.
func needsGap(prev, cur BlockKind) bool {
	if prev == cur && (cur == ListItem || cur == TableRow) {
		return false
	}
	return true
}

func wrap(s string, width int) string {
	if width <= 0 {
		return s
	}
	return wordwrap.String(s, width)
}

func indent(s, first, rest string) string {
	lines := strings.Split(s, "\n")
	for i := range lines {
		if i == 0 {
			lines[i] = first + lines[i]
		} else {
			lines[i] = rest + lines[i]
		}
	}
	return strings.Join(lines, "\n")
}
