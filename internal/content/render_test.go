package content

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRender_Blocks(t *testing.T) {
	doc := Render(`<h2>Isolation</h2><p style="background-color: yellow">Close the valve.<br><br>Lock it out.</p>
		<ul><li>Gloves</li><li><span style="font-family: Wingdings;">ü</span> Goggles</li></ul>`)

	require.Len(t, doc.Blocks, 5)
	assert.Equal(t, Block{Kind: Heading, Text: "Isolation"}, doc.Blocks[0])
	assert.Equal(t, "Close the valve.", doc.Blocks[1].Text)
	assert.Equal(t, "Lock it out.", doc.Blocks[2].Text)
	assert.Equal(t, Block{Kind: ListItem, Marker: "•", Text: "Gloves"}, doc.Blocks[3])
	assert.Equal(t, Block{Kind: ListItem, Marker: "✓", Text: "✓ Goggles"}, doc.Blocks[4])
}

func TestRender_TableAndImages(t *testing.T) {
	doc := Render(`<table bgcolor="#fff"><tr><th>Tag</th><th>Setpoint</th></tr>
		<tr><td>PT-1</td><td>4 bar</td></tr></table>
		<p><img src="http://files/pump diagram.png" alt="Pump"></p>`)

	require.Len(t, doc.Images, 1)
	assert.Equal(t, "http://files/pump%20diagram.png", doc.Images[0].Src)
	assert.Equal(t, "Pump", doc.Images[0].Alt)

	var rows []string
	for _, b := range doc.Blocks {
		if b.Kind == TableRow {
			rows = append(rows, b.Text)
		}
	}
	assert.Equal(t, []string{"Tag | Setpoint", "PT-1 | 4 bar"}, rows)
}

func TestRender_Empty(t *testing.T) {
	assert.Empty(t, Render("").Blocks)
	assert.Empty(t, Render("   <p> </p> ").Blocks)
}

func TestDocumentText(t *testing.T) {
	doc := Render(`<p>First paragraph that is long enough to wrap</p><ul><li>a</li><li>b</li></ul>`)
	text := doc.Text(20)

	for _, line := range strings.Split(text, "\n") {
		assert.LessOrEqual(t, len([]rune(line)), 20, "line %q exceeds width", line)
	}
	assert.Contains(t, text, "• a\n• b")
	assert.Contains(t, text, "First paragraph")
}

func TestRender_NumericGlyphReferences(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"<p>&#x00D8; open valve</p>", "➡️ open valve"},
		{"<p>&#0216; open valve</p>", "➡️ open valve"},
		{"<p>&#0252; done</p>", "✓ done"},
		{"<p>&#xFC; done</p>", "✓ done"},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got := Render(tt.in).Text(80)
			assert.Equal(t, tt.want, got)
			assert.NotContains(t, got, "Ø")
			assert.NotContains(t, got, "ü")
		})
	}
}
