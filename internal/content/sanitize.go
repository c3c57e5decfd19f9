// Package content normalizes legacy rich-text procedure markup and renders it
// for the terminal.
package content

import (
	"regexp"
	"strings"
)

// Background styling left behind by authoring tools. Declarations are removed
// from inline styles; bgcolor attributes are dropped entirely.
var (
	bgDeclRe    = regexp.MustCompile(`(?i)background(?:-color)?\s*:\s*[^;'">]*;?`)
	bgcolorRe   = regexp.MustCompile(`(?i)\s*bgcolor\s*=\s*(?:"[^"]*"|'[^']*'|[^\s>]*)`)
	emptyStyle  = regexp.MustCompile(`(?i)\s*style\s*=\s*"[\s;]*"`)
	wingdingsRe = regexp.MustCompile(`(?i)<span\s+style="font-family:\s*Wingdings;?\s*">[^<]*ü[^<]*</span>`)
)

// Legacy glyph encodings. Entities are decoded to literal glyphs first so the
// literal mappings below catch both forms.
var entityReplacer = strings.NewReplacer(
	"&Oslash;", "Ø",
	"&uuml;", "ü",
	"&nbsp;", " ",
)

// numericRefRe matches every decimal and hex spelling of the code points the
// viewer treats specially, with any number of leading zeros.
var numericRefRe = regexp.MustCompile(`(?i)&#(?:x0*(d8|fc|a0)|0*(216|252|160));`)

var numericRefs = map[string]string{
	"d8": "Ø", "216": "Ø",
	"fc": "ü", "252": "ü",
	"a0": " ", "160": " ",
}

func decodeNumericRefs(s string) string {
	return numericRefRe.ReplaceAllStringFunc(s, func(ref string) string {
		m := numericRefRe.FindStringSubmatch(ref)
		code := strings.ToLower(m[1] + m[2])
		return numericRefs[code]
	})
}

var glyphReplacer = strings.NewReplacer(
	"ü", "✓",
	"Ø", "➡️",
)

var (
	doubleBreakRe = regexp.MustCompile(`(?i)<br\s*/?>\s*<br\s*/?>`)
	listClassRe   = regexp.MustCompile(`(?i)\s*class="MsoListParagraph[^"]*"`)
	indentStyleRe = regexp.MustCompile(`(?i)\s*style="[^"]*text-indent:[^"]*"`)
	marginStyleRe = regexp.MustCompile(`(?i)\s*style="[^"]*margin:[^"]*"`)
	symbolBullet  = regexp.MustCompile(`(?i)<span\s+style="font-family:\s*Symbol;?\s*"><span>·[^<]*</span></span>`)
	tinyFontSpan  = regexp.MustCompile(`(?i)<span\s+style="font:\s*9px[^>]*>[^<]*</span>`)
	whitespaceRe  = regexp.MustCompile(`[\s\x{00A0}]+`)
)

// Sanitize strips theme-breaking styling and legacy glyph encodings from
// procedure markup. It never fails; markup it does not recognize passes
// through unchanged.
//
// The pass is repeated until the output is stable, so removals that splice
// two fragments into a new match are caught. Markup nested deeper than
// maxPasses stops early.
func Sanitize(raw string) string {
	s := raw
	for range maxPasses {
		next := sanitizePass(s)
		if next == s {
			return s
		}
		s = next
	}
	return s
}

const maxPasses = 8

func sanitizePass(s string) string {
	// 1. backgrounds
	s = bgDeclRe.ReplaceAllString(s, "")
	s = bgcolorRe.ReplaceAllString(s, "")
	s = emptyStyle.ReplaceAllString(s, "")

	// 2. glyphs
	s = entityReplacer.Replace(s)
	s = decodeNumericRefs(s)
	s = wingdingsRe.ReplaceAllString(s, "✓")
	s = glyphReplacer.Replace(s)

	// 3. paragraph breaks
	s = doubleBreakRe.ReplaceAllString(s, "</p><p>")

	// 4. list paragraph markers and layout-fighting styles
	s = listClassRe.ReplaceAllString(s, "")
	s = indentStyleRe.ReplaceAllString(s, "")
	s = marginStyleRe.ReplaceAllString(s, "")

	// 5. bullets
	s = symbolBullet.ReplaceAllString(s, "•")
	s = tinyFontSpan.ReplaceAllString(s, "")

	// 6. whitespace
	s = whitespaceRe.ReplaceAllString(s, " ")
	return strings.TrimSpace(s)
}
