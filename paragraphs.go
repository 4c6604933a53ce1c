package pdftriage

import (
	"sort"
	"strings"

	"github.com/pdftriage/pdftriage/pkg/pdf"
)

// countParagraphs counts body-text paragraphs on a page. Words are
// grouped into lines, lines whose vertical gap exceeds 1.5 line
// heights start a new paragraph, and anything inside the header or
// footer band is dropped. Paragraphs shorter than minLen characters
// do not count, which filters page numbers and stray labels.
func countParagraphs(page pdf.Page, headerZone, footerZone float64, minLen int) int {
	height := page.GetHeight()
	top := headerZone * height
	bottom := footerZone * height

	// Keep only body words, then sort top to bottom.
	var body []pdf.Word
	for _, word := range page.ExtractWords() {
		center := (word.Y0 + word.Y1) / 2
		if center >= top && center <= bottom {
			body = append(body, word)
		}
	}
	if len(body) == 0 {
		return 0
	}
	sort.Slice(body, func(i, j int) bool {
		return body[i].Y0 < body[j].Y0
	})

	type line struct {
		y0, y1 float64
		length int
	}

	var lines []line
	current := line{y0: body[0].Y0, y1: body[0].Y1}
	for _, word := range body {
		if word.Y0-current.y0 > 3.0 {
			lines = append(lines, current)
			current = line{y0: word.Y0, y1: word.Y1}
		}
		current.length += len(strings.TrimSpace(word.Text))
		current.y1 = max(current.y1, word.Y1)
	}
	lines = append(lines, current)

	paragraphs := 0
	runLength := 0
	var prev line
	for i, l := range lines {
		lineHeight := max(l.y1-l.y0, 1.0)
		if i > 0 && l.y0-prev.y1 > 1.5*lineHeight {
			if runLength >= minLen {
				paragraphs++
			}
			runLength = 0
		}
		runLength += l.length
		prev = l
	}
	if runLength >= minLen {
		paragraphs++
	}

	return paragraphs
}

// Math notation is detected from fonts first: the TeX math faces and
// the Symbol face mark a formula page regardless of which glyphs are
// visible. Pages set in ordinary faces fall back to a scan for
// characteristic symbols.
var (
	mathFonts   = []string{"math", "cmsy", "cmmi", "symbol"}
	mathSymbols = "∑∫√≠≈∞∂π"
)

// hasMathNotation reports whether the page carries mathematical
// notation.
func hasMathNotation(page pdf.Page) bool {
	for _, char := range page.GetObjects().Chars {
		if char.Font == "" {
			continue
		}
		font := strings.ToLower(char.Font)
		for _, mf := range mathFonts {
			if strings.Contains(font, mf) {
				return true
			}
		}
	}
	return strings.ContainsAny(page.ExtractText(), mathSymbols)
}
