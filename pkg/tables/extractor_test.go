package tables

import (
	"testing"

	"github.com/pdftriage/pdftriage/pkg/pdf"
)

// ruledPage builds a page with a bordered grid whose row separators
// sit at rowEdges and column separators at colEdges, and with the
// given cell contents written into the grid.
func ruledPage(number int, rowEdges, colEdges []float64, cells [][]string) *pdf.StaticPage {
	page := &pdf.StaticPage{PageNumber: number, PageWidth: 612, PageHeight: 792}

	for _, y := range rowEdges {
		page.Content.Lines = append(page.Content.Lines, pdf.LineObject{
			X0: colEdges[0], Y0: y, X1: colEdges[len(colEdges)-1], Y1: y, Width: 0.5,
		})
	}
	for _, x := range colEdges {
		page.Content.Lines = append(page.Content.Lines, pdf.LineObject{
			X0: x, Y0: rowEdges[0], X1: x, Y1: rowEdges[len(rowEdges)-1], Width: 0.5,
		})
	}

	for i, row := range cells {
		for j, text := range row {
			placeText(page, text, colEdges[j]+4, rowEdges[i]+4)
		}
	}
	return page
}

// placeText writes text as individual glyphs starting at (x, y).
func placeText(page *pdf.StaticPage, text string, x, y float64) {
	for _, r := range text {
		page.Content.Chars = append(page.Content.Chars, pdf.CharObject{
			Text: string(r), FontSize: 10,
			X0: x, Y0: y, X1: x + 5, Y1: y + 10,
			Width: 5, Height: 10,
		})
		x += 5
	}
}

func TestExtractRuledTable(t *testing.T) {
	cells := [][]string{
		{"Name", "Qty"},
		{"Bolt", "12"},
		{"Nut", "30"},
	}
	page := ruledPage(1, []float64{100, 120, 140, 160}, []float64{100, 200, 300}, cells)

	e := NewExtractor(Config{})
	regions := e.ExtractPage(page, 0)
	if len(regions) != 1 {
		t.Fatalf("ExtractPage() found %d regions, want 1", len(regions))
	}

	region := regions[0]
	if got := len(region.Grid); got != 3 {
		t.Fatalf("rows = %d, want 3", got)
	}
	if got := region.Columns(); got != 2 {
		t.Fatalf("columns = %d, want 2", got)
	}
	for i, row := range cells {
		for j, want := range row {
			if region.Grid[i][j] != want {
				t.Errorf("cell [%d][%d] = %q, want %q", i, j, region.Grid[i][j], want)
			}
		}
	}
	if len(region.ColumnBoundaries) != 3 {
		t.Errorf("len(ColumnBoundaries) = %d, want 3", len(region.ColumnBoundaries))
	}
}

func TestExtractIgnoresEmptyLattice(t *testing.T) {
	// A grid with no text at all is decoration, not a table.
	page := ruledPage(1, []float64{100, 120, 140}, []float64{100, 200, 300}, nil)

	e := NewExtractor(Config{})
	if regions := e.ExtractPage(page, 0); len(regions) != 0 {
		t.Errorf("ExtractPage() found %d regions, want 0", len(regions))
	}
}

func TestExtractAlignedTable(t *testing.T) {
	// No rulings: three lines of words starting at the same x
	// positions should be detected as a two-column table.
	page := &pdf.StaticPage{PageNumber: 1, PageWidth: 612, PageHeight: 792}
	rows := [][2]string{{"alpha", "one"}, {"beta", "two"}, {"gamma", "three"}}
	y := 100.0
	for _, row := range rows {
		placeText(page, row[0], 72, y)
		placeText(page, row[1], 300, y)
		y += 20
	}

	e := NewExtractor(Config{})
	regions := e.ExtractPage(page, 0)
	if len(regions) != 1 {
		t.Fatalf("ExtractPage() found %d regions, want 1", len(regions))
	}
	region := regions[0]
	if got := len(region.Grid); got != 3 {
		t.Fatalf("rows = %d, want 3", got)
	}
	if got := region.Columns(); got != 2 {
		t.Fatalf("columns = %d, want 2", got)
	}
	if region.Grid[0][0] != "alpha" || region.Grid[0][1] != "one" {
		t.Errorf("first row = %v, want [alpha one]", region.Grid[0])
	}
}

func TestSurroundingTextFlags(t *testing.T) {
	cells := [][]string{{"A", "B"}, {"C", "D"}}
	page := ruledPage(1, []float64{300, 320, 340}, []float64{100, 200, 300}, cells)
	placeText(page, "Chapter heading", 72, 100)
	placeText(page, "Closing remark", 72, 700)

	e := NewExtractor(Config{})
	regions := e.ExtractPage(page, 0)
	if len(regions) != 1 {
		t.Fatalf("ExtractPage() found %d regions, want 1", len(regions))
	}
	if !regions[0].LeadingText {
		t.Error("LeadingText = false, want true")
	}
	if !regions[0].TrailingText {
		t.Error("TrailingText = false, want true")
	}
}

func TestSurroundingTextIgnoresFurniture(t *testing.T) {
	// Running headers and page-number footers sit in the header and
	// footer bands on nearly every paginated page; they are not prose
	// around the table and must not set the flags.
	cells := [][]string{{"A", "B"}, {"C", "D"}}
	page := ruledPage(2, []float64{300, 320, 340}, []float64{100, 200, 300}, cells)
	placeText(page, "ACME Components Catalog", 180, 20)
	placeText(page, "Page 2 of 9", 270, 770)

	e := NewExtractor(Config{})
	regions := e.ExtractPage(page, 1)
	if len(regions) != 1 {
		t.Fatalf("ExtractPage() found %d regions, want 1", len(regions))
	}
	if regions[0].LeadingText {
		t.Error("LeadingText = true, want false for a running header")
	}
	if regions[0].TrailingText {
		t.Error("TrailingText = true, want false for a page-number footer")
	}
}

func TestConsolidateRulings(t *testing.T) {
	// Two abutting segments on one Y level merge into one ruling.
	lines := []pdf.LineObject{
		{X0: 100, Y0: 50, X1: 200, Y1: 50, Width: 0.5},
		{X0: 200, Y0: 50, X1: 300, Y1: 50, Width: 1.0},
		{X0: 100, Y0: 80, X1: 300, Y1: 80, Width: 0.5},
	}

	got := consolidateRulings(lines, true)
	if len(got) != 2 {
		t.Fatalf("consolidateRulings() = %d lines, want 2", len(got))
	}
	if got[0].X0 != 100 || got[0].X1 != 300 {
		t.Errorf("merged span = [%v, %v], want [100, 300]", got[0].X0, got[0].X1)
	}
	if got[0].Width != 1.0 {
		t.Errorf("merged width = %v, want 1.0", got[0].Width)
	}
}
