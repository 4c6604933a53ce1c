package tables

import (
	"math"
	"sort"
	"strings"

	"github.com/pdftriage/pdftriage/pkg/pdf"
)

// Region is one table candidate found on a single page. Grid holds
// cell text row-major; ColumnBoundaries are the x positions of the
// column separators (len(Grid[row])+1 entries for ruled tables).
// LeadingText and TrailingText record whether body text sits above or
// below the region on its page, which the merger uses to reject
// continuations interrupted by prose.
type Region struct {
	PageIndex        int
	BBox             pdf.BoundingBox
	Grid             [][]string
	ColumnBoundaries []float64
	PageWidth        float64
	PageHeight       float64
	LeadingText      bool
	TrailingText     bool
}

// Columns returns the number of columns in the region grid.
func (r Region) Columns() int {
	if len(r.Grid) == 0 {
		return 0
	}
	return len(r.Grid[0])
}

// Config holds the table detection knobs. Zero values are replaced
// with defaults by NewExtractor.
type Config struct {
	// MinRows is the smallest row count accepted as a table.
	MinRows int
	// SnapTolerance is the slack when snapping ruling positions.
	SnapTolerance float64
	// TextTolerance is the vertical slack when grouping text lines.
	TextTolerance float64
	// LatticeGap separates independent ruling clusters on one page.
	LatticeGap float64
	// HeaderZone and FooterZone bound the page-furniture bands as
	// fractions of page height. Glyphs inside the bands (running
	// headers, page numbers) are not counted as text surrounding a
	// region.
	HeaderZone float64
	FooterZone float64
}

func (c *Config) defaults() {
	if c.MinRows == 0 {
		c.MinRows = 2
	}
	if c.SnapTolerance == 0 {
		c.SnapTolerance = 3.0
	}
	if c.TextTolerance == 0 {
		c.TextTolerance = 3.0
	}
	if c.LatticeGap == 0 {
		c.LatticeGap = 30.0
	}
	if c.HeaderZone == 0 {
		c.HeaderZone = 0.08
	}
	if c.FooterZone == 0 {
		c.FooterZone = 0.92
	}
}

// Extractor finds table regions on individual pages. Ruled tables are
// detected from the stroke lattice; when a page has no usable rulings
// the extractor falls back to word-alignment detection.
type Extractor struct {
	cfg Config
}

// NewExtractor returns an extractor with cfg, filling in defaults for
// zero-valued knobs.
func NewExtractor(cfg Config) *Extractor {
	cfg.defaults()
	return &Extractor{cfg: cfg}
}

// ExtractPage returns all table regions on page, top to bottom.
// pageIndex is the 0-based position of the page in its document.
func (e *Extractor) ExtractPage(page pdf.Page, pageIndex int) []Region {
	objects := page.GetObjects()

	regions := e.ruledRegions(objects, page)
	if len(regions) == 0 {
		regions = e.alignedRegions(page)
	}

	for i := range regions {
		regions[i].PageIndex = pageIndex
		regions[i].PageWidth = page.GetWidth()
		regions[i].PageHeight = page.GetHeight()
		e.markSurroundingText(&regions[i], objects.Chars)
	}

	sort.Slice(regions, func(i, j int) bool {
		return regions[i].BBox.Y0 < regions[j].BBox.Y0
	})

	return regions
}

// ruledRegions detects tables from the ruling lattice: clusters of
// horizontal and vertical rulings whose crossings define a cell grid.
func (e *Extractor) ruledRegions(objects pdf.Objects, page pdf.Page) []Region {
	hLines, vLines := collectRulings(objects, e.cfg.SnapTolerance)
	if len(hLines) < 2 || len(vLines) < 2 {
		return nil
	}

	var regions []Region
	for _, hGroup := range groupByGap(hLines, true, e.cfg.LatticeGap) {
		if len(hGroup) < 2 {
			continue
		}
		vGroup := spanningRulings(vLines, hGroup)
		if len(vGroup) < 2 {
			continue
		}
		region, ok := e.latticeRegion(hGroup, vGroup, objects.Chars)
		if ok && len(region.Grid) >= e.cfg.MinRows && region.Columns() >= 2 {
			regions = append(regions, region)
		}
	}

	return regions
}

// latticeRegion builds a cell grid from one ruling cluster and fills
// each cell with the text whose glyph centers fall inside it.
func (e *Extractor) latticeRegion(hGroup, vGroup []pdf.LineObject, chars []pdf.CharObject) (Region, bool) {
	rowEdges := uniquePositions(hGroup, true, e.cfg.SnapTolerance)
	colEdges := uniquePositions(vGroup, false, e.cfg.SnapTolerance)
	if len(rowEdges) < 2 || len(colEdges) < 2 {
		return Region{}, false
	}

	grid := make([][]string, len(rowEdges)-1)
	for i := range grid {
		grid[i] = make([]string, len(colEdges)-1)
		for j := range grid[i] {
			cell := pdf.BoundingBox{
				X0: colEdges[j], Y0: rowEdges[i],
				X1: colEdges[j+1], Y1: rowEdges[i+1],
			}
			grid[i][j] = e.cellText(cell, chars)
		}
	}

	region := Region{
		BBox: pdf.BoundingBox{
			X0: colEdges[0], Y0: rowEdges[0],
			X1: colEdges[len(colEdges)-1], Y1: rowEdges[len(rowEdges)-1],
		},
		Grid:             grid,
		ColumnBoundaries: colEdges,
	}
	if region.isEmpty() {
		return Region{}, false
	}
	return region, true
}

// isEmpty reports whether every cell of the grid is blank. A lattice
// with no text is decoration (forms, charts), not a table.
func (r Region) isEmpty() bool {
	for _, row := range r.Grid {
		for _, cell := range row {
			if strings.TrimSpace(cell) != "" {
				return false
			}
		}
	}
	return true
}

// cellText assembles the text of one cell from the glyphs whose
// centers fall inside it, reading top to bottom then left to right.
func (e *Extractor) cellText(cell pdf.BoundingBox, chars []pdf.CharObject) string {
	var cellChars []pdf.CharObject
	for _, char := range chars {
		cx := (char.X0 + char.X1) / 2
		cy := (char.Y0 + char.Y1) / 2
		if cx >= cell.X0 && cx <= cell.X1 && cy >= cell.Y0 && cy <= cell.Y1 {
			cellChars = append(cellChars, char)
		}
	}

	sort.Slice(cellChars, func(i, j int) bool {
		if math.Abs(cellChars[i].Y0-cellChars[j].Y0) > e.cfg.TextTolerance {
			return cellChars[i].Y0 < cellChars[j].Y0
		}
		return cellChars[i].X0 < cellChars[j].X0
	})

	var b strings.Builder
	lastY, lastX := -1000.0, -1000.0
	for _, char := range cellChars {
		if lastY > -1000 && math.Abs(char.Y0-lastY) > e.cfg.TextTolerance {
			b.WriteByte('\n')
			lastX = -1000.0
		} else if lastX > -1000 && char.X0-lastX > e.cfg.TextTolerance {
			b.WriteByte(' ')
		}
		b.WriteString(char.Text)
		lastY = char.Y0
		lastX = char.X1
	}
	return b.String()
}

// wordRow is one visual line of words during alignment detection.
type wordRow struct {
	Words []pdf.Word
	BBox  pdf.BoundingBox
	Y     float64
}

// alignedRegions detects borderless tables from repeated word-start
// alignment across consecutive lines.
func (e *Extractor) alignedRegions(page pdf.Page) []Region {
	words := page.ExtractWords()
	if len(words) == 0 {
		return nil
	}

	rows := e.groupWordRows(words)
	columns := e.alignedColumns(rows)
	if len(columns) < 2 || len(rows) < e.cfg.MinRows {
		return nil
	}

	grid := make([][]string, len(rows))
	bbox := rows[0].BBox
	for i, row := range rows {
		grid[i] = make([]string, len(columns))
		for _, word := range row.Words {
			col := e.nearestColumn(word.X0, columns)
			if col < 0 {
				continue
			}
			if grid[i][col] != "" {
				grid[i][col] += " "
			}
			grid[i][col] += word.Text
		}
		bbox.X0 = min(bbox.X0, row.BBox.X0)
		bbox.Y0 = min(bbox.Y0, row.BBox.Y0)
		bbox.X1 = max(bbox.X1, row.BBox.X1)
		bbox.Y1 = max(bbox.Y1, row.BBox.Y1)
	}

	return []Region{{
		BBox:             bbox,
		Grid:             grid,
		ColumnBoundaries: columns,
	}}
}

// groupWordRows buckets words into visual lines by Y proximity.
func (e *Extractor) groupWordRows(words []pdf.Word) []wordRow {
	sorted := make([]pdf.Word, len(words))
	copy(sorted, words)
	sort.Slice(sorted, func(i, j int) bool {
		return sorted[i].Y0 < sorted[j].Y0
	})

	var rows []wordRow
	current := wordRow{Words: []pdf.Word{sorted[0]}, Y: sorted[0].Y0}

	for _, word := range sorted[1:] {
		if math.Abs(word.Y0-current.Y) < e.cfg.TextTolerance {
			current.Words = append(current.Words, word)
		} else {
			rows = append(rows, finalizeWordRow(current))
			current = wordRow{Words: []pdf.Word{word}, Y: word.Y0}
		}
	}
	return append(rows, finalizeWordRow(current))
}

func finalizeWordRow(row wordRow) wordRow {
	sort.Slice(row.Words, func(i, j int) bool {
		return row.Words[i].X0 < row.Words[j].X0
	})
	row.BBox = pdf.BoundingBox{
		X0: row.Words[0].X0,
		Y0: row.Words[0].Y0,
		X1: row.Words[len(row.Words)-1].X1,
		Y1: row.Words[0].Y1,
	}
	for _, word := range row.Words {
		row.BBox.Y0 = min(row.BBox.Y0, word.Y0)
		row.BBox.Y1 = max(row.BBox.Y1, word.Y1)
	}
	return row
}

// alignedColumns returns word-start x positions shared by enough
// lines to qualify as columns: at least 2 lines and 30% of all lines.
func (e *Extractor) alignedColumns(rows []wordRow) []float64 {
	if len(rows) < 2 {
		return nil
	}

	starts := make(map[float64]int)
	for _, row := range rows {
		for _, word := range row.Words {
			x := math.Round(word.X0/e.cfg.SnapTolerance) * e.cfg.SnapTolerance
			starts[x]++
		}
	}

	minCount := max(2, len(rows)*3/10)
	var columns []float64
	for x, count := range starts {
		if count >= minCount {
			columns = append(columns, x)
		}
	}
	sort.Float64s(columns)
	return columns
}

// nearestColumn returns the index of the column closest to x, or -1
// when none is within reach.
func (e *Extractor) nearestColumn(x float64, columns []float64) int {
	best, bestDist := -1, math.MaxFloat64
	for i, col := range columns {
		if dist := math.Abs(x - col); dist < bestDist && dist < e.cfg.SnapTolerance*3 {
			best, bestDist = i, dist
		}
	}
	return best
}

// markSurroundingText flags whether prose sits above or below the
// region on its page. Glyphs within the region bbox do not count,
// and neither does page furniture in the header and footer bands:
// running headers and page numbers sit on nearly every paginated
// page and must not veto continuation merging.
func (e *Extractor) markSurroundingText(region *Region, chars []pdf.CharObject) {
	headerLimit := e.cfg.HeaderZone * region.PageHeight
	footerLimit := e.cfg.FooterZone * region.PageHeight
	for _, char := range chars {
		if strings.TrimSpace(char.Text) == "" {
			continue
		}
		cy := (char.Y0 + char.Y1) / 2
		cx := (char.X0 + char.X1) / 2
		if cy < headerLimit || cy > footerLimit {
			continue
		}
		if cx >= region.BBox.X0 && cx <= region.BBox.X1 &&
			cy >= region.BBox.Y0 && cy <= region.BBox.Y1 {
			continue
		}
		if cy < region.BBox.Y0 {
			region.LeadingText = true
		} else if cy > region.BBox.Y1 {
			region.TrailingText = true
		}
	}
}
