package tables

import (
	"math"
	"strings"
)

// Table is a logical table after cross-page stitching. Grid holds the
// merged rows; Regions keeps the per-page fragments in order, so
// callers can still report page placement.
type Table struct {
	StartPage int
	EndPage   int
	Grid      [][]string
	Regions   []Region
}

// Rows returns the merged row count.
func (t Table) Rows() int { return len(t.Grid) }

// Columns returns the column count of the merged grid.
func (t Table) Columns() int {
	if len(t.Grid) == 0 {
		return 0
	}
	return len(t.Grid[0])
}

// MergeConfig holds the continuation thresholds. Zero values are
// replaced with defaults by NewMerger.
type MergeConfig struct {
	// ColumnTolerance is the allowed column boundary drift between
	// fragments, as a fraction of page width.
	ColumnTolerance float64
	// EdgeMargin is the page-edge band, as a fraction of page height,
	// a fragment must touch to qualify for continuation.
	EdgeMargin float64
}

func (c *MergeConfig) defaults() {
	if c.ColumnTolerance == 0 {
		c.ColumnTolerance = 0.02
	}
	if c.EdgeMargin == 0 {
		c.EdgeMargin = 0.20
	}
}

// Merger stitches per-page table regions into logical tables. A
// fragment continues the previous one only when every continuation
// check passes; any doubt leaves the fragments separate.
type Merger struct {
	cfg MergeConfig
}

// NewMerger returns a merger with cfg, filling in defaults for
// zero-valued thresholds.
func NewMerger(cfg MergeConfig) *Merger {
	cfg.defaults()
	return &Merger{cfg: cfg}
}

// Merge stitches regions, which must be ordered by page then by
// vertical position, into logical tables. A chain merges region by
// region, so a table spanning many pages accumulates one fragment per
// page as long as each consecutive pair passes the continuation
// checks.
func (m *Merger) Merge(regions []Region) []Table {
	var tables []Table

	for _, region := range regions {
		if len(tables) > 0 {
			last := &tables[len(tables)-1]
			tail := last.Regions[len(last.Regions)-1]
			if m.continues(tail, region) {
				appendContinuation(last, region)
				continue
			}
		}
		tables = append(tables, Table{
			StartPage: region.PageIndex,
			EndPage:   region.PageIndex,
			Grid:      cloneGrid(region.Grid),
			Regions:   []Region{region},
		})
	}

	return tables
}

// continues reports whether next is a continuation of prev on the
// following page. All checks must pass:
//
//   - next starts exactly one page after prev
//   - both grids have the same column count
//   - column boundaries line up within the tolerance
//   - prev reaches into the bottom margin of its page
//   - next starts within the top margin of its page
//   - no prose sits between the two fragments
func (m *Merger) continues(prev, next Region) bool {
	if next.PageIndex != prev.PageIndex+1 {
		return false
	}
	if prev.Columns() == 0 || prev.Columns() != next.Columns() {
		return false
	}
	if !m.boundariesAligned(prev, next) {
		return false
	}
	if prev.PageHeight <= 0 || next.PageHeight <= 0 {
		return false
	}
	if prev.BBox.Y1 < (1-m.cfg.EdgeMargin)*prev.PageHeight {
		return false
	}
	if next.BBox.Y0 > m.cfg.EdgeMargin*next.PageHeight {
		return false
	}
	if prev.TrailingText || next.LeadingText {
		return false
	}
	return true
}

// boundariesAligned compares column boundaries pairwise within the
// configured fraction of page width.
func (m *Merger) boundariesAligned(prev, next Region) bool {
	if len(prev.ColumnBoundaries) != len(next.ColumnBoundaries) {
		return false
	}
	width := prev.PageWidth
	if width <= 0 {
		width = next.PageWidth
	}
	if width <= 0 {
		return false
	}
	slack := m.cfg.ColumnTolerance * width
	for i := range prev.ColumnBoundaries {
		if math.Abs(prev.ColumnBoundaries[i]-next.ColumnBoundaries[i]) > slack {
			return false
		}
	}
	return true
}

// appendContinuation splices region's rows onto table, dropping the
// first row when it repeats the table's header.
func appendContinuation(table *Table, region Region) {
	rows := region.Grid
	if len(rows) > 0 && len(table.Grid) > 0 && rowsEqualFold(table.Grid[0], rows[0]) {
		rows = rows[1:]
	}
	table.Grid = append(table.Grid, cloneGrid(rows)...)
	table.Regions = append(table.Regions, region)
	table.EndPage = region.PageIndex
}

// rowsEqualFold compares two rows cell by cell, ignoring case and
// surrounding whitespace.
func rowsEqualFold(a, b []string) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if !strings.EqualFold(strings.TrimSpace(a[i]), strings.TrimSpace(b[i])) {
			return false
		}
	}
	return true
}

func cloneGrid(grid [][]string) [][]string {
	out := make([][]string, len(grid))
	for i, row := range grid {
		out[i] = append([]string(nil), row...)
	}
	return out
}
