// Package tables locates ruled and aligned tables on PDF pages and
// stitches regions that continue across page breaks into one logical
// table.
package tables

import (
	"math"
	"sort"

	"github.com/pdftriage/pdftriage/pkg/pdf"
)

// floatTolerance is the coordinate slack for treating two rulings as
// the same stroke.
const floatTolerance = 0.1

// collectRulings splits the page's strokes into horizontal and
// vertical rulings. Rectangle outlines contribute their four edges,
// since many generators draw cell borders as thin rects.
func collectRulings(objects pdf.Objects, snapTolerance float64) (horizontal, vertical []pdf.LineObject) {
	for _, line := range objects.Lines {
		switch {
		case math.Abs(line.Y1-line.Y0) < snapTolerance:
			horizontal = append(horizontal, line)
		case math.Abs(line.X1-line.X0) < snapTolerance:
			vertical = append(vertical, line)
		}
	}

	for _, rect := range objects.Rects {
		horizontal = append(horizontal,
			pdf.LineObject{X0: rect.X0, Y0: rect.Y0, X1: rect.X1, Y1: rect.Y0, Width: rect.Width},
			pdf.LineObject{X0: rect.X0, Y0: rect.Y1, X1: rect.X1, Y1: rect.Y1, Width: rect.Width},
		)
		vertical = append(vertical,
			pdf.LineObject{X0: rect.X0, Y0: rect.Y0, X1: rect.X0, Y1: rect.Y1, Width: rect.Width},
			pdf.LineObject{X0: rect.X1, Y0: rect.Y0, X1: rect.X1, Y1: rect.Y1, Width: rect.Width},
		)
	}

	horizontal = consolidateRulings(horizontal, true)
	vertical = consolidateRulings(vertical, false)
	return horizontal, vertical
}

// consolidateRulings merges collinear rulings that overlap or touch,
// keeping the thicker stroke width. PDF generators frequently emit a
// single visual rule as several abutting segments.
func consolidateRulings(lines []pdf.LineObject, horizontal bool) []pdf.LineObject {
	if len(lines) == 0 {
		return lines
	}

	sort.Slice(lines, func(i, j int) bool {
		if horizontal {
			if math.Abs(lines[i].Y0-lines[j].Y0) > floatTolerance {
				return lines[i].Y0 < lines[j].Y0
			}
			return lines[i].X0 < lines[j].X0
		}
		if math.Abs(lines[i].X0-lines[j].X0) > floatTolerance {
			return lines[i].X0 < lines[j].X0
		}
		return lines[i].Y0 < lines[j].Y0
	})

	result := []pdf.LineObject{}
	current := lines[0]

	for _, line := range lines[1:] {
		if horizontal {
			sameLevel := math.Abs(line.Y0-current.Y0) < floatTolerance
			if sameLevel && line.X0 <= current.X1+1 && line.X1 >= current.X0-1 {
				current.X0 = math.Min(current.X0, line.X0)
				current.X1 = math.Max(current.X1, line.X1)
				current.Width = math.Max(current.Width, line.Width)
				continue
			}
		} else {
			sameLevel := math.Abs(line.X0-current.X0) < floatTolerance
			if sameLevel && line.Y0 <= current.Y1+1 && line.Y1 >= current.Y0-1 {
				current.Y0 = math.Min(current.Y0, line.Y0)
				current.Y1 = math.Max(current.Y1, line.Y1)
				current.Width = math.Max(current.Width, line.Width)
				continue
			}
		}
		result = append(result, current)
		current = line
	}

	return append(result, current)
}

// uniquePositions collapses rulings to their sorted distinct axis
// positions, snapped to the given tolerance.
func uniquePositions(lines []pdf.LineObject, horizontal bool, snapTolerance float64) []float64 {
	seen := make(map[float64]bool)
	for _, line := range lines {
		var pos float64
		if horizontal {
			pos = math.Round(line.Y0/snapTolerance) * snapTolerance
		} else {
			pos = math.Round(line.X0/snapTolerance) * snapTolerance
		}
		seen[pos] = true
	}

	positions := make([]float64, 0, len(seen))
	for pos := range seen {
		positions = append(positions, pos)
	}
	sort.Float64s(positions)
	return positions
}

// spanningRulings selects the vertical rulings whose extent overlaps
// the vertical span of a horizontal cluster. Those are the strokes
// that can form column separators for that lattice.
func spanningRulings(vertical []pdf.LineObject, hGroup []pdf.LineObject) []pdf.LineObject {
	top, bottom := hGroup[0].Y0, hGroup[0].Y0
	for _, h := range hGroup {
		top = math.Min(top, h.Y0)
		bottom = math.Max(bottom, h.Y0)
	}

	var selected []pdf.LineObject
	for _, v := range vertical {
		lo, hi := math.Min(v.Y0, v.Y1), math.Max(v.Y0, v.Y1)
		if hi >= top-floatTolerance && lo <= bottom+floatTolerance {
			selected = append(selected, v)
		}
	}
	return selected
}

// groupByGap splits sorted rulings into clusters separated by more
// than gap points along the sort axis. Each cluster is a candidate
// table lattice.
func groupByGap(lines []pdf.LineObject, horizontal bool, gap float64) [][]pdf.LineObject {
	if len(lines) == 0 {
		return nil
	}

	sort.Slice(lines, func(i, j int) bool {
		if horizontal {
			return lines[i].Y0 < lines[j].Y0
		}
		return lines[i].X0 < lines[j].X0
	})

	var groups [][]pdf.LineObject
	current := []pdf.LineObject{lines[0]}

	for i := 1; i < len(lines); i++ {
		var pos, prev float64
		if horizontal {
			pos, prev = lines[i].Y0, lines[i-1].Y0
		} else {
			pos, prev = lines[i].X0, lines[i-1].X0
		}
		if math.Abs(pos-prev) > gap {
			groups = append(groups, current)
			current = []pdf.LineObject{lines[i]}
		} else {
			current = append(current, lines[i])
		}
	}

	return append(groups, current)
}
