package tables

import (
	"testing"

	"github.com/pdftriage/pdftriage/pkg/pdf"
)

// fragment builds a region positioned by page-relative offsets, with
// top and bottom given as fractions of the page height.
func fragment(pageIndex int, top, bottom float64, boundaries []float64, grid [][]string) Region {
	const w, h = 612.0, 792.0
	return Region{
		PageIndex: pageIndex,
		BBox: pdf.BoundingBox{
			X0: boundaries[0], Y0: top * h,
			X1: boundaries[len(boundaries)-1], Y1: bottom * h,
		},
		Grid:             grid,
		ColumnBoundaries: boundaries,
		PageWidth:        w,
		PageHeight:       h,
	}
}

var boundaries = []float64{72, 250, 430, 540}

func TestMergeContinuation(t *testing.T) {
	first := fragment(0, 0.50, 0.95, boundaries, [][]string{
		{"Item", "Qty", "Price"},
		{"Bolt", "12", "0.40"},
	})
	second := fragment(1, 0.05, 0.40, boundaries, [][]string{
		{"Nut", "30", "0.15"},
		{"Washer", "55", "0.05"},
	})

	m := NewMerger(MergeConfig{})
	tables := m.Merge([]Region{first, second})
	if len(tables) != 1 {
		t.Fatalf("Merge() = %d tables, want 1", len(tables))
	}

	table := tables[0]
	if table.Rows() != 4 {
		t.Errorf("Rows() = %d, want 4", table.Rows())
	}
	if table.StartPage != 0 || table.EndPage != 1 {
		t.Errorf("page span = [%d, %d], want [0, 1]", table.StartPage, table.EndPage)
	}
	if table.Grid[2][0] != "Nut" {
		t.Errorf("Grid[2][0] = %q, want Nut", table.Grid[2][0])
	}
}

func TestMergeDropsRepeatedHeader(t *testing.T) {
	header := []string{"Item", "Qty", "Price"}
	first := fragment(0, 0.50, 0.95, boundaries, [][]string{
		header,
		{"Bolt", "12", "0.40"},
	})
	second := fragment(1, 0.05, 0.40, boundaries, [][]string{
		{"ITEM", " Qty ", "Price"}, // restated header, case and spacing differ
		{"Nut", "30", "0.15"},
	})

	m := NewMerger(MergeConfig{})
	tables := m.Merge([]Region{first, second})
	if len(tables) != 1 {
		t.Fatalf("Merge() = %d tables, want 1", len(tables))
	}
	if got := tables[0].Rows(); got != 3 {
		t.Errorf("Rows() = %d, want 3 (repeated header dropped)", got)
	}
	if tables[0].Grid[2][0] != "Nut" {
		t.Errorf("Grid[2][0] = %q, want Nut", tables[0].Grid[2][0])
	}
}

func TestMergeTransitiveChain(t *testing.T) {
	// A table spanning three pages merges fragment by fragment:
	// rows(r1+r2+r3) minus one repeated header per continuation.
	header := []string{"Item", "Qty", "Price"}
	r1 := fragment(0, 0.60, 0.95, boundaries, [][]string{header, {"a", "1", "x"}})
	r2 := fragment(1, 0.05, 0.95, boundaries, [][]string{header, {"b", "2", "y"}, {"c", "3", "z"}})
	r3 := fragment(2, 0.05, 0.30, boundaries, [][]string{header, {"d", "4", "w"}})

	m := NewMerger(MergeConfig{})
	tables := m.Merge([]Region{r1, r2, r3})
	if len(tables) != 1 {
		t.Fatalf("Merge() = %d tables, want 1", len(tables))
	}
	if got := tables[0].Rows(); got != 5 {
		t.Errorf("Rows() = %d, want 5", got)
	}
	if tables[0].EndPage != 2 {
		t.Errorf("EndPage = %d, want 2", tables[0].EndPage)
	}
}

func TestMergeRejections(t *testing.T) {
	base := fragment(0, 0.50, 0.95, boundaries, [][]string{
		{"Item", "Qty", "Price"},
		{"Bolt", "12", "0.40"},
	})
	cont := func() Region {
		return fragment(1, 0.05, 0.40, boundaries, [][]string{
			{"Nut", "30", "0.15"},
		})
	}

	tests := []struct {
		name   string
		first  Region
		second Region
	}{
		{
			name:  "column count mismatch",
			first: base,
			second: fragment(1, 0.05, 0.40, []float64{72, 300, 540}, [][]string{
				{"Nut", "30"},
			}),
		},
		{
			name:  "boundaries drifted",
			first: base,
			second: fragment(1, 0.05, 0.40, []float64{72, 290, 430, 540}, [][]string{
				{"Nut", "30", "0.15"},
			}),
		},
		{
			name:   "first fragment ends mid page",
			first:  fragment(0, 0.30, 0.60, boundaries, base.Grid),
			second: cont(),
		},
		{
			name:   "second fragment starts mid page",
			first:  base,
			second: fragment(1, 0.40, 0.70, boundaries, [][]string{{"Nut", "30", "0.15"}}),
		},
		{
			name:   "page gap",
			first:  base,
			second: fragment(2, 0.05, 0.40, boundaries, [][]string{{"Nut", "30", "0.15"}}),
		},
		{
			name:  "prose between fragments",
			first: base,
			second: func() Region {
				r := cont()
				r.LeadingText = true
				return r
			}(),
		},
	}

	m := NewMerger(MergeConfig{})
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tables := m.Merge([]Region{tt.first, tt.second})
			if len(tables) != 2 {
				t.Errorf("Merge() = %d tables, want 2 (no merge)", len(tables))
			}
		})
	}
}

func TestMergeSinglePage(t *testing.T) {
	// Two tables on the same page never merge.
	a := fragment(0, 0.10, 0.40, boundaries, [][]string{{"A", "B", "C"}, {"1", "2", "3"}})
	b := fragment(0, 0.60, 0.90, boundaries, [][]string{{"D", "E", "F"}, {"4", "5", "6"}})

	m := NewMerger(MergeConfig{})
	if tables := m.Merge([]Region{a, b}); len(tables) != 2 {
		t.Errorf("Merge() = %d tables, want 2", len(tables))
	}
}
