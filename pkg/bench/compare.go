package bench

import (
	"strings"
	"time"

	"github.com/pdftriage/pdftriage/pkg/tables"
)

// MatchStatus records how one expected table fared.
type MatchStatus string

const (
	Matched MatchStatus = "matched"
	Missed  MatchStatus = "missed"
)

// TableMatch pairs an expected table with the extracted table that
// satisfied it, if any.
type TableMatch struct {
	ExpectedIndex  int
	ExtractedIndex int // -1 when missed
	Status         MatchStatus
}

// Result is the benchmark score for one document. Precision counts
// extracted items that matched; recall counts expected items that were
// found. A document with nothing expected and nothing extracted scores
// 1.0 on both.
type Result struct {
	TablePrecision float64
	TableRecall    float64
	ImagePrecision float64
	ImageRecall    float64
	TableMatches   []TableMatch
	Latency        time.Duration
}

// Comparator scores extraction output against fixtures. It is pure
// computation; no I/O.
type Comparator struct {
	// CellMatchFraction is the fraction of cells that must compare
	// equal for a table with labeled cells to match. Zero means 1.0.
	CellMatchFraction float64
}

// NewComparator returns a comparator requiring fraction of labeled
// cells to match. Zero selects the default of 1.0.
func NewComparator(fraction float64) *Comparator {
	if fraction == 0 {
		fraction = 1.0
	}
	return &Comparator{CellMatchFraction: fraction}
}

// Compare scores extracted tables and image count against the fixture.
// Each expected table is matched greedily against the first unclaimed
// extracted table that satisfies it.
func (c *Comparator) Compare(extracted []tables.Table, imageCount int, fixture Fixture) Result {
	result := Result{}

	claimed := make([]bool, len(extracted))
	matched := 0
	for i, expected := range fixture.ExpectedTables {
		match := TableMatch{ExpectedIndex: i, ExtractedIndex: -1, Status: Missed}
		for j, table := range extracted {
			if claimed[j] {
				continue
			}
			if c.tableMatches(table, expected) {
				claimed[j] = true
				match.ExtractedIndex = j
				match.Status = Matched
				matched++
				break
			}
		}
		result.TableMatches = append(result.TableMatches, match)
	}

	result.TablePrecision = ratio(matched, len(extracted))
	result.TableRecall = ratio(matched, len(fixture.ExpectedTables))

	imageHits := min(imageCount, fixture.ExpectedImageCount)
	result.ImagePrecision = ratio(imageHits, imageCount)
	result.ImageRecall = ratio(imageHits, fixture.ExpectedImageCount)

	return result
}

// tableMatches reports whether table satisfies expected: dimensions
// equal, and when cells are labeled, at least CellMatchFraction of
// them equal after normalization.
func (c *Comparator) tableMatches(table tables.Table, expected ExpectedTable) bool {
	if table.Rows() != expected.Rows || table.Columns() != expected.Cols {
		return false
	}
	if len(expected.Cells) == 0 {
		return true
	}

	total, equal := 0, 0
	for i, row := range expected.Cells {
		if i >= len(table.Grid) {
			break
		}
		for j, want := range row {
			if j >= len(table.Grid[i]) {
				break
			}
			total++
			if normalizeCell(table.Grid[i][j]) == normalizeCell(want) {
				equal++
			}
		}
	}
	if total == 0 {
		return true
	}
	return float64(equal)/float64(total) >= c.CellMatchFraction
}

// normalizeCell lowercases and collapses internal whitespace so
// layout differences do not fail a content match.
func normalizeCell(s string) string {
	return strings.ToLower(strings.Join(strings.Fields(s), " "))
}

// ratio is hits/total with the nothing-expected-nothing-found case
// scoring perfect.
func ratio(hits, total int) float64 {
	if total == 0 {
		if hits == 0 {
			return 1.0
		}
		return 0
	}
	return float64(hits) / float64(total)
}

// FixtureFromTables builds a fixture describing the given extraction
// output, for bootstrapping manifests from verified runs.
func FixtureFromTables(file string, extracted []tables.Table, imageCount int) Fixture {
	fixture := Fixture{File: file, ExpectedImageCount: imageCount}
	for _, table := range extracted {
		fixture.ExpectedTables = append(fixture.ExpectedTables, ExpectedTable{
			Rows:  table.Rows(),
			Cols:  table.Columns(),
			Cells: table.Grid,
		})
	}
	return fixture
}
