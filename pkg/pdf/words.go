package pdf

import (
	"math"
	"sort"
	"strings"
)

// Default tolerances for grouping characters into lines and words,
// in page units.
const (
	defaultXTolerance = 3.0
	defaultYTolerance = 3.0
)

// wordsFromChars groups characters into words: first into lines by Y
// proximity, then into words by X gaps. Both backends share this so
// word boundaries do not depend on which reader produced the chars.
func wordsFromChars(chars []CharObject, xTolerance, yTolerance float64) []Word {
	if len(chars) == 0 {
		return nil
	}

	sorted := make([]CharObject, len(chars))
	copy(sorted, chars)
	sort.Slice(sorted, func(i, j int) bool {
		if math.Abs(sorted[i].Y0-sorted[j].Y0) > yTolerance {
			return sorted[i].Y0 < sorted[j].Y0
		}
		return sorted[i].X0 < sorted[j].X0
	})

	var lines [][]CharObject
	currentLine := []CharObject{sorted[0]}
	currentY := sorted[0].Y0

	for _, char := range sorted[1:] {
		if math.Abs(char.Y0-currentY) > yTolerance {
			lines = append(lines, currentLine)
			currentLine = []CharObject{char}
			currentY = char.Y0
		} else {
			currentLine = append(currentLine, char)
		}
	}
	lines = append(lines, currentLine)

	var words []Word
	for _, line := range lines {
		words = append(words, wordsFromLine(line, xTolerance)...)
	}

	return words
}

// wordsFromLine splits one line of characters into words on X gaps
func wordsFromLine(lineChars []CharObject, xTolerance float64) []Word {
	if len(lineChars) == 0 {
		return nil
	}

	sort.Slice(lineChars, func(i, j int) bool {
		return lineChars[i].X0 < lineChars[j].X0
	})

	var words []Word
	currentWord := []CharObject{lineChars[0]}

	for i := 1; i < len(lineChars); i++ {
		char := lineChars[i]
		gap := char.X0 - lineChars[i-1].X1
		if gap > xTolerance {
			words = append(words, newWord(currentWord))
			currentWord = []CharObject{char}
		} else {
			currentWord = append(currentWord, char)
		}
	}
	words = append(words, newWord(currentWord))

	return words
}

// newWord builds a Word and its bounding box from grouped characters
func newWord(chars []CharObject) Word {
	var text strings.Builder
	minX, minY := chars[0].X0, chars[0].Y0
	maxX, maxY := chars[0].X1, chars[0].Y1

	for _, char := range chars {
		text.WriteString(char.Text)
		minX = min(minX, char.X0)
		minY = min(minY, char.Y0)
		maxX = max(maxX, char.X1)
		maxY = max(maxY, char.Y1)
	}

	return Word{
		Text:       text.String(),
		X0:         minX,
		Y0:         minY,
		X1:         maxX,
		Y1:         maxY,
		Characters: chars,
	}
}
