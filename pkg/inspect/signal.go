// Package inspect classifies PDF documents as digitally authored
// (native) or scanned from paper, based on low-level page signals:
// extractable glyph runs, vector path coverage and raster placements.
package inspect

import "github.com/pdftriage/pdftriage/pkg/pdf"

// PageSignal is the compact per-page record the classifier consumes.
// It is produced once per page and never mutated afterwards.
type PageSignal struct {
	PageIndex           int
	TextCharCount       int
	TextBBoxAreaRatio   float64
	VectorPathCount     int
	VectorCoverageRatio float64
	Rasters             []pdf.ImageObject
	PageArea            float64
}

// ExtractSignal reads one page and computes its signal record. It
// never fails: a page with no readable content yields a zeroed signal,
// which the classifier treats as scanned-or-empty evidence.
func ExtractSignal(page pdf.Page) PageSignal {
	signal := PageSignal{}
	if page == nil {
		return signal
	}

	signal.PageIndex = page.GetPageNumber() - 1
	pageBox := page.GetBBox()
	signal.PageArea = pageBox.Area()
	objects := page.GetObjects()

	signal.TextCharCount = len(objects.Chars)
	if signal.PageArea > 0 {
		var textArea float64
		for _, c := range objects.Chars {
			textArea += c.GetBBox().Clip(pageBox).Area()
		}
		signal.TextBBoxAreaRatio = min(textArea/signal.PageArea, 1.0)
	}

	signal.VectorPathCount = len(objects.Lines) + len(objects.Rects) + len(objects.Curves)
	if signal.PageArea > 0 {
		var vectorArea float64
		for _, l := range objects.Lines {
			vectorArea += l.GetBBox().Clip(pageBox).Area()
		}
		for _, r := range objects.Rects {
			vectorArea += r.GetBBox().Clip(pageBox).Area()
		}
		for _, c := range objects.Curves {
			vectorArea += c.GetBBox().Clip(pageBox).Area()
		}
		// Overlapping paths can sum past the page area; cap the ratio.
		signal.VectorCoverageRatio = min(vectorArea/signal.PageArea, 1.0)
	}

	signal.Rasters = objects.Images

	return signal
}

// dominantRasterRatio returns the largest fraction of the page area
// covered by a single raster placement.
func (s PageSignal) dominantRasterRatio() float64 {
	if s.PageArea <= 0 {
		return 0
	}
	var largest float64
	for _, img := range s.Rasters {
		ratio := img.GetBBox().Area() / s.PageArea
		if ratio > largest {
			largest = ratio
		}
	}
	return min(largest, 1.0)
}
