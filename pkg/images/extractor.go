package images

import (
	"errors"
	"fmt"

	"github.com/pdftriage/pdftriage/pkg/pdf"
)

// RasterRef is one placement of a raster on one page.
type RasterRef struct {
	PageIndex   int
	ObjectID    string
	ContentHash uint64
	BBox        pdf.BoundingBox
	PixelWidth  int
	PixelHeight int
}

// ExtractedImage is one distinct raster and all the places it appears.
// Representative is the first placement encountered in page order;
// CanonicalBytes is its canonicalized payload.
type ExtractedImage struct {
	Representative RasterRef
	Occurrences    []RasterRef
	CanonicalBytes []byte
}

// Count returns how many times the raster appears in the document.
func (e ExtractedImage) Count() int { return len(e.Occurrences) }

// Warning records a raster that could not be processed. Extraction
// continues past it.
type Warning struct {
	PageIndex int
	ObjectID  string
	Message   string
}

// Extractor pulls raster placements off pages and groups them by
// content hash.
type Extractor struct{}

// NewExtractor returns a ready extractor.
func NewExtractor() *Extractor {
	return &Extractor{}
}

// ExtractPage returns the raster placements on page along with
// warnings for payloads that could not be read. Placements whose
// payload is unavailable are dropped: without bytes there is nothing
// to group by.
func (e *Extractor) ExtractPage(page pdf.Page, pageIndex int) ([]RasterRef, [][]byte, []Warning) {
	objects := page.GetObjects()
	refs := make([]RasterRef, 0, len(objects.Images))
	payloads := make([][]byte, 0, len(objects.Images))
	var warnings []Warning

	for _, img := range objects.Images {
		payload, err := page.ImageBytes(img.ObjectID)
		if err != nil {
			msg := fmt.Sprintf("image %s unreadable: %v", img.ObjectID, err)
			if errors.Is(err, pdf.ErrImageUnsupported) {
				msg = fmt.Sprintf("image %s skipped: text-only reader in use", img.ObjectID)
			}
			warnings = append(warnings, Warning{PageIndex: pageIndex, ObjectID: img.ObjectID, Message: msg})
			continue
		}

		canonical := Canonicalize(payload)
		hash, err := ContentHash(canonical)
		if err != nil {
			warnings = append(warnings, Warning{
				PageIndex: pageIndex,
				ObjectID:  img.ObjectID,
				Message:   fmt.Sprintf("image %s not hashable: %v", img.ObjectID, err),
			})
			continue
		}

		refs = append(refs, RasterRef{
			PageIndex:   pageIndex,
			ObjectID:    img.ObjectID,
			ContentHash: hash,
			BBox:        img.GetBBox(),
			PixelWidth:  img.PixelWidth,
			PixelHeight: img.PixelHeight,
		})
		payloads = append(payloads, canonical)
	}

	return refs, payloads, warnings
}

// Group folds placements into distinct images by content hash. The
// output is ordered by first occurrence, and each group's occurrences
// keep document order. refs and payloads must be parallel.
func Group(refs []RasterRef, payloads [][]byte) []ExtractedImage {
	index := make(map[uint64]int)
	var groups []ExtractedImage

	for i, ref := range refs {
		if at, ok := index[ref.ContentHash]; ok {
			groups[at].Occurrences = append(groups[at].Occurrences, ref)
			continue
		}
		index[ref.ContentHash] = len(groups)
		group := ExtractedImage{
			Representative: ref,
			Occurrences:    []RasterRef{ref},
		}
		if i < len(payloads) {
			group.CanonicalBytes = payloads[i]
		}
		groups = append(groups, group)
	}

	return groups
}
