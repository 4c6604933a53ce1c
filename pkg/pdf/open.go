package pdf

import "fmt"

// Open opens a PDF file, trying the pdfcpu backend first because it is
// the only one that exposes vector paths and raster objects. When the
// document cannot be read with pdfcpu (unsupported features, strict
// validation failures), the ledongthuc backend is tried for its text
// layer before giving up.
func Open(filepath string) (Document, error) {
	doc, err := OpenWithPDFCPU(filepath)
	if err == nil {
		return doc, nil
	}

	doc, lerr := OpenWithLedongthuc(filepath)
	if lerr == nil {
		return doc, nil
	}

	return nil, fmt.Errorf("open %s: %w", filepath, err)
}
