// Package filetype is the boundary to byte-level file-type
// classification. The pipeline only needs a label confirming that the
// input is a PDF before any page-level work starts; the default
// classifier sniffs magic bytes, and callers may plug in a richer
// external classifier behind the same interface.
package filetype

import "bytes"

// Label identifies a detected file type.
type Label string

const (
	// LabelUnknown indicates an unrecognized type.
	LabelUnknown Label = "unknown"
	// LabelPDF indicates a PDF document.
	LabelPDF Label = "pdf"
	// LabelPNG indicates a PNG image.
	LabelPNG Label = "png"
	// LabelJPEG indicates a JPEG image.
	LabelJPEG Label = "jpeg"
	// LabelZIP indicates a ZIP container (office documents included).
	LabelZIP Label = "zip"
)

// MIME returns the MIME type for the label.
func (l Label) MIME() string {
	switch l {
	case LabelPDF:
		return "application/pdf"
	case LabelPNG:
		return "image/png"
	case LabelJPEG:
		return "image/jpeg"
	case LabelZIP:
		return "application/zip"
	default:
		return "application/octet-stream"
	}
}

// Classifier identifies the type of a byte payload.
type Classifier interface {
	Classify(data []byte) Label
}

// Sniffer is the default Classifier. It detects types from magic
// bytes only, which is sufficient to gate the PDF pipeline.
type Sniffer struct{}

var pdfMagic = []byte("%PDF-")

// Classify determines the file type from magic bytes.
func (Sniffer) Classify(data []byte) Label {
	switch {
	case isPDF(data):
		return LabelPDF
	case len(data) >= 8 && bytes.Equal(data[:8], []byte{0x89, 'P', 'N', 'G', '\r', '\n', 0x1A, '\n'}):
		return LabelPNG
	case len(data) >= 3 && data[0] == 0xFF && data[1] == 0xD8 && data[2] == 0xFF:
		return LabelJPEG
	case len(data) >= 4 && data[0] == 0x50 && data[1] == 0x4B && data[2] == 0x03 && data[3] == 0x04:
		return LabelZIP
	default:
		return LabelUnknown
	}
}

// isPDF reports whether the payload starts with a PDF header. Some
// producers prepend junk before the header, so the first 1 KB is
// scanned rather than only offset zero.
func isPDF(data []byte) bool {
	if bytes.HasPrefix(data, pdfMagic) {
		return true
	}
	limit := min(len(data), 1024)
	return bytes.Contains(data[:limit], pdfMagic)
}
