// Package pdf is the boundary to the underlying PDF content model.
// It exposes pages as collections of glyph runs, vector paths and
// raster placements, backed by real reader libraries. Nothing above
// this package parses raw PDF byte structure.
package pdf

import "errors"

// ErrImageUnsupported is returned by backends that cannot decode
// embedded raster payloads.
var ErrImageUnsupported = errors.New("pdf: backend does not support image extraction")

// Document represents an open PDF document
type Document interface {
	// GetPages returns all pages in the document
	GetPages() []Page

	// GetPage returns a specific page by index (0-based)
	GetPage(index int) (Page, error)

	// PageCount returns the total number of pages
	PageCount() int

	// Close releases resources associated with the document
	Close() error
}

// Page represents a single page in a PDF document. Page content is
// materialized when the document is opened, so a Page is safe for
// concurrent reads.
type Page interface {
	// GetPageNumber returns the page number (1-based)
	GetPageNumber() int

	// GetWidth returns the page width
	GetWidth() float64

	// GetHeight returns the page height
	GetHeight() float64

	// GetBBox returns the page bounding box
	GetBBox() BoundingBox

	// GetObjects returns all content objects on the page
	GetObjects() Objects

	// ExtractText extracts plain text from the page
	ExtractText() string

	// ExtractWords extracts individual words from the page
	ExtractWords() []Word

	// ImageBytes returns the decoded payload of an image object on
	// this page, identified by its ObjectID. Backends without image
	// support return ErrImageUnsupported.
	ImageBytes(objectID string) ([]byte, error)
}
