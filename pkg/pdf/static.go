package pdf

import "fmt"

// StaticDocument is an in-memory Document backed by literal pages.
// It exists for tests and for building synthetic fixtures without a
// PDF file on disk.
type StaticDocument struct {
	StaticPages []*StaticPage
}

// GetPages returns all pages in the document
func (d *StaticDocument) GetPages() []Page {
	pages := make([]Page, len(d.StaticPages))
	for i, p := range d.StaticPages {
		pages[i] = p
	}
	return pages
}

// GetPage returns a specific page by index (0-based)
func (d *StaticDocument) GetPage(index int) (Page, error) {
	if index < 0 || index >= len(d.StaticPages) {
		return nil, fmt.Errorf("page index %d out of range [0, %d)", index, len(d.StaticPages))
	}
	return d.StaticPages[index], nil
}

// PageCount returns the total number of pages
func (d *StaticDocument) PageCount() int {
	return len(d.StaticPages)
}

// Close is a no-op for in-memory documents
func (d *StaticDocument) Close() error {
	return nil
}

// StaticPage is an in-memory Page with literal content objects.
// ImagePayloads maps ObjectIDs of entries in Content.Images to their
// decoded bytes.
type StaticPage struct {
	PageNumber    int
	PageWidth     float64
	PageHeight    float64
	Content       Objects
	ImagePayloads map[string][]byte
}

// GetPageNumber returns the page number (1-based)
func (p *StaticPage) GetPageNumber() int {
	return p.PageNumber
}

// GetWidth returns the page width
func (p *StaticPage) GetWidth() float64 {
	return p.PageWidth
}

// GetHeight returns the page height
func (p *StaticPage) GetHeight() float64 {
	return p.PageHeight
}

// GetBBox returns the page bounding box
func (p *StaticPage) GetBBox() BoundingBox {
	return BoundingBox{X1: p.PageWidth, Y1: p.PageHeight}
}

// GetObjects returns all content objects on the page
func (p *StaticPage) GetObjects() Objects {
	return p.Content
}

// ExtractText extracts plain text from the page
func (p *StaticPage) ExtractText() string {
	var text string
	for _, w := range p.ExtractWords() {
		if text != "" {
			text += " "
		}
		text += w.Text
	}
	return text
}

// ExtractWords extracts individual words from the page
func (p *StaticPage) ExtractWords() []Word {
	return wordsFromChars(p.Content.Chars, defaultXTolerance, defaultYTolerance)
}

// ImageBytes returns the payload registered for an image object
func (p *StaticPage) ImageBytes(objectID string) ([]byte, error) {
	payload, ok := p.ImagePayloads[objectID]
	if !ok {
		return nil, fmt.Errorf("no image object %q on page %d", objectID, p.PageNumber)
	}
	return payload, nil
}
