package pdf

import (
	"fmt"
	"io"
	"strings"

	lpdf "github.com/ledongthuc/pdf"
)

// LedongthucDocument implements the Document interface using the
// ledongthuc/pdf library. It is the fallback backend: it produces
// accurately positioned glyphs but no vector paths or raster objects,
// so documents opened through it classify on text evidence alone.
type LedongthucDocument struct {
	file     io.Closer
	reader   *lpdf.Reader
	filepath string
	pages    []Page
	pageErrs []error
}

// OpenWithLedongthuc opens a PDF file using the ledongthuc/pdf library
func OpenWithLedongthuc(filepath string) (Document, error) {
	f, r, err := lpdf.Open(filepath)
	if err != nil {
		return nil, fmt.Errorf("failed to open PDF with ledongthuc: %w", err)
	}

	doc := &LedongthucDocument{
		file:     f,
		reader:   r,
		filepath: filepath,
	}
	doc.initializePages()

	return doc, nil
}

func (d *LedongthucDocument) initializePages() {
	pageCount := d.reader.NumPage()
	d.pages = make([]Page, pageCount)
	d.pageErrs = make([]error, pageCount)

	for i := 1; i <= pageCount; i++ {
		page, err := newLedongthucPage(d.reader, i)
		if err != nil {
			d.pageErrs[i-1] = fmt.Errorf("page %d: %w", i, err)
			continue
		}
		d.pages[i-1] = page
	}
}

// GetPages returns all readable pages in the document
func (d *LedongthucDocument) GetPages() []Page {
	pages := make([]Page, 0, len(d.pages))
	for _, p := range d.pages {
		if p != nil {
			pages = append(pages, p)
		}
	}
	return pages
}

// GetPage returns a specific page by index (0-based)
func (d *LedongthucDocument) GetPage(index int) (Page, error) {
	if index < 0 || index >= len(d.pages) {
		return nil, fmt.Errorf("page index %d out of range [0, %d)", index, len(d.pages))
	}
	if d.pageErrs[index] != nil {
		return nil, d.pageErrs[index]
	}
	return d.pages[index], nil
}

// PageCount returns the total number of pages
func (d *LedongthucDocument) PageCount() int {
	return len(d.pages)
}

// Close releases resources associated with the document
func (d *LedongthucDocument) Close() error {
	if d.file != nil {
		return d.file.Close()
	}
	return nil
}

// ledongthucPage implements the Page interface using ledongthuc/pdf
type ledongthucPage struct {
	pageNumber int
	width      float64
	height     float64
	objects    Objects
}

func newLedongthucPage(reader *lpdf.Reader, pageNumber int) (*ledongthucPage, error) {
	page := reader.Page(pageNumber)
	if page.V.IsNull() {
		return nil, fmt.Errorf("null page object")
	}

	// Page dimensions from MediaBox, defaulting to US Letter.
	width, height := 612.0, 792.0
	mediaBox := page.V.Key("MediaBox")
	if mediaBox.Kind() == lpdf.Array && mediaBox.Len() == 4 {
		x0 := mediaBox.Index(0).Float64()
		y0 := mediaBox.Index(1).Float64()
		x1 := mediaBox.Index(2).Float64()
		y1 := mediaBox.Index(3).Float64()
		width = x1 - x0
		height = y1 - y0
	}

	p := &ledongthucPage{
		pageNumber: pageNumber,
		width:      width,
		height:     height,
	}
	p.extractChars(page.Content())

	return p, nil
}

// extractChars converts the reader's positioned text items into
// CharObjects in top-left page coordinates.
func (p *ledongthucPage) extractChars(content lpdf.Content) {
	for _, text := range content.Text {
		chars := []rune(text.S)
		if len(chars) == 0 {
			continue
		}

		fontSize := text.FontSize
		// The reader reports the baseline; take the glyph top at 80%
		// of the font height above it, then flip to top-left origin.
		top := p.height - (text.Y + fontSize*0.8)

		charWidth := text.W / float64(len(chars))
		x := text.X

		for _, ch := range chars {
			if ch != ' ' {
				p.objects.Chars = append(p.objects.Chars, CharObject{
					Text:     string(ch),
					Font:     text.Font,
					FontSize: fontSize,
					X0:       x,
					Y0:       top,
					X1:       x + charWidth,
					Y1:       top + fontSize,
					Width:    charWidth,
					Height:   fontSize,
				})
			}
			x += charWidth
		}
	}
}

// GetPageNumber returns the page number (1-based)
func (p *ledongthucPage) GetPageNumber() int {
	return p.pageNumber
}

// GetWidth returns the page width
func (p *ledongthucPage) GetWidth() float64 {
	return p.width
}

// GetHeight returns the page height
func (p *ledongthucPage) GetHeight() float64 {
	return p.height
}

// GetBBox returns the page bounding box
func (p *ledongthucPage) GetBBox() BoundingBox {
	return BoundingBox{X1: p.width, Y1: p.height}
}

// GetObjects returns all content objects on the page
func (p *ledongthucPage) GetObjects() Objects {
	return p.objects
}

// ExtractText extracts plain text from the page
func (p *ledongthucPage) ExtractText() string {
	words := p.ExtractWords()
	parts := make([]string, 0, len(words))
	for _, w := range words {
		parts = append(parts, w.Text)
	}
	return strings.Join(parts, " ")
}

// ExtractWords extracts individual words from the page
func (p *ledongthucPage) ExtractWords() []Word {
	return wordsFromChars(p.objects.Chars, defaultXTolerance, defaultYTolerance)
}

// ImageBytes is unsupported by this backend
func (p *ledongthucPage) ImageBytes(string) ([]byte, error) {
	return nil, ErrImageUnsupported
}
