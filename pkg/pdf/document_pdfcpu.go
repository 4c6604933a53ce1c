package pdf

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/pdfcpu/pdfcpu/pkg/api"
	"github.com/pdfcpu/pdfcpu/pkg/pdfcpu/model"
	"github.com/pdfcpu/pdfcpu/pkg/pdfcpu/types"
)

// PDFCPUDocument implements the Document interface using pdfcpu.
// It is the primary backend: it exposes text, vector paths and image
// placements, which the fallback backends cannot all provide.
type PDFCPUDocument struct {
	ctx      *model.Context
	filepath string
	pages    []Page
	pageErrs []error
}

// OpenWithPDFCPU opens a PDF file using pdfcpu
func OpenWithPDFCPU(filepath string) (Document, error) {
	ctx, err := api.ReadContextFile(filepath)
	if err != nil {
		return nil, fmt.Errorf("failed to read PDF context: %w", err)
	}

	if err := api.ValidateContext(ctx); err != nil {
		return nil, fmt.Errorf("invalid PDF: %w", err)
	}

	doc := &PDFCPUDocument{
		ctx:      ctx,
		filepath: filepath,
	}
	doc.initializePages()

	return doc, nil
}

// initializePages materializes every page once. A page that fails to
// parse is kept as a positional error so a single malformed page does
// not abort the document.
func (d *PDFCPUDocument) initializePages() {
	pageCount := d.ctx.PageCount
	d.pages = make([]Page, pageCount)
	d.pageErrs = make([]error, pageCount)

	for i := 1; i <= pageCount; i++ {
		page, err := newPDFCPUPage(d.ctx, i)
		if err != nil {
			d.pageErrs[i-1] = fmt.Errorf("page %d: %w", i, err)
			continue
		}
		d.pages[i-1] = page
	}
}

// GetPages returns all readable pages in the document
func (d *PDFCPUDocument) GetPages() []Page {
	pages := make([]Page, 0, len(d.pages))
	for _, p := range d.pages {
		if p != nil {
			pages = append(pages, p)
		}
	}
	return pages
}

// GetPage returns a specific page by index (0-based)
func (d *PDFCPUDocument) GetPage(index int) (Page, error) {
	if index < 0 || index >= len(d.pages) {
		return nil, fmt.Errorf("page index %d out of range [0, %d)", index, len(d.pages))
	}
	if d.pageErrs[index] != nil {
		return nil, d.pageErrs[index]
	}
	return d.pages[index], nil
}

// PageCount returns the total number of pages, including unreadable ones
func (d *PDFCPUDocument) PageCount() int {
	return len(d.pages)
}

// Close releases resources associated with the document
func (d *PDFCPUDocument) Close() error {
	d.ctx = nil
	d.pages = nil
	d.pageErrs = nil
	return nil
}

// pdfcpuPage implements the Page interface using pdfcpu
type pdfcpuPage struct {
	pageNumber int
	width      float64
	height     float64
	objects    Objects
	streams    map[string]*types.StreamDict // ObjectID -> image stream
}

func newPDFCPUPage(ctx *model.Context, pageNumber int) (*pdfcpuPage, error) {
	pageDict, _, attrs, err := ctx.PageDict(pageNumber, false)
	if err != nil {
		return nil, fmt.Errorf("failed to get page dict: %w", err)
	}
	if pageDict == nil {
		return nil, fmt.Errorf("missing page dict")
	}

	// Page dimensions from MediaBox, defaulting to US Letter.
	width, height := 612.0, 792.0
	if attrs != nil && attrs.MediaBox != nil {
		width = attrs.MediaBox.Width()
		height = attrs.MediaBox.Height()
	}

	p := &pdfcpuPage{
		pageNumber: pageNumber,
		width:      width,
		height:     height,
		streams:    map[string]*types.StreamDict{},
	}

	images := p.loadImageResources(ctx, pageDict)

	content, err := pageContent(ctx, pageDict)
	if err != nil {
		return nil, fmt.Errorf("failed to extract content: %w", err)
	}

	scanner := newContentScanner(width, height, images)
	p.objects = scanner.Scan(content)

	return p, nil
}

// loadImageResources resolves the page's image XObjects and returns
// the resource-name index the content scanner needs for Do operators.
func (p *pdfcpuPage) loadImageResources(ctx *model.Context, pageDict types.Dict) map[string]imageResource {
	images := map[string]imageResource{}

	resources, err := ctx.DereferenceDict(pageDict["Resources"])
	if err != nil || resources == nil {
		return images
	}
	xobjects, err := ctx.DereferenceDict(resources["XObject"])
	if err != nil || xobjects == nil {
		return images
	}

	for name, obj := range xobjects {
		indRef, ok := obj.(types.IndirectRef)
		if !ok {
			if ptr, isPtr := obj.(*types.IndirectRef); isPtr {
				indRef = *ptr
				ok = true
			}
		}
		if !ok {
			continue
		}

		sd, _, err := ctx.DereferenceStreamDict(indRef)
		if err != nil || sd == nil {
			continue
		}

		subtype, found := sd.Dict.Find("Subtype")
		if !found {
			continue
		}
		if n, isName := subtype.(types.Name); !isName || n != "Image" {
			continue
		}

		objectID := strconv.Itoa(indRef.ObjectNumber.Value())
		res := imageResource{
			ObjectID:         objectID,
			ColorSpace:       "DeviceRGB",
			BitsPerComponent: 8,
		}
		if w, found := sd.Dict.Find("Width"); found {
			if wi, isInt := w.(types.Integer); isInt {
				res.PixelWidth = wi.Value()
			}
		}
		if h, found := sd.Dict.Find("Height"); found {
			if hi, isInt := h.(types.Integer); isInt {
				res.PixelHeight = hi.Value()
			}
		}
		if cs, found := sd.Dict.Find("ColorSpace"); found {
			if n, isName := cs.(types.Name); isName {
				res.ColorSpace = string(n)
			}
		}
		if bpc, found := sd.Dict.Find("BitsPerComponent"); found {
			if bi, isInt := bpc.(types.Integer); isInt {
				res.BitsPerComponent = bi.Value()
			}
		}

		images[name] = res
		p.streams[objectID] = sd
	}

	return images
}

// pageContent collects and decodes the page's content streams
func pageContent(ctx *model.Context, pageDict types.Dict) ([]byte, error) {
	contents := pageDict["Contents"]
	if contents == nil {
		return nil, nil
	}

	var streams [][]byte

	appendStream := func(indRef types.IndirectRef) {
		sd, _, err := ctx.DereferenceStreamDict(indRef)
		if err != nil || sd == nil {
			return
		}
		decoded, err := decodeStream(sd)
		if err != nil {
			return
		}
		streams = append(streams, decoded)
	}

	switch v := contents.(type) {
	case *types.IndirectRef:
		appendStream(*v)
	case types.IndirectRef:
		appendStream(v)
	case types.Array:
		for _, item := range v {
			if indRef, ok := item.(*types.IndirectRef); ok {
				appendStream(*indRef)
			} else if indRef, ok := item.(types.IndirectRef); ok {
				appendStream(indRef)
			}
		}
	}

	if len(streams) == 0 {
		return nil, nil
	}

	var combined []byte
	for _, s := range streams {
		combined = append(combined, s...)
		combined = append(combined, '\n')
	}
	return combined, nil
}

// decodeStream decodes a stream dictionary, returning already-decoded
// content as is.
func decodeStream(sd *types.StreamDict) ([]byte, error) {
	if len(sd.Content) > 0 {
		return sd.Content, nil
	}
	if err := sd.Decode(); err != nil {
		return nil, err
	}
	return sd.Content, nil
}

// GetPageNumber returns the page number (1-based)
func (p *pdfcpuPage) GetPageNumber() int {
	return p.pageNumber
}

// GetWidth returns the page width
func (p *pdfcpuPage) GetWidth() float64 {
	return p.width
}

// GetHeight returns the page height
func (p *pdfcpuPage) GetHeight() float64 {
	return p.height
}

// GetBBox returns the page bounding box
func (p *pdfcpuPage) GetBBox() BoundingBox {
	return BoundingBox{X1: p.width, Y1: p.height}
}

// GetObjects returns all content objects on the page
func (p *pdfcpuPage) GetObjects() Objects {
	return p.objects
}

// ExtractText extracts plain text from the page, line by line
func (p *pdfcpuPage) ExtractText() string {
	words := p.ExtractWords()
	if len(words) == 0 {
		return ""
	}

	var lines []string
	var current []string
	lastY := words[0].Y0

	for _, w := range words {
		if w.Y0-lastY > defaultYTolerance {
			lines = append(lines, strings.Join(current, " "))
			current = current[:0]
		}
		current = append(current, w.Text)
		lastY = w.Y0
	}
	if len(current) > 0 {
		lines = append(lines, strings.Join(current, " "))
	}

	return strings.Join(lines, "\n")
}

// ExtractWords extracts individual words from the page
func (p *pdfcpuPage) ExtractWords() []Word {
	return wordsFromChars(p.objects.Chars, defaultXTolerance, defaultYTolerance)
}

// ImageBytes returns the payload of an image stream on this page.
// The payload is the filter-decoded stream content when pdfcpu can
// decode the filter chain, otherwise the raw encoded bytes (e.g. the
// embedded JPEG for DCTDecode images). Either form is stable for a
// given image resource, which is what content hashing requires.
func (p *pdfcpuPage) ImageBytes(objectID string) ([]byte, error) {
	sd, ok := p.streams[objectID]
	if !ok {
		return nil, fmt.Errorf("no image object %q on page %d", objectID, p.pageNumber)
	}

	if len(sd.Content) > 0 {
		return sd.Content, nil
	}
	if err := sd.Decode(); err == nil && len(sd.Content) > 0 {
		return sd.Content, nil
	}
	if len(sd.Raw) > 0 {
		return sd.Raw, nil
	}
	return nil, fmt.Errorf("image object %q has no payload", objectID)
}
