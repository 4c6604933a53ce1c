package images

import (
	"bytes"
	"image"
	"image/color"
	"image/png"
	"testing"

	"github.com/pdftriage/pdftriage/pkg/pdf"
)

// encodePNG renders a small solid-color PNG for use as a payload.
func encodePNG(t *testing.T, c color.Color, w, h int) []byte {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			img.Set(x, y, c)
		}
	}
	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		t.Fatalf("png.Encode() error = %v", err)
	}
	return buf.Bytes()
}

// rasterPage builds a page carrying one raster placement per payload.
func rasterPage(number int, payloads map[string][]byte) *pdf.StaticPage {
	page := &pdf.StaticPage{
		PageNumber: number, PageWidth: 612, PageHeight: 792,
		ImagePayloads: payloads,
	}
	x := 72.0
	for id := range payloads {
		page.Content.Images = append(page.Content.Images, pdf.ImageObject{
			ObjectID: id, X0: x, Y0: 72, X1: x + 100, Y1: 172,
			PixelWidth: 8, PixelHeight: 8,
		})
		x += 120
	}
	return page
}

func TestGroupRepeatedLogo(t *testing.T) {
	logo := encodePNG(t, color.RGBA{R: 200, A: 255}, 8, 8)

	// The same logo stamped on five pages groups to one image.
	var refs []RasterRef
	var payloads [][]byte
	e := NewExtractor()
	for p := 0; p < 5; p++ {
		page := rasterPage(p+1, map[string][]byte{"9": logo})
		r, pl, warns := e.ExtractPage(page, p)
		if len(warns) != 0 {
			t.Fatalf("page %d warnings = %v", p, warns)
		}
		refs = append(refs, r...)
		payloads = append(payloads, pl...)
	}

	groups := Group(refs, payloads)
	if len(groups) != 1 {
		t.Fatalf("Group() = %d groups, want 1", len(groups))
	}
	if got := groups[0].Count(); got != 5 {
		t.Errorf("Count() = %d, want 5", got)
	}
	if groups[0].Representative.PageIndex != 0 {
		t.Errorf("Representative.PageIndex = %d, want 0", groups[0].Representative.PageIndex)
	}
}

func TestGroupDistinctImages(t *testing.T) {
	red := encodePNG(t, color.RGBA{R: 255, A: 255}, 8, 8)
	blue := encodePNG(t, color.RGBA{B: 255, A: 255}, 8, 8)

	e := NewExtractor()
	page := rasterPage(1, map[string][]byte{"3": red, "4": blue})
	refs, payloads, warns := e.ExtractPage(page, 0)
	if len(warns) != 0 {
		t.Fatalf("warnings = %v", warns)
	}

	groups := Group(refs, payloads)
	if len(groups) != 2 {
		t.Fatalf("Group() = %d groups, want 2", len(groups))
	}
	for _, g := range groups {
		if g.Count() != 1 {
			t.Errorf("Count() = %d, want 1", g.Count())
		}
	}
}

func TestCanonicalizeAcrossEncodings(t *testing.T) {
	// The same pixels at different PNG compression levels hash equal.
	img := image.NewRGBA(image.Rect(0, 0, 4, 4))
	for y := 0; y < 4; y++ {
		for x := 0; x < 4; x++ {
			img.Set(x, y, color.RGBA{R: uint8(x * 60), G: uint8(y * 60), A: 255})
		}
	}

	var fast, best bytes.Buffer
	if err := (&png.Encoder{CompressionLevel: png.BestSpeed}).Encode(&fast, img); err != nil {
		t.Fatalf("png.Encode() error = %v", err)
	}
	if err := (&png.Encoder{CompressionLevel: png.BestCompression}).Encode(&best, img); err != nil {
		t.Fatalf("png.Encode() error = %v", err)
	}
	if bytes.Equal(fast.Bytes(), best.Bytes()) {
		t.Skip("encoder produced identical bytes; nothing to distinguish")
	}

	h1, err := ContentHash(Canonicalize(fast.Bytes()))
	if err != nil {
		t.Fatalf("ContentHash() error = %v", err)
	}
	h2, err := ContentHash(Canonicalize(best.Bytes()))
	if err != nil {
		t.Fatalf("ContentHash() error = %v", err)
	}
	if h1 != h2 {
		t.Errorf("hashes differ across encodings: %x vs %x", h1, h2)
	}
}

func TestCanonicalizeUndecodable(t *testing.T) {
	// Payloads no codec understands still group when byte-equal.
	raw := []byte{0x01, 0x02, 0x03, 0x04}

	h1, err := ContentHash(Canonicalize(raw))
	if err != nil {
		t.Fatalf("ContentHash() error = %v", err)
	}
	h2, err := ContentHash(Canonicalize(append([]byte(nil), raw...)))
	if err != nil {
		t.Fatalf("ContentHash() error = %v", err)
	}
	if h1 != h2 {
		t.Errorf("byte-equal payloads hash differently: %x vs %x", h1, h2)
	}
}

func TestExtractPageMissingPayload(t *testing.T) {
	page := &pdf.StaticPage{PageNumber: 1, PageWidth: 612, PageHeight: 792}
	page.Content.Images = []pdf.ImageObject{{ObjectID: "17", X0: 0, Y0: 0, X1: 100, Y1: 100}}

	e := NewExtractor()
	refs, _, warns := e.ExtractPage(page, 0)
	if len(refs) != 0 {
		t.Errorf("refs = %d, want 0", len(refs))
	}
	if len(warns) != 1 {
		t.Fatalf("warnings = %d, want 1", len(warns))
	}
	if warns[0].ObjectID != "17" {
		t.Errorf("warning ObjectID = %q, want 17", warns[0].ObjectID)
	}
}
