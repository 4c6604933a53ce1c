package pdftriage

import (
	"bytes"
	"context"
	"errors"
	"image"
	"image/color"
	"image/png"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/pdftriage/pdftriage/pkg/pdf"
)

func quietConfig() Config {
	return Config{Logger: slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelError}))}
}

// addText writes text as glyphs onto page starting at (x, y).
func addText(page *pdf.StaticPage, text string, x, y float64) {
	for _, r := range text {
		page.Content.Chars = append(page.Content.Chars, pdf.CharObject{
			Text: string(r), FontSize: 10,
			X0: x, Y0: y, X1: x + 5, Y1: y + 10,
			Width: 5, Height: 10,
		})
		x += 5
	}
}

// addRuledTable draws a bordered grid with the given cell text.
func addRuledTable(page *pdf.StaticPage, rowEdges, colEdges []float64, cells [][]string) {
	for _, y := range rowEdges {
		page.Content.Lines = append(page.Content.Lines, pdf.LineObject{
			X0: colEdges[0], Y0: y, X1: colEdges[len(colEdges)-1], Y1: y, Width: 0.5,
		})
	}
	for _, x := range colEdges {
		page.Content.Lines = append(page.Content.Lines, pdf.LineObject{
			X0: x, Y0: rowEdges[0], X1: x, Y1: rowEdges[len(rowEdges)-1], Width: 0.5,
		})
	}
	for i, row := range cells {
		for j, text := range row {
			addText(page, text, colEdges[j]+4, rowEdges[i]+4)
		}
	}
}

func logoPNG(t *testing.T) []byte {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, 8, 8))
	for y := 0; y < 8; y++ {
		for x := 0; x < 8; x++ {
			img.Set(x, y, color.RGBA{R: 40, G: 90, B: 200, A: 255})
		}
	}
	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		t.Fatalf("png.Encode() error = %v", err)
	}
	return buf.Bytes()
}

// addLogo places the payload as a small raster in the page corner.
func addLogo(page *pdf.StaticPage, payload []byte) {
	if page.ImagePayloads == nil {
		page.ImagePayloads = map[string][]byte{}
	}
	page.ImagePayloads["9"] = payload
	page.Content.Images = append(page.Content.Images, pdf.ImageObject{
		ObjectID: "9", X0: 500, Y0: 20, X1: 580, Y1: 100,
		PixelWidth: 8, PixelHeight: 8,
	})
}

func proseLine(i int) string {
	lines := []string{
		"The quarterly figures improved across every region.",
		"Procurement costs held steady despite volume growth.",
		"The committee approved the revised delivery schedule.",
	}
	return lines[i%len(lines)]
}

// addFurniture places a running header and a page-number footer, the
// way virtually every paginated document decorates its pages.
func addFurniture(page *pdf.StaticPage, footer string) {
	addText(page, "ACME Components Quarterly", 180, 8)
	addText(page, footer, 270, 782)
}

// nativeDocument builds a three-page document with prose on every
// page, a table split across pages two and three, running headers
// and page-number footers throughout, and the same logo on all pages.
func nativeDocument(t *testing.T) *pdf.StaticDocument {
	t.Helper()
	logo := logoPNG(t)
	doc := &pdf.StaticDocument{}

	p1 := &pdf.StaticPage{PageNumber: 1, PageWidth: 612, PageHeight: 792}
	for i := 0; i < 6; i++ {
		addText(p1, proseLine(i), 72, 120+float64(i)*14)
	}
	addFurniture(p1, "Page 1 of 3")
	addLogo(p1, logo)

	p2 := &pdf.StaticPage{PageNumber: 2, PageWidth: 612, PageHeight: 792}
	addRuledTable(p2,
		[]float64{660, 700, 740, 780},
		[]float64{72, 250, 430},
		[][]string{{"Item", "Qty"}, {"Bolt", "12"}, {"Nut", "30"}},
	)
	addFurniture(p2, "Page 2 of 3")
	addLogo(p2, logo)

	p3 := &pdf.StaticPage{PageNumber: 3, PageWidth: 612, PageHeight: 792}
	addRuledTable(p3,
		[]float64{20, 60, 100},
		[]float64{72, 250, 430},
		[][]string{{"Washer", "55"}, {"Screw", "80"}},
	)
	for i := 0; i < 4; i++ {
		addText(p3, proseLine(i), 72, 300+float64(i)*14)
	}
	addFurniture(p3, "Page 3 of 3")
	addLogo(p3, logo)

	doc.StaticPages = []*pdf.StaticPage{p1, p2, p3}
	return doc
}

func scannedDocument() *pdf.StaticDocument {
	doc := &pdf.StaticDocument{}
	for i := 1; i <= 3; i++ {
		doc.StaticPages = append(doc.StaticPages, &pdf.StaticPage{
			PageNumber: i, PageWidth: 612, PageHeight: 792,
			Content: pdf.Objects{Images: []pdf.ImageObject{{
				ObjectID: "4", X0: 0, Y0: 0, X1: 612, Y1: 792,
				PixelWidth: 2550, PixelHeight: 3300,
			}}},
			ImagePayloads: map[string][]byte{"4": []byte("scan-page-payload")},
		})
	}
	return doc
}

func TestProcessNativeDocument(t *testing.T) {
	p := New(quietConfig())
	result, err := p.Process(context.Background(), nativeDocument(t), "native.pdf")
	if err != nil {
		t.Fatalf("Process() error = %v", err)
	}

	if result.Label != Native {
		t.Errorf("Label = %v, want %v", result.Label, Native)
	}
	if result.Confidence != 1.0 {
		t.Errorf("Confidence = %v, want 1.0", result.Confidence)
	}
	if result.TableCount != 1 {
		t.Fatalf("TableCount = %d, want 1 (fragments stitched)", result.TableCount)
	}

	table := result.Tables[0]
	if table.Rows() != 5 {
		t.Errorf("table rows = %d, want 5", table.Rows())
	}
	if table.StartPage != 1 || table.EndPage != 2 {
		t.Errorf("table span = [%d, %d], want [1, 2]", table.StartPage, table.EndPage)
	}

	if result.ImageCount != 1 {
		t.Errorf("ImageCount = %d, want 1 (logo deduplicated)", result.ImageCount)
	}
	if got := result.Images[0].Count(); got != 3 {
		t.Errorf("logo occurrences = %d, want 3", got)
	}
	if result.ParagraphCount == 0 {
		t.Error("ParagraphCount = 0, want > 0")
	}
	if result.Incomplete {
		t.Error("Incomplete = true, want false")
	}
	if result.Reasoning == "" {
		t.Error("Reasoning is empty")
	}
}

func TestProcessScannedDocument(t *testing.T) {
	p := New(quietConfig())
	result, err := p.Process(context.Background(), scannedDocument(), "scan.pdf")
	if err != nil {
		t.Fatalf("Process() error = %v", err)
	}

	if result.Label != Scanned {
		t.Errorf("Label = %v, want %v", result.Label, Scanned)
	}
	if result.TableCount != 0 {
		t.Errorf("TableCount = %d, want 0 (no table pass on scans)", result.TableCount)
	}
	if result.ImageCount != 1 {
		t.Errorf("ImageCount = %d, want 1", result.ImageCount)
	}
	if result.ParagraphCount != 0 {
		t.Errorf("ParagraphCount = %d, want 0", result.ParagraphCount)
	}
}

// brokenPageDocument fails GetPage for one page and serves the rest.
type brokenPageDocument struct {
	*pdf.StaticDocument
	broken int
}

func (d *brokenPageDocument) GetPage(index int) (pdf.Page, error) {
	if index == d.broken {
		return nil, errors.New("corrupt page dictionary")
	}
	return d.StaticDocument.GetPage(index)
}

func TestProcessToleratesBrokenPage(t *testing.T) {
	doc := &brokenPageDocument{StaticDocument: nativeDocument(t), broken: 0}

	p := New(quietConfig())
	result, err := p.Process(context.Background(), doc, "native.pdf")
	if err != nil {
		t.Fatalf("Process() error = %v", err)
	}

	if result.Label != Native {
		t.Errorf("Label = %v, want %v (unreadable minority page)", result.Label, Native)
	}
	if result.Incomplete {
		t.Error("Incomplete = true, want false")
	}
	if result.TableCount != 1 {
		t.Errorf("TableCount = %d, want 1", result.TableCount)
	}

	var opened bool
	for _, w := range result.Warnings {
		if w.Stage == "open" && w.Page == 1 {
			opened = true
		}
	}
	if !opened {
		t.Errorf("Warnings = %+v, want an open-stage warning for page 1", result.Warnings)
	}
}

func TestProcessEmptyDocument(t *testing.T) {
	p := New(quietConfig())
	_, err := p.Process(context.Background(), &pdf.StaticDocument{}, "empty.pdf")
	if !errors.Is(err, ErrInvalidDocument) {
		t.Errorf("Process() error = %v, want ErrInvalidDocument", err)
	}
}

func TestProcessExpiredContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	p := New(quietConfig())
	result, err := p.Process(ctx, nativeDocument(t), "native.pdf")
	if err != nil {
		t.Fatalf("Process() error = %v, want partial result", err)
	}
	if !result.Incomplete {
		t.Error("Incomplete = false, want true on expired context")
	}
}

func TestProcessDocumentRejectsNonPDF(t *testing.T) {
	path := filepath.Join(t.TempDir(), "notes.txt")
	if err := os.WriteFile(path, []byte("just some text"), 0o644); err != nil {
		t.Fatalf("WriteFile() error = %v", err)
	}

	p := New(quietConfig())
	_, err := p.ProcessDocument(context.Background(), path)
	if !errors.Is(err, ErrInvalidInputType) {
		t.Errorf("ProcessDocument() error = %v, want ErrInvalidInputType", err)
	}
	if !strings.Contains(err.Error(), "application/octet-stream") {
		t.Errorf("error %q does not name the detected MIME type", err)
	}
}

func TestProcessDocumentRejectsOversized(t *testing.T) {
	path := filepath.Join(t.TempDir(), "big.pdf")
	if err := os.WriteFile(path, []byte("%PDF-1.7 pretend body"), 0o644); err != nil {
		t.Fatalf("WriteFile() error = %v", err)
	}

	cfg := quietConfig()
	cfg.MaxFileSize = 4
	p := New(cfg)
	_, err := p.ProcessDocument(context.Background(), path)
	if !errors.Is(err, ErrInvalidDocument) {
		t.Errorf("ProcessDocument() error = %v, want ErrInvalidDocument", err)
	}
}

func TestProcessRecordsElapsed(t *testing.T) {
	p := New(quietConfig())
	result, err := p.Process(context.Background(), nativeDocument(t), "native.pdf")
	if err != nil {
		t.Fatalf("Process() error = %v", err)
	}
	if result.Elapsed <= 0 {
		t.Error("Elapsed not recorded")
	}
}

func TestCountParagraphs(t *testing.T) {
	page := &pdf.StaticPage{PageNumber: 1, PageWidth: 612, PageHeight: 792}
	// Two paragraphs of three lines each, separated by a wide gap.
	for i := 0; i < 3; i++ {
		addText(page, proseLine(i), 72, 120+float64(i)*14)
	}
	for i := 0; i < 3; i++ {
		addText(page, proseLine(i), 72, 300+float64(i)*14)
	}
	// Header and footer furniture that must not count.
	addText(page, "CONFIDENTIAL DRAFT COPY", 72, 20)
	addText(page, "Page 1 of 9", 72, 770)

	got := countParagraphs(page, 0.08, 0.92, 10)
	if got != 2 {
		t.Errorf("countParagraphs() = %d, want 2", got)
	}
}

func TestHasMathNotation(t *testing.T) {
	tests := []struct {
		name string
		text string
		font string
		want bool
	}{
		{"prose", "plain running text", "Helvetica", false},
		{"tex math font", "x", "CMMI10", true},
		{"symbol font", "j", "Symbol", true},
		{"symbol glyphs in body font", "area ≈ πr²", "Times", true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			page := &pdf.StaticPage{PageNumber: 1, PageWidth: 612, PageHeight: 792}
			x := 72.0
			for _, r := range tt.text {
				page.Content.Chars = append(page.Content.Chars, pdf.CharObject{
					Text: string(r), Font: tt.font, FontSize: 10,
					X0: x, Y0: 120, X1: x + 5, Y1: 130,
				})
				x += 5
			}
			if got := hasMathNotation(page); got != tt.want {
				t.Errorf("hasMathNotation() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestProcessCountsMathPages(t *testing.T) {
	doc := nativeDocument(t)
	p := New(quietConfig())

	result, err := p.Process(context.Background(), doc, "native.pdf")
	if err != nil {
		t.Fatalf("Process() error = %v", err)
	}
	if result.MathPageCount != 0 {
		t.Fatalf("MathPageCount = %d, want 0 without formulas", result.MathPageCount)
	}

	doc.StaticPages[0].Content.Chars = append(doc.StaticPages[0].Content.Chars, pdf.CharObject{
		Text: "α", Font: "CMMI10", FontSize: 10, X0: 72, Y0: 420, X1: 77, Y1: 430,
	})
	result, err = p.Process(context.Background(), doc, "native.pdf")
	if err != nil {
		t.Fatalf("Process() error = %v", err)
	}
	if result.MathPageCount != 1 {
		t.Errorf("MathPageCount = %d, want 1", result.MathPageCount)
	}
}

func TestLoadConfig(t *testing.T) {
	path := filepath.Join(t.TempDir(), "pdftriage.yaml")
	body := []byte("text_threshold: 25\nedge_margin: 0.15\nworkers: 2\ntimeout: 30s\n")
	if err := os.WriteFile(path, body, 0o644); err != nil {
		t.Fatalf("WriteFile() error = %v", err)
	}

	cfg, err := LoadConfig(path)
	if err != nil {
		t.Fatalf("LoadConfig() error = %v", err)
	}
	if cfg.TextThreshold != 25 {
		t.Errorf("TextThreshold = %d, want 25", cfg.TextThreshold)
	}
	if cfg.EdgeMargin != 0.15 {
		t.Errorf("EdgeMargin = %v, want 0.15", cfg.EdgeMargin)
	}
	if cfg.Timeout != 30*time.Second {
		t.Errorf("Timeout = %v, want 30s", cfg.Timeout)
	}

	cfg.defaults()
	if cfg.TextThreshold != 25 {
		t.Errorf("defaults() overwrote TextThreshold: %d", cfg.TextThreshold)
	}
	if cfg.ColumnTolerance != 0.02 {
		t.Errorf("ColumnTolerance = %v, want default 0.02", cfg.ColumnTolerance)
	}
}
