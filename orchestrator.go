package pdftriage

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/pdftriage/pdftriage/pkg/bench"
	"github.com/pdftriage/pdftriage/pkg/filetype"
	"github.com/pdftriage/pdftriage/pkg/images"
	"github.com/pdftriage/pdftriage/pkg/inspect"
	"github.com/pdftriage/pdftriage/pkg/pdf"
	"github.com/pdftriage/pdftriage/pkg/tables"
)

// sniffLen is how much of the file the type sniffer sees.
const sniffLen = 1024

// Pipeline runs classification and extraction over PDF documents.
// A Pipeline is safe for concurrent use; all state is configuration.
type Pipeline struct {
	cfg       Config
	log       *slog.Logger
	sniffer   filetype.Classifier
	inspector *inspect.Inspector
	regions   *tables.Extractor
	merger    *tables.Merger
	rasters   *images.Extractor
}

// New builds a pipeline from cfg, defaulting zero-valued fields.
func New(cfg Config) *Pipeline {
	cfg.defaults()
	return &Pipeline{
		cfg:     cfg,
		log:     cfg.Logger,
		sniffer: filetype.Sniffer{},
		inspector: inspect.NewInspector(inspect.Config{
			TextThreshold:      cfg.TextThreshold,
			LowVectorCoverage:  cfg.LowVectorCoverage,
			FullPageImageRatio: cfg.FullPageImageRatio,
		}),
		regions: tables.NewExtractor(tables.Config{
			MinRows:    cfg.MinTableRows,
			HeaderZone: cfg.HeaderZone,
			FooterZone: cfg.FooterZone,
		}),
		merger: tables.NewMerger(tables.MergeConfig{
			ColumnTolerance: cfg.ColumnTolerance,
			EdgeMargin:      cfg.EdgeMargin,
		}),
		rasters: images.NewExtractor(),
	}
}

// ProcessDocument classifies and extracts the document at path.
// Non-PDF inputs return ErrInvalidInputType; unreadable or empty PDFs
// return ErrInvalidDocument. When the configured timeout expires
// mid-run the partial result is returned with Incomplete set, not an
// error.
func (p *Pipeline) ProcessDocument(ctx context.Context, path string) (*Result, error) {
	info, err := os.Stat(path)
	if err != nil {
		return nil, fmt.Errorf("stat %s: %w", path, err)
	}
	if info.Size() > p.cfg.MaxFileSize {
		return nil, fmt.Errorf("%w: %s is %d bytes, limit %d",
			ErrInvalidDocument, path, info.Size(), p.cfg.MaxFileSize)
	}

	head, err := readHead(path, sniffLen)
	if err != nil {
		return nil, fmt.Errorf("reading %s: %w", path, err)
	}
	if label := p.sniffer.Classify(head); label != filetype.LabelPDF {
		return nil, fmt.Errorf("%w: %s detected as %s (%s)",
			ErrInvalidInputType, path, label, label.MIME())
	}

	doc, err := pdf.Open(path)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidDocument, err)
	}
	defer doc.Close()

	return p.Process(ctx, doc, path)
}

// Process runs the pipeline over an already-open document. It exists
// separately from ProcessDocument so callers can feed documents from
// other sources, including in-memory ones.
func (p *Pipeline) Process(ctx context.Context, doc pdf.Document, name string) (*Result, error) {
	start := time.Now()
	if p.cfg.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, p.cfg.Timeout)
		defer cancel()
	}

	pageCount := doc.PageCount()
	if pageCount == 0 {
		return nil, fmt.Errorf("%w: %s has no pages", ErrInvalidDocument, name)
	}

	result := &Result{File: name, PageCount: pageCount}

	pages := make([]pdf.Page, pageCount)
	for i := 0; i < pageCount; i++ {
		page, err := doc.GetPage(i)
		if err != nil {
			result.Warnings = append(result.Warnings, Warning{
				Page: i + 1, Stage: "open", Message: err.Error(),
			})
			continue
		}
		pages[i] = page
	}

	type pageOut struct {
		ok         bool
		signal     inspect.PageSignal
		regions    []tables.Region
		refs       []images.RasterRef
		payloads   [][]byte
		paragraphs int
		mathPage   bool
		warnings   []Warning
	}
	outs := make([]pageOut, pageCount)

	// Signal pass. Workers stop picking up pages once the deadline
	// hits; pages they never reached stay degraded.
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(p.cfg.Workers)
	for i, page := range pages {
		if page == nil {
			continue
		}
		g.Go(func() error {
			if gctx.Err() != nil {
				return nil
			}
			outs[i].signal = inspect.ExtractSignal(page)
			outs[i].ok = true
			return nil
		})
	}
	g.Wait()

	var signals []inspect.PageSignal
	for i := range outs {
		if outs[i].ok {
			signals = append(signals, outs[i].signal)
		}
	}
	classification, err := p.inspector.ClassifySignals(signals)
	if err != nil {
		if ctx.Err() != nil {
			result.Incomplete = true
			result.Elapsed = time.Since(start)
			return result, nil
		}
		return nil, fmt.Errorf("%w: %s: %v", ErrInvalidDocument, name, err)
	}

	result.Classification = classification
	result.Label = classification.Label
	result.Confidence = classification.Confidence

	// Extraction pass: table regions and paragraphs on native
	// documents, raster placements always.
	native := classification.Label == inspect.Native
	g2, gctx2 := errgroup.WithContext(ctx)
	g2.SetLimit(p.cfg.Workers)
	for i, page := range pages {
		if page == nil || !outs[i].ok {
			continue
		}
		g2.Go(func() error {
			if gctx2.Err() != nil {
				return nil
			}
			if native {
				outs[i].regions = p.regions.ExtractPage(page, i)
				outs[i].paragraphs = countParagraphs(page, p.cfg.HeaderZone, p.cfg.FooterZone, p.cfg.MinParagraphLen)
				outs[i].mathPage = hasMathNotation(page)
			}
			refs, payloads, warns := p.rasters.ExtractPage(page, i)
			outs[i].refs = refs
			outs[i].payloads = payloads
			for _, w := range warns {
				outs[i].warnings = append(outs[i].warnings, Warning{
					Page: w.PageIndex + 1, Stage: "images", Message: w.Message,
				})
			}
			return nil
		})
	}
	g2.Wait()

	// Stitch and group sequentially, in page order.
	var allRegions []tables.Region
	var allRefs []images.RasterRef
	var allPayloads [][]byte
	for i := range outs {
		allRegions = append(allRegions, outs[i].regions...)
		allRefs = append(allRefs, outs[i].refs...)
		allPayloads = append(allPayloads, outs[i].payloads...)
		result.ParagraphCount += outs[i].paragraphs
		if outs[i].mathPage {
			result.MathPageCount++
		}
		result.Warnings = append(result.Warnings, outs[i].warnings...)
	}

	result.Tables = p.merger.Merge(allRegions)
	result.TableCount = len(result.Tables)
	if len(allRegions) > 0 {
		p.log.Debug("stitched table regions",
			"file", name, "regions", len(allRegions), "tables", result.TableCount)
	}

	result.Images = images.Group(allRefs, allPayloads)
	result.ImageCount = len(result.Images)

	result.Incomplete = ctx.Err() != nil
	result.Reasoning = p.reasoning(result)
	result.Elapsed = time.Since(start)

	if len(result.Warnings) > 0 {
		p.log.Warn("document processed with degraded pages",
			"file", name, "warnings", len(result.Warnings))
	}

	return result, nil
}

// BenchmarkDocument processes the document and scores the output
// against its ground-truth fixture.
func (p *Pipeline) BenchmarkDocument(ctx context.Context, path string, fixture bench.Fixture) (*Result, bench.Result, error) {
	result, err := p.ProcessDocument(ctx, path)
	if err != nil {
		return nil, bench.Result{}, err
	}

	comparator := bench.NewComparator(p.cfg.CellMatchFraction)
	score := comparator.Compare(result.Tables, result.ImageCount, fixture)
	score.Latency = result.Elapsed
	return result, score, nil
}

// reasoning renders the one-line explanation attached to a result.
func (p *Pipeline) reasoning(r *Result) string {
	base := inspect.Reasoning(r.Classification)
	if r.Label == inspect.Native {
		return fmt.Sprintf("%s; %d tables, %d distinct images, %d paragraphs",
			base, r.TableCount, r.ImageCount, r.ParagraphCount)
	}
	return fmt.Sprintf("%s; %d distinct images", base, r.ImageCount)
}

// readHead reads the first n bytes of the file at path.
func readHead(path string, n int) ([]byte, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	buf := make([]byte, n)
	read, err := io.ReadFull(f, buf)
	if err == io.ErrUnexpectedEOF || err == io.EOF {
		err = nil
	}
	return buf[:read], err
}
