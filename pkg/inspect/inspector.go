package inspect

import (
	"errors"
	"fmt"

	"github.com/pdftriage/pdftriage/pkg/pdf"
)

// ErrNoPages is returned when a document exposes zero pages.
var ErrNoPages = errors.New("inspect: document has no pages")

// Label is the per-page and per-document classification outcome.
type Label string

const (
	// Native marks pages authored digitally, with an extractable text layer.
	Native Label = "NATIVE"
	// Scanned marks pages that are raster captures of paper documents.
	Scanned Label = "SCANNED"
)

// Config holds the classification thresholds. Zero values are
// replaced with defaults by NewInspector.
type Config struct {
	// TextThreshold is the glyph count above which a page is
	// considered native regardless of other signals.
	TextThreshold int
	// LowVectorCoverage is the path coverage ratio below which a page
	// is considered vector-sparse.
	LowVectorCoverage float64
	// FullPageImageRatio is the fraction of page area a single raster
	// must cover to count as a full-page scan.
	FullPageImageRatio float64
}

func (c *Config) defaults() {
	if c.TextThreshold == 0 {
		c.TextThreshold = 40
	}
	if c.LowVectorCoverage == 0 {
		c.LowVectorCoverage = 0.05
	}
	if c.FullPageImageRatio == 0 {
		c.FullPageImageRatio = 0.90
	}
}

// Classification is the document-level result. Confidence is the
// fraction of pages that voted for the winning label.
type Classification struct {
	Label      Label
	Confidence float64
	PageLabels []Label
	Signals    []PageSignal
}

// Inspector classifies documents page by page and aggregates the page
// votes into a document label by majority.
type Inspector struct {
	cfg Config
}

// NewInspector returns an inspector with cfg, filling in defaults for
// zero-valued thresholds.
func NewInspector(cfg Config) *Inspector {
	cfg.defaults()
	return &Inspector{cfg: cfg}
}

// ClassifyPage labels a single page from its signal record.
//
// A page is native when it has enough extractable glyphs, or when it
// has any text at all with nearly no vector noise (sparse title pages,
// separators). A page is scanned when it has essentially no text and a
// raster covering most of the page. Pages that are empty of everything
// also label as scanned, so that OCR is the safe downstream choice.
func (in *Inspector) ClassifyPage(signal PageSignal) Label {
	if signal.TextCharCount > in.cfg.TextThreshold {
		return Native
	}
	if signal.TextCharCount > 0 && signal.VectorCoverageRatio < in.cfg.LowVectorCoverage {
		return Native
	}
	if signal.dominantRasterRatio() >= in.cfg.FullPageImageRatio {
		return Scanned
	}
	if signal.TextCharCount > 0 {
		return Native
	}
	return Scanned
}

// Classify walks every page of doc, labels each one, and aggregates
// by majority vote. Native wins ties, since a partially extractable
// document is still worth extracting.
func (in *Inspector) Classify(doc pdf.Document) (Classification, error) {
	pages := doc.GetPages()
	signals := make([]PageSignal, 0, len(pages))
	for _, page := range pages {
		signals = append(signals, ExtractSignal(page))
	}
	return in.ClassifySignals(signals)
}

// ClassifySignals aggregates precomputed page signals, for callers
// that already extracted them (pipelines running signal extraction on
// a worker pool).
func (in *Inspector) ClassifySignals(signals []PageSignal) (Classification, error) {
	if len(signals) == 0 {
		return Classification{}, ErrNoPages
	}

	result := Classification{
		PageLabels: make([]Label, 0, len(signals)),
		Signals:    signals,
	}

	nativeVotes := 0
	for _, signal := range signals {
		label := in.ClassifyPage(signal)
		if label == Native {
			nativeVotes++
		}
		result.PageLabels = append(result.PageLabels, label)
	}

	nativeFraction := float64(nativeVotes) / float64(len(signals))
	if nativeFraction >= 0.5 {
		result.Label = Native
		result.Confidence = nativeFraction
	} else {
		result.Label = Scanned
		result.Confidence = 1 - nativeFraction
	}

	return result, nil
}

// Reasoning renders a short human-readable explanation of a document
// classification, one clause per distinct evidence source.
func Reasoning(c Classification) string {
	native := 0
	for _, l := range c.PageLabels {
		if l == Native {
			native++
		}
	}
	total := len(c.PageLabels)
	if c.Label == Native {
		return fmt.Sprintf("%d of %d pages carry an extractable text layer", native, total)
	}
	return fmt.Sprintf("%d of %d pages are full-page rasters without a text layer", total-native, total)
}
