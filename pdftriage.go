// Package pdftriage classifies PDF documents as digitally authored or
// scanned, extracts tables with cross-page stitching and images with
// content-based deduplication, and scores extraction output against
// ground-truth fixtures.
//
// The simplest entry point processes one file with defaults:
//
//	result, err := pdftriage.ProcessDocument(ctx, "report.pdf")
//
// For repeated use, build a Pipeline once with New and reuse it; a
// Pipeline is safe for concurrent calls.
package pdftriage

import (
	"context"

	"github.com/pdftriage/pdftriage/pkg/inspect"
)

// Classification re-exports the document classification outcome.
type Classification = inspect.Classification

// Label re-exports the classification label type.
type Label = inspect.Label

// Classification labels.
const (
	Native  = inspect.Native
	Scanned = inspect.Scanned
)

// ProcessDocument processes one document with default configuration.
func ProcessDocument(ctx context.Context, path string) (*Result, error) {
	return New(Config{}).ProcessDocument(ctx, path)
}
