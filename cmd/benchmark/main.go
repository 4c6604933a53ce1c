// Command benchmark times each pipeline stage over a PDF corpus.
package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/pdftriage/pdftriage"
	"github.com/pdftriage/pdftriage/pkg/images"
	"github.com/pdftriage/pdftriage/pkg/inspect"
	"github.com/pdftriage/pdftriage/pkg/pdf"
	"github.com/pdftriage/pdftriage/pkg/tables"
)

func main() {
	if len(os.Args) < 2 {
		fmt.Fprintln(os.Stderr, "Usage: benchmark <pdf-file-or-dir>")
		os.Exit(2)
	}

	paths, err := collectPDFs(os.Args[1])
	if err != nil {
		log.Fatalf("collecting corpus: %v", err)
	}
	if len(paths) == 0 {
		log.Fatal("no PDF files found")
	}

	pipeline := pdftriage.New(pdftriage.Config{})

	var totals stageTimes
	var pages int
	for _, path := range paths {
		times, pageCount, err := benchmarkFile(path)
		if err != nil {
			fmt.Printf("%s: error: %v\n", filepath.Base(path), err)
			continue
		}

		// Full concurrent pipeline, for comparison with the
		// sequential per-stage numbers.
		if result, err := pipeline.ProcessDocument(context.Background(), path); err == nil {
			times.pipeline = result.Elapsed
		}

		fmt.Printf("%s: %d pages  open %v  signals %v  tables %v  images %v  pipeline %v\n",
			filepath.Base(path), pageCount,
			times.open, times.signals, times.tables, times.images, times.pipeline)
		totals.add(times)
		pages += pageCount
	}

	total := totals.sum()
	fmt.Printf("\n=== Summary ===\n")
	fmt.Printf("Documents: %d, pages: %d\n", len(paths), pages)
	fmt.Printf("Open: %v  Signals: %v  Tables: %v  Images: %v  Pipeline: %v\n",
		totals.open, totals.signals, totals.tables, totals.images, totals.pipeline)
	if total > 0 {
		fmt.Printf("Pages/sec: %.2f\n", float64(pages)/total.Seconds())
	}
}

type stageTimes struct {
	open, signals, tables, images, pipeline time.Duration
}

func (s *stageTimes) add(o stageTimes) {
	s.open += o.open
	s.signals += o.signals
	s.tables += o.tables
	s.images += o.images
	s.pipeline += o.pipeline
}

func (s stageTimes) sum() time.Duration {
	return s.open + s.signals + s.tables + s.images
}

// benchmarkFile times each stage against one document. Stages run
// sequentially here so the numbers isolate per-stage cost; the real
// pipeline runs them on a worker pool.
func benchmarkFile(path string) (stageTimes, int, error) {
	var times stageTimes

	start := time.Now()
	doc, err := pdf.Open(path)
	if err != nil {
		return times, 0, err
	}
	defer doc.Close()
	times.open = time.Since(start)

	pageList := doc.GetPages()

	start = time.Now()
	signals := make([]inspect.PageSignal, 0, len(pageList))
	for _, page := range pageList {
		signals = append(signals, inspect.ExtractSignal(page))
	}
	times.signals = time.Since(start)

	inspector := inspect.NewInspector(inspect.Config{})
	classification, err := inspector.ClassifySignals(signals)
	if err != nil {
		return times, len(pageList), err
	}

	if classification.Label == inspect.Native {
		start = time.Now()
		extractor := tables.NewExtractor(tables.Config{})
		merger := tables.NewMerger(tables.MergeConfig{})
		var regions []tables.Region
		for i, page := range pageList {
			regions = append(regions, extractor.ExtractPage(page, i)...)
		}
		merger.Merge(regions)
		times.tables = time.Since(start)
	}

	start = time.Now()
	rasters := images.NewExtractor()
	var refs []images.RasterRef
	var payloads [][]byte
	for i, page := range pageList {
		r, p, _ := rasters.ExtractPage(page, i)
		refs = append(refs, r...)
		payloads = append(payloads, p...)
	}
	images.Group(refs, payloads)
	times.images = time.Since(start)

	return times, len(pageList), nil
}

// collectPDFs expands a file or directory argument into PDF paths.
func collectPDFs(root string) ([]string, error) {
	info, err := os.Stat(root)
	if err != nil {
		return nil, err
	}
	if !info.IsDir() {
		return []string{root}, nil
	}

	var paths []string
	err = filepath.WalkDir(root, func(path string, d os.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if !d.IsDir() && strings.EqualFold(filepath.Ext(path), ".pdf") {
			paths = append(paths, path)
		}
		return nil
	})
	return paths, err
}
