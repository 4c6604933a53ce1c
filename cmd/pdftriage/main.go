// Command pdftriage classifies a PDF and reports its extracted
// structure. Subcommands:
//
//	pdftriage classify <file.pdf>
//	pdftriage extract  [-json] [-images-dir DIR] <file.pdf>
//	pdftriage bench    -fixtures manifest.json <file.pdf>...
package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"log"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/pdftriage/pdftriage"
	"github.com/pdftriage/pdftriage/pkg/bench"
)

func main() {
	if len(os.Args) < 2 {
		usage()
		os.Exit(2)
	}

	switch os.Args[1] {
	case "classify":
		runClassify(os.Args[2:])
	case "extract":
		runExtract(os.Args[2:])
	case "bench":
		runBench(os.Args[2:])
	default:
		usage()
		os.Exit(2)
	}
}

func usage() {
	fmt.Fprintln(os.Stderr, "Usage: pdftriage <classify|extract|bench> [flags] <file.pdf>...")
}

// newPipeline builds a pipeline from shared flags.
func newPipeline(configPath string, timeout time.Duration, verbose bool) *pdftriage.Pipeline {
	var cfg pdftriage.Config
	if configPath != "" {
		loaded, err := pdftriage.LoadConfig(configPath)
		if err != nil {
			log.Fatalf("loading config: %v", err)
		}
		cfg = loaded
	}
	if timeout > 0 {
		cfg.Timeout = timeout
	}
	level := slog.LevelWarn
	if verbose {
		level = slog.LevelDebug
	}
	cfg.Logger = slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level}))
	return pdftriage.New(cfg)
}

func runClassify(args []string) {
	fs := flag.NewFlagSet("classify", flag.ExitOnError)
	configPath := fs.String("config", "", "YAML config file")
	timeout := fs.Duration("timeout", 0, "processing deadline per document")
	verbose := fs.Bool("v", false, "debug logging")
	fs.Parse(args)

	if fs.NArg() != 1 {
		fmt.Fprintln(os.Stderr, "Usage: pdftriage classify [flags] <file.pdf>")
		os.Exit(2)
	}

	p := newPipeline(*configPath, *timeout, *verbose)
	result, err := p.ProcessDocument(context.Background(), fs.Arg(0))
	if err != nil {
		log.Fatalf("processing %s: %v", fs.Arg(0), err)
	}

	fmt.Printf("%s: %s (confidence %.2f)\n", result.File, result.Label, result.Confidence)
	fmt.Printf("  %s\n", result.Reasoning)
	if result.Incomplete {
		fmt.Println("  note: deadline expired, result is partial")
	}
}

func runExtract(args []string) {
	fs := flag.NewFlagSet("extract", flag.ExitOnError)
	configPath := fs.String("config", "", "YAML config file")
	timeout := fs.Duration("timeout", 0, "processing deadline per document")
	verbose := fs.Bool("v", false, "debug logging")
	asJSON := fs.Bool("json", false, "emit the full result as JSON")
	imagesDir := fs.String("images-dir", "", "write distinct image payloads into this directory")
	fs.Parse(args)

	if fs.NArg() != 1 {
		fmt.Fprintln(os.Stderr, "Usage: pdftriage extract [flags] <file.pdf>")
		os.Exit(2)
	}

	p := newPipeline(*configPath, *timeout, *verbose)
	result, err := p.ProcessDocument(context.Background(), fs.Arg(0))
	if err != nil {
		log.Fatalf("processing %s: %v", fs.Arg(0), err)
	}

	if *imagesDir != "" {
		if err := writeImages(result, *imagesDir); err != nil {
			log.Fatalf("writing images: %v", err)
		}
	}

	if *asJSON {
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		if err := enc.Encode(result); err != nil {
			log.Fatalf("encoding result: %v", err)
		}
		return
	}

	fmt.Printf("%s: %s, %d pages, %d tables, %d distinct images, %d paragraphs, %d math pages (%.0fms)\n",
		result.File, result.Label, result.PageCount,
		result.TableCount, result.ImageCount, result.ParagraphCount,
		result.MathPageCount,
		float64(result.Elapsed.Microseconds())/1000)

	for i, table := range result.Tables {
		fmt.Printf("\nTable %d: pages %d-%d, %d rows x %d cols\n",
			i+1, table.StartPage+1, table.EndPage+1, table.Rows(), table.Columns())
		for _, row := range table.Grid {
			fmt.Printf("  %v\n", row)
		}
	}

	for i, img := range result.Images {
		fmt.Printf("Image %d: object %s, first on page %d, %d occurrence(s)\n",
			i+1, img.Representative.ObjectID, img.Representative.PageIndex+1, img.Count())
	}

	for _, w := range result.Warnings {
		fmt.Printf("warning: page %d [%s]: %s\n", w.Page, w.Stage, w.Message)
	}
}

// writeImages dumps each distinct image's canonical payload to dir.
func writeImages(result *pdftriage.Result, dir string) error {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return err
	}
	for _, img := range result.Images {
		name := fmt.Sprintf("p%d-obj%s.bin", img.Representative.PageIndex+1, img.Representative.ObjectID)
		if err := os.WriteFile(filepath.Join(dir, name), img.CanonicalBytes, 0o644); err != nil {
			return err
		}
	}
	return nil
}

func runBench(args []string) {
	fs := flag.NewFlagSet("bench", flag.ExitOnError)
	configPath := fs.String("config", "", "YAML config file")
	timeout := fs.Duration("timeout", 0, "processing deadline per document")
	verbose := fs.Bool("v", false, "debug logging")
	fixtures := fs.String("fixtures", "", "ground-truth manifest (JSON)")
	fs.Parse(args)

	if *fixtures == "" || fs.NArg() == 0 {
		fmt.Fprintln(os.Stderr, "Usage: pdftriage bench -fixtures manifest.json <file.pdf>...")
		os.Exit(2)
	}

	manifest, err := bench.LoadManifest(*fixtures)
	if err != nil {
		log.Fatalf("loading fixtures: %v", err)
	}

	p := newPipeline(*configPath, *timeout, *verbose)

	var docs int
	var tablePrecision, tableRecall, imageRecall float64
	for _, path := range fs.Args() {
		fixture, ok := manifest.Get(path)
		if !ok {
			fmt.Printf("%s: no fixture, skipped\n", filepath.Base(path))
			continue
		}

		result, score, err := p.BenchmarkDocument(context.Background(), path, fixture)
		if err != nil {
			fmt.Printf("%s: error: %v\n", filepath.Base(path), err)
			continue
		}

		labelNote := ""
		if fixture.ExpectedLabel != "" && fixture.ExpectedLabel != string(result.Label) {
			labelNote = fmt.Sprintf("  LABEL MISMATCH (want %s)", fixture.ExpectedLabel)
		}
		fmt.Printf("%s: %s  tables P %.2f / R %.2f  images P %.2f / R %.2f  %v%s\n",
			filepath.Base(path), result.Label,
			score.TablePrecision, score.TableRecall,
			score.ImagePrecision, score.ImageRecall,
			score.Latency.Round(time.Millisecond), labelNote)

		docs++
		tablePrecision += score.TablePrecision
		tableRecall += score.TableRecall
		imageRecall += score.ImageRecall
	}

	if docs > 1 {
		fmt.Printf("\n%d documents: mean table P %.2f / R %.2f, mean image R %.2f\n",
			docs, tablePrecision/float64(docs), tableRecall/float64(docs), imageRecall/float64(docs))
	}
}
