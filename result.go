package pdftriage

import (
	"errors"
	"time"

	"github.com/pdftriage/pdftriage/pkg/images"
	"github.com/pdftriage/pdftriage/pkg/inspect"
	"github.com/pdftriage/pdftriage/pkg/tables"
)

var (
	// ErrInvalidInputType marks inputs that are not PDF documents.
	ErrInvalidInputType = errors.New("pdftriage: input is not a PDF document")
	// ErrInvalidDocument marks PDFs that cannot be processed at all,
	// such as documents with zero pages.
	ErrInvalidDocument = errors.New("pdftriage: document cannot be processed")
)

// Warning records a page-level problem the pipeline worked around.
type Warning struct {
	Page    int    `json:"page"`
	Stage   string `json:"stage"`
	Message string `json:"message"`
}

// Result is the full outcome of processing one document.
type Result struct {
	File           string                  `json:"file"`
	PageCount      int                     `json:"page_count"`
	Classification inspect.Classification  `json:"-"`
	Label          inspect.Label           `json:"label"`
	Confidence     float64                 `json:"confidence"`
	Reasoning      string                  `json:"reasoning"`
	Tables         []tables.Table          `json:"-"`
	TableCount     int                     `json:"table_count"`
	Images         []images.ExtractedImage `json:"-"`
	ImageCount     int                     `json:"image_count"`
	ParagraphCount int                     `json:"paragraph_count"`
	MathPageCount  int                     `json:"math_page_count"`
	Warnings       []Warning               `json:"warnings,omitempty"`
	Incomplete     bool                    `json:"incomplete,omitempty"`
	Elapsed        time.Duration           `json:"elapsed"`
}
