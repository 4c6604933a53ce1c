package pdftriage

import (
	"fmt"
	"log/slog"
	"os"
	"runtime"
	"time"

	"gopkg.in/yaml.v3"
)

// Config carries every tunable of the pipeline. The zero value is
// usable: New fills zero fields with defaults.
type Config struct {
	// TextThreshold is the glyph count above which a page counts as
	// native regardless of other signals.
	TextThreshold int `yaml:"text_threshold"`
	// LowVectorCoverage is the path coverage below which a page is
	// vector-sparse for classification purposes.
	LowVectorCoverage float64 `yaml:"low_vector_coverage"`
	// FullPageImageRatio is the page-area fraction a single raster
	// must cover to count as a full-page scan.
	FullPageImageRatio float64 `yaml:"full_page_image_ratio"`

	// MinTableRows is the smallest row count accepted as a table.
	MinTableRows int `yaml:"min_table_rows"`
	// ColumnTolerance is the allowed column drift between fragments
	// of a cross-page table, as a fraction of page width.
	ColumnTolerance float64 `yaml:"column_tolerance"`
	// EdgeMargin is the page-edge band, as a fraction of page height,
	// a table fragment must touch to qualify for continuation.
	EdgeMargin float64 `yaml:"edge_margin"`

	// CellMatchFraction is the fraction of labeled cells that must
	// compare equal for a benchmark table match.
	CellMatchFraction float64 `yaml:"cell_match_fraction"`

	// HeaderZone and FooterZone bound the page bands, as fractions of
	// page height, excluded from paragraph counting.
	HeaderZone float64 `yaml:"header_zone"`
	FooterZone float64 `yaml:"footer_zone"`
	// MinParagraphLen is the smallest text length counted as a
	// paragraph.
	MinParagraphLen int `yaml:"min_paragraph_len"`

	// Workers bounds page-level parallelism.
	Workers int `yaml:"workers"`
	// Timeout bounds a ProcessDocument call; on expiry a partial
	// result is returned with Incomplete set. Zero means no limit.
	Timeout time.Duration `yaml:"timeout"`
	// MaxFileSize rejects larger inputs up front.
	MaxFileSize int64 `yaml:"max_file_size"`

	// Logger receives pipeline diagnostics. Defaults to slog.Default.
	Logger *slog.Logger `yaml:"-"`
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
	if c.MinTableRows == 0 {
		c.MinTableRows = 2
	}
	if c.ColumnTolerance == 0 {
		c.ColumnTolerance = 0.02
	}
	if c.EdgeMargin == 0 {
		c.EdgeMargin = 0.20
	}
	if c.CellMatchFraction == 0 {
		c.CellMatchFraction = 1.0
	}
	if c.HeaderZone == 0 {
		c.HeaderZone = 0.08
	}
	if c.FooterZone == 0 {
		c.FooterZone = 0.92
	}
	if c.MinParagraphLen == 0 {
		c.MinParagraphLen = 10
	}
	if c.Workers == 0 {
		c.Workers = runtime.NumCPU()
	}
	if c.MaxFileSize == 0 {
		c.MaxFileSize = 256 << 20
	}
	if c.Logger == nil {
		c.Logger = slog.Default()
	}
}

// LoadConfig reads a YAML config file. Fields absent from the file
// keep their zero value and are defaulted by New.
func LoadConfig(path string) (Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Config{}, fmt.Errorf("reading config: %w", err)
	}
	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return Config{}, fmt.Errorf("parsing config %s: %w", path, err)
	}
	return cfg, nil
}
