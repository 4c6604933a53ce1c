// Package bench scores extraction output against hand-labeled ground
// truth. Fixtures live in a JSON manifest keyed by document file name.
package bench

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
)

// ExpectedTable is the labeled shape and content of one table.
// Cells may be nil when only the dimensions were labeled.
type ExpectedTable struct {
	Rows  int        `json:"rows"`
	Cols  int        `json:"cols"`
	Cells [][]string `json:"cells,omitempty"`
}

// Fixture is the ground truth for one document.
type Fixture struct {
	File               string          `json:"file"`
	Category           string          `json:"category,omitempty"`
	Difficulty         string          `json:"difficulty,omitempty"`
	Notes              string          `json:"notes,omitempty"`
	ExpectedLabel      string          `json:"expected_label,omitempty"`
	ExpectedTables     []ExpectedTable `json:"expected_tables"`
	ExpectedImageCount int             `json:"expected_image_count"`
}

// Manifest is a collection of fixtures, one per document.
type Manifest struct {
	Documents []Fixture `json:"documents"`
}

// Get returns the fixture for the named document file. Lookup is by
// base name, so callers can pass full paths.
func (m *Manifest) Get(file string) (Fixture, bool) {
	name := filepath.Base(file)
	for _, f := range m.Documents {
		if f.File == name {
			return f, true
		}
	}
	return Fixture{}, false
}

// Add appends or replaces the fixture for its document file.
func (m *Manifest) Add(f Fixture) {
	for i, existing := range m.Documents {
		if existing.File == f.File {
			m.Documents[i] = f
			return
		}
	}
	m.Documents = append(m.Documents, f)
}

// LoadManifest reads a JSON manifest from path.
func LoadManifest(path string) (*Manifest, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading manifest: %w", err)
	}
	var m Manifest
	if err := json.Unmarshal(data, &m); err != nil {
		return nil, fmt.Errorf("parsing manifest %s: %w", path, err)
	}
	return &m, nil
}

// SaveManifest writes the manifest as indented JSON to path.
func (m *Manifest) SaveManifest(path string) error {
	data, err := json.MarshalIndent(m, "", "  ")
	if err != nil {
		return fmt.Errorf("encoding manifest: %w", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("writing manifest: %w", err)
	}
	return nil
}
